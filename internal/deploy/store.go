package deploy

import (
	"context"
	"time"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/cloudflare"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/vercel"
)

// DomainStore is the part of the registry the orchestrator mutates.
type DomainStore interface {
	Create(ctx context.Context, d *model.Domain) error
	GetByID(ctx context.Context, id string) (*model.Domain, error)
	GetByName(ctx context.Context, name string) (*model.Domain, error)
	SetDNSManagement(ctx context.Context, id, mode string) error
	CountBindings(ctx context.Context, id string) (root, sub int, err error)
	AcquireRun(ctx context.Context, domainID, runID string) error
	ReleaseRun(ctx context.Context, domainID, runID string) error
	SetDeploymentStatus(ctx context.Context, id, status string) error
	MarkDeployed(ctx context.Context, id, url string, at time.Time) error
	SetHostingProject(ctx context.Context, id, projectID string) error
	UpdateZone(ctx context.Context, id, zoneID string, nameservers []string) error
	SetVerificationStatus(ctx context.Context, id, status string) error
	SetCNAMETarget(ctx context.Context, id, target string) error
}

// RunStore persists DomainDeployment records and their logs.
type RunStore interface {
	Create(ctx context.Context, r *model.DomainDeployment) error
	GetByID(ctx context.Context, id string) (*model.DomainDeployment, error)
	ListOpen(ctx context.Context) ([]model.DomainDeployment, error)
	SetStatus(ctx context.Context, id, status string) error
	SetProject(ctx context.Context, id, projectID string) error
	Finish(ctx context.Context, id, status string, errMsg *string, at time.Time) error
	AppendLog(ctx context.Context, runID string, entry model.DeploymentLog) error
}

// DNSProvider is the DNS adapter contract.
type DNSProvider interface {
	CreateZone(ctx context.Context, name string) (*cloudflare.Zone, error)
	GetZoneStatus(ctx context.Context, zoneID string) (*cloudflare.ZoneStatus, error)
	ListDNSRecords(ctx context.Context, nameFilter, zoneID string) ([]cloudflare.Record, error)
	UpsertRecord(ctx context.Context, zoneID, recordType, name, content string) (*cloudflare.Record, error)
	DeleteRecord(ctx context.Context, recordID, zoneID string) error
}

// HostingProvider is the hosting adapter contract.
type HostingProvider interface {
	CreateProject(ctx context.Context, name, framework string) (*vercel.Project, error)
	AddDomain(ctx context.Context, domain, projectID string) (*vercel.AddDomainResult, error)
	RemoveDomain(ctx context.Context, domain string) error
}
