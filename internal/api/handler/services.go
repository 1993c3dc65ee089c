package handler

import (
	"context"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/repair"
)

// Provisioner starts, cancels and tears down deployment runs.
type Provisioner interface {
	Provision(ctx context.Context, domainName, mode string) (*model.Domain, *model.DomainDeployment, error)
	Start(ctx context.Context, domainID, subdomain string) (*model.DomainDeployment, error)
	Cancel(ctx context.Context, runID string) error
	Teardown(domain *model.Domain, hosts []string)
}

// RunReader reads deployment runs and their logs.
type RunReader interface {
	GetByID(ctx context.Context, id string) (*model.DomainDeployment, error)
	ListByDomain(ctx context.Context, domainID string) ([]model.DomainDeployment, error)
}

// LogSubscriber delivers live log entries of a run.
type LogSubscriber interface {
	Subscribe(runID string) (<-chan model.DeploymentLog, func())
}

// DomainRegistry is the domain part of the registry used by handlers.
type DomainRegistry interface {
	List(ctx context.Context) ([]model.Domain, error)
	GetByID(ctx context.Context, id string) (*model.Domain, error)
	IncrementBanCount(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string, cascade bool) error
}

// PageRegistry is the landing page part of the registry used by handlers.
type PageRegistry interface {
	Create(ctx context.Context, p *model.LandingPage, domain *model.Domain) error
	GetByID(ctx context.Context, id string) (*model.LandingPage, error)
	ListByDomain(ctx context.Context, domainID string) ([]model.LandingPage, error)
	Delete(ctx context.Context, id string) error
}

// Reconciler compares registry state with the providers.
type Reconciler interface {
	Check(ctx context.Context, domainID string, fix bool) (*repair.Report, error)
	Verify(ctx context.Context, domainID string) (*repair.Verification, error)
}
