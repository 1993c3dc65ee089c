package deploy

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/cloudflare"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/vercel"
)

// ---------- Registry fakes ----------

type fakeDomains struct {
	mu       sync.Mutex
	domains  map[string]*model.Domain
	roots    map[string]int
	subs     map[string]int
	countErr error
}

func newFakeDomains(ds ...*model.Domain) *fakeDomains {
	f := &fakeDomains{domains: make(map[string]*model.Domain), roots: make(map[string]int), subs: make(map[string]int)}
	for _, d := range ds {
		f.domains[d.ID] = d
	}
	return f
}

func (f *fakeDomains) get(id string) model.Domain {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.domains[id]
}

func (f *fakeDomains) update(id string, fn func(d *model.Domain)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.domains[id]
	if !ok {
		return fmt.Errorf("domain %s: %w", id, model.ErrNotFound)
	}
	fn(d)
	return nil
}

func (f *fakeDomains) Create(_ context.Context, d *model.Domain) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.domains {
		if existing.Name == d.Name {
			return model.ErrConflict
		}
	}
	cp := *d
	f.domains[d.ID] = &cp
	return nil
}

func (f *fakeDomains) GetByID(_ context.Context, id string) (*model.Domain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.domains[id]
	if !ok {
		return nil, fmt.Errorf("domain %s: %w", id, model.ErrNotFound)
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDomains) GetByName(_ context.Context, name string) (*model.Domain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.domains {
		if d.Name == name {
			cp := *d
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("domain %s: %w", name, model.ErrNotFound)
}

func (f *fakeDomains) SetDNSManagement(_ context.Context, id, mode string) error {
	return f.update(id, func(d *model.Domain) { d.DNSManagement = mode })
}

func (f *fakeDomains) AcquireRun(_ context.Context, domainID, runID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.domains[domainID]
	if !ok {
		return fmt.Errorf("domain %s: %w", domainID, model.ErrNotFound)
	}
	if d.ActiveRunID != nil {
		return fmt.Errorf("domain %s busy: %w", domainID, model.ErrConflict)
	}
	d.ActiveRunID = &runID
	return nil
}

func (f *fakeDomains) ReleaseRun(_ context.Context, domainID, runID string) error {
	return f.update(domainID, func(d *model.Domain) {
		if d.ActiveRunID != nil && *d.ActiveRunID == runID {
			d.ActiveRunID = nil
		}
	})
}

func (f *fakeDomains) SetDeploymentStatus(_ context.Context, id, status string) error {
	return f.update(id, func(d *model.Domain) { d.DeploymentStatus = status })
}

func (f *fakeDomains) MarkDeployed(_ context.Context, id, url string, at time.Time) error {
	return f.update(id, func(d *model.Domain) {
		d.DeploymentStatus = model.StatusDeployed
		d.DeploymentURL = &url
		d.LastDeployedAt = &at
	})
}

func (f *fakeDomains) SetHostingProject(_ context.Context, id, projectID string) error {
	return f.update(id, func(d *model.Domain) { d.HostingProjectID = &projectID })
}

func (f *fakeDomains) UpdateZone(_ context.Context, id, zoneID string, ns []string) error {
	return f.update(id, func(d *model.Domain) {
		d.ZoneID = &zoneID
		d.NameServers = ns
	})
}

func (f *fakeDomains) SetVerificationStatus(_ context.Context, id, status string) error {
	return f.update(id, func(d *model.Domain) { d.VerificationStatus = status })
}

func (f *fakeDomains) CountBindings(_ context.Context, id string) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, 0, f.countErr
	}
	return f.roots[id], f.subs[id], nil
}

func (f *fakeDomains) SetCNAMETarget(_ context.Context, id, target string) error {
	return f.update(id, func(d *model.Domain) { d.CNAMETarget = &target })
}

type fakeRuns struct {
	mu       sync.Mutex
	runs     map[string]*model.DomainDeployment
	onAppend func(model.DeploymentLog)
}

func newFakeRuns() *fakeRuns {
	return &fakeRuns{runs: make(map[string]*model.DomainDeployment)}
}

func (f *fakeRuns) Create(_ context.Context, r *model.DomainDeployment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.runs[r.ID] = &cp
	return nil
}

func (f *fakeRuns) GetByID(_ context.Context, id string) (*model.DomainDeployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.runs[id]
	if !ok {
		return nil, fmt.Errorf("deployment %s: %w", id, model.ErrNotFound)
	}
	cp := *r
	cp.Logs = append([]model.DeploymentLog(nil), r.Logs...)
	return &cp, nil
}

func (f *fakeRuns) ListOpen(_ context.Context) ([]model.DomainDeployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.DomainDeployment
	for _, r := range f.runs {
		if !model.IsTerminal(r.Status) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRuns) SetStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.runs[id]
	if !model.CanTransition(r.Status, status) {
		return fmt.Errorf("deployment %s %s -> %s: %w", id, r.Status, status, model.ErrConflict)
	}
	r.Status = status
	return nil
}

func (f *fakeRuns) SetProject(_ context.Context, id, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs[id].HostingProjectID = &projectID
	return nil
}

func (f *fakeRuns) Finish(_ context.Context, id, status string, errMsg *string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.runs[id]
	if model.IsTerminal(r.Status) {
		return fmt.Errorf("deployment %s already terminal: %w", id, model.ErrConflict)
	}
	r.Status = status
	r.Error = errMsg
	r.CompletedAt = &at
	return nil
}

func (f *fakeRuns) AppendLog(_ context.Context, runID string, entry model.DeploymentLog) error {
	if f.onAppend != nil {
		f.onAppend(entry)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.runs[runID]
	r.Logs = append(r.Logs, entry)
	return nil
}

// ---------- Provider fakes ----------

type fakeDNS struct {
	mu          sync.Mutex
	createErr   error
	upsertErr   error
	statusErr   error
	zoneActive  bool
	zoneStatus  string
	statusCalls int
	createCalls int
	records     []cloudflare.Record
	deleted     []string
	panicOn     string
}

func (f *fakeDNS) CreateZone(_ context.Context, name string) (*cloudflare.Zone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOn == "create_zone" {
		panic("dns adapter exploded")
	}
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &cloudflare.Zone{ID: "zone-" + name, Name: name, Status: "pending",
		NameServers: []string{"ada.ns.cloudflare.com", "bob.ns.cloudflare.com"}}, nil
}

func (f *fakeDNS) GetZoneStatus(_ context.Context, zoneID string) (*cloudflare.ZoneStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	status := f.zoneStatus
	if status == "" {
		status = "pending"
		if f.zoneActive {
			status = "active"
		}
	}
	return &cloudflare.ZoneStatus{ID: zoneID, Status: status, Active: f.zoneActive, Found: true}, nil
}

func (f *fakeDNS) ListDNSRecords(_ context.Context, nameFilter, _ string) ([]cloudflare.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []cloudflare.Record
	for _, r := range f.records {
		if nameFilter == "" || strings.EqualFold(r.Name, nameFilter) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeDNS) UpsertRecord(_ context.Context, _ string, recordType, name, content string) (*cloudflare.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	rec := cloudflare.Record{ID: fmt.Sprintf("rec-%d", len(f.records)+1), Type: recordType, Name: name, Content: content}
	f.records = append(f.records, rec)
	return &rec, nil
}

func (f *fakeDNS) DeleteRecord(_ context.Context, recordID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, recordID)
	return nil
}

func (f *fakeDNS) recordNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.records {
		out = append(out, r.Type+" "+r.Name+" "+r.Content)
	}
	return out
}

type fakeHosting struct {
	mu         sync.Mutex
	block      chan struct{}
	projectErr error
	addErr     error
	existing   bool
	attached   []string
	removed    []string
}

func (f *fakeHosting) CreateProject(_ context.Context, name, _ string) (*vercel.Project, error) {
	if f.block != nil {
		<-f.block
	}
	if f.projectErr != nil {
		return nil, f.projectErr
	}
	return &vercel.Project{ID: "prj_" + name, Name: name}, nil
}

func (f *fakeHosting) AddDomain(_ context.Context, domain, projectID string) (*vercel.AddDomainResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.attached = append(f.attached, domain)
	return &vercel.AddDomainResult{Name: domain, ProjectID: projectID, AlreadyExists: f.existing}, nil
}

func (f *fakeHosting) RemoveDomain(_ context.Context, domain string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, domain)
	return nil
}

func (f *fakeHosting) attachedHosts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.attached...)
}
