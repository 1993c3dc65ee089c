package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/platform"
)

// Config holds the provisioning targets and zone polling settings.
type Config struct {
	Framework        string
	ARecord          string
	CNAMETarget      string
	ZonePollAttempts int
	ZonePollInterval time.Duration
}

// Orchestrator drives deployment runs. Runs execute on the pool, detached
// from the request that started them.
type Orchestrator struct {
	domains DomainStore
	runs    RunStore
	dns     DNSProvider
	hosting HostingProvider
	pool    *Pool
	broker  *Broker
	cfg     Config
	logger  zerolog.Logger
	now     func() time.Time

	mu     sync.Mutex
	active map[string]*run
}

func NewOrchestrator(domains DomainStore, runs RunStore, dns DNSProvider, hosting HostingProvider,
	pool *Pool, broker *Broker, cfg Config, logger zerolog.Logger) *Orchestrator {
	if cfg.ZonePollAttempts < 1 {
		cfg.ZonePollAttempts = 1
	}
	return &Orchestrator{
		domains: domains,
		runs:    runs,
		dns:     dns,
		hosting: hosting,
		pool:    pool,
		broker:  broker,
		cfg:     cfg,
		logger:  logger.With().Str("component", "orchestrator").Logger(),
		now:     time.Now,
		active:  make(map[string]*run),
	}
}

// Broker exposes the log broker for stream handlers.
func (o *Orchestrator) Broker() *Broker {
	return o.broker
}

// Provision registers the domain if needed and starts a run for its bare host.
func (o *Orchestrator) Provision(ctx context.Context, domainName, mode string) (*model.Domain, *model.DomainDeployment, error) {
	name := platform.NormalizeDomain(domainName)
	if err := platform.ValidateDomainName(name); err != nil {
		return nil, nil, err
	}
	if mode == "" {
		mode = model.DNSManagedByProvider
	}
	if mode != model.DNSManagedByProvider && mode != model.DNSManagedExternally {
		return nil, nil, model.Validationf("dnsManagement must be %q or %q", model.DNSManagedByProvider, model.DNSManagedExternally)
	}

	domain, err := o.domains.GetByName(ctx, name)
	switch {
	case errors.Is(err, model.ErrNotFound):
		now := o.now()
		domain = &model.Domain{
			ID:                 platform.NewID(),
			Name:               name,
			DNSManagement:      mode,
			VerificationStatus: model.VerificationPending,
			DeploymentStatus:   model.StatusNotDeployed,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := o.domains.Create(ctx, domain); err != nil {
			return nil, nil, err
		}
	case err != nil:
		return nil, nil, err
	case domain.DNSManagement != mode:
		if domain.ActiveRunID != nil {
			return nil, nil, fmt.Errorf("domain %s has an active deployment: %w", name, model.ErrConflict)
		}
		if err := o.checkBindingsFit(ctx, domain, mode); err != nil {
			return nil, nil, err
		}
		if err := o.domains.SetDNSManagement(ctx, domain.ID, mode); err != nil {
			return nil, nil, err
		}
		domain.DNSManagement = mode
	}

	r, err := o.Start(ctx, domain.ID, "")
	if err != nil {
		return domain, nil, err
	}
	return domain, r, nil
}

// checkBindingsFit rejects a DNS mode switch the domain's landing pages
// cannot survive: external DNS serves only the root, provider-managed DNS
// only subdomains.
func (o *Orchestrator) checkBindingsFit(ctx context.Context, domain *model.Domain, mode string) error {
	root, sub, err := o.domains.CountBindings(ctx, domain.ID)
	if err != nil {
		return err
	}
	switch {
	case mode == model.DNSManagedExternally && sub > 0:
		return fmt.Errorf("domain %s has %d subdomain landing page(s), which external DNS cannot serve: %w", domain.Name, sub, model.ErrConflict)
	case mode == model.DNSManagedByProvider && root > 0:
		return fmt.Errorf("domain %s has a root landing page, which provider-managed DNS cannot serve: %w", domain.Name, model.ErrConflict)
	}
	return nil
}

// Start creates a pending run for the domain (or one of its subdomains) and
// hands it to the pool. A domain with a non-terminal run is rejected with
// model.ErrConflict.
func (o *Orchestrator) Start(ctx context.Context, domainID, subdomain string) (*model.DomainDeployment, error) {
	domain, err := o.domains.GetByID(ctx, domainID)
	if err != nil {
		return nil, err
	}
	if subdomain != "" {
		if err := platform.ValidateSubdomain(subdomain); err != nil {
			return nil, err
		}
	}

	runID := platform.NewID()
	if err := o.domains.AcquireRun(ctx, domain.ID, runID); err != nil {
		return nil, err
	}

	host := domain.Name
	if subdomain != "" {
		host = subdomain + "." + domain.Name
	}
	prev := domain.DeploymentStatus
	if prev != model.StatusDeployed && prev != model.StatusFailed {
		prev = model.StatusNotDeployed
	}

	rec := &model.DomainDeployment{
		ID:               runID,
		DomainID:         domain.ID,
		DomainName:       domain.Name,
		Host:             host,
		HostingProjectID: domain.HostingProjectID,
		Status:           model.StatusPending,
		StartedAt:        o.now().UTC(),
	}
	if err := o.runs.Create(ctx, rec); err != nil {
		o.release(domain.ID, runID)
		return nil, err
	}

	r := &run{
		id:         runID,
		domain:     domain,
		subdomain:  subdomain,
		host:       host,
		prevStatus: prev,
		started:    o.now(),
		runs:       o.runs,
		broker:     o.broker,
		logger:     o.logger.With().Str("run_id", runID).Str("domain", domain.Name).Str("host", host).Logger(),
		now:        o.now,
	}

	o.broker.Open(runID)
	o.mu.Lock()
	o.active[runID] = r
	o.mu.Unlock()
	runsStarted.Inc()
	runsActive.Inc()

	if err := o.domains.SetDeploymentStatus(ctx, domain.ID, model.StatusDeploying); err != nil {
		o.finish(r, model.StatusFailed, err)
		return nil, err
	}
	r.infof("starting deployment for %s", host)

	err = o.pool.Submit(Task{Name: "deploy " + host, Run: func(ctx context.Context) error {
		return o.execute(ctx, r)
	}})
	if err != nil {
		r.errorf("could not queue deployment: %v", err)
		o.finish(r, model.StatusFailed, err)
		return nil, err
	}

	return rec, nil
}

// Cancel asks a run to stop at its next checkpoint.
func (o *Orchestrator) Cancel(ctx context.Context, runID string) error {
	o.mu.Lock()
	r, ok := o.active[runID]
	o.mu.Unlock()
	if ok {
		if r.cancelled.CompareAndSwap(false, true) {
			r.warnf("cancellation requested")
		}
		return nil
	}

	rec, err := o.runs.GetByID(ctx, runID)
	if err != nil {
		return err
	}
	if model.IsTerminal(rec.Status) {
		return fmt.Errorf("deployment %s already %s: %w", runID, rec.Status, model.ErrConflict)
	}
	return fmt.Errorf("deployment %s is not running in this process: %w", runID, model.ErrConflict)
}

// execute runs the provisioning steps. Any panic still lands the run in a
// terminal status before it reaches the pool supervisor.
func (o *Orchestrator) execute(ctx context.Context, r *run) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.errorf("deployment failed: internal error: %v", rec)
			o.finish(r, model.StatusFailed, fmt.Errorf("internal error: %v", rec))
			panic(rec)
		}
	}()

	if err := r.checkpoint(); err != nil {
		r.warnf("deployment cancelled before it started")
		o.finish(r, model.StatusCancelled, nil)
		return nil
	}
	if err := o.runs.SetStatus(ctx, r.id, model.StatusDeploying); err != nil {
		r.errorf("deployment failed: %v", err)
		o.finish(r, model.StatusFailed, err)
		return err
	}

	err = o.provision(ctx, r)
	switch {
	case errors.Is(err, errCancelled):
		r.warnf("deployment cancelled")
		o.finish(r, model.StatusCancelled, nil)
		return nil
	case err != nil:
		r.errorf("deployment failed: %v", err)
		o.finish(r, model.StatusFailed, err)
		return err
	}

	url := "https://" + r.host
	r.infof("deployment completed: %s", url)
	o.finish(r, model.StatusDeployed, nil)
	return nil
}

func (o *Orchestrator) provision(ctx context.Context, r *run) error {
	d := r.domain

	if err := r.checkpoint(); err != nil {
		return err
	}
	projectID := d.ProjectIDValue()
	if projectID == "" {
		p, err := o.hosting.CreateProject(ctx, platform.ProjectName(d.Name), o.cfg.Framework)
		if err != nil {
			return fmt.Errorf("create hosting project: %w", err)
		}
		projectID = p.ID
		if err := o.domains.SetHostingProject(ctx, d.ID, projectID); err != nil {
			return err
		}
		r.infof("created hosting project %s", projectID)
	} else {
		r.infof("using hosting project %s", projectID)
	}
	if err := o.runs.SetProject(ctx, r.id, projectID); err != nil {
		r.logger.Warn().Err(err).Msg("failed to record hosting project on run")
	}

	for _, host := range o.hostsToAttach(r) {
		if err := r.checkpoint(); err != nil {
			return err
		}
		o.attach(ctx, r, host, projectID)
	}

	if err := r.checkpoint(); err != nil {
		return err
	}
	if d.ProviderManaged() {
		return o.configureZone(ctx, r)
	}
	return o.instructExternal(ctx, r)
}

func (o *Orchestrator) hostsToAttach(r *run) []string {
	if r.subdomain == "" && r.domain.ProviderManaged() {
		return []string{r.host, "www." + r.host}
	}
	return []string{r.host}
}

// attach never fails the run. DNS configuration can still succeed and the
// host can be reattached later.
func (o *Orchestrator) attach(ctx context.Context, r *run, host, projectID string) {
	res, err := o.hosting.AddDomain(ctx, host, projectID)
	switch {
	case errors.Is(err, model.ErrConflict):
		r.warnf("%s is attached to another hosting project; detach it there and redeploy: %v", host, err)
	case err != nil:
		r.warnf("attaching %s to hosting project failed, continuing with DNS: %v", host, err)
	case res.AlreadyExists:
		r.infof("%s already attached to hosting project %s", host, projectID)
	default:
		r.infof("attached %s to hosting project %s", host, projectID)
	}
}

func (o *Orchestrator) configureZone(ctx context.Context, r *run) error {
	d := r.domain

	zoneID := d.ZoneIDValue()
	if zoneID == "" {
		z, err := o.dns.CreateZone(ctx, d.Name)
		if err != nil {
			return fmt.Errorf("create DNS zone: %w", err)
		}
		zoneID = z.ID
		if err := o.domains.UpdateZone(ctx, d.ID, z.ID, z.NameServers); err != nil {
			return err
		}
		d.ZoneID = &z.ID
		d.NameServers = z.NameServers
		r.infof("DNS zone %s ready, nameservers: %s", z.ID, strings.Join(z.NameServers, ", "))
	} else {
		r.infof("using DNS zone %s", zoneID)
	}

	for _, rec := range o.requiredRecords(r) {
		if err := r.checkpoint(); err != nil {
			return err
		}
		if _, err := o.dns.UpsertRecord(ctx, zoneID, rec.Type, rec.Name, rec.Content); err != nil {
			return fmt.Errorf("ensure %s record %s: %w", rec.Type, rec.Name, err)
		}
		r.infof("%s record %s -> %s in place", rec.Type, rec.Name, rec.Content)
	}

	return o.pollZone(ctx, r, zoneID)
}

// RequiredRecord is a DNS record the orchestrator keeps in place for a host.
type RequiredRecord struct {
	Type    string
	Name    string
	Content string
}

// RequiredRecords lists the records a host needs: an apex A record plus a
// www CNAME for a bare domain, a single CNAME for a subdomain.
func RequiredRecords(domainName, subdomain, aRecord, cnameTarget string) []RequiredRecord {
	if subdomain != "" {
		return []RequiredRecord{{Type: "CNAME", Name: subdomain + "." + domainName, Content: cnameTarget}}
	}
	return []RequiredRecord{
		{Type: "A", Name: domainName, Content: aRecord},
		{Type: "CNAME", Name: "www." + domainName, Content: cnameTarget},
	}
}

func (o *Orchestrator) requiredRecords(r *run) []RequiredRecord {
	return RequiredRecords(r.domain.Name, r.subdomain, o.cfg.ARecord, o.cfg.CNAMETarget)
}

// pollZone records the zone activation state. An inactive zone is a warning.
func (o *Orchestrator) pollZone(ctx context.Context, r *run, zoneID string) error {
	var status string
	for attempt := 1; attempt <= o.cfg.ZonePollAttempts; attempt++ {
		if err := r.checkpoint(); err != nil {
			return err
		}
		st, err := o.dns.GetZoneStatus(ctx, zoneID)
		if err != nil {
			r.warnf("checking zone activation failed: %v", err)
			return nil
		}
		status = st.Status
		if st.Active {
			if err := o.domains.SetVerificationStatus(ctx, r.domain.ID, model.VerificationActive); err != nil {
				return err
			}
			r.infof("DNS zone %s is active", zoneID)
			return nil
		}
		if attempt < o.cfg.ZonePollAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.cfg.ZonePollInterval):
			}
		}
	}

	if err := o.domains.SetVerificationStatus(ctx, r.domain.ID, model.VerificationPending); err != nil {
		return err
	}
	r.warnf("DNS zone %s is not active yet (status %q); set the registrar nameservers to %s",
		zoneID, status, strings.Join(r.domain.NameServers, ", "))
	return nil
}

func (o *Orchestrator) instructExternal(ctx context.Context, r *run) error {
	if err := o.domains.SetCNAMETarget(ctx, r.domain.ID, o.cfg.CNAMETarget); err != nil {
		return err
	}
	if r.subdomain == "" {
		r.infof("DNS is managed externally: create an A record for %s pointing to %s and a CNAME record for www.%s pointing to %s",
			r.host, o.cfg.ARecord, r.host, o.cfg.CNAMETarget)
	} else {
		r.infof("DNS is managed externally: create a CNAME record for %s pointing to %s", r.host, o.cfg.CNAMETarget)
	}
	return nil
}

// finish moves the run and its domain to a terminal state, clears the
// active-run marker and closes the log topic.
func (o *Orchestrator) finish(r *run, status string, cause error) {
	r.close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	at := o.now().UTC()

	var errMsg *string
	if cause != nil {
		msg := cause.Error()
		errMsg = &msg
	}
	if err := o.runs.Finish(ctx, r.id, status, errMsg, at); err != nil {
		r.logger.Error().Err(err).Str("status", status).Msg("failed to finish deployment run")
	}

	var err error
	switch status {
	case model.StatusDeployed:
		err = o.domains.MarkDeployed(ctx, r.domain.ID, "https://"+r.host, at)
	case model.StatusCancelled:
		err = o.domains.SetDeploymentStatus(ctx, r.domain.ID, r.prevStatus)
	default:
		err = o.domains.SetDeploymentStatus(ctx, r.domain.ID, model.StatusFailed)
	}
	if err != nil {
		r.logger.Error().Err(err).Str("status", status).Msg("failed to update domain deployment status")
	}

	o.release(r.domain.ID, r.id)

	o.mu.Lock()
	delete(o.active, r.id)
	o.mu.Unlock()
	o.broker.Close(r.id)

	runsActive.Dec()
	runsFinished.WithLabelValues(status).Inc()
	runDuration.WithLabelValues(status).Observe(time.Since(r.started).Seconds())
	r.logger.Info().Str("status", status).Msg("deployment finished")
}

func (o *Orchestrator) release(domainID, runID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := o.domains.ReleaseRun(ctx, domainID, runID); err != nil {
		o.logger.Error().Err(err).Str("run_id", runID).Msg("failed to release active-run marker")
	}
}
