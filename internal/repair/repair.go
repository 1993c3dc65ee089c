package repair

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/cloudflare"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/deploy"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/vercel"
)

// DomainStore is the part of the registry repair reads and corrects.
type DomainStore interface {
	GetByID(ctx context.Context, id string) (*model.Domain, error)
	UpdateZone(ctx context.Context, id, zoneID string, nameservers []string) error
	SetVerificationStatus(ctx context.Context, id, status string) error
}

// PageLister lists the bindings whose hosts are checked alongside the bare domain.
type PageLister interface {
	ListByDomain(ctx context.Context, domainID string) ([]model.LandingPage, error)
}

// DNSProbe is the read side of the DNS adapter.
type DNSProbe interface {
	GetZoneStatus(ctx context.Context, zoneID string) (*cloudflare.ZoneStatus, error)
	GetZoneStatusByName(ctx context.Context, name string) (*cloudflare.ZoneStatus, error)
	ListDNSRecords(ctx context.Context, nameFilter, zoneID string) ([]cloudflare.Record, error)
}

// HostingProbe checks and attaches hosting domains.
type HostingProbe interface {
	CheckDomainStatus(ctx context.Context, domain, projectID string) (*vercel.DomainStatus, error)
	AddDomain(ctx context.Context, domain, projectID string) (*vercel.AddDomainResult, error)
}

// Config holds the record targets a healthy host points at.
type Config struct {
	ARecord     string
	CNAMETarget string
}

// DNS status values.
const (
	DNSActive   = "active"
	DNSPending  = "pending"
	DNSMissing  = "missing"
	DNSError    = "error"
	DNSExternal = "external"
)

// Hosting status values.
const (
	HostingConfigured    = "configured"
	HostingMisconfigured = "misconfigured"
	HostingNotAttached   = "not_attached"
	HostingConflict      = "attached_elsewhere"
	HostingNoProject     = "no_project"
	HostingError         = "error"
)

// Recommended action codes. Only ActionPersistZoneID and ActionAttachHosting
// are applied in repair mode.
const (
	ActionPersistZoneID        = "persist_zone_id"
	ActionAttachHosting        = "attach_hosting_domain"
	ActionRedeploy             = "redeploy"
	ActionUpdateNameservers    = "update_nameservers"
	ActionConfigureExternalDNS = "configure_external_dns"
	ActionDetachOtherProject   = "detach_other_project"
)

const (
	OverallFullyConfigured = "fully_configured"
	OverallIssuesDetected  = "issues_detected"
)

// Mismatch is one difference between the registry and a provider.
type Mismatch struct {
	Field    string `json:"field"`
	Recorded string `json:"recorded,omitempty"`
	Live     string `json:"live,omitempty"`
	Message  string `json:"message"`
	Action   string `json:"action,omitempty"`

	host string
}

// ActionResult is the outcome of one repair action.
type ActionResult struct {
	Action  string `json:"action"`
	Target  string `json:"target"`
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"`
}

// Report is the reconciliation result for one Domain.
type Report struct {
	DomainID           string         `json:"domainId"`
	Domain             string         `json:"domain"`
	DNSStatus          string         `json:"dnsStatus"`
	HostingStatus      string         `json:"hostingStatus"`
	Mismatches         []Mismatch     `json:"mismatches"`
	RecommendedActions []string       `json:"recommendedActions"`
	Actions            []ActionResult `json:"actions,omitempty"`
	OverallStatus      string         `json:"overallStatus"`
	NextSteps          []string       `json:"nextSteps"`
}

type Service struct {
	domains DomainStore
	pages   PageLister
	dns     DNSProbe
	hosting HostingProbe
	cfg     Config
	logger  zerolog.Logger
}

func NewService(domains DomainStore, pages PageLister, dns DNSProbe, hosting HostingProbe, cfg Config, logger zerolog.Logger) *Service {
	return &Service{
		domains: domains,
		pages:   pages,
		dns:     dns,
		hosting: hosting,
		cfg:     cfg,
		logger:  logger.With().Str("component", "repair").Logger(),
	}
}

// dnsFindings is what the DNS probe learned. zone is nil when the provider
// has no zone for the domain.
type dnsFindings struct {
	status     string
	zone       *cloudflare.ZoneStatus
	mismatches []Mismatch
}

// hostingFindings is what the hosting probe learned. missing lists hosts not
// attached to any project.
type hostingFindings struct {
	status     string
	missing    []string
	mismatches []Mismatch
}

// Check compares the registry with both providers and, when repair is set,
// applies the corrective actions the comparison calls for.
func (s *Service) Check(ctx context.Context, domainID string, repair bool) (*Report, error) {
	d, err := s.domains.GetByID(ctx, domainID)
	if err != nil {
		return nil, err
	}
	pages, err := s.pages.ListByDomain(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	hosts := hostsOf(d, pages)

	var (
		dnsF     dnsFindings
		hostingF hostingFindings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dnsF = s.probeDNS(gctx, d, pages)
		return nil
	})
	g.Go(func() error {
		hostingF = s.probeHosting(gctx, d, hosts)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		DomainID:      d.ID,
		Domain:        d.Name,
		DNSStatus:     dnsF.status,
		HostingStatus: hostingF.status,
		Mismatches:    append(dnsF.mismatches, hostingF.mismatches...),
	}
	if report.Mismatches == nil {
		report.Mismatches = []Mismatch{}
	}
	report.RecommendedActions = recommended(report.Mismatches)

	if repair {
		report.Actions = s.apply(ctx, d, dnsF, hostingF)
	}
	report.OverallStatus, report.NextSteps = s.summarize(d, report, dnsF)
	return report, nil
}

// hostsOf lists the hosts a deployment attaches: the bare domain, its www
// alias when DNS is provider-managed, and every subdomain binding.
func hostsOf(d *model.Domain, pages []model.LandingPage) []string {
	hosts := []string{d.Name}
	if d.ProviderManaged() {
		hosts = append(hosts, "www."+d.Name)
	}
	for _, p := range pages {
		if p.Subdomain != "" {
			hosts = append(hosts, p.Host(d.Name))
		}
	}
	return hosts
}

func (s *Service) probeDNS(ctx context.Context, d *model.Domain, pages []model.LandingPage) dnsFindings {
	var f dnsFindings
	if !d.ProviderManaged() {
		f.status = DNSExternal
		return f
	}

	recorded := d.ZoneIDValue()
	zone, err := s.dns.GetZoneStatusByName(ctx, d.Name)
	if err != nil {
		f.status = DNSError
		f.mismatches = append(f.mismatches, Mismatch{Field: "zone", Recorded: recorded,
			Message: fmt.Sprintf("could not query DNS provider: %v", err)})
		return f
	}
	if !zone.Found {
		f.status = DNSMissing
		f.mismatches = append(f.mismatches, Mismatch{Field: "zone", Recorded: recorded,
			Message: "no DNS zone exists at the provider", Action: ActionRedeploy})
		return f
	}
	f.zone = zone

	switch {
	case recorded == "":
		f.mismatches = append(f.mismatches, Mismatch{Field: "zone_id", Live: zone.ID,
			Message: "zone exists at the provider but is not recorded", Action: ActionPersistZoneID})
	case recorded != zone.ID:
		f.mismatches = append(f.mismatches, Mismatch{Field: "zone_id", Recorded: recorded, Live: zone.ID,
			Message: "recorded zone id is stale", Action: ActionPersistZoneID})
	}

	if zone.Active {
		f.status = DNSActive
	} else {
		f.status = DNSPending
		f.mismatches = append(f.mismatches, Mismatch{Field: "zone_status", Recorded: d.VerificationStatus, Live: zone.Status,
			Message: "zone is not active at the provider", Action: ActionUpdateNameservers})
	}

	want := deploy.RequiredRecords(d.Name, "", s.cfg.ARecord, s.cfg.CNAMETarget)
	for _, p := range pages {
		if p.Subdomain != "" {
			want = append(want, deploy.RequiredRecords(d.Name, p.Subdomain, s.cfg.ARecord, s.cfg.CNAMETarget)...)
		}
	}
	for _, rec := range want {
		records, err := s.dns.ListDNSRecords(ctx, rec.Name, zone.ID)
		if err != nil {
			f.mismatches = append(f.mismatches, Mismatch{Field: "record", Recorded: rec.Type + " " + rec.Name,
				Message: fmt.Sprintf("could not list records: %v", err)})
			continue
		}
		if m, ok := compareRecord(rec, records); !ok {
			f.mismatches = append(f.mismatches, m)
		}
	}
	return f
}

func compareRecord(want deploy.RequiredRecord, records []cloudflare.Record) (Mismatch, bool) {
	var live []string
	for _, r := range records {
		if r.Type != want.Type || !strings.EqualFold(r.Name, want.Name) {
			continue
		}
		if strings.EqualFold(strings.TrimSuffix(r.Content, "."), want.Content) {
			return Mismatch{}, true
		}
		live = append(live, r.Content)
	}
	m := Mismatch{
		Field:    "record",
		Recorded: fmt.Sprintf("%s %s -> %s", want.Type, want.Name, want.Content),
		Action:   ActionRedeploy,
	}
	if len(live) == 0 {
		m.Message = fmt.Sprintf("%s record %s is missing", want.Type, want.Name)
	} else {
		m.Live = strings.Join(live, ", ")
		m.Message = fmt.Sprintf("%s record %s points elsewhere", want.Type, want.Name)
	}
	return m, false
}

func (s *Service) probeHosting(ctx context.Context, d *model.Domain, hosts []string) hostingFindings {
	var f hostingFindings
	if d.ProjectIDValue() == "" {
		f.status = HostingNoProject
		f.mismatches = append(f.mismatches, Mismatch{Field: "hosting_project",
			Message: "no hosting project is recorded", Action: ActionRedeploy})
		return f
	}

	var (
		mu            sync.Mutex
		failed        bool
		misconfigured bool
		elsewhere     bool
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, host := range hosts {
		g.Go(func() error {
			st, err := s.hosting.CheckDomainStatus(gctx, host, d.ProjectIDValue())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				failed = true
				f.mismatches = append(f.mismatches, Mismatch{Field: "hosting_domain", Recorded: host, host: host,
					Message: fmt.Sprintf("could not query hosting provider: %v", err)})
			case !st.Exists:
				f.missing = append(f.missing, host)
				f.mismatches = append(f.mismatches, Mismatch{Field: "hosting_domain", Recorded: host, host: host,
					Message: fmt.Sprintf("%s is not attached to hosting project %s", host, d.ProjectIDValue()),
					Action:  ActionAttachHosting})
			case !st.OnProject:
				elsewhere = true
				f.mismatches = append(f.mismatches, Mismatch{Field: "hosting_project", Recorded: d.ProjectIDValue(), Live: st.ProjectID, host: host,
					Message: fmt.Sprintf("%s is attached to a hosting project other than %s", host, d.ProjectIDValue()),
					Action:  ActionDetachOtherProject})
			case !st.Configured:
				misconfigured = true
				action := ActionRedeploy
				if !d.ProviderManaged() {
					action = ActionConfigureExternalDNS
				}
				f.mismatches = append(f.mismatches, Mismatch{Field: "hosting_domain", Recorded: host, host: host,
					Message: fmt.Sprintf("%s is attached but its DNS does not point at the hosting provider", host),
					Action:  action})
			}
			return nil
		})
	}
	_ = g.Wait()

	sortMismatches(f.mismatches, hosts)
	switch {
	case failed:
		f.status = HostingError
	case elsewhere:
		f.status = HostingConflict
	case len(f.missing) > 0:
		f.status = HostingNotAttached
	case misconfigured:
		f.status = HostingMisconfigured
	default:
		f.status = HostingConfigured
	}
	return f
}

// sortMismatches orders per-host findings by host order so reports are stable.
func sortMismatches(ms []Mismatch, hosts []string) {
	rank := make(map[string]int, len(hosts))
	for i, h := range hosts {
		rank[h] = i
	}
	sort.SliceStable(ms, func(i, j int) bool { return rank[ms[i].host] < rank[ms[j].host] })
}

func recommended(ms []Mismatch) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, m := range ms {
		if m.Action == "" || seen[m.Action] {
			continue
		}
		seen[m.Action] = true
		out = append(out, m.Action)
	}
	return out
}

// apply runs the two corrective actions. Each action is reported on its own.
func (s *Service) apply(ctx context.Context, d *model.Domain, dnsF dnsFindings, hostingF hostingFindings) []ActionResult {
	results := []ActionResult{}

	if z := dnsF.zone; z != nil && d.ZoneIDValue() != z.ID {
		res := ActionResult{Action: ActionPersistZoneID, Target: z.ID}
		if err := s.domains.UpdateZone(ctx, d.ID, z.ID, z.NameServers); err != nil {
			res.Error = err.Error()
		} else {
			res.Applied = true
		}
		s.logAction(d, res)
		results = append(results, res)
	}

	for _, host := range hostingF.missing {
		res := ActionResult{Action: ActionAttachHosting, Target: host}
		r, err := s.hosting.AddDomain(ctx, host, d.ProjectIDValue())
		switch {
		case errors.Is(err, model.ErrConflict):
			res.Error = fmt.Sprintf("%s is attached to another hosting project", host)
		case err != nil:
			res.Error = err.Error()
		default:
			res.Applied = !r.AlreadyExists
		}
		s.logAction(d, res)
		results = append(results, res)
	}
	return results
}

func (s *Service) logAction(d *model.Domain, res ActionResult) {
	ev := s.logger.Info()
	if res.Error != "" {
		ev = s.logger.Warn().Str("error", res.Error)
	}
	ev.Str("domain", d.Name).Str("action", res.Action).Str("target", res.Target).Bool("applied", res.Applied).Msg("repair action")
}

func (s *Service) summarize(d *model.Domain, r *Report, dnsF dnsFindings) (string, []string) {
	fixed := map[string]bool{}
	for _, a := range r.Actions {
		if a.Error == "" {
			fixed[a.Action+"|"+a.Target] = true
		}
	}

	steps := []string{}
	unresolved := 0
	seen := map[string]bool{}
	for _, m := range r.Mismatches {
		if fixedBy(m, fixed) {
			continue
		}
		unresolved++
		step := s.nextStep(d, m, dnsF)
		if step != "" && !seen[step] {
			seen[step] = true
			steps = append(steps, step)
		}
	}
	if unresolved == 0 {
		return OverallFullyConfigured, []string{"No action needed: " + d.Name + " is fully configured."}
	}
	return OverallIssuesDetected, steps
}

func fixedBy(m Mismatch, fixed map[string]bool) bool {
	switch m.Action {
	case ActionPersistZoneID:
		return fixed[ActionPersistZoneID+"|"+m.Live]
	case ActionAttachHosting:
		return fixed[ActionAttachHosting+"|"+m.Recorded]
	}
	return false
}

func (s *Service) nextStep(d *model.Domain, m Mismatch, dnsF dnsFindings) string {
	switch m.Action {
	case ActionPersistZoneID:
		return fmt.Sprintf("Run the status check with repair=true to record zone %s for %s.", m.Live, d.Name)
	case ActionAttachHosting:
		return fmt.Sprintf("Run the status check with repair=true to attach %s to the hosting project.", m.Recorded)
	case ActionRedeploy:
		return fmt.Sprintf("Redeploy %s to recreate its hosting and DNS configuration.", d.Name)
	case ActionUpdateNameservers:
		ns := d.NameServers
		if dnsF.zone != nil && len(dnsF.zone.NameServers) > 0 {
			ns = dnsF.zone.NameServers
		}
		if len(ns) == 0 {
			return fmt.Sprintf("Point the registrar nameservers for %s at the DNS provider and wait for activation.", d.Name)
		}
		return fmt.Sprintf("Set the registrar nameservers for %s to %s and wait for activation.", d.Name, strings.Join(ns, ", "))
	case ActionConfigureExternalDNS:
		return fmt.Sprintf("Create a CNAME record for %s pointing to %s at your DNS provider.", m.Recorded, s.cfg.CNAMETarget)
	case ActionDetachOtherProject:
		return fmt.Sprintf("Remove %s from the hosting project it is attached to, then run the status check with repair=true.", m.host)
	}
	return fmt.Sprintf("Retry the status check for %s: %s.", d.Name, m.Message)
}
