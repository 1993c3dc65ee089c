package deploy

import (
	"context"
	"strings"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

// Teardown queues best-effort removal of the given hosts from both
// providers. Failures are logged and never block registry deletion.
func (o *Orchestrator) Teardown(domain *model.Domain, hosts []string) {
	d := *domain
	hosts = append([]string(nil), hosts...)
	err := o.pool.Submit(Task{Name: "teardown " + d.Name, Run: func(ctx context.Context) error {
		o.teardown(ctx, &d, hosts)
		return nil
	}})
	if err != nil {
		o.logger.Error().Err(err).Str("domain", d.Name).Msg("could not queue teardown")
	}
}

func (o *Orchestrator) teardown(ctx context.Context, d *model.Domain, hosts []string) {
	logger := o.logger.With().Str("domain", d.Name).Str("task", "teardown").Logger()

	var names []string
	for _, host := range hosts {
		names = append(names, host)
		if host == d.Name && d.ProviderManaged() {
			names = append(names, "www."+host)
		}
	}

	for _, name := range names {
		if err := o.hosting.RemoveDomain(ctx, name); err != nil {
			logger.Warn().Err(err).Str("host", name).Msg("removing host from hosting provider failed")
		} else {
			logger.Info().Str("host", name).Msg("removed host from hosting provider")
		}
	}

	zoneID := d.ZoneIDValue()
	if !d.ProviderManaged() || zoneID == "" {
		return
	}
	for _, name := range names {
		records, err := o.dns.ListDNSRecords(ctx, name, zoneID)
		if err != nil {
			logger.Warn().Err(err).Str("host", name).Msg("listing DNS records failed")
			continue
		}
		for _, rec := range records {
			if !strings.EqualFold(rec.Name, name) || (rec.Type != "A" && rec.Type != "CNAME") {
				continue
			}
			if err := o.dns.DeleteRecord(ctx, rec.ID, zoneID); err != nil {
				logger.Warn().Err(err).Str("host", name).Str("record_id", rec.ID).Msg("deleting DNS record failed")
				continue
			}
			logger.Info().Str("host", name).Str("type", rec.Type).Msg("deleted DNS record")
		}
	}
}
