package repair

import (
	"context"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/cloudflare"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

// Verification is the outcome of a verification check.
type Verification struct {
	DomainID string `json:"domainId"`
	Domain   string `json:"domain"`
	Status   string `json:"verificationStatus"`
	Detail   string `json:"detail"`
}

// Verify derives the domain's verification status from live provider state
// and records it. Provider failures produce the error status rather than an
// error return.
func (s *Service) Verify(ctx context.Context, domainID string) (*Verification, error) {
	d, err := s.domains.GetByID(ctx, domainID)
	if err != nil {
		return nil, err
	}

	var status, detail string
	if d.ProviderManaged() {
		status, detail = s.verifyZone(ctx, d)
	} else {
		status, detail = s.verifyExternal(ctx, d)
	}

	if err := s.domains.SetVerificationStatus(ctx, d.ID, status); err != nil {
		return nil, err
	}
	s.logger.Info().Str("domain", d.Name).Str("verification_status", status).Msg("domain verified")
	return &Verification{DomainID: d.ID, Domain: d.Name, Status: status, Detail: detail}, nil
}

func (s *Service) verifyZone(ctx context.Context, d *model.Domain) (string, string) {
	var (
		zone *cloudflare.ZoneStatus
		err  error
	)
	if id := d.ZoneIDValue(); id != "" {
		zone, err = s.dns.GetZoneStatus(ctx, id)
	} else {
		zone, err = s.dns.GetZoneStatusByName(ctx, d.Name)
	}
	switch {
	case err != nil:
		return model.VerificationError, "DNS provider check failed: " + err.Error()
	case !zone.Found:
		return model.VerificationInactive, "no DNS zone exists at the provider"
	case zone.Active:
		return model.VerificationActive, "DNS zone is active"
	default:
		return model.VerificationPending, "DNS zone status is " + zone.Status
	}
}

func (s *Service) verifyExternal(ctx context.Context, d *model.Domain) (string, string) {
	st, err := s.hosting.CheckDomainStatus(ctx, d.Name, d.ProjectIDValue())
	switch {
	case err != nil:
		return model.VerificationError, "hosting provider check failed: " + err.Error()
	case !st.Exists:
		return model.VerificationInactive, d.Name + " is not attached to a hosting project"
	case d.ProjectIDValue() != "" && !st.OnProject:
		return model.VerificationInactive, d.Name + " is attached to another hosting project"
	case st.Configured:
		return model.VerificationActive, d.Name + " points at the hosting provider"
	default:
		return model.VerificationPending, d.Name + " is attached but its DNS records are not in place yet"
	}
}
