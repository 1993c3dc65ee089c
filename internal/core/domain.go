package core

import (
	"context"
	"fmt"
	"time"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

type DomainService struct {
	db DB
}

func NewDomainService(db DB) *DomainService {
	return &DomainService{db: db}
}

const domainColumns = `id, name, zone_id, nameservers, dns_management, verification_status, cname_target,
	hosting_project_id, deployment_status, last_deployed_at, deployment_url, ban_count, active_run_id,
	created_at, updated_at`

func scanDomain(row interface{ Scan(dest ...any) error }, d *model.Domain) error {
	return row.Scan(&d.ID, &d.Name, &d.ZoneID, &d.NameServers, &d.DNSManagement, &d.VerificationStatus,
		&d.CNAMETarget, &d.HostingProjectID, &d.DeploymentStatus, &d.LastDeployedAt, &d.DeploymentURL,
		&d.BanCount, &d.ActiveRunID, &d.CreatedAt, &d.UpdatedAt)
}

func (s *DomainService) Create(ctx context.Context, d *model.Domain) error {
	if d.NameServers == nil {
		d.NameServers = []string{}
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO domains (id, name, dns_management, verification_status, deployment_status, nameservers, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.Name, d.DNSManagement, d.VerificationStatus, d.DeploymentStatus, d.NameServers,
		d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert domain %s: %w", d.Name, classify(err))
	}
	return nil
}

func (s *DomainService) GetByID(ctx context.Context, id string) (*model.Domain, error) {
	var d model.Domain
	err := scanDomain(s.db.QueryRow(ctx, `SELECT `+domainColumns+` FROM domains WHERE id = $1`, id), &d)
	if err != nil {
		return nil, fmt.Errorf("get domain %s: %w", id, classify(err))
	}
	return &d, nil
}

func (s *DomainService) GetByName(ctx context.Context, name string) (*model.Domain, error) {
	var d model.Domain
	err := scanDomain(s.db.QueryRow(ctx, `SELECT `+domainColumns+` FROM domains WHERE lower(name) = lower($1)`, name), &d)
	if err != nil {
		return nil, fmt.Errorf("get domain by name %s: %w", name, classify(err))
	}
	return &d, nil
}

func (s *DomainService) List(ctx context.Context) ([]model.Domain, error) {
	rows, err := s.db.Query(ctx, `SELECT `+domainColumns+` FROM domains ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	defer rows.Close()

	var domains []model.Domain
	for rows.Next() {
		var d model.Domain
		if err := scanDomain(rows, &d); err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		domains = append(domains, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate domains: %w", err)
	}
	return domains, nil
}

// AcquireRun atomically sets the active-run marker. It fails with
// model.ErrConflict when another run already holds it.
func (s *DomainService) AcquireRun(ctx context.Context, domainID, runID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE domains SET active_run_id = $1, updated_at = now()
		 WHERE id = $2 AND active_run_id IS NULL`,
		runID, domainID,
	)
	if err != nil {
		return fmt.Errorf("acquire run marker for domain %s: %w", domainID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetByID(ctx, domainID); err != nil {
			return err
		}
		return fmt.Errorf("domain %s already has an active deployment: %w", domainID, model.ErrConflict)
	}
	return nil
}

// ReleaseRun clears the marker only if it is still held by runID.
func (s *DomainService) ReleaseRun(ctx context.Context, domainID, runID string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE domains SET active_run_id = NULL, updated_at = now()
		 WHERE id = $1 AND active_run_id = $2`,
		domainID, runID,
	)
	if err != nil {
		return fmt.Errorf("release run marker for domain %s: %w", domainID, err)
	}
	return nil
}

func (s *DomainService) SetDeploymentStatus(ctx context.Context, id, status string) error {
	_, err := s.db.Exec(ctx,
		"UPDATE domains SET deployment_status = $1, updated_at = now() WHERE id = $2",
		status, id,
	)
	if err != nil {
		return fmt.Errorf("set domain %s deployment status to %s: %w", id, status, err)
	}
	return nil
}

func (s *DomainService) MarkDeployed(ctx context.Context, id, url string, at time.Time) error {
	_, err := s.db.Exec(ctx,
		`UPDATE domains SET deployment_status = $1, deployment_url = $2, last_deployed_at = $3, updated_at = now()
		 WHERE id = $4`,
		model.StatusDeployed, url, at, id,
	)
	if err != nil {
		return fmt.Errorf("mark domain %s deployed: %w", id, err)
	}
	return nil
}

func (s *DomainService) SetHostingProject(ctx context.Context, id, projectID string) error {
	_, err := s.db.Exec(ctx,
		"UPDATE domains SET hosting_project_id = $1, updated_at = now() WHERE id = $2",
		projectID, id,
	)
	if err != nil {
		return fmt.Errorf("set domain %s hosting project: %w", id, err)
	}
	return nil
}

func (s *DomainService) UpdateZone(ctx context.Context, id, zoneID string, nameservers []string) error {
	if nameservers == nil {
		nameservers = []string{}
	}
	_, err := s.db.Exec(ctx,
		"UPDATE domains SET zone_id = $1, nameservers = $2, updated_at = now() WHERE id = $3",
		zoneID, nameservers, id,
	)
	if err != nil {
		return fmt.Errorf("update domain %s zone: %w", id, err)
	}
	return nil
}

func (s *DomainService) SetVerificationStatus(ctx context.Context, id, status string) error {
	_, err := s.db.Exec(ctx,
		"UPDATE domains SET verification_status = $1, updated_at = now() WHERE id = $2",
		status, id,
	)
	if err != nil {
		return fmt.Errorf("set domain %s verification status to %s: %w", id, status, err)
	}
	return nil
}

func (s *DomainService) SetDNSManagement(ctx context.Context, id, mode string) error {
	_, err := s.db.Exec(ctx,
		"UPDATE domains SET dns_management = $1, updated_at = now() WHERE id = $2",
		mode, id,
	)
	if err != nil {
		return fmt.Errorf("set domain %s dns management to %s: %w", id, mode, err)
	}
	return nil
}

func (s *DomainService) SetCNAMETarget(ctx context.Context, id, target string) error {
	_, err := s.db.Exec(ctx,
		"UPDATE domains SET cname_target = $1, updated_at = now() WHERE id = $2",
		target, id,
	)
	if err != nil {
		return fmt.Errorf("set domain %s cname target: %w", id, err)
	}
	return nil
}

// IncrementBanCount bumps the abuse counter and returns the new value.
func (s *DomainService) IncrementBanCount(ctx context.Context, id string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		"UPDATE domains SET ban_count = ban_count + 1, updated_at = now() WHERE id = $1 RETURNING ban_count",
		id,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment ban count for domain %s: %w", id, classify(err))
	}
	return count, nil
}

// Delete removes the domain. Bindings are removed with it only when
// cascade is set; otherwise any remaining binding makes this a conflict.
func (s *DomainService) Delete(ctx context.Context, id string, cascade bool) error {
	if !cascade {
		var bindings int
		if err := s.db.QueryRow(ctx,
			"SELECT count(*) FROM landing_pages WHERE domain_id = $1", id,
		).Scan(&bindings); err != nil {
			return fmt.Errorf("count landing pages for domain %s: %w", id, err)
		}
		if bindings > 0 {
			return fmt.Errorf("domain %s still has %d landing page(s): %w", id, bindings, model.ErrConflict)
		}
	}

	tag, err := s.db.Exec(ctx, "DELETE FROM domains WHERE id = $1 AND active_run_id IS NULL", id)
	if err != nil {
		return fmt.Errorf("delete domain %s: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var runID *string
	if err := s.db.QueryRow(ctx, "SELECT active_run_id FROM domains WHERE id = $1", id).Scan(&runID); err != nil {
		return fmt.Errorf("delete domain %s: %w", id, classify(err))
	}
	if runID == nil {
		return fmt.Errorf("delete domain %s: changed concurrently: %w", id, model.ErrConflict)
	}
	return fmt.Errorf("delete domain %s: deployment %s in progress: %w", id, *runID, model.ErrConflict)
}

// CountBindings returns how many landing pages bind the domain root and how
// many bind a subdomain.
func (s *DomainService) CountBindings(ctx context.Context, id string) (root, sub int, err error) {
	err = s.db.QueryRow(ctx,
		"SELECT count(*) FILTER (WHERE subdomain = ''), count(*) FILTER (WHERE subdomain <> '') FROM landing_pages WHERE domain_id = $1",
		id,
	).Scan(&root, &sub)
	if err != nil {
		return 0, 0, fmt.Errorf("count landing pages for domain %s: %w", id, err)
	}
	return root, sub, nil
}
