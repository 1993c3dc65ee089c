package core

import (
	"context"
	"fmt"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

type LandingPageService struct {
	db DB
}

func NewLandingPageService(db DB) *LandingPageService {
	return &LandingPageService{db: db}
}

const landingPageColumns = `lp.id, lp.domain_id, lp.subdomain, lp.name, lp.title, lp.body, lp.created_at, lp.updated_at, d.name`

func scanLandingPage(row interface{ Scan(dest ...any) error }, p *model.LandingPage) error {
	return row.Scan(&p.ID, &p.DomainID, &p.Subdomain, &p.Name, &p.Title, &p.Body,
		&p.CreatedAt, &p.UpdatedAt, &p.DomainName)
}

// Create inserts a binding for domain. The subdomain must be empty exactly
// when the domain is externally managed, and a root binding excludes every
// other binding on the same domain.
func (s *LandingPageService) Create(ctx context.Context, p *model.LandingPage, domain *model.Domain) error {
	if p.DomainID != domain.ID {
		return model.Validationf("landing page domain %s does not match %s", p.DomainID, domain.ID)
	}
	if domain.ProviderManaged() && p.Subdomain == "" {
		return model.Validationf("subdomain is required for provider-managed domain %s", domain.Name)
	}
	if !domain.ProviderManaged() && p.Subdomain != "" {
		return model.Validationf("externally-managed domain %s only supports a root landing page", domain.Name)
	}

	var root, total int
	err := s.db.QueryRow(ctx,
		`SELECT count(*) FILTER (WHERE subdomain = ''), count(*)
		 FROM landing_pages WHERE domain_id = $1`, domain.ID,
	).Scan(&root, &total)
	if err != nil {
		return fmt.Errorf("count landing pages for domain %s: %w", domain.ID, err)
	}
	if p.Subdomain == "" && total > 0 {
		return fmt.Errorf("domain %s already has a landing page: %w", domain.Name, model.ErrConflict)
	}
	if root > 0 {
		return fmt.Errorf("domain %s is bound to a root landing page: %w", domain.Name, model.ErrConflict)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO landing_pages (id, domain_id, subdomain, name, title, body, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.DomainID, p.Subdomain, p.Name, p.Title, p.Body, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert landing page %s: %w", p.Host(domain.Name), classify(err))
	}
	p.DomainName = domain.Name
	return nil
}

func (s *LandingPageService) GetByID(ctx context.Context, id string) (*model.LandingPage, error) {
	var p model.LandingPage
	err := scanLandingPage(s.db.QueryRow(ctx,
		`SELECT `+landingPageColumns+`
		 FROM landing_pages lp JOIN domains d ON d.id = lp.domain_id
		 WHERE lp.id = $1`, id,
	), &p)
	if err != nil {
		return nil, fmt.Errorf("get landing page %s: %w", id, classify(err))
	}
	return &p, nil
}

// GetBinding looks up the binding for a domain and subdomain label; an empty
// label selects the root binding.
func (s *LandingPageService) GetBinding(ctx context.Context, domainID, subdomain string) (*model.LandingPage, error) {
	var p model.LandingPage
	err := scanLandingPage(s.db.QueryRow(ctx,
		`SELECT `+landingPageColumns+`
		 FROM landing_pages lp JOIN domains d ON d.id = lp.domain_id
		 WHERE lp.domain_id = $1 AND lp.subdomain = $2`, domainID, subdomain,
	), &p)
	if err != nil {
		return nil, fmt.Errorf("get landing page %q on domain %s: %w", subdomain, domainID, classify(err))
	}
	return &p, nil
}

func (s *LandingPageService) ListByDomain(ctx context.Context, domainID string) ([]model.LandingPage, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+landingPageColumns+`
		 FROM landing_pages lp JOIN domains d ON d.id = lp.domain_id
		 WHERE lp.domain_id = $1 ORDER BY lp.subdomain`, domainID,
	)
	if err != nil {
		return nil, fmt.Errorf("list landing pages for domain %s: %w", domainID, err)
	}
	defer rows.Close()

	var pages []model.LandingPage
	for rows.Next() {
		var p model.LandingPage
		if err := scanLandingPage(rows, &p); err != nil {
			return nil, fmt.Errorf("scan landing page: %w", err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate landing pages: %w", err)
	}
	return pages, nil
}

func (s *LandingPageService) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM landing_pages WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete landing page %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete landing page %s: %w", id, model.ErrNotFound)
	}
	return nil
}
