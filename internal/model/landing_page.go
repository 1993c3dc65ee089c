package model

import "time"

// LandingPage binds a subdomain label of a Domain to tenant content.
// An empty Subdomain is the root-domain binding of an externally-managed Domain.
type LandingPage struct {
	ID         string    `json:"id" db:"id"`
	DomainID   string    `json:"domain_id" db:"domain_id"`
	Subdomain  string    `json:"subdomain" db:"subdomain"`
	Name       string    `json:"name" db:"name"`
	Title      string    `json:"title" db:"title"`
	Body       string    `json:"body" db:"body"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
	DomainName string    `json:"domain_name,omitempty" db:"-"`
}

// Host returns the fully qualified host name served by the binding.
func (p *LandingPage) Host(domainName string) string {
	if p.Subdomain == "" {
		return domainName
	}
	return p.Subdomain + "." + domainName
}
