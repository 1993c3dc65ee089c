package request

// CreateLandingPage binds a subdomain of a registered domain to content.
// Subdomain is empty for the root binding of an externally-managed domain.
type CreateLandingPage struct {
	DomainID  string `json:"domainId" validate:"required"`
	Subdomain string `json:"subdomain" validate:"omitempty,label"`
	Name      string `json:"name" validate:"required,max=200"`
	Title     string `json:"title" validate:"max=200"`
	Body      string `json:"body" validate:"max=100000"`
}
