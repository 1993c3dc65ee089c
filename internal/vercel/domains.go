package vercel

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

// Error codes returned when a domain cannot be added because it is in use.
var domainInUseCodes = map[string]bool{
	"domain_already_in_use": true,
	"domain_already_exists": true,
	"domain_taken":          true,
}

// AddDomain attaches domain to the project. Attaching a domain that already
// belongs to the project succeeds with AlreadyExists set; a domain owned by
// another project fails with ErrDomainConflict.
func (c *Client) AddDomain(ctx context.Context, domain, projectID string) (*AddDomainResult, error) {
	domain = strings.ToLower(domain)

	var pd projectDomain
	err := c.call(ctx, "add_domain", http.MethodPost, domainsPath(projectID),
		map[string]string{"name": domain}, &pd)
	if err == nil {
		return &AddDomainResult{Name: domain, ProjectID: projectID, Verified: pd.Verified}, nil
	}

	var pe *model.ProviderError
	if !errors.As(err, &pe) || (pe.StatusCode != http.StatusConflict && !domainInUseCodes[errorCode(err)]) {
		return nil, err
	}

	existing, getErr := c.getProjectDomain(ctx, domain, projectID)
	if getErr == nil && (existing.ProjectID == "" || existing.ProjectID == projectID) {
		return &AddDomainResult{Name: domain, ProjectID: projectID, AlreadyExists: true, Verified: existing.Verified}, nil
	}
	if getErr != nil && !errors.Is(getErr, model.ErrNotFound) {
		return nil, getErr
	}
	return nil, &model.ProviderError{
		Provider:   providerName,
		Op:         "add_domain",
		StatusCode: pe.StatusCode,
		Conflict:   true,
		Err:        ErrDomainConflict,
	}
}

// RemoveDomain detaches and removes domain. A missing domain is a success.
func (c *Client) RemoveDomain(ctx context.Context, domain string) error {
	err := c.call(ctx, "remove_domain", http.MethodDelete, "/v6/domains/"+url.PathEscape(strings.ToLower(domain)), nil, nil)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	return err
}

// CheckDomainStatus reports whether the domain is known to the platform and
// whether its DNS points at it. With a projectID the check also reports
// whether the domain is attached to that project.
func (c *Client) CheckDomainStatus(ctx context.Context, domain, projectID string) (*DomainStatus, error) {
	domain = strings.ToLower(domain)

	st := &DomainStatus{}
	if projectID != "" {
		pd, err := c.getProjectDomain(ctx, domain, projectID)
		switch {
		case err == nil:
			st.ProjectID = pd.ProjectID
			if st.ProjectID == "" {
				st.ProjectID = projectID
			}
			st.OnProject = st.ProjectID == projectID
		case !errors.Is(err, model.ErrNotFound):
			return nil, err
		}
	}

	if !st.OnProject {
		err := c.call(ctx, "get_domain", http.MethodGet, "/v5/domains/"+url.PathEscape(domain), nil, nil)
		if errors.Is(err, model.ErrNotFound) {
			return &DomainStatus{}, nil
		}
		if err != nil {
			return nil, err
		}
	}
	st.Exists = true

	var cfg domainConfig
	if err := c.call(ctx, "domain_config", http.MethodGet, "/v6/domains/"+url.PathEscape(domain)+"/config", nil, &cfg); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return st, nil
		}
		return nil, err
	}
	st.Configured = !cfg.Misconfigured
	return st, nil
}

func (c *Client) getProjectDomain(ctx context.Context, domain, projectID string) (*projectDomain, error) {
	var pd projectDomain
	if err := c.call(ctx, "get_project_domain", http.MethodGet,
		"/v9/projects/"+url.PathEscape(projectID)+"/domains/"+url.PathEscape(domain), nil, &pd); err != nil {
		return nil, err
	}
	return &pd, nil
}

func domainsPath(projectID string) string {
	return "/v10/projects/" + url.PathEscape(projectID) + "/domains"
}
