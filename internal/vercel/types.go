package vercel

import "fmt"

// Project is a hosting project.
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Framework string `json:"framework,omitempty"`
}

// AddDomainResult reports whether the domain was already attached to the
// requested project.
type AddDomainResult struct {
	Name          string
	ProjectID     string
	AlreadyExists bool
	Verified      bool
}

// DomainStatus is the hosting-side view of a domain. OnProject is set when
// the domain is attached to the project the check was scoped to.
type DomainStatus struct {
	Exists     bool
	Configured bool
	OnProject  bool
	ProjectID  string
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type errorBody struct {
	Error *apiError `json:"error"`
}

type createProjectRequest struct {
	Name      string `json:"name"`
	Framework string `json:"framework,omitempty"`
}

type projectDomain struct {
	Name      string `json:"name"`
	ProjectID string `json:"projectId"`
	Verified  bool   `json:"verified"`
}

type domainConfig struct {
	Misconfigured bool `json:"misconfigured"`
}
