package vercel

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

// CreateProject creates a project. A name conflict returns the existing
// project with that name.
func (c *Client) CreateProject(ctx context.Context, name, framework string) (*Project, error) {
	var p Project
	err := c.call(ctx, "create_project", http.MethodPost, "/v10/projects",
		createProjectRequest{Name: name, Framework: framework}, &p)
	if err == nil {
		return &p, nil
	}

	var pe *model.ProviderError
	if errors.As(err, &pe) && pe.StatusCode == http.StatusConflict {
		if existing, getErr := c.GetProject(ctx, name); getErr == nil {
			return existing, nil
		}
	}
	return nil, err
}

// GetProject fetches a project by id or name.
func (c *Client) GetProject(ctx context.Context, idOrName string) (*Project, error) {
	var p Project
	if err := c.call(ctx, "get_project", http.MethodGet, "/v9/projects/"+url.PathEscape(idOrName), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
