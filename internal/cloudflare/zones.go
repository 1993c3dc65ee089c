package cloudflare

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

// CreateZone creates a full-setup zone for name. When the zone already
// exists the existing zone is returned.
func (c *Client) CreateZone(ctx context.Context, name string) (*Zone, error) {
	name = strings.ToLower(strings.TrimSuffix(name, "."))

	if z, err := c.findZone(ctx, name); err != nil {
		return nil, err
	} else if z != nil {
		return z, nil
	}

	var z Zone
	err := c.call(ctx, "create_zone", http.MethodPost, "/zones", nil, createZoneRequest{
		Name:    name,
		Account: accountRef{ID: c.accountID},
		Type:    "full",
	}, &z)
	if err != nil {
		if apiErrorsOf(err).has(codeZoneAlreadyExists) {
			existing, findErr := c.findZone(ctx, name)
			if findErr != nil {
				return nil, findErr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return &z, nil
}

// GetZoneStatus returns the activation state of a zone by id.
func (c *Client) GetZoneStatus(ctx context.Context, zoneID string) (*ZoneStatus, error) {
	var z Zone
	err := c.call(ctx, "get_zone", http.MethodGet, "/zones/"+url.PathEscape(zoneID), nil, nil, &z)
	if errors.Is(err, model.ErrNotFound) {
		return &ZoneStatus{ID: zoneID, Found: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return statusOf(&z), nil
}

// GetZoneStatusByName looks the zone up by domain name.
func (c *Client) GetZoneStatusByName(ctx context.Context, name string) (*ZoneStatus, error) {
	z, err := c.findZone(ctx, strings.ToLower(strings.TrimSuffix(name, ".")))
	if err != nil {
		return nil, err
	}
	if z == nil {
		return &ZoneStatus{Name: name, Found: false}, nil
	}
	return statusOf(z), nil
}

func (c *Client) findZone(ctx context.Context, name string) (*Zone, error) {
	var zones []Zone
	q := url.Values{"name": {name}}
	if c.accountID != "" {
		q.Set("account.id", c.accountID)
	}
	err := c.call(ctx, "find_zone", http.MethodGet, "/zones", q, nil, &zones)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find zone %s: %w", name, err)
	}
	for i := range zones {
		if strings.EqualFold(zones[i].Name, name) {
			return &zones[i], nil
		}
	}
	return nil, nil
}

func statusOf(z *Zone) *ZoneStatus {
	return &ZoneStatus{
		ID:          z.ID,
		Name:        z.Name,
		Status:      z.Status,
		Active:      z.Status == "active",
		Found:       true,
		NameServers: z.NameServers,
	}
}
