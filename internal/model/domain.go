package model

import "time"

type Domain struct {
	ID                 string     `json:"id" db:"id"`
	Name               string     `json:"name" db:"name"`
	ZoneID             *string    `json:"zone_id,omitempty" db:"zone_id"`
	NameServers        []string   `json:"nameservers" db:"nameservers"`
	DNSManagement      string     `json:"dns_management" db:"dns_management"`
	VerificationStatus string     `json:"verification_status" db:"verification_status"`
	CNAMETarget        *string    `json:"cname_target,omitempty" db:"cname_target"`
	HostingProjectID   *string    `json:"hosting_project_id,omitempty" db:"hosting_project_id"`
	DeploymentStatus   string     `json:"deployment_status" db:"deployment_status"`
	LastDeployedAt     *time.Time `json:"last_deployed_at,omitempty" db:"last_deployed_at"`
	DeploymentURL      *string    `json:"deployment_url,omitempty" db:"deployment_url"`
	BanCount           int        `json:"ban_count" db:"ban_count"`
	ActiveRunID        *string    `json:"active_run_id,omitempty" db:"active_run_id"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// ProviderManaged reports whether the DNS zone for the domain lives at the DNS provider.
func (d *Domain) ProviderManaged() bool {
	return d.DNSManagement == DNSManagedByProvider
}

// ZoneIDValue returns the zone id or "" when none is recorded.
func (d *Domain) ZoneIDValue() string {
	if d.ZoneID == nil {
		return ""
	}
	return *d.ZoneID
}

// ProjectIDValue returns the hosting project id or "" when none is recorded.
func (d *Domain) ProjectIDValue() string {
	if d.HostingProjectID == nil {
		return ""
	}
	return *d.HostingProjectID
}
