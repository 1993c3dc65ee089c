package model

import "time"

// DomainDeployment is one provisioning attempt for a Domain.
type DomainDeployment struct {
	ID               string          `json:"id" db:"id"`
	DomainID         string          `json:"domain_id" db:"domain_id"`
	DomainName       string          `json:"domain_name" db:"domain_name"`
	Host             string          `json:"host" db:"host"`
	HostingProjectID *string         `json:"hosting_project_id,omitempty" db:"hosting_project_id"`
	Status           string          `json:"status" db:"status"`
	Error            *string         `json:"error,omitempty" db:"error"`
	StartedAt        time.Time       `json:"started_at" db:"started_at"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	Logs             []DeploymentLog `json:"logs,omitempty" db:"-"`
}

// DeploymentLog is a single append-only log line of a run.
type DeploymentLog struct {
	Seq       int       `json:"seq" db:"seq"`
	Timestamp time.Time `json:"timestamp" db:"logged_at"`
	Level     string    `json:"level" db:"level"`
	Message   string    `json:"message" db:"message"`
}
