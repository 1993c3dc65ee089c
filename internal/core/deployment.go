package core

import (
	"context"
	"fmt"
	"time"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

type DeploymentService struct {
	db DB
}

func NewDeploymentService(db DB) *DeploymentService {
	return &DeploymentService{db: db}
}

const deploymentColumns = `id, domain_id, domain_name, host, hosting_project_id, status, error, started_at, completed_at`

func scanDeployment(row interface{ Scan(dest ...any) error }, r *model.DomainDeployment) error {
	return row.Scan(&r.ID, &r.DomainID, &r.DomainName, &r.Host, &r.HostingProjectID, &r.Status,
		&r.Error, &r.StartedAt, &r.CompletedAt)
}

func (s *DeploymentService) Create(ctx context.Context, r *model.DomainDeployment) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO domain_deployments (id, domain_id, domain_name, host, hosting_project_id, status, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.DomainID, r.DomainName, r.Host, r.HostingProjectID, r.Status, r.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert deployment %s: %w", r.ID, classify(err))
	}
	return nil
}

// GetByID returns the run together with its full log.
func (s *DeploymentService) GetByID(ctx context.Context, id string) (*model.DomainDeployment, error) {
	var r model.DomainDeployment
	err := scanDeployment(s.db.QueryRow(ctx,
		`SELECT `+deploymentColumns+` FROM domain_deployments WHERE id = $1`, id,
	), &r)
	if err != nil {
		return nil, fmt.Errorf("get deployment %s: %w", id, classify(err))
	}

	logs, err := s.Logs(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Logs = logs
	return &r, nil
}

func (s *DeploymentService) ListByDomain(ctx context.Context, domainID string) ([]model.DomainDeployment, error) {
	return s.list(ctx, "list deployments for domain "+domainID,
		`SELECT `+deploymentColumns+` FROM domain_deployments WHERE domain_id = $1 ORDER BY started_at DESC`, domainID)
}

// ListOpen returns runs that have not reached a terminal status.
func (s *DeploymentService) ListOpen(ctx context.Context) ([]model.DomainDeployment, error) {
	return s.list(ctx, "list open deployments",
		`SELECT `+deploymentColumns+` FROM domain_deployments WHERE status IN ($1, $2) ORDER BY started_at`,
		model.StatusPending, model.StatusDeploying)
}

func (s *DeploymentService) list(ctx context.Context, what, query string, args ...any) ([]model.DomainDeployment, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()

	var runs []model.DomainDeployment
	for rows.Next() {
		var r model.DomainDeployment
		if err := scanDeployment(rows, &r); err != nil {
			return nil, fmt.Errorf("scan deployment: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deployments: %w", err)
	}
	return runs, nil
}

// SetStatus moves a non-terminal run to a non-terminal status.
func (s *DeploymentService) SetStatus(ctx context.Context, id, status string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE domain_deployments SET status = $1 WHERE id = $2 AND status IN ($3, $4)`,
		status, id, model.StatusPending, model.StatusDeploying,
	)
	if err != nil {
		return fmt.Errorf("set deployment %s status to %s: %w", id, status, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deployment %s is not active: %w", id, model.ErrConflict)
	}
	return nil
}

func (s *DeploymentService) SetProject(ctx context.Context, id, projectID string) error {
	_, err := s.db.Exec(ctx,
		"UPDATE domain_deployments SET hosting_project_id = $1 WHERE id = $2",
		projectID, id,
	)
	if err != nil {
		return fmt.Errorf("set deployment %s hosting project: %w", id, err)
	}
	return nil
}

// Finish moves a run to a terminal status. Terminal runs are never touched again.
func (s *DeploymentService) Finish(ctx context.Context, id, status string, errMsg *string, at time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE domain_deployments SET status = $1, error = $2, completed_at = $3
		 WHERE id = $4 AND status IN ($5, $6)`,
		status, errMsg, at, id, model.StatusPending, model.StatusDeploying,
	)
	if err != nil {
		return fmt.Errorf("finish deployment %s as %s: %w", id, status, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deployment %s is already terminal: %w", id, model.ErrConflict)
	}
	return nil
}

func (s *DeploymentService) AppendLog(ctx context.Context, runID string, entry model.DeploymentLog) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO deployment_logs (deployment_id, seq, logged_at, level, message)
		 VALUES ($1, $2, $3, $4, $5)`,
		runID, entry.Seq, entry.Timestamp, entry.Level, entry.Message,
	)
	if err != nil {
		return fmt.Errorf("append log %d to deployment %s: %w", entry.Seq, runID, err)
	}
	return nil
}

func (s *DeploymentService) Logs(ctx context.Context, runID string) ([]model.DeploymentLog, error) {
	rows, err := s.db.Query(ctx,
		`SELECT seq, logged_at, level, message FROM deployment_logs WHERE deployment_id = $1 ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list logs for deployment %s: %w", runID, err)
	}
	defer rows.Close()

	var logs []model.DeploymentLog
	for rows.Next() {
		var l model.DeploymentLog
		if err := rows.Scan(&l.Seq, &l.Timestamp, &l.Level, &l.Message); err != nil {
			return nil, fmt.Errorf("scan deployment log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deployment logs: %w", err)
	}
	return logs, nil
}
