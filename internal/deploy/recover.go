package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

const interruptedMessage = "deployment interrupted by service restart"

// Recover fails every run left non-terminal by a previous process and
// clears its domain's active-run marker. It must run before the pool
// accepts new work.
func (o *Orchestrator) Recover(ctx context.Context) (int, error) {
	open, err := o.runs.ListOpen(ctx)
	if err != nil {
		return 0, fmt.Errorf("recover deployments: %w", err)
	}

	for _, rec := range open {
		full, err := o.runs.GetByID(ctx, rec.ID)
		if err != nil {
			return 0, fmt.Errorf("recover deployment %s: %w", rec.ID, err)
		}

		at := o.now().UTC().Truncate(time.Microsecond)
		seq := len(full.Logs) + 1
		if n := len(full.Logs); n > 0 {
			seq = full.Logs[n-1].Seq + 1
			if !at.After(full.Logs[n-1].Timestamp) {
				at = full.Logs[n-1].Timestamp.Add(time.Microsecond)
			}
		}
		entry := model.DeploymentLog{Seq: seq, Timestamp: at, Level: model.LogError, Message: interruptedMessage}
		if err := o.runs.AppendLog(ctx, rec.ID, entry); err != nil {
			return 0, fmt.Errorf("recover deployment %s: %w", rec.ID, err)
		}

		msg := interruptedMessage
		if err := o.runs.Finish(ctx, rec.ID, model.StatusFailed, &msg, at); err != nil {
			return 0, fmt.Errorf("recover deployment %s: %w", rec.ID, err)
		}
		if err := o.domains.SetDeploymentStatus(ctx, rec.DomainID, model.StatusFailed); err != nil {
			return 0, fmt.Errorf("recover deployment %s: %w", rec.ID, err)
		}
		if err := o.domains.ReleaseRun(ctx, rec.DomainID, rec.ID); err != nil {
			return 0, fmt.Errorf("recover deployment %s: %w", rec.ID, err)
		}
		o.logger.Warn().Str("run_id", rec.ID).Str("domain", rec.DomainName).Msg(interruptedMessage)
	}
	return len(open), nil
}
