package deploy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

var errCancelled = errors.New("deployment cancelled")

// run is the in-memory state of one executing deployment. Logs are written
// by the worker and by Cancel; mu orders them and closed stops them once the
// run is finished.
type run struct {
	id         string
	domain     *model.Domain
	subdomain  string
	host       string
	prevStatus string
	started    time.Time

	cancelled atomic.Bool

	mu     sync.Mutex
	seq    int
	last   time.Time
	closed bool

	runs   RunStore
	broker *Broker
	logger zerolog.Logger
	now    func() time.Time
}

// checkpoint is called between external calls.
func (r *run) checkpoint() error {
	if r.cancelled.Load() {
		return errCancelled
	}
	return nil
}

func (r *run) infof(format string, args ...any) { r.log(model.LogInfo, fmt.Sprintf(format, args...)) }
func (r *run) warnf(format string, args ...any) { r.log(model.LogWarning, fmt.Sprintf(format, args...)) }
func (r *run) errorf(format string, args ...any) { r.log(model.LogError, fmt.Sprintf(format, args...)) }

// log appends an entry with a strictly increasing timestamp, persists it
// and publishes it to stream subscribers while holding mu, so subscribers
// see entries in seq order. Entries logged after close are dropped.
func (r *run) log(level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		r.logger.Debug().Str("level", level).Str("entry", msg).Msg("dropping log for finished deployment")
		return
	}
	ts := r.now().UTC().Truncate(time.Microsecond)
	if !ts.After(r.last) {
		ts = r.last.Add(time.Microsecond)
	}
	r.last = ts
	r.seq++
	entry := model.DeploymentLog{Seq: r.seq, Timestamp: ts, Level: level, Message: msg}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.runs.AppendLog(ctx, r.id, entry); err != nil {
		r.logger.Error().Err(err).Int("seq", entry.Seq).Msg("failed to persist deployment log")
	}
	r.broker.Publish(r.id, entry)

	ev := r.logger.Info()
	switch level {
	case model.LogWarning:
		ev = r.logger.Warn()
	case model.LogError:
		ev = r.logger.Error()
	}
	ev.Int("seq", entry.Seq).Msg(msg)
}

// close marks the run finished. It waits for an in-flight log call.
func (r *run) close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}
