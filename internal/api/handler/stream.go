package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

// StreamEvent is one message of a deployment log stream. The final message
// has Complete set and carries the run's terminal status.
type StreamEvent struct {
	Output    string     `json:"output"`
	Level     string     `json:"level,omitempty"`
	Seq       int        `json:"seq,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Complete  bool       `json:"complete,omitempty"`
	Status    string     `json:"status,omitempty"`
}

func logEvent(l model.DeploymentLog) StreamEvent {
	ts := l.Timestamp
	return StreamEvent{
		Output:    fmt.Sprintf("[%s] %s", l.Level, l.Message),
		Level:     l.Level,
		Seq:       l.Seq,
		Timestamp: &ts,
	}
}

func completeEvent(run *model.DomainDeployment) StreamEvent {
	out := "deployment " + run.Status
	if run.Error != nil {
		out += ": " + *run.Error
	}
	return StreamEvent{Output: out, Complete: true, Status: run.Status}
}

// follower replays a run's persisted log and then forwards live entries
// until the run is terminal.
type follower struct {
	runs RunReader
	logs LogSubscriber
	poll time.Duration
}

// follow emits every entry of the run exactly once in seq order, then the
// completion event. Each pass subscribes before reading the snapshot so no
// entry falls between the two. A closed subscription starts a new pass,
// after the poll interval when nothing arrived on it.
func (f follower) follow(ctx context.Context, runID string, emit func(StreamEvent) error) error {
	last := 0
	for {
		ch, unsubscribe := f.logs.Subscribe(runID)

		run, err := f.runs.GetByID(ctx, runID)
		if err != nil {
			unsubscribe()
			return err
		}
		for _, l := range run.Logs {
			if l.Seq <= last {
				continue
			}
			if err := emit(logEvent(l)); err != nil {
				unsubscribe()
				return err
			}
			last = l.Seq
		}
		if model.IsTerminal(run.Status) {
			unsubscribe()
			return emit(completeEvent(run))
		}

		received, err := f.forward(ctx, ch, &last, emit)
		unsubscribe()
		if err != nil {
			return err
		}
		if !received {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(f.poll):
			}
		}
	}
}

func (f follower) forward(ctx context.Context, ch <-chan model.DeploymentLog, last *int, emit func(StreamEvent) error) (bool, error) {
	received := false
	for {
		select {
		case <-ctx.Done():
			return received, ctx.Err()
		case l, ok := <-ch:
			if !ok {
				return received, nil
			}
			received = true
			if l.Seq <= *last {
				continue
			}
			if err := emit(logEvent(l)); err != nil {
				return received, err
			}
			*last = l.Seq
		}
	}
}
