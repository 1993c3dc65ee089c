package deploy

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

func newTestRun(t *testing.T, runs *fakeRuns, broker *Broker) *run {
	t.Helper()
	require.NoError(t, runs.Create(context.Background(), &model.DomainDeployment{ID: "run-1", Status: model.StatusDeploying}))
	broker.Open("run-1")
	return &run{id: "run-1", runs: runs, broker: broker, logger: zerolog.Nop(), now: time.Now}
}

func TestRunLog_PublishesInSeqOrderUnderConcurrentWriters(t *testing.T) {
	runs := newFakeRuns()
	broker := NewBroker(16)
	r := newTestRun(t, runs, broker)
	ch, unsubscribe := broker.Subscribe("run-1")
	defer unsubscribe()

	firstPersisting := make(chan struct{})
	runs.onAppend = func(e model.DeploymentLog) {
		if e.Seq == 1 {
			close(firstPersisting)
			time.Sleep(30 * time.Millisecond)
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.infof("creating hosting project")
	}()
	<-firstPersisting
	go func() {
		defer wg.Done()
		r.warnf("cancellation requested")
	}()
	wg.Wait()

	var published []int
	for range 2 {
		select {
		case e := <-ch:
			published = append(published, e.Seq)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for log entries")
		}
	}
	assert.Equal(t, []int{1, 2}, published)

	rec, err := runs.GetByID(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, rec.Logs, 2)
	assert.Equal(t, 1, rec.Logs[0].Seq)
	assert.Equal(t, 2, rec.Logs[1].Seq)
	assert.True(t, rec.Logs[1].Timestamp.After(rec.Logs[0].Timestamp))
}

func TestRunLog_DroppedAfterClose(t *testing.T) {
	runs := newFakeRuns()
	broker := NewBroker(16)
	r := newTestRun(t, runs, broker)
	ch, unsubscribe := broker.Subscribe("run-1")
	defer unsubscribe()

	r.errorf("deployment failed")
	r.close()
	r.warnf("cancellation requested")

	rec, err := runs.GetByID(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, rec.Logs, 1)
	assert.Equal(t, "deployment failed", rec.Logs[0].Message)

	e := <-ch
	assert.Equal(t, 1, e.Seq)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected entry after close: %+v", extra)
	default:
	}
}
