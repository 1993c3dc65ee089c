package deploy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

func entry(seq int) model.DeploymentLog {
	return model.DeploymentLog{Seq: seq, Timestamp: time.Unix(int64(seq), 0), Level: model.LogInfo, Message: "step"}
}

func drain(ch <-chan model.DeploymentLog) []int {
	var seqs []int
	for e := range ch {
		seqs = append(seqs, e.Seq)
	}
	return seqs
}

func TestBroker_FanOut(t *testing.T) {
	b := NewBroker(8)
	b.Open("run-1")

	a, _ := b.Subscribe("run-1")
	c, _ := b.Subscribe("run-1")
	assert.Equal(t, 2, b.Subscribers("run-1"))

	b.Publish("run-1", entry(1))
	b.Publish("run-1", entry(2))
	b.Close("run-1")

	assert.Equal(t, []int{1, 2}, drain(a))
	assert.Equal(t, []int{1, 2}, drain(c))
	assert.Zero(t, b.Subscribers("run-1"))
}

func TestBroker_SubscribeUnknownTopicIsClosed(t *testing.T) {
	b := NewBroker(4)

	ch, unsubscribe := b.Subscribe("missing")
	_, ok := <-ch
	assert.False(t, ok)
	unsubscribe()
}

func TestBroker_DropsLaggingSubscriber(t *testing.T) {
	b := NewBroker(2)
	b.Open("run-1")

	slow, _ := b.Subscribe("run-1")
	fast, unsubscribe := b.Subscribe("run-1")
	defer unsubscribe()

	b.Publish("run-1", entry(1))
	require.Equal(t, 1, (<-fast).Seq)
	b.Publish("run-1", entry(2))
	require.Equal(t, 2, (<-fast).Seq)
	b.Publish("run-1", entry(3))

	assert.Equal(t, []int{1, 2}, drain(slow))
	assert.Equal(t, 1, b.Subscribers("run-1"))
	assert.Equal(t, 3, (<-fast).Seq)
}

func TestBroker_CloseIsIdempotent(t *testing.T) {
	b := NewBroker(1)
	b.Open("run-1")
	ch, unsubscribe := b.Subscribe("run-1")

	b.Close("run-1")
	b.Close("run-1")
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)

	b.Publish("run-1", entry(1))
}

func TestBroker_UnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroker(4)
	b.Open("run-1")

	ch, unsubscribe := b.Subscribe("run-1")
	unsubscribe()
	unsubscribe()

	b.Publish("run-1", entry(1))
	assert.Empty(t, drain(ch))
	assert.Zero(t, b.Subscribers("run-1"))
}
