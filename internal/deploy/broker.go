package deploy

import (
	"sync"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

// Broker fans run log entries out to stream subscribers. Each run has a
// topic that the orchestrator opens when the run starts and closes exactly
// once when the run reaches a terminal status.
type Broker struct {
	mu     sync.Mutex
	topics map[string]*topic
	buffer int
}

type topic struct {
	subs map[int]chan model.DeploymentLog
	next int
}

func NewBroker(buffer int) *Broker {
	if buffer < 1 {
		buffer = 1
	}
	return &Broker{topics: make(map[string]*topic), buffer: buffer}
}

// Open creates the topic for a run. Opening an open topic is a no-op.
func (b *Broker) Open(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.topics[runID]; !ok {
		b.topics[runID] = &topic{subs: make(map[int]chan model.DeploymentLog)}
	}
}

// Subscribe returns a channel of entries published after the call and a
// function that ends the subscription. For a run without an open topic
// the channel is already closed.
func (b *Broker) Subscribe(runID string) (<-chan model.DeploymentLog, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan model.DeploymentLog, b.buffer)
	t, ok := b.topics[runID]
	if !ok {
		close(ch)
		return ch, func() {}
	}

	id := t.next
	t.next++
	t.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if t, ok := b.topics[runID]; ok {
			if c, ok := t.subs[id]; ok {
				delete(t.subs, id)
				close(c)
			}
		}
	}
}

// Publish delivers entry without blocking. A subscriber whose buffer is
// full is dropped and its channel closed.
func (b *Broker) Publish(runID string, entry model.DeploymentLog) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[runID]
	if !ok {
		return
	}
	for id, ch := range t.subs {
		select {
		case ch <- entry:
		default:
			delete(t.subs, id)
			close(ch)
			brokerDroppedSubscribers.Inc()
		}
	}
}

// Close ends the topic and closes every subscriber channel.
func (b *Broker) Close(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[runID]
	if !ok {
		return
	}
	delete(b.topics, runID)
	for id, ch := range t.subs {
		delete(t.subs, id)
		close(ch)
	}
}

// Subscribers returns the number of live subscriptions for a run.
func (b *Broker) Subscribers(runID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.topics[runID]; ok {
		return len(t.subs)
	}
	return 0
}
