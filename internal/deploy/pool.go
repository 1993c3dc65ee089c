package deploy

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrPoolFull   = errors.New("deployment queue is full")
	ErrPoolClosed = errors.New("deployment queue is shut down")
)

// Task is a unit of background work owned by the pool.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// TaskError is reported on the pool's error channel when a task fails or panics.
type TaskError struct {
	Task  string
	Err   error
	Panic bool
	Stack []byte
}

func (e TaskError) Error() string {
	return fmt.Sprintf("task %s: %v", e.Task, e.Err)
}

// Pool runs submitted tasks on a fixed set of workers. A supervisor
// goroutine drains the error channel so task failures and panics are
// always logged.
type Pool struct {
	logger zerolog.Logger
	tasks  chan Task
	errs   chan TaskError

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool

	workers    sync.WaitGroup
	supervisor sync.WaitGroup
	onError    func(TaskError)
}

func NewPool(workers, queueSize int, logger zerolog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		logger: logger.With().Str("component", "deploy-pool").Logger(),
		tasks:  make(chan Task, queueSize),
		errs:   make(chan TaskError, workers),
		ctx:    ctx,
		cancel: cancel,
	}

	p.supervisor.Add(1)
	go p.supervise()

	for i := 0; i < workers; i++ {
		p.workers.Add(1)
		go p.work()
	}
	return p
}

// OnError registers a hook called by the supervisor for every task error.
// It must be set before tasks are submitted.
func (p *Pool) OnError(fn func(TaskError)) {
	p.onError = fn
}

// Submit enqueues t without blocking. It returns once the task is queued.
func (p *Pool) Submit(t Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- t:
		poolQueueDepth.Inc()
		return nil
	default:
		return ErrPoolFull
	}
}

// Shutdown stops accepting tasks and waits for queued tasks to finish. When
// ctx expires first, running tasks see their context cancelled and Shutdown
// still waits for them to return.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.workers.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
		p.cancel()
		<-done
	}
	p.cancel()

	close(p.errs)
	p.supervisor.Wait()
	return err
}

func (p *Pool) work() {
	defer p.workers.Done()
	for t := range p.tasks {
		poolQueueDepth.Dec()
		p.run(t)
	}
}

func (p *Pool) run(t Task) {
	defer func() {
		if r := recover(); r != nil {
			p.errs <- TaskError{Task: t.Name, Err: fmt.Errorf("panic: %v", r), Panic: true, Stack: debug.Stack()}
		}
	}()
	if err := t.Run(p.ctx); err != nil {
		p.errs <- TaskError{Task: t.Name, Err: err}
	}
}

func (p *Pool) supervise() {
	defer p.supervisor.Done()
	for e := range p.errs {
		if e.Panic {
			poolTaskFailures.WithLabelValues("panic").Inc()
			p.logger.Error().Str("task", e.Task).Err(e.Err).Bytes("stack", e.Stack).Msg("task panicked")
		} else {
			poolTaskFailures.WithLabelValues("error").Inc()
			p.logger.Error().Str("task", e.Task).Err(e.Err).Msg("task failed")
		}
		if p.onError != nil {
			p.onError(e)
		}
	}
}
