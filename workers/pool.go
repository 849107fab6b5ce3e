package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// DefaultEnqueueWait bounds how long Submit blocks on a full queue. It has to
// stay well under the platform's webhook response window.
const DefaultEnqueueWait = 2 * time.Second

// Pool runs webhook work off the request path on a fixed set of goroutines.
// Each task gets its own timeout context.
type Pool struct {
	size         int
	eventTimeout time.Duration
	enqueueWait  time.Duration
	logger       glog.Logger

	tasks   chan func(ctx context.Context)
	wg      sync.WaitGroup
	mu      sync.RWMutex
	started bool
	stopped bool
}

func NewPool(size, queueSize int, eventTimeout time.Duration, logger glog.Logger) *Pool {
	if size <= 0 {
		size = 4
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	if eventTimeout <= 0 {
		eventTimeout = 60 * time.Second
	}
	return &Pool{
		size:         size,
		eventTimeout: eventTimeout,
		enqueueWait:  DefaultEnqueueWait,
		logger:       glog.Ensure(logger),
		tasks:        make(chan func(ctx context.Context), queueSize),
	}
}

// SetEnqueueWait changes how long Submit waits for room in a full queue
// before running the task inline. Zero never waits.
func (p *Pool) SetEnqueueWait(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d < 0 {
		d = 0
	}
	p.enqueueWait = d
}

func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.loop()
	}
	p.logger.Info("worker pool started", "size", p.size, "queue", cap(p.tasks))
}

// Stop stops accepting work and waits for queued tasks to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// Submit queues task. A full queue is given up to the enqueue wait to drain.
// After that, or when the pool is not running, the task runs on the caller's
// goroutine so no event is lost. Inline runs hold the webhook response, and
// a platform redelivery they cause is absorbed by the recent-event cache.
func (p *Pool) Submit(task func(ctx context.Context)) {
	p.mu.RLock()
	if p.started && !p.stopped && p.enqueue(task) {
		p.mu.RUnlock()
		return
	}
	p.mu.RUnlock()

	p.logger.Warn("worker queue unavailable, running inline")
	p.run(task)
}

func (p *Pool) enqueue(task func(ctx context.Context)) bool {
	select {
	case p.tasks <- task:
		return true
	default:
	}
	if p.enqueueWait <= 0 {
		return false
	}
	timer := time.NewTimer(p.enqueueWait)
	defer timer.Stop()
	select {
	case p.tasks <- task:
		return true
	case <-timer.C:
		return false
	}
}

func (p *Pool) loop() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), p.eventTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker task panicked", "panic", fmt.Sprint(r))
		}
	}()
	task(ctx)
}
