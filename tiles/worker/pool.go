// Package worker runs tile loads on a fixed number of goroutines.
package worker

import (
	"context"
	"sync"
	"time"
)

// DefaultTimeout bounds a single task.
const DefaultTimeout = 10 * time.Second

type Pool struct {
	tasks   chan Task
	quit    chan struct{}
	wg      sync.WaitGroup
	timeout time.Duration
	once    sync.Once
}

type Task struct {
	Ctx  context.Context
	Work func(ctx context.Context) error
	// Done, if set, receives the result of Work.
	Done func(err error)
}

// NewPool starts maxWorkers goroutines consuming up to queueSize pending tasks.
func NewPool(maxWorkers, queueSize int) *Pool {
	p := &Pool{
		tasks:   make(chan Task, max(queueSize, 1)),
		quit:    make(chan struct{}),
		timeout: DefaultTimeout,
	}
	for range max(maxWorkers, 1) {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case task := <-p.tasks:
			p.run(task)
		}
	}
}

func (p *Pool) run(task Task) {
	parent := task.Ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, p.timeout)
	defer cancel()

	var err error
	if ctx.Err() != nil {
		err = ctx.Err()
	} else {
		err = task.Work(ctx)
	}
	if task.Done != nil {
		task.Done(err)
	}
}

// Submit queues task without blocking. It reports false when the queue is
// full or the pool was shut down.
func (p *Pool) Submit(task Task) bool {
	select {
	case <-p.quit:
		return false
	default:
	}
	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

// Shutdown stops the workers after their current task. Queued tasks are dropped.
func (p *Pool) Shutdown() {
	p.once.Do(func() { close(p.quit) })
	p.wg.Wait()
}
