// Package worker runs tile loads on a bounded set of goroutines.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultQueueSize = 256
	DefaultTimeout   = 10 * time.Second
)

var ErrQueueFull = errors.New("worker: queue full")
var ErrClosed = errors.New("worker: pool shut down")

type Pool struct {
	tasks   chan Task
	quit    chan struct{}
	group   errgroup.Group
	timeout time.Duration
	log     *slog.Logger

	closeOnce sync.Once
}

type Task struct {
	Ctx  context.Context
	Name string
	Work func(ctx context.Context) error
}

func NewPool(maxWorkers int, log *slog.Logger) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if log == nil {
		log = slog.Default()
	}
	p := &Pool{
		tasks:   make(chan Task, DefaultQueueSize),
		quit:    make(chan struct{}),
		timeout: DefaultTimeout,
		log:     log,
	}
	p.group.SetLimit(maxWorkers)
	for range maxWorkers {
		p.group.Go(p.worker)
	}
	return p
}

func (p *Pool) worker() error {
	for {
		select {
		case <-p.quit:
			return nil
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
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, p.timeout)
	defer cancel()
	if err := task.Work(ctx); err != nil {
		p.log.Warn("task failed", "task", task.Name, "error", err)
	}
}

// Submit queues task without blocking.
func (p *Pool) Submit(task Task) error {
	select {
	case <-p.quit:
		return ErrClosed
	default:
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops the workers and waits for running tasks. Queued tasks are
// dropped.
func (p *Pool) Shutdown() {
	p.closeOnce.Do(func() { close(p.quit) })
	_ = p.group.Wait()
}
