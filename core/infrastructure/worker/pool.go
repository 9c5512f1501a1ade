package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/carlosrabelo/mirante/core/domain/entities"
)

// Task is one blocking execution producing a query result
type Task func(ctx context.Context) entities.Result

type job struct {
	ctx    context.Context
	task   Task
	result chan entities.Result
}

// Pool runs blocking interactive executions on a fixed set of workers so
// they cannot stall concurrent non-blocking work. Results come back on a
// per-submission channel, giving every transport the same awaitable contract.
type Pool struct {
	jobs    chan job
	workers int

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewPool creates a pool with the given worker count and queue size
func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers
	}
	return &Pool{
		jobs:    make(chan job, queueSize),
		workers: workers,
	}
}

// Start launches the worker goroutines
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.worker()
		}
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		select {
		case <-j.ctx.Done():
			// caller gave up while the job sat in the queue
		default:
			j.result <- j.task(j.ctx)
		}
		close(j.result)
	}
}

// Submit queues one task and returns the channel its result arrives on.
// The channel is closed without a value if the context is already done by
// the time a worker picks the task up.
func (p *Pool) Submit(ctx context.Context, task Task) (<-chan entities.Result, error) {
	result := make(chan entities.Result, 1)
	select {
	case p.jobs <- job{ctx: ctx, task: task, result: result}:
		return result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return nil, fmt.Errorf("worker queue is full")
	}
}

// Stop drains the queue and waits for in-flight tasks to finish
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.jobs)
		p.wg.Wait()
	})
}
