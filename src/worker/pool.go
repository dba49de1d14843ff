package worker

import (
	"context"
	"runtime"
	"sync"

	"screen-region-select/src/logutil"
)

// Job is one unit of delivery work. It should honor ctx.
type Job func(ctx context.Context) error

// ResultCallback is invoked on job completion (from a worker goroutine).
// The event loop should pass a closure that posts back into the event loop safely.
type ResultCallback func(err error)

// Pool is a fixed-size worker pool with a bounded input queue (strict back-pressure).
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

type job struct {
	ctx  context.Context
	name string
	run  Job
	cb   ResultCallback
}

// New creates a worker pool. Size defaults to NumCPU when size<=0, queue to 1 slot when queue<=0.
func New(size, queue int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	if queue <= 0 {
		queue = 1
	}
	p := &Pool{jobs: make(chan job, queue)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				logutil.Debugf("Worker: starting %s", j.name)
				err := runWithContext(j.ctx, j.run)
				logutil.Debugf("Worker: %s completed, err=%v", j.name, err)
				if j.cb != nil {
					j.cb(err)
				}
			}
		}()
	}
}

// Submit enqueues a job if the queue has room. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, name string, run Job, cb ResultCallback) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.jobs <- job{ctx: ctx, name: name, run: run, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work. Safe to call twice.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

// runWithContext runs j and returns early with ctx.Err() when the deadline
// hits first. A job that ignores ctx keeps running in the background.
func runWithContext(ctx context.Context, j Job) error {
	if _, ok := ctx.Deadline(); !ok {
		return j(ctx)
	}
	resCh := make(chan error, 1)
	go func() { resCh <- j(ctx) }()
	select {
	case err := <-resCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
