// Package worker runs formation tasks on a fixed set of goroutines fed by a
// queue. Every submitted task resolves through a one-shot future channel.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/teammate/internal/adapters/mq/queue"
	"github.com/okian/teammate/pkg/logger"
	"github.com/okian/teammate/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Task is the work a worker executes.
type Task func(ctx context.Context) error

// Queue defines how the pool hands jobs to its workers.
type Queue interface {
	Enqueue(ctx context.Context, job queue.Job) error
	Dequeue() <-chan queue.Job
	Close() error
}

// Worker processes jobs until its queue drains or it is told to stop.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining the queue.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue  Queue
	name   string
	active *atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		name:     "worker",
		active:   &atomic.Int64{},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue()
	for {
		// A cancelled context wins over jobs still waiting in the queue.
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(job)
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(job queue.Job) {
	start := time.Now()
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	err := w.run(job)
	metrics.RecordWorkerTaskProcessed()
	if err != nil {
		metrics.RecordWorkerError()
		w.logger.Debug(job.Ctx, "task failed", logger.Error(err))
	}
	if job.Done != nil {
		job.Done <- err
	}
}

func (w *InMemoryWorker) run(job queue.Job) (err error) {
	if job.Ctx == nil {
		job.Ctx = context.Background()
	}
	// Dropped jobs never run; their caller has already given up.
	if err := job.Ctx.Err(); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			metrics.RecordWorkerPanic()
			metrics.RecordErrorByComponent("worker", "panic")
			w.logger.Error(job.Ctx, "task panicked", logger.Any("panic", r))
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return job.Run(job.Ctx)
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	mu      sync.Mutex
	started bool
	stopped atomic.Bool
	closing chan struct{}

	logger logger.Logger
}

// NewPool creates a new worker pool. A workerCount below 1 means one worker
// per CPU.
func NewPool(workerCount int, q Queue, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		closing: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(pool)
	}
	if pool.logger == nil {
		pool.logger = logger.Get().Named("worker-pool")
	}

	active := &atomic.Int64{}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(pool.logger),
		)
		pool.workers[i].active = active
	}

	metrics.UpdateWorkerActiveCount(0)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool. Calling it twice is a no-op. When ctx
// ends the pool stops as if Shutdown had been called, failing queued tasks
// with ErrStopped.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped.Load() {
		return
	}
	p.started = true
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.watch(ctx)
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Submit queues task and returns a channel that receives its result once.
// It blocks while the queue is full, bounded by ctx.
func (p *Pool) Submit(ctx context.Context, task Task) (<-chan error, error) {
	if p.stopped.Load() {
		return nil, ErrStopped
	}
	done := make(chan error, 1)
	err := p.queue.Enqueue(ctx, queue.Job{Ctx: ctx, Run: task, Done: done})
	switch {
	case err == nil:
		return done, nil
	case errors.Is(err, queue.ErrClosed):
		return nil, ErrStopped
	default:
		return nil, fmt.Errorf("submit task: %w", err)
	}
}

// Shutdown stops accepting tasks, lets the workers drain what is already
// queued, and waits for them, bounded by ctx.
func (p *Pool) Shutdown(ctx context.Context) error {
	if !p.stopped.CompareAndSwap(false, true) {
		return nil
	}
	close(p.closing)
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}

	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		// Nobody will ever run what is queued.
		p.failQueued()
		return nil
	}

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("%w: %w", ErrShutdownTimeout, ctx.Err())
		}
	}
	// Workers whose start context ended may have left jobs behind.
	p.failQueued()
	p.logger.Info(ctx, "worker pool stopped")
	return nil
}

func (p *Pool) watch(ctx context.Context) {
	select {
	case <-p.closing:
	case <-ctx.Done():
		p.abort(context.WithoutCancel(ctx), ctx.Err())
	}
}

// abort stops the pool after its start context ended. Workers have already
// been told to return; whatever they leave in the queue fails with ErrStopped.
func (p *Pool) abort(ctx context.Context, cause error) {
	if !p.stopped.CompareAndSwap(false, true) {
		return
	}
	close(p.closing)
	p.logger.Warn(ctx, "worker pool context ended", logger.Error(cause))
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}
	for _, w := range p.workers {
		<-w.done
	}
	p.failQueued()
	p.logger.Info(ctx, "worker pool stopped")
}

// failQueued resolves every job left in the closed queue with ErrStopped.
func (p *Pool) failQueued() {
	for job := range p.queue.Dequeue() {
		if job.Done != nil {
			job.Done <- ErrStopped
		}
	}
}

// Stop gracefully stops all workers using the default shutdown timeout.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), poolShutdownTimeout)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		p.logger.Error(ctx, "worker pool stop", logger.Error(err))
	}
}
