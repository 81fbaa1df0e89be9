package runner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/marmos91/tams/internal/logger"
)

// DefaultWorkers is the default number of concurrent job workers.
const DefaultWorkers = 2

// DefaultQueueSize is the default capacity of the pending-job queue.
const DefaultQueueSize = 16

// ErrQueueFull is returned by Submit when the pending-job queue is full.
var ErrQueueFull = errors.New("job queue is full")

// ErrPoolStopped is returned by Submit after the pool has been stopped.
var ErrPoolStopped = errors.New("worker pool is stopped")

// PoolConfig holds configuration for the worker pool.
type PoolConfig struct {
	// Workers is the number of concurrent job workers.
	Workers int

	// QueueSize is the capacity of the pending-job queue.
	QueueSize int
}

// DefaultPoolConfig returns the default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Workers:   DefaultWorkers,
		QueueSize: DefaultQueueSize,
	}
}

// Pool executes jobs on a bounded set of background workers. Submitting never
// blocks the caller; each job runs to a terminal state on a single worker.
type Pool struct {
	jobs chan *Job

	workers   int
	wg        sync.WaitGroup
	stopCh    chan struct{}
	stoppedCh chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewPool creates a worker pool.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}

	return &Pool{
		jobs:      make(chan *Job, cfg.QueueSize),
		workers:   cfg.Workers,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Start launches the workers. Calling Start more than once is a no-op.
//
// Workers ignore ctx for lifecycle management and exit only when Stop is
// called; ctx is passed through to job bodies for catalog queries.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	logger.Debug("Starting job pool", "workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}

	go func() {
		p.wg.Wait()
		close(p.stoppedCh)
	}()
}

// Submit queues a job for execution. Non-blocking; returns ErrQueueFull when
// the queue is at capacity and ErrPoolStopped after Stop.
func (p *Pool) Submit(j *Job) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrPoolStopped
	}
	p.mu.Unlock()

	select {
	case p.jobs <- j:
		logger.Debug("Job queued",
			logger.KeyJobID, j.ID(),
			logger.KeyJobType, j.Type())
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop shuts the pool down. Jobs already executing run to their next
// checkpoint-driven terminal state; jobs still queued are killed. Waits up to
// timeout for workers to exit.
func (p *Pool) Stop(timeout time.Duration) {
	p.mu.Lock()
	if !p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.stoppedCh:
		logger.Debug("Job pool stopped")
	case <-time.After(timeout):
		logger.Warn("Job pool stop timed out")
	}
}

// worker executes queued jobs until the pool is stopped.
func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	logger.Debug("Job pool worker started", "workerID", id)

	for {
		select {
		case j := <-p.jobs:
			j.run(ctx)
		case <-p.stopCh:
			p.drain()
			logger.Debug("Job pool worker stopped", "workerID", id)
			return
		}
	}
}

// drain kills jobs still queued at shutdown so their observers see a
// terminal signal instead of silence.
func (p *Pool) drain() {
	for {
		select {
		case j := <-p.jobs:
			_ = j.Kill()
		default:
			return
		}
	}
}
