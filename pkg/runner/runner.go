package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/marmos91/tams/internal/logger"
	"github.com/marmos91/tams/pkg/metrics"
)

// ErrKilled is the terminal signal of a cancelled job, distinguishable from
// both normal completion and unrecoverable faults.
var ErrKilled = errors.New("job killed")

// signal is the tagged result of a checkpoint. The job body inspects it
// after every unit of work instead of relying on unwinding for control flow.
type signal int

const (
	sigContinue signal = iota
	sigKilled
	sigFinished
)

// Observer receives job lifecycle notifications. Progress is emitted once per
// completed unit of work with a monotonically increasing increment; Finished
// and Killed are each emitted at most once per job lifetime, never both.
type Observer interface {
	Progress(increment int)
	Finished()
	Killed()
}

// ObserverFuncs adapts plain functions to the Observer interface. Nil fields
// are ignored.
type ObserverFuncs struct {
	OnProgress func(increment int)
	OnFinished func()
	OnKilled   func()
}

func (o ObserverFuncs) Progress(increment int) {
	if o.OnProgress != nil {
		o.OnProgress(increment)
	}
}

func (o ObserverFuncs) Finished() {
	if o.OnFinished != nil {
		o.OnFinished()
	}
}

func (o ObserverFuncs) Killed() {
	if o.OnKilled != nil {
		o.OnKilled()
	}
}

// Job is the cancellable, pausable unit of background work. Concrete jobs
// embed it and supply a body; the body must call advance after each unit of
// work and honor the signal returned by checkpoint.
//
// Jobs are transient and in-memory only. State transitions requested through
// Pause, Resume, Kill and Finish take effect at the body's next checkpoint,
// at most one unit of work later.
type Job struct {
	id          uuid.UUID
	jobType     string
	maxProgress int
	sizeInBytes int64

	body func(ctx context.Context) error

	mu       sync.Mutex
	cond     *sync.Cond
	status   Status
	progress int
	err      error

	observers []Observer
	jm        *metrics.JobMetrics

	done chan struct{}
}

// newJob creates the embedded base for a concrete job. maxProgress is the
// 0-indexed unit count (total units minus one).
func newJob(jobType string, maxProgress int, sizeInBytes int64) *Job {
	j := &Job{
		id:          uuid.New(),
		jobType:     jobType,
		maxProgress: maxProgress,
		sizeInBytes: sizeInBytes,
		status:      StatusPending,
		progress:    -1,
		done:        make(chan struct{}),
	}
	j.cond = sync.NewCond(&j.mu)
	return j
}

// ID returns the job's unique identifier.
func (j *Job) ID() string { return j.id.String() }

// Type returns the job type ("download", "upload" or "validate").
func (j *Job) Type() string { return j.jobType }

// MaxProgress returns the 0-indexed unit count: total units minus one.
func (j *Job) MaxProgress() int { return j.maxProgress }

// SizeInBytes returns the total byte size indexed at construction.
func (j *Job) SizeInBytes() int64 { return j.sizeInBytes }

// Status returns the current lifecycle state.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Progress returns the index of the last completed unit of work, or -1 if
// none has completed yet. Equals MaxProgress iff the job finished normally.
func (j *Job) Progress() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.progress
}

// Err returns the unrecoverable error of a job in the ERROR state, or nil.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Done returns a channel closed when the job reaches a terminal state.
func (j *Job) Done() <-chan struct{} { return j.done }

// Subscribe registers an observer for progress, finished and killed
// notifications. Must be called before the job starts.
func (j *Job) Subscribe(o Observer) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.observers = append(j.observers, o)
}

// SetMetrics attaches job metrics. A nil value disables recording.
func (j *Job) SetMetrics(jm *metrics.JobMetrics) {
	j.jm = jm
}

// Start hands the job to the pool for background execution. Non-blocking;
// the caller observes completion through Done or a subscribed Observer.
func (j *Job) Start(p *Pool) error {
	return p.Submit(j)
}

// Pause requests suspension of the running body. Takes effect at the next
// checkpoint; the parked body consumes no CPU while paused.
func (j *Job) Pause() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.status.ValidateTransition(StatusPaused); err != nil {
		return err
	}
	j.status = StatusPaused
	logger.Info("Job paused", logger.KeyJobID, j.id, logger.KeyJobType, j.jobType)
	return nil
}

// Resume unparks a paused body. Forward progress resumes promptly.
func (j *Job) Resume() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusPaused {
		return fmt.Errorf("cannot resume job in state %s", j.status)
	}
	j.status = StatusRunning
	j.cond.Broadcast()
	logger.Info("Job resumed", logger.KeyJobID, j.id, logger.KeyJobType, j.jobType)
	return nil
}

// Kill requests cooperative cancellation. The body stops at its next
// checkpoint; at most one unit of work completes after the request. Killing
// a job that is already terminal is a no-op.
func (j *Job) Kill() error {
	j.mu.Lock()
	if j.status.IsTerminal() {
		j.mu.Unlock()
		return nil
	}
	pending := j.status == StatusPending
	j.status = StatusKilled
	j.cond.Broadcast()
	j.mu.Unlock()

	logger.Info("Job kill requested", logger.KeyJobID, j.id, logger.KeyJobType, j.jobType)

	// A pending job has no body to observe the kill, so the terminal signal
	// is emitted here instead of by run.
	if pending {
		close(j.done)
		j.jm.JobKilled(j.jobType)
		j.notifyKilled()
	}
	return nil
}

// Finish forces clean early completion. The body stops at its next
// checkpoint without error and the finished signal fires as usual.
func (j *Job) Finish() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusRunning && j.status != StatusPaused {
		return j.status.ValidateTransition(StatusFinished)
	}
	j.status = StatusFinished
	j.cond.Broadcast()
	return nil
}

// advance records one completed unit of work and notifies observers. Called
// by the body after each unit, before the checkpoint.
func (j *Job) advance() {
	j.mu.Lock()
	j.progress++
	observers := j.observers
	j.mu.Unlock()

	for _, o := range observers {
		o.Progress(1)
	}
}

// checkpoint is the body's cooperative suspension point, reached once per
// unit of work. It parks while the job is paused and reports whether the
// body should continue, stop as killed, or stop as finished.
func (j *Job) checkpoint() signal {
	j.mu.Lock()
	defer j.mu.Unlock()

	for j.status == StatusPaused {
		j.cond.Wait()
	}

	switch j.status {
	case StatusKilled:
		return sigKilled
	case StatusFinished:
		return sigFinished
	default:
		return sigContinue
	}
}

// run executes the job body on a pool worker and drives the terminal
// transition. Finished and Killed each fire exactly once.
func (j *Job) run(ctx context.Context) {
	j.mu.Lock()
	if j.status.IsTerminal() {
		// Killed while still queued; Kill already signalled.
		j.mu.Unlock()
		return
	}
	j.status = StatusRunning
	j.mu.Unlock()

	logger.Info("Job started",
		logger.KeyJobID, j.id,
		logger.KeyJobType, j.jobType,
		logger.KeyFiles, j.maxProgress+1,
		logger.KeySize, j.sizeInBytes)
	j.jm.JobStarted(j.jobType)

	err := j.body(ctx)

	j.mu.Lock()
	var final Status
	switch {
	case j.status == StatusKilled || errors.Is(err, ErrKilled):
		final = StatusKilled
	case err != nil:
		final = StatusError
		j.err = err
	default:
		final = StatusFinished
	}
	j.status = final
	observers := j.observers
	j.mu.Unlock()
	close(j.done)

	switch final {
	case StatusKilled:
		logger.Info("Job killed", logger.KeyJobID, j.id, logger.KeyJobType, j.jobType)
		j.jm.JobKilled(j.jobType)
		for _, o := range observers {
			o.Killed()
		}
	case StatusError:
		logger.Error("Job failed",
			logger.KeyJobID, j.id,
			logger.KeyJobType, j.jobType,
			"error", err)
		j.jm.JobFailed(j.jobType)
	default:
		logger.Info("Job finished",
			logger.KeyJobID, j.id,
			logger.KeyJobType, j.jobType,
			logger.KeyProgress, j.Progress())
		j.jm.JobFinished(j.jobType)
		for _, o := range observers {
			o.Finished()
		}
	}
}

// notifyKilled emits the killed signal to all observers.
func (j *Job) notifyKilled() {
	j.mu.Lock()
	observers := j.observers
	j.mu.Unlock()
	for _, o := range observers {
		o.Killed()
	}
}
