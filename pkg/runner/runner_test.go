package runner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder counts observer notifications.
type recorder struct {
	mu         sync.Mutex
	increments int
	finished   int
	killed     int
}

func (r *recorder) Progress(increment int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.increments += increment
}

func (r *recorder) Finished() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished++
}

func (r *recorder) Killed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.killed++
}

func (r *recorder) counts() (increments, finished, killed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.increments, r.finished, r.killed
}

// gatedJob is a synthetic job whose body completes one unit per release,
// with the test controlling the gap between a unit's progress increment and
// its checkpoint. That gap is where pause/kill/finish requests land
// deterministically.
type gatedJob struct {
	*Job
	work chan struct{} // released once per unit of work
	ckpt chan struct{} // released once per checkpoint
}

func newGatedJob(units int) *gatedJob {
	g := &gatedJob{
		Job:  newJob("test", units-1, 0),
		work: make(chan struct{}),
		ckpt: make(chan struct{}),
	}
	g.Job.body = func(_ context.Context) error {
		for i := 0; i < units; i++ {
			<-g.work
			g.advance()
			<-g.ckpt
			switch g.checkpoint() {
			case sigKilled:
				return ErrKilled
			case sigFinished:
				return nil
			}
		}
		return nil
	}
	return g
}

// step drives one full unit of work through the body.
func (g *gatedJob) step() {
	g.work <- struct{}{}
	g.ckpt <- struct{}{}
}

func waitDone(t *testing.T, j *Job) {
	t.Helper()
	select {
	case <-j.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("job did not reach a terminal state")
	}
}

func TestJobRunsToCompletion(t *testing.T) {
	const units = 5

	rec := &recorder{}
	g := newGatedJob(units)
	g.Subscribe(rec)

	require.Equal(t, StatusPending, g.Status())
	require.Equal(t, units-1, g.MaxProgress())
	require.Equal(t, -1, g.Progress())

	go g.run(context.Background())
	for i := 0; i < units; i++ {
		g.step()
	}
	waitDone(t, g.Job)

	assert.Equal(t, StatusFinished, g.Status())
	assert.Equal(t, g.MaxProgress(), g.Progress())
	assert.NoError(t, g.Err())

	increments, finished, killed := rec.counts()
	assert.Equal(t, units, increments)
	assert.Equal(t, 1, finished)
	assert.Equal(t, 0, killed)
}

func TestJobPauseResumeKeepsProgressExact(t *testing.T) {
	const units = 6
	const pauseAfter = 3

	rec := &recorder{}
	g := newGatedJob(units)
	g.Subscribe(rec)

	go g.run(context.Background())

	for i := 0; i < pauseAfter-1; i++ {
		g.step()
	}

	// Park the body at the checkpoint right after unit pauseAfter.
	g.work <- struct{}{}
	require.NoError(t, g.Pause())
	g.ckpt <- struct{}{}

	require.Eventually(t, func() bool {
		return g.Status() == StatusPaused
	}, time.Second, time.Millisecond)

	increments, _, _ := rec.counts()
	assert.Equal(t, pauseAfter, increments, "no increments while paused")
	assert.Equal(t, pauseAfter-1, g.Progress())

	// Pausing twice is invalid, as is resuming a job that is not paused.
	require.Error(t, g.Pause())

	require.NoError(t, g.Resume())
	for i := pauseAfter; i < units; i++ {
		g.step()
	}
	waitDone(t, g.Job)

	assert.Equal(t, StatusFinished, g.Status())
	increments, finished, killed := rec.counts()
	assert.Equal(t, units, increments, "pause/resume must not lose or duplicate increments")
	assert.Equal(t, 1, finished)
	assert.Equal(t, 0, killed)
}

func TestJobKillAfterNUnits(t *testing.T) {
	const units = 5
	const killAfter = 2

	rec := &recorder{}
	g := newGatedJob(units)
	g.Subscribe(rec)

	go g.run(context.Background())

	for i := 0; i < killAfter-1; i++ {
		g.step()
	}

	// Kill between unit killAfter's increment and its checkpoint, so the
	// body observes it before starting another unit.
	g.work <- struct{}{}
	require.NoError(t, g.Kill())
	g.ckpt <- struct{}{}
	waitDone(t, g.Job)

	assert.Equal(t, StatusKilled, g.Status())
	assert.NoError(t, g.Err(), "killed is not an error state")

	increments, finished, killed := rec.counts()
	assert.Equal(t, killAfter, increments)
	assert.Equal(t, 0, finished, "no finished signal after a kill")
	assert.Equal(t, 1, killed)
}

func TestJobKillWhilePaused(t *testing.T) {
	rec := &recorder{}
	g := newGatedJob(3)
	g.Subscribe(rec)

	go g.run(context.Background())

	g.work <- struct{}{}
	require.NoError(t, g.Pause())
	g.ckpt <- struct{}{}

	require.Eventually(t, func() bool {
		return g.Status() == StatusPaused
	}, time.Second, time.Millisecond)

	require.NoError(t, g.Kill())
	waitDone(t, g.Job)

	assert.Equal(t, StatusKilled, g.Status())
	_, finished, killed := rec.counts()
	assert.Equal(t, 0, finished)
	assert.Equal(t, 1, killed)
}

func TestJobKillWhilePending(t *testing.T) {
	rec := &recorder{}
	g := newGatedJob(3)
	g.Subscribe(rec)

	require.NoError(t, g.Kill())
	waitDone(t, g.Job)

	assert.Equal(t, StatusKilled, g.Status())
	increments, finished, killed := rec.counts()
	assert.Equal(t, 0, increments)
	assert.Equal(t, 0, finished)
	assert.Equal(t, 1, killed)

	// A worker picking up the killed job must not run the body or signal
	// again.
	g.run(context.Background())
	_, _, killed = rec.counts()
	assert.Equal(t, 1, killed)
}

func TestJobKillIsIdempotent(t *testing.T) {
	rec := &recorder{}
	g := newGatedJob(3)
	g.Subscribe(rec)

	require.NoError(t, g.Kill())
	require.NoError(t, g.Kill())

	_, _, killed := rec.counts()
	assert.Equal(t, 1, killed)
}

func TestJobExternalFinishStopsEarly(t *testing.T) {
	const units = 5

	rec := &recorder{}
	g := newGatedJob(units)
	g.Subscribe(rec)

	go g.run(context.Background())

	g.step()

	// Force early completion between increment and checkpoint of unit 2.
	g.work <- struct{}{}
	require.NoError(t, g.Finish())
	g.ckpt <- struct{}{}
	waitDone(t, g.Job)

	assert.Equal(t, StatusFinished, g.Status())
	assert.NoError(t, g.Err())
	assert.Less(t, g.Progress(), g.MaxProgress())

	increments, finished, killed := rec.counts()
	assert.Equal(t, 2, increments)
	assert.Equal(t, 1, finished, "finished fires exactly once")
	assert.Equal(t, 0, killed)
}

func TestJobBodyErrorIsTerminal(t *testing.T) {
	rec := &recorder{}
	j := newJob("test", 0, 0)
	j.Subscribe(rec)
	j.body = func(_ context.Context) error {
		return assert.AnError
	}

	j.run(context.Background())

	assert.Equal(t, StatusError, j.Status())
	assert.ErrorIs(t, j.Err(), assert.AnError)

	_, finished, killed := rec.counts()
	assert.Equal(t, 0, finished, "errored jobs emit neither finished nor killed")
	assert.Equal(t, 0, killed)
}

func TestJobInvalidTransitions(t *testing.T) {
	g := newGatedJob(2)

	require.Error(t, g.Pause(), "pause is only meaningful while running")
	require.Error(t, g.Resume())
	require.Error(t, g.Finish())
}
