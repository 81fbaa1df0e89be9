// Package runner implements the background job subsystem: a cancellable,
// pausable, progress-reporting worker contract plus the concrete transfer
// and validation jobs that move scan data between the local and permanent
// library tiers.
package runner

import "fmt"

// Status represents the lifecycle state of a background job.
type Status string

const (
	// StatusPending indicates a job has been constructed but not yet started.
	StatusPending Status = "PENDING"

	// StatusRunning indicates the job body is executing.
	StatusRunning Status = "RUNNING"

	// StatusPaused indicates the job body is parked at a checkpoint.
	StatusPaused Status = "PAUSED"

	// StatusKilled indicates the job was cancelled by the user.
	StatusKilled Status = "KILLED"

	// StatusFinished indicates the job body completed normally.
	StatusFinished Status = "FINISHED"

	// StatusError indicates the job body hit an unrecoverable fault.
	StatusError Status = "ERROR"
)

func (s Status) String() string { return string(s) }

// IsTerminal reports whether no further transitions are allowed from s.
func (s Status) IsTerminal() bool {
	return s == StatusKilled || s == StatusFinished || s == StatusError
}

// ValidateTransition checks if a status transition is valid and returns an
// error if not.
func (s Status) ValidateTransition(target Status) error {
	if !s.isValidTransition(target) {
		return fmt.Errorf("invalid job status transition from %s to %s", s, target)
	}
	return nil
}

// isValidTransition enforces the job lifecycle rules. Kill is allowed from
// any non-terminal state; pause only while running.
func (s Status) isValidTransition(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusRunning || target == StatusKilled
	case StatusRunning:
		return target == StatusPaused || target == StatusKilled ||
			target == StatusFinished || target == StatusError
	case StatusPaused:
		return target == StatusRunning || target == StatusKilled
	case StatusKilled, StatusFinished, StatusError:
		return false
	default:
		return false
	}
}
