package remotejob

import "time"

// State is the normalized lifecycle state of a remote job.
type State string

const (
	// StatePending means the provider accepted the job but has not
	// started working on it.
	StatePending State = "pending"

	// StateRunning means the provider is working on the job.
	StateRunning State = "running"

	// StateSucceeded means the job finished and artifacts are available.
	StateSucceeded State = "succeeded"

	// StateFailed means the provider reported a permanent failure.
	StateFailed State = "failed"

	// StateCanceled means the job was canceled on the provider side.
	StateCanceled State = "canceled"
)

// Terminal reports whether the state ends the job lifecycle.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateCanceled:
		return true
	}
	return false
}

// rank orders states so observed transitions only move forward. A
// provider briefly reporting an earlier phase (queue re-entry after
// throttling, for example) never moves the job backward.
func (s State) rank() int {
	switch s {
	case StateRunning:
		return 1
	case StateSucceeded, StateFailed, StateCanceled:
		return 2
	}
	return 0
}

// Job is a handle to a submitted remote job.
type Job struct {
	// ID is the provider-assigned job identifier.
	ID string `json:"id"`

	// Provider names the adapter that created the job.
	Provider string `json:"provider"`

	// State is the last observed normalized state.
	State State `json:"state"`

	// CreatedAt is when the job was submitted.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when State last changed.
	UpdatedAt time.Time `json:"updated_at"`
}
