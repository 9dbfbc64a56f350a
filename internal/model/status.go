package model

// JobState represents the lifecycle state of a download job
type JobState string

const (
	// JobStateQueued means the job is enqueued but no worker picked it up yet
	JobStateQueued JobState = "queued"

	// JobStateRunning means a worker is transferring bytes for the job
	JobStateRunning JobState = "running"

	// JobStatePostProcessing means the transfer finished and the job is in
	// the finalize/transcode step
	JobStatePostProcessing JobState = "post_processing"

	// JobStateDone means the job finished successfully
	JobStateDone JobState = "done"

	// JobStateFailed means the job reached a terminal failure
	JobStateFailed JobState = "failed"
)

// String returns the string representation of JobState
func (s JobState) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions occur from this state
func (s JobState) IsTerminal() bool {
	return s == JobStateDone || s == JobStateFailed
}

// CanTransitionTo reports whether moving to next is a legal forward
// transition. Jobs never move backward.
func (s JobState) CanTransitionTo(next JobState) bool {
	switch s {
	case JobStateQueued:
		return next == JobStateRunning || next == JobStateFailed
	case JobStateRunning:
		return next == JobStatePostProcessing || next == JobStateFailed
	case JobStatePostProcessing:
		return next == JobStateDone || next == JobStateFailed
	default:
		return false
	}
}
