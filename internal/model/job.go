package model

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DownloadJob is the unit of work tracked through the pipeline: one source,
// one selected stream, one destination path. State transitions are forward
// only; Transferred accumulates monotonically.
type DownloadJob struct {
	ID       uuid.UUID
	Source   MediaSource
	Stream   Stream
	Title    string // display title, used for the destination filename
	DestPath string

	mu          sync.Mutex
	state       JobState
	transferred int64
}

// NewDownloadJob creates a job in the queued state.
func NewDownloadJob(source MediaSource, stream Stream, title, destPath string) *DownloadJob {
	return &DownloadJob{
		ID:       uuid.New(),
		Source:   source,
		Stream:   stream,
		Title:    title,
		DestPath: destPath,
		state:    JobStateQueued,
	}
}

// State returns the current job state.
func (j *DownloadJob) State() JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Transition moves the job to next. Illegal transitions (backward moves or
// moves out of a terminal state) return an error and leave the job
// untouched.
func (j *DownloadJob) Transition(next JobState) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.state.CanTransitionTo(next) {
		return fmt.Errorf("illegal job transition %s -> %s", j.state, next)
	}
	j.state = next
	return nil
}

// AddTransferred accumulates transferred bytes and returns the new total.
func (j *DownloadJob) AddTransferred(n int64) int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.transferred += n
	return j.transferred
}

// Transferred returns the bytes transferred so far.
func (j *DownloadJob) Transferred() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.transferred
}

// ProgressSnapshot is an ephemeral progress event: transferred bytes against
// the total for one job. Total 0 means the size is unknown and consumers
// should render an indeterminate indicator instead of a percentage.
type ProgressSnapshot struct {
	JobID       uuid.UUID
	Transferred int64
	Total       int64
	At          time.Time
}

// Percent returns progress in [0,100] and whether a percentage is
// meaningful at all.
func (s ProgressSnapshot) Percent() (int, bool) {
	if s.Total <= 0 {
		return 0, false
	}
	p := int(float64(s.Transferred) / float64(s.Total) * 100)
	if p > 100 {
		p = 100
	}
	return p, true
}
