package progress

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mediapull/mediapull/internal/model"
)

// entry holds the latest snapshot for one job behind its own lock, so
// observing one job never contends with reads or writes for another.
type entry struct {
	mu   sync.Mutex
	snap model.ProgressSnapshot
	set  bool
}

// Aggregator keeps the latest ProgressSnapshot per job. Jobs are registered
// before dispatch; Observe and View may be called concurrently. The
// registry map itself is only mutated by Register and Reset.
type Aggregator struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*entry
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{entries: make(map[uuid.UUID]*entry)}
}

// Register adds a job to the view before its worker starts. Registering the
// same job twice is a no-op.
func (a *Aggregator) Register(jobID uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.entries[jobID]; !ok {
		a.entries[jobID] = &entry{}
	}
}

// Observe records a snapshot. Snapshots for unregistered jobs are dropped.
// Last writer wins; per-job snapshot order is guaranteed by the single
// worker that owns the job.
func (a *Aggregator) Observe(snap model.ProgressSnapshot) {
	a.mu.RLock()
	e, ok := a.entries[snap.JobID]
	a.mu.RUnlock()
	if !ok {
		return
	}

	e.mu.Lock()
	e.snap = snap
	e.set = true
	e.mu.Unlock()
}

// View returns the latest snapshot per job that has reported at least once.
// Non-blocking with respect to writers on other jobs.
func (a *Aggregator) View() map[uuid.UUID]model.ProgressSnapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	view := make(map[uuid.UUID]model.ProgressSnapshot, len(a.entries))
	for id, e := range a.entries {
		e.mu.Lock()
		if e.set {
			view[id] = e.snap
		}
		e.mu.Unlock()
	}
	return view
}

// Recent returns the current view ordered by last-update time, most recent
// first. Intended for rendering.
func (a *Aggregator) Recent() []model.ProgressSnapshot {
	view := a.View()
	snaps := make([]model.ProgressSnapshot, 0, len(view))
	for _, s := range view {
		snaps = append(snaps, s)
	}
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].At.After(snaps[j].At)
	})
	return snaps
}

// Reset discards all entries. Called once every job is terminal; the
// aggregator holds nothing beyond pipeline completion.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = make(map[uuid.UUID]*entry)
}
