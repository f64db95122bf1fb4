package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daryltucker/codefix-bench/internal/model"
)

// ErrRunInProgress is returned by Tracker.Begin while a run is active.
var ErrRunInProgress = errors.New("a benchmark run is already in progress")

// Snapshot is a point-in-time copy of a tracked run.
type Snapshot struct {
	ID         string            `json:"id"`
	State      model.State       `json:"state"`
	Progress   model.Progress    `json:"progress"`
	Rows       []model.ResultRow `json:"rows"`
	StartedAt  time.Time         `json:"started_at,omitempty"`
	FinishedAt time.Time         `json:"finished_at,omitempty"`
}

// Tracker is an Observer that keeps the state machine of the latest run
// (not_started -> running -> completed) for readers on other goroutines.
type Tracker struct {
	mu    sync.RWMutex
	snap  Snapshot
	table *model.ResultTable
	now   func() time.Time
}

// NewTracker returns a tracker in the not_started state.
func NewTracker() *Tracker {
	return &Tracker{
		snap: Snapshot{State: model.StateNotStarted},
		now:  time.Now,
	}
}

// Begin claims the tracker for a new run and returns its id.
func (t *Tracker) Begin() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.snap.State == model.StateRunning {
		return "", ErrRunInProgress
	}
	t.snap = Snapshot{
		ID:        uuid.NewString(),
		State:     model.StateRunning,
		StartedAt: t.now(),
	}
	t.table = nil
	return t.snap.ID, nil
}

// OnStart implements Observer.
func (t *Tracker) OnStart(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.snap.State != model.StateRunning {
		t.snap = Snapshot{ID: uuid.NewString(), State: model.StateRunning, StartedAt: t.now()}
	}
	t.snap.Progress = model.Progress{Total: total}
	t.snap.Rows = make([]model.ResultRow, 0, total)
}

// OnRow implements Observer.
func (t *Tracker) OnRow(row model.ResultRow, progress model.Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.Rows = append(t.snap.Rows, row)
	t.snap.Progress = progress
}

// OnComplete implements Observer.
func (t *Tracker) OnComplete(table *model.ResultTable) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.State = model.StateCompleted
	t.snap.FinishedAt = t.now()
	t.table = table
}

// Snapshot returns a copy of the current run.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := t.snap
	s.Rows = make([]model.ResultRow, len(t.snap.Rows))
	copy(s.Rows, t.snap.Rows)
	return s
}

// Table returns the table of the last completed run, or nil.
func (t *Tracker) Table() *model.ResultTable {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.table
}

// MultiObserver fans events out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) OnStart(total int) {
	for _, o := range m {
		o.OnStart(total)
	}
}

func (m MultiObserver) OnRow(row model.ResultRow, progress model.Progress) {
	for _, o := range m {
		o.OnRow(row, progress)
	}
}

func (m MultiObserver) OnComplete(table *model.ResultTable) {
	for _, o := range m {
		o.OnComplete(table)
	}
}
