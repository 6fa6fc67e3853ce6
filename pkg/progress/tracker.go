// Package progress implements the thread-safe, durable run-state
// tracker described in spec.md §4.8: a single critical section guards
// every mutation, readers get a copy-on-read snapshot, and state is
// persisted to progress.json on every mutation via write-then-rename.
package progress

import (
	"sync"
	"time"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/model"
)

// Tracker is the process-singleton owner of model.ProgressState.
// Multiple processes sharing one artifact directory are unsupported
// per spec.md §4.8.
type Tracker struct {
	mu    sync.Mutex
	state model.ProgressState
	path  string
}

// New initializes a Tracker for the given run, loading prior state
// from disk if present (process restart), or starting fresh.
func New(store *artifactstore.Store, runID string) (*Tracker, error) {
	t := &Tracker{path: store.ProgressPath()}

	var loaded model.ProgressState
	if err := artifactstore.ReadJSON(t.path, &loaded); err == nil && loaded.Dashboards != nil {
		t.state = loaded
		return t, nil
	}

	t.state = model.ProgressState{
		RunID:         runID,
		OverallStatus: model.OverallIdle,
		Dashboards:    make(map[int]model.DashboardProgress),
		Merge:         model.MergeProgress{Status: model.SubStepIdle},
		KBBuild:       model.KBBuildProgress{Status: model.SubStepIdle},
		StartTime:     now(),
		LastUpdate:    now(),
	}
	return t, t.persistLocked()
}

// now is overridable in tests; production always uses time.Now().
var now = time.Now

// Snapshot returns a consistent, independent copy of the current state.
func (t *Tracker) Snapshot() model.ProgressState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

// UpdateOverall sets the top-level run status and optional current operation.
func (t *Tracker) UpdateOverall(status model.OverallStatus, currentOperation string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.OverallStatus = status
	t.state.CurrentOperation = currentOperation
	return t.touchAndPersistLocked()
}

// DashboardUpdate carries the optional fields of a single dashboard mutation.
type DashboardUpdate struct {
	Status        model.DashboardStatus
	Phase         int
	CurrentFile   string
	CompletedFile string // additive: appended to CompletedFiles, never replaces it
	Error         string
}

// UpdateDashboard mutates a single dashboard's progress record.
// CompletedFile is additive per spec.md invariant 3: completed_files
// only grows.
func (t *Tracker) UpdateDashboard(id int, u DashboardUpdate) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	dp, ok := t.state.Dashboards[id]
	if !ok {
		dp = model.DashboardProgress{ID: id, StartedAt: now()}
	}

	if u.Status != "" {
		dp.Status = u.Status
	}
	if u.Phase > 0 {
		dp.Phase = u.Phase
		if u.Phase < len(model.PhaseNames) {
			dp.PhaseName = model.PhaseNames[u.Phase]
		}
	}
	if u.CurrentFile != "" {
		dp.CurrentFile = u.CurrentFile
	}
	if u.CompletedFile != "" {
		dp.CompletedFiles = append(dp.CompletedFiles, u.CompletedFile)
	}
	if u.Error != "" {
		dp.Error = u.Error
	}
	dp.UpdatedAt = now()

	t.state.Dashboards[id] = dp
	t.recomputeCountsLocked()
	return t.touchAndPersistLocked()
}

// UpdateMerge mutates the merge sub-state.
func (t *Tracker) UpdateMerge(status model.SubStepStatus, currentStep string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Merge = model.MergeProgress{Status: status, CurrentStep: currentStep}
	return t.touchAndPersistLocked()
}

// UpdateKBBuild mutates the knowledge-base build sub-state.
func (t *Tracker) UpdateKBBuild(status model.SubStepStatus, currentStep string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.KBBuild = model.KBBuildProgress{Status: status, CurrentStep: currentStep}
	return t.touchAndPersistLocked()
}

func (t *Tracker) recomputeCountsLocked() {
	completed, failed := 0, 0
	for _, dp := range t.state.Dashboards {
		switch dp.Status {
		case model.DashboardCompleted:
			completed++
		case model.DashboardError:
			failed++
		}
	}
	t.state.CompletedCount = completed
	t.state.FailedCount = failed
}

func (t *Tracker) touchAndPersistLocked() error {
	t.state.LastUpdate = now()
	return t.persistLocked()
}

func (t *Tracker) persistLocked() error {
	return artifactstore.WriteJSON(t.path, t.state)
}
