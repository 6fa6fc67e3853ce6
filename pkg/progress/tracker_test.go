package progress

import (
	"sync"
	"testing"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/model"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	dir := t.TempDir()
	tr, err := New(artifactstore.New(dir), "run-1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tr
}

func TestNew_StartsIdle(t *testing.T) {
	tr := newTestTracker(t)
	snap := tr.Snapshot()
	if snap.OverallStatus != model.OverallIdle {
		t.Errorf("OverallStatus = %v, want IDLE", snap.OverallStatus)
	}
	if snap.Dashboards == nil {
		t.Error("Dashboards map should be initialized, not nil")
	}
}

func TestNew_ReloadsPersistedState(t *testing.T) {
	dir := t.TempDir()
	store := artifactstore.New(dir)

	tr1, err := New(store, "run-1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := tr1.UpdateOverall(model.OverallExtracting, "extracting dashboard 964"); err != nil {
		t.Fatalf("UpdateOverall: %v", err)
	}

	tr2, err := New(store, "run-1")
	if err != nil {
		t.Fatalf("New (reload): %v", err)
	}
	snap := tr2.Snapshot()
	if snap.OverallStatus != model.OverallExtracting {
		t.Errorf("reloaded OverallStatus = %v, want EXTRACTING", snap.OverallStatus)
	}
}

func TestUpdateDashboard_CompletedFilesOnlyGrows(t *testing.T) {
	tr := newTestTracker(t)

	if err := tr.UpdateDashboard(964, DashboardUpdate{Status: model.DashboardProcessing, Phase: 1, CompletedFile: "964_json.json"}); err != nil {
		t.Fatalf("UpdateDashboard: %v", err)
	}
	if err := tr.UpdateDashboard(964, DashboardUpdate{Phase: 2, CompletedFile: "964_tables_columns.csv"}); err != nil {
		t.Fatalf("UpdateDashboard: %v", err)
	}

	snap := tr.Snapshot()
	dp := snap.Dashboards[964]
	if len(dp.CompletedFiles) != 2 {
		t.Fatalf("CompletedFiles = %v, want 2 entries", dp.CompletedFiles)
	}
	if dp.CompletedFiles[0] != "964_json.json" || dp.CompletedFiles[1] != "964_tables_columns.csv" {
		t.Errorf("CompletedFiles = %v, want append-only order preserved", dp.CompletedFiles)
	}
	if dp.Phase != 2 || dp.PhaseName != model.PhaseNames[2] {
		t.Errorf("Phase = %d/%s, want 2/%s", dp.Phase, dp.PhaseName, model.PhaseNames[2])
	}
}

func TestUpdateDashboard_RecomputesAggregateCounts(t *testing.T) {
	tr := newTestTracker(t)
	tr.UpdateDashboard(476, DashboardUpdate{Status: model.DashboardCompleted})
	tr.UpdateDashboard(511, DashboardUpdate{Status: model.DashboardError, Error: "upstream 404"})

	snap := tr.Snapshot()
	if snap.CompletedCount != 1 {
		t.Errorf("CompletedCount = %d, want 1", snap.CompletedCount)
	}
	if snap.FailedCount != 1 {
		t.Errorf("FailedCount = %d, want 1", snap.FailedCount)
	}
}

func TestSnapshot_ConsistentUnderConcurrentWrites(t *testing.T) {
	tr := newTestTracker(t)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tr.UpdateDashboard(1, DashboardUpdate{CompletedFile: "file"})
		}(i)
	}
	wg.Wait()

	snap := tr.Snapshot()
	if len(snap.Dashboards[1].CompletedFiles) != 50 {
		t.Errorf("CompletedFiles len = %d, want 50 (no lost updates, no torn reads)", len(snap.Dashboards[1].CompletedFiles))
	}

	// Mutating the snapshot's map must never affect tracker-owned state.
	snap.Dashboards[999] = model.DashboardProgress{ID: 999}
	fresh := tr.Snapshot()
	if _, exists := fresh.Dashboards[999]; exists {
		t.Error("Snapshot() must return an independent copy")
	}
}

func TestUpdateMergeAndKBBuild(t *testing.T) {
	tr := newTestTracker(t)
	if err := tr.UpdateMerge(model.SubStepInProgress, "table_metadata"); err != nil {
		t.Fatalf("UpdateMerge: %v", err)
	}
	if err := tr.UpdateKBBuild(model.SubStepCompleted, "zip"); err != nil {
		t.Fatalf("UpdateKBBuild: %v", err)
	}

	snap := tr.Snapshot()
	if snap.Merge.Status != model.SubStepInProgress || snap.Merge.CurrentStep != "table_metadata" {
		t.Errorf("Merge = %+v, want IN_PROGRESS/table_metadata", snap.Merge)
	}
	if snap.KBBuild.Status != model.SubStepCompleted {
		t.Errorf("KBBuild.Status = %v, want COMPLETED", snap.KBBuild.Status)
	}
}
