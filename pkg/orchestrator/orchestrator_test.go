package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/mergeengine"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/model"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/phaseengine"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/progress"

	"go.uber.org/zap"
)

type fakeFetcher struct{}

func (fakeFetcher) FetchDashboard(ctx context.Context, id int) (*model.DashboardRecord, error) {
	if id == 2 {
		return nil, errors.New("upstream exploded")
	}
	return &model.DashboardRecord{ID: id, Title: "D"}, nil
}

type alwaysFailsFetcher struct{}

func (alwaysFailsFetcher) FetchDashboard(ctx context.Context, id int) (*model.DashboardRecord, error) {
	return nil, errors.New("upstream exploded")
}

func TestRun_ContinuesPastDashboardFailures(t *testing.T) {
	dir := t.TempDir()
	store := artifactstore.New(dir)
	tracker, err := progress.New(store, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	logger := zap.NewNop()

	eng := phaseengine.New(fakeFetcher{}, nil, nil, nil, store, tracker, phaseengine.Config{}, logger)
	merge := mergeengine.New(store, tracker, nil)

	orch := New(eng, merge, nil, tracker, nil, Config{MaxWorkersDashboards: 2, ContinueOnError: true}, logger)
	if err := orch.Run(context.Background(), []int{1, 2, 3}, phaseengine.ModeFresh); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	snap := tracker.Snapshot()
	if snap.OverallStatus != model.OverallCompleted {
		t.Errorf("OverallStatus = %v, want COMPLETED", snap.OverallStatus)
	}
	if snap.Dashboards[2].Status != model.DashboardError {
		t.Errorf("dashboard 2 status = %v, want ERROR", snap.Dashboards[2].Status)
	}
	if snap.Dashboards[1].Status != model.DashboardCompleted {
		t.Errorf("dashboard 1 status = %v, want COMPLETED", snap.Dashboards[1].Status)
	}
}

func TestRun_SkipsMergeWhenEveryDashboardFails(t *testing.T) {
	dir := t.TempDir()
	store := artifactstore.New(dir)
	tracker, err := progress.New(store, "run-2")
	if err != nil {
		t.Fatal(err)
	}
	logger := zap.NewNop()

	eng := phaseengine.New(alwaysFailsFetcher{}, nil, nil, nil, store, tracker, phaseengine.Config{}, logger)
	merge := mergeengine.New(store, tracker, nil)

	orch := New(eng, merge, nil, tracker, nil, Config{MaxWorkersDashboards: 2, ContinueOnError: true}, logger)
	if err := orch.Run(context.Background(), []int{1, 2}, phaseengine.ModeFresh); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	snap := tracker.Snapshot()
	if snap.OverallStatus != model.OverallCompleted {
		t.Errorf("OverallStatus = %v, want COMPLETED", snap.OverallStatus)
	}
	if snap.Dashboards[1].Status != model.DashboardError || snap.Dashboards[2].Status != model.DashboardError {
		t.Errorf("dashboard statuses = %+v, want both ERROR", snap.Dashboards)
	}
}

func TestRun_StopsOutstandingWorkersWhenContinueOnErrorFalse(t *testing.T) {
	dir := t.TempDir()
	store := artifactstore.New(dir)
	tracker, err := progress.New(store, "run-3")
	if err != nil {
		t.Fatal(err)
	}
	logger := zap.NewNop()

	eng := phaseengine.New(fakeFetcher{}, nil, nil, nil, store, tracker, phaseengine.Config{}, logger)
	merge := mergeengine.New(store, tracker, nil)

	orch := New(eng, merge, nil, tracker, nil, Config{MaxWorkersDashboards: 2, ContinueOnError: false}, logger)
	if err := orch.Run(context.Background(), []int{1, 2, 3}, phaseengine.ModeFresh); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	snap := tracker.Snapshot()
	if snap.Dashboards[2].Status != model.DashboardError {
		t.Errorf("dashboard 2 status = %v, want ERROR", snap.Dashboards[2].Status)
	}
}
