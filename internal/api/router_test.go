package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/phaseengine"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/progress"
)

type fakeRunner struct {
	called chan struct{}
}

func (f *fakeRunner) Run(ctx context.Context, ids []int, mode phaseengine.Mode) error {
	close(f.called)
	return nil
}

func newTestServer(t *testing.T) (*Server, *fakeRunner, string) {
	t.Helper()
	dir := t.TempDir()
	store := artifactstore.New(dir)
	tracker, err := progress.New(store, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	runner := &fakeRunner{called: make(chan struct{})}
	return New(runner, tracker, store), runner, dir
}

func TestHandleProcessDashboards_StartsRun(t *testing.T) {
	s, runner, _ := newTestServer(t)

	body := strings.NewReader(`{"dashboard_ids": [1, 2], "mode": "FRESH"}`)
	req := httptest.NewRequest(http.MethodPost, "/dashboards/process", body)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	select {
	case <-runner.called:
	case <-time.After(time.Second):
		t.Error("expected runner.Run to be invoked")
	}
}

func TestHandleProcessDashboards_RejectsEmptyIDs(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/dashboards/process", strings.NewReader(`{"dashboard_ids": []}`))
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleProgress_ReturnsSnapshot(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/progress", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if body["run_id"] != "run-1" {
		t.Errorf("run_id = %v, want run-1", body["run_id"])
	}
}

func TestHandleGetDashboardFile_NotFound(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboards/42/file/json", nil)
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
