// Package api implements the thin REST façade from spec.md §6: kick
// off a run, poll its progress, and download per-dashboard or merged
// artifacts. It deliberately does no business logic of its own — every
// handler delegates straight to the orchestrator, progress tracker, or
// artifact store.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/phaseengine"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/progress"
)

// RunLauncher is the subset of orchestrator.Orchestrator the API
// depends on. Run is expected to be launched in a background
// goroutine by the handler; the API never blocks a request on a full
// extraction run.
type RunLauncher interface {
	Run(ctx context.Context, dashboardIDs []int, mode phaseengine.Mode) error
}

// Server wires the REST façade's routes.
type Server struct {
	router  chi.Router
	runner  RunLauncher
	tracker *progress.Tracker
	store   *artifactstore.Store
}

// New builds a Server with CORS and request logging middleware, per
// the teacher's chi-based router conventions.
func New(runner RunLauncher, tracker *progress.Tracker, store *artifactstore.Store) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	s := &Server{router: r, runner: runner, tracker: tracker, store: store}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Post("/dashboards/process", s.handleProcessDashboards)
	s.router.Get("/progress", s.handleProgress)
	s.router.Get("/dashboards/{id}/files", s.handleListDashboardFiles)
	s.router.Get("/dashboards/{id}/file/{type}", s.handleGetDashboardFile)
	s.router.Get("/dashboards/{id}/download/{type}", s.handleDownloadDashboardFile)
	s.router.Get("/knowledge-base/download", s.handleDownloadKnowledgeBase)
	s.router.Get("/healthz", s.handleHealthz)
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
