package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/phaseengine"
)

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

type processRequest struct {
	DashboardIDs []int    `json:"dashboard_ids"`
	Tags         []string `json:"tags"`
	Mode         string   `json:"mode"` // "FRESH" or "USE_EXISTING"
}

type processResponse struct {
	RunID   string `json:"run_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s *Server) handleProcessDashboards(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.DashboardIDs) == 0 {
		writeError(w, http.StatusBadRequest, "dashboard_ids must not be empty")
		return
	}

	mode := phaseengine.ModeUseExisting
	if req.Mode == string(phaseengine.ModeFresh) {
		mode = phaseengine.ModeFresh
	}

	// The run proceeds in the background; progress is observed via
	// GET /progress. A request-scoped context would be canceled the
	// moment this handler returns, so the run gets its own.
	go func() {
		_ = s.runner.Run(context.Background(), req.DashboardIDs, mode)
	}()

	writeJSON(w, http.StatusAccepted, processResponse{
		Status:  "ACCEPTED",
		Message: "extraction run started",
	})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Snapshot())
}

func (s *Server) handleListDashboardFiles(w http.ResponseWriter, r *http.Request) {
	id, err := parseDashboardID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	files := map[string]string{
		"json":                    s.store.JSONPath(id),
		"csv":                     s.store.CSVPath(id),
		"queries":                 s.store.QueriesPath(id),
		"tables_columns":          s.store.TablesColumnsPath(id),
		"tables_columns_enriched": s.store.TablesColumnsEnrichedPath(id),
		"table_metadata":          s.store.TableMetadataPath(id),
		"columns_metadata":        s.store.ColumnsMetadataPath(id),
		"joining_conditions":      s.store.JoiningConditionsPath(id),
		"filter_conditions":       s.store.FilterConditionsPath(id),
		"definitions":             s.store.DefinitionsPath(id),
	}

	present := map[string]bool{}
	for name, path := range files {
		if _, err := os.Stat(path); err == nil {
			present[name] = true
		}
	}
	writeJSON(w, http.StatusOK, present)
}

func (s *Server) handleGetDashboardFile(w http.ResponseWriter, r *http.Request) {
	id, err := parseDashboardID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	path, ok := dashboardFilePath(s, id, chi.URLParam(r, "type"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown file type")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(data)
}

func (s *Server) handleDownloadDashboardFile(w http.ResponseWriter, r *http.Request) {
	id, err := parseDashboardID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	path, ok := dashboardFilePath(s, id, chi.URLParam(r, "type"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown file type")
		return
	}
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleDownloadKnowledgeBase(w http.ResponseWriter, r *http.Request) {
	path := s.store.Root() + "/knowledge_base.zip"
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "knowledge base has not been built yet")
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=\"knowledge_base.zip\"")
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseDashboardID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

func dashboardFilePath(s *Server, id int, fileType string) (string, bool) {
	switch fileType {
	case "json":
		return s.store.JSONPath(id), true
	case "csv":
		return s.store.CSVPath(id), true
	case "queries":
		return s.store.QueriesPath(id), true
	case "tables_columns":
		return s.store.TablesColumnsPath(id), true
	case "tables_columns_enriched":
		return s.store.TablesColumnsEnrichedPath(id), true
	case "table_metadata":
		return s.store.TableMetadataPath(id), true
	case "columns_metadata":
		return s.store.ColumnsMetadataPath(id), true
	case "joining_conditions":
		return s.store.JoiningConditionsPath(id), true
	case "filter_conditions":
		return s.store.FilterConditionsPath(id), true
	case "definitions":
		return s.store.DefinitionsPath(id), true
	default:
		return "", false
	}
}
