// Package phaseengine runs the eight-phase per-dashboard extraction
// state machine from spec.md §4.5: fetch, table/column discovery,
// schema enrichment, then five LLM-driven metadata phases, each
// writing its artifact before the next phase starts so a crash mid-run
// leaves the completed phases' artifacts on disk.
package phaseengine

import (
	"context"
	"fmt"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/catalog"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/llmgateway"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/model"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/progress"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/schemasource"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/shared/logging"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/sqlparse"

	"go.uber.org/zap"
)

// DashboardFetcher is the subset of dashboardsource.Client the engine
// depends on; satisfied by *dashboardsource.Client.
type DashboardFetcher interface {
	FetchDashboard(ctx context.Context, id int) (*model.DashboardRecord, error)
}

// TableValidator is the subset of catalog.Validator the engine
// depends on; satisfied by *catalog.Validator.
type TableValidator interface {
	Validate(ctx context.Context, tableNames []string) []catalog.Result
}

// SchemaDescriber is the subset of schemasource.Client the engine
// depends on; satisfied by *schemasource.Client.
type SchemaDescriber interface {
	Describe(ctx context.Context, tableNames []string) []schemasource.TableResult
}

// LLMInvoker is the subset of llmgateway.Gateway the engine depends
// on; satisfied by *llmgateway.Gateway.
type LLMInvoker interface {
	Invoke(ctx context.Context, name llmgateway.PromptName, data interface{}, out interface{}) error
}

// Mode selects FRESH (wipe and redo) vs USE_EXISTING (reuse artifacts
// already on disk if complete) semantics, per spec.md §4.5.
type Mode string

const (
	ModeFresh       Mode = "FRESH"
	ModeUseExisting Mode = "USE_EXISTING"
)

// Config bounds the engine's concurrency and feature gates.
type Config struct {
	ChartWorkers           int
	DefaultCatalog         string
	EnableLLMExtraction    bool
	EnableTableValidation  bool
	EnableSchemaEnrichment bool
}

// Engine runs the phase sequence for a single dashboard. It holds no
// per-dashboard state itself; Process is safe to call concurrently for
// different dashboard IDs from the orchestrator's outer worker pool.
type Engine struct {
	dashboards DashboardFetcher
	validator  TableValidator
	schema     SchemaDescriber
	llm        LLMInvoker
	store      *artifactstore.Store
	tracker    *progress.Tracker
	cfg        Config
	logger     *zap.Logger
}

// New builds an Engine. validator, schema, and llm may be nil when
// their respective cfg gate is false; Process checks the gate before
// dereferencing them.
func New(dashboards DashboardFetcher, validator TableValidator, schema SchemaDescriber, llm LLMInvoker, store *artifactstore.Store, tracker *progress.Tracker, cfg Config, logger *zap.Logger) *Engine {
	return &Engine{dashboards: dashboards, validator: validator, schema: schema, llm: llm, store: store, tracker: tracker, cfg: cfg, logger: logger}
}

// dashboardState carries intermediate results between phases within a
// single Process call.
type dashboardState struct {
	id          int
	dashboard   *model.DashboardRecord
	tableRows   []model.TableColumnRow
	validTables map[string]bool
	tablePairs  [][2]string
}

// Process runs the eight phases for dashboardID in order. The first
// phase to fail marks the dashboard ERROR and stops the sequence;
// remaining phases are not executed, per spec.md §4.5/§7 — a phase
// "fails" when none of its sub-items succeeded.
func (e *Engine) Process(ctx context.Context, dashboardID int, mode Mode) error {
	if mode == ModeUseExisting && e.store.HasAllRequiredArtifacts(dashboardID) {
		e.tracker.UpdateDashboard(dashboardID, progress.DashboardUpdate{Status: model.DashboardCompleted, Phase: 8})
		return nil
	}
	if mode == ModeFresh {
		if err := e.store.DeleteDashboardDir(dashboardID); err != nil {
			return fmt.Errorf("phaseengine: clear dashboard %d: %w", dashboardID, err)
		}
	}
	if err := e.store.EnsureDashboardDir(dashboardID); err != nil {
		return err
	}

	e.tracker.UpdateDashboard(dashboardID, progress.DashboardUpdate{Status: model.DashboardProcessing, Phase: 1})
	st := &dashboardState{id: dashboardID, validTables: map[string]bool{}}

	if err := e.phase1Extraction(ctx, st); err != nil {
		e.tracker.UpdateDashboard(dashboardID, progress.DashboardUpdate{Status: model.DashboardError, Error: err.Error()})
		return err
	}

	phases := []struct {
		name string
		fn   func(context.Context, *dashboardState) error
	}{
		{"tables_and_columns", e.phase2TablesAndColumns},
		{"schema_enrichment", e.phase3SchemaEnrichment},
		{"table_metadata", e.phase4TableMetadata},
		{"column_metadata", e.phase5ColumnMetadata},
		{"joining_conditions", e.phase6JoiningConditions},
		{"filter_conditions", e.phase7FilterConditions},
		{"term_definitions", e.phase8TermDefinitions},
	}

	for i, p := range phases {
		phaseNum := i + 2
		e.tracker.UpdateDashboard(dashboardID, progress.DashboardUpdate{Status: model.DashboardProcessing, Phase: phaseNum})
		if err := p.fn(ctx, st); err != nil {
			e.logger.Warn("phase failed, aborting dashboard", logging.PhaseFields(dashboardID, p.name).Error(err).ToZap()...)
			e.tracker.UpdateDashboard(dashboardID, progress.DashboardUpdate{Status: model.DashboardError, Error: err.Error()})
			return err
		}
		e.tracker.UpdateDashboard(dashboardID, progress.DashboardUpdate{CompletedFile: p.name})
	}

	e.tracker.UpdateDashboard(dashboardID, progress.DashboardUpdate{Status: model.DashboardCompleted, Phase: 8})
	return nil
}

// allFailed reports whether every sub-item in a workerpool.Run result
// errored — spec.md §7's "phase fails if none of its sub-items
// succeeded" test. An empty result set is not a failure; there was
// simply nothing to do.
func allFailed(errs []error) bool {
	if len(errs) == 0 {
		return false
	}
	for _, err := range errs {
		if err == nil {
			return false
		}
	}
	return true
}

// firstError returns the first non-nil error in errs.
func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// primaryTable picks the first table a chart's SQL references, used
// as the best-effort owner of that chart's metric (derived) columns
// when the rule-based parser cannot bind a computed expression to a
// specific source table.
func primaryTable(refs []sqlparse.TableReference, defaultCatalog string) string {
	if len(refs) == 0 {
		return ""
	}
	return sqlparse.NormalizeTableName(refs[0].Name, defaultCatalog)
}
