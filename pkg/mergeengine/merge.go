// Package mergeengine consolidates per-dashboard metadata artifacts
// into the cross-dashboard merged knowledge base, per spec.md §4.6.
// Entities (tables, columns, table pairs, terms) that appear under
// more than one dashboard are reconciled by a most-common-wins vote on
// categorical fields, with free-text fields reconciled through the
// LLM Gateway when candidates genuinely disagree; every reconciliation
// that discarded a distinct value is recorded as a model.ConflictRecord.
package mergeengine

import (
	"context"
	"fmt"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/llmgateway"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/model"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/progress"
)

// LLMResolver is the subset of llmgateway.Gateway the merge engine
// uses to reconcile genuinely conflicting free-text values.
type LLMResolver interface {
	Invoke(ctx context.Context, name llmgateway.PromptName, data interface{}, out interface{}) error
}

// Engine runs the consolidation pass over a set of already-processed
// dashboards' artifacts.
type Engine struct {
	store   *artifactstore.Store
	tracker *progress.Tracker
	llm     LLMResolver
}

// New builds an Engine. llm may be nil, in which case free-text
// conflicts are resolved by the most-common-wins vote, first-seen
// value breaking ties (still recorded as a conflict).
func New(store *artifactstore.Store, tracker *progress.Tracker, llm LLMResolver) *Engine {
	return &Engine{store: store, tracker: tracker, llm: llm}
}

// Result is everything the merge pass produced.
type Result struct {
	Tables    []model.TableMetadata
	Columns   []model.ColumnMetadata
	Joins     []model.JoiningCondition
	Terms     []model.TermDefinition
	Conflicts []model.ConflictRecord
}

type tableContribution struct {
	model.TableMetadata
	source int
}

type columnContribution struct {
	model.ColumnMetadata
	source int
}

type joinContribution struct {
	model.JoiningCondition
	source int
}

type termContribution struct {
	model.TermDefinition
	source int
}

type aggregate struct {
	tables  []tableContribution
	columns []columnContribution
	joins   []joinContribution
	terms   []termContribution
}

// Merge consolidates the named dashboards' artifacts. When incremental
// is true and a prior merged table_metadata.csv exists on disk, a
// table that already has a merged row keeps that row unchanged: a
// differing description from this run is logged to the conflict
// ledger, but the prior resolution is never re-resolved. Only table
// metadata is read back from the prior merge; columns, joins and terms
// are resolved from this run's dashboards alone.
func (e *Engine) Merge(ctx context.Context, dashboardIDs []int, incremental bool) (*Result, error) {
	if e.tracker != nil {
		e.tracker.UpdateMerge("IN_PROGRESS", "loading per-dashboard artifacts")
	}

	agg := &aggregate{}
	for _, id := range dashboardIDs {
		if err := e.loadDashboard(id, agg); err != nil {
			return nil, fmt.Errorf("mergeengine: load dashboard %d: %w", id, err)
		}
	}

	var baseline *Result
	if incremental {
		baseline = e.loadExistingMerge()
	}

	res := &Result{}
	resolveTables(ctx, e.llm, agg, baseline, res)
	resolveColumns(ctx, e.llm, agg, baseline, res)
	resolveJoins(ctx, e.llm, agg, baseline, res)
	resolveTerms(ctx, e.llm, agg, baseline, res)

	if err := e.persist(res); err != nil {
		if e.tracker != nil {
			e.tracker.UpdateMerge("FAILED", err.Error())
		}
		return nil, err
	}

	if e.tracker != nil {
		e.tracker.UpdateMerge("COMPLETED", "")
	}
	return res, nil
}
