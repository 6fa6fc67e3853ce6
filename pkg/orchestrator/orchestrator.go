// Package orchestrator drives the end-to-end run described in
// spec.md §4.7: fan out the phase engine across dashboards, then run
// the merge engine, then package the knowledge base, advancing the
// overall run's state machine (IDLE -> EXTRACTING -> MERGING ->
// BUILDING_KB -> COMPLETED) at each stage.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/mergeengine"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/model"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/phaseengine"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/progress"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/shared/logging"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/shared/workerpool"

	"go.uber.org/zap"
)

// Notifier is the subset of notify.SlackNotifier the orchestrator depends
// on; a nil Notifier disables completion notifications.
type Notifier interface {
	NotifyRunCompleted(ctx context.Context, runID string, snapshot model.ProgressState) error
}

// KBPackager is the subset of kbpackage.Builder the orchestrator
// depends on.
type KBPackager interface {
	Build(ctx context.Context) (string, error)
}

// Config bounds run-level concurrency.
type Config struct {
	MaxWorkersDashboards int
	Incremental          bool

	// ContinueOnError, per spec.md §4.6, controls whether a failed
	// dashboard is allowed to run alongside the rest (true, the
	// default) or whether the run cancels outstanding dashboard
	// workers on the first failure (false).
	ContinueOnError bool
}

// Orchestrator owns one end-to-end run.
type Orchestrator struct {
	engine   *phaseengine.Engine
	merge    *mergeengine.Engine
	kb       KBPackager
	tracker  *progress.Tracker
	notifier Notifier
	cfg      Config
	logger   *zap.Logger
}

// New builds an Orchestrator. kb and notifier may be nil to disable
// their respective stages.
func New(engine *phaseengine.Engine, merge *mergeengine.Engine, kb KBPackager, tracker *progress.Tracker, notifier Notifier, cfg Config, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{engine: engine, merge: merge, kb: kb, tracker: tracker, notifier: notifier, cfg: cfg, logger: logger}
}

// Run processes every dashboard ID, merges the results, and packages
// the knowledge base. With ContinueOnError true (the default) it never
// returns an error solely because some dashboards failed; with it
// false, the first dashboard failure cancels outstanding dashboard
// workers and the run proceeds to merge only the dashboards that had
// already succeeded. It returns an error only for a failure in the
// run's own control flow (e.g. the merge or packaging stage itself).
func (o *Orchestrator) Run(ctx context.Context, dashboardIDs []int, mode phaseengine.Mode) error {
	o.tracker.UpdateOverall(model.OverallExtracting, fmt.Sprintf("processing %d dashboards", len(dashboardIDs)))

	limit := o.cfg.MaxWorkersDashboards
	if limit <= 0 {
		limit = 5
	}
	errs := workerpool.Run(ctx, limit, dashboardIDs, !o.cfg.ContinueOnError, func(ctx context.Context, id int) error {
		return o.engine.Process(ctx, id, mode)
	})
	failedCount := 0
	for i, err := range errs {
		if err != nil {
			failedCount++
			o.logger.Warn("dashboard processing failed", logging.DashboardFields("process", dashboardIDs[i]).Error(err).ToZap()...)
		}
	}

	succeeded := successfulDashboards(dashboardIDs, errs)

	if len(succeeded) == 0 {
		o.tracker.UpdateOverall(model.OverallCompleted, fmt.Sprintf("0 succeeded, %d failed, merge skipped", failedCount))
		if o.notifier != nil {
			snap := o.tracker.Snapshot()
			if err := o.notifier.NotifyRunCompleted(ctx, snap.RunID, snap); err != nil {
				o.logger.Warn("completion notification failed", zap.Error(err))
			}
		}
		return nil
	}

	o.tracker.UpdateOverall(model.OverallMerging, "consolidating metadata across dashboards")
	if _, err := o.merge.Merge(ctx, succeeded, o.cfg.Incremental); err != nil {
		o.tracker.UpdateOverall(model.OverallMerging, "merge failed: "+err.Error())
		return fmt.Errorf("orchestrator: merge stage: %w", err)
	}

	if o.kb != nil {
		o.tracker.UpdateOverall(model.OverallBuildingKB, "packaging knowledge base")
		o.tracker.UpdateKBBuild("IN_PROGRESS", "zipping merged artifacts")
		if _, err := o.kb.Build(ctx); err != nil {
			o.tracker.UpdateKBBuild("FAILED", err.Error())
			return fmt.Errorf("orchestrator: kb packaging stage: %w", err)
		}
		o.tracker.UpdateKBBuild("COMPLETED", "")
	}

	o.tracker.UpdateOverall(model.OverallCompleted, fmt.Sprintf("%d succeeded, %d failed", len(succeeded), failedCount))

	if o.notifier != nil {
		snap := o.tracker.Snapshot()
		if err := o.notifier.NotifyRunCompleted(ctx, snap.RunID, snap); err != nil {
			o.logger.Warn("completion notification failed", zap.Error(err))
		}
	}

	return nil
}

func successfulDashboards(ids []int, errs []error) []int {
	var out []int
	for i, id := range ids {
		if errs[i] == nil {
			out = append(out, id)
		}
	}
	return out
}
