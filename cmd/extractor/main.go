// Command extractor is the pipeline's CLI and HTTP server entrypoint.
// Invoked with --dashboard-ids or --tags it runs a single extraction
// pass and exits with the status code contract from spec.md §6.
// Invoked with --serve it instead blocks serving the REST façade from
// internal/api until the process is signaled.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kakumanuram-sai-ram/metamind-sub000/internal/api"
	"github.com/kakumanuram-sai-ram/metamind-sub000/internal/config"
	"github.com/kakumanuram-sai-ram/metamind-sub000/internal/database"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/catalog"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/dashboardsource"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/kbpackage"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/llmgateway"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/mergeengine"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/metrics"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/notify"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/orchestrator"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/phaseengine"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/progress"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/schemasource"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exit codes per spec.md §6.
const (
	exitSuccess      = 0
	exitUsage        = 1
	exitUpstreamAuth = 2
	exitPartial      = 3
	exitTotal        = 4
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		dashboardIDsFlag = flag.String("dashboard-ids", "", "comma-separated dashboard IDs to process")
		tagsFlag         = flag.String("tags", "", "comma-separated tags; dashboards are resolved via the dashboard source")
		modeFlag         = flag.String("mode", "FRESH", "FRESH or USE_EXISTING")
		serveFlag        = flag.Bool("serve", false, "start the REST façade instead of running a single pass")
		incrementalFlag  = flag.Bool("incremental", true, "merge incrementally against any existing merged_metadata")
	)
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "extractor: failed to initialize logger: %v\n", err)
		return exitTotal
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return exitUsage
	}

	deps, err := wire(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to wire dependencies", zap.Error(err))
		return exitTotal
	}
	defer deps.close()

	if *serveFlag {
		return serve(cfg, deps, logger)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dashboardIDs, err := resolveDashboardIDs(ctx, deps.dashboards, *dashboardIDsFlag, *tagsFlag)
	if err != nil {
		if errors.Is(err, dashboardsource.ErrFatalAuth) {
			logger.Error("upstream authentication failed", zap.Error(err))
			return exitUpstreamAuth
		}
		logger.Error("failed to resolve dashboard IDs", zap.Error(err))
		return exitUsage
	}
	if len(dashboardIDs) == 0 {
		fmt.Fprintln(os.Stderr, "extractor: one of --dashboard-ids or --tags is required unless --serve is given")
		return exitUsage
	}

	mode := phaseengine.ModeFresh
	if strings.EqualFold(*modeFlag, string(phaseengine.ModeUseExisting)) {
		mode = phaseengine.ModeUseExisting
	}
	deps.orchestratorCfg.Incremental = *incrementalFlag

	orch := orchestrator.New(deps.engine, deps.merge, deps.kb, deps.tracker, deps.notifier, deps.orchestratorCfg, logger)
	if err := orch.Run(ctx, dashboardIDs, mode); err != nil {
		logger.Error("run failed", zap.Error(err))
		return exitTotal
	}

	snapshot := deps.tracker.Snapshot()
	switch {
	case snapshot.FailedCount == 0:
		return exitSuccess
	case snapshot.CompletedCount == 0:
		return exitTotal
	default:
		return exitPartial
	}
}

func resolveDashboardIDs(ctx context.Context, client *dashboardsource.Client, idsCSV, tagsCSV string) ([]int, error) {
	if idsCSV != "" {
		parts := strings.Split(idsCSV, ",")
		ids := make([]int, 0, len(parts))
		for _, p := range parts {
			id, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return nil, fmt.Errorf("extractor: invalid --dashboard-ids value %q: %w", p, err)
			}
			ids = append(ids, id)
		}
		return ids, nil
	}
	if tagsCSV == "" {
		return nil, nil
	}
	tags := strings.Split(tagsCSV, ",")
	for i := range tags {
		tags[i] = strings.TrimSpace(tags[i])
	}
	summaries, err := client.FetchDashboardsByTags(ctx, tags)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

func serve(cfg *config.Config, deps *dependencies, logger *zap.Logger) int {
	orch := orchestrator.New(deps.engine, deps.merge, deps.kb, deps.tracker, deps.notifier, deps.orchestratorCfg, logger)
	apiServer := api.New(orch, deps.tracker, deps.store)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(deps.promRegistry, promhttp.HandlerOpts{}))
	mux.Handle("/", apiServer)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			return exitTotal
		}
	case <-sigCh:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return exitTotal
		}
	}
	return exitSuccess
}

// dependencies holds every collaborator wired from config, so run and
// serve can share construction.
type dependencies struct {
	dashboards      *dashboardsource.Client
	store           *artifactstore.Store
	tracker         *progress.Tracker
	engine          *phaseengine.Engine
	merge           *mergeengine.Engine
	kb              *kbpackage.Builder
	notifier        *notify.SlackNotifier
	orchestratorCfg orchestrator.Config
	promRegistry    *prometheus.Registry
	closers         []func() error
}

func (d *dependencies) close() {
	for _, c := range d.closers {
		_ = c()
	}
}

func wire(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*dependencies, error) {
	deps := &dependencies{}

	deps.dashboards = dashboardsource.New(cfg.Dashboard.BaseURL, cfg.Dashboard.Cookie, cfg.Dashboard.CSRFToken, cfg.HTTPTimeout)

	deps.store = artifactstore.New(cfg.BaseDir)
	tracker, err := progress.New(deps.store, runID())
	if err != nil {
		return nil, fmt.Errorf("extractor: failed to initialize progress tracker: %w", err)
	}
	deps.tracker = tracker

	var validator phaseengine.TableValidator
	var describer *schemasource.Client
	if cfg.CatalogDSN != "" {
		db, err := database.Open(cfg.CatalogDSN)
		if err != nil {
			return nil, fmt.Errorf("extractor: failed to open catalog database: %w", err)
		}
		deps.closers = append(deps.closers, db.Close)
		describer = schemasource.New(db, cfg.MaxWorkersCharts)
		if cfg.EnableTableValidation {
			validator = catalog.New(db, cfg.CatalogTableName, describer, cfg.MaxWorkersCharts)
		}
	}

	var llmInvoker phaseengine.LLMInvoker
	var mergeResolver mergeengine.LLMResolver
	if cfg.EnableLLMExtraction {
		gw, err := llmgateway.NewFromConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("extractor: failed to initialize LLM gateway: %w", err)
		}
		llmInvoker = gw
		mergeResolver = gw
	}

	var schemaDescriber phaseengine.SchemaDescriber
	if cfg.EnableSchemaEnrichment && describer != nil {
		schemaDescriber = describer
	}

	engineCfg := phaseengine.Config{
		ChartWorkers:           cfg.MaxWorkersCharts,
		DefaultCatalog:         cfg.CatalogTableName,
		EnableLLMExtraction:    cfg.EnableLLMExtraction,
		EnableTableValidation:  cfg.EnableTableValidation,
		EnableSchemaEnrichment: cfg.EnableSchemaEnrichment,
	}
	deps.engine = phaseengine.New(deps.dashboards, validator, schemaDescriber, llmInvoker, deps.store, deps.tracker, engineCfg, logger)
	deps.merge = mergeengine.New(deps.store, deps.tracker, mergeResolver)
	deps.kb = kbpackage.New(deps.store)
	deps.notifier = notify.New(cfg.SlackWebhookURL)

	deps.promRegistry = prometheus.NewRegistry()
	metrics.New(deps.promRegistry)

	deps.orchestratorCfg = orchestrator.Config{
		MaxWorkersDashboards: cfg.MaxWorkersDashboards,
		Incremental:          true,
		ContinueOnError:      cfg.ContinueOnError,
	}

	return deps, nil
}

func runID() string {
	return "run-" + uuid.NewString()
}
