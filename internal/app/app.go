package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"CovidTracker/internal/config"
	"CovidTracker/internal/dataset"
	"CovidTracker/internal/infrastructure/catalog"
	"CovidTracker/internal/infrastructure/loader"
	"CovidTracker/internal/infrastructure/report"
	"CovidTracker/internal/infrastructure/scheduler"
	"CovidTracker/internal/infrastructure/storage"
	"CovidTracker/internal/logging"
	"CovidTracker/internal/ports"
	"CovidTracker/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	db        *sql.DB
	logger    *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := dataset.NewRegistry()
	registry.Register(loader.NewCSVReader())
	registry.Register(loader.NewXLSXReader())

	var fetcher ports.Fetcher
	if cfg.Dataset.Catalog.IndexURL != "" {
		fetcher = catalog.NewClient(cfg.Dataset.Catalog.IndexURL, cfg.Dataset.Catalog.Keyword, nil)
	}

	source := loader.NewStrategySource(registry, cfg.Dataset, fetcher, baseLogger.With("component", "source"))

	var db *sql.DB
	var repository ports.ReportRepository
	if cfg.Database.DSN != "" {
		opened, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		db = opened
		repository = storage.NewPostgresRepository(db)
	}

	var sink ports.ReportSink
	if cfg.Report.WorkbookPath != "" {
		sink = report.NewExcelWriter(cfg.Report.WorkbookPath)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Repository: repository,
		Sink:       sink,
		Locations:  cfg.Analysis.Locations,
		Metrics:    cfg.Analysis.Metrics,
		WindowDays: cfg.Analysis.WindowDays,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	var sched *usecase.Scheduler
	if cfg.Scheduler.Enabled {
		driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
		sched = usecase.NewScheduler(driver, pipeline, baseLogger.With("component", "scheduler"))
	}

	return &Application{
		cfg:       cfg,
		pipeline:  pipeline,
		scheduler: sched,
		db:        db,
		logger:    baseLogger,
	}, nil
}

// Run executes one analysis immediately and, when the scheduler is
// enabled, keeps running until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	now := time.Now().In(a.cfg.Scheduler.Location())
	result, err := a.pipeline.Run(ctx, now)
	if err != nil {
		return err
	}

	a.logger.Info("analysis complete",
		"locations", len(result.Locations),
		"insights", len(result.Insights),
		"skipped", len(result.Skips),
	)
	for _, insight := range result.Insights {
		a.logger.Info("insight", "label", insight.Label, "location", insight.Location, "value", insight.Value)
	}
	for _, skip := range result.Skips {
		a.logger.Warn("insight skipped", "query", skip.Query, "reason", skip.Reason)
	}

	if a.scheduler == nil {
		return nil
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}

// Close releases long-lived resources.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
