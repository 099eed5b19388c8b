package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"CovidTracker/internal/analysis"
	"CovidTracker/internal/domain"
	"CovidTracker/internal/ports"
)

// PipelineDeps wires the adapters into the analysis run.
type PipelineDeps struct {
	Source     ports.DatasetSource
	Repository ports.ReportRepository
	Sink       ports.ReportSink
	Locations  []string
	Metrics    []string
	WindowDays int
	Logger     *slog.Logger
}

// Pipeline executes one full analysis pass: load, filter, gap-fill,
// snapshot, derive rates, rank insights, then persist and publish the
// report. Every stage consumes an immutable view of its predecessor's
// output; nothing inside the run aborts on missing data.
type Pipeline struct {
	source     ports.DatasetSource
	repository ports.ReportRepository
	sink       ports.ReportSink
	locations  []string
	metrics    []string
	window     time.Duration
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	days := deps.WindowDays
	if days <= 0 {
		days = 30
	}
	metrics := deps.Metrics
	if len(metrics) == 0 {
		metrics = domain.KeyMetrics()
	}
	return &Pipeline{
		source:     deps.Source,
		repository: deps.Repository,
		sink:       deps.Sink,
		locations:  deps.Locations,
		metrics:    metrics,
		window:     time.Duration(days) * 24 * time.Hour,
		logger:     deps.Logger,
	}
}

// Run performs a single analysis over the current dataset.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (*domain.Report, error) {
	if p.source == nil {
		return nil, fmt.Errorf("dataset source is not configured")
	}

	ds, err := p.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	p.debug("dataset loaded", "rows", len(ds.Records), "columns", len(ds.Columns))

	schema := analysis.DetectSchema(ds)

	filtered, missingLocations := analysis.FilterLocations(ds.Records, p.locations)
	if len(missingLocations) > 0 {
		p.debug("locations without records", "missing", missingLocations)
	}

	missingCounts := analysis.MissingCounts(filtered, p.metrics)

	grouped := analysis.GroupByLocation(filtered)
	filled := analysis.ForwardFill(grouped, p.metrics)
	p.debug("series filled", "locations", len(filled))

	snapshot := analysis.DeriveRates(analysis.LatestSnapshot(filled), schema)
	window := analysis.WindowAverages(filled, domain.MetricNewCases, p.window)

	insights, skips := analysis.RankInsights(snapshot, window, schema)
	p.debug("insights ranked", "produced", len(insights), "skipped", len(skips))

	report := &domain.Report{
		GeneratedAt:      now,
		Locations:        presentLocations(filled),
		MissingLocations: missingLocations,
		MissingCounts:    missingCounts,
		Series:           filled,
		Snapshot:         snapshot,
		WindowAverages:   window,
		Insights:         insights,
		Skips:            skips,
	}
	report.FirstDate, report.LastDate = dateRange(filtered)

	if p.repository != nil {
		if err := p.repository.SaveRun(ctx, report); err != nil {
			return nil, fmt.Errorf("persist report: %w", err)
		}
	}

	if p.sink != nil {
		if err := p.sink.Publish(ctx, report); err != nil {
			return nil, fmt.Errorf("publish report: %w", err)
		}
	}

	return report, nil
}

func presentLocations(filled map[string]domain.Series) []string {
	locations := make([]string, 0, len(filled))
	for location := range filled {
		locations = append(locations, location)
	}
	sort.Strings(locations)
	return locations
}

func dateRange(records []domain.Record) (first, last time.Time) {
	for _, rec := range records {
		if first.IsZero() || rec.Date.Before(first) {
			first = rec.Date
		}
		if rec.Date.After(last) {
			last = rec.Date
		}
	}
	return first, last
}

func (p *Pipeline) debug(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
