package usecase

import (
	"context"
	"testing"
	"time"

	"CovidTracker/internal/analysis"
	"CovidTracker/internal/domain"
)

type stubSource struct {
	ds  domain.Dataset
	err error
}

func (s *stubSource) Load(ctx context.Context) (domain.Dataset, error) {
	return s.ds, s.err
}

type captureRepository struct {
	saved *domain.Report
}

func (c *captureRepository) SaveRun(ctx context.Context, report *domain.Report) error {
	c.saved = report
	return nil
}

type captureSink struct {
	published *domain.Report
}

func (c *captureSink) Publish(ctx context.Context, report *domain.Report) error {
	c.published = report
	return nil
}

func date(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse date %s: %v", value, err)
	}
	return parsed
}

func sampleDataset(t *testing.T) domain.Dataset {
	t.Helper()
	columns := []string{
		"location", "date",
		domain.MetricTotalCases, domain.MetricNewCases,
		domain.MetricTotalDeaths, domain.MetricPeopleVaccinated,
		domain.MetricPopulation, domain.MetricDeathsPerMillion,
	}
	records := []domain.Record{
		{Location: "India", Date: date(t, "2021-05-01"), Metrics: map[string]float64{
			domain.MetricTotalCases: 100, domain.MetricNewCases: 10,
			domain.MetricTotalDeaths: 10,
		}},
		{Location: "India", Date: date(t, "2021-05-02"), Metrics: map[string]float64{
			domain.MetricNewCases: 20,
		}},
		{Location: "India", Date: date(t, "2021-05-03"), Metrics: map[string]float64{
			domain.MetricTotalCases: 300, domain.MetricNewCases: 30,
			domain.MetricTotalDeaths: 30, domain.MetricPeopleVaccinated: 50,
			domain.MetricPopulation: 1000, domain.MetricDeathsPerMillion: 42,
		}},
		{Location: "Sweden", Date: date(t, "2021-05-01"), Metrics: map[string]float64{
			domain.MetricTotalCases: 5,
		}},
	}
	return domain.Dataset{Records: records, Columns: columns}
}

func TestPipelineRunEndToEnd(t *testing.T) {
	t.Parallel()

	source := &stubSource{ds: sampleDataset(t)}
	repo := &captureRepository{}
	sink := &captureSink{}

	pipeline := NewPipeline(PipelineDeps{
		Source:     source,
		Repository: repo,
		Sink:       sink,
		Locations:  []string{"India", "Kenya"},
	})

	report, err := pipeline.Run(context.Background(), date(t, "2021-06-01"))
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(report.Locations) != 1 || report.Locations[0] != "India" {
		t.Fatalf("unexpected locations: %v", report.Locations)
	}
	if len(report.MissingLocations) != 1 || report.MissingLocations[0] != "Kenya" {
		t.Fatalf("expected Kenya reported missing, got %v", report.MissingLocations)
	}

	// Sweden is filtered out entirely.
	if _, ok := report.Snapshot["Sweden"]; ok {
		t.Fatalf("unfiltered location leaked into the snapshot")
	}

	entry, ok := report.Snapshot["India"]
	if !ok {
		t.Fatalf("India missing from snapshot")
	}
	if entry.Date != date(t, "2021-05-03") {
		t.Fatalf("snapshot date %v, want 2021-05-03", entry.Date)
	}
	if entry.DeathRate != 10.0 {
		t.Fatalf("death rate %v, want 10.0", entry.DeathRate)
	}
	if entry.VaccinationRate != 5.0 {
		t.Fatalf("vaccination rate %v, want 5.0", entry.VaccinationRate)
	}

	if avg := report.WindowAverages["India"]; avg != 20.0 {
		t.Fatalf("window average %v, want 20.0", avg)
	}

	if report.FirstDate != date(t, "2021-05-01") || report.LastDate != date(t, "2021-05-03") {
		t.Fatalf("unexpected date range: %v .. %v", report.FirstDate, report.LastDate)
	}

	if repo.saved != report {
		t.Fatalf("report not persisted")
	}
	if sink.published != report {
		t.Fatalf("report not published")
	}

	for _, insight := range report.Insights {
		if insight.Location != "India" {
			t.Fatalf("unexpected insight location: %+v", insight)
		}
	}
	if len(report.Insights) != 5 {
		t.Fatalf("expected 5 insights, got %+v, skips %+v", report.Insights, report.Skips)
	}
}

func TestPipelineRunGapFill(t *testing.T) {
	t.Parallel()

	pipeline := NewPipeline(PipelineDeps{
		Source:    &stubSource{ds: sampleDataset(t)},
		Locations: []string{"India"},
	})

	report, err := pipeline.Run(context.Background(), date(t, "2021-06-01"))
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	series := report.Series["India"]
	if len(series) != 3 {
		t.Fatalf("expected 3 records, got %d", len(series))
	}
	if v, ok := series[1].Value(domain.MetricTotalCases); !ok || v != 100 {
		t.Fatalf("middle record not forward-filled: %v %v", v, ok)
	}
	if report.MissingCounts[domain.MetricTotalCases] != 1 {
		t.Fatalf("missing count %d, want 1 (counted before fill)", report.MissingCounts[domain.MetricTotalCases])
	}
}

func TestPipelineRunEmptyDataset(t *testing.T) {
	t.Parallel()

	pipeline := NewPipeline(PipelineDeps{
		Source:    &stubSource{ds: domain.Dataset{}},
		Locations: []string{"India", "Brazil"},
	})

	report, err := pipeline.Run(context.Background(), date(t, "2021-06-01"))
	if err != nil {
		t.Fatalf("empty dataset must not fail the run: %v", err)
	}

	if len(report.Series) != 0 || len(report.Snapshot) != 0 || len(report.Insights) != 0 {
		t.Fatalf("expected empty outputs, got %+v", report)
	}
	if len(report.MissingLocations) != 2 {
		t.Fatalf("expected both locations reported missing, got %v", report.MissingLocations)
	}
	if len(report.Skips) != 5 {
		t.Fatalf("expected all queries skipped, got %+v", report.Skips)
	}
}

func TestPipelineRunSourceRequired(t *testing.T) {
	t.Parallel()

	pipeline := NewPipeline(PipelineDeps{})
	if _, err := pipeline.Run(context.Background(), time.Now()); err == nil {
		t.Fatalf("expected error without a source")
	}
}

func TestPipelineRatesMatchDirectDerivation(t *testing.T) {
	t.Parallel()

	// The pipeline computes rates exactly once; ranking must agree with
	// the snapshot fields rather than re-deriving.
	pipeline := NewPipeline(PipelineDeps{
		Source:    &stubSource{ds: sampleDataset(t)},
		Locations: []string{"India"},
	})

	report, err := pipeline.Run(context.Background(), date(t, "2021-06-01"))
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	schema := analysis.DetectSchema(sampleDataset(t))
	for _, insight := range report.Insights {
		if insight.Label == analysis.QueryDeathRate && insight.Value != report.Snapshot["India"].DeathRate {
			t.Fatalf("ranked death rate %v diverges from snapshot %v", insight.Value, report.Snapshot["India"].DeathRate)
		}
	}
	if !schema.Has(domain.MetricTotalDeaths) {
		t.Fatalf("sample schema should carry total_deaths")
	}
}
