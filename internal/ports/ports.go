package ports

import (
	"context"
	"time"

	"CovidTracker/internal/domain"
)

// DatasetSource loads the raw tabular dataset from wherever it lives
// (local file, downloaded copy). Date normalization happens here; the
// analysis core receives parsed calendar dates.
type DatasetSource interface {
	Load(ctx context.Context) (domain.Dataset, error)
}

// ReportRepository persists run reports for history and audit.
type ReportRepository interface {
	SaveRun(ctx context.Context, report *domain.Report) error
}

// ReportSink delivers a finished report to a consumer (workbook file,
// etc.). Sinks must not mutate the report.
type ReportSink interface {
	Publish(ctx context.Context, report *domain.Report) error
}

// Fetcher downloads the dataset to a local destination when no current
// copy is present.
type Fetcher interface {
	Fetch(ctx context.Context, dest string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
