package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"CovidTracker/internal/domain"
	"CovidTracker/internal/ports"
)

// PostgresRepository persists run reports into Postgres: one row per run
// plus child rows for every insight and skipped query.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ReportRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveRun stores the report inside a single transaction so a partially
// written run never becomes visible.
func (r *PostgresRepository) SaveRun(ctx context.Context, report *domain.Report) error {
	if r.db == nil || report == nil {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query, args, err := r.builder.
		Insert("pipeline_runs").
		Columns("generated_at", "locations", "missing_locations", "first_date", "last_date").
		Values(
			report.GeneratedAt,
			pq.StringArray(report.Locations),
			pq.StringArray(report.MissingLocations),
			report.FirstDate,
			report.LastDate,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build run insert: %w", err)
	}

	var runID int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&runID); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, insight := range report.Insights {
		query, args, err := r.builder.
			Insert("run_insights").
			Columns("run_id", "label", "location", "value").
			Values(runID, insight.Label, insight.Location, insight.Value).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insight insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert insight %s: %w", insight.Label, err)
		}
	}

	for _, skip := range report.Skips {
		query, args, err := r.builder.
			Insert("run_skips").
			Columns("run_id", "query", "reason").
			Values(runID, skip.Query, skip.Reason).
			ToSql()
		if err != nil {
			return fmt.Errorf("build skip insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert skip %s: %w", skip.Query, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}

	return nil
}
