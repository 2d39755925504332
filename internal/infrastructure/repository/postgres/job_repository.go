package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *JobRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082001)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS conversion_jobs (
	id TEXT PRIMARY KEY,
	source_path TEXT NOT NULL,
	source_format TEXT NOT NULL DEFAULT '',
	target_format TEXT NOT NULL,
	output_path TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	attempts INTEGER NOT NULL DEFAULT 0,
	input_bytes BIGINT NOT NULL DEFAULT 0,
	output_bytes BIGINT NOT NULL DEFAULT 0,
	size_ratio DOUBLE PRECISION NOT NULL DEFAULT 0,
	duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversion_jobs_status ON conversion_jobs(status);
CREATE INDEX IF NOT EXISTS idx_conversion_jobs_created_at ON conversion_jobs(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *JobRepository) Create(ctx context.Context, job *domain.ConversionJob) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO conversion_jobs (
	id, source_path, source_format, target_format, output_path, status, attempts, input_bytes, output_bytes, size_ratio, duration_seconds, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`,
		job.ID, job.SourcePath, string(job.SourceFormat), string(job.TargetFormat), job.OutputPath,
		string(job.Status), job.Attempts, job.InputBytes, job.OutputBytes, job.SizeRatio,
		job.DurationSeconds, job.Error, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.ConversionJob, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, source_path, source_format, target_format, output_path, status, attempts, input_bytes, output_bytes, size_ratio, duration_seconds, error_message, created_at, updated_at
FROM conversion_jobs
WHERE id = $1
`, id)

	var job domain.ConversionJob
	var sourceFormat, targetFormat, status string

	err := row.Scan(
		&job.ID, &job.SourcePath, &sourceFormat, &targetFormat, &job.OutputPath, &status,
		&job.Attempts, &job.InputBytes, &job.OutputBytes, &job.SizeRatio, &job.DurationSeconds,
		&job.Error, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrJobNotFound, "get job by id", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}

	job.SourceFormat = domain.Format(sourceFormat)
	job.TargetFormat = domain.Format(targetFormat)
	job.Status = domain.JobStatus(status)
	return &job, nil
}

func (r *JobRepository) MarkProcessing(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE conversion_jobs
SET status = $2, updated_at = $3
WHERE id = $1
`, id, string(domain.JobProcessing), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark job processing: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark job processing rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrJobNotFound, "mark job processing", fmt.Errorf("id=%s", id))
	}
	return nil
}

func (r *JobRepository) RecordOutcome(ctx context.Context, id string, outcome domain.ConversionOutcome) error {
	status := domain.JobFailed
	if outcome.Success {
		status = domain.JobSucceeded
	}
	var ratio float64
	if outcome.InputBytes > 0 {
		ratio = float64(outcome.OutputBytes) / float64(outcome.InputBytes)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE conversion_jobs
SET status = $2, attempts = $3, input_bytes = $4, output_bytes = $5, size_ratio = $6, duration_seconds = $7, error_message = $8, updated_at = $9
WHERE id = $1
`, id, string(status), outcome.Attempts, outcome.InputBytes, outcome.OutputBytes, ratio,
		outcome.Duration.Seconds(), outcome.Error, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record job outcome: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("record job outcome rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrJobNotFound, "record job outcome", fmt.Errorf("id=%s", id))
	}
	return nil
}
