package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

type BatchRepository struct {
	db *sql.DB
}

func NewBatchRepository(db *sql.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082002)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS conversion_batches (
	id TEXT PRIMARY KEY,
	source_dir TEXT NOT NULL,
	pattern TEXT NOT NULL DEFAULT '*',
	recursive BOOLEAN NOT NULL DEFAULT FALSE,
	target_format TEXT NOT NULL,
	output_dir TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	requested INTEGER NOT NULL DEFAULT 0,
	succeeded INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	message TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversion_batches_status ON conversion_batches(status);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *BatchRepository) Create(ctx context.Context, batch *domain.ConversionBatch) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO conversion_batches (
	id, source_dir, pattern, recursive, target_format, output_dir, status, requested, succeeded, failed, message, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`,
		batch.ID, batch.SourceDir, batch.Pattern, batch.Recursive, string(batch.TargetFormat),
		batch.OutputDir, string(batch.Status), batch.Requested, batch.Succeeded, batch.Failed,
		batch.Message, batch.Error, batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *BatchRepository) GetByID(ctx context.Context, id string) (*domain.ConversionBatch, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, source_dir, pattern, recursive, target_format, output_dir, status, requested, succeeded, failed, message, error_message, created_at, updated_at
FROM conversion_batches
WHERE id = $1
`, id)

	batch, err := scanBatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrBatchNotFound, "get batch by id", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan batch: %w", err)
	}
	return batch, nil
}

func (r *BatchRepository) MarkProcessing(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE conversion_batches
SET status = $2, updated_at = $3
WHERE id = $1
`, id, string(domain.BatchProcessing), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark batch processing: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark batch processing rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrBatchNotFound, "mark batch processing", fmt.Errorf("id=%s", id))
	}
	return nil
}

func (r *BatchRepository) RecordOutcome(ctx context.Context, id string, outcome domain.BatchOutcome) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE conversion_batches
SET status = $2, requested = $3, succeeded = $4, failed = $5, message = $6, error_message = $7, updated_at = $8
WHERE id = $1
`, id, string(outcome.Status), outcome.Requested, outcome.Succeeded, outcome.Failed,
		outcome.Message, outcome.Error, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record batch outcome: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("record batch outcome rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrBatchNotFound, "record batch outcome", fmt.Errorf("id=%s", id))
	}
	return nil
}

type batchScanner interface {
	Scan(dest ...interface{}) error
}

func scanBatch(row batchScanner) (*domain.ConversionBatch, error) {
	var batch domain.ConversionBatch
	var targetFormat, status string

	err := row.Scan(
		&batch.ID, &batch.SourceDir, &batch.Pattern, &batch.Recursive, &targetFormat,
		&batch.OutputDir, &status, &batch.Requested, &batch.Succeeded, &batch.Failed,
		&batch.Message, &batch.Error, &batch.CreatedAt, &batch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	batch.TargetFormat = domain.Format(targetFormat)
	batch.Status = domain.BatchStatus(status)
	return &batch, nil
}
