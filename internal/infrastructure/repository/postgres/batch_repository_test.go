package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

func TestBatchGetByIDScansRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewBatchRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "source_dir", "pattern", "recursive", "target_format", "output_dir", "status",
		"requested", "succeeded", "failed", "message", "error_message", "created_at", "updated_at",
	}).AddRow(
		"batch-1", "/docs", "*.html", true, "markdown", "/out", "partial",
		5, 3, 2, "Converted 3 files, 2 failed", "", now, now,
	)
	mock.ExpectQuery("FROM conversion_batches").WithArgs("batch-1").WillReturnRows(rows)

	batch, err := repo.GetByID(context.Background(), "batch-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.Status != domain.BatchPartial {
		t.Fatalf("expected status partial, got %s", batch.Status)
	}
	if !batch.Recursive {
		t.Fatal("expected recursive flag to survive the round trip")
	}
	if batch.Succeeded != 3 || batch.Failed != 2 {
		t.Fatalf("expected 3/2 counts, got %d/%d", batch.Succeeded, batch.Failed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBatchGetByIDNotFoundKind(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewBatchRepository(db)

	mock.ExpectQuery("FROM conversion_batches").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for missing batch")
	}
	if !domain.IsKind(err, domain.ErrBatchNotFound) {
		t.Fatalf("expected batch not found kind, got %v", err)
	}
}

func TestBatchCreateInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewBatchRepository(db)

	now := time.Now().UTC()
	batch := &domain.ConversionBatch{
		ID:           "batch-1",
		SourceDir:    "/docs",
		Pattern:      "*",
		TargetFormat: domain.FormatMarkdown,
		OutputDir:    "/out",
		Status:       domain.BatchQueued,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	mock.ExpectExec("INSERT INTO conversion_batches").
		WithArgs("batch-1", "/docs", "*", false, "markdown", "/out", "queued",
			0, 0, 0, "", "", now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBatchMarkProcessingMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewBatchRepository(db)

	mock.ExpectExec("UPDATE conversion_batches").
		WithArgs("gone", "processing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.MarkProcessing(context.Background(), "gone")
	if err == nil {
		t.Fatal("expected error for missing batch")
	}
	if !domain.IsKind(err, domain.ErrBatchNotFound) {
		t.Fatalf("expected batch not found kind, got %v", err)
	}
}

func TestBatchRecordOutcomeUpdatesCounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	repo := NewBatchRepository(db)

	outcome := domain.BatchOutcome{
		Status:    domain.BatchPartial,
		Requested: 5,
		Succeeded: 3,
		Failed:    2,
		Message:   "Converted 3 files, 2 failed",
	}
	mock.ExpectExec("UPDATE conversion_batches").
		WithArgs("batch-1", "partial", 5, 3, 2, "Converted 3 files, 2 failed", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.RecordOutcome(context.Background(), "batch-1", outcome); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
