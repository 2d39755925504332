package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

func newJobRepoWithMock(t *testing.T) (*JobRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	repo := NewJobRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestJobGetByIDScansRow(t *testing.T) {
	repo, mock, cleanup := newJobRepoWithMock(t)
	defer cleanup()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "source_path", "source_format", "target_format", "output_path", "status",
		"attempts", "input_bytes", "output_bytes", "size_ratio", "duration_seconds",
		"error_message", "created_at", "updated_at",
	}).AddRow(
		"job-1", "/in/report.html", "html", "markdown", "/out/report.md", "succeeded",
		1, int64(2048), int64(512), 0.25, 1.5,
		"", now, now,
	)
	mock.ExpectQuery("FROM conversion_jobs").WithArgs("job-1").WillReturnRows(rows)

	job, err := repo.GetByID(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.SourceFormat != domain.FormatHTML {
		t.Fatalf("expected source format html, got %s", job.SourceFormat)
	}
	if job.TargetFormat != domain.FormatMarkdown {
		t.Fatalf("expected target format markdown, got %s", job.TargetFormat)
	}
	if job.Status != domain.JobSucceeded {
		t.Fatalf("expected status succeeded, got %s", job.Status)
	}
	if job.OutputBytes != 512 {
		t.Fatalf("expected 512 output bytes, got %d", job.OutputBytes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestJobGetByIDNotFoundKind(t *testing.T) {
	repo, mock, cleanup := newJobRepoWithMock(t)
	defer cleanup()

	mock.ExpectQuery("FROM conversion_jobs").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for missing job")
	}
	if !domain.IsKind(err, domain.ErrJobNotFound) {
		t.Fatalf("expected job not found kind, got %v", err)
	}
}

func TestJobCreateInsert(t *testing.T) {
	repo, mock, cleanup := newJobRepoWithMock(t)
	defer cleanup()

	now := time.Now().UTC()
	job := &domain.ConversionJob{
		ID:           "job-1",
		SourcePath:   "/in/report.html",
		SourceFormat: domain.FormatHTML,
		TargetFormat: domain.FormatMarkdown,
		OutputPath:   "/out/report.md",
		Status:       domain.JobQueued,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	mock.ExpectExec("INSERT INTO conversion_jobs").
		WithArgs("job-1", "/in/report.html", "html", "markdown", "/out/report.md", "queued",
			0, int64(0), int64(0), 0.0, 0.0, "", now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestJobMarkProcessingMissingRow(t *testing.T) {
	repo, mock, cleanup := newJobRepoWithMock(t)
	defer cleanup()

	mock.ExpectExec("UPDATE conversion_jobs").
		WithArgs("gone", "processing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkProcessing(context.Background(), "gone")
	if err == nil {
		t.Fatal("expected error for missing job")
	}
	if !domain.IsKind(err, domain.ErrJobNotFound) {
		t.Fatalf("expected job not found kind, got %v", err)
	}
}

func TestJobRecordOutcomeWritesTerminalState(t *testing.T) {
	repo, mock, cleanup := newJobRepoWithMock(t)
	defer cleanup()

	outcome := domain.ConversionOutcome{
		Success:     true,
		Attempts:    2,
		InputBytes:  100,
		OutputBytes: 40,
		Duration:    1500 * time.Millisecond,
	}
	mock.ExpectExec("UPDATE conversion_jobs").
		WithArgs("job-1", "succeeded", 2, int64(100), int64(40), 0.4, 1.5, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.RecordOutcome(context.Background(), "job-1", outcome); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestJobRecordOutcomeFailureKeepsError(t *testing.T) {
	repo, mock, cleanup := newJobRepoWithMock(t)
	defer cleanup()

	outcome := domain.ConversionOutcome{
		Success:   false,
		Attempts:  3,
		Error:     "converter failure: pandoc exited 1",
		ErrorKind: "converter_failure",
	}
	mock.ExpectExec("UPDATE conversion_jobs").
		WithArgs("job-2", "failed", 3, int64(0), int64(0), 0.0, 0.0,
			"converter failure: pandoc exited 1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.RecordOutcome(context.Background(), "job-2", outcome); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
