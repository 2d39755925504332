package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

type submitJobsFake struct {
	created *domain.ConversionJob
	err     error
}

func (f *submitJobsFake) Create(_ context.Context, job *domain.ConversionJob) error {
	if f.err != nil {
		return f.err
	}
	copyJob := *job
	f.created = &copyJob
	return nil
}

func (f *submitJobsFake) GetByID(context.Context, string) (*domain.ConversionJob, error) {
	return nil, errors.New("not implemented")
}

func (f *submitJobsFake) MarkProcessing(context.Context, string) error {
	return errors.New("not implemented")
}

func (f *submitJobsFake) RecordOutcome(context.Context, string, domain.ConversionOutcome) error {
	return errors.New("not implemented")
}

type submitBatchesFake struct {
	created *domain.ConversionBatch
	err     error
}

func (f *submitBatchesFake) Create(_ context.Context, batch *domain.ConversionBatch) error {
	if f.err != nil {
		return f.err
	}
	copyBatch := *batch
	f.created = &copyBatch
	return nil
}

func (f *submitBatchesFake) GetByID(context.Context, string) (*domain.ConversionBatch, error) {
	return nil, errors.New("not implemented")
}

func (f *submitBatchesFake) MarkProcessing(context.Context, string) error {
	return errors.New("not implemented")
}

func (f *submitBatchesFake) RecordOutcome(context.Context, string, domain.BatchOutcome) error {
	return errors.New("not implemented")
}

type submitFilesFake struct {
	savedKey  string
	savedBody string
	saveErr   error
}

func (f *submitFilesFake) Stat(context.Context, string) (domain.FileStat, error) {
	return domain.FileStat{}, nil
}

func (f *submitFilesFake) ReadText(context.Context, string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *submitFilesFake) ReadBinary(context.Context, string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *submitFilesFake) WriteText(context.Context, string, string) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *submitFilesFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *submitFilesFake) MkdirAll(context.Context, string) error { return nil }

func (f *submitFilesFake) FindFiles(context.Context, string, string, bool) ([]string, error) {
	return nil, nil
}

type submitQueueFake struct {
	jobIDs   []string
	batchIDs []string
	jobErr   error
	batchErr error
}

func (f *submitQueueFake) PublishJobQueued(_ context.Context, jobID string) error {
	if f.jobErr != nil {
		return f.jobErr
	}
	f.jobIDs = append(f.jobIDs, jobID)
	return nil
}

func (f *submitQueueFake) PublishBatchQueued(_ context.Context, batchID string) error {
	if f.batchErr != nil {
		return f.batchErr
	}
	f.batchIDs = append(f.batchIDs, batchID)
	return nil
}

func (f *submitQueueFake) Subscribe(context.Context, func(context.Context, string) error, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

func TestSubmitFileSuccess(t *testing.T) {
	jobs := &submitJobsFake{}
	files := &submitFilesFake{}
	queue := &submitQueueFake{}
	uc := NewSubmitConversionUseCase(jobs, &submitBatchesFake{}, files, queue, nil)

	job, err := uc.SubmitFile(context.Background(), "report 1.html", domain.FormatMarkdown, bytes.NewBufferString("<html><body><h1>T</h1></body></html>"))
	if err != nil {
		t.Fatalf("SubmitFile() error = %v", err)
	}
	if job.ID == "" {
		t.Fatalf("expected job id")
	}
	if job.Status != domain.JobQueued {
		t.Fatalf("expected queued status, got %s", job.Status)
	}
	if job.SourceFormat != domain.FormatHTML {
		t.Fatalf("expected inferred html format, got %s", job.SourceFormat)
	}
	if !strings.Contains(files.savedKey, "_report_1.html") || !strings.HasPrefix(files.savedKey, "uploads") {
		t.Fatalf("unexpected storage key %s", files.savedKey)
	}
	if !strings.HasSuffix(job.OutputPath, "report_1.md") {
		t.Fatalf("unexpected output path %s", job.OutputPath)
	}
	if jobs.created == nil {
		t.Fatalf("expected job record creation")
	}
	if len(queue.jobIDs) != 1 || queue.jobIDs[0] != job.ID {
		t.Fatalf("expected queued job id %s, got %v", job.ID, queue.jobIDs)
	}
}

func TestSubmitFileUnsupportedPair(t *testing.T) {
	files := &submitFilesFake{}
	uc := NewSubmitConversionUseCase(&submitJobsFake{}, &submitBatchesFake{}, files, &submitQueueFake{}, nil)

	_, err := uc.SubmitFile(context.Background(), "data.csv", domain.FormatMarkdown, bytes.NewBufferString("a,b"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrUnsupportedConversion) {
		t.Fatalf("expected unsupported-conversion kind, got %v", err)
	}
	if files.savedKey != "" {
		t.Fatalf("rejected submissions must not be stored, got %s", files.savedKey)
	}
}

func TestSubmitFileMissingTargetFormat(t *testing.T) {
	uc := NewSubmitConversionUseCase(&submitJobsFake{}, &submitBatchesFake{}, &submitFilesFake{}, &submitQueueFake{}, nil)

	_, err := uc.SubmitFile(context.Background(), "report.html", "", bytes.NewBufferString("x"))
	if err == nil || !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid-input kind, got %v", err)
	}
}

func TestSubmitFileQueueError(t *testing.T) {
	queue := &submitQueueFake{jobErr: errors.New("queue down")}
	uc := NewSubmitConversionUseCase(&submitJobsFake{}, &submitBatchesFake{}, &submitFilesFake{}, queue, nil)

	_, err := uc.SubmitFile(context.Background(), "report.html", domain.FormatMarkdown, bytes.NewBufferString("x"))
	if err == nil || !strings.Contains(err.Error(), "publish job event") {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestSubmitBatchFillsDefaults(t *testing.T) {
	batches := &submitBatchesFake{}
	queue := &submitQueueFake{}
	uc := NewSubmitConversionUseCase(&submitJobsFake{}, batches, &submitFilesFake{}, queue, nil)

	batch, err := uc.SubmitBatch(context.Background(), &domain.ConversionBatch{
		SourceDir:    "/docs",
		TargetFormat: domain.FormatMarkdown,
	})
	if err != nil {
		t.Fatalf("SubmitBatch() error = %v", err)
	}
	if batch.ID == "" || batch.Status != domain.BatchQueued {
		t.Fatalf("unexpected batch: %+v", batch)
	}
	if batch.Pattern != "*" {
		t.Fatalf("expected default pattern, got %s", batch.Pattern)
	}
	if !strings.Contains(batch.OutputDir, batch.ID) {
		t.Fatalf("expected per-batch output dir, got %s", batch.OutputDir)
	}
	if batches.created == nil || len(queue.batchIDs) != 1 {
		t.Fatalf("expected created and queued batch")
	}
}

func TestSubmitBatchMissingSourceDir(t *testing.T) {
	uc := NewSubmitConversionUseCase(&submitJobsFake{}, &submitBatchesFake{}, &submitFilesFake{}, &submitQueueFake{}, nil)

	_, err := uc.SubmitBatch(context.Background(), &domain.ConversionBatch{TargetFormat: domain.FormatMarkdown})
	if err == nil || !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid-input kind, got %v", err)
	}
}
