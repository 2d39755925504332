package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

func TestGetJobSuccess(t *testing.T) {
	jobs := &jobStoreFake{job: &domain.ConversionJob{ID: "job-1", Status: domain.JobSucceeded}}
	uc := NewConversionStatusUseCase(jobs, &batchStoreFake{})

	job, err := uc.GetJob(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if job.ID != "job-1" || job.Status != domain.JobSucceeded {
		t.Fatalf("unexpected job: %+v", job)
	}
}

func TestGetJobNotFoundKindPreserved(t *testing.T) {
	jobs := &jobStoreFake{getErr: domain.WrapError(domain.ErrJobNotFound, "load job", errors.New("no rows"))}
	uc := NewConversionStatusUseCase(jobs, &batchStoreFake{})

	_, err := uc.GetJob(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrJobNotFound) {
		t.Fatalf("expected job-not-found kind to survive wrapping, got %v", err)
	}
}

func TestGetBatchSuccess(t *testing.T) {
	batches := &batchStoreFake{batch: &domain.ConversionBatch{ID: "batch-1", Status: domain.BatchPartial}}
	uc := NewConversionStatusUseCase(&jobStoreFake{}, batches)

	batch, err := uc.GetBatch(context.Background(), "batch-1")
	if err != nil {
		t.Fatalf("GetBatch() error = %v", err)
	}
	if batch.ID != "batch-1" || batch.Status != domain.BatchPartial {
		t.Fatalf("unexpected batch: %+v", batch)
	}
}
