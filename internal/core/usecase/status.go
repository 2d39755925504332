package usecase

import (
	"context"
	"fmt"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
	"github.com/ducktyper-ai/quackverse-sub003/internal/core/ports"
)

// ConversionStatusUseCase is the read model over persisted jobs and batches.
type ConversionStatusUseCase struct {
	jobs    ports.JobStore
	batches ports.BatchStore
}

func NewConversionStatusUseCase(jobs ports.JobStore, batches ports.BatchStore) *ConversionStatusUseCase {
	return &ConversionStatusUseCase{jobs: jobs, batches: batches}
}

func (uc *ConversionStatusUseCase) GetJob(ctx context.Context, id string) (*domain.ConversionJob, error) {
	job, err := uc.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch job by id: %w", err)
	}
	return job, nil
}

func (uc *ConversionStatusUseCase) GetBatch(ctx context.Context, id string) (*domain.ConversionBatch, error) {
	batch, err := uc.batches.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch batch by id: %w", err)
	}
	return batch, nil
}
