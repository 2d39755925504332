package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
	"github.com/ducktyper-ai/quackverse-sub003/internal/core/ports"
)

// ProcessConversionUseCase executes queued work on the worker side. Per job:
// mark processing, run the engine, persist the outcome. The engine itself
// never raises; the returned error covers persistence problems, and is also
// non-nil for failed conversions so queue consumers log them.
type ProcessConversionUseCase struct {
	jobs    ports.JobStore
	batches ports.BatchStore
	files   ports.FileService
	engine  ports.FileConverter
	batcher ports.BatchConverter
	tracker *domain.Tracker
	log     *slog.Logger
}

func NewProcessConversionUseCase(
	jobs ports.JobStore,
	batches ports.BatchStore,
	files ports.FileService,
	engine ports.FileConverter,
	batcher ports.BatchConverter,
	tracker *domain.Tracker,
	log *slog.Logger,
) *ProcessConversionUseCase {
	if log == nil {
		log = slog.Default()
	}
	return &ProcessConversionUseCase{
		jobs:    jobs,
		batches: batches,
		files:   files,
		engine:  engine,
		batcher: batcher,
		tracker: tracker,
		log:     log,
	}
}

func (uc *ProcessConversionUseCase) ProcessJob(ctx context.Context, jobID string) error {
	if err := uc.jobs.MarkProcessing(ctx, jobID); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	job, err := uc.loadJob(ctx, jobID)
	if err != nil {
		return err
	}

	outcome := uc.engine.ConvertFile(ctx, domain.ConversionTask{
		SourcePath:   job.SourcePath,
		SourceFormat: job.SourceFormat,
		TargetFormat: job.TargetFormat,
		OutputPath:   job.OutputPath,
	})
	uc.tracker.RecordOutcome(outcome)

	if err := uc.jobs.RecordOutcome(ctx, jobID, outcome); err != nil {
		return fmt.Errorf("record job outcome: %w", err)
	}
	if !outcome.Success {
		return fmt.Errorf("convert %s: %s", job.SourcePath, outcome.Error)
	}
	return nil
}

func (uc *ProcessConversionUseCase) ProcessBatch(ctx context.Context, batchID string) error {
	if err := uc.batches.MarkProcessing(ctx, batchID); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	batch, err := uc.loadBatch(ctx, batchID)
	if err != nil {
		return err
	}

	tasks, err := uc.discoverTasks(ctx, batch)
	if err != nil {
		failed := domain.BatchOutcome{
			Status:  domain.BatchFailed,
			Message: fmt.Sprintf("cannot list files in %s", batch.SourceDir),
			Error:   err.Error(),
		}
		if recErr := uc.batches.RecordOutcome(ctx, batchID, failed); recErr != nil {
			return fmt.Errorf("%w; record batch outcome: %v", err, recErr)
		}
		return err
	}

	uc.log.InfoContext(ctx, "batch_discovered",
		"batch_id", batchID,
		"source_dir", batch.SourceDir,
		"pattern", batch.Pattern,
		"tasks", len(tasks),
	)

	outcome := uc.batcher.ConvertBatch(ctx, tasks, batch.OutputDir)
	if err := uc.batches.RecordOutcome(ctx, batchID, outcome); err != nil {
		return fmt.Errorf("record batch outcome: %w", err)
	}
	if !outcome.Success() {
		return fmt.Errorf("batch %s: %s", batchID, outcome.Error)
	}
	return nil
}

func (uc *ProcessConversionUseCase) discoverTasks(ctx context.Context, batch *domain.ConversionBatch) ([]domain.ConversionTask, error) {
	sources, err := uc.files.FindFiles(ctx, batch.SourceDir, batch.Pattern, batch.Recursive)
	if err != nil {
		return nil, fmt.Errorf("find files: %w", err)
	}
	tasks := make([]domain.ConversionTask, 0, len(sources))
	for _, src := range sources {
		tasks = append(tasks, domain.ConversionTask{
			SourcePath:   src,
			TargetFormat: batch.TargetFormat,
		})
	}
	return tasks, nil
}

func (uc *ProcessConversionUseCase) loadJob(ctx context.Context, jobID string) (*domain.ConversionJob, error) {
	job, err := uc.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("fetch job by id: %w", err)
	}
	return job, nil
}

func (uc *ProcessConversionUseCase) loadBatch(ctx context.Context, batchID string) (*domain.ConversionBatch, error) {
	batch, err := uc.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("fetch batch by id: %w", err)
	}
	return batch, nil
}
