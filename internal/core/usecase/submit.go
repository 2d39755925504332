package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
	"github.com/ducktyper-ai/quackverse-sub003/internal/core/ports"
)

// SubmitConversionUseCase accepts conversion work from the API surface.
// Uploads are staged under uploads/ and results land under outputs/<id>/,
// both relative to the file service root. The source/target pairing is
// rejected here, before anything is stored, so callers get an immediate
// answer for conversions that can never run.
type SubmitConversionUseCase struct {
	jobs    ports.JobStore
	batches ports.BatchStore
	files   ports.FileService
	queue   ports.MessageQueue
	pairs   []domain.ConversionPair
}

func NewSubmitConversionUseCase(
	jobs ports.JobStore,
	batches ports.BatchStore,
	files ports.FileService,
	queue ports.MessageQueue,
	pairs []domain.ConversionPair,
) *SubmitConversionUseCase {
	if len(pairs) == 0 {
		pairs = domain.DefaultConversionPairs()
	}
	return &SubmitConversionUseCase{
		jobs:    jobs,
		batches: batches,
		files:   files,
		queue:   queue,
		pairs:   pairs,
	}
}

func (uc *SubmitConversionUseCase) SubmitFile(ctx context.Context, filename string, targetFormat domain.Format, body io.Reader) (*domain.ConversionJob, error) {
	sourceFormat := domain.FormatForPath(filename)
	if err := uc.checkPair(sourceFormat, targetFormat); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	base := sanitizeFilename(filename)
	storageKey := filepath.Join("uploads", fmt.Sprintf("%s_%s", id, base))
	now := time.Now().UTC()

	if err := uc.files.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = "converted"
	}

	job := &domain.ConversionJob{
		ID:           id,
		SourcePath:   storageKey,
		SourceFormat: sourceFormat,
		TargetFormat: targetFormat,
		OutputPath:   filepath.Join("outputs", id, stem+"."+targetFormat.Extension()),
		Status:       domain.JobQueued,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job record: %w", err)
	}

	if err := uc.queue.PublishJobQueued(ctx, job.ID); err != nil {
		return nil, fmt.Errorf("publish job event: %w", err)
	}

	return job, nil
}

func (uc *SubmitConversionUseCase) SubmitBatch(ctx context.Context, batch *domain.ConversionBatch) (*domain.ConversionBatch, error) {
	if batch == nil || batch.SourceDir == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit batch", errors.New("source directory is required"))
	}
	if batch.TargetFormat == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit batch", errors.New("target format is required"))
	}

	now := time.Now().UTC()
	batch.ID = uuid.NewString()
	batch.Status = domain.BatchQueued
	batch.CreatedAt = now
	batch.UpdatedAt = now
	if batch.Pattern == "" {
		batch.Pattern = "*"
	}
	if batch.OutputDir == "" {
		batch.OutputDir = filepath.Join("outputs", batch.ID)
	}

	if err := uc.batches.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("create batch record: %w", err)
	}

	if err := uc.queue.PublishBatchQueued(ctx, batch.ID); err != nil {
		return nil, fmt.Errorf("publish batch event: %w", err)
	}

	return batch, nil
}

func (uc *SubmitConversionUseCase) checkPair(source, target domain.Format) error {
	if target == "" {
		return domain.WrapError(domain.ErrInvalidInput, "submit conversion", errors.New("target format is required"))
	}
	for _, pair := range uc.pairs {
		if pair.Source == source && pair.Target == target {
			return nil
		}
	}
	return domain.WrapError(domain.ErrUnsupportedConversion, "submit conversion", fmt.Errorf("%s to %s", source, target))
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
