package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
	"github.com/ducktyper-ai/quackverse-sub003/internal/core/ports"
)

// ConvertBatchUseCase fans a task list out to the single-file engine, one
// task at a time in the order supplied. It owns the succeeded/failed
// counters on the shared tracker: every task is counted exactly once, even
// when it fails before reaching the engine.
type ConvertBatchUseCase struct {
	engine  ports.FileConverter
	files   ports.FileService
	tracker *domain.Tracker
	log     *slog.Logger
}

func NewConvertBatchUseCase(
	engine ports.FileConverter,
	files ports.FileService,
	tracker *domain.Tracker,
	log *slog.Logger,
) *ConvertBatchUseCase {
	if log == nil {
		log = slog.Default()
	}
	return &ConvertBatchUseCase{
		engine:  engine,
		files:   files,
		tracker: tracker,
		log:     log,
	}
}

func (uc *ConvertBatchUseCase) ConvertBatch(ctx context.Context, tasks []domain.ConversionTask, outputDir string) domain.BatchOutcome {
	outcome := domain.BatchOutcome{Requested: len(tasks)}

	if outputDir != "" {
		if err := uc.files.MkdirAll(ctx, outputDir); err != nil {
			wrapped := domain.WrapError(domain.ErrDirectoryCreate, "prepare output directory", err)
			outcome.Status = domain.BatchFailed
			outcome.Message = fmt.Sprintf("cannot prepare output directory %s", outputDir)
			outcome.Error = wrapped.Error()
			uc.log.ErrorContext(ctx, "batch_aborted", "output_dir", outputDir, "error", err)
			return outcome
		}
	}

	for _, task := range tasks {
		resolved, err := uc.resolveTask(task, outputDir)
		if err != nil {
			uc.log.WarnContext(ctx, "batch_task_skipped", "source", task.SourcePath, "error", err)
			fileOutcome := domain.ConversionOutcome{
				SourcePath:   task.SourcePath,
				TargetFormat: task.TargetFormat,
				Error:        err.Error(),
				ErrorKind:    domain.ErrorKindName(err),
			}
			uc.tracker.RecordOutcome(fileOutcome)
			outcome.Outcomes = append(outcome.Outcomes, fileOutcome)
			outcome.FailedFiles = append(outcome.FailedFiles, task.SourcePath)
			outcome.Failed++
			continue
		}

		fileOutcome := uc.engine.ConvertFile(ctx, resolved)
		uc.tracker.RecordOutcome(fileOutcome)
		outcome.Outcomes = append(outcome.Outcomes, fileOutcome)
		if fileOutcome.Success {
			outcome.Succeeded++
			outcome.SuccessfulFiles = append(outcome.SuccessfulFiles, resolved.OutputPath)
		} else {
			outcome.Failed++
			outcome.FailedFiles = append(outcome.FailedFiles, task.SourcePath)
		}
	}

	outcome = classifyBatch(outcome)
	uc.log.InfoContext(ctx, "batch_finished",
		"status", outcome.Status,
		"requested", outcome.Requested,
		"succeeded", outcome.Succeeded,
		"failed", outcome.Failed,
	)
	return outcome
}

// resolveTask fills in the output path for tasks that did not specify one,
// deriving it from the source stem and the target format's extension.
func (uc *ConvertBatchUseCase) resolveTask(task domain.ConversionTask, outputDir string) (domain.ConversionTask, error) {
	if task.SourcePath == "" {
		return task, domain.WrapError(domain.ErrInvalidInput, "resolve task", errors.New("source path is empty"))
	}
	if task.TargetFormat == "" {
		return task, domain.WrapError(domain.ErrInvalidInput, "resolve task",
			fmt.Errorf("no target format for %s", task.SourcePath))
	}
	if task.OutputPath != "" {
		return task, nil
	}

	base := filepath.Base(task.SourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		return task, domain.WrapError(domain.ErrInvalidInput, "resolve task",
			fmt.Errorf("cannot derive output name from %s", task.SourcePath))
	}
	task.OutputPath = filepath.Join(outputDir, stem+"."+task.TargetFormat.Extension())
	return task, nil
}

func classifyBatch(outcome domain.BatchOutcome) domain.BatchOutcome {
	switch {
	case outcome.Failed == 0:
		outcome.Status = domain.BatchSucceeded
		outcome.Message = fmt.Sprintf("Successfully converted %d files", outcome.Succeeded)
	case outcome.Succeeded > 0:
		outcome.Status = domain.BatchPartial
		outcome.Message = fmt.Sprintf("Converted %d files, %d failed", outcome.Succeeded, outcome.Failed)
	default:
		outcome.Status = domain.BatchFailed
		outcome.Message = "no files were converted"
		outcome.Error = failureSummary(outcome.FailedFiles)
	}
	return outcome
}

// failureSummary names up to 5 failed files and truncates the rest.
func failureSummary(failed []string) string {
	const maxListed = 5
	names := make([]string, 0, maxListed)
	for i, path := range failed {
		if i == maxListed {
			break
		}
		names = append(names, filepath.Base(path))
	}
	summary := "failed to convert: " + strings.Join(names, ", ")
	if extra := len(failed) - maxListed; extra > 0 {
		summary += fmt.Sprintf(" and %d more", extra)
	}
	return summary
}
