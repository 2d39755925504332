package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
	"github.com/ducktyper-ai/quackverse-sub003/internal/core/ports"
)

// ConvertFileUseCase drives one file through probe, conversion and output
// validation. ConvertFile never returns a Go error: every failure is folded
// into the outcome so callers branch on outcome.Success only.
//
// Converter invocation errors and output-validation errors share the retry
// budget. Missing sources, unsupported pairs and directory-creation failures
// are fatal and consume no retries; the unsupported-pair check runs before
// any output directory is touched.
type ConvertFileUseCase struct {
	prober    ports.FileProber
	files     ports.FileService
	converter ports.DocumentConverter
	args      ports.ArgumentBuilder
	structure ports.StructureValidator
	sizes     ports.SizeValidator
	retry     ports.RetryStrategy
	tracker   *domain.Tracker
	log       *slog.Logger
}

func NewConvertFileUseCase(
	prober ports.FileProber,
	files ports.FileService,
	converter ports.DocumentConverter,
	args ports.ArgumentBuilder,
	structure ports.StructureValidator,
	sizes ports.SizeValidator,
	retry ports.RetryStrategy,
	tracker *domain.Tracker,
	log *slog.Logger,
) *ConvertFileUseCase {
	if log == nil {
		log = slog.Default()
	}
	return &ConvertFileUseCase{
		prober:    prober,
		files:     files,
		converter: converter,
		args:      args,
		structure: structure,
		sizes:     sizes,
		retry:     retry,
		tracker:   tracker,
		log:       log,
	}
}

func (uc *ConvertFileUseCase) ConvertFile(ctx context.Context, task domain.ConversionTask) domain.ConversionOutcome {
	started := time.Now()
	outcome := domain.ConversionOutcome{
		SourcePath:       task.SourcePath,
		OutputPath:       task.OutputPath,
		TargetFormat:     task.TargetFormat,
		StructureChecked: uc.structure.Available(),
	}

	uc.tracker.BeginFile(task.SourcePath)
	defer uc.tracker.EndFile(task.SourcePath)

	source, err := uc.prober.Probe(ctx, task.SourcePath, task.SourceFormat)
	if err != nil {
		return uc.fail(ctx, outcome, started, err)
	}
	outcome.SourceFormat = source.Format
	outcome.InputBytes = source.Size

	if task.OutputPath == "" {
		err := domain.WrapError(domain.ErrInvalidInput, "convert file", fmt.Errorf("no output path for %s", task.SourcePath))
		return uc.fail(ctx, outcome, started, err)
	}
	if err := uc.validateInput(ctx, source); err != nil {
		return uc.fail(ctx, outcome, started, err)
	}
	if !uc.converter.Supports(source.Format, task.TargetFormat) {
		err := domain.WrapError(domain.ErrUnsupportedConversion, "convert file",
			fmt.Errorf("%s to %s", source.Format, task.TargetFormat))
		return uc.fail(ctx, outcome, started, err)
	}

	maxAttempts := uc.retry.MaxAttempts()
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			lastErr = fmt.Errorf("conversion canceled: %w", cerr)
			break
		}
		outcome.Attempts = attempt
		uc.tracker.AddAttempts(1)

		outputBytes, err := uc.attempt(ctx, source, task)
		if err == nil {
			outcome.Success = true
			outcome.OutputBytes = outputBytes
			outcome.Duration = time.Since(started)
			uc.tracker.RecordSizes(task.SourcePath, source.Size, outputBytes)
			uc.log.InfoContext(ctx, "conversion_succeeded",
				"source", task.SourcePath,
				"output", task.OutputPath,
				"source_format", source.Format,
				"target_format", task.TargetFormat,
				"attempt", attempt,
				"output_bytes", outputBytes,
				"duration_ms", outcome.Duration.Milliseconds(),
			)
			return outcome
		}

		lastErr = err
		uc.tracker.RecordError(task.SourcePath, err.Error())
		if fatalConversionError(err) {
			break
		}
		uc.log.WarnContext(ctx, "conversion_attempt_failed",
			"source", task.SourcePath,
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", err,
		)
		if attempt < maxAttempts {
			if serr := sleepFor(ctx, uc.retry.Delay(attempt)); serr != nil {
				lastErr = serr
				break
			}
		}
	}

	return uc.fail(ctx, outcome, started, lastErr)
}

// attempt runs one full converter-invoke + validate cycle and returns the
// output size on success.
func (uc *ConvertFileUseCase) attempt(ctx context.Context, source domain.FileDescriptor, task domain.ConversionTask) (int64, error) {
	if err := uc.ensureOutputDir(ctx, task.OutputPath); err != nil {
		return 0, err
	}

	result, err := uc.converter.Convert(ctx, domain.ConvertRequest{
		SourcePath:   source.Path,
		SourceFormat: source.Format,
		TargetFormat: task.TargetFormat,
		OutputPath:   task.OutputPath,
		Args:         uc.args.Build(source.Format, task.TargetFormat, task.ExtraArgs),
	})
	if err != nil {
		return 0, fmt.Errorf("invoke converter: %w", err)
	}

	if !result.WroteFile {
		if _, err := uc.files.WriteText(ctx, task.OutputPath, result.Content); err != nil {
			return 0, fmt.Errorf("write output: %w", err)
		}
	}

	stat, err := uc.files.Stat(ctx, task.OutputPath)
	if err != nil {
		return 0, fmt.Errorf("stat output: %w", err)
	}
	if !stat.Exists {
		return 0, domain.WrapError(domain.ErrConverterFailure, "stat output",
			fmt.Errorf("%s missing after conversion", task.OutputPath))
	}

	if err := uc.validateOutput(ctx, task, source, stat.Size); err != nil {
		return 0, err
	}
	return stat.Size, nil
}

// validateInput runs structural checks on html sources before any conversion
// work. A hard finding (missing body) fails the task without consuming the
// retry budget.
func (uc *ConvertFileUseCase) validateInput(ctx context.Context, source domain.FileDescriptor) error {
	if source.Format != domain.FormatHTML {
		return nil
	}
	report := uc.structure.ValidateFile(ctx, source.Path, source.Format)
	if !report.Checked {
		return nil
	}
	for _, warning := range report.Warnings {
		uc.log.WarnContext(ctx, "input_validation_warning", "source", source.Path, "warning", warning)
	}
	if !report.Valid {
		return domain.WrapError(domain.ErrInvalidInput, "validate input",
			errors.New(strings.Join(report.Errors, "; ")))
	}
	return nil
}

// validateOutput aggregates structural and size findings into one error so a
// single retry covers every problem found on the attempt.
func (uc *ConvertFileUseCase) validateOutput(ctx context.Context, task domain.ConversionTask, source domain.FileDescriptor, outputBytes int64) error {
	var problems []string

	report := uc.structure.ValidateFile(ctx, task.OutputPath, task.TargetFormat)
	if report.Checked {
		problems = append(problems, report.Errors...)
		for _, warning := range report.Warnings {
			uc.log.WarnContext(ctx, "output_validation_warning", "output", task.OutputPath, "warning", warning)
		}
	}

	if ok, reason := uc.sizes.CheckSize(outputBytes); !ok {
		problems = append(problems, reason)
	}
	if ok, reason := uc.sizes.CheckRatio(outputBytes, source.Size); !ok {
		problems = append(problems, reason)
	}

	if len(problems) > 0 {
		return domain.WrapError(domain.ErrValidationFailed, "validate output",
			errors.New(strings.Join(problems, "; ")))
	}
	return nil
}

func (uc *ConvertFileUseCase) ensureOutputDir(ctx context.Context, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if dir == "" || dir == "." {
		return nil
	}
	if err := uc.files.MkdirAll(ctx, dir); err != nil {
		return domain.WrapError(domain.ErrDirectoryCreate, "ensure output directory", err)
	}
	return nil
}

func (uc *ConvertFileUseCase) fail(ctx context.Context, outcome domain.ConversionOutcome, started time.Time, err error) domain.ConversionOutcome {
	outcome.Success = false
	outcome.Error = err.Error()
	outcome.ErrorKind = domain.ErrorKindName(err)
	outcome.Duration = time.Since(started)
	uc.tracker.RecordError(outcome.SourcePath, outcome.Error)
	uc.log.ErrorContext(ctx, "conversion_failed",
		"source", outcome.SourcePath,
		"target_format", outcome.TargetFormat,
		"attempts", outcome.Attempts,
		"error_kind", outcome.ErrorKind,
		"error", err,
	)
	return outcome
}

func fatalConversionError(err error) bool {
	return domain.IsKind(err, domain.ErrSourceNotFound) ||
		domain.IsKind(err, domain.ErrUnsupportedConversion) ||
		domain.IsKind(err, domain.ErrDirectoryCreate) ||
		domain.IsKind(err, domain.ErrInvalidInput)
}

func sleepFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
