package ports

import (
	"context"
	"io"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

// FileProber is the inbound contract for file inspection.
type FileProber interface {
	Probe(ctx context.Context, path string, hint domain.Format) (domain.FileDescriptor, error)
}

// FileConverter is the inbound contract for single-file conversion. The
// outcome is always a value; failures are reported inside it, never as
// a Go error.
type FileConverter interface {
	ConvertFile(ctx context.Context, task domain.ConversionTask) domain.ConversionOutcome
}

// BatchConverter is the inbound contract for sequential directory fan-out.
type BatchConverter interface {
	ConvertBatch(ctx context.Context, tasks []domain.ConversionTask, outputDir string) domain.BatchOutcome
}

// ConversionSubmitter accepts conversion work from the API surface.
type ConversionSubmitter interface {
	SubmitFile(ctx context.Context, filename string, targetFormat domain.Format, body io.Reader) (*domain.ConversionJob, error)
	SubmitBatch(ctx context.Context, batch *domain.ConversionBatch) (*domain.ConversionBatch, error)
}

// ConversionReader is the inbound read model for job/batch state.
type ConversionReader interface {
	GetJob(ctx context.Context, id string) (*domain.ConversionJob, error)
	GetBatch(ctx context.Context, id string) (*domain.ConversionBatch, error)
}

// JobProcessor is the inbound contract for asynchronous processing.
type JobProcessor interface {
	ProcessJob(ctx context.Context, jobID string) error
	ProcessBatch(ctx context.Context, batchID string) error
}
