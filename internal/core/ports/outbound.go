package ports

import (
	"context"
	"io"
	"time"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
)

// FileService abstracts filesystem access for the conversion pipeline.
type FileService interface {
	Stat(ctx context.Context, path string) (domain.FileStat, error)
	ReadText(ctx context.Context, path string) (string, error)
	ReadBinary(ctx context.Context, path string) ([]byte, error)
	WriteText(ctx context.Context, path, content string) (int64, error)
	Save(ctx context.Context, path string, data io.Reader) error
	MkdirAll(ctx context.Context, path string) error
	FindFiles(ctx context.Context, dir, pattern string, recursive bool) ([]string, error)
}

// DocumentConverter invokes an underlying conversion backend.
type DocumentConverter interface {
	Name() string
	Supports(source, target domain.Format) bool
	Convert(ctx context.Context, req domain.ConvertRequest) (domain.ConvertResult, error)
}

// ArgumentBuilder produces the backend argument list for a conversion pair.
// Implementations must be pure: same inputs, same output, no deduplication.
type ArgumentBuilder interface {
	Build(source, target domain.Format, extra []string) []string
}

// StructureValidator checks structural soundness of a document by format.
type StructureValidator interface {
	Available() bool
	ValidateFile(ctx context.Context, path string, format domain.Format) domain.ValidationReport
}

// SizeValidator judges output size floors and output/input ratios.
type SizeValidator interface {
	CheckSize(outputBytes int64) (bool, string)
	CheckRatio(outputBytes, inputBytes int64) (bool, string)
}

// RetryStrategy paces repeated conversion attempts. Delay receives the
// 1-based number of the attempt that just failed.
type RetryStrategy interface {
	MaxAttempts() int
	Delay(attempt int) time.Duration
}

// JobStore persists conversion job state.
type JobStore interface {
	Create(ctx context.Context, job *domain.ConversionJob) error
	GetByID(ctx context.Context, id string) (*domain.ConversionJob, error)
	MarkProcessing(ctx context.Context, id string) error
	RecordOutcome(ctx context.Context, id string, outcome domain.ConversionOutcome) error
}

// BatchStore persists batch request state.
type BatchStore interface {
	Create(ctx context.Context, batch *domain.ConversionBatch) error
	GetByID(ctx context.Context, id string) (*domain.ConversionBatch, error)
	MarkProcessing(ctx context.Context, id string) error
	RecordOutcome(ctx context.Context, id string, outcome domain.BatchOutcome) error
}

// MessageQueue publishes/consumes conversion work events.
type MessageQueue interface {
	PublishJobQueued(ctx context.Context, jobID string) error
	PublishBatchQueued(ctx context.Context, batchID string) error
	Subscribe(ctx context.Context, jobs func(context.Context, string) error, batches func(context.Context, string) error) error
}
