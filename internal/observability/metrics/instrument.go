package metrics

import (
	"context"

	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
	"github.com/ducktyper-ai/quackverse-sub003/internal/core/ports"
)

// InstrumentedEngine wraps a ports.FileConverter and exports every outcome to
// the worker registry. Batch runs are covered too: the batch use case calls
// the engine once per file.
type InstrumentedEngine struct {
	next    ports.FileConverter
	metrics *WorkerMetrics
	service string
}

func InstrumentEngine(next ports.FileConverter, metrics *WorkerMetrics, service string) *InstrumentedEngine {
	return &InstrumentedEngine{next: next, metrics: metrics, service: service}
}

func (e *InstrumentedEngine) ConvertFile(ctx context.Context, task domain.ConversionTask) domain.ConversionOutcome {
	e.metrics.StartConversion()
	outcome := e.next.ConvertFile(ctx, task)

	status := "failed"
	if outcome.Success {
		status = "succeeded"
	}
	e.metrics.FinishConversion(e.service, status, outcome.Duration)
	e.metrics.ObserveAttempts(e.service, outcome.Attempts)
	if outcome.Success && outcome.InputBytes > 0 {
		e.metrics.ObserveSizeRatio(e.service, float64(outcome.OutputBytes)/float64(outcome.InputBytes))
	}
	if !outcome.Success {
		e.metrics.RecordConversionError(e.service, outcome.ErrorKind)
	}
	return outcome
}
