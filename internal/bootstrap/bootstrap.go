package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ducktyper-ai/quackverse-sub003/internal/config"
	"github.com/ducktyper-ai/quackverse-sub003/internal/core/domain"
	"github.com/ducktyper-ai/quackverse-sub003/internal/core/ports"
	"github.com/ducktyper-ai/quackverse-sub003/internal/core/usecase"
	"github.com/ducktyper-ai/quackverse-sub003/internal/infrastructure/converter/native"
	"github.com/ducktyper-ai/quackverse-sub003/internal/infrastructure/converter/pandoc"
	"github.com/ducktyper-ai/quackverse-sub003/internal/infrastructure/fileservice/local"
	"github.com/ducktyper-ai/quackverse-sub003/internal/infrastructure/queue/nats"
	"github.com/ducktyper-ai/quackverse-sub003/internal/infrastructure/repository/postgres"
	"github.com/ducktyper-ai/quackverse-sub003/internal/infrastructure/resilience"
	"github.com/ducktyper-ai/quackverse-sub003/internal/infrastructure/validation"
	"github.com/ducktyper-ai/quackverse-sub003/internal/observability/metrics"
)

// Stack is the in-process conversion pipeline: prober, single-file engine
// and batch fan-out over the local file service. It has no postgres or NATS
// side; the MCP server runs on a bare Stack.
type Stack struct {
	Files   ports.FileService
	Prober  ports.FileProber
	Engine  ports.FileConverter
	Batcher ports.BatchConverter
	Tracker *domain.Tracker
}

// NewStack builds the conversion pipeline from configuration. When
// workerMetrics is non-nil the engine is wrapped so every outcome is
// recorded; the api binary passes nil.
func NewStack(cfg config.Config, log *slog.Logger, workerMetrics *metrics.WorkerMetrics) (*Stack, error) {
	if log == nil {
		log = slog.Default()
	}

	files, err := local.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init file service: %w", err)
	}

	pandocCfg := pandoc.Config{
		Binary:              cfg.PandocBinary,
		WrapMode:            cfg.PandocWrapMode,
		Standalone:          cfg.PandocStandalone,
		HeadingStyle:        cfg.PandocHeadingStyle,
		ReferenceLinks:      cfg.PandocReferenceLinks,
		ResourcePaths:       cfg.PandocResourcePaths,
		ExtraHTMLToMarkdown: cfg.PandocExtraHTMLToMarkdown,
		ExtraMarkdownToDocx: cfg.PandocExtraMarkdownToDocx,
		Timeout:             time.Duration(cfg.PandocTimeoutSeconds) * time.Second,
		RatePerSecond:       cfg.PandocRatePerSecond,
	}
	converter, err := selectConverter(cfg.ConverterEngine, pandocCfg, log)
	if err != nil {
		return nil, err
	}
	log.Info("converter_backend_selected", "backend", converter.Name())

	structure := validation.NewValidator(validation.Options{
		Available:       true,
		VerifyStructure: cfg.VerifyStructure,
		CheckLinks:      cfg.CheckLinks,
	}, log)
	sizes := validation.NewSizeRatioValidator(cfg.MinOutputBytes, cfg.MinOutputRatio)
	retry := resilience.NewPlan(resilience.Config{
		RetryStrategy:    resilience.Strategy(cfg.RetryStrategy),
		RetryMaxAttempts: cfg.RetryMaxAttempts,
		RetryDelay:       time.Duration(cfg.RetryDelaySeconds * float64(time.Second)),
	})

	tracker := domain.NewTracker(true, true)
	prober := usecase.NewProbeFileUseCase(files)

	var engine ports.FileConverter = usecase.NewConvertFileUseCase(
		prober,
		files,
		converter,
		pandoc.NewArgumentBuilder(pandocCfg),
		structure,
		sizes,
		retry,
		tracker,
		log,
	)
	if workerMetrics != nil {
		engine = metrics.InstrumentEngine(engine, workerMetrics, "worker")
	}
	batcher := usecase.NewConvertBatchUseCase(engine, files, tracker, log)

	return &Stack{
		Files:   files,
		Prober:  prober,
		Engine:  engine,
		Batcher: batcher,
		Tracker: tracker,
	}, nil
}

// selectConverter picks the backend. "auto" prefers pandoc when the binary
// resolves on PATH and falls back to the native engine.
func selectConverter(name string, pandocCfg pandoc.Config, log *slog.Logger) (ports.DocumentConverter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		if pandoc.Available(pandocCfg.Binary) {
			return pandoc.NewRunner(pandocCfg, log), nil
		}
		return native.NewEngine(log), nil
	case "pandoc":
		return pandoc.NewRunner(pandocCfg, log), nil
	case "native":
		return native.NewEngine(log), nil
	default:
		return nil, fmt.Errorf("unknown converter engine %q", name)
	}
}

// App wires the full service graph shared by the api and worker binaries.
type App struct {
	Config config.Config
	Stack  *Stack

	Queue     ports.MessageQueue
	Jobs      ports.JobStore
	Batches   ports.BatchStore
	SubmitUC  ports.ConversionSubmitter
	StatusUC  ports.ConversionReader
	ProcessUC ports.JobProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger, workerMetrics *metrics.WorkerMetrics) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	jobs := postgres.NewJobRepository(db)
	if err := jobs.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure job schema: %w", err)
	}
	batches := postgres.NewBatchRepository(db)
	if err := batches.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure batch schema: %w", err)
	}

	stack, err := NewStack(cfg, log, workerMetrics)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, nats.Options{
		JobSubject:         cfg.NATSJobSubject,
		BatchSubject:       cfg.NATSBatchSubject,
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	submitUC := usecase.NewSubmitConversionUseCase(jobs, batches, stack.Files, queue, nil)
	statusUC := usecase.NewConversionStatusUseCase(jobs, batches)
	processUC := usecase.NewProcessConversionUseCase(jobs, batches, stack.Files, stack.Engine, stack.Batcher, stack.Tracker, log)

	return &App{
		Config: cfg,
		Stack:  stack,

		Queue:     queue,
		Jobs:      jobs,
		Batches:   batches,
		SubmitUC:  submitUC,
		StatusUC:  statusUC,
		ProcessUC: processUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
