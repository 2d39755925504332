package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ducktyper-ai/quackverse-sub003/internal/bootstrap"
	"github.com/ducktyper-ai/quackverse-sub003/internal/config"
	"github.com/ducktyper-ai/quackverse-sub003/internal/observability/logging"
	"github.com/ducktyper-ai/quackverse-sub003/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	app, err := bootstrap.New(ctx, cfg, logger, workerMetrics)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", workerMetrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: mux,
	}
	go func() {
		log.Printf("worker metrics listening on :%s", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("worker metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	log.Printf("worker subscribed to %s and %s", cfg.NATSJobSubject, cfg.NATSBatchSubject)
	err = app.Queue.Subscribe(ctx,
		func(handlerCtx context.Context, jobID string) error {
			observeJobLag(handlerCtx, app, workerMetrics, jobID)
			processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
			defer cancel()
			return app.ProcessUC.ProcessJob(processCtx, jobID)
		},
		func(handlerCtx context.Context, batchID string) error {
			processCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Minute)
			defer cancel()
			return app.ProcessUC.ProcessBatch(processCtx, batchID)
		},
	)
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

// observeJobLag records how long the job sat queued before a worker picked
// it up. Best effort; a fetch failure only skips the sample.
func observeJobLag(ctx context.Context, app *bootstrap.App, m *metrics.WorkerMetrics, jobID string) {
	job, err := app.StatusUC.GetJob(ctx, jobID)
	if err != nil {
		return
	}
	m.ObserveQueueLag("worker", time.Since(job.CreatedAt))
}
