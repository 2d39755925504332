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

	httpadapter "github.com/ducktyper-ai/quackverse-sub003/internal/adapters/http"
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
	logger := logging.NewJSONLogger("api", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, nil)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	router, err := httpadapter.NewRouter(cfg, app.SubmitUC, app.StatusUC, httpMetrics)
	if err != nil {
		log.Fatalf("router error: %v", err)
	}

	// /metrics sits outside the API chain so scrapes are never rate
	// limited or contract-validated.
	root := http.NewServeMux()
	root.Handle("/metrics", httpMetrics.Handler())
	root.Handle("/", router.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("api listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("api shutdown error: %v", err)
	}
}
