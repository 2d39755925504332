package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/ducktyper-ai/quackverse-sub003/internal/adapters/mcp"
	"github.com/ducktyper-ai/quackverse-sub003/internal/bootstrap"
	"github.com/ducktyper-ai/quackverse-sub003/internal/config"
	"github.com/ducktyper-ai/quackverse-sub003/internal/observability/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	// stdout carries the protocol stream; everything else goes to stderr.
	logger := logging.NewJSONLoggerAt(os.Stderr, "mcp", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stack, err := bootstrap.NewStack(cfg, logger, nil)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	srv := mcpadapter.New(stack.Prober, stack.Engine, stack.Batcher, stack.Files, logger)
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("mcp server error: %v", err)
	}
}
