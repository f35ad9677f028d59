package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"boxoffice/internal/config"
	"boxoffice/internal/log"
	"boxoffice/internal/pipeline"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	rootLog := log.New(log.DefaultConfig())
	log.SetDefault(rootLog)
	logger := rootLog.WithComponent("pipeline").Logger

	logger.Info("Starting boxoffice")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, st, err := pipeline.FromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to assemble pipeline", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := p.Run(ctx); err != nil {
		logger.Error("Pipeline run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Done")
}
