package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"

	"boxoffice/internal/config"
	"boxoffice/internal/log"
	"boxoffice/internal/merge"
	"boxoffice/internal/pipeline"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	rootLog := log.New(log.DefaultConfig())
	log.SetDefault(rootLog)
	logger := rootLog.WithComponent("worker").Logger

	logger.Info("Starting boxoffice-worker")

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

	run := func() {
		runCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
		defer cancel()
		if err := p.Run(runCtx); err != nil {
			logger.Error("Scheduled run failed", "error", err)
		}
	}

	// Snapshots are published on the source's local day, so the schedule
	// runs in the same timezone.
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(merge.ISTZone))
	if err != nil {
		logger.Error("Failed to create scheduler", "error", err)
		os.Exit(1)
	}

	_, err = scheduler.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(
				gocron.NewAtTime(uint(cfg.RunHour), uint(cfg.RunMinute), 0),
			),
		),
		gocron.NewTask(run),
	)
	if err != nil {
		logger.Error("Failed to schedule daily job", "error", err)
		os.Exit(1)
	}

	scheduler.Start()
	logger.Info("Daily job scheduled", "hour", cfg.RunHour, "minute", cfg.RunMinute, "tz", "IST")

	// Run once at startup so a restart never waits a full day for data.
	run()

	<-ctx.Done()
	logger.Info("Shutting down")

	if err := scheduler.Shutdown(); err != nil {
		logger.Error("Scheduler shutdown failed", "error", err)
	}
	logger.Info("Stopped")
}
