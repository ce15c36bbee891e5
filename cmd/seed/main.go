package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/riskibarqy/tennis-club/internal/app"
	"github.com/riskibarqy/tennis-club/internal/config"
	"github.com/riskibarqy/tennis-club/internal/platform/logging"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("load env file: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: os.Getenv("LOG_FORMAT")})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := app.Seed(ctx, cfg, logger)
	if err != nil {
		logger.Error("seed sample data failed", "error", err)
		os.Exit(1)
	}
	if summary.Skipped {
		logger.Info("sample data already present, nothing to do")
		return
	}
	logger.Info("sample data seeded",
		"storage", cfg.StorageDriver,
		"members", summary.Members,
		"challenges", summary.Challenges,
		"matches", summary.Matches,
	)
}
