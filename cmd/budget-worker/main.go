package main

import (
	"context"
	"os"

	"budget/internal/amqp"
	"budget/internal/cli"
	applog "budget/internal/log"
	"budget/internal/storage"
	"budget/internal/worker"
)

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		applog.New(applog.DefaultConfig()).Error("Failed to load env file", "error", err)
		os.Exit(1)
	}
	cfg := loadConfig()
	logger := cli.SetupLogger(cfg.LogLevel, applog.ComponentWorker)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	logger.InfoContext(ctx, "Starting budget-worker")

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	sheets, err := cli.NewSheetsClient(ctx, cfg)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	events, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer events.Close()

	w := worker.NewSyncWorker(repo, sheets, repo, sheets, cfg.SyncBatchSize)
	if err := w.Run(ctx, events, cfg.SyncInterval); err != nil {
		logger.ErrorContext(ctx, "Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.InfoContext(context.Background(), "Worker shutdown complete")
}
