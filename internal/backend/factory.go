package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/ports"
	"budget/internal/storage"
	"budget/internal/storage/memory"
)

// Factory creates backends based on configuration
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the backend described by cfg.
func (f *Factory) Create(ctx context.Context, cfg Config) (*Result, error) {
	switch cfg.Type {
	case SQLite:
		return f.createSQLite(ctx, cfg)
	case Memory:
		return f.createMemory(ctx, cfg)
	default:
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}
}

func (f *Factory) createSQLite(ctx context.Context, cfg Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	if _, err := repo.SeedCategories(ctx, core.DefaultCategories); err != nil {
		repo.Close()
		return nil, fmt.Errorf("seed categories: %w", err)
	}

	res := &Result{
		Type:         SQLite,
		Transactions: repo,
		Goals:        repo,
		Categories:   repo,
		Ready:        repo.Ping,
	}

	// AMQP is optional; the worker's pending sweep catches up on missed events.
	var client *amqp.Client
	if cfg.AMQPURL != "" {
		client, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			res.Publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	res.Cleanup = func() error {
		var errs []error
		if client != nil {
			errs = append(errs, client.Close())
		}
		errs = append(errs, repo.Close())
		return errors.Join(errs...)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", client != nil)
	return res, nil
}

func (f *Factory) createMemory(ctx context.Context, cfg Config) (*Result, error) {
	dataDir := cfg.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	store := memory.NewFromFiles(dataDir)

	f.logger.InfoContext(ctx, "Initialized memory backend", "data_directory", dataDir)
	if cfg.AMQPURL != "" {
		f.logger.WarnContext(ctx, "AMQP is ignored by the memory backend")
	}

	return &Result{
		Type:         Memory,
		Transactions: store,
		Goals:        store,
		Categories:   store,
		Ready:        func(context.Context) error { return nil },
	}, nil
}

var (
	_ ports.TransactionStore = (*storage.SQLiteRepository)(nil)
	_ ports.GoalStore        = (*storage.SQLiteRepository)(nil)
	_ ports.CategoryStore    = (*storage.SQLiteRepository)(nil)
)
