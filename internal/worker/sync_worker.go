// Package worker exports transactions to the external sheet as their events
// arrive and keeps the category list in step with the sheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budget/internal/core"
	"budget/internal/ports"

	"golang.org/x/sync/errgroup"
)

// Ledger is the storage the worker reads transactions from and records
// exports in.
type Ledger interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ExportRef(ctx context.Context, id string) (string, bool, error)
	MarkExported(ctx context.Context, id, rowRef string, at time.Time) error
	PendingExports(ctx context.Context, limit int) ([]string, error)
}

// EventSource delivers transaction events until ctx is done.
type EventSource interface {
	ConsumeTransactionEvents(ctx context.Context, handler func(context.Context, core.TransactionEvent) error) error
}

// SyncWorker handles synchronization of transactions to Google Sheets
type SyncWorker struct {
	ledger     Ledger
	exporter   ports.TransactionExporter
	categories ports.CategoryStore
	reader     ports.CategoryReader
	batchSize  int
	now        func() time.Time
}

// NewSyncWorker creates a worker. categories and reader may be nil, which
// disables category refresh.
func NewSyncWorker(ledger Ledger, exporter ports.TransactionExporter, categories ports.CategoryStore, reader ports.CategoryReader, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncWorker{
		ledger:     ledger,
		exporter:   exporter,
		categories: categories,
		reader:     reader,
		batchSize:  batchSize,
		now:        time.Now,
	}
}

// HandleEvent processes a single transaction event.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev core.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"id", ev.ID,
		"kind", ev.Kind)

	switch ev.Kind {
	case core.EventCreated:
		return w.export(ctx, ev.ID)
	case core.EventDeleted:
		// Exported rows are append-only; the sheet keeps its history.
		slog.InfoContext(ctx, "Transaction deleted, sheet row left in place", "id", ev.ID)
		return nil
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
}

func (w *SyncWorker) export(ctx context.Context, id string) error {
	if ref, ok, err := w.ledger.ExportRef(ctx, id); err != nil {
		return fmt.Errorf("check export: %w", err)
	} else if ok {
		slog.InfoContext(ctx, "Transaction already exported", "id", id, "row_ref", ref)
		return nil
	}

	t, err := w.ledger.GetTransaction(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		// deleted before the event was consumed
		slog.WarnContext(ctx, "Transaction no longer exists, skipping export", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	ref, err := w.exporter.AppendTransaction(ctx, t)
	if err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.ledger.MarkExported(ctx, id, ref, w.now()); err != nil {
		// The row exists; a retry would duplicate it.
		slog.ErrorContext(ctx, "Failed to mark as exported", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Successfully exported transaction",
		"id", id,
		"sheets_ref", ref,
		"description", t.Description,
		"amount_cents", t.Amount.Cents)
	return nil
}

// ProcessPending exports transactions that never reached the sheet, e.g.
// because the broker was down when they were created.
func (w *SyncWorker) ProcessPending(ctx context.Context) (int, error) {
	ids, err := w.ledger.PendingExports(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("get pending exports: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(ids))

	exported := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		if err := w.export(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "id", id, "error", err)
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Pending export pass completed",
		"total", len(ids),
		"exported", exported,
		"errors", len(ids)-exported)
	return exported, nil
}

// RefreshCategories imports category names from the sheet into the store.
func (w *SyncWorker) RefreshCategories(ctx context.Context) (int, error) {
	if w.reader == nil || w.categories == nil {
		return 0, nil
	}
	names, err := w.reader.ReadCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("load categories from Google Sheets: %w", err)
	}
	added := 0
	for _, name := range names {
		ok, err := w.categories.AddCategory(ctx, name)
		if err != nil {
			return added, fmt.Errorf("add category %q: %w", name, err)
		}
		if ok {
			added++
		}
	}
	slog.InfoContext(ctx, "Categories refreshed from Google Sheets",
		"read", len(names),
		"added", added)
	return added, nil
}

// Run consumes events and periodically sweeps pending exports until ctx is
// cancelled. A cancelled context is a clean shutdown and returns nil.
func (w *SyncWorker) Run(ctx context.Context, source EventSource, sweepInterval time.Duration) error {
	if _, err := w.RefreshCategories(ctx); err != nil {
		slog.WarnContext(ctx, "Category refresh failed", "error", err)
	}
	if _, err := w.ProcessPending(ctx); err != nil {
		slog.WarnContext(ctx, "Startup export sweep failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return source.ConsumeTransactionEvents(gctx, w.HandleEvent)
	})
	if sweepInterval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(sweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-ticker.C:
					if _, err := w.ProcessPending(gctx); err != nil && gctx.Err() == nil {
						slog.ErrorContext(gctx, "Periodic export sweep failed", "error", err)
					}
				}
			}
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}
