package services

import (
	"budget/internal/core"
	"budget/internal/ports"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// maxApplyAttempts bounds how often a pass is retried after losing a race
// with another writer.
const maxApplyAttempts = 3

// CatchUpReport summarizes one catch-up pass.
type CatchUpReport struct {
	Created  int           `json:"created"`
	Updated  int           `json:"updated"`
	Failed   []string      `json:"failed,omitempty"`
	AsOf     core.Date     `json:"asOf"`
	Duration time.Duration `json:"-"`
}

// RecurringProcessor runs the recurrence engine against a transaction store.
// Passes in one process are serialized; passes in other processes sharing
// the store are caught by the store's cursor check.
type RecurringProcessor struct {
	mu        sync.Mutex
	store     ports.TransactionStore
	engine    *Engine
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewRecurringProcessor creates a processor. publisher may be nil.
func NewRecurringProcessor(store ports.TransactionStore, engine *Engine, publisher ports.EventPublisher) *RecurringProcessor {
	return &RecurringProcessor{
		store:     store,
		engine:    engine,
		publisher: publisher,
		now:       time.Now,
	}
}

// CatchUp materializes every occurrence due on or before asOf.
//
// Series that fail are logged and listed in the report; the pass still
// writes the other series and returns a nil error. A non-nil error means
// the store could not be read or written.
func (p *RecurringProcessor) CatchUp(ctx context.Context, asOf core.Date) (CatchUpReport, error) {
	if p.store == nil || p.engine == nil {
		return CatchUpReport{}, fmt.Errorf("processor not properly initialized")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	report := CatchUpReport{AsOf: asOf}

	var (
		result Materialization
		err    error
	)
	for attempt := 1; ; attempt++ {
		result, err = p.materialize(ctx, asOf)
		if !errors.Is(err, ports.ErrConflict) || attempt == maxApplyAttempts {
			break
		}
		slog.WarnContext(ctx, "Recurring series changed during catch-up, retrying",
			"attempt", attempt,
			"error", err)
	}
	if err != nil {
		return report, err
	}
	for _, f := range result.Failures {
		slog.ErrorContext(ctx, "Recurring series skipped",
			"origin_id", f.OriginID,
			"error", f.Err)
		report.Failed = append(report.Failed, f.OriginID)
	}
	report.Created = len(result.NewOccurrences)
	report.Updated = len(result.UpdatedOrigins)

	for _, occ := range result.NewOccurrences {
		p.publish(ctx, occ.ID)
	}

	report.Duration = time.Since(start)
	slog.InfoContext(ctx, "Recurring catch-up complete",
		"as_of", asOf.String(),
		"created", report.Created,
		"updated", report.Updated,
		"failed", len(report.Failed),
		"duration", report.Duration)

	return report, nil
}

// materialize reads the store, runs the engine and writes the result. Each
// cursor is advanced only from the value read here, so a pass that races
// another writer fails with ports.ErrConflict instead of duplicating
// occurrences.
func (p *RecurringProcessor) materialize(ctx context.Context, asOf core.Date) (Materialization, error) {
	txs, err := p.store.ListTransactions(ctx)
	if err != nil {
		return Materialization{}, fmt.Errorf("list transactions: %w", err)
	}

	result, err := p.engine.Materialize(txs, asOf)
	if err != nil && result.Failures == nil {
		return Materialization{}, fmt.Errorf("materialize: %w", err)
	}
	if len(result.NewOccurrences) == 0 && len(result.UpdatedOrigins) == 0 {
		return result, nil
	}

	cursors := make(map[string]core.Date, len(result.UpdatedOrigins))
	for _, t := range txs {
		if t.IsOrigin() {
			cursors[t.ID] = t.Recurring.NextDueDate
		}
	}
	advances := make([]ports.CursorAdvance, 0, len(result.UpdatedOrigins))
	for _, o := range result.UpdatedOrigins {
		advances = append(advances, ports.CursorAdvance{
			OriginID: o.ID,
			From:     cursors[o.ID],
			To:       o.Recurring.NextDueDate,
		})
	}
	if err := p.store.ApplyMaterialization(ctx, result.NewOccurrences, advances); err != nil {
		return Materialization{}, fmt.Errorf("apply materialization: %w", err)
	}
	return result, nil
}

func (p *RecurringProcessor) publish(ctx context.Context, id string) {
	if p.publisher == nil {
		return
	}
	ev := core.TransactionEvent{ID: id, Kind: core.EventCreated, Timestamp: p.now()}
	if err := p.publisher.PublishTransactionEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish occurrence event",
			"id", id,
			"error", err)
	}
}
