// Package ports declares the storage and outbound interfaces the services
// depend on. Adapters live in internal/storage, internal/amqp and
// internal/sheets.
package ports

import (
	"budget/internal/core"
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a record with the requested ID does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a record changed after it was read.
	ErrConflict = errors.New("record changed concurrently")
)

// CursorAdvance moves the next due date of a series from From to To. It
// only applies while the stored cursor still equals From.
type CursorAdvance struct {
	OriginID string
	From     core.Date
	To       core.Date
}

type (
	TransactionStore interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		AppendTransactions(ctx context.Context, txs ...core.Transaction) error
		// UpdateTransaction replaces the record with the same ID.
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
		// ApplyMaterialization appends occurrences and advances cursors as
		// one unit. Only the next due date of each origin is written. If any
		// stored cursor no longer equals its From the whole unit is
		// discarded and ErrConflict is returned.
		ApplyMaterialization(ctx context.Context, occurrences []core.Transaction, advances []CursorAdvance) error
	}

	GoalStore interface {
		ListGoals(ctx context.Context) ([]core.Goal, error)
		GetGoal(ctx context.Context, id string) (core.Goal, error)
		// SaveGoal inserts or replaces a goal.
		SaveGoal(ctx context.Context, g core.Goal) error
		DeleteGoal(ctx context.Context, id string) error
	}

	CategoryStore interface {
		ListCategories(ctx context.Context) ([]string, error)
		// AddCategory returns false when the exact string already exists.
		AddCategory(ctx context.Context, category string) (bool, error)
	}

	// EventPublisher announces transaction changes to other processes.
	EventPublisher interface {
		PublishTransactionEvent(ctx context.Context, ev core.TransactionEvent) error
	}

	// TransactionExporter appends a transaction to an external ledger.
	TransactionExporter interface {
		AppendTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// CategoryReader lists categories kept outside the application.
	CategoryReader interface {
		ReadCategories(ctx context.Context) ([]string, error)
	}
)
