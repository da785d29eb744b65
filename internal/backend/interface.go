// Package backend builds the storage, messaging and service graph from
// configuration.
package backend

import (
	"context"

	"budget/internal/ports"
)

// Type names a storage backend.
type Type string

const (
	SQLite Type = "sqlite"
	Memory Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	return t == SQLite || t == Memory
}

// Config holds configuration for backend creation
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string

	// Memory specific; seed files are read from here
	DataDirectory string

	// Event publishing, skipped when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result is a ready backend. Publisher is nil when events are disabled.
type Result struct {
	Type         Type
	Transactions ports.TransactionStore
	Goals        ports.GoalStore
	Categories   ports.CategoryStore
	Publisher    ports.EventPublisher
	// Ready reports whether the storage can serve requests.
	Ready   func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Close runs Cleanup if set.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}
