package services

import (
	"budget/internal/core"
	"budget/internal/ids"
	"budget/internal/ports"
	"budget/internal/storage/memory"
	"context"
	"errors"
	"sync"
	"time"
)

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []core.TransactionEvent
	err    error
}

func (p *recordingPublisher) PublishTransactionEvent(_ context.Context, ev core.TransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) kinds() []core.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]core.EventKind, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Kind
	}
	return out
}

// failingStore rejects catch-up writes.
type failingStore struct {
	*memory.Store
}

var errWrite = errors.New("disk full")

func (failingStore) ApplyMaterialization(context.Context, []core.Transaction, []ports.CursorAdvance) error {
	return errWrite
}

func fixedClock(y, m, d int) func() time.Time {
	return func() time.Time { return time.Date(y, time.Month(m), d, 15, 4, 5, 0, time.UTC) }
}

func newTransactionService(store *memory.Store, pub *recordingPublisher) *TransactionService {
	var publisher ports.EventPublisher
	if pub != nil {
		publisher = pub
	}
	s := NewTransactionService(store, ids.NewSequence("tx"), publisher)
	s.now = fixedClock(2024, 1, 15)
	return s
}
