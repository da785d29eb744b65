package services

import (
	"budget/internal/core"
	"budget/internal/ids"
	"budget/internal/ports"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// NewTransaction is the input for TransactionService.Create.
type NewTransaction struct {
	Description string
	Amount      core.Money
	Type        core.TransactionType
	Category    string
	// Date defaults to today when zero.
	Date core.Date
	// Recurring makes the transaction the origin of a monthly series.
	Recurring bool
}

// TransactionService validates transactions, writes them to the store and
// announces changes on the event publisher.
type TransactionService struct {
	store     ports.TransactionStore
	ids       ids.Generator
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewTransactionService creates the service. publisher may be nil.
func NewTransactionService(store ports.TransactionStore, gen ids.Generator, publisher ports.EventPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		ids:       gen,
		publisher: publisher,
		now:       time.Now,
	}
}

// Create stores a new transaction. A recurring transaction is its own
// first occurrence and its cursor starts one month later.
func (s *TransactionService) Create(ctx context.Context, in NewTransaction) (core.Transaction, error) {
	t, err := s.build(in)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.insert(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// build assigns an ID and validates in without touching the store.
func (s *TransactionService) build(in NewTransaction) (core.Transaction, error) {
	t := core.Transaction{
		ID:          s.ids.NewID(),
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Type:        in.Type,
		Category:    strings.TrimSpace(in.Category),
		Date:        in.Date,
	}
	if t.Date.IsZero() {
		t.Date = core.DateOf(s.now())
	}
	if in.Recurring {
		t.RecurringID = t.ID
		t.Recurring = &core.Recurrence{
			Frequency:    core.Monthly,
			OriginalDate: t.Date,
			NextDueDate:  MonthlyStepper{}.Next(t.Date, t.Date),
		}
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, invalid(err)
	}
	return t, nil
}

func (s *TransactionService) insert(ctx context.Context, t core.Transaction) error {
	if err := s.store.AppendTransactions(ctx, t); err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction created",
		"id", t.ID,
		"type", t.Type,
		"amount", t.Amount.String(),
		"recurring", t.IsOrigin())

	s.publish(ctx, t.ID, core.EventCreated)
	return nil
}

// Update replaces a stored transaction. The recurrence descriptor is taken
// as given.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.Description = strings.TrimSpace(t.Description)
	t.Category = strings.TrimSpace(t.Category)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, invalid(err)
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", t.ID, err)
	}
	return t, nil
}

// TransactionEdit is the input for TransactionService.Edit.
type TransactionEdit struct {
	Description string
	Amount      core.Money
	Type        core.TransactionType
	Category    string
	// Date keeps the stored date when zero.
	Date core.Date
	// Recurring turns the series on or off. Nil keeps the current state.
	Recurring *bool
}

// Edit applies user changes to a stored transaction.
//
// Turning recurrence on, or moving the date of an origin, re-anchors the
// series as monthly on the new date with the next occurrence a month later.
// Turning it off drops the descriptor; past occurrences keep their series
// link. Otherwise the cursor is left alone.
func (s *TransactionService) Edit(ctx context.Context, id string, in TransactionEdit) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	t.Description = in.Description
	t.Amount = in.Amount
	t.Type = in.Type
	t.Category = in.Category

	moved := !in.Date.IsZero() && !in.Date.Equal(t.Date)
	if moved {
		t.Date = in.Date
	}
	recurring := t.IsOrigin()
	if in.Recurring != nil {
		recurring = *in.Recurring
	}
	switch {
	case !recurring:
		t.Recurring = nil
	case t.Recurring == nil || moved:
		if t.RecurringID == "" {
			t.RecurringID = t.ID
		}
		t.Recurring = &core.Recurrence{
			Frequency:    core.Monthly,
			OriginalDate: t.Date,
			NextDueDate:  MonthlyStepper{}.Next(t.Date, t.Date),
		}
	}
	return s.Update(ctx, t)
}

func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	s.publish(ctx, id, core.EventDeleted)
	return nil
}

func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return t, nil
}

// List applies f to the store and summarizes the result.
func (s *TransactionService) List(ctx context.Context, f core.Filter) ([]core.Transaction, core.Summary, error) {
	all, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, core.Summary{}, fmt.Errorf("list transactions: %w", err)
	}
	matched := f.Apply(all)
	return matched, core.Summarize(matched), nil
}

func (s *TransactionService) publish(ctx context.Context, id string, kind core.EventKind) {
	if s.publisher == nil {
		return
	}
	ev := core.TransactionEvent{ID: id, Kind: kind, Timestamp: s.now()}
	if err := s.publisher.PublishTransactionEvent(ctx, ev); err != nil {
		// The store write already succeeded.
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", id,
			"kind", kind,
			"error", err)
	}
}
