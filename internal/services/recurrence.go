package services

import (
	"budget/internal/core"
	"budget/internal/ids"
	"errors"
	"fmt"
)

// DefaultMaxOccurrences bounds the emissions of one series in a single pass.
// Forty years of monthly catch-up fits comfortably.
const DefaultMaxOccurrences = 480

var (
	ErrUnknownFrequency   = errors.New("unknown recurrence frequency")
	ErrInvalidCursor      = errors.New("invalid next due date")
	ErrStepperStalled     = errors.New("stepper did not advance cursor")
	ErrTooManyOccurrences = errors.New("too many occurrences in one pass")
)

// SeriesError reports why one recurring series could not be caught up.
type SeriesError struct {
	OriginID string
	Err      error
}

func (e *SeriesError) Error() string {
	return fmt.Sprintf("series %s: %v", e.OriginID, e.Err)
}

func (e *SeriesError) Unwrap() error { return e.Err }

// Materialization is the outcome of one catch-up pass.
type Materialization struct {
	// NewOccurrences are concrete transactions to append, in series order
	// and date order within a series.
	NewOccurrences []core.Transaction
	// UpdatedOrigins are copies of origins whose cursor moved.
	UpdatedOrigins []core.Transaction
	// Failures lists the series skipped in this pass, in input order.
	Failures []*SeriesError
}

// Engine turns recurring origins into concrete occurrences up to a date.
// It holds no state between calls besides its configuration.
type Engine struct {
	ids            ids.Generator
	steppers       map[core.Frequency]Stepper
	maxOccurrences int
}

func NewEngine(gen ids.Generator) *Engine {
	return &Engine{
		ids:            gen,
		steppers:       defaultSteppers(),
		maxOccurrences: DefaultMaxOccurrences,
	}
}

// Register installs or replaces the stepper for a frequency.
func (e *Engine) Register(frequency core.Frequency, s Stepper) {
	e.steppers[frequency] = s
}

// SetMaxOccurrences changes the per-series emission bound. Values below one
// are ignored.
func (e *Engine) SetMaxOccurrences(n int) {
	if n > 0 {
		e.maxOccurrences = n
	}
}

// Materialize emits every occurrence due on or before asOf for each origin
// in transactions and advances their cursors. The input is never modified.
//
// A series that fails is skipped entirely and reported in Failures; the
// returned error joins all failures so callers that only check err still
// see them. The Materialization is valid even when err is non-nil.
func (e *Engine) Materialize(transactions []core.Transaction, asOf core.Date) (Materialization, error) {
	var out Materialization
	if err := asOf.Validate(); err != nil {
		return out, fmt.Errorf("as-of date: %w", err)
	}

	for _, t := range transactions {
		if !t.IsOrigin() {
			continue
		}
		occurrences, cursor, err := e.catchUp(t, asOf)
		if err != nil {
			out.Failures = append(out.Failures, &SeriesError{OriginID: t.ID, Err: err})
			continue
		}
		out.NewOccurrences = append(out.NewOccurrences, occurrences...)
		if cursor.Equal(t.Recurring.NextDueDate) {
			continue
		}
		updated := t
		rec := *t.Recurring
		rec.NextDueDate = cursor
		updated.Recurring = &rec
		out.UpdatedOrigins = append(out.UpdatedOrigins, updated)
	}

	if len(out.Failures) == 0 {
		return out, nil
	}
	errs := make([]error, len(out.Failures))
	for i, f := range out.Failures {
		errs[i] = f
	}
	return out, errors.Join(errs...)
}

func (e *Engine) catchUp(origin core.Transaction, asOf core.Date) ([]core.Transaction, core.Date, error) {
	rec := origin.Recurring
	stepper, ok := e.steppers[rec.Frequency]
	if !ok {
		return nil, core.Date{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, rec.Frequency)
	}
	cursor := rec.NextDueDate
	if cursor.IsZero() {
		return nil, core.Date{}, ErrInvalidCursor
	}

	var occurrences []core.Transaction
	for !cursor.After(asOf) {
		if len(occurrences) >= e.maxOccurrences {
			return nil, core.Date{}, fmt.Errorf("%w: limit %d reached at %s", ErrTooManyOccurrences, e.maxOccurrences, cursor)
		}
		occurrences = append(occurrences, e.occurrence(origin, cursor))

		next := stepper.Next(cursor, rec.OriginalDate)
		if !next.After(cursor) {
			return nil, core.Date{}, fmt.Errorf("%w: %s -> %s", ErrStepperStalled, cursor, next)
		}
		cursor = next
	}
	return occurrences, cursor, nil
}

func (e *Engine) occurrence(origin core.Transaction, date core.Date) core.Transaction {
	return core.Transaction{
		ID:          e.ids.NewID(),
		Description: origin.Description,
		Amount:      origin.Amount,
		Type:        origin.Type,
		Category:    origin.Category,
		Date:        date,
		RecurringID: origin.SeriesID(),
	}
}
