package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"budget/internal/core"
)

var ErrInvalidEvent = errors.New("invalid transaction event")

// NewEvent creates an event for a transaction stamped with the current time.
// Only the ID travels; consumers read the transaction from storage.
func NewEvent(id string, kind core.EventKind) core.TransactionEvent {
	return core.TransactionEvent{
		ID:        id,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

// EncodeEvent converts the event to JSON bytes
func EncodeEvent(ev core.TransactionEvent) ([]byte, error) {
	if err := validateEvent(ev); err != nil {
		return nil, err
	}
	return json.Marshal(ev)
}

// DecodeEvent parses and validates an event body.
func DecodeEvent(data []byte) (core.TransactionEvent, error) {
	var ev core.TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return core.TransactionEvent{}, err
	}
	if err := validateEvent(ev); err != nil {
		return core.TransactionEvent{}, err
	}
	return ev, nil
}

func validateEvent(ev core.TransactionEvent) error {
	if ev.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidEvent)
	}
	if !ev.Kind.Valid() {
		return fmt.Errorf("%w: kind %q", ErrInvalidEvent, ev.Kind)
	}
	return nil
}
