package core

import "time"

const (
	EventCreated EventKind = "created"
	EventDeleted EventKind = "deleted"
)

type EventKind string

// TransactionEvent is the message published when a transaction changes.
type TransactionEvent struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

func (k EventKind) Valid() bool {
	return k == EventCreated || k == EventDeleted
}
