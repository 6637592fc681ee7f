// Package notify carries task change events from the mutation path to
// reactive query subscribers.
package notify

import (
	"context"
	"time"
)

type EventKind string

const (
	EventCreated     EventKind = "created"
	EventUpdated     EventKind = "updated"
	EventCompleted   EventKind = "completed"
	EventUncompleted EventKind = "uncompleted"
	EventRescheduled EventKind = "rescheduled"
	EventDeleted     EventKind = "deleted"
)

// Event describes one committed change to a single task record.
type Event struct {
	Owner  string    `json:"owner"`
	TaskID string    `json:"task_id"`
	Kind   EventKind `json:"kind"`
	At     time.Time `json:"at"`
}

// Broker is the change-notification channel. Subscribe returns a receive
// channel scoped to one owner plus an unsubscribe func; unsubscribing twice
// is a no-op and no events are delivered afterwards.
type Broker interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, owner string) (<-chan Event, func(), error)
}
