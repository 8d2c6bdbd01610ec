package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event types published after a successful commit.
const (
	UserRegistered     = "user.registered"
	UserDeleted        = "user.deleted"
	CategoryCreated    = "category.created"
	CategoryUpdated    = "category.updated"
	CategoryDeleted    = "category.deleted"
	TransactionCreated = "transaction.created"
	TransactionUpdated = "transaction.updated"
	TransactionDeleted = "transaction.deleted"
)

// Event is a change notification about one of a user's rows.
type Event struct {
	Type       string    `json:"type"`
	UserID     uint      `json:"user_id"`
	EntityID   uint      `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New builds an event stamped with the current time.
func New(eventType string, userID, entityID uint) Event {
	return Event{
		Type:       eventType,
		UserID:     userID,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Implementations must not fail the caller's
// request: delivery problems are logged, not returned.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Noop discards every event. Used when no broker is configured.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(context.Context, Event) {}

// Recorder keeps published events in memory.
type Recorder struct {
	Events []Event
}

// Publish appends event.
func (r *Recorder) Publish(_ context.Context, event Event) {
	r.Events = append(r.Events, event)
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []string {
	types := make([]string, len(r.Events))
	for i, e := range r.Events {
		types[i] = e.Type
	}
	return types
}
