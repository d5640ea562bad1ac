// Package events provides the in-process event bus used to decouple the
// pipeline service from its side effects (reminders, notifications).
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is implemented by every domain event.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the fields shared by all events.
type BaseEvent struct {
	EventID   string    `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
	Workspace string    `json:"workspace"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// EventWorkspace returns the workspace the event belongs to.
func (e BaseEvent) EventWorkspace() string {
	return e.Workspace
}

// NewBaseEvent stamps a new event for workspace.
func NewBaseEvent(workspace string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Workspace: workspace,
	}
}

// Handler processes events of one type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes events to handlers subscribed by event name.
type Bus interface {
	// Publish runs handlers asynchronously.
	Publish(ctx context.Context, event Event)
	// PublishSync runs handlers in order and joins their errors.
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
