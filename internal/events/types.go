package events

import (
	"time"
)

// Event is the base interface for all pipeline events
type Event interface {
	// Type returns the event type as a string for filtering and logging
	Type() string
	// Timestamp returns when the event occurred
	Timestamp() time.Time
	// RunID returns the id of the render run this event belongs to
	RunID() string
}

// BaseEvent provides common fields for all events
type BaseEvent struct {
	EventType string    `json:"type"`
	Time      time.Time `json:"timestamp"`
	Run       string    `json:"run_id"`
}

// Type implements Event interface
func (e BaseEvent) Type() string {
	return e.EventType
}

// Timestamp implements Event interface
func (e BaseEvent) Timestamp() time.Time {
	return e.Time
}

// RunID implements Event interface
func (e BaseEvent) RunID() string {
	return e.Run
}

func newBase(eventType, runID string) BaseEvent {
	return BaseEvent{EventType: eventType, Time: time.Now(), Run: runID}
}

// EventHandler is a function that processes events
type EventHandler func(Event)

// Subscriber represents an entity that can receive events
type Subscriber interface {
	ID() string
	HandleEvent(Event)
	// InterestedIn returns true if the subscriber wants to receive this event type
	InterestedIn(eventType string) bool
}

// Publisher is the interface for publishing events
type Publisher interface {
	Publish(Event)
}

// Bus is the main event bus interface
type Bus interface {
	Publisher
	Subscribe(Subscriber)
	Unsubscribe(subscriberID string)
	SubscribeFunc(eventType string, handler EventHandler) string
}

// Discard is a Publisher that drops everything
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}
