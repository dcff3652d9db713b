// Package eventbus defines the contract between the platform event source and
// the subscribers of the economy.
package eventbus

import "context"

// Event is a platform event. Type returns the event identifier subscribers
// register for.
type Event interface {
	Type() string
}

// Keyed is implemented by events that carry a stable delivery key. The same
// event delivered twice returns the same key.
type Keyed interface {
	Key() string
}

// HandlerFunc handles one event.
type HandlerFunc func(ctx context.Context, e Event) error

// Bus delivers events to the handlers registered for their type.
type Bus interface {
	Register(eventType string, handler HandlerFunc)
	Emit(ctx context.Context, e Event) error
}

// Factory returns an empty event value to decode a payload into.
type Factory func() Event
