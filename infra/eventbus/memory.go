// Package eventbus provides the event bus implementations: an in-process bus
// for single-node runs and tests, and a Redis Streams bus for events produced
// by a separate platform gateway.
package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/amirasaad/econbot/pkg/eventbus"
)

// MemoryEventBus delivers events synchronously to every handler registered
// for the event type, in registration order.
type MemoryEventBus struct {
	handlers  map[string][]eventbus.HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	history   int
	published []eventbus.Event
}

// MemoryOption configures a MemoryEventBus.
type MemoryOption func(*MemoryEventBus)

// WithHistory keeps the last n emitted events for Published. Nothing is kept
// by default.
func WithHistory(n int) MemoryOption {
	return func(b *MemoryEventBus) { b.history = n }
}

// NewWithMemory creates a synchronous in-memory event bus.
func NewWithMemory(logger *slog.Logger, opts ...MemoryOption) *MemoryEventBus {
	b := &MemoryEventBus{
		handlers: make(map[string][]eventbus.HandlerFunc),
		logger:   logger.With("bus", "memory"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Register registers a handler for a specific event type.
func (b *MemoryEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit runs every handler for the event's type and returns their joined
// errors.
func (b *MemoryEventBus) Emit(ctx context.Context, event eventbus.Event) error {
	b.mu.Lock()
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[event.Type()]...)
	if b.history > 0 {
		b.published = append(b.published, event)
		if over := len(b.published) - b.history; over > 0 {
			b.published = append(b.published[:0:0], b.published[over:]...)
		}
	}
	b.mu.Unlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			b.logger.Error("failed to process event", "type", event.Type(), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Published returns the events kept by WithHistory, oldest first.
func (b *MemoryEventBus) Published() []eventbus.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]eventbus.Event(nil), b.published...)
}

var _ eventbus.Bus = (*MemoryEventBus)(nil)

type queued struct {
	ctx   context.Context
	event eventbus.Event
}

// MemoryAsyncEventBus queues events and hands them to a single worker, so
// every handler sees events in emit order. Handler errors and panics are
// logged.
type MemoryAsyncEventBus struct {
	handlers map[string][]eventbus.HandlerFunc
	mu       sync.RWMutex
	eventCh  chan queued
	done     chan struct{}
	log      *slog.Logger
}

// NewWithMemoryAsync creates an asynchronous in-memory event bus with the
// given queue size.
func NewWithMemoryAsync(logger *slog.Logger, size int) *MemoryAsyncEventBus {
	b := &MemoryAsyncEventBus{
		handlers: make(map[string][]eventbus.HandlerFunc),
		eventCh:  make(chan queued, size),
		done:     make(chan struct{}),
		log:      logger.With("bus", "memory-async"),
	}
	go b.process()
	return b
}

func (b *MemoryAsyncEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.mu.Unlock()
}

// Emit queues the event. It blocks while the queue is full.
func (b *MemoryAsyncEventBus) Emit(ctx context.Context, event eventbus.Event) error {
	select {
	case b.eventCh <- queued{ctx: ctx, event: event}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events and waits until the queue is drained.
func (b *MemoryAsyncEventBus) Close() {
	close(b.eventCh)
	<-b.done
}

func (b *MemoryAsyncEventBus) process() {
	defer close(b.done)
	for q := range b.eventCh {
		b.mu.RLock()
		handlers := append([]eventbus.HandlerFunc(nil), b.handlers[q.event.Type()]...)
		b.mu.RUnlock()

		for _, handler := range handlers {
			b.run(q, handler)
		}
	}
}

func (b *MemoryAsyncEventBus) run(q queued, handler eventbus.HandlerFunc) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("panic recovered in event handler", "type", q.event.Type(), "panic", r)
		}
	}()
	if err := handler(q.ctx, q.event); err != nil {
		b.log.Error("failed to process event", "type", q.event.Type(), "error", err)
	}
}

var _ eventbus.Bus = (*MemoryAsyncEventBus)(nil)
