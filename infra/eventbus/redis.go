package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/econbot/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

// RedisConfig names the stream and consumer group the bus works on.
type RedisConfig struct {
	Stream   string
	Group    string
	Consumer string
	Block    time.Duration
	// ClaimIdle is how long an entry must have been pending with another
	// consumer before Start takes it over.
	ClaimIdle time.Duration
}

// RedisEventBus implements the bus on a Redis stream. All event types share
// one stream; a single reader per process dispatches entries to the handlers
// registered for their type. Entries whose handling fails are copied to the
// dead-letter stream and acknowledged.
type RedisEventBus struct {
	client *redis.Client
	cfg    RedisConfig
	types  map[string]eventbus.Factory
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[string][]eventbus.HandlerFunc

	stop context.CancelFunc
	done chan struct{}
}

// NewWithRedis creates a Redis Streams event bus and makes sure the consumer
// group exists. types decodes stream entries back into events.
func NewWithRedis(
	ctx context.Context,
	client *redis.Client,
	cfg RedisConfig,
	types map[string]eventbus.Factory,
	logger *slog.Logger,
) (*RedisEventBus, error) {
	if cfg.Stream == "" || cfg.Group == "" {
		return nil, errors.New("redis event bus: stream and group are required")
	}
	if cfg.Consumer == "" {
		cfg.Consumer = fmt.Sprintf("consumer-%d", time.Now().UnixNano())
	}
	if cfg.Block <= 0 {
		cfg.Block = 5 * time.Second
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}
	err := client.XGroupCreateMkStream(ctx, cfg.Stream, cfg.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("redis event bus: create group: %w", err)
	}
	return &RedisEventBus{
		client:   client,
		cfg:      cfg,
		types:    types,
		logger:   logger.With("component", "redis-event-bus", "stream", cfg.Stream),
		handlers: make(map[string][]eventbus.HandlerFunc),
	}, nil
}

// DLQStream is the stream failed entries are copied to.
func (b *RedisEventBus) DLQStream() string {
	return b.cfg.Stream + "-DLQ"
}

// Emit appends the event to the stream.
func (b *RedisEventBus) Emit(ctx context.Context, event eventbus.Event) error {
	data, err := encode(event)
	if err != nil {
		b.logger.Error("failed to marshal event", "error", err, "type", event.Type())
		return fmt.Errorf("redis event bus: %w", err)
	}
	if err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.cfg.Stream,
		Values: map[string]any{"event": string(data)},
	}).Err(); err != nil {
		b.logger.Error("failed to emit event", "error", err, "type", event.Type())
		return fmt.Errorf("redis event bus: emit failed: %w", err)
	}
	b.logger.Debug("event emitted", "type", event.Type())
	return nil
}

// Register adds a handler for eventType. Handlers may be added after Start.
func (b *RedisEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.mu.Unlock()
	b.logger.Info("handler registered", "event_type", eventType, "consumer", b.cfg.Consumer)
}

// Start first takes over entries left pending by consumers that stopped
// without acknowledging them, then runs the reader until ctx is cancelled or
// Close is called.
func (b *RedisEventBus) Start(ctx context.Context) {
	ctx, b.stop = context.WithCancel(ctx)
	b.done = make(chan struct{})
	go func() {
		defer close(b.done)
		if n, err := b.reclaim(ctx); err != nil {
			b.logger.Error("failed to reclaim pending entries", "error", err, "consumer", b.cfg.Consumer)
		} else if n > 0 {
			b.logger.Info("reclaimed pending entries", "count", n, "consumer", b.cfg.Consumer)
		}
		for ctx.Err() == nil {
			if _, err := b.readOnce(ctx, b.cfg.Block); err != nil && ctx.Err() == nil {
				b.logger.Error("error reading from stream", "error", err, "consumer", b.cfg.Consumer)
				time.Sleep(time.Second)
			}
		}
	}()
}

// Close stops the reader started by Start.
func (b *RedisEventBus) Close() {
	if b.stop == nil {
		return
	}
	b.stop()
	<-b.done
}

// reclaim claims and handles every entry of the group that has been idle for
// at least ClaimIdle. Rewards are idempotent per event, so an entry that was
// half handled before a crash is safe to handle again.
func (b *RedisEventBus) reclaim(ctx context.Context) (int, error) {
	n := 0
	start := "0-0"
	for {
		msgs, next, err := b.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   b.cfg.Stream,
			Group:    b.cfg.Group,
			Consumer: b.cfg.Consumer,
			MinIdle:  b.cfg.ClaimIdle,
			Start:    start,
			Count:    16,
		}).Result()
		if err != nil {
			return n, err
		}
		for _, msg := range msgs {
			b.handle(ctx, msg)
			n++
		}
		if next == "0-0" || next == "" {
			return n, nil
		}
		start = next
	}
}

// readOnce reads and handles one batch. A negative block does not wait.
func (b *RedisEventBus) readOnce(ctx context.Context, block time.Duration) (int, error) {
	res, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    b.cfg.Group,
		Consumer: b.cfg.Consumer,
		Streams:  []string{b.cfg.Stream, ">"},
		Count:    16,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n := 0
	for _, stream := range res {
		for _, msg := range stream.Messages {
			b.handle(ctx, msg)
			n++
		}
	}
	return n, nil
}

func (b *RedisEventBus) handle(ctx context.Context, msg redis.XMessage) {
	defer func() {
		if err := b.client.XAck(ctx, b.cfg.Stream, b.cfg.Group, msg.ID).Err(); err != nil {
			b.logger.Error("failed to acknowledge message", "error", err, "msg_id", msg.ID)
		}
	}()

	raw, ok := msg.Values["event"].(string)
	if !ok {
		b.logger.Error("stream entry without event field", "msg_id", msg.ID)
		b.pushToDLQ(ctx, msg.Values)
		return
	}
	evt, err := decode([]byte(raw), b.types)
	if err != nil {
		b.logger.Error("failed to decode event", "error", err, "msg_id", msg.ID)
		b.pushToDLQ(ctx, msg.Values)
		return
	}

	b.mu.RLock()
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[evt.Type()]...)
	b.mu.RUnlock()

	failed := false
	for _, handler := range handlers {
		if !b.run(ctx, handler, evt) {
			failed = true
		}
	}
	if failed {
		b.pushToDLQ(ctx, msg.Values)
	}
}

func (b *RedisEventBus) run(ctx context.Context, handler eventbus.HandlerFunc, evt eventbus.Event) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panic recovered", "panic", r, "event_type", evt.Type())
			ok = false
		}
	}()
	if err := handler(ctx, evt); err != nil {
		b.logger.Error("handler error", "error", err, "event_type", evt.Type())
		return false
	}
	return true
}

// pushToDLQ copies the raw entry to the dead-letter stream for inspection or
// reprocessing.
func (b *RedisEventBus) pushToDLQ(ctx context.Context, values map[string]any) {
	dlq := b.DLQStream()
	if err := b.client.XAdd(ctx, &redis.XAddArgs{Stream: dlq, Values: values}).Err(); err != nil {
		b.logger.Error("failed to push to DLQ", "error", err, "stream", dlq)
		return
	}
	b.logger.Warn("event pushed to DLQ", "stream", dlq)
}

var _ eventbus.Bus = (*RedisEventBus)(nil)
