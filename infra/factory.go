package infra

import (
	"context"
	"fmt"
	"log/slog"

	infracache "github.com/amirasaad/econbot/infra/cache"
	infraeventbus "github.com/amirasaad/econbot/infra/eventbus"
	"github.com/amirasaad/econbot/pkg/cache"
	"github.com/amirasaad/econbot/pkg/config"
	"github.com/amirasaad/econbot/pkg/domain/platform"
	"github.com/amirasaad/econbot/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a client from the Redis section of the config.
func NewRedisClient(cfg *config.Redis) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opt.PoolSize = cfg.PoolSize
	}
	opt.DialTimeout = cfg.DialTimeout
	opt.ReadTimeout = cfg.ReadTimeout
	opt.WriteTimeout = cfg.WriteTimeout
	return redis.NewClient(opt), nil
}

// NewExchangeRateCache returns the cache selected by cfg.Backend. client is
// only used by the redis backend.
func NewExchangeRateCache(cfg *config.ExchangeRateCache, keyPrefix string, client *redis.Client, logger *slog.Logger) (cache.ExchangeRateCache, error) {
	switch cfg.Backend {
	case "", "memory":
		logger.Info("Using in-memory cache for exchange rates")
		return infracache.NewMemoryCache(), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis exchange rate cache: no redis client")
		}
		logger.Info("Using Redis for exchange rate cache", "prefix", keyPrefix+cfg.Prefix)
		return infracache.NewRedisExchangeRateCache(client, keyPrefix+cfg.Prefix, logger), nil
	}
	return nil, fmt.Errorf("unknown exchange rate cache backend %q", cfg.Backend)
}

// EventBus is a bus together with its lifecycle hooks. Start and Close are
// no-ops for the synchronous memory bus.
type EventBus struct {
	eventbus.Bus
	Start func(ctx context.Context)
	Close func()
}

// NewEventBus returns the bus selected by cfg.Driver.
func NewEventBus(ctx context.Context, cfg *config.EventBus, client *redis.Client, logger *slog.Logger) (*EventBus, error) {
	noop := func() {}
	switch cfg.Driver {
	case "", "memory":
		return &EventBus{Bus: infraeventbus.NewWithMemory(logger), Start: func(context.Context) {}, Close: noop}, nil
	case "memory-async":
		bus := infraeventbus.NewWithMemoryAsync(logger, cfg.QueueSize)
		return &EventBus{Bus: bus, Start: func(context.Context) {}, Close: bus.Close}, nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis event bus: no redis client")
		}
		bus, err := infraeventbus.NewWithRedis(ctx, client, infraeventbus.RedisConfig{
			Stream:    cfg.Stream,
			Group:     cfg.Group,
			Consumer:  cfg.Consumer,
			Block:     cfg.Block,
			ClaimIdle: cfg.ClaimIdle,
		}, platform.EventTypes, logger)
		if err != nil {
			return nil, err
		}
		return &EventBus{Bus: bus, Start: bus.Start, Close: bus.Close}, nil
	}
	return nil, fmt.Errorf("unknown event bus driver %q", cfg.Driver)
}
