package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/econbot/pkg/cache"
	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/redis/go-redis/v9"
)

// RedisExchangeRateCache implements ExchangeRateCache using Redis, storing
// rates as JSON under prefix+key.
type RedisExchangeRateCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisExchangeRateCache creates a cache on an existing client.
func NewRedisExchangeRateCache(client *redis.Client, prefix string, logger *slog.Logger) *RedisExchangeRateCache {
	return &RedisExchangeRateCache{client: client, prefix: prefix, logger: logger.With("cache", "redis")}
}

func (r *RedisExchangeRateCache) key(key string) string {
	return r.prefix + key
}

func (r *RedisExchangeRateCache) Get(ctx context.Context, key string) (*currency.ExchangeRate, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("rate cache miss", "key", key)
		return nil, nil
	}
	if err != nil {
		r.logger.Error("rate cache read failed", "key", key, "error", err)
		return nil, err
	}
	var rate currency.ExchangeRate
	if err := json.Unmarshal(val, &rate); err != nil {
		r.logger.Error("cached rate is corrupt", "key", key, "error", err)
		return nil, err
	}
	r.logger.Debug("rate cache hit", "key", key, "rate", rate.Rate)
	return &rate, nil
}

// Set stores rate under key. A non-positive ttl never expires.
func (r *RedisExchangeRateCache) Set(ctx context.Context, key string, rate *currency.ExchangeRate, ttl time.Duration) error {
	data, err := json.Marshal(rate)
	if err != nil {
		r.logger.Error("rate encode failed", "key", key, "error", err)
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		r.logger.Error("rate cache write failed", "key", key, "error", err)
		return err
	}
	r.logger.Debug("rate cached", "key", key, "rate", rate.Rate, "ttl", ttl)
	return nil
}

func (r *RedisExchangeRateCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		r.logger.Error("rate cache invalidate failed", "key", key, "error", err)
		return err
	}
	r.logger.Debug("rate invalidated", "key", key)
	return nil
}

var _ cache.ExchangeRateCache = (*RedisExchangeRateCache)(nil)
