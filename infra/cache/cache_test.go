package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRate() *currency.ExchangeRate {
	c := currency.New(currency.Spec{Name: "GameCoins", Symbol: "GC"})
	return currency.NewExchangeRate(c, decimal.NewFromInt(100), decimal.RequireFromString("0.123456"), true)
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	got, err := c.Get(ctx, "GC")
	require.NoError(t, err)
	assert.Nil(t, got)

	rate := sampleRate()
	require.NoError(t, c.Set(ctx, "GC", rate, time.Minute))
	got, err = c.Get(ctx, "GC")
	require.NoError(t, err)
	assert.Same(t, rate, got)

	now = now.Add(2 * time.Minute)
	got, err = c.Get(ctx, "GC")
	require.NoError(t, err)
	assert.Nil(t, got, "expired entries are misses")

	require.NoError(t, c.Set(ctx, "GC", rate, 0))
	now = now.Add(24 * time.Hour)
	got, _ = c.Get(ctx, "GC")
	assert.NotNil(t, got, "zero ttl never expires")

	require.NoError(t, c.Delete(ctx, "GC"))
	got, _ = c.Get(ctx, "GC")
	assert.Nil(t, got)
}

func TestMemoryCache_Purge(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "A", sampleRate(), time.Second))
	require.NoError(t, c.Set(ctx, "B", sampleRate(), time.Hour))
	now = now.Add(time.Minute)
	c.Purge()
	assert.Len(t, c.entries, 1)
}

func TestRedisExchangeRateCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	c := NewRedisExchangeRateCache(client, "exr:rate:", slog.New(slog.NewTextHandler(io.Discard, nil)))

	got, err := c.Get(ctx, "GC")
	require.NoError(t, err)
	assert.Nil(t, got)

	rate := sampleRate()
	require.NoError(t, c.Set(ctx, "GC", rate, time.Minute))
	assert.True(t, mr.Exists("exr:rate:GC"))

	got, err = c.Get(ctx, "GC")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rate.ID, got.ID)
	assert.True(t, rate.Rate.Equal(got.Rate))
	assert.Equal(t, "0.12346", got.Rate.String())
	assert.Equal(t, "GC", got.Symbol)

	mr.FastForward(2 * time.Minute)
	got, err = c.Get(ctx, "GC")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "GC", rate, time.Minute))
	require.NoError(t, c.Delete(ctx, "GC"))
	assert.False(t, mr.Exists("exr:rate:GC"))
}
