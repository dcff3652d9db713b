package cache

import (
	"context"
	"sync"
	"time"

	"github.com/amirasaad/econbot/pkg/cache"
	"github.com/amirasaad/econbot/pkg/domain/currency"
)

// MemoryCache implements ExchangeRateCache in process memory. Expired
// entries are dropped lazily on read and by Purge.
type MemoryCache struct {
	entries map[string]cacheEntry
	mu      sync.RWMutex
	now     func() time.Time
}

type cacheEntry struct {
	rate      *currency.ExchangeRate
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]cacheEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*currency.ExchangeRate, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	return entry.rate, nil
}

// Set stores rate under key. A non-positive ttl never expires.
func (c *MemoryCache) Set(_ context.Context, key string, rate *currency.ExchangeRate, ttl time.Duration) error {
	entry := cacheEntry{rate: rate}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Purge removes every expired entry.
func (c *MemoryCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.entries {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

var _ cache.ExchangeRateCache = (*MemoryCache)(nil)
