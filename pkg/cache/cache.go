// Package cache defines the exchange-rate cache contract.
package cache

import (
	"context"
	"time"

	"github.com/amirasaad/econbot/pkg/domain/currency"
)

// ExchangeRateCache caches the current exchange rate per currency symbol.
// Get returns nil and no error on a miss.
type ExchangeRateCache interface {
	Get(ctx context.Context, key string) (*currency.ExchangeRate, error)
	Set(ctx context.Context, key string, rate *currency.ExchangeRate, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
