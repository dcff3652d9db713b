package currency

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RatePrecision is the number of decimal places kept for exchange rates.
const RatePrecision = 5

// ExchangeRate is a snapshot of the conversion rate of one currency to the
// base currency. The latest snapshot by CreatedAt is the current rate.
type ExchangeRate struct {
	ID                  uuid.UUID       `json:"id"`
	ExchangedCurrencyID uuid.UUID       `json:"exchanged_currency_id"`
	Symbol              string          `json:"symbol"`
	AmountExchanged     decimal.Decimal `json:"amount_exchanged"`
	Rate                decimal.Decimal `json:"exchange_rate"`
	Bought              bool            `json:"bought"`
	CreatedAt           time.Time       `json:"created_at"`
}

// NewExchangeRate returns a rate snapshot for c rounded to RatePrecision.
func NewExchangeRate(c *Currency, amountExchanged, rate decimal.Decimal, bought bool) *ExchangeRate {
	return &ExchangeRate{
		ID:                  uuid.New(),
		ExchangedCurrencyID: c.ID,
		Symbol:              c.Symbol,
		AmountExchanged:     amountExchanged,
		Rate:                rate.Round(RatePrecision),
		Bought:              bought,
		CreatedAt:           time.Now().UTC(),
	}
}
