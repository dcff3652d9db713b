package repository

import (
	"context"

	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/amirasaad/econbot/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type exchangeRateRepository struct {
	db *gorm.DB
}

// NewExchangeRateRepository returns an ExchangeRateRepository on db.
func NewExchangeRateRepository(db *gorm.DB) repository.ExchangeRateRepository {
	return &exchangeRateRepository{db: db}
}

func (r *exchangeRateRepository) Create(ctx context.Context, rate *currency.ExchangeRate) error {
	row := &ExchangeRate{
		ID:                  rate.ID,
		ExchangedCurrencyID: rate.ExchangedCurrencyID,
		AmountExchanged:     rate.AmountExchanged,
		ExchangeRate:        rate.Rate,
		Bought:              rate.Bought,
		CreatedAt:           rate.CreatedAt,
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(row).Error
	})
}

func (r *exchangeRateRepository) Latest(ctx context.Context, currencyID uuid.UUID) (*currency.ExchangeRate, error) {
	var rows []ExchangeRate
	if err := r.db.WithContext(ctx).
		Where("exchanged_currency_id = ?", currencyID).
		Order("created_at DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return exchangeRateToDomain(&rows[0]), nil
}
