package repository

import (
	"context"
	"time"

	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/amirasaad/econbot/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type currencyRepository struct {
	db *gorm.DB
}

// NewCurrencyRepository returns a CurrencyRepository on db.
func NewCurrencyRepository(db *gorm.DB) repository.CurrencyRepository {
	return &currencyRepository{db: db}
}

func (r *currencyRepository) Create(ctx context.Context, c *currency.Currency) error {
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(currencyFromDomain(c)).Error
	})
}

func (r *currencyRepository) Update(ctx context.Context, c *currency.Currency) error {
	c.UpdatedAt = time.Now().UTC()
	row := currencyFromDomain(c)
	db := r.db.WithContext(ctx)

	res := db.Model(&Currency{ID: c.ID}).
		Omit(clause.Associations).
		Select("name", "symbol", "description", "updated_at").
		Updates(row)
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	if err := db.Where("currency_id = ?", c.ID).Delete(&Denomination{}).Error; err != nil {
		return MapGormErrorToDomain(err)
	}
	if len(row.Denominations) == 0 {
		return nil
	}
	return WrapError(func() error {
		return db.Create(&row.Denominations).Error
	})
}

func (r *currencyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("currency_id = ?", id).Delete(&Balance{}).Error; err != nil {
		return MapGormErrorToDomain(err)
	}
	if err := db.Where("currency_id = ?", id).Delete(&Denomination{}).Error; err != nil {
		return MapGormErrorToDomain(err)
	}
	res := db.Delete(&Currency{}, "id = ?", id)
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *currencyRepository) GetBySymbol(ctx context.Context, symbol string) (*currency.Currency, error) {
	var rows []Currency
	if err := r.db.WithContext(ctx).
		Preload("Denominations").
		Where("symbol = ?", symbol).
		Limit(2).
		Find(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	switch len(rows) {
	case 0:
		return nil, domain.ErrNotFound
	case 1:
		return currencyToDomain(&rows[0]), nil
	}
	return nil, domain.ErrAmbiguousMatch
}

func (r *currencyRepository) List(ctx context.Context) ([]*currency.Currency, error) {
	var rows []Currency
	if err := r.db.WithContext(ctx).
		Preload("Denominations").
		Order("symbol").
		Find(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return currenciesToDomain(rows), nil
}

func (r *currencyRepository) FindByUnits(ctx context.Context, units []string) ([]*currency.Currency, error) {
	if len(units) == 0 {
		return nil, nil
	}
	db := r.db.WithContext(ctx)
	withDenomination := db.Model(&Denomination{}).Select("currency_id").Where("name IN ?", units)

	var rows []Currency
	if err := db.
		Preload("Denominations").
		Where("symbol IN ?", units).
		Or("id IN (?)", withDenomination).
		Order("symbol").
		Find(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return currenciesToDomain(rows), nil
}

func currenciesToDomain(rows []Currency) []*currency.Currency {
	out := make([]*currency.Currency, 0, len(rows))
	for i := range rows {
		out = append(out, currencyToDomain(&rows[i]))
	}
	return out
}
