package repository

import (
	"context"
	"time"

	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/amirasaad/econbot/pkg/domain/wallet"
	"github.com/amirasaad/econbot/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository returns a WalletRepository on db.
func NewWalletRepository(db *gorm.DB) repository.WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) FindByUser(ctx context.Context, userID int64) (*wallet.Wallet, error) {
	var rows []Wallet
	if err := r.db.WithContext(ctx).
		Preload("Balances.Currency.Denominations").
		Where("user_id = ?", userID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return walletToDomain(&rows[0]), nil
}

func (r *walletRepository) Create(ctx context.Context, w *wallet.Wallet) error {
	row := &Wallet{ID: w.ID, UserID: w.UserID, CreatedAt: w.CreatedAt}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error
	})
}

func (r *walletRepository) CreateBalance(ctx context.Context, b *wallet.Balance) error {
	b.UpdatedAt = time.Now().UTC()
	row := &Balance{
		ID:         b.ID,
		WalletID:   b.WalletID,
		CurrencyID: b.CurrencyID,
		Balance:    b.Balance,
		UpdatedAt:  b.UpdatedAt,
	}
	return WrapError(func() error {
		return r.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error
	})
}

func (r *walletRepository) LockBalance(ctx context.Context, walletID, currencyID uuid.UUID) (*wallet.Balance, error) {
	q := r.db.WithContext(ctx)
	// SQLite has no row locks; its connection pool is limited to one writer.
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var row Balance
	if err := q.Where("wallet_id = ? AND currency_id = ?", walletID, currencyID).
		First(&row).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return balanceToDomain(&row), nil
}

func (r *walletRepository) SaveBalance(ctx context.Context, b *wallet.Balance) error {
	b.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&Balance{}).
		Where("id = ?", b.ID).
		Updates(map[string]any{"balance": b.Balance, "updated_at": b.UpdatedAt})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
