package repository

import (
	"context"

	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/amirasaad/econbot/pkg/domain/wallet"
	"github.com/google/uuid"
)

// CurrencyRepository defines data access for currencies and their
// denominations.
type CurrencyRepository interface {
	Create(ctx context.Context, c *currency.Currency) error
	// Update saves name, symbol and description and replaces the whole
	// denomination set.
	Update(ctx context.Context, c *currency.Currency) error
	// Delete removes the currency, its denominations and every balance row
	// holding it. Audit rows are kept.
	Delete(ctx context.Context, id uuid.UUID) error
	// GetBySymbol fails with domain.ErrNotFound when no currency has the
	// symbol and domain.ErrAmbiguousMatch when more than one does.
	GetBySymbol(ctx context.Context, symbol string) (*currency.Currency, error)
	List(ctx context.Context) ([]*currency.Currency, error)
	// FindByUnits returns every currency whose symbol or one of whose
	// denomination names is in units.
	FindByUnits(ctx context.Context, units []string) ([]*currency.Currency, error)
}

// UserRepository defines data access for platform users.
type UserRepository interface {
	// Upsert inserts the user or refreshes its name.
	Upsert(ctx context.Context, u wallet.User) error
	Get(ctx context.Context, id int64) (*wallet.User, error)
}

// WalletRepository defines data access for wallets and balance rows.
type WalletRepository interface {
	// FindByUser returns the user's wallet with its balances, or nil and no
	// error when the user has none.
	FindByUser(ctx context.Context, userID int64) (*wallet.Wallet, error)
	Create(ctx context.Context, w *wallet.Wallet) error
	CreateBalance(ctx context.Context, b *wallet.Balance) error
	// LockBalance reads a balance row for update. The lock is held until the
	// surrounding transaction ends.
	LockBalance(ctx context.Context, walletID, currencyID uuid.UUID) (*wallet.Balance, error)
	SaveBalance(ctx context.Context, b *wallet.Balance) error
}

// TransactionRepository defines data access for the transaction log.
type TransactionRepository interface {
	Create(ctx context.Context, t *wallet.Transaction) error
	// ListByUser returns the rows where the user is the subject or the
	// counterparty, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*wallet.Transaction, error)
}

// RewardLogRepository defines data access for the reward log.
type RewardLogRepository interface {
	Create(ctx context.Context, l *wallet.RewardLog) error
	Exists(ctx context.Context, rule, eventKey string) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]*wallet.RewardLog, error)
}

// ExchangeRateRepository defines data access for exchange rate snapshots.
type ExchangeRateRepository interface {
	Create(ctx context.Context, r *currency.ExchangeRate) error
	// Latest returns the newest snapshot for the currency or
	// domain.ErrNotFound.
	Latest(ctx context.Context, currencyID uuid.UUID) (*currency.ExchangeRate, error)
}
