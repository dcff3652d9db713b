package repository

import (
	"context"

	"github.com/amirasaad/econbot/pkg/repository"
	"gorm.io/gorm"
)

// UoW provides the transaction boundary and repository access in one
// abstraction. Repositories handed out by a UoW obtained inside Do share its
// transaction.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn in a transaction. Inside a transaction it runs fn on the same
// transaction, so services may compose their operations freely.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		return fn(u)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UoW) CurrencyRepository() (repository.CurrencyRepository, error) {
	return NewCurrencyRepository(u.session()), nil
}

func (u *UoW) UserRepository() (repository.UserRepository, error) {
	return NewUserRepository(u.session()), nil
}

func (u *UoW) WalletRepository() (repository.WalletRepository, error) {
	return NewWalletRepository(u.session()), nil
}

func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return NewTransactionRepository(u.session()), nil
}

func (u *UoW) RewardLogRepository() (repository.RewardLogRepository, error) {
	return NewRewardLogRepository(u.session()), nil
}

func (u *UoW) ExchangeRateRepository() (repository.ExchangeRateRepository, error) {
	return NewExchangeRateRepository(u.session()), nil
}

var _ repository.UnitOfWork = (*UoW)(nil)
