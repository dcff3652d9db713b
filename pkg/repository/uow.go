package repository

import "context"

// UnitOfWork defines the transaction boundary and the repositories bound to
// it. Repositories obtained inside Do share its transaction; a nested Do
// joins the outer transaction instead of opening a new one.
type UnitOfWork interface {
	// Do executes fn within a transaction. If fn returns an error the
	// transaction is rolled back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	CurrencyRepository() (CurrencyRepository, error)
	UserRepository() (UserRepository, error)
	WalletRepository() (WalletRepository, error)
	TransactionRepository() (TransactionRepository, error)
	RewardLogRepository() (RewardLogRepository, error)
	ExchangeRateRepository() (ExchangeRateRepository, error)
}
