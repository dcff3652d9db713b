package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/amirasaad/econbot/pkg/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDb.Close() })
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func TestUoW_TypeSafeMethods(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(txUow repository.UnitOfWork) error {
		currencies, err := txUow.CurrencyRepository()
		require.NoError(t, err)
		assert.IsType(t, &currencyRepository{}, currencies)

		wallets, err := txUow.WalletRepository()
		require.NoError(t, err)
		assert.IsType(t, &walletRepository{}, wallets)

		users, err := txUow.UserRepository()
		require.NoError(t, err)
		assert.IsType(t, &userRepository{}, users)

		txs, err := txUow.TransactionRepository()
		require.NoError(t, err)
		assert.IsType(t, &transactionRepository{}, txs)

		logs, err := txUow.RewardLogRepository()
		require.NoError(t, err)
		assert.IsType(t, &rewardLogRepository{}, logs)

		rates, err := txUow.ExchangeRateRepository()
		require.NoError(t, err)
		assert.IsType(t, &exchangeRateRepository{}, rates)
		return nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := uow.Do(context.Background(), func(repository.UnitOfWork) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUoW_NestedDoJoinsTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	uow := NewUoW(db)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := uow.Do(context.Background(), func(outer repository.UnitOfWork) error {
		return outer.Do(context.Background(), func(inner repository.UnitOfWork) error {
			assert.Same(t, outer, inner)
			return nil
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepository_LockBalanceUsesRowLock(t *testing.T) {
	db, mock := newMockDB(t)
	walletID, currencyID := uuid.New(), uuid.New()

	rows := sqlmock.NewRows([]string{"id", "wallet_id", "currency_id", "balance"}).
		AddRow(uuid.New().String(), walletID.String(), currencyID.String(), "12.50")
	mock.ExpectQuery(`SELECT \* FROM "wallet_currency" WHERE .* FOR UPDATE`).WillReturnRows(rows)

	b, err := NewWalletRepository(db).LockBalance(context.Background(), walletID, currencyID)
	require.NoError(t, err)
	assert.Equal(t, "12.5", b.Balance.String())
	assert.Equal(t, walletID, b.WalletID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyRepository_GetBySymbolNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "currency" WHERE symbol = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "symbol"}))

	_, err := NewCurrencyRepository(db).GetBySymbol(context.Background(), "XX")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
