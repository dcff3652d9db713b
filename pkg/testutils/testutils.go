// Package testutils holds helpers shared by package tests.
package testutils

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/amirasaad/econbot/infra"
	infrarepo "github.com/amirasaad/econbot/infra/repository"
	"github.com/amirasaad/econbot/pkg/config"
	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/amirasaad/econbot/pkg/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewTestDB opens a migrated SQLite database in a per-test temp directory.
func NewTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "econbot.db")
	db, err := infra.NewDBConnection(&config.DB{Url: "sqlite://" + path}, "test")
	require.NoError(tb, err)
	require.NoError(tb, infra.Migrate(db))
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewTestUoW returns a UnitOfWork on a fresh test database.
func NewTestUoW(tb testing.TB) *infrarepo.UoW {
	tb.Helper()
	return infrarepo.NewUoW(NewTestDB(tb))
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// GameCoins is the GC currency with dime (0.10) and grand (1000)
// denominations.
func GameCoins() currency.Spec {
	return currency.Spec{
		Name:   "GameCoins",
		Symbol: "GC",
		Denominations: []currency.DenominationSpec{
			{Name: "dime", Value: decimal.RequireFromString("0.10")},
			{Name: "grand", Value: decimal.RequireFromString("1000")},
		},
	}
}

// CreateCurrency stores a currency built from spec and returns it.
func CreateCurrency(tb testing.TB, uow repository.UnitOfWork, spec currency.Spec) *currency.Currency {
	tb.Helper()
	c := currency.New(spec)
	repo, err := uow.CurrencyRepository()
	require.NoError(tb, err)
	require.NoError(tb, repo.Create(context.Background(), c))
	return c
}
