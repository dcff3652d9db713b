package gambling_test

import (
	"context"
	"testing"

	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/amirasaad/econbot/pkg/domain/wallet"
	"github.com/amirasaad/econbot/pkg/service/currency"
	"github.com/amirasaad/econbot/pkg/service/gambling"
	"github.com/amirasaad/econbot/pkg/service/ledger"
	"github.com/amirasaad/econbot/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand always returns v.
type fixedRand int

func (r fixedRand) IntN(int) int { return int(r) }

var player = wallet.User{ID: 7, Name: "player"}

func setup(t *testing.T, rng gambling.Rand) (*gambling.Service, *ledger.Service) {
	t.Helper()
	uow := testutils.NewTestUoW(t)
	testutils.CreateCurrency(t, uow, testutils.GameCoins())
	catalog := currency.New(uow, nil, 0, testutils.DiscardLogger())
	wallets := ledger.New(uow, testutils.DiscardLogger())

	amt, err := catalog.ParseAmount(context.Background(), "10 GC")
	require.NoError(t, err)
	_, err = wallets.Deposit(context.Background(), player.ID, amt, "")
	require.NoError(t, err)
	return gambling.New(catalog, wallets, rng, testutils.DiscardLogger()), wallets
}

func TestCoinFlip(t *testing.T) {
	ctx := context.Background()

	svc, _ := setup(t, fixedRand(0))
	out, err := svc.CoinFlip(ctx, player, "2 GC", "Heads")
	require.NoError(t, err)
	assert.True(t, out.Won)
	assert.Equal(t, gambling.Heads, out.Rolled)
	assert.Equal(t, "12.00", out.Balance.Balance.StringFixed(2))

	out, err = svc.CoinFlip(ctx, player, "5 dime", "tails")
	require.NoError(t, err)
	assert.False(t, out.Won)
	assert.Equal(t, "11.50", out.Balance.Balance.StringFixed(2))

	_, err = svc.CoinFlip(ctx, player, "1 GC", "edge")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.CoinFlip(ctx, player, "100 GC", "heads")
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	_, err = svc.CoinFlip(ctx, player, "1 XYZ", "heads")
	assert.ErrorIs(t, err, domain.ErrNoMatchingCurrency)
}

func TestGuessNumber(t *testing.T) {
	ctx := context.Background()
	svc, wallets := setup(t, fixedRand(4))

	out, err := svc.GuessNumber(ctx, player, "1 GC", 5)
	require.NoError(t, err)
	assert.True(t, out.Won)
	assert.Equal(t, "5", out.Rolled)

	out, err = svc.GuessNumber(ctx, player, "3 GC", 1)
	require.NoError(t, err)
	assert.False(t, out.Won)
	assert.Equal(t, "8.00", out.Balance.Balance.StringFixed(2))

	for _, guess := range []int{0, 10} {
		_, err = svc.GuessNumber(ctx, player, "1 GC", guess)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}

	txs, err := wallets.Transactions(ctx, player.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 3)
}
