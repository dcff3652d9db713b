package ledger

import (
	"context"
	"fmt"

	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/amirasaad/econbot/pkg/domain/wallet"
	"github.com/amirasaad/econbot/pkg/repository"
)

// getOrCreateWallet must run inside uow.Do.
func getOrCreateWallet(ctx context.Context, uow repository.UnitOfWork, user wallet.User) (*wallet.Wallet, bool, error) {
	users, err := uow.UserRepository()
	if err != nil {
		return nil, false, err
	}
	wallets, err := uow.WalletRepository()
	if err != nil {
		return nil, false, err
	}
	currencies, err := uow.CurrencyRepository()
	if err != nil {
		return nil, false, err
	}

	if err := users.Upsert(ctx, user); err != nil {
		return nil, false, fmt.Errorf("upsert user %d: %w", user.ID, err)
	}
	w, err := wallets.FindByUser(ctx, user.ID)
	if err != nil {
		return nil, false, err
	}
	created := false
	if w == nil {
		w = wallet.New(user.ID)
		if err := wallets.Create(ctx, w); err != nil {
			return nil, false, fmt.Errorf("create wallet of user %d: %w", user.ID, err)
		}
		created = true
	}

	all, err := currencies.List(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, c := range w.Missing(all) {
		b := w.NewBalance(c)
		if err := wallets.CreateBalance(ctx, b); err != nil {
			return nil, false, fmt.Errorf("create %s balance of user %d: %w", c.Symbol, user.ID, err)
		}
		w.Balances = append(w.Balances, b)
	}
	return w, created, nil
}

// updateBalance must run inside uow.Do after the wallet was reconciled.
func updateBalance(
	ctx context.Context,
	uow repository.UnitOfWork,
	userID int64,
	amount *currency.Amount,
	note string,
	txType wallet.TransactionType,
) (*wallet.Balance, error) {
	wallets, err := uow.WalletRepository()
	if err != nil {
		return nil, err
	}
	txs, err := uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	w, err := wallets.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("wallet of user %d: %w", userID, domain.ErrNotFound)
	}
	b, err := applyDelta(ctx, wallets, w, amount)
	if err != nil {
		return nil, err
	}
	if err := txs.Create(ctx, wallet.NewTransaction(userID, amount, txType, note)); err != nil {
		return nil, err
	}
	return b, nil
}

// applyDelta locks the wallet's balance row for the amount's currency and
// adds the signed value to it.
func applyDelta(ctx context.Context, wallets repository.WalletRepository, w *wallet.Wallet, amount *currency.Amount) (*wallet.Balance, error) {
	if _, ok := w.BalanceOf(amount.Currency.ID); !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoMatchingCurrency, amount.Symbol)
	}
	b, err := wallets.LockBalance(ctx, w.ID, amount.Currency.ID)
	if err != nil {
		return nil, err
	}
	next := b.Balance.Add(amount.Value)
	if next.IsNegative() {
		return nil, fmt.Errorf("%w: balance %s, change %s", domain.ErrInsufficientBalance, b.Balance.StringFixed(2), amount)
	}
	b.Balance = next
	b.Currency = amount.Currency
	if err := wallets.SaveBalance(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// checkAmount rejects nil, currency-less and zero amounts. positive also
// rejects negative ones.
func checkAmount(a *currency.Amount, positive bool) error {
	switch {
	case a == nil || a.Currency == nil:
		return fmt.Errorf("%w: amount has no currency", domain.ErrValidation)
	case a.Value.IsZero():
		return fmt.Errorf("%w: amount must not be zero", domain.ErrValidation)
	case positive && a.Value.IsNegative():
		return fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	return nil
}
