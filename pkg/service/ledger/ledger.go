// Package ledger provides the wallet service. Every operation runs in one
// unit of work so a balance change and its audit rows commit together.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/amirasaad/econbot/pkg/domain/wallet"
	"github.com/amirasaad/econbot/pkg/repository"
)

// GamblingNotePrefix tags transaction notes written by
// CompleteGamblingTransaction.
const GamblingNotePrefix = "gambling: "

// Service provides wallet operations over a UnitOfWork.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a ledger Service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		uow:    uow,
		logger: logger.With("service", "Ledger"),
	}
}

// GetOrCreateWallet returns the user's wallet, creating the user record and
// the wallet when absent. Balances are reconciled on every call so the
// wallet holds a row for every existing currency.
func (s *Service) GetOrCreateWallet(ctx context.Context, user wallet.User) (w *wallet.Wallet, created bool, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		w, created, err = getOrCreateWallet(ctx, uow, user)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.Info("wallet created", "user_id", user.ID, "balances", len(w.Balances))
	}
	return w, created, nil
}

// Wallet returns the user's wallet without creating it. It fails with
// domain.ErrNotFound when the user has none.
func (s *Service) Wallet(ctx context.Context, userID int64) (*wallet.Wallet, error) {
	repo, err := s.uow.WalletRepository()
	if err != nil {
		return nil, err
	}
	w, err := repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("wallet of user %d: %w", userID, domain.ErrNotFound)
	}
	return w, nil
}

// UpdateBalance adds the signed amount to the user's balance and appends a
// transaction log row. A change that would leave the balance negative fails
// with domain.ErrInsufficientBalance and changes nothing.
func (s *Service) UpdateBalance(
	ctx context.Context,
	userID int64,
	amount *currency.Amount,
	note string,
	txType wallet.TransactionType,
) (b *wallet.Balance, err error) {
	if err = checkAmount(amount, false); err != nil {
		return nil, err
	}
	if !txType.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", domain.ErrValidation, txType)
	}
	logger := s.logger.With("user_id", userID, "amount", amount.String(), "type", txType)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if _, _, err := getOrCreateWallet(ctx, uow, wallet.User{ID: userID}); err != nil {
			return err
		}
		b, err = updateBalance(ctx, uow, userID, amount, note, txType)
		return err
	})
	if err != nil {
		logger.Warn("balance update failed", "error", err)
		return nil, err
	}
	logger.Debug("balance updated", "balance", b.Balance.StringFixed(2))
	return b, nil
}

// Deposit credits a positive amount.
func (s *Service) Deposit(ctx context.Context, userID int64, amount *currency.Amount, note string) (*wallet.Balance, error) {
	if err := checkAmount(amount, true); err != nil {
		return nil, err
	}
	return s.UpdateBalance(ctx, userID, amount, note, wallet.TransactionTypeDeposit)
}

// Withdraw debits a positive amount.
func (s *Service) Withdraw(ctx context.Context, userID int64, amount *currency.Amount, note string) (*wallet.Balance, error) {
	if err := checkAmount(amount, true); err != nil {
		return nil, err
	}
	return s.UpdateBalance(ctx, userID, amount.Neg(), note, wallet.TransactionTypeWithdrawal)
}

// MakePayment moves a positive amount from sender to receiver. One payment
// row is logged from the sender's side: negative amount, receiver as the
// related user.
func (s *Service) MakePayment(
	ctx context.Context,
	sender, receiver wallet.User,
	amount *currency.Amount,
	note string,
) (t *wallet.Transaction, err error) {
	if err = checkAmount(amount, true); err != nil {
		return nil, err
	}
	if sender.ID == receiver.ID {
		return nil, fmt.Errorf("%w: cannot pay yourself", domain.ErrValidation)
	}
	logger := s.logger.With("sender", sender.ID, "receiver", receiver.ID, "amount", amount.String())

	// Both sides are touched in ascending user id order so that opposite
	// payments running concurrently take their row locks in the same order.
	legs := [2]struct {
		user  wallet.User
		delta *currency.Amount
	}{{sender, amount.Neg()}, {receiver, amount}}
	if receiver.ID < sender.ID {
		legs[0], legs[1] = legs[1], legs[0]
	}

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var ws [2]*wallet.Wallet
		for i, leg := range legs {
			w, _, err := getOrCreateWallet(ctx, uow, leg.user)
			if err != nil {
				return err
			}
			ws[i] = w
		}
		wallets, err := uow.WalletRepository()
		if err != nil {
			return err
		}
		for i, leg := range legs {
			if _, err := applyDelta(ctx, wallets, ws[i], leg.delta); err != nil {
				return err
			}
		}
		txs, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		t = wallet.NewTransaction(sender.ID, amount.Neg(), wallet.TransactionTypePayment, note)
		rid := receiver.ID
		t.RelatedUserID = &rid
		return txs.Create(ctx, t)
	})
	if err != nil {
		logger.Warn("payment failed", "error", err)
		return nil, err
	}
	logger.Info("payment completed", "transaction_id", t.ID)
	return t, nil
}

// HasBalance reports whether the user holds at least amount.
func (s *Service) HasBalance(ctx context.Context, userID int64, amount *currency.Amount) (ok bool, err error) {
	if err = checkAmount(amount, false); err != nil {
		return false, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		w, _, err := getOrCreateWallet(ctx, uow, wallet.User{ID: userID})
		if err != nil {
			return err
		}
		b, found := w.BalanceOf(amount.Currency.ID)
		if !found {
			return fmt.Errorf("%w: %s", domain.ErrNoMatchingCurrency, amount.Symbol)
		}
		ok = b.Balance.GreaterThanOrEqual(amount.Value.Abs())
		return nil
	})
	return ok, err
}

// CompleteGamblingTransaction settles a wager: the user must hold the wager,
// which is then deposited when won and withdrawn when lost.
func (s *Service) CompleteGamblingTransaction(
	ctx context.Context,
	userID int64,
	wager *currency.Amount,
	won bool,
	note string,
) (b *wallet.Balance, err error) {
	if err = checkAmount(wager, true); err != nil {
		return nil, err
	}
	delta, txType := wager, wallet.TransactionTypeDeposit
	if !won {
		delta, txType = wager.Neg(), wallet.TransactionTypeWithdrawal
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		w, _, err := getOrCreateWallet(ctx, uow, wallet.User{ID: userID})
		if err != nil {
			return err
		}
		held, found := w.BalanceOf(wager.Currency.ID)
		if !found {
			return fmt.Errorf("%w: %s", domain.ErrNoMatchingCurrency, wager.Symbol)
		}
		if held.Balance.LessThan(wager.Value) {
			return fmt.Errorf("%w: wager %s exceeds balance %s", domain.ErrInsufficientBalance, wager, held.Balance.StringFixed(2))
		}
		b, err = updateBalance(ctx, uow, userID, delta, GamblingNotePrefix+note, txType)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("wager settled", "user_id", userID, "wager", wager.String(), "won", won)
	return b, nil
}

// GrantReward credits a reward and logs it. A grant whose rule and event key
// were already recorded fails with domain.ErrAlreadyExists.
func (s *Service) GrantReward(ctx context.Context, g wallet.RewardGrant) (b *wallet.Balance, err error) {
	if err = checkAmount(g.Amount, true); err != nil {
		return nil, err
	}
	if g.Rule == "" {
		return nil, fmt.Errorf("%w: reward without rule", domain.ErrValidation)
	}
	logger := s.logger.With("rule", g.Rule, "user_id", g.User.ID, "amount", g.Amount.String(), "event_key", g.EventKey)

	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		logs, err := uow.RewardLogRepository()
		if err != nil {
			return err
		}
		if g.EventKey != "" {
			seen, err := logs.Exists(ctx, g.Rule, g.EventKey)
			if err != nil {
				return err
			}
			if seen {
				return fmt.Errorf("reward %s for %s: %w", g.Rule, g.EventKey, domain.ErrAlreadyExists)
			}
		}
		if _, _, err := getOrCreateWallet(ctx, uow, g.User); err != nil {
			return err
		}
		if b, err = updateBalance(ctx, uow, g.User.ID, g.Amount, g.Note, wallet.TransactionTypeDeposit); err != nil {
			return err
		}
		return logs.Create(ctx, g.Log())
	})
	if err != nil {
		return nil, err
	}
	logger.Info("reward granted", "balance", b.Balance.StringFixed(2))
	return b, nil
}

// Transactions returns the user's transaction log, newest first.
func (s *Service) Transactions(ctx context.Context, userID int64) ([]*wallet.Transaction, error) {
	repo, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListByUser(ctx, userID)
}

// RewardLogs returns the rewards granted to the user, newest first.
func (s *Service) RewardLogs(ctx context.Context, userID int64) ([]*wallet.RewardLog, error) {
	repo, err := s.uow.RewardLogRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListByUser(ctx, userID)
}
