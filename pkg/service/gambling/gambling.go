// Package gambling implements the wager mini-games. Games only decide the
// outcome; settlement is the ledger's CompleteGamblingTransaction.
package gambling

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/amirasaad/econbot/pkg/domain/wallet"
)

// Coin sides accepted by CoinFlip.
const (
	Heads = "heads"
	Tails = "tails"
)

// Guess bounds of GuessNumber.
const (
	MinGuess = 1
	MaxGuess = 9
)

// Catalog resolves wager text to an amount.
type Catalog interface {
	ParseAmount(ctx context.Context, text string) (*currency.Amount, error)
}

// Ledger settles wagers.
type Ledger interface {
	GetOrCreateWallet(ctx context.Context, user wallet.User) (*wallet.Wallet, bool, error)
	CompleteGamblingTransaction(ctx context.Context, userID int64, wager *currency.Amount, won bool, note string) (*wallet.Balance, error)
}

// Rand is the randomness source; *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Outcome is the result of one game.
type Outcome struct {
	Wager   *currency.Amount
	Won     bool
	Rolled  string
	Balance *wallet.Balance
}

// Service runs the games.
type Service struct {
	catalog Catalog
	ledger  Ledger
	rng     Rand
	logger  *slog.Logger
}

// New creates a gambling Service. A nil rng uses the global source.
func New(catalog Catalog, ledger Ledger, rng Rand, logger *slog.Logger) *Service {
	if rng == nil {
		rng = globalRand{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{catalog: catalog, ledger: ledger, rng: rng, logger: logger.With("service", "Gambling")}
}

// CoinFlip wagers on call, which must be heads or tails.
func (s *Service) CoinFlip(ctx context.Context, user wallet.User, wagerText, call string) (*Outcome, error) {
	call = strings.ToLower(strings.TrimSpace(call))
	if call != Heads && call != Tails {
		return nil, fmt.Errorf("%w: call must be %s or %s", domain.ErrValidation, Heads, Tails)
	}
	side := Heads
	if s.rng.IntN(2) == 1 {
		side = Tails
	}
	return s.settle(ctx, user, wagerText, side == call, side, "coin flip")
}

// GuessNumber wagers on a number between MinGuess and MaxGuess.
func (s *Service) GuessNumber(ctx context.Context, user wallet.User, wagerText string, guess int) (*Outcome, error) {
	if guess < MinGuess || guess > MaxGuess {
		return nil, fmt.Errorf("%w: guess must be between %d and %d", domain.ErrValidation, MinGuess, MaxGuess)
	}
	n := MinGuess + s.rng.IntN(MaxGuess-MinGuess+1)
	return s.settle(ctx, user, wagerText, n == guess, fmt.Sprint(n), "guess number")
}

func (s *Service) settle(ctx context.Context, user wallet.User, wagerText string, won bool, rolled, game string) (*Outcome, error) {
	wager, err := s.catalog.ParseAmount(ctx, wagerText)
	if err != nil {
		return nil, err
	}
	if !wager.Value.IsPositive() {
		return nil, fmt.Errorf("%w: wager must be positive", domain.ErrValidation)
	}
	if _, _, err := s.ledger.GetOrCreateWallet(ctx, user); err != nil {
		return nil, err
	}
	b, err := s.ledger.CompleteGamblingTransaction(ctx, user.ID, wager, won, game)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("game played", "game", game, "user_id", user.ID, "rolled", rolled, "won", won)
	return &Outcome{Wager: wager, Won: won, Rolled: rolled, Balance: b}, nil
}
