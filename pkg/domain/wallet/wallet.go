// Package wallet holds per-user wallets, their currency balances and the
// append-only audit records written by every balance mutation.
package wallet

import (
	"time"

	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is the platform user owning a wallet.
type User struct {
	ID   int64
	Name string
}

// Balance is the amount of one currency held in one wallet.
type Balance struct {
	ID         uuid.UUID
	WalletID   uuid.UUID
	CurrencyID uuid.UUID
	Currency   *currency.Currency
	Balance    decimal.Decimal
	UpdatedAt  time.Time
}

// Wallet is a per-user container of currency balances.
type Wallet struct {
	ID        uuid.UUID
	UserID    int64
	Balances  []*Balance
	CreatedAt time.Time
}

// New returns an empty wallet for userID.
func New(userID int64) *Wallet {
	return &Wallet{ID: uuid.New(), UserID: userID, CreatedAt: time.Now().UTC()}
}

// BalanceOf returns the balance row for the given currency id.
func (w *Wallet) BalanceOf(currencyID uuid.UUID) (*Balance, bool) {
	for _, b := range w.Balances {
		if b.CurrencyID == currencyID {
			return b, true
		}
	}
	return nil, false
}

// Missing returns the currencies that have no balance row in w.
func (w *Wallet) Missing(all []*currency.Currency) []*currency.Currency {
	have := make(map[uuid.UUID]struct{}, len(w.Balances))
	for _, b := range w.Balances {
		have[b.CurrencyID] = struct{}{}
	}
	var missing []*currency.Currency
	for _, c := range all {
		if _, ok := have[c.ID]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// NewBalance returns a zero balance of c for w.
func (w *Wallet) NewBalance(c *currency.Currency) *Balance {
	return &Balance{
		ID:         uuid.New(),
		WalletID:   w.ID,
		CurrencyID: c.ID,
		Currency:   c,
		Balance:    decimal.Zero,
	}
}
