package wallet

import (
	"time"

	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a TransactionLog row.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypePayment    TransactionType = "payment"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypePayment:
		return true
	}
	return false
}

// Transaction is an immutable record of one balance mutation. Payments are a
// single row from the sender's perspective: UserID is the sender,
// RelatedUserID the receiver and Amount is negative.
type Transaction struct {
	ID            uuid.UUID
	UserID        int64
	RelatedUserID *int64
	CurrencyID    uuid.UUID
	Amount        decimal.Decimal
	Type          TransactionType
	Note          string
	CreatedAt     time.Time
}

// NewTransaction returns a log row for a mutation of amount.
func NewTransaction(userID int64, amount *currency.Amount, txType TransactionType, note string) *Transaction {
	return &Transaction{
		ID:         uuid.New(),
		UserID:     userID,
		CurrencyID: amount.Currency.ID,
		Amount:     amount.Value,
		Type:       txType,
		Note:       note,
		CreatedAt:  time.Now().UTC(),
	}
}

// RewardLog is an immutable record of an automatic grant.
type RewardLog struct {
	ID         uuid.UUID
	UserID     int64
	CurrencyID uuid.UUID
	Amount     decimal.Decimal
	Rule       string
	EventKey   *string
	Note       string
	CreatedAt  time.Time
}

// RewardGrant asks the ledger to credit User with Amount on behalf of Rule.
// EventKey identifies the triggering event; a grant for the same rule and
// event key is applied at most once.
type RewardGrant struct {
	User     User
	Amount   *currency.Amount
	Rule     string
	EventKey string
	Note     string
}

// Log returns the RewardLog row recorded for g.
func (g RewardGrant) Log() *RewardLog {
	l := &RewardLog{
		ID:         uuid.New(),
		UserID:     g.User.ID,
		CurrencyID: g.Amount.Currency.ID,
		Amount:     g.Amount.Value,
		Rule:       g.Rule,
		Note:       g.Note,
		CreatedAt:  time.Now().UTC(),
	}
	if g.EventKey != "" {
		k := g.EventKey
		l.EventKey = &k
	}
	return l
}
