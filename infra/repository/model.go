package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is a platform user known to the economy.
type User struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"size:100"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "user" }

// Currency represents a currency record in the database.
type Currency struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name          string         `gorm:"size:64;not null"`
	Symbol        string         `gorm:"size:3;not null;uniqueIndex"`
	Description   *string        `gorm:"size:512"`
	Denominations []Denomination `gorm:"foreignKey:CurrencyID"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Currency) TableName() string { return "currency" }

// Denomination is a named unit of a currency.
type Denomination struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CurrencyID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_denomination_currency_name"`
	Name       string          `gorm:"size:64;not null;uniqueIndex:idx_denomination_currency_name"`
	Value      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (Denomination) TableName() string { return "currency_denomination" }

// Wallet is the per-user container of balances.
type Wallet struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    int64     `gorm:"not null;uniqueIndex"`
	Balances  []Balance `gorm:"foreignKey:WalletID"`
	CreatedAt time.Time
}

func (Wallet) TableName() string { return "wallet" }

// Balance is the amount of one currency in one wallet.
type Balance struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	WalletID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_wallet_currency"`
	CurrencyID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_wallet_currency"`
	Currency   *Currency       `gorm:"foreignKey:CurrencyID"`
	Balance    decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	UpdatedAt  time.Time
}

func (Balance) TableName() string { return "wallet_currency" }

// Transaction is one row of the append-only transaction log.
type Transaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID          int64           `gorm:"not null;index"`
	RelatedUserID   *int64          `gorm:"index"`
	CurrencyID      uuid.UUID       `gorm:"type:uuid;not null"`
	Amount          decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	TransactionType string          `gorm:"size:16;not null"`
	Note            string          `gorm:"size:255"`
	CreatedAt       time.Time       `gorm:"index"`
}

func (Transaction) TableName() string { return "transaction" }

// RewardLog is one row of the append-only reward log. The (rule, event_key)
// pair is unique so a replayed event cannot be rewarded twice.
type RewardLog struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID     int64           `gorm:"not null;index"`
	CurrencyID uuid.UUID       `gorm:"type:uuid;not null"`
	Amount     decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Rule       string          `gorm:"size:64;not null;uniqueIndex:idx_reward_rule_event"`
	EventKey   *string         `gorm:"size:128;uniqueIndex:idx_reward_rule_event"`
	Note       string          `gorm:"size:255"`
	CreatedAt  time.Time
}

func (RewardLog) TableName() string { return "reward_log" }

// ExchangeRate is a snapshot of a currency's rate to the base currency.
type ExchangeRate struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ExchangedCurrencyID uuid.UUID       `gorm:"type:uuid;not null;index"`
	AmountExchanged     decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	ExchangeRate        decimal.Decimal `gorm:"type:numeric(20,5);not null"`
	Bought              bool
	CreatedAt           time.Time `gorm:"index"`
}

func (ExchangeRate) TableName() string { return "currency_exchange_rate" }

// Models lists every model for schema migration.
func Models() []any {
	return []any{
		&User{}, &Currency{}, &Denomination{}, &Wallet{}, &Balance{},
		&Transaction{}, &RewardLog{}, &ExchangeRate{},
	}
}
