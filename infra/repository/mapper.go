package repository

import (
	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/amirasaad/econbot/pkg/domain/wallet"
	"github.com/google/uuid"
)

func currencyFromDomain(c *currency.Currency) *Currency {
	row := &Currency{
		ID:          c.ID,
		Name:        c.Name,
		Symbol:      c.Symbol,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	row.Denominations = denominationsFromDomain(c.ID, c.Denominations)
	return row
}

func denominationsFromDomain(currencyID uuid.UUID, ds []currency.Denomination) []Denomination {
	rows := make([]Denomination, 0, len(ds))
	for _, d := range ds {
		rows = append(rows, Denomination{
			ID:         uuid.New(),
			CurrencyID: currencyID,
			Name:       d.Name,
			Value:      d.Value,
		})
	}
	return rows
}

func currencyToDomain(row *Currency) *currency.Currency {
	c := &currency.Currency{
		ID:            row.ID,
		Name:          row.Name,
		Symbol:        row.Symbol,
		Description:   row.Description,
		Denominations: make([]currency.Denomination, 0, len(row.Denominations)),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	for _, d := range row.Denominations {
		c.Denominations = append(c.Denominations, currency.Denomination{Name: d.Name, Value: d.Value})
	}
	return c
}

func balanceToDomain(row *Balance) *wallet.Balance {
	b := &wallet.Balance{
		ID:         row.ID,
		WalletID:   row.WalletID,
		CurrencyID: row.CurrencyID,
		Balance:    row.Balance,
		UpdatedAt:  row.UpdatedAt,
	}
	if row.Currency != nil {
		b.Currency = currencyToDomain(row.Currency)
	}
	return b
}

func walletToDomain(row *Wallet) *wallet.Wallet {
	w := &wallet.Wallet{
		ID:        row.ID,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt,
		Balances:  make([]*wallet.Balance, 0, len(row.Balances)),
	}
	for i := range row.Balances {
		w.Balances = append(w.Balances, balanceToDomain(&row.Balances[i]))
	}
	return w
}

func transactionToDomain(row *Transaction) *wallet.Transaction {
	return &wallet.Transaction{
		ID:            row.ID,
		UserID:        row.UserID,
		RelatedUserID: row.RelatedUserID,
		CurrencyID:    row.CurrencyID,
		Amount:        row.Amount,
		Type:          wallet.TransactionType(row.TransactionType),
		Note:          row.Note,
		CreatedAt:     row.CreatedAt,
	}
}

func rewardLogToDomain(row *RewardLog) *wallet.RewardLog {
	return &wallet.RewardLog{
		ID:         row.ID,
		UserID:     row.UserID,
		CurrencyID: row.CurrencyID,
		Amount:     row.Amount,
		Rule:       row.Rule,
		EventKey:   row.EventKey,
		Note:       row.Note,
		CreatedAt:  row.CreatedAt,
	}
}

func exchangeRateToDomain(row *ExchangeRate) *currency.ExchangeRate {
	return &currency.ExchangeRate{
		ID:                  row.ID,
		ExchangedCurrencyID: row.ExchangedCurrencyID,
		AmountExchanged:     row.AmountExchanged,
		Rate:                row.ExchangeRate,
		Bought:              row.Bought,
		CreatedAt:           row.CreatedAt,
	}
}
