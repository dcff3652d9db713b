package currency

import (
	"fmt"

	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/shopspring/decimal"
)

// AmountToken is one `<decimal> <unit>` pair parsed from free text.
// IsDenomination is a parse-time hint: units longer than a symbol can be are
// treated as denomination names.
type AmountToken struct {
	Amount         string
	Unit           string
	IsDenomination bool
}

// Amount is a resolved quantity of one specific currency.
type Amount struct {
	Value    decimal.Decimal
	Symbol   string
	Currency *Currency
}

// NewAmount returns an Amount of c.
func NewAmount(value decimal.Decimal, c *Currency) *Amount {
	return &Amount{Value: value, Symbol: c.Symbol, Currency: c}
}

// Neg returns the same amount with the sign flipped.
func (a *Amount) Neg() *Amount {
	return &Amount{Value: a.Value.Neg(), Symbol: a.Symbol, Currency: a.Currency}
}

// String implements fmt.Stringer.
func (a *Amount) String() string {
	return a.Value.StringFixed(2) + " " + a.Symbol
}

// Units returns the units referenced by tokens, in order, without duplicates.
func Units(tokens []AmountToken) []string {
	seen := make(map[string]struct{}, len(tokens))
	units := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t.Unit]; ok {
			continue
		}
		seen[t.Unit] = struct{}{}
		units = append(units, t.Unit)
	}
	return units
}

// Resolve sums tokens into a single Amount of c. A token whose unit is the
// currency symbol contributes its amount as is; a denomination token
// contributes amount times the denomination value.
func Resolve(tokens []AmountToken, c *Currency) (*Amount, error) {
	if c == nil {
		return nil, domain.ErrNoMatchingCurrency
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty amount", domain.ErrParse)
	}
	total := decimal.Zero
	for _, t := range tokens {
		v, err := decimal.NewFromString(t.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid amount %q", domain.ErrParse, t.Amount)
		}
		if t.Unit == c.Symbol {
			total = total.Add(v)
			continue
		}
		d, ok := c.Denomination(t.Unit)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a unit of %s", domain.ErrNoMatchingCurrency, t.Unit, c.Symbol)
		}
		total = total.Add(v.Mul(d.Value))
	}
	return NewAmount(total, c), nil
}
