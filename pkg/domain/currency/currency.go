// Package currency holds the virtual currency model: currencies, their
// denominations, parsed amount tokens and resolved amounts.
package currency

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Denomination is a named shorthand unit of a currency, e.g. "dime" = 0.10.
type Denomination struct {
	Name  string
	Value decimal.Decimal
}

// Currency is a user-defined virtual currency.
type Currency struct {
	ID            uuid.UUID
	Name          string
	Symbol        string
	Description   *string
	Denominations []Denomination
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// New builds a Currency from a validated Spec.
func New(spec Spec) *Currency {
	c := &Currency{
		ID:     uuid.New(),
		Name:   spec.Name,
		Symbol: spec.Symbol,
	}
	c.Apply(spec)
	return c
}

// Apply replaces name, symbol, description and the whole denomination set.
func (c *Currency) Apply(spec Spec) {
	c.Name = spec.Name
	c.Symbol = spec.Symbol
	c.Description = nil
	if spec.Description != "" {
		d := spec.Description
		c.Description = &d
	}
	c.Denominations = make([]Denomination, 0, len(spec.Denominations))
	for _, d := range spec.Denominations {
		c.Denominations = append(c.Denominations, Denomination{Name: d.Name, Value: d.Value})
	}
}

// Denomination returns the denomination with the given name.
func (c *Currency) Denomination(name string) (Denomination, bool) {
	for _, d := range c.Denominations {
		if d.Name == name {
			return d, true
		}
	}
	return Denomination{}, false
}

// Units returns the symbol followed by every denomination name.
func (c *Currency) Units() []string {
	units := make([]string, 0, len(c.Denominations)+1)
	units = append(units, c.Symbol)
	for _, d := range c.Denominations {
		units = append(units, d.Name)
	}
	return units
}

// String implements fmt.Stringer.
func (c *Currency) String() string {
	return c.Name + " (" + c.Symbol + ")"
}

// DenominationSpec is one `<name> <value>` pair of a currency spec.
type DenominationSpec struct {
	Name  string          `validate:"required,alpha"`
	Value decimal.Decimal `validate:"-"`
}

// Spec is the parsed form of the currency spec mini-language.
type Spec struct {
	Name          string             `validate:"required,alpha,max=64"`
	Symbol        string             `validate:"required,alpha,min=1,max=3"`
	Description   string             `validate:"max=512"`
	Denominations []DenominationSpec `validate:"dive"`
}
