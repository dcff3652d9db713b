package parser

import (
	"testing"

	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpec(t *testing.T) {
	t.Parallel()

	spec, err := ParseSpec(`currency HelpCoins HC; description "Get HelpCoins for answering questions.";`)
	require.NoError(t, err)
	assert.Equal(t, "HelpCoins", spec.Name)
	assert.Equal(t, "HC", spec.Symbol)
	assert.Equal(t, "Get HelpCoins for answering questions.", spec.Description)
	assert.Empty(t, spec.Denominations)
}

func TestParseSpec_WithoutKeyword(t *testing.T) {
	t.Parallel()

	spec, err := ParseSpec("Bitcoin BTC")
	require.NoError(t, err)
	assert.Equal(t, currency.Spec{Name: "Bitcoin", Symbol: "BTC"}, spec)
}

func TestParseSpec_Denominations(t *testing.T) {
	t.Parallel()

	spec, err := ParseSpec("USDollar USD\ndenominations: grand 1000, dime 0.10, penny 0.01")
	require.NoError(t, err)
	assert.Equal(t, "USDollar", spec.Name)
	assert.Equal(t, "USD", spec.Symbol)
	require.Len(t, spec.Denominations, 3)

	want := map[string]string{"grand": "1000", "dime": "0.1", "penny": "0.01"}
	for _, d := range spec.Denominations {
		v, ok := want[d.Name]
		require.True(t, ok, d.Name)
		assert.True(t, decimal.RequireFromString(v).Equal(d.Value), d.Name)
	}
}

func TestParseSpec_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want error
	}{
		{"missing name and symbol", "currency", domain.ErrParse},
		{"value before name", "Coins CC; denominations 10 dime", domain.ErrParse},
		{"unterminated description", `Coins CC; description "oops`, domain.ErrParse},
		{"duplicate denomination", "Coins CC; denominations dime 0.1, dime 0.2", domain.ErrParse},
		{"symbol too long", "Coins COIN", domain.ErrValidation},
		{"zero denomination", "Coins CC; denominations dime 0", domain.ErrValidation},
		{"denomination shadows symbol", "Coins CC; denominations CC 2", domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseSpec(tt.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
