package parser

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/amirasaad/econbot/pkg/domain/currency"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// SpecHelp describes the currency spec syntax for command help.
const SpecHelp = `[currency] <name> <symbol>
[description "Description in quotes."]
[denominations: <name> <value>, ...]

Sections are separated by semicolons or newlines. Names and symbols are
letters only, symbols are at most 3 characters.

currency HelpCoins HC; description "Get HelpCoins for answering questions.";
USDollar USD; denominations grand 1000, dime 0.10, penny 0.01;`

type specDoc struct {
	Name          string       `"currency"? @Ident`
	Symbol        string       `@Ident ";"?`
	Description   *string      `( "description" @String ";"? )?`
	Denominations []*denomItem `( "denominations" ":"? @@ ( "," @@ )* ";"? )?`
}

type denomItem struct {
	Name  string `@Ident`
	Value string `@Number`
}

var specParser = participle.MustBuild[specDoc](
	participle.Lexer(textLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
	participle.CaseInsensitive("Ident"),
)

var validate = validator.New()

// ParseSpec parses and validates a currency spec.
func ParseSpec(text string) (currency.Spec, error) {
	doc, err := specParser.ParseString("", text)
	if err != nil {
		return currency.Spec{}, parseError("currency spec", err)
	}
	spec := currency.Spec{Name: doc.Name, Symbol: doc.Symbol}
	if doc.Description != nil {
		spec.Description = *doc.Description
	}
	seen := make(map[string]struct{}, len(doc.Denominations))
	for _, d := range doc.Denominations {
		if _, dup := seen[d.Name]; dup {
			return currency.Spec{}, fmt.Errorf("%w: denomination %q defined twice", domain.ErrParse, d.Name)
		}
		seen[d.Name] = struct{}{}
		v, err := decimal.NewFromString(d.Value)
		if err != nil {
			return currency.Spec{}, fmt.Errorf("%w: denomination %q: %v", domain.ErrParse, d.Name, err)
		}
		spec.Denominations = append(spec.Denominations, currency.DenominationSpec{Name: d.Name, Value: v})
	}
	if err := ValidateSpec(spec); err != nil {
		return currency.Spec{}, err
	}
	return spec, nil
}

// ValidateSpec checks the field constraints of a spec built by hand or parsed.
func ValidateSpec(spec currency.Spec) error {
	if err := validate.Struct(spec); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	for _, d := range spec.Denominations {
		if !d.Value.IsPositive() {
			return fmt.Errorf("%w: denomination %q must have a positive value", domain.ErrValidation, d.Name)
		}
		if d.Name == spec.Symbol {
			return fmt.Errorf("%w: denomination %q shadows the currency symbol", domain.ErrValidation, d.Name)
		}
	}
	return nil
}
