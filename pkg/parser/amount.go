package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/amirasaad/econbot/pkg/domain/currency"
)

type amountList struct {
	Items []*amountItem `@@ ( "," @@ )*`
}

type amountItem struct {
	Amount string `@Number`
	Unit   string `@Ident`
}

var amountParser = participle.MustBuild[amountList](
	participle.Lexer(textLexer),
	participle.Elide("Whitespace"),
)

// ParseAmount splits text into amount tokens. Every unit must be preceded by
// its amount; anything outside `<decimal> <unit> [, <decimal> <unit>]...`
// is a domain.ErrParse.
func ParseAmount(text string) ([]currency.AmountToken, error) {
	list, err := amountParser.ParseString("", text)
	if err != nil {
		return nil, parseError("amount", err)
	}
	tokens := make([]currency.AmountToken, 0, len(list.Items))
	for _, item := range list.Items {
		tokens = append(tokens, currency.AmountToken{
			Amount:         item.Amount,
			Unit:           item.Unit,
			IsDenomination: len(item.Unit) > maxSymbolLen,
		})
	}
	return tokens, nil
}
