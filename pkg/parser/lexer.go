// Package parser implements the two small grammars users type by hand: amount
// expressions ("2GC, 1 dime") and currency specs
// (`currency HelpCoins HC; description "..."; denominations dime 0.10`).
package parser

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/amirasaad/econbot/pkg/domain"
)

// maxSymbolLen is the longest unit still read as a currency symbol.
const maxSymbolLen = 3

var textLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `\d*\.?\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z]+`},
	{Name: "Punct", Pattern: `[,;:]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

func parseError(what string, err error) error {
	return fmt.Errorf("%w: could not parse %s: %v", domain.ErrParse, what, err)
}
