package policy

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/amirasaad/econbot/pkg/domain"
)

// DefaultSource is the policy used when no policy file is configured.
//
//go:embed default.rew
var DefaultSource string

var parser = participle.MustBuild[Policy](
	participle.Lexer(policyLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
)

// Parse parses a policy document. Syntax errors wrap domain.ErrParse and
// carry the line and column of the offending token.
func Parse(src string) (*Policy, error) {
	p, err := parser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("%w: policy: %v", domain.ErrParse, err)
	}
	return p, nil
}

// ParseFile reads and parses the policy document at path.
func ParseFile(path string) (*Policy, string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read policy %s: %w", path, err)
	}
	src := string(b)
	p, err := Parse(src)
	if err != nil {
		return nil, "", err
	}
	return p, src, nil
}
