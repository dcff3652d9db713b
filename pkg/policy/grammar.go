// Package policy defines the rewards policy language: the grammar, the parsed
// document model and the embedded default policy. A document is a list of
// rules, each bound to one platform event:
//
//	# thank people who thank others
//	rule Thanks {
//	    on message.send
//	    if {
//	        content *= "thanks" and not author__bot == true;
//	        content ~= "ty";
//	    }
//	    reward message__author gets 5 GC;
//	}
//
// Statements inside an if block are OR-ed. Inside a statement, and/or chains
// are evaluated strictly left to right.
package policy

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Operator is a condition operator in its symbolic form.
type Operator string

const (
	OpContains     Operator = "*="
	OpContainsWord Operator = "~="
	OpStartsWith   Operator = "^="
	OpEndsWith     Operator = "$="
	OpIEquals      Operator = "|="
	OpEquals       Operator = "=="
	OpNotEquals    Operator = "!="
)

var operatorAliases = map[string]Operator{
	"contains":      OpContains,
	"contains_word": OpContainsWord,
	"starts_with":   OpStartsWith,
	"ends_with":     OpEndsWith,
	"iequals":       OpIEquals,
	"equals":        OpEquals,
	"not_equals":    OpNotEquals,
}

// CaseFolding reports whether op compares lower-cased string forms.
func (op Operator) CaseFolding() bool {
	switch op {
	case OpContains, OpContainsWord, OpStartsWith, OpEndsWith, OpIEquals:
		return true
	}
	return false
}

var policyLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Operator", Pattern: `\*=|~=|\^=|\$=|\|=|==|!=`},
	{Name: "Punct", Pattern: `[.:;{},]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// Policy is a parsed policy document.
type Policy struct {
	Rules []*Rule `@@*`
}

// Rule binds conditions and rewards to one event. A rule without conditions
// always matches.
type Rule struct {
	Pos lexer.Position

	Name       string       `"rule" @Ident "{"`
	Event      *Event       `"on" @@`
	Conditions []*Statement `( "if" "{" ( @@ ";" )+ "}" )?`
	Rewards    []*Reward    `@@+ "}"`
}

// Event names a platform event as category.kind, e.g. message.send.
type Event struct {
	Pos lexer.Position

	Category string `@Ident "."`
	Kind     string `@Ident`
}

func (e *Event) String() string { return e.Category + "." + e.Kind }

// Statement is an and/or chain of expressions.
type Statement struct {
	First *Expression `@@`
	Rest  []*Chained  `@@*`
}

// Chained is one `and <expr>` or `or <expr>` link of a statement.
type Chained struct {
	Op   string      `@( "and" | "or" )`
	Expr *Expression `@@`
}

// Expression is `[not] <operand> <operator> <operand>`.
type Expression struct {
	Pos lexer.Position

	Not bool     `@"not"?`
	LHS *Operand `@@`
	Op  string   `@( Operator | "contains_word" | "contains" | "starts_with" | "ends_with" | "iequals" | "equals" | "not_equals" )`
	RHS *Operand `@@`
}

// Operator returns the symbolic form of the expression's operator.
func (e *Expression) Operator() Operator {
	if op, ok := operatorAliases[e.Op]; ok {
		return op
	}
	return Operator(e.Op)
}

func (e *Expression) String() string {
	var sb strings.Builder
	if e.Not {
		sb.WriteString("not ")
	}
	sb.WriteString(e.LHS.String())
	sb.WriteString(" ")
	sb.WriteString(string(e.Operator()))
	sb.WriteString(" ")
	sb.WriteString(e.RHS.String())
	return sb.String()
}

// Boolean captures the true and false keywords.
type Boolean bool

func (b *Boolean) Capture(values []string) error {
	*b = values[0] == "true"
	return nil
}

// Operand is a literal or an attribute path such as message__author__id.
type Operand struct {
	Str    *string  `  @String`
	Num    *string  `| @Number`
	Bool   *Boolean `| @( "true" | "false" )`
	Attr   *string  `| @Ident`
}

// AttrSeparator separates the segments of an attribute path.
const AttrSeparator = "__"

// Path returns the segments of an attribute operand, or nil for literals.
func (o *Operand) Path() []string {
	if o.Attr == nil {
		return nil
	}
	return strings.Split(*o.Attr, AttrSeparator)
}

func (o *Operand) String() string {
	switch {
	case o.Str != nil:
		return strconv.Quote(*o.Str)
	case o.Num != nil:
		return *o.Num
	case o.Bool != nil:
		if *o.Bool {
			return "true"
		}
		return "false"
	case o.Attr != nil:
		return *o.Attr
	}
	return ""
}

// Reward grants an amount to the user found at Target.
type Reward struct {
	Pos lexer.Position

	Target  string    `"reward" @Ident "gets"`
	Amounts []*Amount `@@ ( "," @@ )* ";"`
}

// AmountText returns the reward amount in amount-parser syntax.
func (r *Reward) AmountText() string {
	parts := make([]string, 0, len(r.Amounts))
	for _, a := range r.Amounts {
		parts = append(parts, a.Value+" "+a.Unit)
	}
	return strings.Join(parts, ", ")
}

// Amount is one `<number> <unit>` pair of a reward.
type Amount struct {
	Value string `@Number`
	Unit  string `@Ident`
}
