package rewards

import (
	"strconv"
	"strings"

	"github.com/amirasaad/econbot/pkg/domain/platform"
	"github.com/amirasaad/econbot/pkg/policy"
	"github.com/shopspring/decimal"
)

// Matches reports whether the rule's conditions hold for c. A rule without
// conditions always matches; otherwise at least one statement must hold.
func (r *Rule) Matches(c *EventContext) bool {
	if len(r.Conditions) == 0 {
		return true
	}
	for _, stmt := range r.Conditions {
		if EvalStatement(stmt, c) {
			return true
		}
	}
	return false
}

// EvalStatement evaluates an and/or chain strictly left to right, without
// precedence: `a or b and c` is `(a or b) and c`.
func EvalStatement(stmt *policy.Statement, c *EventContext) bool {
	truth := EvalExpression(stmt.First, c)
	for _, link := range stmt.Rest {
		if link.Op == "and" {
			truth = truth && EvalExpression(link.Expr, c)
		} else {
			truth = truth || EvalExpression(link.Expr, c)
		}
	}
	return truth
}

// EvalExpression evaluates `[not] lhs op rhs`. If either side does not
// resolve the expression is false, negated or not.
func EvalExpression(expr *policy.Expression, c *EventContext) bool {
	lhs, ok := operand(expr.LHS, c)
	if !ok {
		return false
	}
	rhs, ok := operand(expr.RHS, c)
	if !ok {
		return false
	}

	op := expr.Operator()
	var truth bool
	if op.CaseFolding() {
		l := strings.ToLower(stringify(lhs))
		r := strings.ToLower(stringify(rhs))
		switch op {
		case policy.OpContains:
			truth = strings.Contains(l, r)
		case policy.OpContainsWord:
			for _, w := range strings.Fields(l) {
				if w == r {
					truth = true
					break
				}
			}
		case policy.OpStartsWith:
			truth = strings.HasPrefix(l, r)
		case policy.OpEndsWith:
			truth = strings.HasSuffix(l, r)
		case policy.OpIEquals:
			truth = l == r
		}
	} else {
		switch op {
		case policy.OpEquals:
			truth = equal(lhs, rhs)
		case policy.OpNotEquals:
			truth = !equal(lhs, rhs)
		}
	}

	if expr.Not {
		return !truth
	}
	return truth
}

func operand(o *policy.Operand, c *EventContext) (any, bool) {
	switch {
	case o.Str != nil:
		return *o.Str, true
	case o.Num != nil:
		d, err := decimal.NewFromString(*o.Num)
		if err != nil {
			return nil, false
		}
		return d, true
	case o.Bool != nil:
		return bool(*o.Bool), true
	case o.Attr != nil:
		v, ok := c.Resolve(o.Path())
		if !ok {
			return nil, false
		}
		if n, isInt := v.(int64); isInt {
			return decimal.NewFromInt(n), true
		}
		return v, true
	}
	return nil, false
}

// stringify is the text form used by the string operators.
func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case decimal.Decimal:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case *platform.User:
		return x.Name
	case *platform.Channel:
		return x.Name
	case *platform.Message:
		return x.Content
	case *platform.Reaction:
		return x.Emoji
	case *platform.Reference:
		return strconv.FormatInt(x.MessageID, 10)
	}
	return ""
}

// identity returns the kind and id of objects compared by id.
func identity(v any) (string, int64, bool) {
	switch x := v.(type) {
	case *platform.User:
		return "user", x.ID, true
	case *platform.Channel:
		return "channel", x.ID, true
	case *platform.Message:
		return "message", x.ID, true
	case *platform.Reference:
		return "message", x.MessageID, true
	}
	return "", 0, false
}

// equal compares raw values: numbers numerically, platform objects by id
// (or against a bare number as their id), reactions by emoji and everything
// else only against a value of the same type.
func equal(a, b any) bool {
	ka, ida, aIsObj := identity(a)
	kb, idb, bIsObj := identity(b)
	switch {
	case aIsObj && bIsObj:
		return ka == kb && ida == idb
	case aIsObj:
		d, ok := b.(decimal.Decimal)
		return ok && d.Equal(decimal.NewFromInt(ida))
	case bIsObj:
		d, ok := a.(decimal.Decimal)
		return ok && d.Equal(decimal.NewFromInt(idb))
	}

	switch x := a.(type) {
	case decimal.Decimal:
		y, ok := b.(decimal.Decimal)
		return ok && x.Equal(y)
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case *platform.Reaction:
		y, ok := b.(*platform.Reaction)
		return ok && x.Emoji == y.Emoji
	}
	return false
}
