package rewards

import (
	"errors"
	"fmt"

	"github.com/amirasaad/econbot/pkg/domain"
	"github.com/amirasaad/econbot/pkg/parser"
	"github.com/amirasaad/econbot/pkg/policy"
)

// Rule is a compiled policy rule.
type Rule struct {
	Name       string
	Trigger    string // category.kind as written
	Event      string // platform event id
	Shape      Shape
	Conditions []*policy.Statement
	Rewards    []Reward
}

// Reward is a compiled reward line.
type Reward struct {
	Target []string
	Amount string
}

// RuleSet is an immutable compiled policy, indexed by event id.
type RuleSet struct {
	source  string
	ordered []*Rule
	byEvent map[string][]*Rule
}

// For returns the rules bound to eventID in document order.
func (s *RuleSet) For(eventID string) []*Rule {
	if s == nil {
		return nil
	}
	return s.byEvent[eventID]
}

// Rules returns all rules in document order.
func (s *RuleSet) Rules() []*Rule {
	if s == nil {
		return nil
	}
	return s.ordered
}

// Events returns the ids of every event some rule listens to.
func (s *RuleSet) Events() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.byEvent))
	for _, r := range s.ordered {
		if !contains(ids, r.Event) {
			ids = append(ids, r.Event)
		}
	}
	return ids
}

// Source returns the document the set was compiled from.
func (s *RuleSet) Source() string {
	if s == nil {
		return ""
	}
	return s.source
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// Compile checks a parsed policy and builds its RuleSet. Every problem found
// is reported; if there is any, no RuleSet is returned.
func Compile(p *policy.Policy, source string) (*RuleSet, error) {
	set := &RuleSet{source: source, byEvent: make(map[string][]*Rule)}
	seen := make(map[string]struct{}, len(p.Rules))
	var errs []error
	fail := func(r *policy.Rule, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: rule %s: %s", r.Pos, r.Name, fmt.Sprintf(format, args...)))
	}

	for _, pr := range p.Rules {
		if _, dup := seen[pr.Name]; dup {
			fail(pr, "defined more than once")
			continue
		}
		seen[pr.Name] = struct{}{}

		id, ok := Lookup(pr.Event.Category, pr.Event.Kind)
		if !ok {
			fail(pr, "unknown event %s", pr.Event)
			continue
		}
		r := &Rule{
			Name:       pr.Name,
			Trigger:    pr.Event.String(),
			Event:      id,
			Shape:      shapeByCategory[pr.Event.Category],
			Conditions: pr.Conditions,
		}

		for _, stmt := range pr.Conditions {
			exprs := []*policy.Expression{stmt.First}
			for _, link := range stmt.Rest {
				exprs = append(exprs, link.Expr)
			}
			for _, e := range exprs {
				for _, o := range []*policy.Operand{e.LHS, e.RHS} {
					if path := o.Path(); path != nil && !knownRoot(r.Shape, path[0]) {
						fail(pr, "%s is not available on %s events", *o.Attr, pr.Event)
					}
				}
			}
		}

		for _, rw := range pr.Rewards {
			target := (&policy.Operand{Attr: &rw.Target}).Path()
			if !knownRoot(r.Shape, target[0]) {
				fail(pr, "reward target %s is not available on %s events", rw.Target, pr.Event)
			}
			amount := rw.AmountText()
			if _, err := parser.ParseAmount(amount); err != nil {
				fail(pr, "reward amount %q: %v", amount, err)
			}
			r.Rewards = append(r.Rewards, Reward{Target: target, Amount: amount})
		}

		set.ordered = append(set.ordered, r)
		set.byEvent[id] = append(set.byEvent[id], r)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: invalid policy: %w", domain.ErrValidation, errors.Join(errs...))
	}
	return set, nil
}

func knownRoot(s Shape, name string) bool {
	_, ok := roots[s][name]
	return ok
}

// Validate parses and compiles src without activating it.
func Validate(src string) (*RuleSet, error) {
	p, err := policy.Parse(src)
	if err != nil {
		return nil, err
	}
	return Compile(p, src)
}
