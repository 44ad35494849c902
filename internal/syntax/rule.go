package syntax

import (
	"errors"
	"fmt"
)

// Element is one step of a Rule: either a Leaf or a Group.
type Element interface {
	element()
}

// Leaf is a single Matcher applied anchored at the current position.
type Leaf struct {
	Matcher *Matcher
}

// Group is a nested Rule applied repeatedly while each application advances.
// A Group that never advances contributes no tokens and does not fail the
// enclosing Rule.
type Group struct {
	Rule Rule
}

func (Leaf) element()  {}
func (Group) element() {}

// Rule is an ordered sequence of elements that must match back to back.
type Rule []Element

// Definition is the ordered set of top-level rules for one language.
// Declaration order breaks ties between rules that start at the same offset.
type Definition []Rule

// Match wraps m as a Leaf.
func Match(m *Matcher) Leaf {
	return Leaf{Matcher: m}
}

// Seq builds a Rule from elements.
func Seq(elems ...Element) Rule {
	return Rule(elems)
}

// Repeat builds a repetition Group from elements.
func Repeat(elems ...Element) Group {
	return Group{Rule: Rule(elems)}
}

// Single builds a one-matcher Rule.
func Single(m *Matcher) Rule {
	return Rule{Leaf{Matcher: m}}
}

// Validate checks that every rule can be located: it must start with a Leaf.
func (d Definition) Validate() error {
	for i, rule := range d {
		if len(rule) == 0 {
			return fmt.Errorf("rule %d: empty rule", i)
		}
		if _, ok := rule[0].(Leaf); !ok {
			return fmt.Errorf("rule %d: first element must be a matcher, not a repetition group", i)
		}
		if err := rule.validate(); err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
	}
	return nil
}

func (r Rule) validate() error {
	for i, el := range r {
		switch e := el.(type) {
		case Leaf:
			if e.Matcher == nil {
				return fmt.Errorf("element %d: nil matcher", i)
			}
		case Group:
			if len(e.Rule) == 0 {
				return fmt.Errorf("element %d: empty repetition group", i)
			}
			if err := e.Rule.validate(); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		default:
			return errors.New("unknown element type")
		}
	}
	return nil
}
