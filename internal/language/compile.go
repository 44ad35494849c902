package language

import (
	"errors"
	"fmt"

	"github.com/zjrosen/langue/internal/syntax"
)

// Language is a compiled definition ready for tokenization. Definition
// drives the scanner; Categories drive the legacy resolver.
type Language struct {
	Name       string
	Definition syntax.Definition
	Categories syntax.Categories
}

// Compile builds matchers for every rule in spec. Composite rules come first,
// then comment, string, keyword, special and punctuation.
func Compile(spec Spec) (*Language, error) {
	lang := &Language{
		Name:       spec.Name,
		Categories: syntax.Categories{},
	}

	for i, rs := range spec.Rules {
		rule, err := compileRule(rs)
		if err != nil {
			return nil, fmt.Errorf("%s: rule %d: %w", spec.Name, i, err)
		}
		lang.Definition = append(lang.Definition, rule)
	}

	fields := []struct {
		name     string
		set      bool
		legacy   bool
		priority syntax.Priority
		build    func() (*syntax.Matcher, error)
	}{
		{"comment", len(spec.Comment) > 0, true, syntax.PriorityComment, func() (*syntax.Matcher, error) {
			return syntax.Comment(spec.Comment)
		}},
		{"string", len(spec.String) > 0, true, syntax.PriorityString, func() (*syntax.Matcher, error) {
			return syntax.String(spec.String)
		}},
		{"keywords", spec.Keywords != "", true, syntax.PriorityKeyword, func() (*syntax.Matcher, error) {
			return syntax.Keyword(spec.Keywords)
		}},
		// special has no legacy priority
		{"special", spec.Special != "", false, 0, func() (*syntax.Matcher, error) {
			return syntax.Special(spec.Special)
		}},
		{"punctuation", spec.Punctuation != "", true, syntax.PriorityPunctuation, func() (*syntax.Matcher, error) {
			return syntax.Punctuation(spec.Punctuation)
		}},
	}
	for _, f := range fields {
		if !f.set {
			continue
		}
		m, err := f.build()
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", spec.Name, f.name, err)
		}
		lang.Definition = append(lang.Definition, syntax.Single(m))
		if f.legacy {
			lang.Categories[f.priority] = m
		}
	}

	if len(lang.Definition) == 0 {
		return nil, fmt.Errorf("%s: definition has no rules", spec.Name)
	}
	if err := lang.Definition.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Name, err)
	}

	return lang, nil
}

// compileRule builds a composite rule. Elements after the first absorb
// leading whitespace unless they say otherwise.
func compileRule(rs RuleSpec) (syntax.Rule, error) {
	if len(rs) == 0 {
		return nil, errors.New("empty rule")
	}
	if len(rs[0].Repeat) > 0 {
		return nil, errors.New("rule cannot start with a repeat group")
	}

	rule := make(syntax.Rule, 0, len(rs))
	for i, es := range rs {
		absorb := syntax.AbsorbLeading
		if i == 0 {
			absorb = syntax.AbsorbNone
		}
		elem, err := compileElement(es, absorb)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		rule = append(rule, elem)
	}
	return rule, nil
}

func compileElement(es ElementSpec, absorb syntax.Absorb) (syntax.Element, error) {
	if len(es.Repeat) > 0 {
		if es.Class != "" || es.Pattern != "" || es.Chars != "" || len(es.Fences) > 0 {
			return nil, errors.New("repeat group cannot also define a matcher")
		}
		group := syntax.Group{Rule: make(syntax.Rule, 0, len(es.Repeat))}
		for i, inner := range es.Repeat {
			elem, err := compileElement(inner, syntax.AbsorbLeading)
			if err != nil {
				return nil, fmt.Errorf("repeat %d: %w", i, err)
			}
			group.Rule = append(group.Rule, elem)
		}
		return group, nil
	}

	class, err := syntax.ParseClass(es.Class)
	if err != nil {
		return nil, err
	}
	if es.Absorb != "" {
		if absorb, err = syntax.ParseAbsorb(es.Absorb); err != nil {
			return nil, err
		}
	}
	opt := syntax.WithAbsorb(absorb)

	var m *syntax.Matcher
	switch {
	case len(es.Fences) > 0 && class == syntax.ClassString:
		m, err = syntax.String(es.Fences, opt)
	case len(es.Fences) > 0 && class == syntax.ClassComment:
		m, err = syntax.Comment(es.Fences, opt)
	case len(es.Fences) > 0:
		return nil, errors.New("fences are only valid for string and comment elements")
	case es.Chars != "" && class == syntax.ClassPunctuation:
		m, err = syntax.Punctuation(es.Chars, opt)
	case es.Chars != "":
		return nil, errors.New("chars are only valid for punctuation elements")
	default:
		m, err = syntax.NewMatcher(class, es.Pattern, absorb)
	}
	if err != nil {
		return nil, err
	}
	return syntax.Match(m), nil
}
