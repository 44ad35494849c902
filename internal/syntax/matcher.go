package syntax

import (
	"errors"

	"github.com/dlclark/regexp2"

	"github.com/zjrosen/langue/internal/log"
)

// Absorb selects which adjoining whitespace an anchored match consumes.
// Absorbed whitespace is part of the token's Index and Value.
type Absorb int

const (
	AbsorbNone Absorb = iota
	AbsorbLeading
	AbsorbTrailing
	AbsorbBoth
)

func (a Absorb) leading() bool  { return a == AbsorbLeading || a == AbsorbBoth }
func (a Absorb) trailing() bool { return a == AbsorbTrailing || a == AbsorbBoth }

// ParseAbsorb maps a definition-file absorb mode to an Absorb.
func ParseAbsorb(s string) (Absorb, error) {
	switch s {
	case "none":
		return AbsorbNone, nil
	case "leading":
		return AbsorbLeading, nil
	case "trailing":
		return AbsorbTrailing, nil
	case "both":
		return AbsorbBoth, nil
	default:
		return AbsorbNone, errors.New("absorb must be \"none\", \"leading\", \"trailing\" or \"both\"")
	}
}

const patternOptions = regexp2.Multiline

// Matcher is a single classified pattern fragment. It is immutable and safe
// for concurrent use.
type Matcher struct {
	class    Class
	pattern  string
	absorb   Absorb
	locate   *regexp2.Regexp
	anchored *regexp2.Regexp
}

// NewMatcher compiles pattern into a Matcher for class.
func NewMatcher(class Class, pattern string, absorb Absorb) (*Matcher, error) {
	if pattern == "" {
		return nil, &CompileError{Class: class, Pattern: pattern, Err: errors.New("empty pattern")}
	}

	locate, err := regexp2.Compile("(?:"+pattern+")", patternOptions)
	if err != nil {
		return nil, &CompileError{Class: class, Pattern: pattern, Err: err}
	}

	// \G pins the match to the start offset handed to the engine.
	anchoredExpr := `\G`
	if absorb.leading() {
		anchoredExpr += `\s*`
	}
	anchoredExpr += "(?:" + pattern + ")"
	if absorb.trailing() {
		anchoredExpr += `\s*`
	}
	anchored, err := regexp2.Compile(anchoredExpr, patternOptions)
	if err != nil {
		return nil, &CompileError{Class: class, Pattern: pattern, Err: err}
	}

	return &Matcher{
		class:    class,
		pattern:  pattern,
		absorb:   absorb,
		locate:   locate,
		anchored: anchored,
	}, nil
}

// MustMatcher is like NewMatcher but panics on error. Intended for tests and
// package-level fixtures.
func MustMatcher(class Class, pattern string, absorb Absorb) *Matcher {
	m, err := NewMatcher(class, pattern, absorb)
	if err != nil {
		panic(err)
	}
	return m
}

// Class returns the matcher's tag.
func (m *Matcher) Class() Class { return m.class }

// Pattern returns the uncompiled fragment.
func (m *Matcher) Pattern() string { return m.pattern }

// Absorb returns the whitespace absorption mode used by Anchored.
func (m *Matcher) Absorb() Absorb { return m.absorb }

// Anchored matches starting exactly at offset at, including any absorbed
// whitespace. A zero-length match is reported as no match.
func (m *Matcher) Anchored(text []rune, at int) (Token, bool) {
	if at < 0 || at > len(text) {
		return Token{}, false
	}
	match := m.run(m.anchored, text, at)
	if match == nil || match.Length == 0 {
		return Token{}, false
	}
	return m.token(text, match), true
}

// Locate finds the nearest non-empty occurrence at or after offset from. It
// never absorbs whitespace and consumes nothing.
func (m *Matcher) Locate(text []rune, from int) (Token, bool) {
	if from < 0 {
		from = 0
	}
	for from <= len(text) {
		match := m.run(m.locate, text, from)
		if match == nil {
			return Token{}, false
		}
		if match.Length > 0 {
			return m.token(text, match), true
		}
		// Step over an empty occurrence so a later non-empty one can be found.
		from = match.Index + 1
	}
	return Token{}, false
}

func (m *Matcher) run(re *regexp2.Regexp, text []rune, at int) *regexp2.Match {
	match, err := re.FindRunesMatchStartingAt(text, at)
	if err != nil {
		log.ErrorErr(log.CatSyntax, "pattern match failed", err, "class", m.class, "pattern", m.pattern)
		return nil
	}
	return match
}

func (m *Matcher) token(text []rune, match *regexp2.Match) Token {
	return Token{
		Class: m.class,
		Value: string(text[match.Index : match.Index+match.Length]),
		Index: match.Index,
	}
}
