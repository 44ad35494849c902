// Package syntax implements the rule-driven tokenizer and the markup
// renderers for langue.
package syntax

import (
	"fmt"
	"unicode/utf8"
)

// Class is the tag carried by a token and emitted as the span class.
type Class string

const (
	ClassSkip        Class = "" // matched but rendered as plain text
	ClassKeyword     Class = "keyword"
	ClassPunctuation Class = "punctuation"
	ClassString      Class = "string"
	ClassComment     Class = "comment"
	ClassSpecial     Class = "special"
)

// ParseClass maps a definition-file class name to a Class.
// "skip" and "" both map to ClassSkip.
func ParseClass(s string) (Class, error) {
	switch s {
	case "", "skip":
		return ClassSkip, nil
	case string(ClassKeyword), string(ClassPunctuation), string(ClassString),
		string(ClassComment), string(ClassSpecial):
		return Class(s), nil
	default:
		return ClassSkip, fmt.Errorf("unknown class %q", s)
	}
}

// Token is a classified, located, non-empty substring of the input.
// Index is a rune offset.
type Token struct {
	Class Class
	Value string
	Index int
}

// Len returns the token length in runes.
func (t Token) Len() int {
	return utf8.RuneCountInString(t.Value)
}

// End returns the rune offset just past the token.
func (t Token) End() int {
	return t.Index + t.Len()
}

func (t Token) String() string {
	class := t.Class
	if class == ClassSkip {
		class = "skip"
	}
	return fmt.Sprintf("%d %s %q", t.Index, class, t.Value)
}
