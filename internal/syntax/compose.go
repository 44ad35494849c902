package syntax

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zjrosen/langue/internal/escape"
)

// Fence is a start/end delimiter pair bounding a string or comment.
type Fence struct {
	Start string
	End   string
}

// ParseFences expands the compact "start,end|start2,end2" notation.
// Each pair splits on its first comma, so a start fence cannot contain one.
func ParseFences(s string) ([]Fence, error) {
	if s == "" {
		return nil, errors.New("empty fence list")
	}
	var fences []Fence
	for i, pair := range strings.Split(s, "|") {
		start, end, ok := strings.Cut(pair, ",")
		if !ok {
			return nil, fmt.Errorf("fence %d %q: missing comma between start and end", i, pair)
		}
		fences = append(fences, Fence{Start: start, End: end})
	}
	return fences, nil
}

// Option configures a composed matcher.
type Option func(*options)

type options struct {
	absorb Absorb
}

// WithAbsorb sets the whitespace absorption mode of the composed matcher.
func WithAbsorb(a Absorb) Option {
	return func(o *options) {
		o.absorb = a
	}
}

func build(class Class, pattern string, opts []Option) (*Matcher, error) {
	o := options{absorb: AbsorbNone}
	for _, opt := range opts {
		opt(&o)
	}
	return NewMatcher(class, pattern, o.absorb)
}

// Keyword builds a keyword matcher from a raw alternation pattern such as
// `\b(?:if|else)\b`.
func Keyword(pattern string, opts ...Option) (*Matcher, error) {
	return build(ClassKeyword, pattern, opts)
}

// Special builds a matcher for the generic "special" category.
func Special(pattern string, opts ...Option) (*Matcher, error) {
	return build(ClassSpecial, pattern, opts)
}

// Skip builds an untagged matcher whose tokens render as plain text.
func Skip(pattern string, opts ...Option) (*Matcher, error) {
	return build(ClassSkip, pattern, opts)
}

// Punctuation builds a matcher for any single character of chars.
func Punctuation(chars string, opts ...Option) (*Matcher, error) {
	if chars == "" {
		return nil, &CompileError{Class: ClassPunctuation, Pattern: chars, Err: errors.New("empty character list")}
	}
	alts := make([]string, 0, len(chars))
	for _, r := range chars {
		alts = append(alts, escape.Regexp(string(r)))
	}
	return build(ClassPunctuation, strings.Join(alts, "|"), opts)
}

// String builds a matcher for fenced strings. An escaped backslash or an
// escaped end fence inside the content does not terminate the string.
func String(fences []Fence, opts ...Option) (*Matcher, error) {
	pattern, err := fencePattern(ClassString, fences, func(end string) string {
		return `\\\\|\\` + end + `|[\s\S]`
	})
	if err != nil {
		return nil, err
	}
	return build(ClassString, pattern, opts)
}

// Comment builds a matcher for fenced comments. The content is not
// escape-aware.
func Comment(fences []Fence, opts ...Option) (*Matcher, error) {
	pattern, err := fencePattern(ClassComment, fences, func(string) string {
		return `[\s\S]`
	})
	if err != nil {
		return nil, err
	}
	return build(ClassComment, pattern, opts)
}

// fencePattern joins one non-greedy alternative per fence. Content
// alternatives must not overlap on single characters or an unclosed fence
// backtracks exponentially.
func fencePattern(class Class, fences []Fence, content func(end string) string) (string, error) {
	if len(fences) == 0 {
		return "", &CompileError{Class: class, Err: errors.New("no fences")}
	}
	alts := make([]string, 0, len(fences))
	for i, f := range fences {
		if f.Start == "" || f.End == "" {
			return "", &CompileError{
				Class:   class,
				Pattern: f.Start + "," + f.End,
				Err:     fmt.Errorf("fence %d: start and end are required", i),
			}
		}
		start := escape.Regexp(f.Start)
		end := escape.Regexp(f.End)
		alts = append(alts, "(?:"+start+"(?:"+content(end)+")*?"+end+")")
	}
	return strings.Join(alts, "|"), nil
}
