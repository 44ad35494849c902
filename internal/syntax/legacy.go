package syntax

import (
	"cmp"
	"slices"
)

// Priority ranks the four fixed categories of the legacy resolver.
// Higher values win.
type Priority int

const (
	PriorityPunctuation Priority = iota
	PriorityKeyword
	PriorityString
	PriorityComment
)

// Priorities lists every category from highest to lowest priority.
var Priorities = []Priority{PriorityComment, PriorityString, PriorityKeyword, PriorityPunctuation}

// Class returns the token class produced by the category.
func (p Priority) Class() Class {
	switch p {
	case PriorityComment:
		return ClassComment
	case PriorityString:
		return ClassString
	case PriorityKeyword:
		return ClassKeyword
	default:
		return ClassPunctuation
	}
}

func (p Priority) String() string {
	return string(p.Class())
}

// Overlap selects how the legacy resolver treats conflicting tokens.
type Overlap int

const (
	// Strict drops a lower-priority token that overlaps any kept
	// higher-priority token, so the result never overlaps.
	Strict Overlap = iota
	// Containment drops a lower-priority token only when a higher-priority
	// token fully contains it. Partial overlaps survive and render with
	// duplicated text.
	Containment
)

// Categories holds one matcher per legacy category. Missing entries are
// skipped.
type Categories map[Priority]*Matcher

// FindAll returns every non-overlapping occurrence of m, scanning left to
// right without a shared cursor.
func FindAll(m *Matcher, text []rune) []Token {
	var out []Token
	from := 0
	for from <= len(text) {
		tok, ok := m.Locate(text, from)
		if !ok {
			break
		}
		out = append(out, tok)
		from = tok.End()
	}
	return out
}

type ranked struct {
	Token
	priority Priority
	dropped  bool
}

// Resolve tokenizes text with each category independently and reconciles
// overlaps by priority. The result is sorted by start offset.
func Resolve(cats Categories, text string, policy Overlap) []Token {
	runes := []rune(text)

	found := make(map[Priority][]*ranked, len(cats))
	for _, p := range Priorities {
		m, ok := cats[p]
		if !ok || m == nil {
			continue
		}
		for _, tok := range FindAll(m, runes) {
			tok.Class = p.Class()
			found[p] = append(found[p], &ranked{Token: tok, priority: p})
		}
	}

	switch policy {
	case Containment:
		dropContained(found)
	default:
		dropOverlapping(found)
	}

	var out []*ranked
	for _, p := range Priorities {
		for _, r := range found[p] {
			if !r.dropped {
				out = append(out, r)
			}
		}
	}
	slices.SortStableFunc(out, func(a, b *ranked) int {
		if c := cmp.Compare(a.Index, b.Index); c != 0 {
			return c
		}
		return cmp.Compare(b.priority, a.priority)
	})

	tokens := make([]Token, len(out))
	for i, r := range out {
		tokens[i] = r.Token
	}
	return tokens
}

// dropContained removes every lower-priority token fully inside a surviving
// higher-priority one.
func dropContained(found map[Priority][]*ranked) {
	for ai, pa := range Priorities {
		for _, pb := range Priorities[ai+1:] {
			for _, a := range found[pa] {
				if a.dropped {
					continue
				}
				for _, b := range found[pb] {
					if a.Index <= b.Index && a.End() >= b.End() {
						b.dropped = true
					}
				}
			}
		}
	}
}

// dropOverlapping keeps tokens highest priority first and drops any token
// that overlaps one already kept.
func dropOverlapping(found map[Priority][]*ranked) {
	var kept []*ranked
	for _, p := range Priorities {
		for _, b := range found[p] {
			for _, a := range kept {
				if a.Index < b.End() && b.Index < a.End() {
					b.dropped = true
					break
				}
			}
			if !b.dropped {
				kept = append(kept, b)
			}
		}
	}
}
