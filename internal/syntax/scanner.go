package syntax

import (
	"cmp"
	"slices"
)

// Tokenize scans text with def and returns the tokens in input order.
// Text after the last matching rule is left untokenized; Render emits it as
// plain text.
func Tokenize(def Definition, text string) []Token {
	s := &scanner{def: def, text: []rune(text)}
	s.run()
	return s.tokens
}

// candidate is a rule whose first element was located at offset at.
type candidate struct {
	rule int
	at   int
}

// scanner holds the mutable state of a single Tokenize call.
type scanner struct {
	def    Definition
	text   []rune
	cursor int
	stuck  int
	tokens []Token
}

func (s *scanner) run() {
	for s.cursor < len(s.text) {
		s.stuck = s.cursor

		advanced := false
		for _, c := range s.candidates() {
			toks, end, ok := s.match(s.def[c.rule], c.at)
			if !ok || end <= s.cursor {
				continue
			}
			s.tokens = append(s.tokens, toks...)
			s.cursor = end
			advanced = true
			break
		}

		if !advanced || s.cursor <= s.stuck {
			return
		}
	}
}

// candidates locates every rule's first element from the cursor, nearest
// first, then in declaration order.
func (s *scanner) candidates() []candidate {
	var out []candidate
	for i, rule := range s.def {
		if len(rule) == 0 {
			continue
		}
		leaf, ok := rule[0].(Leaf)
		if !ok || leaf.Matcher == nil {
			continue
		}
		if tok, found := leaf.Matcher.Locate(s.text, s.cursor); found {
			out = append(out, candidate{rule: i, at: tok.Index})
		}
	}
	slices.SortFunc(out, func(a, b candidate) int {
		if c := cmp.Compare(a.at, b.at); c != 0 {
			return c
		}
		return cmp.Compare(a.rule, b.rule)
	})
	return out
}

// match applies rule anchored at offset at and returns its tokens and the
// offset after the last consumed element.
func (s *scanner) match(rule Rule, at int) ([]Token, int, bool) {
	pos := at
	var toks []Token
	for _, el := range rule {
		switch e := el.(type) {
		case Leaf:
			if e.Matcher == nil {
				return nil, at, false
			}
			tok, ok := e.Matcher.Anchored(s.text, pos)
			if !ok {
				return nil, at, false
			}
			toks = append(toks, tok)
			pos = tok.End()
		case Group:
			for {
				inner, end, ok := s.match(e.Rule, pos)
				if !ok || end <= pos {
					break
				}
				toks = append(toks, inner...)
				pos = end
			}
		default:
			return nil, at, false
		}
	}
	return toks, pos, true
}
