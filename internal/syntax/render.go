package syntax

import (
	"strings"

	"github.com/zjrosen/langue/internal/escape"
)

// Render rebuilds text as escaped markup, wrapping each classified token in
// <span class='tag'>. tokens must be sorted by Index.
func Render(text string, tokens []Token) string {
	return walk(text, tokens, func(b *strings.Builder, tok Token) {
		if tok.Class == ClassSkip {
			b.WriteString(escape.HTML(tok.Value))
			return
		}
		b.WriteString("<span class='")
		b.WriteString(escape.HTML(string(tok.Class)))
		b.WriteString("'>")
		b.WriteString(escape.HTML(tok.Value))
		b.WriteString("</span>")
	}, escape.HTML)
}

// walk emits plain gaps and tokens in order. A token that starts before the
// end of the previous one gets no gap and is emitted as is.
func walk(text string, tokens []Token, emit func(*strings.Builder, Token), plain func(string) string) string {
	if text == "" {
		return ""
	}
	runes := []rune(text)

	var b strings.Builder
	offset := 0
	for _, tok := range tokens {
		start := min(max(tok.Index, 0), len(runes))
		if start > offset {
			b.WriteString(plain(string(runes[offset:start])))
		}
		emit(&b, tok)
		offset = max(offset, min(tok.End(), len(runes)))
	}
	if offset < len(runes) {
		b.WriteString(plain(string(runes[offset:])))
	}
	return b.String()
}
