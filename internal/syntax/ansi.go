package syntax

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderANSI rebuilds text with terminal color codes applied per token
// class. Plain text and skip tokens are written unchanged.
func RenderANSI(text string, tokens []Token) string {
	return walk(text, tokens, func(b *strings.Builder, tok Token) {
		if tok.Class == ClassSkip {
			b.WriteString(tok.Value)
			return
		}
		b.WriteString(renderLines(classStyle(tok.Class), tok.Value))
	}, func(s string) string { return s })
}

// renderLines styles each line separately so multi-line comments and strings
// keep their line breaks.
func renderLines(style lipgloss.Style, s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
