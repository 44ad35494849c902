package syntax

import "github.com/charmbracelet/lipgloss"

// base keeps tabs intact; lipgloss expands them to spaces by default.
func base() lipgloss.Style {
	return lipgloss.NewStyle().TabWidth(lipgloss.NoTabConversion)
}

// Token styles for terminal rendering.
var (
	// KeywordStyle for keywords
	KeywordStyle = base().Foreground(lipgloss.Color("#C678DD")).Bold(true)

	// PunctuationStyle for punctuation characters
	PunctuationStyle = base().Foreground(lipgloss.Color("#ABB2BF"))

	// StringStyle for fenced strings
	StringStyle = base().Foreground(lipgloss.Color("#98C379"))

	// CommentStyle for fenced comments
	CommentStyle = base().Foreground(lipgloss.Color("#5C6370")).Italic(true)

	// SpecialStyle for the generic special category
	SpecialStyle = base().Foreground(lipgloss.Color("#D19A66"))

	// DefaultStyle for unknown classes
	DefaultStyle = base()
)

// classStyle returns the terminal style for a token class.
func classStyle(c Class) lipgloss.Style {
	switch c {
	case ClassKeyword:
		return KeywordStyle
	case ClassPunctuation:
		return PunctuationStyle
	case ClassString:
		return StringStyle
	case ClassComment:
		return CommentStyle
	case ClassSpecial:
		return SpecialStyle
	default:
		return DefaultStyle
	}
}
