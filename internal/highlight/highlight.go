// Package highlight ties the language registry to the tokenizers and
// renderers.
package highlight

import (
	"context"
	"fmt"
	"strings"

	"github.com/zjrosen/langue/internal/escape"
	"github.com/zjrosen/langue/internal/language"
	"github.com/zjrosen/langue/internal/log"
	"github.com/zjrosen/langue/internal/syntax"
)

// Strategy selects the tokenizer.
type Strategy string

const (
	// StrategyScanner runs the leftmost-first rule scanner.
	StrategyScanner Strategy = "scanner"
	// StrategyLegacy runs the per-category priority resolver.
	StrategyLegacy Strategy = "legacy"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyScanner, StrategyLegacy:
		return Strategy(s), nil
	case "":
		return StrategyScanner, nil
	}
	return "", fmt.Errorf("unknown strategy %q (want scanner or legacy)", s)
}

// Format selects the output encoding.
type Format string

const (
	FormatHTML   Format = "html"
	FormatANSI   Format = "ansi"
	FormatTokens Format = "tokens"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatHTML, FormatANSI, FormatTokens:
		return Format(s), nil
	case "":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown format %q (want html, ansi or tokens)", s)
}

// Highlighter renders text in a named language.
type Highlighter struct {
	registry *language.Registry
	strategy Strategy
	overlap  syntax.Overlap
	format   Format
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithStrategy selects the tokenizer.
func WithStrategy(s Strategy) Option {
	return func(h *Highlighter) {
		h.strategy = s
	}
}

// WithOverlap selects how the legacy resolver treats partial overlaps.
func WithOverlap(o syntax.Overlap) Option {
	return func(h *Highlighter) {
		h.overlap = o
	}
}

// WithFormat selects the output encoding.
func WithFormat(f Format) Option {
	return func(h *Highlighter) {
		h.format = f
	}
}

// New returns a Highlighter over registry. Defaults are the scanner strategy,
// strict overlap and HTML output.
func New(registry *language.Registry, opts ...Option) *Highlighter {
	h := &Highlighter{
		registry: registry,
		strategy: StrategyScanner,
		overlap:  syntax.Strict,
		format:   FormatHTML,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Registry returns the registry definitions are loaded from.
func (h *Highlighter) Registry() *language.Registry {
	return h.registry
}

// Tokens classifies text with lang using the configured strategy.
func (h *Highlighter) Tokens(lang *language.Language, text string) []syntax.Token {
	if h.strategy == StrategyLegacy {
		return syntax.Resolve(lang.Categories, text, h.overlap)
	}
	return syntax.Tokenize(lang.Definition, text)
}

// Render tokenizes text with lang and encodes it in the configured format.
func (h *Highlighter) Render(lang *language.Language, text string) string {
	tokens := h.Tokens(lang, text)
	switch h.format {
	case FormatANSI:
		return syntax.RenderANSI(text, tokens)
	case FormatTokens:
		return FormatTokenList(tokens)
	default:
		return syntax.Render(text, tokens)
	}
}

// Highlight renders text in the named language. When the language cannot be
// loaded the text is returned unstyled, escaped for HTML output, together
// with the load error.
func (h *Highlighter) Highlight(ctx context.Context, name, text string) (string, error) {
	lang, err := h.registry.Get(ctx, name)
	if err != nil {
		log.Warn(log.CatSyntax, "rendering unhighlighted", "language", name, "error", err)
		return h.plain(text), err
	}
	return h.Render(lang, text), nil
}

// HighlightClass renders text for a markup class attribute such as
// "language-go". Text without a language class is returned unstyled.
func (h *Highlighter) HighlightClass(ctx context.Context, class, text string) (string, error) {
	name := language.FromClass(class)
	if name == "" {
		return h.plain(text), nil
	}
	return h.Highlight(ctx, name, text)
}

func (h *Highlighter) plain(text string) string {
	switch h.format {
	case FormatHTML:
		return escape.HTML(text)
	case FormatTokens:
		return ""
	default:
		return text
	}
}

// FormatTokenList prints one token per line as "index class value".
func FormatTokenList(tokens []syntax.Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
