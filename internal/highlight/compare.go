package highlight

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/langue/internal/language"
	"github.com/zjrosen/langue/internal/syntax"
)

// DiffOp marks a line of a token diff.
type DiffOp byte

const (
	DiffSame    DiffOp = ' '
	DiffRemoved DiffOp = '-'
	DiffAdded   DiffOp = '+'
)

// LineDiff is one token line of a diff, formatted as by Token.String.
type LineDiff struct {
	Op   DiffOp
	Line string
}

// DiffTokens compares two token streams, one token per line.
func DiffTokens(a, b []syntax.Token) []LineDiff {
	dmp := diffmatchpatch.New()
	chars1, chars2, lines := dmp.DiffLinesToChars(FormatTokenList(a), FormatTokenList(b))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lines)

	var out []LineDiff
	for _, d := range diffs {
		op := DiffSame
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = DiffRemoved
		case diffmatchpatch.DiffInsert:
			op = DiffAdded
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, LineDiff{Op: op, Line: strings.TrimSuffix(line, "\n")})
		}
	}
	return out
}

// CompareStrategies tokenizes text with the scanner and with the legacy
// resolver under overlap, and diffs scanner output against legacy output.
func CompareStrategies(lang *language.Language, text string, overlap syntax.Overlap) []LineDiff {
	scanned := syntax.Tokenize(lang.Definition, text)
	resolved := syntax.Resolve(lang.Categories, text, overlap)
	return DiffTokens(scanned, resolved)
}

// Changed reports whether any line differs.
func Changed(diffs []LineDiff) bool {
	for _, d := range diffs {
		if d.Op != DiffSame {
			return true
		}
	}
	return false
}

// FormatDiff prints diffs with a one-character op prefix per line.
func FormatDiff(diffs []LineDiff) string {
	var sb strings.Builder
	for _, d := range diffs {
		sb.WriteByte(byte(d.Op))
		sb.WriteByte(' ')
		sb.WriteString(d.Line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
