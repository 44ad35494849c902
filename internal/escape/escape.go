// Package escape holds the two leaf transformations used when building
// patterns and rendering markup.
package escape

import (
	"regexp"
	"strings"
)

// Regexp escapes s so it matches literally inside a pattern fragment.
// The metacharacter set is the same for RE2 and regexp2 syntax.
func Regexp(s string) string {
	return regexp.QuoteMeta(s)
}

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// HTML escapes s for inclusion in markup text or a quoted attribute.
// Each call escapes exactly once, so "&amp;" becomes "&amp;amp;".
func HTML(s string) string {
	return htmlReplacer.Replace(s)
}
