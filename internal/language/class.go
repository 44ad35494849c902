package language

import "strings"

// FromClass extracts the language name from a markup class attribute such as
// "language-go" or "block language-python wide". It returns "" when no
// "language-" class is present.
func FromClass(class string) string {
	for _, field := range strings.Fields(class) {
		if name, ok := strings.CutPrefix(field, "language-"); ok && name != "" {
			return Normalize(name)
		}
	}
	return ""
}
