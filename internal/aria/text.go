// internal/aria/text.go
package aria

import (
	"strings"
	"unicode"
)

const nbsp = '\u00a0'

// Normalize flattens a computed name: CRLF becomes LF, zero-width spaces and
// soft hyphens are dropped, whitespace runs collapse to one space and the
// result is trimmed. Non-breaking spaces survive inside the string.
func Normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case r == '\u200b' || r == '\u00ad':
			continue
		case r != nbsp && unicode.IsSpace(r):
			space = true
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteRune(r)
	}
	return strings.TrimFunc(sb.String(), unicode.IsSpace)
}

// isBlank reports whether s has no content once normalized.
func isBlank(s string) bool {
	return Normalize(s) == ""
}

// NormalizeWhitespace collapses whitespace runs and trims, leaving other
// characters untouched.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
