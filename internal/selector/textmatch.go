// internal/selector/textmatch.go
package selector

import (
	"regexp"
	"strings"

	"github.com/xkilldash9x/scalpel-introspect/internal/aria"
)

// TextMatcher reports whether a text matches a pattern.
type TextMatcher func(text string) bool

// ParseTextMatcher compiles a text pattern:
//
//	plain      case-insensitive substring of the normalized text
//	"quoted"   exact match of the normalized text; a trailing i ignores case
//	/re/flags  regular expression; flags i, m and s are honored
//
// A regular expression that does not compile is matched literally.
func ParseTextMatcher(pattern string) TextMatcher {
	pattern = strings.TrimSpace(pattern)
	if m, ok := regexMatcher(pattern); ok {
		return m
	}
	if value, fold, ok := quotedPattern(pattern); ok {
		want := aria.NormalizeWhitespace(value)
		if fold {
			return func(text string) bool { return strings.EqualFold(aria.NormalizeWhitespace(text), want) }
		}
		return func(text string) bool { return aria.NormalizeWhitespace(text) == want }
	}
	return substringMatcher(pattern)
}

func substringMatcher(pattern string) TextMatcher {
	want := strings.ToLower(aria.NormalizeWhitespace(pattern))
	return func(text string) bool {
		return strings.Contains(strings.ToLower(aria.NormalizeWhitespace(text)), want)
	}
}

func regexMatcher(pattern string) (TextMatcher, bool) {
	if len(pattern) < 2 || pattern[0] != '/' {
		return nil, false
	}
	end := strings.LastIndexByte(pattern, '/')
	if end == 0 {
		return nil, false
	}
	var flags strings.Builder
	for _, f := range pattern[end+1:] {
		switch f {
		case 'i', 'm', 's':
			flags.WriteRune(f)
		}
	}
	expr := pattern[1:end]
	if flags.Len() > 0 {
		expr = "(?" + flags.String() + ")" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return substringMatcher(pattern), true
	}
	return func(text string) bool { return re.MatchString(aria.NormalizeWhitespace(text)) }, true
}

// quotedPattern unwraps "value", 'value' and their case-insensitive "value"i
// forms. A trailing s is accepted as the explicit case-sensitive form.
func quotedPattern(pattern string) (value string, fold, ok bool) {
	if len(pattern) < 2 {
		return "", false, false
	}
	q := pattern[0]
	if q != '"' && q != '\'' {
		return "", false, false
	}
	switch pattern[len(pattern)-1] {
	case 'i', 'I':
		fold = true
		pattern = pattern[:len(pattern)-1]
	case 's', 'S':
		pattern = pattern[:len(pattern)-1]
	}
	if len(pattern) < 2 || pattern[len(pattern)-1] != q {
		return "", false, false
	}
	if q == '"' {
		return unquoteBody(pattern), fold, true
	}
	return strings.ReplaceAll(pattern[1:len(pattern)-1], `\'`, `'`), fold, true
}
