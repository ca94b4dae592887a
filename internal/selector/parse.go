// internal/selector/parse.go
package selector

import (
	"regexp"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var enginePrefix = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_:-]*)=`)

// ParsedSelector is one stage of a selector chain.
type ParsedSelector struct {
	Engine string
	Body   string
}

// ParseSelector splits a single stage into engine name and body. Without a
// name= prefix the stage is CSS, unless it starts with // or .. (XPath) or
// with a quote (text).
func ParseSelector(s string) ParsedSelector {
	s = strings.TrimSpace(s)
	if m := enginePrefix.FindStringSubmatch(s); m != nil {
		return ParsedSelector{Engine: m[1], Body: s[len(m[0]):]}
	}
	switch {
	case strings.HasPrefix(s, "//"), strings.HasPrefix(s, ".."):
		return ParsedSelector{Engine: "xpath", Body: s}
	case strings.HasPrefix(s, `"`), strings.HasPrefix(s, `'`):
		return ParsedSelector{Engine: "text", Body: s}
	}
	return ParsedSelector{Engine: "css", Body: s}
}

// SplitChain splits a selector on top-level ">>" tokens. Separators inside
// quoted strings do not split. Empty stages are dropped.
func SplitChain(selector string) []string {
	return splitTopLevel(selector, ">>", false)
}

// splitTopLevel splits s on sep outside quotes and, when nested is set,
// outside (), [] and {}. Parts are trimmed; empty parts are dropped.
func splitTopLevel(s, sep string, nested bool) []string {
	var parts []string
	var quote byte
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			switch ch {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'', '`':
			quote = ch
			continue
		case '(', '[', '{':
			if nested {
				depth++
			}
			continue
		case ')', ']', '}':
			if nested && depth > 0 {
				depth--
			}
			continue
		}
		if depth == 0 && strings.HasPrefix(s[i:], sep) {
			parts = appendPart(parts, s[start:i])
			i += len(sep) - 1
			start = i + 1
		}
	}
	return appendPart(parts, s[start:])
}

func appendPart(parts []string, p string) []string {
	if p = strings.TrimSpace(p); p != "" {
		parts = append(parts, p)
	}
	return parts
}

// unquoteBody decodes a body written as a JSON string. Anything else is
// returned trimmed.
func unquoteBody(body string) string {
	body = strings.TrimSpace(body)
	if len(body) < 2 || body[0] != '"' || body[len(body)-1] != '"' {
		return body
	}
	var out string
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(body, &out); err != nil {
		return body
	}
	return out
}

// splitLayoutBody separates "inner, maxDistance". The distance is taken only
// from a numeric literal after the last top-level comma.
func splitLayoutBody(body string) (inner string, maxDistance float64, bounded bool) {
	var quote byte
	depth := 0
	comma := -1
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if quote != 0 {
			switch ch {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'', '`':
			quote = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				comma = i
			}
		}
	}
	if comma >= 0 {
		if d, err := strconv.ParseFloat(strings.TrimSpace(body[comma+1:]), 64); err == nil {
			return unquoteBody(body[:comma]), d, true
		}
	}
	return unquoteBody(body), 0, false
}
