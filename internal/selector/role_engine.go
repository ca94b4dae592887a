// internal/selector/role_engine.go
package selector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xkilldash9x/scalpel-introspect/internal/aria"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

var errRoleSyntax = errors.New("malformed role selector")

type roleAttr struct {
	name     string
	value    string
	raw      string
	hasValue bool
	quoted   bool
	exact    bool
}

type roleQuery struct {
	role          string
	includeHidden bool
	attrs         []roleAttr
}

// parseRoleSelector parses role[attr][attr=value]... as in
// button[name="Save"][pressed=false].
func parseRoleSelector(body string) (roleQuery, error) {
	s := strings.TrimSpace(body)
	i := 0
	for i < len(s) && (isAlpha(s[i]) || s[i] == '-') {
		i++
	}
	q := roleQuery{role: strings.ToLower(s[:i])}
	if q.role == "" {
		return q, fmt.Errorf("%w: missing role in %q", errRoleSyntax, body)
	}
	for s = strings.TrimSpace(s[i:]); s != ""; s = strings.TrimSpace(s) {
		if s[0] != '[' {
			return q, fmt.Errorf("%w: unexpected %q", errRoleSyntax, s)
		}
		attr, rest, err := parseRoleAttr(s[1:])
		if err != nil {
			return q, err
		}
		switch attr.name {
		case "include-hidden":
			q.includeHidden = !attr.hasValue || attr.value == "true"
		case "name", "checked", "disabled", "expanded", "level", "pressed", "selected":
			q.attrs = append(q.attrs, attr)
		default:
			return q, fmt.Errorf("%w: unknown attribute %q", errRoleSyntax, attr.name)
		}
		s = rest
	}
	return q, nil
}

func parseRoleAttr(s string) (roleAttr, string, error) {
	s = strings.TrimLeft(s, " ")
	i := 0
	for i < len(s) && (isAlpha(s[i]) || s[i] == '-') {
		i++
	}
	attr := roleAttr{name: strings.ToLower(s[:i])}
	s = strings.TrimLeft(s[i:], " ")
	if strings.HasPrefix(s, "]") {
		return attr, s[1:], nil
	}
	if !strings.HasPrefix(s, "=") {
		return attr, "", fmt.Errorf("%w: expected = or ] after %q", errRoleSyntax, attr.name)
	}
	s = strings.TrimLeft(s[1:], " ")
	attr.hasValue = true

	if s != "" && (s[0] == '"' || s[0] == '\'') {
		end := closingQuote(s)
		if end < 0 {
			return attr, "", fmt.Errorf("%w: unterminated string", errRoleSyntax)
		}
		attr.raw = s[:end+1]
		attr.quoted = true
		if s[0] == '"' {
			attr.value = unquoteBody(attr.raw)
		} else {
			attr.value = strings.ReplaceAll(s[1:end], `\'`, `'`)
		}
		s = strings.TrimLeft(s[end+1:], " ")
		switch {
		case strings.HasPrefix(s, "s"), strings.HasPrefix(s, "S"):
			attr.exact = true
			s = strings.TrimLeft(s[1:], " ")
		case strings.HasPrefix(s, "i"), strings.HasPrefix(s, "I"):
			s = strings.TrimLeft(s[1:], " ")
		}
		if !strings.HasPrefix(s, "]") {
			return attr, "", fmt.Errorf("%w: expected ] after value of %q", errRoleSyntax, attr.name)
		}
		return attr, s[1:], nil
	}

	end := strings.IndexByte(s, ']')
	if attr.name == "name" && strings.HasPrefix(s, "/") {
		// A regular expression may itself contain brackets.
		if closing := regexEnd(s); closing > 0 {
			if rel := strings.IndexByte(s[closing:], ']'); rel >= 0 {
				end = closing + rel
			}
		}
	}
	if end < 0 {
		return attr, "", fmt.Errorf("%w: missing ]", errRoleSyntax)
	}
	attr.raw = strings.TrimSpace(s[:end])
	attr.value = strings.ToLower(attr.raw)
	return attr, s[end+1:], nil
}

// regexEnd returns the index of the slash closing the expression that
// starts s.
func regexEnd(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '/':
			return i
		}
	}
	return -1
}

func closingQuote(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case s[0]:
			return i
		}
	}
	return -1
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// queryRole matches elements by ARIA role, accessible name and states.
// Elements hidden from assistive technology are skipped unless
// include-hidden is set.
func queryRole(env *Env, root *html.Node, body string) []*html.Node {
	q, err := parseRoleSelector(body)
	if err != nil {
		env.Logger().Warn("Invalid role selector.", zap.String("selector", body), zap.Error(err))
		return nil
	}
	c := env.Aria()
	var out []*html.Node
	for _, el := range env.Descendants(root) {
		if c.Role(el) != q.role {
			continue
		}
		if !q.includeHidden && c.IsHidden(el) {
			continue
		}
		if matchesRoleAttrs(c, el, q) {
			out = append(out, el)
		}
	}
	return out
}

func matchesRoleAttrs(c *aria.Computer, el *html.Node, q roleQuery) bool {
	for _, a := range q.attrs {
		want := a.value
		if !a.hasValue {
			want = "true"
		}
		switch a.name {
		case "name":
			if !roleNameMatcher(a)(c.AccessibleName(el, q.includeHidden)) {
				return false
			}
		case "checked":
			st, ok := c.Checked(el)
			if !ok || st.String() != want {
				return false
			}
		case "pressed":
			st, ok := c.Pressed(el)
			if !ok || st.String() != want {
				return false
			}
		case "expanded":
			exp, ok := c.Expanded(el)
			if !ok || strconv.FormatBool(exp) != want {
				return false
			}
		case "disabled":
			if strconv.FormatBool(c.Disabled(el)) != want {
				return false
			}
		case "selected":
			if strconv.FormatBool(c.Selected(el)) != want {
				return false
			}
		case "level":
			if strconv.Itoa(c.Level(el)) != want {
				return false
			}
		}
	}
	return true
}

// roleNameMatcher: a quoted name is a case-insensitive substring unless
// marked exact with a trailing s; /re/ is a regular expression.
func roleNameMatcher(a roleAttr) TextMatcher {
	switch {
	case !a.quoted && strings.HasPrefix(a.raw, "/"):
		return ParseTextMatcher(a.raw)
	case a.exact:
		want := aria.NormalizeWhitespace(a.value)
		return func(text string) bool { return aria.NormalizeWhitespace(text) == want }
	}
	if a.quoted {
		return substringMatcher(a.value)
	}
	return substringMatcher(a.raw)
}
