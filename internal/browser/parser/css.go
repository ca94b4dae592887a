// internal/browser/parser/css.go
package parser

import (
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
)

// Declaration is a key-value pair (e.g., display: none).
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Rule is one qualified rule. Selector matching and specificity come from
// cascadia; a selector may carry a pseudo-element (::before, ::after).
type Rule struct {
	SelectorText string
	Selectors    cascadia.SelectorGroup
	Declarations []Declaration
}

// StyleSheet is the parsed list of rules in source order.
type StyleSheet struct {
	Rules []Rule
	// Skipped counts rules dropped because their selector did not parse.
	Skipped int
}

// Parser turns stylesheet text into a StyleSheet.
type Parser struct {
	sc scanner
}

func NewParser(input string) *Parser {
	return &Parser{sc: scanner{src: input}}
}

// legacyPseudo rewrites the CSS2 single-colon pseudo-element forms.
var legacyPseudo = regexp.MustCompile(`(^|[^:]):(before|after)\b`)

// groupingAtRules are flattened into the enclosing sheet; every other
// at-rule is dropped.
var groupingAtRules = map[string]bool{"media": true, "supports": true, "layer": true}

// Parse builds the StyleSheet. Conditions of grouping at-rules are not
// evaluated.
func (p *Parser) Parse() StyleSheet {
	var sheet StyleSheet
	p.rules(&sheet, false)
	return sheet
}

// rules reads rules until the input ends or, inside a grouping at-rule, until
// the closing brace.
func (p *Parser) rules(sheet *StyleSheet, nested bool) {
	sc := &p.sc
	for {
		sc.trivia()
		if sc.done() {
			return
		}
		switch sc.peek() {
		case '}':
			sc.off++
			if nested {
				return
			}
		case '@':
			sc.off++
			p.atRule(sheet)
		default:
			p.qualifiedRule(sheet)
		}
	}
}

func (p *Parser) qualifiedRule(sheet *StyleSheet) {
	sc := &p.sc
	prelude := sc.until("{")
	if sc.done() {
		return
	}
	sc.off++
	body := sc.block('{', '}')

	text := strings.TrimSpace(prelude)
	group, err := cascadia.ParseGroupWithPseudoElements(legacyPseudo.ReplaceAllString(text, "$1::$2"))
	if err != nil || len(group) == 0 {
		sheet.Skipped++
		return
	}
	if decls := ParseDeclarations(body); len(decls) > 0 {
		sheet.Rules = append(sheet.Rules, Rule{SelectorText: text, Selectors: group, Declarations: decls})
	}
}

func (p *Parser) atRule(sheet *StyleSheet) {
	sc := &p.sc
	name := strings.ToLower(sc.ident())
	sc.until(";{")
	if sc.done() {
		return
	}
	open := sc.peek() == '{'
	sc.off++
	switch {
	case !open:
	case groupingAtRules[name]:
		p.rules(sheet, true)
	default:
		sc.block('{', '}')
	}
}

// ParseDeclarations parses the inside of a declaration block or an inline
// style attribute. Later duplicates are kept; the cascade resolves them.
func ParseDeclarations(block string) []Declaration {
	sc := &scanner{src: block}
	var decls []Declaration
	for {
		sc.trivia()
		if sc.done() {
			return decls
		}
		raw := sc.until(";")
		sc.off++
		if decl, ok := declaration(raw); ok {
			decls = append(decls, decl)
		}
	}
}

func declaration(raw string) (Declaration, bool) {
	prop, val, ok := strings.Cut(raw, ":")
	prop = strings.TrimSpace(prop)
	if !ok || !isIdent(prop) {
		return Declaration{}, false
	}
	val = strings.TrimSpace(val)
	important := false
	if n := len(val) - len("!important"); n >= 0 && strings.EqualFold(val[n:], "!important") {
		important = true
		val = strings.TrimSpace(val[:n])
	}
	if val == "" {
		return Declaration{}, false
	}
	return Declaration{Property: strings.ToLower(prop), Value: val, Important: important}, true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !identByte(s[i]) {
			return false
		}
	}
	return true
}

func identByte(ch byte) bool {
	return ch == '-' || ch == '_' || ('0' <= ch && ch <= '9') || ('a' <= ch|0x20 && ch|0x20 <= 'z')
}

// scanner is a byte cursor over CSS source. It treats quoted strings,
// comments and parenthesized groups as opaque.
type scanner struct {
	src string
	off int
}

func (s *scanner) done() bool { return s.off >= len(s.src) }

func (s *scanner) peek() byte {
	if s.done() {
		return 0
	}
	return s.src[s.off]
}

// trivia skips whitespace and comments.
func (s *scanner) trivia() {
	for !s.done() {
		switch {
		case strings.HasPrefix(s.src[s.off:], "/*"):
			s.comment()
		case strings.IndexByte(" \t\n\r\f", s.src[s.off]) >= 0:
			s.off++
		default:
			return
		}
	}
}

func (s *scanner) comment() {
	end := strings.Index(s.src[s.off+2:], "*/")
	if end < 0 {
		s.off = len(s.src)
		return
	}
	s.off += end + 4
}

// until advances to the next byte in stops that is not nested in a string,
// comment or parentheses, and returns the text passed over.
func (s *scanner) until(stops string) string {
	start := s.off
	for !s.done() {
		ch := s.src[s.off]
		switch {
		case strings.IndexByte(stops, ch) >= 0:
			return s.src[start:s.off]
		case ch == '"' || ch == '\'':
			s.quoted()
		case ch == '(':
			s.off++
			s.block('(', ')')
		case strings.HasPrefix(s.src[s.off:], "/*"):
			s.comment()
		default:
			s.off++
		}
	}
	return s.src[start:]
}

// block consumes through the close byte balancing an open byte the caller
// already consumed, and returns the enclosed text.
func (s *scanner) block(open, close byte) string {
	start := s.off
	for depth := 1; !s.done(); {
		ch := s.src[s.off]
		if ch == '"' || ch == '\'' {
			s.quoted()
			continue
		}
		s.off++
		switch ch {
		case open:
			depth++
		case close:
			if depth--; depth == 0 {
				return s.src[start : s.off-1]
			}
		}
	}
	return s.src[start:]
}

func (s *scanner) quoted() {
	quote := s.src[s.off]
	for s.off++; !s.done(); s.off++ {
		switch s.src[s.off] {
		case '\\':
			s.off++
		case quote:
			s.off++
			return
		}
	}
}

func (s *scanner) ident() string {
	start := s.off
	for !s.done() && identByte(s.src[s.off]) {
		s.off++
	}
	return s.src[start:s.off]
}
