// internal/browser/style/values.go
package style

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// ComputedStyle is the resolved style of an element or one of its
// pseudo-elements. Font sizes and line heights are stored in px.
type ComputedStyle struct {
	node           *html.Node
	pseudo         string
	props          map[string]string
	fontSize       float64
	viewportWidth  float64
	viewportHeight float64
}

// initialValues holds the CSS initial values of the properties read here.
var initialValues = map[string]string{
	"display":            "inline",
	"visibility":         "visible",
	"opacity":            "1",
	"cursor":             "auto",
	"pointer-events":     "auto",
	"content-visibility": "visible",
	"position":           "static",
	"content":            "normal",
	"flex-direction":     "row",
	"box-sizing":         "content-box",
	"white-space":        "normal",
	"z-index":            "auto",
}

// Get returns the computed value of prop, or its initial value when unset.
func (cs *ComputedStyle) Get(prop string) string {
	if cs == nil {
		return initialValues[prop]
	}
	if v, ok := cs.props[prop]; ok {
		return v
	}
	return initialValues[prop]
}

// Pseudo returns "before", "after", or "" for the element itself.
func (cs *ComputedStyle) Pseudo() string { return cs.pseudo }

// Display returns the lower-cased display keyword. Multi-keyword values are
// reduced to their outer/inner equivalent, e.g. "block flex" → "flex".
func (cs *ComputedStyle) Display() string {
	v := strings.ToLower(cs.Get("display"))
	fields := strings.Fields(v)
	switch len(fields) {
	case 0:
		return "inline"
	case 1:
		return fields[0]
	}
	if fields[0] == "inline" && fields[1] == "flow-root" {
		return "inline-block"
	}
	if fields[0] == "inline" && (fields[1] == "flex" || fields[1] == "grid") {
		return "inline-" + fields[1]
	}
	return fields[1]
}

// IsBlockLevel reports whether the display value starts a new line.
func (cs *ComputedStyle) IsBlockLevel() bool {
	switch cs.Display() {
	case "inline", "inline-block", "inline-flex", "inline-grid", "inline-table", "contents", "none":
		return false
	}
	return true
}

func (cs *ComputedStyle) Visibility() string    { return strings.ToLower(cs.Get("visibility")) }
func (cs *ComputedStyle) Cursor() string        { return strings.ToLower(cs.Get("cursor")) }
func (cs *ComputedStyle) PointerEvents() string { return strings.ToLower(cs.Get("pointer-events")) }
func (cs *ComputedStyle) Position() string      { return strings.ToLower(cs.Get("position")) }

func (cs *ComputedStyle) ContentVisibility() string {
	return strings.ToLower(cs.Get("content-visibility"))
}

// Opacity returns the opacity clamped to [0, 1]. Percentages are accepted.
func (cs *ComputedStyle) Opacity() float64 {
	v := strings.TrimSpace(cs.Get("opacity"))
	scale := 1.0
	if strings.HasSuffix(v, "%") {
		v, scale = strings.TrimSuffix(v, "%"), 0.01
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 1
	}
	return clamp(f*scale, 0, 1)
}

// IsVisible reports whether the style alone allows the element to be seen.
func (cs *ComputedStyle) IsVisible() bool {
	if cs.Display() == "none" {
		return false
	}
	if v := cs.Visibility(); v == "hidden" || v == "collapse" {
		return false
	}
	return cs.Opacity() > 0
}

// FontSize returns the computed font size in px.
func (cs *ComputedStyle) FontSize() float64 {
	if cs == nil || cs.fontSize == 0 {
		return BaseFontSize
	}
	return cs.fontSize
}

// LineHeight returns the used line height in px.
func (cs *ComputedStyle) LineHeight() float64 {
	if v, ok := cs.props["line-height"]; ok {
		if px, ok := ParseLengthWithUnits(v, cs.FontSize(), BaseFontSize, 0, cs.viewportWidth, cs.viewportHeight); ok && px > 0 {
			return px
		}
	}
	return cs.FontSize() * DefaultLineHeight
}

// Length resolves a length property against reference (the containing block
// dimension for percentages). The boolean is false for auto or unset values.
func (cs *ComputedStyle) Length(prop string, reference float64) (float64, bool) {
	v, ok := cs.props[prop]
	if !ok {
		return 0, false
	}
	return ParseLengthWithUnits(v, cs.FontSize(), BaseFontSize, reference, cs.viewportWidth, cs.viewportHeight)
}

// LengthOr is Length with a fallback for auto or unset values.
func (cs *ComputedStyle) LengthOr(prop string, reference, fallback float64) float64 {
	if v, ok := cs.Length(prop, reference); ok {
		return v
	}
	return fallback
}

// Content resolves the content property. For ::before/::after it yields the
// generated text; for an element it only applies when content replaces the
// element with a string. ok is false when nothing is generated.
func (cs *ComputedStyle) Content() (text string, ok bool) {
	if cs == nil {
		return "", false
	}
	raw := strings.TrimSpace(cs.Get("content"))
	switch strings.ToLower(raw) {
	case "", "normal", "none":
		return "", false
	}
	if cs.pseudo != "" && cs.Display() == "none" {
		return "", false
	}

	// An alternative text after "/" takes precedence for accessibility.
	main, alt, hasAlt := splitContentAlt(raw)
	if hasAlt {
		return evaluateContent(alt, cs.node)
	}
	text, ok = evaluateContent(main, cs.node)
	if cs.pseudo == "" && !ok {
		return "", false
	}
	return text, ok
}

func splitContentAlt(raw string) (main, alt string, ok bool) {
	var quote byte
	depth := 0
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '(':
			depth++
		case ch == ')':
			depth--
		case ch == '/' && depth == 0:
			return strings.TrimSpace(raw[:i]), strings.TrimSpace(raw[i+1:]), true
		}
	}
	return raw, "", false
}

// evaluateContent concatenates string and attr() tokens. url(), counters and
// quote keywords contribute nothing. ok is false when no string-valued token
// is present.
func evaluateContent(value string, el *html.Node) (string, bool) {
	var sb strings.Builder
	ok := false
	for i := 0; i < len(value); {
		ch := value[i]
		switch {
		case ch == '"' || ch == '\'':
			s, next := readCSSString(value, i)
			sb.WriteString(s)
			ok = true
			i = next
		case strings.HasPrefix(strings.ToLower(value[i:]), "attr("):
			end := strings.IndexByte(value[i:], ')')
			if end < 0 {
				return sb.String(), ok
			}
			name := strings.TrimSpace(value[i+5 : i+end])
			if el != nil {
				v, _ := attr(el, name)
				sb.WriteString(v)
			}
			ok = true
			i += end + 1
		case ch == '(':
			depth := 1
			i++
			for i < len(value) && depth > 0 {
				if value[i] == '(' {
					depth++
				} else if value[i] == ')' {
					depth--
				}
				i++
			}
		default:
			i++
		}
	}
	return sb.String(), ok
}

func readCSSString(value string, start int) (string, int) {
	quote := value[start]
	var sb strings.Builder
	i := start + 1
	for i < len(value) {
		ch := value[i]
		if ch == '\\' && i+1 < len(value) {
			// Hex escapes (\2014) are decoded; others drop the backslash.
			j := i + 1
			for j < len(value) && j-i <= 6 && isHex(value[j]) {
				j++
			}
			if j > i+1 {
				if r, err := strconv.ParseUint(value[i+1:j], 16, 32); err == nil {
					sb.WriteRune(rune(r))
				}
				if j < len(value) && value[j] == ' ' {
					j++
				}
				i = j
				continue
			}
			sb.WriteByte(value[i+1])
			i += 2
			continue
		}
		if ch == quote {
			return sb.String(), i + 1
		}
		sb.WriteByte(ch)
		i++
	}
	return sb.String(), i
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// ParseLengthWithUnits converts a CSS length to px. The boolean is false for
// auto, normal, empty, or unparsable values.
func ParseLengthWithUnits(value string, fontSize, rootFontSize, reference, viewportWidth, viewportHeight float64) (float64, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || value == "auto" || value == "normal" || value == "none" {
		return 0, false
	}
	if strings.HasPrefix(value, "calc(") {
		return 0, false
	}

	units := []struct {
		suffix string
		scale  float64
	}{
		{"px", 1},
		{"%", reference / 100},
		{"rem", rootFontSize},
		{"em", fontSize},
		{"vmin", min(viewportWidth, viewportHeight) / 100},
		{"vmax", max(viewportWidth, viewportHeight) / 100},
		{"vw", viewportWidth / 100},
		{"vh", viewportHeight / 100},
		{"pt", 96.0 / 72.0},
	}
	for _, u := range units {
		if !strings.HasSuffix(value, u.suffix) {
			continue
		}
		if f, err := strconv.ParseFloat(strings.TrimSuffix(value, u.suffix), 64); err == nil {
			return f * u.scale, true
		}
	}
	// Unitless values are treated as px.
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f, true
	}
	return 0, false
}

// MeasureText approximates the advance width of a run of text using an
// average glyph width of 0.6em.
func MeasureText(text string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(text)) * fontSize * 0.6
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
