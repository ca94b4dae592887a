// internal/aria/state.go
package aria

import (
	"strconv"
	"strings"

	"github.com/xkilldash9x/scalpel-introspect/internal/browser/dom"
	"golang.org/x/net/html"
)

// Tristate is a boolean ARIA state that may also be "mixed".
type Tristate int

const (
	False Tristate = iota
	True
	Mixed
)

func (t Tristate) String() string {
	switch t {
	case True:
		return "true"
	case Mixed:
		return "mixed"
	}
	return "false"
}

// Checked returns the checked state of el. ok is false when el has no
// checked semantics.
func (c *Computer) Checked(el *html.Node) (state Tristate, ok bool) {
	if el.Data == "input" {
		if c.doc.Indeterminate(el) {
			return Mixed, true
		}
		if t := InputType(el); t == "checkbox" || t == "radio" {
			return boolState(c.doc.Checked(el)), true
		}
	}
	if !CheckedRoles[c.Role(el)] {
		return False, false
	}
	switch dom.AttrOr(el, "aria-checked") {
	case "true":
		return True, true
	case "mixed":
		return Mixed, true
	}
	return False, true
}

// Pressed returns the pressed state of a toggle button.
func (c *Computer) Pressed(el *html.Node) (Tristate, bool) {
	if !PressedRoles[c.Role(el)] {
		return False, false
	}
	switch dom.AttrOr(el, "aria-pressed") {
	case "true":
		return True, true
	case "mixed":
		return Mixed, true
	}
	return False, true
}

// Expanded returns the expanded state. A <details> reports its open
// attribute; other elements need an expandable role and aria-expanded.
func (c *Computer) Expanded(el *html.Node) (expanded, ok bool) {
	if el.Data == "details" {
		return dom.HasAttr(el, "open"), true
	}
	if !ExpandedRoles[c.Role(el)] {
		return false, false
	}
	v, has := dom.Attr(el, "aria-expanded")
	if !has {
		return false, false
	}
	return v == "true", true
}

// Selected reports whether el is selected: the live selection of an
// <option>, or aria-selected on a selectable role.
func (c *Computer) Selected(el *html.Node) bool {
	if el.Data == "option" {
		return c.doc.Selected(el)
	}
	if SelectedRoles[c.Role(el)] {
		return dom.AttrOr(el, "aria-selected") == "true"
	}
	return false
}

var headingLevels = map[string]int{"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6}

// Level returns the hierarchical level of el, or 0. A valid aria-level on a
// leveled role overrides the level of a native heading.
func (c *Computer) Level(el *html.Node) int {
	if LevelRoles[c.Role(el)] {
		if n, err := strconv.Atoi(strings.TrimSpace(dom.AttrOr(el, "aria-level"))); err == nil && n >= 1 {
			return n
		}
	}
	return headingLevels[el.Data]
}

// Disabled reports whether el is disabled, natively or through
// aria-disabled on itself or an ancestor.
func (c *Computer) Disabled(el *html.Node) bool {
	return c.isNativelyDisabled(el) || c.explicitlyDisabled(el, false)
}

func (c *Computer) explicitlyDisabled(el *html.Node, ancestor bool) bool {
	if el == nil {
		return false
	}
	if !ancestor && !DisabledRoles[c.Role(el)] {
		return false
	}
	switch strings.ToLower(dom.AttrOr(el, "aria-disabled")) {
	case "true":
		return true
	case "false":
		return false
	}
	return c.explicitlyDisabled(c.doc.ParentElementOrShadowHost(el), true)
}

var formControlTags = set("button", "input", "select", "textarea", "option", "optgroup")

func (c *Computer) isNativelyDisabled(el *html.Node) bool {
	if !formControlTags[el.Data] {
		return false
	}
	return dom.HasAttr(el, "disabled") || inDisabledOptGroup(el) || inDisabledFieldset(el)
}

func inDisabledOptGroup(el *html.Node) bool {
	if el.Data != "option" {
		return false
	}
	p := el.Parent
	return p != nil && p.Data == "optgroup" && dom.HasAttr(p, "disabled")
}

// inDisabledFieldset reports whether a disabled <fieldset> contains el
// outside of its first <legend>.
func inDisabledFieldset(el *html.Node) bool {
	child := el
	for p := el.Parent; p != nil && p.Type == html.ElementNode; child, p = p, p.Parent {
		if p.Data != "fieldset" || !dom.HasAttr(p, "disabled") {
			continue
		}
		if child.Data == "legend" && firstLegend(p) == child {
			continue
		}
		return true
	}
	return false
}

func firstLegend(fieldset *html.Node) *html.Node {
	for c := fieldset.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "legend" {
			return c
		}
	}
	return nil
}

// Invalid returns the aria-invalid value, or "" when the element is valid.
func (c *Computer) Invalid(el *html.Node) string {
	v := strings.ToLower(strings.TrimSpace(dom.AttrOr(el, "aria-invalid")))
	switch v {
	case "", "false":
		return ""
	case "grammar", "spelling":
		return v
	}
	return "true"
}

// Required reports the required attribute or aria-required="true".
func (c *Computer) Required(el *html.Node) bool {
	if formControlTags[el.Data] && dom.HasAttr(el, "required") {
		return true
	}
	return dom.AttrOr(el, "aria-required") == "true"
}

// Busy reports aria-busy="true".
func (c *Computer) Busy(el *html.Node) bool {
	return dom.AttrOr(el, "aria-busy") == "true"
}

// Current returns the aria-current token, or "" when not current.
func (c *Computer) Current(el *html.Node) string {
	v := strings.ToLower(strings.TrimSpace(dom.AttrOr(el, "aria-current")))
	if v == "false" {
		return ""
	}
	return v
}

// Focused reports whether el is the document's active element.
func (c *Computer) Focused(el *html.Node) bool {
	return c.doc.ActiveElement() == el
}

// ValueText returns the value exposed for a control: the live value of a
// text field or select, or aria-valuetext/aria-valuenow of a range.
func (c *Computer) ValueText(el *html.Node) string {
	switch el.Data {
	case "textarea", "select":
		return c.doc.Value(el)
	case "input":
		switch InputType(el) {
		case "checkbox", "radio", "file", "submit", "reset", "button", "image", "hidden":
		default:
			return c.doc.Value(el)
		}
	}
	if CategoryOf(c.Role(el)) == CategoryRange {
		return rangeValue(el)
	}
	return ""
}

func rangeValue(el *html.Node) string {
	if v, ok := dom.Attr(el, "aria-valuetext"); ok {
		return v
	}
	if v, ok := dom.Attr(el, "aria-valuenow"); ok {
		return v
	}
	return dom.AttrOr(el, "value")
}

func boolState(b bool) Tristate {
	if b {
		return True
	}
	return False
}
