// internal/browser/dom/state.go
package dom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// controlState holds live form-control state that has diverged from the
// markup, like the value/checked/selected IDL properties of a browser.
type controlState struct {
	value         *string
	checked       *bool
	selected      *bool
	indeterminate bool
}

func (d *Document) stateFor(el *html.Node) *controlState {
	st, ok := d.state[el]
	if !ok {
		st = &controlState{}
		d.state[el] = st
	}
	return st
}

// Value returns the current value of a form control: the live value when
// set, otherwise the value attribute (input), the text (textarea, output) or
// the first selected option's value (select).
func (d *Document) Value(el *html.Node) string {
	if st, ok := d.state[el]; ok && st.value != nil {
		return *st.value
	}
	switch el.Data {
	case "textarea":
		return strings.TrimPrefix(TextContent(el), "\n")
	case "output":
		return TextContent(el)
	case "select":
		if opts := d.SelectedOptions(el); len(opts) > 0 {
			return OptionValue(opts[0])
		}
		return ""
	case "option":
		return OptionValue(el)
	}
	return AttrOr(el, "value")
}

// SetValue sets the live value of a form control.
func (d *Document) SetValue(el *html.Node, value string) error {
	if !IsElement(el) {
		return ErrNotElement
	}
	if el.Data == "select" {
		for _, opt := range d.Options(el) {
			d.stateFor(opt).selected = boolPtr(OptionValue(opt) == value)
		}
		return nil
	}
	d.stateFor(el).value = &value
	return nil
}

// Checked reports the checkedness of a checkbox or radio button.
func (d *Document) Checked(el *html.Node) bool {
	if st, ok := d.state[el]; ok && st.checked != nil {
		return *st.checked
	}
	return HasAttr(el, "checked")
}

// SetChecked sets checkedness. Checking a radio button unchecks the other
// radio buttons of its group in the same tree scope.
func (d *Document) SetChecked(el *html.Node, checked bool) error {
	if !IsElement(el) {
		return ErrNotElement
	}
	d.stateFor(el).checked = boolPtr(checked)
	if checked && el.Data == "input" && strings.EqualFold(AttrOr(el, "type"), "radio") {
		name := AttrOr(el, "name")
		if name == "" {
			return nil
		}
		walkElements(d.RootOf(el), func(n *html.Node) bool {
			if n != el && n.Data == "input" && strings.EqualFold(AttrOr(n, "type"), "radio") && AttrOr(n, "name") == name {
				d.stateFor(n).checked = boolPtr(false)
			}
			return true
		})
	}
	return nil
}

// Indeterminate reports the indeterminate flag of a checkbox. It only
// exists as live state.
func (d *Document) Indeterminate(el *html.Node) bool {
	st, ok := d.state[el]
	return ok && st.indeterminate
}

func (d *Document) SetIndeterminate(el *html.Node, v bool) error {
	if !IsElement(el) {
		return ErrNotElement
	}
	d.stateFor(el).indeterminate = v
	return nil
}

// Options returns the <option> elements of a <select> or <datalist>,
// including those inside <optgroup>.
func (d *Document) Options(sel *html.Node) []*html.Node {
	var out []*html.Node
	for c := sel.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "option":
			out = append(out, c)
		case "optgroup":
			for o := c.FirstChild; o != nil; o = o.NextSibling {
				if o.Type == html.ElementNode && o.Data == "option" {
					out = append(out, o)
				}
			}
		}
	}
	return out
}

// Selected reports option selectedness, including the implicit selection of
// the first enabled option in a single-choice drop-down.
func (d *Document) Selected(opt *html.Node) bool {
	if explicit, ok := d.explicitSelected(opt); ok {
		return explicit
	}
	sel := enclosingSelect(opt)
	if sel == nil || !isDropDown(sel) {
		return false
	}
	for _, o := range d.Options(sel) {
		if v, ok := d.explicitSelected(o); ok && v {
			return false
		}
	}
	for _, o := range d.Options(sel) {
		if !HasAttr(o, "disabled") {
			return o == opt
		}
	}
	return false
}

func (d *Document) explicitSelected(opt *html.Node) (bool, bool) {
	if st, ok := d.state[opt]; ok && st.selected != nil {
		return *st.selected, true
	}
	if HasAttr(opt, "selected") {
		return true, true
	}
	return false, false
}

// SetSelected sets option selectedness. Selecting an option of a
// single-choice <select> deselects its siblings.
func (d *Document) SetSelected(opt *html.Node, selected bool) error {
	if !IsElement(opt) {
		return ErrNotElement
	}
	if sel := enclosingSelect(opt); selected && sel != nil && !HasAttr(sel, "multiple") {
		for _, o := range d.Options(sel) {
			d.stateFor(o).selected = boolPtr(false)
		}
	}
	d.stateFor(opt).selected = boolPtr(selected)
	return nil
}

// SelectedOptions returns the selected options of a <select>.
func (d *Document) SelectedOptions(sel *html.Node) []*html.Node {
	var out []*html.Node
	for _, o := range d.Options(sel) {
		if d.Selected(o) {
			out = append(out, o)
		}
	}
	return out
}

// OptionValue returns the value attribute of an option, or its text.
func OptionValue(opt *html.Node) string {
	if v, ok := Attr(opt, "value"); ok {
		return v
	}
	return strings.Join(strings.Fields(TextContent(opt)), " ")
}

func enclosingSelect(opt *html.Node) *html.Node {
	for p := opt.Parent; p != nil && p.Type == html.ElementNode; p = p.Parent {
		switch p.Data {
		case "select":
			return p
		case "optgroup":
			continue
		}
		return nil
	}
	return nil
}

// isDropDown reports whether a <select> renders as a single-choice button.
func isDropDown(sel *html.Node) bool {
	if HasAttr(sel, "multiple") {
		return false
	}
	size, err := strconv.Atoi(strings.TrimSpace(AttrOr(sel, "size")))
	return err != nil || size <= 1
}

func boolPtr(b bool) *bool { return &b }

// -- Focus --

// ActiveElement returns the focused element, or nil when focus is on the
// document. Elements inside shadow roots are returned directly.
func (d *Document) ActiveElement() *html.Node { return d.focused }

// Focus moves focus to el.
func (d *Document) Focus(el *html.Node) error {
	if !IsElement(el) {
		return ErrNotElement
	}
	d.focused = el
	return nil
}

// Blur clears focus.
func (d *Document) Blur() { d.focused = nil }

// initialFocus honours the first autofocus attribute in document order.
func (d *Document) initialFocus() *html.Node {
	var found *html.Node
	walkElements(d.root, func(n *html.Node) bool {
		if HasAttr(n, "autofocus") && !HasAttr(n, "disabled") {
			found = n
			return false
		}
		return true
	})
	return found
}
