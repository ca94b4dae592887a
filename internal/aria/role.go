// internal/aria/role.go
package aria

import (
	"strconv"
	"strings"

	"github.com/xkilldash9x/scalpel-introspect/internal/browser/dom"
	"golang.org/x/net/html"
)

// Role returns the computed ARIA role of el, or "" when it has none. An
// explicit role attribute wins over the implicit role of the tag, except
// that presentation/none is ignored on elements that are focusable or carry
// a global labelling attribute.
func (c *Computer) Role(el *html.Node) string {
	if !dom.IsElement(el) {
		return ""
	}
	return c.roles.Get(el, func() string { return c.computeRole(el) })
}

func (c *Computer) computeRole(el *html.Node) string {
	explicit := ExplicitRole(el)
	if explicit == "" {
		return c.implicitRole(el)
	}
	if explicit == "none" || explicit == "presentation" {
		if c.hasPresentationConflict(el) {
			return c.implicitRole(el)
		}
	}
	return explicit
}

// ExplicitRole returns the first recognized token of el's role attribute.
func ExplicitRole(el *html.Node) string {
	for _, tok := range strings.Fields(strings.ToLower(dom.AttrOr(el, "role"))) {
		if validRoles[tok] {
			return tok
		}
	}
	return ""
}

func (c *Computer) hasPresentationConflict(el *html.Node) bool {
	return hasGlobalLabel(el) || c.IsFocusable(el)
}

func hasGlobalLabel(el *html.Node) bool {
	return dom.HasAttr(el, "aria-label") || dom.HasAttr(el, "aria-labelledby") || dom.HasAttr(el, "aria-describedby")
}

func hasExplicitName(el *html.Node) bool {
	return dom.HasAttr(el, "aria-label") || dom.HasAttr(el, "aria-labelledby") || dom.HasAttr(el, "title")
}

// implicitRole is the tag-derived role, replaced by presentation when an
// owning ancestor in the required chain is presentational.
func (c *Computer) implicitRole(el *html.Node) string {
	role := c.tagRole(el)
	if role == "" {
		return ""
	}
	for n := el; ; {
		parents := presentationParents[n.Data]
		parent := c.doc.ParentElementOrShadowHost(n)
		if parents == nil || parent == nil || !parents[parent.Data] {
			break
		}
		if pr := ExplicitRole(parent); (pr == "none" || pr == "presentation") && !c.hasPresentationConflict(parent) {
			if c.hasPresentationConflict(el) {
				return role
			}
			return pr
		}
		n = parent
	}
	return role
}

func (c *Computer) tagRole(el *html.Node) string {
	switch el.Data {
	case "a", "area":
		if dom.HasAttr(el, "href") {
			return "link"
		}
	case "article":
		return "article"
	case "aside":
		return "complementary"
	case "blockquote":
		return "blockquote"
	case "button":
		return "button"
	case "caption":
		return "caption"
	case "code":
		return "code"
	case "datalist":
		return "listbox"
	case "dd":
		return "definition"
	case "del":
		return "deletion"
	case "details", "fieldset", "optgroup":
		return "group"
	case "dfn", "dt":
		return "term"
	case "dialog":
		return "dialog"
	case "em":
		return "emphasis"
	case "figure":
		return "figure"
	case "footer":
		if !c.insideSectioning(el) {
			return "contentinfo"
		}
	case "header":
		if !c.insideSectioning(el) {
			return "banner"
		}
	case "form":
		if hasExplicitName(el) {
			return "form"
		}
	case "section":
		if hasExplicitName(el) {
			return "region"
		}
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "heading"
	case "hr":
		return "separator"
	case "html":
		return "document"
	case "img":
		if v, ok := dom.Attr(el, "alt"); ok && v == "" && !dom.HasAttr(el, "title") && !hasGlobalLabel(el) && !hasTabIndex(el) {
			return "presentation"
		}
		return "img"
	case "input":
		return c.inputRole(el)
	case "ins":
		return "insertion"
	case "li":
		return "listitem"
	case "main":
		return "main"
	case "mark":
		return "mark"
	case "math":
		return "math"
	case "menu", "ol", "ul":
		return "list"
	case "meter":
		return "meter"
	case "nav":
		return "navigation"
	case "option":
		return "option"
	case "output":
		return "status"
	case "p":
		return "paragraph"
	case "progress":
		return "progressbar"
	case "search":
		return "search"
	case "select":
		if dom.HasAttr(el, "multiple") {
			return "listbox"
		}
		if n, err := strconv.Atoi(strings.TrimSpace(dom.AttrOr(el, "size"))); err == nil && n > 1 {
			return "listbox"
		}
		return "combobox"
	case "strong":
		return "strong"
	case "sub":
		return "subscript"
	case "sup":
		return "superscript"
	case "svg":
		return "img"
	case "table":
		return "table"
	case "tbody", "thead", "tfoot":
		return "rowgroup"
	case "td":
		if t := closest(el, "table"); t != nil {
			if r := c.Role(t); r == "grid" || r == "treegrid" {
				return "gridcell"
			}
		}
		return "cell"
	case "th":
		return c.headerCellRole(el)
	case "textarea":
		return "textbox"
	case "time":
		return "time"
	case "tr":
		return "row"
	}
	return ""
}

var inputTypeRoles = map[string]string{
	"button":   "button",
	"checkbox": "checkbox",
	"file":     "button",
	"image":    "button",
	"number":   "spinbutton",
	"radio":    "radio",
	"range":    "slider",
	"reset":    "button",
	"submit":   "button",
}

func (c *Computer) inputRole(el *html.Node) string {
	typ := InputType(el)
	switch typ {
	case "hidden":
		return ""
	case "search":
		if dom.HasAttr(el, "list") {
			return "combobox"
		}
		return "searchbox"
	case "email", "tel", "text", "url":
		if refs := c.doc.ElementsByIDRefs(el, dom.AttrOr(el, "list")); len(refs) > 0 && refs[0].Data == "datalist" {
			return "combobox"
		}
		return "textbox"
	}
	if r, ok := inputTypeRoles[typ]; ok {
		return r
	}
	return "textbox"
}

var knownInputTypes = set(
	"button", "checkbox", "color", "date", "datetime-local", "email", "file", "hidden", "image",
	"month", "number", "password", "radio", "range", "reset", "search", "submit", "tel", "text",
	"time", "url", "week",
)

// InputType returns the normalized type of an <input>; unknown or missing
// types are "text".
func InputType(el *html.Node) string {
	t := strings.ToLower(strings.TrimSpace(dom.AttrOr(el, "type")))
	if knownInputTypes[t] {
		return t
	}
	return "text"
}

// headerCellRole resolves a <th> to columnheader or rowheader from its
// scope attribute and position in the table.
func (c *Computer) headerCellRole(th *html.Node) string {
	switch strings.ToLower(dom.AttrOr(th, "scope")) {
	case "col", "colgroup":
		return "columnheader"
	case "row", "rowgroup":
		return "rowheader"
	}
	row := th.Parent
	if row == nil || row.Data != "tr" {
		return "columnheader"
	}
	if row.Parent != nil && row.Parent.Data == "thead" {
		return "columnheader"
	}
	cells := tableCells(row)
	if len(cells) == 1 {
		if t := closest(row, "table"); t != nil && len(tableRows(t)) == 1 {
			return ""
		}
	}
	if len(cells) > 1 && cells[0] == th && cells[1].Data == "td" {
		return "rowheader"
	}
	return "columnheader"
}

func tableCells(row *html.Node) []*html.Node {
	var out []*html.Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			out = append(out, c)
		}
	}
	return out
}

func tableRows(table *html.Node) []*html.Node {
	var out []*html.Node
	for _, el := range dom.Elements(table) {
		if el.Data == "tr" && closest(el, "table") == table {
			out = append(out, el)
		}
	}
	return out
}

func closest(el *html.Node, tag string) *html.Node {
	for p := el.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == tag {
			return p
		}
	}
	return nil
}

var sectioningTags = set("article", "aside", "main", "nav", "section")
var sectioningRoles = set("article", "complementary", "main", "navigation", "region")

// insideSectioning reports whether a header/footer sits inside sectioning
// content, which strips its landmark role.
func (c *Computer) insideSectioning(el *html.Node) bool {
	for p := c.doc.ParentElementOrShadowHost(el); p != nil; p = c.doc.ParentElementOrShadowHost(p) {
		if r, ok := dom.Attr(p, "role"); ok {
			if sectioningRoles[strings.TrimSpace(strings.ToLower(r))] {
				return true
			}
			continue
		}
		if sectioningTags[p.Data] {
			return true
		}
	}
	return false
}

func hasTabIndex(el *html.Node) bool {
	_, ok := tabIndex(el)
	return ok
}

func tabIndex(el *html.Node) (int, bool) {
	v, ok := dom.Attr(el, "tabindex")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsFocusable reports whether el can take focus: a natively focusable
// control that is not disabled, or any element with a non-negative tabindex.
func (c *Computer) IsFocusable(el *html.Node) bool {
	if c.isNativelyDisabled(el) {
		return false
	}
	if isNativelyFocusable(el) {
		return true
	}
	n, ok := tabIndex(el)
	return ok && n >= 0
}

func isNativelyFocusable(el *html.Node) bool {
	switch el.Data {
	case "button", "details", "select", "textarea":
		return true
	case "a", "area":
		return dom.HasAttr(el, "href")
	case "input":
		return InputType(el) != "hidden"
	case "summary":
		return el.Parent != nil && el.Parent.Data == "details" && dom.DetailsSummary(el.Parent) == el
	}
	return false
}

// IsInteractive reports whether el is something a user acts on: an
// interactive role or tag, a non-negative tabindex, or content-editable.
func (c *Computer) IsInteractive(el *html.Node) bool {
	if interactiveRoles[c.Role(el)] || interactiveTags[el.Data] {
		return true
	}
	if n, ok := tabIndex(el); ok && n >= 0 {
		return true
	}
	v, ok := dom.Attr(el, "contenteditable")
	return ok && !strings.EqualFold(v, "false")
}
