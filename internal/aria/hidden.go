// internal/aria/hidden.go
package aria

import (
	"strings"

	"github.com/xkilldash9x/scalpel-introspect/internal/browser/dom"
	"golang.org/x/net/html"
)

var ignoredTags = set("style", "script", "noscript", "template")

// IsIgnored reports whether el never contributes to the accessibility tree.
func IsIgnored(el *html.Node) bool { return ignoredTags[el.Data] }

// IsHidden reports whether el is hidden from assistive technology:
// an ignored tag, not rendered, visibility hidden, aria-hidden="true" on
// itself or an ancestor, or a light-DOM child of a shadow host that no slot
// takes in. A display:contents element is hidden when none of its children
// is exposed. Options follow their select, not its style.
func (c *Computer) IsHidden(el *html.Node) bool {
	if ignoredTags[el.Data] {
		return true
	}
	cs := c.doc.ComputedStyle(el, "")
	isSlot := el.Data == "slot"
	if cs.Display() == "contents" && !isSlot {
		for n := el.FirstChild; n != nil; n = n.NextSibling {
			switch n.Type {
			case html.ElementNode:
				if !c.IsHidden(n) {
					return false
				}
			case html.TextNode:
				if c.doc.IsVisibleTextNode(n) {
					return false
				}
			}
		}
		return true
	}
	isOption := el.Data == "option" && closest(el, "select") != nil
	if !isOption && !isSlot {
		if !c.doc.IsStyleVisible(el) || inClosedDetails(el) {
			return true
		}
	}
	return c.hiddenByAncestry(el)
}

// hiddenByAncestry walks up the composed tree looking for display:none,
// aria-hidden or an unslotted shadow-host child.
func (c *Computer) hiddenByAncestry(el *html.Node) bool {
	return c.hidden.Get(el, func() bool {
		if p := el.Parent; p != nil && c.doc.ShadowRoot(p) != nil && c.doc.AssignedSlot(el) == nil {
			return true
		}
		if c.doc.ComputedStyle(el, "").Display() == "none" {
			return true
		}
		if isTrue(dom.AttrOr(el, "aria-hidden")) {
			return true
		}
		if p := c.doc.ParentElementOrShadowHost(el); p != nil {
			return c.hiddenByAncestry(p)
		}
		return false
	})
}

// inClosedDetails reports whether el is content of a closed <details>
// other than its summary.
func inClosedDetails(el *html.Node) bool {
	child := el
	for p := el.Parent; p != nil && p.Type == html.ElementNode; child, p = p, p.Parent {
		if p.Data != "details" || dom.HasAttr(p, "open") {
			continue
		}
		if dom.DetailsSummary(p) != child {
			return true
		}
	}
	return false
}

func isTrue(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}
