// internal/aria/name.go
package aria

import (
	"strings"

	"github.com/xkilldash9x/scalpel-introspect/internal/browser/dom"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// embedding records the reference through which a traversal reached an
// element, and whether the referenced root is itself hidden.
type embedding struct {
	el     *html.Node
	hidden bool
}

type targetMode int

const (
	targetNone targetMode = iota
	targetSelf
	targetDescendant
)

// nameContext is the traversal state of one name or description request.
// visited is per traversal entry; active holds the reference roots being
// computed anywhere in the current top-level call.
type nameContext struct {
	includeHidden bool
	visited       map[*html.Node]bool
	active        map[*html.Node]bool

	labelledBy  *embedding
	describedBy *embedding
	label       *embedding
	nativeAlt   *embedding
	target      targetMode
}

func (ctx nameContext) child() nameContext {
	if ctx.target == targetSelf {
		ctx.target = targetDescendant
	}
	return ctx
}

type refKind int

const (
	refLabelledBy refKind = iota
	refDescribedBy
	refLabel
)

// AccessibleName computes the accessible name of el. Hidden content is left
// out unless includeHidden is set.
func (c *Computer) AccessibleName(el *html.Node, includeHidden bool) string {
	if !dom.IsElement(el) {
		return ""
	}
	return c.names.Get(nameKey{el, includeHidden}, func() string {
		if nameProhibitedRoles[c.Role(el)] {
			return ""
		}
		ctx := nameContext{
			includeHidden: includeHidden,
			visited:       make(map[*html.Node]bool),
			active:        make(map[*html.Node]bool),
			target:        targetSelf,
		}
		return Normalize(c.computeNameInternal(el, ctx))
	})
}

// AccessibleDescription computes the accessible description of el from
// aria-describedby, aria-description, or a title that differs from the name.
func (c *Computer) AccessibleDescription(el *html.Node, includeHidden bool) string {
	if !dom.IsElement(el) {
		return ""
	}
	return c.descs.Get(nameKey{el, includeHidden}, func() string {
		ctx := nameContext{
			includeHidden: includeHidden,
			visited:       make(map[*html.Node]bool),
			active:        make(map[*html.Node]bool),
		}
		if refs := c.doc.ElementsByIDRefs(el, dom.AttrOr(el, "aria-describedby")); len(refs) > 0 {
			return Normalize(c.referencesText(refs, ctx, refDescribedBy))
		}
		if v, ok := dom.Attr(el, "aria-description"); ok {
			return Normalize(v)
		}
		title := Normalize(dom.AttrOr(el, "title"))
		if title == c.AccessibleName(el, includeHidden) {
			return ""
		}
		return title
	})
}

// referencesText computes each reference root with a fresh visited set and
// joins the results with a space. A root that is already being computed
// higher up contributes nothing.
func (c *Computer) referencesText(refs []*html.Node, parent nameContext, kind refKind) string {
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		if parent.active[ref] {
			c.logger.Debug("Cyclic name reference skipped.", zap.String("tag", ref.Data), zap.String("id", dom.AttrOr(ref, "id")))
			continue
		}
		ctx := nameContext{
			includeHidden: parent.includeHidden,
			visited:       make(map[*html.Node]bool),
			active:        parent.active,
		}
		emb := &embedding{el: ref, hidden: c.IsHidden(ref)}
		switch kind {
		case refLabelledBy:
			ctx.includeHidden = true
			ctx.labelledBy = emb
		case refDescribedBy:
			ctx.describedBy = emb
		case refLabel:
			ctx.label = emb
		}
		parent.active[ref] = true
		text := c.computeNameInternal(ref, ctx)
		delete(parent.active, ref)
		if kind == refLabel && text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

// computeNameInternal returns the unnormalized text alternative of el.
func (c *Computer) computeNameInternal(el *html.Node, ctx nameContext) string {
	if ctx.visited[el] {
		return ""
	}
	childCtx := ctx.child()

	if IsIgnored(el) {
		ctx.visited[el] = true
		return ""
	}
	if !ctx.includeHidden {
		viaHiddenRef := (ctx.describedBy != nil && ctx.describedBy.hidden) ||
			(ctx.label != nil && ctx.label.hidden) ||
			(ctx.nativeAlt != nil && ctx.nativeAlt.hidden)
		if !viaHiddenRef && c.IsHidden(el) {
			ctx.visited[el] = true
			return ""
		}
	}

	labelledBy := c.doc.ElementsByIDRefs(el, dom.AttrOr(el, "aria-labelledby"))

	// aria-labelledby, not followed again inside a labelledby traversal.
	if ctx.labelledBy == nil && len(labelledBy) > 0 {
		if name := c.referencesText(labelledBy, ctx, refLabelledBy); name != "" {
			ctx.visited[el] = true
			return name
		}
	}

	role := c.Role(el)
	tag := el.Data

	// Embedded control.
	if ctx.label != nil || ctx.labelledBy != nil || ctx.target == targetDescendant {
		if ctx.label != nil && c.doc.LabelControl(ctx.label.el) == el {
			ctx.visited[el] = true
			return ""
		}
		if !containsNode(labelledBy, el) {
			if text, ok := c.embeddedControlValue(el, role, childCtx); ok {
				ctx.visited[el] = true
				return text
			}
		}
	}

	if v := dom.AttrOr(el, "aria-label"); !isBlank(v) {
		ctx.visited[el] = true
		return v
	}

	if CategoryOf(role) != CategoryPresentational {
		if text, ok := c.nativeTextAlternative(el, ctx, childCtx, len(labelledBy) > 0); ok {
			return text
		}
	}

	summary := tag == "summary" && CategoryOf(role) != CategoryPresentational
	if allowsNameFromContent(role, ctx.target == targetDescendant) || summary ||
		ctx.labelledBy != nil || ctx.describedBy != nil || ctx.label != nil || ctx.nativeAlt != nil {
		ctx.visited[el] = true
		text := c.contentText(el, childCtx)
		if ctx.target == targetSelf {
			if !isBlank(text) {
				return text
			}
		} else if text != "" {
			return text
		}
	}

	ctx.visited[el] = true
	if CategoryOf(role) != CategoryPresentational || tag == "iframe" {
		if title := dom.AttrOr(el, "title"); !isBlank(title) {
			return title
		}
	}
	return ""
}

// embeddedControlValue is the text an embedded control contributes to the
// name of an element that contains or references it.
func (c *Computer) embeddedControlValue(el *html.Node, role string, childCtx nameContext) (string, bool) {
	switch CategoryOf(role) {
	case CategoryTextbox:
		if el.Data == "input" || el.Data == "textarea" {
			return c.doc.Value(el), true
		}
		return dom.TextContent(el), true
	case CategoryChoice:
		var selected []*html.Node
		if el.Data == "select" {
			selected = c.doc.SelectedOptions(el)
			if len(selected) == 0 {
				if opts := c.doc.Options(el); len(opts) > 0 {
					selected = opts[:1]
				}
			}
		} else {
			listbox := el
			if role == "combobox" {
				listbox = nil
				for _, n := range c.ariaOwnedElements(el) {
					if c.Role(n) == "listbox" {
						listbox = n
						break
					}
				}
			}
			if listbox != nil {
				for _, n := range c.ariaOwnedElements(listbox) {
					if dom.AttrOr(n, "aria-selected") == "true" && c.Role(n) == "option" {
						selected = append(selected, n)
					}
				}
			}
		}
		if len(selected) == 0 && el.Data == "input" {
			return c.doc.Value(el), true
		}
		parts := make([]string, 0, len(selected))
		for _, opt := range selected {
			parts = append(parts, c.computeNameInternal(opt, childCtx))
		}
		return strings.Join(parts, " "), true
	case CategoryRange:
		return rangeValue(el), true
	case CategoryMenu:
		return "", true
	}
	return "", false
}

// ariaOwnedElements returns the element descendants of el followed by the
// descendants of the elements it owns through aria-owns.
func (c *Computer) ariaOwnedElements(el *html.Node) []*html.Node {
	out := dom.Elements(el)
	for _, owned := range c.doc.ElementsByIDRefs(el, dom.AttrOr(el, "aria-owns")) {
		out = append(out, owned)
		out = append(out, dom.Elements(owned)...)
	}
	return out
}

// nativeTextAlternative applies the tag-specific naming rules. ok is false
// when el should fall through to name from content.
func (c *Computer) nativeTextAlternative(el *html.Node, ctx, childCtx nameContext, hasLabelledBy bool) (string, bool) {
	mark := func(s string) (string, bool) {
		ctx.visited[el] = true
		return s, true
	}
	viaLabel := ctx.label != nil || ctx.labelledBy != nil

	switch el.Data {
	case "input":
		switch typ := InputType(el); typ {
		case "button", "submit", "reset":
			if v := c.doc.Value(el); !isBlank(v) {
				return mark(v)
			}
			switch typ {
			case "submit":
				return mark("Submit")
			case "reset":
				return mark("Reset")
			}
			return mark(dom.AttrOr(el, "title"))
		case "file":
			if labels := c.doc.Labels(el); len(labels) > 0 && !viaLabel {
				return mark(c.referencesText(labels, ctx, refLabel))
			}
			return mark("Choose File")
		case "image":
			if labels := c.doc.Labels(el); len(labels) > 0 && !viaLabel {
				return mark(c.referencesText(labels, ctx, refLabel))
			}
			if alt := dom.AttrOr(el, "alt"); !isBlank(alt) {
				return mark(alt)
			}
			if title := dom.AttrOr(el, "title"); !isBlank(title) {
				return mark(title)
			}
			return mark("Submit")
		}
	case "button":
		if !hasLabelledBy && !viaLabel {
			if labels := c.doc.Labels(el); len(labels) > 0 {
				return mark(c.referencesText(labels, ctx, refLabel))
			}
		}
		return "", false
	case "output":
		if hasLabelledBy {
			return "", false
		}
		if labels := c.doc.Labels(el); len(labels) > 0 && !viaLabel {
			return mark(c.referencesText(labels, ctx, refLabel))
		}
		return mark(dom.AttrOr(el, "title"))
	case "fieldset":
		if !hasLabelledBy {
			return c.childAlternative(el, "legend", ctx, childCtx)
		}
	case "figure":
		if !hasLabelledBy {
			return c.childAlternative(el, "figcaption", ctx, childCtx)
		}
	case "img", "area":
		if alt := dom.AttrOr(el, "alt"); !isBlank(alt) {
			return mark(alt)
		}
		return mark(dom.AttrOr(el, "title"))
	case "table":
		ctx.visited[el] = true
		if caption := firstChildElement(el, "caption"); caption != nil {
			return c.computeNameInternal(caption, withNativeAlt(childCtx, caption, c.IsHidden(caption))), true
		}
		if summary := dom.AttrOr(el, "summary"); summary != "" {
			return summary, true
		}
		return "", false
	case "svg":
		ctx.visited[el] = true
		if title := firstChildElement(el, "title"); title != nil {
			nested := childCtx
			nested.includeHidden = true
			nested.labelledBy = &embedding{el: title, hidden: c.IsHidden(title)}
			return c.computeNameInternal(title, nested), true
		}
		return "", false
	}

	if el.Data == "textarea" || el.Data == "select" || el.Data == "input" {
		if hasLabelledBy {
			return "", false
		}
		if !viaLabel {
			if labels := c.doc.Labels(el); len(labels) > 0 {
				return mark(c.referencesText(labels, ctx, refLabel))
			}
		}
		usePlaceholder := el.Data == "textarea"
		if el.Data == "input" {
			switch InputType(el) {
			case "text", "password", "search", "tel", "email", "url":
				usePlaceholder = true
			}
		}
		title := dom.AttrOr(el, "title")
		if !usePlaceholder || title != "" {
			return mark(title)
		}
		return mark(dom.AttrOr(el, "placeholder"))
	}
	return "", false
}

// childAlternative names el from its first child of the given tag, or from
// its title when it has none.
func (c *Computer) childAlternative(el *html.Node, tag string, ctx, childCtx nameContext) (string, bool) {
	ctx.visited[el] = true
	if ch := firstChildElement(el, tag); ch != nil {
		return c.computeNameInternal(ch, withNativeAlt(childCtx, ch, c.IsHidden(ch))), true
	}
	return dom.AttrOr(el, "title"), true
}

func withNativeAlt(ctx nameContext, el *html.Node, hidden bool) nameContext {
	ctx.nativeAlt = &embedding{el: el, hidden: hidden}
	return ctx
}

// contentText assembles name from content: ::before, the element's content
// replacement or its flat-tree children and aria-owns targets, ::after.
func (c *Computer) contentText(el *html.Node, ctx nameContext) string {
	var sb strings.Builder
	if s, ok := c.doc.ComputedStyle(el, "before").Content(); ok {
		sb.WriteString(s)
	}
	if s, ok := c.doc.ComputedStyle(el, "").Content(); ok {
		sb.WriteString(s)
	} else {
		visit := func(n *html.Node, skipSlotted bool) {
			if skipSlotted && c.doc.AssignedSlot(n) != nil {
				return
			}
			switch n.Type {
			case html.ElementNode:
				token := c.computeNameInternal(n, ctx)
				if c.doc.ComputedStyle(n, "").Display() != "inline" || n.Data == "br" {
					token = " " + token + " "
				}
				sb.WriteString(token)
			case html.TextNode:
				sb.WriteString(n.Data)
			}
		}
		var assigned []*html.Node
		if el.Data == "slot" {
			assigned = c.doc.AssignedNodes(el)
		}
		if len(assigned) > 0 {
			for _, n := range assigned {
				visit(n, false)
			}
		} else {
			for n := el.FirstChild; n != nil; n = n.NextSibling {
				visit(n, true)
			}
			if sr := c.doc.ShadowRoot(el); sr != nil {
				for n := sr.FirstChild; n != nil; n = n.NextSibling {
					visit(n, true)
				}
			}
			for _, owned := range c.doc.ElementsByIDRefs(el, dom.AttrOr(el, "aria-owns")) {
				visit(owned, true)
			}
		}
	}
	if s, ok := c.doc.ComputedStyle(el, "after").Content(); ok {
		sb.WriteString(s)
	}
	return sb.String()
}

func firstChildElement(el *html.Node, tag string) *html.Node {
	for ch := el.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode && ch.Data == tag {
			return ch
		}
	}
	return nil
}

func containsNode(nodes []*html.Node, n *html.Node) bool {
	for _, x := range nodes {
		if x == n {
			return true
		}
	}
	return false
}
