// internal/snapshot/aria_tree.go
package snapshot

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xkilldash9x/scalpel-introspect/internal/aria"
	"github.com/xkilldash9x/scalpel-introspect/internal/browser/dom"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Builder generates accessibility tree snapshots of one document.
type Builder struct {
	aria   *aria.Computer
	doc    *dom.Document
	refs   RefRegistry
	logger *zap.Logger
}

// NewBuilder creates a Builder. A nil refs gets an in-memory registry; a nil
// logger is replaced by a no-op logger.
func NewBuilder(c *aria.Computer, refs RefRegistry, logger *zap.Logger) *Builder {
	if refs == nil {
		refs = NewMemoryRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{aria: c, doc: c.Document(), refs: refs, logger: logger.Named("snapshot")}
}

// Refs returns the registry the builder assigns ids from.
func (b *Builder) Refs() RefRegistry { return b.refs }

// GenerateAriaTree builds the nested accessibility tree rooted at root. Ids
// issued by earlier calls are invalidated.
func (b *Builder) GenerateAriaTree(ctx context.Context, root *html.Node, opts AriaOptions) (*AriaSnapshot, error) {
	if root == nil {
		return nil, fmt.Errorf("generate aria tree: %w", dom.ErrNotElement)
	}
	opts = opts.withDefaults()
	snap := &AriaSnapshot{
		ID:       uuid.NewString(),
		Root:     &AccessibilityNode{Role: "fragment", Element: root},
		Elements: make(map[string]*html.Node),
		Refs:     make(map[*html.Node]string),
	}
	t := &ariaWalk{b: b, ctx: ctx, opts: opts, snap: snap, visited: make(map[*html.Node]bool)}

	err := b.doc.Session().RunContext(ctx, func(context.Context) error {
		b.refs.Clear()
		if root.Type == html.DocumentNode || b.doc.IsShadowRoot(root) {
			for c := root.FirstChild; c != nil; c = c.NextSibling {
				if err := t.visit(snap.Root, c, true); err != nil {
					return err
				}
			}
			return nil
		}
		return t.visit(snap.Root, root, true)
	})
	if err != nil {
		return nil, fmt.Errorf("generate aria tree: %w", err)
	}

	normalizeStringChildren(snap.Root)
	if opts.FoldGeneric {
		foldGeneric(snap.Root)
	}
	b.logger.Debug("Generated aria tree.", zap.String("snapshot_id", snap.ID), zap.Int("refs", len(snap.Elements)))
	return snap, nil
}

type ariaWalk struct {
	b       *Builder
	ctx     context.Context
	opts    AriaOptions
	snap    *AriaSnapshot
	visited map[*html.Node]bool
}

func (t *ariaWalk) visit(parent *AccessibilityNode, n *html.Node, parentVisible bool) error {
	if t.visited[n] {
		return nil
	}
	t.visited[n] = true

	switch n.Type {
	case html.TextNode:
		// A textbox exposes its value, not its content.
		if parentVisible && parent.Role != "textbox" && n.Data != "" {
			parent.Children = append(parent.Children, TextChild(n.Data))
		}
		return nil
	case html.ElementNode:
	default:
		return nil
	}
	if err := t.ctx.Err(); err != nil {
		return err
	}

	c := t.b.aria
	visible := !c.IsHidden(n)
	switch t.opts.Visibility {
	case VisibilityAria:
		if !visible {
			return nil
		}
	case VisibilityAriaOrVisible:
		visible = visible || t.b.doc.IsVisible(n)
	case VisibilityAriaAndVisible:
		visible = visible && t.b.doc.IsVisible(n)
	}

	target := parent
	if visible {
		if node := t.toNode(n); node != nil {
			if node.Ref != "" {
				t.snap.Elements[node.Ref] = n
				t.snap.Refs[n] = node.Ref
			}
			parent.Children = append(parent.Children, NodeChild(node))
			target = node
		}
	}
	return t.process(target, n, visible)
}

func (t *ariaWalk) process(node *AccessibilityNode, el *html.Node, visible bool) error {
	doc := t.b.doc
	spacing := t.opts.BlockSpacing && (doc.ComputedStyle(el, "").Display() != "inline" || el.Data == "br")
	if spacing {
		node.Children = append(node.Children, TextChild(" "))
	}
	if s, ok := doc.ComputedStyle(el, "before").Content(); ok {
		node.Children = append(node.Children, TextChild(s))
	}

	var assigned []*html.Node
	if el.Data == "slot" {
		assigned = doc.AssignedNodes(el)
	}
	if len(assigned) > 0 {
		for _, n := range assigned {
			if err := t.visit(node, n, visible); err != nil {
				return err
			}
		}
	} else {
		for n := el.FirstChild; n != nil; n = n.NextSibling {
			if doc.AssignedSlot(n) != nil {
				continue
			}
			if err := t.visit(node, n, visible); err != nil {
				return err
			}
		}
		if sr := doc.ShadowRoot(el); sr != nil {
			for n := sr.FirstChild; n != nil; n = n.NextSibling {
				if err := t.visit(node, n, visible); err != nil {
					return err
				}
			}
		}
	}
	for _, owned := range doc.ElementsByIDRefs(el, dom.AttrOr(el, "aria-owns")) {
		if err := t.visit(node, owned, visible); err != nil {
			return err
		}
	}

	if s, ok := doc.ComputedStyle(el, "after").Content(); ok {
		node.Children = append(node.Children, TextChild(s))
	}
	if spacing {
		node.Children = append(node.Children, TextChild(" "))
	}

	if node.Element == el {
		if node.Role == "link" {
			if href, ok := dom.Attr(el, "href"); ok {
				node.URL = href
			}
		}
		if node.Role == "textbox" {
			if ph, ok := dom.Attr(el, "placeholder"); ok && ph != node.Name {
				node.Placeholder = ph
			}
		}
	}
	return nil
}

// toNode creates the node for a visible element, or nil when the element
// is not exposed as its own node.
func (t *ariaWalk) toNode(el *html.Node) *AccessibilityNode {
	c := t.b.aria
	doc := t.b.doc

	role := c.Role(el)
	if role == "" && t.opts.IncludeGeneric {
		role = "generic"
	}
	if role == "" || aria.CategoryOf(role) == aria.CategoryPresentational {
		return nil
	}
	box := computeBox(doc, el)
	if role == "generic" && box.Inline && el.FirstChild != nil && el.FirstChild == el.LastChild && el.FirstChild.Type == html.TextNode {
		return nil
	}

	node := &AccessibilityNode{
		Role:        role,
		Name:        aria.NormalizeWhitespace(c.AccessibleName(el, false)),
		Tag:         el.Data,
		Element:     el,
		Focused:     doc.ActiveElement() == el,
		Invalid:     c.Invalid(el),
		Required:    c.Required(el),
		Busy:        c.Busy(el),
		Current:     c.Current(el),
		Description: c.AccessibleDescription(el, false),
	}
	if t.opts.IncludeBox {
		node.Box = &box
	}
	if t.opts.IncludeCursor {
		node.Cursor = doc.Cursor(el)
	}
	if t.opts.IncludePointerEvents {
		reach := doc.ReceivesPointerEvents(el)
		node.ReceivesPointerEvents = &reach
	}

	switch t.opts.Refs {
	case RefsAll:
		node.Ref = t.b.refs.Assign(el)
	case RefsInteractable:
		if c.IsInteractive(el) {
			node.Ref = t.b.refs.Assign(el)
		}
	}

	if aria.CheckedRoles[role] {
		if st, ok := c.Checked(el); ok {
			node.Checked = st.String()
		}
	}
	if aria.DisabledRoles[role] {
		node.Disabled = c.Disabled(el)
	}
	if aria.ExpandedRoles[role] || el.Data == "details" {
		if exp, ok := c.Expanded(el); ok {
			node.Expanded = &exp
		}
	}
	if aria.LevelRoles[role] {
		node.Level = c.Level(el)
	}
	if aria.PressedRoles[role] {
		if st, ok := c.Pressed(el); ok && st != aria.False {
			node.Pressed = st.String()
		}
	}
	if aria.SelectedRoles[role] {
		node.Selected = c.Selected(el)
	}

	switch {
	case aria.CategoryOf(role) == aria.CategoryRange:
		node.Value = c.ValueText(el)
	case el.Data == "textarea":
		node.Children = []Child{TextChild(doc.Value(el))}
	case el.Data == "input":
		switch aria.InputType(el) {
		case "checkbox", "radio", "file":
		default:
			if !isButtonInput(el) {
				node.Children = []Child{TextChild(doc.Value(el))}
			}
		}
	}
	return node
}

func isButtonInput(el *html.Node) bool {
	switch aria.InputType(el) {
	case "submit", "reset", "button", "image":
		return true
	}
	return false
}

// computeBox reports whether el renders and whether it is inline. A
// display:contents element borrows visibility from its children.
func computeBox(doc *dom.Document, el *html.Node) Box {
	cs := doc.ComputedStyle(el, "")
	if cs.Display() == "contents" {
		for n := el.FirstChild; n != nil; n = n.NextSibling {
			switch n.Type {
			case html.ElementNode:
				if doc.IsVisible(n) {
					return Box{Visible: true}
				}
			case html.TextNode:
				if doc.IsVisibleTextNode(n) {
					return Box{Visible: true, Inline: true}
				}
			}
		}
		return Box{}
	}
	if !doc.IsStyleVisible(el) {
		return Box{}
	}
	box := Box{Inline: cs.Display() == "inline"}
	if rect, ok := doc.Box(el); ok {
		r := rect.Rounded()
		box.Rect = &r
		box.Visible = rect.Width > 0 && rect.Height > 0
	}
	return box
}

// normalizeStringChildren merges adjacent text fragments, collapses their
// whitespace and drops a lone text child that repeats the node's name.
func normalizeStringChildren(n *AccessibilityNode) {
	var out []Child
	var buf strings.Builder
	flush := func() {
		if text := aria.NormalizeWhitespace(buf.String()); text != "" {
			out = append(out, TextChild(text))
		}
		buf.Reset()
	}
	for _, ch := range n.Children {
		if ch.IsText() {
			buf.WriteString(ch.Text)
			continue
		}
		flush()
		normalizeStringChildren(ch.Node)
		out = append(out, ch)
	}
	flush()
	n.Children = out
	if len(out) == 1 && out[0].IsText() && out[0].Text == n.Name {
		n.Children = nil
	}
}

// foldGeneric replaces unnamed generic nodes that wrap at most one
// referenceable node by their children.
func foldGeneric(root *AccessibilityNode) {
	var fold func(n *AccessibilityNode) []Child
	fold = func(n *AccessibilityNode) []Child {
		var result []Child
		for _, ch := range n.Children {
			if ch.IsText() {
				result = append(result, ch)
				continue
			}
			result = append(result, fold(ch.Node)...)
		}
		if n.Role == "generic" && n.Name == "" && len(result) <= 1 && allReferenceable(result) {
			return result
		}
		n.Children = result
		return []Child{NodeChild(n)}
	}
	fold(root)
}

func allReferenceable(children []Child) bool {
	for _, ch := range children {
		if ch.IsText() || ch.Node.Ref == "" {
			return false
		}
	}
	return true
}
