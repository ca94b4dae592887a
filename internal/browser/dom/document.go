// internal/browser/dom/document.go
package dom

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xkilldash9x/scalpel-introspect/internal/browser/layout"
	"github.com/xkilldash9x/scalpel-introspect/internal/browser/shadowdom"
	"github.com/xkilldash9x/scalpel-introspect/internal/browser/style"
	"github.com/xkilldash9x/scalpel-introspect/internal/cache"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// ErrNotElement is returned by operations that require an element node.
var ErrNotElement = errors.New("node is not an element")

// Document hosts a parsed page: its shadow roots, styles, layout, live form
// state and focus. It is not safe for concurrent use.
type Document struct {
	root    *html.Node
	logger  *zap.Logger
	session *cache.Session

	shadow    *shadowdom.Engine
	forest    *shadowdom.Forest
	styles    *style.Engine
	styleMemo *cache.StyleCache
	layout    *layout.Engine
	result    *layout.Result

	viewportWidth, viewportHeight float64
	userAgentCSS                  string

	templates map[*html.Node]*html.Node
	ids       map[*html.Node]map[string]*html.Node
	state     map[*html.Node]*controlState
	focused   *html.Node
}

// Option configures a Document.
type Option func(*Document)

// WithViewport sets the viewport used for layout and viewport units.
func WithViewport(width, height float64) Option {
	return func(d *Document) {
		if width > 0 && height > 0 {
			d.viewportWidth, d.viewportHeight = width, height
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithUserAgentCSS appends css to the default user agent stylesheet.
func WithUserAgentCSS(css string) Option {
	return func(d *Document) { d.userAgentCSS = css }
}

// WithCacheSession shares a cache session with other components, so style
// lookups are memoized while that session is active.
func WithCacheSession(s *cache.Session) Option {
	return func(d *Document) {
		if s != nil {
			d.session = s
		}
	}
}

// Parse reads an HTML document and prepares it for introspection.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return NewDocument(root, opts...), nil
}

// ParseString is Parse for an in-memory document.
func ParseString(markup string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(markup), opts...)
}

// NewDocument wraps an already parsed tree. Declarative shadow roots are
// instantiated and <template> contents are moved out of the tree.
func NewDocument(root *html.Node, opts ...Option) *Document {
	d := &Document{
		root:           root,
		logger:         zap.NewNop(),
		viewportWidth:  1280,
		viewportHeight: 720,
		templates:      make(map[*html.Node]*html.Node),
		state:          make(map[*html.Node]*controlState),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.session == nil {
		d.session = cache.NewSession()
	}
	d.logger = d.logger.Named("dom")

	d.shadow = shadowdom.NewEngine(d.logger)
	d.forest = d.shadow.Attach(root)
	d.extractTemplates(root)
	for _, r := range d.forest.Roots() {
		d.extractTemplates(r.Node)
	}

	d.styles = style.NewEngine(d, d.logger, d.userAgentCSS)
	d.styles.SetViewport(d.viewportWidth, d.viewportHeight)
	d.styleMemo = cache.NewStyleCache(d.session, d.styles.Compute)
	d.layout = layout.NewEngine(d.styles, d, d.viewportWidth, d.viewportHeight, d.logger)
	d.loadStyleSheets()
	d.focused = d.initialFocus()
	return d
}

// extractTemplates moves the children of inert <template> elements into
// detached fragments, as a browser keeps them in template.content.
func (d *Document) extractTemplates(scope *html.Node) {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type != html.ElementNode || n.Data != "template" || n.Namespace != "" {
			return
		}
		frag := &html.Node{Type: html.DocumentNode, Data: "#document-fragment"}
		for c := n.FirstChild; c != nil; {
			next := c.NextSibling
			n.RemoveChild(c)
			frag.AppendChild(c)
			c = next
		}
		d.templates[n] = frag
	}
	walk(scope)
}

func (d *Document) loadStyleSheets() {
	d.styles.ClearSheets()
	for _, sheet := range shadowdom.CollectStyleSheets(d.root) {
		d.styles.AddScopedSheet(d.root, sheet)
	}
	for _, r := range d.forest.Roots() {
		for _, sheet := range shadowdom.CollectStyleSheets(r.Node) {
			d.styles.AddScopedSheet(r.Node, sheet)
		}
	}
}

// Invalidate discards derived state after the tree or its attributes were
// mutated: styles, layout, slot assignment and id lookup tables.
func (d *Document) Invalidate() {
	d.forest.Reassign()
	d.loadStyleSheets()
	d.result = nil
	d.ids = nil
	if d.focused != nil && !d.isConnected(d.focused) {
		d.focused = nil
	}
}

// Root returns the document node.
func (d *Document) Root() *html.Node { return d.root }

// Session returns the cache session the document memoizes styles in.
func (d *Document) Session() *cache.Session { return d.session }

func (d *Document) Logger() *zap.Logger { return d.logger }

// Body returns the <body> element, or nil.
func (d *Document) Body() *html.Node {
	var found *html.Node
	walkElements(d.root, func(n *html.Node) bool {
		if n.Data == "body" {
			found = n
			return false
		}
		return true
	})
	return found
}

// TemplateContent returns the detached content of a <template> element.
func (d *Document) TemplateContent(tmpl *html.Node) *html.Node { return d.templates[tmpl] }

// -- Shadow DOM --

// ShadowRoot returns the shadow root hosted by el, or nil.
func (d *Document) ShadowRoot(el *html.Node) *html.Node { return d.forest.ShadowRoot(el) }

// ShadowRoots returns every shadow root node in attachment order.
func (d *Document) ShadowRoots() []*html.Node {
	roots := d.forest.Roots()
	out := make([]*html.Node, 0, len(roots))
	for _, r := range roots {
		out = append(out, r.Node)
	}
	return out
}

// Host returns the host element of a shadow root node, or nil.
func (d *Document) Host(root *html.Node) *html.Node { return d.forest.Host(root) }

// IsShadowRoot reports whether n is a shadow root node.
func (d *Document) IsShadowRoot(n *html.Node) bool {
	_, ok := d.forest.Root(n)
	return ok
}

// AttachShadow gives host an empty shadow root. Populate it, then call
// Invalidate.
func (d *Document) AttachShadow(host *html.Node, mode string) (*html.Node, error) {
	r, err := d.shadow.AttachShadow(d.forest, host, mode)
	if err != nil {
		return nil, err
	}
	return r.Node, nil
}

// AssignedNodes returns the nodes assigned to a slot.
func (d *Document) AssignedNodes(slot *html.Node) []*html.Node { return d.forest.AssignedNodes(slot) }

// AssignedSlot returns the slot n is assigned to, or nil.
func (d *Document) AssignedSlot(n *html.Node) *html.Node { return d.forest.AssignedSlot(n) }

// -- Tree navigation --

// RootOf returns the document or shadow root containing n.
func (d *Document) RootOf(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// ParentElementOrShadowHost returns the parent element of n, crossing a
// shadow boundary to the host.
func (d *Document) ParentElementOrShadowHost(n *html.Node) *html.Node {
	p := n.Parent
	if p == nil {
		return d.Host(n)
	}
	if p.Type == html.ElementNode {
		return p
	}
	if p.Type == html.DocumentNode {
		return d.Host(p)
	}
	return nil
}

// ComposedContains reports whether n is ancestor or a descendant of it in
// the composed tree.
func (d *Document) ComposedContains(ancestor, n *html.Node) bool {
	for ; n != nil; n = d.ParentElementOrShadowHost(n) {
		if n == ancestor {
			return true
		}
	}
	return false
}

// RenderedChildren returns n's children in the flat tree: a shadow host
// renders its shadow root, a slot its assigned nodes or fallback content.
func (d *Document) RenderedChildren(n *html.Node) []*html.Node {
	if n.Type == html.ElementNode {
		if sr := d.ShadowRoot(n); sr != nil {
			return Children(sr)
		}
		if n.Data == "slot" && d.IsShadowRoot(d.RootOf(n)) {
			if assigned := d.AssignedNodes(n); len(assigned) > 0 {
				return assigned
			}
		}
		if n.Data == "details" && !HasAttr(n, "open") {
			if s := DetailsSummary(n); s != nil {
				return []*html.Node{s}
			}
			return nil
		}
	}
	return Children(n)
}

// DetailsSummary returns the first <summary> child of a <details>, the only
// content rendered while it is closed.
func DetailsSummary(details *html.Node) *html.Node {
	for c := details.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "summary" {
			return c
		}
	}
	return nil
}

// StyleParent returns the flat-tree parent element that n inherits from.
func (d *Document) StyleParent(n *html.Node) *html.Node {
	if slot := d.AssignedSlot(n); slot != nil {
		return slot
	}
	return d.ParentElementOrShadowHost(n)
}

// Scope returns the tree scope whose stylesheets apply to n.
func (d *Document) Scope(n *html.Node) *html.Node { return d.RootOf(n) }

func (d *Document) isConnected(n *html.Node) bool {
	for {
		r := d.RootOf(n)
		if r == d.root {
			return true
		}
		host := d.Host(r)
		if host == nil {
			return false
		}
		n = host
	}
}

// ElementByID returns the first element with the id inside scope (a
// document or shadow root), or nil.
func (d *Document) ElementByID(scope *html.Node, id string) *html.Node {
	if id == "" {
		return nil
	}
	if d.ids == nil {
		d.ids = make(map[*html.Node]map[string]*html.Node)
	}
	table, ok := d.ids[scope]
	if !ok {
		table = make(map[string]*html.Node)
		walkElements(scope, func(n *html.Node) bool {
			if v, ok := Attr(n, "id"); ok {
				if _, seen := table[v]; !seen {
					table[v] = n
				}
			}
			return true
		})
		d.ids[scope] = table
	}
	return table[id]
}

// ElementsByIDRefs resolves a space-separated IDREF list in the tree scope
// of el. Unresolved references are skipped.
func (d *Document) ElementsByIDRefs(el *html.Node, refs string) []*html.Node {
	scope := d.RootOf(el)
	var out []*html.Node
	for _, id := range strings.Fields(refs) {
		if target := d.ElementByID(scope, id); target != nil {
			out = append(out, target)
		}
	}
	return out
}

// Labels returns the <label> elements whose labeled control is el, in
// document order.
func (d *Document) Labels(el *html.Node) []*html.Node {
	if !IsLabelable(el) {
		return nil
	}
	var out []*html.Node
	walkElements(d.RootOf(el), func(n *html.Node) bool {
		if n.Data == "label" && d.LabelControl(n) == el {
			out = append(out, n)
		}
		return true
	})
	return out
}

// LabelControl returns the control a <label> labels: the element named by
// its for attribute, or else its first labelable descendant.
func (d *Document) LabelControl(label *html.Node) *html.Node {
	if v, ok := Attr(label, "for"); ok {
		target := d.ElementByID(d.RootOf(label), v)
		if target != nil && IsLabelable(target) {
			return target
		}
		return nil
	}
	var found *html.Node
	walkElements(label, func(n *html.Node) bool {
		if n != label && IsLabelable(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// -- Node helpers --

// Children returns the child nodes of n.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool { return n != nil && n.Type == html.ElementNode }

// Attr returns an attribute value. HTML attribute names are matched
// case-insensitively.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns an attribute value or "" when absent.
func AttrOr(n *html.Node, key string) string {
	v, _ := Attr(n, key)
	return v
}

// HasAttr reports whether n carries the attribute.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// SetAttr sets or adds an attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// IsLabelable reports whether el can be associated with a <label>.
func IsLabelable(el *html.Node) bool {
	if !IsElement(el) {
		return false
	}
	switch el.Data {
	case "button", "meter", "output", "progress", "select", "textarea":
		return true
	case "input":
		return !strings.EqualFold(AttrOr(el, "type"), "hidden")
	}
	return false
}

// TextContent returns the concatenated text of n's light-DOM descendants.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				sb.WriteString(c.Data)
			case html.ElementNode:
				walk(c)
			}
		}
	}
	walk(n)
	return sb.String()
}

// walkElements visits the elements below n in document order, n included
// when it is an element. Returning false stops the walk.
func walkElements(n *html.Node, visit func(*html.Node) bool) bool {
	if n.Type == html.ElementNode && !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walkElements(c, visit) {
			return false
		}
	}
	return true
}

// Elements returns every element below n in document order, without
// crossing into shadow roots.
func Elements(n *html.Node) []*html.Node {
	var out []*html.Node
	walkElements(n, func(el *html.Node) bool {
		out = append(out, el)
		return true
	})
	return out
}
