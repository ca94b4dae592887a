// internal/browser/shadowdom/shadow.go
package shadowdom

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/scalpel-introspect/internal/browser/parser"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// RootData marks the DocumentNode that stands in for a shadow root. Its
// Parent is always nil; the host is found through the Forest.
const RootData = "#shadow-root"

// Root is one instantiated shadow tree.
type Root struct {
	Node   *html.Node
	Host   *html.Node
	Mode   string
	Sheets []parser.StyleSheet
}

// Engine instantiates declarative shadow roots and computes slot assignment.
type Engine struct {
	logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger.Named("shadowdom")}
}

// DetectShadowHost reports whether node's first element child is a
// <template shadowrootmode> declaration.
func (e *Engine) DetectShadowHost(node *html.Node) bool {
	return declarativeTemplate(node) != nil
}

func declarativeTemplate(node *html.Node) *html.Node {
	if node == nil || node.Type != html.ElementNode {
		return nil
	}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.Data == "template" {
			mode := strings.ToLower(getAttr(c, "shadowrootmode"))
			if mode == "open" || mode == "closed" {
				return c
			}
		}
		return nil
	}
	return nil
}

// InstantiateShadowRoot moves the declarative template's content into a new
// shadow root and removes the template from the host. Stylesheets declared by
// <style> elements inside the shadow tree are returned; the elements stay in
// place.
func (e *Engine) InstantiateShadowRoot(host *html.Node) (*html.Node, []parser.StyleSheet) {
	tmpl := declarativeTemplate(host)
	if tmpl == nil {
		return nil, nil
	}
	root := newRootNode(strings.ToLower(getAttr(tmpl, "shadowrootmode")))
	for c := tmpl.FirstChild; c != nil; {
		next := c.NextSibling
		tmpl.RemoveChild(c)
		root.AppendChild(c)
		c = next
	}
	host.RemoveChild(tmpl)
	return root, CollectStyleSheets(root)
}

func newRootNode(mode string) *html.Node {
	return &html.Node{
		Type: html.DocumentNode,
		Data: RootData,
		Attr: []html.Attribute{{Key: "mode", Val: mode}},
	}
}

// CollectStyleSheets parses every <style> element of one tree scope. It does
// not descend into nested shadow roots, which are detached nodes.
func CollectStyleSheets(scope *html.Node) []parser.StyleSheet {
	var sheets []parser.StyleSheet
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "style" {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
			sheets = append(sheets, parser.NewParser(sb.String()).Parse())
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(scope)
	return sheets
}

// Forest tracks every shadow root of a document together with slot
// assignment.
type Forest struct {
	roots    []*Root
	byHost   map[*html.Node]*Root
	byNode   map[*html.Node]*Root
	assigned map[*html.Node][]*html.Node
	slotOf   map[*html.Node]*html.Node
}

func newForest() *Forest {
	return &Forest{
		byHost:   make(map[*html.Node]*Root),
		byNode:   make(map[*html.Node]*Root),
		assigned: make(map[*html.Node][]*html.Node),
		slotOf:   make(map[*html.Node]*html.Node),
	}
}

// Attach instantiates all declarative shadow roots under doc, including ones
// nested inside other shadow trees, and assigns slots.
func (e *Engine) Attach(doc *html.Node) *Forest {
	f := newForest()
	e.attachTree(f, doc)
	f.Reassign()
	e.logger.Debug("Attached shadow roots", zap.Int("count", len(f.roots)))
	return f
}

func (e *Engine) attachTree(f *Forest, scope *html.Node) {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && e.DetectShadowHost(n) {
			if _, exists := f.byHost[n]; !exists {
				mode := strings.ToLower(getAttr(declarativeTemplate(n), "shadowrootmode"))
				node, sheets := e.InstantiateShadowRoot(n)
				f.add(&Root{Node: node, Host: n, Mode: mode, Sheets: sheets})
				e.attachTree(f, node)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(scope)
}

// AttachShadow creates an empty shadow root on host, as element.attachShadow
// would. Callers populate Root.Node and then call Reassign.
func (e *Engine) AttachShadow(f *Forest, host *html.Node, mode string) (*Root, error) {
	if host == nil || host.Type != html.ElementNode {
		return nil, fmt.Errorf("shadow host must be an element")
	}
	if _, exists := f.byHost[host]; exists {
		return nil, fmt.Errorf("element <%s> already hosts a shadow root", host.Data)
	}
	root := &Root{Node: newRootNode(mode), Host: host, Mode: mode}
	f.add(root)
	return root, nil
}

func (f *Forest) add(r *Root) {
	f.roots = append(f.roots, r)
	f.byHost[r.Host] = r
	f.byNode[r.Node] = r
}

// Roots returns the shadow roots in attachment order.
func (f *Forest) Roots() []*Root { return f.roots }

// ShadowRoot returns the shadow root node hosted by el, or nil.
func (f *Forest) ShadowRoot(el *html.Node) *html.Node {
	if r, ok := f.byHost[el]; ok {
		return r.Node
	}
	return nil
}

// Host returns the host of a shadow root node, or nil.
func (f *Forest) Host(root *html.Node) *html.Node {
	if r, ok := f.byNode[root]; ok {
		return r.Host
	}
	return nil
}

// Root returns the Root record for a shadow root node.
func (f *Forest) Root(node *html.Node) (*Root, bool) {
	r, ok := f.byNode[node]
	return r, ok
}

// AssignedNodes returns the light-DOM nodes assigned to a slot.
func (f *Forest) AssignedNodes(slot *html.Node) []*html.Node { return f.assigned[slot] }

// AssignedSlot returns the slot a light-DOM node is assigned to, or nil.
func (f *Forest) AssignedSlot(n *html.Node) *html.Node { return f.slotOf[n] }

// Reassign recomputes slot assignment for every shadow root. Call after the
// host's children or slot attributes change.
func (f *Forest) Reassign() {
	f.assigned = make(map[*html.Node][]*html.Node)
	f.slotOf = make(map[*html.Node]*html.Node)
	for _, r := range f.roots {
		f.assignSlots(r)
	}
}

func (f *Forest) assignSlots(r *Root) {
	named := make(map[string]*html.Node)
	var defaultSlot *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "slot" {
			name := getAttr(n, "name")
			if name == "" {
				if defaultSlot == nil {
					defaultSlot = n
				}
			} else if _, seen := named[name]; !seen {
				named[name] = n
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(r.Node)

	for c := r.Host.FirstChild; c != nil; c = c.NextSibling {
		var slot *html.Node
		switch c.Type {
		case html.ElementNode:
			if name := getAttr(c, "slot"); name != "" {
				slot = named[name]
			} else {
				slot = defaultSlot
			}
		case html.TextNode:
			slot = defaultSlot
		}
		if slot == nil {
			continue
		}
		f.assigned[slot] = append(f.assigned[slot], c)
		f.slotOf[c] = slot
	}
}

// getAttr retrieves an attribute value case-insensitively.
func getAttr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
