// internal/browser/style/style.go
package style

import (
	"sort"
	"strconv"
	"strings"

	"github.com/xkilldash9x/scalpel-introspect/internal/browser/parser"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Tree abstracts the flattened-tree relationships the cascade needs, so the
// engine stays decoupled from the shadow DOM host.
type Tree interface {
	// StyleParent returns the element whose computed style el inherits from,
	// or nil for the root element.
	StyleParent(el *html.Node) *html.Node
	// Scope returns the document or shadow root whose stylesheets apply to el.
	Scope(el *html.Node) *html.Node
}

const (
	BaseFontSize      = 16.0 // Default root font size.
	DefaultLineHeight = 1.2  // Multiplier for 'line-height: normal'.
)

// inherited lists the properties that flow from parent to child when unset.
var inherited = map[string]bool{
	"color": true, "font-family": true, "font-size": true, "font-weight": true,
	"font-style": true, "line-height": true, "text-align": true, "visibility": true,
	"cursor": true, "pointer-events": true, "white-space": true, "direction": true,
	"list-style-type": true,
}

// Engine computes styles for elements of a single document. Results are
// memoized until Reset is called.
type Engine struct {
	userAgentSheets []parser.StyleSheet
	scopedSheets    map[*html.Node][]parser.StyleSheet
	tree            Tree
	viewportWidth   float64
	viewportHeight  float64
	logger          *zap.Logger

	computed map[styleKey]*ComputedStyle
}

type styleKey struct {
	node   *html.Node
	pseudo string
}

// NewEngine creates a styling engine with the default user agent sheet plus
// any extra user agent CSS.
func NewEngine(tree Tree, logger *zap.Logger, extraUserAgentCSS ...string) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	se := &Engine{
		tree:           tree,
		scopedSheets:   make(map[*html.Node][]parser.StyleSheet),
		viewportWidth:  1280,
		viewportHeight: 720,
		logger:         logger.Named("style"),
		computed:       make(map[styleKey]*ComputedStyle),
	}
	se.userAgentSheets = append(se.userAgentSheets, parser.NewParser(DefaultUserAgentCSS).Parse())
	for _, css := range extraUserAgentCSS {
		if strings.TrimSpace(css) != "" {
			se.userAgentSheets = append(se.userAgentSheets, parser.NewParser(css).Parse())
		}
	}
	return se
}

// AddScopedSheet adds an author stylesheet that applies to the elements of
// one tree scope (a document or a shadow root).
func (se *Engine) AddScopedSheet(scope *html.Node, sheet parser.StyleSheet) {
	if sheet.Skipped > 0 {
		se.logger.Debug("Dropped rules with unsupported selectors", zap.Int("count", sheet.Skipped))
	}
	se.scopedSheets[scope] = append(se.scopedSheets[scope], sheet)
	se.Reset()
}

// ClearSheets removes all author sheets.
func (se *Engine) ClearSheets() {
	se.scopedSheets = make(map[*html.Node][]parser.StyleSheet)
	se.Reset()
}

// SetViewport sets the dimensions used for viewport-relative units.
func (se *Engine) SetViewport(width, height float64) {
	se.viewportWidth = width
	se.viewportHeight = height
	se.Reset()
}

// Reset drops memoized styles after the document changed.
func (se *Engine) Reset() {
	se.computed = make(map[styleKey]*ComputedStyle)
}

// Compute returns the computed style of el, or of its ::before/::after
// pseudo-element when pseudo is "before" or "after". Non-element nodes get
// the style of their parent element.
func (se *Engine) Compute(el *html.Node, pseudo string) *ComputedStyle {
	if el == nil {
		return se.rootStyle()
	}
	if el.Type != html.ElementNode {
		return se.Compute(se.parentOf(el), "")
	}
	key := styleKey{node: el, pseudo: pseudo}
	if cs, ok := se.computed[key]; ok {
		return cs
	}

	var parentStyle *ComputedStyle
	if pseudo != "" {
		parentStyle = se.Compute(el, "")
	} else if p := se.parentOf(el); p != nil {
		parentStyle = se.Compute(p, "")
	} else {
		parentStyle = se.rootStyle()
	}

	declared := se.cascade(el, pseudo)
	cs := se.resolve(el, pseudo, declared, parentStyle)
	se.computed[key] = cs
	return cs
}

func (se *Engine) parentOf(el *html.Node) *html.Node {
	if se.tree != nil {
		return se.tree.StyleParent(el)
	}
	for p := el.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

func (se *Engine) scopeOf(el *html.Node) *html.Node {
	if se.tree != nil {
		return se.tree.Scope(el)
	}
	n := el
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

func (se *Engine) rootStyle() *ComputedStyle {
	return &ComputedStyle{
		props:          map[string]string{"font-size": formatPx(BaseFontSize)},
		fontSize:       BaseFontSize,
		viewportWidth:  se.viewportWidth,
		viewportHeight: se.viewportHeight,
	}
}

// -- The Cascade --

type StyleOrigin int

const (
	OriginUserAgent StyleOrigin = iota
	OriginAuthor
	OriginInline
)

type declarationWithContext struct {
	decl        parser.Declaration
	specificity [3]int
	origin      StyleOrigin
	order       int
}

func (se *Engine) cascade(el *html.Node, pseudo string) map[string]string {
	var declarations []declarationWithContext
	order := 0

	collect := func(sheets []parser.StyleSheet, origin StyleOrigin) {
		for _, sheet := range sheets {
			for _, rule := range sheet.Rules {
				best, matched := [3]int{}, false
				for _, sel := range rule.Selectors {
					if sel.PseudoElement() != pseudo || !sel.Match(el) {
						continue
					}
					spec := [3]int(sel.Specificity())
					if !matched || lessSpecific(best, spec) {
						best = spec
					}
					matched = true
				}
				if !matched {
					continue
				}
				for _, decl := range rule.Declarations {
					declarations = append(declarations, declarationWithContext{decl: decl, specificity: best, origin: origin, order: order})
					order++
				}
			}
		}
	}

	collect(se.userAgentSheets, OriginUserAgent)
	collect(se.scopedSheets[se.scopeOf(el)], OriginAuthor)

	if pseudo == "" {
		if styleAttr, ok := attr(el, "style"); ok {
			for _, decl := range parser.ParseDeclarations(styleAttr) {
				declarations = append(declarations, declarationWithContext{decl: decl, specificity: [3]int{1, 0, 0}, origin: OriginInline, order: order})
				order++
			}
		}
	}

	sort.SliceStable(declarations, func(i, j int) bool {
		d1, d2 := declarations[i], declarations[j]
		if p1, p2 := cascadePriority(d1), cascadePriority(d2); p1 != p2 {
			return p1 < p2
		}
		if d1.specificity != d2.specificity {
			return lessSpecific(d1.specificity, d2.specificity)
		}
		return d1.order < d2.order
	})

	styles := make(map[string]string)
	for _, d := range declarations {
		applyDeclaration(styles, d.decl.Property, d.decl.Value)
	}
	return styles
}

func lessSpecific(a, b [3]int) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func cascadePriority(d declarationWithContext) int {
	important := d.decl.Important
	switch d.origin {
	case OriginUserAgent:
		if important {
			return 5
		}
		return 1
	case OriginAuthor:
		if important {
			return 4
		}
		return 2
	case OriginInline:
		if important {
			return 4
		}
		return 3
	}
	return 0
}

// applyDeclaration stores a declaration, expanding the shorthands the layout
// engine reads. Applying in cascade order lets a later longhand override an
// earlier shorthand and vice versa.
func applyDeclaration(styles map[string]string, prop, value string) {
	switch prop {
	case "margin", "padding":
		expand1To4(styles, value, prop+"-top", prop+"-right", prop+"-bottom", prop+"-left")
	case "border-width":
		expand1To4(styles, value, "border-top-width", "border-right-width", "border-bottom-width", "border-left-width")
	case "border":
		width, borderStyle := "medium", "none"
		for _, part := range strings.Fields(value) {
			switch {
			case part == "thin" || part == "medium" || part == "thick" || (part[0] >= '0' && part[0] <= '9') || part[0] == '.':
				width = part
			case part == "solid" || part == "dashed" || part == "dotted" || part == "double" || part == "none" || part == "hidden":
				borderStyle = part
			}
		}
		if borderStyle == "none" || borderStyle == "hidden" {
			width = "0"
		}
		for _, side := range []string{"top", "right", "bottom", "left"} {
			styles["border-"+side+"-width"] = width
		}
	case "inset":
		expand1To4(styles, value, "top", "right", "bottom", "left")
	default:
		styles[prop] = strings.TrimSpace(value)
	}
}

func expand1To4(styles map[string]string, value, top, right, bottom, left string) {
	parts := strings.Fields(value)
	switch len(parts) {
	case 1:
		styles[top], styles[right], styles[bottom], styles[left] = parts[0], parts[0], parts[0], parts[0]
	case 2:
		styles[top], styles[right], styles[bottom], styles[left] = parts[0], parts[1], parts[0], parts[1]
	case 3:
		styles[top], styles[right], styles[bottom], styles[left] = parts[0], parts[1], parts[2], parts[1]
	case 4:
		styles[top], styles[right], styles[bottom], styles[left] = parts[0], parts[1], parts[2], parts[3]
	}
}

// -- Inheritance and Value Resolution --

func (se *Engine) resolve(el *html.Node, pseudo string, declared map[string]string, parent *ComputedStyle) *ComputedStyle {
	cs := &ComputedStyle{
		node:           el,
		pseudo:         pseudo,
		props:          make(map[string]string, len(declared)+len(inherited)),
		viewportWidth:  se.viewportWidth,
		viewportHeight: se.viewportHeight,
	}

	for prop, val := range declared {
		switch strings.ToLower(val) {
		case "inherit":
			if pv, ok := parent.props[prop]; ok {
				cs.props[prop] = pv
			}
		case "initial":
			// Leave unset so the getter falls back to the initial value.
		case "unset":
			if inherited[prop] {
				if pv, ok := parent.props[prop]; ok {
					cs.props[prop] = pv
				}
			}
		default:
			cs.props[prop] = val
		}
	}
	for prop := range inherited {
		if _, set := declared[prop]; set {
			continue
		}
		if pv, ok := parent.props[prop]; ok {
			cs.props[prop] = pv
		}
	}

	// font-size resolves against the parent; everything else against our own.
	cs.fontSize = parent.fontSize
	if fs, ok := declared["font-size"]; ok {
		cs.fontSize = resolveFontSize(fs, parent.fontSize, se.viewportWidth, se.viewportHeight)
	}
	cs.props["font-size"] = formatPx(cs.fontSize)

	if lh, ok := declared["line-height"]; ok && cs.props["line-height"] != "" {
		cs.props["line-height"] = formatPx(resolveLineHeight(lh, cs.fontSize, se.viewportWidth, se.viewportHeight))
		if strings.EqualFold(lh, "inherit") {
			cs.props["line-height"] = parent.props["line-height"]
		}
	}
	return cs
}

func resolveFontSize(value string, parentSize, vw, vh float64) float64 {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "xx-small":
		return 9
	case "x-small":
		return 10
	case "small":
		return 13
	case "medium":
		return BaseFontSize
	case "large":
		return 18
	case "x-large":
		return 24
	case "xx-large":
		return 32
	case "smaller":
		return parentSize / 1.2
	case "larger":
		return parentSize * 1.2
	}
	if v, ok := ParseLengthWithUnits(value, parentSize, BaseFontSize, parentSize, vw, vh); ok {
		return v
	}
	return parentSize
}

func resolveLineHeight(value string, fontSize, vw, vh float64) float64 {
	value = strings.TrimSpace(value)
	if value == "normal" {
		return fontSize * DefaultLineHeight
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return fontSize * f
	}
	if v, ok := ParseLengthWithUnits(value, fontSize, BaseFontSize, fontSize, vw, vh); ok {
		return v
	}
	return fontSize * DefaultLineHeight
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}
