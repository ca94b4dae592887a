// internal/selector/evaluator.go
package selector

import (
	"slices"
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/xpath"
	"github.com/xkilldash9x/scalpel-introspect/internal/aria"
	"github.com/xkilldash9x/scalpel-introspect/internal/browser/dom"
	"github.com/xkilldash9x/scalpel-introspect/internal/cache"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// QueryOptions adjusts a query.
type QueryOptions struct {
	// PierceShadow also searches every shadow root below the query root.
	PierceShadow bool
	// VisibleOnly drops matches that are not visible.
	VisibleOnly bool
}

type resultKey struct {
	root     *html.Node
	selector string
	pierce   bool
}

type compiledCSS struct {
	sel cascadia.SelectorGroup
	err error
}

type compiledXPath struct {
	expr *xpath.Expr
	err  error
}

// Evaluator resolves selector strings against one document using the
// engines of a registry. Results are memoized while the document's cache
// session is active.
type Evaluator struct {
	registry *Registry
	aria     *aria.Computer
	doc      *dom.Document
	logger   *zap.Logger

	results *cache.Memo[resultKey, []*html.Node]
	texts   *cache.Memo[*html.Node, string]
	css     *cache.Memo[string, compiledCSS]
	xpaths  *cache.Memo[string, compiledXPath]
	order   *cache.Memo[struct{}, map[*html.Node]int]
}

// NewEvaluator creates an evaluator. A nil registry gets the built-in
// engines; a nil logger is replaced by a no-op logger.
func NewEvaluator(reg *Registry, c *aria.Computer, logger *zap.Logger) *Evaluator {
	if reg == nil {
		reg = NewDefaultRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := c.Document().Session()
	return &Evaluator{
		registry: reg,
		aria:     c,
		doc:      c.Document(),
		logger:   logger.Named("selector"),
		results:  cache.NewMemo[resultKey, []*html.Node](s),
		texts:    cache.NewMemo[*html.Node, string](s),
		css:      cache.NewMemo[string, compiledCSS](s),
		xpaths:   cache.NewMemo[string, compiledXPath](s),
		order:    cache.NewMemo[struct{}, map[*html.Node]int](s),
	}
}

// Registry returns the registry engines are looked up in.
func (e *Evaluator) Registry() *Registry { return e.registry }

// QuerySelectorAll returns every element matching selector under root.
func (e *Evaluator) QuerySelectorAll(root *html.Node, selector string, opts QueryOptions) []*html.Node {
	if root == nil {
		return nil
	}
	var found []*html.Node
	_ = e.doc.Session().Run(func() error {
		env := &Env{ev: e, pierce: opts.PierceShadow}
		found = slices.Clone(env.QueryAll(root, selector))
		if opts.VisibleOnly {
			found = slices.DeleteFunc(found, func(n *html.Node) bool { return !e.doc.IsVisible(n) })
		}
		return nil
	})
	return found
}

// QuerySelector returns the first element matching selector, or nil.
func (e *Evaluator) QuerySelector(root *html.Node, selector string, opts QueryOptions) *html.Node {
	if found := e.QuerySelectorAll(root, selector, opts); len(found) > 0 {
		return found[0]
	}
	return nil
}

// Env is what an engine sees of the evaluator running it.
type Env struct {
	ev     *Evaluator
	pierce bool
}

func (env *Env) Document() *dom.Document { return env.ev.doc }

func (env *Env) Aria() *aria.Computer { return env.ev.aria }

func (env *Env) Logger() *zap.Logger { return env.ev.logger }

// QueryAll evaluates a full selector chain under root. Combinators use it
// to resolve their inner selectors.
func (env *Env) QueryAll(root *html.Node, selector string) []*html.Node {
	key := resultKey{root: root, selector: selector, pierce: env.pierce}
	return env.ev.results.Get(key, func() []*html.Node {
		return env.evaluate(root, selector)
	})
}

func (env *Env) evaluate(root *html.Node, selector string) []*html.Node {
	stages := SplitChain(selector)
	if len(stages) == 0 {
		return nil
	}
	current := []*html.Node{root}
	for _, stage := range stages {
		parsed := ParseSelector(stage)
		engine, ok := env.ev.registry.Get(parsed.Engine)
		if !ok {
			env.Logger().Warn("Unknown selector engine.",
				zap.String("engine", parsed.Engine),
				zap.String("selector", selector))
			return nil
		}
		var next []*html.Node
		for _, scope := range current {
			next = append(next, env.run(engine, scope, parsed.Body)...)
		}
		current = dedupe(next)
		if len(current) == 0 {
			break
		}
	}
	return current
}

// run applies engine at scope and, when piercing, at every shadow root
// below it.
func (env *Env) run(engine Engine, scope *html.Node, body string) []*html.Node {
	found := engine.QueryAll(env, scope, body)
	if !env.pierce {
		return found
	}
	for _, sr := range env.shadowRoots(scope) {
		found = append(found, engine.QueryAll(env, sr, body)...)
	}
	return dedupe(found)
}

// shadowRoots collects every shadow root hosted at or below n, nested ones
// included.
func (env *Env) shadowRoots(n *html.Node) []*html.Node {
	doc := env.ev.doc
	var roots []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if sr := doc.ShadowRoot(n); sr != nil {
				roots = append(roots, sr)
				walk(sr)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return roots
}

// Descendants returns the elements below root in document order, root
// itself excluded.
func (env *Env) Descendants(root *html.Node) []*html.Node {
	all := dom.Elements(root)
	if len(all) > 0 && all[0] == root {
		return all[1:]
	}
	return all
}

// Text returns the text of el: its light and shadow content without
// script, style and other ignored elements.
func (env *Env) Text(el *html.Node) string {
	return env.ev.texts.Get(el, func() string {
		var sb strings.Builder
		env.appendText(&sb, el)
		return sb.String()
	})
}

func (env *Env) appendText(sb *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	if n.Type == html.ElementNode {
		if aria.IsIgnored(n) {
			return
		}
		if sr := env.ev.doc.ShadowRoot(n); sr != nil {
			env.appendText(sb, sr)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		env.appendText(sb, c)
	}
}

// SortDocumentOrder sorts nodes by their position in the composed tree.
// Shadow content sorts right after its host.
func (env *Env) SortDocumentOrder(nodes []*html.Node) {
	index := env.ev.order.Get(struct{}{}, env.ev.documentOrder)
	sort.SliceStable(nodes, func(i, j int) bool {
		a, aok := index[nodes[i]]
		b, bok := index[nodes[j]]
		switch {
		case aok && bok:
			return a < b
		default:
			return aok && !bok
		}
	})
}

func (e *Evaluator) documentOrder() map[*html.Node]int {
	index := make(map[*html.Node]int)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		index[n] = len(index)
		if n.Type == html.ElementNode {
			if sr := e.doc.ShadowRoot(n); sr != nil {
				walk(sr)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.doc.Root())
	return index
}

func (e *Evaluator) compileCSS(selector string) (cascadia.SelectorGroup, error) {
	c := e.css.Get(selector, func() compiledCSS {
		sel, err := cascadia.ParseGroup(selector)
		return compiledCSS{sel: sel, err: err}
	})
	return c.sel, c.err
}

func (e *Evaluator) compileXPath(expr string) (*xpath.Expr, error) {
	c := e.xpaths.Get(expr, func() compiledXPath {
		compiled, err := xpath.Compile(expr)
		return compiledXPath{expr: compiled, err: err}
	})
	return c.expr, c.err
}

func dedupe(nodes []*html.Node) []*html.Node {
	if len(nodes) < 2 {
		return nodes
	}
	seen := make(map[*html.Node]bool, len(nodes))
	out := nodes[:0:0]
	for _, n := range nodes {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
