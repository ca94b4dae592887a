// internal/selector/engines.go
package selector

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/xkilldash9x/scalpel-introspect/internal/aria"
	"github.com/xkilldash9x/scalpel-introspect/internal/browser/dom"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

func queryCSS(env *Env, root *html.Node, body string) []*html.Node {
	sel, err := env.ev.compileCSS(body)
	if err != nil {
		env.Logger().Warn("Invalid CSS selector.", zap.String("selector", body), zap.Error(err))
		return nil
	}
	return cascadia.QueryAll(root, sel)
}

// queryXPath evaluates body with root as the context node. Absolute paths
// are made relative unless root is a document or shadow root.
func queryXPath(env *Env, root *html.Node, body string) []*html.Node {
	expr := body
	if strings.HasPrefix(expr, "/") && root.Type != html.DocumentNode {
		expr = "." + expr
	}
	compiled, err := env.ev.compileXPath(expr)
	if err != nil {
		env.Logger().Warn("Invalid XPath expression.", zap.String("selector", body), zap.Error(err))
		return nil
	}
	nodes := htmlquery.QuerySelectorAll(root, compiled)
	out := nodes[:0]
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			out = append(out, n)
		}
	}
	return out
}

// queryText returns the deepest elements whose text matches: an element is
// skipped when one of its child elements matches too.
func queryText(env *Env, root *html.Node, body string) []*html.Node {
	match := ParseTextMatcher(body)
	var out []*html.Node
	for _, el := range env.Descendants(root) {
		if aria.IsIgnored(el) || el.Data == "head" || !match(env.Text(el)) {
			continue
		}
		childMatches := false
		for c := el.FirstChild; c != nil && !childMatches; c = c.NextSibling {
			childMatches = c.Type == html.ElementNode && !aria.IsIgnored(c) && match(env.Text(c))
		}
		if !childMatches {
			out = append(out, el)
		}
	}
	return out
}

// attributeEngine matches elements whose attr equals the body.
func attributeEngine(attr string) QueryAllFunc {
	return func(env *Env, root *html.Node, body string) []*html.Node {
		want := unquoteBody(body)
		var out []*html.Node
		for _, el := range env.Descendants(root) {
			if v, ok := dom.Attr(el, attr); ok && v == want {
				out = append(out, el)
			}
		}
		return out
	}
}
