// internal/selector/combinators.go
package selector

import (
	"strings"

	"github.com/xkilldash9x/scalpel-introspect/internal/browser/dom"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// The filtering combinators consider root itself and every element below
// it.
func candidates(root *html.Node) []*html.Node {
	return dom.Elements(root)
}

// queryHas keeps the candidates that contain a match of the inner selector
// (want) or that contain none (!want).
func queryHas(want bool) QueryAllFunc {
	return func(env *Env, root *html.Node, body string) []*html.Node {
		inner := unquoteBody(body)
		if inner == "" {
			return nil
		}
		var out []*html.Node
		for _, el := range candidates(root) {
			if (len(env.QueryAll(el, inner)) > 0) == want {
				out = append(out, el)
			}
		}
		return out
	}
}

func queryHasText(want bool) QueryAllFunc {
	return func(env *Env, root *html.Node, body string) []*html.Node {
		match := ParseTextMatcher(body)
		var out []*html.Node
		for _, el := range candidates(root) {
			if match(env.Text(el)) == want {
				out = append(out, el)
			}
		}
		return out
	}
}

// splitOperands splits an and/or body into selectors. The body may be a
// single JSON string or a list of operands joined by sep, each optionally
// quoted.
func splitOperands(body, sep string) []string {
	body = unquoteBody(body)
	parts := splitTopLevel(body, sep, true)
	for i, p := range parts {
		parts[i] = unquoteBody(p)
	}
	return parts
}

// queryAnd intersects the results of its operands, in document order.
func queryAnd(env *Env, root *html.Node, body string) []*html.Node {
	operands := splitOperands(body, "&&")
	if len(operands) == 0 {
		return nil
	}
	result := env.QueryAll(root, operands[0])
	for _, op := range operands[1:] {
		other := make(map[*html.Node]bool)
		for _, n := range env.QueryAll(root, op) {
			other[n] = true
		}
		var kept []*html.Node
		for _, n := range result {
			if other[n] {
				kept = append(kept, n)
			}
		}
		result = kept
	}
	out := append([]*html.Node(nil), result...)
	env.SortDocumentOrder(out)
	return out
}

// queryOr returns the union of its operands without duplicates, in document
// order.
func queryOr(env *Env, root *html.Node, body string) []*html.Node {
	var all []*html.Node
	for _, op := range splitOperands(body, "||") {
		all = append(all, env.QueryAll(root, op)...)
	}
	out := dedupe(all)
	env.SortDocumentOrder(out)
	return out
}

// queryLabel returns the controls labelled by text matching body. A control
// is labelled by its <label> elements, by the elements its aria-labelledby
// references and by its aria-label.
func queryLabel(env *Env, root *html.Node, body string) []*html.Node {
	match := ParseTextMatcher(body)
	doc := env.Document()
	var out []*html.Node
	for _, el := range candidates(root) {
		if v, ok := dom.Attr(el, "aria-label"); ok && match(v) {
			out = append(out, el)
			continue
		}
		labels := doc.ElementsByIDRefs(el, dom.AttrOr(el, "aria-labelledby"))
		if dom.IsLabelable(el) {
			labels = append(labels, doc.Labels(el)...)
		}
		for _, l := range labels {
			if match(env.Text(l)) {
				out = append(out, el)
				break
			}
		}
	}
	return out
}

// queryVisible keeps candidates whose visibility equals the body, true or
// false.
func queryVisible(env *Env, root *html.Node, body string) []*html.Node {
	want := true
	switch strings.ToLower(unquoteBody(body)) {
	case "true", "":
	case "false":
		want = false
	default:
		env.Logger().Warn("Invalid visible selector.", zap.String("body", body))
		return nil
	}
	doc := env.Document()
	var out []*html.Node
	for _, el := range candidates(root) {
		if doc.IsVisible(el) == want {
			out = append(out, el)
		}
	}
	return out
}
