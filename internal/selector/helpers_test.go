package selector_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/scalpel-introspect/internal/aria"
	"github.com/xkilldash9x/scalpel-introspect/internal/browser/dom"
	"github.com/xkilldash9x/scalpel-introspect/internal/selector"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/net/html"
)

type fixture struct {
	t   *testing.T
	doc *dom.Document
	ev  *selector.Evaluator
}

func newFixture(t *testing.T, markup string, opts ...dom.Option) *fixture {
	t.Helper()
	return newFixtureWith(t, markup, selector.NewDefaultRegistry(), zaptest.NewLogger(t), opts...)
}

func newFixtureWith(t *testing.T, markup string, reg *selector.Registry, logger *zap.Logger, opts ...dom.Option) *fixture {
	t.Helper()
	doc, err := dom.ParseString(markup, opts...)
	require.NoError(t, err)
	return &fixture{t: t, doc: doc, ev: selector.NewEvaluator(reg, aria.NewComputer(doc), logger)}
}

// ids queries selector from the document root and returns the ids of the
// matches, "?" for elements without one.
func (f *fixture) ids(selectorText string, opts ...selector.QueryOptions) []string {
	f.t.Helper()
	var o selector.QueryOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	return idsOf(f.ev.QuerySelectorAll(f.doc.Root(), selectorText, o))
}

func (f *fixture) byID(id string) *html.Node {
	f.t.Helper()
	el := f.doc.ElementByID(f.doc.Root(), id)
	require.NotNil(f.t, el, "missing #%s", id)
	return el
}

func idsOf(nodes []*html.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		id, ok := dom.Attr(n, "id")
		if !ok {
			id = "?"
		}
		out = append(out, id)
	}
	return out
}
