// internal/aria/computer.go
package aria

import (
	"github.com/xkilldash9x/scalpel-introspect/internal/browser/dom"
	"github.com/xkilldash9x/scalpel-introspect/internal/cache"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

type nameKey struct {
	el            *html.Node
	includeHidden bool
}

// Computer derives ARIA semantics (role, accessible name and description,
// states, hidden-ness) for the elements of one document. Results are
// memoized while the document's cache session is active.
type Computer struct {
	doc    *dom.Document
	logger *zap.Logger

	roles  *cache.Memo[*html.Node, string]
	hidden *cache.Memo[*html.Node, bool]
	names  *cache.Memo[nameKey, string]
	descs  *cache.Memo[nameKey, string]
}

// NewComputer creates a Computer over doc.
func NewComputer(doc *dom.Document) *Computer {
	s := doc.Session()
	return &Computer{
		doc:    doc,
		logger: doc.Logger().Named("aria"),
		roles:  cache.NewMemo[*html.Node, string](s),
		hidden: cache.NewMemo[*html.Node, bool](s),
		names:  cache.NewMemo[nameKey, string](s),
		descs:  cache.NewMemo[nameKey, string](s),
	}
}

// Document returns the document the computer reads.
func (c *Computer) Document() *dom.Document { return c.doc }
