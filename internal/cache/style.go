// internal/cache/style.go
package cache

import (
	"github.com/xkilldash9x/scalpel-introspect/internal/browser/style"
	"golang.org/x/net/html"
)

// StyleFunc is the underlying computed-style primitive.
type StyleFunc func(el *html.Node, pseudo string) *style.ComputedStyle

type styleKey struct {
	node   *html.Node
	pseudo string
}

// StyleCache memoizes computed styles per (element, pseudo-element) while its
// session is active.
type StyleCache struct {
	memo    *Memo[styleKey, *style.ComputedStyle]
	compute StyleFunc
}

func NewStyleCache(s *Session, compute StyleFunc) *StyleCache {
	return &StyleCache{
		memo:    NewMemo[styleKey, *style.ComputedStyle](s),
		compute: compute,
	}
}

// Get returns the computed style of el for pseudo ("" for the element itself).
func (c *StyleCache) Get(el *html.Node, pseudo string) *style.ComputedStyle {
	return c.memo.Get(styleKey{node: el, pseudo: pseudo}, func() *style.ComputedStyle {
		return c.compute(el, pseudo)
	})
}
