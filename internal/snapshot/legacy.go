// internal/snapshot/legacy.go
package snapshot

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/scalpel-introspect/internal/aria"
	"github.com/xkilldash9x/scalpel-introspect/internal/browser/dom"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// GenerateA11yTree walks the subtree at root depth first and returns one
// flat node per exposed element. Hidden subtrees are skipped entirely.
func (b *Builder) GenerateA11yTree(ctx context.Context, root *html.Node, opts LegacyOptions) ([]LegacyNode, error) {
	if root == nil {
		return nil, fmt.Errorf("generate a11y tree: %w", dom.ErrNotElement)
	}
	nodes := make([]LegacyNode, 0)
	err := b.doc.Session().RunContext(ctx, func(ctx context.Context) error {
		b.refs.Clear()
		return b.walkLegacy(ctx, root, 0, opts, &nodes)
	})
	if err != nil {
		return nil, fmt.Errorf("generate a11y tree: %w", err)
	}
	b.logger.Debug("Generated flat a11y tree.", zap.Int("nodes", len(nodes)))
	return nodes, nil
}

func (b *Builder) walkLegacy(ctx context.Context, n *html.Node, depth int, opts LegacyOptions, out *[]LegacyNode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.Type == html.ElementNode {
		if b.aria.IsHidden(n) {
			return nil
		}
		include, err := b.includeLegacy(ctx, n, depth, opts)
		if err != nil {
			return err
		}
		if include {
			*out = append(*out, b.legacyNode(n, depth, opts))
			depth++
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if err := b.walkLegacy(ctx, c, depth, opts, out); err != nil {
			return err
		}
	}
	if opts.PierceShadow && n.Type == html.ElementNode {
		if sr := b.doc.ShadowRoot(n); sr != nil {
			for c := sr.FirstChild; c != nil; c = c.NextSibling {
				if c.Type != html.ElementNode {
					continue
				}
				if err := b.walkLegacy(ctx, c, depth, opts, out); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (b *Builder) includeLegacy(ctx context.Context, el *html.Node, depth int, opts LegacyOptions) (bool, error) {
	role := b.aria.Role(el)
	if role == "" || aria.CategoryOf(role) == aria.CategoryPresentational {
		return false, nil
	}
	if opts.MaxDepth > 0 && depth > opts.MaxDepth {
		return false, nil
	}
	if opts.InteractiveOnly && !b.aria.IsInteractive(el) {
		return false, nil
	}
	if opts.ViewportOnly {
		ratio, err := b.doc.ViewportRatio(el).Await(ctx)
		if err != nil {
			return false, err
		}
		if ratio <= 0 {
			return false, nil
		}
	}
	return true, nil
}

func (b *Builder) legacyNode(el *html.Node, depth int, opts LegacyOptions) LegacyNode {
	c := b.aria
	n := LegacyNode{
		Ref:         b.refs.Assign(el),
		Role:        c.Role(el),
		Name:        c.AccessibleName(el, false),
		Tag:         el.Data,
		Depth:       depth,
		Disabled:    c.Disabled(el),
		Selected:    c.Selected(el),
		Focused:     b.doc.ActiveElement() == el,
		Invalid:     c.Invalid(el),
		Required:    c.Required(el),
		Busy:        c.Busy(el),
		Current:     c.Current(el),
		Value:       c.ValueText(el),
		Level:       c.Level(el),
		Description: c.AccessibleDescription(el, false),
		Element:     el,
	}
	if st, ok := c.Checked(el); ok {
		n.Checked = st.String()
	}
	if st, ok := c.Pressed(el); ok && st != aria.False {
		n.Pressed = st.String()
	}
	if exp, ok := c.Expanded(el); ok {
		n.Expanded = &exp
	}
	if opts.IncludeBounds {
		if rect, ok := b.doc.Box(el); ok {
			r := rect.Rounded()
			n.Bounds = &r
		}
	}
	if opts.IncludeSelector {
		n.Selector = dom.GenerateUniqueXPath(el)
	}
	return n
}
