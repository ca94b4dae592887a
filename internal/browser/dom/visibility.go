// internal/browser/dom/visibility.go
package dom

import (
	"context"

	"github.com/xkilldash9x/scalpel-introspect/internal/browser/layout"
	"github.com/xkilldash9x/scalpel-introspect/internal/browser/style"
	"golang.org/x/net/html"
)

// ComputedStyle returns the computed style of el or of its "before"/"after"
// pseudo-element. Lookups are memoized while the cache session is active.
func (d *Document) ComputedStyle(el *html.Node, pseudo string) *style.ComputedStyle {
	return d.styleMemo.Get(el, pseudo)
}

// Layout returns the current layout, computing it if the document changed.
func (d *Document) Layout() *layout.Result {
	if d.result == nil {
		d.result = d.layout.Layout(d.root)
	}
	return d.result
}

// Box returns the border box of el. Elements that generate no box
// (display:none, display:contents, detached) report false.
func (d *Document) Box(el *html.Node) (layout.Rect, bool) {
	return d.Layout().BoundingBox(el)
}

// IsStyleVisible reports whether el's own style keeps it visible: not
// display:none, visibility visible, and not inside a content-visibility:hidden
// subtree.
func (d *Document) IsStyleVisible(el *html.Node) bool {
	cs := d.ComputedStyle(el, "")
	if cs.Display() == "none" {
		return false
	}
	if v := cs.Visibility(); v == "hidden" || v == "collapse" {
		return false
	}
	for p := d.StyleParent(el); p != nil; p = d.StyleParent(p) {
		pcs := d.ComputedStyle(p, "")
		if pcs.ContentVisibility() == "hidden" || pcs.Display() == "none" {
			return false
		}
	}
	return true
}

// IsVisible reports whether el is visible: its style is visible, its opacity
// is not zero and it has a non-empty box. A display:contents element is
// visible when any of its rendered children is. An <option> or <optgroup>
// follows its <select>.
func (d *Document) IsVisible(el *html.Node) bool {
	if !IsElement(el) {
		return false
	}
	if !d.isConnected(el) {
		return false
	}
	cs := d.ComputedStyle(el, "")
	if el.Data == "option" || el.Data == "optgroup" {
		if sel := enclosingSelectOf(el); sel != nil {
			return cs.Display() != "none" && d.IsVisible(sel)
		}
	}
	if cs.Display() == "contents" {
		for _, c := range d.RenderedChildren(el) {
			switch c.Type {
			case html.ElementNode:
				if d.IsVisible(c) {
					return true
				}
			case html.TextNode:
				if d.IsVisibleTextNode(c) {
					return true
				}
			}
		}
		return false
	}
	if !d.IsStyleVisible(el) || cs.Opacity() == 0 {
		return false
	}
	box, ok := d.Box(el)
	return ok && box.Width > 0 && box.Height > 0
}

// IsVisibleTextNode reports whether a text node renders with non-zero size.
func (d *Document) IsVisibleTextNode(t *html.Node) bool {
	box, ok := d.Layout().BoundingBox(t)
	return ok && box.Width > 0 && box.Height > 0
}

func enclosingSelectOf(el *html.Node) *html.Node {
	for p := el.Parent; p != nil && p.Type == html.ElementNode; p = p.Parent {
		if p.Data == "select" {
			return p
		}
	}
	return nil
}

// Cursor returns the computed cursor of el.
func (d *Document) Cursor(el *html.Node) string {
	return d.ComputedStyle(el, "").Cursor()
}

// ReceivesPointerEvents reports whether a pointer event at the centre of
// el's box would reach el or one of its composed descendants.
func (d *Document) ReceivesPointerEvents(el *html.Node) bool {
	box, ok := d.Box(el)
	if !ok || box.IsEmpty() {
		return false
	}
	hit := d.Layout().HitTest(box.X+box.Width/2, box.Y+box.Height/2)
	return hit != nil && d.ComposedContains(el, hit)
}

// ViewportRatio measures the fraction of el's box inside the viewport. The
// measurement is delivered asynchronously; Await the returned future.
func (d *Document) ViewportRatio(el *html.Node) *Future[float64] {
	res := d.Layout()
	return Go(func() (float64, error) {
		return res.ViewportRatio(el), nil
	})
}

// Future is the pending result of an asynchronous measurement.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go runs fn on its own goroutine and returns a future for its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn()
	}()
	return f
}

// Resolved returns a future that is already complete.
func Resolved[T any](v T) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), val: v}
	close(f.done)
	return f
}

// Await blocks until the result is available or ctx is done.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
