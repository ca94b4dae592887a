// internal/selector/layout_engines.go
package selector

import (
	"math"
	"sort"

	"github.com/xkilldash9x/scalpel-introspect/internal/browser/layout"
	"golang.org/x/net/html"
)

// Direction is a spatial relation between two boxes.
type Direction string

const (
	LeftOf  Direction = "left-of"
	RightOf Direction = "right-of"
	Above   Direction = "above"
	Below   Direction = "below"
	Near    Direction = "near"
)

// DefaultNearThreshold is the largest score near accepts without an
// explicit maximum distance.
const DefaultNearThreshold = 50.0

var layoutDirections = []Direction{LeftOf, RightOf, Above, Below, Near}

// Score rates how well box stands in relation d to ref; lower is closer.
// ok is false when the relation does not hold or the distance exceeds
// maxDistance. A nil maxDistance means unbounded, except for near, which
// then uses DefaultNearThreshold.
func (d Direction) Score(box, ref layout.Rect, maxDistance *float64) (score float64, ok bool) {
	within := func(distance float64) bool {
		return distance >= 0 && (maxDistance == nil || distance <= *maxDistance)
	}
	switch d {
	case LeftOf:
		distance := ref.X - box.Right()
		if !within(distance) {
			return 0, false
		}
		return distance + verticalMisalignment(box, ref), true
	case RightOf:
		distance := box.X - ref.Right()
		if !within(distance) {
			return 0, false
		}
		return distance + verticalMisalignment(box, ref), true
	case Above:
		distance := ref.Y - box.Bottom()
		if !within(distance) {
			return 0, false
		}
		return distance + horizontalMisalignment(box, ref), true
	case Below:
		distance := box.Y - ref.Bottom()
		if !within(distance) {
			return 0, false
		}
		return distance + horizontalMisalignment(box, ref), true
	case Near:
		threshold := DefaultNearThreshold
		if maxDistance != nil {
			threshold = *maxDistance
		}
		score := math.Max(box.X-ref.Right(), 0) + math.Max(ref.X-box.Right(), 0) +
			math.Max(ref.Y-box.Bottom(), 0) + math.Max(box.Y-ref.Bottom(), 0)
		if score > threshold {
			return 0, false
		}
		return score, true
	}
	return 0, false
}

func verticalMisalignment(box, ref layout.Rect) float64 {
	return math.Max(ref.Bottom()-box.Bottom(), 0) + math.Max(box.Y-ref.Y, 0)
}

func horizontalMisalignment(box, ref layout.Rect) float64 {
	return math.Max(box.X-ref.X, 0) + math.Max(ref.Right()-box.Right(), 0)
}

type scored struct {
	el    *html.Node
	score float64
}

// queryLayout scores every element below root against the elements the
// inner selector matches and returns the related ones, closest first.
// nearThreshold bounds near when the body carries no maximum.
func queryLayout(d Direction, nearThreshold float64) QueryAllFunc {
	return func(env *Env, root *html.Node, body string) []*html.Node {
		inner, distance, bounded := splitLayoutBody(body)
		if inner == "" {
			return nil
		}
		var maxDistance *float64
		switch {
		case bounded:
			maxDistance = &distance
		case d == Near:
			maxDistance = &nearThreshold
		}

		doc := env.Document()
		type refBox struct {
			el  *html.Node
			box layout.Rect
		}
		var refs []refBox
		for _, el := range env.QueryAll(root, inner) {
			if box, ok := doc.Box(el); ok {
				refs = append(refs, refBox{el, box})
			}
		}
		if len(refs) == 0 {
			return nil
		}

		var hits []scored
		for _, el := range env.Descendants(root) {
			box, ok := doc.Box(el)
			if !ok {
				continue
			}
			best, found := 0.0, false
			for _, ref := range refs {
				if ref.el == el {
					continue
				}
				if s, ok := d.Score(box, ref.box, maxDistance); ok && (!found || s < best) {
					best, found = s, true
				}
			}
			if found {
				hits = append(hits, scored{el, best})
			}
		}
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].score < hits[j].score })

		out := make([]*html.Node, len(hits))
		for i, h := range hits {
			out[i] = h.el
		}
		return out
	}
}
