// internal/browser/layout/layout.go
package layout

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/xkilldash9x/scalpel-introspect/internal/browser/style"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// StyleSource supplies computed styles. *style.Engine satisfies it.
type StyleSource interface {
	Compute(el *html.Node, pseudo string) *style.ComputedStyle
}

// FlatTree supplies the rendered children of a node: a shadow host yields its
// shadow root's children, a slot its assigned nodes (or fallback content).
type FlatTree interface {
	RenderedChildren(n *html.Node) []*html.Node
}

// BoxType identifies how a box participates in formatting.
type BoxType int

const (
	BlockBox BoxType = iota
	InlineBox
	InlineBlockBox
	TextRun
	FlexBox
)

// LayoutBox is one generated box. Inline boxes and text runs that wrap over
// several lines report the bounding rectangle of all their fragments.
type LayoutBox struct {
	Dimensions Dimensions
	BoxType    BoxType
	Node       *html.Node
	Style      *style.ComputedStyle
	Fragments  []Rect

	paintLayer int
	zIndex     int
}

// BorderBox returns the box's visible rectangle.
func (b *LayoutBox) BorderBox() Rect {
	if b.BoxType == InlineBox || b.BoxType == TextRun {
		return unionAll(b.Fragments, b.Dimensions.Content)
	}
	return b.Dimensions.BorderBox()
}

// Engine performs layout of a rendered document.
type Engine struct {
	styles         StyleSource
	tree           FlatTree
	viewportWidth  float64
	viewportHeight float64
	logger         *zap.Logger
}

func NewEngine(styles StyleSource, tree FlatTree, viewportWidth, viewportHeight float64, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		styles:         styles,
		tree:           tree,
		viewportWidth:  viewportWidth,
		viewportHeight: viewportHeight,
		logger:         logger.Named("layout"),
	}
}

// Result is a completed layout pass.
type Result struct {
	boxes    map[*html.Node]*LayoutBox
	paint    []*LayoutBox
	viewport Rect
}

// Box returns the layout box generated for n, if any. Elements with
// display:none or display:contents generate no box.
func (r *Result) Box(n *html.Node) (*LayoutBox, bool) {
	b, ok := r.boxes[n]
	return b, ok
}

// BoundingBox returns the border box of n, like getBoundingClientRect.
func (r *Result) BoundingBox(n *html.Node) (Rect, bool) {
	b, ok := r.boxes[n]
	if !ok {
		return Rect{}, false
	}
	return b.BorderBox(), true
}

// Viewport returns the initial containing block.
func (r *Result) Viewport() Rect { return r.viewport }

// ViewportRatio returns the fraction of n's border box inside the viewport.
// Boxes without area report 0.
func (r *Result) ViewportRatio(n *html.Node) float64 {
	rect, ok := r.BoundingBox(n)
	if !ok || rect.IsEmpty() {
		return 0
	}
	return rect.Intersect(r.viewport).Area() / rect.Area()
}

// HitTest returns the topmost element painted at (x, y), skipping boxes with
// pointer-events:none or hidden visibility. Text runs resolve to their
// parent element.
func (r *Result) HitTest(x, y float64) *html.Node {
	for i := len(r.paint) - 1; i >= 0; i-- {
		b := r.paint[i]
		if b.Style != nil {
			if b.Style.PointerEvents() == "none" {
				continue
			}
			if v := b.Style.Visibility(); v == "hidden" || v == "collapse" {
				continue
			}
		}
		if !hits(b, x, y) {
			continue
		}
		if b.BoxType == TextRun {
			for p := b.Node.Parent; p != nil; p = p.Parent {
				if p.Type == html.ElementNode {
					return p
				}
			}
			continue
		}
		return b.Node
	}
	return nil
}

func hits(b *LayoutBox, x, y float64) bool {
	if len(b.Fragments) > 0 {
		for _, f := range b.Fragments {
			if f.Contains(x, y) {
				return true
			}
		}
		return false
	}
	return b.BorderBox().Contains(x, y)
}

// Layout lays out the document rooted at doc against the viewport.
func (e *Engine) Layout(doc *html.Node) *Result {
	res := &Result{
		boxes:    make(map[*html.Node]*LayoutBox),
		viewport: Rect{Width: e.viewportWidth, Height: e.viewportHeight},
	}
	lc := &layoutContext{engine: e, result: res, fixedCB: res.viewport}
	f := newFlow(0, 0, e.viewportWidth)
	lc.layoutChildren(e.children(doc), f, res.viewport, e.viewportHeight)

	sort.SliceStable(res.paint, func(i, j int) bool {
		a, b := res.paint[i], res.paint[j]
		if a.paintLayer != b.paintLayer {
			return a.paintLayer < b.paintLayer
		}
		return a.zIndex < b.zIndex
	})
	e.logger.Debug("Layout complete", zap.Int("boxes", len(res.boxes)))
	return res
}

func (e *Engine) children(n *html.Node) []*html.Node {
	if e.tree != nil {
		return e.tree.RenderedChildren(n)
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// -- Formatting --

// flow tracks the block cursor and the current line of one block container.
type flow struct {
	x0, width     float64
	y             float64
	x             float64
	lineH         float64
	inLine        bool
	pendingSpace  bool
	pendingMargin float64
	maxX          float64
}

func newFlow(x0, y, width float64) *flow {
	return &flow{x0: x0, y: y, x: x0, width: width, maxX: x0}
}

func (f *flow) startLine() {
	if f.pendingMargin > 0 {
		f.y += f.pendingMargin
		f.pendingMargin = 0
	}
	f.inLine = true
	f.x = f.x0
	f.lineH = 0
}

func (f *flow) endLine() {
	if f.inLine {
		f.y += f.lineH
	}
	f.inLine = false
	f.pendingSpace = false
	f.x = f.x0
	f.lineH = 0
}

// place reserves a w×h slot on the current line, wrapping first when the
// slot does not fit and the line already has content.
func (f *flow) place(w, h float64) (x, y float64) {
	if f.inLine && f.x > f.x0 && f.x+w > f.x0+f.width+0.01 {
		f.endLine()
	}
	if !f.inLine {
		f.startLine()
	}
	x, y = f.x, f.y
	f.x += w
	f.lineH = math.Max(f.lineH, h)
	f.maxX = math.Max(f.maxX, f.x)
	return x, y
}

// bottom returns the y coordinate below everything placed so far.
func (f *flow) bottom() float64 {
	if f.inLine {
		return f.y + f.lineH
	}
	return f.y
}

type layoutContext struct {
	engine    *Engine
	result    *Result
	fixedCB   Rect
	measuring bool
	fragments []Rect

	// Paint key of the enclosing positioned box.
	layer, z int
}

func (lc *layoutContext) register(b *LayoutBox) {
	if lc.measuring {
		return
	}
	b.paintLayer, b.zIndex = lc.layer, lc.z
	lc.result.boxes[b.Node] = b
	lc.result.paint = append(lc.result.paint, b)
}

// enterPositioned raises the paint key for a positioned box and its
// descendants. The returned func restores the enclosing key.
func (lc *layoutContext) enterPositioned(cs *style.ComputedStyle) func() {
	if cs.Position() == "static" {
		return func() {}
	}
	layer, z := lc.layer, lc.z
	lc.layer++
	lc.z = 0
	if v, err := strconv.Atoi(strings.TrimSpace(cs.Get("z-index"))); err == nil {
		lc.z = v
	}
	return func() { lc.layer, lc.z = layer, z }
}

// layoutChildren places nodes into f. absCB is the containing block for
// absolutely positioned descendants; cbHeight resolves percentage heights.
func (lc *layoutContext) layoutChildren(nodes []*html.Node, f *flow, absCB Rect, cbHeight float64) {
	for _, n := range nodes {
		switch n.Type {
		case html.TextNode:
			lc.layoutText(n, lc.engine.styles.Compute(n, ""), n.Data, f)
		case html.ElementNode:
			lc.layoutElement(n, f, absCB, cbHeight)
		case html.DocumentNode:
			lc.layoutChildren(lc.engine.children(n), f, absCB, cbHeight)
		}
	}
}

func (lc *layoutContext) layoutElement(n *html.Node, f *flow, absCB Rect, cbHeight float64) {
	cs := lc.engine.styles.Compute(n, "")
	display := cs.Display()
	switch display {
	case "none":
		return
	case "contents":
		lc.layoutContents(n, cs, f, absCB, cbHeight)
		return
	}
	if n.Data == "br" {
		lh := cs.LineHeight()
		x, y := f.place(0, lh)
		lc.register(&LayoutBox{BoxType: InlineBox, Node: n, Style: cs, Dimensions: Dimensions{Content: Rect{X: x, Y: y, Height: lh}}})
		f.endLine()
		return
	}

	switch pos := cs.Position(); pos {
	case "absolute", "fixed":
		cb := absCB
		if pos == "fixed" {
			cb = lc.fixedCB
		}
		lc.layoutPositioned(n, cs, f, cb)
		return
	}

	switch {
	case isReplaced(n) || display == "inline-block" || display == "inline-flex" || display == "inline-grid" || display == "inline-table":
		lc.layoutAtomicInline(n, cs, f, absCB)
	case display == "inline" || display == "ruby":
		lc.layoutInline(n, cs, f, absCB, cbHeight)
	default:
		lc.layoutBlock(n, cs, f, absCB, cbHeight)
	}
}

func (lc *layoutContext) layoutContents(n *html.Node, cs *style.ComputedStyle, f *flow, absCB Rect, cbHeight float64) {
	lc.layoutPseudo(n, "before", f)
	lc.layoutChildren(lc.engine.children(n), f, absCB, cbHeight)
	lc.layoutPseudo(n, "after", f)
}

// layoutText places whitespace-collapsed words on the current line.
func (lc *layoutContext) layoutText(n *html.Node, cs *style.ComputedStyle, text string, f *flow) {
	if text == "" {
		return
	}
	fontSize, lh := cs.FontSize(), cs.LineHeight()
	space := style.MeasureText(" ", fontSize)
	preserve := strings.HasPrefix(cs.Get("white-space"), "pre")

	var words []string
	if preserve {
		words = []string{text}
	} else {
		words = strings.Fields(text)
		if len(words) == 0 {
			if f.inLine {
				f.pendingSpace = true
			}
			return
		}
		if isSpace(text[0]) && f.inLine {
			f.pendingSpace = true
		}
	}

	box := &LayoutBox{BoxType: TextRun, Node: n, Style: cs}
	for i, w := range words {
		if (i > 0 || f.pendingSpace) && f.inLine && f.x > f.x0 {
			f.x += space
		}
		f.pendingSpace = false
		width := style.MeasureText(w, fontSize)
		x, y := f.place(width, lh)
		r := Rect{X: x, Y: y, Width: width, Height: lh}
		box.Fragments = append(box.Fragments, r)
		lc.fragments = append(lc.fragments, r)
	}
	if !preserve && isSpace(text[len(text)-1]) {
		f.pendingSpace = true
	}
	box.Dimensions.Content = box.Fragments[0]
	lc.register(box)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// layoutPseudo generates the ::before or ::after text of el, if any.
func (lc *layoutContext) layoutPseudo(el *html.Node, pseudo string, f *flow) {
	ps := lc.engine.styles.Compute(el, pseudo)
	if ps == nil || ps.Display() == "none" {
		return
	}
	text, ok := ps.Content()
	if !ok || text == "" {
		return
	}
	fontSize, lh := ps.FontSize(), ps.LineHeight()
	for _, w := range strings.Fields(text) {
		width := style.MeasureText(w, fontSize)
		x, y := f.place(width, lh)
		lc.fragments = append(lc.fragments, Rect{X: x, Y: y, Width: width, Height: lh})
	}
}

// layoutInline lays the children of an inline element into the parent's
// line boxes. The element's box is the union of its fragments.
func (lc *layoutContext) layoutInline(n *html.Node, cs *style.ComputedStyle, f *flow, absCB Rect, cbHeight float64) {
	edges := boxEdges(cs, f.width)
	start := len(lc.fragments)

	lead := edges.Margin.Left + edges.Border.Left + edges.Padding.Left
	if lead > 0 {
		f.place(lead, 0)
	}
	lc.layoutPseudo(n, "before", f)
	lc.layoutChildren(lc.engine.children(n), f, absCB, cbHeight)
	lc.layoutPseudo(n, "after", f)
	if trail := edges.Margin.Right + edges.Border.Right + edges.Padding.Right; trail > 0 {
		f.place(trail, 0)
	}

	box := &LayoutBox{BoxType: InlineBox, Node: n, Style: cs, Dimensions: edges}
	box.Fragments = append(box.Fragments, lc.fragments[start:]...)
	if len(box.Fragments) == 0 {
		// Empty inline: zero width at the cursor.
		x, y := f.x, f.y
		if !f.inLine {
			x = f.x0
		}
		box.Dimensions.Content = Rect{X: x, Y: y, Height: cs.LineHeight()}
	} else {
		box.Dimensions.Content = box.Fragments[0]
		if lead > 0 {
			box.Fragments[0].X -= edges.Border.Left + edges.Padding.Left
			box.Fragments[0].Width += edges.Border.Left + edges.Padding.Left
		}
	}
	lc.register(box)
}

// layoutBlock lays out a block-level box in normal flow.
func (lc *layoutContext) layoutBlock(n *html.Node, cs *style.ComputedStyle, f *flow, absCB Rect, cbHeight float64) {
	f.endLine()
	d := boxEdges(cs, f.width)

	// Adjacent sibling margins collapse.
	top := math.Max(f.pendingMargin, d.Margin.Top)
	f.pendingMargin = 0

	d.Content.X = f.x0 + d.Margin.Left + d.Border.Left + d.Padding.Left
	d.Content.Y = f.y + top + d.Border.Top + d.Padding.Top
	d.Content.Width = lc.blockWidth(cs, d, f.width)

	display := cs.Display()
	boxType := BlockBox
	if display == "flex" || display == "grid" {
		boxType = FlexBox
	}
	box := &LayoutBox{BoxType: boxType, Node: n, Style: cs, Dimensions: d}
	restore := lc.enterPositioned(cs)
	defer restore()
	lc.register(box)

	explicitH, hasH := lc.explicitHeight(cs, d, cbHeight)
	box.Dimensions.Content.Height = explicitH
	childAbsCB := absCB
	if cs.Position() != "static" {
		childAbsCB = box.Dimensions.PaddingBox()
	}
	lc.layoutContent(n, cs, box, childAbsCB, explicitH)
	if hasH {
		box.Dimensions.Content.Height = explicitH
	}
	f.y = box.Dimensions.BorderBox().Bottom()
	f.pendingMargin = d.Margin.Bottom
	f.maxX = math.Max(f.maxX, box.Dimensions.MarginBox().Right())
	lc.applyRelativeOffset(box, cs, f.width, cbHeight)
}

// layoutContent lays out n's children inside box's content rectangle and
// sets the content height from them.
func (lc *layoutContext) layoutContent(n *html.Node, cs *style.ComputedStyle, box *LayoutBox, absCB Rect, cbHeight float64) {
	c := &box.Dimensions.Content
	if isReplaced(n) {
		return
	}
	inner := newFlow(c.X, c.Y, c.Width)
	switch {
	case box.BoxType == FlexBox && !strings.HasPrefix(cs.Get("flex-direction"), "column"):
		lc.layoutFlexRow(n, inner, absCB, cbHeight)
	case cs.Display() == "table-row":
		lc.layoutTableRow(n, inner, absCB, cbHeight)
	default:
		lc.layoutPseudo(n, "before", inner)
		lc.layoutChildren(lc.engine.children(n), inner, absCB, cbHeight)
		lc.layoutPseudo(n, "after", inner)
		inner.endLine()
	}
	c.Height = inner.bottom() - c.Y
}

// layoutFlexRow places each in-flow child as a shrink-to-fit item along a
// row, wrapping when the row is full. Text children become anonymous items.
func (lc *layoutContext) layoutFlexRow(n *html.Node, f *flow, absCB Rect, cbHeight float64) {
	for _, child := range lc.engine.children(n) {
		switch child.Type {
		case html.TextNode:
			if strings.TrimSpace(child.Data) != "" {
				lc.layoutText(child, lc.engine.styles.Compute(child, ""), child.Data, f)
			}
		case html.ElementNode:
			cs := lc.engine.styles.Compute(child, "")
			switch cs.Display() {
			case "none":
				continue
			case "contents":
				lc.layoutContents(child, cs, f, absCB, cbHeight)
				continue
			}
			if p := cs.Position(); p == "absolute" || p == "fixed" {
				lc.layoutElement(child, f, absCB, cbHeight)
				continue
			}
			f.pendingSpace = false
			lc.layoutAtomicInline(child, cs, f, absCB)
		}
	}
	f.endLine()
}

// layoutTableRow splits the row width evenly between its cells.
func (lc *layoutContext) layoutTableRow(n *html.Node, f *flow, absCB Rect, cbHeight float64) {
	var cells []*html.Node
	for _, child := range lc.engine.children(n) {
		if child.Type == html.ElementNode && lc.engine.styles.Compute(child, "").Display() != "none" {
			cells = append(cells, child)
		}
	}
	if len(cells) == 0 {
		return
	}
	cellWidth := f.width / float64(len(cells))
	rowH := 0.0
	for i, cell := range cells {
		cf := newFlow(f.x0+float64(i)*cellWidth, f.y, cellWidth)
		lc.layoutElement(cell, cf, absCB, cbHeight)
		rowH = math.Max(rowH, cf.bottom()+cf.pendingMargin-f.y)
	}
	f.y += rowH
}

// layoutAtomicInline places an inline-block or replaced element as a single
// unit on the current line.
func (lc *layoutContext) layoutAtomicInline(n *html.Node, cs *style.ComputedStyle, f *flow, absCB Rect) {
	d := boxEdges(cs, f.width)
	w, h := lc.atomicSize(n, cs, d, f.width)
	outerW := w + d.Padding.Horizontal() + d.Border.Horizontal() + d.Margin.Horizontal()

	if f.pendingSpace && f.inLine && f.x > f.x0 {
		f.x += style.MeasureText(" ", cs.FontSize())
	}
	f.pendingSpace = false

	// Height is only known after the contents are laid out.
	x, y := f.place(outerW, 0)
	d.Content = Rect{
		X:     x + d.Margin.Left + d.Border.Left + d.Padding.Left,
		Y:     y + d.Margin.Top + d.Border.Top + d.Padding.Top,
		Width: w,
	}
	box := &LayoutBox{BoxType: InlineBlockBox, Node: n, Style: cs, Dimensions: d}
	restore := lc.enterPositioned(cs)
	defer restore()
	lc.register(box)

	childAbsCB := absCB
	if cs.Position() != "static" {
		childAbsCB = d.PaddingBox()
	}
	if h < 0 {
		lc.layoutContent(n, cs, box, childAbsCB, 0)
	} else {
		if !isReplaced(n) {
			lc.layoutContent(n, cs, box, childAbsCB, h)
		}
		box.Dimensions.Content.Height = h
	}
	lc.applyRelativeOffset(box, cs, f.width, 0)

	margin := box.Dimensions.MarginBox()
	f.lineH = math.Max(f.lineH, margin.Height)
	lc.fragments = append(lc.fragments, box.Dimensions.BorderBox())
}

// atomicSize returns the content width and height of an atomic inline. A
// negative height means auto.
func (lc *layoutContext) atomicSize(n *html.Node, cs *style.ComputedStyle, d Dimensions, available float64) (float64, float64) {
	w, hasW := cs.Length("width", available)
	h, hasH := cs.Length("height", 0)
	if hasW && cs.Get("box-sizing") == "border-box" {
		w = math.Max(0, w-d.Padding.Horizontal()-d.Border.Horizontal())
	}
	if hasH && cs.Get("box-sizing") == "border-box" {
		h = math.Max(0, h-d.Padding.Vertical()-d.Border.Vertical())
	}

	if isReplaced(n) {
		iw, ih := intrinsicSize(n, cs)
		if !hasW {
			w = iw
		}
		if !hasH {
			h = ih
		}
		return w, h
	}
	if !hasW {
		w = lc.shrinkToFit(n, cs, available-d.Margin.Horizontal()-d.Padding.Horizontal()-d.Border.Horizontal())
	}
	if !hasH {
		h = -1
	}
	return w, h
}

// shrinkToFit measures the preferred width of n's contents, capped at the
// available width.
func (lc *layoutContext) shrinkToFit(n *html.Node, cs *style.ComputedStyle, available float64) float64 {
	if available < 0 {
		available = 0
	}
	saved, savedFrags := lc.measuring, len(lc.fragments)
	lc.measuring = true
	f := newFlow(0, 0, available)
	if cs.Display() == "flex" || cs.Display() == "inline-flex" {
		lc.layoutFlexRow(n, f, Rect{}, 0)
	} else {
		lc.layoutPseudo(n, "before", f)
		lc.layoutChildren(lc.engine.children(n), f, Rect{}, 0)
		lc.layoutPseudo(n, "after", f)
	}
	lc.measuring = saved
	lc.fragments = lc.fragments[:savedFrags]
	return math.Min(f.maxX, available)
}

// layoutPositioned lays out an absolutely or fixed positioned box against
// cb. The static position is the current flow cursor.
func (lc *layoutContext) layoutPositioned(n *html.Node, cs *style.ComputedStyle, f *flow, cb Rect) {
	d := boxEdges(cs, cb.Width)
	staticX, staticY := f.x0, f.bottom()+f.pendingMargin
	if f.inLine {
		staticX, staticY = f.x, f.y
	}

	left, hasL := cs.Length("left", cb.Width)
	right, hasR := cs.Length("right", cb.Width)
	top, hasT := cs.Length("top", cb.Height)
	bottom, hasB := cs.Length("bottom", cb.Height)
	extraW := d.Padding.Horizontal() + d.Border.Horizontal() + d.Margin.Horizontal()
	extraH := d.Padding.Vertical() + d.Border.Vertical() + d.Margin.Vertical()

	w, hasW := cs.Length("width", cb.Width)
	switch {
	case hasW && cs.Get("box-sizing") == "border-box":
		w = math.Max(0, w-d.Padding.Horizontal()-d.Border.Horizontal())
	case hasW:
	case hasL && hasR:
		w = math.Max(0, cb.Width-left-right-extraW)
	case isReplaced(n):
		w, _ = intrinsicSize(n, cs)
	default:
		w = lc.shrinkToFit(n, cs, cb.Width-extraW)
	}

	x := staticX
	switch {
	case hasL:
		x = cb.X + left
	case hasR:
		x = cb.Right() - right - w - extraW
	}
	d.Content.X = x + d.Margin.Left + d.Border.Left + d.Padding.Left
	d.Content.Width = w

	box := &LayoutBox{BoxType: BlockBox, Node: n, Style: cs, Dimensions: d}
	restore := lc.enterPositioned(cs)
	defer restore()
	lc.register(box)

	h, hasH := cs.Length("height", cb.Height)
	if hasH && cs.Get("box-sizing") == "border-box" {
		h = math.Max(0, h-d.Padding.Vertical()-d.Border.Vertical())
	}
	if !hasH && hasT && hasB {
		h, hasH = math.Max(0, cb.Height-top-bottom-extraH), true
	}
	// Lay out at the top first; bottom-anchored boxes move once the height is known.
	y := staticY
	if hasT {
		y = cb.Y + top
	}
	box.Dimensions.Content.Y = y + d.Margin.Top + d.Border.Top + d.Padding.Top
	if isReplaced(n) {
		_, ih := intrinsicSize(n, cs)
		if !hasH {
			h = ih
		}
	} else {
		lc.layoutContent(n, cs, box, d.PaddingBox(), h)
	}
	if hasH {
		box.Dimensions.Content.Height = h
	}
	if !hasT && hasB {
		lc.shift(box, 0, cb.Bottom()-bottom-box.Dimensions.MarginBox().Bottom())
	}
}

// applyRelativeOffset moves a position:relative box and its descendants.
func (lc *layoutContext) applyRelativeOffset(box *LayoutBox, cs *style.ComputedStyle, cbWidth, cbHeight float64) {
	if cs.Position() != "relative" && cs.Position() != "sticky" {
		return
	}
	dx, dy := 0.0, 0.0
	if l, ok := cs.Length("left", cbWidth); ok {
		dx = l
	} else if r, ok := cs.Length("right", cbWidth); ok {
		dx = -r
	}
	if t, ok := cs.Length("top", cbHeight); ok {
		dy = t
	} else if b, ok := cs.Length("bottom", cbHeight); ok {
		dy = -b
	}
	if dx != 0 || dy != 0 {
		lc.shift(box, dx, dy)
	}
}

// shift translates box and every box registered after it that lies inside
// its subtree.
func (lc *layoutContext) shift(box *LayoutBox, dx, dy float64) {
	if lc.measuring {
		return
	}
	move := func(b *LayoutBox) {
		b.Dimensions.Content.X += dx
		b.Dimensions.Content.Y += dy
		for i := range b.Fragments {
			b.Fragments[i].X += dx
			b.Fragments[i].Y += dy
		}
	}
	move(box)
	for _, b := range lc.result.paint {
		if b != box && isDescendant(b.Node, box.Node) {
			move(b)
		}
	}
}

func isDescendant(n, ancestor *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// blockWidth resolves the content width of a block-level box.
func (lc *layoutContext) blockWidth(cs *style.ComputedStyle, d Dimensions, available float64) float64 {
	if w, ok := cs.Length("width", available); ok {
		if cs.Get("box-sizing") == "border-box" {
			w -= d.Padding.Horizontal() + d.Border.Horizontal()
		}
		if mw, ok := cs.Length("max-width", available); ok {
			w = math.Min(w, mw)
		}
		return math.Max(0, w)
	}
	w := available - d.Margin.Horizontal() - d.Padding.Horizontal() - d.Border.Horizontal()
	if mw, ok := cs.Length("max-width", available); ok {
		w = math.Min(w, mw)
	}
	return math.Max(0, w)
}

func (lc *layoutContext) explicitHeight(cs *style.ComputedStyle, d Dimensions, cbHeight float64) (float64, bool) {
	raw := strings.TrimSpace(cs.Get("height"))
	if strings.HasSuffix(raw, "%") && cbHeight <= 0 {
		return 0, false
	}
	h, ok := cs.Length("height", cbHeight)
	if !ok {
		return 0, false
	}
	if cs.Get("box-sizing") == "border-box" {
		h -= d.Padding.Vertical() + d.Border.Vertical()
	}
	return math.Max(0, h), true
}

// boxEdges resolves margins, borders and padding. Auto margins are zero.
func boxEdges(cs *style.ComputedStyle, cbWidth float64) Dimensions {
	side := func(prefix, suffix string) Edges {
		return Edges{
			Top:    cs.LengthOr(prefix+"-top"+suffix, cbWidth, 0),
			Right:  cs.LengthOr(prefix+"-right"+suffix, cbWidth, 0),
			Bottom: cs.LengthOr(prefix+"-bottom"+suffix, cbWidth, 0),
			Left:   cs.LengthOr(prefix+"-left"+suffix, cbWidth, 0),
		}
	}
	return Dimensions{
		Margin:  side("margin", ""),
		Border:  side("border", "-width"),
		Padding: side("padding", ""),
	}
}

// isReplaced reports elements whose contents are not laid out as children.
func isReplaced(n *html.Node) bool {
	switch n.Data {
	case "img", "input", "textarea", "select", "video", "canvas", "iframe", "embed", "object", "audio", "meter", "progress", "svg":
		return true
	}
	return false
}

// intrinsicSize returns the natural size of a replaced element. Images fall
// back to width/height attributes, then their alt text; an image without alt
// shows a 16×16 placeholder.
func intrinsicSize(n *html.Node, cs *style.ComputedStyle) (float64, float64) {
	w, hasW := attrLength(n, "width")
	h, hasH := attrLength(n, "height")
	switch n.Data {
	case "img":
		if hasW && hasH {
			return w, h
		}
		alt, hasAlt := attr(n, "alt")
		switch {
		case !hasAlt:
			return 16, 16
		case alt == "":
			return 0, 0
		}
		return style.MeasureText(alt, cs.FontSize()), cs.LineHeight()
	case "svg", "canvas", "iframe", "video", "embed", "object":
		if !hasW {
			w = 300
		}
		if !hasH {
			h = 150
		}
		return w, h
	case "audio":
		return 300, 54
	case "meter", "progress":
		return 80, 16
	case "input":
		if label, ok := buttonLabel(n); ok {
			return style.MeasureText(label, cs.FontSize()), cs.LineHeight()
		}
	}
	// Form controls are sized by the user agent sheet.
	return cs.LengthOr("width", 0, 0), cs.LengthOr("height", 0, 0)
}

// buttonLabel returns the rendered caption of a button-like input.
func buttonLabel(n *html.Node) (string, bool) {
	t, _ := attr(n, "type")
	var fallback string
	switch strings.ToLower(t) {
	case "submit":
		fallback = "Submit"
	case "reset":
		fallback = "Reset"
	case "button":
	default:
		return "", false
	}
	if v, ok := attr(n, "value"); ok {
		return v, true
	}
	return fallback, true
}

func attrLength(n *html.Node, key string) (float64, bool) {
	v, ok := attr(n, key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	return f, err == nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func unionAll(rects []Rect, fallback Rect) Rect {
	if len(rects) == 0 {
		return fallback
	}
	u := rects[0]
	for _, r := range rects[1:] {
		u = u.Union(r)
	}
	return u
}
