package dom_test

import (
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/scalpel-introspect/internal/browser/dom"
	"golang.org/x/net/html"
)

func mustParse(t *testing.T, markup string, opts ...dom.Option) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(markup, opts...)
	require.NoError(t, err)
	return doc
}

func find(t *testing.T, root *html.Node, expr string) *html.Node {
	t.Helper()
	n := htmlquery.FindOne(root, expr)
	require.NotNil(t, n, "no match for %s", expr)
	return n
}

func TestShadowTreeNavigation(t *testing.T) {
	doc := mustParse(t, `<div id="host"><template shadowrootmode="open"><span id="inner">in</span><slot></slot></template><b id="light">light</b></div>`)

	host := find(t, doc.Root(), "//div[@id='host']")
	sr := doc.ShadowRoot(host)
	require.NotNil(t, sr)
	assert.True(t, doc.IsShadowRoot(sr))
	assert.Equal(t, []*html.Node{sr}, doc.ShadowRoots())

	inner := find(t, sr, "//span")
	assert.Same(t, sr, doc.RootOf(inner))
	assert.Same(t, host, doc.ParentElementOrShadowHost(inner))
	assert.True(t, doc.ComposedContains(host, inner))
	assert.False(t, doc.ComposedContains(inner, host))

	assert.Nil(t, doc.ElementByID(doc.Root(), "inner"), "ids are scoped to their tree")
	assert.Same(t, inner, doc.ElementByID(sr, "inner"))

	light := find(t, doc.Root(), "//b")
	slot := find(t, sr, "//slot")
	assert.Same(t, slot, doc.AssignedSlot(light))
	assert.Same(t, slot, doc.StyleParent(light), "slotted nodes inherit from their slot")

	rendered := doc.RenderedChildren(host)
	require.Len(t, rendered, 2)
	assert.Same(t, inner, rendered[0])
	assert.Equal(t, []*html.Node{light}, doc.RenderedChildren(slot))
}

func TestAttachShadowProgrammatically(t *testing.T) {
	doc := mustParse(t, `<div id="host"><i>x</i></div>`)
	host := find(t, doc.Root(), "//div")

	sr, err := doc.AttachShadow(host, "open")
	require.NoError(t, err)
	sr.AppendChild(&html.Node{Type: html.ElementNode, Data: "slot"})
	doc.Invalidate()

	i := find(t, doc.Root(), "//i")
	assert.NotNil(t, doc.AssignedSlot(i))

	_, err = doc.AttachShadow(host, "open")
	assert.Error(t, err)
}

func TestTemplateContentIsInert(t *testing.T) {
	doc := mustParse(t, `<template id="t"><button id="b">hidden</button></template><p>x</p>`)

	assert.Nil(t, htmlquery.FindOne(doc.Root(), "//button"), "template content is not part of the tree")
	tmpl := find(t, doc.Root(), "//template")
	content := doc.TemplateContent(tmpl)
	require.NotNil(t, content)
	assert.NotNil(t, htmlquery.FindOne(content, "//button"))
}

func TestElementsByIDRefs(t *testing.T) {
	doc := mustParse(t, `<span id="a">A</span><span id="b">B</span><span id="a">dup</span><p id="p"></p>`)
	p := find(t, doc.Root(), "//p")

	refs := doc.ElementsByIDRefs(p, "  b missing a ")
	require.Len(t, refs, 2)
	assert.Equal(t, "B", dom.TextContent(refs[0]))
	assert.Equal(t, "A", dom.TextContent(refs[1]), "the first element with a duplicated id wins")
}

func TestLabels(t *testing.T) {
	doc := mustParse(t, `
		<label id="l1" for="name">Name</label>
		<label id="l2">Wrapped <input id="name"></label>
		<label id="l3" for="hidden">Nope</label><input id="hidden" type="hidden">
		<label id="l4"><span>text only</span></label>`)
	input := find(t, doc.Root(), "//input[@id='name']")

	labels := doc.Labels(input)
	require.Len(t, labels, 2)
	assert.Equal(t, "l1", dom.AttrOr(labels[0], "id"))
	assert.Equal(t, "l2", dom.AttrOr(labels[1], "id"))

	assert.Nil(t, doc.LabelControl(find(t, doc.Root(), "//label[@id='l3']")), "hidden inputs are not labelable")
	assert.Nil(t, doc.LabelControl(find(t, doc.Root(), "//label[@id='l4']")))
	assert.Empty(t, doc.Labels(find(t, doc.Root(), "//span")))
}

func TestAttrHelpers(t *testing.T) {
	doc := mustParse(t, `<div DATA-X="1"></div>`)
	div := find(t, doc.Root(), "//div")

	v, ok := dom.Attr(div, "data-x")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	dom.SetAttr(div, "role", "button")
	assert.Equal(t, "button", dom.AttrOr(div, "role"))
	dom.SetAttr(div, "role", "link")
	assert.Equal(t, "link", dom.AttrOr(div, "role"))
	dom.RemoveAttr(div, "role")
	assert.False(t, dom.HasAttr(div, "role"))
}

func TestInvalidateRefreshesIDs(t *testing.T) {
	doc := mustParse(t, `<p id="old"></p>`)
	p := find(t, doc.Root(), "//p")
	assert.Same(t, p, doc.ElementByID(doc.Root(), "old"))

	dom.SetAttr(p, "id", "new")
	doc.Invalidate()
	assert.Nil(t, doc.ElementByID(doc.Root(), "old"))
	assert.Same(t, p, doc.ElementByID(doc.Root(), "new"))
}
