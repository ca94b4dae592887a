package snapshot_test

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/scalpel-introspect/internal/snapshot"
)

func TestRenderAriaTree(t *testing.T) {
	snap := &snapshot.AriaSnapshot{Root: &snapshot.AccessibilityNode{Role: "fragment", Children: []snapshot.Child{
		node(&snapshot.AccessibilityNode{Role: "heading", Name: "Title", Level: 1}),
		node(&snapshot.AccessibilityNode{Role: "list", Children: []snapshot.Child{
			node(&snapshot.AccessibilityNode{Role: "listitem", Children: []snapshot.Child{text("one")}}),
			node(&snapshot.AccessibilityNode{Role: "listitem", Children: []snapshot.Child{
				node(&snapshot.AccessibilityNode{Role: "link", Name: "Home", Ref: "ref_2", URL: "/home"}),
			}}),
		}}),
		node(&snapshot.AccessibilityNode{Role: "checkbox", Name: "Agree", Checked: "true", Ref: "ref_3"}),
		text("plain: text"),
		node(&snapshot.AccessibilityNode{Role: "textbox", Name: "Q", Placeholder: "search...", Children: []snapshot.Child{text("shoes")}}),
		node(&snapshot.AccessibilityNode{Role: "button", Name: "Menu", Pressed: "mixed", Disabled: true}),
	}}}

	want := `- heading "Title" [level=1]
- list:
  - listitem: one
  - listitem:
    - link "Home" [ref=ref_2]:
      - /url: /home
- checkbox "Agree" [checked] [ref=ref_3]
- text: "plain: text"
- textbox "Q":
  - /placeholder: search...
  - text: shoes
- button "Menu" [disabled] [pressed=mixed]`
	assert.Equal(t, want, snapshot.RenderAriaTree(snap))
	assert.Empty(t, snapshot.RenderAriaTree(nil))
}

func TestRenderAriaTreeQuotesAmbiguousText(t *testing.T) {
	snap := &snapshot.AriaSnapshot{Root: &snapshot.AccessibilityNode{Role: "fragment", Children: []snapshot.Child{
		node(&snapshot.AccessibilityNode{Role: "cell", Children: []snapshot.Child{text("42")}}),
		node(&snapshot.AccessibilityNode{Role: "cell", Children: []snapshot.Child{text("true")}}),
		node(&snapshot.AccessibilityNode{Role: "cell", Children: []snapshot.Child{text("- dash")}}),
	}}}

	want := "- cell: \"42\"\n- cell: \"true\"\n- cell: \"- dash\""
	assert.Equal(t, want, snapshot.RenderAriaTree(snap))
}

func TestRenderLegacy(t *testing.T) {
	expanded := false
	nodes := []snapshot.LegacyNode{
		{Ref: "ref_1", Role: "navigation"},
		{Ref: "ref_2", Role: "link", Name: "Home", Depth: 1},
		{Ref: "ref_3", Role: "textbox", Name: "Search", Value: "shoes", Focused: true, Depth: 1},
		{Ref: "ref_4", Role: "checkbox", Name: "Agree", Checked: "mixed", Disabled: true, Depth: 2},
		{Ref: "ref_5", Role: "combobox", Expanded: &expanded, Depth: 2},
	}

	want := "ref_1 navigation\n" +
		"  ref_2 link \"Home\"\n" +
		"  ref_3 textbox \"Search\" val=\"shoes\" [focused]\n" +
		"    ref_4 checkbox \"Agree\" [checked=mixed] [disabled]\n" +
		"    ref_5 combobox [expanded=false]\n"
	assert.Equal(t, want, snapshot.RenderLegacy(nodes))
}

func TestRenderAriaXML(t *testing.T) {
	expanded := true
	snap := &snapshot.AriaSnapshot{ID: "snap-1", Root: &snapshot.AccessibilityNode{Role: "fragment", Children: []snapshot.Child{
		node(&snapshot.AccessibilityNode{Role: "heading", Name: "Title", Level: 2}),
		node(&snapshot.AccessibilityNode{Role: "list", Children: []snapshot.Child{
			node(&snapshot.AccessibilityNode{Role: "listitem", Children: []snapshot.Child{text("one & two")}}),
		}}),
		node(&snapshot.AccessibilityNode{Role: "button", Name: "Menu", Ref: "ref_4", Expanded: &expanded, Disabled: true}),
		node(&snapshot.AccessibilityNode{Role: "link", Name: `Say "hi"`, URL: "/hi?a=1&b=2"}),
	}}}

	out, err := snapshot.RenderAriaXML(snap)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(out))
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "snapshot", root.Tag)
	assert.Equal(t, "snap-1", root.SelectAttrValue("id", ""))

	heading := root.FindElement("./heading")
	require.NotNil(t, heading)
	assert.Equal(t, "2", heading.SelectAttrValue("level", ""))

	item := root.FindElement("./list/listitem")
	require.NotNil(t, item)
	assert.Equal(t, "one & two", strings.TrimSpace(item.Text()))

	button := root.FindElement("./button[@ref='ref_4']")
	require.NotNil(t, button)
	assert.Equal(t, "true", button.SelectAttrValue("expanded", ""))
	assert.Equal(t, "true", button.SelectAttrValue("disabled", ""))
	assert.Nil(t, button.SelectAttr("selected"))

	link := root.FindElement("./link")
	require.NotNil(t, link)
	assert.Equal(t, `Say "hi"`, link.SelectAttrValue("name", ""))
	assert.Equal(t, "/hi?a=1&b=2", link.SelectAttrValue("url", ""))
}

func TestRenderAriaXMLOddRoles(t *testing.T) {
	snap := &snapshot.AriaSnapshot{Root: &snapshot.AccessibilityNode{Role: "main", Children: []snapshot.Child{
		node(&snapshot.AccessibilityNode{Role: "9lives"}),
	}}}
	out, err := snapshot.RenderAriaXML(snap)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(out))
	odd := doc.FindElement("//main/node")
	require.NotNil(t, odd)
	assert.Equal(t, "9lives", odd.SelectAttrValue("role", ""))

	empty, err := snapshot.RenderAriaXML(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
