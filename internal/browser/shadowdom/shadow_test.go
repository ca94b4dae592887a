package shadowdom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// --- Helpers ---

// parseHTML parses a fragment and returns the <body> element.
func parseHTML(t *testing.T, h string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader("<html><body>" + h + "</body></html>"))
	require.NoError(t, err)
	return doc.FirstChild.FirstChild.NextSibling
}

func firstElement(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func elementsOnly(nodes []*html.Node) []string {
	var out []string
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			out = append(out, n.Data+":"+strings.TrimSpace(textOf(n)))
		}
	}
	return out
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textOf(c))
	}
	return sb.String()
}

func findSlot(root *html.Node, name string) *html.Node {
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "slot" && getAttr(n, "name") == name {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

// --- Tests for Internal Helpers ---

func TestGetAttr(t *testing.T) {
	node := firstElement(parseHTML(t, `<div id="test" CLASS="TestClass"></div>`))

	assert.Equal(t, "test", getAttr(node, "id"))
	assert.Equal(t, "TestClass", getAttr(node, "class"), "getAttr should be case-insensitive")
	assert.Equal(t, "", getAttr(node, "missing"))
	assert.Equal(t, "", getAttr(nil, "id"))
}

// --- Tests for DetectShadowHost ---

func TestDetectShadowHost(t *testing.T) {
	e := NewEngine(nil)
	tests := []struct {
		name     string
		html     string
		expected bool
	}{
		{"Valid Host Open", `<div><template shadowrootmode="open"></template></div>`, true},
		{"Valid Host Closed", `<div><template shadowrootmode="closed"></template></div>`, true},
		{"Case Insensitive", `<div><template ShadowRootMode="OPEN"></template></div>`, true},
		{"No Template", `<div><span></span></div>`, false},
		{"Template Without Attribute", `<div><template></template></div>`, false},
		{"Bogus Mode", `<div><template shadowrootmode="sideways"></template></div>`, false},
		{"Nested (Invalid)", `<div><span><template shadowrootmode="open"></template></span></div>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := firstElement(parseHTML(t, tt.html))
			assert.Equal(t, tt.expected, e.DetectShadowHost(host))
		})
	}
}

// --- Tests for InstantiateShadowRoot ---

func TestInstantiateShadowRoot(t *testing.T) {
	e := NewEngine(nil)

	t.Run("Basic Instantiation", func(t *testing.T) {
		host := firstElement(parseHTML(t, `<div><template shadowrootmode="open"><h1>Shadow</h1></template></div>`))

		root, sheets := e.InstantiateShadowRoot(host)

		require.NotNil(t, root)
		assert.Empty(t, sheets)
		assert.Equal(t, RootData, root.Data)
		assert.Equal(t, html.DocumentNode, root.Type)
		assert.Nil(t, root.Parent)

		h1 := firstElement(root)
		require.NotNil(t, h1)
		assert.Equal(t, "h1", h1.Data)
		assert.Nil(t, firstElement(host), "template must be removed from the host")
	})

	t.Run("Style Extraction", func(t *testing.T) {
		host := firstElement(parseHTML(t, `<div><template shadowrootmode="open">
			<style>h1 { color: red; }</style>
			<h1>Styled</h1>
			<style>p { margin: 10px; }</style>
		</template></div>`))

		root, sheets := e.InstantiateShadowRoot(host)

		require.NotNil(t, root)
		require.Len(t, sheets, 2)
		require.Len(t, sheets[0].Rules, 1)
		assert.Equal(t, "color", sheets[0].Rules[0].Declarations[0].Property)
		// The <style> elements stay in the shadow tree.
		assert.Equal(t, "style", firstElement(root).Data)
	})
}

// --- Tests for Attach and Forest ---

func TestAttachNested(t *testing.T) {
	e := NewEngine(nil)
	body := parseHTML(t, `<div id="outer"><template shadowrootmode="open">
		<section><template shadowrootmode="closed"><b>deep</b></template></section>
	</template></div>`)

	f := e.Attach(body)
	require.Len(t, f.Roots(), 2)

	outerHost := firstElement(body)
	outerRoot := f.ShadowRoot(outerHost)
	require.NotNil(t, outerRoot)
	assert.Same(t, outerHost, f.Host(outerRoot))

	section := firstElement(outerRoot)
	innerRoot := f.ShadowRoot(section)
	require.NotNil(t, innerRoot)
	r, ok := f.Root(innerRoot)
	require.True(t, ok)
	assert.Equal(t, "closed", r.Mode)
	assert.Equal(t, "b", firstElement(innerRoot).Data)
}

func TestAttachShadowProgrammatically(t *testing.T) {
	e := NewEngine(nil)
	body := parseHTML(t, `<div><span>light</span></div>`)
	f := e.Attach(body)
	host := firstElement(body)

	r, err := e.AttachShadow(f, host, "open")
	require.NoError(t, err)
	slot := &html.Node{Type: html.ElementNode, Data: "slot"}
	r.Node.AppendChild(slot)
	f.Reassign()

	assert.Equal(t, []string{"span:light"}, elementsOnly(f.AssignedNodes(slot)))

	_, err = e.AttachShadow(f, host, "open")
	assert.Error(t, err, "a host can only have one shadow root")
}

// --- Tests for Slot Assignment ---

func TestAssignSlots(t *testing.T) {
	e := NewEngine(nil)

	t.Run("Named and Default Slots", func(t *testing.T) {
		body := parseHTML(t, `<div><template shadowrootmode="open"><slot name="header"></slot><slot></slot><slot name="footer"></slot></template><h1 slot="header">H1</h1><p>P1</p><span slot="footer">S1</span><p>P2</p><div slot="missing">D1</div></div>`)
		f := e.Attach(body)
		root := f.ShadowRoot(firstElement(body))

		assert.Equal(t, []string{"h1:H1"}, elementsOnly(f.AssignedNodes(findSlot(root, "header"))))
		assert.Equal(t, []string{"span:S1"}, elementsOnly(f.AssignedNodes(findSlot(root, "footer"))))
		assert.Equal(t, []string{"p:P1", "p:P2"}, elementsOnly(f.AssignedNodes(findSlot(root, ""))))

		var missing *html.Node
		for c := firstElement(body).FirstChild; c != nil; c = c.NextSibling {
			if getAttr(c, "slot") == "missing" {
				missing = c
			}
		}
		require.NotNil(t, missing)
		assert.Nil(t, f.AssignedSlot(missing))
	})

	t.Run("Fallback Content (No Assignment)", func(t *testing.T) {
		body := parseHTML(t, `<div><template shadowrootmode="open"><slot name="empty"><span>Fallback</span></slot></template></div>`)
		f := e.Attach(body)
		slot := findSlot(f.ShadowRoot(firstElement(body)), "empty")

		assert.Empty(t, f.AssignedNodes(slot))
		assert.Equal(t, "span", firstElement(slot).Data)
	})

	t.Run("Only the first default slot receives content", func(t *testing.T) {
		body := parseHTML(t, `<div><template shadowrootmode="open"><slot id="first"></slot><slot id="second"></slot></template><p>Content</p></div>`)
		f := e.Attach(body)
		root := f.ShadowRoot(firstElement(body))
		first := firstElement(root)
		second := first.NextSibling

		assert.Len(t, f.AssignedNodes(first), 1)
		assert.Empty(t, f.AssignedNodes(second))
	})

	t.Run("Text Nodes", func(t *testing.T) {
		body := parseHTML(t, `<div><template shadowrootmode="open"><slot></slot></template> Hello World </div>`)
		f := e.Attach(body)
		slot := findSlot(f.ShadowRoot(firstElement(body)), "")

		nodes := f.AssignedNodes(slot)
		require.NotEmpty(t, nodes)
		assert.Equal(t, html.TextNode, nodes[0].Type)
		assert.Same(t, slot, f.AssignedSlot(nodes[0]))
	})
}
