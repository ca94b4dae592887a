package snapshot_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/scalpel-introspect/internal/browser/dom"
	"github.com/xkilldash9x/scalpel-introspect/internal/snapshot"
	"go.uber.org/goleak"
)

const legacyMarkup = `<div id="root">` +
	`<nav><ul><li><a id="home" href="/">Home</a></li></ul><p>text</p><button id="off" disabled>Go</button></nav>` +
	`<div aria-hidden="true"><button>hidden</button></div>` +
	`<div id="host"><template shadowrootmode="open"><button id="inner">In</button></template></div>` +
	`</div>`

type roleDepth struct {
	Role  string
	Depth int
}

func shape(nodes []snapshot.LegacyNode) []roleDepth {
	out := make([]roleDepth, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, roleDepth{n.Role, n.Depth})
	}
	return out
}

func TestGenerateA11yTree(t *testing.T) {
	tests := []struct {
		name string
		opts snapshot.LegacyOptions
		want []roleDepth
	}{
		{
			name: "default",
			want: []roleDepth{{"navigation", 0}, {"list", 1}, {"listitem", 2}, {"link", 3}, {"paragraph", 1}, {"button", 1}},
		},
		{
			name: "pierce shadow",
			opts: snapshot.LegacyOptions{PierceShadow: true},
			want: []roleDepth{
				{"navigation", 0}, {"list", 1}, {"listitem", 2}, {"link", 3}, {"paragraph", 1}, {"button", 1},
				{"button", 0},
			},
		},
		{
			name: "interactive only",
			opts: snapshot.LegacyOptions{InteractiveOnly: true},
			want: []roleDepth{{"link", 0}, {"button", 0}},
		},
		{
			name: "max depth",
			opts: snapshot.LegacyOptions{MaxDepth: 1},
			want: []roleDepth{{"navigation", 0}, {"list", 1}, {"paragraph", 1}, {"button", 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, doc := newBuilder(t, legacyMarkup)
			nodes, err := b.GenerateA11yTree(context.Background(), byID(t, doc, "root"), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, shape(nodes))
		})
	}
}

func TestGenerateA11yTreeStates(t *testing.T) {
	b, doc := newBuilder(t, legacyMarkup)
	nodes, err := b.GenerateA11yTree(context.Background(), byID(t, doc, "root"), snapshot.LegacyOptions{
		IncludeBounds:   true,
		IncludeSelector: true,
	})
	require.NoError(t, err)

	var button *snapshot.LegacyNode
	for i := range nodes {
		if nodes[i].Element == byID(t, doc, "off") {
			button = &nodes[i]
		}
	}
	require.NotNil(t, button)
	assert.Equal(t, "Go", button.Name)
	assert.Equal(t, "button", button.Tag)
	assert.True(t, button.Disabled)
	require.NotNil(t, button.Bounds)
	assert.Greater(t, button.Bounds.Width, 0.0)
	assert.NotEmpty(t, button.Selector)

	el, ok := b.Refs().Lookup(button.Ref)
	require.True(t, ok)
	assert.Same(t, button.Element, el)
}

func TestGenerateA11yTreeViewportOnly(t *testing.T) {
	defer goleak.VerifyNone(t)

	b, doc := newBuilder(t, `<body style="margin:0"><div id="root">`+
		`<button id="near">near</button>`+
		`<button id="far" style="position:absolute; top:5000px">far</button>`+
		`</div></body>`, dom.WithViewport(800, 600))

	nodes, err := b.GenerateA11yTree(context.Background(), byID(t, doc, "root"), snapshot.LegacyOptions{ViewportOnly: true})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Same(t, byID(t, doc, "near"), nodes[0].Element)
}

func TestGenerateA11yTreeCancelled(t *testing.T) {
	b, doc := newBuilder(t, legacyMarkup)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.GenerateA11yTree(ctx, byID(t, doc, "root"), snapshot.LegacyOptions{})
	require.ErrorIs(t, err, context.Canceled)
}
