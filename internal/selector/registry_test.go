package selector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/scalpel-introspect/internal/selector"
	"golang.org/x/net/html"
)

func noop(*selector.Env, *html.Node, string) []*html.Node { return nil }

func TestRegistry(t *testing.T) {
	r := selector.NewRegistry()
	assert.Empty(t, r.Names())

	require.ErrorIs(t, r.Register(nil), selector.ErrInvalidEngine)
	require.ErrorIs(t, r.Register(selector.NewEngine("", noop)), selector.ErrInvalidEngine)

	require.NoError(t, r.Register(selector.NewEngine("custom", noop)))
	require.ErrorIs(t, r.Register(selector.NewEngine("custom", noop)), selector.ErrEngineExists)
	assert.True(t, r.Has("custom"))
	assert.False(t, r.Has("missing"))

	e, ok := r.Get("custom")
	require.True(t, ok)
	assert.Equal(t, "custom", e.Name())
}

func TestDefaultRegistry(t *testing.T) {
	names := selector.NewDefaultRegistry().Names()
	for _, want := range []string{
		"css", "xpath", "text", "role", "id", "data-testid",
		"internal:has", "internal:has-not", "internal:has-text", "internal:has-not-text",
		"internal:and", "internal:or", "internal:label", "internal:visible",
		"left-of", "right-of", "above", "below", "near",
		"internal:left-of", "internal:right-of", "internal:above", "internal:below", "internal:near",
	} {
		assert.Contains(t, names, want)
	}
	assert.IsIncreasing(t, names)
}
