package introspect_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/scalpel-introspect/internal/config"
	"github.com/xkilldash9x/scalpel-introspect/internal/selector"
	"github.com/xkilldash9x/scalpel-introspect/internal/snapshot"
	"github.com/xkilldash9x/scalpel-introspect/pkg/introspect"
	"go.uber.org/zap/zaptest"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.NewDefaultConfig().Introspection()

	aria := introspect.AriaOptions(cfg)
	assert.Equal(t, snapshot.VisibilityAriaAndVisible, aria.Visibility)
	assert.Equal(t, snapshot.RefsInteractable, aria.Refs)
	assert.True(t, aria.FoldGeneric)
	assert.True(t, aria.BlockSpacing)

	cfg.Visibility = "aria_or_visual"
	cfg.RefMode = "none"
	cfg.FoldGeneric = false
	aria = introspect.AriaOptions(cfg)
	assert.Equal(t, snapshot.VisibilityAriaOrVisible, aria.Visibility)
	assert.Equal(t, snapshot.RefsNone, aria.Refs)
	assert.False(t, aria.FoldGeneric)

	cfg.InteractiveOnly = true
	assert.Equal(t, snapshot.LegacyOptions{PierceShadow: true, InteractiveOnly: true}, introspect.LegacyOptions(cfg))
	assert.Equal(t, selector.QueryOptions{PierceShadow: true}, introspect.QueryOptions(cfg))
}

func TestLoad(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.BrowserCfg.Viewport.Width = 400
	cfg.BrowserCfg.UserAgentCSS = "p { display: none }"

	doc, err := introspect.Load(strings.NewReader(`<body style="margin:0"><p id="p">hidden by the agent sheet</p><div id="d">shown</div></body>`), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, doc.IsVisible(doc.ElementByID(doc.Root(), "p")))
	box, ok := doc.Box(doc.ElementByID(doc.Root(), "d"))
	require.True(t, ok)
	assert.Equal(t, 400.0, box.Width, "blocks fill the configured viewport width")
}
