// File: internal/config/config_test.go
package config

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger().Level)
	assert.Equal(t, "scalpel-introspect", cfg.Logger().ServiceName)
	assert.True(t, cfg.Introspection().CacheEnabled)
	assert.True(t, cfg.Introspection().PierceShadow)
	assert.Equal(t, "aria_and_visual", cfg.Introspection().Visibility)
	assert.Equal(t, "interactable", cfg.Introspection().RefMode)
	assert.Equal(t, 50.0, cfg.Introspection().NearThreshold)
	assert.Equal(t, 1280.0, cfg.Browser().Viewport.Width)
	assert.Equal(t, 720.0, cfg.Browser().Viewport.Height)
	assert.NoError(t, cfg.Validate())
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	t.Run("Invalid Visibility", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.SetVisibility("sometimes")
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "visibility must be one of")
	})

	t.Run("Invalid Ref Mode", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.SetRefMode("most")
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ref_mode must be one of")
	})

	t.Run("Negative Near Threshold", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.IntrospectionCfg.NearThreshold = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("Empty Viewport", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.BrowserCfg.Viewport.Width = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "browser.viewport")
	})
}

func TestSetters(t *testing.T) {
	var c Interface = NewDefaultConfig()
	c.SetPierceShadow(false)
	c.SetVisibleOnly(true)
	c.SetRefMode("all")
	c.SetVisibility("aria")

	assert.False(t, c.Introspection().PierceShadow)
	assert.True(t, c.Introspection().VisibleOnly)
	assert.Equal(t, "all", c.Introspection().RefMode)
	assert.Equal(t, "aria", c.Introspection().Visibility)
}

// -- Loading from YAML --

func TestLoadFromYAML(t *testing.T) {
	yaml := []byte(`
logger:
  level: debug
introspection:
  ref_mode: all
  near_threshold: 80
browser:
  viewport:
    width: 800
    height: 600
`)
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewReader(yaml)))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger().Level)
	assert.Equal(t, "all", cfg.Introspection().RefMode)
	assert.Equal(t, 80.0, cfg.Introspection().NearThreshold)
	assert.Equal(t, 800.0, cfg.Browser().Viewport.Width)
	// Untouched keys keep their defaults.
	assert.Equal(t, "aria_and_visual", cfg.Introspection().Visibility)
}

func TestLoadRejectsInvalid(t *testing.T) {
	v := viper.New()
	v.Set("introspection.visibility", "never")
	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
