// File: cmd/root_test.go
package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_VersionFlag(t *testing.T) {
	out, err := executeCommand(t, nil, "--version")
	require.NoError(t, err)
	assert.Equal(t, "scalpel-introspect version "+Version+"\n", out)
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, nil, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestRootCmd_NoArgs(t *testing.T) {
	out, err := executeCommand(t, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Inspect the accessibility tree")
	for _, sub := range []string{"snapshot", "query", "name", "version"} {
		assert.Contains(t, out, sub)
	}
}

func TestConfigLoading(t *testing.T) {
	page := writeFile(t, "page.html", `<button>Save</button>`)

	t.Run("config file overrides defaults", func(t *testing.T) {
		cfg := writeFile(t, "config.yaml", "introspection:\n  ref_mode: none\n")
		out, err := executeCommand(t, nil, "--config", cfg, "snapshot", page)
		require.NoError(t, err)
		assert.Contains(t, out, `button "Save"`)
		assert.NotContains(t, out, "[ref=")
	})

	t.Run("invalid value in config file", func(t *testing.T) {
		cfg := writeFile(t, "config.yaml", "introspection:\n  visibility: sometimes\n")
		_, err := executeCommand(t, nil, "--config", cfg, "snapshot", page)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load configuration")
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("SCALPEL_INTROSPECTION_REF_MODE", "bogus")
		_, err := executeCommand(t, nil, "snapshot", page)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ref_mode")
	})
}
