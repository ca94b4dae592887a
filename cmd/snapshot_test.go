// File: cmd/snapshot_test.go
package cmd

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const formPage = `<html><body>
<h1>Sign in</h1>
<form id="login">
	<label>User <input id="user"></label>
	<button id="go">Go</button>
</form>
<p><a href="/help">Help</a></p>
</body></html>`

func TestSnapshotAria(t *testing.T) {
	page := writeFile(t, "page.html", formPage)

	out, err := executeCommand(t, nil, "snapshot", page)
	require.NoError(t, err)
	assert.Contains(t, out, `heading "Sign in" [level=1]`)
	assert.Contains(t, out, `textbox "User" [ref=`)
	assert.Contains(t, out, `button "Go" [ref=`)
	assert.Contains(t, out, "/url: /help")

	out, err = executeCommand(t, nil, "snapshot", "--refs", "none", page)
	require.NoError(t, err)
	assert.NotContains(t, out, "[ref=")
}

func TestSnapshotFlat(t *testing.T) {
	page := writeFile(t, "page.html", formPage)

	out, err := executeCommand(t, nil, "snapshot", "--mode", "flat", "--interactive", page)
	require.NoError(t, err)
	assert.Equal(t, "ref_1 textbox \"User\"\nref_2 button \"Go\"\nref_3 link \"Help\"\n", out)

	out, err = executeCommand(t, nil, "snapshot", "-m", "flat", "-i", "--root", "#login", page)
	require.NoError(t, err)
	assert.Equal(t, "ref_1 textbox \"User\"\nref_2 button \"Go\"\n", out)
}

func TestSnapshotJSON(t *testing.T) {
	page := writeFile(t, "page.html", formPage)

	out, err := executeCommand(t, nil, "snapshot", "-m", "flat", "-i", "--format", "json", "--selectors", page)
	require.NoError(t, err)

	var got flatResult
	require.NoError(t, json.UnmarshalFromString(out, &got))
	assert.Equal(t, page, got.Source)
	require.Len(t, got.Nodes, 3)
	assert.Equal(t, "button", got.Nodes[1].Role)
	assert.Equal(t, `//*[@id='go']`, got.Nodes[1].Selector)

	out, err = executeCommand(t, nil, "snapshot", "--format", "json", page)
	require.NoError(t, err)
	var aria map[string]any
	require.NoError(t, json.UnmarshalFromString(out, &aria))
	assert.Equal(t, page, aria["source"])
	assert.Contains(t, aria, "snapshot")
}

func TestSnapshotXML(t *testing.T) {
	page := writeFile(t, "page.html", formPage)

	out, err := executeCommand(t, nil, "snapshot", "--format", "xml", page)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(out))
	heading := doc.FindElement("//heading[@name='Sign in']")
	require.NotNil(t, heading)
	assert.Equal(t, "1", heading.SelectAttrValue("level", ""))

	button := doc.FindElement("//button[@name='Go']")
	require.NotNil(t, button)
	assert.NotEmpty(t, button.SelectAttrValue("ref", ""))
}

func TestSnapshotManyPages(t *testing.T) {
	var paths []string
	for _, label := range []string{"One", "Two", "Three", "Four", "Five"} {
		paths = append(paths, writeFile(t, strings.ToLower(label)+".html", `<button>`+label+`</button>`))
	}

	args := append([]string{"snapshot", "-m", "flat", "-i", "--concurrency", "2"}, paths...)
	out, err := executeCommand(t, nil, args...)
	require.NoError(t, err)

	var want strings.Builder
	for i, label := range []string{"One", "Two", "Three", "Four", "Five"} {
		want.WriteString("# " + paths[i] + "\n")
		want.WriteString(`ref_1 button "` + label + "\"\n")
	}
	assert.Equal(t, want.String(), out, "output keeps argument order")
}

func TestSnapshotStdin(t *testing.T) {
	out, err := executeCommand(t, strings.NewReader(`<button>Piped</button>`), "snapshot", "-m", "flat", "-i", "-")
	require.NoError(t, err)
	assert.Equal(t, "ref_1 button \"Piped\"\n", out)

	_, err = executeCommand(t, strings.NewReader(""), "snapshot", "-", "-")
	assert.ErrorContains(t, err, "standard input can be read only once")
}

func TestSnapshotErrors(t *testing.T) {
	page := writeFile(t, "page.html", formPage)

	tests := map[string]struct {
		args []string
		want string
	}{
		"no files":       {[]string{"snapshot"}, "requires at least 1 arg"},
		"bad mode":       {[]string{"snapshot", "--mode", "tree", page}, `unknown mode "tree"`},
		"bad format":     {[]string{"snapshot", "--format", "yaml", page}, `unknown format "yaml"`},
		"flat xml":       {[]string{"snapshot", "-m", "flat", "-f", "xml", page}, "xml format needs the aria mode"},
		"bad visibility": {[]string{"snapshot", "--visibility", "maybe", page}, "visibility must be one of"},
		"missing file":   {[]string{"snapshot", page + ".missing"}, "open page"},
		"no root match":  {[]string{"snapshot", "--root", "#nope", page}, `no element matches "#nope"`},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := executeCommand(t, nil, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
