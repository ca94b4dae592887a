// File: cmd/query_test.go
package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listPage = `<ul>
<li class="fruit" id="a">Apple</li>
<li class="fruit" id="b">Banana <b>split</b></li>
<li class="veg" id="c" style="display:none">Carrot</li>
</ul>`

func TestQuery(t *testing.T) {
	page := writeFile(t, "list.html", listPage)

	out, err := executeCommand(t, nil, "query", "css=.fruit", page)
	require.NoError(t, err)
	assert.Equal(t, "<li class=\"fruit\" id=\"a\">Apple</li>\n<li class=\"fruit\" id=\"b\">Banana <b>split</b></li>\n", out)

	out, err = executeCommand(t, nil, "query", "--first", "--text", "li", page)
	require.NoError(t, err)
	assert.Equal(t, "Apple\n", out)

	out, err = executeCommand(t, nil, "query", "--visible", "--text", "css=li", page)
	require.NoError(t, err)
	assert.Equal(t, "Apple\nBanana split\n", out)

	out, err = executeCommand(t, nil, "query", "text=carrot", page)
	require.NoError(t, err)
	assert.Equal(t, "<li class=\"veg\" id=\"c\" style=\"display:none\">Carrot</li>\n", out)

	out, err = executeCommand(t, nil, "query", "css=.missing", page)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestQueryJSON(t *testing.T) {
	page := writeFile(t, "list.html", listPage)

	out, err := executeCommand(t, nil, "query", "-f", "json", "--text", `css=li >> internal:has-text="Banana split"`, page)
	require.NoError(t, err)

	var got queryMatch
	require.NoError(t, json.UnmarshalFromString(out, &got))
	assert.Equal(t, queryMatch{Source: page, XPath: `//*[@id='b']`, Tag: "li", Text: "Banana split"}, got)
}

func TestQueryArgs(t *testing.T) {
	_, err := executeCommand(t, nil, "query", "css=li")
	assert.ErrorContains(t, err, "requires at least 2 arg(s)")
}
