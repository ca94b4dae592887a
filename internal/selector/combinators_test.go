package selector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAndOr(t *testing.T) {
	f := newFixture(t, `<i id="a" class="foo bar"></i><i id="b" class="bar"></i><i id="c" class="foo"></i><i id="d" class="bar foo"></i>`)

	assert.Equal(t, []string{"a", "d"}, f.ids(`internal:and=".foo" && ".bar"`))
	assert.Equal(t, []string{"a", "d"}, f.ids(`internal:and=".bar && .foo"`), "results keep document order")
	assert.Equal(t, []string{"a"}, f.ids(`internal:and=".foo" && ".bar" && "#a, #b"`))

	assert.Equal(t, []string{"a", "b", "c", "d"}, f.ids(`internal:or=".foo" || ".bar"`))
	assert.Equal(t, []string{"b", "c"}, f.ids(`internal:or="#c" || "#b" || "#c"`), "union without duplicates")
	assert.Equal(t, []string{"b", "c"}, f.ids(`internal:or="#c || #b"`))
}

func TestHas(t *testing.T) {
	f := newFixture(t, `<div id="a" class="card"><span class="x">x</span></div><div id="b" class="card"><span id="plain">y</span></div>`)

	assert.Equal(t, []string{"a"}, f.ids(`css=.card >> internal:has=".x"`))
	// The card itself and its elements are candidates.
	assert.Equal(t, []string{"?", "b", "plain"}, f.ids(`css=.card >> internal:has-not=".x"`))
	assert.Equal(t, []string{"b"}, f.ids(`internal:and=".card" && internal:has-not=".x"`))
	assert.Equal(t, []string{"a"}, f.ids(`css=.card >> internal:has="text=x"`), "the inner selector may name an engine")
}

func TestHasText(t *testing.T) {
	f := newFixture(t, `<ul><li id="a">Apple pie</li><li id="b">Banana</li></ul>`)

	assert.Equal(t, []string{"a"}, f.ids(`css=li >> internal:has-text=apple`))
	assert.Equal(t, []string{"b"}, f.ids(`css=li >> internal:has-not-text=apple`))
	assert.Equal(t, []string{"b"}, f.ids(`css=li >> internal:has-text=/^ban/i`))
	assert.Equal(t, []string{"b"}, f.ids(`css=li >> internal:has-text="Banana"`))
	assert.Empty(t, f.ids(`css=li >> internal:has-text="banana"`))
	assert.Empty(t, f.ids(`css=li >> internal:has-text=/[/`), "a broken regex matches literally")
}

func TestLabel(t *testing.T) {
	f := newFixture(t, `<label for="e">Email</label><input id="e">`+
		`<label>Name <input id="n"></label>`+
		`<span id="lbl">Phone</span><input id="p" aria-labelledby="lbl">`+
		`<input id="q" aria-label="Query">`)

	assert.Equal(t, []string{"e"}, f.ids(`internal:label=email`))
	assert.Equal(t, []string{"n"}, f.ids(`internal:label=name`))
	assert.Equal(t, []string{"p"}, f.ids(`internal:label=phone`))
	assert.Equal(t, []string{"q"}, f.ids(`internal:label="Query"`))
	assert.Empty(t, f.ids(`internal:label="query"`))
}

func TestVisibleEngine(t *testing.T) {
	f := newFixture(t, `<button id="v">x</button><button id="h" style="display:none">y</button>`)

	assert.Equal(t, []string{"v"}, f.ids(`css=button >> internal:visible=true`))
	assert.Equal(t, []string{"h"}, f.ids(`css=button >> internal:visible=false`))
	assert.Empty(t, f.ids(`css=button >> internal:visible=maybe`))
}
