package selector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xkilldash9x/scalpel-introspect/internal/browser/layout"
	"github.com/xkilldash9x/scalpel-introspect/internal/selector"
	"go.uber.org/zap/zaptest"
)

func rect(x, y, w, h float64) layout.Rect { return layout.Rect{X: x, Y: y, Width: w, Height: h} }

func ptr(f float64) *float64 { return &f }

func TestDirectionScore(t *testing.T) {
	first, second := rect(0, 0, 100, 50), rect(150, 0, 100, 50)

	score, ok := selector.LeftOf.Score(first, second, nil)
	assert.True(t, ok)
	assert.Equal(t, 50.0, score)

	score, ok = selector.RightOf.Score(second, first, nil)
	assert.True(t, ok)
	assert.Equal(t, 50.0, score)

	_, ok = selector.RightOf.Score(first, second, nil)
	assert.False(t, ok)

	_, ok = selector.LeftOf.Score(first, second, ptr(40))
	assert.False(t, ok, "beyond the maximum distance")

	score, ok = selector.LeftOf.Score(rect(0, 10, 100, 50), second, nil)
	assert.True(t, ok)
	assert.Equal(t, 60.0, score, "vertical misalignment is penalized")

	score, ok = selector.Above.Score(rect(0, 0, 100, 50), rect(20, 80, 100, 50), nil)
	assert.True(t, ok)
	assert.Equal(t, 30.0+20.0, score, "horizontal misalignment is penalized")

	score, ok = selector.Below.Score(rect(0, 80, 100, 50), rect(0, 0, 100, 50), nil)
	assert.True(t, ok)
	assert.Equal(t, 30.0, score)
}

func TestDirectionScoreOverlap(t *testing.T) {
	box := rect(10, 10, 100, 100)
	for _, d := range []selector.Direction{selector.LeftOf, selector.RightOf, selector.Above, selector.Below} {
		_, ok := d.Score(rect(20, 20, 50, 50), box, nil)
		assert.False(t, ok, d)
	}
}

func TestNearScore(t *testing.T) {
	origin := rect(0, 0, 100, 50)

	_, ok := selector.Near.Score(origin, rect(160, 0, 100, 50), nil)
	assert.False(t, ok, "a gap of 60 exceeds the default threshold")

	score, ok := selector.Near.Score(origin, rect(120, 0, 100, 50), nil)
	assert.True(t, ok)
	assert.Equal(t, 20.0, score)

	score, ok = selector.Near.Score(origin, rect(110, 60, 100, 50), nil)
	assert.True(t, ok)
	assert.Equal(t, 20.0, score, "gaps on both axes add up")

	score, ok = selector.Near.Score(origin, rect(160, 0, 100, 50), ptr(100))
	assert.True(t, ok)
	assert.Equal(t, 60.0, score)

	score, ok = selector.Near.Score(origin, rect(50, 10, 100, 50), nil)
	assert.True(t, ok)
	assert.Equal(t, 0.0, score, "overlapping boxes are as near as it gets")
}

const stage = `<body style="margin:0"><div id="stage" style="position:relative; width:1000px; height:400px">` +
	`<div id="ref" style="position:absolute; left:200px; top:0; width:100px; height:50px"></div>` +
	`<div id="left" style="position:absolute; left:0; top:0; width:100px; height:50px"></div>` +
	`<div id="far-left" style="position:absolute; left:0; top:200px; width:50px; height:50px"></div>` +
	`<div id="right" style="position:absolute; left:350px; top:0; width:100px; height:50px"></div>` +
	`<div id="below" style="position:absolute; left:200px; top:100px; width:100px; height:50px"></div>` +
	`</div></body>`

func TestLayoutEngines(t *testing.T) {
	f := newFixture(t, stage)

	tests := map[string][]string{
		"css=#stage >> left-of=#ref":             {"left", "far-left"},
		"css=#stage >> left-of=#ref, 120":        {"left"},
		`css=#stage >> internal:left-of="#ref"`:  {"left", "far-left"},
		"css=#stage >> right-of=#ref":            {"right"},
		"css=#stage >> below=#ref":               {"below", "far-left"},
		"css=#stage >> above=#below":             {"ref", "right", "left"},
		"css=#stage >> near=#ref":                {"right", "below"},
		"css=#stage >> near=#ref, 100":           {"right", "below", "left"},
		`css=#stage >> near="div[id='ref'], #x"`: {"right", "below"},
		"css=#stage >> left-of=#missing":         {},
	}
	for sel, want := range tests {
		t.Run(sel, func(t *testing.T) {
			assert.Equal(t, want, f.ids(sel))
		})
	}
}

func TestNearThresholdOption(t *testing.T) {
	f := newFixtureWith(t, stage, selector.NewDefaultRegistry(selector.WithNearThreshold(100)), zaptest.NewLogger(t))

	assert.Equal(t, []string{"right", "below", "left"}, f.ids("css=#stage >> near=#ref"))
	assert.Equal(t, []string{"right", "below"}, f.ids("css=#stage >> near=#ref, 50"), "an explicit maximum wins")
}
