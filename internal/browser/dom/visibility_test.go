package dom_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/scalpel-introspect/internal/browser/dom"
	"go.uber.org/goleak"
)

func TestIsVisible(t *testing.T) {
	doc := mustParse(t, `<style>
		.none { display: none; }
		.hidden { visibility: hidden; }
		.clear { opacity: 0; }
		.cv { content-visibility: hidden; }
		.contents { display: contents; }
	</style>
	<button id="plain">ok</button>
	<div class="none"><button id="in-none">x</button></div>
	<button id="hidden" class="hidden">x</button>
	<div class="hidden"><button id="revealed" style="visibility: visible">x</button></div>
	<button id="clear" class="clear">x</button>
	<div class="clear"><button id="in-clear">x</button></div>
	<div class="cv"><button id="in-cv">x</button></div>
	<div id="contents" class="contents"><span>text</span></div>
	<div id="empty-contents" class="contents"></div>
	<div id="empty"></div>
	<select id="sel"><option id="opt">o</option></select>
	<select class="none"><option id="opt-hidden">o</option></select>`)

	tests := map[string]bool{
		"plain":          true,
		"in-none":        false,
		"hidden":         false,
		"revealed":       true,
		"clear":          false,
		"in-clear":       true,
		"in-cv":          false,
		"contents":       true,
		"empty-contents": false,
		"empty":          false,
		"sel":            true,
		"opt":            true,
		"opt-hidden":     false,
	}
	for id, want := range tests {
		t.Run(id, func(t *testing.T) {
			el := doc.ElementByID(doc.Root(), id)
			require.NotNil(t, el)
			assert.Equal(t, want, doc.IsVisible(el))
		})
	}
}

func TestStyleCacheSharesSession(t *testing.T) {
	doc := mustParse(t, `<p id="p" style="cursor: pointer">x</p>`)
	p := doc.ElementByID(doc.Root(), "p")

	outside := doc.ComputedStyle(p, "")
	require.NoError(t, doc.Session().Run(func() error {
		first := doc.ComputedStyle(p, "")
		assert.Same(t, first, doc.ComputedStyle(p, ""))
		assert.Equal(t, outside.Cursor(), first.Cursor())
		return nil
	}))
	assert.Equal(t, "pointer", doc.Cursor(p))
}

func TestReceivesPointerEvents(t *testing.T) {
	doc := mustParse(t, `<body style="margin:0">
		<button id="covered" style="width:100px; height:40px">under</button>
		<div style="position:absolute; top:0; left:0; width:200px; height:100px"></div>
		<button id="free" style="position:absolute; top:200px; left:0; width:100px; height:40px"><span>label</span></button>
		<div id="ghost" style="position:absolute; top:300px; left:0; width:100px; height:40px; pointer-events:none"></div>
	</body>`)

	assert.False(t, doc.ReceivesPointerEvents(doc.ElementByID(doc.Root(), "covered")), "an overlay intercepts the pointer")
	assert.True(t, doc.ReceivesPointerEvents(doc.ElementByID(doc.Root(), "free")), "hits on descendants count")
	assert.False(t, doc.ReceivesPointerEvents(doc.ElementByID(doc.Root(), "ghost")))
}

func TestViewportRatioFuture(t *testing.T) {
	defer goleak.VerifyNone(t)

	doc := mustParse(t, `<body style="margin:0">
		<div id="in" style="height:10px"></div>
		<div id="half" style="position:absolute; top:700px; height:40px; width:10px"></div>
	</body>`, dom.WithViewport(1280, 720))

	ratio, err := doc.ViewportRatio(doc.ElementByID(doc.Root(), "in")).Await(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, ratio, 1e-9)

	ratio, err = doc.ViewportRatio(doc.ElementByID(doc.Root(), "half")).Await(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 0.5, ratio, 1e-9)
}

func TestFutureAwaitCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := make(chan struct{})
	f := dom.Go(func() (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	close(release)
	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = dom.Resolved(7).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
