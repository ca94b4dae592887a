package selector_test

import (
	"strconv"
	"strings"
	"testing"

	fuzz "github.com/AdaLogics/go-fuzz-headers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/scalpel-introspect/internal/selector"
)

func TestParseSelector(t *testing.T) {
	tests := map[string]selector.ParsedSelector{
		"css=.a":                     {Engine: "css", Body: ".a"},
		`internal:has-text="x"`:      {Engine: "internal:has-text", Body: `"x"`},
		"internal:left-of=#ref, 20":  {Engine: "internal:left-of", Body: "#ref, 20"},
		"data-testid=submit":         {Engine: "data-testid", Body: "submit"},
		"//div[@id='x']":             {Engine: "xpath", Body: "//div[@id='x']"},
		"..":                         {Engine: "xpath", Body: ".."},
		`"Log in"`:                   {Engine: "text", Body: `"Log in"`},
		"'Log in'":                   {Engine: "text", Body: "'Log in'"},
		"  div > span  ":             {Engine: "css", Body: "div > span"},
		"input[name=q]":              {Engine: "css", Body: "input[name=q]"},
		"role=button[name=\"a=b\"]": {Engine: "role", Body: "button[name=\"a=b\"]"},
	}
	for in, want := range tests {
		assert.Equal(t, want, selector.ParseSelector(in), in)
	}
}

func TestSplitChain(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"css=.parent >> text=Child", []string{"css=.parent", "text=Child"}},
		{`text="a >> b" >> css=c`, []string{`text="a >> b"`, "css=c"}},
		{`text='x >> y'`, []string{`text='x >> y'`}},
		{`text="a \" >> b"`, []string{`text="a \" >> b"`}},
		{" >> a >>  ", []string{"a"}},
		{"a>>b", []string{"a", "b"}},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, selector.SplitChain(tt.in), tt.in)
	}
}

func TestParseTextMatcher(t *testing.T) {
	tests := []struct {
		pattern string
		text    string
		want    bool
	}{
		{"child", "  The  CHILD node ", true},
		{"child", "parent", false},
		{`"Child"`, " Child ", true},
		{`"Child"`, "Child node", false},
		{`"Child"`, "child", false},
		{`"Child"i`, "child", true},
		{`'Child'`, "Child", true},
		{"/^ch.ld$/", "child", true},
		{"/^CH/i", "child", true},
		{"/^CH/", "child", false},
		{"/a.b/s", "a\nb", true},
		{"/[/", "x/[/y", true},
		{"/[/", "x", false},
		{"/home", "go /home now", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, selector.ParseTextMatcher(tt.pattern)(tt.text), "%s ~ %q", tt.pattern, tt.text)
	}
}

// FuzzSplitChain builds chains from sanitized plain stages and quoted
// stages with arbitrary content and checks that splitting recovers them.
func FuzzSplitChain(f *testing.F) {
	f.Add([]byte("css=.parent\x00text=Child"))
	f.Add([]byte(`a >> b" >> '`))
	f.Fuzz(func(t *testing.T, data []byte) {
		c := fuzz.NewConsumer(data)
		n, err := c.GetInt()
		if err != nil {
			return
		}
		var stages []string
		for i := 0; i < n%6+1; i++ {
			quoted, err := c.GetBool()
			if err != nil {
				break
			}
			s, err := c.GetString()
			if err != nil {
				break
			}
			if quoted {
				stages = append(stages, "text="+strconv.Quote(s))
				continue
			}
			plain := strings.TrimSpace(strings.Map(func(r rune) rune {
				if strings.ContainsRune("\"'`\\>", r) {
					return -1
				}
				return r
			}, s))
			if plain != "" {
				stages = append(stages, plain)
			}
		}
		if len(stages) == 0 {
			return
		}
		got := selector.SplitChain(strings.Join(stages, " >> "))
		require.Equal(t, stages, got)
		for _, stage := range got {
			_ = selector.ParseSelector(stage)
			_ = selector.ParseTextMatcher(stage)
		}
	})
}
