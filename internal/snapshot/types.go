// internal/snapshot/types.go
package snapshot

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/xkilldash9x/scalpel-introspect/internal/browser/layout"
	"golang.org/x/net/html"
)

// Visibility selects which notion of visibility keeps a subtree in an
// aria tree.
type Visibility string

const (
	// VisibilityAria keeps elements exposed to assistive technology and
	// prunes hidden subtrees outright.
	VisibilityAria Visibility = "aria"
	// VisibilityAriaOrVisible keeps elements that are either exposed or
	// visually rendered.
	VisibilityAriaOrVisible Visibility = "aria-or-visible"
	// VisibilityAriaAndVisible keeps elements that are both.
	VisibilityAriaAndVisible Visibility = "aria-and-visible"
)

// RefMode selects which nodes receive a reference id.
type RefMode string

const (
	RefsAll          RefMode = "all"
	RefsInteractable RefMode = "interactable"
	RefsNone         RefMode = "none"
)

// AriaOptions configures GenerateAriaTree.
type AriaOptions struct {
	Visibility Visibility
	Refs       RefMode

	// IncludeGeneric exposes role-less elements as "generic" nodes.
	IncludeGeneric bool
	// FoldGeneric collapses unnamed generic wrappers around at most one
	// referenceable child.
	FoldGeneric bool
	// BlockSpacing separates the text of non-inline elements with spaces.
	BlockSpacing bool

	IncludeBox           bool
	IncludeCursor        bool
	IncludePointerEvents bool
}

// DefaultAriaOptions returns the options used when none are given.
func DefaultAriaOptions() AriaOptions {
	return AriaOptions{
		Visibility:     VisibilityAriaAndVisible,
		Refs:           RefsAll,
		IncludeGeneric: true,
		FoldGeneric:    true,
		BlockSpacing:   true,
	}
}

func (o AriaOptions) withDefaults() AriaOptions {
	if o.Visibility == "" {
		o.Visibility = VisibilityAriaAndVisible
	}
	if o.Refs == "" {
		o.Refs = RefsAll
	}
	return o
}

// LegacyOptions configures GenerateA11yTree.
type LegacyOptions struct {
	PierceShadow    bool
	InteractiveOnly bool
	IncludeBounds   bool
	// ViewportOnly drops nodes with no part inside the viewport.
	ViewportOnly    bool
	IncludeSelector bool
	// MaxDepth limits the depth of reported nodes; zero means unlimited.
	MaxDepth int
}

// Box describes how an element renders.
type Box struct {
	Visible bool         `json:"visible"`
	Inline  bool         `json:"inline"`
	Rect    *layout.Rect `json:"rect,omitempty"`
}

// AccessibilityNode is one node of a nested aria tree.
type AccessibilityNode struct {
	Role     string  `json:"role"`
	Name     string  `json:"name,omitempty"`
	Tag      string  `json:"tag,omitempty"`
	Ref      string  `json:"ref,omitempty"`
	Children []Child `json:"children,omitempty"`

	Checked     string `json:"checked,omitempty"`
	Pressed     string `json:"pressed,omitempty"`
	Expanded    *bool  `json:"expanded,omitempty"`
	Selected    bool   `json:"selected,omitempty"`
	Disabled    bool   `json:"disabled,omitempty"`
	Focused     bool   `json:"focused,omitempty"`
	Invalid     string `json:"invalid,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Busy        bool   `json:"busy,omitempty"`
	Current     string `json:"current,omitempty"`
	Level       int    `json:"level,omitempty"`
	Value       string `json:"value,omitempty"`
	URL         string `json:"url,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Description string `json:"description,omitempty"`

	Box                   *Box   `json:"box,omitempty"`
	Cursor                string `json:"cursor,omitempty"`
	ReceivesPointerEvents *bool  `json:"receivesPointerEvents,omitempty"`

	Element *html.Node `json:"-"`
}

// Child is either a nested node or a literal text fragment.
type Child struct {
	Node *AccessibilityNode
	Text string
}

// TextChild wraps a text fragment.
func TextChild(s string) Child { return Child{Text: s} }

// NodeChild wraps a nested node.
func NodeChild(n *AccessibilityNode) Child { return Child{Node: n} }

// IsText reports whether the child is a text fragment.
func (c Child) IsText() bool { return c.Node == nil }

// MarshalJSON encodes a node child as an object and a text child as a
// string.
func (c Child) MarshalJSON() ([]byte, error) {
	if c.Node != nil {
		return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(c.Node)
	}
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(c.Text)
}

// AriaSnapshot is the result of GenerateAriaTree.
type AriaSnapshot struct {
	ID       string                `json:"id"`
	Root     *AccessibilityNode    `json:"root"`
	Elements map[string]*html.Node `json:"-"`
	Refs     map[*html.Node]string `json:"-"`
}

// LegacyNode is one entry of a flat accessibility tree.
type LegacyNode struct {
	Ref   string `json:"ref"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	Tag   string `json:"tag"`
	Depth int    `json:"depth"`

	Checked     string `json:"checked,omitempty"`
	Disabled    bool   `json:"disabled,omitempty"`
	Selected    bool   `json:"selected,omitempty"`
	Expanded    *bool  `json:"expanded,omitempty"`
	Pressed     string `json:"pressed,omitempty"`
	Focused     bool   `json:"focused,omitempty"`
	Invalid     string `json:"invalid,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Busy        bool   `json:"busy,omitempty"`
	Current     string `json:"current,omitempty"`
	Value       string `json:"value,omitempty"`
	Level       int    `json:"level,omitempty"`
	Description string `json:"description,omitempty"`

	Bounds   *layout.Rect `json:"bounds,omitempty"`
	Selector string       `json:"selector,omitempty"`

	Element *html.Node `json:"-"`
}
