// internal/snapshot/render.go
package snapshot

import (
	"strconv"
	"strings"
)

// RenderAriaTree renders a snapshot as an indented YAML-like outline, one
// line per node:
//
//	- list:
//	  - listitem: first
//	  - link "Home" [ref=ref_2]:
//	    - /url: /home
func RenderAriaTree(snap *AriaSnapshot) string {
	if snap == nil || snap.Root == nil {
		return ""
	}
	var lines []string
	var visit func(ch Child, indent string)
	visit = func(ch Child, indent string) {
		if ch.IsText() {
			if ch.Text != "" {
				lines = append(lines, indent+"- text: "+yamlValue(ch.Text))
			}
			return
		}
		n := ch.Node
		key := indent + "- " + yamlKey(nodeKey(n))
		props := nodeProps(n)
		switch {
		case len(n.Children) == 0 && len(props) == 0:
			lines = append(lines, key)
		case len(n.Children) == 1 && n.Children[0].IsText() && len(props) == 0:
			lines = append(lines, key+": "+yamlValue(n.Children[0].Text))
		default:
			lines = append(lines, key+":")
			for _, p := range props {
				lines = append(lines, indent+"  - /"+p[0]+": "+yamlValue(p[1]))
			}
			for _, c := range n.Children {
				visit(c, indent+"  ")
			}
		}
	}
	if snap.Root.Role == "fragment" {
		for _, c := range snap.Root.Children {
			visit(c, "")
		}
	} else {
		visit(NodeChild(snap.Root), "")
	}
	return strings.Join(lines, "\n")
}

func nodeKey(n *AccessibilityNode) string {
	var b strings.Builder
	b.WriteString(n.Role)
	if n.Name != "" {
		b.WriteByte(' ')
		b.WriteString(strconv.Quote(n.Name))
	}
	switch n.Checked {
	case "true":
		b.WriteString(" [checked]")
	case "mixed":
		b.WriteString(" [checked=mixed]")
	}
	if n.Disabled {
		b.WriteString(" [disabled]")
	}
	if n.Expanded != nil && *n.Expanded {
		b.WriteString(" [expanded]")
	}
	if n.Focused {
		b.WriteString(" [active]")
	}
	if n.Level > 0 {
		b.WriteString(" [level=" + strconv.Itoa(n.Level) + "]")
	}
	switch n.Pressed {
	case "true":
		b.WriteString(" [pressed]")
	case "mixed":
		b.WriteString(" [pressed=mixed]")
	}
	if n.Selected {
		b.WriteString(" [selected]")
	}
	if n.Ref != "" {
		b.WriteString(" [ref=" + n.Ref + "]")
	}
	if n.Cursor == "pointer" {
		b.WriteString(" [cursor=pointer]")
	}
	return b.String()
}

func nodeProps(n *AccessibilityNode) [][2]string {
	var props [][2]string
	if n.URL != "" {
		props = append(props, [2]string{"url", n.URL})
	}
	if n.Placeholder != "" {
		props = append(props, [2]string{"placeholder", n.Placeholder})
	}
	if n.Value != "" {
		props = append(props, [2]string{"value", n.Value})
	}
	return props
}

// yamlValue quotes s when a YAML reader would not read it back verbatim.
func yamlValue(s string) string {
	if needsQuoting(s) {
		return strconv.Quote(s)
	}
	return s
}

func yamlKey(s string) string {
	if strings.Contains(s, ": ") || strings.HasSuffix(s, ":") || strings.HasPrefix(s, "- ") {
		return strconv.Quote(s)
	}
	return s
}

func needsQuoting(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return true
	}
	switch strings.ToLower(s) {
	case "true", "false", "null", "yes", "no", "~":
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	if strings.ContainsAny(s[:1], "-[]{}!&*#|>%@`\"',?:") {
		return true
	}
	return strings.Contains(s, ": ") || strings.Contains(s, " #") || strings.ContainsAny(s, "\n\r\t")
}

// RenderLegacy renders a flat tree as indented text, one node per line:
//
//	ref_1 navigation
//	  ref_2 link "Home"
//	  ref_3 textbox "Search" val="shoes" [focused]
func RenderLegacy(nodes []LegacyNode) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(strings.Repeat("  ", n.Depth))
		b.WriteString(n.Ref)
		b.WriteByte(' ')
		b.WriteString(n.Role)
		if n.Name != "" {
			b.WriteString(" " + strconv.Quote(n.Name))
		}
		if n.Value != "" {
			b.WriteString(" val=" + strconv.Quote(n.Value))
		}
		if n.Level > 0 {
			b.WriteString(" [level=" + strconv.Itoa(n.Level) + "]")
		}
		if n.Checked != "" && n.Checked != "false" {
			b.WriteString(" [checked=" + n.Checked + "]")
		}
		if n.Pressed != "" {
			b.WriteString(" [pressed=" + n.Pressed + "]")
		}
		if n.Expanded != nil {
			b.WriteString(" [expanded=" + strconv.FormatBool(*n.Expanded) + "]")
		}
		if n.Selected {
			b.WriteString(" [selected]")
		}
		if n.Focused {
			b.WriteString(" [focused]")
		}
		if n.Disabled {
			b.WriteString(" [disabled]")
		}
		if n.Required {
			b.WriteString(" [required]")
		}
		if n.Invalid != "" {
			b.WriteString(" [invalid=" + n.Invalid + "]")
		}
		b.WriteByte('\n')
	}
	return b.String()
}
