// internal/snapshot/render_xml.go
package snapshot

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

// RenderAriaXML renders a snapshot as an indented XML document. Each node
// becomes an element named after its role, its states become attributes and
// text fragments become character data:
//
//	<snapshot id="...">
//	  <heading name="Title" level="1"/>
//	  <link name="Home" ref="ref_2" url="/home"/>
//	</snapshot>
func RenderAriaXML(snap *AriaSnapshot) (string, error) {
	if snap == nil || snap.Root == nil {
		return "", nil
	}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	top := doc.CreateElement("snapshot")
	if snap.ID != "" {
		top.CreateAttr("id", snap.ID)
	}
	if snap.Root.Role == "fragment" {
		for _, ch := range snap.Root.Children {
			appendXMLChild(top, ch)
		}
	} else {
		appendXMLChild(top, NodeChild(snap.Root))
	}
	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("render aria xml: %w", err)
	}
	return out, nil
}

func appendXMLChild(parent *etree.Element, ch Child) {
	if ch.IsText() {
		if ch.Text != "" {
			parent.CreateText(ch.Text)
		}
		return
	}
	n := ch.Node
	el := parent.CreateElement(xmlName(n.Role))
	if el.Tag != n.Role {
		el.CreateAttr("role", n.Role)
	}
	for _, attr := range xmlAttrs(n) {
		el.CreateAttr(attr[0], attr[1])
	}
	for _, c := range n.Children {
		appendXMLChild(el, c)
	}
}

// xmlName returns role when it is usable as an element name, or "node".
func xmlName(role string) string {
	if role == "" || !identByte(role[0]) || ('0' <= role[0] && role[0] <= '9') || role[0] == '-' {
		return "node"
	}
	for i := 1; i < len(role); i++ {
		if !identByte(role[i]) {
			return "node"
		}
	}
	return role
}

func identByte(ch byte) bool {
	return ch == '-' || ch == '_' || ('0' <= ch && ch <= '9') || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func xmlAttrs(n *AccessibilityNode) [][2]string {
	var attrs [][2]string
	add := func(k, v string) {
		if v != "" {
			attrs = append(attrs, [2]string{k, v})
		}
	}
	flag := func(k string, v bool) {
		if v {
			attrs = append(attrs, [2]string{k, "true"})
		}
	}
	add("name", n.Name)
	add("ref", n.Ref)
	add("checked", n.Checked)
	add("pressed", n.Pressed)
	if n.Expanded != nil {
		add("expanded", strconv.FormatBool(*n.Expanded))
	}
	flag("selected", n.Selected)
	flag("disabled", n.Disabled)
	flag("focused", n.Focused)
	flag("required", n.Required)
	flag("busy", n.Busy)
	add("invalid", n.Invalid)
	add("current", n.Current)
	if n.Level > 0 {
		add("level", strconv.Itoa(n.Level))
	}
	add("value", n.Value)
	add("url", n.URL)
	add("placeholder", n.Placeholder)
	add("description", n.Description)
	add("cursor", n.Cursor)
	return attrs
}
