// internal/aria/roles.go
package aria

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

// validRoles are the role tokens recognized in a role attribute.
var validRoles = set(
	"alert", "alertdialog", "application", "article", "banner", "blockquote", "button",
	"caption", "cell", "checkbox", "code", "columnheader", "combobox", "complementary",
	"contentinfo", "definition", "deletion", "dialog", "directory", "document", "emphasis",
	"feed", "figure", "form", "generic", "grid", "gridcell", "group", "heading", "img",
	"insertion", "link", "list", "listbox", "listitem", "log", "main", "mark", "marquee",
	"math", "meter", "menu", "menubar", "menuitem", "menuitemcheckbox", "menuitemradio",
	"navigation", "none", "note", "option", "paragraph", "presentation", "progressbar",
	"radio", "radiogroup", "region", "row", "rowgroup", "rowheader", "scrollbar", "search",
	"searchbox", "separator", "slider", "spinbutton", "status", "strong", "subscript",
	"superscript", "switch", "tab", "table", "tablist", "tabpanel", "term", "textbox", "time",
	"timer", "toolbar", "tooltip", "tree", "treegrid", "treeitem",
)

// IsValidRole reports whether role is a recognized ARIA role.
func IsValidRole(role string) bool { return validRoles[role] }

// nameProhibitedRoles never receive an accessible name.
var nameProhibitedRoles = set(
	"caption", "code", "definition", "deletion", "emphasis", "generic", "insertion", "mark",
	"none", "paragraph", "presentation", "strong", "subscript", "superscript", "term", "time",
)

// nameFromContentRoles take their name from their content.
var nameFromContentRoles = set(
	"button", "cell", "checkbox", "columnheader", "gridcell", "heading", "link", "menuitem",
	"menuitemcheckbox", "menuitemradio", "option", "radio", "row", "rowheader", "switch", "tab",
	"tooltip", "treeitem",
)

// descendantNameFromContentRoles additionally take their name from content
// when reached as a descendant of the element being named.
var descendantNameFromContentRoles = set(
	"", "caption", "code", "contentinfo", "definition", "deletion", "emphasis", "generic",
	"insertion", "list", "listitem", "mark", "none", "paragraph", "presentation", "region",
	"row", "rowgroup", "section", "sectionhead", "strong", "subscript", "superscript", "table",
	"term", "time",
)

func allowsNameFromContent(role string, asDescendant bool) bool {
	return nameFromContentRoles[role] || (asDescendant && descendantNameFromContentRoles[role])
}

// Roles whose states are exposed.
var (
	CheckedRoles  = set("checkbox", "menuitemcheckbox", "option", "radio", "switch", "menuitemradio", "treeitem")
	PressedRoles  = set("button")
	SelectedRoles = set("gridcell", "option", "row", "tab", "rowheader", "columnheader", "treeitem")
	LevelRoles    = set("heading", "listitem", "row", "treeitem")
	ExpandedRoles = set(
		"application", "button", "checkbox", "combobox", "gridcell", "link", "listbox", "menuitem",
		"row", "rowheader", "tab", "treeitem", "columnheader", "menuitemcheckbox", "menuitemradio", "switch",
	)
	DisabledRoles = set(
		"application", "button", "composite", "gridcell", "group", "input", "link", "menuitem",
		"scrollbar", "separator", "tab", "checkbox", "columnheader", "combobox", "grid", "listbox",
		"menu", "menubar", "menuitemcheckbox", "menuitemradio", "option", "radio", "radiogroup",
		"row", "rowheader", "searchbox", "select", "slider", "spinbutton", "switch", "tablist",
		"textbox", "toolbar", "tree", "treegrid", "treeitem",
	)
)

// interactiveRoles are roles a user acts on directly.
var interactiveRoles = set(
	"button", "checkbox", "combobox", "link", "listbox", "menuitem", "menuitemcheckbox",
	"menuitemradio", "option", "radio", "scrollbar", "searchbox", "slider", "spinbutton",
	"switch", "tab", "textbox", "treeitem", "gridcell",
)

// interactiveTags are elements a user acts on regardless of role.
var interactiveTags = set("button", "input", "select", "textarea", "details", "summary", "option", "label")

// IsInteractiveRole reports whether role is in the interactive allowlist.
func IsInteractiveRole(role string) bool { return interactiveRoles[role] }

// presentationParents lists, per tag, the parents through which a
// presentation role on an ancestor is inherited.
var presentationParents = map[string]map[string]bool{
	"dd":    set("dl", "div"),
	"div":   set("dl"),
	"dt":    set("dl", "div"),
	"li":    set("ol", "ul", "menu"),
	"tbody": set("table"),
	"td":    set("tr"),
	"tfoot": set("table"),
	"th":    set("tr"),
	"thead": set("table"),
	"tr":    set("thead", "tbody", "tfoot", "table"),
}

// RoleCategory groups roles by how the name computation treats an embedded
// control of that role.
type RoleCategory int

const (
	CategoryOther RoleCategory = iota
	CategoryTextbox
	CategoryChoice
	CategoryRange
	CategoryMenu
	CategoryPresentational
)

// CategoryOf classifies a role.
func CategoryOf(role string) RoleCategory {
	switch role {
	case "textbox", "searchbox":
		return CategoryTextbox
	case "combobox", "listbox":
		return CategoryChoice
	case "progressbar", "scrollbar", "slider", "spinbutton", "meter":
		return CategoryRange
	case "menu":
		return CategoryMenu
	case "presentation", "none":
		return CategoryPresentational
	}
	return CategoryOther
}

func (c RoleCategory) String() string {
	switch c {
	case CategoryTextbox:
		return "textbox"
	case CategoryChoice:
		return "choice"
	case CategoryRange:
		return "range"
	case CategoryMenu:
		return "menu"
	case CategoryPresentational:
		return "presentational"
	}
	return "other"
}
