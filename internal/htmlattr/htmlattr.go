// Package htmlattr holds the static HTML attribute tables used to decide
// which annotation names are legitimate on which elements.
package htmlattr

import "regexp"

// Universal lists attributes valid on every HTML element.
var Universal = set(
	"accesskey", "autocapitalize", "autofocus", "class", "contenteditable",
	"dir", "draggable", "enterkeyhint", "hidden", "id", "inert", "inputmode",
	"is", "itemid", "itemprop", "itemref", "itemscope", "itemtype", "nonce",
	"popover", "slot", "spellcheck", "style", "tabindex", "title",
	"translate", "writingsuggestions",
)

// PerElement lists attributes valid on specific elements, keyed by tag name.
var PerElement = map[string]map[string]struct{}{
	"a": set("charset", "coords", "download", "href", "hreflang", "name", "ping",
		"referrerpolicy", "rel", "rev", "shape", "target", "type"),
	"blockquote": set("cite"),
	"br":         set("clear"),
	"del":        set("cite", "datetime"),
	"h1":         set("align"),
	"h2":         set("align"),
	"h3":         set("align"),
	"h4":         set("align"),
	"h5":         set("align"),
	"h6":         set("align"),
	"hr":         set("align", "noshade", "size", "width"),
	"img": set("align", "alt", "border", "crossorigin", "decoding",
		"fetchpriority", "height", "hspace", "ismap", "loading", "longdesc",
		"name", "referrerpolicy", "sizes", "src", "srcset", "usemap", "vspace",
		"width"),
	"ins": set("cite", "datetime"),
	"li":  set("type", "value"),
	"ol":  set("compact", "reversed", "start", "type"),
	"p":   set("align"),
	"pre": set("width"),
	"q":   set("cite"),
	"table": set("align", "bgcolor", "border", "cellpadding", "cellspacing",
		"frame", "rules", "summary", "width"),
	"td": set("abbr", "align", "axis", "bgcolor", "char", "charoff", "colspan",
		"headers", "height", "nowrap", "rowspan", "scope", "valign", "width"),
	"th": set("abbr", "align", "axis", "bgcolor", "char", "charoff", "colspan",
		"headers", "height", "nowrap", "rowspan", "scope", "valign", "width"),
	"ul": set("compact", "type"),
}

// EventHandlers is the frozen set of DOM event-handler attribute names.
var EventHandlers = set(
	"onabort", "onautocomplete", "onautocompleteerror", "onblur", "oncancel",
	"oncanplay", "oncanplaythrough", "onchange", "onclick", "onclose",
	"oncontextmenu", "oncuechange", "ondblclick", "ondrag", "ondragend",
	"ondragenter", "ondragexit", "ondragleave", "ondragover", "ondragstart",
	"ondrop", "ondurationchange", "onemptied", "onended", "onerror", "onfocus",
	"oninput", "oninvalid", "onkeydown", "onkeypress", "onkeyup", "onload",
	"onloadeddata", "onloadedmetadata", "onloadstart", "onmousedown",
	"onmouseenter", "onmouseleave", "onmousemove", "onmouseout", "onmouseover",
	"onmouseup", "onmousewheel", "onpause", "onplay", "onplaying",
	"onprogress", "onratechange", "onreset", "onresize", "onscroll",
	"onseeked", "onseeking", "onselect", "onshow", "onsort", "onstalled",
	"onsubmit", "onsuspend", "ontimeupdate", "ontoggle", "onvolumechange",
	"onwaiting",
)

// Wildcard is the table key that applies to every element.
const Wildcard = "*"

// typeTags translates document node types into the tag names the tables
// are keyed by.
var typeTags = map[string]string{
	"image":         "img",
	"link":          "a",
	"heading":       "h1",
	"strong":        "strong",
	"emphasis":      "em",
	"delete":        "s",
	"inlineCode":    "code",
	"code":          "code",
	"linkReference": "a",
	Wildcard:        Wildcard,
}

// TagFor returns the tag name for a node type. Unmapped types translate to
// themselves.
func TagFor(nodeType string) string {
	if tag, ok := typeTags[nodeType]; ok {
		return tag
	}
	return nodeType
}

var (
	ariaPattern = regexp.MustCompile(`^aria-[a-z][a-z0-9._-]*$`)
	dataPattern = regexp.MustCompile(`^data-[a-z][a-z0-9._-]*$`)
)

// IsGlobal reports whether name is valid on any element: a universal
// attribute, or an aria-* or data-* name.
func IsGlobal(name string) bool {
	if _, ok := Universal[name]; ok {
		return true
	}
	return ariaPattern.MatchString(name) || dataPattern.MatchString(name)
}

// IsSpecific reports whether name is listed for tag.
func IsSpecific(tag, name string) bool {
	attrs, ok := PerElement[tag]
	if !ok {
		return false
	}
	_, ok = attrs[name]
	return ok
}

// IsEventHandler reports whether name is a DOM event-handler attribute.
func IsEventHandler(name string) bool {
	_, ok := EventHandlers[name]
	return ok
}

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}
