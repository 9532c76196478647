// Package render turns a decorated document tree into HTML. Presentation
// properties become attributes of the element a node renders to and win
// over the attributes the node implies itself.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/mdattr/internal/doctree"
)

// ErrWriteOutput wraps failures writing rendered HTML.
var ErrWriteOutput = errors.New("write output")

// Render writes the HTML for tree to w.
func Render(w io.Writer, tree *doctree.Tree) error {
	for i, n := range Nodes(tree) {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("%w: %w", ErrWriteOutput, err)
			}
		}
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
	}
	return nil
}

// String renders tree to a string.
func String(tree *doctree.Tree) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, tree); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Nodes returns the top-level HTML nodes for tree. Footnote definitions are
// gathered into a trailing section.
func Nodes(tree *doctree.Tree) []*html.Node {
	r := &renderer{tree: tree, footnotes: make(map[string]int)}

	var out []*html.Node
	for _, id := range tree.Children(tree.Root()) {
		if tree.Node(id).Kind == doctree.KindFootnoteDefinition {
			r.definitions = append(r.definitions, id)
			continue
		}
		out = append(out, r.node(id)...)
	}
	if section := r.footnoteSection(); section != nil {
		out = append(out, section)
	}
	return out
}

type renderer struct {
	tree *doctree.Tree
	// footnotes numbers footnote identifiers in order of first reference.
	footnotes   map[string]int
	definitions []doctree.NodeID
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// setAttr replaces the value of key, or appends it.
func setAttr(el *html.Node, key, val string) {
	for i := range el.Attr {
		if el.Attr[i].Key == key {
			el.Attr[i].Val = val
			return
		}
	}
	el.Attr = append(el.Attr, attr(key, val))
}

func decorate(el *html.Node, props doctree.Props) *html.Node {
	for _, p := range props {
		setAttr(el, p.Name, p.Value.String())
	}
	return el
}

func appendAll(el *html.Node, children []*html.Node) *html.Node {
	for _, c := range children {
		el.AppendChild(c)
	}
	return el
}

// children renders the children of id. Block children are separated by
// newlines.
func (r *renderer) children(id doctree.NodeID) []*html.Node {
	var out []*html.Node
	for _, c := range r.tree.Children(id) {
		n := r.tree.Node(c)
		if isBlock(n.Kind) && len(out) > 0 {
			out = append(out, textNode("\n"))
		}
		out = append(out, r.node(c)...)
	}
	return out
}

// blockChildren wraps block content in newlines, the way it sits inside a
// blockquote or list.
func (r *renderer) blockChildren(id doctree.NodeID) []*html.Node {
	inner := r.children(id)
	if len(inner) == 0 {
		return nil
	}
	out := append([]*html.Node{textNode("\n")}, inner...)
	return append(out, textNode("\n"))
}

func isBlock(k doctree.Kind) bool {
	switch k {
	case doctree.KindParagraph, doctree.KindHeading, doctree.KindCode,
		doctree.KindBlockquote, doctree.KindList, doctree.KindListItem,
		doctree.KindThematicBreak, doctree.KindTable, doctree.KindTableRow,
		doctree.KindFootnoteDefinition:
		return true
	}
	return false
}

func (r *renderer) node(id doctree.NodeID) []*html.Node {
	n := r.tree.Node(id)
	switch n.Kind {
	case doctree.KindText:
		return []*html.Node{textNode(n.Value)}

	case doctree.KindParagraph:
		if r.tightItem(id) {
			return r.children(id)
		}
		return one(decorate(appendAll(element(atom.P), r.children(id)), n.Props))

	case doctree.KindHeading:
		depth := min(max(n.Depth, 1), 6)
		a := atom.Lookup([]byte("h" + strconv.Itoa(depth)))
		return one(decorate(appendAll(element(a), r.children(id)), n.Props))

	case doctree.KindThematicBreak:
		return one(decorate(element(atom.Hr), n.Props))

	case doctree.KindBreak:
		return []*html.Node{element(atom.Br), textNode("\n")}

	case doctree.KindEmphasis:
		return one(decorate(appendAll(element(atom.Em), r.children(id)), n.Props))

	case doctree.KindStrong:
		return one(decorate(appendAll(element(atom.Strong), r.children(id)), n.Props))

	case doctree.KindDelete:
		return one(decorate(appendAll(element(atom.Del), r.children(id)), n.Props))

	case doctree.KindInlineCode:
		code := element(atom.Code)
		code.AppendChild(textNode(n.Value))
		return one(decorate(code, n.Props))

	case doctree.KindCode:
		code := element(atom.Code)
		if n.Lang != "" {
			code.Attr = append(code.Attr, attr("class", "language-"+n.Lang))
		}
		value := n.Value
		if value != "" {
			value += "\n"
		}
		code.AppendChild(textNode(value))
		pre := element(atom.Pre)
		pre.AppendChild(decorate(code, n.Props))
		return one(pre)

	case doctree.KindLink:
		a := element(atom.A, attr("href", n.URL))
		if n.Title != "" {
			a.Attr = append(a.Attr, attr("title", n.Title))
		}
		return one(decorate(appendAll(a, r.children(id)), n.Props))

	case doctree.KindLinkReference:
		return one(decorate(appendAll(element(atom.A), r.children(id)), n.Props))

	case doctree.KindImage:
		img := element(atom.Img, attr("src", n.URL), attr("alt", n.Alt))
		if n.Title != "" {
			img.Attr = append(img.Attr, attr("title", n.Title))
		}
		return one(decorate(img, n.Props))

	case doctree.KindFootnoteReference:
		num := r.footnoteNumber(n.Identifier)
		a := element(atom.A,
			attr("href", "#fn-"+n.Identifier),
			attr("id", "fnref-"+n.Identifier),
			attr("data-footnote-ref", ""),
		)
		a.AppendChild(textNode(strconv.Itoa(num)))
		sup := element(atom.Sup)
		sup.AppendChild(a)
		return one(decorate(sup, n.Props))

	case doctree.KindHTML:
		return []*html.Node{{Type: html.RawNode, Data: n.Value}}

	case doctree.KindBlockquote:
		return one(decorate(appendAll(element(atom.Blockquote), r.blockChildren(id)), n.Props))

	case doctree.KindList:
		el := element(atom.Ul)
		if n.Ordered {
			el = element(atom.Ol)
			if n.Start != 1 && n.Start != 0 {
				el.Attr = append(el.Attr, attr("start", strconv.Itoa(n.Start)))
			}
		}
		return one(decorate(appendAll(el, r.blockChildren(id)), n.Props))

	case doctree.KindListItem:
		li := element(atom.Li)
		if r.tightList(r.tree.Parent(id)) {
			appendAll(li, r.children(id))
		} else {
			appendAll(li, r.blockChildren(id))
		}
		return one(decorate(li, n.Props))

	case doctree.KindTable:
		return one(decorate(r.table(id), n.Props))

	case doctree.KindFootnoteDefinition:
		r.definitions = append(r.definitions, id)
		return nil
	}

	return r.children(id)
}

func one(n *html.Node) []*html.Node { return []*html.Node{n} }

func (r *renderer) tightList(id doctree.NodeID) bool {
	n := r.tree.Node(id)
	return n != nil && n.Kind == doctree.KindList && !n.Spread
}

// tightItem reports whether a paragraph sits directly in an item of a tight
// list, where it renders without a <p>.
func (r *renderer) tightItem(id doctree.NodeID) bool {
	item := r.tree.Node(r.tree.Parent(id))
	if item == nil || item.Kind != doctree.KindListItem {
		return false
	}
	return r.tightList(r.tree.Parent(r.tree.Parent(id)))
}

func (r *renderer) table(id doctree.NodeID) *html.Node {
	table := element(atom.Table)
	var head, body *html.Node
	for _, rowID := range r.tree.Children(id) {
		row := r.tree.Node(rowID)
		tr := element(atom.Tr)
		cellAtom := atom.Td
		if row.Header {
			cellAtom = atom.Th
		}
		for _, cellID := range r.tree.Children(rowID) {
			cell := r.tree.Node(cellID)
			td := element(cellAtom)
			if cell.Align != "" {
				td.Attr = append(td.Attr, attr("align", cell.Align))
			}
			tr.AppendChild(textNode("\n"))
			tr.AppendChild(decorate(appendAll(td, r.children(cellID)), cell.Props))
		}
		tr.AppendChild(textNode("\n"))
		decorate(tr, row.Props)

		if row.Header {
			if head == nil {
				head = element(atom.Thead)
				head.AppendChild(textNode("\n"))
			}
			head.AppendChild(tr)
			head.AppendChild(textNode("\n"))
			continue
		}
		if body == nil {
			body = element(atom.Tbody)
			body.AppendChild(textNode("\n"))
		}
		body.AppendChild(tr)
		body.AppendChild(textNode("\n"))
	}

	table.AppendChild(textNode("\n"))
	for _, part := range []*html.Node{head, body} {
		if part != nil {
			table.AppendChild(part)
			table.AppendChild(textNode("\n"))
		}
	}
	return table
}

func (r *renderer) footnoteNumber(ident string) int {
	if num, ok := r.footnotes[ident]; ok {
		return num
	}
	num := len(r.footnotes) + 1
	r.footnotes[ident] = num
	return num
}

// footnoteSection renders the collected definitions, referenced ones first
// in order of reference.
func (r *renderer) footnoteSection() *html.Node {
	if len(r.definitions) == 0 {
		return nil
	}
	ol := element(atom.Ol)
	ol.AppendChild(textNode("\n"))
	for _, id := range r.orderedDefinitions() {
		n := r.tree.Node(id)
		li := element(atom.Li, attr("id", "fn-"+n.Identifier))
		appendAll(li, r.blockChildren(id))
		back := element(atom.A,
			attr("href", "#fnref-"+n.Identifier),
			attr("data-footnote-backref", ""),
		)
		back.AppendChild(textNode("↩"))
		li.AppendChild(back)
		li.AppendChild(textNode("\n"))
		ol.AppendChild(decorate(li, n.Props))
		ol.AppendChild(textNode("\n"))
	}

	section := element(atom.Section, attr("class", "footnotes"), attr("data-footnotes", ""))
	section.AppendChild(textNode("\n"))
	section.AppendChild(ol)
	section.AppendChild(textNode("\n"))
	return section
}

func (r *renderer) orderedDefinitions() []doctree.NodeID {
	ordered := make([]doctree.NodeID, 0, len(r.definitions))
	var rest []doctree.NodeID
	byNumber := make(map[int]doctree.NodeID)
	for _, id := range r.definitions {
		if num, ok := r.footnotes[r.tree.Node(id).Identifier]; ok {
			byNumber[num] = id
			continue
		}
		rest = append(rest, id)
	}
	for num := 1; num <= len(r.footnotes); num++ {
		if id, ok := byNumber[num]; ok {
			ordered = append(ordered, id)
		}
	}
	return append(ordered, rest...)
}
