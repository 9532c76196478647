// Package doctree holds the mutable document tree that attribute processing
// decorates. Nodes live in an arena owned by the Tree and are addressed by
// NodeID, so sibling lists can be spliced during a walk without invalidating
// the walker's handles.
package doctree

import "slices"

// NodeID addresses a node inside its Tree.
type NodeID int32

// NoNode is the zero handle for "no node".
const NoNode NodeID = -1

// Point is a location in the source document. Line and Column are 1-based.
type Point struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// Position is the source span of a node.
type Position struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Node is a single document tree node. Which payload fields are meaningful
// depends on Kind.
type Node struct {
	Kind Kind

	Value string // text, inlineCode, code, html
	URL   string // link, image
	Title string // link, image
	Alt   string // image
	Lang  string // code
	Meta  string // code: fence metadata after the language

	Depth   int    // heading level
	Ordered bool   // list
	Start   int    // ordered list start
	Spread  bool   // list: items separated by blank lines
	Header  bool   // tableRow: the header row
	Align   string // tableCell: left, center, right or empty

	Identifier string // footnoteReference, footnoteDefinition, linkReference

	Position *Position
	Props    Props

	children []NodeID
	parent   NodeID
}

// Tree is an arena of nodes with a single root.
type Tree struct {
	nodes []*Node
	root  NodeID
}

// New returns a tree holding only an empty root node.
func New() *Tree {
	t := &Tree{}
	t.root = t.Add(Node{Kind: KindRoot})
	return t
}

// Root returns the root handle.
func (t *Tree) Root() NodeID { return t.root }

// Add stores n in the arena, detached, and returns its handle.
func (t *Tree) Add(n Node) NodeID {
	id := NodeID(len(t.nodes))
	n.parent = NoNode
	n.children = nil
	t.nodes = append(t.nodes, &n)
	return id
}

// Node returns the node behind id, or nil for an invalid handle.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Parent returns the parent of id, or NoNode when detached or the root.
func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.Node(id); n != nil {
		return n.parent
	}
	return NoNode
}

// Children returns the current child list of id. The slice must not be
// modified; it may be invalidated by the next mutation of id's children.
func (t *Tree) Children(id NodeID) []NodeID {
	if n := t.Node(id); n != nil {
		return n.children
	}
	return nil
}

// ChildCount returns the number of children of id.
func (t *Tree) ChildCount(id NodeID) int {
	return len(t.Children(id))
}

// ChildAt returns the child at index, or NoNode if out of range.
func (t *Tree) ChildAt(id NodeID, index int) NodeID {
	children := t.Children(id)
	if index < 0 || index >= len(children) {
		return NoNode
	}
	return children[index]
}

// AppendChild attaches child as the last child of parent.
func (t *Tree) AppendChild(parent, child NodeID) {
	p := t.Node(parent)
	c := t.Node(child)
	if p == nil || c == nil {
		return
	}
	c.parent = parent
	p.children = append(p.children, child)
}

// InsertChild attaches child at index in parent's child list.
func (t *Tree) InsertChild(parent NodeID, index int, child NodeID) {
	p := t.Node(parent)
	c := t.Node(child)
	if p == nil || c == nil {
		return
	}
	index = max(0, min(index, len(p.children)))
	c.parent = parent
	p.children = slices.Insert(p.children, index, child)
}

// RemoveChild detaches the child at index from parent. The node stays in
// the arena but is no longer reachable from the root.
func (t *Tree) RemoveChild(parent NodeID, index int) {
	p := t.Node(parent)
	if p == nil || index < 0 || index >= len(p.children) {
		return
	}
	if c := t.Node(p.children[index]); c != nil {
		c.parent = NoNode
	}
	p.children = slices.Delete(p.children, index, index+1)
}

// ReplaceChild swaps the child at index for child, detaching the old node.
func (t *Tree) ReplaceChild(parent NodeID, index int, child NodeID) {
	p := t.Node(parent)
	c := t.Node(child)
	if p == nil || c == nil || index < 0 || index >= len(p.children) {
		return
	}
	if old := t.Node(p.children[index]); old != nil {
		old.parent = NoNode
	}
	c.parent = parent
	p.children[index] = child
}

// AppendNew adds n to the arena and appends it under parent.
func (t *Tree) AppendNew(parent NodeID, n Node) NodeID {
	id := t.Add(n)
	t.AppendChild(parent, id)
	return id
}

// Visitor is called for every node below the root, in pre-order, with the
// node's current index among its siblings and its parent.
type Visitor func(id NodeID, index int, parent NodeID)

// Walk visits every node except the root in pre-order. The child list of
// each parent is re-read after every visit, so a visitor may splice the
// siblings that follow the current node, or insert children under it,
// and the walk picks up the tree as it is at that moment.
func (t *Tree) Walk(visit Visitor) {
	t.walkChildren(t.root, visit)
}

func (t *Tree) walkChildren(parent NodeID, visit Visitor) {
	for i := 0; i < t.ChildCount(parent); i++ {
		id := t.ChildAt(parent, i)
		visit(id, i, parent)
		// The visitor may have removed or replaced the node at i.
		if t.ChildAt(parent, i) != id {
			continue
		}
		t.walkChildren(id, visit)
	}
}

// TextContent concatenates the values of all text-like descendants of id.
func (t *Tree) TextContent(id NodeID) string {
	n := t.Node(id)
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindText, KindInlineCode, KindCode, KindHTML:
		return n.Value
	case KindImage:
		return n.Alt
	case KindBreak:
		return "\n"
	}
	var out []byte
	for _, c := range n.children {
		out = append(out, t.TextContent(c)...)
	}
	return string(out)
}
