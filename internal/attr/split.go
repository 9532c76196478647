package attr

import (
	"strings"

	"github.com/dgallion1/mdattr/internal/attrscan"
	"github.com/dgallion1/mdattr/internal/doctree"
)

// maxSplitSiblings bounds how many siblings a split annotation may span.
const maxSplitSiblings = 10

// splitCandidate is an annotation reassembled from consecutive siblings.
type splitCandidate struct {
	text  string
	nodes int
}

// reassemble concatenates the siblings of parent from index start on: text
// nodes contribute their value and links their URL, which is what an
// autolinked URL inside an annotation looked like in the source. It stops
// at the first other node, once the braces balance on a closing '}', or
// after maxSplitSiblings nodes.
func reassemble(tree *doctree.Tree, parent doctree.NodeID, start int) (splitCandidate, bool) {
	var b strings.Builder
	depth := 0
	nodes := 0

	for i := start; i < tree.ChildCount(parent); i++ {
		n := tree.Node(tree.ChildAt(parent, i))
		var part string
		switch n.Kind {
		case doctree.KindText:
			part = n.Value
		case doctree.KindLink:
			part = n.URL
		}
		if n.Kind != doctree.KindText && n.Kind != doctree.KindLink {
			break
		}

		nodes++
		b.WriteString(part)
		depth += strings.Count(part, "{") - strings.Count(part, "}")

		if depth == 0 && strings.HasSuffix(b.String(), "}") {
			break
		}
		if nodes >= maxSplitSiblings {
			break
		}
	}

	text := b.String()
	if depth != 0 || !strings.HasPrefix(text, "{") || !strings.HasSuffix(text, "}") {
		return splitCandidate{}, false
	}
	return splitCandidate{text: text, nodes: nodes}, true
}

// splitText applies an annotation that the document parser broke into
// several siblings, then rewrites those siblings so that only the text the
// scanner did not consume remains.
func (x *Transformer) splitText(s site, st *Stats) {
	start := s.index + 1
	cand, ok := reassemble(s.tree, s.parent, start)
	if !ok {
		return
	}
	res, ok := attrscan.Scan(cand.text, 0, x.cfg.Scanner)
	if !ok || res.Consumed == "" {
		return
	}

	x.decorate(s.node(), res.Props, st)
	resync(s.tree, s.parent, start, cand, len(res.Consumed))
}

// resync removes the consumed siblings. Any unconsumed remainder replaces
// the last sibling of the candidate as plain text: a partially consumed
// link no longer denotes a URL.
func resync(tree *doctree.Tree, parent doctree.NodeID, start int, cand splitCandidate, consumed int) {
	rest := cand.text[consumed:]
	last := start + cand.nodes - 1

	drop := cand.nodes
	if rest != "" {
		lastID := tree.ChildAt(parent, last)
		if n := tree.Node(lastID); n.Kind == doctree.KindText {
			n.Value = rest
		} else {
			text := tree.Add(doctree.Node{Kind: doctree.KindText, Value: rest, Position: n.Position})
			tree.ReplaceChild(parent, last, text)
		}
		drop--
	}

	// Remove from the back so earlier indices stay valid.
	for i := start + drop - 1; i >= start; i-- {
		tree.RemoveChild(parent, i)
	}
}
