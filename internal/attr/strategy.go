package attr

import (
	"strings"
	"unicode"

	"github.com/dgallion1/mdattr/internal/attrscan"
	"github.com/dgallion1/mdattr/internal/doctree"
)

// site is the position of the node a strategy works on.
type site struct {
	tree   *doctree.Tree
	id     doctree.NodeID
	index  int
	parent doctree.NodeID
}

func (s site) node() *doctree.Node { return s.tree.Node(s.id) }

// next returns the sibling right after the node, or nil.
func (s site) next() *doctree.Node {
	return s.tree.Node(s.tree.ChildAt(s.parent, s.index+1))
}

// strategy is one way an annotation can be placed relative to its target.
type strategy struct {
	matches func(cfg *Config) bool
	apply   func(x *Transformer, s site, st *Stats)
}

var (
	blockHeading = strategy{
		matches: func(cfg *Config) bool { return !cfg.DisableBlockElements },
		apply:   (*Transformer).blockHeading,
	}
	fenceMeta = strategy{
		matches: func(*Config) bool { return true },
		apply:   (*Transformer).fenceMeta,
	}
	inlineHeading = strategy{
		matches: func(cfg *Config) bool { return cfg.EnableATXHeaderInline },
		apply:   (*Transformer).inlineHeading,
	}
	inlineSuffix = strategy{
		matches: func(*Config) bool { return true },
		apply:   (*Transformer).inlineSuffix,
	}
)

// strategiesFor returns the strategies for a kind, in the order they run.
func strategiesFor(kind doctree.Kind) []strategy {
	switch kind {
	case doctree.KindHeading:
		return []strategy{blockHeading, inlineHeading}
	case doctree.KindCode:
		return []strategy{fenceMeta}
	case doctree.KindLink, doctree.KindStrong, doctree.KindEmphasis,
		doctree.KindDelete, doctree.KindInlineCode, doctree.KindLinkReference,
		doctree.KindImage, doctree.KindFootnoteReference:
		return []strategy{inlineSuffix}
	}
	return nil
}

// blockHeading handles an attribute paragraph directly after a heading:
//
//	# Title
//	{data-id="title"}
func (x *Transformer) blockHeading(s site, st *Stats) {
	next := s.next()
	if next == nil || next.Kind != doctree.KindParagraph {
		return
	}
	nextID := s.tree.ChildAt(s.parent, s.index+1)
	if s.tree.ChildCount(nextID) != 1 {
		return
	}
	text := s.tree.Node(s.tree.ChildAt(nextID, 0))
	if text.Kind != doctree.KindText {
		return
	}

	candidate := strings.TrimSpace(text.Value)
	if !strings.HasPrefix(candidate, "{") || !strings.HasSuffix(candidate, "}") {
		return
	}
	res, ok := attrscan.Scan(candidate, 0, x.cfg.Scanner)
	if !ok || len(res.Consumed) != len(candidate) {
		return
	}

	x.decorate(s.node(), res.Props, st)
	s.tree.RemoveChild(s.parent, s.index+1)
}

// fenceMeta reads attributes from the metadata of a fenced code block. The
// metadata is scanned as if it were wrapped in braces and left untouched.
func (x *Transformer) fenceMeta(s site, st *Stats) {
	n := s.node()
	if n.Meta == "" {
		return
	}
	meta := n.Meta
	if !strings.HasPrefix(meta, "{") {
		meta = "{" + meta + "}"
	}
	res, ok := attrscan.Scan(meta, 0, x.cfg.Scanner)
	if !ok {
		return
	}
	x.decorate(n, res.Props, st)
}

// inlineHeading handles a trailing annotation on a single-line heading:
//
//	# Title {data-id="title"}
//
// The annotation must be separated from the title by whitespace; a brace
// at the start of the text or glued to a word is literal heading text.
func (x *Transformer) inlineHeading(s site, st *Stats) {
	n := s.node()
	if n.Position != nil && n.Position.Start.Line != n.Position.End.Line {
		return
	}
	count := s.tree.ChildCount(s.id)
	if count == 0 {
		return
	}
	last := s.tree.Node(s.tree.ChildAt(s.id, count-1))
	if last.Kind != doctree.KindText || !strings.HasSuffix(last.Value, "}") {
		return
	}

	text := last.Value
	brace := lastUnescapedBrace(text)
	if brace <= 0 {
		return
	}
	before := text[:brace]
	prefix := strings.TrimRightFunc(before, unicode.IsSpace)
	if prefix == "" || len(prefix) == len(before) {
		return
	}

	res, ok := attrscan.Scan(text, brace, x.cfg.Scanner)
	if !ok || brace+len(res.Consumed) != len(text) {
		return
	}

	x.decorate(n, res.Props, st)
	last.Value = prefix
}

// lastUnescapedBrace returns the index of the last '{' not preceded by an
// odd run of backslashes, or -1.
func lastUnescapedBrace(text string) int {
	for i := strings.LastIndexByte(text, '{'); i >= 0; i = strings.LastIndexByte(text[:i], '{') {
		slashes := 0
		for j := i - 1; j >= 0 && text[j] == '\\'; j-- {
			slashes++
		}
		if slashes%2 == 0 {
			return i
		}
	}
	return -1
}

// inlineSuffix handles an annotation in the text right after an inline
// element, e.g. *text*{style="c"}. When the annotation was split across
// several siblings it falls back to reconstructing it.
func (x *Transformer) inlineSuffix(s site, st *Stats) {
	next := s.next()
	if next == nil || next.Kind != doctree.KindText || !strings.HasPrefix(next.Value, "{") {
		return
	}

	res, ok := attrscan.Scan(next.Value, 0, x.cfg.Scanner)
	if ok && res.Consumed != "" {
		x.decorate(s.node(), res.Props, st)
		if rest := next.Value[len(res.Consumed):]; rest != "" {
			next.Value = rest
		} else {
			s.tree.RemoveChild(s.parent, s.index+1)
		}
		return
	}

	x.splitText(s, st)
}

// decorate filters raw for the node's kind and applies what survives.
func (x *Transformer) decorate(n *doctree.Node, raw doctree.Props, st *Stats) {
	accepted, rejected := x.policy.filter(n.Kind.String(), raw)
	Apply(n, accepted)

	st.Annotations++
	st.Applied += len(accepted)
	st.Rejected += rejected
}
