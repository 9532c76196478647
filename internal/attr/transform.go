// Package attr attaches {key="value" .class #id} annotations written in a
// document to the nearest preceding node of its tree, keeping only the
// attributes the configured trust scope allows.
//
// A Transformer is built once from options and may be used for any number
// of trees, including concurrently: it holds no per-tree state.
//
//	x := attr.New(attr.WithScope(attr.ScopeSpecific))
//	stats := x.Transform(tree)
package attr

import (
	"slices"

	"github.com/dgallion1/mdattr/internal/doctree"
)

// Stats summarizes one traversal.
type Stats struct {
	// Annotations counts annotations that were recognized and consumed.
	Annotations int `json:"annotations"`
	// Applied counts attributes that survived filtering.
	Applied int `json:"applied"`
	// Rejected counts attributes dropped by the scope.
	Rejected int `json:"rejected"`
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Annotations += o.Annotations
	s.Applied += o.Applied
	s.Rejected += o.Rejected
}

// Transformer decorates document trees with inline attribute annotations.
type Transformer struct {
	cfg      Config
	policy   Policy
	elements map[doctree.Kind]bool
}

// New returns a Transformer configured by opts on top of DefaultConfig.
func New(opts ...Option) *Transformer {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewFromConfig(cfg)
}

// NewFromConfig returns a Transformer for cfg. An empty scope means
// ScopeExtended.
func NewFromConfig(cfg Config) *Transformer {
	if cfg.Scope == "" {
		cfg.Scope = ScopeExtended
	}
	cfg.Elements = slices.Clone(cfg.Elements)

	x := &Transformer{
		cfg:      cfg,
		policy:   NewPolicy(cfg.Scope, cfg.Extend, cfg.AllowDangerousDOMEventHandlers),
		elements: make(map[doctree.Kind]bool, len(cfg.Elements)),
	}
	for _, k := range cfg.Elements {
		if IsSupported(k) {
			x.elements[k] = true
		}
	}
	return x
}

// Policy returns the scope policy the transformer filters with.
func (x *Transformer) Policy() Policy { return x.policy }

// Transform visits every node of tree once, in pre-order, and consumes the
// annotations it finds. The tree is modified in place; the root is never
// replaced.
func (x *Transformer) Transform(tree *doctree.Tree) Stats {
	var st Stats
	tree.Walk(func(id doctree.NodeID, index int, parent doctree.NodeID) {
		n := tree.Node(id)
		if n.Kind == doctree.KindParagraph {
			restoreLeadingSpace(tree, id)
		}
		if !x.elements[n.Kind] {
			return
		}

		s := site{tree: tree, id: id, index: index, parent: parent}
		for _, strat := range strategiesFor(n.Kind) {
			if strat.matches(&x.cfg) {
				strat.apply(x, s, &st)
			}
		}
	})
	return st
}

// restoreLeadingSpace puts back a leading space the parser dropped from an
// indented paragraph that opens with a non-text node.
func restoreLeadingSpace(tree *doctree.Tree, id doctree.NodeID) {
	n := tree.Node(id)
	if n.Position == nil || n.Position.Start.Column <= 1 {
		return
	}
	first := tree.Node(tree.ChildAt(id, 0))
	if first == nil || first.Kind == doctree.KindText {
		return
	}
	tree.InsertChild(id, 0, tree.Add(doctree.Node{Kind: doctree.KindText, Value: " "}))
}
