package doctree

// Exported is a self-contained, JSON-friendly copy of a subtree, shaped like
// an mdast node.
type Exported struct {
	Type       string      `json:"type"`
	Value      string      `json:"value,omitempty"`
	URL        string      `json:"url,omitempty"`
	Title      string      `json:"title,omitempty"`
	Alt        string      `json:"alt,omitempty"`
	Lang       string      `json:"lang,omitempty"`
	Meta       string      `json:"meta,omitempty"`
	Depth      int         `json:"depth,omitempty"`
	Ordered    bool        `json:"ordered,omitempty"`
	Start      int         `json:"start,omitempty"`
	Spread     bool        `json:"spread,omitempty"`
	Align      string      `json:"align,omitempty"`
	Identifier string      `json:"identifier,omitempty"`
	Position   *Position   `json:"position,omitempty"`
	Data       *ExportData `json:"data,omitempty"`
	Children   []*Exported `json:"children,omitempty"`
}

// ExportData carries the presentation properties of an exported node.
type ExportData struct {
	HProperties Props `json:"hProperties"`
}

// Export copies the subtree rooted at id.
func (t *Tree) Export(id NodeID) *Exported {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	e := &Exported{
		Type:       n.Kind.String(),
		Value:      n.Value,
		URL:        n.URL,
		Title:      n.Title,
		Alt:        n.Alt,
		Lang:       n.Lang,
		Meta:       n.Meta,
		Depth:      n.Depth,
		Ordered:    n.Ordered,
		Start:      n.Start,
		Spread:     n.Spread,
		Align:      n.Align,
		Identifier: n.Identifier,
		Position:   n.Position,
	}
	if len(n.Props) > 0 {
		e.Data = &ExportData{HProperties: n.Props.Clone()}
	}
	for _, c := range n.children {
		e.Children = append(e.Children, t.Export(c))
	}
	return e
}
