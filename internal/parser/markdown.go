package parser

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/dgallion1/mdattr/internal/doctree"
)

var defaultMarkdown = newMarkdown()

func newMarkdown() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Footnote))
}

// MarkdownParser handles Markdown files using goldmark with the GFM and
// footnote extensions. The zero value is ready to use and safe for
// concurrent use.
type MarkdownParser struct {
	md goldmark.Markdown
}

// NewMarkdownParser returns a parser with its own goldmark instance.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{md: newMarkdown()}
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadInput, filename, err)
	}
	return p.ParseBytes(src), nil
}

// ParseBytes converts src into a document tree. Text values have backslash
// escapes and character references resolved; block nodes carry positions.
func (p *MarkdownParser) ParseBytes(src []byte) *doctree.Tree {
	md := p.md
	if md == nil {
		md = defaultMarkdown
	}
	doc := md.Parser().Parse(text.NewReader(src))

	c := &converter{
		src:       src,
		tree:      doctree.New(),
		lines:     lineStarts(src),
		footnotes: make(map[int]string),
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if fn, ok := n.(*east.Footnote); ok && entering {
			c.footnotes[fn.Index] = string(fn.Ref)
		}
		return ast.WalkContinue, nil
	})
	c.blocks(c.tree.Root(), doc)
	return c.tree
}

type converter struct {
	src   []byte
	tree  *doctree.Tree
	lines []int // byte offset of the start of each line
	// footnotes maps a footnote index to its label.
	footnotes map[int]string
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (c *converter) point(off int) doctree.Point {
	line := sort.Search(len(c.lines), func(i int) bool { return c.lines[i] > off })
	return doctree.Point{Line: line, Column: off - c.lines[line-1] + 1, Offset: off}
}

// position spans the source lines of a block node, or is nil when the
// node has none.
func (c *converter) position(n ast.Node) *doctree.Position {
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return nil
	}
	first, last := lines.At(0), lines.At(lines.Len()-1)
	stop := last.Stop
	if stop > first.Start && c.src[stop-1] == '\n' {
		stop--
	}
	return &doctree.Position{Start: c.point(first.Start), End: c.point(stop)}
}

// headingPosition extends a setext heading to its underline.
func (c *converter) headingPosition(n *ast.Heading) *doctree.Position {
	pos := c.position(n)
	if pos == nil {
		return nil
	}
	lineStart := c.lines[pos.Start.Line-1]
	prefix := bytes.TrimLeft(c.src[lineStart:pos.Start.Offset], " \t")
	if bytes.HasPrefix(prefix, []byte("#")) {
		return pos
	}
	if pos.End.Line < len(c.lines) {
		next := pos.End.Line
		end := len(c.src)
		if next+1 < len(c.lines) {
			end = c.lines[next+1] - 1
		}
		pos.End = c.point(end)
	}
	return pos
}

func (c *converter) add(parent doctree.NodeID, n doctree.Node) doctree.NodeID {
	return c.tree.AppendNew(parent, n)
}

func (c *converter) blocks(parent doctree.NodeID, n ast.Node) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		c.block(parent, child)
	}
}

func (c *converter) block(parent doctree.NodeID, n ast.Node) {
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		// A paragraph holding only link reference definitions is left
		// behind empty.
		if n.Lines().Len() == 0 {
			return
		}
		id := c.add(parent, doctree.Node{Kind: doctree.KindParagraph, Position: c.position(n)})
		c.inlines(id, n)

	case *ast.Heading:
		id := c.add(parent, doctree.Node{Kind: doctree.KindHeading, Depth: n.Level, Position: c.headingPosition(n)})
		c.inlines(id, n)

	case *ast.ThematicBreak:
		c.add(parent, doctree.Node{Kind: doctree.KindThematicBreak})

	case *ast.FencedCodeBlock:
		node := doctree.Node{Kind: doctree.KindCode, Value: c.linesText(n), Position: c.position(n)}
		if n.Info != nil {
			info := n.Info.Segment.Value(c.src)
			lang := n.Language(c.src)
			node.Lang = unescape(lang)
			node.Meta = strings.TrimSpace(unescape(info[len(lang):]))
		}
		c.add(parent, node)

	case *ast.CodeBlock:
		c.add(parent, doctree.Node{Kind: doctree.KindCode, Value: c.linesText(n), Position: c.position(n)})

	case *ast.Blockquote:
		c.blocks(c.add(parent, doctree.Node{Kind: doctree.KindBlockquote}), n)

	case *ast.List:
		c.blocks(c.add(parent, doctree.Node{
			Kind:    doctree.KindList,
			Ordered: n.IsOrdered(),
			Start:   n.Start,
			Spread:  !n.IsTight,
		}), n)

	case *ast.ListItem:
		c.blocks(c.add(parent, doctree.Node{Kind: doctree.KindListItem}), n)

	case *ast.HTMLBlock:
		var b strings.Builder
		b.WriteString(c.linesText(n))
		if n.HasClosure() {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(strings.TrimRight(string(n.ClosureLine.Value(c.src)), "\n"))
		}
		c.add(parent, doctree.Node{Kind: doctree.KindHTML, Value: b.String()})

	case *east.Table:
		table := c.add(parent, doctree.Node{Kind: doctree.KindTable})
		for row := n.FirstChild(); row != nil; row = row.NextSibling() {
			_, header := row.(*east.TableHeader)
			id := c.add(table, doctree.Node{Kind: doctree.KindTableRow, Header: header})
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				align := ""
				if tc, ok := cell.(*east.TableCell); ok && tc.Alignment != east.AlignNone {
					align = tc.Alignment.String()
				}
				c.inlines(c.add(id, doctree.Node{Kind: doctree.KindTableCell, Align: align}), cell)
			}
		}

	case *east.FootnoteList:
		c.blocks(parent, n)

	case *east.Footnote:
		c.blocks(c.add(parent, doctree.Node{Kind: doctree.KindFootnoteDefinition, Identifier: string(n.Ref)}), n)

	default:
		if n.FirstChild() != nil {
			c.blocks(c.add(parent, doctree.Node{Kind: doctree.KindOther}), n)
		}
	}
}

// linesText joins the raw lines of a block, dropping the final newline.
func (c *converter) linesText(n ast.Node) string {
	var b bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.src))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// inlines converts the inline children of n. Adjacent text is merged into a
// single text node.
func (c *converter) inlines(parent doctree.NodeID, n ast.Node) {
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			c.add(parent, doctree.Node{Kind: doctree.KindText, Value: buf.String()})
			buf.Reset()
		}
	}

	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch child := child.(type) {
		case *ast.Text:
			value := child.Segment.Value(c.src)
			if child.IsRaw() {
				buf.Write(value)
			} else {
				buf.WriteString(unescape(value))
			}
			switch {
			case child.HardLineBreak():
				flush()
				c.add(parent, doctree.Node{Kind: doctree.KindBreak})
			case child.SoftLineBreak():
				buf.WriteByte('\n')
			}

		case *ast.String:
			buf.Write(child.Value)

		case *ast.CodeSpan:
			flush()
			c.add(parent, doctree.Node{Kind: doctree.KindInlineCode, Value: c.codeText(child)})

		case *ast.Emphasis:
			flush()
			kind := doctree.KindEmphasis
			if child.Level >= 2 {
				kind = doctree.KindStrong
			}
			c.inlines(c.add(parent, doctree.Node{Kind: kind}), child)

		case *east.Strikethrough:
			flush()
			c.inlines(c.add(parent, doctree.Node{Kind: doctree.KindDelete}), child)

		case *ast.Link:
			flush()
			c.inlines(c.add(parent, doctree.Node{
				Kind:  doctree.KindLink,
				URL:   unescape(child.Destination),
				Title: unescape(child.Title),
			}), child)

		case *ast.Image:
			flush()
			c.add(parent, doctree.Node{
				Kind:  doctree.KindImage,
				URL:   unescape(child.Destination),
				Title: unescape(child.Title),
				Alt:   c.plainText(child),
			})

		case *ast.AutoLink:
			flush()
			label := string(child.Label(c.src))
			url := string(child.URL(c.src))
			if child.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(url), "mailto:") {
				url = "mailto:" + url
			} else if strings.HasPrefix(strings.ToLower(url), "www.") {
				url = "http://" + url
			}
			id := c.add(parent, doctree.Node{Kind: doctree.KindLink, URL: url})
			c.add(id, doctree.Node{Kind: doctree.KindText, Value: label})

		case *ast.RawHTML:
			flush()
			var b strings.Builder
			for i := 0; i < child.Segments.Len(); i++ {
				seg := child.Segments.At(i)
				b.Write(seg.Value(c.src))
			}
			c.add(parent, doctree.Node{Kind: doctree.KindHTML, Value: b.String()})

		case *east.FootnoteLink:
			flush()
			ident, ok := c.footnotes[child.Index]
			if !ok {
				ident = strconv.Itoa(child.Index)
			}
			c.add(parent, doctree.Node{Kind: doctree.KindFootnoteReference, Identifier: ident})

		case *east.FootnoteBacklink:
			// Rendered from the definition itself.

		case *east.TaskCheckBox:
			flush()
			box := `<input disabled="" type="checkbox">`
			if child.IsChecked {
				box = `<input checked="" disabled="" type="checkbox">`
			}
			c.add(parent, doctree.Node{Kind: doctree.KindHTML, Value: box})

		default:
			flush()
			c.inlines(parent, child)
		}
	}
	flush()
}

// codeText is the literal content of a code span. Line endings inside the
// span become spaces.
func (c *converter) codeText(n ast.Node) string {
	var b strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch child := child.(type) {
		case *ast.Text:
			value := child.Segment.Value(c.src)
			if bytes.HasSuffix(value, []byte("\n")) {
				b.Write(value[:len(value)-1])
				b.WriteByte(' ')
				continue
			}
			b.Write(value)
		case *ast.String:
			b.Write(child.Value)
		}
	}
	return b.String()
}

// plainText flattens the text below n, as used for image alt text.
func (c *converter) plainText(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch child := child.(type) {
		case *ast.Text:
			b.WriteString(unescape(child.Segment.Value(c.src)))
		case *ast.String:
			b.Write(child.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func unescape(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	b = util.UnescapePunctuations(b)
	b = util.ResolveNumericReferences(b)
	return string(util.ResolveEntityNames(b))
}
