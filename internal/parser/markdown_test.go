package parser

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/dgallion1/mdattr/internal/doctree"
)

// childKinds lists the kinds of the children of id.
func childKinds(tree *doctree.Tree, id doctree.NodeID) []doctree.Kind {
	var out []doctree.Kind
	for _, c := range tree.Children(id) {
		out = append(out, tree.Node(c).Kind)
	}
	return out
}

func sameKinds(a, b []doctree.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func parse(t *testing.T, input string) *doctree.Tree {
	t.Helper()
	tree, err := (&MarkdownParser{}).Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tree
}

func TestMarkdownParser_InlineSuffixShape(t *testing.T) {
	tree := parse(t, `*text*{style="c"} and **b**`)

	root := tree.Root()
	if got := childKinds(tree, root); !sameKinds(got, []doctree.Kind{doctree.KindParagraph}) {
		t.Fatalf("expected one paragraph, got %v", got)
	}
	p := tree.ChildAt(root, 0)
	want := []doctree.Kind{doctree.KindEmphasis, doctree.KindText, doctree.KindStrong}
	if got := childKinds(tree, p); !sameKinds(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if v := tree.Node(tree.ChildAt(p, 1)).Value; v != `{style="c"} and ` {
		t.Errorf("expected merged text, got %q", v)
	}
}

func TestMarkdownParser_HeadingPositions(t *testing.T) {
	input := "# Title {id=\"x\"}\n\nSetext\n======\n"
	tree := parse(t, input)

	root := tree.Root()
	if tree.ChildCount(root) != 2 {
		t.Fatalf("expected 2 headings, got %d", tree.ChildCount(root))
	}

	atx := tree.Node(tree.ChildAt(root, 0))
	if atx.Kind != doctree.KindHeading || atx.Depth != 1 {
		t.Fatalf("expected h1, got %v depth %d", atx.Kind, atx.Depth)
	}
	if atx.Position == nil || atx.Position.Start.Line != 1 || atx.Position.End.Line != 1 {
		t.Errorf("expected single-line position, got %+v", atx.Position)
	}
	if got := tree.TextContent(tree.ChildAt(root, 0)); got != `Title {id="x"}` {
		t.Errorf("expected raw heading text, got %q", got)
	}

	setext := tree.Node(tree.ChildAt(root, 1))
	if setext.Position == nil || setext.Position.Start.Line != 3 || setext.Position.End.Line != 4 {
		t.Errorf("expected setext heading to span lines 3-4, got %+v", setext.Position)
	}
}

func TestMarkdownParser_IndentedParagraphColumn(t *testing.T) {
	tree := parse(t, "  *a*{x}\n")

	p := tree.Node(tree.ChildAt(tree.Root(), 0))
	if p.Position == nil || p.Position.Start.Column != 3 {
		t.Fatalf("expected paragraph to start at column 3, got %+v", p.Position)
	}
}

func TestMarkdownParser_FencedCodeMeta(t *testing.T) {
	input := "```js info=string  \nconsole.log(1)\n```\n"
	tree := parse(t, input)

	code := tree.Node(tree.ChildAt(tree.Root(), 0))
	if code.Kind != doctree.KindCode {
		t.Fatalf("expected code, got %v", code.Kind)
	}
	if code.Lang != "js" {
		t.Errorf("expected lang %q, got %q", "js", code.Lang)
	}
	if code.Meta != "info=string" {
		t.Errorf("expected meta %q, got %q", "info=string", code.Meta)
	}
	if code.Value != "console.log(1)" {
		t.Errorf("expected value %q, got %q", "console.log(1)", code.Value)
	}
}

func TestMarkdownParser_Inlines(t *testing.T) {
	input := "`code` ~~gone~~ [link](https://a.example \"T\") ![alt *x*](/i.png) <https://b.example>\\\nnext"
	tree := parse(t, input)

	p := tree.ChildAt(tree.Root(), 0)
	want := []doctree.Kind{
		doctree.KindInlineCode, doctree.KindText,
		doctree.KindDelete, doctree.KindText,
		doctree.KindLink, doctree.KindText,
		doctree.KindImage, doctree.KindText,
		doctree.KindLink, doctree.KindBreak, doctree.KindText,
	}
	if got := childKinds(tree, p); !sameKinds(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	link := tree.Node(tree.ChildAt(p, 4))
	if link.URL != "https://a.example" || link.Title != "T" {
		t.Errorf("unexpected link %q %q", link.URL, link.Title)
	}
	img := tree.Node(tree.ChildAt(p, 6))
	if img.URL != "/i.png" || img.Alt != "alt x" {
		t.Errorf("unexpected image %q %q", img.URL, img.Alt)
	}
	auto := tree.Node(tree.ChildAt(p, 8))
	if auto.URL != "https://b.example" {
		t.Errorf("unexpected autolink %q", auto.URL)
	}
}

func TestMarkdownParser_EscapesResolved(t *testing.T) {
	tree := parse(t, `a \*b\* &amp; &#123;`)

	if got := tree.TextContent(tree.Root()); got != "a *b* & {" {
		t.Errorf("expected resolved text, got %q", got)
	}
}

func TestMarkdownParser_Footnotes(t *testing.T) {
	tree := parse(t, "Text[^note].\n\n[^note]: The note.\n")

	root := tree.Root()
	p := tree.ChildAt(root, 0)
	ref := tree.Node(tree.ChildAt(p, 1))
	if ref.Kind != doctree.KindFootnoteReference || ref.Identifier != "note" {
		t.Fatalf("expected footnote reference to note, got %v %q", ref.Kind, ref.Identifier)
	}

	def := tree.Node(tree.ChildAt(root, tree.ChildCount(root)-1))
	if def.Kind != doctree.KindFootnoteDefinition || def.Identifier != "note" {
		t.Fatalf("expected footnote definition, got %v %q", def.Kind, def.Identifier)
	}
}

func TestMarkdownParser_ListsAndTables(t *testing.T) {
	input := "- a\n- b\n\n| x | y |\n|:--|--:|\n| 1 | 2 |\n"
	tree := parse(t, input)

	root := tree.Root()
	if got := childKinds(tree, root); !sameKinds(got, []doctree.Kind{doctree.KindList, doctree.KindTable}) {
		t.Fatalf("expected list and table, got %v", got)
	}

	list := tree.Node(tree.ChildAt(root, 0))
	if list.Ordered || list.Spread {
		t.Errorf("expected tight bullet list, got ordered=%v spread=%v", list.Ordered, list.Spread)
	}

	table := tree.ChildAt(root, 1)
	header := tree.Node(tree.ChildAt(table, 0))
	if !header.Header {
		t.Errorf("expected first row to be the header")
	}
	cell := tree.Node(tree.ChildAt(tree.ChildAt(table, 0), 1))
	if cell.Align != "right" {
		t.Errorf("expected right alignment, got %q", cell.Align)
	}
}

func TestMarkdownParser_LinkReferenceDefinitionDropped(t *testing.T) {
	tree := parse(t, "[G][g]{hreflang=\"en\"}\n\n[g]: https://g.com\n")

	root := tree.Root()
	if got := childKinds(tree, root); !sameKinds(got, []doctree.Kind{doctree.KindParagraph}) {
		t.Fatalf("expected one paragraph, got %v", got)
	}
	p := tree.ChildAt(root, 0)
	want := []doctree.Kind{doctree.KindLink, doctree.KindText}
	if got := childKinds(tree, p); !sameKinds(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if link := tree.Node(tree.ChildAt(p, 0)); link.URL != "https://g.com" {
		t.Errorf("expected resolved url, got %q", link.URL)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	tree := parse(t, "")
	if n := tree.ChildCount(tree.Root()); n != 0 {
		t.Errorf("expected 0 children for empty input, got %d", n)
	}
}

func TestMarkdownParser_ReadError(t *testing.T) {
	_, err := (&MarkdownParser{}).Parse(iotest.ErrReader(errors.New("boom")), "x.md")
	if !errors.Is(err, ErrReadInput) {
		t.Fatalf("expected ErrReadInput, got %v", err)
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"readme.md", false},
		{"notes.MARKDOWN", false},
		{"-", false},
		{"report.pdf", true},
		{"data.csv", true},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.filename)
		if (err != nil) != tt.wantErr {
			t.Errorf("filename=%q: err=%v, wantErr=%v", tt.filename, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("filename=%q: expected ErrUnsupportedFormat, got %v", tt.filename, err)
		}
	}
}
