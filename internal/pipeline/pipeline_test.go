package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/mdattr/internal/attr"
	"github.com/dgallion1/mdattr/internal/parser"
	"github.com/dgallion1/mdattr/internal/stats"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestDocumentHash_DependsOnPolicy(t *testing.T) {
	data := []byte("*hi*{.x}")
	if DocumentHash(data, "") != ContentHashHex(data) {
		t.Error("expected plain content hash without a policy")
	}
	if DocumentHash(data, "sha256:a") == DocumentHash(data, "sha256:b") {
		t.Error("expected different hashes for different policies")
	}
}

func TestRender(t *testing.T) {
	st := stats.NewRenderStats(time.Hour)
	p := New(nil, "", st, nil, 2)

	res, err := p.Render(context.Background(), "doc.md", []byte("*hi*{.x}\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.HTML, `<em class="x">hi</em>`) {
		t.Errorf("expected decorated emphasis, got %q", res.HTML)
	}
	if res.Attributes.Annotations != 1 || res.Attributes.Applied != 1 {
		t.Errorf("unexpected attribute stats %+v", res.Attributes)
	}
	if res.ContentHash != ContentHashHex([]byte("*hi*{.x}\n")) {
		t.Errorf("unexpected content hash %q", res.ContentHash)
	}

	snap := st.Snapshot()
	if snap.Count != 1 || snap.Attributes.Applied != 1 {
		t.Errorf("expected one recorded render, got %+v", snap)
	}
}

func TestRender_UnsupportedFormat(t *testing.T) {
	p := New(nil, "", nil, nil, 1)
	_, err := p.Render(context.Background(), "doc.pdf", []byte("x"))
	if !errors.Is(err, parser.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestRender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(nil, "", nil, nil, 1)
	if _, err := p.Render(ctx, "doc.md", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSetTransformer(t *testing.T) {
	p := New(nil, "sha256:old", nil, nil, 1)
	src := []byte("*hi*{.x}\n")

	before, err := p.Render(context.Background(), "doc.md", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.SetTransformer(attr.New(attr.WithScope(attr.ScopeNone)), "sha256:new")
	if p.PolicyHash() != "sha256:new" {
		t.Errorf("expected new policy hash, got %q", p.PolicyHash())
	}

	after, err := p.Render(context.Background(), "doc.md", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(after.HTML, "class") {
		t.Errorf("expected no attributes under scope none, got %q", after.HTML)
	}
	if !strings.Contains(after.HTML, "<em>hi</em>") {
		t.Errorf("expected the annotation to be consumed, got %q", after.HTML)
	}
	if before.ContentHash == after.ContentHash {
		t.Error("expected the content hash to change with the policy")
	}
}

func TestDecorate(t *testing.T) {
	p := New(nil, "", nil, nil, 1)
	tree, st, err := p.Decorate(context.Background(), "", []byte("# Title {#top}\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Applied != 1 {
		t.Errorf("expected 1 applied attribute, got %+v", st)
	}
	heading := tree.Export(tree.Root()).Children[0]
	if heading.Type != "heading" || heading.Data == nil {
		t.Fatalf("expected decorated heading, got %+v", heading)
	}
	if v, ok := heading.Data.HProperties.Get("id"); !ok || v.String() != "top" {
		t.Errorf("expected id=top, got %v", heading.Data.HProperties)
	}
}

func TestRenderBatch(t *testing.T) {
	p := New(nil, "", nil, nil, 2)
	inputs := []Input{
		{Filename: "a.md", Data: []byte("*a*{.one}")},
		{Filename: "b.txt", Data: []byte("b")},
		{Filename: "c.md", Data: []byte("*c*{.three}")},
	}

	results := p.RenderBatch(context.Background(), inputs)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, in := range inputs {
		if results[i].Filename != in.Filename {
			t.Errorf("expected result %d for %q, got %q", i, in.Filename, results[i].Filename)
		}
	}
	if results[0].Err != nil || !strings.Contains(results[0].Result.HTML, `class="one"`) {
		t.Errorf("unexpected first result %+v", results[0])
	}
	if !errors.Is(results[1].Err, parser.ErrUnsupportedFormat) {
		t.Errorf("expected unsupported format for b.txt, got %v", results[1].Err)
	}
	if results[2].Err != nil || !strings.Contains(results[2].Result.HTML, `class="three"`) {
		t.Errorf("unexpected third result %+v", results[2])
	}
}

func TestRenderBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(nil, "", nil, nil, 1)
	results := p.RenderBatch(ctx, []Input{{Filename: "a.md"}, {Filename: "b.md"}})
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("expected context.Canceled for %q, got %v", r.Filename, r.Err)
		}
	}
}
