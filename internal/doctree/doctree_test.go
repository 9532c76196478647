package doctree_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/mdattr/internal/doctree"
)

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"heading", "inlineCode", "footnoteReference", "linkReference", "code"} {
		k, ok := doctree.ParseKind(name)
		require.True(t, ok, name)
		assert.Equal(t, name, k.String())
	}

	_, ok := doctree.ParseKind("footnoteCall")
	assert.False(t, ok)
}

func TestPropsSetOverwritesInPlace(t *testing.T) {
	t.Parallel()

	var p doctree.Props
	p.Set("style", doctree.String("a"))
	p.Set("id", doctree.String("x"))
	p.Set("style", doctree.String("b"))

	assert.Equal(t, []string{"style", "id"}, p.Names())
	v, ok := p.Get("style")
	require.True(t, ok)
	assert.Equal(t, "b", v.String())

	p.Delete("style")
	assert.False(t, p.Has("style"))
	assert.Len(t, p, 1)
}

func TestValue(t *testing.T) {
	t.Parallel()

	var zero doctree.Value
	assert.True(t, zero.IsAbsent())

	l := doctree.List("a", "b")
	assert.True(t, l.IsList())
	assert.Equal(t, "a b", l.String())
	assert.True(t, l.Equal(doctree.List("a", "b")))
	assert.False(t, l.Equal(doctree.String("a b")))

	out, err := json.Marshal(doctree.Props{{Name: "class", Value: l}, {Name: "hidden", Value: doctree.String("")}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"class":["a","b"],"hidden":""}`, string(out))
}

func TestWalkSeesSplicedSiblings(t *testing.T) {
	t.Parallel()

	tree := doctree.New()
	p := tree.AppendNew(tree.Root(), doctree.Node{Kind: doctree.KindParagraph})
	em := tree.AppendNew(p, doctree.Node{Kind: doctree.KindEmphasis})
	tree.AppendNew(em, doctree.Node{Kind: doctree.KindText, Value: "hi"})
	tree.AppendNew(p, doctree.Node{Kind: doctree.KindText, Value: "{.x}"})
	tree.AppendNew(p, doctree.Node{Kind: doctree.KindText, Value: "tail"})

	var seen []string
	tree.Walk(func(id doctree.NodeID, index int, parent doctree.NodeID) {
		n := tree.Node(id)
		seen = append(seen, n.Kind.String()+":"+n.Value)
		if n.Kind == doctree.KindEmphasis {
			// Drop the sibling right after the emphasis.
			tree.RemoveChild(parent, index+1)
		}
	})

	assert.Equal(t, []string{"paragraph:", "emphasis:", "text:hi", "text:tail"}, seen)
}

func TestInsertAndRemoveChild(t *testing.T) {
	t.Parallel()

	tree := doctree.New()
	p := tree.AppendNew(tree.Root(), doctree.Node{Kind: doctree.KindParagraph})
	a := tree.AppendNew(p, doctree.Node{Kind: doctree.KindText, Value: "a"})
	sp := tree.Add(doctree.Node{Kind: doctree.KindText, Value: " "})
	tree.InsertChild(p, 0, sp)

	assert.Equal(t, []doctree.NodeID{sp, a}, tree.Children(p))
	assert.Equal(t, p, tree.Parent(sp))
	assert.Equal(t, " a", tree.TextContent(p))

	tree.RemoveChild(p, 0)
	assert.Equal(t, doctree.NoNode, tree.Parent(sp))
	assert.Equal(t, doctree.NoNode, tree.ChildAt(p, 5))
}

func TestExport(t *testing.T) {
	t.Parallel()

	tree := doctree.New()
	h := tree.AppendNew(tree.Root(), doctree.Node{Kind: doctree.KindHeading, Depth: 2})
	tree.Node(h).Props.Set("id", doctree.String("x"))
	tree.AppendNew(h, doctree.Node{Kind: doctree.KindText, Value: "Title"})

	out, err := json.Marshal(tree.Export(tree.Root()))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"root","children":[{"type":"heading","depth":2,
		"data":{"hProperties":{"id":"x"}},
		"children":[{"type":"text","value":"Title"}]}]}`, string(out))
}
