package htmlattr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dgallion1/mdattr/internal/htmlattr"
)

func TestTagFor(t *testing.T) {
	t.Parallel()

	tcs := map[string]string{
		"heading":           "h1",
		"image":             "img",
		"linkReference":     "a",
		"inlineCode":        "code",
		"code":              "code",
		"delete":            "s",
		"*":                 "*",
		"footnoteReference": "footnoteReference",
	}
	for in, want := range tcs {
		assert.Equal(t, want, htmlattr.TagFor(in), in)
	}
}

func TestIsGlobal(t *testing.T) {
	t.Parallel()

	tcs := map[string]bool{
		"style":        true,
		"id":           true,
		"aria-love":    true,
		"data-id":      true,
		"data-id-node": true,
		"data-i":       true,
		"data-x.y_z":   true,
		"data--id":     false,
		"data-":        false,
		"data-Upper":   false,
		"aria-1":       false,
		"href":         false,
		"lang":         false,
		"onclick":      false,
	}
	for name, want := range tcs {
		assert.Equal(t, want, htmlattr.IsGlobal(name), name)
	}
}

func TestIsSpecificAndEventHandlers(t *testing.T) {
	t.Parallel()

	assert.True(t, htmlattr.IsSpecific("img", "longdesc"))
	assert.True(t, htmlattr.IsSpecific("a", "ping"))
	assert.False(t, htmlattr.IsSpecific("code", "lang"))
	assert.False(t, htmlattr.IsSpecific("strong", "style"))

	assert.True(t, htmlattr.IsEventHandler("onload"))
	assert.False(t, htmlattr.IsEventHandler("online"))
}
