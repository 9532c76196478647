package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/mdattr/internal/doctree"
)

var (
	// ErrUnsupportedFormat is returned for files that are not markdown.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrReadInput wraps failures reading the document.
	ErrReadInput = errors.New("read input")
)

// Parser converts raw document bytes into a document tree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Tree, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdown":    true,
	".mkd":      true,
}

// ForFile returns the appropriate parser for a filename. A name without an
// extension, or "-" for stdin, is treated as markdown.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || SupportedExtensions[ext] {
		return NewMarkdownParser(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
