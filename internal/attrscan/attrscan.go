// Package attrscan tokenizes inline attribute annotations of the form
//
//	{#id .class key=value key="quoted value" key='single' flag}
//
// Scan never panics and never returns an error: malformed input is simply
// reported as "no attributes here".
package attrscan

import (
	"strings"

	"github.com/dgallion1/mdattr/internal/doctree"
)

// Options tunes the scanner.
type Options struct {
	// DefaultValue supplies the value of a bare key such as {hidden}. When
	// nil, bare keys carry an absent value.
	DefaultValue func(key string) doctree.Value
}

// Result is the raw attribute record produced by a successful scan.
type Result struct {
	// Props holds the candidate attributes in the order first seen. The id
	// is stored under "id" and classes as a list under "class".
	Props doctree.Props
	// Consumed is the exact prefix of the input, starting at the scan
	// offset, that the annotation occupied.
	Consumed string
}

const (
	spaceChars     = " \t\v\f"
	forbiddenChars = "\n\r{}"
	nameStopChars  = " \t\v\f\n\r=}"
)

type scanner struct {
	src   string
	pos   int
	brace bool
	bad   bool
	opts  Options
}

// Scan reads an annotation from text starting at byte offset start. When
// text[start] is '{' the annotation must be closed by a matching '}';
// otherwise it runs until a newline, brace or the end of input.
func Scan(text string, start int, opts Options) (res Result, ok bool) {
	defer func() {
		if recover() != nil {
			res, ok = Result{}, false
		}
	}()

	if start < 0 || start > len(text) {
		return Result{}, false
	}

	s := &scanner{src: text, pos: start, opts: opts}
	if s.peek() == '{' {
		s.brace = true
		s.pos++
	}

	var props doctree.Props
	for !s.stop() {
		s.skip(spaceChars)
		if s.stop() {
			break
		}

		kind := byte(0)
		switch s.peek() {
		case '.', '#':
			kind = s.peek()
			s.pos++
		}

		name := s.until(nameStopChars)
		switch kind {
		case '.':
			addClass(&props, name)
			continue
		case '#':
			if name != "" && !props.Has("id") {
				props.Set("id", doctree.String(name))
			}
			continue
		}

		if name == "" {
			// A stray '=' with no name in front of it.
			if s.peek() == '=' {
				s.bad = true
				break
			}
			continue
		}

		var value doctree.Value
		if s.peek() == '=' {
			s.pos++
			s.skip(spaceChars)
			switch s.peek() {
			case '"', '\'':
				v, ok := s.quoted(s.peek())
				if !ok {
					s.bad = true
				}
				value = doctree.String(v)
			default:
				value = doctree.String(s.until(nameStopChars))
			}
		} else if s.opts.DefaultValue != nil {
			value = s.opts.DefaultValue(name)
		}
		if s.bad {
			break
		}
		props.Set(name, value)
	}

	if s.brace {
		if s.peek() != '}' {
			return Result{}, false
		}
		s.pos++
	}
	if s.bad {
		return Result{}, false
	}

	return Result{Props: props, Consumed: text[start:s.pos]}, true
}

func addClass(props *doctree.Props, name string) {
	if name == "" {
		return
	}
	v, _ := props.Get("class")
	items := v.Items()
	for _, c := range items {
		if c == name {
			return
		}
	}
	props.Set("class", doctree.List(append(items, name)...))
}

func (s *scanner) peek() byte {
	if s.pos >= len(s.src) {
		return 0
	}
	return s.src[s.pos]
}

// stop reports whether the scan has reached its end: input exhausted, a
// forbidden character, or the closing brace of a braced annotation.
func (s *scanner) stop() bool {
	if s.bad || s.pos >= len(s.src) {
		return true
	}
	c := s.src[s.pos]
	if strings.IndexByte(forbiddenChars, c) >= 0 {
		if s.brace && c != '}' {
			s.bad = true
		}
		return true
	}
	return false
}

func (s *scanner) skip(chars string) {
	for !s.stop() && strings.IndexByte(chars, s.src[s.pos]) >= 0 {
		s.pos++
	}
}

func (s *scanner) until(chars string) string {
	from := s.pos
	for !s.stop() && strings.IndexByte(chars, s.src[s.pos]) < 0 {
		s.pos++
	}
	return s.src[from:s.pos]
}

// quoted reads a quoted value. Inside quotes only an unescaped closing quote,
// CR or LF end the value; braces are literal.
func (s *scanner) quoted(q byte) (string, bool) {
	s.pos++
	var b strings.Builder
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\n' || c == '\r':
			return b.String(), false
		case c == '\\' && s.pos+1 < len(s.src) && s.src[s.pos+1] == q:
			b.WriteByte(q)
			s.pos += 2
			continue
		case c == q:
			s.pos++
			return b.String(), true
		}
		b.WriteByte(c)
		s.pos++
	}
	return b.String(), false
}
