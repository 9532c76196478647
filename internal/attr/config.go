package attr

import (
	"maps"
	"slices"

	"github.com/dgallion1/mdattr/internal/attrscan"
	"github.com/dgallion1/mdattr/internal/doctree"
)

// Scope is the trust level that decides which attribute names survive.
type Scope string

const (
	// ScopeNone drops every attribute.
	ScopeNone Scope = "none"
	// ScopeGlobal keeps universal HTML attributes plus aria-* and data-*.
	ScopeGlobal Scope = "global"
	// ScopeSpecific adds the attributes listed for the target element.
	ScopeSpecific Scope = "specific"
	// ScopeExtended adds the user-supplied extension table. This is the
	// default, and unrecognized scopes behave like it.
	ScopeExtended Scope = "extended"
	// ScopePermissive keeps everything except DOM event handlers, unless
	// those are explicitly allowed.
	ScopePermissive Scope = "permissive"
	// ScopeEvery is an alias of ScopePermissive.
	ScopeEvery Scope = "every"
)

// Scopes lists the recognized scope names, most restrictive first.
var Scopes = []Scope{ScopeNone, ScopeGlobal, ScopeSpecific, ScopeExtended, ScopePermissive, ScopeEvery}

// supported is the fixed vocabulary of node kinds attributes can target.
var supported = []doctree.Kind{
	doctree.KindLink,
	doctree.KindHeading,
	doctree.KindStrong,
	doctree.KindEmphasis,
	doctree.KindDelete,
	doctree.KindInlineCode,
	doctree.KindCode,
	doctree.KindLinkReference,
	doctree.KindImage,
	doctree.KindFootnoteReference,
}

// SupportedElements returns the node kinds attributes can be attached to.
func SupportedElements() []doctree.Kind {
	return slices.Clone(supported)
}

// IsSupported reports whether kind is in the supported vocabulary.
func IsSupported(kind doctree.Kind) bool {
	return slices.Contains(supported, kind)
}

// Config controls a Transformer. It is copied on construction and never
// changes afterwards.
type Config struct {
	// Scope is the trust level. Empty means ScopeExtended.
	Scope Scope
	// Extend maps a node type (e.g. "image") or "*" to extra attribute names
	// accepted under ScopeExtended.
	Extend map[string][]string
	// AllowDangerousDOMEventHandlers lets on* handler names through.
	AllowDangerousDOMEventHandlers bool
	// Elements restricts processing to these kinds. Kinds outside the
	// supported vocabulary are ignored.
	Elements []doctree.Kind
	// EnableATXHeaderInline recognizes "# Title {attrs}".
	EnableATXHeaderInline bool
	// DisableBlockElements turns off attribute paragraphs after headings.
	DisableBlockElements bool
	// Scanner is forwarded to the annotation scanner.
	Scanner attrscan.Options
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		Scope:                 ScopeExtended,
		Extend:                map[string][]string{},
		Elements:              SupportedElements(),
		EnableATXHeaderInline: true,
	}
}

// Option configures a Transformer.
type Option func(*Config)

// WithScope sets the trust scope.
func WithScope(scope Scope) Option {
	return func(c *Config) {
		c.Scope = scope
	}
}

// WithExtend sets the extension table.
func WithExtend(extend map[string][]string) Option {
	return func(c *Config) {
		c.Extend = maps.Clone(extend)
	}
}

// WithDangerousDOMEventHandlers allows or forbids on* handler attributes.
func WithDangerousDOMEventHandlers(allow bool) Option {
	return func(c *Config) {
		c.AllowDangerousDOMEventHandlers = allow
	}
}

// WithElements restricts processing to the given kinds.
func WithElements(kinds ...doctree.Kind) Option {
	return func(c *Config) {
		c.Elements = slices.Clone(kinds)
	}
}

// WithATXHeaderInline toggles "# Title {attrs}" recognition.
func WithATXHeaderInline(enable bool) Option {
	return func(c *Config) {
		c.EnableATXHeaderInline = enable
	}
}

// WithBlockElements toggles attribute paragraphs following headings.
func WithBlockElements(enable bool) Option {
	return func(c *Config) {
		c.DisableBlockElements = !enable
	}
}

// WithScanner sets the options forwarded to the annotation scanner.
func WithScanner(opts attrscan.Options) Option {
	return func(c *Config) {
		c.Scanner = opts
	}
}
