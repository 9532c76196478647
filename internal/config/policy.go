package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/mdattr/internal/attr"
	"github.com/dgallion1/mdattr/internal/attrscan"
	"github.com/dgallion1/mdattr/internal/doctree"
)

// ErrInvalidPolicy is returned for policy files that cannot be used.
var ErrInvalidPolicy = errors.New("invalid policy")

// Policy is the attribute policy as written in a YAML file.
type Policy struct {
	Scope                          string              `yaml:"scope"`
	Extend                         map[string][]string `yaml:"extend"`
	AllowDangerousDOMEventHandlers bool                `yaml:"allow_dangerous_dom_event_handlers"`
	// Elements lists node type names, e.g. "link" or "inlineCode". Empty
	// means every supported type.
	Elements              []string `yaml:"elements"`
	EnableATXHeaderInline bool     `yaml:"enable_atx_header_inline"`
	DisableBlockElements  bool     `yaml:"disable_block_elements"`
	// DefaultValue, when set, is the value given to bare keys like {hidden}.
	DefaultValue *string `yaml:"default_value"`
}

// DefaultPolicy returns the policy used when no file is configured.
func DefaultPolicy() *Policy {
	return &Policy{
		Scope:                 string(attr.ScopeExtended),
		EnableATXHeaderInline: true,
	}
}

// LoadPolicy loads a policy from a YAML file. An empty path or a missing
// file yields the defaults. Fields absent from the file keep their defaults.
func LoadPolicy(path string) (*Policy, error) {
	p, _, err := LoadPolicyWithHash(path)
	return p, err
}

// LoadPolicyWithHash loads a policy and returns the SHA-256 of the raw file.
// When no file exists the hash is that of empty input.
func LoadPolicyWithHash(path string) (*Policy, string, error) {
	if path == "" {
		return DefaultPolicy(), hashOf(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPolicy(), hashOf(nil), nil
		}
		return nil, "", fmt.Errorf("failed to read policy: %w", err)
	}

	p := DefaultPolicy()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidPolicy, err)
	}
	if err := p.Validate(); err != nil {
		return nil, "", err
	}
	return p, hashOf(data), nil
}

func hashOf(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}

// Validate checks element names. Unknown scopes are accepted; they behave
// like the extended scope.
func (p *Policy) Validate() error {
	for _, name := range p.Elements {
		kind, ok := doctree.ParseKind(name)
		if !ok || !attr.IsSupported(kind) {
			return fmt.Errorf("%w: unsupported element %q", ErrInvalidPolicy, name)
		}
	}
	for typ, names := range p.Extend {
		for _, name := range names {
			if name == "" {
				return fmt.Errorf("%w: empty attribute name in extend[%q]", ErrInvalidPolicy, typ)
			}
		}
	}
	return nil
}

// Options converts the policy into transformer options. Call Validate
// first; unknown element names are skipped here.
func (p *Policy) Options() []attr.Option {
	opts := []attr.Option{
		attr.WithScope(attr.Scope(p.Scope)),
		attr.WithExtend(p.Extend),
		attr.WithDangerousDOMEventHandlers(p.AllowDangerousDOMEventHandlers),
		attr.WithATXHeaderInline(p.EnableATXHeaderInline),
		attr.WithBlockElements(!p.DisableBlockElements),
	}

	if len(p.Elements) > 0 {
		var kinds []doctree.Kind
		for _, name := range p.Elements {
			if kind, ok := doctree.ParseKind(name); ok {
				kinds = append(kinds, kind)
			}
		}
		opts = append(opts, attr.WithElements(kinds...))
	}

	if p.DefaultValue != nil {
		v := doctree.String(*p.DefaultValue)
		opts = append(opts, attr.WithScanner(attrscan.Options{
			DefaultValue: func(string) doctree.Value { return v },
		}))
	}
	return opts
}

// Transformer builds an attribute transformer from the policy.
func (p *Policy) Transformer() *attr.Transformer {
	return attr.New(p.Options()...)
}
