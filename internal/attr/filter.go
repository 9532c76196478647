package attr

import (
	"github.com/dgallion1/mdattr/internal/doctree"
	"github.com/dgallion1/mdattr/internal/htmlattr"
)

// Policy decides which attribute names are in scope for an element. Build
// it with NewPolicy; the zero Policy behaves like ScopeExtended with an
// empty extension table.
type Policy struct {
	scope       Scope
	allowEvents bool
	// extend is keyed by tag name, see htmlattr.TagFor.
	extend map[string]map[string]struct{}
}

// NewPolicy builds a policy. Extension table keys are node types or "*";
// they are translated to tag names the same way element types are.
func NewPolicy(scope Scope, extend map[string][]string, allowEventHandlers bool) Policy {
	p := Policy{
		scope:       scope,
		allowEvents: allowEventHandlers,
		extend:      make(map[string]map[string]struct{}, len(extend)),
	}
	for typ, names := range extend {
		if len(names) == 0 {
			continue
		}
		tag := htmlattr.TagFor(typ)
		if p.extend[tag] == nil {
			p.extend[tag] = make(map[string]struct{}, len(names))
		}
		for _, name := range names {
			p.extend[tag][name] = struct{}{}
		}
	}
	return p
}

// Scope returns the scope the policy was built with.
func (p Policy) Scope() Scope { return p.scope }

// Filter returns the subset of raw that is in scope for an element of the
// given kind. Valueless attributes become empty strings, except id and
// class which are dropped when absent. raw is not modified.
func (p Policy) Filter(kind doctree.Kind, raw doctree.Props) doctree.Props {
	accepted, _ := p.filter(kind.String(), raw)
	return accepted
}

func (p Policy) filter(nodeType string, raw doctree.Props) (doctree.Props, int) {
	tag := htmlattr.TagFor(nodeType)

	var accepted doctree.Props
	rejected := 0
	for _, prop := range raw {
		v := prop.Value
		if v.IsAbsent() {
			if prop.Name == "id" || prop.Name == "class" {
				continue
			}
			v = doctree.String("")
		}
		if !p.inScope(tag, prop.Name) {
			rejected++
			continue
		}
		accepted.Set(prop.Name, v)
	}
	return accepted, rejected
}

func (p Policy) inScope(tag, name string) bool {
	switch p.scope {
	case ScopeNone:
		return false
	case ScopePermissive, ScopeEvery:
		return p.allowEvents || !htmlattr.IsEventHandler(name)
	case ScopeGlobal:
		return p.isGlobal(name)
	case ScopeSpecific:
		return htmlattr.IsSpecific(tag, name) || p.isGlobal(name)
	default:
		// ScopeExtended and anything unrecognized.
		return p.isExtended(tag, name) || htmlattr.IsSpecific(tag, name) || p.isGlobal(name)
	}
}

func (p Policy) isExtended(tag, name string) bool {
	if _, ok := p.extend[tag][name]; ok {
		return true
	}
	_, ok := p.extend[htmlattr.Wildcard][name]
	return ok
}

func (p Policy) isGlobal(name string) bool {
	if htmlattr.IsGlobal(name) {
		return true
	}
	return p.allowEvents && htmlattr.IsEventHandler(name)
}

// Apply merges accepted into the node's presentation properties. Incoming
// names overwrite existing ones. An empty set leaves the node untouched.
func Apply(n *doctree.Node, accepted doctree.Props) {
	if n == nil || len(accepted) == 0 {
		return
	}
	for _, prop := range accepted {
		n.Props.Set(prop.Name, prop.Value)
	}
}
