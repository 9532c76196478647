package doctree

import (
	"encoding/json"
	"slices"
	"strings"
)

type valueKind uint8

const (
	valueAbsent valueKind = iota
	valueString
	valueList
)

// Value is a presentation property value: a string, an ordered list of
// strings, or absent. The zero Value is absent.
type Value struct {
	kind valueKind
	str  string
	list []string
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: valueString, str: s}
}

// List returns a list value. The slice is copied.
func List(items ...string) Value {
	return Value{kind: valueList, list: slices.Clone(items)}
}

// IsAbsent reports whether v holds no value.
func (v Value) IsAbsent() bool { return v.kind == valueAbsent }

// IsList reports whether v holds a list.
func (v Value) IsList() bool { return v.kind == valueList }

// Items returns the list items, or a one-element slice for a string value.
func (v Value) Items() []string {
	switch v.kind {
	case valueList:
		return slices.Clone(v.list)
	case valueString:
		return []string{v.str}
	}
	return nil
}

// String renders the value the way an HTML attribute carries it: lists are
// space-separated.
func (v Value) String() string {
	if v.kind == valueList {
		return strings.Join(v.list, " ")
	}
	return v.str
}

// Equal reports whether two values have the same kind and contents.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == valueList {
		return slices.Equal(v.list, o.list)
	}
	return v.str == o.str
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case valueList:
		return json.Marshal(v.list)
	case valueString:
		return json.Marshal(v.str)
	}
	return []byte("null"), nil
}

// Prop is a single named presentation property.
type Prop struct {
	Name  string
	Value Value
}

// Props is an ordered presentation-property map. Names are case-sensitive
// and unique; setting an existing name overwrites its value in place.
// A nil Props is an empty, absent map.
type Props []Prop

// Get returns the value stored under name.
func (p Props) Get(name string) (Value, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return Value{}, false
}

// Has reports whether name is present.
func (p Props) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Set stores v under name, overwriting an existing entry.
func (p *Props) Set(name string, v Value) {
	for i := range *p {
		if (*p)[i].Name == name {
			(*p)[i].Value = v
			return
		}
	}
	*p = append(*p, Prop{Name: name, Value: v})
}

// Delete removes name if present.
func (p *Props) Delete(name string) {
	*p = slices.DeleteFunc(*p, func(prop Prop) bool { return prop.Name == name })
}

// Names returns the property names in insertion order.
func (p Props) Names() []string {
	names := make([]string, len(p))
	for i, prop := range p {
		names[i] = prop.Name
	}
	return names
}

// Clone returns a copy that shares no list storage with p.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for i, prop := range p {
		out[i] = Prop{Name: prop.Name, Value: prop.Value}
		if prop.Value.kind == valueList {
			out[i].Value = List(prop.Value.list...)
		}
	}
	return out
}

func (p Props) MarshalJSON() ([]byte, error) {
	m := make(map[string]Value, len(p))
	for _, prop := range p {
		m[prop.Name] = prop.Value
	}
	return json.Marshal(m)
}
