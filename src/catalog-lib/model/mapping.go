package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provenance records where a mapping came from in its source text.
type Provenance struct {
	// Line is the zero-based line of the mapping node itself.
	Line int
	// KeyLines holds the zero-based line of each key in the mapping.
	KeyLines map[string]int
}

// Mapping is an ordered, string-keyed configuration mapping.
// Values are nil, bool, int, float64, string, []interface{} or *Mapping.
type Mapping struct {
	Keys       []string
	Values     map[string]interface{}
	Provenance *Provenance
}

// NewMapping returns an empty mapping without provenance.
func NewMapping() *Mapping {
	return &Mapping{
		Values: make(map[string]interface{}),
	}
}

// Len returns the number of keys.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Keys)
}

// Get returns the value stored for key.
func (m *Mapping) Get(key string) (interface{}, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.Values[key]
	return v, ok
}

// Set stores a value, appending the key if it is new.
func (m *Mapping) Set(key string, value interface{}) {
	if m.Values == nil {
		m.Values = make(map[string]interface{})
	}
	if _, ok := m.Values[key]; !ok {
		m.Keys = append(m.Keys, key)
	}
	m.Values[key] = value
}

// Delete removes key, preserving the order of the remaining keys.
func (m *Mapping) Delete(key string) {
	if _, ok := m.Values[key]; !ok {
		return
	}
	delete(m.Values, key)
	for i, k := range m.Keys {
		if k == key {
			m.Keys = append(m.Keys[:i:i], m.Keys[i+1:]...)
			break
		}
	}
	if m.Provenance != nil {
		delete(m.Provenance.KeyLines, key)
	}
}

// KeyLine returns the zero-based line of key, or -1 when unknown.
func (m *Mapping) KeyLine(key string) int {
	if m == nil || m.Provenance == nil {
		return -1
	}
	line, ok := m.Provenance.KeyLines[key]
	if !ok {
		return -1
	}
	return line
}

// Entries returns the top-level entries of the mapping in document order.
func (m *Mapping) Entries() []ConfigEntry {
	if m == nil {
		return nil
	}
	entries := make([]ConfigEntry, 0, len(m.Keys))
	for _, k := range m.Keys {
		entries = append(entries, ConfigEntry{
			Name:       k,
			Body:       m.Values[k],
			SourceLine: m.KeyLine(k),
		})
	}
	return entries
}

// Entry returns the entry stored under name.
func (m *Mapping) Entry(name string) (ConfigEntry, bool) {
	v, ok := m.Get(name)
	if !ok {
		return ConfigEntry{}, false
	}
	return ConfigEntry{Name: name, Body: v, SourceLine: m.KeyLine(name)}, true
}

// Lookup follows a dotted path through nested mappings.
func (m *Mapping) Lookup(path string) (interface{}, bool) {
	var current interface{} = m
	for _, part := range strings.Split(path, ".") {
		next, ok := current.(*Mapping)
		if !ok {
			return nil, false
		}
		if current, ok = next.Get(part); !ok {
			return nil, false
		}
	}
	return current, true
}

// ToPlain converts the mapping into nested map[string]interface{} values.
func (m *Mapping) ToPlain() map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m.Keys))
	for _, k := range m.Keys {
		out[k] = toPlain(m.Values[k])
	}
	return out
}

func toPlain(v interface{}) interface{} {
	switch t := v.(type) {
	case *Mapping:
		return t.ToPlain()
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = toPlain(item)
		}
		return out
	default:
		return v
	}
}

// MarshalJSON encodes the mapping as a JSON object with keys in document order.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range m.Keys {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.Values[k])
		if err != nil {
			return nil, fmt.Errorf("encoding %q: %w", k, err)
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// MarshalYAML encodes the mapping as a YAML mapping node with keys in document order.
func (m *Mapping) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if m == nil {
		return node, nil
	}
	for _, k := range m.Keys {
		var value yaml.Node
		if err := value.Encode(m.Values[k]); err != nil {
			return nil, fmt.Errorf("encoding %q: %w", k, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, &value)
	}
	return node, nil
}
