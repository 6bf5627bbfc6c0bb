// Package document models the generic, format-agnostic value that a
// manifest or build-config file deserializes into before the typed config
// layer interprets it. Parsing JSON/YAML/TOML/JSON5 text into this shape is
// treated as an external concern (spec §1); this package only knows how to
// navigate and shallow-merge the resulting tree.
package document

import (
	"dario.cat/mergo"
)

// Value is an opaque document node: nil, bool, float64, string,
// []interface{}, or map[string]interface{}, mirroring what
// encoding/json, gopkg.in/yaml.v3 and BurntSushi/toml all produce when
// decoded into `interface{}`.
type Value = interface{}

// Map returns v as a string-keyed map, or ok=false if v isn't one.
func Map(v Value) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

// Get walks a single key off a document map. Returns nil, false if v is
// not a map or the key is absent.
func Get(v Value, key string) (Value, bool) {
	m, ok := Map(v)
	if !ok {
		return nil, false
	}
	child, present := m[key]
	return child, present
}

// String returns v as a string, or ok=false otherwise.
func String(v Value) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// List normalizes a "might-be-single" document value into a slice: nil/
// missing becomes an empty slice, a scalar becomes a one-element slice, a
// list passes through. This is the deserialization-boundary collapse the
// spec's design notes call for (§9).
func List(v Value) []Value {
	if v == nil {
		return nil
	}
	if l, ok := v.([]interface{}); ok {
		return l
	}
	return []Value{v}
}

// StringList applies List and type-asserts every element to string,
// dropping anything that isn't one.
func StringList(v Value) []string {
	items := List(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := String(item); ok {
			out = append(out, s)
		}
	}
	return out
}

// ShallowMerge overlays patch's top-level keys onto a copy of base,
// overwriting existing keys. Used to apply extra_metadata onto the
// retained manifest document when emitting a patched package.
func ShallowMerge(base map[string]interface{}, patch map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(base))
	for k, v := range base {
		out[k] = v
	}
	if err := mergo.Merge(&out, patch, mergo.WithOverride); err != nil {
		return nil, err
	}
	return out, nil
}
