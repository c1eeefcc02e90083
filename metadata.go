package neurarrow

import (
	"slices"
	"strings"
)

// Delimiter separates namespace segments in metadata keys.
const Delimiter = ":"

// AttrNamespace is the free-form user attribute namespace. Keys in it are never
// validated and never reported as unexpected.
const AttrNamespace = "attr"

// Namespace returns the outer segment of a metadata key: the part before the
// first delimiter, or the whole key.
func Namespace(key string) string {
	ns, _, _ := strings.Cut(key, Delimiter)
	return ns
}

// IsAttrKey reports whether key lives in the attr namespace.
func IsAttrKey(key string) bool { return Namespace(key) == AttrNamespace }

// Metadata is an ordered list of string key/value pairs, mirroring Arrow
// schema metadata.
type Metadata struct {
	keys   []string
	values []string
}

// NewMetadata pairs keys with values. It panics when the lengths differ.
func NewMetadata(keys, values []string) Metadata {
	if len(keys) != len(values) {
		panic("neurarrow: len mismatch")
	}
	if len(keys) == 0 {
		return Metadata{}
	}
	return Metadata{keys: slices.Clone(keys), values: slices.Clone(values)}
}

// MetadataFrom builds Metadata from a map with keys in ascending order.
func MetadataFrom(m map[string]string) Metadata {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = m[k]
	}
	return NewMetadata(keys, values)
}

func (md Metadata) Len() int { return len(md.keys) }

// Keys returns a copy of the keys in order.
func (md Metadata) Keys() []string { return slices.Clone(md.keys) }

// Values returns a copy of the values in order.
func (md Metadata) Values() []string { return slices.Clone(md.values) }

// At returns the i-th pair.
func (md Metadata) At(i int) (key, value string) { return md.keys[i], md.values[i] }

// Get returns the value of the first pair with the given key.
func (md Metadata) Get(key string) (string, bool) {
	if i := slices.Index(md.keys, key); i >= 0 {
		return md.values[i], true
	}
	return "", false
}

// ToMap copies the pairs into a map; later duplicates win.
func (md Metadata) ToMap() map[string]string {
	out := make(map[string]string, len(md.keys))
	for i, k := range md.keys {
		out[k] = md.values[i]
	}
	return out
}

// WithNamespace keeps the pairs whose namespace is ns, in order.
func (md Metadata) WithNamespace(ns string) Metadata {
	var keys, values []string
	for i, k := range md.keys {
		if Namespace(k) == ns {
			keys = append(keys, k)
			values = append(values, md.values[i])
		}
	}
	return Metadata{keys: keys, values: values}
}

// Without drops every pair with the given key.
func (md Metadata) Without(key string) Metadata {
	var keys, values []string
	for i, k := range md.keys {
		if k != key {
			keys = append(keys, k)
			values = append(values, md.values[i])
		}
	}
	return Metadata{keys: keys, values: values}
}

// With returns a copy where key is set to value; an existing key keeps its position.
func (md Metadata) With(key, value string) Metadata {
	keys, values := slices.Clone(md.keys), slices.Clone(md.values)
	if i := slices.Index(keys, key); i >= 0 {
		values[i] = value
		return Metadata{keys: keys, values: values}
	}
	return Metadata{keys: append(keys, key), values: append(values, value)}
}

// TableView is the engine's view of a columnar table: ordered columns, which
// may contain duplicate names, plus metadata.
type TableView struct {
	Columns  []Column
	Metadata Metadata
}

// ColumnNames lists column names in order.
func (tv TableView) ColumnNames() []string {
	out := make([]string, len(tv.Columns))
	for i, c := range tv.Columns {
		out[i] = c.Name
	}
	return out
}

// Column returns the first column with the given name.
func (tv TableView) Column(name string) (Column, bool) {
	for _, c := range tv.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
