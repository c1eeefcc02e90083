// Package metacodec converts flat, colon-namespaced metadata into a nested
// tree and back, and renders the tree as JSON or YAML.
//
//	version=0.1, space:name=FAFB, space:transform=affine
//
// nests to
//
//	{"version": "0.1", "space": {"name": "FAFB", "transform": "affine"}}
package metacodec

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	neurarrow "github.com/neurarrow/neurarrow-go"
	"github.com/neurarrow/neurarrow-go/i18n"
	eng "github.com/neurarrow/neurarrow-go/internal/engine"
)

// Tree is nested metadata. Values are leaves (usually strings) or Trees.
type Tree map[string]any

// Nest splits every key on the delimiter and builds intermediate levels. A key
// that is used both as a leaf and as a parent is a metadata_codec_conflict.
// When a key repeats, the later value wins.
func Nest(md neurarrow.Metadata) (Tree, error) {
	root := Tree{}
	var iss neurarrow.Issues
	for i := 0; i < md.Len(); i++ {
		key, value := md.At(i)
		if err := insert(root, key, value); err != nil {
			iss = neurarrow.AppendIssues(iss, *err)
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return root, nil
}

// NestMap is Nest over a map, visiting keys in ascending order.
func NestMap(m map[string]string) (Tree, error) {
	return Nest(neurarrow.MetadataFrom(m))
}

func insert(root Tree, key, value string) *neurarrow.Issue {
	segs := eng.SplitKey(key, neurarrow.Delimiter)
	node := root
	for _, seg := range segs[:len(segs)-1] {
		switch child := node[seg].(type) {
		case nil:
			next := Tree{}
			node[seg] = next
			node = next
		case Tree:
			node = child
		default:
			return conflict(key, "leaf used as namespace")
		}
	}
	last := segs[len(segs)-1]
	if _, isTree := node[last].(Tree); isTree {
		return conflict(key, "namespace used as leaf")
	}
	node[last] = value
	return nil
}

func conflict(key, reason string) *neurarrow.Issue {
	it := neurarrow.MetadataPath().Field(key).Issue(neurarrow.CodeMetadataCodecConflict,
		i18n.T(neurarrow.CodeMetadataCodecConflict, map[string]string{"name": key}), "key", key)
	it.Hint = reason
	return &it
}

// Flatten is the inverse of Nest. Keys are emitted in pre-order with sibling
// segments sorted. String, []byte and fmt.Stringer leaves pass through as
// text; booleans and numbers are formatted. Any other leaf is invalid_type,
// and two paths that flatten to the same key are a metadata_codec_conflict.
func Flatten(t Tree) (neurarrow.Metadata, error) {
	f := &flattener{seen: map[string]struct{}{}}
	f.walk(nil, t)
	if len(f.iss) > 0 {
		return neurarrow.Metadata{}, f.iss
	}
	return neurarrow.NewMetadata(f.keys, f.values), nil
}

type flattener struct {
	keys   []string
	values []string
	seen   map[string]struct{}
	iss    neurarrow.Issues
}

func (f *flattener) walk(prefix []string, node map[string]any) {
	segs := make([]string, 0, len(node))
	for k := range node {
		segs = append(segs, k)
	}
	slices.Sort(segs)
	for _, seg := range segs {
		path := append(slices.Clone(prefix), seg)
		switch v := node[seg].(type) {
		case Tree:
			f.walk(path, v)
		case map[string]any:
			f.walk(path, v)
		default:
			f.leaf(eng.JoinKey(path, neurarrow.Delimiter), v)
		}
	}
}

func (f *flattener) leaf(key string, v any) {
	text, ok := leafText(v)
	if !ok {
		f.iss = neurarrow.AppendIssues(f.iss, neurarrow.MetadataPath().Field(key).Issue(neurarrow.CodeInvalidType,
			i18n.T(neurarrow.CodeInvalidType, map[string]string{"name": key}), "key", key, "type", fmt.Sprintf("%T", v)))
		return
	}
	if _, dup := f.seen[key]; dup {
		f.iss = neurarrow.AppendIssues(f.iss, *conflict(key, "key produced twice"))
		return
	}
	f.seen[key] = struct{}{}
	f.keys = append(f.keys, key)
	f.values = append(f.values, text)
}

func leafText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	case fmt.Stringer:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case uint32:
		return strconv.FormatUint(uint64(x), 10), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	}
	return "", false
}

// MarshalJSON renders md as an indented nested JSON object.
func MarshalJSON(md neurarrow.Metadata) ([]byte, error) {
	t, err := Nest(md)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(t, "", "  ")
}

// UnmarshalJSON parses a nested JSON object and flattens it. Numbers keep
// their literal text.
func UnmarshalJSON(data []byte) (neurarrow.Metadata, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var t Tree
	if err := dec.Decode(&t); err != nil {
		return neurarrow.Metadata{}, parseError(err)
	}
	return Flatten(t)
}

// MarshalYAML renders md as a nested YAML mapping.
func MarshalYAML(md neurarrow.Metadata) ([]byte, error) {
	t, err := Nest(md)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(t)
}

// UnmarshalYAML parses a nested YAML mapping and flattens it. Scalars keep
// their literal text, so 1.10 stays "1.10" and 0x10 stays "0x10".
func UnmarshalYAML(data []byte) (neurarrow.Metadata, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return neurarrow.Metadata{}, parseError(err)
	}
	t := Tree{}
	if len(root.Content) > 0 {
		n := root.Content[0]
		if n.Kind != yaml.MappingNode {
			return neurarrow.Metadata{}, parseError(fmt.Errorf("line %d: expected a mapping", n.Line))
		}
		if err := yamlMapping(t, n); err != nil {
			return neurarrow.Metadata{}, parseError(err)
		}
	}
	return Flatten(t)
}

func yamlMapping(dst Tree, n *yaml.Node) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if _, dup := dst[k.Value]; dup {
			return fmt.Errorf("duplicate key %q at %d:%d", k.Value, k.Line, k.Column)
		}
		val, err := yamlValue(v)
		if err != nil {
			return err
		}
		dst[k.Value] = val
	}
	return nil
}

// yamlValue returns scalar text, a nested Tree for mappings, and nil or a
// slice for nulls and sequences so that Flatten reports them as invalid_type.
func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return yamlValue(n.Alias)
	case yaml.MappingNode:
		t := Tree{}
		if err := yamlMapping(t, n); err != nil {
			return nil, err
		}
		return t, nil
	case yaml.SequenceNode:
		return []any{}, nil
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
		return n.Value, nil
	}
	return nil, nil
}

func parseError(err error) error {
	it := neurarrow.Root().Issue(neurarrow.CodeParseError, i18n.T(neurarrow.CodeParseError, nil))
	it.Cause = err
	it.Hint = err.Error()
	return neurarrow.Issues{it}
}
