package neurarrow

import (
	"regexp"

	js "github.com/neurarrow/neurarrow-go/jsonschema"
)

// MetadataJSONSchema projects the metadata contract of f into a JSON Schema
// for a string-to-string object. Strict mode closes the object to undeclared
// keys, except for the attr namespace.
func (f *FormatSchema) MetadataJSONSchema(mode Mode) *js.Schema {
	root := js.Object()
	root.Schema = js.Draft
	root.Title = f.name + " metadata"
	root.PatternProperties = map[string]*js.Schema{
		namespacePattern(AttrNamespace): {Type: "string", Description: "free-form attributes"},
	}
	add := func(r MetaRule) {
		s := js.String()
		ApplyDescribe(r.Validator, s)
		if _, exists := root.Properties[r.Key]; !exists {
			root.Properties[r.Key] = s
		}
		if r.Namespace {
			sub := *s
			root.PatternProperties[namespacePattern(r.Key)] = &sub
		}
	}
	for _, r := range f.requiredMeta {
		add(r)
		root.Required = append(root.Required, r.Key)
	}
	for _, r := range f.optionalMeta {
		add(r)
	}
	if mode == ModeStrict {
		root.AdditionalProperties = false
	}
	return root
}

// namespacePattern matches "ns:..." sub-keys.
func namespacePattern(ns string) string {
	return "^" + regexp.QuoteMeta(ns) + Delimiter
}
