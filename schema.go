package neurarrow

import (
	"slices"
	"strings"

	"github.com/neurarrow/neurarrow-go/i18n"
)

// MetaRule declares one metadata key. Namespace rules match the key itself and
// every "key:..." sub-key. A nil Validator accepts any value.
type MetaRule struct {
	Key       string
	Namespace bool
	Validator Validator
}

// Meta is shorthand for an exact-key rule.
func Meta(key string, v Validator) MetaRule { return MetaRule{Key: key, Validator: v} }

// MetaNamespace is shorthand for a namespace rule.
func MetaNamespace(key string, v Validator) MetaRule {
	return MetaRule{Key: key, Namespace: true, Validator: v}
}

// Matches reports whether the rule governs the metadata key.
func (r MetaRule) Matches(key string) bool {
	if key == r.Key {
		return true
	}
	return r.Namespace && Namespace(key) == r.Key
}

// Extension lists what a format adds on top of its parent.
type Extension struct {
	Required []Column
	Optional []Column
	Derived  []Column

	RequiredMeta []MetaRule
	OptionalMeta []MetaRule
}

// FormatSchema is a resolved, immutable format declaration. Lists are
// parent-first. Build one with NewFormat or Extend.
type FormatSchema struct {
	name   string
	parent string

	required []Column
	optional []Column
	derived  []Column

	requiredMeta []MetaRule
	optionalMeta []MetaRule
}

// NewFormat builds a root format.
func NewFormat(name string, ext Extension) (*FormatSchema, error) {
	return (&FormatSchema{}).extend(name, "", ext)
}

// MustFormat is NewFormat that panics on error; for package-level formats.
func MustFormat(name string, ext Extension) *FormatSchema {
	f, err := NewFormat(name, ext)
	if err != nil {
		panic(err)
	}
	return f
}

// Extend derives a new format from f. Declaring a field name or metadata key
// that is already declared anywhere in the resolved result is an error.
func (f *FormatSchema) Extend(name string, ext Extension) (*FormatSchema, error) {
	return f.extend(name, f.name, ext)
}

// MustExtend is Extend that panics on error.
func (f *FormatSchema) MustExtend(name string, ext Extension) *FormatSchema {
	out, err := f.Extend(name, ext)
	if err != nil {
		panic(err)
	}
	return out
}

func (f *FormatSchema) extend(name, parent string, ext Extension) (*FormatSchema, error) {
	out := &FormatSchema{
		name:         name,
		parent:       parent,
		required:     concat(f.required, ext.Required),
		optional:     concat(f.optional, ext.Optional),
		derived:      concat(f.derived, ext.Derived),
		requiredMeta: concat(f.requiredMeta, ext.RequiredMeta),
		optionalMeta: concat(f.optionalMeta, ext.OptionalMeta),
	}
	if iss := out.verify(); len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func concat[T any](parent, own []T) []T {
	out := make([]T, 0, len(parent)+len(own))
	out = append(out, parent...)
	return append(out, own...)
}

// verify enforces the partition invariants of a resolved format.
func (f *FormatSchema) verify() Issues {
	var iss Issues
	if strings.TrimSpace(f.name) == "" {
		iss = AppendIssues(iss, Root().Issue(CodeInvalidDeclaration, i18n.T(CodeInvalidDeclaration, nil), "reason", "empty format name"))
	}
	seen := map[string]string{}
	for _, part := range []struct {
		label string
		cols  []Column
	}{{"required", f.required}, {"optional", f.optional}, {"derived", f.derived}} {
		for _, c := range part.cols {
			p := FieldsPath().Field(c.Name)
			if c.Name == "" {
				iss = AppendIssues(iss, p.Issue(CodeInvalidDeclaration, i18n.T(CodeInvalidDeclaration, nil), "reason", "empty field name"))
				continue
			}
			if prev, dup := seen[c.Name]; dup {
				iss = AppendIssues(iss, p.Issue(CodeDuplicateDeclaration, i18n.T(CodeDuplicateDeclaration, map[string]string{"name": c.Name}),
					"name", c.Name, "first", prev, "second", part.label))
				continue
			}
			seen[c.Name] = part.label
		}
	}
	seenMeta := map[string]string{}
	for _, part := range []struct {
		label string
		rules []MetaRule
	}{{"required", f.requiredMeta}, {"optional", f.optionalMeta}} {
		for _, r := range part.rules {
			p := MetadataPath().Field(r.Key)
			switch {
			case r.Key == "":
				iss = AppendIssues(iss, p.Issue(CodeInvalidDeclaration, i18n.T(CodeInvalidDeclaration, nil), "reason", "empty metadata key"))
				continue
			case Namespace(r.Key) == AttrNamespace && r.Validator != nil:
				iss = AppendIssues(iss, p.Issue(CodeInvalidDeclaration, i18n.T(CodeInvalidDeclaration, map[string]string{"name": r.Key}),
					"reason", "attr namespace cannot carry a validator"))
				continue
			}
			if prev, dup := seenMeta[r.Key]; dup {
				iss = AppendIssues(iss, p.Issue(CodeDuplicateDeclaration, i18n.T(CodeDuplicateDeclaration, map[string]string{"name": r.Key}),
					"name", r.Key, "first", prev, "second", part.label))
				continue
			}
			seenMeta[r.Key] = part.label
		}
	}
	return iss
}

// Name returns the format identifier.
func (f *FormatSchema) Name() string { return f.name }

// Parent returns the identifier of the format this one extends, or "".
func (f *FormatSchema) Parent() string { return f.parent }

func (f *FormatSchema) RequiredFields() []Column     { return slices.Clone(f.required) }
func (f *FormatSchema) OptionalFields() []Column     { return slices.Clone(f.optional) }
func (f *FormatSchema) DerivedFields() []Column      { return slices.Clone(f.derived) }
func (f *FormatSchema) RequiredMetadata() []MetaRule { return slices.Clone(f.requiredMeta) }
func (f *FormatSchema) OptionalMetadata() []MetaRule { return slices.Clone(f.optionalMeta) }

// Field finds a declared column in any partition.
func (f *FormatSchema) Field(name string) (Column, bool) {
	for _, cols := range [][]Column{f.required, f.optional, f.derived} {
		for _, c := range cols {
			if c.Name == name {
				return c, true
			}
		}
	}
	return Column{}, false
}

// lookupMeta resolves the rule governing key: required first, then optional.
func (f *FormatSchema) lookupMeta(key string) (MetaRule, bool, bool) {
	for _, r := range f.requiredMeta {
		if r.Matches(key) {
			return r, true, true
		}
	}
	for _, r := range f.optionalMeta {
		if r.Matches(key) {
			return r, false, true
		}
	}
	return MetaRule{}, false, false
}
