// Package formatdef loads user-defined formats from YAML.
//
// A definition stream holds one format per document:
//
//	name: traced_skeleton
//	extends: skeleton
//	fields:
//	  optional:
//	    - {name: confidence, type: float32, nullable: true}
//	metadata:
//	  required:
//	    - key: tracer
//	      validator: {kind: enum, values: [manual, auto]}
//	  optional:
//	    - {key: provenance, namespace: true}
//
// Documents may extend built-in formats, formats already in the registry, or
// formats defined earlier in the same stream.
package formatdef

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	neurarrow "github.com/neurarrow/neurarrow-go"
	"github.com/neurarrow/neurarrow-go/formats"
	"github.com/neurarrow/neurarrow-go/i18n"
	"github.com/neurarrow/neurarrow-go/rules"
)

// Document is one format definition.
type Document struct {
	Name     string      `yaml:"name"`
	Extends  string      `yaml:"extends,omitempty"`
	Fields   FieldsDoc   `yaml:"fields,omitempty"`
	Metadata MetadataDoc `yaml:"metadata,omitempty"`
}

type FieldsDoc struct {
	Required []FieldDoc `yaml:"required,omitempty"`
	Optional []FieldDoc `yaml:"optional,omitempty"`
	Derived  []FieldDoc `yaml:"derived,omitempty"`
}

type FieldDoc struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable,omitempty"`
}

type MetadataDoc struct {
	Required []MetaDoc `yaml:"required,omitempty"`
	Optional []MetaDoc `yaml:"optional,omitempty"`
}

type MetaDoc struct {
	Key       string        `yaml:"key"`
	Namespace bool          `yaml:"namespace,omitempty"`
	Validator *ValidatorDoc `yaml:"validator,omitempty"`
}

// ValidatorDoc selects a validator by kind: version (optional exclusive
// max), unit (values default to the space units), int, float, enum (values
// required) or opaque.
type ValidatorDoc struct {
	Kind   string   `yaml:"kind"`
	Max    string   `yaml:"max,omitempty"`
	Values []string `yaml:"values,omitempty"`
}

func (d Document) empty() bool {
	return d.Name == "" && d.Extends == "" &&
		len(d.Fields.Required)+len(d.Fields.Optional)+len(d.Fields.Derived) == 0 &&
		len(d.Metadata.Required)+len(d.Metadata.Optional) == 0
}

// Decode reads every document of a YAML stream. Unknown keys are rejected.
func Decode(data []byte) ([]Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var docs []Document
	for {
		var d Document
		if err := dec.Decode(&d); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			it := neurarrow.Root().Issue(neurarrow.CodeParseError, i18n.T(neurarrow.CodeParseError, nil), "document", len(docs))
			it.Cause = err
			it.Hint = err.Error()
			return nil, neurarrow.Issues{it}
		}
		if d.empty() {
			continue
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// Load decodes data, resolves every document and registers the results in
// reg. Either all formats are registered or, on any issue, none are.
func Load(data []byte, reg *formats.Registry) ([]*neurarrow.FormatSchema, error) {
	docs, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Resolve(docs, reg)
}

// LoadFile is Load over the contents of path.
func LoadFile(path string, reg *formats.Registry) ([]*neurarrow.FormatSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formatdef: read %s: %w", path, err)
	}
	out, err := Load(data, reg)
	if err != nil {
		return nil, fmt.Errorf("formatdef: %s: %w", path, err)
	}
	return out, nil
}

// Resolve builds formats from decoded documents and registers them.
func Resolve(docs []Document, reg *formats.Registry) ([]*neurarrow.FormatSchema, error) {
	local := map[string]*neurarrow.FormatSchema{}
	var out []*neurarrow.FormatSchema
	var iss neurarrow.Issues
	for i, d := range docs {
		label := d.Name
		if label == "" {
			label = "#" + strconv.Itoa(i)
		}
		p := neurarrow.Root().Field(label)
		if _, taken := local[d.Name]; taken {
			iss = neurarrow.AppendIssues(iss, dupFormat(p, d.Name))
			continue
		}
		if _, taken := reg.Lookup(d.Name); taken {
			iss = neurarrow.AppendIssues(iss, dupFormat(p, d.Name))
			continue
		}
		fs, err := build(p, d, local, reg)
		if err != nil {
			if more, ok := neurarrow.AsIssues(err); ok {
				iss = neurarrow.AppendIssues(iss, more...)
				continue
			}
			return nil, err
		}
		local[d.Name] = fs
		out = append(out, fs)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	for _, fs := range out {
		if err := reg.Register(fs); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func dupFormat(p neurarrow.PathRef, name string) neurarrow.Issue {
	return p.Issue(neurarrow.CodeDuplicateDeclaration,
		i18n.T(neurarrow.CodeDuplicateDeclaration, map[string]string{"name": name}), "format", name)
}

func build(p neurarrow.PathRef, d Document, local map[string]*neurarrow.FormatSchema, reg *formats.Registry) (*neurarrow.FormatSchema, error) {
	var iss neurarrow.Issues
	ext := neurarrow.Extension{
		Required: columns(p.Field("fields").Field("required"), d.Fields.Required, &iss),
		Optional: columns(p.Field("fields").Field("optional"), d.Fields.Optional, &iss),
		Derived:  columns(p.Field("fields").Field("derived"), d.Fields.Derived, &iss),

		RequiredMeta: metaRules(p.Field("metadata").Field("required"), d.Metadata.Required, &iss),
		OptionalMeta: metaRules(p.Field("metadata").Field("optional"), d.Metadata.Optional, &iss),
	}
	if len(iss) > 0 {
		return nil, iss
	}
	if d.Extends == "" {
		return neurarrow.NewFormat(d.Name, ext)
	}
	parent, ok := local[d.Extends]
	if !ok {
		var err error
		if parent, err = reg.Get(d.Extends); err != nil {
			return nil, err
		}
	}
	return parent.Extend(d.Name, ext)
}

func columns(p neurarrow.PathRef, docs []FieldDoc, iss *neurarrow.Issues) []neurarrow.Column {
	out := make([]neurarrow.Column, 0, len(docs))
	for _, fd := range docs {
		t, err := neurarrow.ParseTypeTag(fd.Type)
		if err != nil {
			it := p.Field(fd.Name).Issue(neurarrow.CodeInvalidType,
				i18n.T(neurarrow.CodeInvalidType, map[string]string{"name": fd.Name}), "name", fd.Name, "type", fd.Type)
			it.Cause = err
			*iss = neurarrow.AppendIssues(*iss, it)
			continue
		}
		out = append(out, neurarrow.Column{Name: fd.Name, Type: t, Nullable: fd.Nullable})
	}
	return out
}

func metaRules(p neurarrow.PathRef, docs []MetaDoc, iss *neurarrow.Issues) []neurarrow.MetaRule {
	out := make([]neurarrow.MetaRule, 0, len(docs))
	for _, md := range docs {
		v, err := validator(md.Validator)
		if err != nil {
			it := p.Field(md.Key).Issue(neurarrow.CodeInvalidDeclaration,
				i18n.T(neurarrow.CodeInvalidDeclaration, map[string]string{"name": md.Key}), "key", md.Key)
			it.Cause = err
			it.Hint = err.Error()
			*iss = neurarrow.AppendIssues(*iss, it)
			continue
		}
		out = append(out, neurarrow.MetaRule{Key: md.Key, Namespace: md.Namespace, Validator: v})
	}
	return out
}

func validator(vd *ValidatorDoc) (neurarrow.Validator, error) {
	if vd == nil {
		return nil, nil
	}
	switch vd.Kind {
	case "", "opaque":
		return nil, nil
	case "version":
		if vd.Max == "" {
			return rules.VersionRule{}, nil
		}
		maxVer, err := rules.ParseVersion(vd.Max)
		if err != nil {
			return nil, err
		}
		return rules.VersionRule{Max: &maxVer}, nil
	case "unit":
		if len(vd.Values) == 0 {
			return rules.UnitRule{Allowed: rules.SpaceUnits}, nil
		}
		return rules.UnitRule{Allowed: rules.NewSet(vd.Values...)}, nil
	case "int":
		return rules.Int(), nil
	case "float":
		return rules.Float(), nil
	case "enum":
		if len(vd.Values) == 0 {
			return nil, errors.New("enum validator needs values")
		}
		return rules.EnumRule{Values: vd.Values}, nil
	}
	return nil, fmt.Errorf("unknown validator kind %q", vd.Kind)
}
