package neurarrow_test

import (
	"testing"

	neurarrow "github.com/neurarrow/neurarrow-go"
	"github.com/neurarrow/neurarrow-go/rules"
)

func TestNewFormat_MergeIsParentFirst(t *testing.T) {
	root := neurarrow.MustFormat("root", neurarrow.Extension{
		Required:     []neurarrow.Column{neurarrow.Col("a", neurarrow.Int32())},
		RequiredMeta: []neurarrow.MetaRule{neurarrow.Meta("version", rules.VersionRule{})},
	})
	child, err := root.Extend("child", neurarrow.Extension{
		Required: []neurarrow.Column{neurarrow.Col("b", neurarrow.Int32())},
		Derived:  []neurarrow.Column{neurarrow.Col("c", neurarrow.Bool())},
	})
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	req := child.RequiredFields()
	if len(req) != 2 || req[0].Name != "a" || req[1].Name != "b" {
		t.Fatalf("required = %v", req)
	}
	if child.Parent() != "root" || child.Name() != "child" {
		t.Fatalf("name=%s parent=%s", child.Name(), child.Parent())
	}
	if len(root.RequiredFields()) != 1 {
		t.Fatalf("parent must not change when extended")
	}
	if _, ok := child.Field("c"); !ok {
		t.Fatalf("derived field should be declared")
	}
}

func TestExtend_RejectsDuplicatesAcrossLevels(t *testing.T) {
	root := neurarrow.MustFormat("root", neurarrow.Extension{
		Required:     []neurarrow.Column{neurarrow.Col("a", neurarrow.Int32())},
		OptionalMeta: []neurarrow.MetaRule{neurarrow.Meta("k", nil)},
	})
	cases := map[string]neurarrow.Extension{
		"field required then optional":    {Optional: []neurarrow.Column{neurarrow.Col("a", neurarrow.Int64())}},
		"field required then derived":     {Derived: []neurarrow.Column{neurarrow.Col("a", neurarrow.Int32())}},
		"metadata optional then required": {RequiredMeta: []neurarrow.MetaRule{neurarrow.Meta("k", nil)}},
	}
	for name, ext := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := root.Extend("child", ext)
			iss, ok := neurarrow.AsIssues(err)
			if !ok || len(iss) != 1 || iss[0].Code != neurarrow.CodeDuplicateDeclaration {
				t.Fatalf("expected duplicate_declaration, got %v", err)
			}
		})
	}
}

func TestNewFormat_DuplicateWithinOneLevel(t *testing.T) {
	_, err := neurarrow.NewFormat("f", neurarrow.Extension{
		Required: []neurarrow.Column{neurarrow.Col("a", neurarrow.Int32()), neurarrow.Col("a", neurarrow.Int32())},
	})
	iss, ok := neurarrow.AsIssues(err)
	if !ok || iss[0].Code != neurarrow.CodeDuplicateDeclaration || iss[0].Params["first"] != "required" {
		t.Fatalf("got %v", err)
	}
}

func TestNewFormat_InvalidDeclarations(t *testing.T) {
	cases := map[string]struct {
		name string
		ext  neurarrow.Extension
	}{
		"empty format name": {"", neurarrow.Extension{}},
		"empty field name":  {"f", neurarrow.Extension{Required: []neurarrow.Column{neurarrow.Col("", neurarrow.Bool())}}},
		"empty meta key":    {"f", neurarrow.Extension{OptionalMeta: []neurarrow.MetaRule{neurarrow.Meta("", nil)}}},
		"validated attr":    {"f", neurarrow.Extension{OptionalMeta: []neurarrow.MetaRule{neurarrow.Meta("attr:x", rules.Int())}}},
	}
	for label, tc := range cases {
		t.Run(label, func(t *testing.T) {
			_, err := neurarrow.NewFormat(tc.name, tc.ext)
			iss, ok := neurarrow.AsIssues(err)
			if !ok || iss[0].Code != neurarrow.CodeInvalidDeclaration {
				t.Fatalf("expected invalid_declaration, got %v", err)
			}
		})
	}
}

func TestMustFormat_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	neurarrow.MustFormat("", neurarrow.Extension{})
}

func TestMetaRule_Matches(t *testing.T) {
	exact := neurarrow.Meta("unit", nil)
	ns := neurarrow.MetaNamespace("space", nil)
	cases := []struct {
		rule neurarrow.MetaRule
		key  string
		want bool
	}{
		{exact, "unit", true},
		{exact, "unit:x", false},
		{exact, "units", false},
		{ns, "space", true},
		{ns, "space:name", true},
		{ns, "space:a:b", true},
		{ns, "spacecraft", false},
	}
	for _, tc := range cases {
		if got := tc.rule.Matches(tc.key); got != tc.want {
			t.Fatalf("%s matches %q: got %v", tc.rule.Key, tc.key, got)
		}
	}
}
