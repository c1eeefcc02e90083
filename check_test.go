package neurarrow_test

import (
	"errors"
	"slices"
	"testing"

	neurarrow "github.com/neurarrow/neurarrow-go"
	"github.com/neurarrow/neurarrow-go/formats"
)

func skeletonTable() neurarrow.TableView {
	return neurarrow.TableView{
		Columns: []neurarrow.Column{
			neurarrow.Col("sample_id", neurarrow.Uint64()),
			neurarrow.NullableCol("parent_id", neurarrow.Uint64()),
			neurarrow.Col("fragment_id", neurarrow.Uint64()),
			neurarrow.Col("x", neurarrow.Float64()),
			neurarrow.Col("y", neurarrow.Float64()),
			neurarrow.Col("z", neurarrow.Float64()),
		},
		Metadata: neurarrow.NewMetadata(
			[]string{"version", "context", "unit"},
			[]string{"0.1", "c", "nanometer"},
		),
	}
}

func mustIssues(t *testing.T, err error) neurarrow.Issues {
	t.Helper()
	iss, ok := neurarrow.AsIssues(err)
	if !ok || len(iss) == 0 {
		t.Fatalf("expected Issues, got %v", err)
	}
	return iss
}

func withoutColumn(tv neurarrow.TableView, name string) neurarrow.TableView {
	out := tv
	out.Columns = slices.DeleteFunc(slices.Clone(tv.Columns), func(c neurarrow.Column) bool { return c.Name == name })
	return out
}

func withColumn(tv neurarrow.TableView, c neurarrow.Column) neurarrow.TableView {
	out := tv
	out.Columns = append(slices.Clone(tv.Columns), c)
	return out
}

func replaceColumn(tv neurarrow.TableView, c neurarrow.Column) neurarrow.TableView {
	out := tv
	out.Columns = slices.Clone(tv.Columns)
	for i := range out.Columns {
		if out.Columns[i].Name == c.Name {
			out.Columns[i] = c
		}
	}
	return out
}

func TestCheck_SkeletonEndToEnd(t *testing.T) {
	tv := skeletonTable()
	if err := neurarrow.Check(tv, formats.Skeletons, neurarrow.ModeStrict); err != nil {
		t.Fatalf("strict check failed: %v", err)
	}

	tv.Metadata = tv.Metadata.Without("unit")
	iss := mustIssues(t, neurarrow.Check(tv, formats.Skeletons, neurarrow.ModeStrict))
	if len(iss) != 1 || iss[0].Code != neurarrow.CodeMissingRequiredMetadata || iss[0].Path != "/metadata/unit" {
		t.Fatalf("expected missing unit metadata, got %v", iss)
	}
}

func TestCheck_SkipAcceptsAnything(t *testing.T) {
	tv := neurarrow.TableView{Columns: []neurarrow.Column{
		neurarrow.Col("a", neurarrow.Bool()),
		neurarrow.Col("a", neurarrow.Bool()),
	}}
	if err := neurarrow.Check(tv, formats.Skeletons, neurarrow.ModeSkip); err != nil {
		t.Fatalf("skip must not fail: %v", err)
	}
}

func TestCheck_DuplicateFieldRegardlessOfMode(t *testing.T) {
	tv := withColumn(skeletonTable(), neurarrow.Col("x", neurarrow.Float64()))
	for _, mode := range []neurarrow.Mode{neurarrow.ModeLenient, neurarrow.ModeStrict} {
		iss := mustIssues(t, neurarrow.Check(tv, formats.Skeletons, mode))
		if len(iss) != 1 || iss[0].Code != neurarrow.CodeDuplicateField || iss[0].Path != "/fields/x" {
			t.Fatalf("%s: expected duplicate_field for x, got %v", mode, iss)
		}
		var want []int
		for i, n := range tv.ColumnNames() {
			if n == "x" {
				want = append(want, i)
			}
		}
		if got, _ := iss[0].Params["indices"].([]int); !slices.Equal(got, want) {
			t.Fatalf("%s: indices=%v want %v", mode, iss[0].Params["indices"], want)
		}
	}
}

func TestCheck_RequiredFieldNecessity(t *testing.T) {
	for _, want := range formats.Skeletons.RequiredFields() {
		tv := withoutColumn(skeletonTable(), want.Name)
		for _, mode := range []neurarrow.Mode{neurarrow.ModeLenient, neurarrow.ModeStrict} {
			iss := mustIssues(t, neurarrow.Check(tv, formats.Skeletons, mode))
			if len(iss) != 1 {
				t.Fatalf("%s/%s: expected exactly one issue, got %v", want.Name, mode, iss)
			}
			if iss[0].Code != neurarrow.CodeMissingRequiredField || iss[0].Params["name"] != want.Name {
				t.Fatalf("%s/%s: got %v", want.Name, mode, iss)
			}
		}
	}
}

func TestCheck_TypeMismatchDetection(t *testing.T) {
	s := formats.Skeletons
	declared := append(append(s.RequiredFields(), s.OptionalFields()...), s.DerivedFields()...)
	for _, want := range declared {
		base := skeletonTable()
		if _, present := base.Column(want.Name); !present {
			base = withColumn(base, want)
		}
		if err := neurarrow.Check(base, s, neurarrow.ModeStrict); err != nil {
			t.Fatalf("%s: baseline should conform: %v", want.Name, err)
		}

		flipped := want
		flipped.Nullable = !want.Nullable
		retyped := want
		retyped.Type = neurarrow.Int64()

		for label, bad := range map[string]neurarrow.Column{"nullability": flipped, "type": retyped} {
			iss := mustIssues(t, neurarrow.Check(replaceColumn(base, bad), s, neurarrow.ModeLenient))
			if iss[0].Code != neurarrow.CodeFieldTypeMismatch || iss[0].Params["name"] != want.Name {
				t.Fatalf("%s %s: got %v", want.Name, label, iss)
			}
			if iss[0].Params["expected"] != want.String() || iss[0].Params["actual"] != bad.String() {
				t.Fatalf("%s %s: params %v", want.Name, label, iss[0].Params)
			}
		}
	}
}

func TestCheck_NestedTypeParametersMatter(t *testing.T) {
	tv := withColumn(skeletonTable(), neurarrow.Col("child_ids", neurarrow.ListOf(neurarrow.Uint32())))
	iss := mustIssues(t, neurarrow.Check(tv, formats.Skeletons, neurarrow.ModeLenient))
	if iss[0].Code != neurarrow.CodeFieldTypeMismatch || iss[0].Path != "/fields/child_ids" {
		t.Fatalf("got %v", iss)
	}
}

func TestCheck_UnknownFieldTolerance(t *testing.T) {
	tv := withColumn(skeletonTable(), neurarrow.Col("label", neurarrow.Utf8()))
	if err := neurarrow.Check(tv, formats.Skeletons, neurarrow.ModeLenient); err != nil {
		t.Fatalf("lenient should tolerate extras: %v", err)
	}
	iss := mustIssues(t, neurarrow.Check(tv, formats.Skeletons, neurarrow.ModeStrict))
	if len(iss) != 1 || iss[0].Code != neurarrow.CodeUnexpectedFields {
		t.Fatalf("got %v", iss)
	}
	if got, _ := iss[0].Params["fields"].([]string); !slices.Equal(got, []string{"label"}) {
		t.Fatalf("fields param: %v", iss[0].Params["fields"])
	}
}

func TestCheck_AttrColumnsAreExempt(t *testing.T) {
	tv := withColumn(skeletonTable(), neurarrow.Col("attr", neurarrow.MapOf(neurarrow.Utf8(), neurarrow.Utf8())))
	tv = withColumn(tv, neurarrow.Col("attr:soma", neurarrow.Bool()))
	if err := neurarrow.Check(tv, formats.Skeletons, neurarrow.ModeStrict); err != nil {
		t.Fatalf("attr columns must be exempt: %v", err)
	}
}

func TestCheck_StrictnessMonotonicity(t *testing.T) {
	tables := []neurarrow.TableView{
		skeletonTable(),
		withColumn(skeletonTable(), neurarrow.NullableCol("radius", neurarrow.Float64())),
		withColumn(skeletonTable(), neurarrow.Col("strahler", neurarrow.Uint32())),
	}
	for i, tv := range tables {
		if neurarrow.Conforms(tv, formats.Skeletons, neurarrow.ModeStrict) &&
			!neurarrow.Conforms(tv, formats.Skeletons, neurarrow.ModeLenient) {
			t.Fatalf("table %d passes strict but not lenient", i)
		}
	}
}

func TestCheck_MetadataValidation(t *testing.T) {
	tv := skeletonTable()
	tv.Metadata = tv.Metadata.With("unit", "lightyear")
	iss := mustIssues(t, neurarrow.Check(tv, formats.Skeletons, neurarrow.ModeLenient))
	if len(iss) != 1 || iss[0].Code != neurarrow.CodeMetadataValidationFailed || iss[0].Path != "/metadata/unit" {
		t.Fatalf("got %v", iss)
	}
	if neurarrow.CauseCode(iss[0]) != neurarrow.CodeUnknownUnit || iss[0].Params["reason"] != neurarrow.CodeUnknownUnit {
		t.Fatalf("expected unknown_unit cause, got %v", iss[0])
	}
	var cause neurarrow.Issues
	if !errors.As(iss[0].Cause, &cause) {
		t.Fatalf("cause should be Issues")
	}
}

func TestCheck_UnexpectedMetadataKey(t *testing.T) {
	tv := skeletonTable()
	tv.Metadata = tv.Metadata.With("owner", "lab")
	if err := neurarrow.Check(tv, formats.Skeletons, neurarrow.ModeLenient); err != nil {
		t.Fatalf("lenient should tolerate unknown metadata: %v", err)
	}
	iss := mustIssues(t, neurarrow.Check(tv, formats.Skeletons, neurarrow.ModeStrict))
	if len(iss) != 1 || iss[0].Code != neurarrow.CodeUnexpectedMetadataKey || iss[0].Path != "/metadata/owner" {
		t.Fatalf("got %v", iss)
	}
}

func TestCheck_AttrAndSpaceNamespaces(t *testing.T) {
	tv := skeletonTable()
	tv.Metadata = tv.Metadata.
		With("attr", "x").
		With("attr:soma:radius", "12").
		With("space", "FAFB").
		With("space:transform", "affine")
	if err := neurarrow.Check(tv, formats.Skeletons, neurarrow.ModeStrict); err != nil {
		t.Fatalf("attr and space namespaces should pass strict: %v", err)
	}
	// exact-key rules do not extend to sub-keys
	tv.Metadata = tv.Metadata.With("unit:scale", "2")
	iss := mustIssues(t, neurarrow.Check(tv, formats.Skeletons, neurarrow.ModeStrict))
	if iss[0].Code != neurarrow.CodeUnexpectedMetadataKey || iss[0].Path != "/metadata/unit:scale" {
		t.Fatalf("got %v", iss)
	}
}

func TestCheck_DeterministicOrderAndFailFast(t *testing.T) {
	tv := neurarrow.TableView{
		Columns: []neurarrow.Column{
			neurarrow.Col("y", neurarrow.Float64()),
			neurarrow.Col("x", neurarrow.Int32()),
			neurarrow.Col("extra", neurarrow.Bool()),
			neurarrow.Col("radius", neurarrow.Float64()),
		},
		Metadata: neurarrow.NewMetadata([]string{"zzz", "version"}, []string{"1", "one"}),
	}
	iss := mustIssues(t, neurarrow.Check(tv, formats.Skeletons, neurarrow.ModeStrict))
	want := []string{
		"/fields/sample_id", // missing, declared first
		"/fields/fragment_id",
		"/fields/x", // mismatch
		"/fields/z",
		"/fields/parent_id",
		"/fields/radius", // optional mismatch
		"/metadata/zzz",  // table order
		"/metadata/version",
		"/metadata/context", // missing required metadata
		"/metadata/unit",
		"/fields", // unexpected fields last
	}
	got := make([]string, len(iss))
	for i, it := range iss {
		got[i] = it.Path
	}
	if !slices.Equal(got, want) {
		t.Fatalf("order:\n got %v\nwant %v", got, want)
	}
	again := mustIssues(t, neurarrow.Check(tv, formats.Skeletons, neurarrow.ModeStrict))
	if !slices.Equal(again.Codes(), iss.Codes()) {
		t.Fatalf("check is not deterministic")
	}

	ff := mustIssues(t, neurarrow.Check(tv, formats.Skeletons, neurarrow.ModeStrict, neurarrow.CheckOpt{FailFast: true}))
	if len(ff) != 1 || ff[0].Path != "/fields/sample_id" {
		t.Fatalf("fail-fast: %v", ff)
	}
}

func TestCheck_AbsenceBeforeEquality(t *testing.T) {
	tv := withoutColumn(skeletonTable(), "x")
	iss := mustIssues(t, neurarrow.Check(tv, formats.Skeletons, neurarrow.ModeLenient))
	if iss[0].Code != neurarrow.CodeMissingRequiredField {
		t.Fatalf("got %v", iss)
	}
}

func TestCheck_NilFormat(t *testing.T) {
	if err := neurarrow.Check(skeletonTable(), nil, neurarrow.ModeStrict); err != nil {
		t.Fatalf("nil format: %v", err)
	}
}

func TestCheck_OtherFormats(t *testing.T) {
	dot := neurarrow.TableView{
		Columns: []neurarrow.Column{
			neurarrow.Col("sample_id", neurarrow.Uint64()),
			neurarrow.Col("fragment_id", neurarrow.Uint64()),
			neurarrow.Col("x", neurarrow.Float64()),
			neurarrow.Col("y", neurarrow.Float64()),
			neurarrow.Col("z", neurarrow.Float64()),
			neurarrow.Col("tangent_x", neurarrow.Float64()),
			neurarrow.Col("tangent_y", neurarrow.Float64()),
			neurarrow.Col("tangent_z", neurarrow.Float64()),
		},
		Metadata: neurarrow.MetadataFrom(map[string]string{
			"version": "0.1", "context": "c", "unit": "micrometer", "neighborhood_size": "5",
		}),
	}
	if err := neurarrow.Check(dot, formats.Dotprops, neurarrow.ModeStrict); err != nil {
		t.Fatalf("dotprops: %v", err)
	}
	dot.Metadata = dot.Metadata.With("neighborhood_size", "five")
	iss := mustIssues(t, neurarrow.Check(dot, formats.Dotprops, neurarrow.ModeStrict))
	if neurarrow.CauseCode(iss[0]) != neurarrow.CodeInvalidValueFormat {
		t.Fatalf("got %v", iss)
	}

	conn := neurarrow.TableView{
		Columns: []neurarrow.Column{
			neurarrow.Col("connection_id", neurarrow.Uint64()),
			neurarrow.Col("src_sample_id", neurarrow.Uint64()),
			neurarrow.Col("tgt_sample_id", neurarrow.Uint64()),
			neurarrow.Col("type", neurarrow.DictionaryOf(neurarrow.Uint16(), neurarrow.Utf8())),
		},
		Metadata: neurarrow.MetadataFrom(map[string]string{"version": "0.1", "context": "c"}),
	}
	if err := neurarrow.Check(conn, formats.Connections, neurarrow.ModeStrict); err != nil {
		t.Fatalf("connections: %v", err)
	}
	// unit is not part of the connections format
	conn.Metadata = conn.Metadata.With("unit", "nanometer")
	if err := neurarrow.Check(conn, formats.Connections, neurarrow.ModeStrict); err == nil {
		t.Fatalf("unit should be unexpected for connections")
	}
}

func TestIssues_ErrorSummary(t *testing.T) {
	iss := neurarrow.Issues{
		{Path: "/fields/a", Code: neurarrow.CodeMissingRequiredField},
		{Path: "/fields/b", Code: neurarrow.CodeFieldTypeMismatch},
		{Path: "/metadata/c", Code: neurarrow.CodeUnexpectedMetadataKey},
		{Path: "/fields", Code: neurarrow.CodeUnexpectedFields},
	}
	want := "missing_required_field at /fields/a; field_type_mismatch at /fields/b; unexpected_metadata_key at /metadata/c; ... (total 4)"
	if s := iss.Error(); s != want {
		t.Fatalf("got %q", s)
	}
	if !iss.HasCode(neurarrow.CodeUnexpectedFields) || iss.HasCode(neurarrow.CodeDuplicateField) {
		t.Fatalf("HasCode mismatch")
	}
}
