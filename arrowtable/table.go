package arrowtable

import (
	"github.com/apache/arrow-go/v18/arrow"

	neurarrow "github.com/neurarrow/neurarrow-go"
	"github.com/neurarrow/neurarrow-go/metacodec"
)

// Schemer is anything that carries an Arrow schema: records, tables and IPC
// readers all qualify.
type Schemer interface {
	Schema() *arrow.Schema
}

type staticSchema struct{ s *arrow.Schema }

func (s staticSchema) Schema() *arrow.Schema { return s.s }

// FromSchema wraps a bare schema as a Schemer.
func FromSchema(s *arrow.Schema) Schemer { return staticSchema{s: s} }

// Table is an Arrow source that was checked against a format on construction.
type Table struct {
	src    Schemer
	format *neurarrow.FormatSchema
	mode   neurarrow.Mode
}

// Wrap checks src against fs under mode and returns the wrapper. ModeSkip
// wraps without checking.
func Wrap(src Schemer, fs *neurarrow.FormatSchema, mode neurarrow.Mode, opts ...neurarrow.CheckOpt) (*Table, error) {
	if err := Check(src.Schema(), fs, mode, opts...); err != nil {
		return nil, err
	}
	return &Table{src: src, format: fs, mode: mode}, nil
}

// Source returns the wrapped value.
func (t *Table) Source() Schemer { return t.src }

func (t *Table) Schema() *arrow.Schema { return t.src.Schema() }

func (t *Table) Format() *neurarrow.FormatSchema { return t.format }

// Mode is the mode the table was checked with.
func (t *Table) Mode() neurarrow.Mode { return t.mode }

// Metadata returns the schema metadata in order.
func (t *Table) Metadata() neurarrow.Metadata {
	md := t.Schema().Metadata()
	return neurarrow.NewMetadata(md.Keys(), md.Values())
}

// NamespacedMetadata keeps the pairs in namespace ns, e.g. "attr" or "space".
func (t *Table) NamespacedMetadata(ns string) neurarrow.Metadata {
	return t.Metadata().WithNamespace(ns)
}

// MetadataTree nests the schema metadata on the namespace delimiter.
func (t *Table) MetadataTree() (metacodec.Tree, error) {
	return metacodec.Nest(t.Metadata())
}
