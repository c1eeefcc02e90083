// Package arrowtable adapts Apache Arrow schemas to neurarrow table views and
// reads schemas from Arrow IPC and Parquet files.
package arrowtable

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	neurarrow "github.com/neurarrow/neurarrow-go"
	"github.com/neurarrow/neurarrow-go/i18n"
)

// TypeTagOf maps an Arrow data type to a TypeTag. Types outside the closed
// set map to neurarrow.Other, which never equals a declared type.
func TypeTagOf(dt arrow.DataType) neurarrow.TypeTag {
	switch dt.ID() {
	case arrow.BOOL:
		return neurarrow.Bool()
	case arrow.INT8:
		return neurarrow.Int8()
	case arrow.INT16:
		return neurarrow.Int16()
	case arrow.INT32:
		return neurarrow.Int32()
	case arrow.INT64:
		return neurarrow.Int64()
	case arrow.UINT8:
		return neurarrow.Uint8()
	case arrow.UINT16:
		return neurarrow.Uint16()
	case arrow.UINT32:
		return neurarrow.Uint32()
	case arrow.UINT64:
		return neurarrow.Uint64()
	case arrow.FLOAT32:
		return neurarrow.Float32()
	case arrow.FLOAT64:
		return neurarrow.Float64()
	case arrow.STRING:
		return neurarrow.Utf8()
	case arrow.LARGE_STRING:
		return neurarrow.LargeUtf8()
	case arrow.BINARY:
		return neurarrow.Binary()
	case arrow.LIST:
		return neurarrow.ListOf(TypeTagOf(dt.(*arrow.ListType).Elem()))
	case arrow.MAP:
		mt := dt.(*arrow.MapType)
		return neurarrow.MapOf(TypeTagOf(mt.KeyType()), TypeTagOf(mt.ItemType()))
	case arrow.DICTIONARY:
		d := dt.(*arrow.DictionaryType)
		if d.Ordered {
			return neurarrow.OrderedDictionaryOf(TypeTagOf(d.IndexType), TypeTagOf(d.ValueType))
		}
		return neurarrow.DictionaryOf(TypeTagOf(d.IndexType), TypeTagOf(d.ValueType))
	}
	return neurarrow.Other(dt.String())
}

// ArrowType is the inverse of TypeTagOf. Other tags and nested tags with a
// missing child have no Arrow counterpart and yield an invalid_type issue.
func ArrowType(t neurarrow.TypeTag) (arrow.DataType, error) {
	switch t.Kind {
	case neurarrow.KindList:
		if t.Elem == nil {
			return nil, invalidType(t)
		}
	case neurarrow.KindMap, neurarrow.KindDictionary:
		if t.Key == nil || t.Elem == nil {
			return nil, invalidType(t)
		}
	}
	switch t.Kind {
	case neurarrow.KindBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case neurarrow.KindInt8:
		return arrow.PrimitiveTypes.Int8, nil
	case neurarrow.KindInt16:
		return arrow.PrimitiveTypes.Int16, nil
	case neurarrow.KindInt32:
		return arrow.PrimitiveTypes.Int32, nil
	case neurarrow.KindInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case neurarrow.KindUint8:
		return arrow.PrimitiveTypes.Uint8, nil
	case neurarrow.KindUint16:
		return arrow.PrimitiveTypes.Uint16, nil
	case neurarrow.KindUint32:
		return arrow.PrimitiveTypes.Uint32, nil
	case neurarrow.KindUint64:
		return arrow.PrimitiveTypes.Uint64, nil
	case neurarrow.KindFloat32:
		return arrow.PrimitiveTypes.Float32, nil
	case neurarrow.KindFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	case neurarrow.KindUtf8:
		return arrow.BinaryTypes.String, nil
	case neurarrow.KindLargeUtf8:
		return arrow.BinaryTypes.LargeString, nil
	case neurarrow.KindBinary:
		return arrow.BinaryTypes.Binary, nil
	case neurarrow.KindList:
		elem, err := ArrowType(*t.Elem)
		if err != nil {
			return nil, err
		}
		return arrow.ListOf(elem), nil
	case neurarrow.KindMap:
		key, err := ArrowType(*t.Key)
		if err != nil {
			return nil, err
		}
		item, err := ArrowType(*t.Elem)
		if err != nil {
			return nil, err
		}
		return arrow.MapOf(key, item), nil
	case neurarrow.KindDictionary:
		index, err := ArrowType(*t.Key)
		if err != nil {
			return nil, err
		}
		value, err := ArrowType(*t.Elem)
		if err != nil {
			return nil, err
		}
		return &arrow.DictionaryType{IndexType: index, ValueType: value, Ordered: t.Ordered}, nil
	}
	return nil, invalidType(t)
}

func invalidType(t neurarrow.TypeTag) error {
	it := neurarrow.Root().Issue(neurarrow.CodeInvalidType,
		i18n.T(neurarrow.CodeInvalidType, map[string]string{"name": t.String()}), "type", t.String())
	return neurarrow.Issues{it}
}

// View converts an Arrow schema into the table view the checker consumes.
func View(s *arrow.Schema) neurarrow.TableView {
	fields := s.Fields()
	cols := make([]neurarrow.Column, len(fields))
	for i, f := range fields {
		cols[i] = neurarrow.Column{Name: f.Name, Type: TypeTagOf(f.Type), Nullable: f.Nullable}
	}
	md := s.Metadata()
	return neurarrow.TableView{Columns: cols, Metadata: neurarrow.NewMetadata(md.Keys(), md.Values())}
}

// Check runs neurarrow.Check against an Arrow schema.
func Check(s *arrow.Schema, fs *neurarrow.FormatSchema, mode neurarrow.Mode, opts ...neurarrow.CheckOpt) error {
	return neurarrow.Check(View(s), fs, mode, opts...)
}

// FieldSet selects declared partitions for SchemaFor.
type FieldSet uint8

const (
	RequiredFields FieldSet = 1 << iota
	OptionalFields
	DerivedFields

	AllFields = RequiredFields | OptionalFields | DerivedFields
)

// SchemaFor builds an Arrow schema declaring the selected partitions of fs,
// in declared order, with md attached as schema metadata.
func SchemaFor(fs *neurarrow.FormatSchema, md neurarrow.Metadata, include FieldSet) (*arrow.Schema, error) {
	var cols []neurarrow.Column
	if include&RequiredFields != 0 {
		cols = append(cols, fs.RequiredFields()...)
	}
	if include&OptionalFields != 0 {
		cols = append(cols, fs.OptionalFields()...)
	}
	if include&DerivedFields != 0 {
		cols = append(cols, fs.DerivedFields()...)
	}
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		dt, err := ArrowType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("arrowtable: field %q: %w", c.Name, err)
		}
		fields[i] = arrow.Field{Name: c.Name, Type: dt, Nullable: c.Nullable}
	}
	amd := arrow.NewMetadata(md.Keys(), md.Values())
	return arrow.NewSchema(fields, &amd), nil
}
