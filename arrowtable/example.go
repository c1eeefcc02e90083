package arrowtable

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	neurarrow "github.com/neurarrow/neurarrow-go"
	"github.com/neurarrow/neurarrow-go/formats"
)

// ExampleSkeleton builds a four-sample skeleton with one branch point:
//
//	0 ── 1 ─┬─ 2
//	        └─ 3
//
// The caller owns the returned record and must Release it.
func ExampleSkeleton(mem memory.Allocator) (arrow.Record, error) {
	md := neurarrow.NewMetadata(
		[]string{formats.KeyVersion, formats.KeyContext, formats.KeyUnit},
		[]string{"0.1", "example", "nanometer"},
	)
	sc, err := SchemaFor(formats.Skeletons, md, RequiredFields)
	if err != nil {
		return nil, err
	}
	b := array.NewRecordBuilder(mem, sc)
	defer b.Release()

	for i, f := range sc.Fields() {
		switch f.Name {
		case "sample_id":
			b.Field(i).(*array.Uint64Builder).AppendValues([]uint64{0, 1, 2, 3}, nil)
		case "parent_id":
			b.Field(i).(*array.Uint64Builder).AppendValues([]uint64{0, 0, 1, 1}, []bool{false, true, true, true})
		case "fragment_id":
			b.Field(i).(*array.Uint64Builder).AppendValues([]uint64{0, 0, 0, 0}, nil)
		case "x":
			b.Field(i).(*array.Float64Builder).AppendValues([]float64{0, 1, 2, 2}, nil)
		case "y":
			b.Field(i).(*array.Float64Builder).AppendValues([]float64{0, 0, 0, 1}, nil)
		case "z":
			b.Field(i).(*array.Float64Builder).AppendValues([]float64{0, 0, 0, 0}, nil)
		}
	}
	return b.NewRecord(), nil
}
