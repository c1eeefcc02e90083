package arrowtable

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// parquetSchemaKey is the key pqarrow uses to embed the serialized Arrow
// schema in Parquet key/value metadata.
const parquetSchemaKey = "ARROW:schema"

// ReadIPCFileSchema reads the schema of an Arrow IPC file without loading
// record batches.
func ReadIPCFileSchema(path string) (*arrow.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("arrowtable: open %s: %w", path, err)
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f)
	if err != nil {
		return nil, fmt.Errorf("arrowtable: read ipc file %s: %w", path, err)
	}
	defer r.Close()
	return r.Schema(), nil
}

// ReadIPCStreamSchema reads the schema message at the head of an Arrow IPC
// stream.
func ReadIPCStreamSchema(r io.Reader) (*arrow.Schema, error) {
	rr, err := ipc.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("arrowtable: read ipc stream: %w", err)
	}
	defer rr.Release()
	return rr.Schema(), nil
}

// ReadParquetSchema reads the Arrow schema of a Parquet file, dropping the
// serialized-schema bookkeeping key from its metadata.
func ReadParquetSchema(path string) (*arrow.Schema, error) {
	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, fmt.Errorf("arrowtable: open parquet %s: %w", path, err)
	}
	defer rdr.Close()

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("arrowtable: read parquet %s: %w", path, err)
	}
	s, err := fr.Schema()
	if err != nil {
		return nil, fmt.Errorf("arrowtable: parquet schema %s: %w", path, err)
	}
	return stripKey(s, parquetSchemaKey), nil
}

func stripKey(s *arrow.Schema, key string) *arrow.Schema {
	md := s.Metadata()
	if md.FindKey(key) < 0 {
		return s
	}
	var keys, values []string
	for i, k := range md.Keys() {
		if k != key {
			keys = append(keys, k)
			values = append(values, md.Values()[i])
		}
	}
	out := arrow.NewMetadata(keys, values)
	return arrow.NewSchema(s.Fields(), &out)
}

// ReadSchema picks a reader by extension: .parquet and .pq are Parquet,
// .arrows is an IPC stream, anything else an IPC file.
func ReadSchema(path string) (*arrow.Schema, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return ReadParquetSchema(path)
	case ".arrows":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("arrowtable: open %s: %w", path, err)
		}
		defer f.Close()
		return ReadIPCStreamSchema(f)
	}
	return ReadIPCFileSchema(path)
}
