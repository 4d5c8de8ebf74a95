package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/hepframe/hepframe/internal/core/column"
)

var arrowTypes = map[column.Kind]arrow.DataType{
	column.KindFloat32: arrow.PrimitiveTypes.Float32,
	column.KindFloat64: arrow.PrimitiveTypes.Float64,
	column.KindInt32:   arrow.PrimitiveTypes.Int32,
	column.KindInt64:   arrow.PrimitiveTypes.Int64,
	column.KindUint32:  arrow.PrimitiveTypes.Uint32,
	column.KindBool:    arrow.FixedWidthTypes.Boolean,
}

// Write stores every column of store in path. The format follows the file
// extension, as in Open.
func Write(path string, store *column.Store) error {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := readers[ext]; !ok {
		return fmt.Errorf("unsupported output format %q", ext)
	}

	mem := memory.NewGoAllocator()
	rec, err := Record(mem, store)
	if err != nil {
		return err
	}
	defer rec.Release()

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch ext {
	case ".parquet":
		err = writeParquet(f, rec)
	case ".arrows":
		err = writeIPCStream(f, rec, mem)
	default:
		err = writeIPCFile(f, rec, mem)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Record converts a store into a single arrow record.
func Record(mem memory.Allocator, store *column.Store) (arrow.Record, error) {
	cols := store.Columns()
	fields := make([]arrow.Field, len(cols))
	arrays := make([]arrow.Array, len(cols))
	defer func() {
		for _, a := range arrays {
			if a != nil {
				a.Release()
			}
		}
	}()

	for i, c := range cols {
		arr, err := toArrow(mem, c)
		if err != nil {
			return nil, err
		}
		arrays[i] = arr
		fields[i] = arrow.Field{Name: c.Name(), Type: arr.DataType()}
	}
	return array.NewRecord(arrow.NewSchema(fields, nil), arrays, int64(store.Len())), nil
}

func toArrow(mem memory.Allocator, c column.Column) (arrow.Array, error) {
	switch col := c.(type) {
	case *column.Scalar[float32]:
		return scalarArray(mem, col, appendFloat32), nil
	case *column.Scalar[float64]:
		return scalarArray(mem, col, appendFloat64), nil
	case *column.Scalar[int32]:
		return scalarArray(mem, col, appendInt32), nil
	case *column.Scalar[int64]:
		return scalarArray(mem, col, appendInt64), nil
	case *column.Scalar[uint32]:
		return scalarArray(mem, col, appendUint32), nil
	case *column.Scalar[bool]:
		return scalarArray(mem, col, appendBool), nil
	case *column.List[float32]:
		return listArray(mem, col, appendFloat32), nil
	case *column.List[float64]:
		return listArray(mem, col, appendFloat64), nil
	case *column.List[int32]:
		return listArray(mem, col, appendInt32), nil
	case *column.List[int64]:
		return listArray(mem, col, appendInt64), nil
	case *column.List[uint32]:
		return listArray(mem, col, appendUint32), nil
	case *column.List[bool]:
		return listArray(mem, col, appendBool), nil
	}
	return nil, fmt.Errorf("column %q: cannot convert %T", c.Name(), c)
}

type appendFunc[T column.Element] func(b array.Builder, values []T)

func appendFloat32(b array.Builder, v []float32) { b.(*array.Float32Builder).AppendValues(v, nil) }
func appendFloat64(b array.Builder, v []float64) { b.(*array.Float64Builder).AppendValues(v, nil) }
func appendInt32(b array.Builder, v []int32)     { b.(*array.Int32Builder).AppendValues(v, nil) }
func appendInt64(b array.Builder, v []int64)     { b.(*array.Int64Builder).AppendValues(v, nil) }
func appendUint32(b array.Builder, v []uint32)   { b.(*array.Uint32Builder).AppendValues(v, nil) }
func appendBool(b array.Builder, v []bool)       { b.(*array.BooleanBuilder).AppendValues(v, nil) }

func scalarArray[T column.Element](mem memory.Allocator, c *column.Scalar[T], app appendFunc[T]) arrow.Array {
	b := array.NewBuilder(mem, arrowTypes[c.Kind()])
	defer b.Release()
	app(b, c.Values())
	return b.NewArray()
}

func listArray[T column.Element](mem memory.Allocator, c *column.List[T], app appendFunc[T]) arrow.Array {
	b := array.NewListBuilder(mem, arrowTypes[c.Kind()])
	defer b.Release()
	values := b.ValueBuilder()
	for row := 0; row < c.Len(); row++ {
		b.Append(true)
		app(values, c.Value(row))
	}
	return b.NewArray()
}

// unclosable hides Close from pqarrow, which closes any io.Closer sink
// itself. Write owns the file.
type unclosable struct{ io.Writer }

func writeParquet(f *os.File, rec arrow.Record) error {
	tbl := array.NewTableFromRecords(rec.Schema(), []arrow.Record{rec})
	defer tbl.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	chunk := rec.NumRows()
	if chunk == 0 {
		chunk = 1
	}
	return pqarrow.WriteTable(tbl, unclosable{f}, chunk, props, pqarrow.DefaultWriterProps())
}

func writeIPCFile(f *os.File, rec arrow.Record, mem memory.Allocator) error {
	w, err := ipc.NewFileWriter(f, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err != nil {
		return err
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func writeIPCStream(f *os.File, rec arrow.Record, mem memory.Allocator) error {
	w := ipc.NewWriter(f, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err := w.Write(rec); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
