package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// batchFunc receives the schema of a file once with a nil record, then every
// record in file order. Records are only valid for the duration of the call.
type batchFunc func(schema *arrow.Schema, rec arrow.Record) error

type readFunc func(ctx context.Context, path string, mem memory.Allocator, fn batchFunc) error

// parquetBatchRows bounds the size of the records sliced out of a parquet table.
const parquetBatchRows = 64 * 1024

var readers = map[string]readFunc{
	".parquet": readParquet,
	".arrow":   readIPCFile,
	".feather": readIPCFile,
	".ipc":     readIPCFile,
	".arrows":  readIPCStream,
}

// SupportedExtensions returns the file extensions Open understands.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(readers))
	for ext := range readers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func readerFor(path string) (readFunc, bool) {
	read, ok := readers[strings.ToLower(filepath.Ext(path))]
	return read, ok
}

func readParquet(ctx context.Context, path string, mem memory.Allocator, fn batchFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	tbl, err := pqarrow.ReadTable(ctx, f, parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return fmt.Errorf("read parquet: %w", err)
	}
	defer tbl.Release()

	if err := fn(tbl.Schema(), nil); err != nil {
		return err
	}

	tr := array.NewTableReader(tbl, parquetBatchRows)
	defer tr.Release()
	for tr.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(tbl.Schema(), tr.Record()); err != nil {
			return err
		}
	}
	return tr.Err()
}

func readIPCFile(ctx context.Context, path string, mem memory.Allocator, fn batchFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("read arrow file: %w", err)
	}
	defer r.Close()

	if err := fn(r.Schema(), nil); err != nil {
		return err
	}
	for i := 0; i < r.NumRecords(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		// owned by the reader until the next call
		rec, err := r.Record(i)
		if err != nil {
			return fmt.Errorf("read arrow record %d: %w", i, err)
		}
		if err := fn(r.Schema(), rec); err != nil {
			return err
		}
	}
	return nil
}

func readIPCStream(ctx context.Context, path string, mem memory.Allocator, fn batchFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := ipc.NewReader(f, ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("read arrow stream: %w", err)
	}
	defer r.Release()

	if err := fn(r.Schema(), nil); err != nil {
		return err
	}
	for r.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(r.Schema(), r.Record()); err != nil {
			return err
		}
	}
	return r.Err()
}
