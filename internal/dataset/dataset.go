// Package dataset loads event files into an in-memory column store.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/hepframe/hepframe/internal/core/column"
	engerr "github.com/hepframe/hepframe/internal/core/errors"
	"github.com/hepframe/hepframe/internal/schema"
)

type options struct {
	columns []string
	layout  *schema.Layout
	mem     memory.Allocator
	logger  *slog.Logger
}

// Option configures Open.
type Option func(*options)

// WithColumns restricts loading to the named columns. Requesting a column the
// files do not have is a schema error.
func WithColumns(names ...string) Option {
	return func(o *options) { o.columns = names }
}

// WithLayout checks the loaded store against a compiled dataset layout. With
// WithColumns, only the selected columns are checked.
func WithLayout(layout *schema.Layout) Option {
	return func(o *options) { o.layout = layout }
}

// WithAllocator sets the arrow allocator used while decoding.
func WithAllocator(mem memory.Allocator) Option {
	return func(o *options) { o.mem = mem }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Open reads every file matched by pathOrGlob, concatenated in lexical path
// order, into one column store. A directory stands for all supported files
// directly inside it.
func Open(ctx context.Context, pathOrGlob string, opts ...Option) (*column.Store, error) {
	o := options{mem: memory.NewGoAllocator(), logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	files, err := Expand(pathOrGlob)
	if err != nil {
		return nil, err
	}

	l := newLoader(o.columns, o.logger)
	for _, path := range files {
		read, ok := readerFor(path)
		if !ok {
			return nil, fmt.Errorf("%w: %s: unsupported file format (want one of %s)",
				engerr.ErrSchema, path, strings.Join(SupportedExtensions(), ", "))
		}
		l.beginFile(path)
		if err := read(ctx, path, o.mem, l.consume); err != nil {
			if errors.Is(err, engerr.ErrSchema) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s: %w", engerr.ErrSchema, path, err)
		}
	}

	store, err := l.store()
	if err != nil {
		return nil, err
	}
	store.SetSources(files)

	if o.layout != nil {
		layout := o.layout
		if len(o.columns) > 0 {
			layout = layout.Restrict(o.columns)
		}
		if err := layout.Check(store); err != nil {
			return nil, fmt.Errorf("%w: layout %s v%d: %w", engerr.ErrSchema, o.layout.Name, o.layout.Version, err)
		}
	}

	o.logger.Info("[Dataset] opened",
		"input", pathOrGlob,
		"files", len(files),
		"events", store.Len(),
		"columns", len(store.Columns()),
		"duration", time.Since(start))
	return store, nil
}

// Expand resolves a path, directory or doublestar glob into a sorted list of
// regular files. Nothing matching is ErrDatasetNotFound.
func Expand(pathOrGlob string) ([]string, error) {
	var files []string
	if !isPattern(pathOrGlob) {
		info, err := os.Stat(pathOrGlob)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", engerr.ErrDatasetNotFound, pathOrGlob)
			}
			return nil, err
		}
		if !info.IsDir() {
			return []string{pathOrGlob}, nil
		}
		entries, err := os.ReadDir(pathOrGlob)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if _, ok := readerFor(e.Name()); ok && !e.IsDir() {
				files = append(files, filepath.Join(pathOrGlob, e.Name()))
			}
		}
	} else {
		matches, err := doublestar.FilepathGlob(pathOrGlob, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad dataset pattern %q: %w", pathOrGlob, err)
		}
		files = matches
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: nothing matches %s", engerr.ErrDatasetNotFound, pathOrGlob)
	}
	sort.Strings(files)
	return files, nil
}

func isPattern(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

// loader concatenates the records of several files column by column.
type loader struct {
	selected []string
	order    []string
	builders map[string]columnBuilder
	file     string
	first    bool
	logger   *slog.Logger
}

func newLoader(selected []string, logger *slog.Logger) *loader {
	return &loader{selected: selected, builders: make(map[string]columnBuilder), first: true, logger: logger}
}

func (l *loader) beginFile(path string) {
	l.file = path
}

func (l *loader) consume(s *arrow.Schema, rec arrow.Record) error {
	if rec == nil {
		if l.first {
			l.first = false
			return l.init(s)
		}
		return l.checkSchema(s)
	}

	for _, name := range l.order {
		idx := s.FieldIndices(name)
		if err := l.builders[name].append(rec.Column(idx[0])); err != nil {
			return fmt.Errorf("%w: %s: column %q: %w", engerr.ErrSchema, l.file, name, err)
		}
	}
	return nil
}

// init fixes the column set from the first file.
func (l *loader) init(s *arrow.Schema) error {
	names := l.selected
	if len(names) == 0 {
		for _, f := range s.Fields() {
			if _, _, err := classify(f.Type); err != nil {
				l.logger.Warn("[Dataset] skipping column", "file", l.file, "column", f.Name, "error", err)
				continue
			}
			names = append(names, f.Name)
		}
	}

	for _, name := range names {
		if _, dup := l.builders[name]; dup {
			continue
		}
		f, err := field(s, name)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", engerr.ErrSchema, l.file, err)
		}
		kind, list, err := classify(f.Type)
		if err != nil {
			return fmt.Errorf("%w: %s: column %q: %w", engerr.ErrSchema, l.file, name, err)
		}
		l.builders[name] = builders[kind](list)
		l.order = append(l.order, name)
	}
	return nil
}

// checkSchema requires every later file to carry the loaded columns with the
// same kind and arity. Without an explicit selection the column sets must match too.
func (l *loader) checkSchema(s *arrow.Schema) error {
	for _, name := range l.order {
		f, err := field(s, name)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", engerr.ErrSchema, l.file, err)
		}
		kind, list, err := classify(f.Type)
		if err != nil {
			return fmt.Errorf("%w: %s: column %q: %w", engerr.ErrSchema, l.file, name, err)
		}
		b := l.builders[name]
		if kind != b.kind() || list != b.list() {
			return fmt.Errorf("%w: %s: column %q is %s, earlier files have %s", engerr.ErrSchema, l.file, name,
				column.Describe(kind, list), column.Describe(b.kind(), b.list()))
		}
	}
	if len(l.selected) == 0 {
		for _, f := range s.Fields() {
			if _, known := l.builders[f.Name]; known {
				continue
			}
			if _, _, err := classify(f.Type); err == nil {
				return fmt.Errorf("%w: %s: column %q is not present in earlier files", engerr.ErrSchema, l.file, f.Name)
			}
		}
	}
	return nil
}

func field(s *arrow.Schema, name string) (arrow.Field, error) {
	idx := s.FieldIndices(name)
	switch len(idx) {
	case 0:
		return arrow.Field{}, fmt.Errorf("missing column %q", name)
	case 1:
		return s.Field(idx[0]), nil
	}
	return arrow.Field{}, fmt.Errorf("column %q appears %d times", name, len(idx))
}

func (l *loader) store() (*column.Store, error) {
	cols := make([]column.Column, 0, len(l.order))
	for _, name := range l.order {
		c, err := l.builders[name].build(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return column.NewStore(cols...)
}
