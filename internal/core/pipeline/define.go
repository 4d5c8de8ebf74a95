package pipeline

import (
	"fmt"
)

// definer creates the per-worker slot of a Define node.
type definer interface {
	// proto returns a typed nil slot for compile-time type checks.
	proto() any
	// typeName renders the output type for error messages.
	typeName() string
	// slot returns a fresh slot bound to w and the resolved inputs.
	slot(w *worker, label string, readers []any) any
}

type defineFunc[T any] func(Args) (T, error)

func (f defineFunc[T]) proto() any {
	return (*derived[T])(nil)
}

func (f defineFunc[T]) typeName() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

func (f defineFunc[T]) slot(w *worker, label string, readers []any) any {
	return &derived[T]{w: w, label: label, fn: f, args: Args{readers: readers}, row: -1}
}

// derived is a worker-private column.Reader[T] over a Define node. The value
// is computed on first read for an event and reused for later reads of the
// same event.
type derived[T any] struct {
	w     *worker
	label string
	fn    defineFunc[T]
	args  Args
	row   int
	val   T
}

func (d *derived[T]) Value(row int) T {
	if d.row == row {
		return d.val
	}
	d.args.row = row
	v, err := d.fn(d.args)
	if err != nil {
		d.w.fail(fmt.Errorf("define %s at row %d: %w", quote(d.label), row, err))
		var zero T
		v = zero
	}
	d.val, d.row = v, row
	return v
}
