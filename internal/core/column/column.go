package column

import (
	"fmt"

	engerr "github.com/hepframe/hepframe/internal/core/errors"
)

// Column is a named, immutable sequence with one entry per event.
type Column interface {
	Name() string
	Kind() Kind
	IsList() bool
	Len() int
}

// Reader gives per-row access to a value of type T. A scalar column of E is a
// Reader[E]; a list column of E is a Reader[[]E].
type Reader[T any] interface {
	Value(row int) T
}

// Scalar holds one value per event.
type Scalar[T Element] struct {
	name   string
	values []T
}

// NewScalar wraps values without copying; the caller must not modify them afterwards.
func NewScalar[T Element](name string, values []T) *Scalar[T] {
	return &Scalar[T]{name: name, values: values}
}

func (c *Scalar[T]) Name() string    { return c.name }
func (c *Scalar[T]) Kind() Kind      { return KindOf[T]() }
func (c *Scalar[T]) IsList() bool    { return false }
func (c *Scalar[T]) Len() int        { return len(c.values) }
func (c *Scalar[T]) Value(row int) T { return c.values[row] }
func (c *Scalar[T]) Values() []T     { return c.values }

// List holds a variable-length array per event, stored flat with offsets.
// Row i spans values[offsets[i]:offsets[i+1]].
type List[T Element] struct {
	name    string
	values  []T
	offsets []int32
}

// NewList builds a list column from per-event slices.
func NewList[T Element](name string, rows [][]T) *List[T] {
	total := 0
	for _, r := range rows {
		total += len(r)
	}
	values := make([]T, 0, total)
	offsets := make([]int32, 1, len(rows)+1)
	for _, r := range rows {
		values = append(values, r...)
		offsets = append(offsets, int32(len(values)))
	}
	return &List[T]{name: name, values: values, offsets: offsets}
}

// NewListFromOffsets wraps a flat value buffer and its len(rows)+1 offsets.
// Offsets must start at zero, be non-decreasing and end at len(values).
func NewListFromOffsets[T Element](name string, values []T, offsets []int32) (*List[T], error) {
	if len(offsets) == 0 {
		return nil, fmt.Errorf("%w: column %q: offsets must have at least one entry", engerr.ErrSchema, name)
	}
	if offsets[0] != 0 {
		return nil, fmt.Errorf("%w: column %q: first offset is %d, want 0", engerr.ErrSchema, name, offsets[0])
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return nil, fmt.Errorf("%w: column %q: offsets decrease at row %d", engerr.ErrSchema, name, i-1)
		}
	}
	if last := offsets[len(offsets)-1]; int(last) != len(values) {
		return nil, fmt.Errorf("%w: column %q: last offset %d does not match %d values", engerr.ErrSchema, name, last, len(values))
	}
	return &List[T]{name: name, values: values, offsets: offsets}, nil
}

func (c *List[T]) Name() string { return c.name }
func (c *List[T]) Kind() Kind   { return KindOf[T]() }
func (c *List[T]) IsList() bool { return true }
func (c *List[T]) Len() int     { return len(c.offsets) - 1 }

// Value returns the elements of row. The slice aliases the column buffer and
// must not be modified.
func (c *List[T]) Value(row int) []T {
	return c.values[c.offsets[row]:c.offsets[row+1]:c.offsets[row+1]]
}

// RowLen returns the number of elements in row.
func (c *List[T]) RowLen(row int) int {
	return int(c.offsets[row+1] - c.offsets[row])
}
