package pipeline

import (
	"fmt"
	"strconv"

	"github.com/hepframe/hepframe/internal/core/column"
)

// Input declares a column a filter or define reads, with its expected Go type.
type Input struct {
	name     string
	typeName string
	accepts  func(src any) bool
}

// In declares an input column of type T. Scalar columns of E are read as E,
// list columns of E as []E.
func In[T any](name string) Input {
	var zero T
	return Input{
		name:     name,
		typeName: fmt.Sprintf("%T", zero),
		accepts: func(src any) bool {
			_, ok := src.(column.Reader[T])
			return ok
		},
	}
}

// Name returns the referenced column name.
func (in Input) Name() string { return in.name }

// Args carries the current event's inputs into a filter or define.
type Args struct {
	readers []any
	row     int
}

// Arg returns input i for the current event. T must match the type the input
// was declared with in In.
func Arg[T any](a Args, i int) T {
	return a.readers[i].(column.Reader[T]).Value(a.row)
}

// Row returns the index of the current event in the store.
func (a Args) Row() int { return a.row }

// Len returns the number of inputs.
func (a Args) Len() int { return len(a.readers) }

func quote(s string) string { return strconv.Quote(s) }
