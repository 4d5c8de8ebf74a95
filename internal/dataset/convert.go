package dataset

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/hepframe/hepframe/internal/core/column"
	engerr "github.com/hepframe/hepframe/internal/core/errors"
)

// kindByType maps arrow element types onto column kinds. Narrow integers are
// widened to 32 bits.
var kindByType = map[arrow.Type]column.Kind{
	arrow.FLOAT32: column.KindFloat32,
	arrow.FLOAT64: column.KindFloat64,
	arrow.INT8:    column.KindInt32,
	arrow.INT16:   column.KindInt32,
	arrow.INT32:   column.KindInt32,
	arrow.INT64:   column.KindInt64,
	arrow.UINT8:   column.KindUint32,
	arrow.UINT16:  column.KindUint32,
	arrow.UINT32:  column.KindUint32,
	arrow.BOOL:    column.KindBool,
}

// classify returns the column kind and arity of an arrow field type.
func classify(dt arrow.DataType) (column.Kind, bool, error) {
	list := false
	switch t := dt.(type) {
	case *arrow.ListType:
		dt, list = t.Elem(), true
	case *arrow.LargeListType:
		dt, list = t.Elem(), true
	}
	kind, ok := kindByType[dt.ID()]
	if !ok {
		return column.KindInvalid, false, fmt.Errorf("unsupported arrow type %s", dt)
	}
	return kind, list, nil
}

// columnBuilder accumulates the chunks of one column across records and files.
type columnBuilder interface {
	kind() column.Kind
	list() bool
	append(arr arrow.Array) error
	build(name string) (column.Column, error)
}

type extractFunc[T column.Element] func(dst []T, arr arrow.Array, from, to int) ([]T, error)

type builder[T column.Element] struct {
	isList  bool
	extract extractFunc[T]
	values  []T
	offsets []int32
}

func newBuilder[T column.Element](list bool, extract extractFunc[T]) columnBuilder {
	b := &builder[T]{isList: list, extract: extract}
	if list {
		b.offsets = []int32{0}
	}
	return b
}

var builders = map[column.Kind]func(list bool) columnBuilder{
	column.KindFloat32: func(list bool) columnBuilder { return newBuilder[float32](list, extractFloat32) },
	column.KindFloat64: func(list bool) columnBuilder { return newBuilder[float64](list, extractFloat64) },
	column.KindInt32:   func(list bool) columnBuilder { return newBuilder[int32](list, extractInt32) },
	column.KindInt64:   func(list bool) columnBuilder { return newBuilder[int64](list, extractInt64) },
	column.KindUint32:  func(list bool) columnBuilder { return newBuilder[uint32](list, extractUint32) },
	column.KindBool:    func(list bool) columnBuilder { return newBuilder[bool](list, extractBool) },
}

func (b *builder[T]) kind() column.Kind { return column.KindOf[T]() }
func (b *builder[T]) list() bool        { return b.isList }

func (b *builder[T]) append(arr arrow.Array) error {
	var err error
	if !b.isList {
		// there is no value to stand in for a missing scalar
		if n := arr.NullN(); n > 0 {
			return fmt.Errorf("%d null values in a scalar column", n)
		}
		b.values, err = b.extract(b.values, arr, 0, arr.Len())
		return err
	}

	lists, ok := arr.(array.ListLike)
	if !ok {
		return fmt.Errorf("expected a list array, got %s", arr.DataType())
	}
	child := lists.ListValues()
	if n := child.NullN(); n > 0 {
		return fmt.Errorf("%d null list elements", n)
	}
	for i := 0; i < lists.Len(); i++ {
		// null rows read as empty lists
		if lists.IsValid(i) {
			start, end := lists.ValueOffsets(i)
			if b.values, err = b.extract(b.values, child, int(start), int(end)); err != nil {
				return err
			}
		}
		if len(b.values) > math.MaxInt32 {
			return fmt.Errorf("list column exceeds %d elements", math.MaxInt32)
		}
		b.offsets = append(b.offsets, int32(len(b.values)))
	}
	return nil
}

func (b *builder[T]) build(name string) (column.Column, error) {
	if !b.isList {
		return column.NewScalar(name, b.values), nil
	}
	return column.NewListFromOffsets(name, b.values, b.offsets)
}

func mismatch(arr arrow.Array) error {
	return fmt.Errorf("%w: unexpected arrow array %s", engerr.ErrTypeMismatch, arr.DataType())
}

func extractFloat32(dst []float32, arr arrow.Array, from, to int) ([]float32, error) {
	a, ok := arr.(*array.Float32)
	if !ok {
		return dst, mismatch(arr)
	}
	return append(dst, a.Float32Values()[from:to]...), nil
}

func extractFloat64(dst []float64, arr arrow.Array, from, to int) ([]float64, error) {
	a, ok := arr.(*array.Float64)
	if !ok {
		return dst, mismatch(arr)
	}
	return append(dst, a.Float64Values()[from:to]...), nil
}

func extractInt32(dst []int32, arr arrow.Array, from, to int) ([]int32, error) {
	switch a := arr.(type) {
	case *array.Int32:
		return append(dst, a.Int32Values()[from:to]...), nil
	case *array.Int16:
		for _, v := range a.Int16Values()[from:to] {
			dst = append(dst, int32(v))
		}
		return dst, nil
	case *array.Int8:
		for _, v := range a.Int8Values()[from:to] {
			dst = append(dst, int32(v))
		}
		return dst, nil
	}
	return dst, mismatch(arr)
}

func extractInt64(dst []int64, arr arrow.Array, from, to int) ([]int64, error) {
	a, ok := arr.(*array.Int64)
	if !ok {
		return dst, mismatch(arr)
	}
	return append(dst, a.Int64Values()[from:to]...), nil
}

func extractUint32(dst []uint32, arr arrow.Array, from, to int) ([]uint32, error) {
	switch a := arr.(type) {
	case *array.Uint32:
		return append(dst, a.Uint32Values()[from:to]...), nil
	case *array.Uint16:
		for _, v := range a.Uint16Values()[from:to] {
			dst = append(dst, uint32(v))
		}
		return dst, nil
	case *array.Uint8:
		for _, v := range a.Uint8Values()[from:to] {
			dst = append(dst, uint32(v))
		}
		return dst, nil
	}
	return dst, mismatch(arr)
}

func extractBool(dst []bool, arr arrow.Array, from, to int) ([]bool, error) {
	a, ok := arr.(*array.Boolean)
	if !ok {
		return dst, mismatch(arr)
	}
	for i := from; i < to; i++ {
		dst = append(dst, a.Value(i))
	}
	return dst, nil
}
