package column

import (
	"fmt"

	engerr "github.com/hepframe/hepframe/internal/core/errors"
	"github.com/hepframe/hepframe/internal/core/partition"
)

// Store is a read-only set of equal-length columns. It is safe for
// concurrent use by any number of readers.
type Store struct {
	columns []Column
	byName  map[string]Column
	rows    int
	sources []string
}

// NewStore assembles columns into a store. All columns must have the same
// length and distinct names.
func NewStore(cols ...Column) (*Store, error) {
	s := &Store{
		columns: make([]Column, 0, len(cols)),
		byName:  make(map[string]Column, len(cols)),
	}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("%w: column %d is nil", engerr.ErrSchema, i)
		}
		if _, dup := s.byName[c.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", engerr.ErrSchema, c.Name())
		}
		if i == 0 {
			s.rows = c.Len()
		} else if c.Len() != s.rows {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", engerr.ErrSchema, c.Name(), c.Len(), s.rows)
		}
		s.columns = append(s.columns, c)
		s.byName[c.Name()] = c
	}
	return s, nil
}

// Len returns the number of events.
func (s *Store) Len() int { return s.rows }

// Columns returns the columns in declaration order.
func (s *Store) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Column looks up a column by name.
func (s *Store) Column(name string) (Column, error) {
	c, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", engerr.ErrUnknownColumn, name)
	}
	return c, nil
}

// Has reports whether the store contains a column called name.
func (s *Store) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Partition splits the row range into at most k contiguous, disjoint ranges.
func (s *Store) Partition(k int) []partition.Range {
	return partition.Split(s.rows, k)
}

// Sources lists the files the store was loaded from, if any.
func (s *Store) Sources() []string { return s.sources }

// SetSources records the files the store was loaded from.
func (s *Store) SetSources(paths []string) { s.sources = paths }

// ScalarOf returns the named column as a scalar column of T.
func ScalarOf[T Element](s *Store, name string) (*Scalar[T], error) {
	c, err := s.Column(name)
	if err != nil {
		return nil, err
	}
	typed, ok := c.(*Scalar[T])
	if !ok {
		return nil, fmt.Errorf("%w: column %q is %s, requested %s",
			engerr.ErrTypeMismatch, name, Describe(c.Kind(), c.IsList()), Describe(KindOf[T](), false))
	}
	return typed, nil
}

// ListOf returns the named column as a list column of T.
func ListOf[T Element](s *Store, name string) (*List[T], error) {
	c, err := s.Column(name)
	if err != nil {
		return nil, err
	}
	typed, ok := c.(*List[T])
	if !ok {
		return nil, fmt.Errorf("%w: column %q is %s, requested %s",
			engerr.ErrTypeMismatch, name, Describe(c.Kind(), c.IsList()), Describe(KindOf[T](), true))
	}
	return typed, nil
}
