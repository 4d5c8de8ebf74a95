package schema

import (
	"sort"

	"github.com/hepframe/hepframe/internal/core/column"
)

// ColumnSpec declares one column of a layout.
type ColumnSpec struct {
	Name     string      `json:"name"`
	Kind     column.Kind `json:"-"`
	List     bool        `json:"list"`
	Required bool        `json:"required"`
}

// Type renders the declared type, e.g. "list<float32>".
func (c ColumnSpec) Type() string {
	return column.Describe(c.Kind, c.List)
}

// Layout is a compiled definition, ready to check stores against.
type Layout struct {
	Name       string
	Version    int
	Format     Format
	StrictMode bool
	Columns    []ColumnSpec // sorted by name
}

// NewLayout sorts cols by name and returns the layout.
func NewLayout(name string, version int, format Format, strict bool, cols []ColumnSpec) *Layout {
	sorted := make([]ColumnSpec, len(cols))
	copy(sorted, cols)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &Layout{Name: name, Version: version, Format: format, StrictMode: strict, Columns: sorted}
}

// ColumnNames returns the declared column names.
func (l *Layout) ColumnNames() []string {
	names := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		names[i] = c.Name
	}
	return names
}

// Lookup returns the spec of the named column.
func (l *Layout) Lookup(name string) (ColumnSpec, bool) {
	i := sort.Search(len(l.Columns), func(i int) bool { return l.Columns[i].Name >= name })
	if i < len(l.Columns) && l.Columns[i].Name == name {
		return l.Columns[i], true
	}
	return ColumnSpec{}, false
}

// Restrict returns the layout reduced to the named columns. Names the layout
// does not declare are ignored.
func (l *Layout) Restrict(names []string) *Layout {
	var cols []ColumnSpec
	for _, n := range names {
		if spec, ok := l.Lookup(n); ok {
			cols = append(cols, spec)
		}
	}
	return NewLayout(l.Name, l.Version, l.Format, l.StrictMode, cols)
}

// Check verifies that store carries every required column with the declared
// kind and arity. Optional columns are checked only when present; in strict
// mode undeclared columns are rejected.
func (l *Layout) Check(store *column.Store) error {
	var errs []*ValidationError

	for _, spec := range l.Columns {
		c, err := store.Column(spec.Name)
		if err != nil {
			if spec.Required {
				errs = append(errs, missingColumn(l, spec.Name))
			}
			continue
		}
		if c.Kind() != spec.Kind || c.IsList() != spec.List {
			errs = append(errs, kindMismatch(l, spec.Name, spec.Type(), column.Describe(c.Kind(), c.IsList())))
		}
	}

	if l.StrictMode {
		var unknown []string
		for _, c := range store.Columns() {
			if _, ok := l.Lookup(c.Name()); !ok {
				unknown = append(unknown, c.Name())
			}
		}
		if len(unknown) > 0 {
			errs = append(errs, undeclaredColumns(l, unknown))
		}
	}

	switch len(errs) {
	case 0:
		return nil
	case 1:
		errs[0].Format = string(l.Format)
		return errs[0]
	default:
		return &MultiValidationError{Errors: errs}
	}
}
