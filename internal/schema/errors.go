package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("layout not found")
	ErrAlreadyExists     = errors.New("layout already exists")
	ErrUnsupportedFormat = errors.New("unsupported layout format")
)

// ValidationError is one way a column store disagrees with a layout.
type ValidationError struct {
	Dataset      string   `json:"dataset"`
	Version      int      `json:"version"`
	Format       string   `json:"format,omitempty"`
	Message      string   `json:"message"`
	Column       string   `json:"column,omitempty"`
	ExpectedType string   `json:"expected_type,omitempty"`
	ActualType   string   `json:"actual_type,omitempty"`
	Undeclared   []string `json:"undeclared,omitempty"`
}

func (e *ValidationError) Error() string {
	ref := Ref{Dataset: e.Dataset, Version: e.Version}
	if e.Column != "" {
		return fmt.Sprintf("column %s: %s (layout %s)", e.Column, e.Message, ref)
	}
	return fmt.Sprintf("%s (layout %s)", e.Message, ref)
}

// Details is the structured form used in API error bodies.
func (e *ValidationError) Details() map[string]interface{} {
	d := make(map[string]interface{})
	if e.Column != "" {
		d["column"] = e.Column
	}
	if e.ExpectedType != "" {
		d["expected_type"] = e.ExpectedType
		d["actual_type"] = e.ActualType
	}
	if len(e.Undeclared) > 0 {
		d["undeclared"] = e.Undeclared
	}
	return d
}

// MultiValidationError collects every problem found in one check.
type MultiValidationError struct {
	Errors []*ValidationError
}

func (e *MultiValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d layout violations: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Details lists the offending columns.
func (e *MultiValidationError) Details() map[string]interface{} {
	var cols []string
	for _, ve := range e.Errors {
		if ve.Column != "" {
			cols = append(cols, ve.Column)
		}
		cols = append(cols, ve.Undeclared...)
	}
	return map[string]interface{}{"columns": cols}
}

func missingColumn(l *Layout, col string) *ValidationError {
	return &ValidationError{Dataset: l.Name, Version: l.Version, Message: "required column is missing", Column: col}
}

func kindMismatch(l *Layout, col, want, got string) *ValidationError {
	return &ValidationError{
		Dataset:      l.Name,
		Version:      l.Version,
		Message:      fmt.Sprintf("expected %s, got %s", want, got),
		Column:       col,
		ExpectedType: want,
		ActualType:   got,
	}
}

func undeclaredColumns(l *Layout, cols []string) *ValidationError {
	return &ValidationError{
		Dataset:    l.Name,
		Version:    l.Version,
		Message:    fmt.Sprintf("undeclared columns %v in strict layout", cols),
		Undeclared: cols,
	}
}
