package column

import (
	"fmt"
	"strings"
)

// Kind is the element type of a column.
type Kind int

const (
	KindInvalid Kind = iota
	KindFloat32
	KindFloat64
	KindInt32
	KindInt64
	KindUint32
	KindBool
)

var kindNames = map[Kind]string{
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindUint32:  "uint32",
	KindBool:    "bool",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind accepts the names returned by Kind.String, plus the common
// aliases float, double, int, uint and boolean.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float32", "float":
		return KindFloat32, nil
	case "float64", "double":
		return KindFloat64, nil
	case "int32", "int":
		return KindInt32, nil
	case "int64", "long":
		return KindInt64, nil
	case "uint32", "uint":
		return KindUint32, nil
	case "bool", "boolean":
		return KindBool, nil
	}
	return KindInvalid, fmt.Errorf("unknown column kind %q", s)
}

// Element is the set of element types a column can hold.
type Element interface {
	float32 | float64 | int32 | int64 | uint32 | bool
}

// KindOf returns the Kind for the element type T.
func KindOf[T Element]() Kind {
	var zero T
	switch any(zero).(type) {
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	case int32:
		return KindInt32
	case int64:
		return KindInt64
	case uint32:
		return KindUint32
	case bool:
		return KindBool
	}
	return KindInvalid
}

// Describe renders the type of a column, e.g. "float32" or "list<float32>".
func Describe(kind Kind, list bool) string {
	if list {
		return "list<" + kind.String() + ">"
	}
	return kind.String()
}
