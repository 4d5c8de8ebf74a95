package yaml

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hepframe/hepframe/internal/core/column"
)

// LayoutSpec is the on-disk YAML shape of a dataset layout.
type LayoutSpec struct {
	Dataset     string             `yaml:"dataset"`
	Version     int                `yaml:"version"`
	Description string             `yaml:"description,omitempty"`
	StrictMode  bool               `yaml:"strictMode,omitempty"`
	Columns     map[string]*Column `yaml:"columns"`
}

// Column declares a single column.
//
// Columns support two declaration styles:
//
//	Shorthand (scalar): MET_pt: float32!
//	Long form (mapping): Jet_pt:
//	                       type: list<float32>
//	                       required: true
//
// Element types: float32 (float), float64 (double), int32, int64, uint32, bool.
// Wrap in list<...> or prefix with [] for per-event arrays; append "!" to
// mark a column as required.
type Column struct {
	Type     string `yaml:"type"`
	Required bool   `yaml:"required,omitempty"`

	Kind column.Kind `yaml:"-"`
	List bool        `yaml:"-"`
}

// UnmarshalYAML supports both shorthand and long-form declarations.
func (c *Column) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return c.parseTypeString(value.Value)
	}

	// decode through an alias to avoid recursing into this method
	type columnAlias Column
	var alias columnAlias
	if err := value.Decode(&alias); err != nil {
		return err
	}
	*c = Column(alias)

	if c.Type == "" {
		return fmt.Errorf("column missing 'type'")
	}
	return c.parseTypeString(c.Type)
}

// parseTypeString parses a type like "list<float32>!" and sets Kind, List
// and (if "!" is present) Required on the receiver.
func (c *Column) parseTypeString(s string) error {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "!") {
		c.Required = true
		s = strings.TrimSuffix(s, "!")
	}

	elem := s
	switch {
	case strings.HasPrefix(s, "list<") && strings.HasSuffix(s, ">"):
		c.List = true
		elem = strings.TrimSuffix(strings.TrimPrefix(s, "list<"), ">")
	case strings.HasPrefix(s, "[]"):
		c.List = true
		elem = strings.TrimPrefix(s, "[]")
	}

	kind, err := column.ParseKind(elem)
	if err != nil {
		return fmt.Errorf("unsupported type %q (element must be: float32, float64, int32, int64, uint32, bool)", s)
	}
	c.Kind = kind
	c.Type = column.Describe(kind, c.List)
	return nil
}

// Validate checks that the spec is structurally valid.
func (s *LayoutSpec) Validate() error {
	if s.Dataset == "" {
		return fmt.Errorf("dataset name is required")
	}
	if s.Version < 1 {
		return fmt.Errorf("version must be >= 1")
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("layout must declare at least one column")
	}
	for name, c := range s.Columns {
		if c == nil {
			return fmt.Errorf("column %q: type cannot be empty", name)
		}
		if c.Kind == column.KindInvalid {
			return fmt.Errorf("column %q: missing element kind", name)
		}
	}
	return nil
}

// String returns a human-readable description of the column type.
func (c *Column) String() string {
	if c.Required {
		return c.Type + " required"
	}
	return c.Type
}
