package yaml

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hepframe/hepframe/internal/schema"
)

// Compiler reads YAML layouts.
type Compiler struct{}

func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile decodes def.Source into a LayoutSpec. The document's dataset and
// version must agree with the definition it was registered under.
func (c *Compiler) Compile(_ context.Context, def *schema.Definition) (*schema.Layout, error) {
	if def.Format != schema.FormatYaml {
		return nil, fmt.Errorf("yaml compiler given %s source", def.Format)
	}

	var spec LayoutSpec
	if err := yaml.Unmarshal(def.Source, &spec); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if got := (schema.Ref{Dataset: spec.Dataset, Version: spec.Version}); got != def.Ref() {
		return nil, fmt.Errorf("document declares %s, registered as %s", got, def.Ref())
	}

	cols := make([]schema.ColumnSpec, 0, len(spec.Columns))
	for name, col := range spec.Columns {
		cols = append(cols, schema.ColumnSpec{Name: name, Kind: col.Kind, List: col.List, Required: col.Required})
	}
	return schema.NewLayout(def.Dataset, def.Version, schema.FormatYaml, def.StrictMode || spec.StrictMode, cols), nil
}
