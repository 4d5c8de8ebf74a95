package protobuf

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/hepframe/hepframe/internal/core/column"
	"github.com/hepframe/hepframe/internal/schema"
)

// Compiler reads .proto layouts. The first top-level message is one event:
// each field is a column and repeated fields are per-event arrays. Every
// proto3 field is required; under proto2 only "required" fields are.
type Compiler struct{}

func NewCompiler() *Compiler {
	return &Compiler{}
}

func (c *Compiler) Compile(ctx context.Context, def *schema.Definition) (*schema.Layout, error) {
	if def.Format != schema.FormatProtobuf {
		return nil, fmt.Errorf("protobuf compiler given %s source", def.Format)
	}

	name := fmt.Sprintf("%s_v%d.proto", strings.ReplaceAll(def.Dataset, ".", "_"), def.Version)
	pc := protocompile.Compiler{
		Resolver:       protocompile.WithStandardImports(&sourceResolver{name: name, source: def.Source}),
		SourceInfoMode: protocompile.SourceInfoNone,
	}
	files, err := pc.Compile(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("compile proto: %w", err)
	}
	file := files[0]
	if file.Messages().Len() == 0 {
		return nil, fmt.Errorf("%s declares no message", name)
	}

	proto3 := file.Syntax() == protoreflect.Proto3
	fields := file.Messages().Get(0).Fields()
	cols := make([]schema.ColumnSpec, 0, fields.Len())
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		if fd.IsMap() {
			return nil, fmt.Errorf("field %s: map fields are not columns", fd.Name())
		}
		kind, err := kindOf(fd.Kind())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.Name(), err)
		}
		cols = append(cols, schema.ColumnSpec{
			Name:     string(fd.Name()),
			Kind:     kind,
			List:     fd.Cardinality() == protoreflect.Repeated,
			Required: proto3 || fd.Cardinality() == protoreflect.Required,
		})
	}
	return schema.NewLayout(def.Dataset, def.Version, schema.FormatProtobuf, def.StrictMode, cols), nil
}

func kindOf(k protoreflect.Kind) (column.Kind, error) {
	switch k {
	case protoreflect.FloatKind:
		return column.KindFloat32, nil
	case protoreflect.DoubleKind:
		return column.KindFloat64, nil
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return column.KindInt32, nil
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return column.KindInt64, nil
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return column.KindUint32, nil
	case protoreflect.BoolKind:
		return column.KindBool, nil
	}
	return column.KindInvalid, fmt.Errorf("unsupported field kind %s", k)
}

// sourceResolver serves one in-memory file; imports fall through to the
// standard well-known types.
type sourceResolver struct {
	name   string
	source []byte
}

func (r *sourceResolver) FindFileByPath(path string) (protocompile.SearchResult, error) {
	if path != r.name {
		return protocompile.SearchResult{}, fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	}
	return protocompile.SearchResult{Source: bytes.NewReader(r.source)}, nil
}
