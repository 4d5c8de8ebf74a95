package protobuf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hepframe/hepframe/internal/core/column"
	"github.com/hepframe/hepframe/internal/schema"
)

func compile(t *testing.T, def string) (*schema.Layout, error) {
	t.Helper()
	return NewCompiler().Compile(context.Background(), &schema.Definition{
		Dataset: "nanoaod",
		Version: 1,
		Format:  schema.FormatProtobuf,
		Source:  []byte(def),
	})
}

func TestCompile_FieldKinds(t *testing.T) {
	layout, err := compile(t, `
syntax = "proto3";

message Event {
  float MET_pt = 1;
  double weight = 2;
  sint32 run = 3;
  int64 event = 4;
  fixed32 nJet = 5;
  bool HLT_IsoMu24 = 6;
  repeated float Jet_pt = 7;
  repeated int32 Muon_charge = 8;
}
`)
	require.NoError(t, err)

	want := map[string]string{
		"MET_pt":      "float32",
		"weight":      "float64",
		"run":         "int32",
		"event":       "int64",
		"nJet":        "uint32",
		"HLT_IsoMu24": "bool",
		"Jet_pt":      "list<float32>",
		"Muon_charge": "list<int32>",
	}
	require.Len(t, layout.Columns, len(want))
	for _, c := range layout.Columns {
		assert.Equal(t, want[c.Name], c.Type(), c.Name)
		assert.True(t, c.Required, c.Name)
	}

	spec, ok := layout.Lookup("Jet_pt")
	require.True(t, ok)
	assert.Equal(t, column.KindFloat32, spec.Kind)
}

func TestCompile_Proto2Optional(t *testing.T) {
	layout, err := compile(t, `
syntax = "proto2";

message Event {
  required float MET_pt = 1;
  optional float MET_phi = 2;
}
`)
	require.NoError(t, err)

	met, _ := layout.Lookup("MET_pt")
	phi, _ := layout.Lookup("MET_phi")
	assert.True(t, met.Required)
	assert.False(t, phi.Required)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		def  string
	}{
		{"syntax error", `syntax = "proto3"; message {`},
		{"no message", `syntax = "proto3";`},
		{"string field", `syntax = "proto3"; message E { string name = 1; }`},
		{"map field", `syntax = "proto3"; message E { map<string, float> m = 1; }`},
		{"nested message", `syntax = "proto3"; message E { P p = 1; } message P { float x = 1; }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, tt.def)
			assert.Error(t, err)
		})
	}
}
