package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hepframe/hepframe/internal/core/aggregation"
)

func TestHistogram_WritesPNG(t *testing.T) {
	h, err := aggregation.NewHist1D(10, 0, 100)
	require.NoError(t, err)
	for _, v := range []float64{5, 15, 15, 42, 99, 150} {
		h.Fill(v)
	}

	path := filepath.Join(t.TempDir(), "plots", FileName(1, 0))
	require.NoError(t, Histogram(path, "Query 1", "MET_pt [GeV]", h, Options{Width: 8, Height: 6}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte("\x89PNG"), data[:4])
}

func TestHistogram_Errors(t *testing.T) {
	err := Histogram(filepath.Join(t.TempDir(), "x.png"), "", "", nil, DefaultOptions)
	assert.Error(t, err)

	h, err := aggregation.NewHist1D(4, 0, 1)
	require.NoError(t, err)
	err = Histogram(filepath.Join(t.TempDir(), "x.unknown"), "", "", h, DefaultOptions)
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "query6.png", FileName(6, 0))
	assert.Equal(t, "query6_1.png", FileName(6, 1))
}
