package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogWriter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	lw := NewLogWriter(&buf)

	entries := []Entry{
		{Query: 6, Cores: 4, Files: 10, Events: 1000, Duration: 1500 * time.Millisecond, Integral: 2000},
		{Query: 6, Cores: 4, Files: 10, Events: 1000, Duration: 1250 * time.Millisecond, Integral: 2000},
		{Query: 6, Cores: 8, Files: 10, Events: 1000, Duration: 750 * time.Millisecond, Integral: 2000},
	}
	for _, e := range entries {
		require.NoError(t, lw.Append(e))
	}
	require.NoError(t, lw.Close())

	out := buf.String()
	assert.Contains(t, out, "BenchmarkQuery6")
	assert.Contains(t, out, "sec/op")
	// config lines are only repeated when a value changes
	assert.Equal(t, 1, strings.Count(out, "query: 6"))
	assert.Equal(t, 2, strings.Count(out, "cores: "))

	got, err := ReadLog(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, got, len(entries))
	for i := range entries {
		assert.Equal(t, entries[i], got[i])
	}
}

func TestOpenLog_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "LOG.txt")

	for i := 0; i < 2; i++ {
		lw, err := OpenLog(path)
		require.NoError(t, err)
		require.NoError(t, lw.Append(Entry{Query: 1, Cores: 1, Files: 1, Events: 5, Duration: time.Second, Integral: 5}))
		require.NoError(t, lw.Close())
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := ReadLog(f)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestReadLog_BadConfig(t *testing.T) {
	in := "query: six\ncores: 1\nfiles: 1\nBenchmarkQuery6 1 1.0 sec/op\n"
	_, err := ReadLog(strings.NewReader(in))
	require.Error(t, err)
	assert.ErrorContains(t, err, "config query")
}

func TestSummarize(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, Summary{}, Summarize(nil))
	})

	t.Run("single", func(t *testing.T) {
		s := Summarize([]time.Duration{3 * time.Second})
		assert.Equal(t, 1, s.N)
		assert.Equal(t, 3*time.Second, s.Median)
		assert.Equal(t, 3*time.Second, s.Min)
		assert.Equal(t, 3*time.Second, s.Max)
		assert.Zero(t, s.StdDev)
	})

	t.Run("several", func(t *testing.T) {
		s := Summarize([]time.Duration{3 * time.Second, time.Second, 2 * time.Second})
		assert.Equal(t, 3, s.N)
		assert.Equal(t, 2*time.Second, s.Median)
		assert.Equal(t, 2*time.Second, s.Mean)
		assert.Equal(t, time.Second, s.Min)
		assert.Equal(t, 3*time.Second, s.Max)
		assert.InDelta(t, float64(time.Second), float64(s.StdDev), 1e3)
		assert.Contains(t, s.String(), "n=3")
	})
}
