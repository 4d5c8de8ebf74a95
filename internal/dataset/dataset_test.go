package dataset

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hepframe/hepframe/internal/core/column"
	engerr "github.com/hepframe/hepframe/internal/core/errors"
	"github.com/hepframe/hepframe/internal/schema"
)

func smallStore(t *testing.T, met []float32, jets [][]float32) *column.Store {
	t.Helper()
	nJet := make([]uint32, len(jets))
	charge := make([][]int32, len(jets))
	for i, j := range jets {
		nJet[i] = uint32(len(j))
		for range j {
			charge[i] = append(charge[i], 1)
		}
	}
	store, err := column.NewStore(
		column.NewScalar("MET_pt", met),
		column.NewScalar("nJet", nJet),
		column.NewList("Jet_pt", jets),
		column.NewList("Jet_charge", charge),
	)
	require.NoError(t, err)
	return store
}

func requireSameStore(t *testing.T, want, got *column.Store) {
	t.Helper()
	require.Equal(t, want.Len(), got.Len())
	require.Len(t, got.Columns(), len(want.Columns()))
	for _, c := range want.Columns() {
		g, err := got.Column(c.Name())
		require.NoError(t, err, c.Name())
		require.Equal(t, c.Kind(), g.Kind(), c.Name())
		require.Equal(t, c.IsList(), g.IsList(), c.Name())
	}

	wantMET, err := column.ScalarOf[float32](want, "MET_pt")
	require.NoError(t, err)
	gotMET, err := column.ScalarOf[float32](got, "MET_pt")
	require.NoError(t, err)
	assert.Equal(t, wantMET.Values(), gotMET.Values())

	wantJets, err := column.ListOf[float32](want, "Jet_pt")
	require.NoError(t, err)
	gotJets, err := column.ListOf[float32](got, "Jet_pt")
	require.NoError(t, err)
	for row := 0; row < want.Len(); row++ {
		assert.Equal(t, len(wantJets.Value(row)), len(gotJets.Value(row)), "row %d", row)
		for i, v := range wantJets.Value(row) {
			assert.Equal(t, v, gotJets.Value(row)[i])
		}
	}
}

func TestWriteOpen_RoundTrip(t *testing.T) {
	store := smallStore(t,
		[]float32{10, 20, 30, 40},
		[][]float32{{50, 25}, nil, {70}, {15, 16, 17}})

	for _, ext := range []string{".parquet", ".arrow", ".feather", ".ipc", ".arrows"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "events"+ext)
			require.NoError(t, Write(path, store))
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Positive(t, info.Size())

			got, err := Open(context.Background(), path)
			require.NoError(t, err)
			requireSameStore(t, store, got)
			assert.Equal(t, []string{path}, got.Sources())
		})
	}
}

func TestOpen_GlobConcatenatesInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(filepath.Join(dir, "b.parquet"), smallStore(t, []float32{3}, [][]float32{{30}})))
	require.NoError(t, Write(filepath.Join(dir, "a.arrow"), smallStore(t, []float32{1, 2}, [][]float32{{10}, {20, 21}})))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, Write(filepath.Join(dir, "sub", "c.arrows"), smallStore(t, []float32{4}, [][]float32{nil})))

	got, err := Open(context.Background(), filepath.Join(dir, "**", "*.{arrow,arrows,parquet}"))
	require.NoError(t, err)
	require.Equal(t, 4, got.Len())
	require.Len(t, got.Sources(), 3)

	met, err := column.ScalarOf[float32](got, "MET_pt")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, met.Values())

	jets, err := column.ListOf[float32](got, "Jet_pt")
	require.NoError(t, err)
	assert.Equal(t, []float32{20, 21}, jets.Value(1))
	assert.Empty(t, jets.Value(3))

	// a plain directory only looks at its own files
	flat, err := Open(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 3, flat.Len())
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	good := filepath.Join(dir, "good.arrow")
	require.NoError(t, Write(good, smallStore(t, []float32{1}, [][]float32{{1}})))

	t.Run("missing file", func(t *testing.T) {
		_, err := Open(ctx, filepath.Join(dir, "nope.parquet"))
		assert.ErrorIs(t, err, engerr.ErrDatasetNotFound)
	})

	t.Run("glob without matches", func(t *testing.T) {
		_, err := Open(ctx, filepath.Join(dir, "*.root"))
		assert.ErrorIs(t, err, engerr.ErrDatasetNotFound)
	})

	t.Run("unsupported format", func(t *testing.T) {
		path := filepath.Join(dir, "events.root")
		require.NoError(t, os.WriteFile(path, []byte("root"), 0o644))
		_, err := Open(ctx, path)
		assert.ErrorIs(t, err, engerr.ErrSchema)
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(dir, "corrupt", "events.parquet")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("not parquet"), 0o644))
		_, err := Open(ctx, path)
		assert.ErrorIs(t, err, engerr.ErrSchema)
	})

	t.Run("missing selected column", func(t *testing.T) {
		_, err := Open(ctx, good, WithColumns("MET_pt", "Tau_pt"))
		assert.ErrorIs(t, err, engerr.ErrSchema)
	})

	t.Run("schemas disagree", func(t *testing.T) {
		sub := filepath.Join(dir, "mixed")
		require.NoError(t, os.MkdirAll(sub, 0o755))
		require.NoError(t, Write(filepath.Join(sub, "a.arrow"), smallStore(t, []float32{1}, [][]float32{{1}})))
		other, err := column.NewStore(column.NewScalar("MET_pt", []float64{1}))
		require.NoError(t, err)
		require.NoError(t, Write(filepath.Join(sub, "b.arrow"), other))

		_, err = Open(ctx, filepath.Join(sub, "*.arrow"))
		assert.ErrorIs(t, err, engerr.ErrSchema)
	})

	t.Run("canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Open(cctx, good)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestOpen_WithColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.parquet")
	require.NoError(t, Write(path, smallStore(t, []float32{1, 2}, [][]float32{{1}, {2}})))

	got, err := Open(context.Background(), path, WithColumns("Jet_pt"))
	require.NoError(t, err)
	require.Len(t, got.Columns(), 1)
	assert.True(t, got.Has("Jet_pt"))
	assert.False(t, got.Has("MET_pt"))
	assert.Equal(t, 2, got.Len())
}

func TestOpen_WithLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.arrow")
	require.NoError(t, Write(path, smallStore(t, []float32{1}, [][]float32{{1}})))

	ok := schema.NewLayout("nanoaod", 1, schema.FormatYaml, false, []schema.ColumnSpec{
		{Name: "MET_pt", Kind: column.KindFloat32, Required: true},
		{Name: "Jet_pt", Kind: column.KindFloat32, List: true, Required: true},
	})
	_, err := Open(context.Background(), path, WithLayout(ok))
	require.NoError(t, err)

	wrong := schema.NewLayout("nanoaod", 1, schema.FormatYaml, false, []schema.ColumnSpec{
		{Name: "MET_pt", Kind: column.KindFloat64, Required: true},
	})
	_, err = Open(context.Background(), path, WithLayout(wrong))
	require.ErrorIs(t, err, engerr.ErrSchema)

	var ve *schema.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "MET_pt", ve.Column)

	// a selection is only checked against the declared columns it loads
	more := schema.NewLayout("nanoaod", 1, schema.FormatYaml, false, []schema.ColumnSpec{
		{Name: "MET_pt", Kind: column.KindFloat32, Required: true},
		{Name: "Muon_pt", Kind: column.KindFloat32, List: true, Required: true},
	})
	_, err = Open(context.Background(), path, WithLayout(more))
	require.ErrorIs(t, err, engerr.ErrSchema)
	_, err = Open(context.Background(), path, WithLayout(more), WithColumns("MET_pt"))
	require.NoError(t, err)
}

func TestOpen_WidensNarrowIntegers(t *testing.T) {
	mem := memory.NewGoAllocator()
	sch := arrow.NewSchema([]arrow.Field{
		{Name: "nMuon", Type: arrow.PrimitiveTypes.Uint8},
		{Name: "Muon_charge", Type: arrow.ListOf(arrow.PrimitiveTypes.Int8)},
	}, nil)

	b := array.NewRecordBuilder(mem, sch)
	defer b.Release()
	b.Field(0).(*array.Uint8Builder).AppendValues([]uint8{2, 0}, nil)
	lb := b.Field(1).(*array.ListBuilder)
	lb.Append(true)
	lb.ValueBuilder().(*array.Int8Builder).AppendValues([]int8{-1, 1}, nil)
	lb.Append(true)
	rec := b.NewRecord()
	defer rec.Release()

	path := writeRecord(t, "narrow.arrow", rec)

	got, err := Open(context.Background(), path)
	require.NoError(t, err)

	n, err := column.ScalarOf[uint32](got, "nMuon")
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 0}, n.Values())

	charge, err := column.ListOf[int32](got, "Muon_charge")
	require.NoError(t, err)
	assert.Equal(t, []int32{-1, 1}, charge.Value(0))
	assert.Empty(t, charge.Value(1))
}

// writeRecord stores rec as an arrow IPC file, bypassing Write so tests can
// use arrow types and nulls the column store never produces.
func writeRecord(t *testing.T, name string, rec arrow.Record) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	w, err := ipc.NewFileWriter(f, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(memory.NewGoAllocator()))
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

func TestOpen_Nulls(t *testing.T) {
	mem := memory.NewGoAllocator()

	t.Run("null list rows read as empty", func(t *testing.T) {
		sch := arrow.NewSchema([]arrow.Field{{Name: "Jet_pt", Type: arrow.ListOf(arrow.PrimitiveTypes.Float32), Nullable: true}}, nil)
		b := array.NewRecordBuilder(mem, sch)
		defer b.Release()
		lb := b.Field(0).(*array.ListBuilder)
		lb.AppendNull()
		lb.Append(true)
		lb.ValueBuilder().(*array.Float32Builder).AppendValues([]float32{30}, nil)
		rec := b.NewRecord()
		defer rec.Release()

		got, err := Open(context.Background(), writeRecord(t, "lists.arrow", rec))
		require.NoError(t, err)
		jets, err := column.ListOf[float32](got, "Jet_pt")
		require.NoError(t, err)
		assert.Empty(t, jets.Value(0))
		assert.Equal(t, []float32{30}, jets.Value(1))
	})

	t.Run("null scalars are rejected", func(t *testing.T) {
		sch := arrow.NewSchema([]arrow.Field{{Name: "MET_pt", Type: arrow.PrimitiveTypes.Float32, Nullable: true}}, nil)
		b := array.NewRecordBuilder(mem, sch)
		defer b.Release()
		b.Field(0).(*array.Float32Builder).AppendValues([]float32{1, 0, 3}, []bool{true, false, true})
		rec := b.NewRecord()
		defer rec.Release()

		_, err := Open(context.Background(), writeRecord(t, "scalars.arrow", rec))
		require.ErrorIs(t, err, engerr.ErrSchema)
		assert.ErrorContains(t, err, "MET_pt")
	})

	t.Run("null list elements are rejected", func(t *testing.T) {
		sch := arrow.NewSchema([]arrow.Field{{Name: "Jet_pt", Type: arrow.ListOf(arrow.PrimitiveTypes.Float32)}}, nil)
		b := array.NewRecordBuilder(mem, sch)
		defer b.Release()
		lb := b.Field(0).(*array.ListBuilder)
		lb.Append(true)
		lb.ValueBuilder().(*array.Float32Builder).AppendValues([]float32{10, 0}, []bool{true, false})
		rec := b.NewRecord()
		defer rec.Release()

		_, err := Open(context.Background(), writeRecord(t, "elements.arrow", rec))
		require.ErrorIs(t, err, engerr.ErrSchema)
	})
}

func TestOpen_SkippedColumnsUseLogger(t *testing.T) {
	mem := memory.NewGoAllocator()
	sch := arrow.NewSchema([]arrow.Field{
		{Name: "MET_pt", Type: arrow.PrimitiveTypes.Float32},
		{Name: "run_tag", Type: arrow.BinaryTypes.String},
	}, nil)
	b := array.NewRecordBuilder(mem, sch)
	defer b.Release()
	b.Field(0).(*array.Float32Builder).AppendValues([]float32{5}, nil)
	b.Field(1).(*array.StringBuilder).Append("2018A")
	rec := b.NewRecord()
	defer rec.Release()

	var logs bytes.Buffer
	got, err := Open(context.Background(), writeRecord(t, "tagged.arrow", rec),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.NoError(t, err)
	assert.True(t, got.Has("MET_pt"))
	assert.False(t, got.Has("run_tag"))
	assert.Contains(t, logs.String(), "[Dataset] skipping column")
	assert.Contains(t, logs.String(), "run_tag")
}

func TestGenerate(t *testing.T) {
	a, err := Generate(500, 7)
	require.NoError(t, err)
	b, err := Generate(500, 7)
	require.NoError(t, err)
	require.Equal(t, 500, a.Len())

	for _, name := range []string{"nJet", "nMuon", "nElectron"} {
		prefix := name[1:]
		counts, err := column.ScalarOf[uint32](a, name)
		require.NoError(t, err)
		pts, err := column.ListOf[float32](a, prefix+"_pt")
		require.NoError(t, err)
		for row := 0; row < a.Len(); row++ {
			require.Equal(t, int(counts.Value(row)), pts.RowLen(row), "%s row %d", name, row)
		}
	}

	ma, err := column.ScalarOf[float32](a, "MET_pt")
	require.NoError(t, err)
	mb, err := column.ScalarOf[float32](b, "MET_pt")
	require.NoError(t, err)
	assert.Equal(t, ma.Values(), mb.Values(), "same seed, same events")

	path := filepath.Join(t.TempDir(), "synthetic.parquet")
	require.NoError(t, Write(path, a))
	back, err := Open(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, a.Len(), back.Len())
	assert.Len(t, back.Columns(), len(a.Columns()))
}
