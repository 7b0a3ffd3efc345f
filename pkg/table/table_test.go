package table

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablestore/pkg/errs"
	"tablestore/pkg/primitives"
	"tablestore/pkg/schema"
	"tablestore/pkg/storage"
	"tablestore/pkg/storage/alloc"
	"tablestore/pkg/types"
)

func benchDescriptor(t *testing.T) *schema.TableDescriptor {
	t.Helper()
	desc, err := schema.NewBuilder().
		AddScalar("COL_0", types.Float64Type).
		AddScalar("COL_1", types.Float64Type).
		AddFixedArray("UVW", types.Float64Type, 3).
		Build()
	require.NoError(t, err)
	return desc
}

func newTestTable(t *testing.T, desc *schema.TableDescriptor, rows uint64, strategy alloc.Strategy) *Table {
	t.Helper()
	st, err := storage.NewDir(primitives.Filepath(filepath.Join(t.TempDir(), "tbl")))
	require.NoError(t, err)

	tbl, err := Create(desc, st, rows, strategy)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tbl.Close() })
	return tbl
}

func TestCreateNilDescriptor(t *testing.T) {
	st, err := storage.NewDir(primitives.Filepath(filepath.Join(t.TempDir(), "tbl")))
	require.NoError(t, err)
	defer st.Close()

	_, err = Create(nil, st, 10, alloc.PreTruncate)
	assert.True(t, errs.HasCode(err, errs.CodeSchema))
}

func TestScalarRoundTrip(t *testing.T) {
	strategies := []alloc.Strategy{alloc.LazyZeroFill, alloc.PreTruncate, alloc.PreReserve}

	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			tbl := newTestTable(t, benchDescriptor(t), 10, strategy)

			col, err := tbl.ScalarColumn("COL_0")
			require.NoError(t, err)

			for row := uint64(0); row < 10; row++ {
				require.NoError(t, col.Put(row, types.NewFloat64Field(float64(row)*1.5)))
			}

			for row := uint64(0); row < 10; row++ {
				v, err := col.Get(row)
				require.NoError(t, err)
				assert.True(t, types.NewFloat64Field(float64(row)*1.5).Equals(v), "row %d", row)
			}
		})
	}
}

func TestScalarRoundTripAllTypes(t *testing.T) {
	desc, err := schema.NewBuilder().
		AddScalar("FLAG", types.BoolType).
		AddScalar("ANTENNA", types.Int32Type).
		AddScalar("TIME", types.Float64Type).
		AddScalar("GAIN", types.Complex64Type).
		Build()
	require.NoError(t, err)

	tbl := newTestTable(t, desc, 3, alloc.PreTruncate)

	puts := map[string]types.Field{
		"FLAG":    types.NewBoolField(true),
		"ANTENNA": types.NewInt32Field(-42),
		"TIME":    types.NewFloat64Field(4.56789e9),
		"GAIN":    types.NewComplex64Field(complex(0.5, -1.5)),
	}

	for name, v := range puts {
		col, err := tbl.ScalarColumn(name)
		require.NoError(t, err)
		require.NoError(t, col.Put(1, v))
	}

	for name, want := range puts {
		col, err := tbl.ScalarColumn(name)
		require.NoError(t, err)
		got, err := col.Get(1)
		require.NoError(t, err)
		assert.True(t, want.Equals(got), "column %s: wrote %v, read %v", name, want, got)
	}
}

func TestLazyZeroFillUnwrittenReadsZero(t *testing.T) {
	tbl := newTestTable(t, benchDescriptor(t), 100, alloc.LazyZeroFill)

	col, err := tbl.ScalarColumn("COL_0")
	require.NoError(t, err)

	// Only row 50 is written; the gap before it is zero-filled and the
	// tail was never touched.
	require.NoError(t, col.Put(50, types.NewFloat64Field(7)))

	for _, row := range []uint64{0, 49, 51, 99} {
		v, err := col.Get(row)
		require.NoError(t, err)
		assert.Zerof(t, v.Sum(), "unwritten row %d should read as zero", row)
	}

	v, err := col.Get(50)
	require.NoError(t, err)
	assert.Equal(t, 7.0, v.Sum())
}

func TestScalarTypeMismatch(t *testing.T) {
	tbl := newTestTable(t, benchDescriptor(t), 10, alloc.PreTruncate)

	col, err := tbl.ScalarColumn("COL_0")
	require.NoError(t, err)

	err = col.Put(0, types.NewInt32Field(1))
	assert.True(t, errs.HasCode(err, errs.CodeShapeMismatch))
}

func TestColumnLookupErrors(t *testing.T) {
	tbl := newTestTable(t, benchDescriptor(t), 10, alloc.PreTruncate)

	_, err := tbl.ScalarColumn("NO_SUCH")
	assert.True(t, errs.HasCode(err, errs.CodeNotFound))

	_, err = tbl.ScalarColumn("UVW")
	assert.True(t, errs.HasCode(err, errs.CodeShapeMismatch), "array column through scalar accessor")

	_, err = tbl.ArrayColumn("COL_0")
	assert.True(t, errs.HasCode(err, errs.CodeShapeMismatch), "scalar column through array accessor")
}

func TestRowIndexBounds(t *testing.T) {
	tbl := newTestTable(t, benchDescriptor(t), 10, alloc.PreTruncate)

	col, err := tbl.ScalarColumn("COL_0")
	require.NoError(t, err)

	err = col.Put(10, types.NewFloat64Field(1))
	assert.True(t, errs.HasCode(err, errs.CodeIndex))

	_, err = col.Get(10)
	assert.True(t, errs.HasCode(err, errs.CodeIndex))

	_, err = tbl.Row(10)
	assert.True(t, errs.HasCode(err, errs.CodeIndex))
}

func TestAddRowsFromZero(t *testing.T) {
	tbl := newTestTable(t, benchDescriptor(t), 0, alloc.PreTruncate)
	assert.Zero(t, tbl.RowCount())

	rows, err := tbl.AddRows(5)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), rows)

	col, err := tbl.ScalarColumn("COL_0")
	require.NoError(t, err)

	require.NoError(t, col.Put(4, types.NewFloat64Field(4)))
	err = col.Put(5, types.NewFloat64Field(5))
	assert.True(t, errs.HasCode(err, errs.CodeIndex))
}

func TestAddRowsPreservesContent(t *testing.T) {
	tbl := newTestTable(t, benchDescriptor(t), 4, alloc.PreTruncate)

	col, err := tbl.ScalarColumn("COL_0")
	require.NoError(t, err)
	require.NoError(t, col.Put(3, types.NewFloat64Field(3.25)))

	_, err = tbl.AddRows(4)
	require.NoError(t, err)

	v, err := col.Get(3)
	require.NoError(t, err)
	assert.Equal(t, 3.25, v.Sum())
}

func TestUseAfterClose(t *testing.T) {
	tbl := newTestTable(t, benchDescriptor(t), 10, alloc.PreTruncate)

	col, err := tbl.ScalarColumn("COL_0")
	require.NoError(t, err)

	require.NoError(t, tbl.Close())

	_, err = tbl.ScalarColumn("COL_0")
	assert.True(t, errs.HasCode(err, errs.CodeUseAfterClose), "Column after Close")

	_, err = tbl.Row(0)
	assert.True(t, errs.HasCode(err, errs.CodeUseAfterClose))

	_, err = tbl.AddRows(1)
	assert.True(t, errs.HasCode(err, errs.CodeUseAfterClose))

	err = col.Put(0, types.NewFloat64Field(1))
	assert.True(t, errs.HasCode(err, errs.CodeUseAfterClose), "previously issued accessor after Close")

	_, err = col.Get(0)
	assert.True(t, errs.HasCode(err, errs.CodeUseAfterClose))

	assert.NoError(t, tbl.Close(), "double close is a no-op")
}

func TestMarkForDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scratch")
	st, err := storage.NewDir(primitives.Filepath(path))
	require.NoError(t, err)

	tbl, err := Create(benchDescriptor(t), st, 10, alloc.PreTruncate)
	require.NoError(t, err)

	tbl.MarkForDelete()
	require.NoError(t, tbl.Close())
	assert.NoDirExists(t, path)
}

func TestScalarPutAll(t *testing.T) {
	tbl := newTestTable(t, benchDescriptor(t), 100, alloc.PreTruncate)

	col, err := tbl.ScalarColumn("COL_1")
	require.NoError(t, err)

	values := make([]types.Field, 100)
	for i := range values {
		values[i] = types.NewFloat64Field(1000 + float64(i))
	}
	require.NoError(t, col.PutAll(values))

	for _, row := range []uint64{0, 37, 99} {
		v, err := col.Get(row)
		require.NoError(t, err)
		assert.Equal(t, 1000+float64(row), v.Sum())
	}
}

func TestScalarPutAllWrongCount(t *testing.T) {
	tbl := newTestTable(t, benchDescriptor(t), 100, alloc.PreTruncate)

	col, err := tbl.ScalarColumn("COL_1")
	require.NoError(t, err)

	err = col.PutAll([]types.Field{types.NewFloat64Field(1)})
	assert.True(t, errs.HasCode(err, errs.CodeBulkShape))
}

func TestPutCachedCoalesces(t *testing.T) {
	tbl := newTestTable(t, benchDescriptor(t), 50, alloc.PreTruncate)

	col, err := tbl.ScalarColumn("COL_0")
	require.NoError(t, err)

	// Ascending run, one out-of-order break, then the tail.
	for row := uint64(0); row < 20; row++ {
		require.NoError(t, col.PutCached(row, types.NewFloat64Field(float64(row))))
	}
	require.NoError(t, col.PutCached(40, types.NewFloat64Field(40)))
	for row := uint64(20); row < 30; row++ {
		require.NoError(t, col.PutCached(row, types.NewFloat64Field(float64(row))))
	}
	require.NoError(t, col.Flush())

	for _, row := range []uint64{0, 19, 20, 29, 40} {
		v, err := col.Get(row)
		require.NoError(t, err)
		assert.Equal(t, float64(row), v.Sum(), "row %d", row)
	}
}

func TestCloseFlushesCachedWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tbl")
	st, err := storage.NewDir(primitives.Filepath(path))
	require.NoError(t, err)

	tbl, err := Create(benchDescriptor(t), st, 5, alloc.PreTruncate)
	require.NoError(t, err)

	col, err := tbl.ScalarColumn("COL_0")
	require.NoError(t, err)
	for row := uint64(0); row < 5; row++ {
		require.NoError(t, col.PutCached(row, types.NewFloat64Field(9)))
	}

	require.NoError(t, tbl.Close())

	// The run was never explicitly flushed; Close must have written it.
	seg, err := storage.OpenFileSegment(primitives.Filepath(filepath.Join(path, "COL_0")))
	require.NoError(t, err)
	defer seg.Close()

	raw := make([]byte, 40)
	_, err = seg.ReadAt(raw, 0)
	require.NoError(t, err)
	for row := 0; row < 5; row++ {
		got := math.Float64frombits(binary.BigEndian.Uint64(raw[row*8:]))
		assert.Equal(t, 9.0, got, "row %d", row)
	}
}
