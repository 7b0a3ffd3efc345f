package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablestore/pkg/errs"
	"tablestore/pkg/storage/alloc"
	"tablestore/pkg/types"
)

func TestRowCommitRoundTrip(t *testing.T) {
	tbl := newTestTable(t, benchDescriptor(t), 6, alloc.PreTruncate)

	for row := uint64(0); row < 6; row++ {
		rb, err := tbl.Row(row)
		require.NoError(t, err)
		assert.Equal(t, row, rb.Index())

		require.NoError(t, rb.Set("COL_0", types.NewFloat64Field(float64(row))))
		require.NoError(t, rb.Set("COL_1", types.NewFloat64Field(1000+float64(row))))
		require.NoError(t, rb.SetArray("UVW", []uint32{3}, uvw(row)))
		require.NoError(t, rb.Commit())
	}

	col0, err := tbl.ScalarColumn("COL_0")
	require.NoError(t, err)
	uvwCol, err := tbl.ArrayColumn("UVW")
	require.NoError(t, err)

	for row := uint64(0); row < 6; row++ {
		v, err := col0.Get(row)
		require.NoError(t, err)
		assert.Equal(t, float64(row), v.Sum())

		_, values, err := uvwCol.Get(row)
		require.NoError(t, err)
		for i, want := range uvw(row) {
			assert.True(t, want.Equals(values[i]), "row %d element %d", row, i)
		}
	}
}

func TestRowCommitMissingColumn(t *testing.T) {
	tbl := newTestTable(t, benchDescriptor(t), 6, alloc.PreTruncate)

	rb, err := tbl.Row(2)
	require.NoError(t, err)
	require.NoError(t, rb.Set("COL_0", types.NewFloat64Field(1)))
	require.NoError(t, rb.SetArray("UVW", []uint32{3}, uvw(2)))

	err = rb.Commit()
	assert.True(t, errs.HasCode(err, errs.CodeMissingColumn), "COL_1 was never set")

	// Nothing was written: the partially staged row left storage alone.
	col, err := tbl.ScalarColumn("COL_0")
	require.NoError(t, err)
	v, err := col.Get(2)
	require.NoError(t, err)
	assert.Zero(t, v.Sum())
}

func TestRowSetValidation(t *testing.T) {
	tbl := newTestTable(t, benchDescriptor(t), 6, alloc.PreTruncate)

	rb, err := tbl.Row(0)
	require.NoError(t, err)

	err = rb.Set("NO_SUCH", types.NewFloat64Field(1))
	assert.True(t, errs.HasCode(err, errs.CodeNotFound))

	err = rb.Set("UVW", types.NewFloat64Field(1))
	assert.True(t, errs.HasCode(err, errs.CodeShapeMismatch), "array column through Set")

	err = rb.SetArray("COL_0", []uint32{1}, floats(1))
	assert.True(t, errs.HasCode(err, errs.CodeShapeMismatch), "scalar column through SetArray")

	err = rb.Set("COL_0", types.NewInt32Field(1))
	assert.True(t, errs.HasCode(err, errs.CodeShapeMismatch), "wrong element type")

	err = rb.SetArray("UVW", []uint32{4}, floats(1, 2, 3, 4))
	assert.True(t, errs.HasCode(err, errs.CodeShapeMismatch), "wrong dims for fixed column")
}

func TestRowOverwriteBeforeCommit(t *testing.T) {
	tbl := newTestTable(t, benchDescriptor(t), 2, alloc.PreTruncate)

	rb, err := tbl.Row(0)
	require.NoError(t, err)
	require.NoError(t, rb.Set("COL_0", types.NewFloat64Field(1)))
	require.NoError(t, rb.Set("COL_0", types.NewFloat64Field(2)))
	require.NoError(t, rb.Set("COL_1", types.NewFloat64Field(3)))
	require.NoError(t, rb.SetArray("UVW", []uint32{3}, uvw(0)))
	require.NoError(t, rb.Commit())

	col, err := tbl.ScalarColumn("COL_0")
	require.NoError(t, err)
	v, err := col.Get(0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v.Sum(), "last staged value wins")
}

func TestRowCommitAfterClose(t *testing.T) {
	tbl := newTestTable(t, benchDescriptor(t), 2, alloc.PreTruncate)

	rb, err := tbl.Row(0)
	require.NoError(t, err)
	require.NoError(t, rb.Set("COL_0", types.NewFloat64Field(1)))
	require.NoError(t, rb.Set("COL_1", types.NewFloat64Field(2)))
	require.NoError(t, rb.SetArray("UVW", []uint32{3}, uvw(0)))

	require.NoError(t, tbl.Close())

	err = rb.Commit()
	assert.True(t, errs.HasCode(err, errs.CodeUseAfterClose))
}
