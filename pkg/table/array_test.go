package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablestore/pkg/errs"
	"tablestore/pkg/schema"
	"tablestore/pkg/storage/alloc"
	"tablestore/pkg/types"
)

func floats(vs ...float64) []types.Field {
	fields := make([]types.Field, len(vs))
	for i, v := range vs {
		fields[i] = types.NewFloat64Field(v)
	}
	return fields
}

func uvw(row uint64) []types.Field {
	r := float64(row)
	return floats(0.1*r, 0.2*r, 0.3*r)
}

func TestFixedArrayRoundTrip(t *testing.T) {
	strategies := []alloc.Strategy{alloc.LazyZeroFill, alloc.PreTruncate, alloc.PreReserve}

	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			tbl := newTestTable(t, benchDescriptor(t), 8, strategy)

			col, err := tbl.ArrayColumn("UVW")
			require.NoError(t, err)
			assert.Equal(t, []uint32{3}, col.Shape())

			for row := uint64(0); row < 8; row++ {
				require.NoError(t, col.Put(row, []uint32{3}, uvw(row)))
			}

			for row := uint64(0); row < 8; row++ {
				shape, values, err := col.Get(row)
				require.NoError(t, err)
				assert.Equal(t, []uint32{3}, shape)
				require.Len(t, values, 3)
				for i, want := range uvw(row) {
					assert.True(t, want.Equals(values[i]), "row %d element %d", row, i)
				}
			}
		})
	}
}

func TestFixedArrayShapeMismatch(t *testing.T) {
	tbl := newTestTable(t, benchDescriptor(t), 4, alloc.PreTruncate)

	col, err := tbl.ArrayColumn("UVW")
	require.NoError(t, err)

	err = col.Put(0, []uint32{2}, floats(1, 2))
	assert.True(t, errs.HasCode(err, errs.CodeShapeMismatch), "wrong dims against declared shape")

	err = col.Put(0, []uint32{3}, floats(1, 2))
	assert.True(t, errs.HasCode(err, errs.CodeShapeMismatch), "element count disagrees with shape")

	err = col.Put(0, []uint32{3}, []types.Field{
		types.NewFloat64Field(1), types.NewInt32Field(2), types.NewFloat64Field(3),
	})
	assert.True(t, errs.HasCode(err, errs.CodeShapeMismatch), "wrong element type")
}

func TestVariableArrayPerRowShapes(t *testing.T) {
	desc, err := schema.NewBuilder().
		AddVariableArray("DATA", types.Complex64Type).
		Build()
	require.NoError(t, err)

	tbl := newTestTable(t, desc, 3, alloc.LazyZeroFill)

	col, err := tbl.ArrayColumn("DATA")
	require.NoError(t, err)
	assert.Nil(t, col.Shape(), "variable column has no declared shape")

	cells := map[uint64]struct {
		shape  []uint32
		values []types.Field
	}{
		0: {[]uint32{2, 1}, []types.Field{
			types.NewComplex64Field(complex(1, 0)),
			types.NewComplex64Field(complex(0, 1)),
		}},
		2: {[]uint32{1, 4}, []types.Field{
			types.NewComplex64Field(complex(1, 1)),
			types.NewComplex64Field(complex(2, 2)),
			types.NewComplex64Field(complex(3, 3)),
			types.NewComplex64Field(complex(4, 4)),
		}},
	}

	for row, cell := range cells {
		require.NoError(t, col.Put(row, cell.shape, cell.values))
	}

	for row, want := range cells {
		shape, values, err := col.Get(row)
		require.NoError(t, err)
		assert.Equal(t, want.shape, shape, "row %d", row)
		require.Len(t, values, len(want.values))
		for i := range want.values {
			assert.True(t, want.values[i].Equals(values[i]), "row %d element %d", row, i)
		}
	}

	// Row 1 was never written: it reads back empty, not as an error.
	shape, values, err := col.Get(1)
	require.NoError(t, err)
	assert.Nil(t, shape)
	assert.Empty(t, values)
}

func TestVariableArrayOverwrite(t *testing.T) {
	desc, err := schema.NewBuilder().
		AddVariableArray("DATA", types.Float64Type).
		Build()
	require.NoError(t, err)

	tbl := newTestTable(t, desc, 2, alloc.PreTruncate)

	col, err := tbl.ArrayColumn("DATA")
	require.NoError(t, err)

	require.NoError(t, col.Put(0, []uint32{2}, floats(1, 2)))
	require.NoError(t, col.Put(0, []uint32{3}, floats(4, 5, 6)))

	shape, values, err := col.Get(0)
	require.NoError(t, err)
	assert.Equal(t, []uint32{3}, shape, "latest write wins")
	require.Len(t, values, 3)
	assert.Equal(t, 4.0, values[0].Sum())
}

func TestArrayPutAllFixed(t *testing.T) {
	tbl := newTestTable(t, benchDescriptor(t), 50, alloc.PreTruncate)

	col, err := tbl.ArrayColumn("UVW")
	require.NoError(t, err)

	rows := make([][]types.Field, 50)
	for i := range rows {
		rows[i] = uvw(uint64(i))
	}
	require.NoError(t, col.PutAll([]uint32{3}, rows))

	for _, row := range []uint64{0, 17, 49} {
		_, values, err := col.Get(row)
		require.NoError(t, err)
		for i, want := range uvw(row) {
			assert.True(t, want.Equals(values[i]), "row %d element %d", row, i)
		}
	}
}

func TestArrayPutAllVariable(t *testing.T) {
	desc, err := schema.NewBuilder().
		AddVariableArray("DATA", types.Float64Type).
		Build()
	require.NoError(t, err)

	tbl := newTestTable(t, desc, 4, alloc.PreTruncate)

	col, err := tbl.ArrayColumn("DATA")
	require.NoError(t, err)

	rows := [][]types.Field{
		floats(0, 1), floats(10, 11), floats(20, 21), floats(30, 31),
	}
	require.NoError(t, col.PutAll([]uint32{2}, rows))

	for row := uint64(0); row < 4; row++ {
		shape, values, err := col.Get(row)
		require.NoError(t, err)
		assert.Equal(t, []uint32{2}, shape)
		require.Len(t, values, 2)
		assert.Equal(t, float64(row*10), values[0].Sum())
		assert.Equal(t, float64(row*10+1), values[1].Sum())
	}
}

func TestArrayPutAllBulkShapeErrors(t *testing.T) {
	tbl := newTestTable(t, benchDescriptor(t), 4, alloc.PreTruncate)

	col, err := tbl.ArrayColumn("UVW")
	require.NoError(t, err)

	err = col.PutAll([]uint32{3}, [][]types.Field{uvw(0)})
	assert.True(t, errs.HasCode(err, errs.CodeBulkShape), "row count disagrees with table")

	err = col.PutAll([]uint32{3}, [][]types.Field{
		uvw(0), uvw(1), floats(1, 2), uvw(3),
	})
	assert.True(t, errs.HasCode(err, errs.CodeBulkShape), "one row breaks the shared shape")
}

func TestVariableArrayPutAllRejectsRaggedRows(t *testing.T) {
	desc, err := schema.NewBuilder().
		AddVariableArray("DATA", types.Float64Type).
		Build()
	require.NoError(t, err)

	tbl := newTestTable(t, desc, 2, alloc.PreTruncate)

	col, err := tbl.ArrayColumn("DATA")
	require.NoError(t, err)

	// Bulk writes share one shape even on a variable-shape column.
	err = col.PutAll([]uint32{2}, [][]types.Field{floats(1, 2), floats(3)})
	assert.True(t, errs.HasCode(err, errs.CodeBulkShape))
}
