package table

import (
	"bytes"
	"encoding/binary"

	"tablestore/pkg/errs"
	"tablestore/pkg/logging"
	"tablestore/pkg/schema"
	"tablestore/pkg/storage/alloc"
	"tablestore/pkg/types"
)

// ArrayColumn is a typed read/write view bound to one fixed- or
// variable-shape array column of an open table.
type ArrayColumn struct {
	t  *Table
	cs *columnState
}

// Name returns the column name.
func (c *ArrayColumn) Name() string {
	return c.cs.spec.Name
}

// Shape returns the declared per-cell dims for fixed-shape columns, or
// nil for variable-shape columns.
func (c *ArrayColumn) Shape() []uint32 {
	if c.cs.spec.Shape != schema.FixedArray {
		return nil
	}
	dims := make([]uint32, len(c.cs.spec.Dims))
	copy(dims, c.cs.spec.Dims)
	return dims
}

// Get reads the cell at the given row, returning its shape and flat
// element values. A never-written variable-shape cell reads back with a
// nil shape and no elements.
func (c *ArrayColumn) Get(row uint64) ([]uint32, []types.Field, error) {
	if err := c.t.checkOpen("column.Get"); err != nil {
		return nil, nil, err
	}
	if err := c.t.boundsCheck(row); err != nil {
		return nil, nil, err
	}
	return c.t.getArrayCell(c.cs, row)
}

// Put writes one cell. For fixed-shape columns the shape must equal the
// declared dims exactly; variable-shape columns accept and persist any
// shape per cell.
func (c *ArrayColumn) Put(row uint64, shape []uint32, values []types.Field) error {
	if err := c.t.checkOpen("column.Put"); err != nil {
		return err
	}
	if err := c.t.boundsCheck(row); err != nil {
		return err
	}
	return c.t.putArrayCell(c.cs, row, shape, values)
}

// PutAll writes every row of the column in one logical operation, all
// rows sharing one shape. This write mode does not support per-row
// varying shapes, even on a variable-shape column; rows whose element
// count disagrees with the shared shape fail with a BulkShape-coded
// error.
func (c *ArrayColumn) PutAll(shape []uint32, rows [][]types.Field) error {
	if err := c.t.checkOpen("column.PutAll"); err != nil {
		return err
	}

	rowCount := c.t.RowCount()
	if uint64(len(rows)) != rowCount {
		return errs.Newf(errs.CodeBulkShape, "column %q: bulk put needs %d rows, got %d",
			c.cs.spec.Name, rowCount, len(rows))
	}

	if c.cs.spec.Shape == schema.FixedArray && !shapesEqual(shape, c.cs.spec.Dims) {
		return errs.Newf(errs.CodeShapeMismatch, "column %q declared shape %v, got %v",
			c.cs.spec.Name, c.cs.spec.Dims, shape)
	}

	perRow := shapeElements(shape)
	for i, rowValues := range rows {
		if uint64(len(rowValues)) != perRow {
			return errs.Newf(errs.CodeBulkShape, "column %q: row %d has %d elements, bulk shape %v requires %d",
				c.cs.spec.Name, i, len(rowValues), shape, perRow)
		}
		if err := checkElementTypes(&c.cs.spec, rowValues); err != nil {
			return err
		}
	}

	if c.cs.spec.Shape == schema.FixedArray {
		var buf bytes.Buffer
		for _, rowValues := range rows {
			for _, v := range rowValues {
				if err := v.Serialize(&buf); err != nil {
					return errs.Wrap(err, errs.CodeStorage, "column.PutAll")
				}
			}
		}
		logging.Debug("bulk column write", "column", c.cs.spec.Name, "rows", rowCount, "bytes", buf.Len())
		return c.t.writeFixedRange(c.cs, 0, buf.Bytes())
	}

	return c.bulkPutVariable(shape, rows)
}

// bulkPutVariable appends every row's record to the heap in one
// contiguous write and rewrites the offsets index in a second.
func (c *ArrayColumn) bulkPutVariable(shape []uint32, rows [][]types.Field) error {
	c.t.mu.Lock()
	defer c.t.mu.Unlock()

	heapStart, err := c.cs.data.Size()
	if err != nil {
		return err
	}

	var heap bytes.Buffer
	index := make([]byte, len(rows)*alloc.IndexEntrySize)

	for i, rowValues := range rows {
		record, err := encodeVarCell(shape, rowValues)
		if err != nil {
			return err
		}
		binary.BigEndian.PutUint64(index[i*alloc.IndexEntrySize:], uint64(heapStart)+uint64(heap.Len())+1)
		heap.Write(record)
	}

	if _, err := c.cs.data.WriteAt(heap.Bytes(), heapStart); err != nil {
		return err
	}
	if _, err := c.cs.index.WriteAt(index, 0); err != nil {
		return err
	}

	logging.Debug("bulk column write", "column", c.cs.spec.Name, "rows", len(rows), "bytes", heap.Len())
	return nil
}
