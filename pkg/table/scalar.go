package table

import (
	"tablestore/pkg/errs"
	"tablestore/pkg/logging"
	"tablestore/pkg/types"
)

// ScalarColumn is a typed read/write view bound to one scalar column of
// an open table. It holds no lock on the table; views of different
// columns may coexist.
type ScalarColumn struct {
	t  *Table
	cs *columnState
}

// Name returns the column name.
func (c *ScalarColumn) Name() string {
	return c.cs.spec.Name
}

// Get reads the cell at the given row.
func (c *ScalarColumn) Get(row uint64) (types.Field, error) {
	if err := c.t.checkOpen("column.Get"); err != nil {
		return nil, err
	}
	if err := c.t.boundsCheck(row); err != nil {
		return nil, err
	}
	return c.t.getScalarCell(c.cs, row)
}

// Put writes one cell. One storage write per call: correct for sparse or
// randomly ordered rows, and the most call-intensive path.
func (c *ScalarColumn) Put(row uint64, v types.Field) error {
	if err := c.t.checkOpen("column.Put"); err != nil {
		return err
	}
	if err := c.t.boundsCheck(row); err != nil {
		return err
	}
	return c.t.putScalarCell(c.cs, row, v)
}

// PutCached writes one cell through the column's write-combining cache:
// consecutive rows coalesce into a single storage write, flushed when the
// run breaks, on Flush, or when the table closes.
func (c *ScalarColumn) PutCached(row uint64, v types.Field) error {
	if err := c.t.checkOpen("column.PutCached"); err != nil {
		return err
	}
	if err := c.t.boundsCheck(row); err != nil {
		return err
	}
	if err := checkElementType(&c.cs.spec, v); err != nil {
		return err
	}

	cell, err := encodeFields([]types.Field{v})
	if err != nil {
		return err
	}

	if !c.cs.cache.append(row, cell) {
		if err := c.t.flushCache(c.cs); err != nil {
			return err
		}
		c.cs.cache.append(row, cell)
	}
	return nil
}

// Flush writes any pending cached run.
func (c *ScalarColumn) Flush() error {
	if err := c.t.checkOpen("column.Flush"); err != nil {
		return err
	}
	return c.t.flushCache(c.cs)
}

// PutAll writes the entire column in one contiguous extend-and-write.
// values must hold exactly one value per row.
func (c *ScalarColumn) PutAll(values []types.Field) error {
	if err := c.t.checkOpen("column.PutAll"); err != nil {
		return err
	}

	rows := c.t.RowCount()
	if uint64(len(values)) != rows {
		return errs.Newf(errs.CodeBulkShape, "column %q: bulk put needs %d values, got %d",
			c.cs.spec.Name, rows, len(values))
	}
	if err := checkElementTypes(&c.cs.spec, values); err != nil {
		return err
	}
	if err := c.t.flushCache(c.cs); err != nil {
		return err
	}

	data, err := encodeFields(values)
	if err != nil {
		return err
	}

	logging.Debug("bulk column write", "column", c.cs.spec.Name, "rows", rows, "bytes", len(data))
	return c.t.writeFixedRange(c.cs, 0, data)
}
