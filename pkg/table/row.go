package table

import (
	"tablestore/pkg/errs"
	"tablestore/pkg/schema"
	"tablestore/pkg/types"
)

// pendingCell is one staged value of a row-wise write.
type pendingCell struct {
	scalar types.Field
	shape  []uint32
	values []types.Field
}

// RowBuilder aggregates values for every column of one row, then commits
// them in a single logical unit: one write per column segment, issued
// back to back at that row's offsets. Obtained from Table.Row.
type RowBuilder struct {
	t     *Table
	row   uint64
	cells map[string]*pendingCell
}

// Index returns the row this builder writes to.
func (rb *RowBuilder) Index() uint64 {
	return rb.row
}

// Set stages a value for a scalar column. Validation runs at staging
// time so a bad value is rejected before anything touches storage.
func (rb *RowBuilder) Set(column string, v types.Field) error {
	cs, err := rb.t.lookup("row.Set", column)
	if err != nil {
		return err
	}
	if cs.spec.Shape != schema.Scalar {
		return errs.Newf(errs.CodeShapeMismatch, "column %q is %s, use SetArray", column, cs.spec.Shape)
	}
	if err := checkElementType(&cs.spec, v); err != nil {
		return err
	}

	rb.cells[column] = &pendingCell{scalar: v}
	return nil
}

// SetArray stages an array cell for a fixed- or variable-shape column.
func (rb *RowBuilder) SetArray(column string, shape []uint32, values []types.Field) error {
	cs, err := rb.t.lookup("row.SetArray", column)
	if err != nil {
		return err
	}
	if cs.spec.Shape == schema.Scalar {
		return errs.Newf(errs.CodeShapeMismatch, "column %q is scalar, use Set", column)
	}
	if cs.spec.Shape == schema.FixedArray && !shapesEqual(shape, cs.spec.Dims) {
		return errs.Newf(errs.CodeShapeMismatch, "column %q declared shape %v, got %v", column, cs.spec.Dims, shape)
	}
	if uint64(len(values)) != shapeElements(shape) {
		return errs.Newf(errs.CodeShapeMismatch, "column %q: shape %v describes %d elements, got %d",
			column, shape, shapeElements(shape), len(values))
	}
	if err := checkElementTypes(&cs.spec, values); err != nil {
		return err
	}

	rb.cells[column] = &pendingCell{shape: shape, values: values}
	return nil
}

// Commit writes every staged cell for the row, columns in descriptor
// order. Fails with a MissingColumn-coded error if any declared column
// was never set; in that case nothing is written.
func (rb *RowBuilder) Commit() error {
	if err := rb.t.checkOpen("row.Commit"); err != nil {
		return err
	}
	if err := rb.t.boundsCheck(rb.row); err != nil {
		return err
	}

	for _, spec := range rb.t.desc.Columns() {
		if _, ok := rb.cells[spec.Name]; !ok {
			return errs.Newf(errs.CodeMissingColumn, "row %d: column %q was never set", rb.row, spec.Name)
		}
	}

	for _, cs := range rb.t.order {
		cell := rb.cells[cs.spec.Name]
		var err error
		if cs.spec.Shape == schema.Scalar {
			err = rb.t.putScalarCell(cs, rb.row, cell.scalar)
		} else {
			err = rb.t.putArrayCell(cs, rb.row, cell.shape, cell.values)
		}
		if err != nil {
			return err
		}
	}

	return nil
}
