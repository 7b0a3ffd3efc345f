package schema

import (
	"fmt"
	"strings"

	"tablestore/pkg/errs"
	"tablestore/pkg/types"
)

// ShapeClass classifies how a column's cells are shaped.
type ShapeClass int

const (
	// Scalar columns hold exactly one element per cell.
	Scalar ShapeClass = iota

	// FixedArray columns hold an array per cell whose shape is declared
	// once for the whole column.
	FixedArray

	// VariableArray columns hold an array per cell whose shape may differ
	// row to row and is recorded alongside each cell.
	VariableArray
)

// String returns a string representation of the shape class
func (s ShapeClass) String() string {
	switch s {
	case Scalar:
		return "SCALAR"
	case FixedArray:
		return "FIXED_ARRAY"
	case VariableArray:
		return "VARIABLE_ARRAY"
	default:
		return "UNKNOWN"
	}
}

// ColumnSpec declares one column of a table: its name, element type and
// shape class. For FixedArray columns Dims holds the declared per-cell
// shape; for the other classes it is nil.
type ColumnSpec struct {
	Name    string
	Type    types.Type
	Shape   ShapeClass
	Dims    []uint32
	Comment string
}

// ElementsPerCell returns the number of elements in one cell for scalar
// and fixed-array columns. Variable-array cells carry their own count.
func (c *ColumnSpec) ElementsPerCell() uint32 {
	if c.Shape != FixedArray {
		return 1
	}

	n := uint32(1)
	for _, d := range c.Dims {
		n *= d
	}
	return n
}

// CellSize returns the fixed on-disk size of one cell in bytes and true,
// or 0 and false for variable-shape columns whose cells have no fixed size.
func (c *ColumnSpec) CellSize() (uint32, bool) {
	if c.Shape == VariableArray {
		return 0, false
	}
	return c.ElementsPerCell() * c.Type.Size(), true
}

// Validate checks the declaration against the schema invariants.
func (c *ColumnSpec) Validate() error {
	if c.Name == "" {
		return errs.New(errs.CodeSchema, "column name cannot be empty")
	}

	if !types.IsValid(c.Type) {
		return errs.Newf(errs.CodeSchema, "column %q has invalid element type", c.Name)
	}

	switch c.Shape {
	case Scalar, VariableArray:
		if len(c.Dims) != 0 {
			return errs.Newf(errs.CodeSchema, "column %q: dims are only valid on fixed-array columns", c.Name)
		}
	case FixedArray:
		if len(c.Dims) == 0 {
			return errs.Newf(errs.CodeSchema, "fixed-array column %q must declare at least one dimension", c.Name)
		}
		for _, d := range c.Dims {
			if d == 0 {
				return errs.Newf(errs.CodeSchema, "fixed-array column %q has a non-positive dimension", c.Name)
			}
		}
	default:
		return errs.Newf(errs.CodeSchema, "column %q has unknown shape class", c.Name)
	}

	return nil
}

// String returns a compact representation, e.g. "UVW FLOAT64[3]".
func (c *ColumnSpec) String() string {
	switch c.Shape {
	case FixedArray:
		dims := make([]string, len(c.Dims))
		for i, d := range c.Dims {
			dims[i] = fmt.Sprintf("%d", d)
		}
		return fmt.Sprintf("%s %s[%s]", c.Name, c.Type, strings.Join(dims, ","))
	case VariableArray:
		return fmt.Sprintf("%s %s[*]", c.Name, c.Type)
	default:
		return fmt.Sprintf("%s %s", c.Name, c.Type)
	}
}
