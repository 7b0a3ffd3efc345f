package schema

import (
	"strings"

	"tablestore/pkg/errs"
)

// TableDescriptor is the immutable, ordered column set of a table. Build
// one through the Builder; descriptors cannot be modified after a table
// has been created from them.
type TableDescriptor struct {
	columns []ColumnSpec
	index   map[string]int
}

// NumColumns returns the number of columns in the descriptor.
func (td *TableDescriptor) NumColumns() int {
	return len(td.columns)
}

// Columns returns a copy of the column specs in declaration order.
func (td *TableDescriptor) Columns() []ColumnSpec {
	cols := make([]ColumnSpec, len(td.columns))
	copy(cols, td.columns)
	for i := range cols {
		cols[i].Dims = copyDims(cols[i].Dims)
	}
	return cols
}

// Column looks up a column spec by name.
//
// Returns:
//   - ColumnSpec: a copy of the matching spec
//   - error: with code NotFound if no column has that name
func (td *TableDescriptor) Column(name string) (ColumnSpec, error) {
	i, ok := td.index[name]
	if !ok {
		return ColumnSpec{}, errs.Newf(errs.CodeNotFound, "column %q not found", name)
	}

	col := td.columns[i]
	col.Dims = copyDims(col.Dims)
	return col, nil
}

// Has reports whether a column with the given name exists.
func (td *TableDescriptor) Has(name string) bool {
	_, ok := td.index[name]
	return ok
}

// String returns a comma-separated list of column descriptions.
func (td *TableDescriptor) String() string {
	parts := make([]string, len(td.columns))
	for i := range td.columns {
		parts[i] = td.columns[i].String()
	}
	return strings.Join(parts, ",")
}

func copyDims(dims []uint32) []uint32 {
	if dims == nil {
		return nil
	}
	out := make([]uint32, len(dims))
	copy(out, dims)
	return out
}
