package table

import "tablestore/pkg/errs"

// WriteStrategy selects the granularity a dataset is written with. All
// strategies produce identical logical content; they differ only in the
// number and size of the I/O calls they issue.
type WriteStrategy int

const (
	// CellPut writes one row of one column per call. Correct for sparse
	// or randomly ordered writes, and the most I/O-call-intensive path.
	CellPut WriteStrategy = iota

	// RowPut writes one row across all columns per call, through a
	// RowBuilder.
	RowPut

	// ColumnBulkPut writes all rows of one column per call, as a single
	// contiguous extend-and-write. The fastest path.
	ColumnBulkPut
)

// String returns a string representation of the write strategy
func (w WriteStrategy) String() string {
	switch w {
	case CellPut:
		return "cell_put"
	case RowPut:
		return "row_put"
	case ColumnBulkPut:
		return "column_bulk_put"
	default:
		return "unknown"
	}
}

// ParseWriteStrategy maps a selector string to a WriteStrategy.
func ParseWriteStrategy(name string) (WriteStrategy, error) {
	switch name {
	case "cell_put":
		return CellPut, nil
	case "row_put":
		return RowPut, nil
	case "column_bulk_put":
		return ColumnBulkPut, nil
	default:
		return 0, errs.Newf(errs.CodeNotFound, "unknown write strategy %q", name)
	}
}
