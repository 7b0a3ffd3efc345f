// Package alloc decides how backing file space is reserved for a table's
// columns: lazily as writes arrive, by truncating to the final size up
// front, or by reserving blocks without writing them. The policy is pure;
// it owns no I/O state beyond the segments it is handed.
package alloc

import (
	"fmt"

	"tablestore/pkg/errs"
	"tablestore/pkg/logging"
	"tablestore/pkg/schema"
	"tablestore/pkg/storage"
)

// Strategy selects the file-space allocation policy for a table.
type Strategy int

const (
	// LazyZeroFill takes no up-front action; each write extends the
	// backing store by exactly the bytes for that write, explicitly
	// zero-filling any gap between the previous end and the write offset.
	// Unwritten cells read back as the type's zero value.
	LazyZeroFill Strategy = iota

	// PreTruncate issues a single size-extension call per fixed column
	// before any write. Content of the extended region is whatever the
	// medium defines for truncation-extended ranges.
	PreTruncate

	// PreReserve issues a single block-reservation call per fixed column,
	// committing physical space without writing zeros. Cells are undefined
	// until written; every cell must be covered by a write before reads
	// are valid under this strategy.
	PreReserve
)

// String returns a string representation of the strategy
func (s Strategy) String() string {
	switch s {
	case LazyZeroFill:
		return "lazy_zero_fill"
	case PreTruncate:
		return "pre_truncate"
	case PreReserve:
		return "pre_reserve"
	default:
		return "unknown"
	}
}

// ParseStrategy maps a selector string to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "lazy_zero_fill":
		return LazyZeroFill, nil
	case "pre_truncate":
		return PreTruncate, nil
	case "pre_reserve":
		return PreReserve, nil
	default:
		return 0, errs.Newf(errs.CodeAllocation, "unknown allocation strategy %q", name)
	}
}

// IndexEntrySize is the fixed on-disk size of one offsets-index entry for
// a variable-shape column.
const IndexEntrySize = 8

// IndexSegmentName returns the name of the offsets-index segment paired
// with a variable-shape column's heap segment.
func IndexSegmentName(column string) string {
	return column + ".idx"
}

// ColumnNote records the allocation outcome for one column.
type ColumnNote struct {
	Column      string
	Bytes       int64
	Substituted bool
}

// Report summarizes one allocation pass.
type Report struct {
	BytesRequested int64        // total bytes covered by up-front calls
	Calls          int          // allocation calls issued
	Substituted    bool         // true when any reservation fell back to truncate
	Columns        []ColumnNote // per-column outcomes
}

// Prepare reserves space for rows rows of every fixed-size column in the
// descriptor according to the strategy. Variable-shape columns are
// excluded from the up-front computation; only their fixed-width offsets
// index is extended.
func Prepare(desc *schema.TableDescriptor, rows uint64, strategy Strategy, st storage.Storage) (Report, error) {
	return Extend(desc, 0, rows, strategy, st)
}

// Extend grows the allocation from oldRows to newRows, touching only the
// delta. Previously written content is preserved. The extension for a
// given write always happens before the write itself.
func Extend(desc *schema.TableDescriptor, oldRows, newRows uint64, strategy Strategy, st storage.Storage) (Report, error) {
	var report Report

	if newRows < oldRows {
		return report, errs.Newf(errs.CodeAllocation, "cannot shrink from %d to %d rows", oldRows, newRows)
	}
	if newRows == oldRows {
		return report, nil
	}

	for _, col := range desc.Columns() {
		note, err := extendColumn(&col, oldRows, newRows, strategy, st)
		if err != nil {
			return report, err
		}

		report.BytesRequested += note.Bytes
		if note.Bytes > 0 {
			report.Calls++
		}
		if note.Substituted {
			report.Substituted = true
			logging.Warn("block reservation unsupported, substituted truncate semantics",
				"column", col.Name, "bytes", note.Bytes)
		}
		report.Columns = append(report.Columns, note)
	}

	return report, nil
}

func extendColumn(col *schema.ColumnSpec, oldRows, newRows uint64, strategy Strategy, st storage.Storage) (ColumnNote, error) {
	note := ColumnNote{Column: col.Name}

	cellSize, fixed := col.CellSize()
	if !fixed {
		// The heap grows write-by-write; only the offsets index has a
		// computable size. It must read back as zero for unwritten rows,
		// so the extension is zero-filled explicitly.
		seg, err := st.Segment(IndexSegmentName(col.Name))
		if err != nil {
			return note, errs.Wrap(err, errs.CodeAllocation, "alloc.Extend")
		}
		from := int64(oldRows) * IndexEntrySize
		to := int64(newRows) * IndexEntrySize
		if err := seg.ZeroFill(from, to); err != nil {
			return note, errs.Wrap(err, errs.CodeAllocation, "alloc.Extend")
		}
		note.Bytes = to - from
		return note, nil
	}

	seg, err := st.Segment(col.Name)
	if err != nil {
		return note, errs.Wrap(err, errs.CodeAllocation, "alloc.Extend")
	}

	oldBytes := int64(oldRows) * int64(cellSize)
	newBytes := int64(newRows) * int64(cellSize)

	switch strategy {
	case LazyZeroFill:
		// No up-front action; the write path extends and zero-fills.

	case PreTruncate:
		if err := seg.Truncate(newBytes); err != nil {
			return note, errs.Wrap(fmt.Errorf("column %s: %w", col.Name, err), errs.CodeAllocation, "alloc.Extend")
		}
		note.Bytes = newBytes - oldBytes

	case PreReserve:
		res, err := seg.Reserve(oldBytes, newBytes-oldBytes)
		if err != nil {
			return note, errs.Wrap(fmt.Errorf("column %s: %w", col.Name, err), errs.CodeAllocation, "alloc.Extend")
		}
		note.Bytes = res.Bytes
		note.Substituted = res.Substituted

	default:
		return note, errs.Newf(errs.CodeAllocation, "unknown allocation strategy %d", strategy)
	}

	return note, nil
}
