// Package table binds a column schema to backing storage and exposes the
// three write granularities the engine supports: per-cell puts, per-row
// commits and whole-column bulk writes. One logical writer drives a table
// between Create and Close; readers of a fully written table are safe.
package table

import (
	"sync"

	"tablestore/pkg/errs"
	"tablestore/pkg/logging"
	"tablestore/pkg/schema"
	"tablestore/pkg/storage"
	"tablestore/pkg/storage/alloc"
)

// columnState is the per-column runtime state: the spec, the data
// segment, the offsets index for variable-shape columns, and the
// write-combining cache for cached scalar puts.
type columnState struct {
	spec  schema.ColumnSpec
	data  storage.Segment
	index storage.Segment // variable-shape columns only
	cache runCache        // scalar columns only
}

// Table owns one open backing storage unit, its descriptor and the
// current row count. Lifecycle: Created -> Open -> Closed, with no
// transition back from Closed.
type Table struct {
	desc     *schema.TableDescriptor
	st       storage.Storage
	strategy alloc.Strategy

	mu     sync.RWMutex
	rows   uint64
	cols   map[string]*columnState
	order  []*columnState
	closed bool
	remove bool
}

// Create binds a descriptor to a storage unit, reserves space for the
// initial row count under the given allocation strategy and returns the
// open table.
//
// The allocator's extension step happens before any write; this ordering
// is preserved again on every AddRows call.
func Create(desc *schema.TableDescriptor, st storage.Storage, initialRows uint64, strategy alloc.Strategy) (*Table, error) {
	if desc == nil {
		return nil, errs.New(errs.CodeSchema, "table descriptor cannot be nil")
	}

	t := &Table{
		desc:     desc,
		st:       st,
		strategy: strategy,
		cols:     make(map[string]*columnState, desc.NumColumns()),
	}

	for _, spec := range desc.Columns() {
		cs := &columnState{spec: spec}

		data, err := st.Segment(spec.Name)
		if err != nil {
			return nil, err
		}
		cs.data = data

		if spec.Shape == schema.VariableArray {
			index, err := st.Segment(alloc.IndexSegmentName(spec.Name))
			if err != nil {
				return nil, err
			}
			cs.index = index
		}

		t.cols[spec.Name] = cs
		t.order = append(t.order, cs)
	}

	report, err := alloc.Prepare(desc, initialRows, strategy, st)
	if err != nil {
		return nil, err
	}
	t.rows = initialRows

	logging.Info("table created",
		"columns", desc.NumColumns(),
		"rows", initialRows,
		"allocation", strategy.String(),
		"bytes_reserved", report.BytesRequested,
		"substituted", report.Substituted)

	return t, nil
}

// Descriptor returns the table's immutable column descriptor.
func (t *Table) Descriptor() *schema.TableDescriptor {
	return t.desc
}

// RowCount returns the current number of rows.
func (t *Table) RowCount() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rows
}

// AllocationStrategy returns the strategy the table was created with.
func (t *Table) AllocationStrategy() alloc.Strategy {
	return t.strategy
}

// AddRows appends n rows, re-invoking the allocator's extension logic for
// the delta only. Previously written cells are preserved.
//
// Returns:
//   - uint64: the updated row count
//   - error: with code UseAfterClose on a closed table, or an allocation
//     failure
func (t *Table) AddRows(n uint64) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, errs.New(errs.CodeUseAfterClose, "table is closed")
	}
	if n == 0 {
		return t.rows, nil
	}

	if _, err := alloc.Extend(t.desc, t.rows, t.rows+n, t.strategy, t.st); err != nil {
		return t.rows, err
	}

	t.rows += n
	logging.Debug("rows added", "delta", n, "rows", t.rows)
	return t.rows, nil
}

// ScalarColumn returns a typed accessor for the named scalar column. The
// accessor is a non-owning view, valid only while the table is open.
func (t *Table) ScalarColumn(name string) (*ScalarColumn, error) {
	cs, err := t.lookup("table.ScalarColumn", name)
	if err != nil {
		return nil, err
	}
	if cs.spec.Shape != schema.Scalar {
		return nil, errs.Newf(errs.CodeShapeMismatch, "column %q is %s, not scalar", name, cs.spec.Shape)
	}
	return &ScalarColumn{t: t, cs: cs}, nil
}

// ArrayColumn returns a typed accessor for the named fixed- or
// variable-shape array column.
func (t *Table) ArrayColumn(name string) (*ArrayColumn, error) {
	cs, err := t.lookup("table.ArrayColumn", name)
	if err != nil {
		return nil, err
	}
	if cs.spec.Shape == schema.Scalar {
		return nil, errs.Newf(errs.CodeShapeMismatch, "column %q is scalar, not an array column", name)
	}
	return &ArrayColumn{t: t, cs: cs}, nil
}

// Row starts a row-wise write for the given index. Every declared column
// must be set before Commit.
func (t *Table) Row(index uint64) (*RowBuilder, error) {
	if err := t.checkOpen("table.Row"); err != nil {
		return nil, err
	}
	if err := t.boundsCheck(index); err != nil {
		return nil, err
	}

	return &RowBuilder{
		t:     t,
		row:   index,
		cells: make(map[string]*pendingCell, t.desc.NumColumns()),
	}, nil
}

// MarkForDelete arranges for the backing storage to be removed when the
// table is closed. Benchmark tables are scratch data.
func (t *Table) MarkForDelete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remove = true
}

// Close flushes cached writes, syncs every segment and releases the
// storage unit. All previously issued accessors become invalid; further
// use fails with a UseAfterClose-coded error. Safe to call more than
// once.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	var firstErr error
	for _, cs := range t.order {
		if err := t.flushCache(cs); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := cs.data.Sync(); err != nil && firstErr == nil {
			firstErr = err
		}
		if cs.index != nil {
			if err := cs.index.Sync(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	t.closed = true

	var err error
	if t.remove {
		err = t.st.Remove()
	} else {
		err = t.st.Close()
	}
	if err != nil && firstErr == nil {
		firstErr = err
	}

	logging.Info("table closed", "rows", t.rows, "removed", t.remove)
	return firstErr
}

// checkOpen fails with a UseAfterClose-coded error when the table has
// been closed.
func (t *Table) checkOpen(op string) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		err := errs.New(errs.CodeUseAfterClose, "table is closed")
		err.Op = op
		return err
	}
	return nil
}

// boundsCheck fails with an Index-coded error when row is at or beyond
// the current row count.
func (t *Table) boundsCheck(row uint64) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if row >= t.rows {
		return errs.Newf(errs.CodeIndex, "row %d out of range [0, %d)", row, t.rows)
	}
	return nil
}

// lookup resolves a column by name on an open table.
func (t *Table) lookup(op, name string) (*columnState, error) {
	if err := t.checkOpen(op); err != nil {
		return nil, err
	}

	cs, ok := t.cols[name]
	if !ok {
		return nil, errs.Newf(errs.CodeNotFound, "column %q not found", name)
	}
	return cs, nil
}
