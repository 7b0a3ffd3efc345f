package table

import (
	"bytes"
	"encoding/binary"

	"tablestore/pkg/errs"
	"tablestore/pkg/schema"
	"tablestore/pkg/storage/alloc"
	"tablestore/pkg/types"
)

// encodeFields serializes values into their contiguous binary form.
func encodeFields(values []types.Field) ([]byte, error) {
	var buf bytes.Buffer
	for _, v := range values {
		if err := v.Serialize(&buf); err != nil {
			return nil, errs.Wrap(err, errs.CodeStorage, "table.encodeFields")
		}
	}
	return buf.Bytes(), nil
}

// decodeFields deserializes n values of type t from data.
func decodeFields(data []byte, t types.Type, n uint32) ([]types.Field, error) {
	r := bytes.NewReader(data)
	values := make([]types.Field, 0, n)
	for i := uint32(0); i < n; i++ {
		v, err := types.ReadField(r, t)
		if err != nil {
			return nil, errs.Wrap(err, errs.CodeStorage, "table.decodeFields")
		}
		values = append(values, v)
	}
	return values, nil
}

// checkElementType verifies one value against the column's declared
// element type.
func checkElementType(spec *schema.ColumnSpec, v types.Field) error {
	if v == nil {
		return errs.Newf(errs.CodeShapeMismatch, "column %q: nil value", spec.Name)
	}
	if v.Type() != spec.Type {
		return errs.Newf(errs.CodeShapeMismatch, "column %q expects %s, got %s", spec.Name, spec.Type, v.Type())
	}
	return nil
}

// checkElementTypes verifies every value against the column's declared
// element type.
func checkElementTypes(spec *schema.ColumnSpec, values []types.Field) error {
	for _, v := range values {
		if err := checkElementType(spec, v); err != nil {
			return err
		}
	}
	return nil
}

// shapeElements returns the number of elements a shape describes. An
// empty shape describes a single element.
func shapeElements(shape []uint32) uint64 {
	n := uint64(1)
	for _, d := range shape {
		n *= uint64(d)
	}
	return n
}

// shapesEqual reports whether two shapes are identical.
func shapesEqual(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// writeFixedRange writes pre-encoded cells for startRow onward into a
// fixed-cell-size column segment. Under lazy allocation the gap between
// the segment's current end and the write offset is explicitly
// zero-filled first, so skipped cells read back as the type's zero value.
// The extension always happens before the write itself.
func (t *Table) writeFixedRange(cs *columnState, startRow uint64, data []byte) error {
	cellSize, _ := cs.spec.CellSize()
	off := int64(startRow) * int64(cellSize)

	if t.strategy == alloc.LazyZeroFill {
		size, err := cs.data.Size()
		if err != nil {
			return err
		}
		if off > size {
			if err := cs.data.ZeroFill(size, off); err != nil {
				return err
			}
		}
	}

	_, err := cs.data.WriteAt(data, off)
	return err
}

// readFixedCell reads the raw bytes of one cell from a fixed-cell-size
// column segment. Under lazy allocation a cell past the segment's current
// end was never written and reads as zeros.
func (t *Table) readFixedCell(cs *columnState, row uint64) ([]byte, error) {
	cellSize, _ := cs.spec.CellSize()
	off := int64(row) * int64(cellSize)
	buf := make([]byte, cellSize)

	if t.strategy == alloc.LazyZeroFill {
		size, err := cs.data.Size()
		if err != nil {
			return nil, err
		}
		if off+int64(cellSize) > size {
			return buf, nil
		}
	}

	if _, err := cs.data.ReadAt(buf, off); err != nil {
		return nil, errs.Wrap(err, errs.CodeStorage, "table.readFixedCell")
	}
	return buf, nil
}

// putScalarCell validates and writes one scalar cell, flushing any cached
// run for the column first so writes land in issue order.
func (t *Table) putScalarCell(cs *columnState, row uint64, v types.Field) error {
	if err := checkElementType(&cs.spec, v); err != nil {
		return err
	}
	if err := t.flushCache(cs); err != nil {
		return err
	}

	data, err := encodeFields([]types.Field{v})
	if err != nil {
		return err
	}
	return t.writeFixedRange(cs, row, data)
}

// getScalarCell reads one scalar cell.
func (t *Table) getScalarCell(cs *columnState, row uint64) (types.Field, error) {
	if err := t.flushCache(cs); err != nil {
		return nil, err
	}

	data, err := t.readFixedCell(cs, row)
	if err != nil {
		return nil, err
	}

	values, err := decodeFields(data, cs.spec.Type, 1)
	if err != nil {
		return nil, err
	}
	return values[0], nil
}

// putArrayCell validates and writes one array cell. Fixed-shape columns
// require the declared shape exactly; variable-shape columns persist the
// given shape alongside the cell.
func (t *Table) putArrayCell(cs *columnState, row uint64, shape []uint32, values []types.Field) error {
	if err := checkElementTypes(&cs.spec, values); err != nil {
		return err
	}
	if uint64(len(values)) != shapeElements(shape) {
		return errs.Newf(errs.CodeShapeMismatch, "column %q: shape %v describes %d elements, got %d",
			cs.spec.Name, shape, shapeElements(shape), len(values))
	}

	if cs.spec.Shape == schema.FixedArray {
		if !shapesEqual(shape, cs.spec.Dims) {
			return errs.Newf(errs.CodeShapeMismatch, "column %q declared shape %v, got %v",
				cs.spec.Name, cs.spec.Dims, shape)
		}
		data, err := encodeFields(values)
		if err != nil {
			return err
		}
		return t.writeFixedRange(cs, row, data)
	}

	record, err := encodeVarCell(shape, values)
	if err != nil {
		return err
	}

	// Appends to the heap and the matching index update are serialized
	// under the table lock.
	t.mu.Lock()
	defer t.mu.Unlock()

	heapOff, err := cs.data.Size()
	if err != nil {
		return err
	}
	if _, err := cs.data.WriteAt(record, heapOff); err != nil {
		return err
	}
	return writeIndexEntry(cs, row, heapOff)
}

// getArrayCell reads one array cell, returning its shape and flat
// element values. A never-written variable-shape cell reads back empty:
// nil shape and no elements.
func (t *Table) getArrayCell(cs *columnState, row uint64) ([]uint32, []types.Field, error) {
	if cs.spec.Shape == schema.FixedArray {
		data, err := t.readFixedCell(cs, row)
		if err != nil {
			return nil, nil, err
		}
		values, err := decodeFields(data, cs.spec.Type, cs.spec.ElementsPerCell())
		if err != nil {
			return nil, nil, err
		}
		shape := make([]uint32, len(cs.spec.Dims))
		copy(shape, cs.spec.Dims)
		return shape, values, nil
	}

	entry := make([]byte, alloc.IndexEntrySize)
	if _, err := cs.index.ReadAt(entry, int64(row)*alloc.IndexEntrySize); err != nil {
		return nil, nil, errs.Wrap(err, errs.CodeStorage, "table.getArrayCell")
	}

	tagged := binary.BigEndian.Uint64(entry)
	if tagged == 0 {
		return nil, nil, nil
	}
	return readVarCell(cs, int64(tagged-1))
}

// encodeVarCell builds one heap record: element count-bearing shape
// header followed by the serialized elements.
// Layout: [ndim u32][dim u32 x ndim][elements].
func encodeVarCell(shape []uint32, values []types.Field) ([]byte, error) {
	var buf bytes.Buffer

	header := make([]byte, 4+4*len(shape))
	binary.BigEndian.PutUint32(header, uint32(len(shape)))
	for i, d := range shape {
		binary.BigEndian.PutUint32(header[4+4*i:], d)
	}
	buf.Write(header)

	for _, v := range values {
		if err := v.Serialize(&buf); err != nil {
			return nil, errs.Wrap(err, errs.CodeStorage, "table.encodeVarCell")
		}
	}
	return buf.Bytes(), nil
}

// readVarCell decodes one heap record at the given offset.
func readVarCell(cs *columnState, heapOff int64) ([]uint32, []types.Field, error) {
	head := make([]byte, 4)
	if _, err := cs.data.ReadAt(head, heapOff); err != nil {
		return nil, nil, errs.Wrap(err, errs.CodeStorage, "table.readVarCell")
	}
	ndim := binary.BigEndian.Uint32(head)

	shape := make([]uint32, ndim)
	if ndim > 0 {
		dims := make([]byte, 4*ndim)
		if _, err := cs.data.ReadAt(dims, heapOff+4); err != nil {
			return nil, nil, errs.Wrap(err, errs.CodeStorage, "table.readVarCell")
		}
		for i := range shape {
			shape[i] = binary.BigEndian.Uint32(dims[4*i:])
		}
	}

	n := shapeElements(shape)
	data := make([]byte, n*uint64(cs.spec.Type.Size()))
	if n > 0 {
		if _, err := cs.data.ReadAt(data, heapOff+4+int64(4*ndim)); err != nil {
			return nil, nil, errs.Wrap(err, errs.CodeStorage, "table.readVarCell")
		}
	}

	values, err := decodeFields(data, cs.spec.Type, uint32(n))
	if err != nil {
		return nil, nil, err
	}
	return shape, values, nil
}

// writeIndexEntry records a cell's heap offset in the column's offsets
// index. Offsets are stored plus one so a zero entry means "never
// written".
func writeIndexEntry(cs *columnState, row uint64, heapOff int64) error {
	entry := make([]byte, alloc.IndexEntrySize)
	binary.BigEndian.PutUint64(entry, uint64(heapOff)+1)
	_, err := cs.index.WriteAt(entry, int64(row)*alloc.IndexEntrySize)
	return err
}
