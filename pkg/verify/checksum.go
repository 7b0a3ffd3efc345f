package verify

import (
	"tablestore/pkg/errs"
	"tablestore/pkg/schema"
	"tablestore/pkg/table"
)

// cellReader folds one column's cell at a row into a float64 contribution.
type cellReader func(row uint64) (float64, error)

// Checksum reads back every cell of the table and folds it into a single
// float64: rows in ascending order, columns in descriptor order within
// each row, each element contributing through its Sum value. Two tables
// that hold the same data produce the same checksum no matter which write
// strategy filled them.
func Checksum(t *table.Table) (float64, error) {
	desc := t.Descriptor()

	readers := make([]cellReader, 0, desc.NumColumns())
	for _, spec := range desc.Columns() {
		r, err := readerFor(t, spec)
		if err != nil {
			return 0, err
		}
		readers = append(readers, r)
	}

	var sum float64
	for row := uint64(0); row < t.RowCount(); row++ {
		for _, read := range readers {
			v, err := read(row)
			if err != nil {
				return 0, errs.Wrap(err, errs.CodeStorage, "verify.Checksum")
			}
			sum += v
		}
	}
	return sum, nil
}

func readerFor(t *table.Table, spec schema.ColumnSpec) (cellReader, error) {
	if spec.Shape == schema.Scalar {
		col, err := t.ScalarColumn(spec.Name)
		if err != nil {
			return nil, err
		}
		return func(row uint64) (float64, error) {
			v, err := col.Get(row)
			if err != nil {
				return 0, err
			}
			return v.Sum(), nil
		}, nil
	}

	col, err := t.ArrayColumn(spec.Name)
	if err != nil {
		return nil, err
	}
	return func(row uint64) (float64, error) {
		_, values, err := col.Get(row)
		if err != nil {
			return 0, err
		}
		var cell float64
		for _, v := range values {
			cell += v.Sum()
		}
		return cell, nil
	}, nil
}
