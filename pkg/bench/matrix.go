package bench

import (
	"context"

	"golang.org/x/sync/errgroup"

	"tablestore/pkg/storage/alloc"
	"tablestore/pkg/table"
)

// WriteStrategies lists every write granularity the matrix covers, in
// report order.
var WriteStrategies = []table.WriteStrategy{
	table.CellPut, table.RowPut, table.ColumnBulkPut,
}

// AllocStrategies lists every allocation strategy the matrix covers.
var AllocStrategies = []alloc.Strategy{
	alloc.LazyZeroFill, alloc.PreTruncate, alloc.PreReserve,
}

// RunMatrix runs every write x allocation combination and returns the
// results in report order. The first failing run cancels the rest.
//
// Runs execute one at a time: the I/O counters are process-wide, so
// overlapping runs would bleed into each other's deltas.
func RunMatrix(ctx context.Context, cfg Config) ([]Result, error) {
	results := make([]Result, len(WriteStrategies)*len(AllocStrategies))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(1)

	for i, write := range WriteStrategies {
		for j, strategy := range AllocStrategies {
			slot := i*len(AllocStrategies) + j
			write, strategy := write, strategy
			g.Go(func() error {
				res, err := Run(ctx, cfg, write, strategy)
				if err != nil {
					return err
				}
				results[slot] = res
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
