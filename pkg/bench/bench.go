// Package bench fills identically shaped tables through every write and
// allocation strategy combination, verifies that they agree on content
// and reports how many storage I/O calls each combination issued.
package bench

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"tablestore/pkg/errs"
	"tablestore/pkg/logging"
	"tablestore/pkg/metrics"
	"tablestore/pkg/primitives"
	"tablestore/pkg/schema"
	"tablestore/pkg/storage"
	"tablestore/pkg/storage/alloc"
	"tablestore/pkg/table"
	"tablestore/pkg/types"
	"tablestore/pkg/verify"
)

// Config holds the parameters shared by every run of a benchmark matrix.
type Config struct {
	DataDir       string // parent directory for per-run table directories
	Rows          uint64
	ScalarColumns int
	KeepTables    bool // keep run directories instead of removing them on close
}

func (c Config) withDefaults() Config {
	if c.Rows == 0 {
		c.Rows = 1000
	}
	if c.ScalarColumns == 0 {
		c.ScalarColumns = 3
	}
	if c.DataDir == "" {
		c.DataDir = "."
	}
	return c
}

// Result captures one strategy combination's run: how long the fill took,
// the I/O calls it issued and whether the read-back checksum matched the
// closed form for the fill pattern.
type Result struct {
	Write    table.WriteStrategy
	Alloc    alloc.Strategy
	Rows     uint64
	Elapsed  time.Duration
	Checksum float64
	Expected float64
	Verified bool
	IO       metrics.Snapshot
	Path     string // empty unless the table was kept
}

// WriteCalls returns the number of data-moving write calls the run
// issued, the headline number a strategy comparison is about.
func (r Result) WriteCalls() float64 {
	return r.IO.Calls[metrics.OpWrite]
}

func scalarName(i int) string {
	return fmt.Sprintf("COL_%d", i)
}

// buildDescriptor declares the standard benchmark table: n Float64 scalar
// columns plus a 3-element fixed-shape coordinate column.
func buildDescriptor(scalarCols int) (*schema.TableDescriptor, error) {
	b := schema.NewBuilder()
	for c := 0; c < scalarCols; c++ {
		b.AddScalar(scalarName(c), types.Float64Type)
	}
	b.AddFixedArray("UVW", types.Float64Type, 3).
		WithComment("antenna baseline coordinates")
	return b.Build()
}

// cellValue is the fill pattern for scalar column c at row r. Chosen so
// every cell is distinct and the table checksum has a closed form.
func cellValue(c int, r uint64) float64 {
	return float64(c)*1000 + float64(r)
}

func uvwValues(r uint64) []types.Field {
	f := float64(r)
	return []types.Field{
		types.NewFloat64Field(0.1 * f),
		types.NewFloat64Field(0.2 * f),
		types.NewFloat64Field(0.3 * f),
	}
}

// ExpectedChecksum is the closed form of the table checksum for the
// standard fill pattern.
func ExpectedChecksum(scalarCols int, rows uint64) float64 {
	var sum float64
	for c := 0; c < scalarCols; c++ {
		for r := uint64(0); r < rows; r++ {
			sum += cellValue(c, r)
		}
	}
	for r := uint64(0); r < rows; r++ {
		sum += 0.6 * float64(r)
	}
	return sum
}

// Run fills one table with the given strategy combination, verifies it
// and returns the measurement. Each run gets its own directory under
// cfg.DataDir, removed on close unless cfg.KeepTables is set.
func Run(ctx context.Context, cfg Config, write table.WriteStrategy, strategy alloc.Strategy) (Result, error) {
	cfg = cfg.withDefaults()

	res := Result{
		Write:    write,
		Alloc:    strategy,
		Rows:     cfg.Rows,
		Expected: ExpectedChecksum(cfg.ScalarColumns, cfg.Rows),
	}

	desc, err := buildDescriptor(cfg.ScalarColumns)
	if err != nil {
		return res, err
	}

	dir := filepath.Join(cfg.DataDir, "run-"+uuid.NewString())
	st, err := storage.NewDir(primitives.Filepath(dir))
	if err != nil {
		return res, err
	}

	tbl, err := table.Create(desc, st, cfg.Rows, strategy)
	if err != nil {
		return res, err
	}
	if !cfg.KeepTables {
		tbl.MarkForDelete()
	} else {
		res.Path = dir
	}

	logging.Info("benchmark run started",
		"write", write.String(), "allocation", strategy.String(),
		"rows", cfg.Rows, "dir", dir)

	before := metrics.Take()
	start := time.Now()

	if err := fill(ctx, tbl, cfg, write); err != nil {
		_ = tbl.Close()
		return res, err
	}

	res.Elapsed = time.Since(start)
	res.IO = metrics.Take().Delta(before)

	res.Checksum, err = verify.Checksum(tbl)
	if err != nil {
		_ = tbl.Close()
		return res, err
	}
	res.Verified = math.Abs(res.Checksum-res.Expected) <= 1e-6*math.Max(1, math.Abs(res.Expected))

	if err := tbl.Close(); err != nil {
		return res, err
	}
	if !res.Verified {
		return res, errs.Newf(errs.CodeStorage, "%s/%s: checksum %v does not match expected %v",
			write, strategy, res.Checksum, res.Expected)
	}

	logging.Info("benchmark run finished",
		"write", write.String(), "allocation", strategy.String(),
		"elapsed", res.Elapsed.String(), "write_calls", res.WriteCalls())
	return res, nil
}

// fill writes the full standard pattern through the selected granularity.
func fill(ctx context.Context, tbl *table.Table, cfg Config, write table.WriteStrategy) error {
	switch write {
	case table.ColumnBulkPut:
		return fillColumnBulk(ctx, tbl, cfg)
	case table.RowPut:
		return fillRowWise(ctx, tbl, cfg)
	default:
		return fillCellWise(ctx, tbl, cfg)
	}
}

func fillColumnBulk(ctx context.Context, tbl *table.Table, cfg Config) error {
	for c := 0; c < cfg.ScalarColumns; c++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		col, err := tbl.ScalarColumn(scalarName(c))
		if err != nil {
			return err
		}
		values := make([]types.Field, cfg.Rows)
		for r := range values {
			values[r] = types.NewFloat64Field(cellValue(c, uint64(r)))
		}
		if err := col.PutAll(values); err != nil {
			return err
		}
	}

	col, err := tbl.ArrayColumn("UVW")
	if err != nil {
		return err
	}
	rows := make([][]types.Field, cfg.Rows)
	for r := range rows {
		rows[r] = uvwValues(uint64(r))
	}
	return col.PutAll([]uint32{3}, rows)
}

func fillRowWise(ctx context.Context, tbl *table.Table, cfg Config) error {
	for r := uint64(0); r < cfg.Rows; r++ {
		if r%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		rb, err := tbl.Row(r)
		if err != nil {
			return err
		}
		for c := 0; c < cfg.ScalarColumns; c++ {
			if err := rb.Set(scalarName(c), types.NewFloat64Field(cellValue(c, r))); err != nil {
				return err
			}
		}
		if err := rb.SetArray("UVW", []uint32{3}, uvwValues(r)); err != nil {
			return err
		}
		if err := rb.Commit(); err != nil {
			return err
		}
	}
	return nil
}

func fillCellWise(ctx context.Context, tbl *table.Table, cfg Config) error {
	for c := 0; c < cfg.ScalarColumns; c++ {
		col, err := tbl.ScalarColumn(scalarName(c))
		if err != nil {
			return err
		}
		for r := uint64(0); r < cfg.Rows; r++ {
			if r%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			if err := col.Put(r, types.NewFloat64Field(cellValue(c, r))); err != nil {
				return err
			}
		}
	}

	col, err := tbl.ArrayColumn("UVW")
	if err != nil {
		return err
	}
	for r := uint64(0); r < cfg.Rows; r++ {
		if err := col.Put(r, []uint32{3}, uvwValues(r)); err != nil {
			return err
		}
	}
	return nil
}
