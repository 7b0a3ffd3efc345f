package table

// runCache coalesces consecutive cached cell puts into one pending
// contiguous run, so a row-ascending cell writer issues one storage write
// per run instead of one per cell. A put that breaks the run flushes the
// pending one and starts fresh.
type runCache struct {
	buf    []byte
	start  uint64 // first row of the pending run
	next   uint64 // row the next append must target
	active bool
}

// append adds one encoded cell to the cache, reporting whether it could
// be coalesced. When it returns false the caller must flush and retry.
func (c *runCache) append(row uint64, cell []byte) bool {
	if c.active && row != c.next {
		return false
	}

	if !c.active {
		c.start = row
		c.buf = c.buf[:0]
		c.active = true
	}
	c.buf = append(c.buf, cell...)
	c.next = row + 1
	return true
}

// flushCache writes the column's pending run, if any, and resets the
// cache.
func (t *Table) flushCache(cs *columnState) error {
	if !cs.cache.active {
		return nil
	}

	start, data := cs.cache.start, cs.cache.buf
	cs.cache.active = false

	if len(data) == 0 {
		return nil
	}
	return t.writeFixedRange(cs, start, data)
}
