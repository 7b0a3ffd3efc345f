// Package storage provides the byte-addressable backing store a table
// writes into: growable segments handed out by a Storage unit, one
// segment per column region. The engine never chooses filesystem paths;
// callers construct the Storage and the engine asks it for named
// segments.
package storage

import "io"

// Reservation reports the outcome of a block-reservation request. When
// the underlying medium does not support a reservation primitive, the
// request is satisfied with truncate semantics instead and Substituted is
// set — the substitution is reported, never silent.
type Reservation struct {
	Bytes       int64
	Substituted bool
}

// Segment is one open, seekable, growable byte sink. Writes may land at
// any offset; the segment grows to cover them. All implementations are
// safe for one writer with concurrent readers.
type Segment interface {
	io.ReaderAt
	io.WriterAt

	// Size returns the current length of the segment in bytes.
	Size() (int64, error)

	// Truncate sets the segment length. Extending leaves the new region
	// with whatever content the medium defines for truncation-extended
	// ranges; this engine documents it as implementation-defined.
	Truncate(size int64) error

	// Reserve commits physical space for [off, off+length) without
	// mandating zero-fill. Content of reserved-but-unwritten ranges is
	// undefined until written.
	Reserve(off, length int64) (Reservation, error)

	// ZeroFill explicitly writes zeros over [from, to), extending the
	// segment if needed. Used by lazy allocation to guarantee that
	// unwritten cells read back as zero.
	ZeroFill(from, to int64) error

	// Sync flushes buffered writes to the medium.
	Sync() error

	// Close releases the segment. Further use fails.
	Close() error
}

// Storage is one backing storage unit for one table: a set of named
// segments with a common lifetime.
type Storage interface {
	// Segment opens (creating if needed) the segment with the given name.
	// Repeated calls with one name return the same segment.
	Segment(name string) (Segment, error)

	// Close flushes and releases every segment handed out.
	Close() error

	// Remove closes the unit and deletes its contents from the medium.
	Remove() error
}
