package primitives

// FileID uniquely identifies a backing storage unit, derived from hashing
// its path. Deterministic: the same path always maps to the same ID.
type FileID uint64

// RowIndex is a zero-based row position within a table.
type RowIndex uint64

// ColumnID identifies a column by its position in the table descriptor.
type ColumnID uint32

// ByteOffset is a byte position within a storage segment.
type ByteOffset int64

// InvalidFileID represents an invalid or unset file ID.
const InvalidFileID FileID = 0
