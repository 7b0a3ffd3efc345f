package primitives

import "hash/fnv"

// Filepath is an absolute or relative path to a backing storage file or
// directory. Hashing it yields the stable identity of the storage unit.
type Filepath string

// Hash derives the FileID for this path using FNV-1a.
// The same path always produces the same ID.
func (f Filepath) Hash() FileID {
	h := fnv.New64a()
	h.Write([]byte(f))
	return FileID(h.Sum64())
}
