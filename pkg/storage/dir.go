package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"tablestore/pkg/errs"
	"tablestore/pkg/primitives"
)

// Dir is a Storage unit backed by one directory, holding one file per
// segment. The caller chooses the directory; segment names map to file
// names inside it.
type Dir struct {
	path primitives.Filepath
	mu   sync.Mutex
	segs map[string]*FileSegment
}

// NewDir creates the directory if needed and wraps it as a Storage unit.
func NewDir(path primitives.Filepath) (*Dir, error) {
	if path == "" {
		return nil, errs.New(errs.CodeStorage, "storage directory cannot be empty")
	}

	if err := os.MkdirAll(string(path), 0o755); err != nil {
		return nil, errs.Wrap(fmt.Errorf("failed to create storage directory %s: %w", path, err), errs.CodeStorage, "storage.NewDir")
	}

	return &Dir{
		path: path,
		segs: make(map[string]*FileSegment),
	}, nil
}

// Path returns the directory backing this storage unit.
func (d *Dir) Path() primitives.Filepath {
	return d.path
}

// FileID returns the stable identity of this storage unit, derived from
// its path.
func (d *Dir) FileID() primitives.FileID {
	return d.path.Hash()
}

// Segment opens the named segment, creating its file on first use.
// Repeated calls return the same segment instance.
func (d *Dir) Segment(name string) (Segment, error) {
	if name == "" {
		return nil, errs.New(errs.CodeStorage, "segment name cannot be empty")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.segs == nil {
		return nil, errs.New(errs.CodeStorage, "storage unit is closed")
	}

	if seg, ok := d.segs[name]; ok {
		return seg, nil
	}

	seg, err := OpenFileSegment(primitives.Filepath(filepath.Join(string(d.path), name)))
	if err != nil {
		return nil, err
	}
	d.segs[name] = seg
	return seg, nil
}

// Close closes every segment handed out. Safe to call more than once.
func (d *Dir) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closeLocked()
}

// Remove closes the unit and deletes the directory and everything in it.
func (d *Dir) Remove() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.closeLocked(); err != nil {
		return err
	}
	if err := os.RemoveAll(string(d.path)); err != nil {
		return errs.Wrap(err, errs.CodeStorage, "storage.Remove")
	}
	return nil
}

func (d *Dir) closeLocked() error {
	if d.segs == nil {
		return nil
	}

	var firstErr error
	for _, seg := range d.segs {
		if err := seg.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	d.segs = nil
	return firstErr
}
