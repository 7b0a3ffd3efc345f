//go:build linux

package storage

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// errReserveUnsupported signals that the medium has no usable
// block-reservation primitive and the caller must substitute truncate
// semantics.
var errReserveUnsupported = errors.New("block reservation unsupported")

// reserveSpace commits physical blocks for [off, off+length) with
// fallocate, extending the file size to cover the range. Filesystems
// without fallocate support report errReserveUnsupported.
func reserveSpace(f *os.File, off, length int64) error {
	err := unix.Fallocate(int(f.Fd()), 0, off, length)
	if err == nil {
		return nil
	}
	if errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.ENOSYS) || errors.Is(err, unix.EINVAL) {
		return errReserveUnsupported
	}
	return err
}
