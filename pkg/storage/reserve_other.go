//go:build !linux

package storage

import (
	"errors"
	"os"
)

var errReserveUnsupported = errors.New("block reservation unsupported")

// reserveSpace has no portable implementation off Linux; callers
// substitute truncate semantics and report the substitution.
func reserveSpace(*os.File, int64, int64) error {
	return errReserveUnsupported
}
