//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package blockio

import (
	"errors"
	"os"
)

// mapReadOnly is unavailable here; the Manager reads through ReadAt instead.
func mapReadOnly(*os.File, uint64) ([]byte, func() error, error) {
	return nil, nil, errors.New("blockio: mmap not supported on this platform")
}
