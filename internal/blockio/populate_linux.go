//go:build linux

package blockio

import (
	"errors"

	"golang.org/x/sys/unix"
)

// populate pre-faults b with MADV_POPULATE_READ (Linux 5.14+). Kernels
// without it, or pages that are not aligned for it, fall through to the
// recover path.
func populate(b []byte) error {
	err := unix.Madvise(b, unix.MADV_POPULATE_READ)
	if errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOSYS) {
		return nil
	}
	return err
}
