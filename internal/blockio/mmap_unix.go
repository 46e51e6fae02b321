//go:build linux || darwin || freebsd || netbsd || openbsd

package blockio

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mapReadOnly maps the first size bytes of f with PROT_READ.
func mapReadOnly(f *os.File, size uint64) ([]byte, func() error, error) {
	if size > uint64(^uint(0)>>1) {
		return nil, nil, fmt.Errorf("blockio: device too large to map (%d bytes)", size)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	// The walk reads array blocks roughly in address order.
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)

	cleanup := func() error {
		err := unix.Munmap(data)
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		return err
	}
	return data, cleanup, nil
}
