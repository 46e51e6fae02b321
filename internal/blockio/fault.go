package blockio

import (
	"fmt"
	"runtime/debug"

	"github.com/joshuapare/cachekit/internal/format"
)

// readMapped copies src, the mapping of block b, into a fresh buffer. A page
// that cannot be faulted in would otherwise raise SIGBUS and kill the process;
// here it becomes ErrUnreadable so the caller can classify the block as damaged.
func (m *Manager) readMapped(b uint64, src []byte) (out []byte, err error) {
	// Strategy 1: MADV_POPULATE_READ reports the fault as EFAULT.
	if perr := populate(src); perr != nil {
		return nil, fmt.Errorf("%w: %s block %d: %w", ErrUnreadable, m.path, b, perr)
	}

	// Strategy 2: touch the pages with panic-on-fault enabled and recover.
	defer debug.SetPanicOnFault(debug.SetPanicOnFault(true))
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %s block %d: %v", ErrUnreadable, m.path, b, r)
		}
	}()

	out = make([]byte, format.BlockSize)
	copy(out, src)
	return out, nil
}
