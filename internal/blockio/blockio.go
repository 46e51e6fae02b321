// Package blockio provides read-only, block-granular access to a metadata
// device or image file.
package blockio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joshuapare/cachekit/internal/format"
)

var (
	// ErrOutOfRange indicates a block address past the end of the device.
	ErrOutOfRange = errors.New("blockio: block address out of range")
	// ErrClosed indicates a read after Close.
	ErrClosed = errors.New("blockio: manager closed")
	// ErrUnreadable indicates a mapped block whose pages could not be faulted
	// in, as happens when the file shrank or the device returned an I/O error.
	ErrUnreadable = errors.New("blockio: block unreadable")
)

// Manager reads fixed-size metadata blocks by address. It never writes.
type Manager struct {
	path     string
	f        *os.File
	data     []byte // mapped contents, nil when reads go through ReadAt
	unmap    func() error
	nrBlocks uint64
	closed   bool
}

// Open opens path read-only. Regular files and block devices are both
// accepted; a trailing partial block is ignored.
func Open(path string) (*Manager, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	size, err := deviceSize(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("blockio: size of %s: %w", path, err)
	}

	m := &Manager{
		path:     path,
		f:        f,
		nrBlocks: uint64(size) / format.BlockSize,
	}

	if m.nrBlocks > 0 {
		data, unmap, mapErr := mapReadOnly(f, m.nrBlocks*format.BlockSize)
		if mapErr == nil {
			m.data = data
			m.unmap = unmap
		}
		// A failed mapping is not fatal; reads fall back to ReadAt.
	}
	return m, nil
}

// NrBlocks returns the number of whole blocks on the device.
func (m *Manager) NrBlocks() uint64 { return m.nrBlocks }

// ReadBlock returns a copy of block b. Faults while reading a mapped block
// are returned as ErrUnreadable.
func (m *Manager) ReadBlock(b uint64) ([]byte, error) {
	if m.closed {
		return nil, ErrClosed
	}
	if b >= m.nrBlocks {
		return nil, fmt.Errorf("%w: block %d, device has %d", ErrOutOfRange, b, m.nrBlocks)
	}
	off := b * format.BlockSize
	if m.data != nil {
		return m.readMapped(b, m.data[off:off+format.BlockSize])
	}

	out := make([]byte, format.BlockSize)
	if _, err := m.f.ReadAt(out, int64(off)); err != nil {
		return nil, fmt.Errorf("blockio: read %s block %d: %w", m.path, b, err)
	}
	return out, nil
}

// Close releases the mapping and the file handle. It is safe to call twice.
func (m *Manager) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true

	var errs []error
	if m.unmap != nil {
		errs = append(errs, m.unmap())
		m.data = nil
	}
	errs = append(errs, m.f.Close())
	return errors.Join(errs...)
}

// deviceSize works for block devices, where Stat reports a zero size.
func deviceSize(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if info.Mode().IsRegular() {
		return info.Size(), nil
	}
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return size, nil
}
