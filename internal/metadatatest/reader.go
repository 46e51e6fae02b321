package metadatatest

import (
	"errors"
	"fmt"
)

// ErrInjected is returned for blocks marked with Reader.Fail.
var ErrInjected = errors.New("metadatatest: injected I/O error")

// Reader serves an Image from memory and can fail chosen blocks.
type Reader struct {
	img    *Image
	fail   map[uint64]bool
	reads  []uint64
	closed bool
}

// NewReader returns a reader over img.
func NewReader(img *Image) *Reader {
	return &Reader{img: img, fail: make(map[uint64]bool)}
}

// Fail makes every read of block loc return ErrInjected.
func (r *Reader) Fail(loc uint64) *Reader {
	r.fail[loc] = true
	return r
}

// ReadBlock implements the block reader used by the metadata package.
func (r *Reader) ReadBlock(b uint64) ([]byte, error) {
	r.reads = append(r.reads, b)
	if r.fail[b] {
		return nil, fmt.Errorf("block %d: %w", b, ErrInjected)
	}
	if b >= uint64(len(r.img.Blocks)) {
		return nil, fmt.Errorf("block %d beyond image of %d blocks", b, len(r.img.Blocks))
	}
	out := make([]byte, len(r.img.Blocks[b]))
	copy(out, r.img.Blocks[b])
	return out, nil
}

// NrBlocks returns the image size in blocks.
func (r *Reader) NrBlocks() uint64 { return uint64(len(r.img.Blocks)) }

// Reads returns every block address read so far, in order.
func (r *Reader) Reads() []uint64 { return r.reads }

// Close marks the reader closed.
func (r *Reader) Close() error {
	r.closed = true
	return nil
}

// Closed reports whether Close was called.
func (r *Reader) Closed() bool { return r.closed }
