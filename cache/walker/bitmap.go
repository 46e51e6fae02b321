package walker

const bitsPerUint64 = 64

// Bitmap tracks which metadata blocks a walk has already read, so a btree
// that points back into itself, or two leaves sharing an array block, are
// caught instead of looping or emitting slots twice.
type Bitmap struct {
	bits []uint64
	size uint64 // number of blocks tracked
}

// NewBitmap creates a bitmap for a device of nrBlocks blocks.
func NewBitmap(nrBlocks uint64) *Bitmap {
	return &Bitmap{
		bits: make([]uint64, (nrBlocks+bitsPerUint64-1)/bitsPerUint64),
		size: nrBlocks,
	}
}

// Set marks block b. Out-of-range addresses are ignored.
func (bm *Bitmap) Set(b uint64) {
	if b >= bm.size {
		return
	}
	bm.bits[b/bitsPerUint64] |= 1 << (b % bitsPerUint64)
}

// IsSet reports whether block b was marked. Out-of-range addresses report false.
func (bm *Bitmap) IsSet(b uint64) bool {
	if b >= bm.size {
		return false
	}
	return bm.bits[b/bitsPerUint64]&(1<<(b%bitsPerUint64)) != 0
}
