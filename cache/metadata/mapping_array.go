package metadata

import (
	"fmt"

	"github.com/joshuapare/cachekit/internal/format"
)

// EntriesPerBlock is how many mapping slots each array block holds.
const EntriesPerBlock = format.MaxArrayEntries

// MappingArray gives block-level access to the on-disk mapping array: a
// btree indexed by array-block number whose leaves point at array blocks.
// It does no traversal of its own.
type MappingArray struct {
	r    BlockReader
	root uint64
	size uint32
}

func newMappingArray(r BlockReader, root uint64, size uint32) *MappingArray {
	return &MappingArray{r: r, root: root, size: size}
}

// Root returns the block address of the btree root.
func (a *MappingArray) Root() uint64 { return a.root }

// Len returns the number of slots, equal to the superblock's cache block count.
func (a *MappingArray) Len() uint64 { return uint64(a.size) }

// NrArrayBlocks returns how many array blocks a complete array has.
func (a *MappingArray) NrArrayBlocks() uint64 {
	return (a.Len() + EntriesPerBlock - 1) / EntriesPerBlock
}

// DeviceBlocks returns the size of the underlying device in blocks.
func (a *MappingArray) DeviceBlocks() uint64 { return a.r.NrBlocks() }

// BlockRange returns the half-open slot range covered by array block k,
// clipped to Len.
func (a *MappingArray) BlockRange(k uint64) (begin, end uint64) {
	begin = k * EntriesPerBlock
	end = min(begin+EntriesPerBlock, a.Len())
	return min(begin, a.Len()), end
}

// ReadNode reads and validates the btree node at location.
func (a *MappingArray) ReadNode(location uint64) (format.Node, error) {
	b, err := a.r.ReadBlock(location)
	if err != nil {
		return format.Node{}, err
	}
	return format.ParseNode(b, location)
}

// ReadArrayBlock reads and validates the array block at location.
func (a *MappingArray) ReadArrayBlock(location uint64) (format.ArrayBlock, error) {
	b, err := a.r.ReadBlock(location)
	if err != nil {
		return format.ArrayBlock{}, err
	}
	ab, err := format.ParseArrayBlock(b, location)
	if err != nil {
		return format.ArrayBlock{}, err
	}
	if ab.MaxEntries != EntriesPerBlock {
		return format.ArrayBlock{}, fmt.Errorf("array block %d: %w: max entries %d, want %d",
			location, format.ErrBadHeader, ab.MaxEntries, EntriesPerBlock)
	}
	return ab, nil
}
