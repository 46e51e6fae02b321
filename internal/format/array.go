package format

import (
	"fmt"

	"github.com/joshuapare/cachekit/internal/buf"
)

// ArrayBlock is a decoded block of the mapping array.
type ArrayBlock struct {
	MaxEntries uint32
	NrEntries  uint32
	ValueSize  uint32
	BlockNr    uint64

	data []byte
}

// Entry returns the i-th slot. ok is false when i is past NrEntries.
func (a *ArrayBlock) Entry(i int) (m Mapping, ok bool) {
	if i < 0 || i >= int(a.NrEntries) {
		return Mapping{}, false
	}
	return UnpackMapping(buf.U64LE(a.data[ArrayHeaderSize+i*MappingSize:])), true
}

// ParseArrayBlock validates the array block stored in b, which was read from
// block location. Any failure means none of the block's slots can be trusted.
func ParseArrayBlock(b []byte, location uint64) (ArrayBlock, error) {
	if len(b) < BlockSize {
		return ArrayBlock{}, fmt.Errorf("array block %d: %w", location, ErrTruncated)
	}
	if err := VerifyChecksum(b[:BlockSize], ArrayCsumXor); err != nil {
		return ArrayBlock{}, fmt.Errorf("array block %d: %w", location, err)
	}

	a := ArrayBlock{
		MaxEntries: buf.U32LE(b[ArrayMaxEntriesOffset:]),
		NrEntries:  buf.U32LE(b[ArrayNrEntriesOffset:]),
		ValueSize:  buf.U32LE(b[ArrayValueSizeOffset:]),
		BlockNr:    buf.U64LE(b[ArrayBlockNrOffset:]),
		data:       b[:BlockSize],
	}

	if a.BlockNr != location {
		return ArrayBlock{}, fmt.Errorf("array block %d: %w: records block %d", location, ErrBlockNumber, a.BlockNr)
	}
	if a.ValueSize != MappingSize {
		return ArrayBlock{}, fmt.Errorf("array block %d: %w: value size %d", location, ErrBadHeader, a.ValueSize)
	}
	if a.MaxEntries == 0 || a.MaxEntries > MaxArrayEntries {
		return ArrayBlock{}, fmt.Errorf("array block %d: %w: max entries %d", location, ErrBadHeader, a.MaxEntries)
	}
	if a.NrEntries > a.MaxEntries {
		return ArrayBlock{}, fmt.Errorf("array block %d: %w: %d entries > max %d",
			location, ErrBadHeader, a.NrEntries, a.MaxEntries)
	}
	return a, nil
}

// EncodeArrayBlock builds a sealed array block holding the packed entries.
func EncodeArrayBlock(location uint64, maxEntries uint32, entries []uint64) []byte {
	b := make([]byte, BlockSize)
	buf.PutU32LE(b[ArrayMaxEntriesOffset:], maxEntries)
	buf.PutU32LE(b[ArrayNrEntriesOffset:], uint32(len(entries)))
	buf.PutU32LE(b[ArrayValueSizeOffset:], MappingSize)
	buf.PutU64LE(b[ArrayBlockNrOffset:], location)
	for i, e := range entries {
		buf.PutU64LE(b[ArrayHeaderSize+i*MappingSize:], e)
	}
	SealChecksum(b, ArrayCsumXor)
	return b
}
