package format

import (
	"fmt"

	"github.com/joshuapare/cachekit/internal/buf"
)

// Node is a decoded btree node. Keys and values are read lazily from the
// underlying block, which must stay alive as long as the Node is used.
type Node struct {
	Flags      uint32
	BlockNr    uint64
	NrEntries  uint32
	MaxEntries uint32
	ValueSize  uint32

	data []byte
}

// IsInternal reports whether the node's values are child node addresses.
func (n *Node) IsInternal() bool { return n.Flags == NodeFlagInternal }

// Key returns the i-th key. The caller must ensure i < NrEntries.
func (n *Node) Key(i int) uint64 {
	return buf.U64LE(n.data[NodeHeaderSize+i*KeySize:])
}

// Value returns the i-th value. The caller must ensure i < NrEntries.
func (n *Node) Value(i int) uint64 {
	off := NodeHeaderSize + int(n.MaxEntries)*KeySize + i*ValueSize
	return buf.U64LE(n.data[off:])
}

// ParseNode validates the btree node stored in b, which was read from block
// location. Any failure means the whole subtree below the node is unreadable.
func ParseNode(b []byte, location uint64) (Node, error) {
	if len(b) < BlockSize {
		return Node{}, fmt.Errorf("btree node %d: %w", location, ErrTruncated)
	}
	if err := VerifyChecksum(b[:BlockSize], BTreeCsumXor); err != nil {
		return Node{}, fmt.Errorf("btree node %d: %w", location, err)
	}

	n := Node{
		Flags:      buf.U32LE(b[NodeFlagsOffset:]),
		BlockNr:    buf.U64LE(b[NodeBlockNrOffset:]),
		NrEntries:  buf.U32LE(b[NodeNrEntriesOffset:]),
		MaxEntries: buf.U32LE(b[NodeMaxEntriesOffset:]),
		ValueSize:  buf.U32LE(b[NodeValueSizeOffset:]),
		data:       b[:BlockSize],
	}

	if n.BlockNr != location {
		return Node{}, fmt.Errorf("btree node %d: %w: records block %d", location, ErrBlockNumber, n.BlockNr)
	}
	if n.Flags != NodeFlagInternal && n.Flags != NodeFlagLeaf {
		return Node{}, fmt.Errorf("btree node %d: %w: flags 0x%x", location, ErrBadHeader, n.Flags)
	}
	if n.ValueSize != ValueSize {
		return Node{}, fmt.Errorf("btree node %d: %w: value size %d", location, ErrBadHeader, n.ValueSize)
	}
	if n.MaxEntries == 0 || n.MaxEntries > MaxNodeEntries {
		return Node{}, fmt.Errorf("btree node %d: %w: max entries %d", location, ErrBadHeader, n.MaxEntries)
	}
	if n.NrEntries > n.MaxEntries {
		return Node{}, fmt.Errorf("btree node %d: %w: %d entries > max %d",
			location, ErrBadHeader, n.NrEntries, n.MaxEntries)
	}
	if _, err := buf.CheckListBounds(BlockSize, NodeHeaderSize, int(n.MaxEntries), KeySize+ValueSize); err != nil {
		return Node{}, fmt.Errorf("btree node %d: %w: %v", location, ErrBadHeader, err)
	}
	for i := 1; i < int(n.NrEntries); i++ {
		if n.Key(i) <= n.Key(i-1) {
			return Node{}, fmt.Errorf("btree node %d: %w: keys out of order at %d", location, ErrBadHeader, i)
		}
	}
	return n, nil
}

// EncodeNode builds a sealed btree node. keys and values must be the same
// length and no longer than maxEntries.
func EncodeNode(location uint64, flags uint32, maxEntries uint32, keys, values []uint64) []byte {
	b := make([]byte, BlockSize)
	buf.PutU32LE(b[NodeFlagsOffset:], flags)
	buf.PutU64LE(b[NodeBlockNrOffset:], location)
	buf.PutU32LE(b[NodeNrEntriesOffset:], uint32(len(keys)))
	buf.PutU32LE(b[NodeMaxEntriesOffset:], maxEntries)
	buf.PutU32LE(b[NodeValueSizeOffset:], ValueSize)
	for i, k := range keys {
		buf.PutU64LE(b[NodeHeaderSize+i*KeySize:], k)
	}
	valuesOff := NodeHeaderSize + int(maxEntries)*KeySize
	for i, v := range values {
		buf.PutU64LE(b[valuesOff+i*ValueSize:], v)
	}
	SealChecksum(b, BTreeCsumXor)
	return b
}
