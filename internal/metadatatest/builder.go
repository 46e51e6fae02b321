// Package metadatatest builds synthetic cache metadata images for tests,
// with hooks for injecting the damage the walker must classify.
package metadatatest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/cachekit/internal/buf"
	"github.com/joshuapare/cachekit/internal/format"
)

// EntriesPerBlock is the number of mapping slots per array block.
const EntriesPerBlock = format.MaxArrayEntries

// FixtureUUID is the uuid every builder starts with.
const FixtureUUID = "cachekit-test"

// Builder describes an image. The zero value is not useful; start from New.
type Builder struct {
	UUID           string
	Version        uint32
	Flags          uint32
	PolicyName     string
	PolicyVersion  [3]uint32
	PolicyHintSize uint32
	DataBlockSize  uint32
	CacheBlocks    uint32

	// Entries holds raw packed slots by cache block; absent slots are zero.
	Entries map[uint64]uint64

	// NodeCapacity is the max_entries of every btree node. Small values force
	// a multi-level tree.
	NodeCapacity uint32

	// OmitArrayBlocks leaves the listed array-block indexes out of the btree.
	OmitArrayBlocks map[uint64]bool
}

// New returns a builder for a store with n cache blocks and no mappings.
func New(n uint32) *Builder {
	return &Builder{
		UUID:          FixtureUUID,
		Version:       2,
		Flags:         format.SBFlagCleanShutdown,
		PolicyName:    "smq",
		PolicyVersion: [3]uint32{2, 0, 0},
		DataBlockSize: 128,
		CacheBlocks:   n,
		Entries:       make(map[uint64]uint64),
		NodeCapacity:  format.MaxNodeEntries,
	}
}

// Map records cblock -> oblock with the VALID bit, plus DIRTY when dirty.
func (b *Builder) Map(cblock, oblock uint64, dirty bool) *Builder {
	flags := format.MappingValid
	if dirty {
		flags |= format.MappingDirty
	}
	return b.SetFlags(cblock, oblock, flags)
}

// SetFlags records a slot with arbitrary flag bits.
func (b *Builder) SetFlags(cblock, oblock uint64, flags uint16) *Builder {
	b.Entries[cblock] = format.PackMapping(format.Mapping{OriginBlock: oblock, Flags: flags})
	return b
}

// Image is a built store, one slice per 4 KiB block.
type Image struct {
	Blocks [][]byte

	// ArrayBlocks maps array-block index to block address.
	ArrayBlocks []uint64
	// Leaves and Internal list btree node addresses in ascending key order.
	Leaves   []uint64
	Internal []uint64
	Root     uint64
}

type child struct {
	key uint64
	loc uint64
}

// Build lays out superblock, array blocks, leaves, then internal levels.
func (b *Builder) Build() *Image {
	img := &Image{Blocks: [][]byte{nil}}
	nArr := (uint64(b.CacheBlocks) + EntriesPerBlock - 1) / EntriesPerBlock

	for k := uint64(0); k < nArr; k++ {
		begin := k * EntriesPerBlock
		end := min(begin+EntriesPerBlock, uint64(b.CacheBlocks))
		entries := make([]uint64, 0, end-begin)
		for c := begin; c < end; c++ {
			entries = append(entries, b.Entries[c])
		}
		loc := uint64(len(img.Blocks))
		img.Blocks = append(img.Blocks, format.EncodeArrayBlock(loc, EntriesPerBlock, entries))
		img.ArrayBlocks = append(img.ArrayBlocks, loc)
	}

	var level []child
	for k, loc := range img.ArrayBlocks {
		if b.OmitArrayBlocks[uint64(k)] {
			continue
		}
		level = append(level, child{key: uint64(k), loc: loc})
	}

	level = b.writeLevel(img, level, format.NodeFlagLeaf)
	for len(level) > 1 {
		level = b.writeLevel(img, level, format.NodeFlagInternal)
	}
	img.Root = level[0].loc

	sb := format.Superblock{
		Flags:             b.Flags,
		Magic:             format.Magic,
		Version:           b.Version,
		PolicyVersion:     b.PolicyVersion,
		PolicyHintSize:    b.PolicyHintSize,
		MappingRoot:       img.Root,
		DataBlockSize:     b.DataBlockSize,
		MetadataBlockSize: format.MetadataBlockSectors,
		CacheBlocks:       b.CacheBlocks,
	}
	copy(sb.UUID[:], b.UUID)
	copy(sb.PolicyName[:], b.PolicyName)
	img.Blocks[0] = format.EncodeSuperblock(sb)
	return img
}

// writeLevel packs children into nodes of NodeCapacity entries and returns
// the next level up. An empty level still produces one empty leaf.
func (b *Builder) writeLevel(img *Image, children []child, flags uint32) []child {
	if len(children) == 0 {
		return []child{{loc: img.appendNode(flags, b.NodeCapacity, nil, nil)}}
	}

	capacity := int(b.NodeCapacity)
	var up []child
	for start := 0; start < len(children); start += capacity {
		end := min(start+capacity, len(children))
		keys := make([]uint64, 0, end-start)
		values := make([]uint64, 0, end-start)
		for _, c := range children[start:end] {
			keys = append(keys, c.key)
			values = append(values, c.loc)
		}
		up = append(up, child{key: keys[0], loc: img.appendNode(flags, b.NodeCapacity, keys, values)})
	}
	return up
}

func (img *Image) appendNode(flags, capacity uint32, keys, values []uint64) uint64 {
	loc := uint64(len(img.Blocks))
	img.Blocks = append(img.Blocks, format.EncodeNode(loc, flags, capacity, keys, values))
	if flags == format.NodeFlagLeaf {
		img.Leaves = append(img.Leaves, loc)
	} else {
		img.Internal = append(img.Internal, loc)
	}
	return loc
}

// Bytes concatenates every block.
func (img *Image) Bytes() []byte {
	out := make([]byte, 0, len(img.Blocks)*format.BlockSize)
	for _, blk := range img.Blocks {
		out = append(out, blk...)
	}
	return out
}

// WriteFile writes the image under t.TempDir and returns its path.
func (img *Image) WriteFile(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cmeta.img")
	if err := os.WriteFile(path, img.Bytes(), 0o600); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return path
}

// CorruptBlock flips a payload byte of block loc without resealing it, so
// the block fails its checksum.
func (img *Image) CorruptBlock(loc uint64) {
	img.Blocks[loc][format.BlockSize-1] ^= 0xff
}

// TruncateArrayBlock rewrites array block k to hold only its first nr slots.
func (img *Image) TruncateArrayBlock(k uint64, nr uint32) {
	blk := img.Blocks[img.ArrayBlocks[k]]
	buf.PutU32LE(blk[format.ArrayNrEntriesOffset:], nr)
	format.SealChecksum(blk, format.ArrayCsumXor)
}

// RedirectChild rewrites value i of the btree node at parent to target,
// resealing the node.
func (img *Image) RedirectChild(parent uint64, i int, target uint64) {
	blk := img.Blocks[parent]
	maxEntries := int(buf.U32LE(blk[format.NodeMaxEntriesOffset:]))
	off := format.NodeHeaderSize + maxEntries*format.KeySize + i*format.ValueSize
	buf.PutU64LE(blk[off:], target)
	format.SealChecksum(blk, format.BTreeCsumXor)
}

// PointLeafAt rewrites the value for array block k in its leaf to target,
// resealing the leaf.
func (img *Image) PointLeafAt(k, target uint64) bool {
	for _, leafLoc := range img.Leaves {
		n, err := format.ParseNode(img.Blocks[leafLoc], leafLoc)
		if err != nil {
			continue
		}
		for i := 0; i < int(n.NrEntries); i++ {
			if n.Key(i) != k {
				continue
			}
			off := format.NodeHeaderSize + int(n.MaxEntries)*format.KeySize + i*format.ValueSize
			buf.PutU64LE(img.Blocks[leafLoc][off:], target)
			format.SealChecksum(img.Blocks[leafLoc], format.BTreeCsumXor)
			return true
		}
	}
	return false
}
