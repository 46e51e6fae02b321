// Package format houses low-level decoders for the on-disk layout of
// block-cache metadata: the superblock, the btree nodes that index the
// mapping array, the array blocks themselves and the packed mapping entries.
// The goal is to keep the parsing focused and allocation-free where possible,
// and independent from the public API so higher-level packages can decide
// what a decode failure means.
package format

const (
	// BlockSize is the size of a metadata block in bytes.
	BlockSize = 4096

	// SectorSize is the unit used by the block size fields of the superblock.
	SectorSize = 512

	// MetadataBlockSectors is the only metadata block size in sectors we accept.
	MetadataBlockSectors = BlockSize / SectorSize

	// SuperblockLocation is the block address of the superblock.
	SuperblockLocation = 0

	// Magic identifies a cache metadata superblock.
	Magic uint64 = 06142003

	// MinVersion and MaxVersion bound the metadata versions we can read.
	MinVersion = 1
	MaxVersion = 2

	// UUIDSize and PolicyNameSize are the fixed widths of the string fields.
	UUIDSize       = 16
	PolicyNameSize = 16

	// SpaceMapRootSize is the width of the opaque metadata space map root.
	SpaceMapRootSize = 128
)

// Checksum salts, one per structure type. A block checksummed for one
// structure never validates as another.
const (
	SuperblockCsumXor uint32 = 9031977
	BTreeCsumXor      uint32 = 121107
	ArrayCsumXor      uint32 = 595846735
)

// Superblock field offsets.
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------------------
//	 0x000   4    csum
//	 0x004   4    flags
//	 0x008   8    blocknr
//	 0x010  16    uuid
//	 0x020   8    magic
//	 0x028   4    version
//	 0x02C  16    policy name
//	 0x03C  12    policy version (3 x u32)
//	 0x048   4    policy hint size
//	 0x04C 128    metadata space map root
//	 0x0CC   8    mapping root
//	 0x0D4   8    hint root
//	 0x0DC   8    discard root
//	 0x0E4   8    discard block size
//	 0x0EC   8    discard nr blocks
//	 0x0F4   4    data block size (sectors)
//	 0x0F8   4    metadata block size (sectors)
//	 0x0FC   4    cache blocks
//	 0x100   4    compat flags
//	 0x104   4    compat ro flags
//	 0x108   4    incompat flags
//	 0x10C  16    read hits, read misses, write hits, write misses
//	 0x11C   8    dirty root (version 2)
const (
	SBCsumOffset             = 0x000
	SBFlagsOffset            = 0x004
	SBBlockNrOffset          = 0x008
	SBUUIDOffset             = 0x010
	SBMagicOffset            = 0x020
	SBVersionOffset          = 0x028
	SBPolicyNameOffset       = 0x02C
	SBPolicyVersionOffset    = 0x03C
	SBPolicyHintSizeOffset   = 0x048
	SBSpaceMapRootOffset     = 0x04C
	SBMappingRootOffset      = 0x0CC
	SBHintRootOffset         = 0x0D4
	SBDiscardRootOffset      = 0x0DC
	SBDiscardBlockSizeOffset = 0x0E4
	SBDiscardNrBlocksOffset  = 0x0EC
	SBDataBlockSizeOffset    = 0x0F4
	SBMetadataBlockOffset    = 0x0F8
	SBCacheBlocksOffset      = 0x0FC
	SBCompatFlagsOffset      = 0x100
	SBCompatROFlagsOffset    = 0x104
	SBIncompatFlagsOffset    = 0x108
	SBReadHitsOffset         = 0x10C
	SBReadMissesOffset       = 0x110
	SBWriteHitsOffset        = 0x114
	SBWriteMissesOffset      = 0x118
	SBDirtyRootOffset        = 0x11C
	SBEnd                    = 0x124
)

// Superblock flag bits.
const (
	SBFlagCleanShutdown uint32 = 1 << 0
	SBFlagNeedsCheck    uint32 = 1 << 1
)

// BTree node header layout.
//
//	Offset  Size  Description
//	------  ----  -------------------------
//	 0x00    4    csum
//	 0x04    4    flags (internal / leaf)
//	 0x08    8    blocknr
//	 0x10    4    nr_entries
//	 0x14    4    max_entries
//	 0x18    4    value_size
//	 0x1C    4    padding
//	 0x20         keys[max_entries], then values[max_entries]
const (
	NodeCsumOffset       = 0x00
	NodeFlagsOffset      = 0x04
	NodeBlockNrOffset    = 0x08
	NodeNrEntriesOffset  = 0x10
	NodeMaxEntriesOffset = 0x14
	NodeValueSizeOffset  = 0x18
	NodeHeaderSize       = 0x20

	NodeFlagInternal uint32 = 1
	NodeFlagLeaf     uint32 = 2

	// KeySize is the width of a btree key; every node value is a u64 as well.
	KeySize   = 8
	ValueSize = 8
)

// MaxNodeEntries is the largest max_entries a node can declare and still fit
// keys and values into one block.
const MaxNodeEntries = (BlockSize - NodeHeaderSize) / (KeySize + ValueSize)

// Array block header layout.
//
//	Offset  Size  Description
//	------  ----  -------------------------
//	 0x00    4    csum
//	 0x04    4    max_entries
//	 0x08    4    nr_entries
//	 0x0C    4    value_size
//	 0x10    8    blocknr
//	 0x18         entries[nr_entries]
const (
	ArrayCsumOffset       = 0x00
	ArrayMaxEntriesOffset = 0x04
	ArrayNrEntriesOffset  = 0x08
	ArrayValueSizeOffset  = 0x0C
	ArrayBlockNrOffset    = 0x10
	ArrayHeaderSize       = 0x18

	// MappingSize is the width of one packed mapping entry.
	MappingSize = 8
)

// MaxArrayEntries is how many packed mappings fit in one array block.
const MaxArrayEntries = (BlockSize - ArrayHeaderSize) / MappingSize

// Mapping flag bits.
const (
	MappingValid uint16 = 1 << 0
	MappingDirty uint16 = 1 << 1

	// MappingKnownFlags is every flag bit this decoder understands.
	MappingKnownFlags = MappingValid | MappingDirty

	mappingFlagBits = 16
	// MaxOriginBlock is the largest origin block a packed mapping can hold.
	MaxOriginBlock uint64 = (1 << (64 - mappingFlagBits)) - 1
)
