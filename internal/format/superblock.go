package format

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/joshuapare/cachekit/internal/buf"
)

// Superblock is the decoded fixed header of a cache metadata store. String
// fields are kept raw; CString turns them into Go strings.
type Superblock struct {
	Flags          uint32
	BlockNr        uint64
	UUID           [UUIDSize]byte
	Magic          uint64
	Version        uint32
	PolicyName     [PolicyNameSize]byte
	PolicyVersion  [3]uint32
	PolicyHintSize uint32

	SpaceMapRoot [SpaceMapRootSize]byte
	MappingRoot  uint64
	HintRoot     uint64

	DiscardRoot      uint64
	DiscardBlockSize uint64
	DiscardNrBlocks  uint64

	DataBlockSize     uint32
	MetadataBlockSize uint32
	CacheBlocks       uint32

	CompatFlags   uint32
	CompatROFlags uint32
	IncompatFlags uint32

	ReadHits    uint32
	ReadMisses  uint32
	WriteHits   uint32
	WriteMisses uint32

	// DirtyRoot is only meaningful for version 2 metadata.
	DirtyRoot uint64
}

// UUIDString returns the uuid field. Userspace tools store it as a
// zero-terminated string; a field holding raw binary is formatted as a
// canonical RFC 4122 uuid instead.
func (sb *Superblock) UUIDString() string {
	s := buf.CString(sb.UUID[:])
	for i := len(s); i < UUIDSize; i++ {
		if sb.UUID[i] != 0 {
			return uuid.UUID(sb.UUID).String()
		}
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return uuid.UUID(sb.UUID).String()
		}
	}
	return s
}

// PolicyNameString returns the policy name field as a zero-terminated string.
func (sb *Superblock) PolicyNameString() string { return buf.CString(sb.PolicyName[:]) }

// ParseSuperblock validates and decodes the superblock stored in b, which
// must be the full contents of block 0.
func ParseSuperblock(b []byte) (Superblock, error) {
	if len(b) < BlockSize {
		return Superblock{}, fmt.Errorf("superblock: %w", ErrTruncated)
	}
	if err := VerifyChecksum(b[:BlockSize], SuperblockCsumXor); err != nil {
		return Superblock{}, fmt.Errorf("superblock: %w", err)
	}

	var sb Superblock
	sb.Flags = buf.U32LE(b[SBFlagsOffset:])
	sb.BlockNr = buf.U64LE(b[SBBlockNrOffset:])
	copy(sb.UUID[:], b[SBUUIDOffset:SBUUIDOffset+UUIDSize])
	sb.Magic = buf.U64LE(b[SBMagicOffset:])
	sb.Version = buf.U32LE(b[SBVersionOffset:])
	copy(sb.PolicyName[:], b[SBPolicyNameOffset:SBPolicyNameOffset+PolicyNameSize])
	for i := range sb.PolicyVersion {
		sb.PolicyVersion[i] = buf.U32LE(b[SBPolicyVersionOffset+4*i:])
	}
	sb.PolicyHintSize = buf.U32LE(b[SBPolicyHintSizeOffset:])
	copy(sb.SpaceMapRoot[:], b[SBSpaceMapRootOffset:SBSpaceMapRootOffset+SpaceMapRootSize])
	sb.MappingRoot = buf.U64LE(b[SBMappingRootOffset:])
	sb.HintRoot = buf.U64LE(b[SBHintRootOffset:])
	sb.DiscardRoot = buf.U64LE(b[SBDiscardRootOffset:])
	sb.DiscardBlockSize = buf.U64LE(b[SBDiscardBlockSizeOffset:])
	sb.DiscardNrBlocks = buf.U64LE(b[SBDiscardNrBlocksOffset:])
	sb.DataBlockSize = buf.U32LE(b[SBDataBlockSizeOffset:])
	sb.MetadataBlockSize = buf.U32LE(b[SBMetadataBlockOffset:])
	sb.CacheBlocks = buf.U32LE(b[SBCacheBlocksOffset:])
	sb.CompatFlags = buf.U32LE(b[SBCompatFlagsOffset:])
	sb.CompatROFlags = buf.U32LE(b[SBCompatROFlagsOffset:])
	sb.IncompatFlags = buf.U32LE(b[SBIncompatFlagsOffset:])
	sb.ReadHits = buf.U32LE(b[SBReadHitsOffset:])
	sb.ReadMisses = buf.U32LE(b[SBReadMissesOffset:])
	sb.WriteHits = buf.U32LE(b[SBWriteHitsOffset:])
	sb.WriteMisses = buf.U32LE(b[SBWriteMissesOffset:])
	if sb.Version >= 2 {
		sb.DirtyRoot = buf.U64LE(b[SBDirtyRootOffset:])
	}

	if sb.Magic != Magic {
		return Superblock{}, fmt.Errorf("superblock: %w: 0x%x", ErrMagic, sb.Magic)
	}
	if sb.BlockNr != SuperblockLocation {
		return Superblock{}, fmt.Errorf("superblock: %w: records block %d", ErrBlockNumber, sb.BlockNr)
	}
	if sb.Version < MinVersion || sb.Version > MaxVersion {
		return Superblock{}, fmt.Errorf("superblock: %w: %d", ErrVersion, sb.Version)
	}
	if sb.MetadataBlockSize != MetadataBlockSectors {
		return Superblock{}, fmt.Errorf("superblock: %w: metadata block size %d sectors",
			ErrBadHeader, sb.MetadataBlockSize)
	}
	return sb, nil
}

// EncodeSuperblock writes sb into a fresh block and seals its checksum.
// Magic and BlockNr are written as given so callers can produce damaged images.
func EncodeSuperblock(sb Superblock) []byte {
	b := make([]byte, BlockSize)
	buf.PutU32LE(b[SBFlagsOffset:], sb.Flags)
	buf.PutU64LE(b[SBBlockNrOffset:], sb.BlockNr)
	copy(b[SBUUIDOffset:], sb.UUID[:])
	buf.PutU64LE(b[SBMagicOffset:], sb.Magic)
	buf.PutU32LE(b[SBVersionOffset:], sb.Version)
	copy(b[SBPolicyNameOffset:], sb.PolicyName[:])
	for i, v := range sb.PolicyVersion {
		buf.PutU32LE(b[SBPolicyVersionOffset+4*i:], v)
	}
	buf.PutU32LE(b[SBPolicyHintSizeOffset:], sb.PolicyHintSize)
	copy(b[SBSpaceMapRootOffset:], sb.SpaceMapRoot[:])
	buf.PutU64LE(b[SBMappingRootOffset:], sb.MappingRoot)
	buf.PutU64LE(b[SBHintRootOffset:], sb.HintRoot)
	buf.PutU64LE(b[SBDiscardRootOffset:], sb.DiscardRoot)
	buf.PutU64LE(b[SBDiscardBlockSizeOffset:], sb.DiscardBlockSize)
	buf.PutU64LE(b[SBDiscardNrBlocksOffset:], sb.DiscardNrBlocks)
	buf.PutU32LE(b[SBDataBlockSizeOffset:], sb.DataBlockSize)
	buf.PutU32LE(b[SBMetadataBlockOffset:], sb.MetadataBlockSize)
	buf.PutU32LE(b[SBCacheBlocksOffset:], sb.CacheBlocks)
	buf.PutU32LE(b[SBCompatFlagsOffset:], sb.CompatFlags)
	buf.PutU32LE(b[SBCompatROFlagsOffset:], sb.CompatROFlags)
	buf.PutU32LE(b[SBIncompatFlagsOffset:], sb.IncompatFlags)
	buf.PutU32LE(b[SBReadHitsOffset:], sb.ReadHits)
	buf.PutU32LE(b[SBReadMissesOffset:], sb.ReadMisses)
	buf.PutU32LE(b[SBWriteHitsOffset:], sb.WriteHits)
	buf.PutU32LE(b[SBWriteMissesOffset:], sb.WriteMisses)
	if sb.Version >= 2 {
		buf.PutU64LE(b[SBDirtyRootOffset:], sb.DirtyRoot)
	}
	SealChecksum(b, SuperblockCsumXor)
	return b
}
