package metadata

import "github.com/joshuapare/cachekit/internal/format"

// Superblock is the store's fixed header. It is read once at Open and never
// changes for the life of the Metadata.
type Superblock struct {
	UUID           string    `json:"uuid"`
	Version        uint32    `json:"version"`
	Flags          uint32    `json:"flags"`
	PolicyName     string    `json:"policy_name"`
	PolicyVersion  [3]uint32 `json:"policy_version"`
	PolicyHintSize uint32    `json:"policy_hint_size"`

	// DataBlockSize is the size of one cache block, in 512-byte sectors.
	DataBlockSize uint32 `json:"data_block_size"`
	CacheBlocks   uint32 `json:"cache_blocks"`

	MappingRoot uint64 `json:"mapping_root"`
	HintRoot    uint64 `json:"hint_root"`
	DiscardRoot uint64 `json:"discard_root"`
	DirtyRoot   uint64 `json:"dirty_root,omitempty"`

	DiscardBlockSize uint64 `json:"discard_block_size"`
	DiscardNrBlocks  uint64 `json:"discard_nr_blocks"`

	CompatFlags   uint32 `json:"compat_flags"`
	CompatROFlags uint32 `json:"compat_ro_flags"`
	IncompatFlags uint32 `json:"incompat_flags"`

	Stats Stats `json:"stats"`
}

// Stats are the hit and miss counters the kernel saves at shutdown.
type Stats struct {
	ReadHits    uint32 `json:"read_hits"`
	ReadMisses  uint32 `json:"read_misses"`
	WriteHits   uint32 `json:"write_hits"`
	WriteMisses uint32 `json:"write_misses"`
}

// CleanShutdown reports whether the cache target was stopped cleanly.
func (sb Superblock) CleanShutdown() bool { return sb.Flags&format.SBFlagCleanShutdown != 0 }

// NeedsCheck reports whether the kernel asked for a metadata check.
func (sb Superblock) NeedsCheck() bool { return sb.Flags&format.SBFlagNeedsCheck != 0 }

func fromFormat(sb format.Superblock) Superblock {
	return Superblock{
		UUID:             sb.UUIDString(),
		Version:          sb.Version,
		Flags:            sb.Flags,
		PolicyName:       sb.PolicyNameString(),
		PolicyVersion:    sb.PolicyVersion,
		PolicyHintSize:   sb.PolicyHintSize,
		DataBlockSize:    sb.DataBlockSize,
		CacheBlocks:      sb.CacheBlocks,
		MappingRoot:      sb.MappingRoot,
		HintRoot:         sb.HintRoot,
		DiscardRoot:      sb.DiscardRoot,
		DirtyRoot:        sb.DirtyRoot,
		DiscardBlockSize: sb.DiscardBlockSize,
		DiscardNrBlocks:  sb.DiscardNrBlocks,
		CompatFlags:      sb.CompatFlags,
		CompatROFlags:    sb.CompatROFlags,
		IncompatFlags:    sb.IncompatFlags,
		Stats: Stats{
			ReadHits:    sb.ReadHits,
			ReadMisses:  sb.ReadMisses,
			WriteHits:   sb.WriteHits,
			WriteMisses: sb.WriteMisses,
		},
	}
}
