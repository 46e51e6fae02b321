package metadata

import "github.com/joshuapare/cachekit/internal/format"

// Mapping flag bits, as stored on disk.
const (
	FlagValid = format.MappingValid
	FlagDirty = format.MappingDirty
)

// Mapping is one slot of the mapping array.
type Mapping struct {
	CBlock      uint64 `json:"cache_block"`
	OriginBlock uint64 `json:"origin_block"`
	Flags       uint16 `json:"flags"`
}

// Valid reports whether the slot is in use.
func (m Mapping) Valid() bool { return m.Flags&FlagValid != 0 }

// Dirty reports whether the cache block has not been written back.
func (m Mapping) Dirty() bool { return m.Flags&FlagDirty != 0 }

// Known returns m with every flag bit other than VALID and DIRTY cleared.
func (m Mapping) Known() Mapping {
	m.Flags &= format.MappingKnownFlags
	return m
}
