package format

// Mapping is one decoded slot of the mapping array.
type Mapping struct {
	OriginBlock uint64
	Flags       uint16
}

// Valid reports whether the slot is in use.
func (m Mapping) Valid() bool { return m.Flags&MappingValid != 0 }

// Dirty reports whether the cached copy has not been written back.
func (m Mapping) Dirty() bool { return m.Flags&MappingDirty != 0 }

// UnknownFlags returns the flag bits this decoder does not understand.
func (m Mapping) UnknownFlags() uint16 { return m.Flags &^ MappingKnownFlags }

// UnpackMapping splits a packed on-disk entry into origin block and flags.
func UnpackMapping(v uint64) Mapping {
	return Mapping{
		OriginBlock: v >> mappingFlagBits,
		Flags:       uint16(v & (1<<mappingFlagBits - 1)),
	}
}

// PackMapping is the inverse of UnpackMapping. Origin bits above
// MaxOriginBlock are discarded.
func PackMapping(m Mapping) uint64 {
	return (m.OriginBlock&MaxOriginBlock)<<mappingFlagBits | uint64(m.Flags)
}
