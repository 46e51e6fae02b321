package metadatatest

import "github.com/joshuapare/cachekit/internal/format"

// UnknownFlag is a mapping flag bit no decoder understands.
const UnknownFlag uint16 = 1 << 2

// SmallMixed returns the three-slot store used throughout the dump tests:
// slot 0 is VALID|DIRTY for origin 10 but also carries an unknown flag bit,
// slot 1 is VALID for origin 11 and slot 2 is unused.
func SmallMixed() *Builder {
	b := New(3)
	b.UUID = "abc"
	b.DataBlockSize = 8
	b.PolicyName = "mq"
	b.PolicyHintSize = 0
	b.SetFlags(0, 10, format.MappingValid|format.MappingDirty|UnknownFlag)
	b.Map(1, 11, false)
	return b
}
