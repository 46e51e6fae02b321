package format

import (
	"fmt"
	"hash/crc32"

	"github.com/joshuapare/cachekit/internal/buf"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// Checksum computes the salted CRC32C of a metadata block. The checksum field
// itself (the first four bytes) is excluded. The CRC is seeded with all ones
// and not inverted at the end, so it is the complement of the standard CRC32C.
func Checksum(block []byte, salt uint32) uint32 {
	if len(block) < 4 {
		return salt
	}
	return ^crc32.Checksum(block[4:], castagnoli) ^ salt
}

// VerifyChecksum compares the stored checksum of block against its contents.
func VerifyChecksum(block []byte, salt uint32) error {
	if len(block) < 4 {
		return ErrTruncated
	}
	stored := buf.U32LE(block)
	if got := Checksum(block, salt); got != stored {
		return fmt.Errorf("%w: stored 0x%08x, computed 0x%08x", ErrChecksum, stored, got)
	}
	return nil
}

// SealChecksum stores the salted checksum of block into its first four bytes.
func SealChecksum(block []byte, salt uint32) {
	buf.PutU32LE(block, Checksum(block, salt))
}
