package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrChecksum indicates a block's stored checksum does not match its contents.
	ErrChecksum = errors.New("format: checksum mismatch")
	// ErrMagic indicates the superblock magic is not the cache metadata magic.
	ErrMagic = errors.New("format: bad magic")
	// ErrBlockNumber indicates a block records a location other than where it was read.
	ErrBlockNumber = errors.New("format: block number mismatch")
	// ErrVersion indicates a metadata version this decoder cannot read.
	ErrVersion = errors.New("format: unsupported version")
	// ErrBadHeader indicates a node or array block header is internally inconsistent.
	ErrBadHeader = errors.New("format: malformed header")
)
