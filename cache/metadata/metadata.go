package metadata

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/joshuapare/cachekit/internal/blockio"
	"github.com/joshuapare/cachekit/internal/format"
	"github.com/joshuapare/cachekit/internal/logging"
)

var log = logging.For("metadata")

// BlockReader reads fixed-size metadata blocks by address.
type BlockReader interface {
	ReadBlock(b uint64) ([]byte, error)
	NrBlocks() uint64
}

// Metadata is an open, read-only metadata store.
type Metadata struct {
	Superblock Superblock
	Mappings   *MappingArray

	raw    format.Superblock
	closer io.Closer
}

// Open opens the store at path read-only and validates its superblock.
// Every failure is an *OpenError.
func Open(path string) (*Metadata, error) {
	bm, err := blockio.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	md, err := open(bm)
	if err != nil {
		bm.Close()
		return nil, &OpenError{Path: path, Err: err}
	}
	md.closer = bm

	log.WithFields(logrus.Fields{
		logging.FieldEvent:       logging.EventOpen,
		logging.FieldPath:        path,
		logging.FieldVersion:     md.Superblock.Version,
		logging.FieldCacheBlocks: md.Superblock.CacheBlocks,
		logging.FieldBlockSize:   md.Superblock.DataBlockSize,
		logging.FieldPolicy:      md.Superblock.PolicyName,
	}).Debug("Opened metadata")
	return md, nil
}

// OpenReader validates the superblock read through r. Closing the returned
// Metadata closes r when r implements io.Closer.
func OpenReader(r BlockReader) (*Metadata, error) {
	md, err := open(r)
	if err != nil {
		return nil, &OpenError{Err: err}
	}
	if c, ok := r.(io.Closer); ok {
		md.closer = c
	}
	return md, nil
}

func open(r BlockReader) (*Metadata, error) {
	b, err := r.ReadBlock(format.SuperblockLocation)
	if err != nil {
		return nil, err
	}
	sb, err := format.ParseSuperblock(b)
	if err != nil {
		return nil, err
	}
	return &Metadata{
		Superblock: fromFormat(sb),
		Mappings:   newMappingArray(r, sb.MappingRoot, sb.CacheBlocks),
		raw:        sb,
	}, nil
}

// Close releases the underlying device. It is safe to call more than once.
func (md *Metadata) Close() error {
	if md.closer == nil {
		return nil
	}
	c := md.closer
	md.closer = nil
	return c.Close()
}
