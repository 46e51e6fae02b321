package format

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/cachekit/internal/buf"
)

func testSuperblock() Superblock {
	sb := Superblock{
		Magic:             Magic,
		Version:           2,
		PolicyHintSize:    4,
		PolicyVersion:     [3]uint32{2, 0, 0},
		MappingRoot:       7,
		HintRoot:          9,
		DataBlockSize:     128,
		MetadataBlockSize: MetadataBlockSectors,
		CacheBlocks:       1024,
		Flags:             SBFlagCleanShutdown,
		ReadHits:          11,
		WriteMisses:       3,
		DirtyRoot:         12,
	}
	copy(sb.UUID[:], "abc")
	copy(sb.PolicyName[:], "smq")
	return sb
}

func TestParseSuperblockSuccess(t *testing.T) {
	want := testSuperblock()
	got, err := ParseSuperblock(EncodeSuperblock(want))
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, "abc", got.UUIDString())
	require.Equal(t, "smq", got.PolicyNameString())
}

func TestParseSuperblockVersion1IgnoresDirtyRoot(t *testing.T) {
	sb := testSuperblock()
	sb.Version = 1
	b := EncodeSuperblock(sb)
	buf.PutU64LE(b[SBDirtyRootOffset:], 99)
	SealChecksum(b, SuperblockCsumXor)

	got, err := ParseSuperblock(b)
	require.NoError(t, err)
	require.Zero(t, got.DirtyRoot)
}

func TestParseSuperblockErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(sb *Superblock)
		corrupt func(b []byte)
		wantErr error
	}{
		{name: "bad magic", mutate: func(sb *Superblock) { sb.Magic = 42 }, wantErr: ErrMagic},
		{name: "wrong location", mutate: func(sb *Superblock) { sb.BlockNr = 3 }, wantErr: ErrBlockNumber},
		{name: "version zero", mutate: func(sb *Superblock) { sb.Version = 0 }, wantErr: ErrVersion},
		{name: "version three", mutate: func(sb *Superblock) { sb.Version = 3 }, wantErr: ErrVersion},
		{
			name:    "metadata block size",
			mutate:  func(sb *Superblock) { sb.MetadataBlockSize = 16 },
			wantErr: ErrBadHeader,
		},
		{name: "checksum", corrupt: func(b []byte) { b[SBCacheBlocksOffset] ^= 0xff }, wantErr: ErrChecksum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb := testSuperblock()
			if tt.mutate != nil {
				tt.mutate(&sb)
			}
			b := EncodeSuperblock(sb)
			if tt.corrupt != nil {
				tt.corrupt(b)
			}
			_, err := ParseSuperblock(b)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := ParseSuperblock(make([]byte, 100))
	require.ErrorIs(t, err, ErrTruncated)
}

func TestUUIDString(t *testing.T) {
	binary := uuid.MustParse("6ba7b810-9dad-41d1-80b4-00c04fd430c8")

	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{name: "empty", raw: nil, want: ""},
		{name: "text", raw: []byte("abc"), want: "abc"},
		{name: "text filling the field", raw: []byte("0123456789abcdef"), want: "0123456789abcdef"},
		{name: "binary", raw: binary[:], want: "6ba7b810-9dad-41d1-80b4-00c04fd430c8"},
		{name: "bytes after the terminator", raw: []byte("ab\x00c"), want: "61620063-0000-0000-0000-000000000000"},
		{name: "control characters", raw: []byte("a\x01b"), want: "61016200-0000-0000-0000-000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb Superblock
			copy(sb.UUID[:], tt.raw)
			require.Equal(t, tt.want, sb.UUIDString())
		})
	}
}
