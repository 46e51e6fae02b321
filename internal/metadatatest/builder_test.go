package metadatatest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/cachekit/internal/format"
)

func TestBuildSingleLeaf(t *testing.T) {
	img := New(3).Map(1, 11, false).Build()

	require.Len(t, img.ArrayBlocks, 1)
	require.Len(t, img.Leaves, 1)
	require.Empty(t, img.Internal)
	require.Equal(t, img.Leaves[0], img.Root)

	sb, err := format.ParseSuperblock(img.Blocks[0])
	require.NoError(t, err)
	require.Equal(t, img.Root, sb.MappingRoot)
	require.EqualValues(t, 3, sb.CacheBlocks)
	require.Equal(t, FixtureUUID, sb.UUIDString())

	ab, err := format.ParseArrayBlock(img.Blocks[img.ArrayBlocks[0]], img.ArrayBlocks[0])
	require.NoError(t, err)
	m, ok := ab.Entry(1)
	require.True(t, ok)
	require.Equal(t, uint64(11), m.OriginBlock)
	require.True(t, m.Valid())
	require.False(t, m.Dirty())
}

func TestBuildMultiLevel(t *testing.T) {
	b := New(5 * EntriesPerBlock)
	b.NodeCapacity = 2
	img := b.Build()

	require.Len(t, img.ArrayBlocks, 5)
	require.Len(t, img.Leaves, 3)
	require.Len(t, img.Internal, 3, "two internal nodes plus the root")

	root, err := format.ParseNode(img.Blocks[img.Root], img.Root)
	require.NoError(t, err)
	require.True(t, root.IsInternal())
	require.EqualValues(t, 2, root.NrEntries)
	require.EqualValues(t, 0, root.Key(0))
	require.EqualValues(t, 4, root.Key(1))
}

func TestBuildEmpty(t *testing.T) {
	img := New(0).Build()
	require.Empty(t, img.ArrayBlocks)
	require.Len(t, img.Leaves, 1)

	n, err := format.ParseNode(img.Blocks[img.Root], img.Root)
	require.NoError(t, err)
	require.Zero(t, n.NrEntries)
}

func TestDamageHooks(t *testing.T) {
	img := New(10).Build()

	img.TruncateArrayBlock(0, 4)
	ab, err := format.ParseArrayBlock(img.Blocks[img.ArrayBlocks[0]], img.ArrayBlocks[0])
	require.NoError(t, err)
	require.EqualValues(t, 4, ab.NrEntries)

	require.True(t, img.PointLeafAt(0, 0))
	require.False(t, img.PointLeafAt(9, 0))

	img.CorruptBlock(img.ArrayBlocks[0])
	_, err = format.ParseArrayBlock(img.Blocks[img.ArrayBlocks[0]], img.ArrayBlocks[0])
	require.ErrorIs(t, err, format.ErrChecksum)

	r := NewReader(img).Fail(1)
	_, err = r.ReadBlock(1)
	require.ErrorIs(t, err, ErrInjected)
	_, err = r.ReadBlock(0)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 0}, r.Reads())
}

func TestBuildDeterministic(t *testing.T) {
	b := New(2 * EntriesPerBlock).Map(4, 40, true)
	require.Equal(t, b.Build().Bytes(), b.Build().Bytes())
}

func TestRedirectChild(t *testing.T) {
	b := New(5 * EntriesPerBlock)
	b.NodeCapacity = 2
	img := b.Build()

	img.RedirectChild(img.Internal[0], 1, img.Root)
	n, err := format.ParseNode(img.Blocks[img.Internal[0]], img.Internal[0])
	require.NoError(t, err, "the node is resealed")
	require.Equal(t, img.Root, n.Value(1))
}
