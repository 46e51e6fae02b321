package dump

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/cachekit/cache/damage"
	"github.com/joshuapare/cachekit/cache/metadata"
	"github.com/joshuapare/cachekit/internal/metadatatest"
)

func TestCheckClean(t *testing.T) {
	path := metadatatest.New(10).Map(1, 2, true).Map(4, 5, false).Build().WriteFile(t)

	r, err := Check(path, CheckOptions{})
	require.NoError(t, err)
	assert.True(t, r.Clean())
	assert.Equal(t, "completed", r.Status)
	assert.EqualValues(t, 10, r.Mappings)
	assert.EqualValues(t, 2, r.Valid)
	assert.EqualValues(t, 1, r.Dirty)
}

func TestCheckCollectsEverything(t *testing.T) {
	b := metadatatest.New(3 * E)
	b.SetFlags(0, 1, metadatatest.UnknownFlag)
	b.Map(5, 9, false)
	b.Map(6, 9, false)
	img := b.Build()
	img.CorruptBlock(img.ArrayBlocks[2])

	r, err := CheckMetadata(openImage(t, img), CheckOptions{})
	require.NoError(t, err)
	assert.False(t, r.Clean())
	assert.Equal(t, "completed with skips", r.Status)
	assert.Equal(t, 2, r.Count(damage.InvalidMapping))
	assert.Equal(t, 1, r.Count(damage.MissingMappings))
	assert.EqualValues(t, E, r.Skipped)
	assert.EqualValues(t, 2*E, r.Mappings)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"missing mappings"`)
}

func TestCheckFailFast(t *testing.T) {
	img := metadatatest.SmallMixed().Build()
	r, err := CheckMetadata(openImage(t, img), CheckOptions{FailFast: true})
	require.NoError(t, err)
	require.Len(t, r.Damage, 1)
	assert.Equal(t, "aborted on damage", r.Status)
	assert.EqualValues(t, 0, r.Mappings)
}

func TestCheckOpenError(t *testing.T) {
	_, err := Check("/nonexistent/cmeta", CheckOptions{})
	require.ErrorIs(t, err, metadata.ErrOpen)
}

func TestInfo(t *testing.T) {
	b := metadatatest.New(42)
	b.PolicyHintSize = 4
	path := b.Build().WriteFile(t)

	sb, err := Info(path)
	require.NoError(t, err)
	assert.Equal(t, b.UUID, sb.UUID)
	assert.EqualValues(t, 42, sb.CacheBlocks)
	assert.EqualValues(t, 128, sb.DataBlockSize)
	assert.Equal(t, "smq", sb.PolicyName)
	assert.EqualValues(t, 4, sb.PolicyHintSize)
	assert.True(t, sb.CleanShutdown())

	_, err = Info("/nonexistent/cmeta")
	require.ErrorIs(t, err, metadata.ErrOpen)
}
