package damage

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/cachekit/cache/metadata"
)

func TestRange(t *testing.T) {
	r := Range{Begin: 509, End: 1018}
	assert.EqualValues(t, 509, r.Len())
	assert.True(t, r.Contains(509))
	assert.False(t, r.Contains(1018))
	assert.Equal(t, "[509, 1018)", r.String())
	assert.Equal(t, "7", Range{Begin: 7, End: 8}.String())
	assert.Zero(t, Range{Begin: 5, End: 2}.Len())
}

func TestDamageConstructors(t *testing.T) {
	m := Missing(Range{Begin: 0, End: 509}, 3, "checksum mismatch")
	assert.Equal(t, MissingMappings, m.Kind)
	assert.False(t, m.Recoverable())
	assert.Equal(t, "missing mappings at cache blocks [0, 509) (metadata block 3): checksum mismatch", m.String())

	entry := &metadata.Mapping{CBlock: 4, OriginBlock: 10, Flags: metadata.FlagValid}
	inv := Invalid(4, 1, entry, "unknown flag bits 0x4")
	assert.Equal(t, InvalidMapping, inv.Kind)
	assert.Equal(t, Range{Begin: 4, End: 5}, inv.Range)
	assert.True(t, inv.Recoverable())
	assert.Equal(t, "invalid mapping at cache block 4 (metadata block 1): unknown flag bits 0x4", inv.String())

	assert.False(t, Invalid(4, 1, nil, "truncated").Recoverable())
}

func TestKindJSON(t *testing.T) {
	out, err := json.Marshal(Invalid(1, 2, nil, "x"))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"kind":"invalid mapping"`)
	assert.NotContains(t, string(out), `"mapping"`)
	assert.Equal(t, "damage(9)", Kind(9).String())
}

func TestIgnore(t *testing.T) {
	require.NoError(t, Ignore.Handle(Missing(Range{0, 10}, 1, "x")))
	require.NoError(t, Ignore.Handle(Invalid(3, 1, nil, "x")))
}

func TestFatal(t *testing.T) {
	for _, d := range []Damage{Missing(Range{0, 10}, 1, "unreadable"), Invalid(3, 1, nil, "bad")} {
		err := Fatal.Handle(d)
		require.ErrorIs(t, err, ErrMetadataDamaged)

		var de *Error
		require.ErrorAs(t, err, &de)
		require.Equal(t, d, de.Damage)
		require.Contains(t, err.Error(), "--repair")
		require.NotContains(t, err.Error(), "\n", "diagnostic is a single line")
	}

	require.ErrorIs(t, Fatal.Handle(Damage{Kind: 42}), ErrMetadataDamaged)
}

func TestForRepair(t *testing.T) {
	d := Missing(Range{0, 1}, 1, "x")
	require.NoError(t, ForRepair(true).Handle(d))
	require.Error(t, ForRepair(false).Handle(d))
}

func TestCollector(t *testing.T) {
	var c Collector
	require.NoError(t, c.Handle(Missing(Range{0, 10}, 1, "x")))
	require.NoError(t, c.Handle(Invalid(11, 2, nil, "y")))
	require.NoError(t, c.Handle(Invalid(12, 2, nil, "z")))

	require.Len(t, c.Damage, 3)
	require.Equal(t, 1, c.Count(MissingMappings))
	require.Equal(t, 2, c.Count(InvalidMapping))
}

func TestLogged(t *testing.T) {
	var out bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&out)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)

	sentinel := errors.New("stop")
	p := Logged(PolicyFunc(func(Damage) error { return sentinel }), logrus.NewEntry(logger))

	err := p.Handle(Missing(Range{Begin: 509, End: 1018}, 6, "checksum"))
	require.ErrorIs(t, err, sentinel)
	require.Contains(t, out.String(), "cblock_begin=509")
	require.Contains(t, out.String(), "cblock_end=1018")
	require.Contains(t, out.String(), `kind="missing mappings"`)
	require.Contains(t, out.String(), "level=debug")

	out.Reset()
	_ = p.Handle(Invalid(7, 6, nil, "slot beyond the block"))
	require.Contains(t, out.String(), "cblock=7")
	require.NotContains(t, out.String(), "cblock_begin")
}

func TestLoggedQuietAtWarn(t *testing.T) {
	var out bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&out)
	logger.SetLevel(logrus.WarnLevel)

	p := Logged(Ignore, logrus.NewEntry(logger))
	for c := uint64(0); c < 500; c++ {
		require.NoError(t, p.Handle(Invalid(c, 3, nil, "slot beyond the block")))
	}
	require.Empty(t, out.String(), "per-report logging stays below the default level")
}
