package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/cachekit/cache/damage"
	"github.com/joshuapare/cachekit/cache/dump"
	"github.com/joshuapare/cachekit/internal/logging"
	"github.com/joshuapare/cachekit/internal/metadatatest"
)

func TestReportError(t *testing.T) {
	std := logrus.StandardLogger()
	out, lvl, fmtr := std.Out, std.GetLevel(), std.Formatter
	t.Cleanup(func() {
		std.SetOutput(out)
		std.SetLevel(lvl)
		std.SetFormatter(fmtr)
		resetFlags()
	})

	path := testImagePath(t, metadatatest.SmallMixed())
	_, dumpErr := dump.DumpTo(path, &bytes.Buffer{}, dump.DefaultOptions())
	require.ErrorIs(t, dumpErr, damage.ErrMetadataDamaged)

	t.Run("plain", func(t *testing.T) {
		resetFlags()
		var w bytes.Buffer
		reportError(&w, dumpErr)
		assert.Equal(t, "cachectl: "+dumpErr.Error()+"\n", w.String())
	})

	t.Run("json log with fields", func(t *testing.T) {
		resetFlags()
		logJSON = true
		var logs, w bytes.Buffer
		logging.Init(logging.Options{Output: &logs, Level: logrus.WarnLevel, JSON: true})

		reportError(&w, dumpErr)
		assert.Empty(t, w.String())

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
		assert.Equal(t, "error", entry["level"])
		assert.Equal(t, dumpErr.Error(), entry["msg"])
		assert.Equal(t, path, entry[logging.FieldPath])
		assert.Equal(t, "dump", entry[logging.FieldPkg])
	})

	t.Run("json log without fields", func(t *testing.T) {
		resetFlags()
		logJSON = true
		var w bytes.Buffer
		reportError(&w, errors.New("no such device"))
		assert.Equal(t, "cachectl: no such device\n", w.String())
	})
}
