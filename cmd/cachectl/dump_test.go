package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/cachekit/cache/damage"
	"github.com/joshuapare/cachekit/cache/emitter"
	"github.com/joshuapare/cachekit/cache/metadata"
	"github.com/joshuapare/cachekit/internal/metadatatest"
)

func TestDumpCommand(t *testing.T) {
	clean := testImagePath(t, metadatatest.New(4).Map(0, 7, true).Map(3, 9, false))
	mixed := testImagePath(t, metadatatest.SmallMixed())

	tests := []struct {
		name           string
		path           string
		repair         bool
		format         string
		wantErr        error
		wantJSON       bool
		wantContain    []string
		wantNotContain []string
	}{
		{
			name:        "dump clean xml",
			path:        clean,
			format:      "xml",
			wantContain: []string{`<superblock uuid=`, `cache_block="3" origin_block="9" dirty="false"`, "</superblock>"},
		},
		{
			name:        "dump clean json",
			path:        clean,
			format:      "json",
			wantJSON:    true,
			wantContain: []string{`"cache_block":0`, `"origin_block":7`, `"dirty":true`},
		},
		{
			name:        "dump clean text",
			path:        clean,
			format:      "TEXT",
			wantContain: []string{"Superblock", "2 mapped, 1 dirty"},
		},
		{
			name:           "damaged without repair",
			path:           mixed,
			format:         "xml",
			wantErr:        damage.ErrMetadataDamaged,
			wantNotContain: []string{"<mapping ", "</superblock>"},
		},
		{
			name:        "damaged with repair",
			path:        mixed,
			repair:      true,
			format:      "xml",
			wantContain: []string{`cache_block="0" origin_block="10" dirty="true"`, `cache_block="1" origin_block="11" dirty="false"`},
		},
		{
			name:    "unknown format",
			path:    clean,
			format:  "yaml",
			wantErr: emitter.ErrUnknownFormat,
		},
		{
			name:    "missing store",
			path:    filepath.Join(t.TempDir(), "nope"),
			format:  "xml",
			wantErr: metadata.ErrOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			quiet = true
			dumpRepair = tt.repair
			dumpFormat = tt.format

			output, err := captureOutput(t, func() error {
				return runDump([]string{tt.path})
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.wantJSON {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
			assertNotContains(t, output, tt.wantNotContain)
		})
	}
}

func TestDumpCommandOutputFile(t *testing.T) {
	resetFlags()
	quiet = true
	dumpOutput = filepath.Join(t.TempDir(), "cmeta.xml")

	path := testImagePath(t, metadatatest.New(2).Map(1, 5, false))
	output, err := captureOutput(t, func() error {
		return runDump([]string{path})
	})
	require.NoError(t, err)
	assert.Empty(t, output, "nothing on stdout when writing to a file")

	data, err := os.ReadFile(dumpOutput)
	require.NoError(t, err)
	assert.Contains(t, string(data), `cache_block="1" origin_block="5"`)
}

func TestRootCommand(t *testing.T) {
	resetFlags()
	path := testImagePath(t, metadatatest.New(1))

	rootCmd.SetArgs([]string{"dump", "-q", "--format", "json", path})
	output, err := captureOutput(t, rootCmd.Execute)
	require.NoError(t, err)
	assertJSON(t, output)

	resetFlags()
	rootCmd.SetArgs([]string{"dump", "-v", "-q", path})
	_, err = captureOutput(t, rootCmd.Execute)
	require.Error(t, err)
}
