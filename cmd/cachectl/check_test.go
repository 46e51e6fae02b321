package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/cachekit/internal/metadatatest"
)

func TestCheckCommand(t *testing.T) {
	clean := testImagePath(t, metadatatest.New(8).Map(2, 3, true))

	damagedImg := metadatatest.New(2 * metadatatest.EntriesPerBlock).Build()
	damagedImg.CorruptBlock(damagedImg.ArrayBlocks[1])
	damaged := damagedImg.WriteFile(t)

	tests := []struct {
		name        string
		path        string
		json        bool
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "clean",
			path:        clean,
			wantContain: []string{"Checked 8 mappings: 1 valid, 1 dirty", "No damage found"},
		},
		{
			name:        "clean json",
			path:        clean,
			json:        true,
			wantContain: []string{`"status": "completed"`, `"valid": 1`},
		},
		{
			name:        "damaged",
			path:        damaged,
			wantErr:     true,
			wantContain: []string{"Problems:", "missing mappings at cache blocks [509, 1018)", "509 cache blocks could not be read"},
		},
		{
			name:        "mixed",
			path:        testImagePath(t, metadatatest.SmallMixed()),
			wantErr:     true,
			wantContain: []string{"invalid mapping at cache block 0", "unknown flag bits 0x4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			jsonOut = tt.json

			output, err := captureOutput(t, func() error {
				return runCheck([]string{tt.path})
			})
			if tt.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), "problems found")
			} else {
				require.NoError(t, err)
			}
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}
