package crinex

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rinexV3Fixture is a minimal two-epoch, two-satellite RINEX 3 observation
// file: two observation types per satellite, no clock offsets, with LLI and
// signal-strength flags that change from one epoch to the next so a
// round trip exercises both the field-arc and the flag-diffing paths.
func rinexV3Fixture() string {
	lines := []string{
		fmt.Sprintf("%-60s%s", "3.03           OBSERVATION DATA    M: Mixed", "RINEX VERSION / TYPE"),
		fmt.Sprintf("%-60s%s", "G    2 C1C L1C", "SYS / # / OBS TYPES"),
		fmt.Sprintf("%-60s%s", "", "END OF HEADER"),
		"> 2024 01 15 00 00  0.0000000  0  2",
		"G01  20915861.13047        45.000 5",
		"G02  12345678.000 9       100.50068",
		"> 2024 01 15 00 00 30.0000000  0  2",
		"G01  20915861.130 7        45.000 5",
		"G02  12345678.000 9       100.50063",
	}
	return strings.Join(lines, "\n") + "\n"
}

func TestCompressDecompressRoundTripV3(t *testing.T) {
	input := rinexV3Fixture()

	var compressed bytes.Buffer
	status, err := Compress(strings.NewReader(input), &compressed, Options{})
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, status)

	var decompressed bytes.Buffer
	status, err = Decompress(&compressed, &decompressed, Options{})
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, status)

	wantLines := strings.Split(strings.TrimRight(input, "\n"), "\n")
	gotLines := strings.Split(strings.TrimRight(decompressed.String(), "\n"), "\n")
	require.Len(t, gotLines, len(wantLines))
	for i := range wantLines {
		assert.Equal(t, strings.TrimRight(wantLines[i], " "), strings.TrimRight(gotLines[i], " "), "line %d", i+1)
	}
}

func TestCompressDecompressRoundTripPreservesChangingFlags(t *testing.T) {
	input := rinexV3Fixture()

	var compressed bytes.Buffer
	_, err := Compress(strings.NewReader(input), &compressed, Options{})
	require.NoError(t, err)

	var decompressed bytes.Buffer
	_, err = Decompress(&compressed, &decompressed, Options{})
	require.NoError(t, err)

	gotLines := strings.Split(strings.TrimRight(decompressed.String(), "\n"), "\n")
	require.Len(t, gotLines, 9)
	// epoch 1: G01's LLI is '4', epoch 2: it goes blank.
	assert.Equal(t, byte('4'), gotLines[4][17])
	assert.Equal(t, byte(' '), gotLines[7][17])
	// epoch 1: G02's second SS is '8', epoch 2: it changes to '3'.
	assert.Equal(t, byte('8'), gotLines[5][34])
	assert.Equal(t, byte('3'), gotLines[8][34])
}
