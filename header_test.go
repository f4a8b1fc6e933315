package crinex

import (
	"bufio"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObsTypesV3Single(t *testing.T) {
	line := fmt.Sprintf("%-60s%s", "G    4 C1C L1C D1C S1C", "SYS / # / OBS TYPES")
	obsTypes, err := parseObsTypesV3([]string{line})
	require.NoError(t, err)
	assert.Equal(t, []string{"C1C", "L1C", "D1C", "S1C"}, obsTypes["G"])
}

func TestParseObsTypesV2Single(t *testing.T) {
	content := fmt.Sprintf("%6d%-54s", 4, "    L1    L2    C1    P2")
	line := content + "# / TYPES OF OBSERV"
	obsTypes, err := parseObsTypesV2([]string{line})
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "L2", "C1", "P2"}, obsTypes[" "])
	assert.Equal(t, []string{"L1", "L2", "C1", "P2"}, obsTypes["G"])
}

func TestReadHeaderMinimalV3(t *testing.T) {
	lines := []string{
		fmt.Sprintf("%-60s%s", "3.03           OBSERVATION DATA    M: Mixed", "RINEX VERSION / TYPE"),
		fmt.Sprintf("%-60s%s", "G    2 C1C L1C", "SYS / # / OBS TYPES"),
		fmt.Sprintf("%-60s%s", "", "END OF HEADER"),
	}
	input := strings.Join(lines, "\n") + "\n"
	s := bufio.NewScanner(strings.NewReader(input))
	var lineNo int
	header, info, warns, err := readHeader(s, &lineNo)
	require.NoError(t, err)
	assert.Empty(t, warns)
	assert.Equal(t, byte('3'), info.RinexMajor)
	assert.Equal(t, []string{"C1C", "L1C"}, info.ObsTypes["G"])
	assert.Equal(t, 2, info.NTypeGnss['G'])
	assert.Contains(t, string(header), "END OF HEADER")
}

func TestReadHeaderMissingEndOfHeader(t *testing.T) {
	lines := []string{
		fmt.Sprintf("%-60s%s", "2.11           OBSERVATION DATA    GPS", "RINEX VERSION / TYPE"),
	}
	input := strings.Join(lines, "\n") + "\n"
	s := bufio.NewScanner(strings.NewReader(input))
	var lineNo int
	_, _, _, err := readHeader(s, &lineNo)
	require.Error(t, err)
	ce, ok := err.(*CodecError)
	require.True(t, ok)
	assert.Equal(t, KindFormat, ce.Kind)
}
