package crinex

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckValueRangeFatalWithoutOverride(t *testing.T) {
	d := NewDecoder(Options{})
	tooLarge := int64(100_000_000) * fieldLowerMod
	err := d.checkValueRange(tooLarge, fieldLowerMod, "G01")
	require.Error(t, err)
	ce, ok := err.(*CodecError)
	require.True(t, ok)
	assert.Equal(t, KindValueRange, ce.Kind)
	assert.Equal(t, ExitSuccess, d.exit)
}

func TestCheckValueRangeWarnsWithOutputOverflow(t *testing.T) {
	d := NewDecoder(Options{OutputOverflow: true})
	tooLarge := int64(100_000_000) * fieldLowerMod
	err := d.checkValueRange(tooLarge, fieldLowerMod, "G01")
	require.NoError(t, err)
	assert.Equal(t, ExitWarning, d.exit)
	assert.Len(t, d.warnings, 1)
}

func TestCheckValueRangeInBoundsNeverWarns(t *testing.T) {
	d := NewDecoder(Options{})
	err := d.checkValueRange(123456789, fieldLowerMod, "G01")
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, d.exit)
	assert.Empty(t, d.warnings)
}

func TestUpdateObsTypesFromEventLinesV3(t *testing.T) {
	info := HeaderInfo{
		ObsTypes:  map[string][]string{"G": {"C1C", "L1C"}},
		NTypeGnss: map[byte]int{'G': 2},
	}
	redef := fmtObsTypeLineV3("G", []string{"C1C", "L1C", "S1C"})
	warns := updateObsTypesFromEventLines([]string{redef}, '3', 10, &info)
	assert.Empty(t, warns)
	assert.Equal(t, []string{"C1C", "L1C", "S1C"}, info.ObsTypes["G"])
	assert.Equal(t, 3, info.NTypeGnss['G'])
}

func TestUpdateObsTypesFromEventLinesIgnoresUnrelatedLines(t *testing.T) {
	info := HeaderInfo{
		ObsTypes:  map[string][]string{"G": {"C1C", "L1C"}},
		NTypeGnss: map[byte]int{'G': 2},
	}
	line := fmt.Sprintf("%-60s%s", "unrelated event text", "COMMENT")
	warns := updateObsTypesFromEventLines([]string{line}, '3', 10, &info)
	assert.Empty(t, warns)
	assert.Equal(t, []string{"C1C", "L1C"}, info.ObsTypes["G"])
}

// fmtObsTypeLineV3 builds one "SYS / # / OBS TYPES" record for a single
// system with up to 13 codes, matching parseObsTypesV3's expected layout.
func fmtObsTypeLineV3(sys string, codes []string) string {
	body := sys + "  " + padInt(len(codes), 3)
	for _, c := range codes {
		body += " " + c
	}
	for len(body) < 60 {
		body += " "
	}
	return body + "SYS / # / OBS TYPES"
}

func padInt(n, width int) string {
	s := itoa(n)
	for len(s) < width {
		s = " " + s
	}
	return s
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}
