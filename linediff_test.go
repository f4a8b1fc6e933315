package crinex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffLineUnchanged(t *testing.T) {
	s1 := "G01G02G03"
	s2 := "G01G02G03"
	assert.Equal(t, "", diffLine(s1, s2))
}

func TestDiffLineSingleCharChange(t *testing.T) {
	s1 := "ABCDE"
	s2 := "ABXDE"
	assert.Equal(t, "  X", diffLine(s1, s2))
}

func TestDiffLineSpaceBecomesAmpersand(t *testing.T) {
	s1 := "ABCDE"
	s2 := "AB DE"
	assert.Equal(t, "  &", diffLine(s1, s2))
}

func TestDiffLineLongerTail(t *testing.T) {
	s1 := "AB"
	s2 := "ABCD E"
	assert.Equal(t, "  CD&E", diffLine(s1, s2))
}

func TestRepairRoundTrip(t *testing.T) {
	s1 := "G01G02G03"
	cases := []string{"G01G04G03", "G01 G2G03", "G01G02G03G04"}
	for _, s2 := range cases {
		d := diffLine(s1, s2)
		got := repair(s1, d)
		want := s2
		if len(got) < len(want) {
			t.Fatalf("repair produced shorter result than expected: %q vs %q", got, want)
		}
		assert.Equal(t, want, got[:len(want)])
	}
}

func TestRepairOnEmptyPrevious(t *testing.T) {
	d := diffLine("", "G01G02")
	assert.Equal(t, "G01G02", d)
	assert.Equal(t, "G01G02", repair("", d))
}
