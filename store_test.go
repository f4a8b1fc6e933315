package crinex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArcStoreGetOrCreate(t *testing.T) {
	s := NewArcStore()
	_, existed := s.Get("G01")
	assert.False(t, existed)

	rec, existed := s.GetOrCreate("G01", []string{"C1C", "L1C"})
	assert.False(t, existed)
	assert.Len(t, rec.Data, 2)

	rec2, existed := s.GetOrCreate("G01", []string{"C1C", "L1C"})
	assert.True(t, existed)
	assert.Same(t, rec, rec2)
}

func TestArcStoreResetClearsEntries(t *testing.T) {
	s := NewArcStore()
	s.GetOrCreate("G01", []string{"C1C"})
	s.Reset()
	_, existed := s.Get("G01")
	assert.False(t, existed)
}

func TestFlagArcDefaultsToSpaces(t *testing.T) {
	var f FlagArc
	assert.Equal(t, byte(' '), f.CharAt(0))
	f.Diff(0, "L7")
	assert.Equal(t, byte('L'), f.CharAt(0))
	assert.Equal(t, byte('7'), f.CharAt(1))
	f.Clear()
	assert.Equal(t, byte(' '), f.CharAt(0))
}

func TestFlagArcDiffRepairRoundTrip(t *testing.T) {
	var enc, dec FlagArc
	d1 := enc.Diff(0, "L7")
	got1 := dec.Repair(0, 2, d1)
	assert.Equal(t, "L7", got1)

	// "L " unchanged in column 0 and newly blank in column 1 diffs to " &":
	// the unchanged column stays a space so the '&' keeps its position;
	// Repair must still recover the full two-column width from the arc's
	// previous state.
	d2 := enc.Diff(0, "L ")
	assert.Equal(t, " &", d2)
	got2 := dec.Repair(0, 2, d2)
	assert.Equal(t, "L ", got2)
	assert.Equal(t, byte('L'), dec.CharAt(0))
	assert.Equal(t, byte(' '), dec.CharAt(1))
}

func TestResetSatelliteArcsBlanksEverything(t *testing.T) {
	rec := NewSatelliteArcs([]string{"C1C", "L1C"})
	rec.Data[0].Encode(123)
	rec.Flags.Diff(0, "1 ")
	resetSatelliteArcs(&rec)
	assert.True(t, rec.Data[0].blank())
	assert.Equal(t, byte(' '), rec.Flags.CharAt(0))
}
