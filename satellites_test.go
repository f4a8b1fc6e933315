package crinex

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchSatelliteTableNewAndCarried(t *testing.T) {
	prev := []string{"G01", "G02", "G03"}
	cur := []string{"G02", "G04", "G03"}

	prevSlot, dup := MatchSatelliteTable(cur, prev)
	assert.Equal(t, -1, dup)
	assert.Equal(t, []int{1, -1, 2}, prevSlot)
}

func TestMatchSatelliteTableDuplicateDetected(t *testing.T) {
	cur := []string{"G01", "G02", "G01"}
	_, dup := MatchSatelliteTable(cur, nil)
	assert.Equal(t, 0, dup)
}

func TestMatchSatelliteTableAllNewOnFirstEpoch(t *testing.T) {
	cur := []string{"G01", "R02"}
	prevSlot, dup := MatchSatelliteTable(cur, nil)
	assert.Equal(t, -1, dup)
	assert.Equal(t, []int{-1, -1}, prevSlot)
}

func TestGetSatListV3(t *testing.T) {
	prefix := fmt.Sprintf("%-41s", "> 2021 01 01 00 00  0.0000000  0 32")
	line := prefix + "G01G02G03"
	got := getSatList([]byte(line))
	assert.Equal(t, []string{"G01", "G02", "G03"}, got)
}

func TestGnssSystemOf(t *testing.T) {
	assert.Equal(t, "G", gnssSystemOf("G01"))
	assert.Equal(t, "R", gnssSystemOf("R12"))
	assert.Equal(t, "", gnssSystemOf(""))
}

func TestRepairInvalidSatID(t *testing.T) {
	id, ok := repairInvalidSatID([]byte("G9"))
	assert.True(t, ok)
	assert.Equal(t, "G 9", id)

	_, ok = repairInvalidSatID([]byte("99"))
	assert.False(t, ok)
}
