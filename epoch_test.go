package crinex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventInfoNormalEpoch(t *testing.T) {
	line := "> 2021 01 01 00 00  0.0000000  0 32"
	flag, numSkip, ok := eventInfo(line, '3')
	assert.True(t, ok)
	assert.Equal(t, byte('0'), flag)
	assert.Equal(t, 0, numSkip)
}

func TestEventInfoSpecialEventWithSkipLines(t *testing.T) {
	line := "> 2021 01 01 00 00  0.0000000  4  3"
	flag, numSkip, ok := eventInfo(line, '3')
	assert.True(t, ok)
	assert.Equal(t, byte('4'), flag)
	assert.Equal(t, 3, numSkip)
}

func TestIsEpochStartV3RequiresMarker(t *testing.T) {
	assert.True(t, isEpochStart(">2021", '3'))
	assert.False(t, isEpochStart("2021 ", '3'))
}

func TestRecoveryCommentLineIsValidCommentRecord(t *testing.T) {
	line := recoveryCommentLine()
	assert.GreaterOrEqual(t, len(line), 61)
	assert.Contains(t, line, "COMMENT")
}
