package crinex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArcEntryEncodeFieldSequence(t *testing.T) {
	a := newArcEntry()

	tok, reinit := a.Encode(23456789123)
	assert.True(t, reinit)
	assert.Equal(t, "3&23456789123", tok)

	tok, reinit = a.Encode(23456789123)
	assert.False(t, reinit)
	assert.Equal(t, "0", tok)

	tok, reinit = a.Encode(23456789124)
	assert.False(t, reinit)
	assert.Equal(t, "1", tok)
}

func TestArcEntryEncodeClockSequence(t *testing.T) {
	c := newClockArcEntry()

	tok, reinit := c.Encode(123456789)
	assert.True(t, reinit)
	assert.Equal(t, "3&123456789", tok)

	tok, reinit = c.Encode(123456789)
	assert.False(t, reinit)
	assert.Equal(t, "0", tok)
}

func TestArcEntryDecodeRoundTrip(t *testing.T) {
	enc := newArcEntry()
	dec := newArcEntry()

	values := []int64{23456789123, 23456789123, 23456789124, 23456789130, 23456789131}
	for _, v := range values {
		tok, _ := enc.Encode(v)
		got, err := dec.Decode(tok, false)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestArcEntryDecodeRequiresInitForNewSatellite(t *testing.T) {
	a := newArcEntry()
	_, err := a.Decode("1", true)
	assert.ErrorIs(t, err, ErrNoInitFlag)
}

func TestArcEntryDecodePlainDeltaOnBlankArc(t *testing.T) {
	a := newArcEntry()
	_, err := a.Decode("5", false)
	assert.ErrorIs(t, err, ErrNoInitFlag)
}

func TestArcEntryDecodeArcOrderOutOfRange(t *testing.T) {
	a := newArcEntry()
	_, err := a.Decode("9&100", false)
	assert.ErrorIs(t, err, ErrArcOrderOutOfRange)
}

func TestArcEntryCycleSlipForcesReinit(t *testing.T) {
	a := newArcEntry()
	a.Encode(1000000)
	tok, reinit := a.Encode(1000000 + fieldLowerMod + 1)
	assert.True(t, reinit)
	assert.Contains(t, tok, "&")
}

func TestArcEntryClockHasNoCycleSlip(t *testing.T) {
	c := newClockArcEntry()
	c.Encode(0)
	_, reinit := c.Encode(clockLowerMod * 10)
	assert.False(t, reinit)
}

func TestArcEntryBlankAfterReset(t *testing.T) {
	a := newArcEntry()
	a.Encode(42)
	assert.False(t, a.blank())
	a.reset()
	assert.True(t, a.blank())
}
