package crinex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObsFieldBasic(t *testing.T) {
	v, missing, ok := parseObsField("  23456789.123")
	require.True(t, ok)
	assert.False(t, missing)
	assert.Equal(t, int64(23456789123), v)
}

func TestParseObsFieldBlank(t *testing.T) {
	v, missing, ok := parseObsField("              ")
	require.True(t, ok)
	assert.True(t, missing)
	assert.Equal(t, int64(0), v)
}

func TestParseObsFieldWrongWidth(t *testing.T) {
	_, _, ok := parseObsField("123.456")
	assert.False(t, ok)
}

func TestFormatObsFieldRoundTrip(t *testing.T) {
	for _, v := range []int64{23456789123, 0, -1234, 123} {
		text := formatObsField(v)
		assert.Len(t, text, obsFieldWidth)
		got, missing, ok := parseObsField(text)
		require.True(t, ok)
		assert.False(t, missing)
		assert.Equal(t, v, got)
	}
}

func TestParseClockFieldBasic(t *testing.T) {
	v, missing, ok := parseClockField("0.123456789")
	require.True(t, ok)
	assert.False(t, missing)
	assert.Equal(t, int64(123456789), v)
}

func TestParseClockFieldMissing(t *testing.T) {
	_, missing, ok := parseClockField("   ")
	require.True(t, ok)
	assert.True(t, missing)
}

func TestFormatClockFieldRoundTrip(t *testing.T) {
	text := formatClockField(123456789, 9)
	v, missing, ok := parseClockField(text)
	require.True(t, ok)
	assert.False(t, missing)
	assert.Equal(t, int64(123456789), v)
}
