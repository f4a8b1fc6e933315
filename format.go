package crinex

import (
	"strconv"
	"strings"
)

// valueInRange reports whether the upper part of v (v with its lowerMod
// lower decimal digits split off, the same split the arc arithmetic itself
// uses) stays within the format's emission capacity: -10^7 <= u <= 10^8-1.
// Callers check this before formatting a reconstructed field or clock value
// and raise KindValueRange when it fails.
func valueInRange(v int64, lowerMod int64) bool {
	u := v / lowerMod
	return u >= -10_000_000 && u <= 99_999_999
}

// parseObsField parses one 14-column RINEX numeric observation field into
// its raw integer representation: the value with the decimal point
// removed, e.g. "  23456789.123" -> 23456789123. The decimal point is
// always at offset 10 of the 14-character field. missing reports a field
// of 14 spaces; ok is false if the field is neither a valid number nor
// blank.
func parseObsField(field string) (v int64, missing bool, ok bool) {
	if len(field) != obsFieldWidth {
		return 0, false, false
	}
	if strings.TrimSpace(field) == "" {
		return 0, true, true
	}
	if field[10] != '.' {
		return 0, false, false
	}

	digits := strings.TrimSpace(field[:10] + field[11:14])
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false, false
	}
	return n, false, true
}

// formatObsField formats a raw integer value (as produced by parseObsField
// or reconstructed from an arc) back into a right-justified 14-column
// RINEX numeric observation field with exactly 3 decimal digits, without
// floating point so there is no rounding drift at the column boundary.
func formatObsField(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	for len(s) < 4 {
		s = "0" + s
	}
	intPart := s[:len(s)-3]
	fracPart := s[len(s)-3:]

	out := intPart + "." + fracPart
	if neg {
		out = "-" + out
	}
	if len(out) > obsFieldWidth {
		// the caller checks valueInRange and raises KindValueRange before
		// calling this; under --output_overflow that check is downgraded to
		// a warning and formatting proceeds anyway, so this truncation is
		// the actual (lossy) --output_overflow behavior, not a defensive
		// fallback.
		out = out[:obsFieldWidth]
	}
	for len(out) < obsFieldWidth {
		out = " " + out
	}
	return out
}

// parseClockField parses a RINEX clock-offset field into its raw integer
// representation the same way parseObsField does for data fields: the
// decimal point is located and removed, yielding an integer scaled by
// 10^(number of fractional digits actually present). RINEX 2 clock fields
// carry 9 fractional digits and RINEX 3 carry 12; missing reports an
// entirely blank field.
func parseClockField(field string) (v int64, missing bool, ok bool) {
	trimmed := strings.TrimSpace(field)
	if trimmed == "" {
		return 0, true, true
	}
	dot := strings.IndexByte(trimmed, '.')
	if dot < 0 {
		return 0, false, false
	}
	digits := trimmed[:dot] + trimmed[dot+1:]
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false, false
	}
	return n, false, true
}

// formatClockField formats a raw clock integer back into its RINEX text
// representation with fracDigits fractional digits (9 for RINEX 2, 12 for
// RINEX 3).
func formatClockField(v int64, fracDigits int) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	for len(s) < fracDigits+1 {
		s = "0" + s
	}
	intPart := s[:len(s)-fracDigits]
	fracPart := s[len(s)-fracDigits:]
	out := intPart + "." + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
