package crinex

// valid satellite systems (" " denotes GPS)
var VALID_SATSYS = []string{" ", "G", "R", "E", "J", "C", "I", "S"}

const (
	OFFSET_NUMSAT_V3 int = 32 // offset bytes to number of satellite (crx v3.0)
	OFFSET_SATLST_V3 int = 41 // offset bytes to satellite list (crx v3.0)
	OFFSET_NUMSAT_V1 int = 29 // offset bytes to number of satellite (crx v1.0)
	OFFSET_SATLST_V1 int = 32 // offset bytes to satellite list (crx v1.0)
)

// Limits matching the format's own bounds on satellites, observation
// types, and record width, plus the arc depth fixed by the CRINEX format.
const (
	// MaxDiffOrder is N, the fixed finite-difference arc depth.
	MaxDiffOrder = 3

	// MaxSatellites is the largest nsat this codec will accept per epoch.
	MaxSatellites = 100

	// MaxObsTypes is the largest number of observation types per GNSS system.
	MaxObsTypes = 100

	// MaxLineLength is the largest logical line this codec will accept.
	MaxLineLength = 2048

	// fieldLowerDigits is the width of the lower (decimal) part of a data
	// field value: 5 digits.
	fieldLowerDigits = 5

	// clockLowerDigits is the width of the lower (decimal) part of a clock
	// value: 8 digits.
	clockLowerDigits = 8

	// fieldLowerMod / clockLowerMod are 10^fieldLowerDigits and 10^clockLowerDigits.
	fieldLowerMod int64 = 100000
	clockLowerMod int64 = 100000000

	// obsFieldWidth is the width, in bytes, of one 14-column numeric
	// observation field (the two trailing 1-byte flags are separate).
	obsFieldWidth = 14
)
