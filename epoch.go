package crinex

import (
	"fmt"
	"strconv"
	"strings"
)

// State is one of the states of the shared epoch state machine.
type State int

const (
	StateHeader State = iota
	StateAwaitingEpoch
	StateEmittingEpoch
	StateEventPassthrough
	StateRecovering
)

func (s State) String() string {
	switch s {
	case StateHeader:
		return "header"
	case StateAwaitingEpoch:
		return "awaiting-epoch"
	case StateEmittingEpoch:
		return "emitting-epoch"
	case StateEventPassthrough:
		return "event-passthrough"
	case StateRecovering:
		return "recovering"
	default:
		return "unknown"
	}
}

// recoveryCommentLine is the synthetic record the decoder emits after a
// skip-mode recovery, formatted as a RINEX comment record: the text
// left-justified in 60 columns followed by the COMMENT label.
func recoveryCommentLine() string {
	const text = "*** Some epochs are skipped by CRX2RNX ***"
	return fmt.Sprintf("%-60sCOMMENT\n", text)
}

// epochMarker returns the epoch marker column character for a RINEX major
// version: ' ' for RINEX 2, '>' for RINEX 3.
func epochMarker(rinexMajor byte) byte {
	if rinexMajor == '3' {
		return '>'
	}
	return ' '
}

// eventFlagColumn returns the 0-based column of the epoch event flag:
// 28 for RINEX 2, 31 for RINEX 3.
func eventFlagColumn(rinexMajor byte) int {
	if rinexMajor == '3' {
		return 31
	}
	return 28
}

// isEpochStart reports whether line begins a new epoch record (as opposed
// to continuing one), based on the marker column.
func isEpochStart(line string, rinexMajor byte) bool {
	if len(line) == 0 {
		return false
	}
	if rinexMajor == '3' {
		return line[0] == '>'
	}
	return true // RINEX 2 epoch lines have no distinguishing leading marker
}

// eventInfo extracts the event flag and, if the event flag indicates a
// special (non-observation) record, the number of following lines to pass
// through verbatim.
func eventInfo(line string, rinexMajor byte) (flag byte, numSkip int, ok bool) {
	col := eventFlagColumn(rinexMajor)
	if len(line) <= col {
		return 0, 0, false
	}
	flag = line[col]
	if flag <= '1' {
		return flag, 0, true
	}

	var countField string
	if rinexMajor == '3' {
		if len(line) < 35 {
			return flag, 0, false
		}
		countField = line[32:35]
	} else {
		if len(line) < 32 {
			return flag, 0, false
		}
		countField = line[29:32]
	}

	n, err := strconv.Atoi(strings.TrimSpace(countField))
	if err != nil {
		return flag, 0, false
	}
	return flag, n, true
}

// nsatField returns the 0-based offset and width of the nsat column for a
// RINEX major version.
func nsatField(rinexMajor byte) (offset, width int) {
	if rinexMajor == '3' {
		return OFFSET_NUMSAT_V3, 3
	}
	return OFFSET_NUMSAT_V1, 3
}
