package crinex

import (
	"bytes"
	"fmt"
	"strconv"
)

// MatchSatelliteTable compares the current epoch's satellite-ID list
// against the previous epoch's list, returning prevSlot[i], the slot of the
// i-th current satellite in the previous epoch, or -1 if the satellite is
// new. dupIndex is the index of the first satellite ID that appears again
// later in cur (the first occurrence of a duplicated ID), or -1 if there is
// none. Used symmetrically by encoder and
// decoder, which both need the same mapping to decide whether an arc must
// be re-initialized.
func MatchSatelliteTable(cur, prev []string) (prevSlot []int, dupIndex int) {
	prevSlot = make([]int, len(cur))
	dupIndex = -1

	for i, id := range cur {
		prevSlot[i] = -1
		for j, pid := range prev {
			if id == pid {
				prevSlot[i] = j
				break
			}
		}
		if dupIndex < 0 {
			for j := i + 1; j < len(cur); j++ {
				if cur[j] == id {
					dupIndex = i
					break
				}
			}
		}
	}

	return prevSlot, dupIndex
}

// getSatList returns the satellite-ID list encoded in a RINEX-3/CRINEX-3
// epoch line, starting at OFFSET_SATLST_V3.
func getSatList(b []byte) []string {
	var satList []string
	s := bytes.TrimRight(b, " ")
	for i := OFFSET_SATLST_V3; i+3 <= len(s); i += 3 {
		satList = append(satList, string(s[i:i+3]))
	}
	return satList
}

// getSatListV1 returns the satellite-ID list encoded in a RINEX-2/CRINEX-1
// epoch line (including any continuation lines already merged into b),
// starting at OFFSET_SATLST_V1.
func getSatListV1(b []byte) []string {
	var satList []string
	s := bytes.TrimRight(b, " ")
	for i := OFFSET_SATLST_V1; i+3 <= len(s); i += 3 {
		satList = append(satList, string(s[i:i+3]))
	}
	return satList
}

// gnssSystemOf returns the one-byte GNSS system letter for a RINEX-3
// satellite ID (its first character).
func gnssSystemOf(satId string) string {
	if len(satId) == 0 {
		return ""
	}
	return satId[:1]
}

// repairSatList recovers nsat and the satellite-ID list from a decoded
// epoch record line that does not quite match the expected column layout.
// Both corrections below are historical-data compatibility fixes for
// malformed satellite lists that have been observed in IGS-distributed
// RINEX files in the wild, not features this codec invents.
func repairSatList(b []byte, rinexMajor byte, lineNo int) (satList []string, warns WarningList, err error) {
	var offsetNumSat, offsetSatList int
	switch rinexMajor {
	case '3':
		offsetNumSat, offsetSatList = OFFSET_NUMSAT_V3, OFFSET_SATLST_V3
	case '2':
		offsetNumSat, offsetSatList = OFFSET_NUMSAT_V1, OFFSET_SATLST_V1
	default:
		return nil, nil, ErrUnsupportedVersion
	}

	if len(b) < offsetSatList {
		return nil, nil, newErr(KindMalformedEpoch, lineNo, string(b), ErrMalformedEpochLine)
	}

	n, e := strconv.Atoi(string(bytes.TrimSpace(b[offsetNumSat : offsetNumSat+3])))
	if e != nil {
		return nil, nil, newErr(KindMalformedEpoch, lineNo, string(b), ErrMalformedEpochLine)
	}
	if n > MaxSatellites {
		return nil, nil, newErr(KindBounds, lineNo, string(b), ErrTooManySatellites)
	}

	if len(bytes.TrimRight(b, " ")) != offsetSatList+3*n {
		warns.Add(lineNo, fmt.Sprintf("length of epoch record is wrong: b=%q", b))

		switch {
		case len(bytes.TrimRight(b, " ")) < offsetSatList+3*n:
			// historical format before IGS clarified the satellite-ID field
			// width (IGS mail #1577): the satellite list is space-separated
			// rather than fixed 3-char columns.
			if bb := bytes.Fields(bytes.Trim(b[offsetSatList:], " ")); len(bb) == n {
				warns.Add(lineNo, "modified to 3-byte-per-satellite IDs")
				ss := string(b[:offsetSatList])
				for _, b1 := range bb {
					ss += fmt.Sprintf("%3.3s", b1)
				}
				b = []byte(ss)
			}

		case len(bytes.TrimRight(b, " ")) == offsetSatList+3*n+1 && b[offsetSatList] == ' ':
			// an extra space before the satellite list has been observed in
			// some historical RINEX 2 files.
			warns.Add(lineNo, "deleted an extra space before the satellite list")
			r := make([]byte, len(b))
			copy(r, b)
			b = append(r[:offsetSatList], r[offsetSatList+1:]...)
		}
	}

	switch rinexMajor {
	case '3':
		satList = getSatList(b)
	case '2':
		satList = getSatListV1(b)
	}

	if len(satList) != n {
		warns.Add(lineNo, fmt.Sprintf("mismatch between nsat=%d and parsed satellite count=%d", n, len(satList)))
		i := offsetSatList + len(satList)*3
		if len(b) > i+2 {
			if satId, ok := repairInvalidSatID(b[i : i+2]); ok {
				satList = append(satList, satId)
				warns.Add(lineNo, fmt.Sprintf("repaired invalid satellite ID %q -> %q", string(b[i:i+2]), satId))
			}
		}
	}

	return satList, warns, nil
}

// repairInvalidSatID attempts to fix a 2-byte satellite ID fragment
// mis-shifted by one column, e.g. "X9" (missing its leading space) -> "X 9".
func repairInvalidSatID(b []byte) (string, bool) {
	if len(b) < 2 {
		return "", false
	}
	trimmed := bytes.TrimRight(b, " ")
	if len(trimmed) == 2 && isValidSatSys(string(b[0])) && isNumeric(b[1]) {
		return string([]byte{b[0], ' ', b[1]}), true
	}
	return "", false
}

func isValidSatSys(sys string) bool {
	for _, v := range VALID_SATSYS {
		if v == sys {
			return true
		}
	}
	return false
}

func isNumeric(b byte) bool {
	return b >= '0' && b <= '9'
}
