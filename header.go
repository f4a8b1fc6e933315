package crinex

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ProgramName is embedded in the synthesized "CRINEX PROG / DATE" header
// line, the spot a RINEX header writer typically puts its own program
// name and version.
const ProgramName = "goRNX2CRX"

// crinexDateLayout is the "dd-Mon-yy HH:MM" timestamp format used in the
// synthesized "CRINEX PROG / DATE" header line.
const crinexDateLayout = "02-Jan-06 15:04"

// HeaderInfo is what both directions learn while passing the RINEX header
// through verbatim: the RINEX major version and, per GNSS system letter,
// the number of observation types.
type HeaderInfo struct {
	RinexMajor  byte             // '2' or '3'
	ObsTypes    map[string][]string
	NTypeGnss   map[byte]int
}

// readHeader reads RINEX header lines from s up to and including "END OF
// HEADER", returning the raw header bytes (each line newline-terminated)
// and the parsed HeaderInfo. lineNo is advanced as lines are consumed.
//
// NTypeGnss is returned alongside ObsTypes because the encoder direction
// needs the same per-system table as the decoder: both reject a RINEX 3
// satellite whose system letter it does not list.
func readHeader(s *bufio.Scanner, lineNo *int) (header []byte, info HeaderInfo, warns WarningList, err error) {
	var (
		obsTypesV3, obsTypesV2 []string
		rinexVer                byte
		haveVersion, haveEnd    bool
	)
	info.NTypeGnss = make(map[byte]int)

	for s.Scan() {
		*lineNo++
		line := s.Text()
		header = append(header, []byte(line)...)
		header = append(header, '\n')

		if len(line) < 61 {
			warns.Add(*lineNo, fmt.Sprintf("no header label found: s=%q", line))
			line = fmt.Sprintf("%-60sCOMMENT", line)
		}

		label := line[60:]
		switch {
		case strings.HasPrefix(label, "RINEX VERSION / TYPE"):
			rinexVer = strings.TrimSpace(line[:20])[0]
			haveVersion = true
		case strings.HasPrefix(label, "SYS / # / OBS TYPES"):
			obsTypesV3 = append(obsTypesV3, line)
		case strings.HasPrefix(label, "# / TYPES OF OBSERV"):
			obsTypesV2 = append(obsTypesV2, line)
		case strings.HasPrefix(label, "END OF HEADER"):
			haveEnd = true
		}
		if haveEnd {
			break
		}
	}

	if !haveVersion {
		return header, info, warns, newErr(KindFormat, *lineNo, "", ErrUnsupportedVersion)
	}
	if !haveEnd {
		return header, info, warns, newErr(KindFormat, *lineNo, "", ErrMissingEndOfHeader)
	}
	info.RinexMajor = rinexVer

	var perr error
	switch {
	case rinexVer >= '3':
		info.ObsTypes, perr = parseObsTypesV3(obsTypesV3)
	case rinexVer >= '2':
		info.ObsTypes, perr = parseObsTypesV2(obsTypesV2)
	default:
		return header, info, warns, newErr(KindFormat, *lineNo, "", ErrUnsupportedVersion)
	}
	if perr != nil {
		if perr == ErrTooManyTypes {
			return header, info, warns, newErr(KindBounds, *lineNo, "", ErrTooManyTypes)
		}
		return header, info, warns, newErr(KindFormat, *lineNo, "", fmt.Errorf("%w: %v", ErrMalformedObsTypes, perr))
	}

	for sys, codes := range info.ObsTypes {
		if len(codes) > MaxObsTypes {
			return header, info, warns, newErr(KindBounds, *lineNo, "", ErrTooManyTypes)
		}
		if len(sys) == 1 {
			info.NTypeGnss[sys[0]] = len(codes)
		}
	}

	return header, info, warns, nil
}

// parseObsTypesV3 parses RINEX 3 "SYS / # / OBS TYPES" records into a map
// from GNSS system letter to the ordered list of 3-character obs codes.
//
func parseObsTypesV3(lines []string) (map[string][]string, error) {
	obsTypes := make(map[string][]string)
	if len(lines) == 0 {
		return obsTypes, nil
	}

	for k := 0; k < len(lines); k++ {
		line := lines[k]
		if len(line) < 6 {
			return obsTypes, fmt.Errorf("too short obs types line %q", line)
		}
		satSys := line[:1]
		numCodes, err := strconv.Atoi(strings.TrimSpace(line[3:6]))
		if err != nil {
			return obsTypes, fmt.Errorf("bad numCodes: %w", err)
		}
		if numCodes > MaxObsTypes {
			return obsTypes, ErrTooManyTypes
		}
		obsTypes[satSys] = make([]string, numCodes)

		n, idx := 0, 7
		for i := 0; i < numCodes; i++ {
			if len(line) < idx+3 {
				return obsTypes, fmt.Errorf("too short obs types line %q", line)
			}
			obsTypes[satSys][i] = line[idx : idx+3]
			n++
			idx += 4
			if n == 13 && i+1 < numCodes {
				k++
				if k >= len(lines) {
					return obsTypes, fmt.Errorf("obs types header is missing a continuation line")
				}
				line = lines[k]
				n, idx = 0, 7
			}
		}
	}
	return obsTypes, nil
}

// parseObsTypesV2 parses the RINEX 2 "# / TYPES OF OBSERV" record(s) into a
// single obs-code list shared by all satellite systems (RINEX 2 has no
// per-system obs types).
//
func parseObsTypesV2(lines []string) (map[string][]string, error) {
	obsTypes := make(map[string][]string)
	if len(lines) == 0 {
		return obsTypes, fmt.Errorf("no # / TYPES OF OBSERV line found")
	}

	line := lines[0]
	fields := strings.Fields(line[:60])
	fields = fields[1:] // drop the numCodes token itself

	numCodes, err := strconv.Atoi(strings.TrimSpace(replaceNonNumericToSpace(line[:6])))
	if err != nil {
		return obsTypes, fmt.Errorf("bad numCodes %q: %w", line[:6], err)
	}
	obsCodes := make([]string, numCodes)

	k, n, idx := 0, 0, 10
	for i := 0; i < numCodes; i++ {
		if len(fields) <= n {
			return obsTypes, fmt.Errorf("not enough obs codes for numCodes=%d", numCodes)
		}
		if len(fields[n]) < 2 {
			return obsTypes, fmt.Errorf("bad obs code %q", fields[n])
		}
		obsCodes[i] = fields[n][:2]
		n++
		idx += 6
		if n == 9 && i+1 < numCodes {
			k++
			if k >= len(lines) {
				return obsTypes, fmt.Errorf("obs types header is missing a continuation line")
			}
			line = lines[k]
			n, idx = 0, 10
			if len(line) > 60 {
				fields = strings.Fields(line[:60])
			} else {
				fields = strings.Fields(line)
			}
		}
	}

	for _, sys := range VALID_SATSYS {
		obsTypes[sys] = obsCodes
	}
	return obsTypes, nil
}

// updateObsTypesFromEventLines scans the lines passed through verbatim after
// a special event record for "SYS / # / OBS TYPES" (RINEX 3) or
// "# / TYPES OF OBSERV" (RINEX 2) relabeling records, parsing and applying
// any found the same way readHeader parses the initial header block. This
// covers event records that redefine the observation-type counts mid-file:
// subsequent epochs must be encoded/decoded against the new ntype/ntype_gnss,
// not the ones read from the original header.
func updateObsTypesFromEventLines(lines []string, rinexMajor byte, lineNo int, info *HeaderInfo) WarningList {
	var warns WarningList
	var v3Lines, v2Lines []string
	for _, line := range lines {
		if len(line) < 61 {
			continue
		}
		label := line[60:]
		switch {
		case strings.HasPrefix(label, "SYS / # / OBS TYPES"):
			v3Lines = append(v3Lines, line)
		case strings.HasPrefix(label, "# / TYPES OF OBSERV"):
			v2Lines = append(v2Lines, line)
		}
	}

	switch {
	case len(v3Lines) > 0 && rinexMajor == '3':
		obsTypes, err := parseObsTypesV3(v3Lines)
		if err != nil {
			warns.Add(lineNo, fmt.Sprintf("failed to parse event obs type redefinition: %v", err))
			return warns
		}
		for sys, codes := range obsTypes {
			info.ObsTypes[sys] = codes
			if len(sys) == 1 {
				info.NTypeGnss[sys[0]] = len(codes)
			}
		}
	case len(v2Lines) > 0 && rinexMajor != '3':
		obsTypes, err := parseObsTypesV2(v2Lines)
		if err != nil {
			warns.Add(lineNo, fmt.Sprintf("failed to parse event obs type redefinition: %v", err))
			return warns
		}
		info.ObsTypes = obsTypes
		for _, sys := range VALID_SATSYS {
			info.NTypeGnss[sys[0]] = len(obsTypes[sys])
		}
	}
	return warns
}

func replaceNonNumericToSpace(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] < '0' || b[i] > '9' {
			b[i] = ' '
		}
	}
	return string(b)
}

// crinexVersionLines synthesizes the two header lines the compressor adds
// at the top of its output: "CRINEX VERS / TYPE" and "CRINEX
// PROG / DATE", the latter stamped with now in UTC.
func crinexVersionLines(crinexVersion string, now time.Time) []byte {
	var b []byte
	b = append(b, fmt.Sprintf("%-20s%-40sCRINEX VERS   / TYPE\n", crinexVersion, "COMPACT RINEX FORMAT")...)
	stamp := now.UTC().Format(crinexDateLayout)
	b = append(b, fmt.Sprintf("%-20s%-20s%-20sCRINEX PROG / DATE\n", ProgramName, "", stamp)...)
	return b
}

