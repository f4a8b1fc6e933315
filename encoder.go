package crinex

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Encoder turns a RINEX byte stream into the equivalent CRINEX byte stream.
// Like Decoder, it holds all per-stream mutable state and is not safe for
// concurrent use on multiple streams.
type Encoder struct {
	opts     Options
	warnings WarningList
	exit     ExitStatus

	rinexMajor byte
	info       HeaderInfo

	arcs  *ArcStore
	clock ArcEntry

	prevEpochLine string
	prevSatList   []string

	epochsSinceInit int
	lineNo          int
}

// NewEncoder allocates an Encoder with empty state.
func NewEncoder(opts Options) *Encoder {
	return &Encoder{
		opts:  opts,
		arcs:  NewArcStore(),
		clock: newClockArcEntry(),
	}
}

// Compress reads a RINEX stream from r and writes the compressed CRINEX
// stream to w, returning a process-style exit status.
func Compress(r io.Reader, w io.Writer, opts Options) (ExitStatus, error) {
	e := NewEncoder(opts)
	return e.Run(r, w)
}

// Run executes the full compressor pipeline: header, then one epoch at a time.
func (e *Encoder) Run(r io.Reader, w io.Writer) (ExitStatus, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), MaxLineLength*4)
	bw := bufio.NewWriterSize(w, 256*1024)

	header, info, warns, err := readHeader(s, &e.lineNo)
	if err != nil {
		return ExitError, err
	}
	e.info = info
	e.rinexMajor = info.RinexMajor
	e.logWarnings(warns)

	crinexVersion := "1.0"
	if e.rinexMajor == '3' {
		crinexVersion = "3.0"
	}
	bw.Write(crinexVersionLines(crinexVersion, time.Now()))
	if _, err := bw.Write(header); err != nil {
		return ExitError, newErr(KindIO, e.lineNo, "", err)
	}

loop:
	for {
		err := e.encodeEpoch(s, bw)
		switch {
		case err == io.EOF:
			break loop
		case err != nil:
			ce, _ := err.(*CodecError)
			if e.opts.Skip && ce != nil && ce.Kind.Recoverable() {
				e.warnings.Add(ce.Line, ce.Error())
				e.opts.logger().Printf("[warning] %s", ce.Error())
				e.exit = ExitWarning
				e.resetState()
				continue
			}
			bw.Flush()
			return ExitError, err
		}
	}

	if err := bw.Flush(); err != nil {
		return ExitError, newErr(KindIO, e.lineNo, "", err)
	}
	return e.exit, nil
}

func (e *Encoder) logWarnings(warns WarningList) {
	for _, w := range warns {
		e.opts.logger().Printf("[warning] %s", w.String())
		e.exit = ExitWarning
	}
}

func (e *Encoder) resetState() {
	e.arcs.Reset()
	e.clock = newClockArcEntry()
	e.prevEpochLine = ""
	e.prevSatList = nil
	e.epochsSinceInit = 0
}

func (e *Encoder) ioErr(s *bufio.Scanner) error {
	if err := s.Err(); err != nil {
		return newErr(KindIO, e.lineNo, "", err)
	}
	return newErr(KindIO, e.lineNo, "", ErrTruncatedFile)
}

// forceInit reports whether the next epoch must be a full re-initialization
// rather than a diffed record: the very first epoch, or every
// ReinitInterval-th epoch when -e N was given.
func (e *Encoder) forceInit() bool {
	if e.prevEpochLine == "" {
		return true
	}
	if e.opts.ReinitInterval > 0 && e.epochsSinceInit+1 >= e.opts.ReinitInterval {
		return true
	}
	return false
}

// encodeEpoch reads one RINEX epoch (the epoch record, optional clock
// offset, and one data record per satellite) and writes its CRINEX
// encoding. It returns io.EOF when the input is exhausted between epochs.
func (e *Encoder) encodeEpoch(s *bufio.Scanner, w *bufio.Writer) error {
	if !s.Scan() {
		if err := s.Err(); err != nil {
			return newErr(KindIO, e.lineNo, "", err)
		}
		return io.EOF
	}
	e.lineNo++
	line := s.Text()
	if len(line) > MaxLineLength {
		return newErr(KindBounds, e.lineNo, line, ErrLineTooLong)
	}

	if e.forceInit() {
		// a full epoch-record re-initialization restarts every arc as well
		e.arcs.Reset()
		e.clock = newClockArcEntry()
	}

	if e.rinexMajor == '3' {
		return e.encodeEpochV3(line, s, w)
	}
	return e.encodeEpochV2(line, s, w)
}

// encodeEpochV3 handles one RINEX 3 epoch. Unlike RINEX 2, the plain RINEX 3
// epoch record carries no satellite list (satellites are identified by the
// first 3 characters of their own data line), while CRINEX 3 embeds the
// satellite list directly in the epoch record. The satellite IDs therefore
// have to be read ahead from the data lines before the epoch record can be
// emitted.
func (e *Encoder) encodeEpochV3(line string, s *bufio.Scanner, w *bufio.Writer) error {
	if len(line) == 0 || line[0] != '>' {
		return newErr(KindMalformedEpoch, e.lineNo, line, ErrMalformedEpochLine)
	}

	flag, numSkip, ok := eventInfo(line, '3')
	if ok && numSkip > 0 {
		return e.passthroughEvent(line, numSkip, s, w)
	}
	_ = flag

	if len(line) < 35 {
		return newErr(KindMalformedEpoch, e.lineNo, line, ErrMalformedEpochLine)
	}
	nsat, err := strconv.Atoi(strings.TrimSpace(line[32:35]))
	if err != nil {
		return newErr(KindMalformedEpoch, e.lineNo, line, ErrMalformedEpochLine)
	}
	if nsat > MaxSatellites {
		return newErr(KindBounds, e.lineNo, line, ErrTooManySatellites)
	}

	var clockTok string
	clockMissing := true
	if len(line) >= 56 {
		clkField := line[41:56]
		if v, missing, ok := parseClockField(clkField); ok && !missing {
			clockTok, _ = e.clock.Encode(v)
			clockMissing = false
		}
	}

	satList := make([]string, nsat)
	dataLines := make([]string, nsat)
	for i := 0; i < nsat; i++ {
		if !s.Scan() {
			return e.ioErr(s)
		}
		e.lineNo++
		dl := s.Text()
		if len(dl) > MaxLineLength {
			return newErr(KindBounds, e.lineNo, dl, ErrLineTooLong)
		}
		if len(dl) < 3 {
			return newErr(KindMalformedEpoch, e.lineNo, dl, ErrMalformedEpochLine)
		}
		satList[i] = dl[:3]
		if _, known := e.info.NTypeGnss[dl[0]]; !known {
			return newErr(KindArcIntegrity, e.lineNo, dl[:3], ErrUnknownGnssSystem)
		}
		dataLines[i] = dl
	}

	prevSlot, dup := MatchSatelliteTable(satList, e.prevSatList)
	if dup >= 0 {
		return newErr(KindDuplicateSatellite, e.lineNo, line, ErrDuplicateSatellite)
	}

	head := line
	if len(head) > 41 {
		head = head[:41]
	}
	head = fmt.Sprintf("%-41s", head)
	full := head + strings.Join(satList, "")

	wasInit := e.emitEpochLine(w, full, '3')
	if clockMissing {
		w.WriteString("\n")
	} else {
		w.WriteString(clockTok)
		w.WriteString("\n")
	}

	for i, satId := range satList {
		sys := gnssSystemOf(satId)
		obsCodes := e.info.ObsTypes[sys]
		isNewSat := prevSlot[i] < 0
		rec, _ := e.arcs.GetOrCreate(satId, obsCodes)
		if err := e.encodeDataLineV3(w, dataLines[i], rec, isNewSat); err != nil {
			return err
		}
	}

	e.prevEpochLine = full
	e.prevSatList = satList
	if wasInit {
		e.epochsSinceInit = 0
	} else {
		e.epochsSinceInit++
	}
	return nil
}

func (e *Encoder) encodeDataLineV3(w *bufio.Writer, line string, rec *SatelliteArcs, isNewSat bool) error {
	body := ""
	if len(line) > 3 {
		body = line[3:]
	}
	if isNewSat {
		resetSatelliteArcs(rec)
	}

	tokens := make([]string, len(rec.ObsCodes))
	var flagTail strings.Builder
	for k := range rec.ObsCodes {
		start := k * 16
		var field string
		if start+14 <= len(body) {
			field = body[start : start+14]
		} else if start < len(body) {
			field = fmt.Sprintf("%-14s", body[start:])
		}

		var lli, ss byte = ' ', ' '
		if start+14 < len(body) {
			lli = body[start+14]
		}
		if start+15 < len(body) {
			ss = body[start+15]
		}

		if field == "" || strings.TrimSpace(field) == "" {
			rec.Data[k].reset()
			tokens[k] = ""
		} else {
			v, missing, ok := parseObsField(field)
			if !ok {
				return newErr(KindMalformedEpoch, e.lineNo, field, ErrMalformedEpochLine)
			}
			if missing {
				rec.Data[k].reset()
				tokens[k] = ""
			} else {
				tok, _ := rec.Data[k].Encode(v)
				tokens[k] = tok
			}
		}
		flagTail.WriteByte(lli)
		flagTail.WriteByte(ss)
	}
	diffedFlags := rec.Flags.Diff(0, flagTail.String())

	satId := line
	if len(satId) > 3 {
		satId = satId[:3]
	}
	out := strings.TrimRight(strings.Join(tokens, " ")+" "+diffedFlags, " ")
	fmt.Fprintf(w, "%-3.3s%s\n", satId, out)
	return nil
}

// encodeEpochV2 handles one RINEX 2 epoch, whose epoch record already
// carries the satellite list (including continuation lines for nsat > 12),
// matching the decoder's writeEpochV2 layout exactly in reverse.
func (e *Encoder) encodeEpochV2(line string, s *bufio.Scanner, w *bufio.Writer) error {
	if len(line) < 32 {
		return newErr(KindMalformedEpoch, e.lineNo, line, ErrMalformedEpochLine)
	}
	flag, numSkip, ok := eventInfo(line, '2')
	if ok && numSkip > 0 {
		return e.passthroughEvent(line, numSkip, s, w)
	}
	_ = flag

	nsat, err := strconv.Atoi(strings.TrimSpace(line[29:32]))
	if err != nil {
		return newErr(KindMalformedEpoch, e.lineNo, line, ErrMalformedEpochLine)
	}
	if nsat > MaxSatellites {
		return newErr(KindBounds, e.lineNo, line, ErrTooManySatellites)
	}

	body := line
	if len(body) > 1 {
		body = body[1:]
	}
	var headBuf strings.Builder
	headBuf.WriteString(body)

	for i := 1; nsat > 12*i; i++ {
		if !s.Scan() {
			return e.ioErr(s)
		}
		e.lineNo++
		cl := s.Text()
		want := 36
		if nsat < 12*(i+1) {
			want = 3 * (nsat % 12)
		}
		lo := 32
		if len(cl) < lo {
			return newErr(KindMalformedEpoch, e.lineNo, cl, ErrMalformedEpochLine)
		}
		hi := lo + want
		if hi > len(cl) {
			hi = len(cl)
		}
		headBuf.WriteString(cl[lo:hi])
	}
	full := headBuf.String()

	satList := getSatListV1([]byte(" " + full))

	prevSlot, dup := MatchSatelliteTable(satList, e.prevSatList)
	if dup >= 0 {
		return newErr(KindDuplicateSatellite, e.lineNo, line, ErrDuplicateSatellite)
	}

	var clockTok string
	clockMissing := true
	if len(line) > 68 {
		if v, missing, ok := parseClockField(line[68:]); ok && !missing {
			clockTok, _ = e.clock.Encode(v)
			clockMissing = false
		}
	}

	wasInit := e.emitEpochLine(w, " "+full, '2')
	if clockMissing {
		w.WriteString("\n")
	} else {
		w.WriteString(clockTok)
		w.WriteString("\n")
	}

	for i, satId := range satList {
		obsCodes := e.info.ObsTypes[" "]
		isNewSat := prevSlot[i] < 0
		rec, _ := e.arcs.GetOrCreate(satId, obsCodes)
		if err := e.encodeDataLineV2(w, s, rec, isNewSat); err != nil {
			return err
		}
	}

	e.prevEpochLine = " " + full
	e.prevSatList = satList
	if wasInit {
		e.epochsSinceInit = 0
	} else {
		e.epochsSinceInit++
	}
	return nil
}

func (e *Encoder) encodeDataLineV2(w *bufio.Writer, s *bufio.Scanner, rec *SatelliteArcs, isNewSat bool) error {
	if isNewSat {
		resetSatelliteArcs(rec)
	}
	idx := 0
	for idx < len(rec.ObsCodes) {
		if !s.Scan() {
			return e.ioErr(s)
		}
		e.lineNo++
		line := s.Text()
		if len(line) > MaxLineLength {
			return newErr(KindBounds, e.lineNo, line, ErrLineTooLong)
		}

		n := 5
		if len(rec.ObsCodes)-idx < n {
			n = len(rec.ObsCodes) - idx
		}

		tokens := make([]string, n)
		var flagTail strings.Builder
		for j := 0; j < n; j++ {
			field := idx + j
			start := j * 16
			var text string
			if start+14 <= len(line) {
				text = line[start : start+14]
			} else if start < len(line) {
				text = fmt.Sprintf("%-14s", line[start:])
			}

			var lli, ss byte = ' ', ' '
			if start+14 < len(line) {
				lli = line[start+14]
			}
			if start+15 < len(line) {
				ss = line[start+15]
			}

			if text == "" || strings.TrimSpace(text) == "" {
				rec.Data[field].reset()
				tokens[j] = ""
			} else {
				v, missing, ok := parseObsField(text)
				if !ok {
					return newErr(KindMalformedEpoch, e.lineNo, text, ErrMalformedEpochLine)
				}
				if missing {
					rec.Data[field].reset()
					tokens[j] = ""
				} else {
					tok, _ := rec.Data[field].Encode(v)
					tokens[j] = tok
				}
			}
			flagTail.WriteByte(lli)
			flagTail.WriteByte(ss)
		}
		diffedFlags := rec.Flags.Diff(idx*2, flagTail.String())

		out := strings.TrimRight(strings.Join(tokens, " ")+" "+diffedFlags, " ")
		w.WriteString(out)
		w.WriteByte('\n')

		idx += n
	}
	return nil
}

// emitEpochLine writes the epoch record, choosing between a full
// initialization and a character-diffed delta against the previous epoch.
// full is the conceptual (decoder-symmetric) epoch string, including its
// embedded satellite list.
func (e *Encoder) emitEpochLine(w *bufio.Writer, full string, rinexMajor byte) (wasInit bool) {
	if e.forceInit() {
		init := full
		if rinexMajor == '2' && len(init) > 0 {
			init = "&" + init[1:]
		}
		w.WriteString(init)
		w.WriteByte('\n')
		return true
	}
	w.WriteString(diffLine(e.prevEpochLine, full))
	w.WriteByte('\n')
	return false
}

func (e *Encoder) passthroughEvent(line string, numSkip int, s *bufio.Scanner, w *bufio.Writer) error {
	w.WriteString(line)
	w.WriteByte('\n')
	lines := make([]string, 0, numSkip)
	for i := 0; i < numSkip; i++ {
		if !s.Scan() {
			return e.ioErr(s)
		}
		e.lineNo++
		l := s.Text()
		lines = append(lines, l)
		w.WriteString(l)
		w.WriteByte('\n')
	}
	e.logWarnings(updateObsTypesFromEventLines(lines, e.rinexMajor, e.lineNo, &e.info))
	return nil
}
