package crinex

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// defaultLogger is used by Decoder/Encoder when no Logger override is given
// in Options.
var defaultLogger = log.New(os.Stderr, "", log.LstdFlags)

// ExitStatus mirrors the three-valued exit code contract of the CLI tools.
type ExitStatus int

const (
	ExitSuccess ExitStatus = 0
	ExitError   ExitStatus = 1
	ExitWarning ExitStatus = 2
)

// Options configures a Decoder or Encoder; it is the entire surface the CLI
// shell threads through to the core codec.
type Options struct {
	Skip           bool // -s: recover from malformed epochs instead of aborting
	ReinitInterval int  // -e N: compressor-only periodic full re-init, 0 disables
	OutputOverflow bool // --output_overflow: decompressor-only, warn instead of fail
	Logger         *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return defaultLogger
}

// Decoder turns a CRINEX byte stream into the equivalent RINEX byte stream.
// All mutable state for one conversion lives here; Decoder is not safe for
// concurrent use on multiple streams.
type Decoder struct {
	opts     Options
	warnings WarningList
	exit     ExitStatus

	rinexMajor  byte
	crinexMajor string
	info        HeaderInfo

	arcs  *ArcStore
	clock ArcEntry

	prevEpochLine string
	prevSatList   []string

	lineNo int
}

// NewDecoder allocates a Decoder with empty state.
func NewDecoder(opts Options) *Decoder {
	return &Decoder{
		opts:  opts,
		arcs:  NewArcStore(),
		clock: newClockArcEntry(),
	}
}

// Decompress reads a CRINEX stream from r and writes the reconstructed
// RINEX stream to w, returning a process-style exit status.
func Decompress(r io.Reader, w io.Writer, opts Options) (ExitStatus, error) {
	d := NewDecoder(opts)
	return d.Run(r, w)
}

// Run executes the full decompressor pipeline: magic line, header,
// then one epoch at a time.
func (d *Decoder) Run(r io.Reader, w io.Writer) (ExitStatus, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), MaxLineLength*4)
	bw := bufio.NewWriterSize(w, 256*1024)

	if err := d.readMagic(s); err != nil {
		return ExitError, err
	}

	header, info, warns, err := readHeader(s, &d.lineNo)
	if err != nil {
		return ExitError, err
	}
	d.info = info
	d.rinexMajor = info.RinexMajor
	d.logWarnings(warns)
	if _, err := bw.Write(header); err != nil {
		return ExitError, newErr(KindIO, d.lineNo, "", err)
	}

loop:
	for {
		err := d.decodeEpoch(s, bw)
		switch {
		case err == io.EOF:
			break loop
		case err != nil:
			ce, _ := err.(*CodecError)
			if d.opts.Skip && ce != nil && ce.Kind.Recoverable() {
				d.warnings.Add(ce.Line, ce.Error())
				d.opts.logger().Printf("[warning] %s", ce.Error())
				d.exit = ExitWarning
				recErr := d.recover(s, bw)
				if recErr == io.EOF {
					break loop
				}
				if recErr != nil {
					bw.Flush()
					return ExitError, recErr
				}
				continue
			}
			bw.Flush()
			return ExitError, err
		}
	}

	if err := bw.Flush(); err != nil {
		return ExitError, newErr(KindIO, d.lineNo, "", err)
	}
	return d.exit, nil
}

func (d *Decoder) logWarnings(warns WarningList) {
	for _, w := range warns {
		d.opts.logger().Printf("[warning] %s", w.String())
		d.exit = ExitWarning
	}
}

// readMagic consumes the two CRINEX-only prefix lines ("CRINEX VERS / TYPE"
// and "CRINEX PROG / DATE") that precede the RINEX header, recording the
// CRINEX major version.
func (d *Decoder) readMagic(s *bufio.Scanner) error {
	if !s.Scan() {
		return d.ioErr(s)
	}
	d.lineNo++
	line := s.Text()
	if len(line) < 40 {
		return newErr(KindFormat, d.lineNo, line, ErrBadMagic)
	}
	ver := strings.TrimSpace(line[:20])
	magic := line[20:40]
	if magic != "COMPACT RINEX FORMAT" {
		return newErr(KindFormat, d.lineNo, line, ErrBadMagic)
	}
	if ver != "1.0" && ver != "3.0" && ver != "3.1" {
		return newErr(KindFormat, d.lineNo, line, ErrUnsupportedVersion)
	}
	d.crinexMajor = ver

	if !s.Scan() {
		return d.ioErr(s)
	}
	d.lineNo++
	return nil
}

func (d *Decoder) ioErr(s *bufio.Scanner) error {
	if err := s.Err(); err != nil {
		return newErr(KindIO, d.lineNo, "", err)
	}
	return newErr(KindIO, d.lineNo, "", ErrTruncatedFile)
}

// recover resets all arcs and the epoch-line/satellite-list history, then
// reads lines until a new well-formed initialization record is found,
// emitting a synthetic comment record in the output.
func (d *Decoder) recover(s *bufio.Scanner, w *bufio.Writer) error {
	d.arcs.Reset()
	d.clock = newClockArcEntry()
	d.prevEpochLine = ""
	d.prevSatList = nil

	w.WriteString(recoveryCommentLine())

	for s.Scan() {
		d.lineNo++
		line := s.Text()
		if strings.HasPrefix(line, ">") || strings.HasPrefix(line, "&") {
			return d.decodeEpochFrom(line, s, w)
		}
	}
	return d.ioErr(s)
}

// decodeEpoch reads and reconstructs one epoch's worth of records: the
// epoch line, the clock offset, and one data record per satellite. It
// returns io.EOF when the input stream is exhausted between epochs (a
// normal end of file), or a *CodecError describing a malformed or
// truncated epoch.
func (d *Decoder) decodeEpoch(s *bufio.Scanner, w *bufio.Writer) error {
	if !s.Scan() {
		if err := s.Err(); err != nil {
			return newErr(KindIO, d.lineNo, "", err)
		}
		return io.EOF
	}
	d.lineNo++
	return d.decodeEpochFrom(s.Text(), s, w)
}

func (d *Decoder) decodeEpochFrom(epochStr string, s *bufio.Scanner, w *bufio.Writer) error {
	if len(epochStr) > MaxLineLength {
		return newErr(KindBounds, d.lineNo, epochStr, ErrLineTooLong)
	}

	init := strings.HasPrefix(epochStr, ">") || strings.HasPrefix(epochStr, "&")
	if init {
		_, numSkip, ok := eventInfo(epochStr, d.rinexMajor)
		if ok && numSkip > 0 {
			if err := d.passthroughEvent(epochStr, numSkip, s, w); err != nil {
				return err
			}
			return d.decodeEpoch(s, w)
		}
		d.prevEpochLine = epochStr
	} else {
		d.prevEpochLine = repair(d.prevEpochLine, epochStr)
	}

	satList, warns, err := repairSatList([]byte(d.prevEpochLine), d.rinexMajor, d.lineNo)
	if err != nil {
		return err
	}
	d.logWarnings(warns)
	if len(satList) > MaxSatellites {
		return newErr(KindBounds, d.lineNo, epochStr, ErrTooManySatellites)
	}

	prevSlot, dup := MatchSatelliteTable(satList, d.prevSatList)
	if dup >= 0 {
		return newErr(KindDuplicateSatellite, d.lineNo, epochStr, ErrDuplicateSatellite)
	}

	if !s.Scan() {
		return d.ioErr(s)
	}
	d.lineNo++
	clockToken := s.Text()
	clockVal, clockMissing, err := d.decodeClock(clockToken)
	if err != nil {
		return newErr(KindArcIntegrity, d.lineNo, clockToken, err)
	}

	for i, satId := range satList {
		var obsCodes []string
		if d.rinexMajor == '3' {
			sys := gnssSystemOf(satId)
			if _, known := d.info.NTypeGnss[sys[0]]; !known {
				return newErr(KindArcIntegrity, d.lineNo, satId, ErrUnknownGnssSystem)
			}
			obsCodes = d.info.ObsTypes[sys]
		} else {
			obsCodes = d.info.ObsTypes[" "]
		}
		if len(obsCodes) > MaxObsTypes {
			return newErr(KindBounds, d.lineNo, satId, ErrTooManyTypes)
		}

		isNewSat := prevSlot[i] < 0
		rec, _ := d.arcs.GetOrCreate(satId, obsCodes)

		if err := d.decodeDataLine(s, rec, isNewSat); err != nil {
			return err
		}
	}

	if err := d.writeEpoch(w, satList, clockVal, clockMissing); err != nil {
		return err
	}
	d.prevSatList = satList
	return nil
}

func (d *Decoder) passthroughEvent(epochStr string, numSkip int, s *bufio.Scanner, w *bufio.Writer) error {
	w.WriteString(epochStr)
	w.WriteByte('\n')
	lines := make([]string, 0, numSkip)
	for i := 0; i < numSkip; i++ {
		if !s.Scan() {
			return d.ioErr(s)
		}
		d.lineNo++
		line := s.Text()
		lines = append(lines, line)
		w.WriteString(line)
		w.WriteByte('\n')
	}
	d.logWarnings(updateObsTypesFromEventLines(lines, d.rinexMajor, d.lineNo, &d.info))
	return nil
}

// decodeClock decodes the receiver-clock-offset line. An empty line means
// no clock value this epoch; the arc is left untouched so the next present
// value continues the same difference chain.
func (d *Decoder) decodeClock(token string) (v int64, missing bool, err error) {
	if token == "" {
		return 0, true, nil
	}
	v, err = d.clock.Decode(token, false)
	return v, false, err
}

// decodeDataLine reads one (possibly multi-line, for RINEX 2) satellite
// data record and updates rec's arcs/flags in place.
func (d *Decoder) decodeDataLine(s *bufio.Scanner, rec *SatelliteArcs, isNewSat bool) error {
	maxField := len(rec.ObsCodes)
	if d.rinexMajor == '2' {
		maxField = 5
	}

	idx := 0
	for idx < len(rec.ObsCodes) {
		if !s.Scan() {
			return d.ioErr(s)
		}
		d.lineNo++
		line := s.Text()
		if len(line) > MaxLineLength {
			return newErr(KindBounds, d.lineNo, line, ErrLineTooLong)
		}

		body := line
		if d.rinexMajor == '3' {
			if len(line) >= 3 {
				body = line[3:]
			} else {
				body = ""
			}
		}

		n := maxField
		if len(rec.ObsCodes)-idx < n {
			n = len(rec.ObsCodes) - idx
		}
		vals := strings.SplitN(body, " ", n+1)

		var flagDiff string
		if len(vals) == n+1 {
			flagDiff = vals[n]
		}
		rec.Flags.Repair(idx*2, n*2, flagDiff)

		for j := 0; j < n; j++ {
			field := idx + j
			var tok string
			if j < len(vals) {
				tok = vals[j]
			}
			if tok == "" {
				rec.Data[field].reset()
			} else {
				if _, err := rec.Data[field].Decode(tok, isNewSat); err != nil {
					return newErr(KindArcIntegrity, d.lineNo, tok, err)
				}
			}
		}

		idx += n
	}

	return nil
}

// writeEpoch formats and writes the fully reconstructed RINEX epoch record
// and its per-satellite data lines.
func (d *Decoder) writeEpoch(w *bufio.Writer, satList []string, clockVal int64, clockMissing bool) error {
	switch d.rinexMajor {
	case '3':
		return d.writeEpochV3(w, satList, clockVal, clockMissing)
	default:
		return d.writeEpochV2(w, satList, clockVal, clockMissing)
	}
}

// checkValueRange raises KindValueRange when v falls outside the format's
// emission capacity. Without --output_overflow this is fatal; with it, the
// check degrades to a warning and formatting proceeds with the (lossy,
// truncated) value, independent of -s/Options.Skip: per the error taxonomy,
// kind 5 is governed solely by OutputOverflow, not by skip-mode.
func (d *Decoder) checkValueRange(v, lowerMod int64, snippet string) error {
	if valueInRange(v, lowerMod) {
		return nil
	}
	ce := newErr(KindValueRange, d.lineNo, snippet, ErrValueOutOfRange)
	if !d.opts.OutputOverflow {
		return ce
	}
	d.warnings.Add(ce.Line, ce.Error())
	d.opts.logger().Printf("[warning] %s", ce.Error())
	d.exit = ExitWarning
	return nil
}

func (d *Decoder) writeEpochV3(w *bufio.Writer, satList []string, clockVal int64, clockMissing bool) error {
	head := d.prevEpochLine
	if len(head) > 41 {
		head = strings.TrimRight(head[:41], " ")
	}
	if clockMissing {
		fmt.Fprintf(w, "%-35.35s\n", head)
	} else {
		if err := d.checkValueRange(clockVal, clockLowerMod, head); err != nil {
			return err
		}
		clk := formatClockField(clockVal, clockFracDigits('3'))
		fmt.Fprintf(w, "%-35.35s      %15s\n", head, clk)
	}

	for _, satId := range satList {
		rec, _ := d.arcs.Get(satId)
		var b strings.Builder
		fmt.Fprintf(&b, "%-3.3s", satId)
		for k := range rec.Data {
			if rec.Data[k].blank() {
				b.WriteString("                ")
				continue
			}
			if err := d.checkValueRange(rec.Data[k].Diffs[0], fieldLowerMod, satId); err != nil {
				return err
			}
			b.WriteString(formatObsField(rec.Data[k].Diffs[0]))
			b.WriteByte(rec.Flags.CharAt(2 * k))
			b.WriteByte(rec.Flags.CharAt(2*k + 1))
		}
		w.WriteString(strings.TrimRight(b.String(), " "))
		w.WriteByte('\n')
	}
	return nil
}

func (d *Decoder) writeEpochV2(w *bufio.Writer, satList []string, clockVal int64, clockMissing bool) error {
	numSat := len(satList)
	var clkStr string
	if !clockMissing {
		if err := d.checkValueRange(clockVal, clockLowerMod, d.prevEpochLine); err != nil {
			return err
		}
		clkStr = formatClockField(clockVal, clockFracDigits('2'))
	}
	head := d.prevEpochLine

	firstEnd := 32 + 3*numSat
	if firstEnd > len(head) {
		firstEnd = len(head)
	}
	if numSat > 12 {
		body := head
		if len(body) > 68 {
			body = body[1:68]
		} else if len(body) > 1 {
			body = body[1:]
		}
		if clockMissing {
			fmt.Fprintf(w, " %-67s\n", body)
		} else {
			fmt.Fprintf(w, " %-67s%12s\n", body, clkStr)
		}
	} else {
		body := head
		if len(body) > 1 {
			body = body[1:firstEnd]
		}
		if clockMissing {
			fmt.Fprintf(w, " %s\n", body)
		} else {
			fmt.Fprintf(w, " %-67s%12s\n", body, clkStr)
		}
	}
	for i := 1; numSat > 12*i; i++ {
		lo, hi := 32+36*i, 32+36*(i+1)
		if numSat < 12*(i+1) {
			hi = 32 + 36*i + 3*(numSat%12)
		}
		if hi > len(head) {
			hi = len(head)
		}
		if lo > hi {
			lo = hi
		}
		fmt.Fprintf(w, "%32s%-36.36s\n", "", head[lo:hi])
	}

	for _, satId := range satList {
		rec, _ := d.arcs.Get(satId)
		var line []byte
		for k := range rec.Data {
			if rec.Data[k].blank() {
				line = append(line, "                "...)
			} else {
				if err := d.checkValueRange(rec.Data[k].Diffs[0], fieldLowerMod, satId); err != nil {
					return err
				}
				line = append(line, formatObsField(rec.Data[k].Diffs[0])...)
				line = append(line, rec.Flags.CharAt(2*k), rec.Flags.CharAt(2*k+1))
			}
			if k == len(rec.Data)-1 || (k+1)%5 == 0 {
				w.WriteString(strings.TrimRight(string(line), " "))
				w.WriteByte('\n')
				line = nil
			}
		}
	}
	return nil
}
