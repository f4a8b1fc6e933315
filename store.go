package crinex

// SatelliteArcs holds the per-observation-type arcs and flag strings for one
// satellite, for one RINEX version layout. Shared by both the encoder and
// the decoder.
type SatelliteArcs struct {
	ObsCodes []string
	Data     []ArcEntry
	Flags    FlagArc
}

// NewSatelliteArcs returns a SatelliteArcs with one blank ArcEntry per
// observation code and a blank flag arc.
func NewSatelliteArcs(obsCodes []string) SatelliteArcs {
	s := SatelliteArcs{
		ObsCodes: obsCodes,
		Data:     make([]ArcEntry, len(obsCodes)),
	}
	for i := range s.Data {
		s.Data[i] = newArcEntry()
	}
	return s
}

// resetSatelliteArcs blanks every data arc and flag for a satellite that
// disappeared and reappeared: the gap breaks the difference chain, so the
// next value for each observation type must be a fresh re-initialization,
// even though the map entry itself was never removed.
func resetSatelliteArcs(rec *SatelliteArcs) {
	for i := range rec.Data {
		rec.Data[i].reset()
	}
	rec.Flags.Clear()
}

// ArcStore is the two-dimensional table of arcs, indexed by satellite ID
// and observation-type slot. It is implemented as a map keyed by satellite
// ID rather than a dense [MaxSatellites][MaxObsTypes] array, since
// MaxSatellites/MaxObsTypes only bound capacity and most epochs use a small
// fraction of either. Entries are never deleted when a satellite
// disappears; they are simply not looked up until the satellite
// reappears, at which point the caller re-initializes.
type ArcStore struct {
	sats map[string]*SatelliteArcs
}

// NewArcStore returns an empty ArcStore.
func NewArcStore() *ArcStore {
	return &ArcStore{sats: make(map[string]*SatelliteArcs)}
}

// Get returns the arcs for satId, and whether they already existed.
func (s *ArcStore) Get(satId string) (*SatelliteArcs, bool) {
	a, ok := s.sats[satId]
	return a, ok
}

// GetOrCreate returns the arcs for satId, creating them with obsCodes if
// they do not already exist.
func (s *ArcStore) GetOrCreate(satId string, obsCodes []string) (*SatelliteArcs, bool) {
	if a, ok := s.sats[satId]; ok {
		return a, true
	}
	a := NewSatelliteArcs(obsCodes)
	s.sats[satId] = &a
	return s.sats[satId], false
}

// Reset discards all satellite arcs (used on skip-mode recovery).
func (s *ArcStore) Reset() {
	s.sats = make(map[string]*SatelliteArcs)
}

// FlagArc holds one satellite's LLI/signal-strength flag text, the pair of
// characters per observation type concatenated in field order, so it can be
// character-diffed against the previous epoch's flags the same way diffLine
// and repair treat whole epoch lines. A RINEX 2 satellite's flags may be
// written across several continuation lines, so Diff/Repair take the
// satellite-wide column offset of the chunk being compressed; RINEX 3 always
// uses offset 0 since all of a satellite's flags live on one line.
type FlagArc struct {
	prev string
	set  bool
}

// chunk returns the width-byte span of the arc's previous flag text
// starting at offset, short or empty if the arc has never been set or the
// span runs past what was previously stored.
func (f *FlagArc) chunk(offset, width int) string {
	if !f.set || offset >= len(f.prev) {
		return ""
	}
	end := offset + width
	if end > len(f.prev) {
		end = len(f.prev)
	}
	return f.prev[offset:end]
}

// store overwrites the arc's previous flag text at offset with chunk,
// extending with spaces if chunk reaches past what was previously stored.
func (f *FlagArc) store(offset int, chunk string) {
	end := offset + len(chunk)
	b := make([]byte, end)
	n := copy(b, f.prev)
	for i := n; i < offset; i++ {
		b[i] = ' '
	}
	copy(b[offset:], chunk)
	if end < len(f.prev) {
		b = append(b, f.prev[end:]...)
	}
	f.prev = string(b)
	f.set = true
}

// Diff returns the character diff (diffLine's encoding: unchanged columns
// become space, a column going blank becomes '&') of cur, the actual flag
// text for one data line's worth of observation types, against the same
// satellite-wide span of the arc's previous flags, then records cur as the
// new previous value at that span.
func (f *FlagArc) Diff(offset int, cur string) string {
	d := diffLine(f.chunk(offset, len(cur)), cur)
	f.store(offset, cur)
	return d
}

// Repair reconstructs the actual flag text for one data line's worth of
// observation types from a compressed diff d, the satellite-wide column
// offset, and width (2 * the number of observation types on this line).
// width must be passed explicitly rather than inferred from len(d): diffLine
// trims trailing unchanged columns from the wire text, so d is routinely
// shorter than the span it represents, and repair must still see the full
// previous span for those trimmed columns to carry forward correctly.
func (f *FlagArc) Repair(offset, width int, d string) string {
	out := repair(f.chunk(offset, width), d)
	f.store(offset, out)
	return out
}

// Clear discards the arc's previous flag text, used when a satellite
// disappears and reappears and so the diff chain must restart blank.
func (f *FlagArc) Clear() {
	f.prev = ""
	f.set = false
}

// CharAt returns the reconstructed flag character at satellite-wide column
// col (0 for a field's LLI, 1 for its signal strength, i.e. col =
// 2*fieldIndex+0 or +1), or a space if nothing was ever stored there.
func (f *FlagArc) CharAt(col int) byte {
	if !f.set || col >= len(f.prev) {
		return ' '
	}
	return f.prev[col]
}
