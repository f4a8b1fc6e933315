package crinex

import (
	"strconv"
	"strings"
)

// ArcEntry is a per-(satellite, observation-type) finite-difference arc.
// Diffs[0] holds the 0th-order (raw) value of the field at the current
// head of the arc; Diffs[k] holds the kth-order difference. Rather than
// tracking the upper and lower decimal digits of each level as two
// parallel values so fixed-width formatting stays exact, this keeps a
// single signed integer per level: Go's int64 is wide enough to hold the
// full value, and splitting into upper/lower parts for fixed-column output
// is a pure formatting step (see formatDiff) performed only at emission
// time.
//
// The same type backs both the per-(satellite, type) data arcs and the
// clock-offset arc; only lowerDigits and cycleSlip differ between the two
// uses.
type ArcEntry struct {
	Diffs    [MaxDiffOrder + 1]int64
	order    int // number of accumulated difference levels; -1 = blank, no active arc
	arcOrder int // target order for this arc (N on encode, read from "M&" on decode)

	lowerDigits int  // width of the fixed lower part at emission (5 for fields, 8 for clock)
	cycleSlip   bool // whether a too-large top difference forces re-initialization
}

// newArcEntry returns a fresh, uninitialized data-field arc entry.
func newArcEntry() ArcEntry {
	return ArcEntry{order: -1, arcOrder: MaxDiffOrder, lowerDigits: fieldLowerDigits, cycleSlip: true}
}

// newClockArcEntry returns a fresh, uninitialized clock arc entry. The
// clock arc has no cycle-slip heuristic: receiver clock steering can
// legitimately jump by more than the field threshold.
func newClockArcEntry() ArcEntry {
	return ArcEntry{order: -1, arcOrder: MaxDiffOrder, lowerDigits: clockLowerDigits, cycleSlip: false}
}

// blank reports whether the arc currently holds no data (order == -1).
func (a *ArcEntry) blank() bool { return a.order == -1 }

// reset clears the arc to its newly-created state (order -1, target N).
func (a *ArcEntry) reset() {
	a.order = -1
	a.arcOrder = MaxDiffOrder
	a.Diffs = [MaxDiffOrder + 1]int64{}
}

// Encode advances the arc by one epoch given a new raw field value v, and
// returns the token to emit: either a re-initialization ("M&" + literal
// value) or a single differenced integer. Re-initialization happens when
// the arc was blank (new satellite / previously-blank field) or, for
// cycle-slip-sensitive arcs, when the newly computed top-of-arc difference
// exceeds the cycle-slip threshold.
func (a *ArcEntry) Encode(v int64) (token string, reinit bool) {
	if a.blank() {
		return a.reinitialize(v), true
	}

	k := a.order
	if k < a.arcOrder {
		k++
	}

	var next [MaxDiffOrder + 1]int64
	next[0] = v
	for lvl := 1; lvl <= k; lvl++ {
		next[lvl] = next[lvl-1] - a.Diffs[lvl-1]
	}

	if a.cycleSlip && abs64(next[k]) > fieldLowerMod {
		return a.reinitialize(v), true
	}

	a.order = k
	a.Diffs = next
	return formatDiff(next[k], a.lowerDigits), false
}

func (a *ArcEntry) reinitialize(v int64) string {
	a.order = 0
	a.arcOrder = MaxDiffOrder
	a.Diffs[0] = v
	return reinitToken(a.arcOrder, v)
}

// Decode advances the arc by one epoch given a compressed token (either a
// "M&value" re-initialization or a plain signed top-of-arc delta), and
// returns the reconstructed field value. isNewSat indicates the satellite
// did not appear in the previous epoch; a plain delta is only valid when
// the arc already holds state.
func (a *ArcEntry) Decode(token string, isNewSat bool) (v int64, err error) {
	if m, lit, ok := splitReinitToken(token); ok {
		if m < 0 || m > MaxDiffOrder {
			return 0, ErrArcOrderOutOfRange
		}
		a.order = 0
		a.arcOrder = m
		a.Diffs[0] = lit
		return lit, nil
	}

	if a.blank() {
		return 0, ErrNoInitFlag
	}
	if isNewSat {
		return 0, ErrUninitializedArc
	}

	d, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return 0, err
	}

	k := a.order
	if k < a.arcOrder {
		k++
	}

	var next [MaxDiffOrder + 1]int64
	next[k] = d
	for lvl := k; lvl >= 1; lvl-- {
		next[lvl-1] = next[lvl] + a.Diffs[lvl-1]
	}

	a.order = k
	a.Diffs = next
	return next[0], nil
}

// reinitToken formats the "M&value" re-initialization token.
func reinitToken(arcOrder int, v int64) string {
	return strconv.Itoa(arcOrder) + "&" + strconv.FormatInt(v, 10)
}

// splitReinitToken splits a token of the form "M&value" into its arc order
// and literal value. ok is false if token is not a re-initialization token.
func splitReinitToken(token string) (arcOrder int, v int64, ok bool) {
	i := strings.IndexByte(token, '&')
	if i < 0 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(token[:i])
	if err != nil {
		return 0, 0, false
	}
	lit, err := strconv.ParseInt(token[i+1:], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return m, lit, true
}

// formatDiff formats the normalized (u, l) pair derived from v, where l is
// the lower lowerDigits decimal digits and u is whatever remains. Because
// Go's integer division and modulo truncate toward zero, v/mod and v%mod
// always agree in sign (or one is zero), so no separate sign-reconciliation
// step is needed.
func formatDiff(v int64, lowerDigits int) string {
	mod := pow10(lowerDigits)
	u := v / mod
	l := v % mod
	if u == 0 {
		return strconv.FormatInt(l, 10)
	}
	if l < 0 {
		l = -l
	}
	var b strings.Builder
	b.WriteString(strconv.FormatInt(u, 10))
	pad := lowerDigits - numDigits(l)
	for i := 0; i < pad; i++ {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(l, 10))
	return b.String()
}

func pow10(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

func numDigits(v int64) int {
	if v == 0 {
		return 1
	}
	n := 0
	for v > 0 {
		n++
		v /= 10
	}
	return n
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
