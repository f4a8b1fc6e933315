package crinex

import "strings"

// diffLine implements the encoder-direction character diff: it emits a
// string in which every character of s2 equal to the character at the same
// column of s1 becomes a space, every character that becomes a space in s2
// where s1 had a non-space becomes '&', and other changed characters are
// copied verbatim. Bytes of s2 past len(s1) are copied verbatim, with any
// space among them also turned into '&', since there is no previous
// character there to diff against. Trailing spaces are stripped from the
// result.
func diffLine(s1, s2 string) string {
	n := len(s1)
	if len(s2) < n {
		n = len(s2)
	}

	b := make([]byte, 0, len(s2))
	for i := 0; i < n; i++ {
		c2 := s2[i]
		if c2 == s1[i] {
			b = append(b, ' ')
		} else if c2 == ' ' {
			b = append(b, '&')
		} else {
			b = append(b, c2)
		}
	}
	if len(s2) > len(s1) {
		tail := s2[len(s1):]
		for i := 0; i < len(tail); i++ {
			if tail[i] == ' ' {
				b = append(b, '&')
			} else {
				b = append(b, tail[i])
			}
		}
	}

	return strings.TrimRight(string(b), " ")
}

// repair implements the decoder-direction reconstruction: given the
// previous line s1 (or "") and a compressed delta d, it copies from s1
// wherever d has a space, replaces with a real space wherever d has '&',
// and takes the character from d otherwise. If d is longer than s1, the
// result is extended to len(d): in that suffix '&' becomes a space, other
// non-space characters are copied, and a space leaves a zero byte, since
// there is no s1 character there to keep.
func repair(s1, d string) string {
	b := make([]byte, len(s1))
	copy(b, s1)

	if len(d) > len(b) {
		b = append(b, make([]byte, len(d)-len(b))...)
	}

	for i := 0; i < len(d); i++ {
		switch d[i] {
		case ' ':
			// keep whatever s1 (or the zero byte, if s1 was too short) had.
		case '&':
			b[i] = ' '
		default:
			b[i] = d[i]
		}
	}

	return string(b)
}
