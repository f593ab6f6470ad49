package decode

import "strings"

// adsbCharset is the 6-bit character set used by Mode S identification
// messages (ME types 1-4), per spec §4.8. Grounded on the teacher's
// adsb.ADSBCharset table.
const adsbCharset = "?ABCDEFGHIJKLMNOPQRSTUVWXYZ????? ???????????????0123456789??????"

// Callsign decodes an 8-character callsign from a DF17/18 identification
// ME field (ME bytes, i.e. message bytes 5 onward), per spec §4.8. Grounded
// on the teacher's extractCallsign, which extracts six 6-bit characters at
// a time starting at ME bit 9.
func Callsign(me []byte) (string, bool) {
	if len(me) < 7 {
		return "", false
	}

	var chars [8]byte
	for i := 0; i < 8; i++ {
		first := 9 + i*6
		last := first + 5
		chars[i] = adsbCharset[GetBits(me, first, last)]
	}

	for _, c := range chars {
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == ' ') {
			return "", false
		}
	}

	return strings.TrimRight(string(chars[:]), " "), true
}
