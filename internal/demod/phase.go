package demod

// CorrectPhase applies spec §4.6's one-shot phase correction heuristic to
// the samples following a preamble at j, returning a restore function that
// puts the originals back (the caller always restores before advancing j).
func CorrectPhase(m []uint16, j int) (restore func()) {
	start := j + 16
	saved := make([]uint16, len(m)-start)
	copy(saved, m[start:])

	for k := start; k+1 < len(m); k += 2 {
		next := k + 2
		if next >= len(m) {
			break
		}
		if m[k] > m[k+1] {
			m[next] = uint16(uint32(m[next]) * 5 / 4)
		} else {
			m[next] = uint16(uint32(m[next]) * 4 / 5)
		}
	}

	return func() {
		copy(m[start:], saved)
	}
}
