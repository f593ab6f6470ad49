package demod

import "github.com/sirupsen/logrus"

// Stats mirrors the teacher's per-stage counters on ADSBProcessor, scoped to
// just the demod stage.
type Stats struct {
	Preambles     uint64
	SlicedOK      uint64
	RejectedNoisy uint64
	Corrected     uint64
}

// Detector walks a magnitude block, finding preambles and slicing messages,
// retrying with phase correction on a failed first attempt, per spec
// §4.4-4.6.
type Detector struct {
	logger     *logrus.Logger
	Aggressive bool
	Stats      Stats
}

// New builds a Detector. logger may be nil, in which case logging is a
// no-op (matches the teacher's nil-logger tolerance elsewhere in internal/adsb).
func New(logger *logrus.Logger, aggressive bool) *Detector {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.PanicLevel)
	}
	return &Detector{logger: logger, Aggressive: aggressive}
}

// Next scans m starting at start, returning the byte slice and message
// length of the next acceptable message found, and the index to resume
// scanning from. ok is false once no further preamble remains.
func (d *Detector) Next(m []uint16, start int) (msg []byte, msgLen int, nextJ int, ok bool) {
	j := start
	for {
		j = FindPreamble(m, j)
		if j == -1 {
			return nil, 0, len(m), false
		}
		d.Stats.Preambles++

		res := Slice(m, j, d.Aggressive)
		if !res.OK {
			restore := CorrectPhase(m, j)
			res = Slice(m, j, d.Aggressive)
			restore()
			if res.OK {
				d.Stats.Corrected++
			}
		}

		if !res.OK {
			d.Stats.RejectedNoisy++
			j++
			continue
		}

		d.Stats.SlicedOK++
		advance := res.MsgLen * 12 / 5
		return res.Bytes[:res.MsgLen], res.MsgLen, j + advance, true
	}
}
