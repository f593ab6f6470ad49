package rawio

import (
	"bufio"
	"encoding/hex"
	"io"
	"strings"
	"sync/atomic"
)

// maxHexChars is spec §6.4's line-length gate: "twice the long-message
// byte count" - 14 bytes, 2 hex chars/byte - 28 hex chars.
const maxHexChars = 28

// Reader parses spec §6.4's raw line format, discarding malformed lines
// silently rather than surfacing a parse error.
type Reader struct {
	sc            *bufio.Scanner
	bytesReceived uint64 // atomic; feeds internal/stats' per-sink dump
}

// NewReader wraps r as a raw-input source.
func NewReader(r io.Reader) *Reader {
	return &Reader{sc: bufio.NewScanner(r)}
}

// Next returns the raw bytes of the next accepted line, ready to re-enter
// the framer as if locally demodulated. ok is false once r is exhausted.
func (rd *Reader) Next() (raw []byte, ok bool) {
	for rd.sc.Scan() {
		line := strings.TrimSpace(rd.sc.Text())
		if len(line) < 2 || line[0] != '*' {
			continue
		}
		hexPart := strings.TrimSuffix(line[1:], ";")
		if hexPart == "" || len(hexPart) > maxHexChars || len(hexPart)%2 != 0 {
			continue
		}
		b, err := hex.DecodeString(hexPart)
		if err != nil {
			continue
		}
		atomic.AddUint64(&rd.bytesReceived, uint64(len(b)))
		return b, true
	}
	return nil, false
}

// Err returns the first non-EOF error encountered by the scanner, if any.
func (rd *Reader) Err() error {
	return rd.sc.Err()
}

// BytesReceived reports the total decoded payload bytes accepted so far,
// for spec §6.7's per-sink statistics dump.
func (rd *Reader) BytesReceived() uint64 {
	return atomic.LoadUint64(&rd.bytesReceived)
}
