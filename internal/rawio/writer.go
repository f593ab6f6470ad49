// Package rawio implements the Raw Output and Raw Input external
// interfaces, per spec §6.3/§6.4: a line-oriented hex encoding of raw Mode
// S message bytes, used both to emit decoded messages and to re-ingest
// them from another decoder instance.
package rawio

import (
	"encoding/hex"
	"io"
	"strings"
	"sync/atomic"

	"mode1090/internal/framer"
	"mode1090/internal/roster"
)

// Writer implements pipeline.Sink, emitting spec §6.3's
// `"*" <hex-bytes> ";" LF` line per accepted message.
type Writer struct {
	w          io.Writer
	bytesSent  uint64 // atomic; feeds internal/stats' per-sink dump
}

// NewWriter wraps w as a raw-output sink.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Accept writes one raw line for msg. The roster record is unused here -
// raw output is a bytes-only wire format, per spec §6.3.
func (rw *Writer) Accept(msg *framer.Message, _ roster.Record) {
	line := "*" + strings.ToUpper(hex.EncodeToString(msg.Bytes)) + ";\n"
	n, _ := rw.w.Write([]byte(line))
	atomic.AddUint64(&rw.bytesSent, uint64(n))
}

// BytesSent reports the total bytes written so far, for spec §6.7's
// per-sink statistics dump.
func (rw *Writer) BytesSent() uint64 {
	return atomic.LoadUint64(&rw.bytesSent)
}
