package rawio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mode1090/internal/framer"
	"mode1090/internal/roster"
)

func TestWriterAcceptEmitsUppercaseHexLine(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	msg := &framer.Message{Bytes: []byte{0x8d, 0x4b, 0x96, 0x96}}
	w.Accept(msg, roster.Record{})

	assert.Equal(t, "*8D4B9696;\n", buf.String())
}

func TestReaderNextDecodesValidLine(t *testing.T) {
	r := NewReader(strings.NewReader("*8D4B9696;\n"))
	raw, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, []byte{0x8d, 0x4b, 0x96, 0x96}, raw)

	_, ok = r.Next()
	assert.False(t, ok)
}

func TestReaderNextSkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		"not a raw line",
		"*ZZZZ;",       // invalid hex
		"*8D4B;",       // odd-length after trim would be fine, but this is even (4 chars) - valid
		"*" + strings.Repeat("AB", 15) + ";", // 30 hex chars > 28, discarded
		"",
	}, "\n")

	r := NewReader(strings.NewReader(input))
	raw, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, []byte{0x8d, 0x4b}, raw)

	_, ok = r.Next()
	assert.False(t, ok)
}

func TestReaderNextTrimsWhitespace(t *testing.T) {
	r := NewReader(strings.NewReader("  *8D4B9696;  \n"))
	raw, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, []byte{0x8d, 0x4b, 0x96, 0x96}, raw)
}
