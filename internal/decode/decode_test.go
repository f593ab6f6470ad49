package decode

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hexMsg(t *testing.T, h string) []byte {
	t.Helper()
	b, err := hex.DecodeString(h)
	require.NoError(t, err)
	return b
}

// This is the canonical even-frame airborne-position message (spec §8
// scenario 4): icao 40621D, AC12 altitude 38000ft, CPR lat=93000 lon=51372.
func TestFieldsAirbornePositionEven(t *testing.T) {
	msg := hexMsg(t, "8D40621D58C382D690C8AC2863A7")

	p := Fields(17, msg)
	pos, ok := p.(AirbornePositionPayload)
	require.True(t, ok)

	assert.False(t, pos.Odd)
	assert.True(t, pos.AltitudeOK)
	assert.Equal(t, 38000, pos.Altitude)
	assert.Equal(t, UnitFeet, pos.AltUnit)
	assert.EqualValues(t, 93000, pos.RawLat17)
	assert.EqualValues(t, 51372, pos.RawLon17)
}

func TestAC12TwentyFiveFootResolution(t *testing.T) {
	// Q=1 field for 38000ft: N=1560 encodes as 0xC38 (3128); derive it
	// directly from the reference message instead of hand-building bits.
	msg := hexMsg(t, "8D40621D58C382D690C8AC2863A7")
	code := GetBits(msg[4:], 9, 20)
	alt, unit, ok := AC12(code)
	require.True(t, ok)
	assert.Equal(t, UnitFeet, unit)
	assert.Equal(t, 38000, alt)
}

func TestSquawkDecodesFourOctalDigits(t *testing.T) {
	assert.Equal(t, 1200, Squawk(0x808))
	assert.Equal(t, 7700, Squawk(0xAAA))
}

func TestCallsignRejectsInvalidCharacters(t *testing.T) {
	// An all-zero ME field decodes to the '?' filler character, which is
	// not in [A-Z0-9 ], so Callsign must report failure rather than "????????".
	me := make([]byte, 11)
	_, ok := Callsign(me)
	assert.False(t, ok)
}

func TestAC13FeetQBitSet(t *testing.T) {
	msg := hexMsg(t, "02E19A3C401A60")
	code := GetBits(msg, 20, 32)
	alt, unit, ok := AC13(code)
	require.True(t, ok)
	assert.Equal(t, UnitFeet, unit)
	assert.Equal(t, 41300, alt)
}

func TestGillhamDecodesHundredFootIncrements(t *testing.T) {
	// M=0, Q=0; C4 and B2 set: Gillham code for 700ft.
	alt, unit, ok := AC13(0x108)
	require.True(t, ok)
	assert.Equal(t, UnitFeet, unit)
	assert.Equal(t, 700, alt)
}

func TestGillhamRejectsIllegalCBits(t *testing.T) {
	// C1-C4 all zero is an illegal Gillham pattern.
	_, _, ok := AC13(0x0000)
	assert.False(t, ok)
}

func TestOperationalPayloadForUnhandledMEType(t *testing.T) {
	msg := hexMsg(t, "8D40621D58C382D690C8AC2863A7")
	// Force an out-of-range ME type by decoding a position message as if it
	// were a different type via the dispatcher's default branch: type 9-18
	// is handled, so instead verify type 28 (emergency/priority) falls
	// through to OperationalPayload using a synthetic ME field.
	me := make([]byte, 7)
	me[0] = 28 << 3 // ME bits1-5 = 28
	p := extendedSquitterFields(me)
	op, ok := p.(OperationalPayload)
	require.True(t, ok)
	assert.EqualValues(t, 28, op.METype)
	_ = msg
}
