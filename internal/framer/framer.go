// Package framer parses packed Mode S bytes into a downlink-format-tagged
// message, verifies/repairs the CRC-24, and recovers the sender's ICAO
// address for address-parity-coded replies, per spec §4.7. Grounded on the
// plane-watch decoder's DF dispatch switch and the teacher's
// ValidateAndCorrectMessage flow.
package framer

import (
	"mode1090/internal/crc24"
	"mode1090/internal/decode"
	"mode1090/internal/icaocache"
)

// apDFs are the downlink formats coded with address-parity instead of a
// bare ICAO address, per spec §4.7 ("df ∈ {0,4,5,16,20,21,24}").
var apDFs = map[int]bool{0: true, 4: true, 5: true, 16: true, 20: true, 21: true, 24: true}

// directDFs carry the ICAO address in the clear (bits 9-32).
var directDFs = map[int]bool{11: true, 17: true, 18: true}

// Message is a framed, CRC-checked Mode S message ready for field decoding.
type Message struct {
	DF           int
	Bytes        []byte
	Bits         int
	CRCStored    uint32
	CRCOK        bool
	FixClass     crc24.Class
	FixedBits    []int
	ICAO24       uint32
	Capability   uint8
	FlightStatus uint8
	DR           uint8
	UM           uint8
	Payload      decode.Payload
}

// Options controls which CRC repairs the framer may attempt, per spec
// §4.2/§4.7 ("Repair is tried only for DF11 and DF17... two-bit repair runs
// only for DF17 and only when aggressive").
type Options struct {
	FixErrors  bool
	Aggressive bool
}

// lengthBits returns the frame length for a given DF, per spec §3.
// DF24 (Comm-D ELM) is treated as a long (112-bit) frame despite the
// "other DFs default to short" sentence in spec.md, since its
// address-parity field lives in the last three bytes of a 14-byte message
// (msg[11:14]) — a 56-bit frame would leave no room for it. See DESIGN.md.
func lengthBits(df int) int {
	switch df {
	case 0, 4, 5, 11:
		return 56
	case 16, 17, 18, 19, 20, 21, 24:
		return 112
	default:
		return 56
	}
}

// Frame parses raw (already bit-sliced) message bytes into a Message.
// cache is consulted for AP address recovery and updated on DF11/DF17
// frames with a verified, unrepaired CRC.
func Frame(raw []byte, opts Options, cache *icaocache.Cache) *Message {
	if len(raw) == 0 {
		return nil
	}
	df := int(raw[0] >> 3)
	nbits := lengthBits(df)
	nbytes := nbits / 8
	if len(raw) < nbytes {
		return nil
	}
	msg := make([]byte, nbytes)
	copy(msg, raw[:nbytes])

	m := &Message{DF: df, Bytes: msg, Bits: nbits}

	repairable := opts.FixErrors && (df == 11 || df == 17)
	twoBit := repairable && opts.Aggressive && df == 17

	m.CRCStored = crc24.StoredCRC(msg, nbits)

	var class crc24.Class
	var fixed []int
	if crc24.Syndrome(msg, nbits) == 0 {
		class = crc24.NoError
	} else if repairable {
		class, fixed = crc24.Repair(msg, nbits, twoBit)
	} else {
		class = crc24.Unrepaired
	}
	m.FixClass = class
	m.FixedBits = fixed
	m.CRCOK = class == crc24.NoError || class == crc24.SingleBit || class == crc24.TwoBit

	if !m.CRCOK && apDFs[df] {
		if icao, ok := recoverAddress(msg, nbits, df, cache); ok {
			m.ICAO24 = icao
			m.CRCOK = true
		}
	} else if directDFs[df] {
		m.ICAO24 = uint32(decode.GetBits(msg, 9, 32))
	}

	if m.CRCOK && directDFs[df] && (df == 11 || df == 17) && class == crc24.NoError {
		cache.Add(m.ICAO24)
	}

	if !m.CRCOK {
		return m
	}

	m.Capability = uint8(decode.GetBits(msg, 6, 8))
	if df == 4 || df == 5 || df == 20 || df == 21 {
		m.FlightStatus = decode.FlightStatus(msg)
		m.DR = decode.DR(msg)
		m.UM = decode.UM(msg)
	}
	m.Payload = decode.Fields(df, msg)

	return m
}

// recoverAddress brute-forces the 24-bit address for an AP-coded reply:
// XOR the stored CRC field with the computed checksum over the rest of the
// frame to produce a candidate address, then accept only if that address
// was recently seen, per spec §4.7.
func recoverAddress(msg []byte, nbits, df int, cache *icaocache.Cache) (uint32, bool) {
	apBytes := apFieldOffset(df, nbits)
	if apBytes+3 > len(msg) {
		return 0, false
	}

	computed := crc24.DataChecksum(msg, nbits)
	stored := (uint32(msg[apBytes]) << 16) | (uint32(msg[apBytes+1]) << 8) | uint32(msg[apBytes+2])
	candidate := stored ^ computed

	if !cache.Recent(candidate) {
		return 0, false
	}
	return candidate, true
}

// apFieldOffset returns the 0-based byte offset of the address-parity
// field: the last three bytes of the frame for every AP-coded DF, short or
// long. See SPEC_FULL.md §4.7a.
func apFieldOffset(df, nbits int) int {
	return nbits/8 - 3
}
