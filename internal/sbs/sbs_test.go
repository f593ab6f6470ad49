package sbs

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mode1090/internal/decode"
	"mode1090/internal/framer"
	"mode1090/internal/roster"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAcceptDF11EmitsAllCallRow(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.now = fixedClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	m := &framer.Message{DF: 11, ICAO24: 0x4B9696}
	w.Accept(m, roster.Record{})

	line := buf.String()
	require.True(t, strings.HasSuffix(line, "\r\n"))
	fields := strings.Split(strings.TrimSuffix(line, "\r\n"), ",")
	require.Len(t, fields, 22)
	assert.Equal(t, "MSG", fields[0])
	assert.Equal(t, "8", fields[1])
	assert.Equal(t, "4B9696", fields[4])
}

func TestAcceptDF17IdentificationEmitsCallsignRow(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.now = fixedClock(time.Now())

	m := &framer.Message{
		DF:      17,
		ICAO24:  0x4B9696,
		Payload: decode.IdentificationPayload{Callsign: "UAL123"},
	}
	w.Accept(m, roster.Record{})

	fields := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), ",")
	assert.Equal(t, "1", fields[1])
	assert.Equal(t, "UAL123", fields[10])
}

func TestAcceptDF17PositionEmitsLatLonWhenResolved(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.now = fixedClock(time.Now())

	m := &framer.Message{
		DF:      17,
		ICAO24:  0x4B9696,
		Payload: decode.AirbornePositionPayload{Altitude: 38000, AltitudeOK: true},
	}
	rec := roster.Record{Position: roster.Position{Lat: 52.257, Lon: 3.919, Valid: true}}
	w.Accept(m, rec)

	fields := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), ",")
	assert.Equal(t, "3", fields[1])
	assert.Equal(t, "38000", fields[11])
	assert.Equal(t, "52.257000", fields[14])
	assert.Equal(t, "3.919000", fields[15])
}

func TestAcceptDF5EmitsEmergencySquawkFlag(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.now = fixedClock(time.Now())

	m := &framer.Message{
		DF:           5,
		ICAO24:       0x4B9696,
		FlightStatus: 2,
		Payload:      decode.IdentityPayload{Squawk: 7700},
	}
	w.Accept(m, roster.Record{})

	fields := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), ",")
	assert.Equal(t, "7700", fields[17])
	assert.Equal(t, "-1", fields[18]) // alert, from FS=2
	assert.Equal(t, "-1", fields[19]) // emergency squawk
}

func TestAcceptUnmappedMessageIsSkipped(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	m := &framer.Message{DF: 24, ICAO24: 0x4B9696}
	w.Accept(m, roster.Record{})

	assert.Empty(t, buf.String())
}
