// Package sbs implements the SBS/Base-Station output interface, per spec
// §6.5: comma-separated ASCII records matching a fixed per-DF/ME
// transmission-type grid. Grounded on the teacher's
// internal/basestation.Writer (its Message struct field order,
// formatCSV's fields-join-with-comma shape, and its extractAltitude/
// extractSquawk/extractCallsign bit-math, generalized from operating on a
// raw beast.Message to this decoder's already-field-decoded
// framer.Message/decode.Payload and roster.Record).
package sbs

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"mode1090/internal/decode"
	"mode1090/internal/framer"
	"mode1090/internal/roster"
)

// Transmission types, per spec §6.5's grid, named after the teacher's
// basestation package constants.
const (
	transESIdentCat    = 1
	transESAirborne    = 3
	transESVelocity    = 4
	transSurveillance  = 5
	transSurveillanceID = 6
	transAllCall       = 8
)

// Writer implements pipeline.Sink, emitting one SBS record per accepted
// message that maps to a row in spec §6.5's grid; messages that don't
// (e.g. any DF18, DF20 or DF24) are silently skipped.
type Writer struct {
	w          io.Writer
	sessionID  int
	aircraftID int
	now        func() time.Time
	bytesSent  uint64 // atomic; feeds internal/stats' per-sink dump
}

// NewWriter wraps w as an SBS sink. now defaults to time.Now; tests inject
// a fixed clock.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, sessionID: 1, aircraftID: 1, now: time.Now}
}

// Accept formats and writes one SBS record for m, if its DF/ME maps to a
// row in spec §6.5's grid.
func (sw *Writer) Accept(m *framer.Message, rec roster.Record) {
	row, ok := gridRow(m)
	if !ok {
		return
	}

	now := sw.now().UTC()
	alert, onGround, spi := flightStatusFlags(m.FlightStatus, m.DF)
	emergency := isEmergencySquawk(m)

	fields := []string{
		"MSG",
		strconv.Itoa(row),
		strconv.Itoa(sw.sessionID),
		strconv.Itoa(sw.aircraftID),
		fmt.Sprintf("%06X", m.ICAO24),
		strconv.Itoa(sw.aircraftID),
		now.Format("2006/01/02"), now.Format("15:04:05.000"),
		now.Format("2006/01/02"), now.Format("15:04:05.000"),
		callsignField(m),
		altitudeField(m),
		groundSpeedField(m),
		trackField(m),
		latField(rec),
		lonField(rec),
		vertRateField(m),
		squawkField(m),
		flagField(alert),
		flagField(emergency),
		flagField(spi),
		flagField(onGround),
	}

	line := strings.Join(fields, ",") + "\r\n"
	n, _ := sw.w.Write([]byte(line))
	atomic.AddUint64(&sw.bytesSent, uint64(n))
}

// BytesSent reports the total bytes written so far, for spec §6.7's
// per-sink statistics dump.
func (sw *Writer) BytesSent() uint64 {
	return atomic.LoadUint64(&sw.bytesSent)
}

// gridRow maps a message to spec §6.5's `MSG,` N, or false if unmapped.
func gridRow(m *framer.Message) (int, bool) {
	switch m.DF {
	case 0:
		return transSurveillance, true
	case 4:
		return transSurveillance, true
	case 5:
		return transSurveillanceID, true
	case 11:
		return transAllCall, true
	case 21:
		return transSurveillanceID, true
	case 17:
		switch m.Payload.(type) {
		case decode.IdentificationPayload:
			return transESIdentCat, true
		case decode.AirbornePositionPayload:
			return transESAirborne, true
		case decode.AirborneVelocityPayload:
			return transESVelocity, true
		}
	}
	return 0, false
}

// flightStatusFlags decodes alert/on-ground/SPI from the Flight Status
// field present on DF4/5/20/21, per the Mode S FS encoding (0 none
// airborne, 1 none on-ground, 2 alert airborne, 3 alert on-ground, 4 alert
// +SPI, 5 SPI only).
func flightStatusFlags(fs uint8, df int) (alert, onGround, spi bool) {
	if df != 4 && df != 5 && df != 20 && df != 21 {
		return false, false, false
	}
	switch fs {
	case 1:
		onGround = true
	case 2:
		alert = true
	case 3:
		alert, onGround = true, true
	case 4:
		alert, spi = true, true
	case 5:
		spi = true
	}
	return alert, onGround, spi
}

func isEmergencySquawk(m *framer.Message) bool {
	p, ok := m.Payload.(decode.IdentityPayload)
	if !ok {
		return false
	}
	return p.Squawk == 7500 || p.Squawk == 7600 || p.Squawk == 7700
}

func flagField(v bool) string {
	if v {
		return "-1"
	}
	return "0"
}

func callsignField(m *framer.Message) string {
	p, ok := m.Payload.(decode.IdentificationPayload)
	if !ok {
		return ""
	}
	return strings.TrimSpace(p.Callsign)
}

func altitudeField(m *framer.Message) string {
	switch p := m.Payload.(type) {
	case decode.AltitudePayload:
		return strconv.Itoa(p.Altitude)
	case decode.AirbornePositionPayload:
		if p.AltitudeOK {
			return strconv.Itoa(p.Altitude)
		}
	}
	return ""
}

func groundSpeedField(m *framer.Message) string {
	if p, ok := m.Payload.(decode.AirborneVelocityPayload); ok {
		return strconv.Itoa(int(p.Speed))
	}
	return ""
}

func trackField(m *framer.Message) string {
	if p, ok := m.Payload.(decode.AirborneVelocityPayload); ok {
		return fmt.Sprintf("%.1f", p.Heading)
	}
	return ""
}

func vertRateField(m *framer.Message) string {
	if p, ok := m.Payload.(decode.AirborneVelocityPayload); ok {
		return strconv.Itoa(p.VertRate)
	}
	return ""
}

func squawkField(m *framer.Message) string {
	if p, ok := m.Payload.(decode.IdentityPayload); ok {
		return fmt.Sprintf("%04d", p.Squawk)
	}
	return ""
}

// latField/lonField report the roster's fused position, per spec §6.5's
// "[+ lat/lon if resolved]" for airborne-position rows - empty until the
// CPR resolver has fused an even/odd pair.
func latField(rec roster.Record) string {
	if !rec.Position.Valid {
		return ""
	}
	return fmt.Sprintf("%.6f", rec.Position.Lat)
}

func lonField(rec roster.Record) string {
	if !rec.Position.Valid {
		return ""
	}
	return fmt.Sprintf("%.6f", rec.Position.Lon)
}
