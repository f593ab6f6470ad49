package pipeline

import (
	"mode1090/internal/decode"
	"mode1090/internal/roster"
)

// dispatchPayload routes one decoded Payload into the matching Roster
// update call, per spec §4.10's per-field-type update rules.
func dispatchPayload(r *roster.Roster, icao uint32, p decode.Payload, nowMs int64) roster.Record {
	switch v := p.(type) {
	case decode.AltitudePayload:
		r.UpdateAltitude(icao, v.Altitude, true, nowMs)
	case decode.IdentityPayload:
		r.UpdateIdentity(icao, v.Squawk, nowMs)
	case decode.IdentificationPayload:
		r.UpdateCallsign(icao, v.Callsign, nowMs)
	case decode.AirborneVelocityPayload:
		r.UpdateVelocity(icao, v.Speed, v.Heading, true, nowMs)
	case decode.HeadingPayload:
		r.UpdateVelocity(icao, 0, v.Heading, v.HeadingValid, nowMs)
	case decode.AirbornePositionPayload:
		if v.AltitudeOK {
			r.UpdateAltitude(icao, v.Altitude, true, nowMs)
		}
		r.UpdatePosition(icao, v.Odd, v.RawLat17, v.RawLon17, nowMs)
	case decode.CapabilityPayload, decode.OperationalPayload:
		r.Upsert(icao, nowMs)
	default:
		r.Upsert(icao, nowMs)
	}

	rec, ok := r.Lookup(icao)
	if !ok {
		return *r.Upsert(icao, nowMs)
	}
	return rec
}
