package decode

// Fields decodes the DF-specific and (for DF17/18) ME-specific payload of a
// framed Mode S message. msg is the full message (7 or 14 bytes); df is the
// already-extracted downlink format. Unsupported DF/ME combinations return
// nil, matching spec §4.8's "emit no payload for message types outside this
// decoder's scope".
func Fields(df int, msg []byte) Payload {
	switch df {
	case 0, 4, 16, 20:
		code := GetBits(msg, 20, 32)
		alt, unit, ok := AC13(code)
		if !ok {
			return nil
		}
		return AltitudePayload{Altitude: alt, Unit: unit}

	case 5, 21:
		code := GetBits(msg, 20, 32)
		return IdentityPayload{Squawk: Squawk(code)}

	case 11:
		return CapabilityPayload{Capability: uint8(GetBits(msg, 6, 8))}

	case 17, 18:
		if len(msg) < 11 {
			return nil
		}
		me := msg[4:]
		return extendedSquitterFields(me)
	}
	return nil
}

func extendedSquitterFields(me []byte) Payload {
	metype := METype(me)

	switch {
	case metype >= 1 && metype <= 4:
		cs, ok := Callsign(me)
		if !ok {
			return nil
		}
		return IdentificationPayload{
			Callsign:        cs,
			EmitterCategory: IdentificationCategory(me),
			AircraftType:    metype,
		}

	case metype >= 9 && metype <= 18:
		odd, latCPR, lonCPR := RawCPR(me)
		acCode := GetBits(me, 9, 20)
		alt, unit, altOK := AC12(acCode)
		return AirbornePositionPayload{
			Odd:        odd,
			UTCSync:    Bit(me, 21) != 0,
			Altitude:   alt,
			AltitudeOK: altOK,
			AltUnit:    unit,
			RawLat17:   latCPR,
			RawLon17:   lonCPR,
		}

	case metype == 19:
		subtype := VelocitySubtype(me)
		switch subtype {
		case 1, 2:
			speed, heading, ok := GroundVelocity(me, int(subtype))
			if !ok {
				return nil
			}
			return AirborneVelocityPayload{
				Speed:    speed,
				Heading:  heading,
				VertRate: VerticalRate(me),
				VRSource: vrSource(me),
			}
		case 3, 4:
			airspeed, heading, headingOK := AirspeedHeading(me, int(subtype))
			return HeadingPayload{
				HeadingValid: headingOK,
				Heading:      heading,
				Airspeed:     airspeed,
				VertRate:     VerticalRate(me),
			}
		}
		return nil

	default:
		return OperationalPayload{METype: metype, MESubtype: uint8(GetBits(me, 6, 8))}
	}
}

// vrSource reports whether the vertical rate source bit (ME bit 36)
// indicates barometric or GNSS-derived vertical rate.
func vrSource(me []byte) string {
	if Bit(me, 36) != 0 {
		return "gnss"
	}
	return "baro"
}
