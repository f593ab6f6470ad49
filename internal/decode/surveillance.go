package decode

// FlightStatus returns the 3-bit flight-status field common to DF4/5/20/21
// (message bits 6-8, the bottom 3 bits of msg[0]).
func FlightStatus(msg []byte) uint8 {
	return uint8(GetBits(msg, 6, 8))
}

// DR returns the 5-bit downlink-request field (message bits 9-13).
// Grounded on the plane-watch decoder's decodeDownLinkRequest.
func DR(msg []byte) uint8 {
	return uint8(GetBits(msg, 9, 13))
}

// UM returns the 6-bit utility-message field (message bits 14-19).
// Grounded on the plane-watch decoder's decodeUtilityMessage.
func UM(msg []byte) uint8 {
	return uint8(GetBits(msg, 14, 19))
}
