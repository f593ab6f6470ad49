package decode

// RawCPR extracts the F flag (0=even,1=odd) and the 17-bit lat/lon CPR
// fields from a DF17/18 airborne-position ME field, per spec §4.9.
// Grounded on the teacher's extractPosition field layout.
func RawCPR(me []byte) (odd bool, latCPR, lonCPR uint32) {
	f := Bit(me, 22)
	latCPR = GetBits(me, 23, 39)
	lonCPR = GetBits(me, 40, 56)
	return f == 1, latCPR, lonCPR
}
