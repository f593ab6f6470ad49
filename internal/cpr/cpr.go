// Package cpr implements globally-unambiguous CPR (Compact Position
// Reporting) decoding from an even/odd message pair, per spec §4.9.
// Grounded on the teacher's internal/adsb/cpr.go decodeCPRBothFrames, with
// the NL lookup and the global-decode formulas kept exact and the
// single-frame/reference-position fallback dropped: spec §3 requires the
// two CPR halves to agree, full stop, with no reference-position guess.
package cpr

import "math"

const (
	airDlat0 = 360.0 / 60.0
	airDlat1 = 360.0 / 59.0
	denom    = 131072.0 // 2^17
)

// Half is one half (odd or even) of a CPR-encoded position.
type Half struct {
	LatCPR uint32
	LonCPR uint32
}

// modInt is a strictly non-negative modulo, per spec §4.9's "all modular
// operations use non-negative remainders".
func modInt(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}

// NL returns the number of longitude zones for a given latitude, tabulated
// exactly as the Mode S specification's NL(lat) function.
func NL(lat float64) int {
	absLat := math.Abs(lat)
	switch {
	case absLat < 10.47047130:
		return 59
	case absLat < 14.82817437:
		return 58
	case absLat < 18.18626357:
		return 57
	case absLat < 21.02939493:
		return 56
	case absLat < 23.54504487:
		return 55
	case absLat < 25.82924707:
		return 54
	case absLat < 27.93898710:
		return 53
	case absLat < 29.91135686:
		return 52
	case absLat < 31.77209708:
		return 51
	case absLat < 33.53993436:
		return 50
	case absLat < 35.22899598:
		return 49
	case absLat < 36.85025108:
		return 48
	case absLat < 38.41241892:
		return 47
	case absLat < 39.92256684:
		return 46
	case absLat < 41.38651832:
		return 45
	case absLat < 42.80914012:
		return 44
	case absLat < 44.19454951:
		return 43
	case absLat < 45.54626723:
		return 42
	case absLat < 46.86733252:
		return 41
	case absLat < 48.16039128:
		return 40
	case absLat < 49.42776439:
		return 39
	case absLat < 50.67150166:
		return 38
	case absLat < 51.89342469:
		return 37
	case absLat < 53.09516153:
		return 36
	case absLat < 54.27817472:
		return 35
	case absLat < 55.44378444:
		return 34
	case absLat < 56.59318756:
		return 33
	case absLat < 57.72747354:
		return 32
	case absLat < 58.84763776:
		return 31
	case absLat < 59.95459277:
		return 30
	case absLat < 61.04917774:
		return 29
	case absLat < 62.13216659:
		return 28
	case absLat < 63.20427479:
		return 27
	case absLat < 64.26616523:
		return 26
	case absLat < 65.31845310:
		return 25
	case absLat < 66.36171008:
		return 24
	case absLat < 67.39646774:
		return 23
	case absLat < 68.42322022:
		return 22
	case absLat < 69.44242631:
		return 21
	case absLat < 70.45451075:
		return 20
	case absLat < 71.45986473:
		return 19
	case absLat < 72.45884545:
		return 18
	case absLat < 73.45177442:
		return 17
	case absLat < 74.43893416:
		return 16
	case absLat < 75.42056257:
		return 15
	case absLat < 76.39684391:
		return 14
	case absLat < 77.36789461:
		return 13
	case absLat < 78.33374083:
		return 12
	case absLat < 79.29428225:
		return 11
	case absLat < 80.24923213:
		return 10
	case absLat < 81.19801349:
		return 9
	case absLat < 82.13956981:
		return 8
	case absLat < 83.07199445:
		return 7
	case absLat < 83.99173563:
		return 6
	case absLat < 84.89166191:
		return 5
	case absLat < 85.75541621:
		return 4
	case absLat < 86.53536998:
		return 3
	case absLat < 87.00000000:
		return 2
	default:
		return 1
	}
}

func nFunction(lat float64, isOdd int) int {
	n := NL(lat) - isOdd
	if n < 1 {
		n = 1
	}
	return n
}

func dlonFunction(lat float64, isOdd int) float64 {
	return 360.0 / float64(nFunction(lat, isOdd))
}

// Resolve decodes a latitude/longitude from an even and an odd CPR half,
// choosing the more recent half (newerIsOdd) for the longitude zone width,
// per spec §4.9 steps 1-5. ok is false when the latitude is out of range or
// the two halves straddle a latitude zone boundary (NL mismatch) — spec §3's
// "odd_cpr and even_cpr must agree on the CPR NL latitude-zone function".
func Resolve(even, odd Half, newerIsOdd bool) (lat, lon float64, ok bool) {
	latEven := float64(even.LatCPR)
	latOdd := float64(odd.LatCPR)
	lonEven := float64(even.LonCPR)
	lonOdd := float64(odd.LonCPR)

	j := int(math.Floor((59*latEven-60*latOdd)/denom + 0.5))

	rlat0 := airDlat0 * (float64(modInt(j, 60)) + latEven/denom)
	rlat1 := airDlat1 * (float64(modInt(j, 59)) + latOdd/denom)
	if rlat0 >= 270 {
		rlat0 -= 360
	}
	if rlat1 >= 270 {
		rlat1 -= 360
	}

	if rlat0 < -90 || rlat0 > 90 || rlat1 < -90 || rlat1 > 90 {
		return 0, 0, false
	}
	if NL(rlat0) != NL(rlat1) {
		return 0, 0, false
	}

	var rlat float64
	var isOdd int
	var lonZoneLat float64
	if newerIsOdd {
		rlat = rlat1
		isOdd = 1
		lonZoneLat = rlat1
	} else {
		rlat = rlat0
		isOdd = 0
		lonZoneLat = rlat0
	}

	ni := nFunction(lonZoneLat, isOdd)
	m := int(math.Floor((lonEven*float64(NL(lonZoneLat)-1)-lonOdd*float64(NL(lonZoneLat)))/denom + 0.5))

	var lonCPR float64
	if newerIsOdd {
		lonCPR = lonOdd
	} else {
		lonCPR = lonEven
	}
	rlon := dlonFunction(lonZoneLat, isOdd) * (float64(modInt(m, ni)) + lonCPR/denom)
	if rlon > 180 {
		rlon -= 360
	}

	return rlat, rlon, true
}
