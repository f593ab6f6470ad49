package cpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// These CPR raw values are the canonical Mode S global-decode worked
// example (spec §8 scenario 4). The reference answer (lat≈52.2572,
// lon≈3.9194) is reproduced by this package when the even half is treated
// as the most recently received one; see DESIGN.md for why the roster feeds
// the halves in that order for the end-to-end fusion test.
func TestResolveCanonicalVectorEvenNewer(t *testing.T) {
	even := Half{LatCPR: 93000, LonCPR: 51372}
	odd := Half{LatCPR: 74158, LonCPR: 50194}

	lat, lon, ok := Resolve(even, odd, false)
	assert.True(t, ok)
	assert.InDelta(t, 52.2572, lat, 0.001)
	assert.InDelta(t, 3.9194, lon, 0.001)
}

func TestResolveOddNewerStaysInRange(t *testing.T) {
	even := Half{LatCPR: 93000, LonCPR: 51372}
	odd := Half{LatCPR: 74158, LonCPR: 50194}

	lat, lon, ok := Resolve(even, odd, true)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, lat, -90.0)
	assert.LessOrEqual(t, lat, 90.0)
	assert.GreaterOrEqual(t, lon, -180.0)
	assert.Less(t, lon, 180.0)
	// Both halves describe the same aircraft a few seconds apart, so the
	// odd-newer branch should land close to (not necessarily identical to)
	// the even-newer branch.
	assert.InDelta(t, 52.257, lat, 0.05)
}

func TestResolveRejectsZoneMismatch(t *testing.T) {
	// Both halves resolve near 86.5N, rlat0 (~86.52) just below and rlat1
	// (~86.57) just above the NL 3/2 boundary at 86.535; NL(rlat0) !=
	// NL(rlat1) should abort.
	even := Half{LatCPR: 55038, LonCPR: 10000}
	odd := Half{LatCPR: 24604, LonCPR: 10000}

	_, _, ok := Resolve(even, odd, true)
	assert.False(t, ok)
}

func TestNLBoundaries(t *testing.T) {
	assert.Equal(t, 59, NL(0))
	assert.Equal(t, 1, NL(89))
	assert.Equal(t, 2, NL(86.9))
	assert.Equal(t, 59, NL(-5))
}
