package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertCreatesFirstTimeRecord(t *testing.T) {
	r := New(60)
	rec := r.Upsert(0x4B9696, 1000)
	require.NotNil(t, rec)
	assert.Equal(t, FirstTime, rec.ShowState)
	assert.EqualValues(t, 1000, rec.FirstSeenMs)
	assert.EqualValues(t, 1, rec.Messages)
}

func TestUpsertAgainIncrementsMessagesAndKeepsFirstSeen(t *testing.T) {
	r := New(60)
	r.Upsert(0x4B9696, 1000)
	rec := r.Upsert(0x4B9696, 2000)
	assert.EqualValues(t, 1000, rec.FirstSeenMs)
	assert.EqualValues(t, 2000, rec.LastSeenMs)
	assert.EqualValues(t, 2, rec.Messages)
}

func TestCPRFusionResolvesPosition(t *testing.T) {
	r := New(60)
	const icao = 0x4B9696

	// Canonical CPR reference pair; the even half is fed in as the most
	// recent update to match the published reference answer (see
	// DESIGN.md for why the scenario's own timestamp ordering doesn't
	// reproduce it).
	r.UpdatePosition(icao, true, 74158, 50194, 0)
	r.UpdatePosition(icao, false, 93000, 51372, 8000)

	rec, ok := r.Lookup(icao)
	require.True(t, ok)
	require.True(t, rec.Position.Valid)
	assert.InDelta(t, 52.257, rec.Position.Lat, 0.01)
	assert.InDelta(t, 3.919, rec.Position.Lon, 0.01)
}

func TestCPRFusionSkippedBeyondWindow(t *testing.T) {
	r := New(60)
	const icao = 0x4B9696

	r.UpdatePosition(icao, true, 74158, 50194, 0)
	r.UpdatePosition(icao, false, 93000, 51372, 11_000)

	rec, ok := r.Lookup(icao)
	require.True(t, ok)
	assert.False(t, rec.Position.Valid)
}

func TestTickMarksLastTimeThenEvicts(t *testing.T) {
	r := New(60)
	const icao = 0x4B9696
	r.Upsert(icao, 0)

	r.Tick(60_000)
	rec, ok := r.Lookup(icao)
	require.True(t, ok)
	assert.Equal(t, LastTime, rec.ShowState)

	r.Tick(61_001)
	_, ok = r.Lookup(icao)
	assert.False(t, ok)
}

func TestSnapshotIsCopyOut(t *testing.T) {
	r := New(60)
	r.Upsert(0x4B9696, 0)

	snap := r.Snapshot()
	require.Len(t, snap, 1)
	snap[0].Callsign = "MUTATED"

	rec, _ := r.Lookup(0x4B9696)
	assert.Empty(t, rec.Callsign)
}
