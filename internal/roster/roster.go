// Package roster maintains the keyed, time-evicted aircraft state table,
// per spec §4.10. Grounded on the teacher's internal/adsb.AircraftState
// map-plus-mutex shape (internal/adsb/processor.go's `aircraft
// map[uint32]*AircraftState`), generalized from "CPR tracking only" to the
// full per-aircraft record spec §3 and §4.10 describe (callsign, altitude,
// speed/heading, identity, show_state), and from the source's linked-list
// aircraft table (see SPEC_FULL.md / spec.md §9 "Linked-list roster") to a
// plain keyed map, exactly the re-architecture the spec calls for.
package roster

import (
	"sync"

	"mode1090/internal/cpr"
)

// ShowState mirrors spec §3's show_state enum for display-layer transitions.
type ShowState int

const (
	None ShowState = iota
	FirstTime
	Normal
	LastTime
)

// CPRHalf is one timestamped half of an airborne-position CPR pair.
type CPRHalf struct {
	LatCPR uint32
	LonCPR uint32
	TSMs   int64
	Valid  bool
}

// Position is a resolved lat/lon.
type Position struct {
	Lat, Lon float64
	Valid    bool
}

// Record is one aircraft's tracked state, keyed by 24-bit ICAO address.
type Record struct {
	ICAO24       uint32
	FirstSeenMs  int64
	LastSeenMs   int64
	Messages     uint64
	Callsign     string
	Altitude     int
	AltitudeOK   bool
	Speed        float64
	Heading      float64
	HeadingValid bool
	IdentitySq   int
	OddCPR       CPRHalf
	EvenCPR      CPRHalf
	Position     Position
	ShowState    ShowState
}

// cprFusionWindowMs is spec §3/§4.10's "within 10 000 ms" CPR-pair-agreement
// rule — the only data-level timeout in the decoder.
const cprFusionWindowMs = 10_000

// Roster is the keyed, mutex-guarded aircraft table. Per spec §5, the
// roster is mutated only by the decoder thread; Observers take read-only
// snapshots between ticks, so the mutex here guards against Observer reads
// racing a concurrent tick/upsert, not decoder-vs-decoder contention.
type Roster struct {
	mu      sync.RWMutex
	ttlSecs int64
	records map[uint32]*Record
}

// New builds an empty Roster with the given eviction TTL, per spec §4.10.
func New(ttlSecs int64) *Roster {
	return &Roster{ttlSecs: ttlSecs, records: make(map[uint32]*Record)}
}

// Upsert returns the record for icao24, creating it (with ShowState
// FirstTime) if absent, per spec §4.10. Returns nil only if allocation
// fails — spec §4.4/§9's "allocation failure... returns a null record... is
// not fatal" — which a Go map insert cannot actually produce short of OOM,
// but the nil-return contract is kept so callers handle it uniformly.
func (r *Roster) Upsert(icao24 uint32, nowMs int64) *Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[icao24]
	if !ok {
		rec = &Record{ICAO24: icao24, FirstSeenMs: nowMs, ShowState: FirstTime}
		r.records[icao24] = rec
	} else if rec.ShowState == LastTime || rec.ShowState == None {
		rec.ShowState = Normal
	}
	rec.LastSeenMs = nowMs
	rec.Messages++
	return rec
}

// UpdateAltitude stores a decoded altitude on the record.
func (r *Roster) UpdateAltitude(icao24 uint32, alt int, ok bool, nowMs int64) {
	rec := r.Upsert(icao24, nowMs)
	r.mu.Lock()
	rec.Altitude, rec.AltitudeOK = alt, ok
	r.mu.Unlock()
}

// UpdateIdentity stores a decoded squawk code.
func (r *Roster) UpdateIdentity(icao24 uint32, squawk int, nowMs int64) {
	rec := r.Upsert(icao24, nowMs)
	r.mu.Lock()
	rec.IdentitySq = squawk
	r.mu.Unlock()
}

// UpdateCallsign stores a decoded identification callsign.
func (r *Roster) UpdateCallsign(icao24 uint32, callsign string, nowMs int64) {
	rec := r.Upsert(icao24, nowMs)
	r.mu.Lock()
	rec.Callsign = callsign
	r.mu.Unlock()
}

// UpdateVelocity stores decoded ME-19 speed/heading, per spec §4.10's
// "for velocity messages (ME 19), store speed+heading".
func (r *Roster) UpdateVelocity(icao24 uint32, speed, heading float64, headingValid bool, nowMs int64) {
	rec := r.Upsert(icao24, nowMs)
	r.mu.Lock()
	rec.Speed = speed
	rec.Heading = heading
	rec.HeadingValid = headingValid
	r.mu.Unlock()
}

// UpdatePosition stores one airborne-position CPR half and, if the opposite
// half was seen within the fusion window, resolves and stores the fused
// lat/lon via the CPR resolver, per spec §4.10.
func (r *Roster) UpdatePosition(icao24 uint32, odd bool, latCPR, lonCPR uint32, nowMs int64) {
	rec := r.Upsert(icao24, nowMs)

	r.mu.Lock()
	defer r.mu.Unlock()

	half := CPRHalf{LatCPR: latCPR, LonCPR: lonCPR, TSMs: nowMs, Valid: true}
	if odd {
		rec.OddCPR = half
	} else {
		rec.EvenCPR = half
	}

	if !rec.OddCPR.Valid || !rec.EvenCPR.Valid {
		return
	}
	if absInt64(rec.OddCPR.TSMs-rec.EvenCPR.TSMs) > cprFusionWindowMs {
		return
	}

	lat, lon, ok := cpr.Resolve(
		cpr.Half{LatCPR: rec.EvenCPR.LatCPR, LonCPR: rec.EvenCPR.LonCPR},
		cpr.Half{LatCPR: rec.OddCPR.LatCPR, LonCPR: rec.OddCPR.LonCPR},
		odd,
	)
	if !ok {
		return
	}
	rec.Position = Position{Lat: lat, Lon: lon, Valid: true}
}

// Tick evicts stale records and marks soon-to-expire ones, per spec §4.10's
// ≈4Hz eviction sweep: age_s > TTL deletes; age_s >= TTL marks LastTime.
func (r *Roster) Tick(nowMs int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for icao, rec := range r.records {
		ageS := (nowMs - rec.LastSeenMs) / 1000
		switch {
		case ageS > r.ttlSecs:
			delete(r.records, icao)
		case ageS >= r.ttlSecs:
			rec.ShowState = LastTime
		}
	}
}

// Snapshot returns a copy-out slice of all current records, per spec §3's
// "Observers receive immutable snapshots... and never retain references".
func (r *Roster) Snapshot() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	return out
}

// Lookup returns a copy of one record, if present.
func (r *Roster) Lookup(icao24 uint32) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[icao24]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
