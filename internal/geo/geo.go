// Package geo implements spec §9 Design Notes' derived, display-only
// geometry fields - range-from-station and an S2 cell covering a resolved
// position - computed by Observers from a roster snapshot, never stored on
// roster.Record itself, per spec §3's ownership rule ("roster mutated only
// by decoder thread"). Grounded on github.com/kellydunn/golang-geo (a
// montge-stratux go.mod dependency, not otherwise exercised in the pack)
// for the great-circle range, kept separate from internal/httpapi's
// golang/geo/s2 bbox filter since they answer different questions (radius
// from a point vs. containment in a rectangle).
package geo

import (
	"github.com/golang/geo/s2"
	geolib "github.com/kellydunn/golang-geo"
)

// Station is a configured receiver location. A nil *Station means no
// receiver location was configured; RangeNM and CellID callers must treat
// that as "no range available", never as range zero.
type Station struct {
	Lat, Lon float64
}

// RangeNM returns the great-circle distance from the station to (lat, lon)
// in nautical miles, or (0, false) if station is nil.
func RangeNM(station *Station, lat, lon float64) (float64, bool) {
	if station == nil {
		return 0, false
	}
	from := geolib.NewPoint(station.Lat, station.Lon)
	to := geolib.NewPoint(lat, lon)
	const kmPerNM = 1.852
	return from.GreatCircleDistance(to) / kmPerNM, true
}

// CellID returns the S2 cell covering (lat, lon), for spec §3's
// `AircraftRecord.GeoCell` supplement field. internal/httpapi's bbox filter
// does not use cells; it tests containment in an s2.Rect directly.
func CellID(lat, lon float64) s2.CellID {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lon))
}
