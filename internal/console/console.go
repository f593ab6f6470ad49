// Package console implements spec §9's pretty console Observer: a
// read-only terminal view over roster snapshots, taking no reference past
// one tick, per spec §3's ownership rule. The teacher's own TUI cousin
// (Regentag-go1090) keeps its presentation layer entirely separate from
// its decode logic; this package does the same, rendering with
// github.com/charmbracelet/log (a doismellburning-samoyed go.mod
// dependency, not otherwise exercised in the pack) rather than reusing
// the structured logrus logger the pipeline/application use for
// operational logging - a human-facing view calls for a friendlier
// renderer than the machine-oriented log.
package console

import (
	"context"
	"io"
	"time"

	charmlog "github.com/charmbracelet/log"

	"mode1090/internal/geo"
	"mode1090/internal/registry"
	"mode1090/internal/roster"
)

// defaultInterval matches the teacher's reportStatistics cadence.
const defaultInterval = 30 * time.Second

// Renderer periodically prints a roster snapshot, enriched with an
// optional registry lookup and an optional station-relative range.
type Renderer struct {
	logger   *charmlog.Logger
	roster   *roster.Roster
	registry *registry.Registry // optional; nil means no registration/model column
	station  *geo.Station       // optional; nil means no range column
	interval time.Duration
}

// NewRenderer builds a Renderer writing to out. registry and station may
// both be nil.
func NewRenderer(r *roster.Roster, reg *registry.Registry, station *geo.Station, out io.Writer) *Renderer {
	return &Renderer{
		logger:   charmlog.NewWithOptions(out, charmlog.Options{ReportTimestamp: true}),
		roster:   r,
		registry: reg,
		station:  station,
		interval: defaultInterval,
	}
}

// Run renders a snapshot every interval until ctx is cancelled, mirroring
// the teacher's reportStatistics ticker-loop shape.
func (c *Renderer) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RenderOnce()
		}
	}
}

// RenderOnce takes one roster snapshot and prints one line per aircraft
// with a resolved position; aircraft never positioned are skipped, since a
// bare ICAO address with no other state isn't interesting on a console.
func (c *Renderer) RenderOnce() {
	for _, rec := range c.roster.Snapshot() {
		if !rec.Position.Valid {
			continue
		}
		c.logger.Info(icaoHex(rec.ICAO24), c.fields(rec)...)
	}
}

func (c *Renderer) fields(rec roster.Record) []interface{} {
	fields := []interface{}{
		"callsign", rec.Callsign,
		"lat", rec.Position.Lat,
		"lon", rec.Position.Lon,
	}
	if rec.AltitudeOK {
		fields = append(fields, "alt_ft", rec.Altitude)
	}
	if rec.HeadingValid {
		fields = append(fields, "track", rec.Heading)
	}

	if c.registry != nil {
		if e, ok := c.registry.Lookup(rec.ICAO24); ok {
			fields = append(fields, "registration", e.Registration, "model", e.Model)
		}
	}
	if nm, ok := geo.RangeNM(c.station, rec.Position.Lat, rec.Position.Lon); ok {
		fields = append(fields, "range_nm", nm)
	}
	return fields
}

func icaoHex(icao uint32) string {
	const digits = "0123456789ABCDEF"
	b := make([]byte, 6)
	for i := 5; i >= 0; i-- {
		b[i] = digits[icao&0xF]
		icao >>= 4
	}
	return string(b)
}
