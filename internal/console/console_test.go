package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mode1090/internal/geo"
	"mode1090/internal/registry"
	"mode1090/internal/roster"
)

func seeded(t *testing.T) *roster.Roster {
	t.Helper()
	r := roster.New(60)
	r.Upsert(0x4B1804, 0)
	r.UpdateCallsign(0x4B1804, "DLH123", 0)
	r.UpdateAltitude(0x4B1804, 35000, true, 0)
	r.UpdatePosition(0x4B1804, true, 74158, 50194, 0)
	r.UpdatePosition(0x4B1804, false, 93000, 51372, 8000)

	// never positioned - must not print
	r.Upsert(0xABCDEF, 0)
	return r
}

func TestRenderOnceSkipsUnpositionedAircraft(t *testing.T) {
	var buf bytes.Buffer
	c := NewRenderer(seeded(t), nil, nil, &buf)
	c.RenderOnce()

	out := buf.String()
	assert.Contains(t, out, "4B1804")
	assert.NotContains(t, out, "ABCDEF")
}

func TestRenderOnceIncludesRegistryAndRange(t *testing.T) {
	reg, err := registry.LoadCSV(strings.NewReader(
		"icao24,registration,manufacturer,model\n4B1804,D-ABCD,Airbus,A321-231\n"))
	require.NoError(t, err)
	station := &geo.Station{Lat: 52.3086, Lon: 4.7639}

	var buf bytes.Buffer
	c := NewRenderer(seeded(t), reg, station, &buf)
	c.RenderOnce()

	out := buf.String()
	assert.Contains(t, out, "D-ABCD")
	assert.Contains(t, out, "range_nm")
}
