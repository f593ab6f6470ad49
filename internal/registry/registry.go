// Package registry implements spec §9's "CSV-driven aircraft registry
// lookup" design note as a genuine Observer: a read-only, pre-built
// icao24 -> {registration, manufacturer, model} table, consulted only when
// rendering console output and never touched by the roster or
// pipeline, per spec §3's ownership rule. The teacher carries no
// equivalent - there's no registry lookup anywhere in
// saviobatista-go1090 - so this is built around
// github.com/mattn/go-sqlite3 (a montge-stratux go.mod dependency not
// otherwise exercised in the pack) with a bundled CSV fallback for
// deployments without a database file.
package registry

import (
	"database/sql"
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed data/aircraft.csv
var bundledCSV embed.FS

// Entry is one registry row.
type Entry struct {
	Registration string
	Manufacturer string
	Model        string
}

// Registry is an immutable icao24 -> Entry map, built once at startup.
type Registry struct {
	entries map[uint32]Entry
}

// Lookup returns the registry entry for icao24, if known.
func (r *Registry) Lookup(icao24 uint32) (Entry, bool) {
	e, ok := r.entries[icao24]
	return e, ok
}

// Len reports how many entries are loaded.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Open loads a Registry from path: a ".csv" suffix loads it as CSV, an
// empty path falls back to the bundled dataset, and anything else is
// opened as a sqlite3 database with an "aircraft" table
// (icao24, registration, manufacturer, model).
func Open(path string) (*Registry, error) {
	switch {
	case path == "":
		f, err := bundledCSV.Open("data/aircraft.csv")
		if err != nil {
			return nil, fmt.Errorf("registry: open bundled csv: %w", err)
		}
		defer f.Close()
		return LoadCSV(f)
	case strings.HasSuffix(path, ".csv"):
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("registry: open %s: %w", path, err)
		}
		defer f.Close()
		return LoadCSV(f)
	default:
		return LoadSQLite(path)
	}
}

// LoadCSV builds a Registry from a "icao24,registration,manufacturer,model"
// header CSV stream. Rows with an unparseable icao24 are skipped.
func LoadCSV(r io.Reader) (*Registry, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("registry: read header: %w", err)
	}
	cols := columnIndex(header)

	entries := make(map[uint32]Entry)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("registry: read row: %w", err)
		}
		icao, ok := parseICAO(row[cols["icao24"]])
		if !ok {
			continue
		}
		entries[icao] = Entry{
			Registration: row[cols["registration"]],
			Manufacturer: row[cols["manufacturer"]],
			Model:        row[cols["model"]],
		}
	}
	return &Registry{entries: entries}, nil
}

// LoadSQLite builds a Registry from a sqlite3 database file containing an
// "aircraft" table with icao24/registration/manufacturer/model columns.
func LoadSQLite(path string) (*Registry, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("registry: open sqlite3 %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT icao24, registration, manufacturer, model FROM aircraft`)
	if err != nil {
		return nil, fmt.Errorf("registry: query aircraft table: %w", err)
	}
	defer rows.Close()

	entries := make(map[uint32]Entry)
	for rows.Next() {
		var icaoStr, reg, mfr, model string
		if err := rows.Scan(&icaoStr, &reg, &mfr, &model); err != nil {
			return nil, fmt.Errorf("registry: scan row: %w", err)
		}
		icao, ok := parseICAO(icaoStr)
		if !ok {
			continue
		}
		entries[icao] = Entry{Registration: reg, Manufacturer: mfr, Model: model}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("registry: iterate rows: %w", err)
	}
	return &Registry{entries: entries}, nil
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.ToLower(name))] = i
	}
	return idx
}

func parseICAO(s string) (uint32, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}
