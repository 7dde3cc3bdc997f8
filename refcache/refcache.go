// Package refcache manages on-disk copies of the airport catalog,
// repeater directory, and satellite TLE+frequency table, refreshed on
// startup and on a configured interval, written atomically via
// temp-file-and-rename (spec.md §6/§9's fetcher/parser/indexer
// separation).
//
// Catalog format is howett.net/plist, grounded on the teacher's
// cty/parser.go decode pattern for its own CTY database. The
// last-refreshed ledger is a modernc.org/sqlite side-car, grounded on
// peer/topology.go's schema-ensure style and archive/archive.go's
// Writer (non-blocking audit enqueue, one insert per row).
package refcache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"howett.net/plist"
)

// AirportEntry is one row of the on-disk airport catalog.
type AirportEntry struct {
	ICAO string  `plist:"ICAO"`
	IATA string  `plist:"IATA"`
	Lat  float64 `plist:"Lat"`
	Lon  float64 `plist:"Lon"`
}

// RepeaterEntry is one row of the on-disk repeater directory.
type RepeaterEntry struct {
	Callsign  string  `plist:"Callsign"`
	Lat       float64 `plist:"Lat"`
	Lon       float64 `plist:"Lon"`
	Band      string  `plist:"Band"`
	Mode      string  `plist:"Mode"`
	Frequency float64 `plist:"Frequency"`
}

// SatelliteEntry is one row of the on-disk satellite TLE+frequency
// table.
type SatelliteEntry struct {
	Name    string  `plist:"Name"`
	NoradID int     `plist:"NoradID"`
	TLE1    string  `plist:"TLE1"`
	TLE2    string  `plist:"TLE2"`
	FreqMHz float64 `plist:"FreqMHz"`
}

// Catalog is a generically typed on-disk reference file: a plist
// document of entries plus a last-refreshed timestamp recorded in the
// SQLite ledger.
type Catalog[T any] struct {
	Path    string
	Ledger  *Ledger
	Name    string
	entries []T
}

// NewCatalog returns a Catalog backed by path and tracked under name
// in ledger.
func NewCatalog[T any](path string, ledger *Ledger, name string) *Catalog[T] {
	return &Catalog[T]{Path: path, Ledger: ledger, Name: name}
}

// Load reads the catalog from disk into memory. Call once at startup
// after Refresh, or instead of it if the data is already warm.
func (c *Catalog[T]) Load() error {
	f, err := os.Open(c.Path)
	if err != nil {
		return fmt.Errorf("refcache: open %s: %w", c.Path, err)
	}
	defer f.Close()

	var entries []T
	dec := plist.NewDecoder(f)
	if err := dec.Decode(&entries); err != nil {
		return fmt.Errorf("refcache: decode %s: %w", c.Path, err)
	}
	c.entries = entries
	return nil
}

// Entries returns the currently loaded entries.
func (c *Catalog[T]) Entries() []T { return c.entries }

// Refresh downloads fresh data via fetch, writes it to Path
// atomically (temp-file-and-rename), reloads it into memory, and
// records the refresh instant in the ledger. Idempotent: refreshing
// twice with the same upstream data leaves Path byte-identical.
func (c *Catalog[T]) Refresh(fetch func() ([]T, error)) error {
	entries, err := fetch()
	if err != nil {
		return fmt.Errorf("refcache: fetch %s: %w", c.Name, err)
	}

	if err := writeAtomic(c.Path, entries); err != nil {
		return err
	}
	c.entries = entries

	if c.Ledger != nil {
		c.Ledger.RecordRefresh(c.Name, time.Now().UTC())
	}
	return nil
}

func writeAtomic(path string, entries any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("refcache: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "refcache-*.tmp")
	if err != nil {
		return fmt.Errorf("refcache: create temp: %w", err)
	}

	enc := plist.NewEncoder(tmp)
	if err := enc.Encode(entries); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("refcache: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("refcache: close temp: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("refcache: rename: %w", err)
	}
	return nil
}
