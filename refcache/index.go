package refcache

import (
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/exp/maps"

	"github.com/joergschultzelutter/mpad/providers/geo"
)

// AirportIndex is the in-memory keyed/spatial lookup the Dispatcher
// consults (spec.md Design Notes §9: "separate cleanly into fetcher,
// parser, indexer... Dispatcher consults only the indexer").
type AirportIndex struct {
	byICAO map[string]AirportEntry
	byIATA map[string]AirportEntry
}

// BuildAirportIndex rebuilds the index from a freshly loaded catalog.
func BuildAirportIndex(entries []AirportEntry) *AirportIndex {
	idx := &AirportIndex{
		byICAO: make(map[string]AirportEntry, len(entries)),
		byIATA: make(map[string]AirportEntry, len(entries)),
	}
	for _, e := range entries {
		if e.ICAO != "" {
			idx.byICAO[strings.ToUpper(e.ICAO)] = e
		}
		if e.IATA != "" {
			idx.byIATA[strings.ToUpper(e.IATA)] = e
		}
	}
	return idx
}

// Resolve looks up an ICAO or IATA code (ICAO checked first, matching
// the parser's scan priority) and returns its coordinate.
func (idx *AirportIndex) Resolve(code string) (lat, lon float64, icao string, ok bool) {
	code = strings.ToUpper(code)
	if e, found := idx.byICAO[code]; found {
		return e.Lat, e.Lon, e.ICAO, true
	}
	if e, found := idx.byIATA[code]; found {
		return e.Lat, e.Lon, e.ICAO, true
	}
	return 0, 0, "", false
}

// Nearest returns the ICAO code of the closest airport to lat/lon.
// Keys are enumerated via maps.Keys and sorted, so ties resolve in a
// deterministic order.
func (idx *AirportIndex) Nearest(lat, lon float64) (string, bool) {
	keys := maps.Keys(idx.byICAO)
	sort.Strings(keys)

	best := ""
	bestDist := -1.0
	for _, k := range keys {
		e := idx.byICAO[k]
		d := geo.Haversine(lat, lon, e.Lat, e.Lon)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = e.ICAO
		}
	}
	return best, best != ""
}

// AirportIndexRef is a hot-swappable handle onto the current
// AirportIndex: the Dispatcher is built once against a stable Ref, while
// the periodic refresh job atomically publishes a freshly rebuilt index
// underneath it without the Dispatcher ever needing to know.
type AirportIndexRef struct {
	v atomic.Pointer[AirportIndex]
}

// NewAirportIndexRef wraps an initial AirportIndex in a Ref.
func NewAirportIndexRef(idx *AirportIndex) *AirportIndexRef {
	r := &AirportIndexRef{}
	r.Store(idx)
	return r
}

// Store atomically publishes a freshly rebuilt index.
func (r *AirportIndexRef) Store(idx *AirportIndex) { r.v.Store(idx) }

// Resolve delegates to the currently published index.
func (r *AirportIndexRef) Resolve(code string) (lat, lon float64, icao string, ok bool) {
	return r.v.Load().Resolve(code)
}

// Nearest delegates to the currently published index.
func (r *AirportIndexRef) Nearest(lat, lon float64) (string, bool) {
	return r.v.Load().Nearest(lat, lon)
}

// RepeaterIndex is the in-memory spatial lookup for the repeater
// directory, filtered by band/mode.
type RepeaterIndex struct {
	entries []RepeaterEntry
}

// BuildRepeaterIndex rebuilds the index from a freshly loaded catalog.
func BuildRepeaterIndex(entries []RepeaterEntry) *RepeaterIndex {
	return &RepeaterIndex{entries: entries}
}

// Nearest returns the repeaters matching band/mode (either may be
// empty to mean "any"), nearest first.
func (idx *RepeaterIndex) Nearest(lat, lon float64, band, mode string) []RepeaterEntry {
	var matches []RepeaterEntry
	for _, e := range idx.entries {
		if band != "" && !strings.EqualFold(e.Band, band) {
			continue
		}
		if mode != "" && !strings.EqualFold(e.Mode, mode) {
			continue
		}
		matches = append(matches, e)
	}
	sort.Slice(matches, func(i, j int) bool {
		return geo.Haversine(lat, lon, matches[i].Lat, matches[i].Lon) <
			geo.Haversine(lat, lon, matches[j].Lat, matches[j].Lon)
	})
	return matches
}
