// Package satellite computes upcoming passes for an amateur-radio
// satellite over a ground station using SGP4 orbital propagation,
// grounded on the ephemeris-engine example's internal/predict package
// (TLE fetch/cache tiers and GeneratePasses usage).
package satellite

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/akhenakh/sgp4"
)

// DefaultMinElevationDeg is the fallback minimum elevation for a pass to
// be considered usable, per DESIGN.md's Open Questions resolution.
// config.Config.Satellite.MinElevationDeg overrides it.
const DefaultMinElevationDeg = 10.0

// Pass is one overhead opportunity for a named satellite.
type Pass struct {
	Name        string
	AOS         time.Time
	LOS         time.Time
	MaxElev     float64
	MaxElevTime time.Time
	AOSAzimuth  float64
	LOSAzimuth  float64
	Duration    time.Duration
}

// knownSatellites maps the parser's canonical satellite names (see
// parser.canonicalSatelliteName) to NORAD catalog numbers and a
// downlink frequency used by ActionSatFreq.
var knownSatellites = map[string]struct {
	NoradID   int
	FreqMHz   float64
}{
	"ISS":      {25544, 145.825},
	"AO-91":    {43017, 145.960},
	"AO-92":    {43137, 145.880},
	"SO-50":    {27607, 436.795},
	"PO-101":   {43678, 435.350},
}

// Frequency returns the downlink frequency in MHz for a known satellite
// name, as produced by the parser's ActionSatFreq target resolution.
func Frequency(name string) (float64, bool) {
	sat, ok := knownSatellites[strings.ToUpper(name)]
	return sat.FreqMHz, ok
}

// KnownFrequencies returns the name->downlink-frequency table, for
// pairing with a bulk TLE download when building the on-disk satellite
// catalog (refcache.Fetcher.FetchSatellites).
func KnownFrequencies() map[string]float64 {
	out := make(map[string]float64, len(knownSatellites))
	for name, sat := range knownSatellites {
		out[name] = sat.FreqMHz
	}
	return out
}

// Store fetches and caches TLE data, falling back from a fresh disk
// cache to a network fetch to a stale disk cache to embedded data.
type Store struct {
	url      string
	dataRoot string
	maxAge   time.Duration
	embedded string
	http     *http.Client
}

// NewStore returns a Store that fetches TLEs from tleURL and caches
// them under dataRoot, refreshing at most every refreshInterval.
func NewStore(tleURL, dataRoot string, refreshInterval time.Duration, embedded string) *Store {
	return &Store{
		url:      tleURL,
		dataRoot: dataRoot,
		maxAge:   refreshInterval,
		embedded: embedded,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

const tleCacheFile = "satellite_tle.txt"

// Fetch returns TLEs for the known satellites, keyed by NORAD ID.
func (s *Store) Fetch(ctx context.Context) (map[int]*sgp4.TLE, error) {
	cachePath := filepath.Join(s.dataRoot, tleCacheFile)
	raw, err := s.loadOrFetch(ctx, cachePath)
	if err != nil {
		return nil, err
	}
	return s.parseKnown(raw)
}

func (s *Store) loadOrFetch(ctx context.Context, cachePath string) (string, error) {
	if info, err := os.Stat(cachePath); err == nil && time.Since(info.ModTime()) < s.maxAge {
		if b, readErr := os.ReadFile(cachePath); readErr == nil && len(b) > 0 {
			return string(b), nil
		}
	}

	body, fetchErr := s.fetchFromNetwork(ctx)
	if fetchErr == nil {
		_ = s.writeCache(cachePath, body)
		return body, nil
	}

	if b, readErr := os.ReadFile(cachePath); readErr == nil && len(b) > 0 {
		return string(b), nil
	}

	if s.embedded != "" {
		return s.embedded, nil
	}

	return "", fmt.Errorf("satellite: all TLE sources exhausted: %w", fetchErr)
}

func (s *Store) fetchFromNetwork(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("satellite: TLE fetch returned HTTP %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Store) writeCache(cachePath, data string) error {
	dir := filepath.Dir(cachePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "tle-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), cachePath)
}

func (s *Store) parseKnown(raw string) (map[int]*sgp4.TLE, error) {
	wanted := make(map[int]bool, len(knownSatellites))
	for _, sat := range knownSatellites {
		wanted[sat.NoradID] = true
	}

	result := make(map[int]*sgp4.TLE)
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	for i := 0; i+2 < len(lines); i += 3 {
		group := strings.TrimSpace(lines[i]) + "\n" +
			strings.TrimSpace(lines[i+1]) + "\n" +
			strings.TrimSpace(lines[i+2])

		tle, err := sgp4.ParseTLE(group)
		if err != nil {
			continue
		}
		if wanted[tle.SatelliteNumber] {
			result[tle.SatelliteNumber] = tle
		}
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("satellite: no matching TLEs found in %d lines of input", len(lines))
	}
	return result, nil
}

// Client resolves satellite passes for a ground station.
type Client struct {
	store           *Store
	minElevationDeg float64
}

// NewClient returns a Client backed by store, filtering passes below
// minElevationDeg (DefaultMinElevationDeg if zero).
func NewClient(store *Store, minElevationDeg float64) *Client {
	if minElevationDeg <= 0 {
		minElevationDeg = DefaultMinElevationDeg
	}
	return &Client{store: store, minElevationDeg: minElevationDeg}
}

// NextPass returns the next qualifying pass of the named satellite over
// lat/lon starting at from, searching up to lookahead ahead.
func (c *Client) NextPass(ctx context.Context, name string, lat, lon, altM float64, from time.Time, lookahead time.Duration) (Pass, error) {
	sat, ok := knownSatellites[strings.ToUpper(name)]
	if !ok {
		return Pass{}, fmt.Errorf("satellite: unknown satellite %q", name)
	}

	tles, err := c.store.Fetch(ctx)
	if err != nil {
		return Pass{}, err
	}
	tle, ok := tles[sat.NoradID]
	if !ok {
		return Pass{}, fmt.Errorf("satellite: no TLE for %s (NORAD %d)", name, sat.NoradID)
	}

	rawPasses, err := tle.GeneratePasses(lat, lon, altM, from, from.Add(lookahead), 1)
	if err != nil {
		return Pass{}, fmt.Errorf("satellite: compute passes for %s: %w", name, err)
	}

	var passes []Pass
	for _, rp := range rawPasses {
		if rp.MaxElevation < c.minElevationDeg {
			continue
		}
		passes = append(passes, Pass{
			Name:        name,
			AOS:         rp.AOS,
			LOS:         rp.LOS,
			MaxElev:     rp.MaxElevation,
			MaxElevTime: rp.MaxElevationTime,
			AOSAzimuth:  rp.AOSAzimuth,
			LOSAzimuth:  rp.LOSAzimuth,
			Duration:    rp.Duration,
		})
	}
	if len(passes) == 0 {
		return Pass{}, fmt.Errorf("satellite: no pass above %.0f° for %s in the next %s", c.minElevationDeg, name, lookahead)
	}

	sort.Slice(passes, func(i, j int) bool { return passes[i].AOS.Before(passes[j].AOS) })
	return passes[0], nil
}
