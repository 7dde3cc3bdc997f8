package refcache

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestCatalogRefreshIsIdempotent(t *testing.T) {
	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("OpenLedger: %v", err)
	}
	defer ledger.Close()

	path := filepath.Join(t.TempDir(), "airports.plist")
	cat := NewCatalog[AirportEntry](path, ledger, "airports")

	fetch := func() ([]AirportEntry, error) {
		return []AirportEntry{{ICAO: "EDDF", IATA: "FRA", Lat: 50.0379, Lon: 8.5622}}, nil
	}

	if err := cat.Refresh(fetch); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	first, err := readFile(path)
	if err != nil {
		t.Fatalf("read after first refresh: %v", err)
	}

	if err := cat.Refresh(fetch); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	second, err := readFile(path)
	if err != nil {
		t.Fatalf("read after second refresh: %v", err)
	}

	if string(first) != string(second) {
		t.Fatal("expected refreshing with identical upstream data to leave the file byte-identical")
	}

	if _, ok := ledger.LastRefreshed("airports"); !ok {
		t.Fatal("expected a refresh timestamp to be recorded")
	}
}

func TestCatalogLoadRoundTrips(t *testing.T) {
	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("OpenLedger: %v", err)
	}
	defer ledger.Close()

	path := filepath.Join(t.TempDir(), "repeaters.plist")
	cat := NewCatalog[RepeaterEntry](path, ledger, "repeaters")
	want := []RepeaterEntry{{Callsign: "DB0ABC", Lat: 50.1, Lon: 8.6, Band: "2m", Mode: "FM", Frequency: 145.600}}

	if err := cat.Refresh(func() ([]RepeaterEntry, error) { return want, nil }); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	reloaded := NewCatalog[RepeaterEntry](path, ledger, "repeaters")
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := reloaded.Entries()
	if len(got) != 1 || got[0].Callsign != "DB0ABC" {
		t.Fatalf("unexpected entries after reload: %+v", got)
	}
}

func TestAirportIndexResolvesICAOAndIATA(t *testing.T) {
	idx := BuildAirportIndex([]AirportEntry{
		{ICAO: "EDDF", IATA: "FRA", Lat: 50.0379, Lon: 8.5622},
		{ICAO: "EDDM", IATA: "MUC", Lat: 48.3538, Lon: 11.7861},
	})

	lat, lon, icao, ok := idx.Resolve("EDDF")
	if !ok || icao != "EDDF" || lat != 50.0379 || lon != 8.5622 {
		t.Fatalf("unexpected ICAO resolve: lat=%v lon=%v icao=%v ok=%v", lat, lon, icao, ok)
	}

	_, _, icao, ok = idx.Resolve("muc")
	if !ok || icao != "EDDM" {
		t.Fatalf("expected case-insensitive IATA resolve to EDDM, got icao=%v ok=%v", icao, ok)
	}

	if _, _, _, ok := idx.Resolve("ZZZZ"); ok {
		t.Fatal("expected unknown code to miss")
	}
}

func TestAirportIndexNearestPicksCloser(t *testing.T) {
	idx := BuildAirportIndex([]AirportEntry{
		{ICAO: "EDDF", Lat: 50.0379, Lon: 8.5622},
		{ICAO: "EDDM", Lat: 48.3538, Lon: 11.7861},
	})

	nearest, ok := idx.Nearest(50.1, 8.6)
	if !ok || nearest != "EDDF" {
		t.Fatalf("expected EDDF nearest to Frankfurt-area point, got %v ok=%v", nearest, ok)
	}
}

func TestRepeaterIndexFiltersBandAndMode(t *testing.T) {
	idx := BuildRepeaterIndex([]RepeaterEntry{
		{Callsign: "DB0ABC", Lat: 50.1, Lon: 8.6, Band: "2m", Mode: "FM"},
		{Callsign: "DB0XYZ", Lat: 50.1, Lon: 8.6, Band: "70cm", Mode: "FM"},
	})

	got := idx.Nearest(50.1, 8.6, "2m", "")
	if len(got) != 1 || got[0].Callsign != "DB0ABC" {
		t.Fatalf("expected only the 2m repeater, got %+v", got)
	}
}

func TestLedgerStartsEmptyAndAcceptsRequest(t *testing.T) {
	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("OpenLedger: %v", err)
	}
	defer ledger.Close()

	if _, ok := ledger.LastRefreshed("airports"); ok {
		t.Fatal("expected no refresh recorded yet")
	}

	ledger.RecordRequest("N0CALL-1", "wx", "ok")

	// RecordRequest is fire-and-forget; merely assert it doesn't panic or
	// block the caller.
}

func TestFetchAirportsParsesCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("EDDF,FRA,50.0379,8.5622\nEDDM,MUC,48.3538,11.7861\nmalformed,line\n"))
	}))
	defer srv.Close()

	entries, err := NewFetcher().FetchAirports(t.Context(), srv.URL)
	if err != nil {
		t.Fatalf("FetchAirports: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 well-formed rows, got %d: %+v", len(entries), entries)
	}
}

func TestFetchSatellitesPairsFrequencyByNorad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ISS (ZARYA)\n1 25544U 98067A   24001.00000000  .00000000  00000-0  00000-0 0  9990\n2 25544  51.6400   0.0000 0001000   0.0000   0.0000 15.50000000000000\n"))
	}))
	defer srv.Close()

	entries, err := NewFetcher().FetchSatellites(t.Context(), srv.URL, nil, map[int]float64{25544: 145.825})
	if err != nil {
		t.Fatalf("FetchSatellites: %v", err)
	}
	if len(entries) != 1 || entries[0].NoradID != 25544 || entries[0].FreqMHz != 145.825 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
