package dispatch

import (
	"testing"
	"time"

	"github.com/joergschultzelutter/mpad/parser"
	"github.com/joergschultzelutter/mpad/providers/dapnet"
)

type fakePositions struct {
	lat, lon  float64
	lastHeard time.Time
	ok        bool
}

func (f fakePositions) LastKnownPosition(callsign string) (float64, float64, time.Time, bool) {
	return f.lat, f.lon, f.lastHeard, f.ok
}

type fakeAirports struct{}

func (fakeAirports) Resolve(code string) (float64, float64, string, bool) { return 0, 0, "", false }
func (fakeAirports) Nearest(lat, lon float64) (string, bool)              { return "", false }

func newTestDispatcher() *Dispatcher {
	return &Dispatcher{
		Positions: fakePositions{lat: 50.0, lon: 9.0, ok: true, lastHeard: time.Now().Add(-time.Hour)},
		Airports:  fakeAirports{},
		Dapnet:    dapnet.New("https://example.invalid", "group", "NOCALL", ""),
	}
}

func TestDispatchUnknownReturnsHelpfulPointer(t *testing.T) {
	d := newTestDispatcher()
	resp, err := d.Dispatch(t.Context(), parser.Command{Action: parser.ActionUnknown}, "N0CALL", 0, 0, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Lines) == 0 {
		t.Fatal("expected a response line")
	}
}

func TestDispatchWhereAmIUsesSenderPosition(t *testing.T) {
	d := newTestDispatcher()
	resp, err := d.Dispatch(t.Context(), parser.Command{Action: parser.ActionWhereAmI}, "N0CALL", 50.0, 9.0, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Lines) < 3 {
		t.Fatalf("expected grid/dms/position lines, got %d", len(resp.Lines))
	}
}

func TestDispatchWhereIsIncludesDistanceAndBearing(t *testing.T) {
	d := newTestDispatcher()
	cmd := parser.Command{Action: parser.ActionWhereIs, Target: parser.OtherCallsign{Callsign: "DF1JSL-8"}}
	resp, err := d.Dispatch(t.Context(), cmd, "N0CALL", 48.0, 11.0, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var found bool
	for _, line := range resp.Lines {
		if len(line) >= 1 && line[0].Text == "Dst" {
			found = true
			if len(line) < 4 || line[2].Text != "Brg" {
				t.Fatalf("expected Dst/Brg line shape, got %+v", line)
			}
		}
	}
	if !found {
		t.Fatal("expected a Dst/Brg line in a whereis response")
	}
}

func TestDispatchWhereAmIDoesNotIncludeDistance(t *testing.T) {
	d := newTestDispatcher()
	resp, err := d.Dispatch(t.Context(), parser.Command{Action: parser.ActionWhereAmI}, "N0CALL", 50.0, 9.0, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, line := range resp.Lines {
		if len(line) >= 1 && line[0].Text == "Dst" {
			t.Fatal("whereami should not report a distance to itself")
		}
	}
}

func TestDispatchWhereAmIWithoutPositionIsSemanticError(t *testing.T) {
	d := newTestDispatcher()
	_, err := d.Dispatch(t.Context(), parser.Command{Action: parser.ActionWhereAmI}, "N0CALL", 0, 0, false)
	if err == nil {
		t.Fatal("expected an error")
	}
	if kind, ok := KindOf(err); !ok || kind != KindSemantic {
		t.Fatalf("expected KindSemantic, got %v", kind)
	}
}

func TestDispatchDapnetDisabledSurfacesKindDisabled(t *testing.T) {
	d := newTestDispatcher()
	cmd := parser.Command{Action: parser.ActionDapnet, Target: parser.DapnetUser{User: "DB0ABC"}}
	_, err := d.Dispatch(t.Context(), cmd, "N0CALL", 0, 0, false)
	if err == nil {
		t.Fatal("expected disabled error")
	}
	if kind, ok := KindOf(err); !ok || kind != KindDisabled {
		t.Fatalf("expected KindDisabled, got %v", kind)
	}
}

func TestDispatchFortuneAlwaysSucceeds(t *testing.T) {
	d := newTestDispatcher()
	resp, err := d.Dispatch(t.Context(), parser.Command{Action: parser.ActionFortune}, "N0CALL", 0, 0, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Lines) != 1 {
		t.Fatalf("expected one line, got %d", len(resp.Lines))
	}
}

func TestDayIndexProjectsDateOffsetOntoForecastSlice(t *testing.T) {
	cases := []struct {
		name    string
		offset  parser.DateOffset
		numDays int
		want    int
	}{
		{"today", parser.DateOffset{Kind: parser.DateToday}, 8, 0},
		{"zero value defaults to today", parser.DateOffset{}, 8, 0},
		{"tomorrow", parser.DateOffset{Kind: parser.DateDaysAhead, Value: 1}, 8, 1},
		{"a week ahead", parser.DateOffset{Kind: parser.DateDaysAhead, Value: 7}, 8, 7},
		{"hours ahead rounds down to a day", parser.DateOffset{Kind: parser.DateHoursAhead, Value: 30}, 8, 1},
		{"clamped to what the provider actually returned", parser.DateOffset{Kind: parser.DateDaysAhead, Value: 7}, 3, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := dayIndex(tc.offset, tc.numDays); got != tc.want {
				t.Errorf("dayIndex(%+v, %d) = %d, want %d", tc.offset, tc.numDays, got, tc.want)
			}
		})
	}
}

func TestTargetLabel(t *testing.T) {
	cases := []struct {
		name     string
		target   parser.Target
		geoAddr  string
		sender   string
		expected string
	}{
		{"nil target falls back to sender", nil, "", "N0CALL", "N0CALL"},
		{"user position falls back to sender", parser.UserPosition{}, "", "N0CALL", "N0CALL"},
		{"other callsign", parser.OtherCallsign{Callsign: "DF1JSL-8"}, "", "N0CALL", "DF1JSL-8"},
		{"lat/lon", parser.LatLon{Lat: 50.1, Lon: 9.2}, "", "N0CALL", "50.1000,9.2000"},
		{"grid", parser.Grid{Locator: "JO40"}, "", "N0CALL", "JO40"},
		{"zip without geocoded address", parser.Zip{Code: "94043", Country: "US"}, "", "N0CALL", "94043;US"},
		{"zip with geocoded address", parser.Zip{Code: "94043", Country: "US"}, "Mountain View", "N0CALL", "Mountain View,94043;US"},
		{"city;country", parser.CityCountry{City: "Holzminden", Country: "DE"}, "", "N0CALL", "Holzminden;DE"},
		{"city,state;country", parser.CityCountry{City: "Houston", State: "TX", Country: "US"}, "", "N0CALL", "Houston,TX;US"},
		{"icao", parser.IcaoCode{Code: "EDDF"}, "", "N0CALL", "EDDF"},
		{"iata", parser.IataCode{Code: "FRA"}, "", "N0CALL", "FRA"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := targetLabel(tc.target, tc.geoAddr, tc.sender); got != tc.expected {
				t.Errorf("targetLabel(%#v, %q, %q) = %q, want %q", tc.target, tc.geoAddr, tc.sender, got, tc.expected)
			}
		})
	}
}
