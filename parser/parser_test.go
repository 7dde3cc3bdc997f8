package parser

import (
	"strings"
	"testing"
	"time"
)

var fixedNow = time.Date(2021, time.January, 15, 12, 0, 0, 0, time.UTC) // a Friday

func TestParseDefaultsToWx(t *testing.T) {
	cmd := Parse("94043", "N0CALL", "US", fixedNow, false, "")
	if cmd.Action != ActionWx {
		t.Fatalf("expected default action Wx, got %v", cmd.Action)
	}
	zip, ok := cmd.Target.(Zip)
	if !ok {
		t.Fatalf("expected Zip target, got %#v", cmd.Target)
	}
	if zip.Code != "94043" || zip.Country != "US" {
		t.Errorf("zip = %+v, want code=94043 country=US", zip)
	}
}

func TestParseCityLanguageTomorrow(t *testing.T) {
	cmd := Parse("Holzminden;de tomorrow lang de", "N0CALL", "DE", fixedNow, false, "")
	city, ok := cmd.Target.(CityCountry)
	if !ok {
		t.Fatalf("expected CityCountry target, got %#v", cmd.Target)
	}
	if city.Country != "DE" {
		t.Errorf("country = %q, want DE", city.Country)
	}
	if cmd.Language != "de" {
		t.Errorf("language = %q, want de", cmd.Language)
	}
	if cmd.DateOffset.Kind != DateDaysAhead || cmd.DateOffset.Value != 1 {
		t.Errorf("date offset = %+v, want tomorrow", cmd.DateOffset)
	}
	if cmd.Units != UnitsMetric {
		t.Errorf("units = %v, want metric for DE sender", cmd.Units)
	}
}

func TestParseWhereIsOtherCallsign(t *testing.T) {
	cmd := Parse("whereis df1jsl-8", "N0CALL", "US", fixedNow, false, "")
	if cmd.Action != ActionWhereIs {
		t.Fatalf("action = %v, want WhereIs", cmd.Action)
	}
	call, ok := cmd.Target.(OtherCallsign)
	if !ok {
		t.Fatalf("expected OtherCallsign target, got %#v", cmd.Target)
	}
	if call.Callsign != "DF1JSL-8" {
		t.Errorf("callsign = %q", call.Callsign)
	}
}

func TestParseRepeaterEitherOrder(t *testing.T) {
	a := Parse("repeater c4fm 70cm", "N0CALL", "US", fixedNow, false, "")
	b := Parse("repeater 70cm c4fm", "N0CALL", "US", fixedNow, false, "")
	fa, ok := a.Target.(RepeaterFilter)
	if !ok {
		t.Fatalf("a: expected RepeaterFilter, got %#v", a.Target)
	}
	fb, ok := b.Target.(RepeaterFilter)
	if !ok {
		t.Fatalf("b: expected RepeaterFilter, got %#v", b.Target)
	}
	if fa != fb {
		t.Errorf("mode/band order should not matter: %+v vs %+v", fa, fb)
	}
	if !a.EchoSuppressed || !b.EchoSuppressed {
		t.Error("explicit filters should suppress echo of the filter tokens")
	}
}

func TestParseRepeaterNoFilters(t *testing.T) {
	cmd := Parse("repeater", "N0CALL", "US", fixedNow, false, "")
	if cmd.EchoSuppressed {
		t.Error("no filters supplied: echo should not be suppressed")
	}
}

func TestParseTonightForcesToday(t *testing.T) {
	cmd := Parse("wx tonight", "N0CALL", "US", fixedNow, false, "")
	if cmd.Daytime != DaytimeNight {
		t.Errorf("daytime = %v, want night", cmd.Daytime)
	}
	if cmd.DateOffset.Kind != DateToday {
		t.Errorf("date offset = %+v, want today", cmd.DateOffset)
	}
}

func TestParseWeekdayEqualToTodayMeansNextWeek(t *testing.T) {
	// fixedNow is a Friday.
	cmd := Parse("wx friday", "N0CALL", "US", fixedNow, false, "")
	if cmd.DateOffset.Kind != DateDaysAhead || cmd.DateOffset.Value != 7 {
		t.Errorf("date offset = %+v, want 7 days ahead (next week)", cmd.DateOffset)
	}
}

func TestParseEmptyBodyIsUnknown(t *testing.T) {
	cmd := Parse("   ", "N0CALL", "US", fixedNow, false, "")
	if cmd.Action != ActionUnknown {
		t.Errorf("action = %v, want Unknown for empty body", cmd.Action)
	}
}

func TestParseSatPassAliasISS(t *testing.T) {
	cmd := Parse("satpass iss", "N0CALL", "US", fixedNow, false, "")
	sat, ok := cmd.Target.(SatelliteName)
	if !ok {
		t.Fatalf("expected SatelliteName target, got %#v", cmd.Target)
	}
	if sat.Name != "ISS" {
		t.Errorf("satellite = %q, want ISS", sat.Name)
	}
}

func TestParseUnknownLanguageFallsBackToEnglish(t *testing.T) {
	cmd := Parse("wx lang xx", "N0CALL", "US", fixedNow, false, "")
	if cmd.Language != "en" {
		t.Errorf("language = %q, want en fallback", cmd.Language)
	}
}

func TestParseFuzzyTypoCorrection(t *testing.T) {
	cmd := Parse("repeter c4fm", "N0CALL", "US", fixedNow, false, "")
	if cmd.Action != ActionRepeater {
		t.Errorf("action = %v, want Repeater corrected from a single-letter typo", cmd.Action)
	}
}

func TestParseActionKeywordNotAtStart(t *testing.T) {
	// The action keyword scanner must find "metar" anywhere in the body,
	// not only at byte offset 0.
	cmd := Parse("tomorrow metar eddf", "N0CALL", "US", fixedNow, false, "")
	if cmd.Action != ActionMetar {
		t.Fatalf("action = %v, want Metar even though the keyword isn't first", cmd.Action)
	}
	if cmd.DateOffset.Kind != DateDaysAhead || cmd.DateOffset.Value != 1 {
		t.Errorf("date offset = %+v, want tomorrow", cmd.DateOffset)
	}
}

func TestParseMetarFullUpgradesToCombinedAction(t *testing.T) {
	cmd := Parse("metar full eddf", "N0CALL", "US", fixedNow, false, "")
	if cmd.Action != ActionMetarTafFull {
		t.Errorf("action = %v, want MetarTafFull for \"metar full\"", cmd.Action)
	}
}

// TestParseRoundTripLaw renders a canonical command string from a Command
// and re-parses it, checking the action and target survive the round trip
// (spec.md's parser round-trip law).
func TestParseRoundTripLaw(t *testing.T) {
	cases := []struct {
		name   string
		action Action
		target Target
		render func(Action, Target) string
	}{
		{
			name:   "wx zip",
			action: ActionWx,
			target: Zip{Code: "94043", Country: "US"},
			render: func(a Action, tgt Target) string {
				z := tgt.(Zip)
				return "wx " + z.Code + ";" + z.Country
			},
		},
		{
			name:   "wx city;country",
			action: ActionWx,
			target: CityCountry{City: "Holzminden", Country: "DE"},
			render: func(a Action, tgt Target) string {
				c := tgt.(CityCountry)
				return "wx " + strings.ToLower(c.City) + ";" + strings.ToLower(c.Country)
			},
		},
		{
			name:   "metar icao",
			action: ActionMetar,
			target: IcaoCode{Code: "EDDF"},
			render: func(a Action, tgt Target) string {
				return "metar " + strings.ToLower(tgt.(IcaoCode).Code)
			},
		},
		{
			name:   "riseset grid",
			action: ActionRiseSet,
			target: Grid{Locator: "JO40"},
			render: func(a Action, tgt Target) string {
				return "riseset " + strings.ToLower(tgt.(Grid).Locator)
			},
		},
		{
			name:   "whereis callsign",
			action: ActionWhereIs,
			target: OtherCallsign{Callsign: "DF1JSL-8"},
			render: func(a Action, tgt Target) string {
				return "whereis " + strings.ToLower(tgt.(OtherCallsign).Callsign)
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := tc.render(tc.action, tc.target)
			got := Parse(body, "N0CALL", "US", fixedNow, false, "")
			if got.Action != tc.action {
				t.Errorf("round trip %q: action = %v, want %v", body, got.Action, tc.action)
			}
			if got.Target != tc.target {
				t.Errorf("round trip %q: target = %#v, want %#v", body, got.Target, tc.target)
			}
		})
	}
}
