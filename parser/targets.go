package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	zipRe      = regexp.MustCompile(`^(\d{5})(?:;([a-z]{2}))?$`)
	icaoRe     = regexp.MustCompile(`^[a-z]{4}$`)
	iataRe     = regexp.MustCompile(`^[a-z]{3}$`)
	gridRe     = regexp.MustCompile(`^[a-r]{2}[0-9]{2}(?:[a-x]{2})?$`)
	latLonRe   = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)/(-?\d+(?:\.\d+)?)$`)
	cityCtryRe = regexp.MustCompile(`^([a-z .'-]+)(?:,([a-z]{2}))?;([a-z]{2})$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	callsignRe = regexp.MustCompile(`^[a-z0-9]{3,6}(-[0-9]{1,2})?$`)
)

// matchBareTarget recognizes a single bare-form target token per spec.md
// §4.4 priority 2: zip, ICAO, IATA, grid, lat/lon, city;country. Longer,
// more specific grammars are tried first.
func matchBareTarget(token string) (Target, bool) {
	if m := zipRe.FindStringSubmatch(token); m != nil {
		country := strings.ToUpper(m[2])
		if country == "" {
			country = "US" // spec.md §4.4: 5-digit zip without country => US
		}
		return Zip{Code: m[1], Country: country}, true
	}
	if m := latLonRe.FindStringSubmatch(token); m != nil {
		lat, _ := strconv.ParseFloat(m[1], 64)
		lon, _ := strconv.ParseFloat(m[2], 64)
		return LatLon{Lat: lat, Lon: lon}, true
	}
	if m := cityCtryRe.FindStringSubmatch(token); m != nil {
		return CityCountry{City: strings.Title(m[1]), State: strings.ToUpper(m[2]), Country: strings.ToUpper(m[3])}, true
	}
	if gridRe.MatchString(token) {
		return Grid{Locator: strings.ToUpper(token)}, true
	}
	if icaoRe.MatchString(token) {
		return IcaoCode{Code: strings.ToUpper(token)}, true
	}
	// IATA is scanned after ICAO/grid; per spec.md §4.4 this is also
	// scanned ahead of a bare repeater-mode token, so a three-letter mode
	// such as "dmr" without the repeater keyword parses as an IATA code.
	if iataRe.MatchString(token) {
		return IataCode{Code: strings.ToUpper(token)}, true
	}
	return nil, false
}

// repeaterModes maps every accepted spelling (including aliases) to its
// canonical mode name. ysf aliases c4fm; d-star aliases dstar (spec.md
// §4.4).
var repeaterModes = map[string]string{
	"fm": "fm", "dstar": "dstar", "d-star": "dstar", "dmr": "dmr",
	"c4fm": "c4fm", "ysf": "c4fm", "tetra": "tetra", "atv": "atv",
}

var repeaterBandRe = regexp.MustCompile(`^\d+(?:\.\d+)?(?:cm|m)$`)

// matchRepeaterFilters scans the remaining tokens of a `repeater` command
// for a mode and/or band, accepting either order.
func matchRepeaterFilters(tokens []string) (RepeaterFilter, []int) {
	var f RepeaterFilter
	var consumed []int
	for i, tok := range tokens {
		if mode, ok := repeaterModes[tok]; ok && f.Mode == "" {
			f.Mode = mode
			consumed = append(consumed, i)
			continue
		}
		if repeaterBandRe.MatchString(tok) && f.Band == "" {
			f.Band = tok
			consumed = append(consumed, i)
		}
	}
	return f, consumed
}

// canonicalSatelliteName dash-joins a multi-token satellite name and
// resolves the iss/zarya alias (spec.md §4.4).
func canonicalSatelliteName(phrase string) string {
	phrase = strings.Join(strings.Fields(phrase), "-")
	switch strings.ToLower(phrase) {
	case "iss", "zarya":
		return "ISS"
	}
	return strings.ToUpper(phrase)
}

func looksLikeCallsign(token string) bool {
	return callsignRe.MatchString(token)
}
