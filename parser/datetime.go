package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var weekdays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
var weekdaysShort = []string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

var (
	hoursAheadRe = regexp.MustCompile(`^(\d{1,2})h$`)
	daysAheadRe  = regexp.MustCompile(`^(\d)d$`)
)

// matchDateToken recognizes a single date modifier token (spec.md §4.4
// priority 3): today, tomorrow, a weekday name (full or 3-letter), Nh,
// or Nd. now is injected for testability rather than read from time.Now
// inside this pure function.
func matchDateToken(token string, now time.Time) (DateOffset, bool) {
	switch token {
	case "today":
		return DateOffset{Kind: DateToday}, true
	case "tomorrow":
		return DateOffset{Kind: DateDaysAhead, Value: 1}, true
	}
	if m := hoursAheadRe.FindStringSubmatch(token); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n >= 1 && n <= 47 {
			return DateOffset{Kind: DateHoursAhead, Value: n}, true
		}
	}
	if m := daysAheadRe.FindStringSubmatch(token); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n >= 1 && n <= 7 {
			return DateOffset{Kind: DateDaysAhead, Value: n}, true
		}
	}
	if days, ok := weekdayOffset(token, now); ok {
		return DateOffset{Kind: DateDaysAhead, Value: days}, true
	}
	return DateOffset{}, false
}

// weekdayOffset resolves a weekday name to a day count. A weekday equal to
// today's weekday means next week's same weekday (spec.md §4.4).
func weekdayOffset(token string, now time.Time) (int, bool) {
	target := -1
	for i, name := range weekdays {
		if token == name || token == weekdaysShort[i] {
			target = i
			break
		}
	}
	if target == -1 {
		return 0, false
	}
	todayIdx := int(now.Weekday())
	diff := target - todayIdx
	if diff <= 0 {
		diff += 7
	}
	return diff, true
}

// matchDaytimeToken recognizes a daytime-window modifier token.
// nite/night/tonite/tonight also force the date to today unless a
// specific day has already been set (caller's responsibility).
func matchDaytimeToken(token string) (Daytime, bool) {
	switch token {
	case "morn", "morning":
		return DaytimeMorning, true
	case "day", "daytime", "noon":
		return DaytimeDay, true
	case "eve", "evening":
		return DaytimeEvening, true
	case "nite", "night", "tonite", "tonight":
		return DaytimeNight, true
	case "full":
		return DaytimeFull, true
	}
	return "", false
}

// isTonightAlias reports whether token is one of the tonight-shaped
// spellings that force date=today when no date was otherwise given.
func isTonightAlias(token string) bool {
	t := strings.ToLower(token)
	return t == "tonite" || t == "tonight"
}

func matchUnitsToken(token string) (Units, bool) {
	switch token {
	case "mtr", "metric":
		return UnitsMetric, true
	case "imp", "imperial":
		return UnitsImperial, true
	}
	return "", false
}

var topNRe = regexp.MustCompile(`^top([2-5])$`)

func matchTopN(token string) (int, bool) {
	if m := topNRe.FindStringSubmatch(token); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, true
	}
	return 0, false
}

// imperialCountries lists sender countries whose default unit system is
// imperial (spec.md §3).
var imperialCountries = map[string]bool{"US": true, "LR": true, "MM": true}

// DefaultUnitsForCountry returns the default unit system for a sender's
// country code.
func DefaultUnitsForCountry(countryCode string) Units {
	if imperialCountries[strings.ToUpper(countryCode)] {
		return UnitsImperial
	}
	return UnitsMetric
}

// usPrefixes lists the ITU callsign prefix letters allocated to the
// United States, sufficient to pick out the one imperial-by-default
// country that dominates APRS traffic without reviving a full
// country-prefix database.
var usPrefixes = []string{"K", "N", "W", "AA", "AB", "AC", "AD", "AE", "AF", "AG", "AI", "AJ", "AK"}

// CallsignCountry returns a best-effort ITU prefix country guess for a
// callsign, used only to seed DefaultUnitsForCountry. It recognizes US
// prefixes and otherwise returns "", which defaults to metric.
func CallsignCountry(callsign string) string {
	c := strings.ToUpper(callsign)
	if idx := strings.IndexByte(c, '-'); idx >= 0 {
		c = c[:idx]
	}
	for _, p := range usPrefixes {
		if strings.HasPrefix(c, p) && len(c) > len(p) && c[len(p)] >= '0' && c[len(p)] <= '9' {
			return "US"
		}
	}
	return ""
}
