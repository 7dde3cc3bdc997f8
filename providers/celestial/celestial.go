// Package celestial computes sunrise/sunset for a coordinate and date.
//
// Built on stdlib math/time only — DESIGN.md records the justification:
// no repo or other_examples file in the pack implements solar ephemeris;
// github.com/akhenakh/sgp4 (wired into providers/satellite) is
// TLE/satellite propagation, a different problem, so it cannot serve this
// collaborator either.
package celestial

import (
	"math"
	"time"
)

// RiseSet is the sunrise/sunset instant for one coordinate/date, in UTC.
type RiseSet struct {
	Sunrise time.Time
	Sunset  time.Time
}

const deg2rad = math.Pi / 180
const rad2deg = 180 / math.Pi

// Compute returns the sunrise/sunset times for lat/lon on the UTC
// calendar date of date, using the standard NOAA solar-position
// approximation.
func Compute(lat, lon float64, date time.Time) RiseSet {
	n := float64(date.YearDay())
	lngHour := lon / 15

	sunriseT := n + ((6 - lngHour) / 24)
	sunsetT := n + ((18 - lngHour) / 24)

	sunrise := solarEventUTC(sunriseT, lat, lngHour, true)
	sunset := solarEventUTC(sunsetT, lat, lngHour, false)

	y, m, d := date.Date()
	base := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return RiseSet{
		Sunrise: base.Add(time.Duration(sunrise * float64(time.Hour))),
		Sunset:  base.Add(time.Duration(sunset * float64(time.Hour))),
	}
}

func solarEventUTC(t, lat, lngHour float64, rising bool) float64 {
	m := (0.9856 * t) - 3.289
	l := m + (1.916 * math.Sin(m*deg2rad)) + (0.020 * math.Sin(2*m*deg2rad)) + 282.634
	l = normalizeDegrees(l)

	ra := rad2deg * math.Atan(0.91764*math.Tan(l*deg2rad))
	ra = normalizeDegrees(ra)
	lQuadrant := math.Floor(l/90) * 90
	raQuadrant := math.Floor(ra/90) * 90
	ra += lQuadrant - raQuadrant
	ra /= 15

	sinDec := 0.39782 * math.Sin(l*deg2rad)
	cosDec := math.Cos(math.Asin(sinDec))

	cosH := (math.Cos(90.833*deg2rad) - (sinDec * math.Sin(lat*deg2rad))) / (cosDec * math.Cos(lat*deg2rad))
	cosH = math.Max(-1, math.Min(1, cosH))

	var h float64
	if rising {
		h = 360 - rad2deg*math.Acos(cosH)
	} else {
		h = rad2deg * math.Acos(cosH)
	}
	h /= 15

	localT := h + ra - (0.06571 * t) - 6.622
	utcT := localT - lngHour
	return normalizeHours(utcT)
}

func normalizeDegrees(v float64) float64 {
	for v < 0 {
		v += 360
	}
	for v >= 360 {
		v -= 360
	}
	return v
}

func normalizeHours(v float64) float64 {
	for v < 0 {
		v += 24
	}
	for v >= 24 {
		v -= 24
	}
	return v
}
