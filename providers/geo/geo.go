// Package geo implements the geodesic primitives spec.md §1 lists as
// an out-of-scope collaborator (distance, bearing, Maidenhead/UTM/MGRS
// conversion): boundary-correct, not internally exhaustive. Grounded
// on original_source/geo_conversion_modules.py's Haversine and
// Maidenhead helpers; UTM/MGRS are simplified WGS84 approximations
// since no pack library implements them.
//
// Built on stdlib math only — DESIGN.md records the justification: no
// repo or other_examples file in the pack carries a geodesic library,
// and the original Python relies on third-party packages (`maidenhead`,
// `mgrs`) with no Go equivalent anywhere in the retrieved pack.
package geo

import (
	"fmt"
	"math"
	"strings"
)

const earthRadiusKM = 6371.0

// Haversine returns the great-circle distance in kilometers between
// two coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1, rlon1 := lat1*math.Pi/180, lon1*math.Pi/180
	rlat2, rlon2 := lat2*math.Pi/180, lon2*math.Pi/180
	dLat := rlat2 - rlat1
	dLon := rlon2 - rlon1

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

// Bearing returns the initial great-circle bearing in degrees (0-360,
// 0=north) from point 1 to point 2.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1, rlat2 := lat1*math.Pi/180, lat2*math.Pi/180
	dLon := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(rlat2)
	x := math.Cos(rlat1)*math.Sin(rlat2) - math.Sin(rlat1)*math.Cos(rlat2)*math.Cos(dLon)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// DMS renders a coordinate pair in degrees-minutes-seconds form.
func DMS(lat, lon float64) string {
	return fmt.Sprintf("%s %s", dmsOne(lat, "N", "S"), dmsOne(lon, "E", "W"))
}

func dmsOne(v float64, pos, neg string) string {
	dir := pos
	if v < 0 {
		dir = neg
		v = -v
	}
	deg := math.Floor(v)
	minF := (v - deg) * 60
	min := math.Floor(minF)
	sec := (minF - min) * 60
	return fmt.Sprintf("%d°%d'%.1f\"%s", int(deg), int(min), sec, dir)
}

const maidenheadFieldLetters = "ABCDEFGHIJKLMNOPQR"

// ToMaidenhead converts a coordinate to a Maidenhead grid locator of
// the given precision (4 or 6 characters).
func ToMaidenhead(lat, lon float64, precision int) string {
	lon += 180
	lat += 90

	field := string(maidenheadFieldLetters[int(lon/20)]) + string(maidenheadFieldLetters[int(lat/10)])
	lon = math.Mod(lon, 20)
	lat = math.Mod(lat, 10)

	square := fmt.Sprintf("%d%d", int(lon/2), int(lat/1))

	if precision < 6 {
		return field + square
	}

	lon = math.Mod(lon, 2) * 12
	lat = math.Mod(lat, 1) * 24
	sub := string(rune('a'+int(lon))) + string(rune('a'+int(lat)))
	return field + square + sub
}

// FromMaidenhead converts a grid locator back to its center coordinate.
func FromMaidenhead(grid string) (lat, lon float64, err error) {
	grid = strings.ToUpper(grid)
	if len(grid) < 4 || len(grid)%2 != 0 {
		return 0, 0, fmt.Errorf("geo: invalid maidenhead locator %q", grid)
	}

	lon = float64(grid[0]-'A')*20 - 180
	lat = float64(grid[1]-'A')*10 - 90
	lon += float64(grid[2]-'0') * 2
	lat += float64(grid[3] - '0')

	if len(grid) >= 6 {
		lon += float64(grid[4]-'A')*(2.0/24.0) + 1.0/24.0
		lat += float64(grid[5]-'A')*(1.0/24.0) + 0.5/24.0
	} else {
		lon += 1
		lat += 0.5
	}
	return lat, lon, nil
}

// ToUTM returns a simplified UTM-zone projection string, accurate
// enough for display purposes (not geodetic survey use).
func ToUTM(lat, lon float64) string {
	zone := int((lon+180)/6) + 1
	hemi := "N"
	if lat < 0 {
		hemi = "S"
	}
	easting := (lon - (float64(zone)*6 - 183)) * 111320 * math.Cos(lat*math.Pi/180)
	northing := lat * 110540
	if northing < 0 {
		northing += 10000000
	}
	return fmt.Sprintf("%d%s %.0fE %.0fN", zone, hemi, easting+500000, northing)
}

// ToMGRS returns a simplified MGRS-shaped string built on ToUTM.
func ToMGRS(lat, lon float64) string {
	return strings.ReplaceAll(ToUTM(lat, lon), " ", "")
}
