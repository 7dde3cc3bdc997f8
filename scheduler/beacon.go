package scheduler

import "fmt"

// BeaconConfig is the static information a position beacon is built
// from (spec.md §4.7's beacon producer).
type BeaconConfig struct {
	Alias    string
	ToCall   string // destination/tocall field, e.g. "APRS"
	Lat, Lon float64
	Symbol   string // primary-table symbol identifier, e.g. "/-"
	AltFeet  int
	Comment  string
}

// BuildBeacon renders the beacon payload in ddmm.ssN/dddmm.ssE form
// with the symbol table/code and an altitude extension, grounded on
// original_source/src/aprs_communication.py's send_beacon_and_status_msg
// (`alias>tocall:<payload>` framing).
func BuildBeacon(cfg BeaconConfig) string {
	lat := formatLat(cfg.Lat)
	lon := formatLon(cfg.Lon)
	table, code := "/", "-"
	if len(cfg.Symbol) == 2 {
		table, code = string(cfg.Symbol[0]), string(cfg.Symbol[1])
	}
	payload := fmt.Sprintf("=%s%s%s%s/A=%06d%s", lat, table, lon, code, cfg.AltFeet, cfg.Comment)
	return fmt.Sprintf("%s>%s:%s", cfg.Alias, cfg.ToCall, payload)
}

func formatLat(lat float64) string {
	dir := "N"
	if lat < 0 {
		dir = "S"
		lat = -lat
	}
	deg := int(lat)
	min := (lat - float64(deg)) * 60
	return fmt.Sprintf("%02d%05.2f%s", deg, min, dir)
}

func formatLon(lon float64) string {
	dir := "E"
	if lon < 0 {
		dir = "W"
		lon = -lon
	}
	deg := int(lon)
	min := (lon - float64(deg)) * 60
	return fmt.Sprintf("%03d%05.2f%s", deg, min, dir)
}

// BuildBulletins renders the three BLN0..BLN2 lines in order, grounded
// on send_bulletin_messages's `alias>tocall::BLNn     :text` framing
// (addressee padded to 9 chars exactly as the ack/message wire format
// requires).
func BuildBulletins(alias, toCall string, lines [3]string) []string {
	out := make([]string, 3)
	for i, text := range lines {
		recipient := fmt.Sprintf("BLN%d", i)
		out[i] = fmt.Sprintf("%s>%s::%-9s:%s", alias, toCall, recipient, text)
	}
	return out
}
