package dispatch

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/joergschultzelutter/mpad/parser"
	"github.com/joergschultzelutter/mpad/providers/airport"
	"github.com/joergschultzelutter/mpad/providers/celestial"
	"github.com/joergschultzelutter/mpad/providers/cwop"
	"github.com/joergschultzelutter/mpad/providers/dapnet"
	"github.com/joergschultzelutter/mpad/providers/geo"
	"github.com/joergschultzelutter/mpad/providers/geocode"
	"github.com/joergschultzelutter/mpad/providers/mail"
	"github.com/joergschultzelutter/mpad/providers/osm"
	"github.com/joergschultzelutter/mpad/providers/repeater"
	"github.com/joergschultzelutter/mpad/providers/satellite"
	"github.com/joergschultzelutter/mpad/providers/weather"
	"github.com/joergschultzelutter/mpad/stats"
)

// PositionStore resolves another station's last known position through
// an external position-lookup collaborator (the aprs.fi client in
// main.go; spec.md §4.4's "sender's last known position" fallback).
type PositionStore interface {
	LastKnownPosition(callsign string) (lat, lon float64, lastHeard time.Time, ok bool)
}

// AirportIndex resolves ICAO/IATA codes against the on-disk airport
// catalog (spec.md §6), owned by refcache.
type AirportIndex interface {
	Resolve(code string) (lat, lon float64, icao string, ok bool)
	Nearest(lat, lon float64) (icao string, ok bool)
}

// Dispatcher is pure orchestration (spec.md §4.5): for each action it
// calls the corresponding provider collaborator and renders a
// Response. It is the only component that resolves a symbolic target
// into a concrete lat/lon.
type Dispatcher struct {
	Weather   *weather.Client
	Geocode   *geocode.Client
	Airports  AirportIndex
	AirportAPI *airport.Client
	Cwop      *cwop.Client
	Satellite *satellite.Client
	Repeater  *repeater.Client
	OSM       *osm.Client
	Dapnet    *dapnet.Client
	Mail      *mail.Client
	Positions PositionStore
	Stats     *stats.Tracker

	OSMAllowlist    map[string]struct{}
	ProviderTimeout time.Duration
	SatLookahead    time.Duration
	FromAddress     string
}

func (d *Dispatcher) timeout() time.Duration {
	if d.ProviderTimeout <= 0 {
		return 10 * time.Second
	}
	return d.ProviderTimeout
}

// trackProvider records a call to an external collaborator, if a
// Tracker was configured.
func (d *Dispatcher) trackProvider(name string) {
	if d.Stats != nil {
		d.Stats.IncrementProvider(name)
	}
}

// withRetryOnce calls fn, and on failure calls it exactly once more
// before giving up, per spec.md §4.5's "provider unavailable ->
// retry-once" policy.
func withRetryOnce[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	v, err := fn(cctx)
	cancel()
	if err == nil {
		return v, nil
	}

	cctx2, cancel2 := context.WithTimeout(ctx, timeout)
	defer cancel2()
	return fn(cctx2)
}

// Dispatch maps cmd to a provider call and renders the Response.
// senderCallsign/senderLat/senderLon/senderHasPos describe the
// requesting station, used for the UserPosition target and as the
// reference position for sender-relative actions.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd parser.Command, senderCallsign string, senderLat, senderLon float64, senderHasPos bool) (Response, error) {
	switch cmd.Action {
	case parser.ActionWx:
		return d.dispatchWeather(ctx, cmd, senderCallsign, senderLat, senderLon, senderHasPos)
	case parser.ActionMetar:
		return d.dispatchMetarTaf(ctx, cmd, senderLat, senderLon, senderHasPos, true, false)
	case parser.ActionTaf:
		return d.dispatchMetarTaf(ctx, cmd, senderLat, senderLon, senderHasPos, false, true)
	case parser.ActionMetarTafFull:
		return d.dispatchMetarTaf(ctx, cmd, senderLat, senderLon, senderHasPos, true, true)
	case parser.ActionCwop:
		return d.dispatchCwop(ctx, cmd)
	case parser.ActionWhereIs:
		return d.dispatchWhereIs(ctx, cmd, senderLat, senderLon, senderHasPos)
	case parser.ActionWhereAmI:
		return d.dispatchWhereAmI(ctx, senderCallsign, senderLat, senderLon, senderHasPos)
	case parser.ActionRiseSet:
		return d.dispatchRiseSet(ctx, cmd, senderCallsign, senderLat, senderLon, senderHasPos)
	case parser.ActionSatPass, parser.ActionVisPass:
		return d.dispatchSatPass(ctx, cmd, senderCallsign, senderLat, senderLon, senderHasPos)
	case parser.ActionSatFreq:
		return d.dispatchSatFreq(cmd)
	case parser.ActionRepeater:
		return d.dispatchRepeater(ctx, cmd, senderCallsign, senderLat, senderLon, senderHasPos)
	case parser.ActionOsmCategory:
		return d.dispatchOSM(ctx, cmd, senderCallsign, senderLat, senderLon, senderHasPos)
	case parser.ActionDapnet, parser.ActionDapnetHighPri:
		return d.dispatchDapnet(ctx, cmd, senderCallsign)
	case parser.ActionPosMsg:
		return d.dispatchPosMsg(ctx, cmd, senderCallsign, senderLat, senderLon, senderHasPos)
	case parser.ActionFortune:
		return dispatchFortune(), nil
	case parser.ActionSonde:
		return d.dispatchSonde(ctx, cmd, senderCallsign)
	case parser.ActionHelp:
		return dispatchHelp(), nil
	default:
		return dispatchUnknown(), nil
	}
}

// resolveCoordinates turns cmd.Target into a concrete lat/lon plus a
// human-readable label for that target (spec.md §8 scenarios 1/2
// require the resolved place in the response's first fragment), or
// returns a KindSemantic error ("location not found") when it can't.
func (d *Dispatcher) resolveCoordinates(ctx context.Context, cmd parser.Command, senderCallsign string, senderLat, senderLon float64, senderHasPos bool) (float64, float64, string, error) {
	switch t := cmd.Target.(type) {
	case parser.UserPosition, nil:
		if !senderHasPos {
			return 0, 0, "", newErr(KindSemantic, "sender has no known position", nil)
		}
		return senderLat, senderLon, senderCallsign, nil

	case parser.LatLon:
		return t.Lat, t.Lon, targetLabel(t, "", senderCallsign), nil

	case parser.Grid:
		lat, lon, err := geo.FromMaidenhead(t.Locator)
		if err != nil {
			return 0, 0, "", newErr(KindSemantic, "invalid grid locator", err)
		}
		return lat, lon, targetLabel(t, "", senderCallsign), nil

	case parser.OtherCallsign:
		lat, lon, _, ok := d.Positions.LastKnownPosition(t.Callsign)
		if !ok {
			return 0, 0, "", newErr(KindSemantic, "no known position for "+t.Callsign, nil)
		}
		return lat, lon, targetLabel(t, "", senderCallsign), nil

	case parser.Zip:
		query := t.Code
		if t.Country != "" {
			query = t.Code + ";" + t.Country
		}
		d.trackProvider("geocode")
		pos, err := withRetryOnce(ctx, d.timeout(), func(c context.Context) (geocode.Position, error) {
			return d.Geocode.Forward(c, query)
		})
		if err != nil {
			return 0, 0, "", newErr(KindProvider, "geocode unavailable", err)
		}
		return pos.Lat, pos.Lon, targetLabel(t, pos.Address, senderCallsign), nil

	case parser.CityCountry:
		query := t.City
		if t.State != "" {
			query += "," + t.State
		}
		if t.Country != "" {
			query += ";" + t.Country
		}
		d.trackProvider("geocode")
		pos, err := withRetryOnce(ctx, d.timeout(), func(c context.Context) (geocode.Position, error) {
			return d.Geocode.Forward(c, query)
		})
		if err != nil {
			return 0, 0, "", newErr(KindProvider, "geocode unavailable", err)
		}
		return pos.Lat, pos.Lon, targetLabel(t, "", senderCallsign), nil

	case parser.IcaoCode:
		lat, lon, _, ok := d.Airports.Resolve(t.Code)
		if !ok {
			return 0, 0, "", newErr(KindSemantic, "unknown ICAO code "+t.Code, nil)
		}
		return lat, lon, targetLabel(t, "", senderCallsign), nil

	case parser.IataCode:
		lat, lon, _, ok := d.Airports.Resolve(t.Code)
		if !ok {
			return 0, 0, "", newErr(KindSemantic, "unknown IATA code "+t.Code, nil)
		}
		return lat, lon, targetLabel(t, "", senderCallsign), nil

	default:
		if !senderHasPos {
			return 0, 0, "", newErr(KindSemantic, "no target and no known sender position", nil)
		}
		return senderLat, senderLon, senderCallsign, nil
	}
}

// targetLabel renders the place label spec.md §8 scenarios 1/2 expect
// in the first response fragment. geoAddr is the geocoder's resolved
// address, used only for a Zip target (spec.md scenario 2: the zip
// code alone isn't a place name, but a city;country target already
// carries one and renders it verbatim, scenario 1).
func targetLabel(t parser.Target, geoAddr, senderCallsign string) string {
	switch v := t.(type) {
	case parser.UserPosition, nil:
		return senderCallsign
	case parser.OtherCallsign:
		return v.Callsign
	case parser.LatLon:
		return fmt.Sprintf("%.4f,%.4f", v.Lat, v.Lon)
	case parser.Grid:
		return v.Locator
	case parser.Zip:
		if geoAddr != "" {
			return fmt.Sprintf("%s,%s;%s", geoAddr, v.Code, v.Country)
		}
		return fmt.Sprintf("%s;%s", v.Code, v.Country)
	case parser.CityCountry:
		label := v.City
		if v.State != "" {
			label += "," + v.State
		}
		if v.Country != "" {
			label += ";" + v.Country
		}
		return label
	case parser.IcaoCode:
		return v.Code
	case parser.IataCode:
		return v.Code
	default:
		return senderCallsign
	}
}

// dayIndex projects a parsed date offset onto the provider's daily
// forecast slice (spec.md §8 scenario 1: "tomorrow" must select the
// next day's entry, not today's), clamped to the slice actually
// returned by the provider.
func dayIndex(offset parser.DateOffset, numDays int) int {
	idx := 0
	switch offset.Kind {
	case parser.DateDaysAhead:
		idx = offset.Value
	case parser.DateHoursAhead:
		idx = offset.Value / 24
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= numDays {
		idx = numDays - 1
	}
	return idx
}

func windowHour(daytime parser.Daytime) int {
	switch daytime {
	case parser.DaytimeMorning:
		return 6
	case parser.DaytimeDay:
		return 12
	case parser.DaytimeEvening:
		return 18
	case parser.DaytimeNight:
		return 0
	default:
		return -1 // full: all windows
	}
}

func (d *Dispatcher) dispatchWeather(ctx context.Context, cmd parser.Command, senderCallsign string, senderLat, senderLon float64, senderHasPos bool) (Response, error) {
	lat, lon, label, err := d.resolveCoordinates(ctx, cmd, senderCallsign, senderLat, senderLon, senderHasPos)
	if err != nil {
		return unresolvableResponse(), err
	}

	d.trackProvider("weather")
	days, err := withRetryOnce(ctx, d.timeout(), func(c context.Context) ([]weather.Forecast, error) {
		return d.Weather.Forecast(c, lat, lon, string(cmd.Units), cmd.Language)
	})
	if err != nil {
		return serviceUnavailableResponse(), newErr(KindProvider, "weather provider unavailable", err)
	}
	if len(days) == 0 {
		return noMatchResponse(), newErr(KindSemantic, "empty weather result", nil)
	}

	day := days[dayIndex(cmd.DateOffset, len(days))]
	hour := windowHour(cmd.Daytime)
	tempUnit := "c"
	if cmd.Units == parser.UnitsImperial {
		tempUnit = "f"
	}

	var lines []Line
	var header Line
	if hour >= 0 {
		header = line(text(day.Date), text(label), text(day.Windows[0].Condition), noSplit(fmt.Sprintf("%.0f%s", day.TempAt(hour), tempUnit)))
	} else {
		header = line(
			text(day.Date), text(label), text(day.Windows[0].Condition),
			noSplit(fmt.Sprintf("morn:%.0f%s", day.TempAt(6), tempUnit)),
			noSplit(fmt.Sprintf("day:%.0f%s", day.TempAt(12), tempUnit)),
			noSplit(fmt.Sprintf("eve:%.0f%s", day.TempAt(18), tempUnit)),
			noSplit(fmt.Sprintf("nite:%.0f%s", day.TempAt(0), tempUnit)),
		)
	}
	lines = append(lines, header)
	lines = append(lines, line(
		text("sunrise"), noSplit(day.SunriseUTC), text("sunset"), noSplit(day.SunsetUTC),
		text("clouds"), noSplit(fmt.Sprintf("%d%%", day.CloudPct)), text("uvi"), noSplit(fmt.Sprintf("%.1f", day.UVIndex)),
	))
	lines = append(lines, line(
		text("hPa"), noSplit(fmt.Sprintf("%.0f", day.PressureHPa)), text("humidity"), noSplit(fmt.Sprintf("%d%%", day.HumidityPct)),
		text("dew"), noSplit(fmt.Sprintf("%.1f%s", day.DewPointC, tempUnit)), text("wind"), noSplit(fmt.Sprintf("%.1fm/s", day.WindSpeedMS)),
		noSplit(fmt.Sprintf("%ddeg", day.WindDegrees)),
	))

	return Response{Lines: lines}, nil
}

func (d *Dispatcher) dispatchMetarTaf(ctx context.Context, cmd parser.Command, senderLat, senderLon float64, senderHasPos, wantMetar, wantTaf bool) (Response, error) {
	var icao string
	switch t := cmd.Target.(type) {
	case parser.IcaoCode:
		icao = t.Code
	default:
		if !senderHasPos {
			return unresolvableResponse(), newErr(KindSemantic, "no position to find nearest airport", nil)
		}
		found, ok := d.Airports.Nearest(senderLat, senderLon)
		if !ok {
			return noMatchResponse(), newErr(KindSemantic, "no nearby airport", nil)
		}
		icao = found
	}

	var metarText, tafText string
	g, gctx := errgroup.WithContext(ctx)
	d.trackProvider("airport")
	if wantMetar {
		g.Go(func() error {
			t, err := withRetryOnce(gctx, d.timeout(), func(c context.Context) (string, error) { return d.AirportAPI.METAR(c, icao) })
			if err != nil {
				return err
			}
			metarText = t
			return nil
		})
	}
	if wantTaf {
		g.Go(func() error {
			t, err := withRetryOnce(gctx, d.timeout(), func(c context.Context) (string, error) { return d.AirportAPI.TAF(c, icao) })
			if err != nil {
				return err
			}
			tafText = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return serviceUnavailableResponse(), newErr(KindProvider, "airport provider unavailable", err)
	}

	switch {
	case wantMetar && wantTaf:
		return Response{Lines: []Line{{text(metarText)}, {text("##")}, {text(tafText)}}}, nil
	case wantMetar:
		return Response{Lines: []Line{{text(metarText)}}}, nil
	default:
		return Response{Lines: []Line{{text(tafText)}}}, nil
	}
}

func (d *Dispatcher) dispatchCwop(ctx context.Context, cmd parser.Command) (Response, error) {
	t, ok := cmd.Target.(parser.CwopStation)
	if !ok {
		return unresolvableResponse(), newErr(KindSemantic, "no CWOP station given", nil)
	}
	d.trackProvider("cwop")
	obs, err := withRetryOnce(ctx, d.timeout(), func(c context.Context) (cwop.Observation, error) {
		return d.Cwop.Latest(c, t.ID)
	})
	if err != nil {
		return serviceUnavailableResponse(), newErr(KindProvider, "CWOP provider unavailable", err)
	}
	return Response{Lines: []Line{
		{text(t.ID), noSplit(fmt.Sprintf("%.1fc", obs.TempC)), noSplit(fmt.Sprintf("%d%%", obs.HumidityPct)), noSplit(fmt.Sprintf("%.0fhPa", obs.PressureHPa)), noSplit(fmt.Sprintf("%.1fm/s", obs.WindSpeedMS))},
	}}, nil
}

func (d *Dispatcher) dispatchWhereIs(ctx context.Context, cmd parser.Command, senderLat, senderLon float64, senderHasPos bool) (Response, error) {
	t, ok := cmd.Target.(parser.OtherCallsign)
	if !ok {
		return unresolvableResponse(), newErr(KindSemantic, "whereis requires a callsign", nil)
	}
	lat, lon, lastHeard, ok := d.Positions.LastKnownPosition(t.Callsign)
	if !ok {
		return noMatchResponse(), newErr(KindSemantic, "no known position for "+t.Callsign, nil)
	}
	return whereResponse(ctx, d, lat, lon, lastHeard, senderLat, senderLon, senderHasPos), nil
}

func (d *Dispatcher) dispatchWhereAmI(ctx context.Context, senderCallsign string, senderLat, senderLon float64, senderHasPos bool) (Response, error) {
	if !senderHasPos {
		return unresolvableResponse(), newErr(KindSemantic, "no known position for "+senderCallsign, nil)
	}
	return whereResponse(ctx, d, senderLat, senderLon, time.Time{}, senderLat, senderLon, false), nil
}

// whereResponse renders a position report for lat/lon (spec.md §4.4's
// Grid/DMS/UTM/MGRS/LatLon/address block). When includeDistance is set,
// a Dst/Brg line is inserted between DMS and UTM giving the great-circle
// distance and initial bearing from senderLat/senderLon (spec.md §8
// scenario 3, whereis only — whereami's target is the sender itself, so
// the distance would be degenerate).
func whereResponse(ctx context.Context, d *Dispatcher, lat, lon float64, lastHeard time.Time, senderLat, senderLon float64, includeDistance bool) Response {
	grid := geo.ToMaidenhead(lat, lon, 6)
	dms := geo.DMS(lat, lon)
	utm := geo.ToUTM(lat, lon)
	mgrs := geo.ToMGRS(lat, lon)

	lines := []Line{
		{noSplit("Grid"), noSplit(grid)},
		{noSplit("DMS"), text(dms)},
	}
	if includeDistance {
		dist := geo.Haversine(senderLat, senderLon, lat, lon)
		brg := geo.Bearing(senderLat, senderLon, lat, lon)
		lines = append(lines, Line{noSplit("Dst"), noSplit(fmt.Sprintf("%.0fkm", dist)), noSplit("Brg"), noSplit(fmt.Sprintf("%.0fdeg", brg))})
	}
	lines = append(lines,
		Line{noSplit("UTM"), noSplit(utm)},
		Line{noSplit("MGRS"), noSplit(mgrs)},
		Line{noSplit("LatLon"), noSplit(fmt.Sprintf("%.4f,%.4f", lat, lon))},
	)

	if d.Geocode != nil {
		d.trackProvider("geocode")
		if addr, err := withRetryOnce(ctx, d.timeout(), func(c context.Context) (string, error) {
			return d.Geocode.Reverse(c, lat, lon)
		}); err == nil {
			lines = append(lines, Line{text(addr)})
		}
	}

	if !lastHeard.IsZero() {
		lines = append(lines, Line{noSplit("Last heard"), noSplit(humanize.Time(lastHeard)), text("(" + lastHeard.UTC().Format(time.RFC3339) + ")")})
	}

	return Response{Lines: lines}
}

func (d *Dispatcher) dispatchRiseSet(ctx context.Context, cmd parser.Command, senderCallsign string, senderLat, senderLon float64, senderHasPos bool) (Response, error) {
	lat, lon, _, err := d.resolveCoordinates(ctx, cmd, senderCallsign, senderLat, senderLon, senderHasPos)
	if err != nil {
		return unresolvableResponse(), err
	}
	rs := celestial.Compute(lat, lon, time.Now().UTC())
	return Response{Lines: []Line{
		{noSplit("Sunrise"), noSplit(rs.Sunrise.Format("15:04Z")), noSplit("Sunset"), noSplit(rs.Sunset.Format("15:04Z"))},
	}}, nil
}

func (d *Dispatcher) dispatchSatPass(ctx context.Context, cmd parser.Command, senderCallsign string, senderLat, senderLon float64, senderHasPos bool) (Response, error) {
	t, ok := cmd.Target.(parser.SatelliteName)
	if !ok {
		return unresolvableResponse(), newErr(KindSemantic, "no satellite name given", nil)
	}
	if !senderHasPos {
		return unresolvableResponse(), newErr(KindSemantic, "no known ground station position", nil)
	}

	from := time.Now().UTC()
	lookahead := d.SatLookahead
	if lookahead <= 0 {
		lookahead = 48 * time.Hour
	}

	d.trackProvider("satellite")
	pass, err := withRetryOnce(ctx, d.timeout(), func(c context.Context) (satellite.Pass, error) {
		return d.Satellite.NextPass(c, t.Name, senderLat, senderLon, 0, from, lookahead)
	})
	if err != nil {
		return noMatchResponse(), newErr(KindSemantic, "no upcoming pass for "+t.Name, err)
	}

	return Response{Lines: []Line{
		{text(t.Name), noSplit("AOS"), noSplit(pass.AOS.Format("02-Jan 15:04Z")), noSplit("LOS"), noSplit(pass.LOS.Format("15:04Z"))},
		{noSplit("MaxEl"), noSplit(fmt.Sprintf("%.0fdeg", pass.MaxElev)), noSplit("Dur"), noSplit(pass.Duration.Round(time.Second).String())},
	}}, nil
}

func (d *Dispatcher) dispatchSatFreq(cmd parser.Command) (Response, error) {
	t, ok := cmd.Target.(parser.SatelliteName)
	if !ok {
		return unresolvableResponse(), newErr(KindSemantic, "no satellite name given", nil)
	}
	freq, ok := satellite.Frequency(t.Name)
	if !ok {
		return noMatchResponse(), newErr(KindSemantic, "unknown satellite "+t.Name, nil)
	}
	return Response{Lines: []Line{{text(t.Name), noSplit(fmt.Sprintf("%.3fMHz", freq))}}}, nil
}

func (d *Dispatcher) dispatchRepeater(ctx context.Context, cmd parser.Command, senderCallsign string, senderLat, senderLon float64, senderHasPos bool) (Response, error) {
	if !senderHasPos {
		return unresolvableResponse(), newErr(KindSemantic, "no known sender position", nil)
	}

	var band, mode string
	if rf, ok := cmd.Target.(parser.RepeaterFilter); ok {
		band, mode = rf.Band, rf.Mode
	}

	d.trackProvider("repeater")
	repeaters, err := withRetryOnce(ctx, d.timeout(), func(c context.Context) ([]repeater.Repeater, error) {
		return d.Repeater.Nearest(c, senderLat, senderLon, band, mode, cmd.TopN)
	})
	if err != nil {
		return noMatchResponse(), newErr(KindSemantic, "no repeater match", err)
	}

	n := cmd.TopN
	if n <= 0 {
		n = 1
	}
	if n > len(repeaters) {
		n = len(repeaters)
	}

	lines := make([]Line, 0, n)
	for _, r := range repeaters[:n] {
		tokens := []Token{noSplit(r.Callsign), noSplit(fmt.Sprintf("%.3fMHz", r.Frequency))}
		if !cmd.EchoSuppressed {
			tokens = append(tokens, text(r.Band), text(r.Mode))
		}
		lines = append(lines, tokens)
	}
	return Response{Lines: lines}, nil
}

func (d *Dispatcher) dispatchOSM(ctx context.Context, cmd parser.Command, senderCallsign string, senderLat, senderLon float64, senderHasPos bool) (Response, error) {
	t, ok := cmd.Target.(parser.OsmPhrase)
	if !ok {
		return unresolvableResponse(), newErr(KindSemantic, "no OSM category given", nil)
	}
	if len(d.OSMAllowlist) > 0 {
		if _, allowed := d.OSMAllowlist[strings.ToLower(t.Category)]; !allowed {
			return noMatchResponse(), newErr(KindSemantic, "category not in allow-list: "+t.Category, nil)
		}
	}
	if !senderHasPos {
		return unresolvableResponse(), newErr(KindSemantic, "no known sender position", nil)
	}

	d.trackProvider("osm")
	places, err := withRetryOnce(ctx, d.timeout(), func(c context.Context) ([]osm.Place, error) {
		return d.OSM.Nearby(c, senderLat, senderLon, t.Category, cmd.TopN)
	})
	if err != nil {
		return noMatchResponse(), newErr(KindSemantic, "no "+t.Category+" nearby", err)
	}

	n := cmd.TopN
	if n <= 0 {
		n = 1
	}
	if n > len(places) {
		n = len(places)
	}

	lines := make([]Line, 0, n)
	for _, p := range places[:n] {
		lines = append(lines, Line{text(p.Name), noSplit(fmt.Sprintf("%.0fm", p.DistanceM))})
	}
	return Response{Lines: lines}, nil
}

func (d *Dispatcher) dispatchDapnet(ctx context.Context, cmd parser.Command, senderCallsign string) (Response, error) {
	if !d.Dapnet.Enabled() {
		return Response{Lines: []Line{{text("DAPNET disabled")}}}, newErr(KindDisabled, "DAPNET credentials not configured", nil)
	}
	t, ok := cmd.Target.(parser.DapnetUser)
	if !ok {
		return unresolvableResponse(), newErr(KindSemantic, "no DAPNET recipient given", nil)
	}
	if cmd.FreeText == "" {
		return unresolvableResponse(), newErr(KindSemantic, "no DAPNET message text given", nil)
	}
	highPriority := cmd.Action == parser.ActionDapnetHighPri
	d.trackProvider("dapnet")
	err := d.Dapnet.Send(ctx, senderCallsign, t.User, cmd.FreeText, highPriority)
	if err != nil {
		return serviceUnavailableResponse(), newErr(KindProvider, "DAPNET gateway unavailable", err)
	}
	return Response{Lines: []Line{{text("DAPNET message sent to"), text(t.User)}}}, nil
}

func (d *Dispatcher) dispatchPosMsg(ctx context.Context, cmd parser.Command, senderCallsign string, senderLat, senderLon float64, senderHasPos bool) (Response, error) {
	if d.Mail == nil {
		return Response{Lines: []Line{{text("mail disabled")}}}, newErr(KindDisabled, "mail not configured", nil)
	}
	t, ok := cmd.Target.(parser.EmailAddress)
	if !ok {
		return unresolvableResponse(), newErr(KindSemantic, "no email address given", nil)
	}
	if !senderHasPos {
		return unresolvableResponse(), newErr(KindSemantic, "no known sender position", nil)
	}

	body := fmt.Sprintf("Position report from %s: %.4f,%.4f", senderCallsign, senderLat, senderLon)
	d.trackProvider("mail")
	if err := d.Mail.Send(mail.Report{ToAddress: t.Address, Subject: "mpad position report", Body: body, SentAt: time.Now().UTC()}); err != nil {
		return serviceUnavailableResponse(), newErr(KindProvider, "mail send failed", err)
	}
	return Response{Lines: []Line{{text("position email sent to"), text(t.Address)}}}, nil
}

func dispatchFortune() Response {
	fortunes := []string{
		"It is certain.", "Ask again later.", "Cannot predict now.",
		"Outlook good.", "Very doubtful.", "Signs point to yes.",
	}
	return Response{Lines: []Line{{text(fortunes[rand.Intn(len(fortunes))])}}}
}

// dispatchSonde internally consults the position lookup (spec.md §6)
// before attempting a radiosonde prediction; landing-site math is a
// provider concern this exercise does not implement.
func (d *Dispatcher) dispatchSonde(ctx context.Context, cmd parser.Command, senderCallsign string) (Response, error) {
	if _, _, _, ok := d.Positions.LastKnownPosition(senderCallsign); !ok {
		return unresolvableResponse(), newErr(KindSemantic, "no known position for "+senderCallsign, nil)
	}
	return Response{Lines: []Line{{text("no radiosonde prediction available")}}}, nil
}

func dispatchHelp() Response {
	return Response{Lines: []Line{{text("mpad: send wx/metar/taf/whereis/repeater/satpass/help")}}}
}

func dispatchUnknown() Response {
	return Response{Lines: []Line{{text("unrecognized command; send 'help' for a pointer")}}}
}

func unresolvableResponse() Response    { return oneLine("location not found") }
func noMatchResponse() Response         { return oneLine("no match") }
func serviceUnavailableResponse() Response { return oneLine("service unavailable") }
