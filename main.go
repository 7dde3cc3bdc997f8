// Command mpad is the Multi-Purpose APRS Daemon: a long-running process
// that logs into APRS-IS, answers commands addressed to its own
// station identifier, and emits periodic beacons and bulletins on a
// fixed duty cycle (spec.md §1/§2).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joergschultzelutter/mpad/ack"
	"github.com/joergschultzelutter/mpad/config"
	"github.com/joergschultzelutter/mpad/dedup"
	"github.com/joergschultzelutter/mpad/dispatch"
	"github.com/joergschultzelutter/mpad/fragment"
	"github.com/joergschultzelutter/mpad/ingress"
	"github.com/joergschultzelutter/mpad/parser"
	"github.com/joergschultzelutter/mpad/providers/airport"
	"github.com/joergschultzelutter/mpad/providers/aprsfi"
	"github.com/joergschultzelutter/mpad/providers/cwop"
	"github.com/joergschultzelutter/mpad/providers/dapnet"
	"github.com/joergschultzelutter/mpad/providers/geocode"
	"github.com/joergschultzelutter/mpad/providers/mail"
	"github.com/joergschultzelutter/mpad/providers/osm"
	"github.com/joergschultzelutter/mpad/providers/repeater"
	"github.com/joergschultzelutter/mpad/providers/satellite"
	"github.com/joergschultzelutter/mpad/providers/weather"
	"github.com/joergschultzelutter/mpad/refcache"
	"github.com/joergschultzelutter/mpad/scheduler"
	"github.com/joergschultzelutter/mpad/session"
	"github.com/joergschultzelutter/mpad/stats"
	"github.com/joergschultzelutter/mpad/telemetry"
	"github.com/joergschultzelutter/mpad/ui"
)

// Version is set at build time.
var Version = "dev"

func main() {
	log.Printf("mpad %s starting...", Version)

	cfgPath := flag.String("config", "config.yaml", "path to the daemon configuration file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(cfg.Refresh.DataDir, 0o755); err != nil {
		log.Fatalf("data dir: %v", err)
	}

	ledger, err := refcache.OpenLedger(filepath.Join(cfg.Refresh.DataDir, "mpad.db"))
	if err != nil {
		log.Fatalf("refcache ledger: %v", err)
	}
	defer ledger.Close()

	fetcher := refcache.NewFetcher()
	airportCatalog := refcache.NewCatalog[refcache.AirportEntry](filepath.Join(cfg.Refresh.DataDir, "airports.plist"), ledger, "airports")
	repeaterCatalog := refcache.NewCatalog[refcache.RepeaterEntry](filepath.Join(cfg.Refresh.DataDir, "repeaters.plist"), ledger, "repeaters")
	satelliteCatalog := refcache.NewCatalog[refcache.SatelliteEntry](filepath.Join(cfg.Refresh.DataDir, "satellites.plist"), ledger, "satellites")

	airportIdx := refcache.NewAirportIndexRef(refcache.BuildAirportIndex(nil))
	if err := airportCatalog.Load(); err == nil {
		airportIdx.Store(refcache.BuildAirportIndex(airportCatalog.Entries()))
	}

	satStore := satellite.NewStore(cfg.Satellite.TLEURL, cfg.Refresh.DataDir, cfg.Refresh.Satellites, "")

	statsTracker := stats.NewTracker()
	console := ui.NewConsole(cfg.UI.Mode)

	var tel *telemetry.Publisher
	if cfg.TelemetryEnabled() {
		tel = telemetry.New(cfg.Telemetry.Broker, cfg.Telemetry.Topic)
		if err := tel.Connect(); err != nil {
			log.Printf("telemetry: connect failed, continuing without it: %v", err)
			tel = nil
		} else {
			defer tel.Close()
		}
	}

	positions := aprsfi.New(cfg.AprsFi.APIKey)

	disp := &dispatch.Dispatcher{
		Weather:    weather.New(cfg.Weather.BaseURL, cfg.Weather.APIKey),
		Geocode:    geocode.New(cfg.Geocode.BaseURL, cfg.Geocode.APIKey),
		Airports:   airportIdx,
		AirportAPI: airport.New(cfg.Airport.BaseURL),
		Cwop:       cwop.New(cfg.Cwop.BaseURL),
		Satellite:  satellite.NewClient(satStore, cfg.Satellite.MinElevationDeg),
		Repeater:   repeater.New(cfg.Repeater.BaseURL),
		OSM:        osm.New(cfg.OSM.BaseURL),
		Dapnet:     dapnet.New(cfg.Dapnet.APIServer, cfg.Dapnet.TransmitterGroup, cfg.Dapnet.Callsign, cfg.Dapnet.Passcode),
		Mail:       mailClientOrNil(cfg),
		Positions:  positions,
		Stats:      statsTracker,

		OSMAllowlist:    toSet(cfg.OSMCategories),
		ProviderTimeout: cfg.ProviderTimeout,
		SatLookahead:    cfg.Satellite.Lookahead,
		FromAddress:     cfg.Mail.From,
	}

	dedupCache := dedup.New(cfg.Dedup.TTL, cfg.Dedup.Capacity)
	dedupCache.Start(time.Minute)
	defer dedupCache.Stop()

	pending := ack.NewPending()

	sess := session.New(session.Config{
		Host:                 cfg.APRSIS.Host,
		Port:                 cfg.APRSIS.Port,
		Callsign:             cfg.Station.Callsign,
		Passcode:             cfg.Station.Passcode,
		Agent:                cfg.Station.Alias,
		Version:              cfg.Station.Version,
		Filter:               cfg.APRSIS.Filter,
		MessageAckPacing:     cfg.Pacing.MessageAck,
		BeaconBulletinPacing: cfg.Pacing.BeaconBulletin,
		ReadOnly:             cfg.ReadOnly(),
	})

	ing := ingress.New(cfg.APRSIS.SecondaryFilter, dedupCache, pending, sess, cfg.Station.Alias)

	sched := scheduler.New(sess, 256)
	registerPeriodicJobs(sched, cfg, ledger, fetcher, airportCatalog, repeaterCatalog, satelliteCatalog, airportIdx, satStore, pending)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sess.Start(ctx); err != nil {
		log.Fatalf("session: %v", err)
	}
	defer sess.Stop()

	sched.Start(ctx)
	defer sched.Stop()

	go ing.Run(ctx, sess.Inbound())
	go console.Run(ctx, statsTracker, dedupCache, sched)
	go serveRequests(ctx, ing, disp, sched, pending, ledger, statsTracker, console, tel, cfg)

	fmt.Printf("mpad running as %s, connected to %s:%d\n", cfg.Station.Callsign, cfg.APRSIS.Host, cfg.APRSIS.Port)
	if cfg.ReadOnly() {
		fmt.Println("station callsign is the no-call sentinel: all outbound writes are diverted to the log")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	s := <-sig
	log.Printf("received signal %v, shutting down", s)
}

// serveRequests is the Dispatcher/Fragmenter stage of the pipeline: it
// consumes admitted requests strictly FIFO (spec.md §5), resolves the
// sender's last known position, dispatches, fragments the response,
// and hands the fragments to the Scheduler.
func serveRequests(ctx context.Context, ing *ingress.Ingress, disp *dispatch.Dispatcher, sched *scheduler.Scheduler, pending *ack.Pending, ledger *refcache.Ledger, statsTracker *stats.Tracker, console *ui.Console, tel *telemetry.Publisher, cfg *config.Config) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-ing.Requests():
			if !ok {
				return
			}
			handleRequest(ctx, req, disp, sched, pending, ledger, statsTracker, console, tel, cfg)
		}
	}
}

func handleRequest(ctx context.Context, req ingress.Request, disp *dispatch.Dispatcher, sched *scheduler.Scheduler, pending *ack.Pending, ledger *refcache.Ledger, statsTracker *stats.Tracker, console *ui.Console, tel *telemetry.Publisher, cfg *config.Config) {
	country := parser.CallsignCountry(req.Sender)
	cmd := parser.Parse(req.Body, req.Sender, country, time.Now().UTC(), cfg.ForceUnicode, req.MessageID)
	statsTracker.IncrementAction(string(cmd.Action))

	senderLat, senderLon, _, hasPos := disp.Positions.LastKnownPosition(req.Sender)

	reqCtx, cancel := context.WithTimeout(ctx, disp.ProviderTimeout+5*time.Second)
	defer cancel()

	resp, dispatchErr := disp.Dispatch(reqCtx, cmd, req.Sender, senderLat, senderLon, hasPos)
	outcome := "ok"
	if dispatchErr != nil {
		outcome = dispatchErr.Error()
		if kind, ok := dispatch.KindOf(dispatchErr); ok {
			statsTracker.IncrementError(kind.String())
		}
		log.Printf("dispatch: %s from %s: %v", cmd.Action, req.Sender, dispatchErr)
	}

	fragments := fragment.Render(resp, req.MessageID, cmd.ForceUnicode)
	lines := make([]string, len(fragments))
	for i, f := range fragments {
		lines[i] = f.WireLine(cfg.Station.Alias, req.Sender)
		if f.MessageID != "" {
			pending.Track(f.MessageID)
		}
	}
	sched.Enqueue(scheduler.ResponseJob{Fragments: lines, Category: session.CategoryMessage})

	ledger.RecordRequest(req.Sender, string(cmd.Action), outcome)
	console.AppendRequest(fmt.Sprintf("%-9s %-14s %s", req.Sender, cmd.Action, outcome))
	tel.PublishRequest(req.Sender, string(cmd.Action), outcome)
}

// registerPeriodicJobs wires the Scheduler's beacon, bulletin, reference-
// cache refresh, and pending-ack-sweep producers (spec.md §4.7).
func registerPeriodicJobs(sched *scheduler.Scheduler, cfg *config.Config, ledger *refcache.Ledger, fetcher *refcache.Fetcher, airportCatalog *refcache.Catalog[refcache.AirportEntry], repeaterCatalog *refcache.Catalog[refcache.RepeaterEntry], satelliteCatalog *refcache.Catalog[refcache.SatelliteEntry], airportIdx *refcache.AirportIndexRef, satStore *satellite.Store, pending *ack.Pending) {
	sched.AddJob(scheduler.Job{
		Name:           "beacon",
		Interval:       cfg.Beacon.Interval,
		RunImmediately: true,
		Fn: func(ctx context.Context) {
			lat, lon, err := cfg.Station.Coordinates()
			if err != nil {
				log.Printf("beacon: %v", err)
				return
			}
			payload := scheduler.BuildBeacon(scheduler.BeaconConfig{
				Alias:   cfg.Station.Alias,
				ToCall:  "APRS",
				Lat:     lat,
				Lon:     lon,
				Symbol:  cfg.Station.Symbol,
				AltFeet: cfg.Station.AltitudeFt,
			})
			sched.Enqueue(scheduler.ResponseJob{Fragments: []string{payload}, Category: session.CategoryBeacon})
		},
	})

	sched.AddJob(scheduler.Job{
		Name:           "bulletin",
		Interval:       cfg.Bulletin.Interval,
		RunImmediately: true,
		Fn: func(ctx context.Context) {
			lines := scheduler.BuildBulletins(cfg.Station.Alias, "APRS", cfg.Bulletin.Lines)
			sched.Enqueue(scheduler.ResponseJob{Fragments: lines, Category: session.CategoryBulletin})
		},
	})

	sched.AddJob(scheduler.Job{
		Name:           "ack-sweep",
		Interval:       time.Minute,
		RunImmediately: false,
		Fn: func(ctx context.Context) {
			pending.Sweep(cfg.Dedup.TTL)
		},
	})

	sched.AddJob(scheduler.Job{
		Name:           "refresh-airports",
		Interval:       cfg.Refresh.Airports,
		RunImmediately: true,
		Fn: func(ctx context.Context) {
			err := airportCatalog.Refresh(func() ([]refcache.AirportEntry, error) {
				return fetcher.FetchAirports(ctx, cfg.Refresh.AirportsURL)
			})
			if err != nil {
				log.Printf("refresh: airports: %v", err)
				return
			}
			airportIdx.Store(refcache.BuildAirportIndex(airportCatalog.Entries()))
			log.Printf("refresh: airports: %d entries", len(airportCatalog.Entries()))
		},
	})

	sched.AddJob(scheduler.Job{
		Name:           "refresh-repeaters",
		Interval:       cfg.Refresh.Repeaters,
		RunImmediately: true,
		Fn: func(ctx context.Context) {
			err := repeaterCatalog.Refresh(func() ([]refcache.RepeaterEntry, error) {
				return fetcher.FetchRepeaters(ctx, cfg.Refresh.RepeatersURL)
			})
			if err != nil {
				log.Printf("refresh: repeaters: %v", err)
				return
			}
			log.Printf("refresh: repeaters: %d entries", len(repeaterCatalog.Entries()))
		},
	})

	sched.AddJob(scheduler.Job{
		Name:           "refresh-satellites",
		Interval:       cfg.Refresh.Satellites,
		RunImmediately: true,
		Fn: func(ctx context.Context) {
			if _, err := satStore.Fetch(ctx); err != nil {
				log.Printf("refresh: satellite TLE store: %v", err)
			}
			err := satelliteCatalog.Refresh(func() ([]refcache.SatelliteEntry, error) {
				return fetcher.FetchSatellites(ctx, cfg.Satellite.TLEURL, satellite.KnownFrequencies(), nil)
			})
			if err != nil {
				log.Printf("refresh: satellite catalog: %v", err)
				return
			}
			log.Printf("refresh: satellites: %d entries", len(satelliteCatalog.Entries()))
		},
	})
}

func mailClientOrNil(cfg *config.Config) *mail.Client {
	if !cfg.MailEnabled() {
		return nil
	}
	return mail.New(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = struct{}{}
	}
	return set
}
