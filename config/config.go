// Package config loads the daemon's YAML configuration file into a typed
// Config, following the pointer-bool-with-default pattern the teacher uses
// for optional settings.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// NoCallSentinel disables a credentialed subsystem when used as its
// callsign/login value.
const NoCallSentinel = "NOCALL"

// Station describes this daemon's own APRS identity and position.
type Station struct {
	Callsign  string `yaml:"callsign"`
	Passcode  string `yaml:"passcode"`
	Latitude  string `yaml:"latitude"`  // fixed-width ddmm.mmN
	Longitude string `yaml:"longitude"` // fixed-width dddmm.mmE
	Symbol    string `yaml:"symbol"`
	AltitudeFt int    `yaml:"altitude_ft"`
	Alias     string `yaml:"alias"`
	Version   string `yaml:"version"`
}

// Coordinates parses the fixed-width ddmm.mmN/dddmm.mmE station position
// into decimal degrees, as consumed by the beacon producer and by
// geocoding-free target resolution.
func (s Station) Coordinates() (lat, lon float64, err error) {
	lat, err = parseFixedWidth(s.Latitude, 2)
	if err != nil {
		return 0, 0, fmt.Errorf("config: station.latitude: %w", err)
	}
	lon, err = parseFixedWidth(s.Longitude, 3)
	if err != nil {
		return 0, 0, fmt.Errorf("config: station.longitude: %w", err)
	}
	return lat, lon, nil
}

// parseFixedWidth decodes "ddmm.mmN"/"dddmm.mmE"-shaped coordinates:
// degWidth digits of degrees, then mm.mm minutes, then a single
// hemisphere letter.
func parseFixedWidth(s string, degWidth int) (float64, error) {
	if len(s) < degWidth+1 {
		return 0, fmt.Errorf("too short: %q", s)
	}
	hemi := s[len(s)-1]
	degDigits := s[:degWidth]
	minDigits := s[degWidth : len(s)-1]

	var deg, min float64
	if _, err := fmt.Sscanf(degDigits, "%f", &deg); err != nil {
		return 0, fmt.Errorf("degrees %q: %w", degDigits, err)
	}
	if _, err := fmt.Sscanf(minDigits, "%f", &min); err != nil {
		return 0, fmt.Errorf("minutes %q: %w", minDigits, err)
	}

	v := deg + min/60
	switch hemi {
	case 'S', 's', 'W', 'w':
		v = -v
	case 'N', 'n', 'E', 'e':
	default:
		return 0, fmt.Errorf("unknown hemisphere %q", string(hemi))
	}
	return v, nil
}

// APRSIS describes the upstream server connection.
type APRSIS struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	Filter         string   `yaml:"filter"`
	SecondaryFilter []string `yaml:"secondary_filter"`
}

// Dedup configures the decaying dedup cache.
type Dedup struct {
	TTL      time.Duration `yaml:"ttl"`
	Capacity int           `yaml:"capacity"`
}

// Pacing configures the minimum inter-write delays per category group.
type Pacing struct {
	MessageAck       time.Duration `yaml:"message_ack"`
	BeaconBulletin   time.Duration `yaml:"beacon_bulletin"`
}

// Beacon configures the periodic position beacon.
type Beacon struct {
	Interval time.Duration `yaml:"interval"`
}

// Bulletin configures the periodic bulletin cycle.
type Bulletin struct {
	Interval time.Duration `yaml:"interval"`
	Lines    [3]string     `yaml:"-"`
	BLN0     string        `yaml:"bln0"`
	BLN1     string        `yaml:"bln1"`
	BLN2     string        `yaml:"bln2"`
}

// Refresh configures the reference-cache refresh intervals and the
// catalog download sources consulted by refcache.Fetcher.
type Refresh struct {
	Satellites   time.Duration `yaml:"satellites"`
	Repeaters    time.Duration `yaml:"repeaters"`
	Airports     time.Duration `yaml:"airports"`
	DataDir      string        `yaml:"data_dir"`
	AirportsURL  string        `yaml:"airports_url"`
	RepeatersURL string        `yaml:"repeaters_url"`
}

// Weather holds the forecast provider's base URL and API key.
type Weather struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Geocode holds the forward/reverse geocoding provider's base URL and API
// key.
type Geocode struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// AprsFi holds the aprs.fi station-position lookup API key; empty disables
// last-known-position resolution for other stations.
type AprsFi struct {
	APIKey string `yaml:"api_key"`
}

// Airport configures the METAR/TAF observation provider.
type Airport struct {
	BaseURL string `yaml:"base_url"`
}

// Cwop configures the citizen-weather station provider.
type Cwop struct {
	BaseURL string `yaml:"base_url"`
}

// Repeater configures the repeater-directory provider.
type Repeater struct {
	BaseURL string `yaml:"base_url"`
}

// OSM configures the points-of-interest lookup provider.
type OSM struct {
	BaseURL string `yaml:"base_url"`
}

// Satellite configures the orbital-pass provider.
type Satellite struct {
	TLEURL          string        `yaml:"tle_url"`
	MinElevationDeg float64       `yaml:"min_elevation_deg"`
	Lookahead       time.Duration `yaml:"lookahead"`
}

// Dapnet holds pager-gateway credentials; NoCallSentinel disables it.
type Dapnet struct {
	APIServer        string `yaml:"api_server"`
	TransmitterGroup string `yaml:"transmitter_group"`
	Callsign         string `yaml:"callsign"`
	Passcode         string `yaml:"passcode"`
}

// Mail holds outbound SMTP credentials; empty Host disables it.
type Mail struct {
	SMTPHost       string        `yaml:"smtp_host"`
	SMTPPort       int           `yaml:"smtp_port"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	From           string        `yaml:"from"`
	SentRetention  time.Duration `yaml:"sent_retention"`
}

// Telemetry configures the optional MQTT observability sink.
type Telemetry struct {
	Broker string `yaml:"broker"`
	Topic  string `yaml:"topic"`
}

// UI configures the operator console.
type UI struct {
	Mode string `yaml:"mode"` // "ansi" or "plain"
}

// Config is the top-level daemon configuration.
type Config struct {
	Station       Station   `yaml:"station"`
	APRSIS        APRSIS    `yaml:"aprsis"`
	Dedup         Dedup     `yaml:"dedup"`
	Pacing        Pacing    `yaml:"pacing"`
	Beacon        Beacon    `yaml:"beacon"`
	Bulletin      Bulletin  `yaml:"bulletin"`
	Refresh       Refresh   `yaml:"refresh"`
	Weather       Weather   `yaml:"weather"`
	Geocode       Geocode   `yaml:"geocode"`
	AprsFi        AprsFi    `yaml:"aprsfi"`
	Airport       Airport   `yaml:"airport"`
	Cwop          Cwop      `yaml:"cwop"`
	Repeater      Repeater  `yaml:"repeater"`
	OSM           OSM       `yaml:"osm"`
	Satellite     Satellite `yaml:"satellite"`
	Dapnet        Dapnet    `yaml:"dapnet"`
	Mail          Mail      `yaml:"mail"`
	Telemetry     Telemetry `yaml:"telemetry"`
	UI            UI        `yaml:"ui"`
	OSMCategories []string  `yaml:"osm_categories"`
	ProviderTimeout time.Duration `yaml:"provider_timeout"`
	ForceUnicode  bool      `yaml:"force_unicode"`
	Language      string    `yaml:"language"`
}

// Load reads and validates a YAML configuration file at path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Bulletin.Lines = [3]string{cfg.Bulletin.BLN0, cfg.Bulletin.BLN1, cfg.Bulletin.BLN2}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config populated with the spec's documented defaults,
// mirroring the teacher's pointer-bool-with-default loading convention:
// a config is built with defaults first, then overwritten by whatever the
// YAML document actually sets.
func Default() *Config {
	return &Config{
		Station: Station{
			Symbol:  "/",
			Alias:   "APRSBOT",
			Version: "1.0.0",
		},
		APRSIS: APRSIS{
			Host: "rotate.aprs2.net",
			Port: 14580,
		},
		Dedup: Dedup{
			TTL:      60 * time.Minute,
			Capacity: 2160,
		},
		Pacing: Pacing{
			MessageAck:     6 * time.Second,
			BeaconBulletin: 6 * time.Second,
		},
		Beacon: Beacon{Interval: 30 * time.Minute},
		Bulletin: Bulletin{Interval: 4 * time.Hour},
		Refresh: Refresh{
			Satellites:   2 * 24 * time.Hour,
			Repeaters:    7 * 24 * time.Hour,
			Airports:     30 * 24 * time.Hour,
			DataDir:      "./data",
			AirportsURL:  "https://ourairports.com/data/airports.csv",
			RepeatersURL: "https://www.repeatermap.de/api/export.json",
		},
		Weather:  Weather{BaseURL: "https://api.openweathermap.org"},
		Geocode:  Geocode{BaseURL: "https://api.opencagedata.com/geocode/v1"},
		Airport:  Airport{BaseURL: "https://avwx.rest/api"},
		Cwop:     Cwop{BaseURL: "https://www.findu.com/cgi-bin/wxnear.cgi"},
		Repeater: Repeater{BaseURL: "https://www.repeatermap.de/api"},
		OSM:      OSM{BaseURL: "https://nominatim.openstreetmap.org"},
		Satellite: Satellite{
			TLEURL:          "https://celestrak.org/NORAD/elements/gp.php?GROUP=amateur&FORMAT=tle",
			MinElevationDeg: 10.0,
			Lookahead:       48 * time.Hour,
		},
		Dapnet:          Dapnet{APIServer: "https://www.hampager.de:8080", TransmitterGroup: "dl-all", Callsign: NoCallSentinel},
		UI:              UI{Mode: "ansi"},
		ProviderTimeout: 10 * time.Second,
		Language:        "en",
	}
}

// validate enforces the spec's mandatory-field rules, most notably Open
// Question 3: mail retention must be positive whenever mail is enabled.
func (c *Config) validate() error {
	if c.Station.Callsign == "" {
		return fmt.Errorf("station.callsign is required")
	}
	if c.Dedup.TTL <= 0 || c.Dedup.Capacity <= 0 {
		return fmt.Errorf("dedup.ttl and dedup.capacity must be positive")
	}
	if c.Mail.SMTPHost != "" && c.Mail.SentRetention <= 0 {
		return fmt.Errorf("mail.sent_retention must be a positive duration when mail is enabled")
	}
	return nil
}

// ReadOnly reports whether the configured station callsign is the no-call
// sentinel, diverting all outbound session writes to the log.
func (c *Config) ReadOnly() bool {
	return c.Station.Callsign == NoCallSentinel
}

// DapnetEnabled reports whether the pager gateway collaborator is usable.
func (c *Config) DapnetEnabled() bool {
	return c.Dapnet.Callsign != "" && c.Dapnet.Callsign != NoCallSentinel
}

// MailEnabled reports whether the email collaborator is usable.
func (c *Config) MailEnabled() bool {
	return c.Mail.SMTPHost != ""
}

// TelemetryEnabled reports whether the optional MQTT sink is configured.
func (c *Config) TelemetryEnabled() bool {
	return c.Telemetry.Broker != ""
}
