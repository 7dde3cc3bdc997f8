// Package aprsfi resolves a callsign's last known position from the
// aprs.fi lookup API, grounded on
// original_source/src/aprsdotfi_modules.py::get_position_on_aprsfi.
package aprsfi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultBaseURL = "https://api.aprs.fi/api/get"

// Client queries the aprs.fi "loc" lookup endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New returns a Client. An empty apiKey disables lookups: Position always
// reports a miss.
func New(apiKey string) *Client {
	return &Client{BaseURL: defaultBaseURL, APIKey: apiKey, HTTP: http.DefaultClient}
}

type response struct {
	Result  string `json:"result"`
	Found   int    `json:"found"`
	Entries []struct {
		Lat      string `json:"lat"`
		Lng      string `json:"lng"`
		Altitude string `json:"altitude"`
		LastTime string `json:"lasttime"`
	} `json:"entries"`
}

// Position returns the most recent reported location for callsign (as-is,
// with or without SSID) and the instant aprs.fi last heard it. ok is false
// when aprs.fi has no entry, the lookup is disabled, or the request fails.
func (c *Client) Position(ctx context.Context, callsign string) (lat, lon float64, lastHeard time.Time, ok bool) {
	if c.APIKey == "" {
		return 0, 0, time.Time{}, false
	}

	url := fmt.Sprintf("%s?name=%s&what=loc&apikey=%s&format=json",
		c.BaseURL, strings.ToUpper(callsign), c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, time.Time{}, false
	}
	req.Header.Set("User-Agent", "mpad/1.0 (+https://github.com/joergschultzelutter/mpad)")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, 0, time.Time{}, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, 0, time.Time{}, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, time.Time{}, false
	}
	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, 0, time.Time{}, false
	}
	if out.Result != "ok" || out.Found == 0 || len(out.Entries) == 0 {
		return 0, 0, time.Time{}, false
	}

	e := out.Entries[0]
	var parsedLat, parsedLon float64
	if _, err := fmt.Sscanf(e.Lat, "%f", &parsedLat); err != nil {
		return 0, 0, time.Time{}, false
	}
	if _, err := fmt.Sscanf(e.Lng, "%f", &parsedLon); err != nil {
		return 0, 0, time.Time{}, false
	}

	when := time.Now().UTC()
	var unix int64
	if _, err := fmt.Sscanf(e.LastTime, "%d", &unix); err == nil && unix > 0 {
		when = time.Unix(unix, 0).UTC()
	}

	return parsedLat, parsedLon, when, true
}

// LastKnownPosition adapts Position to the synchronous, context-free shape
// dispatch.PositionStore expects, bounding the call with its own short
// timeout so a slow upstream never stalls the dispatch path.
func (c *Client) LastKnownPosition(callsign string) (lat, lon float64, lastHeard time.Time, ok bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.Position(ctx, callsign)
}
