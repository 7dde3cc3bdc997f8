// Package repeater resolves the nearest repeater matching a band/mode
// filter, grounded on original_source/repeater_modules.py's
// repeatermap.de integration (raw dataset download, band/mode
// filtering, nearest-by-distance selection).
package repeater

import (
	"context"
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Repeater is one entry in the repeatermap.de-shaped data set.
type Repeater struct {
	Callsign  string  `json:"callsign"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Band      string  `json:"band"`
	Mode      string  `json:"mode"`
	Frequency float64 `json:"frequency"`
	DistanceM float64 `json:"-"`
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: http.DefaultClient}
}

type nearestResponse struct {
	Repeaters []Repeater `json:"repeaters"`
}

// Nearest returns the closest repeaters to lat/lon matching band and
// mode (either may be empty to mean "any"), nearest first, capped at
// limit results (spec.md §4.5's top_n passthrough; limit<=0 means 1).
func (c *Client) Nearest(ctx context.Context, lat, lon float64, band, mode string, limit int) ([]Repeater, error) {
	if limit <= 0 {
		limit = 1
	}
	url := fmt.Sprintf("%s/nearest?lat=%f&lon=%f&band=%s&mode=%s&limit=%d", c.BaseURL, lat, lon, band, mode, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("repeater: build request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("repeater: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("repeater: upstream status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("repeater: read body: %w", err)
	}
	var out nearestResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("repeater: decode: %w", err)
	}
	if len(out.Repeaters) == 0 {
		return nil, fmt.Errorf("repeater: no match for band=%q mode=%q", band, mode)
	}
	return out.Repeaters, nil
}
