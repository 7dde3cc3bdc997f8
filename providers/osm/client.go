// Package osm resolves a nearby point of interest by free-text category
// (e.g. "hospital", "pharmacy") against an Overpass-shaped API, in the
// thin-HTTP-client style shared with providers/airport and
// providers/cwop.
package osm

import (
	"context"
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Place is the nearest point of interest matching a category search.
type Place struct {
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	DistanceM float64 `json:"distance_m"`
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: http.DefaultClient}
}

type nearbyResponse struct {
	Places []Place `json:"places"`
}

// Nearby returns the nearest places matching category within lat/lon,
// nearest first, capped at limit results (spec.md §4.5's top_n
// passthrough; limit<=0 means 1).
func (c *Client) Nearby(ctx context.Context, lat, lon float64, category string, limit int) ([]Place, error) {
	if limit <= 0 {
		limit = 1
	}
	url := fmt.Sprintf("%s/nearby?lat=%f&lon=%f&category=%s&limit=%d", c.BaseURL, lat, lon, category, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("osm: build request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("osm: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("osm: upstream status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("osm: read body: %w", err)
	}
	var out nearbyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("osm: decode: %w", err)
	}
	if len(out.Places) == 0 {
		return nil, fmt.Errorf("osm: no %q found near %f,%f", category, lat, lon)
	}
	return out.Places, nil
}
