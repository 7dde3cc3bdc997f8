// Package geocode is a minimal forward/reverse geocoding HTTP collaborator.
package geocode

import (
	"context"
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Position is a resolved coordinate plus a human-readable address.
type Position struct {
	Lat, Lon float64
	Address  string
}

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{BaseURL: baseURL, APIKey: apiKey, HTTP: http.DefaultClient}
}

type geoResult struct {
	Results []struct {
		Lat, Lon float64
		Formatted string `json:"formatted"`
	} `json:"results"`
}

// Forward resolves a free-text query (city;country, zip, etc.) to a
// coordinate.
func (c *Client) Forward(ctx context.Context, query string) (Position, error) {
	url := fmt.Sprintf("%s/geocode?q=%s&key=%s", c.BaseURL, query, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Position{}, fmt.Errorf("geocode: build request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Position{}, fmt.Errorf("geocode: request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Position{}, fmt.Errorf("geocode: read body: %w", err)
	}
	var out geoResult
	if err := json.Unmarshal(body, &out); err != nil {
		return Position{}, fmt.Errorf("geocode: decode: %w", err)
	}
	if len(out.Results) == 0 {
		return Position{}, fmt.Errorf("geocode: no match for %q", query)
	}
	r := out.Results[0]
	return Position{Lat: r.Lat, Lon: r.Lon, Address: r.Formatted}, nil
}

// Reverse resolves a coordinate to a human-readable address.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	url := fmt.Sprintf("%s/reverse?lat=%f&lon=%f&key=%s", c.BaseURL, lat, lon, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("geocode: build request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocode: request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("geocode: read body: %w", err)
	}
	var out geoResult
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("geocode: decode: %w", err)
	}
	if len(out.Results) == 0 {
		return "", fmt.Errorf("geocode: no address for %f,%f", lat, lon)
	}
	return out.Results[0].Formatted, nil
}
