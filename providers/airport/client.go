// Package airport resolves nearest-ICAO lookups and fetches raw
// METAR/TAF text (opaque to the core per spec.md §6).
package airport

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: http.DefaultClient}
}

func (c *Client) fetchText(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return "", fmt.Errorf("airport: build request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("airport: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("airport: upstream status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("airport: read body: %w", err)
	}
	return string(body), nil
}

// METAR fetches the raw current observation text for an ICAO code.
func (c *Client) METAR(ctx context.Context, icao string) (string, error) {
	return c.fetchText(ctx, "/metar/"+icao)
}

// TAF fetches the raw forecast text for an ICAO code.
func (c *Client) TAF(ctx context.Context, icao string) (string, error) {
	return c.fetchText(ctx, "/taf/"+icao)
}
