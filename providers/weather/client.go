// Package weather is a minimal HTTP+JSON forecast collaborator
// (spec.md §6, out of scope for internal correctness). Decodes with
// json-iterator, mirroring the teacher's own fast-decode convention for a
// hot-path JSON payload.
package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Window is one of the four daily forecast windows the Dispatcher
// projects a date/daytime request onto (spec.md §4.5).
type Window struct {
	Hour int // 0, 6, 12, or 18 local time
	TempC float64
	Condition string
}

// Forecast is a decoded multi-window forecast for one coordinate/date.
type Forecast struct {
	Date    string
	Windows []Window
	SunriseUTC string
	SunsetUTC  string
	CloudPct   int
	UVIndex    float64
	PressureHPa float64
	HumidityPct int
	DewPointC   float64
	WindSpeedMS float64
	WindDegrees int
}

type apiResponse struct {
	Daily []struct {
		Dt   int64   `json:"dt"`
		Temp struct {
			Morn float64 `json:"morn"`
			Day  float64 `json:"day"`
			Eve  float64 `json:"eve"`
			Night float64 `json:"night"`
		} `json:"temp"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Clouds   int     `json:"clouds"`
		UVI      float64 `json:"uvi"`
		Pressure float64 `json:"pressure"`
		Humidity int     `json:"humidity"`
		DewPoint float64 `json:"dew_point"`
		WindSpeed float64 `json:"wind_speed"`
		WindDeg  int     `json:"wind_deg"`
		Sunrise  int64   `json:"sunrise"`
		Sunset   int64   `json:"sunset"`
	} `json:"daily"`
}

// Client is a thin HTTP client for a OneCall-shaped forecast API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// New creates a weather Client. baseURL/apiKey come from config.Weather.
func New(baseURL, apiKey string) *Client {
	return &Client{BaseURL: baseURL, APIKey: apiKey, HTTP: http.DefaultClient}
}

// Forecast fetches a multi-day forecast for a coordinate, projected
// into the four daily windows the Dispatcher understands (spec.md
// §4.5: night=00:00, morning=06:00, daytime=12:00, evening=18:00).
// units ("metric"/"imperial") and lang (an ISO-639-1 code) are passed
// straight through to the upstream OneCall API, which natively
// localizes both the temperature unit and the condition text.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, units, lang string) ([]Forecast, error) {
	if units == "" {
		units = "metric"
	}
	if lang == "" {
		lang = "en"
	}
	url := fmt.Sprintf("%s/data/2.5/onecall?lat=%f&lon=%f&appid=%s&units=%s&lang=%s", c.BaseURL, lat, lon, c.APIKey, units, lang)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("weather: build request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather: upstream status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("weather: read body: %w", err)
	}
	var out apiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("weather: decode: %w", err)
	}

	forecasts := make([]Forecast, 0, len(out.Daily))
	for _, d := range out.Daily {
		date := time.Unix(d.Dt, 0).UTC().Format("02-Jan-06")
		condition := ""
		if len(d.Weather) > 0 {
			condition = d.Weather[0].Description
		}
		forecasts = append(forecasts, Forecast{
			Date: date,
			Windows: []Window{
				{Hour: 0, TempC: d.Temp.Night, Condition: condition},
				{Hour: 6, TempC: d.Temp.Morn, Condition: condition},
				{Hour: 12, TempC: d.Temp.Day, Condition: condition},
				{Hour: 18, TempC: d.Temp.Eve, Condition: condition},
			},
			SunriseUTC:  time.Unix(d.Sunrise, 0).UTC().Format("15:04"),
			SunsetUTC:   time.Unix(d.Sunset, 0).UTC().Format("15:04"),
			CloudPct:    d.Clouds,
			UVIndex:     d.UVI,
			PressureHPa: d.Pressure,
			HumidityPct: d.Humidity,
			DewPointC:   d.DewPoint,
			WindSpeedMS: d.WindSpeed,
			WindDegrees: d.WindDeg,
		})
	}
	return forecasts, nil
}

// TempAt returns the forecast temperature for the given window hour
// (0, 6, 12, or 18); it returns 0 if the hour is not one of the four
// windows.
func (f Forecast) TempAt(hour int) float64 {
	for _, w := range f.Windows {
		if w.Hour == hour {
			return w.TempC
		}
	}
	return 0
}
