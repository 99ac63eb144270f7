// Weather tool backed by the OpenWeather 5-day forecast API.
//
// With the default "demo" key no network call is made; a fabricated
// forecast comes back instead, which keeps the planner usable offline
// and in tests.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	openWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

	// DemoAPIKey selects the mock forecast path.
	DemoAPIKey = "demo"
)

// DayForecast is a simplified one-day forecast.
type DayForecast struct {
	Day       int     `json:"day"`
	Temp      float64 `json:"temp"`
	Condition string  `json:"condition"`
	Humidity  int     `json:"humidity,omitempty"`
}

// Forecast is the forecast for a location over several days.
type Forecast struct {
	Location string        `json:"location"`
	Days     []DayForecast `json:"forecast"`
}

// Weather fetches weather forecasts for plan enrichment.
type Weather struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewWeather creates a weather tool. An empty key falls back to demo mode.
func NewWeather(apiKey string) *Weather {
	return NewWeatherWithURL(apiKey, openWeatherBaseURL)
}

// NewWeatherWithURL creates a weather tool against a custom endpoint.
// Used by tests to point at a local server.
func NewWeatherWithURL(apiKey, baseURL string) *Weather {
	if apiKey == "" {
		apiKey = DemoAPIKey
	}
	return &Weather{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetForecast returns a daily forecast for the location.
// Demo mode fabricates data; real calls reduce the 3-hourly response to
// one entry per day.
func (w *Weather) GetForecast(ctx context.Context, location string, days int) (*Forecast, error) {
	if days <= 0 {
		days = 3
	}

	if w.apiKey == DemoAPIKey {
		forecast := &Forecast{Location: location}
		for i := 0; i < days; i++ {
			forecast.Days = append(forecast.Days, DayForecast{
				Day:       i + 1,
				Temp:      float64(25 + i),
				Condition: "Clear",
			})
		}
		return forecast, nil
	}

	params := url.Values{}
	params.Set("q", location)
	params.Set("appid", w.apiKey)
	params.Set("units", "metric")
	params.Set("cnt", strconv.Itoa(days*8)) // 8 forecasts per day (3-hour intervals)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		w.baseURL+"/forecast?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather data unavailable (status %d)", resp.StatusCode)
	}

	var raw openWeatherForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode forecast: %w", err)
	}

	return reduceForecast(raw, days)
}

// openWeatherForecastResponse mirrors the fields we read from the API.
type openWeatherForecastResponse struct {
	List []struct {
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
}

// reduceForecast picks one 3-hour slot per day (every 8th, clamped to the
// last available) and simplifies it.
func reduceForecast(raw openWeatherForecastResponse, days int) (*Forecast, error) {
	if len(raw.List) == 0 {
		return nil, fmt.Errorf("empty forecast response")
	}

	forecast := &Forecast{Location: raw.City.Name}
	for i := 0; i < days; i++ {
		idx := i * 8
		if idx >= len(raw.List) {
			idx = len(raw.List) - 1
		}
		slot := raw.List[idx]

		condition := ""
		if len(slot.Weather) > 0 {
			condition = slot.Weather[0].Description
		}

		forecast.Days = append(forecast.Days, DayForecast{
			Day:       i + 1,
			Temp:      slot.Main.Temp,
			Condition: condition,
			Humidity:  slot.Main.Humidity,
		})
	}
	return forecast, nil
}

// Metadata returns tool metadata.
func (w *Weather) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "weather_forecast",
		Description: "Get a daily weather forecast for a location",
		Parameters: []ToolParameter{
			{Name: "location", ParamType: "string", Description: "City or place name", Required: true},
			{Name: "days", ParamType: "integer", Description: "Number of days (default 3)", Required: false},
		},
	}
}

type weatherArgs struct {
	Location string `json:"location"`
	Days     int    `json:"days"`
}

// Validate checks the arguments without fetching a forecast.
func (w *Weather) Validate(args json.RawMessage) error {
	var parsed weatherArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if parsed.Location == "" {
		return fmt.Errorf("location is required")
	}
	return nil
}

// Execute runs the tool with JSON arguments.
func (w *Weather) Execute(ctx context.Context, args json.RawMessage) (ToolResult, error) {
	var parsed weatherArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return FailureResult(fmt.Errorf("invalid arguments: %w", err)), nil
	}
	if parsed.Location == "" {
		return FailureResult(fmt.Errorf("location is required")), nil
	}

	forecast, err := w.GetForecast(ctx, parsed.Location, parsed.Days)
	if err != nil {
		return FailureResult(err), nil
	}
	out, err := json.Marshal(forecast)
	if err != nil {
		return FailureResult(err), nil
	}
	return SuccessResult(string(out)), nil
}

// Verify Weather implements Tool
var _ Tool = (*Weather)(nil)
