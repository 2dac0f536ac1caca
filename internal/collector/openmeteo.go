package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"HomeDash/internal/model"
)

// OpenMeteoFetcher implements WeatherFetcher using the Open-Meteo forecast API.
type OpenMeteoFetcher struct {
	Client    *http.Client
	Latitude  float64
	Longitude float64
	Timezone  string
}

// NewOpenMeteoFetcher creates a weather fetcher for a fixed location.
func NewOpenMeteoFetcher(lat, lon float64, timezone string) *OpenMeteoFetcher {
	return &OpenMeteoFetcher{
		Client:    &http.Client{Timeout: 15 * time.Second},
		Latitude:  lat,
		Longitude: lon,
		Timezone:  timezone,
	}
}

func (f *OpenMeteoFetcher) Name() string { return "open-meteo" }

// openMeteoResponse is the response structure from the Open-Meteo daily API.
type openMeteoResponse struct {
	Daily struct {
		Time           []string   `json:"time"`
		TemperatureMax []float64  `json:"temperature_2m_max"`
		TemperatureMin []float64  `json:"temperature_2m_min"`
		WeatherCode    []int      `json:"weathercode"`
		UVIndexMax     []*float64 `json:"uv_index_max"`
		SnowfallSum    []*float64 `json:"snowfall_sum"`
	} `json:"daily"`
}

// FetchWeekly returns up to 7 daily forecasts starting today.
func (f *OpenMeteoFetcher) FetchWeekly(ctx context.Context) ([]model.DayForecast, error) {
	u := fmt.Sprintf("https://api.open-meteo.com/v1/forecast?latitude=%.4f&longitude=%.4f"+
		"&daily=temperature_2m_max,temperature_2m_min,weathercode,uv_index_max,snowfall_sum"+
		"&temperature_unit=fahrenheit&precipitation_unit=inch&timezone=%s",
		f.Latitude, f.Longitude, url.QueryEscape(f.Timezone))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open-meteo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("open-meteo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-meteo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var om openMeteoResponse
	if err := json.Unmarshal(body, &om); err != nil {
		return nil, fmt.Errorf("open-meteo decode: %w", err)
	}
	daily := om.Daily
	// The daily arrays are parallel but the API may truncate or omit some;
	// only emit days covered by every required array.
	n := len(daily.Time)
	for _, l := range []int{len(daily.TemperatureMax), len(daily.TemperatureMin), len(daily.WeatherCode)} {
		if l < n {
			n = l
		}
	}
	if n == 0 {
		return nil, fmt.Errorf("open-meteo: no daily data returned")
	}
	if n > 7 {
		n = 7
	}
	days := make([]model.DayForecast, 0, n)
	for i := 0; i < n; i++ {
		code := daily.WeatherCode[i]
		var uv *float64
		if i < len(daily.UVIndexMax) {
			uv = daily.UVIndexMax[i]
		}
		snow := 0.0
		if i < len(daily.SnowfallSum) && daily.SnowfallSum[i] != nil {
			snow = *daily.SnowfallSum[i]
		}
		days = append(days, model.DayForecast{
			Date:       daily.Time[i],
			Max:        int(math.Round(daily.TemperatureMax[i])),
			Min:        int(math.Round(daily.TemperatureMin[i])),
			Code:       code,
			Icon:       iconForCode(code),
			Desc:       descForCode(code),
			UVIndexMax: uv,
			SnowSum:    snow,
		})
	}
	return days, nil
}

func iconForCode(code int) string {
	switch {
	case code == 0:
		return "sun"
	case code == 1:
		return "mostly_sun"
	case code == 2 || code == 3:
		return "cloud"
	case code == 45 || code == 48:
		return "fog"
	case code >= 51 && code < 68:
		return "drizzle"
	case code >= 71 && code < 77:
		return "snow"
	case code >= 80 && code < 83:
		return "shower"
	case code == 95 || code == 96 || code == 99:
		return "storm"
	}
	return "unknown"
}

func descForCode(code int) string {
	descs := map[int]string{
		0: "Clear", 1: "Mostly Clear", 2: "Partly Cloudy", 3: "Cloudy",
		45: "Fog", 48: "Fog",
		51: "Drizzle", 53: "Drizzle", 55: "Drizzle",
		56: "Freezing Drizzle", 57: "Freezing Drizzle",
		61: "Rain", 63: "Rain", 65: "Rain",
		66: "Freezing Rain", 67: "Freezing Rain",
		71: "Snow", 73: "Snow", 75: "Snow", 77: "Snow Grains",
		80: "Rain Showers", 81: "Rain Showers", 82: "Rain Showers",
		85: "Snow Showers", 86: "Snow Showers",
		95: "Thunderstorm", 96: "Thunderstorm", 99: "Thunderstorm",
	}
	if d, ok := descs[code]; ok {
		return d
	}
	return "N/A"
}
