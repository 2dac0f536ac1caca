package collector

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func cannedResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestFetchWeekly_ParsesDailyForecast(t *testing.T) {
	body := `{
		"daily": {
			"time": ["2024-03-01", "2024-03-02", "2024-03-03"],
			"temperature_2m_max": [41.6, 38.2, 55.0],
			"temperature_2m_min": [30.4, 28.9, 40.1],
			"weathercode": [0, 71, 95],
			"uv_index_max": [3.5, null, 5.0],
			"snowfall_sum": [0, 1.2, null]
		}
	}`
	f := NewOpenMeteoFetcher(41.8781, -87.6298, "America/Chicago")
	f.Client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Host != "api.open-meteo.com" {
			t.Errorf("unexpected host %q", req.URL.Host)
		}
		return cannedResponse(http.StatusOK, body), nil
	})}

	days, err := f.FetchWeekly(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	first := days[0]
	if first.Date != "2024-03-01" || first.Max != 42 || first.Min != 30 {
		t.Errorf("expected rounded temps for day 0, got %+v", first)
	}
	if first.Icon != "sun" || first.Desc != "Clear" {
		t.Errorf("expected clear-sky mapping, got icon=%q desc=%q", first.Icon, first.Desc)
	}
	if days[1].Icon != "snow" || days[1].SnowSum != 1.2 {
		t.Errorf("expected snow day, got %+v", days[1])
	}
	if days[1].UVIndexMax != nil {
		t.Errorf("expected nil uv index carried through, got %v", *days[1].UVIndexMax)
	}
	if days[2].Icon != "storm" || days[2].SnowSum != 0 {
		t.Errorf("expected storm day with zero snow, got %+v", days[2])
	}
}

func TestFetchWeekly_CapsAtSevenDays(t *testing.T) {
	body := `{"daily": {
		"time": ["2024-03-01","2024-03-02","2024-03-03","2024-03-04","2024-03-05",
			"2024-03-06","2024-03-07","2024-03-08","2024-03-09","2024-03-10"],
		"temperature_2m_max": [50,50,50,50,50,50,50,50,50,50],
		"temperature_2m_min": [40,40,40,40,40,40,40,40,40,40],
		"weathercode": [0,0,0,0,0,0,0,0,0,0],
		"uv_index_max": [null,null,null,null,null,null,null,null,null,null],
		"snowfall_sum": [null,null,null,null,null,null,null,null,null,null]}}`

	f := NewOpenMeteoFetcher(0, 0, "UTC")
	f.Client = &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return cannedResponse(http.StatusOK, body), nil
	})}

	days, err := f.FetchWeekly(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 7 {
		t.Fatalf("expected forecast capped at 7 days, got %d", len(days))
	}
}

func TestFetchWeekly_ToleratesOmittedOptionalArrays(t *testing.T) {
	// uv_index_max and snowfall_sum missing entirely
	body := `{"daily": {
		"time": ["2024-03-01", "2024-03-02"],
		"temperature_2m_max": [41.6, 38.2],
		"temperature_2m_min": [30.4, 28.9],
		"weathercode": [0, 3]
	}}`
	f := NewOpenMeteoFetcher(0, 0, "UTC")
	f.Client = &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return cannedResponse(http.StatusOK, body), nil
	})}

	days, err := f.FetchWeekly(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].UVIndexMax != nil || days[0].SnowSum != 0 {
		t.Errorf("expected zero-value optional fields, got %+v", days[0])
	}
}

func TestFetchWeekly_TruncatedRequiredArray(t *testing.T) {
	// weathercode shorter than time: only fully covered days are emitted
	body := `{"daily": {
		"time": ["2024-03-01", "2024-03-02", "2024-03-03"],
		"temperature_2m_max": [41.6, 38.2, 55.0],
		"temperature_2m_min": [30.4, 28.9, 40.1],
		"weathercode": [0, 3],
		"uv_index_max": [3.5],
		"snowfall_sum": [0.5]
	}}`
	f := NewOpenMeteoFetcher(0, 0, "UTC")
	f.Client = &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return cannedResponse(http.StatusOK, body), nil
	})}

	days, err := f.FetchWeekly(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 2 {
		t.Fatalf("expected truncation to 2 covered days, got %d", len(days))
	}
	if days[1].UVIndexMax != nil {
		t.Errorf("expected nil uv beyond the short optional array, got %v", *days[1].UVIndexMax)
	}
	if days[0].SnowSum != 0.5 {
		t.Errorf("expected snow carried for covered index, got %v", days[0].SnowSum)
	}
}

func TestFetchWeekly_ErrorStatus(t *testing.T) {
	f := NewOpenMeteoFetcher(0, 0, "UTC")
	f.Client = &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return cannedResponse(http.StatusBadGateway, "upstream down"), nil
	})}

	if _, err := f.FetchWeekly(context.Background()); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestFetchWeekly_EmptyDaily(t *testing.T) {
	f := NewOpenMeteoFetcher(0, 0, "UTC")
	f.Client = &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return cannedResponse(http.StatusOK, `{"daily": {"time": []}}`), nil
	})}

	if _, err := f.FetchWeekly(context.Background()); err == nil {
		t.Fatal("expected error when no daily data returned")
	}
}

func TestIconForCode(t *testing.T) {
	cases := map[int]string{
		0:  "sun",
		1:  "mostly_sun",
		3:  "cloud",
		45: "fog",
		55: "drizzle",
		61: "drizzle",
		75: "snow",
		81: "shower",
		99: "storm",
		42: "unknown",
	}
	for code, want := range cases {
		if got := iconForCode(code); got != want {
			t.Errorf("code %d: expected %q, got %q", code, want, got)
		}
	}
}
