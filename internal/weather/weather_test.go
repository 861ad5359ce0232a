package weather

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"krishisense/internal/config"
	"krishisense/internal/model"
)

const currentBody = `{
	"main": {"temp": 29.5, "humidity": 78},
	"rain": {"1h": 2.5},
	"weather": [{"description": "light rain"}]
}`

// 2024-06-15 00:00, 03:00, 21:00 UTC and 2024-06-16 00:00 UTC
const forecastBody = `{
	"list": [
		{"dt": 1718409600, "main": {"temp": 28}, "rain": {"3h": 10}},
		{"dt": 1718420400, "main": {"temp": 30}},
		{"dt": 1718485200, "main": {"temp": 32}, "rain": {"3h": 35}},
		{"dt": 1718496000, "main": {"temp": 26}, "rain": {"3h": 1.5}}
	]
}`

func newOWMServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		q := r.URL.Query()
		if q.Get("appid") != "test-key" || q.Get("units") != "metric" || q.Get("lat") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"cod": 401, "message": "Invalid API key"}`))
			return
		}
		switch r.URL.Path {
		case "/weather":
			w.Write([]byte(currentBody))
		case "/forecast":
			w.Write([]byte(forecastBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestOpenWeatherMapProvider_Fetch(t *testing.T) {
	server := newOWMServer(t, nil)
	defer server.Close()

	p := NewOpenWeatherMapProvider(&config.WeatherConfig{APIKey: "test-key", BaseURL: server.URL, Timeout: time.Second})
	snap, err := p.Fetch(context.Background(), 22.57, 88.36)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if snap.Current.TempC == nil || *snap.Current.TempC != 29.5 {
		t.Errorf("Expected temp 29.5, got %v", snap.Current.TempC)
	}
	if snap.Current.Humidity == nil || *snap.Current.Humidity != 78 {
		t.Errorf("Expected humidity 78, got %v", snap.Current.Humidity)
	}
	if snap.Current.RainfallMM != 2.5 || snap.Current.Description != "light rain" {
		t.Errorf("Unexpected current weather %+v", snap.Current)
	}

	if len(snap.Forecast) != 2 {
		t.Fatalf("Expected 2 forecast days, got %d", len(snap.Forecast))
	}
	first := snap.Forecast[0]
	if first.Date != "2024-06-15" || math.Abs(first.TempC-30) > 1e-9 || first.RainfallMM != 45 {
		t.Errorf("Unexpected first day %+v", first)
	}
	second := snap.Forecast[1]
	if second.Date != "2024-06-16" || second.TempC != 26 || second.RainfallMM != 1.5 {
		t.Errorf("Unexpected second day %+v", second)
	}
}

func TestOpenWeatherMapProvider_Unavailable(t *testing.T) {
	server := newOWMServer(t, nil)
	defer server.Close()

	tests := []struct {
		name       string
		apiKey     string
		baseURL    string
		wantStatus int
		wantMsg    string
	}{
		{"missing key", "", server.URL, 0, "not configured"},
		{"placeholder key", "YOUR_OPENWEATHER_API_KEY", server.URL, 0, "not configured"},
		{"rejected key", "wrong-key", server.URL, http.StatusUnauthorized, "Invalid API key"},
		{"unreachable", "test-key", "http://127.0.0.1:1", 0, "failed to execute request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewOpenWeatherMapProvider(&config.WeatherConfig{APIKey: tt.apiKey, BaseURL: tt.baseURL, Timeout: time.Second})
			_, err := p.Fetch(context.Background(), 22.57, 88.36)
			if !errors.Is(err, ErrUnavailable) {
				t.Fatalf("Expected ErrUnavailable, got %v", err)
			}
			var ue *UnavailableError
			if !errors.As(err, &ue) {
				t.Fatalf("Expected UnavailableError, got %T", err)
			}
			if ue.Status != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, ue.Status)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Expected %q in %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestCurrentRainfall(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	tests := []struct {
		name string
		rain *rainVolume
		want float64
	}{
		{"none", nil, 0},
		{"one hour", &rainVolume{OneHour: f(1.2), ThreeHour: f(4)}, 1.2},
		{"three hour only", &rainVolume{ThreeHour: f(4)}, 4},
		{"zero one hour falls through", &rainVolume{OneHour: f(0), ThreeHour: f(4)}, 4},
		{"empty", &rainVolume{}, 0},
	}
	for _, tt := range tests {
		if got := currentRainfall(tt.rain); got != tt.want {
			t.Errorf("%s: expected %.2f, got %.2f", tt.name, tt.want, got)
		}
	}
}

func TestAggregateDaily_KeepsFirstFiveDates(t *testing.T) {
	var fc forecastResponse
	start := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	// push days in reverse to check sorting
	for day := 6; day >= 0; day-- {
		fc.List = append(fc.List, forecastItem{Dt: start.AddDate(0, 0, day).Unix()})
	}

	got := aggregateDaily(fc)
	if len(got) != maxForecastDays {
		t.Fatalf("Expected %d days, got %d", maxForecastDays, len(got))
	}
	if got[0].Date != "2024-06-10" || got[4].Date != "2024-06-14" {
		t.Errorf("Expected 2024-06-10..14, got %s..%s", got[0].Date, got[4].Date)
	}
}

type countingProvider struct {
	calls atomic.Int32
	err   error
}

func (c *countingProvider) Fetch(ctx context.Context, lat, lon float64) (*model.WeatherSnapshot, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	temp := 25.0
	return &model.WeatherSnapshot{Current: model.CurrentWeather{TempC: &temp, Description: "clear"}}, nil
}

func TestCachedProvider(t *testing.T) {
	inner := &countingProvider{}
	p := NewCachedProvider(inner, NewMemoryCache(), time.Minute)

	for i := 0; i < 3; i++ {
		snap, err := p.Fetch(context.Background(), 22.571, 88.362)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if snap.Current.TempC == nil || *snap.Current.TempC != 25 {
			t.Errorf("Unexpected snapshot %+v", snap.Current)
		}
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("Expected 1 upstream call, got %d", got)
	}

	if _, err := p.Fetch(context.Background(), 26.7, 88.4); err != nil {
		t.Fatal(err)
	}
	if got := inner.calls.Load(); got != 2 {
		t.Errorf("Expected a new call for other coordinates, got %d", got)
	}
}

func TestCachedProvider_DoesNotCacheFailures(t *testing.T) {
	inner := &countingProvider{err: &UnavailableError{Status: 500, Message: "boom"}}
	p := NewCachedProvider(inner, NewMemoryCache(), time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := p.Fetch(context.Background(), 1, 1); !errors.Is(err, ErrUnavailable) {
			t.Fatalf("Expected ErrUnavailable, got %v", err)
		}
	}
	if got := inner.calls.Load(); got != 2 {
		t.Errorf("Expected every failure to reach upstream, got %d calls", got)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	c.Set(ctx, "k", []byte("v"), 10*time.Millisecond)
	if v, ok := c.Get(ctx, "k"); !ok || string(v) != "v" {
		t.Fatalf("Expected cached value, got %q %v", v, ok)
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("Expected entry to expire")
	}
}

func TestMemoryCache_SetSweepsExpired(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	c.Set(ctx, "weather:22.57:88.36", []byte("a"), 10*time.Millisecond)
	c.Set(ctx, "weather:26.73:88.40", []byte("b"), 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	c.Set(ctx, "weather:23.24:87.86", []byte("c"), time.Minute)
	if c.Len() != 1 {
		t.Errorf("Expected expired keys to be swept, %d entries left", c.Len())
	}
}

func TestNewCache_FallsBackToMemory(t *testing.T) {
	if _, ok := NewCache("").(*MemoryCache); !ok {
		t.Error("Expected memory cache for empty URL")
	}
	if _, ok := NewCache("::not a url::").(*MemoryCache); !ok {
		t.Error("Expected memory cache for invalid URL")
	}
}

func TestRateLimitedProvider(t *testing.T) {
	inner := &countingProvider{}
	p := NewRateLimitedProvider(inner, 0.001, 1)

	if _, err := p.Fetch(context.Background(), 1, 1); err != nil {
		t.Fatalf("First call should use the burst token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.Fetch(ctx, 1, 1)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable once the bucket is empty, got %v", err)
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("Expected 1 upstream call, got %d", got)
	}

	unlimited := NewRateLimitedProvider(inner, 0, 0)
	for i := 0; i < 5; i++ {
		if _, err := unlimited.Fetch(context.Background(), 1, 1); err != nil {
			t.Fatalf("Unlimited provider returned %v", err)
		}
	}
}
