package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"krishisense/internal/config"
	"krishisense/internal/model"
)

const (
	defaultBaseURL     = "https://api.openweathermap.org/data/2.5"
	placeholderAPIKey  = "YOUR_OPENWEATHER_API_KEY"
	maxForecastDays    = 5
	forecastDateLayout = "2006-01-02"
)

// OpenWeatherMapProvider fetches live weather from the OpenWeatherMap 2.5 API
type OpenWeatherMapProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenWeatherMapProvider creates a new OpenWeatherMap provider
func NewOpenWeatherMapProvider(cfg *config.WeatherConfig) *OpenWeatherMapProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenWeatherMapProvider{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider name
func (p *OpenWeatherMapProvider) Name() string {
	return "OpenWeatherMap"
}

type rainVolume struct {
	OneHour   *float64 `json:"1h"`
	ThreeHour *float64 `json:"3h"`
}

type currentResponse struct {
	Main struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Rain    *rainVolume `json:"rain"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

type forecastItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Rain *rainVolume `json:"rain"`
}

type forecastResponse struct {
	List []forecastItem `json:"list"`
}

// Fetch returns current weather and up to five daily forecasts. Each call makes exactly two requests.
func (p *OpenWeatherMapProvider) Fetch(ctx context.Context, lat, lon float64) (*model.WeatherSnapshot, error) {
	if p.apiKey == "" || p.apiKey == placeholderAPIKey {
		return nil, &UnavailableError{
			Message: "OpenWeather API key is not configured. Set OPENWEATHER_API_KEY (or .env) with your real key.",
		}
	}

	var cur currentResponse
	if err := p.get(ctx, "weather", lat, lon, &cur); err != nil {
		return nil, err
	}

	var fc forecastResponse
	if err := p.get(ctx, "forecast", lat, lon, &fc); err != nil {
		return nil, err
	}

	snapshot := &model.WeatherSnapshot{
		Current: model.CurrentWeather{
			TempC:      cur.Main.Temp,
			Humidity:   cur.Main.Humidity,
			RainfallMM: currentRainfall(cur.Rain),
		},
		Forecast: aggregateDaily(fc),
	}
	if len(cur.Weather) > 0 {
		snapshot.Current.Description = cur.Weather[0].Description
	}
	return snapshot, nil
}

func (p *OpenWeatherMapProvider) get(ctx context.Context, endpoint string, lat, lon float64, out any) error {
	params := url.Values{}
	params.Add("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Add("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Add("appid", p.apiKey)
	params.Add("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return &UnavailableError{Message: "failed to create request", Err: err}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return &UnavailableError{Message: "failed to execute request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UnavailableError{Message: "failed to read response body", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return &UnavailableError{Status: resp.StatusCode, Message: upstreamMessage(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &UnavailableError{Message: fmt.Sprintf("failed to parse %s response", endpoint), Err: err}
	}
	return nil
}

// upstreamMessage prefers the "message" field of an OpenWeather error body
func upstreamMessage(body []byte) string {
	var payload struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != nil {
		return fmt.Sprint(payload.Message)
	}
	return strings.TrimSpace(string(body))
}

func currentRainfall(rain *rainVolume) float64 {
	if rain == nil {
		return 0
	}
	if rain.OneHour != nil && *rain.OneHour != 0 {
		return *rain.OneHour
	}
	if rain.ThreeHour != nil {
		return *rain.ThreeHour
	}
	return 0
}

// aggregateDaily groups 3-hour samples by UTC date: mean temperature, summed rain
func aggregateDaily(fc forecastResponse) []model.DailyForecast {
	type bucket struct {
		tempSum float64
		rainSum float64
		count   int
	}
	daily := make(map[string]*bucket)
	for _, item := range fc.List {
		date := time.Unix(item.Dt, 0).UTC().Format(forecastDateLayout)
		b, ok := daily[date]
		if !ok {
			b = &bucket{}
			daily[date] = b
		}
		b.tempSum += item.Main.Temp
		if item.Rain != nil && item.Rain.ThreeHour != nil {
			b.rainSum += *item.Rain.ThreeHour
		}
		b.count++
	}

	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	if len(dates) > maxForecastDays {
		dates = dates[:maxForecastDays]
	}

	out := make([]model.DailyForecast, 0, len(dates))
	for _, date := range dates {
		b := daily[date]
		out = append(out, model.DailyForecast{
			Date:       date,
			TempC:      b.tempSum / float64(b.count),
			RainfallMM: b.rainSum,
		})
	}
	return out
}

var _ Provider = (*OpenWeatherMapProvider)(nil)
