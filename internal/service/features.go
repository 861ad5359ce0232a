package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"krishisense/internal/model"
)

// DateEpoch is day zero of DateNumeric.
var DateEpoch = time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)

var isoDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseDate parses an ISO date or date-time. Wall-clock fields are kept as written.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not an ISO date", ErrInvalidDate, s)
}

// DateToNumeric returns the number of whole days between DateEpoch and t.
func DateToNumeric(t time.Time) int {
	return int(math.Floor(t.Sub(DateEpoch).Hours() / 24))
}

// DetectSeason buckets a month into Kharif (Jun-Oct), Rabi (Nov-Mar) or Pre-Kharif (Apr-May).
func DetectSeason(t time.Time) model.Season {
	m := t.Month()
	switch {
	case m >= time.June && m <= time.October:
		return model.SeasonKharif
	case m >= time.November || m <= time.March:
		return model.SeasonRabi
	default:
		return model.SeasonPreKharif
	}
}

// ApproxSoilMoisture estimates soil moisture from humidity and rainfall, clamped to [10, 80].
func ApproxSoilMoisture(humidity, rainfallMM float64) float64 {
	base := 20 + 0.3*humidity + 0.5*rainfallMM
	return math.Max(10, math.Min(80, base))
}

// EconomicIndices are the date-derived proxy market features.
type EconomicIndices struct {
	DemandIndex         float64
	Supply              float64
	FuelPriceIndex      float64
	InflationRate       float64
	CommodityTrendIndex float64
}

// ApproxEconomicIndices derives the synthetic indices from the month of t.
func ApproxEconomicIndices(t time.Time) EconomicIndices {
	mf := float64(t.Month()) / 12.0
	return EconomicIndices{
		DemandIndex:         roundTo(0.4+0.4*mf, 3),
		Supply:              roundTo(800+400*(1-mf), 2),
		FuelPriceIndex:      roundTo(1.0+0.1*mf, 3),
		InflationRate:       roundTo(5.5+0.5*mf, 3),
		CommodityTrendIndex: roundTo(0.5+0.3*mf, 3),
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// FeatureBuilder turns a request and its weather into a feature vector
type FeatureBuilder struct{}

// NewFeatureBuilder creates a new feature builder
func NewFeatureBuilder() *FeatureBuilder {
	return &FeatureBuilder{}
}

// Build derives the full feature vector. lat/lon only matter for the weather that was already fetched.
func (b *FeatureBuilder) Build(crop, market, date string, lat, lon float64, current model.CurrentWeather) (model.FeatureVector, error) {
	dt, err := ParseDate(date)
	if err != nil {
		return model.FeatureVector{}, err
	}
	if current.TempC == nil {
		return model.FeatureVector{}, fmt.Errorf("%w: temp_c", ErrMissingWeatherField)
	}
	if current.Humidity == nil {
		return model.FeatureVector{}, fmt.Errorf("%w: humidity", ErrMissingWeatherField)
	}

	rain := current.RainfallMM
	if rain < 0 || math.IsNaN(rain) {
		rain = 0
	}
	temp := *current.TempC
	humidity := *current.Humidity
	econ := ApproxEconomicIndices(dt)

	return model.FeatureVector{
		Crop:                crop,
		Market:              market,
		AgroZone:            DetermineAgroZone(market),
		Season:              DetectSeason(dt),
		Rainfall:            rain,
		AvgTemperature:      temp,
		Humidity:            humidity,
		SoilMoisture:        ApproxSoilMoisture(humidity, rain),
		DemandIndex:         econ.DemandIndex,
		Supply:              econ.Supply,
		FuelPriceIndex:      econ.FuelPriceIndex,
		InflationRate:       econ.InflationRate,
		CommodityTrendIndex: econ.CommodityTrendIndex,
		DateNumeric:         DateToNumeric(dt),
	}, nil
}

// WithDate returns a copy of fv shifted to another target date. Only DateNumeric changes.
func WithDate(fv model.FeatureVector, t time.Time) model.FeatureVector {
	fv.DateNumeric = DateToNumeric(t)
	return fv
}

// WithMarket returns a copy of fv for another market, with its agro zone recomputed.
func WithMarket(fv model.FeatureVector, market string) model.FeatureVector {
	fv.Market = market
	fv.AgroZone = DetermineAgroZone(market)
	return fv
}
