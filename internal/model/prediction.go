package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRequest is returned for missing or malformed request fields.
var ErrInvalidRequest = errors.New("invalid request")

// TrendDirection summarises where prices are heading over the next few days.
type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
	TrendFlat TrendDirection = "flat"
)

// PredictionRequest represents a price prediction request
type PredictionRequest struct {
	Crop   string   `json:"crop" binding:"required"`
	Market string   `json:"market" binding:"required"`
	Date   string   `json:"date" binding:"required"` // ISO date of the intended sale
	Lat    *float64 `json:"lat" binding:"required"`
	Lon    *float64 `json:"lon" binding:"required"`
}

// Validate rejects requests that must never reach the pipeline
func (r *PredictionRequest) Validate() error {
	if strings.TrimSpace(r.Crop) == "" || strings.TrimSpace(r.Market) == "" || strings.TrimSpace(r.Date) == "" {
		return fmt.Errorf("%w: crop, market and date are required", ErrInvalidRequest)
	}
	if r.Lat == nil || r.Lon == nil {
		return fmt.Errorf("%w: latitude and longitude required", ErrInvalidRequest)
	}
	if *r.Lat < -90 || *r.Lat > 90 {
		return fmt.Errorf("%w: latitude out of range [-90, 90]", ErrInvalidRequest)
	}
	if *r.Lon < -180 || *r.Lon > 180 {
		return fmt.Errorf("%w: longitude out of range [-180, 180]", ErrInvalidRequest)
	}
	return nil
}

// BestDay is the most profitable day among the forecast offsets
type BestDay struct {
	Date  string  `json:"date"`
	Label string  `json:"label"` // e.g. "Tue 14-May"
	Price float64 `json:"price"`
}

// FuturePrice is one point of the short price forecast
type FuturePrice struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// SuitabilityLevel classifies growing conditions
type SuitabilityLevel string

const (
	SuitabilityIdeal     SuitabilityLevel = "ideal"
	SuitabilityModerate  SuitabilityLevel = "moderate"
	SuitabilityStressful SuitabilityLevel = "stressful"
)

// AgroInsights bundles the agronomic guidance for a request
type AgroInsights struct {
	SuitabilityLevel SuitabilityLevel `json:"suitabilityLevel"`
	SuitabilityText  string           `json:"suitabilityText"`
	DiseaseRisk      string           `json:"diseaseRisk"`
	ExtremeWarning   string           `json:"extremeWarning"`
}

// AlternativeMarket is the predicted price of the same crop at a nearby market
type AlternativeMarket struct {
	Market string  `json:"market"`
	Price  float64 `json:"price"`
}

// PredictionResult is the composite answer for one request
type PredictionResult struct {
	PredictedPrice           float64             `json:"predictedPrice"`
	ConfidenceLower          float64             `json:"confidenceLower"`
	ConfidenceUpper          float64             `json:"confidenceUpper"`
	TrendDirection           TrendDirection      `json:"trendDirection"`
	BestDay                  *BestDay            `json:"bestDay"`
	FutureSeries             []FuturePrice       `json:"futureSeries"`
	Advice                   string              `json:"advice"`
	AgroInsights             AgroInsights        `json:"agroInsights"`
	FeatureImportanceSummary []string            `json:"featureImportanceSummary"`
	AlternativeMarkets       []AlternativeMarket `json:"alternativeMarkets"`
}

// PredictionResponse is returned by the predict endpoint
type PredictionResponse struct {
	PredictionID string `json:"predictionId"`
	PredictionResult
	Weather         CurrentWeather  `json:"weather"`
	ForecastWeather []DailyForecast `json:"forecastWeather"`
}

// PredictionRecord is a stored prediction as listed in a user's history
type PredictionRecord struct {
	ID             string    `json:"id" db:"id"`
	Crop           string    `json:"crop" db:"crop"`
	Market         string    `json:"market" db:"market"`
	Date           string    `json:"date" db:"target_date"`
	PredictedPrice float64   `json:"predictedPrice" db:"predicted_price"`
	Advice         *string   `json:"advice" db:"advice"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	ActualPrice    *float64  `json:"actualPrice" db:"actual_price"`
	PriceDiff      *float64  `json:"priceDiff" db:"price_diff"`
}

// ActualPriceUpdate is the outcome of recording the realised price of a prediction
type ActualPriceUpdate struct {
	ID          string  `json:"id" db:"id"`
	ActualPrice float64 `json:"actualPrice" db:"actual_price"`
	PriceDiff   float64 `json:"priceDiff" db:"price_diff"`
}

// ActualPriceRequest represents POST /predict/actual
type ActualPriceRequest struct {
	PredictionID string   `json:"predictionId" binding:"required"`
	ActualPrice  *float64 `json:"actualPrice" binding:"required"`
}

// RegionAverage is the mean predicted price of a crop at a market over a window
type RegionAverage struct {
	Market   string  `json:"market" db:"market"`
	Crop     string  `json:"crop" db:"crop"`
	AvgPrice float64 `json:"avgPrice" db:"avg_price"`
}

// MarketInfo describes a supported market
type MarketInfo struct {
	Market   string   `json:"market"`
	AgroZone AgroZone `json:"agroZone"`
	Nearby   []string `json:"nearby"`
}

// ModelInfo describes the active price model
type ModelInfo struct {
	Name           string   `json:"name"`
	Source         string   `json:"source"`
	Fallback       bool     `json:"fallback"`
	FallbackReason string   `json:"fallbackReason,omitempty"`
	Loaded         bool     `json:"loaded"`
	RMSE           float64  `json:"rmse"`
	MAE            float64  `json:"mae"`
	Columns        []string `json:"columns"`
}
