package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"krishisense/internal/model"
)

// PredictionService runs the full prediction pipeline for one request
type PredictionService struct {
	weather    WeatherProvider
	features   *FeatureBuilder
	model      PriceModel
	trend      *TrendForecaster
	confidence *ConfidenceEstimator
	comparator *MarketComparator
	advisory   *AdvisoryGenerator
	store      PredictionStore
	debug      bool
}

// NewPredictionService creates a new prediction service
func NewPredictionService(
	weather WeatherProvider,
	priceModel PriceModel,
	store PredictionStore,
	rmse float64,
	debug bool,
) *PredictionService {
	return &PredictionService{
		weather:    weather,
		features:   NewFeatureBuilder(),
		model:      priceModel,
		trend:      NewTrendForecaster(priceModel),
		confidence: NewConfidenceEstimator(rmse),
		comparator: NewMarketComparator(priceModel),
		advisory:   NewAdvisoryGenerator(),
		store:      store,
		debug:      debug,
	}
}

// Predict validates the request, prices it and stores the result.
// Required-stage failures come back as *StageError; optional stages degrade to empty output.
func (s *PredictionService) Predict(ctx context.Context, userID string, req *model.PredictionRequest) (*model.PredictionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, &StageError{Stage: StageValidation, Err: err}
	}
	req.Crop = strings.TrimSpace(req.Crop)
	req.Market = strings.TrimSpace(req.Market)
	req.Date = strings.TrimSpace(req.Date)

	// Reject bad dates before spending a weather call
	baseDate, err := ParseDate(req.Date)
	if err != nil {
		return nil, &StageError{Stage: StageFeatures, Err: err}
	}

	snapshot, err := s.weather.Fetch(ctx, *req.Lat, *req.Lon)
	if err != nil {
		return nil, &StageError{Stage: StageWeather, Err: err}
	}

	fv, err := s.features.Build(req.Crop, req.Market, req.Date, *req.Lat, *req.Lon, snapshot.Current)
	if err != nil {
		return nil, &StageError{Stage: StageFeatures, Err: err}
	}
	if s.debug {
		if raw, err := json.Marshal(fv); err == nil {
			log.Printf("🔍 Feature vector: %s", raw)
		}
	}

	price, err := s.model.Predict(fv)
	if err != nil {
		return nil, &StageError{Stage: StageInference, Err: err}
	}

	forecast := s.trend.Forecast(fv, baseDate, price)
	lower, upper := s.confidence.Range(price)
	alternatives := s.comparator.Compare(fv)
	advice := s.advisory.Advice(price, forecast.Prices())

	result := model.PredictionResult{
		PredictedPrice:           price,
		ConfidenceLower:          lower,
		ConfidenceUpper:          upper,
		TrendDirection:           forecast.Direction,
		BestDay:                  forecast.BestDay,
		FutureSeries:             forecast.Series,
		Advice:                   advice,
		AgroInsights:             s.advisory.Insights(fv, snapshot.Forecast),
		FeatureImportanceSummary: s.advisory.Narrative(fv),
		AlternativeMarkets:       alternatives,
	}

	id, err := s.store.Save(ctx, userID, req, fv, price, advice)
	if err != nil {
		return nil, &StageError{Stage: StagePersistence, Err: err}
	}

	forecastWeather := snapshot.Forecast
	if forecastWeather == nil {
		forecastWeather = []model.DailyForecast{}
	}

	return &model.PredictionResponse{
		PredictionID:     id,
		PredictionResult: result,
		Weather:          snapshot.Current,
		ForecastWeather:  forecastWeather,
	}, nil
}

// History lists a user's most recent predictions
func (s *PredictionService) History(ctx context.Context, userID string, limit int) ([]model.PredictionRecord, error) {
	records, err := s.store.FindByUser(ctx, userID, limit)
	if err != nil {
		return nil, &StageError{Stage: StagePersistence, Err: err}
	}
	if records == nil {
		records = []model.PredictionRecord{}
	}
	return records, nil
}

// RecordActual stores the realised price of a prediction. It returns ErrPredictionNotFound for unknown ids.
func (s *PredictionService) RecordActual(ctx context.Context, id string, actualPrice float64) (*model.ActualPriceUpdate, error) {
	update, err := s.store.RecordActual(ctx, id, actualPrice)
	if err != nil {
		return nil, &StageError{Stage: StagePersistence, Err: err}
	}
	if update == nil {
		return nil, ErrPredictionNotFound
	}
	return update, nil
}

// Delete removes one of the user's predictions. It returns ErrPredictionNotFound if nothing was deleted.
func (s *PredictionService) Delete(ctx context.Context, userID, id string) error {
	ok, err := s.store.Delete(ctx, userID, id)
	if err != nil {
		return &StageError{Stage: StagePersistence, Err: err}
	}
	if !ok {
		return ErrPredictionNotFound
	}
	return nil
}

// Heatmap averages predicted prices per market and crop over the last windowDays days
func (s *PredictionService) Heatmap(ctx context.Context, crop string, windowDays int) ([]model.RegionAverage, error) {
	rows, err := s.store.AggregateByRegion(ctx, strings.TrimSpace(crop), windowDays)
	if err != nil {
		return nil, &StageError{Stage: StagePersistence, Err: err}
	}
	if rows == nil {
		rows = []model.RegionAverage{}
	}
	return rows, nil
}
