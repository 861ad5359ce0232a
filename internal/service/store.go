package service

import (
	"context"

	"krishisense/internal/model"
)

// PredictionStore persists predictions and serves the history and heatmap views
type PredictionStore interface {
	Save(ctx context.Context, userID string, req *model.PredictionRequest, fv model.FeatureVector, price float64, advice string) (string, error)
	FindByUser(ctx context.Context, userID string, limit int) ([]model.PredictionRecord, error)
	AggregateByRegion(ctx context.Context, crop string, windowDays int) ([]model.RegionAverage, error)
	// RecordActual returns nil when no prediction has the given id.
	RecordActual(ctx context.Context, id string, actualPrice float64) (*model.ActualPriceUpdate, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

// WeatherProvider fetches current conditions and a short daily forecast
type WeatherProvider interface {
	Fetch(ctx context.Context, lat, lon float64) (*model.WeatherSnapshot, error)
}
