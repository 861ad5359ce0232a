package service

import "math"

// Default model error metrics, measured on the training hold-out set
const (
	DefaultRMSE = 8.0
	DefaultMAE  = 6.0
)

// ConfidenceEstimator puts a symmetric band of one RMSE around a price
type ConfidenceEstimator struct {
	rmse float64
}

// NewConfidenceEstimator creates an estimator for a fixed RMSE
func NewConfidenceEstimator(rmse float64) *ConfidenceEstimator {
	return &ConfidenceEstimator{rmse: rmse}
}

// Range returns [max(0, price-RMSE), price+RMSE].
func (c *ConfidenceEstimator) Range(price float64) (lower, upper float64) {
	return math.Max(0, price-c.rmse), price + c.rmse
}
