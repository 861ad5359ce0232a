package service

import (
	"log"
	"time"

	"krishisense/internal/model"
)

// TrendOffsets is how many days after the target date are forecast
const TrendOffsets = 3

// trendThreshold is the minimum average move, in price units, that counts as a trend
const trendThreshold = 3.0

// PriceModel scores feature vectors. ModelService is the production implementation.
type PriceModel interface {
	Predict(fv model.FeatureVector) (float64, error)
}

// Forecast is the short-horizon outlook derived from date-shifted predictions
type Forecast struct {
	Series    []model.FuturePrice
	Direction model.TrendDirection
	BestDay   *model.BestDay
}

// Prices returns the forecast prices in offset order
func (f Forecast) Prices() []float64 {
	prices := make([]float64, len(f.Series))
	for i, p := range f.Series {
		prices[i] = p.Price
	}
	return prices
}

// TrendForecaster predicts the next few days by shifting only the date of the base vector
type TrendForecaster struct {
	model PriceModel
}

// NewTrendForecaster creates a new trend forecaster
func NewTrendForecaster(m PriceModel) *TrendForecaster {
	return &TrendForecaster{model: m}
}

// Forecast never fails. If any offset cannot be scored the whole series is dropped.
func (f *TrendForecaster) Forecast(base model.FeatureVector, baseDate time.Time, basePrice float64) Forecast {
	series := make([]model.FuturePrice, 0, TrendOffsets)
	for i := 1; i <= TrendOffsets; i++ {
		day := baseDate.AddDate(0, 0, i)
		price, err := f.model.Predict(WithDate(base, day))
		if err != nil {
			log.Printf("Warning: future price for %s failed, dropping trend series: %v", day.Format("2006-01-02"), err)
			series = nil
			break
		}
		series = append(series, model.FuturePrice{
			Date:  day.Format("2006-01-02"),
			Price: price,
		})
	}

	fc := Forecast{Series: series}
	if fc.Series == nil {
		fc.Series = []model.FuturePrice{}
	}
	prices := fc.Prices()
	fc.Direction = TrendDirectionFor(basePrice, prices)
	fc.BestDay = BestDayFor(baseDate, prices)
	return fc
}

// TrendDirectionFor compares the average future price with the base price
func TrendDirectionFor(basePrice float64, future []float64) model.TrendDirection {
	if len(future) == 0 {
		return model.TrendFlat
	}
	diff := mean(future) - basePrice
	switch {
	case diff > trendThreshold:
		return model.TrendUp
	case diff < -trendThreshold:
		return model.TrendDown
	default:
		return model.TrendFlat
	}
}

// BestDayFor picks the highest future price; ties go to the earliest day.
// future[i] is the price i+1 days after baseDate.
func BestDayFor(baseDate time.Time, future []float64) *model.BestDay {
	if len(future) == 0 {
		return nil
	}
	best := 0
	for i, p := range future {
		if p > future[best] {
			best = i
		}
	}
	day := baseDate.AddDate(0, 0, best+1)
	return &model.BestDay{
		Date:  day.Format("2006-01-02"),
		Label: day.Format("Mon 02-Jan"),
		Price: future[best],
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
