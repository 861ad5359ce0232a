package service

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"krishisense/internal/model"
)

// FallbackPredictor is the deterministic estimator used when no model artifact is available.
// It never fails.
type FallbackPredictor struct{}

func (FallbackPredictor) Name() string {
	return "fallback-estimator"
}

// Predict returns 25 adjusted by commodity trend, demand and heavy rainfall, clamped to [5, 80].
func (FallbackPredictor) Predict(fv model.FeatureVector) (float64, error) {
	base := 25.0
	base += 5.0 * (fv.CommodityTrendIndex - 0.5)
	base += 4.0 * (fv.DemandIndex - 0.5)
	base -= 0.05 * math.Max(0, fv.Rainfall-20)
	if math.IsNaN(base) {
		return 25.0, nil
	}
	return math.Max(5.0, math.Min(80.0, base)), nil
}

// LinearArtifact is a linear price model exported as JSON.
// Categorical columns are one-hot encoded; unseen categories contribute nothing.
type LinearArtifact struct {
	ModelName    string                        `json:"name"`
	Columns      []string                      `json:"columns"`
	Intercept    float64                       `json:"intercept"`
	Coefficients map[string]float64            `json:"coefficients"`
	Categories   map[string]map[string]float64 `json:"categories"`
}

// LoadLinearArtifact reads and validates an artifact file
func LoadLinearArtifact(path string) (*LinearArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var a LinearArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

func (a *LinearArtifact) validate() error {
	if len(a.Columns) != len(model.FeatureColumns) {
		return fmt.Errorf("artifact has %d columns, want %d", len(a.Columns), len(model.FeatureColumns))
	}
	for i, col := range model.FeatureColumns {
		if a.Columns[i] != col {
			return fmt.Errorf("artifact column %d is %q, want %q", i, a.Columns[i], col)
		}
	}
	numeric := model.FeatureVector{}.NumericByColumn()
	for col := range a.Coefficients {
		if _, ok := numeric[col]; !ok {
			return fmt.Errorf("coefficient for unknown numeric column %q", col)
		}
	}
	categorical := model.FeatureVector{}.Categorical()
	for col := range a.Categories {
		if _, ok := categorical[col]; !ok {
			return fmt.Errorf("weights for unknown categorical column %q", col)
		}
	}
	return nil
}

func (a *LinearArtifact) Name() string {
	if a.ModelName == "" {
		return "linear-artifact"
	}
	return a.ModelName
}

// Predict computes intercept + Σ coefficient·value + Σ category weight.
// Terms are summed in FeatureColumns order so identical vectors give bit-identical prices.
func (a *LinearArtifact) Predict(fv model.FeatureVector) (float64, error) {
	categorical := fv.Categorical()
	numeric := fv.NumericByColumn()

	price := a.Intercept
	for _, col := range model.FeatureColumns {
		if v, ok := categorical[col]; ok {
			price += a.Categories[col][v]
			continue
		}
		v := numeric[col]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, &InferenceError{Predictor: a.Name(), Err: fmt.Errorf("column %s is not finite", col)}
		}
		price += a.Coefficients[col] * v
	}
	return price, nil
}

var (
	_ Predictor = FallbackPredictor{}
	_ Predictor = (*LinearArtifact)(nil)
)
