package service

import (
	"reflect"
	"strings"
	"testing"

	"krishisense/internal/model"
)

func TestAdvisoryGenerator_Advice(t *testing.T) {
	g := NewAdvisoryGenerator()

	if got := g.Advice(50, nil); got != adviceRecheck {
		t.Errorf("Expected re-check advice without a series, got %q", got)
	}

	tests := []struct {
		diff float64
		want string
	}{
		{5.0, adviceStable},
		{5.01, adviceRising},
		{-5.0, adviceStable},
		{-5.01, adviceFalling},
		{0, adviceStable},
	}
	for _, tt := range tests {
		if got := adviceForDiff(tt.diff); got != tt.want {
			t.Errorf("diff %.2f: expected %q, got %q", tt.diff, tt.want, got)
		}
	}

	if got := g.Advice(50, []float64{55, 55, 55}); got != adviceStable {
		t.Errorf("Expected stable for diff 5, got %q", got)
	}
	if got := g.Advice(50, []float64{60, 56, 60}); got != adviceRising {
		t.Errorf("Expected rising, got %q", got)
	}
}

func TestAdvisoryGenerator_Suitability(t *testing.T) {
	g := NewAdvisoryGenerator()
	tests := []struct {
		name                 string
		temp, soil, rainfall float64
		want                 model.SuitabilityLevel
	}{
		{"ideal", 25, 40, 10, model.SuitabilityIdeal},
		{"ideal edges", 20, 60, 25, model.SuitabilityIdeal},
		{"moderate heat", 34, 40, 10, model.SuitabilityModerate},
		{"moderate rain", 25, 40, 50, model.SuitabilityModerate},
		{"stressful heat", 36, 40, 0, model.SuitabilityStressful},
		{"stressful wet soil", 25, 75, 0, model.SuitabilityStressful},
		{"stressful rain", 25, 40, 50.5, model.SuitabilityStressful},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, text := g.Suitability(tt.temp, tt.soil, tt.rainfall)
			if level != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, level)
			}
			if text == "" {
				t.Error("Expected advisory sentence")
			}
		})
	}
}

func TestAdvisoryGenerator_DiseaseRisk(t *testing.T) {
	g := NewAdvisoryGenerator()
	tests := []struct {
		temp, humidity float64
		want           string
	}{
		{25, 85, riskFungal},
		{33, 85, riskNone},
		{35, 30, riskMoistureStress},
		{32, 30, riskNone},
		{25, 60, riskNone},
	}
	for _, tt := range tests {
		if got := g.DiseaseRisk(tt.temp, tt.humidity); got != tt.want {
			t.Errorf("T=%.0f H=%.0f: expected %q, got %q", tt.temp, tt.humidity, tt.want, got)
		}
	}
}

func TestAdvisoryGenerator_ExtremeWeather(t *testing.T) {
	g := NewAdvisoryGenerator()

	exact := []model.DailyForecast{{Date: "2024-07-01", RainfallMM: 40}}
	if got := g.ExtremeWeather(exact); got != extremeNone {
		t.Errorf("Expected no warning at exactly 40mm, got %q", got)
	}

	heavy := []model.DailyForecast{
		{Date: "2024-07-01", RainfallMM: 41},
		{Date: "2024-07-02", RainfallMM: 10},
		{Date: "2024-07-03", RainfallMM: 90},
	}
	got := g.ExtremeWeather(heavy)
	if !strings.Contains(got, "2024-07-01, 2024-07-03") || strings.Contains(got, "2024-07-02") {
		t.Errorf("Unexpected warning %q", got)
	}

	if got := g.ExtremeWeather(nil); got != extremeNone {
		t.Errorf("Expected reassurance for empty forecast, got %q", got)
	}
}

func TestAdvisoryGenerator_Narrative(t *testing.T) {
	g := NewAdvisoryGenerator()

	tests := []struct {
		name string
		fv   model.FeatureVector
		want []string
	}{
		{
			name: "mid demand high supply",
			fv:   model.FeatureVector{DemandIndex: 0.6, Supply: 1000, Rainfall: 0, AvgTemperature: 25},
			want: []string{narrativeSeason, narrativeHighSupply},
		},
		{
			name: "low demand tight supply",
			fv:   model.FeatureVector{DemandIndex: 0.45, Supply: 900, Rainfall: 20, AvgTemperature: 32},
			want: []string{narrativeSeason, narrativeLowDemand, narrativeTightSupply},
		},
		{
			name: "capped at four",
			fv:   model.FeatureVector{DemandIndex: 0.8, Supply: 800, Rainfall: 30, AvgTemperature: 35},
			want: []string{narrativeSeason, narrativeHighDemand, narrativeTightSupply, narrativeRainfall},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Narrative(tt.fv)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAdvisoryGenerator_Insights(t *testing.T) {
	fv := sampleVector()
	got := NewAdvisoryGenerator().Insights(fv, nil)
	if got.SuitabilityLevel != model.SuitabilityIdeal {
		t.Errorf("Expected ideal, got %s", got.SuitabilityLevel)
	}
	if got.DiseaseRisk != riskNone || got.ExtremeWarning != extremeNone {
		t.Errorf("Unexpected insights %+v", got)
	}
}
