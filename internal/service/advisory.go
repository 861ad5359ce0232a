package service

import (
	"fmt"
	"strings"

	"krishisense/internal/model"
)

const (
	adviceRecheck = "Based on current conditions, this is the estimated price. Consider checking again closer to your selling date."
	adviceRising  = "Prices are likely to increase in the coming days. If possible, you may wait before selling."
	adviceFalling = "Prices may fall in the coming days. It could be better to sell earlier."
	adviceStable  = "Prices are relatively stable. You can sell as per your convenience and storage capacity."

	suitabilityIdealText     = "Weather and soil moisture look ideal for healthy crop growth."
	suitabilityModerateText  = "Conditions are acceptable but monitor field closely for stress."
	suitabilityStressfulText = "Conditions may stress the crop. Plan irrigation/drainage and monitor carefully."

	riskFungal         = "High humidity and moderate temperature increase risk of fungal diseases. Ensure good drainage and avoid waterlogging."
	riskMoistureStress = "Low humidity and high temperature may cause moisture stress. Irrigate timely and use mulching if possible."
	riskNone           = "No major weather-based disease risk detected, but continue routine crop protection practices."

	extremeNone = "No extreme rainfall events detected in the next few days."

	narrativeSeason      = "Season and date (capturing typical seasonal price patterns)."
	narrativeHighDemand  = "High demand index pushing the price upward."
	narrativeLowDemand   = "Lower demand index keeping prices under pressure."
	narrativeHighSupply  = "High supply in markets, putting downward pressure on price."
	narrativeTightSupply = "Relatively tight supply, supporting higher prices."
	narrativeRainfall    = "Recent rainfall influencing harvesting and transport, affecting prices."
	narrativeTemperature = "Higher temperature can stress crops and impact yield expectations."

	maxNarrativeSentences = 4
)

const (
	adviceThreshold    = 5.0
	heavyRainfallMM    = 40.0
	highDemandIndex    = 0.7
	lowDemandIndex     = 0.5
	highSupplyQuintals = 900.0
	notableRainfallMM  = 20.0
	highTemperatureC   = 32.0
)

// AdvisoryGenerator turns validated prices and weather into farmer-facing text.
// All of its methods are pure and cannot fail.
type AdvisoryGenerator struct{}

// NewAdvisoryGenerator creates a new advisory generator
func NewAdvisoryGenerator() *AdvisoryGenerator {
	return &AdvisoryGenerator{}
}

// Advice recommends when to sell based on the average future price.
func (g *AdvisoryGenerator) Advice(basePrice float64, future []float64) string {
	if len(future) == 0 {
		return adviceRecheck
	}
	return adviceForDiff(mean(future) - basePrice)
}

func adviceForDiff(diff float64) string {
	switch {
	case diff > adviceThreshold:
		return adviceRising
	case diff < -adviceThreshold:
		return adviceFalling
	default:
		return adviceStable
	}
}

// Suitability grades growing conditions on temperature, soil moisture and rainfall
func (g *AdvisoryGenerator) Suitability(tempC, soilMoisture, rainfallMM float64) (model.SuitabilityLevel, string) {
	switch {
	case between(tempC, 20, 32) && between(soilMoisture, 20, 60) && rainfallMM <= 25:
		return model.SuitabilityIdeal, suitabilityIdealText
	case between(tempC, 15, 35) && between(soilMoisture, 15, 70) && rainfallMM <= 50:
		return model.SuitabilityModerate, suitabilityModerateText
	default:
		return model.SuitabilityStressful, suitabilityStressfulText
	}
}

// DiseaseRisk flags weather that favours fungal disease or moisture stress
func (g *AdvisoryGenerator) DiseaseRisk(tempC, humidity float64) string {
	switch {
	case humidity > 80 && between(tempC, 18, 32):
		return riskFungal
	case humidity < 40 && tempC > 32:
		return riskMoistureStress
	default:
		return riskNone
	}
}

// ExtremeWeather names every forecast day with more than 40mm of rain
func (g *AdvisoryGenerator) ExtremeWeather(forecast []model.DailyForecast) string {
	var dates []string
	for _, d := range forecast {
		if d.RainfallMM > heavyRainfallMM {
			dates = append(dates, d.Date)
		}
	}
	if len(dates) == 0 {
		return extremeNone
	}
	return fmt.Sprintf("Heavy rainfall expected on %s. Plan harvesting, storage and field drainage accordingly.", strings.Join(dates, ", "))
}

// Insights bundles suitability, disease risk and the extreme weather hint
func (g *AdvisoryGenerator) Insights(fv model.FeatureVector, forecast []model.DailyForecast) model.AgroInsights {
	level, text := g.Suitability(fv.AvgTemperature, fv.SoilMoisture, fv.Rainfall)
	return model.AgroInsights{
		SuitabilityLevel: level,
		SuitabilityText:  text,
		DiseaseRisk:      g.DiseaseRisk(fv.AvgTemperature, fv.Humidity),
		ExtremeWarning:   g.ExtremeWeather(forecast),
	}
}

// Narrative explains which features most likely drove the price.
// The seasonality sentence always comes first; at most four distinct sentences are returned.
func (g *AdvisoryGenerator) Narrative(fv model.FeatureVector) []string {
	messages := []string{narrativeSeason}

	if fv.DemandIndex > highDemandIndex {
		messages = append(messages, narrativeHighDemand)
	} else if fv.DemandIndex < lowDemandIndex {
		messages = append(messages, narrativeLowDemand)
	}

	if fv.Supply > highSupplyQuintals {
		messages = append(messages, narrativeHighSupply)
	} else {
		messages = append(messages, narrativeTightSupply)
	}

	if fv.Rainfall > notableRainfallMM {
		messages = append(messages, narrativeRainfall)
	}
	if fv.AvgTemperature > highTemperatureC {
		messages = append(messages, narrativeTemperature)
	}

	seen := make(map[string]bool, len(messages))
	out := make([]string, 0, maxNarrativeSentences)
	for _, m := range messages {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
		if len(out) == maxNarrativeSentences {
			break
		}
	}
	return out
}

func between(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
