package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrIncompleteFeatures is returned when a feature vector is used before every field is populated.
var ErrIncompleteFeatures = errors.New("feature vector is incomplete")

// Season is the Kharif/Rabi/Pre-Kharif bucket of a calendar month.
type Season string

const (
	SeasonKharif    Season = "Kharif"
	SeasonRabi      Season = "Rabi"
	SeasonPreKharif Season = "Pre-Kharif"
)

// AgroZone is the agro-climatic zone of a district.
type AgroZone string

const (
	ZoneCoastalSaline  AgroZone = "Coastal Saline"
	ZoneHill           AgroZone = "Hill Zone"
	ZoneNewAlluvial    AgroZone = "New Alluvial"
	ZoneOldAlluvial    AgroZone = "Old Alluvial"
	ZoneRedLaterite    AgroZone = "Red Laterite"
	ZoneTerai          AgroZone = "Terai"
	ZoneWesternPlateau AgroZone = "Western Plateau Transition Zone"
)

// AgroZones lists every valid zone.
var AgroZones = []AgroZone{
	ZoneCoastalSaline,
	ZoneHill,
	ZoneNewAlluvial,
	ZoneOldAlluvial,
	ZoneRedLaterite,
	ZoneTerai,
	ZoneWesternPlateau,
}

// Valid reports whether z is one of the enumerated zones.
func (z AgroZone) Valid() bool {
	for _, known := range AgroZones {
		if z == known {
			return true
		}
	}
	return false
}

// FeatureColumns is the positional schema the predictor was trained on.
// The order matches the field order of FeatureVector and must not change.
var FeatureColumns = []string{
	"Crop",
	"Market",
	"AgroZone",
	"Season",
	"Rainfall(mm)",
	"AvgTemperature(°C)",
	"Humidity(%)",
	"SoilMoisture(%)",
	"DemandIndex",
	"Supply(quintals)",
	"FuelPriceIndex",
	"InflationRate(%)",
	"CommodityTrendIndex",
	"DateNumeric",
}

// NumericFeatureCount is the number of numeric columns, DateNumeric included.
const NumericFeatureCount = 10

// FeatureVector is the fixed-schema input of the price model.
type FeatureVector struct {
	Crop                string   `json:"crop"`
	Market              string   `json:"market"`
	AgroZone            AgroZone `json:"agroZone"`
	Season              Season   `json:"season"`
	Rainfall            float64  `json:"rainfallMm"`
	AvgTemperature      float64  `json:"avgTemperatureC"`
	Humidity            float64  `json:"humidityPct"`
	SoilMoisture        float64  `json:"soilMoisturePct"`
	DemandIndex         float64  `json:"demandIndex"`
	Supply              float64  `json:"supplyQuintals"`
	FuelPriceIndex      float64  `json:"fuelPriceIndex"`
	InflationRate       float64  `json:"inflationRatePct"`
	CommodityTrendIndex float64  `json:"commodityTrendIndex"`
	DateNumeric         int      `json:"dateNumeric"`
}

// Validate checks that every categorical field is set and every numeric field is finite.
func (f FeatureVector) Validate() error {
	switch {
	case f.Crop == "":
		return fmt.Errorf("%w: Crop", ErrIncompleteFeatures)
	case f.Market == "":
		return fmt.Errorf("%w: Market", ErrIncompleteFeatures)
	case f.AgroZone == "":
		return fmt.Errorf("%w: AgroZone", ErrIncompleteFeatures)
	case f.Season == "":
		return fmt.Errorf("%w: Season", ErrIncompleteFeatures)
	}
	numeric := f.NumericByColumn()
	for _, col := range FeatureColumns[4:] {
		v := numeric[col]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrIncompleteFeatures, col)
		}
	}
	if f.Rainfall < 0 {
		return fmt.Errorf("%w: negative rainfall %.2f", ErrIncompleteFeatures, f.Rainfall)
	}
	return nil
}

// Values returns the vector in FeatureColumns order.
func (f FeatureVector) Values() []any {
	return []any{
		f.Crop,
		f.Market,
		string(f.AgroZone),
		string(f.Season),
		f.Rainfall,
		f.AvgTemperature,
		f.Humidity,
		f.SoilMoisture,
		f.DemandIndex,
		f.Supply,
		f.FuelPriceIndex,
		f.InflationRate,
		f.CommodityTrendIndex,
		f.DateNumeric,
	}
}

// Categorical returns the categorical columns keyed by column name.
func (f FeatureVector) Categorical() map[string]string {
	return map[string]string{
		"Crop":     f.Crop,
		"Market":   f.Market,
		"AgroZone": string(f.AgroZone),
		"Season":   string(f.Season),
	}
}

// NumericByColumn returns the numeric columns keyed by column name.
func (f FeatureVector) NumericByColumn() map[string]float64 {
	return map[string]float64{
		"Rainfall(mm)":        f.Rainfall,
		"AvgTemperature(°C)":  f.AvgTemperature,
		"Humidity(%)":         f.Humidity,
		"SoilMoisture(%)":     f.SoilMoisture,
		"DemandIndex":         f.DemandIndex,
		"Supply(quintals)":    f.Supply,
		"FuelPriceIndex":      f.FuelPriceIndex,
		"InflationRate(%)":    f.InflationRate,
		"CommodityTrendIndex": f.CommodityTrendIndex,
		"DateNumeric":         float64(f.DateNumeric),
	}
}

// Numeric returns the numeric columns in schema order, as stored in the embedding column.
func (f FeatureVector) Numeric() []float32 {
	return []float32{
		float32(f.Rainfall),
		float32(f.AvgTemperature),
		float32(f.Humidity),
		float32(f.SoilMoisture),
		float32(f.DemandIndex),
		float32(f.Supply),
		float32(f.FuelPriceIndex),
		float32(f.InflationRate),
		float32(f.CommodityTrendIndex),
		float32(f.DateNumeric),
	}
}

// Value implements driver.Valuer so the vector can be stored as JSONB
func (f FeatureVector) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan implements sql.Scanner interface
func (f *FeatureVector) Scan(value interface{}) error {
	if value == nil {
		*f = FeatureVector{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("unsupported feature vector column type %T", value)
		}
		bytes = []byte(s)
	}
	return json.Unmarshal(bytes, f)
}
