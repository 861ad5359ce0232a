package model

// CurrentWeather is the live observation at the requested coordinates.
// Temperature and Humidity are pointers so a provider can report them as missing.
type CurrentWeather struct {
	TempC       *float64 `json:"temp_c"`
	Humidity    *float64 `json:"humidity"`
	RainfallMM  float64  `json:"rainfall_mm"`
	Description string   `json:"description"`
}

// DailyForecast is one calendar day aggregated from 3-hour samples.
type DailyForecast struct {
	Date       string  `json:"date"` // YYYY-MM-DD
	TempC      float64 `json:"temp_c"`
	RainfallMM float64 `json:"rainfall_mm"`
}

// WeatherSnapshot is what the weather provider returns for a location.
type WeatherSnapshot struct {
	Current  CurrentWeather  `json:"current"`
	Forecast []DailyForecast `json:"forecast"` // at most 5 days, ascending by date
}
