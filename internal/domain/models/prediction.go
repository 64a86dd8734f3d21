package models

import (
	"encoding/json"
	"time"
)

type PredictionStatistics struct {
	HistoricalAverage float64 `json:"historical_average"`
	HistoricalMin     float64 `json:"historical_min"`
	HistoricalMax     float64 `json:"historical_max"`
	VsAveragePercent  float64 `json:"vs_average_percent"`
}

// PredictionResult is the point forecast plus historical context.
type PredictionResult struct {
	PredictedPrice float64              `json:"predicted_price"`
	Crop           string               `json:"crop"`
	State          string               `json:"state"`
	Date           string               `json:"date"`
	Rainfall       float64              `json:"rainfall"`
	Demand         float64              `json:"demand"`
	Features       FeatureVector        `json:"features"`
	Statistics     PredictionStatistics `json:"statistics"`
	WeatherData    *WeatherReading      `json:"weather_data,omitempty"`
}

// DefaultRainfall is used when no weather reading is available.
const DefaultRainfall = 25.0

// WeatherReading is the weather collaborator's answer for a state and date.
type WeatherReading struct {
	Success         bool     `json:"success"`
	Rainfall        float64  `json:"rainfall"`
	Temperature     *float64 `json:"temperature,omitempty"`
	Description     string   `json:"description,omitempty"`
	State           string   `json:"state,omitempty"`
	Date            string   `json:"date,omitempty"`
	Source          string   `json:"source,omitempty"`
	Error           string   `json:"error,omitempty"`
	DefaultRainfall *float64 `json:"default_rainfall,omitempty"`
	Warning         string   `json:"warning,omitempty"`
}

// MarshalJSON writes rainfall only for a successful reading, where 0 mm is a
// real measurement. Failures and warnings carry no rainfall key.
func (w WeatherReading) MarshalJSON() ([]byte, error) {
	type reading WeatherReading
	out := struct {
		reading
		Rainfall *float64 `json:"rainfall,omitempty"`
	}{reading: reading(w)}
	if w.Success {
		out.Rainfall = &w.Rainfall
	}
	return json.Marshal(out)
}

// RainfallOrDefault returns the measured rainfall or the fallback value.
func (w WeatherReading) RainfallOrDefault() float64 {
	if w.Success {
		return w.Rainfall
	}
	if w.DefaultRainfall != nil {
		return *w.DefaultRainfall
	}
	return DefaultRainfall
}

// FailedWeather builds an unsuccessful reading carrying the fallback rainfall.
func FailedWeather(msg string) WeatherReading {
	def := DefaultRainfall
	return WeatherReading{Success: false, Error: msg, DefaultRainfall: &def}
}

// WeatherWarning is what a prediction carries when the rainfall had to fall back.
func WeatherWarning(msg string) *WeatherReading {
	return &WeatherReading{Warning: msg}
}

// PriceHistory is the last N observations of a pair, column oriented.
type PriceHistory struct {
	Crop     string    `json:"crop"`
	State    string    `json:"state"`
	Dates    []string  `json:"dates"`
	Prices   []float64 `json:"prices"`
	Rainfall []float64 `json:"rainfall"`
	Demand   []float64 `json:"demand"`
}

// OpportunityAlert is published when a scheduled scan finds an actionable pair.
type OpportunityAlert struct {
	ID              string            `json:"id"`
	Crop            string            `json:"crop"`
	State           string            `json:"state"`
	TargetDate      string            `json:"target_date"`
	CurrentPrice    float64           `json:"current_price"`
	PredictedPrice  float64           `json:"predicted_price"`
	ProfitPercent   float64           `json:"profit_percent"`
	Action          OpportunityAction `json:"action"`
	ConfidenceLevel string            `json:"confidence_level"`
	Message         string            `json:"message"`
	CreatedAt       time.Time         `json:"created_at"`
}
