package service

import (
	"context"
	"time"

	"CropPulse/internal/domain/models"
)

// VolatilityAnalyzer measures dispersion over a trailing window.
type VolatilityAnalyzer interface {
	Analyze(series models.PriceSeries, periodDays int) (models.VolatilityResult, error)
}

// SeasonalityAnalyzer finds the best and worst calendar months to sell.
type SeasonalityAnalyzer interface {
	Analyze(series models.PriceSeries) (models.SeasonalResult, error)
}

// TrendAnalyzer compares yearly averages over the most recent years.
type TrendAnalyzer interface {
	Analyze(series models.PriceSeries, years int) (models.TrendResult, error)
}

// SentimentScorer turns momentum indicators into a BUY/SELL/HOLD call.
// A predicted price of zero means no forecast.
type SentimentScorer interface {
	Score(series models.PriceSeries, predictedPrice float64) (models.SentimentResult, error)
}

// OpportunityEvaluator compares the current price against a forecast.
type OpportunityEvaluator interface {
	Evaluate(series models.PriceSeries, predictedPrice, thresholdPercent float64) (models.OpportunityResult, error)
}

// WeatherProvider fetches rainfall for a state on a date. It never fails:
// an unsuccessful reading carries the fallback rainfall.
type WeatherProvider interface {
	Fetch(ctx context.Context, state string, date time.Time) models.WeatherReading
}

// PricePredictor forecasts the price of a series' pair on a target date.
type PricePredictor interface {
	Predict(ctx context.Context, series models.PriceSeries, targetDate time.Time, rainfall, demand float64) (models.PredictionResult, error)
}
