package analytics

import (
	"CropPulse/internal/domain/models"
	domsvc "CropPulse/internal/domain/service"
	"CropPulse/internal/services/features"
	"CropPulse/pkg/util"
)

// VolatilityAnalyzer measures price dispersion over a trailing window.
type VolatilityAnalyzer struct {
	th Thresholds
}

func NewVolatilityAnalyzer(th Thresholds) *VolatilityAnalyzer {
	return &VolatilityAnalyzer{th: th}
}

func (a *VolatilityAnalyzer) Analyze(series models.PriceSeries, periodDays int) (models.VolatilityResult, error) {
	w := series.Window(periodDays)
	prices := w.Prices()
	if len(prices) < a.th.MinVolatility {
		return models.VolatilityResult{}, models.InsufficientData("Insufficient data for volatility analysis", len(prices))
	}

	mean := features.Mean(prices)
	std := features.PopulationStd(prices)
	var volPct float64
	if mean != 0 {
		volPct = std / mean * 100
	}
	// np.std semantics: population std of simple returns, as a percentage.
	daily := features.PopulationStd(features.SimpleReturns(prices)) * 100
	lo, hi := features.MinMax(prices)
	risk := a.Classify(volPct)

	return models.VolatilityResult{
		Crop:                 series.Crop,
		State:                series.State,
		PeriodDays:           periodDays,
		VolatilityPercentage: util.Round2(volPct),
		DailyVolatility:      util.Round2(daily),
		RiskLevel:            risk,
		RiskScore:            risk.Score(),
		StandardDeviation:    util.Round2(std),
		AveragePrice:         util.Round2(mean),
		PriceRange:           models.PriceRange{Min: util.Round2(lo), Max: util.Round2(hi)},
		CoefficientVariation: util.Round2(volPct),
		DataPoints:           len(prices),
		LatestPrice:          util.Round2(prices[len(prices)-1]),
	}, nil
}

// Classify maps a volatility percentage onto a risk band.
func (a *VolatilityAnalyzer) Classify(volPct float64) models.RiskLevel {
	switch {
	case volPct < a.th.VolatilityLow:
		return models.RiskLow
	case volPct < a.th.VolatilityMedium:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

var _ domsvc.VolatilityAnalyzer = (*VolatilityAnalyzer)(nil)
