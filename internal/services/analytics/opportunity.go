package analytics

import (
	"fmt"
	"math"

	"CropPulse/internal/domain/models"
	domsvc "CropPulse/internal/domain/service"
	"CropPulse/internal/services/features"
	"CropPulse/pkg/util"
)

const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// OpportunityEvaluator compares the latest price with a forecast and sizes the trade.
type OpportunityEvaluator struct {
	th  Thresholds
	vol *VolatilityAnalyzer
}

func NewOpportunityEvaluator(th Thresholds, vol *VolatilityAnalyzer) *OpportunityEvaluator {
	if vol == nil {
		vol = NewVolatilityAnalyzer(th)
	}
	return &OpportunityEvaluator{th: th, vol: vol}
}

func (e *OpportunityEvaluator) Evaluate(series models.PriceSeries, predictedPrice, thresholdPercent float64) (models.OpportunityResult, error) {
	w := series.Window(e.th.OpportunityWindow)
	latest, ok := w.Latest()
	if !ok {
		return models.OpportunityResult{}, models.NoData(series.Crop, series.State)
	}
	if thresholdPercent <= 0 {
		thresholdPercent = DefaultProfitThreshold
	}

	current := latest.Price
	diff := predictedPrice - current
	profitPct := features.PctChange(current, predictedPrice)

	// a failed volatility read leaves the risk at Medium
	risk := models.RiskMedium
	if v, err := e.vol.Analyze(series, DefaultVolatilityPeriod); err == nil {
		risk = v.RiskLevel
	}

	hold := profitPct >= thresholdPercent
	sellNow := profitPct <= e.th.SellNowPercent

	var (
		action  models.OpportunityAction
		message string
	)
	switch {
	case hold:
		action = models.ActionHold
		message = fmt.Sprintf("Wait for price to reach ₹%.2f for %.1f%% profit", predictedPrice, profitPct)
	case sellNow:
		action = models.ActionSellNow
		message = fmt.Sprintf("Price may drop by %.1f%%. Consider selling now", math.Abs(profitPct))
	default:
		action = models.ActionMonitor
		message = "Price expected to remain stable. Monitor market conditions"
	}

	scenarios := make([]models.ProfitScenario, 0, len(ScenarioQuantities))
	for _, q := range ScenarioQuantities {
		scenarios = append(scenarios, models.ProfitScenario{
			QuantityQuintal: q,
			Profit:          util.Round2(diff * float64(q)),
		})
	}

	return models.OpportunityResult{
		Crop:             series.Crop,
		State:            series.State,
		OpportunityFound: hold,
		CurrentPrice:     util.Round2(current),
		PredictedPrice:   util.Round2(predictedPrice),
		PriceDifference: models.PriceDifference{
			Absolute:   util.Round2(diff),
			Percentage: util.Round2(profitPct),
		},
		Action:          action,
		Message:         message,
		ConfidenceLevel: e.Confidence(risk, profitPct),
		RiskAssessment:  risk,
		ProfitScenarios: scenarios,
		RecommendationDetails: models.RecommendationDetails{
			ShouldHold:            hold,
			ShouldSellNow:         sellNow,
			EstimatedDaysToTarget: e.th.DaysToTarget,
			StopLossPrice:         util.Round2(current * e.th.StopLossRatio),
		},
	}, nil
}

// Confidence grades a forecast by the market's risk band and the size of the move.
func (e *OpportunityEvaluator) Confidence(risk models.RiskLevel, profitPct float64) string {
	move := math.Abs(profitPct)
	switch {
	case risk == models.RiskLow && move > e.th.HighConfidenceProfit:
		return ConfidenceHigh
	case risk == models.RiskMedium || (move >= e.th.MediumConfidenceProfit && move <= e.th.HighConfidenceProfit):
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

var _ domsvc.OpportunityEvaluator = (*OpportunityEvaluator)(nil)
