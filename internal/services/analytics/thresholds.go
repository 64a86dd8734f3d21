package analytics

import (
	"fmt"
	"sort"
	"strings"
)

// Default policy knobs for the analyzers.
const (
	VolatilityLowBand    = 5.0  // below: Low risk
	VolatilityMediumBand = 10.0 // below: Medium risk, otherwise High
	MinVolatilityPoints  = 5

	MinSeasonalRecords = 12

	MinTrendRecords   = 30
	MinTrendYears     = 2
	TrendBand         = 5.0
	DefaultTrendYears = 3

	SentimentWindowDays = 90
	MinSentimentPoints  = 14
	RSIPeriod           = 14
	RSIOverbought       = 70.0
	RSIOversold         = 30.0
	MomentumLookback    = 10
	MomentumBand        = 5.0
	WeekLookback        = 7
	MonthLookback       = 30
	WeekChangeBand      = 3.0
	MonthChangeBand     = 5.0
	ForecastDeltaBand   = 10.0
	BullishScore        = 3
	BearishScore        = -3
	ConfidencePerPoint  = 15.0

	OpportunityWindowDays   = 30
	DefaultProfitThreshold  = 15.0
	SellNowPercent          = -10.0
	HighConfidenceProfit    = 20.0
	MediumConfidenceProfit  = 10.0
	StopLossRatio           = 0.9
	EstimatedDaysToTarget   = 30
	DefaultVolatilityPeriod = 30
)

// ScenarioQuantities are the quintal amounts priced in opportunity scenarios.
var ScenarioQuantities = []int{10, 50, 100}

// Thresholds groups every policy knob so deployments can tune them without code changes.
type Thresholds struct {
	VolatilityLow    float64
	VolatilityMedium float64
	MinVolatility    int

	MinSeasonal int

	MinTrendRecords int
	MinTrendYears   int
	TrendBand       float64

	SentimentWindow   int
	MinSentiment      int
	RSIPeriod         int
	RSIOverbought     float64
	RSIOversold       float64
	MomentumLookback  int
	MomentumBand      float64
	WeekLookback      int
	MonthLookback     int
	WeekChangeBand    float64
	MonthChangeBand   float64
	ForecastDeltaBand float64
	BullishScore      int
	BearishScore      int
	ConfidenceStep    float64

	OpportunityWindow      int
	SellNowPercent         float64
	HighConfidenceProfit   float64
	MediumConfidenceProfit float64
	StopLossRatio          float64
	DaysToTarget           int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		VolatilityLow:    VolatilityLowBand,
		VolatilityMedium: VolatilityMediumBand,
		MinVolatility:    MinVolatilityPoints,

		MinSeasonal: MinSeasonalRecords,

		MinTrendRecords: MinTrendRecords,
		MinTrendYears:   MinTrendYears,
		TrendBand:       TrendBand,

		SentimentWindow:   SentimentWindowDays,
		MinSentiment:      MinSentimentPoints,
		RSIPeriod:         RSIPeriod,
		RSIOverbought:     RSIOverbought,
		RSIOversold:       RSIOversold,
		MomentumLookback:  MomentumLookback,
		MomentumBand:      MomentumBand,
		WeekLookback:      WeekLookback,
		MonthLookback:     MonthLookback,
		WeekChangeBand:    WeekChangeBand,
		MonthChangeBand:   MonthChangeBand,
		ForecastDeltaBand: ForecastDeltaBand,
		BullishScore:      BullishScore,
		BearishScore:      BearishScore,
		ConfidenceStep:    ConfidencePerPoint,

		OpportunityWindow:      OpportunityWindowDays,
		SellNowPercent:         SellNowPercent,
		HighConfidenceProfit:   HighConfidenceProfit,
		MediumConfidenceProfit: MediumConfidenceProfit,
		StopLossRatio:          StopLossRatio,
		DaysToTarget:           EstimatedDaysToTarget,
	}
}

func (t *Thresholds) knobs() map[string]func(float64) {
	return map[string]func(float64){
		"volatility_low":           func(v float64) { t.VolatilityLow = v },
		"volatility_medium":        func(v float64) { t.VolatilityMedium = v },
		"min_volatility_points":    func(v float64) { t.MinVolatility = int(v) },
		"min_seasonal_records":     func(v float64) { t.MinSeasonal = int(v) },
		"min_trend_records":        func(v float64) { t.MinTrendRecords = int(v) },
		"min_trend_years":          func(v float64) { t.MinTrendYears = int(v) },
		"trend_band":               func(v float64) { t.TrendBand = v },
		"sentiment_window_days":    func(v float64) { t.SentimentWindow = int(v) },
		"min_sentiment_points":     func(v float64) { t.MinSentiment = int(v) },
		"rsi_period":               func(v float64) { t.RSIPeriod = int(v) },
		"rsi_overbought":           func(v float64) { t.RSIOverbought = v },
		"rsi_oversold":             func(v float64) { t.RSIOversold = v },
		"momentum_lookback":        func(v float64) { t.MomentumLookback = int(v) },
		"momentum_band":            func(v float64) { t.MomentumBand = v },
		"week_lookback":            func(v float64) { t.WeekLookback = int(v) },
		"month_lookback":           func(v float64) { t.MonthLookback = int(v) },
		"week_change_band":         func(v float64) { t.WeekChangeBand = v },
		"month_change_band":        func(v float64) { t.MonthChangeBand = v },
		"forecast_delta_band":      func(v float64) { t.ForecastDeltaBand = v },
		"bullish_score":            func(v float64) { t.BullishScore = int(v) },
		"bearish_score":            func(v float64) { t.BearishScore = int(v) },
		"confidence_step":          func(v float64) { t.ConfidenceStep = v },
		"opportunity_window_days":  func(v float64) { t.OpportunityWindow = int(v) },
		"sell_now_percent":         func(v float64) { t.SellNowPercent = v },
		"high_confidence_profit":   func(v float64) { t.HighConfidenceProfit = v },
		"medium_confidence_profit": func(v float64) { t.MediumConfidenceProfit = v },
		"stop_loss_ratio":          func(v float64) { t.StopLossRatio = v },
		"days_to_target":           func(v float64) { t.DaysToTarget = int(v) },
	}
}

// WithOverrides returns a copy of t with the named knobs replaced.
// Unknown names are rejected so typos in config fail at startup.
func (t Thresholds) WithOverrides(overrides map[string]float64) (Thresholds, error) {
	out := t
	knobs := out.knobs()
	var unknown []string
	for name, v := range overrides {
		set, ok := knobs[strings.ToLower(name)]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		set(v)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return t, fmt.Errorf("unknown thresholds: %s", strings.Join(unknown, ", "))
	}
	if out.VolatilityLow > out.VolatilityMedium {
		return t, fmt.Errorf("volatility_low (%.2f) must not exceed volatility_medium (%.2f)", out.VolatilityLow, out.VolatilityMedium)
	}
	if out.RSIOversold > out.RSIOverbought {
		return t, fmt.Errorf("rsi_oversold (%.2f) must not exceed rsi_overbought (%.2f)", out.RSIOversold, out.RSIOverbought)
	}
	return out, nil
}
