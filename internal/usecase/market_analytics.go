package usecase

import (
	"errors"
	"time"

	"CropPulse/internal/domain/models"
	domrepo "CropPulse/internal/domain/repository"
	domsvc "CropPulse/internal/domain/service"
)

// Default parameters of the analytics endpoints.
const (
	DefaultVolatilityDays   = 30
	DefaultTrendYears       = 3
	DefaultThresholdPercent = 15.0
)

var errStoreEmpty = errors.New("no price records loaded")

// MarketAnalytics runs the analyzers against the pair's full history.
type MarketAnalytics struct {
	store     domrepo.PriceStore
	vol       domsvc.VolatilityAnalyzer
	seasonal  domsvc.SeasonalityAnalyzer
	trend     domsvc.TrendAnalyzer
	sentiment domsvc.SentimentScorer
	opp       domsvc.OpportunityEvaluator
	metrics   domrepo.Metrics
}

func NewMarketAnalytics(
	store domrepo.PriceStore,
	vol domsvc.VolatilityAnalyzer,
	seasonal domsvc.SeasonalityAnalyzer,
	trend domsvc.TrendAnalyzer,
	sentiment domsvc.SentimentScorer,
	opp domsvc.OpportunityEvaluator,
	metrics domrepo.Metrics,
) *MarketAnalytics {
	return &MarketAnalytics{
		store:     store,
		vol:       vol,
		seasonal:  seasonal,
		trend:     trend,
		sentiment: sentiment,
		opp:       opp,
		metrics:   metrics,
	}
}

func (a *MarketAnalytics) series(crop, state string) (models.PriceSeries, error) {
	if a.store.Count() == 0 {
		return models.PriceSeries{}, models.DataUnavailable(errStoreEmpty)
	}
	return a.store.Filter(crop, state, 0), nil
}

func (a *MarketAnalytics) observe(op string, start time.Time, err error) {
	if a.metrics == nil {
		return
	}
	a.metrics.RecordLatency(op, time.Since(start).Seconds())
	if err != nil {
		kind := string(models.KindOf(err))
		if kind == "" {
			kind = "internal"
		}
		a.metrics.RecordError(op + "_" + kind)
	}
}

func (a *MarketAnalytics) Volatility(crop, state string, periodDays int) (res models.VolatilityResult, err error) {
	defer func(start time.Time) { a.observe("volatility", start, err) }(time.Now())
	if periodDays <= 0 {
		periodDays = DefaultVolatilityDays
	}
	s, err := a.series(crop, state)
	if err != nil {
		return res, err
	}
	return a.vol.Analyze(s, periodDays)
}

func (a *MarketAnalytics) Seasonal(crop, state string) (res models.SeasonalResult, err error) {
	defer func(start time.Time) { a.observe("seasonal", start, err) }(time.Now())
	s, err := a.series(crop, state)
	if err != nil {
		return res, err
	}
	return a.seasonal.Analyze(s)
}

func (a *MarketAnalytics) Trends(crop, state string, years int) (res models.TrendResult, err error) {
	defer func(start time.Time) { a.observe("trends", start, err) }(time.Now())
	if years <= 0 {
		years = DefaultTrendYears
	}
	s, err := a.series(crop, state)
	if err != nil {
		return res, err
	}
	return a.trend.Analyze(s, years)
}

// Sentiment scores recent momentum; predictedPrice 0 means no forecast.
func (a *MarketAnalytics) Sentiment(crop, state string, predictedPrice float64) (res models.SentimentResult, err error) {
	defer func(start time.Time) { a.observe("sentiment", start, err) }(time.Now())
	s, err := a.series(crop, state)
	if err != nil {
		return res, err
	}
	return a.sentiment.Score(s, predictedPrice)
}

func (a *MarketAnalytics) Opportunities(crop, state string, predictedPrice, thresholdPercent float64) (res models.OpportunityResult, err error) {
	defer func(start time.Time) { a.observe("opportunities", start, err) }(time.Now())
	if thresholdPercent <= 0 {
		thresholdPercent = DefaultThresholdPercent
	}
	s, err := a.series(crop, state)
	if err != nil {
		return res, err
	}
	return a.opp.Evaluate(s, predictedPrice, thresholdPercent)
}
