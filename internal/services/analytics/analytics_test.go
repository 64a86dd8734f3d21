package analytics

import (
	"math/rand"
	"testing"
	"time"

	"CropPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

// daily builds a series with one record per day starting at start.
func daily(prices ...float64) models.PriceSeries {
	recs := make([]models.PriceRecord, len(prices))
	for i, p := range prices {
		recs[i] = models.PriceRecord{Date: start.AddDate(0, 0, i), Crop: "Wheat", State: "Punjab", Price: p}
	}
	return models.PriceSeries{Crop: "Wheat", State: "Punjab", Records: recs}
}

func constant(n int, p float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = p
	}
	return out
}

func ramp(n int, from, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)*step
	}
	return out
}

func TestVolatilityConstantSeriesIsLowRisk(t *testing.T) {
	a := NewVolatilityAnalyzer(DefaultThresholds())
	res, err := a.Analyze(daily(constant(20, 2000)...), 30)
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.VolatilityPercentage)
	assert.Equal(t, 0.0, res.DailyVolatility)
	assert.Equal(t, models.RiskLow, res.RiskLevel)
	assert.Equal(t, 1, res.RiskScore)
	assert.Equal(t, 20, res.DataPoints)
	assert.Equal(t, 2000.0, res.LatestPrice)
}

func TestVolatilityInsufficientData(t *testing.T) {
	a := NewVolatilityAnalyzer(DefaultThresholds())
	_, err := a.Analyze(daily(100, 101, 102), 30)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	var ae *models.AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 3, ae.DataPoints)
}

func TestVolatilityWindowAndBands(t *testing.T) {
	a := NewVolatilityAnalyzer(DefaultThresholds())
	// only the last 6 days survive a 5-day window
	prices := append(constant(30, 10), 100, 80, 120, 90, 110, 100)
	res, err := a.Analyze(daily(prices...), 5)
	require.NoError(t, err)
	assert.Equal(t, 6, res.DataPoints)
	assert.Equal(t, 100.0, res.AveragePrice)
	assert.Equal(t, models.PriceRange{Min: 80, Max: 120}, res.PriceRange)
	assert.Equal(t, models.RiskHigh, res.RiskLevel)
	assert.LessOrEqual(t, res.PriceRange.Min, res.AveragePrice)
	assert.GreaterOrEqual(t, res.PriceRange.Max, res.AveragePrice)

	assert.Equal(t, models.RiskLow, a.Classify(4.99))
	assert.Equal(t, models.RiskMedium, a.Classify(5))
	assert.Equal(t, models.RiskMedium, a.Classify(9.99))
	assert.Equal(t, models.RiskHigh, a.Classify(10))
}

// monthly builds records on the 15th of each given month of 2023 and 2024.
func monthly(means map[int]float64) models.PriceSeries {
	var recs []models.PriceRecord
	for _, y := range []int{2023, 2024} {
		for m := 1; m <= 12; m++ {
			p, ok := means[m]
			if !ok {
				continue
			}
			recs = append(recs, models.PriceRecord{
				Date:  time.Date(y, time.Month(m), 15, 0, 0, 0, 0, time.UTC),
				Price: p,
			})
		}
	}
	return models.PriceSeries{Crop: "Rice", State: "Bihar", Records: recs}
}

func TestSeasonalityBestWorstAndSeason(t *testing.T) {
	means := map[int]float64{}
	for m := 1; m <= 12; m++ {
		means[m] = 1000 + float64(m)*10
	}
	means[7] = 1500
	means[2] = 900

	a := NewSeasonalityAnalyzer(DefaultThresholds())
	res, err := a.Analyze(monthly(means))
	require.NoError(t, err)

	assert.Equal(t, 7, res.BestMonth.Month)
	assert.Equal(t, "July", res.BestMonth.Name)
	assert.Equal(t, 2, res.WorstMonth.Month)
	assert.Equal(t, SeasonKharif, res.PeakSeason)
	assert.Equal(t, 600.0, res.PriceDifference.Absolute)
	assert.InDelta(t, 66.67, res.PriceDifference.Percentage, 1e-9)
	assert.Equal(t, "Best time to sell: July (₹1500.00/quintal)", res.Recommendation)
	require.Len(t, res.MonthlyData, 12)
	assert.Equal(t, 2, res.MonthlyData[0].SampleSize)
	assert.Equal(t, 0.0, res.MonthlyData[0].PriceStd)
}

func TestSeasonalityTiesKeepFirstMonth(t *testing.T) {
	means := map[int]float64{}
	for m := 1; m <= 12; m++ {
		means[m] = 100
	}
	means[4], means[9] = 200, 200

	res, err := NewSeasonalityAnalyzer(DefaultThresholds()).Analyze(monthly(means))
	require.NoError(t, err)
	assert.Equal(t, 4, res.BestMonth.Month)
	assert.Equal(t, SeasonZaid, res.PeakSeason)
	assert.Equal(t, 1, res.WorstMonth.Month)
}

func TestSeasonalityOrderingSurvivesPermutation(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	var recs []models.PriceRecord
	for y := 2020; y <= 2023; y++ {
		for m := 1; m <= 12; m++ {
			for d := 1; d <= 3; d++ {
				recs = append(recs, models.PriceRecord{
					Date:  time.Date(y, time.Month(m), d*5, 0, 0, 0, 0, time.UTC),
					Price: 1000 + r.Float64()*500,
				})
			}
		}
	}
	a := NewSeasonalityAnalyzer(DefaultThresholds())
	base, err := a.Analyze(models.PriceSeries{Records: recs})
	require.NoError(t, err)

	r.Shuffle(len(recs), func(i, j int) { recs[i], recs[j] = recs[j], recs[i] })
	shuffled, err := a.Analyze(models.PriceSeries{Records: recs})
	require.NoError(t, err)

	assert.Equal(t, base.BestMonth.Month, shuffled.BestMonth.Month)
	assert.Equal(t, base.WorstMonth.Month, shuffled.WorstMonth.Month)
	for _, ms := range shuffled.MonthlyData {
		assert.GreaterOrEqual(t, shuffled.BestMonth.AveragePrice, ms.AveragePrice)
		assert.LessOrEqual(t, shuffled.WorstMonth.AveragePrice, ms.AveragePrice)
	}
}

func TestSeasonalityInsufficientData(t *testing.T) {
	_, err := NewSeasonalityAnalyzer(DefaultThresholds()).Analyze(daily(ramp(11, 100, 1)...))
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

// yearly builds twelve records per year at the given mean price.
func yearly(first int, means ...float64) models.PriceSeries {
	var recs []models.PriceRecord
	for i, mean := range means {
		for m := 1; m <= 12; m++ {
			recs = append(recs, models.PriceRecord{
				Date:  time.Date(first+i, time.Month(m), 1, 0, 0, 0, 0, time.UTC),
				Price: mean,
			})
		}
	}
	return models.PriceSeries{Crop: "Cotton", State: "Gujarat", Records: recs}
}

func TestCAGR(t *testing.T) {
	assert.InDelta(t, 10.0, CAGR(100, 121, 3), 1e-9)
	assert.Equal(t, 0.0, CAGR(100, 121, 1))
	assert.Equal(t, 0.0, CAGR(0, 121, 3))
}

func TestTrendIncreasing(t *testing.T) {
	a := NewTrendAnalyzer(DefaultThresholds())
	res, err := a.Analyze(yearly(2020, 50, 100, 110, 121), 3)
	require.NoError(t, err)

	assert.Equal(t, 3, res.YearsAnalyzed)
	require.Len(t, res.YearlyData, 3)
	assert.Equal(t, 2021, res.YearlyData[0].Year)
	require.Len(t, res.GrowthRates, 2)
	assert.Equal(t, 10.0, res.GrowthRates[0].GrowthPercentage)
	assert.Equal(t, 11.0, res.GrowthRates[1].AbsoluteChange)
	assert.Equal(t, 10.0, res.CAGR)
	assert.Equal(t, models.TrendIncreasing, res.TrendDirection)
	assert.Equal(t, 2021, res.PriceRange.LowestYear)
	assert.Equal(t, 2023, res.PriceRange.HighestYear)
}

func TestTrendDirections(t *testing.T) {
	a := NewTrendAnalyzer(DefaultThresholds())

	res, err := a.Analyze(yearly(2020, 100, 90, 80), 3)
	require.NoError(t, err)
	assert.Equal(t, models.TrendDecreasing, res.TrendDirection)

	res, err = a.Analyze(yearly(2020, 100, 102, 101), 3)
	require.NoError(t, err)
	assert.Equal(t, models.TrendStable, res.TrendDirection)
}

func TestTrendInsufficientData(t *testing.T) {
	a := NewTrendAnalyzer(DefaultThresholds())

	_, err := a.Analyze(daily(ramp(29, 100, 1)...), 3)
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	// enough records but all inside one year
	_, err = a.Analyze(daily(ramp(40, 100, 1)...), 3)
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	// two years exist but only one is kept
	_, err = a.Analyze(yearly(2020, 100, 110, 120), 1)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestRSIBoundaries(t *testing.T) {
	assert.Equal(t, 100.0, RSI(ramp(15, 100, 1), 14))
	assert.Equal(t, 0.0, RSI(ramp(15, 200, -1), 14))
	assert.Equal(t, 50.0, RSI(ramp(14, 100, 1), 14))
	assert.InDelta(t, 50.0, RSI([]float64{100, 101, 100, 101, 100, 101, 100, 101, 100, 101, 100, 101, 100, 101, 100}, 14), 1e-9)
}

func TestSentimentConfidenceAndLabel(t *testing.T) {
	s := NewSentimentScorer(DefaultThresholds())
	for score := -7; score <= 7; score++ {
		want := float64(score) * 15
		if want < 0 {
			want = -want
		}
		if want > 100 {
			want = 100
		}
		assert.Equal(t, want, s.Confidence(score), "score %d", score)
	}

	label, rec := s.Label(0)
	assert.Equal(t, models.SentimentNeutral, label)
	assert.Equal(t, RecommendHold, rec)
	label, rec = s.Label(3)
	assert.Equal(t, models.SentimentBullish, label)
	assert.Equal(t, RecommendBuy, rec)
	label, rec = s.Label(-3)
	assert.Equal(t, models.SentimentBearish, label)
	assert.Equal(t, RecommendSell, rec)
}

func TestSentimentRisingMarket(t *testing.T) {
	s := NewSentimentScorer(DefaultThresholds())
	res, err := s.Score(daily(ramp(40, 100, 2)...), 0)
	require.NoError(t, err)

	// RSI 100 (-2), momentum > 5 (+2), week and month gains (+1)
	assert.Equal(t, 1, res.SentimentScore)
	assert.Equal(t, models.SentimentNeutral, res.Sentiment)
	assert.Equal(t, 15.0, res.Confidence)
	assert.Equal(t, "Overbought", res.Indicators.RSIStatus)
	assert.Equal(t, "Strong Up", res.Indicators.MomentumStatus)
	assert.Equal(t, 178.0, res.CurrentPrice)

	// a strong forecast tips it bullish
	res, err = s.Score(daily(ramp(40, 100, 2)...), 250)
	require.NoError(t, err)
	assert.Equal(t, 3, res.SentimentScore)
	assert.Equal(t, models.SentimentBullish, res.Sentiment)
	assert.Equal(t, RecommendBuy, res.Recommendation)
}

func TestSentimentFallingMarket(t *testing.T) {
	s := NewSentimentScorer(DefaultThresholds())
	res, err := s.Score(daily(ramp(40, 300, -3)...), 100)
	require.NoError(t, err)

	// RSI 0 (+2), momentum (-2), changes (-1), forecast (-2)
	assert.Equal(t, -3, res.SentimentScore)
	assert.Equal(t, models.SentimentBearish, res.Sentiment)
	assert.Equal(t, RecommendSell, res.Recommendation)
	assert.Equal(t, "Oversold", res.Indicators.RSIStatus)
}

func TestSentimentInsufficientData(t *testing.T) {
	_, err := NewSentimentScorer(DefaultThresholds()).Score(daily(ramp(13, 100, 1)...), 0)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestOpportunityHold(t *testing.T) {
	e := NewOpportunityEvaluator(DefaultThresholds(), nil)
	res, err := e.Evaluate(daily(constant(10, 2000)...), 2400, 15)
	require.NoError(t, err)

	assert.True(t, res.OpportunityFound)
	assert.Equal(t, models.ActionHold, res.Action)
	assert.Equal(t, 20.0, res.PriceDifference.Percentage)
	assert.Equal(t, 400.0, res.PriceDifference.Absolute)
	assert.Equal(t, "Wait for price to reach ₹2400.00 for 20.0% profit", res.Message)
	assert.Equal(t, models.RiskLow, res.RiskAssessment)
	assert.Equal(t, ConfidenceMedium, res.ConfidenceLevel)
	assert.Equal(t, []models.ProfitScenario{
		{QuantityQuintal: 10, Profit: 4000},
		{QuantityQuintal: 50, Profit: 20000},
		{QuantityQuintal: 100, Profit: 40000},
	}, res.ProfitScenarios)
	assert.Equal(t, 1800.0, res.RecommendationDetails.StopLossPrice)
	assert.Equal(t, 30, res.RecommendationDetails.EstimatedDaysToTarget)
}

func TestOpportunitySellNowAndMonitor(t *testing.T) {
	e := NewOpportunityEvaluator(DefaultThresholds(), nil)

	res, err := e.Evaluate(daily(constant(10, 2000)...), 1700, 15)
	require.NoError(t, err)
	assert.Equal(t, models.ActionSellNow, res.Action)
	assert.True(t, res.RecommendationDetails.ShouldSellNow)
	assert.Equal(t, "Price may drop by 15.0%. Consider selling now", res.Message)

	res, err = e.Evaluate(daily(constant(10, 2000)...), 2100, 15)
	require.NoError(t, err)
	assert.Equal(t, models.ActionMonitor, res.Action)
	assert.False(t, res.OpportunityFound)
	assert.Equal(t, ConfidenceLow, res.ConfidenceLevel)
}

func TestOpportunityRiskFallsBackToMedium(t *testing.T) {
	e := NewOpportunityEvaluator(DefaultThresholds(), nil)
	// three points are too few for volatility
	res, err := e.Evaluate(daily(2000, 2000, 2000), 3000, 15)
	require.NoError(t, err)
	assert.Equal(t, models.RiskMedium, res.RiskAssessment)
	assert.Equal(t, ConfidenceMedium, res.ConfidenceLevel)
}

func TestOpportunityConfidence(t *testing.T) {
	e := NewOpportunityEvaluator(DefaultThresholds(), nil)
	assert.Equal(t, ConfidenceHigh, e.Confidence(models.RiskLow, 25))
	assert.Equal(t, ConfidenceHigh, e.Confidence(models.RiskLow, -25))
	assert.Equal(t, ConfidenceMedium, e.Confidence(models.RiskHigh, 15))
	assert.Equal(t, ConfidenceMedium, e.Confidence(models.RiskMedium, 2))
	assert.Equal(t, ConfidenceLow, e.Confidence(models.RiskHigh, 25))
	assert.Equal(t, ConfidenceLow, e.Confidence(models.RiskLow, 5))
}

func TestOpportunityNoData(t *testing.T) {
	_, err := NewOpportunityEvaluator(DefaultThresholds(), nil).Evaluate(models.PriceSeries{}, 100, 15)
	assert.ErrorIs(t, err, models.ErrNoData)
}

func TestThresholdOverrides(t *testing.T) {
	th, err := DefaultThresholds().WithOverrides(map[string]float64{"volatility_low": 3, "rsi_period": 10})
	require.NoError(t, err)
	assert.Equal(t, 3.0, th.VolatilityLow)
	assert.Equal(t, 10, th.RSIPeriod)

	_, err = DefaultThresholds().WithOverrides(map[string]float64{"nope": 1})
	assert.ErrorContains(t, err, "nope")

	_, err = DefaultThresholds().WithOverrides(map[string]float64{"volatility_low": 20})
	assert.Error(t, err)
}
