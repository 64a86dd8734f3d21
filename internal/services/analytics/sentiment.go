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
	RecommendBuy  = "BUY"
	RecommendSell = "SELL"
	RecommendHold = "HOLD"
)

// SentimentScorer turns oscillator and momentum readings into a discrete market view.
type SentimentScorer struct {
	th Thresholds
}

func NewSentimentScorer(th Thresholds) *SentimentScorer {
	return &SentimentScorer{th: th}
}

// Score rates the trailing window. A predictedPrice of 0 means no forecast.
func (s *SentimentScorer) Score(series models.PriceSeries, predictedPrice float64) (models.SentimentResult, error) {
	prices := series.Window(s.th.SentimentWindow).Prices()
	n := len(prices)
	if n < s.th.MinSentiment {
		return models.SentimentResult{}, models.InsufficientData(
			fmt.Sprintf("Insufficient data for sentiment analysis (need %d+ data points)", s.th.MinSentiment), n)
	}

	current := prices[n-1]
	change1w := features.PctChange(lookback(prices, s.th.WeekLookback), current)
	change1m := features.PctChange(lookback(prices, s.th.MonthLookback), current)
	rsi := RSI(prices, s.th.RSIPeriod)

	var momentum float64
	if n >= s.th.MomentumLookback {
		momentum = features.PctChange(prices[n-s.th.MomentumLookback], current)
	}

	score := 0
	switch {
	case rsi > s.th.RSIOverbought:
		score -= 2
	case rsi < s.th.RSIOversold:
		score += 2
	}
	switch {
	case momentum > s.th.MomentumBand:
		score += 2
	case momentum < -s.th.MomentumBand:
		score -= 2
	}
	switch {
	case change1w > s.th.WeekChangeBand && change1m > s.th.MonthChangeBand:
		score++
	case change1w < -s.th.WeekChangeBand && change1m < -s.th.MonthChangeBand:
		score--
	}
	if predictedPrice > 0 {
		delta := features.PctChange(current, predictedPrice)
		switch {
		case delta > s.th.ForecastDeltaBand:
			score += 2
		case delta < -s.th.ForecastDeltaBand:
			score -= 2
		}
	}

	label, rec := s.Label(score)
	return models.SentimentResult{
		Crop:           series.Crop,
		State:          series.State,
		Sentiment:      label,
		SentimentScore: score,
		Confidence:     util.RoundN(s.Confidence(score), 1),
		Recommendation: rec,
		CurrentPrice:   util.Round2(current),
		RSI:            util.Round2(rsi),
		Momentum:       util.Round2(momentum),
		PriceChanges: models.PriceChanges{
			OneWeek:  util.Round2(change1w),
			OneMonth: util.Round2(change1m),
		},
		Indicators: models.Indicators{
			RSIStatus:      s.rsiStatus(rsi),
			MomentumStatus: s.momentumStatus(momentum),
		},
	}, nil
}

// Label maps a score onto a sentiment class and the matching action.
func (s *SentimentScorer) Label(score int) (models.Sentiment, string) {
	switch {
	case score >= s.th.BullishScore:
		return models.SentimentBullish, RecommendBuy
	case score <= s.th.BearishScore:
		return models.SentimentBearish, RecommendSell
	default:
		return models.SentimentNeutral, RecommendHold
	}
}

// Confidence grows linearly with |score| and caps at 100.
func (s *SentimentScorer) Confidence(score int) float64 {
	return math.Min(math.Abs(float64(score))*s.th.ConfidenceStep, 100)
}

func (s *SentimentScorer) rsiStatus(rsi float64) string {
	switch {
	case rsi > s.th.RSIOverbought:
		return "Overbought"
	case rsi < s.th.RSIOversold:
		return "Oversold"
	default:
		return "Normal"
	}
}

func (s *SentimentScorer) momentumStatus(momentum float64) string {
	switch {
	case momentum > s.th.MomentumBand:
		return "Strong Up"
	case momentum < -s.th.MomentumBand:
		return "Strong Down"
	default:
		return "Moderate"
	}
}

// lookback returns the price k observations back, or the first one for short series.
func lookback(prices []float64, k int) float64 {
	if len(prices) >= k {
		return prices[len(prices)-k]
	}
	return prices[0]
}

// RSI is the Relative Strength Index over the trailing period deltas.
// Series shorter than period+1 read as neutral (50).
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 50
	}
	var gain, loss float64
	for i := len(prices) - period; i < len(prices); i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

var _ domsvc.SentimentScorer = (*SentimentScorer)(nil)
