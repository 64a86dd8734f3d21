package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CropPulse/internal/domain/models"

	"github.com/google/uuid"
)

// Panel names, also the keys of ComprehensiveReport.Errors.
const (
	PanelVolatility    = "volatility"
	PanelSeasonal      = "seasonal_patterns"
	PanelTrends        = "trends"
	PanelSentiment     = "sentiment"
	PanelOpportunities = "profit_opportunities"
)

// ComprehensiveUseCase fans the analyzers out concurrently and merges their panels.
type ComprehensiveUseCase struct {
	analytics *MarketAnalytics
	timeout   time.Duration
	now       func() time.Time
}

func NewComprehensiveUseCase(a *MarketAnalytics) *ComprehensiveUseCase {
	return &ComprehensiveUseCase{analytics: a, timeout: 10 * time.Second, now: time.Now}
}

// Report builds the report for a pair. A failed panel is reported in Errors
// and never fails the report. The opportunity panel needs predictedPrice > 0.
func (uc *ComprehensiveUseCase) Report(ctx context.Context, crop, state string, predictedPrice float64) (*models.ComprehensiveReport, error) {
	if crop == "" || state == "" {
		return nil, fmt.Errorf("crop and state required")
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := &models.ComprehensiveReport{
		ID:        uuid.NewString(),
		Crop:      crop,
		State:     state,
		Timestamp: uc.now().UTC(),
		Errors:    map[string]models.PanelError{},
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	panels := map[string]func() (interface{}, error){
		PanelVolatility: func() (interface{}, error) {
			return uc.analytics.Volatility(crop, state, DefaultVolatilityDays)
		},
		PanelSeasonal: func() (interface{}, error) {
			return uc.analytics.Seasonal(crop, state)
		},
		PanelTrends: func() (interface{}, error) {
			return uc.analytics.Trends(crop, state, DefaultTrendYears)
		},
		PanelSentiment: func() (interface{}, error) {
			return uc.analytics.Sentiment(crop, state, predictedPrice)
		},
	}
	if predictedPrice > 0 {
		panels[PanelOpportunities] = func() (interface{}, error) {
			return uc.analytics.Opportunities(crop, state, predictedPrice, DefaultThresholdPercent)
		}
	}

	ch := make(chan item, len(panels))
	var wg sync.WaitGroup
	for name, run := range panels {
		wg.Add(1)
		go func(name string, run func() (interface{}, error)) {
			defer wg.Done()
			v, err := run()
			ch <- item{name, v, err}
		}(name, run)
	}
	go func() { wg.Wait(); close(ch) }()

	pending := make(map[string]bool, len(panels))
	for name := range panels {
		pending[name] = true
	}

collect:
	for {
		select {
		case it, ok := <-ch:
			if !ok {
				break collect
			}
			delete(pending, it.name)
			if it.err != nil {
				res.Errors[it.name] = models.PanelErrorFrom(it.err)
				continue
			}
			switch v := it.val.(type) {
			case models.VolatilityResult:
				res.Volatility = &v
			case models.SeasonalResult:
				res.SeasonalPatterns = &v
			case models.TrendResult:
				res.Trends = &v
			case models.SentimentResult:
				res.Sentiment = &v
			case models.OpportunityResult:
				res.ProfitOpportunities = &v
			}
		case <-ctx.Done():
			for name := range pending {
				res.Errors[name] = models.PanelError{Message: ctx.Err().Error()}
			}
			break collect
		}
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}
