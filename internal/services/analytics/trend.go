package analytics

import (
	"fmt"
	"math"

	"CropPulse/internal/domain/models"
	domsvc "CropPulse/internal/domain/service"
	"CropPulse/internal/services/features"
	"CropPulse/pkg/util"
)

// TrendAnalyzer compares yearly mean prices over the most recent years.
type TrendAnalyzer struct {
	th Thresholds
}

func NewTrendAnalyzer(th Thresholds) *TrendAnalyzer {
	return &TrendAnalyzer{th: th}
}

type yearAgg struct {
	year   int
	prices []float64
	mean   float64
}

func (a *TrendAnalyzer) Analyze(series models.PriceSeries, years int) (models.TrendResult, error) {
	if series.Len() < a.th.MinTrendRecords {
		return models.TrendResult{}, models.InsufficientData("Insufficient data for year-over-year analysis", series.Len())
	}
	if years <= 0 {
		years = DefaultTrendYears
	}

	// records are date ordered, so years arrive ascending
	var aggs []yearAgg
	for _, r := range series.Records {
		y := r.Date.Year()
		if n := len(aggs); n > 0 && aggs[n-1].year == y {
			aggs[n-1].prices = append(aggs[n-1].prices, r.Price)
			continue
		}
		aggs = append(aggs, yearAgg{year: y, prices: []float64{r.Price}})
	}
	if len(aggs) > years {
		aggs = aggs[len(aggs)-years:]
	}
	if len(aggs) < a.th.MinTrendYears {
		return models.TrendResult{}, models.InsufficientData(
			fmt.Sprintf("Need at least %d years of data for comparison", a.th.MinTrendYears), len(aggs))
	}

	yearly := make([]models.YearStat, 0, len(aggs))
	lowest, highest := 0, 0
	for i := range aggs {
		ag := &aggs[i]
		ag.mean = features.Mean(ag.prices)
		lo, hi := features.MinMax(ag.prices)
		yearly = append(yearly, models.YearStat{
			Year:         ag.year,
			AveragePrice: util.Round2(ag.mean),
			MedianPrice:  util.Round2(features.Median(ag.prices)),
			MinPrice:     util.Round2(lo),
			MaxPrice:     util.Round2(hi),
			DataPoints:   len(ag.prices),
		})
		if ag.mean < aggs[lowest].mean {
			lowest = i
		}
		if ag.mean > aggs[highest].mean {
			highest = i
		}
	}

	growth := make([]models.GrowthRate, 0, len(aggs)-1)
	pcts := make([]float64, 0, len(aggs)-1)
	for i := 1; i < len(aggs); i++ {
		prev, curr := aggs[i-1].mean, aggs[i].mean
		pct := features.PctChange(prev, curr)
		pcts = append(pcts, pct)
		growth = append(growth, models.GrowthRate{
			FromYear:         aggs[i-1].year,
			ToYear:           aggs[i].year,
			GrowthPercentage: util.Round2(pct),
			AbsoluteChange:   util.Round2(curr - prev),
		})
	}
	avgGrowth := features.Mean(pcts)

	return models.TrendResult{
		Crop:                series.Crop,
		State:               series.State,
		YearsAnalyzed:       len(aggs),
		YearlyData:          yearly,
		GrowthRates:         growth,
		CAGR:                util.Round2(CAGR(aggs[0].mean, aggs[len(aggs)-1].mean, len(aggs))),
		TrendDirection:      a.direction(avgGrowth),
		AverageYearlyGrowth: util.Round2(avgGrowth),
		PriceRange: models.YearRange{
			LowestYear:   aggs[lowest].year,
			LowestPrice:  util.Round2(aggs[lowest].mean),
			HighestYear:  aggs[highest].year,
			HighestPrice: util.Round2(aggs[highest].mean),
		},
	}, nil
}

// CAGR is the compound annual growth rate in percent across nYears yearly means.
func CAGR(first, last float64, nYears int) float64 {
	if nYears < 2 || first <= 0 {
		return 0
	}
	return (math.Pow(last/first, 1/float64(nYears-1)) - 1) * 100
}

func (a *TrendAnalyzer) direction(avgGrowth float64) models.TrendDirection {
	switch {
	case avgGrowth > a.th.TrendBand:
		return models.TrendIncreasing
	case avgGrowth < -a.th.TrendBand:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

var _ domsvc.TrendAnalyzer = (*TrendAnalyzer)(nil)
