package analytics

import (
	"fmt"
	"time"

	"CropPulse/internal/domain/models"
	domsvc "CropPulse/internal/domain/service"
	"CropPulse/internal/services/features"
	"CropPulse/pkg/util"
)

const (
	SeasonKharif = "Kharif (Monsoon Season)"
	SeasonRabi   = "Rabi (Winter Season)"
	SeasonZaid   = "Zaid (Summer Season)"
)

// PeakSeason names the Indian cropping season a calendar month falls in.
func PeakSeason(month int) string {
	switch month {
	case 6, 7, 8, 9, 10:
		return SeasonKharif
	case 11, 12, 1, 2, 3:
		return SeasonRabi
	default:
		return SeasonZaid
	}
}

// SeasonalityAnalyzer groups the full history by calendar month.
type SeasonalityAnalyzer struct {
	th Thresholds
}

func NewSeasonalityAnalyzer(th Thresholds) *SeasonalityAnalyzer {
	return &SeasonalityAnalyzer{th: th}
}

type monthAgg struct {
	month  int
	prices []float64
	mean   float64
}

func (a *SeasonalityAnalyzer) Analyze(series models.PriceSeries) (models.SeasonalResult, error) {
	if series.Len() < a.th.MinSeasonal {
		return models.SeasonalResult{}, models.InsufficientData(
			fmt.Sprintf("Insufficient data for seasonal analysis (need at least %d records)", a.th.MinSeasonal),
			series.Len())
	}

	var byMonth [13][]float64
	for _, r := range series.Records {
		m := int(r.Date.Month())
		byMonth[m] = append(byMonth[m], r.Price)
	}

	// months in calendar order, so the first extreme wins ties
	aggs := make([]monthAgg, 0, 12)
	for m := 1; m <= 12; m++ {
		if len(byMonth[m]) == 0 {
			continue
		}
		aggs = append(aggs, monthAgg{month: m, prices: byMonth[m], mean: features.Mean(byMonth[m])})
	}

	best, worst := aggs[0], aggs[0]
	monthly := make([]models.MonthStat, 0, len(aggs))
	for _, ag := range aggs {
		if ag.mean > best.mean {
			best = ag
		}
		if ag.mean < worst.mean {
			worst = ag
		}
		monthly = append(monthly, models.MonthStat{
			Month:        ag.month,
			MonthName:    time.Month(ag.month).String(),
			AveragePrice: util.Round2(ag.mean),
			MedianPrice:  util.Round2(features.Median(ag.prices)),
			PriceStd:     util.Round2(features.SampleStd(ag.prices)),
			SampleSize:   len(ag.prices),
		})
	}

	diff := best.mean - worst.mean
	var diffPct float64
	if worst.mean != 0 {
		diffPct = diff / worst.mean * 100
	}
	bestName := time.Month(best.month).String()

	return models.SeasonalResult{
		Crop:  series.Crop,
		State: series.State,
		BestMonth: models.MonthRef{
			Month: best.month, Name: bestName, AveragePrice: util.Round2(best.mean),
		},
		WorstMonth: models.MonthRef{
			Month: worst.month, Name: time.Month(worst.month).String(), AveragePrice: util.Round2(worst.mean),
		},
		PriceDifference: models.PriceDifference{Absolute: util.Round2(diff), Percentage: util.Round2(diffPct)},
		PeakSeason:      PeakSeason(best.month),
		MonthlyData:     monthly,
		Recommendation:  fmt.Sprintf("Best time to sell: %s (₹%.2f/quintal)", bestName, best.mean),
	}, nil
}

var _ domsvc.SeasonalityAnalyzer = (*SeasonalityAnalyzer)(nil)
