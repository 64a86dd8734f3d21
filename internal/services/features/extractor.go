package features

import (
	"time"

	"CropPulse/internal/domain/models"
	"CropPulse/pkg/util"
)

// MovingAverageDays is the trailing window feeding moving_average_7_day.
const MovingAverageDays = 7

// BuildFeatures derives the model input for targetDate from the pair's full series.
//
// The moving average covers [targetDate-7d, targetDate-1d]. When that window is
// empty it falls back to the latest price strictly before targetDate, and when
// nothing precedes targetDate, to the latest price of the series.
func BuildFeatures(series models.PriceSeries, targetDate time.Time, rainfall, demand float64) (models.FeatureVector, error) {
	if series.Empty() {
		return models.FeatureVector{}, models.NoHistoricalData(series.Crop, series.State)
	}
	target := util.TruncateDay(targetDate)

	return models.FeatureVector{
		Rainfall:          rainfall,
		Demand:            demand,
		Month:             int(target.Month()),
		DayOfWeek:         util.WeekdayMondayZero(target),
		MovingAverage7Day: MovingAverage(series, target),
	}, nil
}

// MovingAverage returns the trailing 7-day mean before target with fallbacks.
// The series must be non-empty.
func MovingAverage(series models.PriceSeries, target time.Time) float64 {
	from := target.AddDate(0, 0, -MovingAverageDays)
	to := target.AddDate(0, 0, -1)

	var sum float64
	var n int
	var prior *models.PriceRecord
	for i := range series.Records {
		r := &series.Records[i]
		d := util.TruncateDay(r.Date)
		if !d.Before(from) && !d.After(to) {
			sum += r.Price
			n++
		}
		if d.Before(target) && (prior == nil || !d.Before(util.TruncateDay(prior.Date))) {
			prior = r
		}
	}
	if n > 0 {
		return sum / float64(n)
	}
	if prior != nil {
		return prior.Price
	}
	last, _ := series.Latest()
	return last.Price
}
