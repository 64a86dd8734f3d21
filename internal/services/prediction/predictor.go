package prediction

import (
	"context"
	"fmt"
	"time"

	"CropPulse/internal/domain/models"
	"CropPulse/internal/domain/repository"
	"CropPulse/internal/domain/service"
	"CropPulse/internal/services/features"
	"CropPulse/pkg/logger"
	"CropPulse/pkg/util"
)

// Predictor applies a trained model to the features of a target date and
// places the forecast against the pair's price history.
type Predictor struct {
	models repository.ModelSource
	log    *logger.Logger
}

func NewPredictor(src repository.ModelSource, log *logger.Logger) *Predictor {
	if log == nil {
		log = logger.Nop()
	}
	return &Predictor{models: src, log: log}
}

// Predict looks up the model for the series' pair and applies it.
func (p *Predictor) Predict(ctx context.Context, series models.PriceSeries, targetDate time.Time, rainfall, demand float64) (models.PredictionResult, error) {
	m, err := p.models.Model(ctx, series.Crop, series.State)
	if err != nil {
		return models.PredictionResult{}, err
	}
	return p.Apply(ctx, m, series, targetDate, rainfall, demand)
}

// Apply runs model m on the features derived from series.
func (p *Predictor) Apply(ctx context.Context, m repository.PriceModel, series models.PriceSeries, targetDate time.Time, rainfall, demand float64) (models.PredictionResult, error) {
	fv, err := features.BuildFeatures(series, targetDate, rainfall, demand)
	if err != nil {
		return models.PredictionResult{}, err
	}

	price, err := m.Predict(ctx, fv)
	if err != nil {
		return models.PredictionResult{}, fmt.Errorf("apply model for %s/%s: %w", series.Crop, series.State, err)
	}

	stats := Statistics(series, price)
	p.log.Debug("price predicted",
		logger.String("crop", series.Crop),
		logger.String("state", series.State),
		logger.String("date", util.FormatDate(targetDate)),
		logger.Float64("price", price),
		logger.Float64("ma7", fv.MovingAverage7Day),
	)

	return models.PredictionResult{
		PredictedPrice: util.Round2(price),
		Crop:           series.Crop,
		State:          series.State,
		Date:           util.FormatDate(targetDate),
		Rainfall:       rainfall,
		Demand:         demand,
		Features:       fv,
		Statistics:     stats,
	}, nil
}

// Statistics summarises the full series around a predicted price.
func Statistics(series models.PriceSeries, predicted float64) models.PredictionStatistics {
	prices := series.Prices()
	avg := features.Mean(prices)
	lo, hi := features.MinMax(prices)
	return models.PredictionStatistics{
		HistoricalAverage: util.Round2(avg),
		HistoricalMin:     util.Round2(lo),
		HistoricalMax:     util.Round2(hi),
		VsAveragePercent:  util.Round2(features.PctChange(avg, predicted)),
	}
}

var _ service.PricePredictor = (*Predictor)(nil)
