package usecase

import (
	"context"
	"fmt"
	"time"

	"CropPulse/internal/domain/models"
	domrepo "CropPulse/internal/domain/repository"
	domsvc "CropPulse/internal/domain/service"
	applogger "CropPulse/pkg/logger"
	"CropPulse/pkg/util"
)

// PredictUseCase forecasts a price, fetching rainfall from the weather
// collaborator when the caller leaves it out.
type PredictUseCase struct {
	store     domrepo.PriceStore
	predictor domsvc.PricePredictor
	weather   domsvc.WeatherProvider // nil when weather lookups are disabled
	metrics   domrepo.Metrics
	l         *applogger.Logger

	weatherTimeout time.Duration
}

func NewPredictUseCase(store domrepo.PriceStore, predictor domsvc.PricePredictor, weather domsvc.WeatherProvider, metrics domrepo.Metrics, l *applogger.Logger) *PredictUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	return &PredictUseCase{
		store:          store,
		predictor:      predictor,
		weather:        weather,
		metrics:        metrics,
		l:              l,
		weatherTimeout: 10 * time.Second,
	}
}

func (uc *PredictUseCase) Predict(ctx context.Context, req *models.PredictRequest) (models.PredictionResult, error) {
	start := time.Now()
	date, err := util.ParseDate(req.Date)
	if err != nil {
		return models.PredictionResult{}, fmt.Errorf("invalid date %q: %w", req.Date, err)
	}
	if uc.store.Count() == 0 {
		return models.PredictionResult{}, models.DataUnavailable(errStoreEmpty)
	}

	var (
		rainfall float64
		weather  *models.WeatherReading
	)
	if req.Rainfall != nil {
		rainfall = *req.Rainfall
	} else {
		rainfall, weather = uc.rainfall(ctx, req.State, date)
	}

	series := uc.store.Filter(req.Crop, req.State, 0)
	res, err := uc.predictor.Predict(ctx, series, date, rainfall, req.Demand)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.RecordError("predict_" + string(models.KindOf(err)))
		}
		return models.PredictionResult{}, err
	}
	res.Date = req.Date
	res.WeatherData = weather

	if uc.metrics != nil {
		uc.metrics.RecordPrediction(res.Crop, res.State, res.PredictedPrice)
		uc.metrics.RecordLatency("predict", time.Since(start).Seconds())
	}
	return res, nil
}

// rainfall asks the weather collaborator and falls back to the default value.
func (uc *PredictUseCase) rainfall(ctx context.Context, state string, date time.Time) (float64, *models.WeatherReading) {
	if uc.weather == nil {
		return models.DefaultRainfall, models.WeatherWarning("weather lookup disabled")
	}
	wctx, cancel := context.WithTimeout(ctx, uc.weatherTimeout)
	defer cancel()

	reading := uc.weather.Fetch(wctx, state, date)
	if reading.Success {
		return reading.Rainfall, &reading
	}
	uc.l.Info("rainfall fell back to default",
		applogger.String("state", state),
		applogger.String("reason", reading.Error),
	)
	return reading.RainfallOrDefault(), models.WeatherWarning(reading.Error)
}

// Weather passes a lookup straight through to the collaborator.
func (uc *PredictUseCase) Weather(ctx context.Context, state string, date time.Time) models.WeatherReading {
	if uc.weather == nil {
		return models.FailedWeather("weather lookup disabled")
	}
	wctx, cancel := context.WithTimeout(ctx, uc.weatherTimeout)
	defer cancel()
	return uc.weather.Fetch(wctx, state, date)
}
