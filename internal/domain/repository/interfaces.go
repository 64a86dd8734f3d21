package repository

import (
	"context"

	"CropPulse/internal/domain/models"
)

// PriceSource loads the full historical record set once at startup.
type PriceSource interface {
	Name() string
	LoadAll(ctx context.Context) ([]models.PriceRecord, error)
}

// PriceStore provides read-only filtered access to the loaded record set.
type PriceStore interface {
	Filter(crop, state string, windowDays int) models.PriceSeries
	Count() int
}

// ModelSource returns the trained model for a crop/state pair.
// Implementations return models.ErrModelNotFound when none exists.
type ModelSource interface {
	Model(ctx context.Context, crop, state string) (PriceModel, error)
}

// PriceModel is an opaque regression over the five-feature vector.
type PriceModel interface {
	Predict(ctx context.Context, f models.FeatureVector) (float64, error)
}

// AlertPublisher delivers opportunity alerts downstream.
type AlertPublisher interface {
	Publish(ctx context.Context, a *models.OpportunityAlert) error
	PublishBatch(ctx context.Context, alerts []*models.OpportunityAlert) error
	Close() error
}

type Metrics interface {
	RecordPrediction(crop, state string, price float64)
	RecordAlert(action string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
