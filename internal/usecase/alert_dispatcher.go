package usecase

import (
	"context"
	"fmt"
	"time"

	"CropPulse/internal/domain/models"
	drepo "CropPulse/internal/domain/repository"
)

// AlertDispatcher hands alerts to the publisher and records delivery metrics.
type AlertDispatcher struct {
	pub     drepo.AlertPublisher
	metrics drepo.Metrics
}

func NewAlertDispatcher(pub drepo.AlertPublisher, metrics drepo.Metrics) *AlertDispatcher {
	return &AlertDispatcher{pub: pub, metrics: metrics}
}

// Process publishes a single alert.
func (d *AlertDispatcher) Process(ctx context.Context, a *models.OpportunityAlert) error {
	if a == nil {
		return fmt.Errorf("alert is nil")
	}
	start := time.Now()
	if err := d.pub.Publish(ctx, a); err != nil {
		d.metrics.RecordError("publish")
		return fmt.Errorf("publish alert: %w", err)
	}
	d.metrics.RecordAlert(string(a.Action))
	d.metrics.RecordLatency("publish", time.Since(start).Seconds())
	return nil
}

// ProcessBatch publishes alerts in one write; a failure leaves all of them undelivered.
func (d *AlertDispatcher) ProcessBatch(ctx context.Context, alerts []*models.OpportunityAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	start := time.Now()
	if err := d.pub.PublishBatch(ctx, alerts); err != nil {
		d.metrics.RecordError("publish")
		return fmt.Errorf("publish %d alerts: %w", len(alerts), err)
	}
	for _, a := range alerts {
		d.metrics.RecordAlert(string(a.Action))
	}
	d.metrics.RecordLatency("publish_batch", time.Since(start).Seconds())
	return nil
}

// Close releases the publisher.
func (d *AlertDispatcher) Close() error {
	if d.pub == nil {
		return nil
	}
	return d.pub.Close()
}
