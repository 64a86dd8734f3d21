package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"CropPulse/internal/domain/models"
	domrepo "CropPulse/internal/domain/repository"
	pkgkafka "CropPulse/pkg/kafka"
)

type eventWriter interface {
	Write(ctx context.Context, msgs ...pkgkafka.Message) error
	Close() error
}

// KafkaAlertPublisher writes opportunity alerts as JSON events keyed by crop/state.
type KafkaAlertPublisher struct {
	w eventWriter
}

func NewKafkaAlertPublisher(w eventWriter) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{w: w}
}

func alertKey(a *models.OpportunityAlert) []byte {
	return []byte(strings.ToLower(a.Crop) + "|" + strings.ToLower(a.State))
}

func alertMessage(a *models.OpportunityAlert) (pkgkafka.Message, error) {
	v, err := json.Marshal(a)
	if err != nil {
		return pkgkafka.Message{}, fmt.Errorf("encode alert %s: %w", a.ID, err)
	}
	return pkgkafka.Message{
		Key:   alertKey(a),
		Value: v,
		Headers: map[string]string{
			"content-type": "application/json",
			"action":       string(a.Action),
		},
	}, nil
}

func (p *KafkaAlertPublisher) Publish(ctx context.Context, a *models.OpportunityAlert) error {
	return p.PublishBatch(ctx, []*models.OpportunityAlert{a})
}

// PublishBatch encodes every non-nil alert and writes them in one call.
func (p *KafkaAlertPublisher) PublishBatch(ctx context.Context, alerts []*models.OpportunityAlert) error {
	msgs := make([]pkgkafka.Message, 0, len(alerts))
	for _, a := range alerts {
		if a == nil {
			continue
		}
		m, err := alertMessage(a)
		if err != nil {
			return err
		}
		msgs = append(msgs, m)
	}
	return p.w.Write(ctx, msgs...)
}

func (p *KafkaAlertPublisher) Close() error {
	if p.w == nil {
		return nil
	}
	return p.w.Close()
}

var _ domrepo.AlertPublisher = (*KafkaAlertPublisher)(nil)
