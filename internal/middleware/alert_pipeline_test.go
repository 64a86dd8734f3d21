package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"CropPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopMetrics struct {
	mu     sync.Mutex
	errors []string
}

func (m *nopMetrics) RecordPrediction(string, string, float64) {}
func (m *nopMetrics) RecordAlert(string)                       {}
func (m *nopMetrics) RecordLatency(string, float64)            {}
func (m *nopMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors = append(m.errors, kind)
	m.mu.Unlock()
}

type flakySink struct {
	mu      sync.Mutex
	fails   int
	got     []*models.OpportunityAlert
	batches []int
}

func (s *flakySink) ProcessBatch(_ context.Context, alerts []*models.OpportunityAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fails > 0 {
		s.fails--
		return errors.New("broker down")
	}
	s.batches = append(s.batches, len(alerts))
	s.got = append(s.got, alerts...)
	return nil
}

func (s *flakySink) Process(_ context.Context, a *models.OpportunityAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fails > 0 {
		s.fails--
		return errors.New("broker down")
	}
	s.got = append(s.got, a)
	return nil
}

func (s *flakySink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

type allowOnce map[string]bool

func (a allowOnce) Allow(key string) bool {
	if a[key] {
		return false
	}
	a[key] = true
	return true
}

func alert(crop string, action models.OpportunityAction) *models.OpportunityAlert {
	return &models.OpportunityAlert{Crop: crop, State: "Punjab", CurrentPrice: 2000, PredictedPrice: 2400, Action: action}
}

func TestPipelineValidatesAndThrottles(t *testing.T) {
	sink := &flakySink{}
	m := &nopMetrics{}
	p := NewAlertPipeline(sink, m, WithThrottle(allowOnce{}))

	assert.Error(t, p.Process(context.Background(), nil))
	assert.Error(t, p.Process(context.Background(), alert("Wheat", models.ActionMonitor)))

	require.NoError(t, p.Process(context.Background(), alert("Wheat", models.ActionHold)))
	require.NoError(t, p.Process(context.Background(), alert("Wheat", models.ActionHold)))
	require.NoError(t, p.Process(context.Background(), alert("Paddy", models.ActionSellNow)))

	assert.Equal(t, 2, sink.count())
	assert.Contains(t, m.errors, "pipeline_throttle")
}

func TestPipelineBuffersUntilSinkRecovers(t *testing.T) {
	sink := &flakySink{fails: 2}
	p := NewAlertPipeline(sink, &nopMetrics{}, WithMaxBackoff(100*time.Millisecond))

	err := p.Process(context.Background(), alert("Wheat", models.ActionHold))
	require.Error(t, err)
	assert.Equal(t, 1, p.Buffered())

	p.Start(context.Background())
	defer p.Stop()

	assert.Eventually(t, func() bool { return sink.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, p.Buffered())
}

func TestPipelineFlushesBufferAsOneBatch(t *testing.T) {
	sink := &flakySink{fails: 2}
	p := NewAlertPipeline(sink, &nopMetrics{}, WithMaxBackoff(100*time.Millisecond))

	require.Error(t, p.Process(context.Background(), alert("Wheat", models.ActionHold)))
	require.Error(t, p.Process(context.Background(), alert("Paddy", models.ActionSellNow)))
	require.Equal(t, 2, p.Buffered())

	p.Start(context.Background())
	defer p.Stop()

	assert.Eventually(t, func() bool { return sink.count() == 2 }, 2*time.Second, 10*time.Millisecond)
	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, []int{2}, sink.batches)
}
