package middleware

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"CropPulse/internal/domain/models"
	domrepo "CropPulse/internal/domain/repository"
	applogger "CropPulse/pkg/logger"
)

// Sink is the downstream the pipeline feeds. Buffered alerts are retried as one batch.
type Sink interface {
	Process(ctx context.Context, a *models.OpportunityAlert) error
	ProcessBatch(ctx context.Context, alerts []*models.OpportunityAlert) error
}

// Throttle admits at most a budget of alerts per key.
type Throttle interface {
	Allow(key string) bool
}

// AlertPipeline sits between the alert scanner and Kafka. It validates and
// throttles alerts per crop/state pair, and buffers them while the sink fails.
type AlertPipeline struct {
	sink     Sink
	metrics  domrepo.Metrics
	throttle Throttle
	l        *applogger.Logger

	bufSize    int
	bufCh      chan *models.OpportunityAlert
	stopCh     chan struct{}
	done       chan struct{}
	maxBackoff time.Duration

	mu      sync.Mutex
	started bool
}

type PipelineOption func(*AlertPipeline)

// WithBufferSize sets how many alerts are held while the sink is failing.
func WithBufferSize(n int) PipelineOption {
	return func(p *AlertPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithThrottle limits alerts per pair; nil admits everything.
func WithThrottle(t Throttle) PipelineOption {
	return func(p *AlertPipeline) { p.throttle = t }
}

func WithLogger(l *applogger.Logger) PipelineOption {
	return func(p *AlertPipeline) { p.l = l }
}

// WithMaxBackoff caps the retry delay of the flush loop.
func WithMaxBackoff(d time.Duration) PipelineOption {
	return func(p *AlertPipeline) {
		if d > 0 {
			p.maxBackoff = d
		}
	}
}

func NewAlertPipeline(sink Sink, metrics domrepo.Metrics, opts ...PipelineOption) *AlertPipeline {
	p := &AlertPipeline{
		sink:       sink,
		metrics:    metrics,
		bufSize:    256,
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
		maxBackoff: 2 * time.Second,
		l:          applogger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.OpportunityAlert, p.bufSize)
	return p
}

// Start launches the background flush of buffered alerts.
func (p *AlertPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go p.flush(ctx)
}

func (p *AlertPipeline) flush(ctx context.Context) {
	defer close(p.done)
	backoff := 50 * time.Millisecond
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case a := <-p.bufCh:
			batch := p.drain(a)
			start := time.Now()
			if err := p.sink.ProcessBatch(ctx, batch); err != nil {
				p.metrics.RecordError("pipeline_flush")
				p.l.Warn("alert flush failed",
					applogger.Int("alerts", len(batch)),
					applogger.Duration("retry_in", backoff),
					applogger.Error(err),
				)
				select {
				case <-time.After(backoff):
				case <-p.stopCh:
					p.requeue(batch)
					return
				case <-ctx.Done():
					p.requeue(batch)
					return
				}
				if backoff < p.maxBackoff {
					backoff *= 2
				}
				p.requeue(batch)
				continue
			}
			p.metrics.RecordLatency("pipeline_flush", time.Since(start).Seconds())
			backoff = 50 * time.Millisecond
		}
	}
}

// drain collects first plus whatever else is buffered right now.
func (p *AlertPipeline) drain(first *models.OpportunityAlert) []*models.OpportunityAlert {
	batch := []*models.OpportunityAlert{first}
	for len(batch) < p.bufSize {
		select {
		case a := <-p.bufCh:
			batch = append(batch, a)
		default:
			return batch
		}
	}
	return batch
}

func (p *AlertPipeline) requeue(batch []*models.OpportunityAlert) {
	for _, a := range batch {
		select {
		case p.bufCh <- a:
		default:
			p.metrics.RecordError("pipeline_buffer_drop")
		}
	}
}

// Stop ends the flush loop; buffered alerts left behind are logged and dropped.
func (p *AlertPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
	<-p.done
	if n := len(p.bufCh); n > 0 {
		p.l.Warn("alert pipeline stopped with buffered alerts", applogger.Int("dropped", n))
	}
}

// Buffered is the number of alerts waiting for the sink.
func (p *AlertPipeline) Buffered() int { return len(p.bufCh) }

// Process validates and throttles a, then forwards it, buffering on sink errors.
// Throttled alerts are dropped without error.
func (p *AlertPipeline) Process(ctx context.Context, a *models.OpportunityAlert) error {
	start := time.Now()
	if err := validateAlert(a); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	key := strings.ToLower(a.Crop + "|" + a.State)
	if p.throttle != nil && !p.throttle.Allow(key) {
		p.metrics.RecordError("pipeline_throttle")
		p.l.Debug("alert throttled", applogger.String("pair", key))
		return nil
	}

	if err := p.sink.Process(ctx, a); err != nil {
		p.metrics.RecordError("pipeline_process")
		select {
		case p.bufCh <- a:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateAlert(a *models.OpportunityAlert) error {
	if a == nil {
		return fmt.Errorf("alert nil")
	}
	if a.Crop == "" || a.State == "" {
		return fmt.Errorf("alert without crop/state")
	}
	if a.CurrentPrice <= 0 || a.PredictedPrice <= 0 {
		return fmt.Errorf("alert prices must be positive")
	}
	switch a.Action {
	case models.ActionHold, models.ActionSellNow:
	default:
		return fmt.Errorf("alert action %q is not actionable", a.Action)
	}
	return nil
}
