package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"CropPulse/internal/domain/models"
	domrepo "CropPulse/internal/domain/repository"
	domsvc "CropPulse/internal/domain/service"
	"CropPulse/internal/services/features"
	applogger "CropPulse/pkg/logger"
	"CropPulse/pkg/util"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// trailing records averaged into the rainfall/demand inputs of a scan forecast
const scanInputRecords = 7

// AlertSink receives actionable alerts; the alert pipeline implements it.
type AlertSink interface {
	Process(ctx context.Context, a *models.OpportunityAlert) error
}

// ScanConfig holds the scanner schedule and policy.
type ScanConfig struct {
	Schedule         string // cron spec, five fields
	HorizonDays      int
	ThresholdPercent float64
}

// AlertScanner periodically forecasts every catalog pair HorizonDays past its
// last record and emits an alert when the opportunity is actionable.
type AlertScanner struct {
	cfg       ScanConfig
	pairs     func() []models.Pair
	store     domrepo.PriceStore
	predictor domsvc.PricePredictor
	opp       domsvc.OpportunityEvaluator
	sink      AlertSink
	metrics   domrepo.Metrics
	l         *applogger.Logger
	now       func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

func NewAlertScanner(
	cfg ScanConfig,
	catalog *models.Catalog,
	store domrepo.PriceStore,
	predictor domsvc.PricePredictor,
	opp domsvc.OpportunityEvaluator,
	sink AlertSink,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *AlertScanner {
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = 30
	}
	if cfg.ThresholdPercent <= 0 {
		cfg.ThresholdPercent = DefaultThresholdPercent
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &AlertScanner{
		cfg:       cfg,
		pairs:     catalog.Pairs,
		store:     store,
		predictor: predictor,
		opp:       opp,
		sink:      sink,
		metrics:   metrics,
		l:         l,
		now:       time.Now,
	}
}

// Start schedules Scan on the configured cron spec.
func (s *AlertScanner) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(s.cfg.Schedule, func() {
		n, err := s.Scan(ctx)
		if err != nil {
			s.l.Error("alert scan failed", applogger.Error(err))
			return
		}
		s.l.Info("alert scan finished", applogger.Int("alerts", n))
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", s.cfg.Schedule, err)
	}
	c.Start()
	s.cron = c
	s.running = true
	s.l.Info("alert scanner scheduled",
		applogger.String("schedule", s.cfg.Schedule),
		applogger.Int("horizon_days", s.cfg.HorizonDays),
	)
	return nil
}

// Shutdown stops the schedule and waits for a running scan.
func (s *AlertScanner) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.running = false
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return nil
	}
	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Scan checks every pair once and returns how many alerts were emitted.
// Pairs without data or model are skipped.
func (s *AlertScanner) Scan(ctx context.Context) (int, error) {
	start := time.Now()
	sent := 0
	var errs []error
	for _, p := range s.pairs() {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		a, err := s.check(ctx, p)
		if err != nil {
			switch models.KindOf(err) {
			case models.KindModelNotFound, models.KindNoHistoricalData, models.KindNoData, models.KindInsufficientData:
				s.l.Debug("alert scan skipped pair",
					applogger.String("crop", p.Crop),
					applogger.String("state", p.State),
					applogger.Error(err),
				)
			default:
				errs = append(errs, fmt.Errorf("%s/%s: %w", p.Crop, p.State, err))
			}
			continue
		}
		if a == nil {
			continue
		}
		if err := s.sink.Process(ctx, a); err != nil {
			errs = append(errs, fmt.Errorf("%s/%s: %w", p.Crop, p.State, err))
			continue
		}
		sent++
	}
	if s.metrics != nil {
		s.metrics.RecordLatency("alert_scan", time.Since(start).Seconds())
	}
	return sent, errors.Join(errs...)
}

// check forecasts one pair. A nil alert means nothing actionable.
func (s *AlertScanner) check(ctx context.Context, p models.Pair) (*models.OpportunityAlert, error) {
	series := s.store.Filter(p.Crop, p.State, 0)
	last, ok := series.Latest()
	if !ok {
		return nil, models.NoHistoricalData(p.Crop, p.State)
	}
	tail := series.Tail(scanInputRecords).Records
	rain := make([]float64, len(tail))
	demand := make([]float64, len(tail))
	for i, r := range tail {
		rain[i] = r.Rainfall
		demand[i] = r.Demand
	}

	target := last.Date.AddDate(0, 0, s.cfg.HorizonDays)
	pred, err := s.predictor.Predict(ctx, series, target, features.Mean(rain), features.Mean(demand))
	if err != nil {
		return nil, err
	}
	res, err := s.opp.Evaluate(series, pred.PredictedPrice, s.cfg.ThresholdPercent)
	if err != nil {
		return nil, err
	}
	if res.Action != models.ActionHold && res.Action != models.ActionSellNow {
		return nil, nil
	}
	return &models.OpportunityAlert{
		ID:              uuid.NewString(),
		Crop:            series.Crop,
		State:           series.State,
		TargetDate:      util.FormatDate(target),
		CurrentPrice:    res.CurrentPrice,
		PredictedPrice:  res.PredictedPrice,
		ProfitPercent:   res.PriceDifference.Percentage,
		Action:          res.Action,
		ConfidenceLevel: res.ConfidenceLevel,
		Message:         res.Message,
		CreatedAt:       s.now().UTC(),
	}, nil
}
