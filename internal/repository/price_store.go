package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"CropPulse/internal/domain/models"
	domrepo "CropPulse/internal/domain/repository"
	applogger "CropPulse/pkg/logger"
)

// HistoricalStore holds the full record set in memory, indexed by crop/state.
// It is loaded once and read-only afterwards.
type HistoricalStore struct {
	src domrepo.PriceSource
	l   *applogger.Logger

	mu     sync.RWMutex
	loaded bool
	count  int
	byPair map[string]models.PriceSeries
}

func NewHistoricalStore(src domrepo.PriceSource) *HistoricalStore {
	return &HistoricalStore{src: src, byPair: map[string]models.PriceSeries{}}
}

// SetLogger injects a structured logger.
func (s *HistoricalStore) SetLogger(l *applogger.Logger) { s.l = l }

// Load pulls every record from the source. A source failure is reported
// as DataUnavailable and leaves any previously loaded data in place.
func (s *HistoricalStore) Load(ctx context.Context) error {
	start := time.Now()
	recs, err := s.src.LoadAll(ctx)
	if err != nil {
		if s.l != nil {
			s.l.Error("price store load failed",
				applogger.String("source", s.src.Name()),
				applogger.Error(err),
			)
		}
		return models.DataUnavailable(err)
	}

	// stable so same-day rows keep source order
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Date.Before(recs[j].Date) })

	idx := make(map[string]models.PriceSeries)
	for _, r := range recs {
		k := pairKey(r.Crop, r.State)
		ser, ok := idx[k]
		if !ok {
			ser = models.PriceSeries{Crop: r.Crop, State: r.State}
		}
		ser.Records = append(ser.Records, r)
		idx[k] = ser
	}

	s.mu.Lock()
	s.byPair = idx
	s.count = len(recs)
	s.loaded = true
	s.mu.Unlock()

	if s.l != nil {
		s.l.Info("price store loaded",
			applogger.String("source", s.src.Name()),
			applogger.Int("records", len(recs)),
			applogger.Int("pairs", len(idx)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

// Filter returns the pair's series, optionally cut to a trailing window.
// No match yields an empty series named after the query.
func (s *HistoricalStore) Filter(crop, state string, windowDays int) models.PriceSeries {
	s.mu.RLock()
	ser, ok := s.byPair[pairKey(crop, state)]
	s.mu.RUnlock()
	if !ok {
		return models.PriceSeries{Crop: crop, State: state}
	}
	return ser.Window(windowDays)
}

// Count is the number of loaded records.
func (s *HistoricalStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

func (s *HistoricalStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Pairs lists the crop/state pairs present in the data, ordered by crop then state.
func (s *HistoricalStore) Pairs() []models.Pair {
	s.mu.RLock()
	out := make([]models.Pair, 0, len(s.byPair))
	for _, ser := range s.byPair {
		out = append(out, models.Pair{Crop: ser.Crop, State: ser.State})
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Crop != out[j].Crop {
			return out[i].Crop < out[j].Crop
		}
		return out[i].State < out[j].State
	})
	return out
}

func pairKey(crop, state string) string {
	return strings.ToLower(crop) + "|" + strings.ToLower(state)
}

var _ domrepo.PriceStore = (*HistoricalStore)(nil)
