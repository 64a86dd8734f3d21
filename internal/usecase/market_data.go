package usecase

import (
	"CropPulse/internal/domain/models"
	domrepo "CropPulse/internal/domain/repository"
	"CropPulse/pkg/util"
)

// MarketData serves the catalog and raw price history.
type MarketData struct {
	store   domrepo.PriceStore
	catalog *models.Catalog
}

func NewMarketData(store domrepo.PriceStore, catalog *models.Catalog) *MarketData {
	return &MarketData{store: store, catalog: catalog}
}

func (m *MarketData) Crops() []string { return m.catalog.Crops() }

// States returns the canonical crop name and its states.
func (m *MarketData) States(crop string) (string, []string, bool) {
	return m.catalog.States(crop)
}

// Pairs lists every supported crop/state combination.
func (m *MarketData) Pairs() []models.Pair { return m.catalog.Pairs() }

// RecordCount is the number of loaded records.
func (m *MarketData) RecordCount() int { return m.store.Count() }

// History returns the last days records of the pair. An unknown pair yields empty columns.
func (m *MarketData) History(crop, state string, days int) (models.PriceHistory, error) {
	if m.store.Count() == 0 {
		return models.PriceHistory{}, models.DataUnavailable(errStoreEmpty)
	}
	s := m.store.Filter(crop, state, 0).Tail(days)
	h := models.PriceHistory{
		Crop:     s.Crop,
		State:    s.State,
		Dates:    make([]string, 0, s.Len()),
		Prices:   make([]float64, 0, s.Len()),
		Rainfall: make([]float64, 0, s.Len()),
		Demand:   make([]float64, 0, s.Len()),
	}
	for _, r := range s.Records {
		h.Dates = append(h.Dates, util.FormatDate(r.Date))
		h.Prices = append(h.Prices, util.Round2(r.Price))
		h.Rainfall = append(h.Rainfall, util.Round2(r.Rainfall))
		h.Demand = append(h.Demand, util.Round2(r.Demand))
	}
	return h, nil
}
