package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"CropPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Date,Crop,State,Price,Rainfall,Demand
2024-01-03,Wheat,Punjab,2100,12.5,80
2024-01-01,Wheat,Punjab,2000,10,75
2024-01-02,wheat,punjab,2050,,
2024-01-01,Paddy,West Bengal,1800,30,60
2024-02-15,Wheat,Punjab,2300,5,90
`

func TestReadPriceCSV(t *testing.T) {
	recs, err := ReadPriceCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, recs, 5)

	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), recs[0].Date)
	assert.Equal(t, 2100.0, recs[0].Price)
	assert.Equal(t, 12.5, recs[0].Rainfall)
	assert.Equal(t, 0.0, recs[2].Demand)
	assert.Equal(t, "West Bengal", recs[3].State)
}

func TestReadPriceCSVErrors(t *testing.T) {
	_, err := ReadPriceCSV(context.Background(), strings.NewReader(""))
	assert.Error(t, err)

	_, err = ReadPriceCSV(context.Background(), strings.NewReader("Date,Crop,State\n2024-01-01,Wheat,Punjab\n"))
	assert.ErrorContains(t, err, "price")

	_, err = ReadPriceCSV(context.Background(), strings.NewReader("Date,Crop,State,Price\nyesterday,Wheat,Punjab,10\n"))
	assert.ErrorContains(t, err, "line 2")
}

type staticSource struct {
	recs []models.PriceRecord
	err  error
}

func (s staticSource) Name() string { return "static" }

func (s staticSource) LoadAll(context.Context) ([]models.PriceRecord, error) { return s.recs, s.err }

func TestHistoricalStoreFilter(t *testing.T) {
	recs, err := ReadPriceCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	store := NewHistoricalStore(staticSource{recs: recs})
	require.NoError(t, store.Load(context.Background()))
	assert.Equal(t, 5, store.Count())
	assert.True(t, store.Loaded())

	ser := store.Filter("WHEAT", "punjab", 0)
	require.Equal(t, 4, ser.Len())
	assert.Equal(t, []float64{2000, 2050, 2100, 2300}, ser.Prices())

	// window is measured from the pair's own last date
	win := store.Filter("Wheat", "Punjab", 43)
	assert.Equal(t, []float64{2100, 2300}, win.Prices())

	empty := store.Filter("Cotton", "Gujarat", 30)
	assert.True(t, empty.Empty())
	assert.Equal(t, "Cotton", empty.Crop)

	assert.Equal(t, []models.Pair{
		{Crop: "Paddy", State: "West Bengal"},
		{Crop: "Wheat", State: "Punjab"},
	}, store.Pairs())
}

func TestHistoricalStoreMatchesNamesExactly(t *testing.T) {
	recs, err := ReadPriceCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	store := NewHistoricalStore(staticSource{recs: recs})
	require.NoError(t, store.Load(context.Background()))

	assert.Equal(t, 4, store.Filter("wHeAt", "PUNJAB", 0).Len())
	assert.True(t, store.Filter(" Wheat", "Punjab", 0).Empty())
	assert.True(t, store.Filter("Wheat", "Punjab ", 0).Empty())
}

func TestHistoricalStoreLoadFailure(t *testing.T) {
	store := NewHistoricalStore(staticSource{err: errors.New("disk gone")})
	err := store.Load(context.Background())
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
	assert.False(t, store.Loaded())
	assert.Equal(t, 0, store.Count())
}

func TestCSVPriceSourceMissingFile(t *testing.T) {
	src := NewCSVPriceSource(filepath.Join(t.TempDir(), "missing.csv"))
	_, err := src.LoadAll(context.Background())
	assert.Error(t, err)
}

func TestFileModelSource(t *testing.T) {
	dir := t.TempDir()
	body := `crop: Wheat
state: Uttar Pradesh
intercept: 100
min_price: 50
coefficients:
  Rainfall: 2
  Demand: 1
  moving_average_7_day: 0.5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wheat_uttar_pradesh_price_model.yaml"), []byte(body), 0o644))

	src := NewFileModelSource(dir)
	m, err := src.Model(context.Background(), "Wheat", "Uttar Pradesh")
	require.NoError(t, err)

	y, err := m.Predict(context.Background(), models.FeatureVector{Rainfall: 10, Demand: 30, Month: 5, MovingAverage7Day: 2000})
	require.NoError(t, err)
	assert.Equal(t, 100+20+30+1000.0, y)

	again, err := src.Model(context.Background(), "wheat", "uttar pradesh")
	require.NoError(t, err)
	assert.Same(t, m, again)

	_, err = src.Model(context.Background(), "Rice", "Bihar")
	assert.ErrorIs(t, err, models.ErrModelNotFound)
}

func TestFileModelSourceRejectsUnknownFeature(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ModelFileName("Maize", "Punjab")),
		[]byte("intercept: 1\ncoefficients:\n  humidity: 3\n"), 0o644))

	_, err := NewFileModelSource(dir).Model(context.Background(), "Maize", "Punjab")
	assert.ErrorContains(t, err, "humidity")
}

func TestLinearModelFloor(t *testing.T) {
	m := &LinearModel{Intercept: -500, MinPrice: 1}
	y, err := m.Predict(context.Background(), models.FeatureVector{})
	require.NoError(t, err)
	assert.Equal(t, 1.0, y)
}
