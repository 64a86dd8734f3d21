package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"CropPulse/internal/domain/models"
	"CropPulse/internal/repository"
	icache "CropPulse/internal/service/cache"
	"CropPulse/internal/services/analytics"
	"CropPulse/internal/services/prediction"
	"CropPulse/internal/usecase"
	xhttp "CropPulse/pkg/http"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordsSource []models.PriceRecord

func (s recordsSource) Name() string { return "test" }

func (s recordsSource) LoadAll(context.Context) ([]models.PriceRecord, error) { return s, nil }

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fixture struct {
	e     *echo.Echo
	cache *icache.TTLCache
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	var recs []models.PriceRecord
	for i := 0; i < 60; i++ {
		recs = append(recs, models.PriceRecord{
			Date: end.AddDate(0, 0, i-59), Crop: "Wheat", State: "Punjab",
			Price: 2000 + float64(i), Rainfall: 10, Demand: 50,
		})
	}
	recs = append(recs, models.PriceRecord{Date: end, Crop: "Maize", State: "Gujarat", Price: 1500})

	store := repository.NewHistoricalStore(recordsSource(recs))
	require.NoError(t, store.Load(context.Background()))

	dir := t.TempDir()
	model := "crop: Wheat\nstate: Punjab\nintercept: 100\ncoefficients:\n  moving_average_7_day: 1\n  Rainfall: 2\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, repository.ModelFileName("Wheat", "Punjab")), []byte(model), 0o644))

	th := analytics.DefaultThresholds()
	vol := analytics.NewVolatilityAnalyzer(th)
	ma := usecase.NewMarketAnalytics(store, vol,
		analytics.NewSeasonalityAnalyzer(th),
		analytics.NewTrendAnalyzer(th),
		analytics.NewSentimentScorer(th),
		analytics.NewOpportunityEvaluator(th, vol),
		nil,
	)
	data := usecase.NewMarketData(store, models.DefaultCatalog())
	predict := usecase.NewPredictUseCase(store, prediction.NewPredictor(repository.NewFileModelSource(dir), nil), nil, nil, nil)

	ah := NewAnalyticsHandler(nil, ma, usecase.NewComprehensiveUseCase(ma), data)
	cache := icache.NewTTLCache()
	ah.SetCache(cache, time.Minute)

	e := echo.New()
	NewRouter(NewMarketHandler(nil, data, predict), ah).RegisterRoutes(e)
	return fixture{e: e, cache: cache}
}

func (f fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestCatalogEndpoints(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodGet, "/api/v1/crops", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var crops struct {
		Crops []string `json:"crops"`
		Total int      `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &crops))
	assert.Equal(t, 8, crops.Total)
	assert.Equal(t, "Arhar", crops.Crops[0])

	rec, env = f.do(t, http.MethodGet, "/api/v1/crops/wheat/states", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"crop":"Wheat"`)

	rec, env = f.do(t, http.MethodGet, "/api/v1/crops/banana/states", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, string(env.Data), "available_crops")

	rec, env = f.do(t, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"records":61`)
}

func TestPredictEndpoint(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodPost, "/api/v1/predict", `{"crop":"Wheat","state":"Punjab","date":"2024-07-01","rainfall":5,"demand":50}`)
	require.Equal(t, http.StatusOK, rec.Code, string(env.Data))
	var res models.PredictionResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	// ma7 over 06-24..06-30 is 2056
	assert.Equal(t, 2166.0, res.PredictedPrice)
	assert.Equal(t, "2024-07-01", res.Date)

	rec, env = f.do(t, http.MethodPost, "/api/v1/predict", `{"crop":"Wheat","state":"Punjab","date":"2024-07-01","demand":50}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 2206.0, res.PredictedPrice)
	require.NotNil(t, res.WeatherData)
	assert.NotEmpty(t, res.WeatherData.Warning)

	rec, env = f.do(t, http.MethodPost, "/api/v1/predict", `{"crop":"Maize","state":"Gujarat","date":"2024-07-01","rainfall":5}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, string(env.Data), "ERR_MODEL_NOT_FOUND")
	assert.Contains(t, string(env.Data), "supported_pairs")

	rec, env = f.do(t, http.MethodPost, "/api/v1/predict", `{"crop":"Wheat","state":"Punjab","date":"01/07/2024"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var verrs []xhttp.ValidationError
	require.NoError(t, json.Unmarshal(env.Data, &verrs))
	require.NotEmpty(t, verrs)
	assert.Equal(t, "ERR_DATETIME", verrs[0].Code)
	assert.Equal(t, "date", verrs[0].Field)
	assert.Equal(t, "2006-01-02", verrs[0].Params["layout"])
}

func TestHistoryEndpoint(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodGet, "/api/v1/history/wheat/punjab?days=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var h models.PriceHistory
	require.NoError(t, json.Unmarshal(env.Data, &h))
	assert.Equal(t, []float64{2057, 2058, 2059}, h.Prices)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/history/wheat/punjab?days=400", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsEndpoints(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodGet, "/api/v1/analytics/volatility/Wheat/Punjab?period_days=30", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var v models.VolatilityResult
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Equal(t, 30, v.PeriodDays)
	assert.Equal(t, 1, f.cache.Len())

	again, _ := f.do(t, http.MethodGet, "/api/v1/analytics/volatility/wheat/punjab?period_days=30", "")
	assert.Equal(t, rec.Body.String(), again.Body.String())
	assert.Equal(t, 1, f.cache.Len())

	rec, env = f.do(t, http.MethodGet, "/api/v1/analytics/volatility/Maize/Gujarat", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, string(env.Data), "ERR_INSUFFICIENT_DATA")

	rec, _ = f.do(t, http.MethodGet, "/api/v1/analytics/opportunities/Wheat/Punjab", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = f.do(t, http.MethodGet, "/api/v1/analytics/opportunities/Wheat/Punjab?predicted_price=2500", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var o models.OpportunityResult
	require.NoError(t, json.Unmarshal(env.Data, &o))
	assert.Equal(t, models.ActionHold, o.Action)
}

func TestComprehensiveEndpoint(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodGet, "/api/v1/analytics/comprehensive/Wheat/Punjab?predicted_price=2100", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rep models.ComprehensiveReport
	require.NoError(t, json.Unmarshal(env.Data, &rep))
	assert.NotEmpty(t, rep.ID)
	assert.NotNil(t, rep.Volatility)
	assert.NotNil(t, rep.ProfitOpportunities)
	assert.Contains(t, rep.Errors, usecase.PanelTrends)
}
