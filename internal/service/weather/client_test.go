package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CropPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New("key", srv.URL+"/", time.Second, models.DefaultCatalog())
	c.now = func() time.Time { return today }
	return c
}

func TestFetchForecastAveragesRain(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(`{"list":[
			{"main":{"temp":31.26},"weather":[{"description":"light rain"}],"rain":{"3h":3}},
			{"main":{"temp":30},"weather":[{"description":"clouds"}]},
			{"main":{"temp":29},"rain":{"3h":1.5}}
		]}`))
	})

	r := c.Fetch(context.Background(), "Punjab", today.AddDate(0, 0, 2))
	require.True(t, r.Success, r.Error)
	assert.Equal(t, "/forecast", gotPath)
	assert.Equal(t, 1.5, r.Rainfall)
	require.NotNil(t, r.Temperature)
	assert.Equal(t, 31.3, *r.Temperature)
	assert.Equal(t, "light rain", r.Description)
	assert.Equal(t, "2024-06-12", r.Date)
	assert.Equal(t, SourceName, r.Source)
}

func TestFetchPastUsesCurrentWeather(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"main":{"temp":25},"weather":[{"description":"haze"}],"rain":{"3h":4.256}}`))
	})

	r := c.Fetch(context.Background(), "Gujarat", today.AddDate(0, 0, -2))
	require.True(t, r.Success, r.Error)
	assert.Equal(t, "/weather", gotPath)
	assert.Equal(t, 4.26, r.Rainfall)
	assert.Equal(t, "haze", r.Description)
}

func TestFetchFallbacks(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad key", http.StatusUnauthorized)
	})

	r := c.Fetch(context.Background(), "Atlantis", today)
	assert.False(t, r.Success)
	assert.Equal(t, "Coordinates not available for Atlantis", r.Error)
	assert.Nil(t, r.DefaultRainfall)

	r = c.Fetch(context.Background(), "Punjab", today.AddDate(0, 0, 30))
	assert.False(t, r.Success)
	assert.Contains(t, r.Error, "Date is too far")
	assert.Equal(t, models.DefaultRainfall, r.RainfallOrDefault())

	r = c.Fetch(context.Background(), "Punjab", today)
	assert.False(t, r.Success)
	assert.Contains(t, r.Error, "API Error")
	require.NotNil(t, r.DefaultRainfall)
	assert.Equal(t, 25.0, *r.DefaultRainfall)
	assert.Equal(t, 1, calls)
}

func TestFetchWithoutKey(t *testing.T) {
	c := New("", "http://unused", 0, models.DefaultCatalog())
	r := c.Fetch(context.Background(), "Punjab", time.Now())
	assert.False(t, r.Success)
	assert.Equal(t, models.DefaultRainfall, r.RainfallOrDefault())
}

func TestDryDayKeepsZeroRainfall(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"main":{"temp":38.4},"weather":[{"description":"clear sky"}]}`))
	})

	r := c.Fetch(context.Background(), "Punjab", today.AddDate(0, 0, -1))
	require.True(t, r.Success, r.Error)
	assert.Equal(t, 0.0, r.Rainfall)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &body))
	assert.Contains(t, body, "rainfall")
	assert.Equal(t, 0.0, body["rainfall"])

	var back models.WeatherReading
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, r.Rainfall, back.Rainfall)
	assert.True(t, back.Success)
}

func TestFailuresCarryNoRainfallKey(t *testing.T) {
	for name, r := range map[string]interface{}{
		"failed":  models.FailedWeather("Date is too far (30 days). API data not available."),
		"warning": models.WeatherWarning("weather lookup disabled"),
	} {
		b, err := json.Marshal(r)
		require.NoError(t, err, name)
		assert.NotContains(t, string(b), `"rainfall"`, name)
	}
	b, _ := json.Marshal(models.FailedWeather("x"))
	assert.Contains(t, string(b), `"default_rainfall":25`)
}
