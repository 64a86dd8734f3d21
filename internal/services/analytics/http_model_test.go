package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"CropPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteModelPredict(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var req remotePredictRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "Wheat", req.Crop)
		assert.Equal(t, 4.0, req.Features["month"])
		_ = json.NewEncoder(w).Encode(map[string]float64{"predicted_price": 2150.5})
	}))
	defer srv.Close()

	src := NewRemoteModelSource(NewHTTPServiceBase(srv.URL+"/", time.Second), 3)
	m, err := src.Model(context.Background(), "Wheat", "Punjab")
	require.NoError(t, err)

	y, err := m.Predict(context.Background(), models.FeatureVector{Month: 4})
	require.NoError(t, err)
	assert.Equal(t, 2150.5, y)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRemoteModelNotFoundIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	src := NewRemoteModelSource(NewHTTPServiceBase(srv.URL, time.Second), 3)
	m, _ := src.Model(context.Background(), "Rice", "Bihar")
	_, err := m.Predict(context.Background(), models.FeatureVector{})
	assert.ErrorIs(t, err, models.ErrModelNotFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRemoteModelMissingField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	m, _ := NewRemoteModelSource(NewHTTPServiceBase(srv.URL, time.Second), 1).Model(context.Background(), "Rice", "Bihar")
	_, err := m.Predict(context.Background(), models.FeatureVector{})
	assert.ErrorContains(t, err, "predicted_price")
}
