package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions   *prometheus.CounterVec
	alerts        *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastPredicted *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

var (
	defaultOnce sync.Once
	defaultRec  *Recorder
)

// New returns the process-wide recorder, registering its collectors on first use.
func New() *Recorder {
	defaultOnce.Do(func() {
		defaultRec = NewWithRegisterer(prometheus.DefaultRegisterer)
	})
	return defaultRec
}

// NewWithRegisterer builds a recorder whose collectors are registered on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "croppulse_predictions_total",
				Help: "Total number of price predictions served",
			},
			[]string{"crop", "state"},
		),
		alerts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "croppulse_alerts_published_total",
				Help: "Opportunity alerts published by action",
			},
			[]string{"action"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "croppulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPredicted: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "croppulse_last_predicted_price",
				Help: "Last predicted price per quintal for a crop/state pair",
			},
			[]string{"crop", "state"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "croppulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPrediction counts a forecast and keeps it as the pair's last price.
func (r *Recorder) RecordPrediction(crop, state string, price float64) {
	r.predictions.WithLabelValues(crop, state).Inc()
	r.lastPredicted.WithLabelValues(crop, state).Set(price)
}

// RecordAlert counts a published alert.
func (r *Recorder) RecordAlert(action string) {
	r.alerts.WithLabelValues(action).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
