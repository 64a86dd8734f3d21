package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	AnalyticsLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "croppulse",
			Subsystem: "analytics",
			Name:      "latency_seconds",
			Help:      "Latency of analytics and prediction endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	AnalyticsErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "croppulse",
			Subsystem: "analytics",
			Name:      "errors_total",
			Help:      "Errors by endpoint and error kind",
		},
		[]string{"endpoint", "kind"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "croppulse",
			Subsystem: "analytics",
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by endpoint and outcome",
		},
		[]string{"endpoint", "result"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(AnalyticsLatency, AnalyticsErrors, CacheLookups)
	})
}

// ObserveSince records the latency of endpoint since start.
func ObserveSince(endpoint string, start time.Time) {
	AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// CountError increments the error counter for endpoint; kind may be empty.
func CountError(endpoint, kind string) {
	if kind == "" {
		kind = "internal"
	}
	AnalyticsErrors.WithLabelValues(endpoint, kind).Inc()
}

// CountCache records a cache hit or miss.
func CountCache(endpoint string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(endpoint, result).Inc()
}
