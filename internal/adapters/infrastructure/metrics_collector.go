// Package infrastructure holds cross-cutting adapters: metrics collection.
package infrastructure

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector exports engine metrics to Prometheus. Provider call
// outcomes keep quota exhaustion distinct from network failure: recovery is
// identical but the operational signal is not.
type MetricsCollector struct {
	providerCalls       *prometheus.CounterVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	simulatedPoints     prometheus.Counter
	aggregationDuration prometheus.Histogram
}

var (
	collector     *MetricsCollector
	collectorOnce sync.Once
)

// NewMetricsCollector returns the process-wide collector. Prometheus forbids
// duplicate registration, so construction is once-guarded.
func NewMetricsCollector() *MetricsCollector {
	collectorOnce.Do(func() {
		collector = &MetricsCollector{
			providerCalls: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "weather_provider_calls_total",
					Help: "Live provider calls by outcome (success, quota, network)",
				},
				[]string{"provider", "outcome"},
			),
			cacheHits: promauto.NewCounter(prometheus.CounterOpts{
				Name: "forecast_cache_hits_total",
				Help: "The total number of forecast cache hits",
			}),
			cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
				Name: "forecast_cache_misses_total",
				Help: "The total number of forecast cache misses",
			}),
			simulatedPoints: promauto.NewCounter(prometheus.CounterOpts{
				Name: "forecast_simulated_points_total",
				Help: "Forecast points synthesized from climatology instead of live data",
			}),
			aggregationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "forecast_aggregation_duration_seconds",
				Help:    "Forecast aggregation duration in seconds",
				Buckets: prometheus.DefBuckets,
			}),
		}
	})
	return collector
}

func (m *MetricsCollector) RecordProviderCall(provider, outcome string) {
	m.providerCalls.WithLabelValues(provider, outcome).Inc()
}

func (m *MetricsCollector) RecordSimulatedPoints(count int) {
	m.simulatedPoints.Add(float64(count))
}

func (m *MetricsCollector) ObserveAggregation(duration time.Duration) {
	m.aggregationDuration.Observe(duration.Seconds())
}

func (m *MetricsCollector) RecordHit() {
	m.cacheHits.Inc()
}

func (m *MetricsCollector) RecordMiss() {
	m.cacheMisses.Inc()
}
