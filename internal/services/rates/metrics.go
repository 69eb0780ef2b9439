package rates

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration) {}
func (n *NoopMetricsCollector) RecordOperationResult(string, string)          {}
func (n *NoopMetricsCollector) RecordError(string, string)                    {}
func (n *NoopMetricsCollector) RecordFee(string)                              {}
func (n *NoopMetricsCollector) RecordCacheHit(string)                         {}
func (n *NoopMetricsCollector) RecordCacheMiss(string)                        {}

// PrometheusMetrics exports service metrics to a Prometheus registry.
type PrometheusMetrics struct {
	operationDuration *prometheus.HistogramVec
	operationResults  *prometheus.CounterVec
	errors            *prometheus.CounterVec
	fees              *prometheus.CounterVec
	cacheLookups      *prometheus.CounterVec
}

func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rates_operation_duration_seconds",
				Help:    "Duration of rates service operations in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
			},
			[]string{"operation"},
		),
		operationResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_operation_results_total",
				Help: "Total number of rates service operations by result",
			},
			[]string{"operation", "result"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_errors_total",
				Help: "Total number of rates service errors by kind",
			},
			[]string{"operation", "kind"},
		),
		fees: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_fees_total",
				Help: "Total number of fees quoted, by event type",
			},
			[]string{"type"}, // "tax", "royalty"
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_cache_lookups_total",
				Help: "Total number of config cache lookups",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.operationDuration, m.operationResults, m.errors, m.fees, m.cacheLookups)
	return m
}

func (m *PrometheusMetrics) RecordOperationDuration(op string, d time.Duration) {
	m.operationDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *PrometheusMetrics) RecordOperationResult(op, result string) {
	m.operationResults.WithLabelValues(op, result).Inc()
}

func (m *PrometheusMetrics) RecordError(op, kind string) {
	m.errors.WithLabelValues(op, kind).Inc()
}

func (m *PrometheusMetrics) RecordFee(eventType string) {
	m.fees.WithLabelValues(eventType).Inc()
}

// Keys are not used as labels to keep cardinality bounded.
func (m *PrometheusMetrics) RecordCacheHit(string) {
	m.cacheLookups.WithLabelValues("hit").Inc()
}

func (m *PrometheusMetrics) RecordCacheMiss(string) {
	m.cacheLookups.WithLabelValues("miss").Inc()
}
