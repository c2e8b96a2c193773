package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for Clanhall
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Document store metrics
	StoreOperationsTotal   prometheus.CounterVec
	StoreOperationDuration prometheus.HistogramVec
	StoreWriteErrorsTotal  prometheus.CounterVec

	// Cache Metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Business Metrics
	ClanOperationsTotal prometheus.CounterVec
	RepairActionsTotal  prometheus.CounterVec
	RepairJobDuration   prometheus.HistogramVec
}

// NewMetricsRegistry registers every metric with reg. Pass
// prometheus.DefaultRegisterer in the server and a fresh registry in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clanhall_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clanhall_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "clanhall_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed, by method",
			},
			[]string{"method"},
		),

		StoreOperationsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clanhall_store_operations_total",
				Help: "Document store operations by collection and operation",
			},
			[]string{"collection", "operation"},
		),
		StoreOperationDuration: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clanhall_store_operation_duration_seconds",
				Help:    "Document store operation time in seconds, including backend I/O",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"operation"},
		),
		StoreWriteErrorsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clanhall_store_write_errors_total",
				Help: "Failed collection writes by collection",
			},
			[]string{"collection"},
		),

		// Cache Metrics
		CacheHitsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clanhall_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clanhall_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Business Metrics
		ClanOperationsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clanhall_clan_operations_total",
				Help: "Clan membership operations by operation and outcome code",
			},
			[]string{"operation", "outcome"},
		),
		RepairActionsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "clanhall_repair_actions_total",
				Help: "Inconsistencies fixed by the repair job, by rule",
			},
			[]string{"rule"},
		),
		RepairJobDuration: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "clanhall_repair_job_duration_seconds",
				Help:    "Repair job execution time in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"job_name"},
		),
	}
}
