// Package metrics provides Prometheus metrics for the biofitviz geometry service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// Geometry Metrics - per request pipeline
	computations       prometheus.Counter
	computationLatency prometheus.Histogram
	hullsEmitted       prometheus.Counter
	hullsSkipped       *prometheus.CounterVec
	pointsDropped      prometheus.Counter

	// Dataset Metrics - set once the source tables are loaded
	datasetIndividuals    prometheus.Gauge
	datasetMeasurements   prometheus.Gauge
	datasetClusters       prometheus.Gauge
	datasetLoadDurationMs prometheus.Gauge

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "biofitviz",
		subsystem:        "geometry",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_errors_total",
			Help:      "Total number of failed HTTP requests by endpoint and error type",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.computations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "computations_total",
		Help:      "Total number of geometry payloads computed",
	})

	m.computationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "computation_latency_milliseconds",
		Help:      "Time to reduce, hull and assemble one payload, in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.hullsEmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "hulls_emitted_total",
		Help:      "Total number of cluster hulls returned",
	})

	m.hullsSkipped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "hulls_skipped_total",
			Help:      "Total number of clusters without a hull, by reason",
		},
		[]string{"reason"},
	)

	m.pointsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "points_dropped_total",
		Help:      "Total number of measurements dropped for a non-finite position",
	})

	m.datasetIndividuals = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_individuals",
		Help:      "Number of individuals in the loaded dataset",
	})

	m.datasetMeasurements = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_measurements",
		Help:      "Number of measurements in the loaded dataset",
	})

	m.datasetClusters = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_clusters",
		Help:      "Number of distinct cluster labels in the loaded dataset",
	})

	m.datasetLoadDurationMs = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dataset_load_duration_milliseconds",
		Help:      "Duration of the last dataset load in milliseconds",
	})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Heap memory in use in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordComputation records one computed payload and its latency.
func RecordComputation(latencyMs float64) {
	globalManager.computations.Inc()
	globalManager.computationLatency.Observe(latencyMs)
}

// RecordHullEmitted increments the emitted hulls counter.
func RecordHullEmitted() {
	globalManager.hullsEmitted.Inc()
}

// RecordHullSkipped increments the skipped hulls counter for reason.
func RecordHullSkipped(reason string) {
	globalManager.hullsSkipped.WithLabelValues(reason).Inc()
}

// RecordPointsDropped adds n dropped measurements.
func RecordPointsDropped(n int) {
	if n > 0 {
		globalManager.pointsDropped.Add(float64(n))
	}
}

// UpdateDataset sets the loaded dataset gauges.
func UpdateDataset(individuals, measurements, clusters int, loadMs float64) {
	globalManager.datasetIndividuals.Set(float64(individuals))
	globalManager.datasetMeasurements.Set(float64(measurements))
	globalManager.datasetClusters.Set(float64(clusters))
	globalManager.datasetLoadDurationMs.Set(loadMs)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
