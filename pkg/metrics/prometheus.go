// Package metrics provides Prometheus metrics for the teammate formation service.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Formation
	formationsTotal   *prometheus.CounterVec
	formationFailures *prometheus.CounterVec
	formationLatency  *prometheus.HistogramVec
	attemptsEvaluated prometheus.Counter
	aggregateScore    prometheus.Histogram
	balancedTeamRatio prometheus.Gauge
	batchCount        prometheus.Gauge
	rosterSize        prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerActiveCount       prometheus.Gauge
	workerTasksProcessed    prometheus.Counter
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter
	workerPanics            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// scoreBuckets covers the 0-100 balance score range in steps of ten.
var scoreBuckets = prometheus.LinearBuckets(0, 10, 11) //nolint:gochecknoglobals // immutable bucket layout

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "teammate",
		subsystem:        "formation",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.formationsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "runs_total",
		Help: "Completed team formation runs by mode (sequential, attempts, batches)",
	}, []string{"mode"})
	m.formationFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "failures_total",
		Help: "Failed team formation runs by reason",
	}, []string{"reason"})
	m.formationLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "latency_milliseconds",
		Help:    "Wall-clock duration of a formation run in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"mode"})

	m.attemptsEvaluated = m.counter("attempts_evaluated_total", "Candidate partitions generated and scored")
	m.aggregateScore = m.histogram("aggregate_score", "Aggregate balance score of the selected partition", scoreBuckets)
	m.balancedTeamRatio = m.gauge("balanced_team_ratio", "Share of teams in the latest partition scoring at least 80")
	m.batchCount = m.gauge("batch_count", "Batches used by the latest large-pool formation")
	m.rosterSize = m.gauge("roster_size", "Participants currently enrolled")

	m.queueSize = m.gauge("queue_size", "Jobs waiting in the worker queue")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the worker queue")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Jobs rejected by the worker queue")

	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently running")
	m.workerTasksProcessed = m.counter("worker_tasks_total", "Tasks executed by the worker pool")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Task execution time inside a worker in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Tasks that returned an error")
	m.workerPanics = m.counter("worker_panics_total", "Tasks that panicked and were converted to errors")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: m.constLabels,
		Name: "errors_by_component_total",
		Help: "Errors by component and type",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100})
}

// Formation metrics.

// RecordFormation records a completed formation run.
func RecordFormation(mode string, latencyMs float64) {
	globalManager.formationsTotal.WithLabelValues(mode).Inc()
	globalManager.formationLatency.WithLabelValues(mode).Observe(latencyMs)
}

// RecordFormationFailure records a failed formation run.
func RecordFormationFailure(reason string) {
	globalManager.formationFailures.WithLabelValues(reason).Inc()
}

// RecordAttempts adds n evaluated attempts.
func RecordAttempts(n int) {
	globalManager.attemptsEvaluated.Add(float64(n))
}

// RecordAggregateScore observes the aggregate score of a selected partition.
func RecordAggregateScore(score float64) {
	globalManager.aggregateScore.Observe(score)
}

// UpdateBalancedTeamRatio sets the share of balanced teams in the latest partition.
func UpdateBalancedTeamRatio(ratio float64) {
	globalManager.balancedTeamRatio.Set(ratio)
}

// UpdateBatchCount sets the batch count of the latest large-pool run.
func UpdateBatchCount(n int) {
	globalManager.batchCount.Set(float64(n))
}

// UpdateRosterSize sets the enrolled participant count.
func UpdateRosterSize(n int) {
	globalManager.rosterSize.Set(float64(n))
}

// Queue metrics.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker metrics.

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerTaskProcessed increments the processed task counter.
func RecordWorkerTaskProcessed() {
	globalManager.workerTasksProcessed.Inc()
}

// RecordWorkerProcessingLatency records task execution latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordWorkerPanic increments the worker panic counter.
func RecordWorkerPanic() {
	globalManager.workerPanics.Inc()
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Value returns the current value of a counter or gauge in the global
// registry. Label values must be given in declaration order. Histograms
// report their sample count.
func Value(name string, labelValues ...string) (float64, error) {
	families, err := customRegistry.Gather()
	if err != nil {
		return 0, fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := metric.GetLabel()
			if len(labels) != len(labelValues) {
				continue
			}
			match := true
			for i, lp := range labels {
				if lp.GetValue() != labelValues[i] {
					match = false
					break
				}
			}
			if !match {
				continue
			}
			switch {
			case metric.GetCounter() != nil:
				return metric.GetCounter().GetValue(), nil
			case metric.GetGauge() != nil:
				return metric.GetGauge().GetValue(), nil
			case metric.GetHistogram() != nil:
				return float64(metric.GetHistogram().GetSampleCount()), nil
			}
		}
	}
	return 0, fmt.Errorf("%s: %w", name, ErrNotRegistered)
}
