// Package metrics provides Prometheus metrics for the cardiocare service.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction outcomes, used as the "outcome" label.
const (
	OutcomePositive   = "positive"
	OutcomeNegative   = "negative"
	OutcomeValidation = "validation"
	OutcomeTransport  = "transport"
	OutcomeService    = "service"
)

var knownOutcomes = map[string]struct{}{ //nolint:gochecknoglobals // label whitelist
	OutcomePositive:   {},
	OutcomeNegative:   {},
	OutcomeValidation: {},
	OutcomeTransport:  {},
	OutcomeService:    {},
}

// Manager manages all Prometheus metrics for the cardiocare service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Domain
	assessmentsCompleted *prometheus.CounterVec
	classifications      *prometheus.CounterVec
	staleResults         prometheus.Counter
	predictions          *prometheus.CounterVec
	predictionLatency    prometheus.Histogram
	readingsRecorded     *prometheus.CounterVec
	heartbeatSamples     prometheus.Counter
	activeSessions       prometheus.Gauge
	activeMonitors       prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "cardiocare",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.assessmentsCompleted = auto.NewCounterVec(
		m.counterOpts("assessments_completed_total", "Completed risk assessments by tier"),
		[]string{"tier"},
	)
	m.classifications = auto.NewCounterVec(
		m.counterOpts("classifications_total", "Classifier calls by kind and resulting label"),
		[]string{"kind", "label"},
	)
	m.staleResults = auto.NewCounter(
		m.counterOpts("stale_results_total", "Prediction results dropped because the attempt was no longer current"),
	)
	m.predictions = auto.NewCounterVec(
		m.counterOpts("predictions_total", "Prediction submissions by outcome"),
		[]string{"outcome"},
	)
	m.predictionLatency = auto.NewHistogram(
		m.histogramOpts("prediction_latency_milliseconds", "Round trip time of prediction calls in milliseconds"),
	)
	m.readingsRecorded = auto.NewCounterVec(
		m.counterOpts("readings_recorded_total", "Vital readings recorded by kind"),
		[]string{"kind"},
	)
	m.heartbeatSamples = auto.NewCounter(
		m.counterOpts("heartbeat_samples_total", "Simulated heartbeat samples produced"),
	)
	m.activeSessions = auto.NewGauge(m.gaugeOpts("active_sessions", "Open sessions"))
	m.activeMonitors = auto.NewGauge(m.gaugeOpts("active_monitors", "Heartbeat monitors currently measuring"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Prediction jobs waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum prediction queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue size divided by capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Prediction jobs enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Prediction jobs dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Prediction jobs rejected by a full or closed queue"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured prediction workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Workers currently calling the prediction service"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("worker_processing_latency_milliseconds", "Time a worker spends on one job in milliseconds"),
	)
	m.workerErrors = auto.NewCounter(m.counterOpts("worker_errors_total", "Jobs that ended with a prediction error"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_total", "Errors by component and type"),
		[]string{"component", "type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// RecordAssessmentCompleted counts a finished quiz under its tier label.
func (m *Manager) RecordAssessmentCompleted(tier string) {
	if !m.enabled {
		return
	}
	m.assessmentsCompleted.WithLabelValues(tier).Inc()
}

// RecordPrediction counts a prediction outcome and observes its latency.
func (m *Manager) RecordPrediction(outcome string, latencyMs float64) error {
	if _, ok := knownOutcomes[outcome]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, outcome)
	}
	if !m.enabled {
		return nil
	}
	m.predictions.WithLabelValues(outcome).Inc()
	m.predictionLatency.Observe(latencyMs)
	return nil
}

// RecordReading counts a recorded vital reading.
func (m *Manager) RecordReading(kind string) {
	if !m.enabled {
		return
	}
	m.readingsRecorded.WithLabelValues(kind).Inc()
}

// RecordHeartbeatSample counts one simulated heartbeat sample.
func (m *Manager) RecordHeartbeatSample() {
	if !m.enabled {
		return
	}
	m.heartbeatSamples.Inc()
}

// RecordClassification counts a classifier call.
func (m *Manager) RecordClassification(kind, label string) {
	if !m.enabled {
		return
	}
	m.classifications.WithLabelValues(kind, label).Inc()
}

// Package-level helpers operate on the global manager.

// RecordClassification counts a classifier call.
func RecordClassification(kind, label string) { globalManager.RecordClassification(kind, label) }

// RecordStaleResult counts a prediction result dropped as stale.
func RecordStaleResult() {
	globalManager.staleResults.Inc()
}

// RecordError counts an error attributed to a component.
func RecordError(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordAssessmentCompleted counts a finished quiz.
func RecordAssessmentCompleted(tier string) { globalManager.RecordAssessmentCompleted(tier) }

// RecordPrediction counts a prediction outcome.
func RecordPrediction(outcome string, latencyMs float64) error {
	return globalManager.RecordPrediction(outcome, latencyMs)
}

// RecordReading counts a recorded vital reading.
func RecordReading(kind string) { globalManager.RecordReading(kind) }

// RecordHeartbeatSample counts one heartbeat sample.
func RecordHeartbeatSample() { globalManager.RecordHeartbeatSample() }

// UpdateActiveSessions sets the number of open sessions.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// UpdateActiveMonitors sets the number of running heartbeat monitors.
func UpdateActiveMonitors(count int) {
	globalManager.activeMonitors.Set(float64(count))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// AddWorkerActive adjusts the active worker gauge by delta.
func AddWorkerActive(delta int) {
	globalManager.workerActiveCount.Add(float64(delta))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the heap memory in use.
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
