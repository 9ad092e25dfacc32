// Package metrics provides Prometheus metrics for the intervue service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Progress core
	observations   *prometheus.CounterVec
	skillFallbacks *prometheus.CounterVec
	purges         prometheus.Counter
	casConflicts   prometheus.Counter
	duplicates     prometheus.Counter
	applyLatency   prometheus.Histogram
	trackedUsers   prometheus.Gauge

	// Store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// LLM
	llmRequests *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec
	llmTokens   *prometheus.CounterVec

	// Notifications
	notifications *prometheus.CounterVec

	// Queue and workers
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	workerCount        prometheus.Gauge
	workerLatency      prometheus.Histogram
	workerErrors       prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors and runtime
	errorsByComponent    *prometheus.CounterVec
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

var globalManager *Manager //nolint:gochecknoglobals // process-wide collectors

func init() { //nolint:gochecknoinits // register collectors once
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager. Collectors are registered on the
// configured registry, so each Manager needs its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "intervue",
		subsystem:        "progress",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.observations = m.counterVec("observations_total", "Skill observations by outcome", "outcome")
	m.skillFallbacks = m.counterVec("skill_fallbacks_total", "Observations whose skill was replaced by the domain fallback", "domain")
	m.purges = m.counter("document_purges_total", "Progress documents deleted because a category left the taxonomy")
	m.casConflicts = m.counter("cas_conflicts_total", "Compare-and-swap conflicts while saving progress")
	m.duplicates = m.counter("observations_duplicate_total", "Observations skipped because their id was already applied")
	m.applyLatency = m.histogram("apply_latency_milliseconds", "Load, aggregate and save latency per observation")
	m.trackedUsers = m.gauge("tracked_users", "Number of stored progress documents")

	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Progress store operation latency", "driver", "op")
	m.storeErrors = m.counterVec("store_errors_total", "Progress store failures", "driver", "op")

	m.llmRequests = m.counterVec("llm_requests_total", "LLM requests by purpose and status", "purpose", "status")
	m.llmLatency = m.histogramVec("llm_latency_milliseconds", "LLM request latency", "purpose")
	m.llmTokens = m.counterVec("llm_tokens_total", "LLM tokens consumed", "direction")

	m.notifications = m.counterVec("notifications_total", "Progress notifications by status", "status")

	m.queueSize = m.gauge("queue_size", "Current observation queue backlog")
	m.queueCapacity = m.gauge("queue_capacity", "Observation queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Observations enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Observations dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Observations rejected by a full or closed queue")
	m.workerCount = m.gauge("worker_count", "Running observation workers")
	m.workerLatency = m.histogram("worker_processing_latency_milliseconds", "Worker time per observation")
	m.workerErrors = m.counter("worker_errors_total", "Observations a worker failed to apply")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration", "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap memory in use")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordObservation counts an observation outcome: applied, rejected, failed.
func RecordObservation(outcome string) { globalManager.observations.WithLabelValues(outcome).Inc() }

// RecordSkillFallback counts a fallback substitution for a domain key.
func RecordSkillFallback(domain string) { globalManager.skillFallbacks.WithLabelValues(domain).Inc() }

// RecordPurge counts a taxonomy purge.
func RecordPurge() { globalManager.purges.Inc() }

// RecordCASConflict counts a version conflict on save.
func RecordCASConflict() { globalManager.casConflicts.Inc() }

// RecordDuplicate counts a skipped duplicate observation.
func RecordDuplicate() { globalManager.duplicates.Inc() }

// RecordApplyLatency records end-to-end apply latency in milliseconds.
func RecordApplyLatency(ms float64) { globalManager.applyLatency.Observe(ms) }

// UpdateTrackedUsers sets the stored document count.
func UpdateTrackedUsers(n int) { globalManager.trackedUsers.Set(float64(n)) }

// RecordStoreLatency records a store call in milliseconds.
func RecordStoreLatency(driver, op string, ms float64) {
	globalManager.storeLatency.WithLabelValues(driver, op).Observe(ms)
}

// RecordStoreError counts a failed store call.
func RecordStoreError(driver, op string) { globalManager.storeErrors.WithLabelValues(driver, op).Inc() }

// RecordLLMRequest counts an LLM call and records its latency.
func RecordLLMRequest(purpose, status string, ms float64) {
	globalManager.llmRequests.WithLabelValues(purpose, status).Inc()
	globalManager.llmLatency.WithLabelValues(purpose).Observe(ms)
}

// RecordLLMTokens adds token usage.
func RecordLLMTokens(input, output int) {
	globalManager.llmTokens.WithLabelValues("input").Add(float64(input))
	globalManager.llmTokens.WithLabelValues("output").Add(float64(output))
}

// RecordNotification counts a publish attempt by status.
func RecordNotification(status string) { globalManager.notifications.WithLabelValues(status).Inc() }

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(ratio float64) { globalManager.queueUtilization.Set(ratio) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount sets the running worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerProcessingLatency records per-observation worker latency.
func RecordWorkerProcessingLatency(ms float64) { globalManager.workerLatency.Observe(ms) }

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the registry holding the service collectors.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
