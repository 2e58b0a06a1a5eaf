// Package metrics provides Prometheus metrics for camtrap analysis runs.
//
// Metrics live on a private registry. There is no HTTP exporter; a run can
// dump the registry in textfile-collector format with WriteTextfile.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every camtrap metric.
type Manager struct {
	namespace   string
	subsystem   string
	runBuckets  []float64
	jobBuckets  []float64
	enabled     bool
	constLabels map[string]string
	registry    prometheus.Registerer

	// Input
	recordsLoaded   prometheus.Counter
	locationsLoaded prometheus.Gauge

	// Analysis runs
	analysisRuns     prometheus.Counter
	analysisDuration prometheus.Histogram
	speciesAnalyzed  prometheus.Counter

	// Jobs
	jobsProcessed prometheus.Counter
	jobLatency    prometheus.Histogram
	jobErrors     prometheus.Counter

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerActiveCount prometheus.Gauge

	// Subsequence cache
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:   "camtrap",
		subsystem:   "engine",
		runBuckets:  prometheus.DefBuckets,
		jobBuckets:  []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		enabled:     true,
		constLabels: map[string]string{},
		registry:    prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() {
	m.recordsLoaded = m.counter("records_loaded_total", "Photo records decoded from datasets")
	m.locationsLoaded = m.gauge("locations_loaded", "Locations in the most recently loaded dataset")

	m.analysisRuns = m.counter("analysis_runs_total", "Completed analysis runs")
	m.analysisDuration = m.histogram("analysis_duration_seconds", "Wall time of an analysis run", m.runBuckets)
	m.speciesAnalyzed = m.counter("species_analyzed_total", "Species reports produced")

	m.jobsProcessed = m.counter("jobs_processed_total", "Analysis jobs handled by workers")
	m.jobLatency = m.histogram("job_latency_milliseconds", "Time to handle one analysis job", m.jobBuckets)
	m.jobErrors = m.counter("job_errors_total", "Analysis jobs that failed")

	m.queueSize = m.gauge("queue_size", "Jobs waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum jobs the queue holds")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Jobs accepted by the queue")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Jobs rejected by the queue")

	m.workerActiveCount = m.gauge("worker_active_count", "Workers currently running")

	m.cacheHits = m.counter("cache_hits_total", "Subsequence cache hits")
	m.cacheMisses = m.counter("cache_misses_total", "Subsequence cache misses")

	m.errorsByComponent = promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_component_total",
		Help:        "Errors broken down by component and type",
		ConstLabels: m.constLabels,
	}, []string{"component", "error_type"})
}

func on() bool { return globalManager.enabled }

// RecordRecordsLoaded adds n decoded records.
func RecordRecordsLoaded(n int) {
	if on() {
		globalManager.recordsLoaded.Add(float64(n))
	}
}

// UpdateLocationsLoaded sets the location count of the last dataset.
func UpdateLocationsLoaded(n int) {
	if on() {
		globalManager.locationsLoaded.Set(float64(n))
	}
}

// RecordAnalysisRun records a finished run and its duration in seconds.
func RecordAnalysisRun(seconds float64) {
	if on() {
		globalManager.analysisRuns.Inc()
		globalManager.analysisDuration.Observe(seconds)
	}
}

// RecordSpeciesAnalyzed increments the species report counter.
func RecordSpeciesAnalyzed() {
	if on() {
		globalManager.speciesAnalyzed.Inc()
	}
}

// RecordJobProcessed records a handled job and its latency in milliseconds.
func RecordJobProcessed(latencyMs float64) {
	if on() {
		globalManager.jobsProcessed.Inc()
		globalManager.jobLatency.Observe(latencyMs)
	}
}

// RecordJobError increments the failed job counter.
func RecordJobError() {
	if on() {
		globalManager.jobErrors.Inc()
	}
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if on() {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	if on() {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueue increments the accepted job counter.
func RecordQueueEnqueue() {
	if on() {
		globalManager.queueEnqueued.Inc()
	}
}

// RecordQueueEnqueueError increments the rejected job counter.
func RecordQueueEnqueueError() {
	if on() {
		globalManager.queueEnqueueErrors.Inc()
	}
}

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(count int) {
	if on() {
		globalManager.workerActiveCount.Set(float64(count))
	}
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	if on() {
		globalManager.cacheHits.Inc()
	}
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	if on() {
		globalManager.cacheMisses.Inc()
	}
}

// RecordErrorByComponent counts an error raised by component.
func RecordErrorByComponent(component, errorType string) {
	if on() {
		globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// GetRegistry returns the registry holding the global metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
