// Package metrics provides Prometheus metrics for the gridiron rating service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Replay metrics - the core batch pipeline.
	gamesProcessed  prometheus.Counter
	gamesSkipped    prometheus.Counter
	gamesDuplicate  prometheus.Counter
	replaysStarted  prometheus.Counter
	replaysComplete prometheus.Counter
	replayErrors    prometheus.Counter
	replayDuration  prometheus.Histogram

	// Store metrics.
	snapshotRowsUpserted prometheus.Counter
	storeUpdateLatency   prometheus.Histogram
	storeQueryLatency    prometheus.Histogram

	// Feature metrics.
	featureVectors *prometheus.CounterVec

	// Operational health.
	queueSize    prometheus.Gauge
	workerCount  prometheus.Gauge
	teamsTracked prometheus.Gauge

	// Queue metrics.
	queueEnqueueErrors prometheus.Counter

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gridiron",
		subsystem:        "rating",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.gamesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_processed_total",
		Help:      "Total number of completed games applied to a rating replay",
	})

	m.gamesSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_skipped_total",
		Help:      "Total number of games skipped during replays (normalization failures, missing scores)",
	})

	m.gamesDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_duplicate_total",
		Help:      "Total number of duplicate game ids detected within a replay log",
	})

	m.replaysStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replays_started_total",
		Help:      "Total number of season replays started",
	})

	m.replaysComplete = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replays_completed_total",
		Help:      "Total number of season replays completed and persisted",
	})

	m.replayErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replay_errors_total",
		Help:      "Total number of replays that failed before persisting",
	})

	m.replayDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replay_duration_milliseconds",
		Help:      "Histogram of full season replay duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.snapshotRowsUpserted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_rows_upserted_total",
		Help:      "Total number of rating snapshot rows written by season upserts",
	})

	m.storeUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_update_latency_milliseconds",
		Help:      "Rating store write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_milliseconds",
		Help:      "Rating store read latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.featureVectors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "feature_vectors_total",
			Help:      "Total number of feature vectors composed, by cutoff mode",
		},
		[]string{"mode"},
	)

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replay_queue_size",
		Help:      "Current number of queued replay jobs",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replay_worker_count",
		Help:      "Current number of replay workers",
	})

	m.teamsTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "teams_tracked",
		Help:      "Number of teams with at least one rating snapshot",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replay_queue_enqueue_errors_total",
		Help:      "Total number of replay jobs rejected by the queue",
	})

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
}

// Package-level helpers operating on the global manager.

func RecordGameProcessed() {
	globalManager.gamesProcessed.Inc()
}

func RecordGameSkipped() {
	globalManager.gamesSkipped.Inc()
}

func RecordGameDuplicate() {
	globalManager.gamesDuplicate.Inc()
}

func RecordReplayStarted() {
	globalManager.replaysStarted.Inc()
}

func RecordReplayCompleted() {
	globalManager.replaysComplete.Inc()
}

func RecordReplayError() {
	globalManager.replayErrors.Inc()
}

func RecordReplayDuration(latencyMs float64) {
	globalManager.replayDuration.Observe(latencyMs)
}

func RecordSnapshotRowsUpserted(n int) {
	globalManager.snapshotRowsUpserted.Add(float64(n))
}

func RecordStoreUpdateLatency(latencyMs float64) {
	globalManager.storeUpdateLatency.Observe(latencyMs)
}

func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

func RecordFeatureVector(mode string) {
	globalManager.featureVectors.WithLabelValues(mode).Inc()
}

func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

func UpdateTeamsTracked(count int) {
	globalManager.teamsTracked.Set(float64(count))
}

func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry exposes the custom registry for the metrics endpoint.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
