// Package metrics provides Prometheus metrics for the Specious quiz service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Guess outcome label values.
const (
	OutcomeHit    = "hit"
	OutcomeMiss   = "miss"
	OutcomeNoData = "no_data"
)

// Manager manages all Prometheus metrics for the quiz service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Game metrics
	roundsLoaded     prometheus.Counter
	guesses          *prometheus.CounterVec
	pointsAwarded    prometheus.Counter
	scoreResets      prometheus.Counter
	staleResponses   *prometheus.CounterVec
	activeSessions   prometheus.Gauge
	sessionsEvicted  *prometheus.CounterVec
	noResultsRetries prometheus.Counter

	// Provider metrics
	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	providerErrors   *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System metrics
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

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "specious",
		subsystem:        "quiz",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	// A disabled manager still hands out collectors but keeps them on a
	// private registry nobody scrapes.
	if !m.enabled {
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval is how often periodic gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     buckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.roundsLoaded = auto.NewCounter(m.counterOpts("rounds_loaded_total",
		"Total number of rounds loaded into sessions"))
	m.guesses = auto.NewCounterVec(m.counterOpts("guesses_total",
		"Total number of guesses by rank and outcome"), []string{"rank", "outcome"})
	m.pointsAwarded = auto.NewCounter(m.counterOpts("points_awarded_total",
		"Total points awarded across all sessions"))
	m.scoreResets = auto.NewCounter(m.counterOpts("score_resets_total",
		"Total number of running scores reset by a miss"))
	m.staleResponses = auto.NewCounterVec(m.counterOpts("stale_responses_total",
		"Provider responses dropped because a newer request superseded them"), []string{"kind"})
	m.activeSessions = auto.NewGauge(m.gaugeOpts("active_sessions",
		"Current number of in-memory play sessions"))
	m.sessionsEvicted = auto.NewCounterVec(m.counterOpts("sessions_evicted_total",
		"Total number of sessions removed by the store, by reason"), []string{"reason"})
	m.noResultsRetries = auto.NewCounter(m.counterOpts("no_results_total",
		"Observation fetches that matched nothing for the chosen filter"))

	m.providerRequests = auto.NewCounterVec(m.counterOpts("provider_requests_total",
		"Taxonomy provider requests by endpoint and status"), []string{"endpoint", "status"})
	m.providerLatency = auto.NewHistogramVec(m.histogramOpts("provider_latency_milliseconds",
		"Taxonomy provider latency in milliseconds",
		[]float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}), []string{"endpoint"})
	m.providerErrors = auto.NewCounterVec(m.counterOpts("provider_errors_total",
		"Taxonomy provider failures by endpoint and kind"), []string{"endpoint", "kind"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})

	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total",
		"Errors by type and severity"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Errors by endpoint and method"), []string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(m.histogramOpts("error_latency_milliseconds",
		"Latency of failed operations in milliseconds", m.histogramBuckets), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes",
		"Allocated heap memory in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines",
		"Current number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds",
		"Average GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordRoundLoaded increments the rounds loaded counter.
func RecordRoundLoaded() {
	globalManager.roundsLoaded.Inc()
}

// RecordGuess records a resolved guess at rank.
func RecordGuess(rank, outcome string) {
	globalManager.guesses.WithLabelValues(rank, outcome).Inc()
}

// RecordPointsAwarded adds points to the awarded total.
func RecordPointsAwarded(points int) {
	if points > 0 {
		globalManager.pointsAwarded.Add(float64(points))
	}
}

// RecordScoreReset increments the score resets counter.
func RecordScoreReset() {
	globalManager.scoreResets.Inc()
}

// RecordStaleResponse records a dropped provider response of the given kind.
func RecordStaleResponse(kind string) {
	globalManager.staleResponses.WithLabelValues(kind).Inc()
}

// UpdateActiveSessions sets the active sessions gauge.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordSessionEvicted counts a session dropped for reason ("capacity" or "idle").
func RecordSessionEvicted(reason string) {
	globalManager.sessionsEvicted.WithLabelValues(reason).Inc()
}

// RecordNoResults increments the empty observation fetch counter.
func RecordNoResults() {
	globalManager.noResultsRetries.Inc()
}

// RecordProviderRequest records a provider call and its status.
func RecordProviderRequest(endpoint, status string) {
	globalManager.providerRequests.WithLabelValues(endpoint, status).Inc()
}

// RecordProviderLatency records provider latency in milliseconds.
func RecordProviderLatency(endpoint string, latencyMs float64) {
	globalManager.providerLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// RecordProviderError records a failed provider call.
func RecordProviderError(endpoint, kind string) {
	globalManager.providerErrors.WithLabelValues(endpoint, kind).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records how long a failing operation took.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets allocated memory in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry the global manager writes to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval returns the global manager's refresh interval.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}
