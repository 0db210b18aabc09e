// Package metrics provides Prometheus metrics for the Catan league dashboard.
package metrics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/model"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// ErrInvalidOption reports options that would produce unregistrable metrics.
var ErrInvalidOption = errors.New("invalid metrics option")

// Load results used as label values.
const (
	LoadOK      = "ok"
	LoadInvalid = "invalid"
	LoadError   = "error"
)

// Manager manages all Prometheus metrics for the dashboard.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Dataset metrics
	loads               *prometheus.CounterVec
	loadLatency         prometheus.Histogram
	workbookReadLatency prometheus.Histogram
	records             prometheus.Gauge
	locations           prometheus.Gauge
	players             prometheus.Gauge
	rowIssues           *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         *prometheus.CounterVec

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
	m := newManager(opts...)
	m.initializeMetrics()
	return m
}

// Configure replaces the global manager and the registry served on /healthz
// with ones built from opts. Call it once at startup, before handlers capture
// GetRegistry. On error the previous manager stays in place.
func Configure(opts ...Option) error {
	m := newManager(opts...)
	registry := prometheus.NewRegistry()
	m.registry = registry
	if err := m.validate(); err != nil {
		return err
	}
	m.initializeMetrics()
	customRegistry, globalManager = registry, m
	return nil
}

func newManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "catan",
		subsystem:        "dashboard",
		histogramBuckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// validate rejects names, labels and buckets that promauto would panic on.
func (m *Manager) validate() error {
	if fq := prometheus.BuildFQName(m.namespace, m.subsystem, m.name("records")); !model.IsValidLegacyMetricName(fq) {
		return fmt.Errorf("%w: metric name %q", ErrInvalidOption, fq)
	}
	for name := range m.customLabels {
		if !model.LabelName(name).IsValidLegacy() || strings.HasPrefix(name, "__") {
			return fmt.Errorf("%w: label name %q", ErrInvalidOption, name)
		}
	}
	for i := 1; i < len(m.histogramBuckets); i++ {
		if m.histogramBuckets[i] <= m.histogramBuckets[i-1] {
			return fmt.Errorf("%w: histogram buckets %v are not increasing", ErrInvalidOption, m.histogramBuckets)
		}
	}
	return nil
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.loads = auto.NewCounterVec(
		m.counterOpts("workbook_loads_total", "Workbook loads by result (ok, invalid, error)"),
		[]string{"result"},
	)
	m.loadLatency = auto.NewHistogram(
		m.histogramOpts("load_latency_milliseconds", "Full load and enrichment latency in milliseconds", m.histogramBuckets),
	)
	m.workbookReadLatency = auto.NewHistogram(
		m.histogramOpts("workbook_read_latency_milliseconds", "Workbook open and read latency in milliseconds", m.histogramBuckets),
	)
	m.records = auto.NewGauge(m.gaugeOpts("records", "Game records in the latest load"))
	m.locations = auto.NewGauge(m.gaugeOpts("locations", "Distinct locations in the latest load"))
	m.players = auto.NewGauge(m.gaugeOpts("players", "Distinct players in the latest load"))
	m.rowIssues = auto.NewCounterVec(
		m.counterOpts("row_issues_total", "Row-local data issues by kind"),
		[]string{"kind"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.rateLimited = auto.NewCounterVec(
		m.counterOpts("http_rate_limited_total", "Requests rejected by the rate limiter"),
		[]string{"endpoint"},
	)

	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of failed operations in milliseconds", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RefreshInterval returns how often gauges fed by pollers should be updated.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// RecordLoad counts a workbook load by result.
func RecordLoad(result string) {
	if !globalManager.enabled {
		return
	}
	globalManager.loads.WithLabelValues(result).Inc()
}

// RecordLoadLatency records load plus enrichment latency in milliseconds.
func RecordLoadLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.loadLatency.Observe(latencyMs)
}

// RecordWorkbookReadLatency records raw workbook read latency in milliseconds.
func RecordWorkbookReadLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.workbookReadLatency.Observe(latencyMs)
}

// UpdateDatasetSize sets the record, location and player gauges.
func UpdateDatasetSize(records, locations, players int) {
	if !globalManager.enabled {
		return
	}
	globalManager.records.Set(float64(records))
	globalManager.locations.Set(float64(locations))
	globalManager.players.Set(float64(players))
}

// RecordRowIssue counts a row-local data issue.
func RecordRowIssue(kind string) {
	if !globalManager.enabled {
		return
	}
	globalManager.rowIssues.WithLabelValues(kind).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited(endpoint string) {
	if !globalManager.enabled {
		return
	}
	globalManager.rateLimited.WithLabelValues(endpoint).Inc()
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
