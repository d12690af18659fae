package cms

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CacheOutcome labels a cache operation result.
type CacheOutcome string

const (
	CacheHit     CacheOutcome = "hit"
	CacheMiss    CacheOutcome = "miss"
	CacheError   CacheOutcome = "error"
	CacheStored  CacheOutcome = "stored"
	CacheCleared CacheOutcome = "cleared"
)

// MetricsRecorder publishes Prometheus metrics for client activity. A nil
// recorder is valid and records nothing.
type MetricsRecorder struct {
	gatherer prometheus.Gatherer
	handler  http.Handler

	requests        *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	retries         *prometheus.CounterVec
	cacheOperations *prometheus.CounterVec
}

// NewMetricsRecorder registers the client metrics on reg. When reg is nil a
// dedicated registry is created so several clients can coexist.
func NewMetricsRecorder(reg *prometheus.Registry) *MetricsRecorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sitecms",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "HTTP attempts issued to the CMS, by endpoint and status.",
	}, []string{"site", "method", "endpoint", "status_code"})

	requestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sitecms",
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Latency of completed CMS calls including retries.",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"site", "method", "endpoint"})

	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sitecms",
		Subsystem: "client",
		Name:      "retries_total",
		Help:      "Retries scheduled after a retryable failure.",
	}, []string{"site", "method"})

	cacheOperations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sitecms",
		Subsystem: "cache",
		Name:      "operations_total",
		Help:      "Response cache operations, by result.",
	}, []string{"site", "result"})

	reg.MustRegister(requests, requestLatency, retries, cacheOperations)

	return &MetricsRecorder{
		gatherer:        reg,
		handler:         promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		requests:        requests,
		requestLatency:  requestLatency,
		retries:         retries,
		cacheOperations: cacheOperations,
	}
}

// Handler exposes the recorder's registry over HTTP.
func (r *MetricsRecorder) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "metrics unavailable", http.StatusServiceUnavailable)
		})
	}

	return r.handler
}

// Gatherer returns the underlying registry.
func (r *MetricsRecorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}

	return r.gatherer
}

// ObserveAttempt records one HTTP attempt. Status 0 means no response.
func (r *MetricsRecorder) ObserveAttempt(site, method, path string, status int) {
	if r == nil {
		return
	}

	statusLabel := strconv.Itoa(status)
	if status <= 0 {
		statusLabel = "none"
	}

	r.requests.WithLabelValues(site, method, EndpointLabel(path), statusLabel).Inc()
}

// ObserveCall records the latency of a whole call.
func (r *MetricsRecorder) ObserveCall(site, method, path string, duration time.Duration) {
	if r == nil {
		return
	}

	r.requestLatency.WithLabelValues(site, method, EndpointLabel(path)).Observe(duration.Seconds())
}

// ObserveRetry records a scheduled retry.
func (r *MetricsRecorder) ObserveRetry(site, method string) {
	if r == nil {
		return
	}

	r.retries.WithLabelValues(site, method).Inc()
}

// ObserveCache records a cache operation.
func (r *MetricsRecorder) ObserveCache(site string, outcome CacheOutcome) {
	if r == nil {
		return
	}

	r.cacheOperations.WithLabelValues(site, string(outcome)).Inc()
}

// EndpointLabel replaces numeric path segments with ":id" so ids do not
// explode label cardinality.
func EndpointLabel(path string) string {
	if path == "" {
		return "unknown"
	}

	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if segment == "" {
			continue
		}

		if _, err := strconv.Atoi(segment); err == nil {
			segments[i] = ":id"
		}
	}

	return strings.Join(segments, "/")
}
