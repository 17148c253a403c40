package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medguard"

type HTTPServerMetrics struct {
	registry *prometheus.Registry
	service  string
	provider string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	analysisTotal      *prometheus.CounterVec
	analysisDuration   *prometheus.HistogramVec
	analysisSuperseded *prometheus.CounterVec
	activeDrafts       prometheus.Gauge
	reportsSubmitted   *prometheus.CounterVec
	reportsShared      *prometheus.CounterVec
	retriesTotal       *prometheus.CounterVec
	breakerState       *prometheus.GaugeVec
}

// NewHTTPServerMetrics builds the API registry. provider labels every
// analysis series with the configured classifier backend.
func NewHTTPServerMetrics(service, provider string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()
	if provider == "" {
		provider = "unknown"
	}

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	analysisTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "requests_total",
			Help:      "Classifier calls by provider and outcome (success, failure, stale).",
		},
		[]string{"service", "provider", "outcome"},
	)
	analysisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Classifier call duration in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 3, 5, 8, 13, 20},
		},
		[]string{"service", "provider"},
	)
	analysisSuperseded := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "debounce_superseded_total",
			Help:      "Scheduled classifier calls cancelled by a newer edit.",
		},
		[]string{"service"},
	)
	activeDrafts := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "drafts",
			Name:      "active",
			Help:      "Open report drafts with a live classifier bridge.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	reportsSubmitted := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "submitted_total",
			Help:      "Submitted safety reports by severity.",
		},
		[]string{"service", "severity"},
	)
	reportsShared := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "shared_total",
			Help:      "Reports broadcast to the network by severity.",
		},
		[]string{"service", "severity"},
	)
	retriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "retries_total",
			Help:      "Retry attempts by upstream operation.",
		},
		[]string{"service", "operation"},
	)
	breakerState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "circuit_breaker_open",
			Help:      "1 when the breaker for an operation is open, 0.5 when half-open, 0 when closed.",
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		analysisTotal,
		analysisDuration,
		analysisSuperseded,
		activeDrafts,
		reportsSubmitted,
		reportsShared,
		retriesTotal,
		breakerState,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		service:            service,
		provider:           provider,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		analysisTotal:      analysisTotal,
		analysisDuration:   analysisDuration,
		analysisSuperseded: analysisSuperseded,
		activeDrafts:       activeDrafts,
		reportsSubmitted:   reportsSubmitted,
		reportsShared:      reportsShared,
		retriesTotal:       retriesTotal,
		breakerState:       breakerState,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			m.service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(m.service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

var idCollections = map[string]string{
	"reports":       "{report_id}",
	"drafts":        "{draft_id}",
	"posts":         "{post_id}",
	"notifications": "{notification_id}",
}

var staticSegments = map[string]bool{
	"export": true,
}

// normalizePath collapses identifiers so label cardinality stays bounded.
func normalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i := 1; i < len(segments); i++ {
		placeholder, ok := idCollections[segments[i-1]]
		if !ok || segments[i] == "" || staticSegments[segments[i]] {
			continue
		}
		segments[i] = placeholder
	}
	return strings.Join(segments, "/")
}

func (m *HTTPServerMetrics) ObserveAnalysis(outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.analysisTotal.WithLabelValues(m.service, m.provider, outcome).Inc()
	if duration > 0 {
		m.analysisDuration.WithLabelValues(m.service, m.provider).Observe(duration.Seconds())
	}
}

func (m *HTTPServerMetrics) ObserveSuperseded() {
	m.analysisSuperseded.WithLabelValues(m.service).Inc()
}

func (m *HTTPServerMetrics) SetActiveDrafts(n int) {
	m.activeDrafts.Set(float64(n))
}

func (m *HTTPServerMetrics) ObserveReportSubmitted(severity string) {
	m.reportsSubmitted.WithLabelValues(m.service, severity).Inc()
}

func (m *HTTPServerMetrics) ObserveReportShared(severity string) {
	m.reportsShared.WithLabelValues(m.service, severity).Inc()
}

func (m *HTTPServerMetrics) ObserveRetry(operation string) {
	m.retriesTotal.WithLabelValues(m.service, operation).Inc()
}

func (m *HTTPServerMetrics) ObserveBreakerState(operation, state string) {
	value := 0.0
	switch state {
	case "open":
		value = 1
	case "half-open":
		value = 0.5
	}
	m.breakerState.WithLabelValues(m.service, operation).Set(value)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
