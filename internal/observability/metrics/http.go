package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerMetrics tracks request-level metrics plus the quoting
// pipeline counters (drafts, finalization streams, emitted sections).
type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	draftsTotal          *prometheus.CounterVec
	draftDuration        *prometheus.HistogramVec
	finalizeStreamsTotal *prometheus.CounterVec
	sectionsEmitted      *prometheus.HistogramVec
	finalizeDuration     *prometheus.HistogramVec
	llmFailuresTotal     *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qf",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qf",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "qf",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	draftsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qf",
			Subsystem: "quotes",
			Name:      "drafts_total",
			Help:      "Total draft generations by outcome.",
		},
		[]string{"service", "outcome"},
	)
	draftDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qf",
			Subsystem: "quotes",
			Name:      "draft_duration_seconds",
			Help:      "Draft generation duration in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"service"},
	)
	finalizeStreamsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qf",
			Subsystem: "quotes",
			Name:      "finalize_streams_total",
			Help:      "Total finalization streams by outcome.",
		},
		[]string{"service", "outcome"},
	)
	sectionsEmitted := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qf",
			Subsystem: "quotes",
			Name:      "sections_emitted",
			Help:      "Distribution of sections emitted per finalization stream.",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
		[]string{"service"},
	)
	finalizeDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qf",
			Subsystem: "quotes",
			Name:      "finalize_duration_seconds",
			Help:      "End-to-end finalization duration in seconds.",
			Buckets:   []float64{1, 2, 5, 10, 20, 40, 60, 120},
		},
		[]string{"service"},
	)
	llmFailuresTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qf",
			Subsystem: "llm",
			Name:      "failures_total",
			Help:      "Total model call failures by operation.",
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		draftsTotal,
		draftDuration,
		finalizeStreamsTotal,
		sectionsEmitted,
		finalizeDuration,
		llmFailuresTotal,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		draftsTotal:          draftsTotal,
		draftDuration:        draftDuration,
		finalizeStreamsTotal: finalizeStreamsTotal,
		sectionsEmitted:      sectionsEmitted,
		finalizeDuration:     finalizeDuration,
		llmFailuresTotal:     llmFailuresTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
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
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "/v1/quotes/") {
		rest := strings.TrimPrefix(path, "/v1/quotes/")
		if rest == "draft" {
			return path
		}
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			return "/v1/quotes/{quote_id}" + rest[idx:]
		}
		return "/v1/quotes/{quote_id}"
	}
	return path
}

func (m *HTTPServerMetrics) RecordDraft(service, outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.draftsTotal.WithLabelValues(service, outcome).Inc()
	if outcome == "success" {
		m.draftDuration.WithLabelValues(service).Observe(duration.Seconds())
	}
}

func (m *HTTPServerMetrics) RecordFinalizeStream(service, outcome string, sections int, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.finalizeStreamsTotal.WithLabelValues(service, outcome).Inc()
	if sections > 0 {
		m.sectionsEmitted.WithLabelValues(service).Observe(float64(sections))
	}
	m.finalizeDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordLLMFailure(service, operation string) {
	if operation == "" {
		operation = "unknown"
	}
	m.llmFailuresTotal.WithLabelValues(service, operation).Inc()
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
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}
