package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics tracks the mail worker's delivery pipeline.
type WorkerMetrics struct {
	registry *prometheus.Registry

	sendTotal    *prometheus.CounterVec
	sendDuration *prometheus.HistogramVec
	sendInFlight prometheus.Gauge
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	sendTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qf",
			Subsystem: "worker",
			Name:      "emails_sent_total",
			Help:      "Total email deliveries by kind and status.",
		},
		[]string{"service", "kind", "status"},
	)
	sendDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qf",
			Subsystem: "worker",
			Name:      "email_send_duration_seconds",
			Help:      "Email delivery duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	sendInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "qf",
			Subsystem: "worker",
			Name:      "email_send_in_flight",
			Help:      "Number of in-flight email deliveries.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(sendTotal, sendDuration, sendInFlight)

	return &WorkerMetrics{
		registry:     registry,
		sendTotal:    sendTotal,
		sendDuration: sendDuration,
		sendInFlight: sendInFlight,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartSend() {
	m.sendInFlight.Inc()
}

func (m *WorkerMetrics) FinishSend(service, kind string, duration time.Duration, err error) {
	m.sendInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	if kind == "" {
		kind = "unknown"
	}

	m.sendTotal.WithLabelValues(service, kind, status).Inc()
	m.sendDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}
