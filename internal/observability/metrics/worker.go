package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	conversionTotal     *prometheus.CounterVec
	conversionDuration  *prometheus.HistogramVec
	conversionInFlight  prometheus.Gauge
	conversionAttempts  *prometheus.HistogramVec
	conversionSizeRatio *prometheus.HistogramVec
	conversionErrors    *prometheus.CounterVec
	queueLag            *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	conversionTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qdocs",
			Subsystem: "worker",
			Name:      "conversion_total",
			Help:      "Total finished conversions by status.",
		},
		[]string{"service", "status"},
	)
	conversionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qdocs",
			Subsystem: "worker",
			Name:      "conversion_duration_seconds",
			Help:      "Conversion duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	conversionInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "qdocs",
			Subsystem: "worker",
			Name:      "conversion_in_flight",
			Help:      "Number of in-flight conversions.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	conversionAttempts := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qdocs",
			Subsystem: "worker",
			Name:      "conversion_attempts",
			Help:      "Distribution of converter attempts per conversion.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		},
		[]string{"service"},
	)
	conversionSizeRatio := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qdocs",
			Subsystem: "worker",
			Name:      "conversion_size_ratio",
			Help:      "Output to input size ratio of successful conversions.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 0.75, 1, 1.5, 2, 5},
		},
		[]string{"service"},
	)
	conversionErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qdocs",
			Subsystem: "worker",
			Name:      "conversion_errors_total",
			Help:      "Total failed conversions by error kind.",
		},
		[]string{"service", "kind"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qdocs",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between job creation and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		conversionTotal,
		conversionDuration,
		conversionInFlight,
		conversionAttempts,
		conversionSizeRatio,
		conversionErrors,
		queueLag,
	)

	return &WorkerMetrics{
		registry:            registry,
		conversionTotal:     conversionTotal,
		conversionDuration:  conversionDuration,
		conversionInFlight:  conversionInFlight,
		conversionAttempts:  conversionAttempts,
		conversionSizeRatio: conversionSizeRatio,
		conversionErrors:    conversionErrors,
		queueLag:            queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartConversion() {
	m.conversionInFlight.Inc()
}

func (m *WorkerMetrics) FinishConversion(service, status string, duration time.Duration) {
	m.conversionInFlight.Dec()
	m.conversionTotal.WithLabelValues(service, status).Inc()
	m.conversionDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveAttempts(service string, attempts int) {
	if attempts <= 0 {
		return
	}
	m.conversionAttempts.WithLabelValues(service).Observe(float64(attempts))
}

func (m *WorkerMetrics) ObserveSizeRatio(service string, ratio float64) {
	if ratio <= 0 {
		return
	}
	m.conversionSizeRatio.WithLabelValues(service).Observe(ratio)
}

func (m *WorkerMetrics) RecordConversionError(service, kind string) {
	if kind == "" {
		kind = "internal"
	}
	m.conversionErrors.WithLabelValues(service, kind).Inc()
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
