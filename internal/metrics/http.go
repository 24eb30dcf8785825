package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	analysesTotal *prometheus.CounterVec
	analysisTime  prometheus.Histogram
	queueDepth    prometheus.Gauge
	staleRequeues prometheus.Counter
}

func NewServerMetrics(service string) *ServerMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "arogyaai",
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "Total HTTP requests processed.",
			ConstLabels: constLabels,
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "arogyaai",
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
		[]string{"method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "arogyaai",
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Number of in-flight HTTP requests.",
			ConstLabels: constLabels,
		},
	)
	analysesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "arogyaai",
			Subsystem:   "analysis",
			Name:        "processed_total",
			Help:        "Total analysis jobs processed by outcome.",
			ConstLabels: constLabels,
		},
		[]string{"outcome"},
	)
	analysisTime := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "arogyaai",
			Subsystem:   "analysis",
			Name:        "processing_duration_seconds",
			Help:        "Analysis job processing duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
	)
	queueDepth := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "arogyaai",
			Subsystem:   "analysis",
			Name:        "queue_depth",
			Help:        "Number of analysis jobs waiting in the local worker queue.",
			ConstLabels: constLabels,
		},
	)
	staleRequeues := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "arogyaai",
			Subsystem:   "analysis",
			Name:        "stale_requeues_total",
			Help:        "Total stale analysis jobs requeued by the reaper.",
			ConstLabels: constLabels,
		},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		analysesTotal,
		analysisTime,
		queueDepth,
		staleRequeues,
	)

	return &ServerMetrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		analysesTotal:   analysesTotal,
		analysisTime:    analysisTime,
		queueDepth:      queueDepth,
		staleRequeues:   staleRequeues,
	}
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ServerMetrics) Middleware(next http.Handler) http.Handler {
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
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses resource identifiers so path labels stay bounded.
func normalizePath(path string) string {
	for _, prefix := range []string{
		"/api/uploads/",
		"/api/analyses/",
		"/api/reports/",
		"/api/medications/",
	} {
		if rest, ok := strings.CutPrefix(path, prefix); ok && rest != "" {
			if idx := strings.IndexByte(rest, '/'); idx >= 0 {
				return prefix + "{id}" + rest[idx:]
			}
			if rest != "stats" {
				return prefix + "{id}"
			}
		}
	}
	return path
}

func (m *ServerMetrics) RecordAnalysis(outcome string, duration time.Duration) {
	m.analysesTotal.WithLabelValues(outcome).Inc()
	if outcome == "completed" {
		m.analysisTime.Observe(duration.Seconds())
	}
}

func (m *ServerMetrics) RecordStaleRequeue() {
	m.staleRequeues.Inc()
}

func (m *ServerMetrics) SetQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
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
