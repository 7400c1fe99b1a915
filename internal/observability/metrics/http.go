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

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	askRequestsTotal   *prometheus.CounterVec
	askRetrievalHits   *prometheus.CounterVec
	askNoContextTotal  *prometheus.CounterVec
	askRetrievedChunks *prometheus.HistogramVec
	askDuration        *prometheus.HistogramVec
	askFallbacksTotal  *prometheus.CounterVec
	agentRunsTotal     *prometheus.CounterVec
	agentRunDuration   *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docuchat",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docuchat",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docuchat",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	askRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docuchat",
			Subsystem: "ask",
			Name:      "requests_total",
			Help:      "Total answered questions.",
		},
		[]string{"service"},
	)
	askRetrievalHits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docuchat",
			Subsystem: "ask",
			Name:      "retrieval_hit_total",
			Help:      "Total questions with at least one retrieved chunk.",
		},
		[]string{"service"},
	)
	askNoContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docuchat",
			Subsystem: "ask",
			Name:      "no_context_total",
			Help:      "Total questions answered without retrieved chunks.",
		},
		[]string{"service"},
	)
	askRetrievedChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docuchat",
			Subsystem: "ask",
			Name:      "retrieved_chunks",
			Help:      "Distribution of retrieved chunks per question.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service"},
	)
	askDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docuchat",
			Subsystem: "ask",
			Name:      "duration_seconds",
			Help:      "End-to-end answer duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	askFallbacksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docuchat",
			Subsystem: "ask",
			Name:      "fallback_total",
			Help:      "Total answers produced without the language model, by reason.",
		},
		[]string{"service", "reason"},
	)
	agentRunsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docuchat",
			Subsystem: "agent",
			Name:      "runs_total",
			Help:      "Total completed research runs by status.",
		},
		[]string{"service", "status"},
	)
	agentRunDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docuchat",
			Subsystem: "agent",
			Name:      "run_duration_seconds",
			Help:      "Research run duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		askRequestsTotal,
		askRetrievalHits,
		askNoContextTotal,
		askRetrievedChunks,
		askDuration,
		askFallbacksTotal,
		agentRunsTotal,
		agentRunDuration,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		askRequestsTotal:   askRequestsTotal,
		askRetrievalHits:   askRetrievalHits,
		askNoContextTotal:  askNoContextTotal,
		askRetrievedChunks: askRetrievedChunks,
		askDuration:        askDuration,
		askFallbacksTotal:  askFallbacksTotal,
		agentRunsTotal:     agentRunsTotal,
		agentRunDuration:   agentRunDuration,
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

// normalizePath collapses resource ids so the path label stays low
// cardinality.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	case strings.HasPrefix(path, "/v1/agent/tasks/") && strings.HasSuffix(path, "/report"):
		return "/v1/agent/tasks/{task_id}/report"
	case strings.HasPrefix(path, "/v1/agent/tasks/"):
		return "/v1/agent/tasks/{task_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordAskObservation(service string, chunkCount int, duration time.Duration) {
	m.askRequestsTotal.WithLabelValues(service).Inc()
	m.askRetrievedChunks.WithLabelValues(service).Observe(float64(chunkCount))
	m.askDuration.WithLabelValues(service).Observe(duration.Seconds())

	if chunkCount > 0 {
		m.askRetrievalHits.WithLabelValues(service).Inc()
		return
	}
	m.askNoContextTotal.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordAskFallback(service, reason string) {
	if reason == "" {
		reason = "unknown"
	}
	m.askFallbacksTotal.WithLabelValues(service, reason).Inc()
}

func (m *HTTPServerMetrics) RecordAgentRun(service, status string, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	m.agentRunsTotal.WithLabelValues(service, status).Inc()
	m.agentRunDuration.WithLabelValues(service).Observe(duration.Seconds())
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
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
