package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	overlapRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_overlap_rejections_total",
		Help: "Assignment writes rejected by the overlap check.",
	})

	requestDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approval_decisions_total",
			Help: "Request approval workflow outcomes.",
		},
		[]string{"kind", "outcome"},
	)
)

func Init() {
	prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration, overlapRejections, requestDecisions)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordOverlapRejection() {
	overlapRejections.Inc()
}

// RecordDecision counts approval outcomes: kind is "adjustment" or "assignment",
// outcome is "approved", "rejected" or "already_processed".
func RecordDecision(kind, outcome string) {
	requestDecisions.WithLabelValues(kind, outcome).Inc()
}

// Instrument wraps a handler with RPS/latency/in-flight collection.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpInFlight.Dec()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
