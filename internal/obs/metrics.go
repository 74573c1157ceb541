package obs

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

	shiftsGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_shifts_generated_total",
		Help: "Shift instances queued for insertion by the generator.",
	})

	assignmentOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_assignment_operations_total",
			Help: "Assignment engine operations by kind and outcome.",
		},
		[]string{"op", "outcome"},
	)
)

func Init() {
	prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration, shiftsGenerated, assignmentOps)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveGenerated(n int) {
	shiftsGenerated.Add(float64(n))
}

func ObserveAssignmentOp(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	assignmentOps.WithLabelValues(op, outcome).Inc()
}

// Instrument measures RPS, latency and in-flight count per route.
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
