package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/algovyborg/lesson-payments/internal/usecase"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	eventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciliation_events_total",
			Help: "Total number of reconciled events by outcome",
		},
		[]string{"outcome"},
	)

	paymentsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_recorded_total",
			Help: "Total number of payments committed",
		},
	)

	unprocessedPayments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "unprocessed_payments_total",
			Help: "Total number of dead-lettered events by reason",
		},
		[]string{"reason"},
	)

	pollRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_runs_total",
			Help: "Total number of poll runs by status",
		},
		[]string{"status"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

// RecordEventOutcome counts one terminal reconciliation outcome.
func RecordEventOutcome(out usecase.ProcessOutcome) {
	if out.Success {
		eventsProcessed.WithLabelValues("success").Inc()
		paymentsRecorded.Inc()
		return
	}
	eventsProcessed.WithLabelValues("failed").Inc()
	unprocessedPayments.WithLabelValues(out.Reason).Inc()
}

func RecordPollRun(status string) {
	pollRuns.WithLabelValues(status).Inc()
}
