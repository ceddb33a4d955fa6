package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the dashboard's collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lotus",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lotus",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	gameAPICalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lotus",
			Subsystem: "game_api",
			Name:      "calls_total",
			Help:      "Total number of game API calls by entity, kind and outcome.",
		},
		[]string{"entity", "kind", "outcome"},
	)

	gameAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lotus",
			Subsystem: "game_api",
			Name:      "call_duration_seconds",
			Help:      "Duration of game API calls.",
			Buckets:   prometheus.ExponentialBuckets(0.025, 2, 10),
		},
		[]string{"entity", "kind"},
	)

	activityLogFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lotus",
			Subsystem: "activity",
			Name:      "log_failures_total",
			Help:      "Activity log writes that failed after the primary action committed.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		gameAPICalls,
		gameAPIDuration,
		activityLogFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler records request counts and latency by chi route pattern.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordGameAPICall is called once per game API request.
func RecordGameAPICall(entity, kind string, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	gameAPICalls.WithLabelValues(entity, kind, outcome).Inc()
	gameAPIDuration.WithLabelValues(entity, kind).Observe(duration.Seconds())
}

func RecordActivityLogFailure() {
	activityLogFailures.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
