package obs

import (
	"net/http"
	"strconv"
	"strings"
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

	ready = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "service_ready",
		Help: "1 when the service considers itself ready to serve traffic.",
	})

	sessionResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_resolutions_total",
			Help: "Actor resolutions by credential source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	statusUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "application_status_updates_total",
			Help: "Application status mutations by target status and outcome.",
		},
		[]string{"status", "outcome"},
	)

	fetchStageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_fetch_stage_failures_total",
			Help: "Dashboard fetch stages degraded to empty collections.",
		},
		[]string{"role", "stage"},
	)
)

// Init registers all metrics in the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight,
		httpRequestsTotal,
		httpRequestDuration,
		ready,
		sessionResolutions,
		statusUpdates,
		fetchStageFailures,
	)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// SetReady records the readiness state for scraping.
func SetReady(ok bool) {
	if ok {
		ready.Set(1)
	} else {
		ready.Set(0)
	}
}

// ObserveSessionResolution counts one resolver run.
func ObserveSessionResolution(source, outcome string) {
	sessionResolutions.WithLabelValues(source, outcome).Inc()
}

// ObserveStatusUpdate counts one status mutation attempt.
func ObserveStatusUpdate(status, outcome string) {
	statusUpdates.WithLabelValues(status, outcome).Inc()
}

// ObserveFetchFailure counts one degraded dashboard fetch stage.
func ObserveFetchFailure(role, stage string) {
	fetchStageFailures.WithLabelValues(role, stage).Inc()
}

// CanonicalPath collapses resource identifiers so metric labels stay
// low-cardinality.
func CanonicalPath(path string) string {
	if path == "" {
		return "/"
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	switch {
	case len(parts) == 3 && parts[0] == "v1" && parts[1] == "jobs":
		return "/v1/jobs/:id"
	case len(parts) == 4 && parts[0] == "v1" && parts[1] == "jobs" && parts[3] == "apply":
		return "/v1/jobs/:id/apply"
	case len(parts) == 4 && parts[0] == "v1" && parts[1] == "applications" && parts[3] == "status":
		return "/v1/applications/:id/status"
	case len(parts) == 4 && parts[0] == "v1" && parts[1] == "admin" && parts[2] == "categories":
		return "/v1/admin/categories/:id"
	}
	return path
}

// Instrument wraps next with RPS/latency/in-flight measurements.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter captures the response code for metric labels.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
