// Package metrics provides Prometheus instrumentation for the KPI server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PipelineRunsTotal counts batch computations by outcome.
	PipelineRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kpi_pipeline_runs_total",
		Help: "Total pipeline runs",
	}, []string{"status"})

	// PipelineDuration tracks how long a full batch computation takes.
	PipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kpi_pipeline_duration_seconds",
		Help:    "Pipeline run duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// SnapshotDiagnostics tracks data-quality diagnostics in the
	// currently published snapshot.
	SnapshotDiagnostics = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kpi_snapshot_diagnostics",
		Help: "Diagnostics recorded in the published snapshot",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kpi_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kpi_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
