// Package telemetry provides application-level observability for the ByteTide backend.
//
// All metrics are registered against the default Prometheus registry and served
// on a dedicated side-channel HTTP port (default 9090) started in cmd/server.
// The scrape endpoint is always GET /metrics and is not part of the Gin router,
// so it never passes through rate limiting or auth middleware.
//
// HTTP metrics use c.FullPath() (route template such as /api/v1/projects/:id)
// rather than the raw request URL to prevent unbounded label cardinality from
// user-supplied path segments such as project IDs.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts processed HTTP requests by method, route template,
	// and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration is a latency histogram by method and route template.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	// ProjectSubmissionsTotal counts project submission attempts by outcome
	// (accepted, validation_failed, compensated, error).
	ProjectSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_submissions_total",
			Help: "Total number of project submission attempts, by outcome.",
		},
		[]string{"outcome"},
	)

	// FileUploadBytesTotal counts bytes accepted into object storage by file type
	// (platform file kind or "custom-csv").
	FileUploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "file_upload_bytes_total",
			Help: "Total bytes of project files uploaded to object storage, by file type.",
		},
		[]string{"file_type"},
	)

	// CleanupFailuresTotal counts best-effort cleanup actions that failed and were
	// tolerated (orphaned storage objects are the accepted cost).
	CleanupFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cleanup_failures_total",
			Help: "Total number of tolerated best-effort cleanup failures, by resource.",
		},
		[]string{"resource"},
	)

	// DBOpenConnections gauges the current database pool state, polled every 30s.
	DBOpenConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Current number of open database connections (in use + idle).",
		},
	)
)

// StartDBStatsCollector begins exporting DB pool statistics to Prometheus.
// It polls db.Stats() every 30 seconds in a background goroutine for the
// lifetime of the process.
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			stats := db.Stats()
			DBOpenConnections.Set(float64(stats.OpenConnections))
		}
	}()
	slog.Debug("database stats collector started")
}
