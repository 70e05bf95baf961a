package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	intentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studytracker_intents_total",
			Help: "Total number of user intents by outcome",
		},
		[]string{"intent", "outcome"},
	)

	snapshotsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studytracker_snapshots_total",
			Help: "Total number of course snapshots applied",
		},
	)

	coursesGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studytracker_courses",
			Help: "Number of courses in the latest snapshot",
		},
	)

	streamClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studytracker_stream_clients",
			Help: "Number of connected live stream clients",
		},
	)
)

// MetricsMiddleware collects Prometheus metrics for each request
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		c.Next()

		httpRequestsInFlight.Dec()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// RecordIntent counts one user intent; outcome is "ok", "invalid",
// "not_found" or "error".
func RecordIntent(intent, outcome string) {
	intentsTotal.WithLabelValues(intent, outcome).Inc()
}

// RecordSnapshot counts an applied snapshot of n courses.
func RecordSnapshot(n int) {
	snapshotsTotal.Inc()
	coursesGauge.Set(float64(n))
}

// StreamOpened tracks a live stream client; call the returned func on close.
func StreamOpened() func() {
	streamClients.Inc()
	return streamClients.Dec
}
