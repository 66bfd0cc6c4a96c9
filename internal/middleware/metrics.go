package middleware

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "memories"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "http_in_flight_requests",
			Help:      "Number of HTTP requests being served",
		},
	)

	reactionToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reaction_toggles_total",
			Help:      "Reaction toggles by target (memory, comment) and outcome (added, removed)",
		},
		[]string{"target", "outcome"},
	)

	commentsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "comments_created_total",
			Help:      "Comments created, split into top-level comments and replies",
		},
		[]string{"kind"},
	)

	imagesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "image_upload_bytes_total",
			Help:      "Bytes of memory photos written to object storage",
		},
	)
)

// Metrics returns a gin middleware that collects Prometheus metrics
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		// route template (/api/memories/:id), never the raw path
		route := routeLabel(c.FullPath())

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveReactionToggle counts a completed toggle on a memory or comment
func ObserveReactionToggle(target string, reacted bool) {
	outcome := "removed"
	if reacted {
		outcome = "added"
	}
	reactionToggles.WithLabelValues(target, outcome).Inc()
}

// ObserveCommentCreated counts a new comment
func ObserveCommentCreated(isReply bool) {
	kind := "top_level"
	if isReply {
		kind = "reply"
	}
	commentsCreated.WithLabelValues(kind).Inc()
}

// ObserveImageUpload adds an uploaded object's size
func ObserveImageUpload(size int64) {
	imagesUploaded.Add(float64(size))
}

// RegisterDBStats exposes connection pool statistics of db
func RegisterDBStats(db *sql.DB, dbName string) error {
	return prometheus.Register(collectors.NewDBStatsCollector(db, dbName))
}

func routeLabel(path string) string {
	if path == "" {
		return "unmatched"
	}
	return path
}
