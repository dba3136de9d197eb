package server

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jeanpaul/learnbot/internal/engine"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnbot_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "learnbot_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// turnsTotal counts finished turns by outcome.
	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnbot_turns_total",
			Help: "Total conversation turns by outcome",
		},
		[]string{"store", "outcome"},
	)

	knowledgeEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "learnbot_knowledge_entries",
			Help: "Number of entries in the knowledge base",
		},
		[]string{"store"},
	)

	matchScore = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "learnbot_match_score",
			Help:    "Similarity score of answered questions",
			Buckets: prometheus.LinearBuckets(0.6, 0.05, 9),
		},
		[]string{"store"},
	)

	persistenceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnbot_persistence_failures_total",
			Help: "Learned entries that could not be saved",
		},
		[]string{"store"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "learnbot_active_sessions",
			Help: "Number of conversation sessions held by the server",
		},
	)

	metricsRegistered atomic.Bool
)

// RegisterMetrics registers the collectors with the default registry. It
// is safe to call more than once.
func RegisterMetrics() {
	if !metricsRegistered.CompareAndSwap(false, true) {
		return
	}
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDurationSeconds,
		turnsTotal,
		knowledgeEntries,
		matchScore,
		persistenceFailures,
		activeSessions,
	)
}

// prometheusMiddleware records request counts and latency per route.
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDurationSeconds.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

func observeOutcome(store string, out engine.Outcome, entries int) {
	turnsTotal.WithLabelValues(store, out.Kind.String()).Inc()
	knowledgeEntries.WithLabelValues(store).Set(float64(entries))
	if out.Match != nil {
		matchScore.WithLabelValues(store).Observe(out.Match.Score)
	}
	if out.Warning != nil {
		persistenceFailures.WithLabelValues(store).Inc()
	}
}
