// Package metrics exposes Prometheus instruments for the engine and the
// HTTP surface.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics holds application-level instruments.
type Metrics struct {
	ledgerAppends     *prometheus.CounterVec
	ratingTransitions *prometheus.CounterVec
	leaderboardReads  prometheus.Counter
}

// New registers engine counters on the default registry.
func New() *Metrics {
	m := &Metrics{
		ledgerAppends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meritboard_ledger_appends_total",
			Help: "Point transactions appended to the ledger, by kind.",
		}, []string{"kind"}),
		ratingTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meritboard_rating_transitions_total",
			Help: "Self-rating state transitions, by target status.",
		}, []string{"status"}),
		leaderboardReads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meritboard_leaderboard_reads_total",
			Help: "Leaderboard projections computed.",
		}),
	}
	prometheus.MustRegister(m.ledgerAppends, m.ratingTransitions, m.leaderboardReads)
	return m
}

func (m *Metrics) RecordLedgerAppend(kind string) {
	if m == nil {
		return
	}
	m.ledgerAppends.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordRatingTransition(status string) {
	if m == nil {
		return
	}
	m.ratingTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordLeaderboardRead() {
	if m == nil {
		return
	}
	m.leaderboardReads.Inc()
}

// HTTPMetrics holds request-level instruments.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers HTTP counters on the default registry.
func NewHTTPMetrics() *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meritboard_http_requests_total",
			Help: "HTTP requests, by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "meritboard_http_request_duration_seconds",
			Help:    "HTTP request latency, by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	prometheus.MustRegister(m.requests, m.duration)
	return m
}

// GinMiddleware records request counts and latencies per route.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Module provides engine and HTTP metrics.
var Module = fx.Module("metrics",
	fx.Provide(New),
	fx.Provide(NewHTTPMetrics),
)
