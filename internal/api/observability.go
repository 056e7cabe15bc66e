package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

var (
	reqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "strata",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	reqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "strata", Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"method", "path", "status"},
	)
	decisionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "strata", Name: "authz_decisions_total", Help: "Authorization decisions by outcome and reason"},
		[]string{"decision", "reason"},
	)
	authnTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "strata", Name: "authn_results_total", Help: "Request authentication outcomes"},
		[]string{"outcome"},
	)
	cacheEventTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "strata", Name: "resolution_cache_events_total", Help: "Resolution cache hits, misses and evictions"},
		[]string{"event"},
	)
)

func init() {
	prometheus.MustRegister(reqDuration, reqTotal, decisionTotal, authnTotal, cacheEventTotal)
}

// MetricsMiddleware records basic HTTP metrics
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		dur := time.Since(start).Seconds()
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		observer := reqDuration.WithLabelValues(c.Request.Method, path, strconv.Itoa(status))
		// attach exemplar with trace_id if present
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.IsValid() {
			if eo, ok := observer.(prometheus.ExemplarObserver); ok {
				eo.ObserveWithExemplar(dur, prometheus.Labels{"trace_id": sc.TraceID().String()})
			} else {
				observer.Observe(dur)
			}
		} else {
			observer.Observe(dur)
		}
		reqTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
	}
}

// RecordDecision increments the decision counter.
func RecordDecision(allowed bool, reason string) {
	decision := "denied"
	if allowed {
		decision = "allowed"
	}
	if reason == "" {
		reason = "unspecified"
	}
	decisionTotal.WithLabelValues(decision, reason).Inc()
}

// RecordAuthn increments the authentication outcome counter.
func RecordAuthn(outcome string) {
	authnTotal.WithLabelValues(outcome).Inc()
}

// RecordCacheEvent is handed to the resolution cache as its Recorder.
func RecordCacheEvent(event string) {
	cacheEventTotal.WithLabelValues(event).Inc()
}
