// Package middleware – Prometheus instrumentation.
//
// HTTP traffic is labeled by method, registered route, and status. The
// path label uses c.FullPath() so raw URLs — which embed CURPs and folios
// on the lookup route — never become label values. Besides the generic
// HTTP metrics the registration desk gets one business counter,
// registration_outcomes_total, fed from the handler layer.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Label values for registration_outcomes_total.
const (
	OutcomeCreated        = "created"
	OutcomeFolioConflict  = "folio_conflict"
	OutcomePersonConflict = "person_conflict"
	OutcomeInvalid        = "invalid"
	OutcomeError          = "error"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// Status is left out of the latency labels to keep cardinality down.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// Responses are JSON without image payloads; the large bodies travel
	// in requests, so the buckets stop at 1MiB.
	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_size_bytes",
			Help: "Size of HTTP responses in bytes.",
			Buckets: []float64{
				200, 500, 1 << 10, 5 << 10,
				10 << 10, 50 << 10, 100 << 10, 500 << 10,
				1 << 20,
			},
		},
		[]string{"method", "path"},
	)

	registrationOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_outcomes_total",
			Help: "Credential registration submissions by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize, registrationOutcomes)
}

// CountRegistrationOutcome records the result of one credential submission.
// Callers pass one of the Outcome* constants.
func CountRegistrationOutcome(outcome string) {
	registrationOutcomes.WithLabelValues(outcome).Inc()
}

// Metrics instruments each request: totals by status, latency, in-flight
// gauge, and response size. Unmatched routes fall back to the raw URL path
// for the path label; the router 404s those immediately so the set stays
// bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpReqs.WithLabelValues(method, path, status).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
