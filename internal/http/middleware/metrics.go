// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file instruments HTTP traffic with Prometheus. Labels are kept to
// method, registered route, and status so cardinality stays bounded: the
// route label is the Gin template (/close-ticket/:id), never the raw URL
// with a ticket id in it, except for unmatched 404 paths.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// reqTotal counts requests by method, route, and status.
	reqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sos",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// reqDuration records latency by method and route. Status is omitted to
	// keep histogram cardinality down.
	reqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sos",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// reqInFlight gauges requests currently being handled.
	reqInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "sos",
			Name:      "http_requests_inflight",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	// respBytes records response sizes by method and route. Buckets span a
	// single-ticket submission response up to a full dashboard listing.
	respBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sos",
			Name:      "http_response_size_bytes",
			Help:      "Size of HTTP responses in bytes.",
			Buckets: []float64{
				256, 1 << 10, 4 << 10, 16 << 10,
				64 << 10, 256 << 10, 1 << 20,
			},
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(reqTotal, reqDuration, reqInFlight, respBytes)
}

// Metrics returns the Prometheus instrumentation middleware. Pair it with a
// /metrics route serving promhttp.Handler().
//
// Per request it increments sos_http_requests_total, observes
// sos_http_request_duration_seconds and sos_http_response_size_bytes, and
// tracks sos_http_requests_inflight across the handler. A negative size
// (nothing written) is skipped rather than recorded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqInFlight.Inc()
		defer reqInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path // unmatched route, e.g. 404
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		reqTotal.WithLabelValues(method, path, status).Inc()
		reqDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			respBytes.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
