// Package gateway – Prometheus instrumentation for upstream classifier calls.
//
// Labels are bounded: "field" is one of the four classification fields and
// "outcome" is ok|error, so cardinality stays flat regardless of traffic.
package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// classifierReqs counts upstream generateContent calls by field and outcome.
	classifierReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_requests_total",
			Help: "Total number of classifier gateway calls.",
		},
		[]string{"field", "outcome"},
	)

	// classifierLat records upstream call duration in seconds by field.
	classifierLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classifier_request_duration_seconds",
			Help:    "Duration of classifier gateway calls in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"field"},
	)
)

func init() {
	prometheus.MustRegister(classifierReqs, classifierLat)
}

// observeClassifierCall records one upstream call.
func observeClassifierCall(field string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	classifierReqs.WithLabelValues(field, outcome).Inc()
	classifierLat.WithLabelValues(field).Observe(elapsed.Seconds())
}
