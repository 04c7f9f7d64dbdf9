// Package metrics owns the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Count of HTTP requests"},
		[]string{"path", "method", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"},
	)
	admissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "booking_admissions_total", Help: "Booking admission decisions by offering and outcome"},
		[]string{"offering", "outcome"},
	)
	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "booking_events_published_total", Help: "Booking events handed to the broker"},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(httpReqTotal, httpLatency, admissions, eventsPublished)
}

// ObserveHTTP records one finished request.  path should be the route
// pattern, not the raw URL, to keep label cardinality bounded.
func ObserveHTTP(path, method string, status int, elapsed time.Duration) {
	httpReqTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(path, method).Observe(elapsed.Seconds())
}

// Admission outcomes.
const (
	OutcomeAdmitted = "admitted"
	OutcomeConflict = "conflict"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// RecordAdmission counts one admission decision.
func RecordAdmission(offeringID, outcome string) {
	admissions.WithLabelValues(offeringID, outcome).Inc()
}

// RecordPublish counts one event publish attempt.
func RecordPublish(err error) {
	if err != nil {
		eventsPublished.WithLabelValues("error").Inc()
		return
	}
	eventsPublished.WithLabelValues("ok").Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler { return promhttp.Handler() }
