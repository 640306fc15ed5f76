// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Vitals operation labels
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

var (
	VitalsOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "patientchart",
		Name:      "vitals_operations_total",
		Help:      "Vitals records created, updated and deleted.",
	}, []string{"operation"})

	FixtureOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "patientchart",
		Name:      "fixture_api_requests_total",
		Help:      "Patient and visit REST API calls by resource and outcome.",
	}, []string{"resource", "outcome"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "patientchart",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method and status code.",
	}, []string{"method", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "patientchart",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
)

// ObserveRequest records one served HTTP request
func ObserveRequest(method string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
