// Package metrics exposes Prometheus instrumentation for the emulator.
//
// Every service handler reports each request with its action and final
// status; the admin listener serves the collected metrics on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stratus",
		Name:      "requests_total",
		Help:      "Requests handled, by service, action and status code.",
	}, []string{"service", "action", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stratus",
		Name:      "request_duration_seconds",
		Help:      "Request latency, by service and action.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "action"})
)

// ObserveRequest records one handled request.
func ObserveRequest(service, action string, status int, d time.Duration) {
	if action == "" {
		action = "unknown"
	}
	requestsTotal.WithLabelValues(service, action, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(service, action).Observe(d.Seconds())
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
