// Package metrics constructs the metrics the application will track.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// This holds the single set of metrics we will maintain for the web
// layer. The mining and storage metrics live with the packages that
// produce them and share the default registry.
var (
	requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "utxochain",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of requests by method, route and status code",
	}, []string{"method", "route", "code"})

	duration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "utxochain",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of requests by method and route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	errorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "utxochain",
		Subsystem: "http",
		Name:      "errors_total",
		Help:      "Number of requests that ended in an error",
	})

	panics = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "utxochain",
		Subsystem: "http",
		Name:      "panics_total",
		Help:      "Number of recovered handler panics",
	})
)

// AddRequest records a completed request.
func AddRequest(method string, route string, statusCode int, took time.Duration) {
	requests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	duration.WithLabelValues(method, route).Observe(took.Seconds())
}

// AddError increments the errors metric by 1.
func AddError() {
	errorsTotal.Inc()
}

// AddPanic increments the panics metric by 1.
func AddPanic() {
	panics.Inc()
}

// Handler returns the handler serving every registered metric.
func Handler() http.Handler {
	return promhttp.Handler()
}
