// Package metrics exposes the Prometheus collectors of the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mucsit"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// SweepRuns counts assignment sweep executions by result (success|error)
	SweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assignment_sweep_runs_total",
		Help:      "Expired-assignment sweep runs by result.",
	}, []string{"result"})

	// SweepDeactivated counts assignments deactivated by the sweep
	SweepDeactivated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "assignment_sweep_deactivated_total",
		Help:      "Assignments deactivated by the expiry sweep.",
	})

	// CounterIncrementFailures counts best-effort view/download increments that failed
	CounterIncrementFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "counter_increment_failures_total",
		Help:      "Failed view/download counter increments by kind and field.",
	}, []string{"kind", "field"})

	// DriveOperations counts calls to the drive backend by operation and result
	DriveOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "drive_operations_total",
		Help:      "Drive backend operations by operation and result.",
	}, []string{"operation", "result"})

	// EventsPublished counts domain events by kind
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Domain events published by kind.",
	}, []string{"kind"})

	// SubscriberFailures counts event subscriber errors and panics by subscriber
	SubscriberFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_subscriber_failures_total",
		Help:      "Event subscriber failures by subscriber.",
	}, []string{"subscriber"})
)

// Result maps an error onto the result label
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Middleware records request counts and latencies per matched route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.Handler()
}
