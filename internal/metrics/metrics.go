// Package metrics provides Prometheus metric collection and exposure for
// the Inkwell server: HTTP request counts and latency, plus counters for
// the post and registration workflows.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers application metrics and registers them with a
// Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  prometheus.Histogram

	postsCreated  prometheus.Counter
	postsUpdated  prometheus.Counter
	postsDeleted  prometheus.Counter
	registrations prometheus.Counter
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inkwell_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "inkwell_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		postsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_posts_created_total",
			Help: "Posts created.",
		}),
		postsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_posts_updated_total",
			Help: "Posts updated.",
		}),
		postsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_posts_deleted_total",
			Help: "Posts deleted.",
		}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inkwell_registrations_total",
			Help: "Accounts registered.",
		}),
	}

	c.registry.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.postsCreated,
		c.postsUpdated,
		c.postsDeleted,
		c.registrations,
	)

	return c
}

// RecordPostCreated increments the created-posts counter.
func (c *Collector) RecordPostCreated() { c.postsCreated.Inc() }

// RecordPostUpdated increments the updated-posts counter.
func (c *Collector) RecordPostUpdated() { c.postsUpdated.Inc() }

// RecordPostDeleted increments the deleted-posts counter.
func (c *Collector) RecordPostDeleted() { c.postsDeleted.Inc() }

// RecordRegistration increments the registrations counter.
func (c *Collector) RecordRegistration() { c.registrations.Inc() }

// Handler returns the /metrics endpoint handler for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// statusWriter captures the response status for request metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.status == 0 {
		sw.status = code
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	return sw.ResponseWriter.Write(b)
}

// Middleware records request counts and latency for every request.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}
		c.httpRequests.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
		c.httpLatency.Observe(time.Since(start).Seconds())
	})
}
