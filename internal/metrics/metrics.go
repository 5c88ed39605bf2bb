// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records request, login and batch metrics. It satisfies
// auth.LoginObserver and namespace.BatchObserver.
type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	logins          *prometheus.CounterVec
	batchObjects    *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bucket_browser_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bucket_browser_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bucket_browser_logins_total",
			Help: "Completed login attempts by result",
		}, []string{"result"}),
		batchObjects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bucket_browser_batch_objects_total",
			Help: "Objects processed by folder rename and delete, by outcome",
		}, []string{"op", "outcome"}),
	}

	reg.MustRegister(c.requests, c.requestDuration, c.logins, c.batchObjects)
	return c
}

func (c *Collector) RecordRequest(method, route string, status int, duration time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (c *Collector) ObserveLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) ObserveBatchObject(op, outcome string) {
	c.batchObjects.WithLabelValues(op, outcome).Inc()
}

// Handler serves the gathered metrics in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
