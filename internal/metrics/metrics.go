// Package metrics exposes the process's Prometheus collectors: pool
// saturation gauges and HTTP request counters/latency histograms, scraped
// at /metrics.
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
	poolSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "picoweather_pool_size",
		Help: "Fixed number of connections managed by the pool.",
	})
	poolBusy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "picoweather_pool_busy_connections",
		Help: "Number of connections currently checked out of the pool.",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "picoweather_http_requests_total",
		Help: "Total HTTP requests processed, by method and status.",
	}, []string{"method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "picoweather_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

// PoolStats is the subset of pool.Pool's state the metrics package needs,
// kept narrow so this package does not import internal/pool.
type PoolStats interface {
	Size() int
	Busy() int
}

// ObservePool sets the pool gauges from a live snapshot. Intended to be
// called periodically (e.g. on every /metrics scrape via a collector, or
// from a ticker at startup).
func ObservePool(p PoolStats) {
	poolSize.Set(float64(p.Size()))
	poolBusy.Set(float64(p.Busy()))
}

// Middleware wraps a handler, recording request counts and latency.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		httpRequests.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.Method).Observe(time.Since(started).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Handler returns the /metrics exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
