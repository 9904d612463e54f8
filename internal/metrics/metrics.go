// Package metrics exposes Prometheus collectors for the HTTP API and the
// inventory services.
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
	// HTTPRequests counts API requests by method, route pattern and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assetutil_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "code"})

	// HTTPDuration tracks request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assetutil_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// Operations counts inventory mutations by entity, operation and result.
	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assetutil_operations_total",
		Help: "Total number of inventory mutations",
	}, []string{"entity", "op", "result"})

	// Entities tracks the current number of records per entity.
	Entities = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "assetutil_entities",
		Help: "Current number of stored records per entity",
	}, []string{"entity"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Observer records inventory operations in Operations.
type Observer struct{}

// ObserveOperation increments the counter for entity/op with result ok or
// error.
func (Observer) ObserveOperation(entity, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	Operations.WithLabelValues(entity, op, result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Middleware records HTTPRequests and HTTPDuration. It must wrap the mux
// directly so the matched pattern is visible after the call.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.code)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
