// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics exposes Prometheus metrics for geocoding attempts and the
// HTTP API.
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

// Recorder holds the collectors. It implements geocoder.Observer.
type Recorder struct {
	gatherer prometheus.Gatherer

	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewRecorder registers the collectors in a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()

	return newRecorder(reg, reg)
}

func newRecorder(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		gatherer: gatherer,

		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geokit",
			Subsystem: "geocoder",
			Name:      "attempts_total",
			Help:      "Geocoding attempts by provider and outcome",
		}, []string{"provider", "outcome"}),

		attemptDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "geokit",
			Subsystem: "geocoder",
			Name:      "attempt_duration_seconds",
			Help:      "Geocoding attempt latency in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),

		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geokit",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed",
		}, []string{"method", "path", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "geokit",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "path"}),
	}
}

// ObserveAttempt records a single provider attempt.
func (r *Recorder) ObserveAttempt(provider string, success bool, elapsed time.Duration) {
	outcome := "failure"
	if success {
		outcome = "success"
	}

	r.attempts.WithLabelValues(provider, outcome).Inc()
	r.attemptDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// Middleware records request metrics.
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// route pattern keeps cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		method := c.Request.Method

		r.requests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		r.requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the metrics in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
