// Package metrics exposes the Prometheus instruments for the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts requests by handler and status code.
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutgear",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})

	// HTTPLatencyMS observes request latency in milliseconds.
	HTTPLatencyMS = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "workoutgear",
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	// Reservations counts stock reservation attempts by outcome:
	// success, insufficient, not_found, conflict, retry, error.
	Reservations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutgear",
		Subsystem: "inventory",
		Name:      "reservations_total",
		Help:      "Total number of stock reservation attempts by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPLatencyMS, Reservations)
}

// Handler returns the scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
