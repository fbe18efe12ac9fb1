// Package metrics holds the Prometheus collectors exported by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Greeting variants recorded by GreetingsTotal
const (
	VariantSync  = "sync"
	VariantAsync = "async"
)

// Metrics bundles the collectors and the registry they are registered on.
// A private registry keeps parallel tests from colliding on the default one.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	GreetingsTotal  *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Number of HTTP requests by method, route and status code.",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency by method and route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		GreetingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greetings_total",
				Help: "Number of greetings produced by variant.",
			},
			[]string{"variant"},
		),
	}

	m.Registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.GreetingsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveGreeting increments the greeting counter for variant
func (m *Metrics) ObserveGreeting(variant string) {
	if m == nil {
		return
	}
	m.GreetingsTotal.WithLabelValues(variant).Inc()
}
