// Package metrics exposes prometheus instrumentation for the service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	SimulationsTotal *prometheus.CounterVec // status: ok | failed
	SolverDuration   prometheus.Histogram
	UploadsTotal     *prometheus.CounterVec // format: csv | xlsx | inp | sample
	ValidationFailed prometheus.Counter

	reg *prometheus.Registry
}

var (
	registry *Registry
	once     sync.Once
)

// Get returns the singleton metrics registry.
func Get() *Registry {
	once.Do(func() {
		registry = newRegistry()
	})
	return registry
}

func newRegistry() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	r.SimulationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hydronet_simulations_total",
		Help: "Simulation runs by outcome",
	}, []string{"status"})
	r.SolverDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hydronet_solver_duration_seconds",
		Help:    "Wall time of the external EPANET solver",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
	r.UploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hydronet_uploads_total",
		Help: "Network data loads by source format",
	}, []string{"format"})
	r.ValidationFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hydronet_validation_failed_total",
		Help: "Networks rejected by validation",
	})

	r.reg.MustRegister(r.SimulationsTotal, r.SolverDuration, r.UploadsTotal, r.ValidationFailed)
	return r
}

// Handler serves the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
