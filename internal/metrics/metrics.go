// Package metrics collects and exposes Prometheus metrics for a
// harvesting run. Exposition is opt-in via the -metrics-addr flag.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the run's Prometheus metrics. A nil *Collector is not
// usable; callers gate every call on nil, same as the progress reporter.
type Collector struct {
	registry *prometheus.Registry

	attempts      *prometheus.CounterVec
	acquired      prometheus.Gauge
	inFlight      prometheus.Gauge
	batchDuration prometheus.Histogram
}

// NewCollector creates a Collector backed by its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "beerscape_attempts_total",
			Help: "Probe attempts by outcome.",
		}, []string{"outcome"}),
		acquired: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "beerscape_acquired",
			Help: "Acquired resources, existing inventory included.",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "beerscape_in_flight",
			Help: "Probes currently in flight.",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "beerscape_batch_duration_seconds",
			Help:    "Wall time per batch round.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	c.registry.MustRegister(c.attempts, c.acquired, c.inFlight, c.batchDuration)
	return c
}

// FetchStarted marks one probe in flight.
func (c *Collector) FetchStarted() {
	c.inFlight.Inc()
}

// FetchFinished marks one probe done.
func (c *Collector) FetchFinished() {
	c.inFlight.Dec()
}

// RecordOutcome counts one folded probe outcome. The outcome label matches
// fetch.Status.String().
func (c *Collector) RecordOutcome(outcome string) {
	c.attempts.WithLabelValues(outcome).Inc()
}

// SetAcquired records the current acquired total.
func (c *Collector) SetAcquired(n int) {
	c.acquired.Set(float64(n))
}

// ObserveBatch records one batch round's duration in seconds.
func (c *Collector) ObserveBatch(seconds float64) {
	c.batchDuration.Observe(seconds)
}

// Handler returns the exposition handler for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr. Blocks until the listener fails.
func (c *Collector) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
