// Package metrics exposes service measurements as Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.trai.ch/rtosm/internal/core/ports"
)

const namespace = "rtosm"

// Metrics implements ports.Metrics.
type Metrics struct {
	workers        prometheus.Gauge
	updatesRunning prometheus.Gauge
	updates        *prometheus.CounterVec
	updateDuration prometheus.Histogram
	regions        prometheus.Gauge
}

var _ ports.Metrics = (*Metrics)(nil)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers",
			Help:      "Number of registered task workers.",
		}),
		updatesRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "updates_in_flight",
			Help:      "Number of incremental updates holding a limiter slot.",
		}),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Finished update attempts by result.",
		}, []string{"result"}),
		updateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_duration_seconds",
			Help:      "Duration of update attempts including clipping.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		}),
		regions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_regions",
			Help:      "Number of regions in the published catalog; 0 when unavailable.",
		}),
	}
	reg.MustRegister(m.workers, m.updatesRunning, m.updates, m.updateDuration, m.regions)
	return m
}

// SetWorkers records the size of the worker registry.
func (m *Metrics) SetWorkers(n int) { m.workers.Set(float64(n)) }

// SetUpdatesInFlight records the number of held limiter slots.
func (m *Metrics) SetUpdatesInFlight(n int) { m.updatesRunning.Set(float64(n)) }

// ObserveUpdate counts a finished update attempt.
func (m *Metrics) ObserveUpdate(result string, elapsed time.Duration) {
	m.updates.WithLabelValues(result).Inc()
	m.updateDuration.Observe(elapsed.Seconds())
}

// SetCatalogRegions records the size of the published catalog.
func (m *Metrics) SetCatalogRegions(n int) { m.regions.Set(float64(n)) }

// Nop discards all measurements.
type Nop struct{}

var _ ports.Metrics = Nop{}

func (Nop) SetWorkers(int)                      {}
func (Nop) SetUpdatesInFlight(int)              {}
func (Nop) ObserveUpdate(string, time.Duration) {}
func (Nop) SetCatalogRegions(int)               {}
