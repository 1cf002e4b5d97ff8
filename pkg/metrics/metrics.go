// Package metrics exports pool registry activity as Prometheus metrics.
//
// # Basic Usage
//
//	collector := metrics.NewPoolCollector(prometheus.DefaultRegisterer)
//	reg, _ := pool.NewRegistry(host, pool.WithObserver(collector))
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # Metrics
//
//	prefabpool_spawns_total{prefab, source}      source: pooled | constructed
//	prefabpool_recycles_total{prefab, outcome}   outcome: pooled | destroyed | rejected
//	prefabpool_pool_available{prefab}            free-list length
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/prefabpool/pkg/pool"
)

const namespace = "prefabpool"

// unknownPrefab labels recycles that could not be attributed to a prefab.
const unknownPrefab = "unknown"

// PoolCollector implements pool.Observer on top of Prometheus vectors.
type PoolCollector struct {
	spawns    *prometheus.CounterVec   // spawns by prefab and source
	recycles  *prometheus.CounterVec   // recycles by prefab and outcome
	available *prometheus.GaugeVec     // free-list length by prefab
	frameTime *prometheus.HistogramVec // simulation frame durations
	startTime time.Time
}

var _ pool.Observer = (*PoolCollector)(nil)

// NewPoolCollector creates the collector and registers its metrics with reg.
// A nil reg leaves the metrics unregistered, which is handy in tests.
func NewPoolCollector(reg prometheus.Registerer) *PoolCollector {
	factory := promauto.With(reg)
	return &PoolCollector{
		spawns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "spawns_total",
				Help:      "Total number of spawned instances",
			},
			[]string{"prefab", "source"},
		),
		recycles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recycles_total",
				Help:      "Total number of recycle calls by outcome",
			},
			[]string{"prefab", "outcome"},
		),
		available: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "pool_available",
				Help:      "Inactive instances ready to spawn",
			},
			[]string{"prefab"},
		),
		frameTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "frame_duration_seconds",
				Help:      "Simulation frame duration",
				Buckets: []float64{
					0.00001, // 10µs
					0.0001,  // 100µs
					0.001,   // 1ms
					0.004,
					0.008,
					0.0167, // 60 fps budget
					0.0333, // 30 fps budget
					0.1,
				},
			},
			[]string{"scene"},
		),
		startTime: time.Now(),
	}
}

// Spawned implements pool.Observer.
func (c *PoolCollector) Spawned(prefab string, reused bool) {
	source := "constructed"
	if reused {
		source = "pooled"
	}
	c.spawns.WithLabelValues(prefab, source).Inc()
}

// Recycled implements pool.Observer.
func (c *PoolCollector) Recycled(prefab string, outcome pool.RecycleOutcome) {
	if prefab == "" {
		prefab = unknownPrefab
	}
	c.recycles.WithLabelValues(prefab, outcome.String()).Inc()
}

// Available implements pool.Observer.
func (c *PoolCollector) Available(prefab string, n int) {
	c.available.WithLabelValues(prefab).Set(float64(n))
}

// ObserveFrame records one frame's duration.
func (c *PoolCollector) ObserveFrame(scene string, d time.Duration) {
	c.frameTime.WithLabelValues(scene).Observe(d.Seconds())
}

// StartTime returns when the collector was created
func (c *PoolCollector) StartTime() time.Time {
	return c.startTime
}

// Timer measures elapsed time for an operation
type Timer struct {
	start time.Time
}

// NewTimer starts a timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the time elapsed since the timer started
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
