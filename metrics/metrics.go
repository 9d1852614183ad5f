package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the protocol's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// Calls counts finished calls by call name and outcome.
	Calls *prometheus.CounterVec

	// ArenaHighWater is the largest number of arena bytes any request staged.
	ArenaHighWater prometheus.Gauge

	// StagedBytes is the distribution of arena bytes per request.
	StagedBytes prometheus.Histogram
}

// New registers the collectors on reg. A nil reg creates unregistered
// collectors, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Calls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hostcall_calls_total",
				Help: "Total number of calls marshalled through the shared block",
			},
			[]string{"call", "outcome"},
		),
		ArenaHighWater: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "hostcall_arena_high_water_bytes",
				Help: "Largest number of arena bytes staged by a single request",
			},
		),
		StagedBytes: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hostcall_staged_bytes",
				Help:    "Arena bytes staged per request",
				Buckets: prometheus.ExponentialBuckets(16, 4, 8),
			},
		),
	}
}

// ObserveCall counts one finished call.
func (m *Metrics) ObserveCall(call, outcome string) {
	if m == nil {
		return
	}
	m.Calls.WithLabelValues(call, outcome).Inc()
}

// ObserveStaged records the bytes one request staged and the arena's
// high-water mark after it.
func (m *Metrics) ObserveStaged(staged, peak uint32) {
	if m == nil {
		return
	}
	m.StagedBytes.Observe(float64(staged))
	m.ArenaHighWater.Set(float64(peak))
}
