// Package promobs exports repair events as Prometheus metrics.
package promobs

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	jsonmend "github.com/reoring/jsonmend"
)

// Observer counts repair outcomes, applied fixes and attempts per repair.
type Observer struct {
	// Repairs tracks finished repairs by kind and status
	Repairs *prometheus.CounterVec
	// Fixes tracks fixes applied, the literal fallback included
	Fixes *prometheus.CounterVec
	// Attempts tracks reparses per repair
	Attempts prometheus.Histogram
}

var _ jsonmend.Observer = (*Observer)(nil)

// New registers the metrics on reg; nil uses prometheus.DefaultRegisterer.
// Registering twice on the same registry panics, like promauto.
func New(reg prometheus.Registerer) *Observer {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Observer{
		Repairs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jsonmend_repairs_total",
				Help: "Total number of repairs by failure kind and outcome",
			},
			[]string{"kind", "status"},
		),
		Fixes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jsonmend_fixes_total",
				Help: "Total number of fixes applied",
			},
			[]string{"fix"},
		),
		Attempts: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "jsonmend_repair_attempts",
				Help:    "Reparses performed per repair",
				Buckets: prometheus.LinearBuckets(0, 2, 11),
			},
		),
	}
}

func (o *Observer) Observe(_ context.Context, ev jsonmend.Event) {
	switch {
	case ev.Stage == jsonmend.StageFixing:
		o.Fixes.WithLabelValues(string(ev.Fix)).Inc()
	case ev.Stage.Terminal():
		o.Repairs.WithLabelValues(ev.Kind.String(), ev.Status.String()).Inc()
		o.Attempts.Observe(float64(ev.Attempts))
	}
}
