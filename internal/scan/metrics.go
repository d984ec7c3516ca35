package scan

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Scan outcomes recorded in lector_scans_total.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics counts scan outcomes.
type Metrics struct {
	Scans         *prometheus.CounterVec
	ProductMisses prometheus.Counter
}

// NewMetrics creates the scan counters and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lector",
			Name:      "scans_total",
			Help:      "Scans processed, by outcome.",
		}, []string{"outcome"}),
		ProductMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lector",
			Name:      "scan_product_misses_total",
			Help:      "Decoded scans whose product code was not in the local catalog.",
		}),
	}
	for _, o := range []string{OutcomeAccepted, OutcomeRejected, OutcomeFailed} {
		m.Scans.WithLabelValues(o)
	}
	if reg != nil {
		reg.MustRegister(m.Scans, m.ProductMisses)
	}
	return m
}
