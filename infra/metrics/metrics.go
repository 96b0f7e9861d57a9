package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "crossbook"

// Metrics groups the service's counters and gauges.
type Metrics struct {
	Submitted  *prometheus.CounterVec
	Rejected   *prometheus.CounterVec
	Matches    prometheus.Counter
	MatchedQty prometheus.Counter
	Resting    prometheus.Gauge
	Symbols    prometheus.Gauge
	PassTime   prometheus.Histogram
	OutboxErrs prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_submitted_total",
			Help:      "Accepted order submissions by side.",
		}, []string{"side"}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Rejected order submissions by reason.",
		}, []string{"reason"}),
		Matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "Match records emitted.",
		}),
		MatchedQty: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matched_quantity_total",
			Help:      "Sum of matched quantity.",
		}),
		Resting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resting_orders",
			Help:      "Orders currently resting in the book.",
		}),
		Symbols: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registered_symbols",
			Help:      "Registered ticker symbols.",
		}),
		PassTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_pass_seconds",
			Help:      "Duration of a full matching pass.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		OutboxErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_errors_total",
			Help:      "Match batches that could not be written to the outbox.",
		}),
	}

	reg.MustRegister(
		m.Submitted, m.Rejected, m.Matches, m.MatchedQty,
		m.Resting, m.Symbols, m.PassTime, m.OutboxErrs,
	)
	return m
}
