package binrange

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	modeMapped   = "mapped"
	modeUnmapped = "unmapped"
)

// Metrics holds the Prometheus metrics of range aggregation. A nil *Metrics
// records nothing.
type Metrics struct {
	AggregatorsCreated *prometheus.CounterVec
	DocsCollected      prometheus.Counter
	BucketsBuilt       prometheus.Counter
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "binrange_aggregators_created_total",
		Help: "Range aggregators created, by mapped or unmapped field",
	}, []string{"mode"})

	docs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "binrange_docs_collected_total",
		Help: "Documents visited by collecting range aggregators",
	})

	buckets := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "binrange_buckets_built_total",
		Help: "Range buckets materialized into results",
	})

	reg.MustRegister(created, docs, buckets)

	return &Metrics{
		AggregatorsCreated: created,
		DocsCollected:      docs,
		BucketsBuilt:       buckets,
	}
}

func (m *Metrics) aggregatorCreated(mode string) {
	if m == nil {
		return
	}
	m.AggregatorsCreated.WithLabelValues(mode).Inc()
}

func (m *Metrics) docCollected() {
	if m == nil {
		return
	}
	m.DocsCollected.Inc()
}

func (m *Metrics) bucketsBuilt(n int) {
	if m == nil {
		return
	}
	m.BucketsBuilt.Add(float64(n))
}
