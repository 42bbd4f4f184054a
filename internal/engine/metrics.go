package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/dasha/internal/domain"
	"github.com/roach88/dasha/internal/period"
	"github.com/roach88/dasha/internal/system"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	TreesBuilt    *prometheus.CounterVec
	Nodes         *prometheus.CounterVec
	Extensions    *prometheus.CounterVec
	Queries       *prometheus.CounterVec
	Failures      *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TreesBuilt: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dasha_trees_built_total",
			Help: "Period trees built, by system",
		}, []string{"system"}),
		Nodes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dasha_nodes_materialized_total",
			Help: "Period tree nodes materialized, by system",
		}, []string{"system"}),
		Extensions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dasha_top_level_extensions_total",
			Help: "Top-level extensions after tree construction, by system",
		}, []string{"system"}),
		Queries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dasha_queries_total",
			Help: "Engine queries, by system and operation",
		}, []string{"system", "op"}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dasha_query_failures_total",
			Help: "Failed engine queries, by system and error code",
		}, []string{"system", "code"}),
		QueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dasha_query_duration_seconds",
			Help:    "Duration of engine queries",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"op"}),
	}
}

// observe records the outcome of one operation and the tree work it caused.
func (m *Metrics) observe(id system.ID, op string, before, after period.Stats, err error) {
	if m == nil {
		return
	}
	sys := string(id)
	m.Queries.WithLabelValues(sys, op).Inc()
	if err != nil {
		code := string(domain.CodeOf(err))
		if code == "" {
			code = "OTHER"
		}
		m.Failures.WithLabelValues(sys, code).Inc()
	}
	if d := after.Nodes - before.Nodes; d > 0 {
		m.Nodes.WithLabelValues(sys).Add(float64(d))
	}
	if d := after.Extensions - before.Extensions; d > 0 {
		m.Extensions.WithLabelValues(sys).Add(float64(d))
	}
}
