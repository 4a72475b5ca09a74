package server

import (
	"github.com/agenthands/geoparse/internal/core/model"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Queries   *prometheus.CounterVec
	Duration  prometheus.Histogram
	Matches   *prometheus.CounterVec
	Truncated prometheus.Counter
}

// NewMetrics creates the query collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geoparse_queries_total",
				Help: "Queries processed, by outcome.",
			},
			[]string{"status"},
		),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "geoparse_query_duration_seconds",
			Help:    "Time spent in ProcessQuery.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		Matches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geoparse_matches_total",
				Help: "Accepted matches, by entity type.",
			},
			[]string{"entity_type"},
		),
		Truncated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geoparse_candidates_truncated_total",
			Help: "Queries whose candidate list was capped.",
		}),
	}
	reg.MustRegister(m.Queries, m.Duration, m.Matches, m.Truncated)
	return m
}

func (m *Metrics) observe(r model.QueryResult) {
	for _, match := range r.Matches {
		m.Matches.WithLabelValues(string(match.EntityType)).Inc()
	}
	if r.Truncated {
		m.Truncated.Inc()
	}
}
