package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are registered per Server so tests can use their own registry.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Records  prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qfilter_queries_total",
				Help: "Total number of list queries by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qfilter_query_duration_seconds",
				Help:    "List query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		Records: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "qfilter_query_records",
				Help:    "Records returned per successful query",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
		),
	}
	reg.MustRegister(m.Requests, m.Duration, m.Records)
	return m
}
