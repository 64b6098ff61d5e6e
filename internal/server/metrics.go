package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests     *prometheus.CounterVec
	failures     *prometheus.CounterVec
	cache        *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	permutations prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rdfc_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"route", "status"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rdfc_canonicalize_failures_total",
			Help: "Failed canonicalizations by error code",
		}, []string{"code"}),
		cache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rdfc_cache_lookups_total",
			Help: "Result cache lookups by outcome",
		}, []string{"result"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rdfc_canonicalize_duration_seconds",
			Help:    "Canonicalization request duration",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"algorithm"}),
		permutations: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rdfc_canonicalize_permutations",
			Help:    "Permutations evaluated per canonicalization",
			Buckets: []float64{0, 1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
	}
}
