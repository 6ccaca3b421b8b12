// Package metrics holds Prometheus instruments shared across the sync
// layer.  All collectors are registered with the global registry, so
// importing this package anywhere is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Number of live entries in the cache store.",
		})

	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Cumulative number of cache hits served without a fetch.",
		})

	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Cumulative number of cache misses that triggered a fetch.",
		})

	CacheEvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Cumulative number of entries removed, by reason.",
		}, []string{"reason"}) // expired | tag | overwrite

	SourceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_errors_total",
			Help: "Cumulative number of source API failures, by kind.",
		}, []string{"kind"})

	IngestRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_records_total",
			Help: "Cumulative number of ingested records, by outcome.",
		}, []string{"outcome"}) // created | updated | failed
)

func init() {
	prometheus.MustRegister(
		CacheEntries,
		CacheHitsTotal,
		CacheMissesTotal,
		CacheEvictionsTotal,
		SourceErrorsTotal,
		IngestRecordsTotal,
	)
}
