// Package metrics holds the dashboard's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cognicore/hitflop/pkg/hitflop/filter"
)

var (
	// RequestsTotal counts page and API requests by route and status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hitflop_requests_total",
		Help: "Total number of dashboard requests",
	}, []string{"route", "status"})

	// RequestLatency measures request handling time by route.
	RequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hitflop_request_latency_seconds",
		Help:    "Latency of dashboard requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// CacheTotal counts cache lookups by cache kind and result.
	CacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hitflop_cache_lookups_total",
		Help: "Total number of loader cache lookups",
	}, []string{"kind", "result"})

	// LoadErrorsTotal counts failed artifact loads by kind.
	LoadErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hitflop_load_errors_total",
		Help: "Total number of failed artifact loads",
	}, []string{"kind"})

	// NormalizeDroppedTotal counts rows dropped for unmapped categorical values.
	NormalizeDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hitflop_normalize_dropped_rows_total",
		Help: "Total number of rows dropped by the value normalizer",
	}, []string{"field"})

	// PosterTotal counts poster lookups by outcome.
	PosterTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hitflop_poster_resolutions_total",
		Help: "Total number of poster resolutions by outcome",
	}, []string{"outcome"})
)

// LoaderObserver reports loader cache traffic and failures.
type LoaderObserver struct{}

// Hit implements cache.Observer.
func (LoaderObserver) Hit(kind string) { CacheTotal.WithLabelValues(kind, "hit").Inc() }

// Miss implements cache.Observer.
func (LoaderObserver) Miss(kind string) { CacheTotal.WithLabelValues(kind, "miss").Inc() }

// LoadError implements dataset.Observer.
func (LoaderObserver) LoadError(kind string) { LoadErrorsTotal.WithLabelValues(kind).Inc() }

// ObserveFilter records the rows dropped by one filter run.
func ObserveFilter(stats filter.Stats) {
	for _, r := range stats.Normalized {
		if r.Dropped > 0 {
			NormalizeDroppedTotal.WithLabelValues(r.Field).Add(float64(r.Dropped))
		}
	}
}

// PosterOutcome counts one poster lookup; it satisfies poster.Observer.
func PosterOutcome(outcome string) { PosterTotal.WithLabelValues(outcome).Inc() }
