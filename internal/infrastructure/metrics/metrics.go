package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Cache metrics, labelled by cache ("pool", "paths")
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexrouter_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexrouter_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// Pool lookups that reached the factory, by outcome ("present", "absent", "error")
	PoolLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexrouter_pool_lookups_total",
			Help: "Total number of factory getPool calls",
		},
		[]string{"outcome"},
	)

	DiscoveredPaths = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dexrouter_discovered_paths",
		Help:    "Number of candidate paths per discovery",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
	})

	// Quote metrics
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexrouter_quote_requests_total",
			Help: "Total number of quote requests",
		},
		[]string{"mode", "status"},
	)

	QuoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dexrouter_quote_duration_seconds",
			Help:    "Quote aggregation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	CandidateFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexrouter_candidate_failures_total",
			Help: "Candidate quotes degraded to zero output",
		},
		[]string{"path_type"},
	)

	RPCDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dexrouter_rpc_duration_seconds",
			Help:    "External RPC call duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"dex", "method"},
	)

	// Fallbacks taken while building transactions ("legacy_fee", "default_gas")
	TxFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dexrouter_tx_fallbacks_total",
			Help: "Transaction build fallbacks taken",
		},
		[]string{"kind", "call"},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}
