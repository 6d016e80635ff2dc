// Package metrics provides Prometheus metrics for the card tracker.
// Scrape these at /metrics for dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardfolio_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardfolio_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Sync Metrics
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardfolio_sync_runs_total",
			Help: "Sync operations by kind and result",
		},
		[]string{"kind", "result"}, // kind: "sets", "cards", "pricing"
	)

	SyncUpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardfolio_sync_upserts_total",
			Help: "Rows upserted by sync operations",
		},
		[]string{"kind"},
	)

	SyncSourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardfolio_sync_source_failures_total",
			Help: "Upstream source failures tolerated during pricing sync",
		},
		[]string{"source"},
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cardfolio_sync_duration_seconds",
			Help:    "Time taken by a sync batch",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// Price Worker Metrics
	PriceUpdatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardfolio_price_updates_total",
			Help: "Total number of card prices updated",
		},
	)

	PriceUpdatesToday = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardfolio_price_updates_today",
			Help: "Number of card prices updated today (resets at midnight)",
		},
	)

	PriceQueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardfolio_price_queue_size",
			Help: "Number of cards waiting in the priority refresh queue",
		},
	)

	// Upstream quota
	JustTCGQuotaRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardfolio_justtcg_quota_remaining",
			Help: "Remaining JustTCG API requests for today",
		},
	)

	JustTCGQuotaLimit = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardfolio_justtcg_quota_limit",
			Help: "Daily JustTCG API request limit",
		},
	)

	// Portfolio Metrics
	PortfolioEntriesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardfolio_portfolio_entries_total",
			Help: "Total number of portfolio entries across all users",
		},
	)

	PortfolioValueUSD = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardfolio_portfolio_value_usd",
			Help: "Total estimated portfolio value across all users in USD",
		},
	)

	// Watchlist Metrics
	WatchlistAlertsTriggered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardfolio_watchlist_alerts_triggered_total",
			Help: "Watchlist alerts that crossed their threshold",
		},
	)

	// Card Database Metrics
	CardDatabaseSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cardfolio_card_database_size",
			Help: "Number of unique cards in the database",
		},
	)

	SearchCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardfolio_search_cache_hits_total",
			Help: "Card search LRU cache hit count",
		},
	)

	SearchCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardfolio_search_cache_misses_total",
			Help: "Card search LRU cache miss count",
		},
	)
)
