// Package metrics provides Prometheus metrics for the Miles server.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "miles_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "miles_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Tool Query Metrics
	ToolRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "miles_tool_requests_total",
			Help: "Tool queries by tool name and outcome",
		},
		[]string{"tool", "result"}, // result: "ok", "not_found", "invalid"
	)

	CardResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "miles_card_resolutions_total",
			Help: "Card name resolutions by match kind",
		},
		[]string{"kind"}, // "exact", "fuzzy", "cached", "miss"
	)

	// Dataset Metrics
	CatalogCardsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "miles_catalog_cards_total",
			Help: "Number of cards in the loaded catalog snapshot",
		},
	)

	TransferProgramsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "miles_transfer_programs_total",
			Help: "Number of source programs in the transfer partner table",
		},
	)

	ValuationsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "miles_valuations_total",
			Help: "Number of programs in the default valuation table",
		},
	)

	// Data Updater Metrics
	DataDownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "miles_data_downloads_total",
			Help: "Dataset download attempts by dataset and result",
		},
		[]string{"dataset", "result"}, // result: "updated", "skipped", "failed"
	)

	DataUpdateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "miles_data_update_duration_seconds",
			Help:    "Time taken by one dataset update check",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	SnapshotReloadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "miles_snapshot_reloads_total",
			Help: "Number of catalog snapshot reloads",
		},
	)

	// Wallet Metrics
	WalletCardsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "miles_wallet_cards_total",
			Help: "Number of cards in the user wallet",
		},
	)
)
