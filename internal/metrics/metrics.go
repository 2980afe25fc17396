package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Fetcher Metrics
var (
	PagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetcher_pages_total",
		Help: "The total number of pages fetched, by outcome",
	}, []string{"status"})

	LogsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fetcher_logs_total",
		Help: "The total number of logs returned by eth_getLogs",
	})

	PageFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fetcher_page_duration_seconds",
		Help:    "Time spent on a single eth_getLogs request",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	})
)

// Worker Metrics
var (
	FetchesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "worker_fetches_in_flight",
		Help: "The number of page fetches currently in flight",
	})

	PagesPlanned = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "worker_pages_planned",
		Help: "The number of pages planned for the current run",
	})
)

// ChainTracker Metrics
var (
	ChainHead = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chain_tracker_chain_head",
		Help: "The latest block number in the current chain",
	})
)
