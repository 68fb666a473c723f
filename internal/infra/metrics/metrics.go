package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	SnapshotFetchTotal     = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "snapshot_fetch_total", Help: "Snapshot fetches by product and outcome"}, []string{"product", "outcome"})
	SnapshotFetchLatencyMs = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "snapshot_fetch_latency_ms", Help: "Snapshot fetch latency including retries", Buckets: prometheus.ExponentialBuckets(5, 2, 12)})
	SnapshotRetriesTotal   = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "snapshot_retries_total", Help: "Snapshot request retries by exchange"}, []string{"exchange"})
	APIErrorsTotal         = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "api_errors_total", Help: "API errors by exchange and kind"}, []string{"exchange", "kind"})
	BookLevels             = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "book_levels", Help: "Price levels in the current book"}, []string{"product", "side"})
	BookOrders             = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "book_orders", Help: "Resting orders in the current book"}, []string{"product", "side"})
	BookRebuildsTotal      = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "book_rebuilds_total", Help: "Book rebuilds from snapshot by product"}, []string{"product"})
	BookPublishTotal       = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "book_publish_total", Help: "Book summary publications by outcome"}, []string{"outcome"})
	ArchiveWritesTotal     = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "archive_writes_total", Help: "Snapshot archive writes by outcome"}, []string{"outcome"})
)

func Init(logger zerolog.Logger) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	toRegister := []prometheus.Collector{
		SnapshotFetchTotal, SnapshotFetchLatencyMs, SnapshotRetriesTotal, APIErrorsTotal,
		BookLevels, BookOrders, BookRebuildsTotal, BookPublishTotal, ArchiveWritesTotal,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range toRegister {
		_ = reg.Register(c)
	}
	logger.Info().Msg("Prometheus metrics initialized")
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
