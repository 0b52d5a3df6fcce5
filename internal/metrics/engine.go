package metrics

import "github.com/prometheus/client_golang/prometheus"

// Index, search and ingestion Prometheus metrics.
var (
	IndexDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tabdex",
			Name:      "index_documents",
			Help:      "Documents in the live index",
		},
	)

	IngestRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tabdex",
			Name:      "ingest_rows_total",
			Help:      "Rows seen during ingestion",
		},
		[]string{"dataset", "status"}, // "indexed" / "skipped" / "malformed"
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tabdex",
			Name:      "search_duration_seconds",
			Help:      "Federated query duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tabdex",
			Name:      "search_results",
			Help:      "Results returned per federated query",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	ReindexDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tabdex",
			Name:      "reindex_duration_seconds",
			Help:      "Full re-index duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)

var engineMetricsRegistered bool

// RegisterEngineMetrics registers index, search and ingestion metrics. Must be called once from main.
func RegisterEngineMetrics() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexDocuments)
	prometheus.MustRegister(IngestRowsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(ReindexDuration)
	engineMetricsRegistered = true
}
