package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds. Retrieval and generation dominate the
	// upper range.
	latencyBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000, 30000,
	}

	RequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustbook_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	RequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trustbook_latency_ms",
			Help:    "HTTP request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"route"},
	)

	Connections = promauto.With(registerer).NewGauge(
		prometheus.GaugeOpts{
			Name: "trustbook_connections",
			Help: "Number of in-flight requests",
		},
	)

	QueryOutcomes = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustbook_query_outcomes_total",
			Help: "Query outcomes: answered, cached, denied, not_ready, failed",
		},
		[]string{"outcome"},
	)

	StageLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trustbook_stage_latency_ms",
			Help:    "Latency of the embed, search and generate stages in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"stage"},
	)

	IndexedChunks = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "trustbook_indexed_chunks_total",
			Help: "Number of chunks embedded and stored in the vector store",
		},
	)
)

type MetricsConfig struct {
	EnableLatency     bool
	EnableConnections bool
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableLatency:     true,
		EnableConnections: false,
	}
}

var Config = DefaultMetricsConfig()

func Initialize(cfg MetricsConfig) {
	Config = cfg
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}

// Gatherer exposes the private registry to the /metrics handler.
func Gatherer() prometheus.Gatherer {
	return registry
}
