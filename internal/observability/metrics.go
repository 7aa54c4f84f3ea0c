package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// forecast pipeline and collector.
type Metrics struct {
	BulletinsConsumed prometheus.Counter
	RecordsProduced   prometheus.Counter
	ParseErrors       *prometheus.CounterVec // labels: kind={malformed,stale_date,invalid_size,invalid_argument}
	PipelineRunning   prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// SWPC fetch metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,error}
	FetchDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.BulletinsConsumed,
		m.RecordsProduced,
		m.ParseErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.FetchRequests,
		m.FetchDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		BulletinsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geomagnetic",
			Name:      "bulletins_consumed_total",
			Help:      "Total bulletins read from the source topic.",
		}),
		RecordsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "geomagnetic",
			Name:      "records_produced_total",
			Help:      "Total hourly forecast records loaded.",
		}),
		ParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geomagnetic",
			Name:      "parse_errors_total",
			Help:      "Bulletins rejected by the parser, by error kind.",
		}, []string{"kind"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "geomagnetic",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "geomagnetic",
			Name:      "batch_size",
			Help:      "Number of bulletins per batch extracted from Kafka.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "geomagnetic",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geomagnetic",
			Name:      "swpc_fetch_requests_total",
			Help:      "SWPC bulletin fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "geomagnetic",
			Name:      "swpc_fetch_duration_seconds",
			Help:      "SWPC bulletin fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
