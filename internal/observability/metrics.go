package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "crime_insights"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard service.
type Metrics struct {
	// Dataset snapshot metrics.
	DatasetRows         prometheus.Gauge
	DatasetReady        prometheus.Gauge
	DatasetLoadDuration prometheus.Histogram
	DatasetLoadErrors   prometheus.Counter

	// Aggregation metrics.
	AggregateCache      *prometheus.CounterVec   // labels: fn, result={hit,miss}
	AggregationDuration *prometheus.HistogramVec // labels: fn

	// Prediction metrics.
	Predictions        *prometheus.CounterVec // labels: outcome={success,invalid,error,disabled}
	ClassifierCache    *prometheus.CounterVec // labels: result={hit,miss}
	ClassifierDuration prometheus.Histogram
	ClassifierEnabled  prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Incident rows in the current dataset snapshot.",
		}),
		DatasetReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_ready",
			Help:      "1 when a dataset snapshot is loaded, 0 otherwise.",
		}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a complete fetch and preprocess of the incident export.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		DatasetLoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_load_errors_total",
			Help:      "Total failed dataset loads.",
		}),
		AggregateCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregate_cache_total",
			Help:      "Aggregate cache lookups by function and result.",
		}, []string{"fn", "result"}),
		AggregationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of an uncached aggregation by function.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"fn"}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Prediction requests by outcome.",
		}, []string{"outcome"}),
		ClassifierCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifier_cache_total",
			Help:      "Classifier cache lookups by result.",
		}, []string{"result"}),
		ClassifierDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classifier_request_duration_seconds",
			Help:      "Classifier endpoint request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		ClassifierEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "classifier_enabled",
			Help:      "1 when a classifier endpoint is configured, 0 otherwise.",
		}),
	}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.DatasetRows,
		m.DatasetReady,
		m.DatasetLoadDuration,
		m.DatasetLoadErrors,
		m.AggregateCache,
		m.AggregationDuration,
		m.Predictions,
		m.ClassifierCache,
		m.ClassifierDuration,
		m.ClassifierEnabled,
	}
}
