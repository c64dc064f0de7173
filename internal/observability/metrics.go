package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// prediction service.
type Metrics struct {
	PredictionsTotal   *prometheus.CounterVec // labels: zone={green,yellow,red}
	PredictionErrors   *prometheus.CounterVec // labels: stage={validate,synthesize,transform,infer,classify}
	PredictionDuration prometheus.Histogram
	BatchSize          prometheus.Histogram
	ModelsLoaded       prometheus.Gauge

	// Result cache metrics.
	CacheLookups *prometheus.CounterVec // labels: result={hit,miss}

	// Prediction publishing metrics.
	PublishedPredictions prometheus.Counter
	PublishErrors        prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PredictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydrozone",
			Name:      "predictions_total",
			Help:      "Completed predictions by resulting zone.",
		}, []string{"zone"}),
		PredictionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydrozone",
			Name:      "prediction_errors_total",
			Help:      "Failed predictions by pipeline stage.",
		}, []string{"stage"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hydrozone",
			Name:      "prediction_duration_seconds",
			Help:      "Duration of a single-coordinate inference.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hydrozone",
			Name:      "batch_size",
			Help:      "Number of coordinates per batch prediction request.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250},
		}),
		ModelsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hydrozone",
			Name:      "models_loaded",
			Help:      "1 when the transform and both models are loaded, 0 otherwise.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hydrozone",
			Name:      "cache_lookups_total",
			Help:      "Prediction cache lookups by result.",
		}, []string{"result"}),
		PublishedPredictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hydrozone",
			Name:      "published_predictions_total",
			Help:      "Prediction records published to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hydrozone",
			Name:      "publish_errors_total",
			Help:      "Failures publishing prediction records.",
		}),
	}

	prometheus.MustRegister(
		m.PredictionsTotal,
		m.PredictionErrors,
		m.PredictionDuration,
		m.BatchSize,
		m.ModelsLoaded,
		m.CacheLookups,
		m.PublishedPredictions,
		m.PublishErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PredictionsTotal:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hydrozone", Name: "predictions_total"}, []string{"zone"}),
		PredictionErrors:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hydrozone", Name: "prediction_errors_total"}, []string{"stage"}),
		PredictionDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hydrozone", Name: "prediction_duration_seconds"}),
		BatchSize:            prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hydrozone", Name: "batch_size"}),
		ModelsLoaded:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hydrozone", Name: "models_loaded"}),
		CacheLookups:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "hydrozone", Name: "cache_lookups_total"}, []string{"result"}),
		PublishedPredictions: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hydrozone", Name: "published_predictions_total"}),
		PublishErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hydrozone", Name: "publish_errors_total"}),
	}
}
