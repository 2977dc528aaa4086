package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics of export runs.
type Metrics struct {
	// Registry owns every metric below. It is never the default registry,
	// so NewMetrics may be called more than once per process.
	Registry *prometheus.Registry

	itemsTotal   *prometheus.CounterVec
	itemDuration *prometheus.HistogramVec
	attempts     prometheus.Histogram
	batches      prometheus.Counter
}

// NewMetrics creates a dedicated registry and registers the export metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		itemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invoicer_export_items_total",
				Help: "Documents processed by batch export, by outcome.",
			},
			[]string{"backend", "status"},
		),
		itemDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "invoicer_export_item_duration_seconds",
				Help:    "Time to render and capture one document.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
		attempts: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "invoicer_export_item_attempts",
				Help:    "Capture attempts per document.",
				Buckets: []float64{1, 2, 3, 5, 8},
			},
		),
		batches: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "invoicer_export_batches_total",
				Help: "Batch export runs started.",
			},
		),
	}
}

// RecordItem records the outcome of one exported document.
func (m *Metrics) RecordItem(backend string, ok bool, attempts int, d time.Duration) {
	status := "success"
	if !ok {
		status = "failure"
	}
	m.itemsTotal.WithLabelValues(backend, status).Inc()
	m.itemDuration.WithLabelValues(backend).Observe(d.Seconds())
	if attempts > 0 {
		m.attempts.Observe(float64(attempts))
	}
}

// IncrBatch counts a started batch.
func (m *Metrics) IncrBatch() {
	m.batches.Inc()
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
