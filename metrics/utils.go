package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IncrementOperations increments the operation counter with a given status label.
// Example: m.IncrementOperations("add", "success")
func (m *Metrics) IncrementOperations(operation, status string) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordOperationDuration records the duration (in seconds) for an operation.
// Example: defer m.RecordOperationDuration(time.Now(), "query")
func (m *Metrics) RecordOperationDuration(start time.Time, operation string) {
	m.operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// CreateCounter creates a new CounterVec metric and registers it.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
	m.Registry.MustRegister(counter)
	return counter
}

// CreateHistogram creates a new HistogramVec metric and registers it.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	hist := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, labels)
	m.Registry.MustRegister(hist)
	return hist
}

// CreateGauge creates a new GaugeVec metric and registers it.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels)
	m.Registry.MustRegister(gauge)
	return gauge
}
