package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics encapsulates the Prometheus registry and the optional HTTP server
// responsible for exposing the relvec operation metrics.
type Metrics struct {
	// Server is the HTTP server exposing the /metrics endpoint.
	// Nil when Config.Address is empty.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	Registry *prometheus.Registry

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// NewMetrics initializes a Metrics instance with a dedicated registry.
//
// The setup includes:
//   - A per-client Prometheus registry
//   - Optional Go runtime and process collectors
//   - A constant "service" label applied to all metrics
//   - An HTTP server exposing /metrics when Config.Address is set
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	if cfg.EnableDefaultCollectors {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	registerer := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	operationsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "relvec_operations_total",
		Help: "Number of executed relvec operations by name and status.",
	}, []string{"operation", "status"})

	operationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "relvec_operation_duration_seconds",
		Help:    "Duration of relvec operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	registerer.MustRegister(operationsTotal, operationDuration)

	m := &Metrics{
		Registry:          registry,
		operationsTotal:   operationsTotal,
		operationDuration: operationDuration,
	}

	if cfg.Address != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		m.Server = &http.Server{
			Addr:    cfg.Address,
			Handler: mux,
		}
	}

	return m
}
