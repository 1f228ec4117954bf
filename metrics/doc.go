// Package metrics exposes Prometheus metrics for the relvec client.
//
// Each client maintains its own isolated prometheus.Registry to prevent
// metric name collisions when several clients live in one process. The
// built-in metrics cover the statement layer: a counter of executed
// operations by name and status, and a histogram of operation durations.
//
// The package can additionally serve the registry over HTTP on /metrics for
// Prometheus scraping; applications embedding relvec into a service that
// already exposes a registry can instead register collectors on their own
// registry and skip the server.
//
// Usage:
//
//	m := metrics.NewMetrics(metrics.Config{ServiceName: "relvec"})
//	defer m.RecordOperationDuration(time.Now(), "query")
//	m.IncrementOperations("query", "success")
package metrics
