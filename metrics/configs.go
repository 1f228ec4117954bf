package metrics

// Config holds the metrics configuration.
type Config struct {
	// Address is the listen address of the /metrics HTTP server.
	// When empty, no server is started and the registry is only
	// available programmatically.
	Address string

	// ServiceName is applied to all metrics as a constant "service" label.
	ServiceName string

	// EnableDefaultCollectors registers the Go runtime and process
	// collectors in addition to the relvec operation metrics.
	EnableDefaultCollectors bool
}
