package tracer

// Config holds the tracer configuration.
type Config struct {
	// ServiceName identifies this process in trace backends.
	ServiceName string

	// AppEnv is the deployment environment tag (e.g. "production").
	AppEnv string

	// EnableExport ships spans to an OTLP HTTP endpoint. The endpoint is
	// taken from the standard OTEL_EXPORTER_OTLP_* environment variables.
	EnableExport bool
}
