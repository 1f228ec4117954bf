package metrics

import (
	"context"
	"errors"
	"log"
	"net/http"

	"go.uber.org/fx"
)

// FXModule defines the Fx module for the metrics package.
// It provides the NewMetrics factory and manages the lifecycle of the
// /metrics HTTP server when one is configured.
var FXModule = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// RegisterMetricsLifecycle starts the /metrics HTTP server on application
// start and shuts it down gracefully on stop. When no server is configured
// (empty address) both hooks are no-ops.
func RegisterMetricsLifecycle(lc fx.Lifecycle, m *Metrics) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if m.Server == nil {
				return nil
			}
			go func() {
				if err := m.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Printf("ERROR: metrics server stopped: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if m.Server == nil {
				return nil
			}
			return m.Server.Shutdown(ctx)
		},
	})
}
