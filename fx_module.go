package relvec

import (
	"go.uber.org/fx"

	"github.com/relvec/relvec/conn"
	"github.com/relvec/relvec/logger"
	"github.com/relvec/relvec/metrics"
)

// FXModule is an fx module that provides the relvec Client on top of the
// conn module's connection. Logger and metrics are picked up when present
// in the container.
var FXModule = fx.Module("relvec",
	fx.Provide(NewClientWithDI),
)

// ClientParams groups the dependencies needed to create a Client via
// dependency injection.
//
// The embedded fx.In marker enables automatic injection of the struct
// fields from the dependency container.
type ClientParams struct {
	fx.In

	Conn    conn.Client
	Logger  *logger.Logger   `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
}

// NewClientWithDI creates a Client using dependency injection. The
// connection lifecycle stays with the conn module; this client never owns
// it.
func NewClientWithDI(params ClientParams) (*Client, error) {
	opts := []Option{WithExecutor(params.Conn)}
	if params.Logger != nil {
		opts = append(opts, WithLogger(params.Logger))
	}
	if params.Metrics != nil {
		opts = append(opts, WithMetrics(params.Metrics))
	}
	return NewClient(opts...)
}
