package conn

import (
	"context"
	"sync"

	"go.uber.org/fx"
)

// FXModule is an fx module that provides the database connection component.
// It registers the DB constructor for dependency injection and sets up
// lifecycle hooks to properly initialize and shut down the connection.
//
// This module provides the Client interface, not the *DB concrete type.
var FXModule = fx.Module("conn",
	fx.Provide(
		NewDBWithDI, // Returns *DB for internal lifecycle
		fx.Annotate(
			ProvideClient,      // Returns Client interface
			fx.As(new(Client)), // Expose as Client interface
		),
	),
	fx.Invoke(RegisterDBLifecycle),
)

// ProvideClient wraps the concrete *DB and returns it as the Client
// interface. This enables applications to depend on the interface rather
// than the concrete type.
func ProvideClient(db *DB) Client {
	return db
}

// DBParams groups the dependencies needed to create a DB via dependency
// injection.
//
// The embedded fx.In marker enables automatic injection of the struct
// fields from the dependency container.
type DBParams struct {
	fx.In

	Config Config
}

// NewDBWithDI creates a new DB using dependency injection. This function is
// designed to be used with Uber's fx dependency injection framework where
// the Config dependency is automatically provided via the DBParams struct.
func NewDBWithDI(params DBParams) (*DB, error) {
	return NewDB(params.Config)
}

// DBLifeCycleParams groups the dependencies needed for connection lifecycle
// management.
type DBLifeCycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	DB        *DB
}

// RegisterDBLifecycle registers lifecycle hooks for the database connection
// component. It sets up:
// 1. Connection monitoring on application start
// 2. Automatic reconnection mechanism on application start
// 3. Graceful shutdown of database connections on application stop
//
// The function uses a WaitGroup to ensure that all goroutines complete
// before the application terminates.
func RegisterDBLifecycle(params DBLifeCycleParams) {
	wg := &sync.WaitGroup{}
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				params.DB.MonitorConnection(ctx)
			}()

			wg.Add(1)
			go func() {
				defer wg.Done()
				params.DB.RetryConnection(ctx)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.DB.closeShutdownOnce.Do(func() {
				close(params.DB.shutdownSignal)
			})

			wg.Wait()

			params.DB.closeRetryChanOnce.Do(func() {
				close(params.DB.retryChanSignal)
			})

			return params.DB.Close()
		},
	})
}
