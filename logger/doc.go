// Package logger provides structured logging for the relvec client.
//
// It wraps Uber's Zap logger behind a small interface so that every other
// package in the module (conn, schema, the collection facade) can log
// without depending on Zap directly. The wrapper logs JSON to stderr with
// ISO8601 timestamps and attaches the service name and process id to every
// entry.
//
// # Direct Usage
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:       logger.Info,
//		ServiceName: "relvec",
//	})
//	log.Info("collection created", nil, map[string]interface{}{
//		"collection": "documents",
//	})
//
// # FX Module Integration
//
// For applications wired with Uber's fx, use FXModule which provides the
// logger and registers a shutdown hook that flushes buffered entries:
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Provide(func() logger.Config { return logger.Config{Level: logger.Info} }),
//	)
//
// All methods are safe for concurrent use by multiple goroutines.
package logger
