package conn

import "errors"

// Sentinel errors returned by the connection layer.
var (
	// ErrNotConnected indicates that an operation was attempted before the
	// connection was established or after it was closed.
	ErrNotConnected = errors.New("database connection is not initialized")

	// ErrSessionClosed indicates that a session-scoped executor was used
	// outside its Session callback.
	ErrSessionClosed = errors.New("session executor used outside its session")
)
