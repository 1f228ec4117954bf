package conn

import "context"

// Executor is the statement-level interface the rest of the module consumes.
// It abstracts raw SQL execution over the engine's MySQL protocol.
//
// This interface is implemented by the concrete *DB type and by the
// session-scoped executor handed to Session callbacks.
type Executor interface {
	// Query runs a row-returning statement with the given bind parameters
	// and returns the result rows as generic column maps.
	Query(ctx context.Context, stmt string, params ...any) ([]map[string]any, error)

	// Exec runs a statement that returns no rows (DDL, DML, SET).
	Exec(ctx context.Context, stmt string, params ...any) error

	// Session runs fn with an executor whose statements all execute on the
	// same underlying connection. Statement sequences that communicate
	// through session variables require this affinity.
	Session(ctx context.Context, fn func(Executor) error) error
}

// Client extends Executor with connection lifecycle operations.
type Client interface {
	Executor

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Close releases the connection pool.
	Close() error
}
