package conn

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// sessionExecutor is the Executor handed to Session callbacks. It routes
// all statements through a single transaction, which pins them to one
// underlying connection. Session variables set inside the callback are
// therefore visible to the callback's later statements.
type sessionExecutor struct {
	tx *gorm.DB
}

func (s *sessionExecutor) Query(ctx context.Context, stmt string, params ...any) ([]map[string]any, error) {
	if s.tx == nil {
		return nil, ErrSessionClosed
	}
	var rows []map[string]any
	if err := s.tx.WithContext(ctx).Raw(stmt, params...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("session query failed: %w", err)
	}
	return rows, nil
}

func (s *sessionExecutor) Exec(ctx context.Context, stmt string, params ...any) error {
	if s.tx == nil {
		return ErrSessionClosed
	}
	if err := s.tx.WithContext(ctx).Exec(stmt, params...).Error; err != nil {
		return fmt.Errorf("session exec failed: %w", err)
	}
	return nil
}

// Session on a session executor reuses the already pinned connection.
func (s *sessionExecutor) Session(_ context.Context, fn func(Executor) error) error {
	if s.tx == nil {
		return ErrSessionClosed
	}
	return fn(s)
}

// Session executes the given function with connection affinity: every
// statement issued through the callback's executor runs on the same
// underlying connection. The affinity is implemented with a database
// transaction; if the callback returns an error the transaction is rolled
// back, otherwise it is committed.
//
// Example usage:
//
//	err := db.Session(ctx, func(ex conn.Executor) error {
//		if err := ex.Exec(ctx, setStmt); err != nil {
//			return err
//		}
//		rows, err := ex.Query(ctx, searchStmt)
//		...
//	})
func (d *DB) Session(ctx context.Context, fn func(Executor) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.Client == nil {
		return ErrNotConnected
	}

	return d.Client.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ex := &sessionExecutor{tx: tx}
		defer func() { ex.tx = nil }()
		return fn(ex)
	})
}
