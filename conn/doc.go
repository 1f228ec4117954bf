// Package conn provides the database connection layer for relvec.
//
// It wraps a gorm-managed MySQL-protocol connection pool behind the small
// Executor interface that the rest of the module consumes: raw statement
// execution, row queries returning generic column maps, and session-pinned
// execution for statement sequences that communicate through session
// variables.
//
// The package includes connection monitoring with automatic reconnection
// and an fx module for dependency injection.
//
// Example usage:
//
//	db, err := conn.NewDB(conn.Config{
//		Connection: conn.ConnectionConfig{
//			Host:     "localhost",
//			Port:     "2881",
//			User:     "root",
//			Password: "secret",
//			DbName:   "vectors",
//		},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	rows, err := db.Query(ctx, "SELECT `_id` FROM `vec_v2_abc` WHERE `_id` IN (?)", "a")
package conn
