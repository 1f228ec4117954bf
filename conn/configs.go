package conn

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Config defines the top-level configuration structure for the database
// connection layer. It contains the connection parameters and the pool
// tuning knobs.
type Config struct {
	// Connection holds the parameters used to build the DSN.
	Connection ConnectionConfig

	// ConnectionDetails holds the connection pool tuning parameters.
	ConnectionDetails PoolConfig

	// Logger is an optional logger from the logger package.
	// If provided, it is used for connection lifecycle logging.
	Logger Logger

	// Tracer is an optional tracer from the tracer package. If provided,
	// every executed statement is wrapped in a span.
	Tracer Tracer
}

// ConnectionConfig contains the parameters used to build the MySQL-protocol
// DSN for the target engine.
type ConnectionConfig struct {
	// Host is the database server hostname or IP address
	// Default: "localhost"
	Host string

	// Port is the database server port
	// Default: "3306"
	Port string

	// User is the database username
	User string

	// Password is the database password
	Password string

	// DbName is the database (schema) to connect to
	DbName string

	// Charset is the connection character set
	// Default: "utf8mb4"
	Charset string

	// ParseTime enables parsing of DATE/DATETIME columns into time.Time
	ParseTime bool

	// Loc is the location used when parsing time values
	// Default: "Local"
	Loc string

	// TLS selects a registered TLS configuration by name; empty disables TLS
	TLS string

	// Timeout is the dial timeout as a duration string, e.g. "5s"
	Timeout string

	// ReadTimeout is the per-read I/O timeout as a duration string
	ReadTimeout string

	// WriteTimeout is the per-write I/O timeout as a duration string
	WriteTimeout string
}

// PoolConfig contains connection pool tuning parameters.
type PoolConfig struct {
	// MaxOpenConns is the maximum number of open connections to the database
	// Default: 50
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections in the pool
	// Default: 25
	MaxIdleConns int

	// ConnMaxLifetime is the maximum amount of time a connection may be reused
	// Default: 1 minute
	ConnMaxLifetime time.Duration
}

// Logger is an interface that matches the logger package's Logger.
type Logger interface {
	Error(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

// Tracer is an interface that matches the tracer package's Tracer.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	RecordErrorOnSpan(span trace.Span, err error)
}

// Default values for configuration
const (
	DefaultHost            = "localhost"
	DefaultPort            = "3306"
	DefaultCharset         = "utf8mb4"
	DefaultLoc             = "Local"
	DefaultMaxOpenConns    = 50
	DefaultMaxIdleConns    = 25
	DefaultConnMaxLifetime = 1 * time.Minute
)
