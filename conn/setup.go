package conn

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB is a thread-safe wrapper around gorm.DB that provides connection
// monitoring, automatic reconnection, and raw statement execution over the
// engine's MySQL protocol. It guards all database operations with a mutex
// to ensure thread safety and includes mechanisms for graceful shutdown
// and connection health monitoring.
type DB struct {
	Client          *gorm.DB
	cfg             Config
	mu              *sync.RWMutex
	shutdownSignal  chan struct{}
	retryChanSignal chan error

	closeRetryChanOnce sync.Once
	closeShutdownOnce  sync.Once
}

// NewDB creates a new DB instance with the provided configuration.
// It establishes the initial database connection and sets up the internal
// state for connection monitoring and recovery. If the initial connection
// fails, it returns an error.
func NewDB(cfg Config) (*DB, error) {
	client, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("error in connecting to database: %w", err)
	}

	return &DB{
		Client:          client,
		cfg:             cfg,
		mu:              &sync.RWMutex{},
		shutdownSignal:  make(chan struct{}),
		retryChanSignal: make(chan error, 1),
	}, nil
}

// connect establishes a connection to the database using the provided
// configuration. It builds the connection DSN, opens the connection with
// GORM, and configures the connection pool.
// Returns the initialized GORM DB instance or an error if the connection fails.
func connect(cfg Config) (*gorm.DB, error) {
	// Set defaults
	host := cfg.Connection.Host
	if host == "" {
		host = DefaultHost
	}
	port := cfg.Connection.Port
	if port == "" {
		port = DefaultPort
	}
	charset := cfg.Connection.Charset
	if charset == "" {
		charset = DefaultCharset
	}
	parseTime := "True"
	if !cfg.Connection.ParseTime {
		parseTime = "False"
	}
	loc := cfg.Connection.Loc
	if loc == "" {
		loc = DefaultLoc
	}

	// Build DSN (Data Source Name)
	// Format: username:password@tcp(host:port)/dbname?param=value
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=%s&loc=%s",
		cfg.Connection.User,
		cfg.Connection.Password,
		host,
		port,
		cfg.Connection.DbName,
		charset,
		parseTime,
		loc,
	)

	// Add optional parameters
	if cfg.Connection.TLS != "" {
		dsn += "&tls=" + cfg.Connection.TLS
	}
	if cfg.Connection.Timeout != "" {
		dsn += "&timeout=" + cfg.Connection.Timeout
	}
	if cfg.Connection.ReadTimeout != "" {
		dsn += "&readTimeout=" + cfg.Connection.ReadTimeout
	}
	if cfg.Connection.WriteTimeout != "" {
		dsn += "&writeTimeout=" + cfg.Connection.WriteTimeout
	}

	database, err := gorm.Open(
		mysql.Open(dsn),
		&gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	databaseInstance, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Set connection pool parameters
	maxOpenConns := cfg.ConnectionDetails.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = DefaultMaxOpenConns
	}
	maxIdleConns := cfg.ConnectionDetails.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = DefaultMaxIdleConns
	}
	connMaxLifetime := cfg.ConnectionDetails.ConnMaxLifetime
	if connMaxLifetime <= 0 {
		connMaxLifetime = DefaultConnMaxLifetime
	}

	databaseInstance.SetMaxOpenConns(maxOpenConns)
	databaseInstance.SetMaxIdleConns(maxIdleConns)
	databaseInstance.SetConnMaxLifetime(connMaxLifetime)

	if cfg.Logger != nil {
		cfg.Logger.Info("successfully connected to database", nil, map[string]interface{}{
			"host": host,
			"port": port,
			"db":   cfg.Connection.DbName,
		})
	} else {
		log.Println("INFO: Successfully connected to database")
	}

	return database, nil
}

// Query runs a row-returning statement and collects the result rows as
// generic column maps.
func (d *DB) Query(ctx context.Context, stmt string, params ...any) (rows []map[string]any, err error) {
	ctx, finish := d.startSpan(ctx, "db.query")
	defer func() { finish(err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.Client == nil {
		return nil, ErrNotConnected
	}

	if err := d.Client.WithContext(ctx).Raw(stmt, params...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return rows, nil
}

// Exec runs a statement that returns no rows.
func (d *DB) Exec(ctx context.Context, stmt string, params ...any) (err error) {
	ctx, finish := d.startSpan(ctx, "db.exec")
	defer func() { finish(err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.Client == nil {
		return ErrNotConnected
	}

	if err := d.Client.WithContext(ctx).Exec(stmt, params...).Error; err != nil {
		return fmt.Errorf("exec failed: %w", err)
	}
	return nil
}

// startSpan opens a statement span when a tracer is configured. The
// returned finish func records the outcome and ends the span; without a
// tracer it is a no-op.
func (d *DB) startSpan(ctx context.Context, name string) (context.Context, func(error)) {
	if d.cfg.Tracer == nil {
		return ctx, func(error) {}
	}
	ctx, span := d.cfg.Tracer.StartSpan(ctx, name)
	return ctx, func(err error) {
		if err != nil {
			d.cfg.Tracer.RecordErrorOnSpan(span, err)
		}
		span.End()
	}
}

// Ping verifies the connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.Client == nil {
		return ErrNotConnected
	}

	db, err := d.Client.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return db.PingContext(ctx)
}

// Close releases the connection pool.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.Client == nil {
		return nil
	}

	db, err := d.Client.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return db.Close()
}

// RetryConnection continuously attempts to reconnect to the database when
// notified of a connection failure. It operates as a goroutine that waits
// for signals on retryChanSignal before attempting reconnection. The
// function respects context cancellation and shutdown signals, ensuring
// graceful termination when requested.
func (d *DB) RetryConnection(ctx context.Context) {
outerLoop:
	for {
		select {
		case <-d.shutdownSignal:
			log.Println("INFO: Stopping RetryConnection loop due to shutdown signal")
			return
		case <-ctx.Done():
			return
		case <-d.retryChanSignal:
		innerLoop:
			for {
				select {
				case <-d.shutdownSignal:
					return
				case <-ctx.Done():
					return
				default:
					newClient, err := connect(d.cfg)
					if err != nil {
						log.Printf("ERROR: database reconnection failed: %v", err)
						time.Sleep(time.Second)
						continue innerLoop
					}
					d.mu.Lock()
					d.Client = newClient
					d.mu.Unlock()
					log.Println("INFO: Successfully reconnected to database")
					continue outerLoop
				}
			}
		}
	}
}

// MonitorConnection periodically checks the health of the database
// connection and triggers reconnection attempts when necessary. It runs as
// a goroutine that performs health checks at regular intervals (10 seconds)
// and signals the RetryConnection goroutine when a failure is detected.
func (d *DB) MonitorConnection(ctx context.Context) {
	defer d.closeRetryChanOnce.Do(func() {
		close(d.retryChanSignal)
	})

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-d.shutdownSignal:
			log.Println("INFO: Stopping MonitorConnection loop due to shutdown signal")
			return
		case <-ticker.C:
			err := d.healthCheck()
			if err != nil {
				select {
				case d.retryChanSignal <- err:
				default:
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// healthCheck pings the database with a 5 second timeout to verify
// connectivity.
func (d *DB) healthCheck() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.Client == nil {
		return ErrNotConnected
	}

	db, err := d.Client.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance during health check: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed during health check: %w", err)
	}

	return nil
}

// GracefulShutdown stops the monitoring goroutines and closes the
// connection pool.
func (d *DB) GracefulShutdown() error {
	d.closeShutdownOnce.Do(func() {
		close(d.shutdownSignal)
	})

	d.closeRetryChanOnce.Do(func() {
		close(d.retryChanSignal)
	})

	return d.Close()
}
