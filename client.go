package relvec

import (
	"context"
	"fmt"
	"time"

	"github.com/relvec/relvec/conn"
	"github.com/relvec/relvec/embedding"
	"github.com/relvec/relvec/logger"
	"github.com/relvec/relvec/metrics"
	"github.com/relvec/relvec/schema"
	"github.com/relvec/relvec/sqlgen"
)

// Client is the catalog facade: collection and database lifecycle.
type Client struct {
	db      conn.Executor
	ownedDB *conn.DB

	manager  *schema.Manager
	registry *embedding.Registry

	defaultFunction embedding.Function
	logger          *logger.Logger
	metrics         *metrics.Metrics
}

// NewClient builds a client from functional options. Without WithExecutor
// it opens a connection from the configured address and owns its lifetime.
func NewClient(opts ...Option) (*Client, error) {
	options := &clientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	registry := options.registry
	if registry == nil {
		registry = embedding.DefaultRegistry
	}

	client := &Client{
		registry:        registry,
		defaultFunction: options.defaultFunction,
		logger:          options.logger,
		metrics:         options.metrics,
	}

	if options.executor != nil {
		client.db = options.executor
	} else {
		db, err := conn.NewDB(options.connCfg)
		if err != nil {
			return nil, err
		}
		client.db = db
		client.ownedDB = db
	}

	var managerLogger schema.Logger
	if options.logger != nil {
		managerLogger = options.logger
	}
	client.manager = schema.NewManager(client.db, registry, managerLogger)

	return client, nil
}

// Close releases the connection when the client owns it.
func (c *Client) Close() error {
	if c.ownedDB == nil {
		return nil
	}
	return c.ownedDB.GracefulShutdown()
}

// observe reports one facade operation outcome to the metrics recorder.
func (c *Client) observe(operation string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.IncrementOperations(operation, status)
	c.metrics.RecordOperationDuration(start, operation)
}

// CreateCollectionOptions describes a collection to create. Schema wins
// over the Dimension/Distance/Analyzer shorthand fields when both are set.
type CreateCollectionOptions struct {
	Schema *schema.Schema

	Dimension int
	Distance  string
	Analyzer  string

	// EmbeddingFunction binds a function explicitly; NoEmbedding declines
	// embedding entirely. With neither, the client default and then the
	// registry default apply.
	EmbeddingFunction embedding.Function
	NoEmbedding       bool
}

func (o CreateCollectionOptions) schemaTree() (*schema.Schema, error) {
	if o.Schema != nil {
		return o.Schema, nil
	}
	tree := &schema.Schema{}
	if o.Dimension > 0 || o.Distance != "" {
		metric := sqlgen.DistanceMetric("")
		if o.Distance != "" {
			parsed, err := sqlgen.ParseDistanceMetric(o.Distance)
			if err != nil {
				return nil, err
			}
			metric = parsed
		}
		tree.Vector = &schema.VectorIndexConfig{
			HNSW: schema.HNSWConfig{Dimension: o.Dimension, Distance: metric},
		}
	}
	if o.Analyzer != "" {
		tree.FullText = &schema.FullTextIndexConfig{Analyzer: o.Analyzer}
	}
	return tree, nil
}

// CreateCollection creates a current-generation collection and returns a
// handle to it.
func (c *Client) CreateCollection(ctx context.Context, name string, opts CreateCollectionOptions) (col *Collection, err error) {
	defer func(start time.Time) { c.observe("create_collection", start, err) }(time.Now())

	tree, err := opts.schemaTree()
	if err != nil {
		return nil, err
	}

	fn := opts.EmbeddingFunction
	if fn == nil && !opts.NoEmbedding {
		fn = c.defaultFunction
	}

	meta, resolvedFn, err := c.manager.Create(ctx, schema.CreateSpec{
		Name:              name,
		Schema:            tree,
		EmbeddingFunction: fn,
		NoEmbedding:       opts.NoEmbedding,
	})
	if err != nil {
		return nil, err
	}
	return c.newCollection(meta, resolvedFn)
}

// GetCollection opens a handle to an existing collection of either
// generation.
func (c *Client) GetCollection(ctx context.Context, name string, opts ...CollectionOption) (col *Collection, err error) {
	defer func(start time.Time) { c.observe("get_collection", start, err) }(time.Now())

	cfg := collectionConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	meta, err := c.manager.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	fn, err := c.resolveFunction(meta, cfg)
	if err != nil {
		return nil, err
	}
	return c.newCollection(meta, fn)
}

// GetOrCreateCollection opens the named collection, creating it first when
// absent.
func (c *Client) GetOrCreateCollection(ctx context.Context, name string, opts CreateCollectionOptions) (*Collection, error) {
	exists, err := c.manager.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		getOpts := []CollectionOption{}
		if opts.EmbeddingFunction != nil {
			getOpts = append(getOpts, WithCollectionEmbeddingFunction(opts.EmbeddingFunction))
		} else if opts.NoEmbedding {
			getOpts = append(getOpts, WithoutEmbedding())
		}
		return c.GetCollection(ctx, name, getOpts...)
	}
	return c.CreateCollection(ctx, name, opts)
}

// ListCollections returns handles to every collection of either
// generation, deduplicated by logical name. Collections whose persisted
// embedding binding cannot be rebuilt are returned without a function.
func (c *Client) ListCollections(ctx context.Context) (cols []*Collection, err error) {
	defer func(start time.Time) { c.observe("list_collections", start, err) }(time.Now())

	metas, err := c.manager.List(ctx)
	if err != nil {
		return nil, err
	}

	cols = make([]*Collection, 0, len(metas))
	for _, meta := range metas {
		fn, fnErr := c.resolveFunction(meta, collectionConfig{})
		if fnErr != nil {
			if c.logger != nil {
				c.logger.Warn("opening collection without embedding function", fnErr,
					map[string]interface{}{"collection": meta.Name})
			}
			fn = nil
		}
		col, colErr := c.newCollection(meta, fn)
		if colErr != nil {
			return nil, colErr
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// DeleteCollection drops the collection's table and metadata row.
func (c *Client) DeleteCollection(ctx context.Context, name string) (err error) {
	defer func(start time.Time) { c.observe("delete_collection", start, err) }(time.Now())
	return c.manager.Delete(ctx, name)
}

// HasCollection reports whether a collection of either generation exists.
func (c *Client) HasCollection(ctx context.Context, name string) (bool, error) {
	return c.manager.Exists(ctx, name)
}

// CountCollections counts collections across both generations.
func (c *Client) CountCollections(ctx context.Context) (int, error) {
	metas, err := c.manager.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(metas), nil
}

// ForkCollection creates a new collection with the source's schema and
// embedding binding and copies every record into it. Later mutations of
// either collection do not affect the other.
func (c *Client) ForkCollection(ctx context.Context, source, target string) (col *Collection, err error) {
	defer func(start time.Time) { c.observe("fork_collection", start, err) }(time.Now())

	sourceCol, err := c.GetCollection(ctx, source)
	if err != nil {
		return nil, err
	}

	targetCol, err := c.CreateCollection(ctx, target, CreateCollectionOptions{
		Schema:            sourceCol.meta.Schema,
		EmbeddingFunction: sourceCol.fn,
		NoEmbedding:       sourceCol.fn == nil,
	})
	if err != nil {
		return nil, err
	}

	if err := c.db.Exec(ctx, sqlgen.CopyTable(targetCol.table, sourceCol.table)); err != nil {
		return nil, fmt.Errorf("relvec: cannot copy records from %q to %q: %w", source, target, err)
	}
	return targetCol, nil
}

// resolveFunction applies the embedding-function resolution order for an
// existing collection: handle override (including explicit none), then the
// persisted binding, then the client default, then the registry default.
func (c *Client) resolveFunction(meta *schema.CollectionMetadata, cfg collectionConfig) (embedding.Function, error) {
	if cfg.embeddingFunction != nil {
		return cfg.embeddingFunction, nil
	}
	if cfg.noEmbedding {
		return nil, nil
	}
	if meta.EmbeddingFunction != nil {
		fn, err := c.registry.Build(meta.EmbeddingFunction.Name, meta.EmbeddingFunction.Properties)
		if err != nil {
			return nil, fmt.Errorf("relvec: cannot rebuild embedding function for %q: %w", meta.Name, err)
		}
		return fn, nil
	}
	if c.defaultFunction != nil {
		return c.defaultFunction, nil
	}
	return c.registry.Default()
}

func (c *Client) newCollection(meta *schema.CollectionMetadata, fn embedding.Function) (*Collection, error) {
	table, err := meta.TableName()
	if err != nil {
		return nil, err
	}
	return &Collection{
		client: c,
		meta:   meta,
		table:  table,
		fn:     fn,
	}, nil
}

// Database admin operations. Names follow the same validator as collection
// names.

// CreateDatabase creates a database if it does not already exist.
func (c *Client) CreateDatabase(ctx context.Context, name string) (err error) {
	defer func(start time.Time) { c.observe("create_database", start, err) }(time.Now())

	stmt, err := sqlgen.CreateDatabase(name)
	if err != nil {
		return err
	}
	return c.db.Exec(ctx, stmt)
}

// UseDatabase switches the session's default database.
func (c *Client) UseDatabase(ctx context.Context, name string) error {
	stmt, err := sqlgen.UseDatabase(name)
	if err != nil {
		return err
	}
	return c.db.Exec(ctx, stmt)
}

// ListDatabases returns the database names visible to the connection.
func (c *Client) ListDatabases(ctx context.Context) ([]string, error) {
	rows, err := c.db.Query(ctx, sqlgen.ShowDatabases())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		for _, v := range row {
			if s, ok := columnString(v); ok && s != "" {
				names = append(names, s)
			}
		}
	}
	return names, nil
}

// HasDatabase reports whether the named database exists.
func (c *Client) HasDatabase(ctx context.Context, name string) (bool, error) {
	names, err := c.ListDatabases(ctx)
	if err != nil {
		return false, err
	}
	for _, candidate := range names {
		if candidate == name {
			return true, nil
		}
	}
	return false, nil
}

// DeleteDatabase drops the named database. Dropping an absent database is
// a not-found error.
func (c *Client) DeleteDatabase(ctx context.Context, name string) (err error) {
	defer func(start time.Time) { c.observe("delete_database", start, err) }(time.Now())

	exists, err := c.HasDatabase(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrDatabaseNotFound, name)
	}

	stmt, err := sqlgen.DropDatabase(name)
	if err != nil {
		return err
	}
	return c.db.Exec(ctx, stmt)
}
