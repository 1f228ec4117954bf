package relvec

import (
	"github.com/relvec/relvec/conn"
	"github.com/relvec/relvec/embedding"
	"github.com/relvec/relvec/logger"
	"github.com/relvec/relvec/metrics"
)

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	connCfg  conn.Config
	executor conn.Executor

	registry        *embedding.Registry
	defaultFunction embedding.Function

	logger  *logger.Logger
	metrics *metrics.Metrics
}

// WithAddress sets the engine host and port.
func WithAddress(host, port string) Option {
	return func(o *clientOptions) {
		o.connCfg.Connection.Host = host
		o.connCfg.Connection.Port = port
	}
}

// WithCredentials sets the engine user and password.
func WithCredentials(user, password string) Option {
	return func(o *clientOptions) {
		o.connCfg.Connection.User = user
		o.connCfg.Connection.Password = password
	}
}

// WithDatabase sets the database (schema) the client operates in.
func WithDatabase(name string) Option {
	return func(o *clientOptions) {
		o.connCfg.Connection.DbName = name
	}
}

// WithConnConfig replaces the whole connection configuration. Address,
// credential and database options applied after this one override its
// corresponding fields.
func WithConnConfig(cfg conn.Config) Option {
	return func(o *clientOptions) {
		o.connCfg = cfg
	}
}

// WithExecutor supplies a pre-built executor instead of opening a
// connection from the configuration. The client will not close it.
func WithExecutor(ex conn.Executor) Option {
	return func(o *clientOptions) {
		o.executor = ex
	}
}

// WithEmbeddingFunction sets the client-wide default embedding function,
// used by collections that carry no binding of their own.
func WithEmbeddingFunction(fn embedding.Function) Option {
	return func(o *clientOptions) {
		o.defaultFunction = fn
	}
}

// WithRegistry replaces the embedding-function registry used to rebuild
// persisted bindings. Defaults to embedding.DefaultRegistry.
func WithRegistry(registry *embedding.Registry) Option {
	return func(o *clientOptions) {
		o.registry = registry
	}
}

// WithLogger attaches a logger.
func WithLogger(log *logger.Logger) Option {
	return func(o *clientOptions) {
		o.logger = log
	}
}

// WithMetrics attaches a metrics recorder; facade operations report
// outcome counters and durations to it.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *clientOptions) {
		o.metrics = m
	}
}

// CollectionOption adjusts how an individual collection handle is opened.
type CollectionOption func(*collectionConfig)

type collectionConfig struct {
	embeddingFunction embedding.Function
	noEmbedding       bool
}

// WithCollectionEmbeddingFunction overrides the collection's embedding
// function for this handle, taking precedence over the persisted binding
// and the client default.
func WithCollectionEmbeddingFunction(fn embedding.Function) CollectionOption {
	return func(c *collectionConfig) {
		c.embeddingFunction = fn
	}
}

// WithoutEmbedding opens the handle with no embedding function even if the
// collection has a persisted binding; text queries will be rejected.
func WithoutEmbedding() CollectionOption {
	return func(c *collectionConfig) {
		c.noEmbedding = true
	}
}
