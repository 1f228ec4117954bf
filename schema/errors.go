package schema

import "errors"

// Sentinel errors returned by the schema package.
var (
	// ErrCollectionNotFound indicates that neither a metadata row nor a
	// physical table exists for the requested collection.
	ErrCollectionNotFound = errors.New("schema: collection not found")

	// ErrCollectionExists indicates a create collides with an existing
	// collection of either generation.
	ErrCollectionExists = errors.New("schema: collection already exists")

	// ErrDimensionRequired indicates that neither an explicit dimension nor
	// an embedding function of known width was supplied.
	ErrDimensionRequired = errors.New("schema: vector dimension is required")

	// ErrDimensionMismatch indicates that the explicit dimension and the
	// embedding function width disagree.
	ErrDimensionMismatch = errors.New("schema: dimension mismatch")

	// ErrMalformedSettings indicates an unreadable settings document in the
	// metadata catalog.
	ErrMalformedSettings = errors.New("schema: malformed collection settings")

	// ErrMalformedTableDDL indicates that a legacy table's DDL could not be
	// reflected into a schema.
	ErrMalformedTableDDL = errors.New("schema: malformed legacy table DDL")
)
