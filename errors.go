package relvec

import "errors"

// Sentinel errors raised by the facade's client-side validation. Engine
// errors pass through wrapped, not replaced.
var (
	// ErrNoIDs indicates an operation that requires ids received none.
	ErrNoIDs = errors.New("relvec: at least one id is required")

	// ErrEmptyID indicates an empty string in an id list.
	ErrEmptyID = errors.New("relvec: ids must be non-empty")

	// ErrDuplicateID indicates a repeated id within one call.
	ErrDuplicateID = errors.New("relvec: duplicate id in batch")

	// ErrLengthMismatch indicates inconsistent parallel array lengths.
	ErrLengthMismatch = errors.New("relvec: parallel arrays must have equal lengths")

	// ErrDimensionMismatch indicates a record vector whose length differs
	// from the collection's configured dimension.
	ErrDimensionMismatch = errors.New("relvec: embedding dimension mismatch")

	// ErrNoEmbeddingFunction indicates that texts were supplied to an
	// operation but the collection has no bound embedding function.
	ErrNoEmbeddingFunction = errors.New("relvec: collection has no embedding function")

	// ErrNothingToAdd indicates an Add/Upsert call that carries neither
	// documents nor embeddings.
	ErrNothingToAdd = errors.New("relvec: records need a document or an embedding")

	// ErrNoQuery indicates a Query call with neither texts nor vectors, or
	// a HybridSearch call with no sub-query at all.
	ErrNoQuery = errors.New("relvec: query needs at least one text or vector")

	// ErrRecordNotFound indicates an Update against an id that does not
	// exist in the collection.
	ErrRecordNotFound = errors.New("relvec: record not found")

	// ErrDatabaseNotFound indicates a database operation against an absent
	// database.
	ErrDatabaseNotFound = errors.New("relvec: database not found")
)
