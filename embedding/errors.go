package embedding

import "errors"

// Sentinel errors returned by the embedding package.
var (
	// ErrNoTexts indicates that Generate was called with an empty batch.
	ErrNoTexts = errors.New("embedding: no texts provided")

	// ErrUnknownFunction indicates that no builder is registered under the
	// requested function name.
	ErrUnknownFunction = errors.New("embedding: unknown embedding function")

	// ErrAlreadyRegistered indicates a duplicate builder registration.
	ErrAlreadyRegistered = errors.New("embedding: function already registered")

	// ErrEmptyResponse indicates that the provider returned no embedding
	// data for a non-empty batch.
	ErrEmptyResponse = errors.New("embedding: provider returned empty response")

	// ErrBatchMismatch indicates that the provider returned a different
	// number of vectors than texts submitted.
	ErrBatchMismatch = errors.New("embedding: provider returned wrong number of vectors")
)
