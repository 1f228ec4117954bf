package sqlgen

import "errors"

// Common statement-builder errors
var (
	// ErrInvalidCollectionName is returned when a collection name falls
	// outside the allowed charset (letters, digits, underscore) or length
	// (1-512).
	ErrInvalidCollectionName = errors.New("sqlgen: invalid collection name")

	// ErrUnknownDistanceMetric is returned when a distance metric has no
	// ranking function. Unknown metrics are rejected at configuration
	// time, never silently defaulted.
	ErrUnknownDistanceMetric = errors.New("sqlgen: unknown distance metric")

	// ErrNonFiniteVector is returned when a vector contains NaN or
	// infinite components.
	ErrNonFiniteVector = errors.New("sqlgen: vector contains non-finite value")

	// ErrInvalidDimension is returned when a vector column dimension is
	// zero or negative.
	ErrInvalidDimension = errors.New("sqlgen: vector dimension must be positive")

	// ErrNoCondition is returned when a DELETE is requested without any
	// id list or filter; an unfiltered DELETE is never generated.
	ErrNoCondition = errors.New("sqlgen: delete requires at least one condition")

	// ErrNothingToUpdate is returned when an UPDATE supplies no fields.
	ErrNothingToUpdate = errors.New("sqlgen: update requires at least one field")
)
