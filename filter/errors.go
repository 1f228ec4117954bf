package filter

import "errors"

// Common filter errors
var (
	// ErrInvalidField is returned when a metadata key contains characters
	// outside the allowed charset (letters, digits, underscore).
	ErrInvalidField = errors.New("filter: invalid metadata field name")

	// ErrEmptyValueList is returned when an $in or $nin condition carries
	// no values; an empty list cannot be rendered as a SQL IN clause.
	ErrEmptyValueList = errors.New("filter: empty value list in $in/$nin")

	// ErrUnknownOperator is returned when a map-shaped filter uses an
	// operator this layer does not understand.
	ErrUnknownOperator = errors.New("filter: unknown operator")

	// ErrMalformedFilter is returned when a map-shaped filter does not
	// follow the expected structure (e.g. $and holding a non-list value).
	ErrMalformedFilter = errors.New("filter: malformed filter expression")

	// ErrRegexUnsupported is returned when a $regex condition reaches the
	// hybrid-search compilation path; the search procedure only accepts
	// full-text queries.
	ErrRegexUnsupported = errors.New("filter: $regex is not supported in hybrid search")
)
