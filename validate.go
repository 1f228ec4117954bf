package relvec

import (
	"fmt"

	"github.com/relvec/relvec/sqlgen"
)

// validateIDs enforces the id batch rules: non-empty set, non-empty ids,
// no duplicates within the call.
func validateIDs(ids []string) error {
	if len(ids) == 0 {
		return ErrNoIDs
	}
	seen := make(map[string]struct{}, len(ids))
	for i, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: index %d", ErrEmptyID, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// validateEmbeddings checks finiteness and dimension of every vector in a
// batch. Errors name the failing record index; dimension errors also name
// both lengths.
func validateEmbeddings(embeddings [][]float32, dimension int) error {
	for i, embedding := range embeddings {
		if embedding == nil {
			continue
		}
		if err := sqlgen.ValidateVector(embedding); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if dimension > 0 && len(embedding) != dimension {
			return fmt.Errorf("%w: record %d: expected dimension %d, got %d",
				ErrDimensionMismatch, i, dimension, len(embedding))
		}
	}
	return nil
}

// sameLength checks one optional parallel array against the id count.
func sameLength(field string, got, want int) error {
	if got != 0 && got != want {
		return fmt.Errorf("%w: %d ids but %d %s", ErrLengthMismatch, want, got, field)
	}
	return nil
}
