package embedding

import "context"

// Function turns batches of texts into vectors of a fixed dimension.
//
// Implementations must be safe for concurrent use. Name and Config together
// identify the function well enough that the registry can rebuild an
// equivalent instance later; collections persist both alongside their
// schema.
type Function interface {
	// Generate computes one vector per input text, in input order.
	Generate(ctx context.Context, texts []string) ([][]float32, error)

	// Name is the registry key of this function's builder.
	Name() string

	// Dimension is the length of the vectors this function produces, or 0
	// when the dimension is determined by the provider at call time.
	Dimension() int

	// Config returns the serializable configuration needed to rebuild this
	// function. Secrets must not appear in the returned map.
	Config() map[string]any
}

// Builder constructs a Function from its persisted configuration.
type Builder func(config map[string]any) (Function, error)
