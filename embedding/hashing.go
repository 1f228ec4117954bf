package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// FunctionNameHashing is the registry name of the deterministic hashing
// provider.
const FunctionNameHashing = "hashing"

// DefaultHashingDimension is the vector length used when the config names
// none.
const DefaultHashingDimension = 128

// HashingFunction is a deterministic, offline embedding function. Each text
// is tokenized on whitespace and every token increments hash-selected
// components of the output vector, which is then L2-normalized. Equal texts
// always produce equal vectors, so the function is suitable for tests and
// local development, not for semantic retrieval quality.
type HashingFunction struct {
	dimension int
}

// NewHashingFunction creates a hashing function with the given vector
// dimension; non-positive values fall back to DefaultHashingDimension.
func NewHashingFunction(dimension int) *HashingFunction {
	if dimension <= 0 {
		dimension = DefaultHashingDimension
	}
	return &HashingFunction{dimension: dimension}
}

// Generate computes one vector per input text.
func (f *HashingFunction) Generate(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrNoTexts
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = f.embed(text)
	}
	return vectors, nil
}

func (f *HashingFunction) embed(text string) []float32 {
	vector := make([]float32, f.dimension)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum64()

		index := int(sum % uint64(f.dimension))
		// The bit above the index selector decides the sign, keeping the
		// components balanced around zero.
		if (sum>>32)&1 == 0 {
			vector[index]++
		} else {
			vector[index]--
		}
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}
	return vector
}

// Name implements Function.
func (f *HashingFunction) Name() string { return FunctionNameHashing }

// Dimension implements Function.
func (f *HashingFunction) Dimension() int { return f.dimension }

// Config implements Function.
func (f *HashingFunction) Config() map[string]any {
	return map[string]any{"dimension": f.dimension}
}

func buildHashingFromConfig(config map[string]any) (Function, error) {
	dimension := 0
	switch v := config["dimension"].(type) {
	case int:
		dimension = v
	case float64:
		dimension = int(v)
	}
	return NewHashingFunction(dimension), nil
}

func init() {
	_ = DefaultRegistry.Register(FunctionNameHashing, buildHashingFromConfig)
}
