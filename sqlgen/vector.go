package sqlgen

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DistanceMetric selects the vector-similarity function used for ranking.
type DistanceMetric string

const (
	DistanceL2           DistanceMetric = "l2"
	DistanceCosine       DistanceMetric = "cosine"
	DistanceInnerProduct DistanceMetric = "inner_product"
)

// rankingFunctions is the fixed metric-to-function table. There is no
// default entry: an unrecognized metric is a configuration error.
var rankingFunctions = map[DistanceMetric]string{
	DistanceL2:           "l2_distance",
	DistanceCosine:       "cosine_distance",
	DistanceInnerProduct: "inner_product",
}

// RankingFunction returns the SQL function computing this metric.
func (m DistanceMetric) RankingFunction() (string, error) {
	fn, ok := rankingFunctions[m]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDistanceMetric, m)
	}
	return fn, nil
}

// ParseDistanceMetric normalizes a stored metric string, accepting the
// legacy alias "ip" for inner_product.
func ParseDistanceMetric(s string) (DistanceMetric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l2":
		return DistanceL2, nil
	case "cosine":
		return DistanceCosine, nil
	case "inner_product", "ip":
		return DistanceInnerProduct, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDistanceMetric, s)
	}
}

// ValidateVector checks every component for finiteness. The error names
// the offending index and distinguishes NaN from positive and negative
// infinity, since they usually point at different bugs upstream.
func ValidateVector(vec []float32) error {
	for i, v := range vec {
		f := float64(v)
		switch {
		case math.IsNaN(f):
			return fmt.Errorf("%w: NaN at index %d", ErrNonFiniteVector, i)
		case math.IsInf(f, 1):
			return fmt.Errorf("%w: +Inf at index %d", ErrNonFiniteVector, i)
		case math.IsInf(f, -1):
			return fmt.Errorf("%w: -Inf at index %d", ErrNonFiniteVector, i)
		}
	}
	return nil
}

// VectorLiteral serializes a vector as the bracketed numeric literal the
// engine expects, e.g. "[0.25,-1,3.5]". Components are rendered with the
// shortest representation that round-trips exactly through float32.
// Non-finite components are rejected.
func VectorLiteral(vec []float32) (string, error) {
	if err := ValidateVector(vec); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String(), nil
}

// ParseVectorLiteral parses the bracketed literal (or plain JSON array)
// form back into a vector. It is the exact inverse of VectorLiteral.
func ParseVectorLiteral(s string) ([]float32, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < 2 || trimmed[0] != '[' || trimmed[len(trimmed)-1] != ']' {
		return nil, fmt.Errorf("sqlgen: malformed vector literal %q", s)
	}
	inner := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	if inner == "" {
		return []float32{}, nil
	}
	parts := strings.Split(inner, ",")
	vec := make([]float32, len(parts))
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, fmt.Errorf("sqlgen: malformed vector component %q: %w", part, err)
		}
		vec[i] = float32(f)
	}
	return vec, nil
}
