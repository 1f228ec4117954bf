package sqlgen

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestVectorLiteral_RoundTrip(t *testing.T) {
	cases := [][]float32{
		{1, 0, 0},
		{0.1, 0.2, 0.30000001},
		{-1.5, 3.25e-7, 42},
		{},
	}
	for _, vec := range cases {
		literal, err := VectorLiteral(vec)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", vec, err)
		}
		back, err := ParseVectorLiteral(literal)
		if err != nil {
			t.Fatalf("%v: parse error: %v", literal, err)
		}
		if len(vec) == 0 && len(back) == 0 {
			continue
		}
		if !reflect.DeepEqual(back, vec) {
			t.Errorf("round trip mismatch: %v -> %q -> %v", vec, literal, back)
		}
	}
}

func TestVectorLiteral_Format(t *testing.T) {
	literal, err := VectorLiteral([]float32{1, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if literal != "[1,0,0]" {
		t.Errorf("expected [1,0,0], got %q", literal)
	}
}

func TestVectorLiteral_RejectsNaN(t *testing.T) {
	_, err := VectorLiteral([]float32{1, float32(math.NaN()), 3})
	if !errors.Is(err, ErrNonFiniteVector) {
		t.Fatalf("expected ErrNonFiniteVector, got %v", err)
	}
	if !strings.Contains(err.Error(), "NaN") || !strings.Contains(err.Error(), "index 1") {
		t.Errorf("error should name NaN and the index: %v", err)
	}
}

func TestVectorLiteral_DistinguishesInfinities(t *testing.T) {
	_, err := VectorLiteral([]float32{float32(math.Inf(1))})
	if err == nil || !strings.Contains(err.Error(), "+Inf") {
		t.Errorf("expected +Inf in error, got %v", err)
	}
	_, err = VectorLiteral([]float32{0, float32(math.Inf(-1))})
	if err == nil || !strings.Contains(err.Error(), "-Inf") {
		t.Errorf("expected -Inf in error, got %v", err)
	}
}

func TestParseVectorLiteral_Malformed(t *testing.T) {
	for _, s := range []string{"", "1,2,3", "[1,2", "[a,b]"} {
		if _, err := ParseVectorLiteral(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestDistanceMetric_RankingFunction(t *testing.T) {
	cases := map[DistanceMetric]string{
		DistanceL2:           "l2_distance",
		DistanceCosine:       "cosine_distance",
		DistanceInnerProduct: "inner_product",
	}
	for metric, want := range cases {
		fn, err := metric.RankingFunction()
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", metric, err)
		}
		if fn != want {
			t.Errorf("%s: expected %q, got %q", metric, want, fn)
		}
	}
}

func TestDistanceMetric_UnknownRejected(t *testing.T) {
	_, err := DistanceMetric("euclidean").RankingFunction()
	if !errors.Is(err, ErrUnknownDistanceMetric) {
		t.Errorf("expected ErrUnknownDistanceMetric, got %v", err)
	}
}

func TestParseDistanceMetric_LegacyAlias(t *testing.T) {
	metric, err := ParseDistanceMetric("ip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metric != DistanceInnerProduct {
		t.Errorf("expected inner_product, got %s", metric)
	}
}
