package schema

import (
	"errors"
	"testing"

	"github.com/relvec/relvec/sqlgen"
)

func TestSettingsRoundTrip(t *testing.T) {
	original := &CollectionMetadata{
		ID:         "0123456789abcdef0123456789abcdef",
		Name:       "docs",
		Generation: GenerationCurrent,
		Dimension:  768,
		Metric:     sqlgen.DistanceCosine,
		Schema: &Schema{
			FullText: &FullTextIndexConfig{Analyzer: "ik"},
			Vector: &VectorIndexConfig{
				HNSW: HNSWConfig{Dimension: 768, Distance: sqlgen.DistanceCosine},
			},
		},
		EmbeddingFunction: &EmbeddingFunctionRef{
			Name:       "hashing",
			Properties: map[string]any{"dimension": 768},
		},
	}

	encoded, err := original.settingsJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parsed, err := parseSettings(original.Name, original.ID, encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Dimension != 768 || parsed.Metric != sqlgen.DistanceCosine {
		t.Errorf("lost vector config: %d %s", parsed.Dimension, parsed.Metric)
	}
	if parsed.Schema == nil || parsed.Schema.FullText == nil || parsed.Schema.FullText.Analyzer != "ik" {
		t.Errorf("lost full-text config: %+v", parsed.Schema)
	}
	if parsed.EmbeddingFunction == nil || parsed.EmbeddingFunction.Name != "hashing" {
		t.Errorf("lost embedding binding: %+v", parsed.EmbeddingFunction)
	}
	// JSON numbers come back as float64.
	if parsed.EmbeddingFunction.Properties["dimension"] != float64(768) {
		t.Errorf("unexpected properties: %v", parsed.EmbeddingFunction.Properties)
	}
	if parsed.Generation != GenerationCurrent {
		t.Errorf("expected current generation, got %s", parsed.Generation)
	}
}

func TestParseSettings_LegacyFlatConfiguration(t *testing.T) {
	meta, err := parseSettings("docs", "id", `{"configuration":{"dimension":64,"distance":"ip"}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Dimension != 64 {
		t.Errorf("expected dimension 64, got %d", meta.Dimension)
	}
	if meta.Metric != sqlgen.DistanceInnerProduct {
		t.Errorf("expected the ip alias to resolve, got %s", meta.Metric)
	}
}

func TestParseSettings_SchemaWinsOverConfiguration(t *testing.T) {
	meta, err := parseSettings("docs", "id",
		`{"schema":{"vector":{"hnsw":{"dimension":32,"distance":"l2"}}},`+
			`"configuration":{"dimension":64,"distance":"cosine"}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Dimension != 32 || meta.Metric != sqlgen.DistanceL2 {
		t.Errorf("schema tree should win: %d %s", meta.Dimension, meta.Metric)
	}
}

func TestParseSettings_EmptyAndMalformed(t *testing.T) {
	meta, err := parseSettings("docs", "id", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Metric != DefaultDistanceMetric || meta.Dimension != 0 {
		t.Errorf("expected bare defaults, got %+v", meta)
	}

	if _, err := parseSettings("docs", "id", "{broken"); !errors.Is(err, ErrMalformedSettings) {
		t.Errorf("expected ErrMalformedSettings, got %v", err)
	}
	if _, err := parseSettings("docs", "id", `{"configuration":{"distance":"bogus"}}`); !errors.Is(err, ErrMalformedSettings) {
		t.Errorf("expected ErrMalformedSettings for a bad metric, got %v", err)
	}
}

func TestCollectionMetadataTableName(t *testing.T) {
	legacy := &CollectionMetadata{Name: "docs", Generation: GenerationLegacy}
	table, err := legacy.TableName()
	if err != nil || table != "vec_v1_docs" {
		t.Errorf("expected vec_v1_docs, got %q (%v)", table, err)
	}

	current := &CollectionMetadata{
		ID:         "0123456789abcdef0123456789abcdef",
		Name:       "docs",
		Generation: GenerationCurrent,
	}
	table, err = current.TableName()
	if err != nil || table != "vec_v2_0123456789abcdef0123456789abcdef" {
		t.Errorf("expected the v2 table, got %q (%v)", table, err)
	}

	if _, err := (&CollectionMetadata{Name: "docs"}).TableName(); err == nil {
		t.Error("expected an error without a generation")
	}
}
