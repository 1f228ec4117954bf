package schema

import (
	"encoding/json"
	"fmt"

	"github.com/relvec/relvec/sqlgen"
)

// Generation identifies which storage layout a collection uses.
type Generation int

const (
	// GenerationLegacy is the v1 layout: table vec_v1_<name>, no metadata
	// row, schema recovered by DDL reflection.
	GenerationLegacy Generation = iota + 1

	// GenerationCurrent is the v2 layout: table vec_v2_<id> plus a row in
	// the metadata catalog.
	GenerationCurrent
)

func (g Generation) String() string {
	switch g {
	case GenerationLegacy:
		return "legacy"
	case GenerationCurrent:
		return "current"
	default:
		return "unknown"
	}
}

// DefaultDistanceMetric is used when a schema names no metric.
const DefaultDistanceMetric = sqlgen.DistanceL2

// EmbeddingFunctionRef is the persisted binding of a collection to its
// embedding function: the registry name plus the function's serializable
// configuration.
type EmbeddingFunctionRef struct {
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
}

// FullTextIndexConfig describes the full-text index over the document
// column.
type FullTextIndexConfig struct {
	// Analyzer selects the tokenizer; empty uses the engine default.
	Analyzer   string         `json:"analyzer,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// HNSWConfig describes the approximate-nearest-neighbor index parameters.
type HNSWConfig struct {
	Dimension int                   `json:"dimension,omitempty"`
	Distance  sqlgen.DistanceMetric `json:"distance,omitempty"`
}

// VectorIndexConfig describes the dense vector index and its optional
// embedding-function binding.
type VectorIndexConfig struct {
	HNSW              HNSWConfig            `json:"hnsw"`
	EmbeddingFunction *EmbeddingFunctionRef `json:"embedding_function,omitempty"`
}

// SparseVectorIndexConfig describes an optional sparse vector index derived
// from a metadata key.
type SparseVectorIndexConfig struct {
	SourceKey         string                `json:"source_key,omitempty"`
	EmbeddingFunction *EmbeddingFunctionRef `json:"embedding_function,omitempty"`
}

// Schema is the full index configuration of a collection.
type Schema struct {
	FullText *FullTextIndexConfig     `json:"full_text,omitempty"`
	Vector   *VectorIndexConfig       `json:"vector,omitempty"`
	Sparse   *SparseVectorIndexConfig `json:"sparse,omitempty"`
}

// Settings is the JSON document stored in the metadata catalog's settings
// column.
type Settings struct {
	Schema            *Schema               `json:"schema,omitempty"`
	EmbeddingFunction *EmbeddingFunctionRef `json:"embedding_function,omitempty"`

	// Configuration carries the legacy flat settings shape for readers that
	// predate the schema document.
	Configuration map[string]any `json:"configuration,omitempty"`
}

// CollectionMetadata is the resolved description of a collection.
type CollectionMetadata struct {
	// ID is the 32-character hex collection id; empty for legacy
	// collections, which are addressed by name.
	ID string

	Name       string
	Generation Generation
	Dimension  int
	Metric     sqlgen.DistanceMetric

	Schema            *Schema
	EmbeddingFunction *EmbeddingFunctionRef
}

// TableName resolves the physical table of the collection according to its
// generation.
func (m *CollectionMetadata) TableName() (string, error) {
	switch m.Generation {
	case GenerationLegacy:
		return sqlgen.TableNameV1(m.Name)
	case GenerationCurrent:
		return sqlgen.TableNameV2(m.ID)
	default:
		return "", fmt.Errorf("schema: collection %q has no generation", m.Name)
	}
}

// settingsJSON serializes the metadata's settings document. The legacy
// configuration mirror keeps dimension and metric readable without parsing
// the schema tree.
func (m *CollectionMetadata) settingsJSON() (string, error) {
	settings := Settings{
		Schema:            m.Schema,
		EmbeddingFunction: m.EmbeddingFunction,
		Configuration: map[string]any{
			"dimension": m.Dimension,
			"distance":  string(m.Metric),
		},
	}
	encoded, err := json.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("schema: cannot serialize settings: %w", err)
	}
	return string(encoded), nil
}

// parseSettings reconstructs collection metadata from a catalog row.
func parseSettings(name, id, settingsJSON string) (*CollectionMetadata, error) {
	meta := &CollectionMetadata{
		ID:         id,
		Name:       name,
		Generation: GenerationCurrent,
		Metric:     DefaultDistanceMetric,
	}
	if settingsJSON == "" {
		return meta, nil
	}

	var settings Settings
	if err := json.Unmarshal([]byte(settingsJSON), &settings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSettings, err)
	}

	meta.Schema = settings.Schema
	meta.EmbeddingFunction = settings.EmbeddingFunction

	if settings.Schema != nil && settings.Schema.Vector != nil {
		meta.Dimension = settings.Schema.Vector.HNSW.Dimension
		if settings.Schema.Vector.HNSW.Distance != "" {
			meta.Metric = settings.Schema.Vector.HNSW.Distance
		}
		if meta.EmbeddingFunction == nil {
			meta.EmbeddingFunction = settings.Schema.Vector.EmbeddingFunction
		}
	}

	// Legacy flat configuration fills gaps left by the schema tree.
	if meta.Dimension == 0 {
		switch v := settings.Configuration["dimension"].(type) {
		case float64:
			meta.Dimension = int(v)
		case int:
			meta.Dimension = v
		}
	}
	if settings.Schema == nil || settings.Schema.Vector == nil || settings.Schema.Vector.HNSW.Distance == "" {
		if v, ok := settings.Configuration["distance"].(string); ok && v != "" {
			metric, err := sqlgen.ParseDistanceMetric(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedSettings, err)
			}
			meta.Metric = metric
		}
	}

	return meta, nil
}
