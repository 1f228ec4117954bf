package relvec

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/relvec/relvec/sqlgen"
)

// Engine rows come back as heterogeneous column maps: drivers differ on
// string vs []byte, the id column surfaces as _id or id, and ranked rows
// carry distance, _distance or score depending on the path that produced
// them. The helpers below fold those shapes into the result structs.

func columnString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}

func rowID(row map[string]any) string {
	for _, key := range []string{sqlgen.ColumnID, "id"} {
		if s, ok := columnString(row[key]); ok {
			return s
		}
	}
	return ""
}

func rowDistance(row map[string]any) (float64, bool) {
	for _, key := range []string{sqlgen.ColumnDistance, "_distance", "score"} {
		v, present := row[key]
		if !present {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case float32:
			return float64(n), true
		case int64:
			return float64(n), true
		default:
			if s, ok := columnString(v); ok {
				if parsed, err := strconv.ParseFloat(s, 64); err == nil {
					return parsed, true
				}
			}
		}
	}
	return 0, false
}

func rowDocument(row map[string]any) *string {
	if s, ok := columnString(row[sqlgen.ColumnDocument]); ok {
		return &s
	}
	return nil
}

func rowMetadata(row map[string]any) (Metadata, error) {
	v, present := row[sqlgen.ColumnMetadata]
	if !present || v == nil {
		return nil, nil
	}
	if m, ok := v.(map[string]any); ok {
		return m, nil
	}
	s, ok := columnString(v)
	if !ok || s == "" {
		return nil, nil
	}
	var metadata Metadata
	if err := json.Unmarshal([]byte(s), &metadata); err != nil {
		return nil, fmt.Errorf("relvec: unreadable metadata column: %w", err)
	}
	return metadata, nil
}

func rowEmbedding(row map[string]any) ([]float32, error) {
	v, present := row[sqlgen.ColumnEmbedding]
	if !present || v == nil {
		return nil, nil
	}
	s, ok := columnString(v)
	if !ok || s == "" {
		return nil, nil
	}
	embedding, err := sqlgen.ParseVectorLiteral(s)
	if err != nil {
		return nil, fmt.Errorf("relvec: unreadable embedding column: %w", err)
	}
	return embedding, nil
}

// normalizeGet folds raw engine rows into a GetResult according to the
// include set.
func normalizeGet(rows []map[string]any, include Include) (*GetResult, error) {
	result := &GetResult{IDs: make([]string, 0, len(rows))}
	if include.Documents {
		result.Documents = make([]*string, 0, len(rows))
	}
	if include.Metadatas {
		result.Metadatas = make([]Metadata, 0, len(rows))
	}
	if include.Embeddings {
		result.Embeddings = make([][]float32, 0, len(rows))
	}

	for _, row := range rows {
		result.IDs = append(result.IDs, rowID(row))
		if include.Documents {
			result.Documents = append(result.Documents, rowDocument(row))
		}
		if include.Metadatas {
			metadata, err := rowMetadata(row)
			if err != nil {
				return nil, err
			}
			result.Metadatas = append(result.Metadatas, metadata)
		}
		if include.Embeddings {
			embedding, err := rowEmbedding(row)
			if err != nil {
				return nil, err
			}
			result.Embeddings = append(result.Embeddings, embedding)
		}
	}
	return result, nil
}

// normalizeRanked folds one ranked result set (vector search) into the
// per-query slices of a QueryResult.
func normalizeRanked(rows []map[string]any, include Include) (*GetResult, []float32, error) {
	result, err := normalizeGet(rows, include)
	if err != nil {
		return nil, nil, err
	}
	var distances []float32
	if include.Distances {
		distances = make([]float32, 0, len(rows))
		for _, row := range rows {
			d, _ := rowDistance(row)
			distances = append(distances, float32(d))
		}
	}
	return result, distances, nil
}

// normalizeHybrid lifts the id and score out of the procedure's ranked
// rows, keeping the full row intact for callers that projected extra
// columns.
func normalizeHybrid(rows []map[string]any) []HybridResult {
	results := make([]HybridResult, 0, len(rows))
	for _, row := range rows {
		score, _ := rowDistance(row)
		results = append(results, HybridResult{
			ID:    rowID(row),
			Score: score,
			Row:   row,
		})
	}
	return results
}
