package sqlgen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/relvec/relvec/filter"
)

// SearchParam is the JSON search specification handed to the hybrid-search
// procedure through the @search_parm session variable. Recognized keys:
// a text query tree, a vector (knn) sub-query, an optional rank-fusion
// block, a result column list and paging.
type SearchParam struct {
	Query map[string]any `json:"query,omitempty"`
	KNN   map[string]any `json:"knn,omitempty"`
	Rank  map[string]any `json:"rank,omitempty"`

	// Columns projects specific result columns; empty lets the procedure
	// choose its default projection.
	Columns []string `json:"columns,omitempty"`

	Size int `json:"size,omitempty"`
	From int `json:"from,omitempty"`
}

// KNNParam describes the vector half of a hybrid search.
type KNNParam struct {
	Vector []float32
	K      int
	Filter filter.Where
}

// RRFParam describes reciprocal-rank-fusion of the text and vector result
// streams. Zero values omit the corresponding key, leaving the procedure's
// defaults in effect.
type RRFParam struct {
	// WindowSize bounds how many candidates of each stream participate
	// in fusion.
	WindowSize int

	// RankConstant is the smoothing constant of the RRF formula.
	RankConstant int
}

// BuildSearchParam assembles the search specification from its parts. Any
// part may be nil/zero; at least one of the text query and the knn query
// must be present, which the facade validates before calling.
func BuildSearchParam(query filter.Where, queryDocument filter.WhereDocument, knn *KNNParam, rrf *RRFParam, size int) (*SearchParam, error) {
	param := &SearchParam{Size: size}

	queryNode, err := buildQueryNode(query, queryDocument)
	if err != nil {
		return nil, err
	}
	param.Query = queryNode

	if knn != nil {
		knnNode, err := buildKNNNode(knn)
		if err != nil {
			return nil, err
		}
		param.KNN = knnNode
	}

	if rrf != nil {
		rrfNode := map[string]any{}
		if rrf.WindowSize > 0 {
			rrfNode["window_size"] = rrf.WindowSize
		}
		if rrf.RankConstant > 0 {
			rrfNode["rank_constant"] = rrf.RankConstant
		}
		param.Rank = map[string]any{"rrf": rrfNode}
	}

	return param, nil
}

// buildQueryNode combines the full-text sub-query and the metadata filter
// into the procedure's text query tree. With both present, the full-text
// clause goes under bool.must and the metadata conditions under
// bool.filter; either alone stands by itself.
func buildQueryNode(where filter.Where, whereDocument filter.WhereDocument) (map[string]any, error) {
	docNode, err := filter.DocumentSearchJSON(whereDocument, ColumnDocument)
	if err != nil {
		return nil, err
	}
	metaNode, err := filter.SearchJSON(where, ColumnMetadata)
	if err != nil {
		return nil, err
	}

	switch {
	case docNode == nil && metaNode == nil:
		return nil, nil
	case docNode == nil:
		return metaNode, nil
	case metaNode == nil:
		return docNode, nil
	default:
		return map[string]any{
			"bool": map[string]any{
				"must":   []map[string]any{docNode},
				"filter": []map[string]any{metaNode},
			},
		}, nil
	}
}

func buildKNNNode(knn *KNNParam) (map[string]any, error) {
	if err := ValidateVector(knn.Vector); err != nil {
		return nil, err
	}
	k := knn.K
	if k <= 0 {
		k = 10
	}

	// JSON numbers: render components as float64 so encoding/json emits
	// plain numerics.
	vector := make([]any, len(knn.Vector))
	for i, v := range knn.Vector {
		vector[i] = float64(v)
	}

	node := map[string]any{
		"field":        ColumnEmbedding,
		"k":            k,
		"query_vector": vector,
	}

	if knn.Filter != nil {
		filterNode, err := filter.SearchJSON(knn.Filter, ColumnMetadata)
		if err != nil {
			return nil, err
		}
		if filterNode != nil {
			node["filter"] = []map[string]any{filterNode}
		}
	}
	return node, nil
}

// SetSearchParam synthesizes the session-variable assignment carrying the
// JSON search specification. The document is embedded as a quoted string
// literal with single quotes doubled; it is the only statement of the
// hybrid-search sequence that cannot use parameter binding, since the
// procedure reads the session variable by name.
func SetSearchParam(param *SearchParam) (string, error) {
	encoded, err := json.Marshal(param)
	if err != nil {
		return "", fmt.Errorf("sqlgen: cannot serialize search param: %w", err)
	}
	escaped := strings.ReplaceAll(string(encoded), "'", "''")
	return "SET @search_parm = '" + escaped + "'", nil
}

// HybridSearchGetSQL synthesizes the introspection call: the procedure
// returns the SQL it would run for the current @search_parm.
func HybridSearchGetSQL(table string) string {
	return fmt.Sprintf("SELECT DBMS_HYBRID_SEARCH.GET_SQL('%s', @search_parm) AS `query_sql`", table)
}

// HybridSearchExecute synthesizes the execution call: the procedure runs
// the search and returns the ranked rows.
func HybridSearchExecute(table string) string {
	return fmt.Sprintf("SELECT DBMS_HYBRID_SEARCH.SEARCH('%s', @search_parm)", table)
}
