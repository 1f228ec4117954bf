package relvec

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/relvec/relvec/embedding"
	"github.com/relvec/relvec/sqlgen"
)

// newTestCollection creates a 3-dimensional collection on a fresh fake
// engine, with or without the deterministic hashing embedder bound.
func newTestCollection(t *testing.T, withFunction bool) (*fakeEngine, *Collection) {
	t.Helper()
	f := newFakeEngine()
	client := newTestClient(t, f)

	opts := CreateCollectionOptions{Distance: "l2"}
	if withFunction {
		opts.EmbeddingFunction = embedding.NewHashingFunction(3)
	} else {
		opts.Dimension = 3
		opts.NoEmbedding = true
	}
	col, err := client.CreateCollection(context.Background(), "docs", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return f, col
}

func TestCollectionAdd_BatchValidation(t *testing.T) {
	_, col := newTestCollection(t, false)
	ctx := context.Background()
	vec := []float32{1, 0, 0}

	cases := []struct {
		name string
		p    AddParams
		want error
	}{
		{"no ids", AddParams{}, ErrNoIDs},
		{"empty id", AddParams{IDs: []string{"a", ""}, Embeddings: [][]float32{vec, vec}}, ErrEmptyID},
		{"duplicate id", AddParams{IDs: []string{"a", "a"}, Embeddings: [][]float32{vec, vec}}, ErrDuplicateID},
		{"length mismatch", AddParams{IDs: []string{"a", "b"}, Embeddings: [][]float32{vec}}, ErrLengthMismatch},
		{"no content", AddParams{IDs: []string{"a"}}, ErrNothingToAdd},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := col.Add(ctx, tc.p); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCollectionAdd_DimensionMismatchNamesRecord(t *testing.T) {
	_, col := newTestCollection(t, false)

	err := col.Add(context.Background(), AddParams{
		IDs:        []string{"a"},
		Embeddings: [][]float32{{1, 0}},
	})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	for _, fragment := range []string{"record 0", "expected dimension 3", "got 2"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Errorf("error %q should contain %q", err, fragment)
		}
	}
}

func TestCollectionAdd_ExplicitEmbeddings(t *testing.T) {
	f, col := newTestCollection(t, false)
	doc := "a small document"

	err := col.Add(context.Background(), AddParams{
		IDs:        []string{"a", "b"},
		Documents:  []string{doc, "another"},
		Embeddings: [][]float32{{1, 0, 0}, {0, 1, 0}},
		Metadatas:  []Metadata{{"tag": "x"}, nil},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	captured := f.lastExec()
	want := fmt.Sprintf("INSERT INTO `%s` (`_id`, `document`, `embedding`, `metadata`) "+
		"VALUES (CAST(? AS BINARY), ?, ?, ?), (CAST(? AS BINARY), ?, ?, ?)", col.table)
	if captured.stmt != want {
		t.Errorf("expected statement %q, got %q", want, captured.stmt)
	}
	if len(captured.params) != 8 {
		t.Fatalf("expected 8 params, got %d", len(captured.params))
	}
	if captured.params[0] != "a" || captured.params[1] != doc {
		t.Errorf("unexpected first row params: %v", captured.params[:4])
	}
	if captured.params[2] != "[1,0,0]" {
		t.Errorf("expected bracketed vector literal, got %v", captured.params[2])
	}
	if captured.params[3] != `{"tag":"x"}` {
		t.Errorf("expected serialized metadata, got %v", captured.params[3])
	}
	if captured.params[7] != nil {
		t.Errorf("absent metadata should bind as nil, got %v", captured.params[7])
	}
}

func TestCollectionAdd_EmbedsDocuments(t *testing.T) {
	f, col := newTestCollection(t, true)

	err := col.Add(context.Background(), AddParams{
		IDs:       []string{"a"},
		Documents: []string{"tokens to hash"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	captured := f.lastExec()
	literal, ok := captured.params[2].(string)
	if !ok || !strings.HasPrefix(literal, "[") {
		t.Fatalf("expected a generated vector literal, got %v", captured.params[2])
	}
	parsed, err := sqlgen.ParseVectorLiteral(literal)
	if err != nil || len(parsed) != 3 {
		t.Errorf("expected a 3-dimensional vector, got %v (%v)", parsed, err)
	}
}

func TestCollectionUpsert(t *testing.T) {
	f, col := newTestCollection(t, false)

	err := col.Upsert(context.Background(), UpsertParams{
		IDs:        []string{"a"},
		Embeddings: [][]float32{{1, 0, 0}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(f.lastExec().stmt, " ON DUPLICATE KEY UPDATE `document` = VALUES(`document`)") {
		t.Errorf("expected upsert clause, got %q", f.lastExec().stmt)
	}
}

func TestCollectionUpdate_MissingIDFails(t *testing.T) {
	f, col := newTestCollection(t, false)
	f.respondMatch("SELECT `_id` FROM", map[string]any{"_id": "a"})

	err := col.Update(context.Background(), UpdateParams{
		IDs:       []string{"a", "ghost"},
		Metadatas: []Metadata{{"v": 1}, {"v": 2}},
	})
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), `"ghost"`) {
		t.Errorf("error should name the missing id: %v", err)
	}
	if len(f.execs) != 0 {
		t.Errorf("no write should happen before the existence check passes")
	}
}

func TestCollectionUpdate_SuppliedFieldsOnly(t *testing.T) {
	f, col := newTestCollection(t, false)
	f.respondMatch("SELECT `_id` FROM",
		map[string]any{"_id": []byte("a")},
		map[string]any{"_id": []byte("b")})

	err := col.Update(context.Background(), UpdateParams{
		IDs:       []string{"a", "b"},
		Metadatas: []Metadata{{"v": 1}, {"v": 2}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.execs) != 2 {
		t.Fatalf("expected one UPDATE per id, got %d", len(f.execs))
	}
	want := fmt.Sprintf("UPDATE `%s` SET `metadata` = ? WHERE `_id` = ?", col.table)
	if f.execs[0].stmt != want {
		t.Errorf("expected %q, got %q", want, f.execs[0].stmt)
	}
	if f.execs[1].params[1] != "b" {
		t.Errorf("expected id bound last, got %v", f.execs[1].params)
	}
}

func TestCollectionUpdate_NothingToUpdate(t *testing.T) {
	_, col := newTestCollection(t, false)

	err := col.Update(context.Background(), UpdateParams{IDs: []string{"a"}})
	if !errors.Is(err, sqlgen.ErrNothingToUpdate) {
		t.Errorf("expected ErrNothingToUpdate, got %v", err)
	}
}

func TestCollectionGet_DefaultInclude(t *testing.T) {
	f, col := newTestCollection(t, false)
	f.respond(
		map[string]any{"_id": []byte("a"), "document": []byte("hello"), "metadata": `{"tag":"x"}`},
		map[string]any{"_id": "b", "document": nil, "metadata": nil},
	)

	result, err := col.Get(context.Background(), GetParams{IDs: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	captured := f.queries[len(f.queries)-1]
	want := fmt.Sprintf("SELECT `_id`, `document`, `metadata` FROM `%s` WHERE `_id` IN (?, ?)", col.table)
	if captured.stmt != want {
		t.Errorf("expected %q, got %q", want, captured.stmt)
	}

	if len(result.IDs) != 2 || result.IDs[0] != "a" || result.IDs[1] != "b" {
		t.Errorf("unexpected ids: %v", result.IDs)
	}
	if result.Documents[0] == nil || *result.Documents[0] != "hello" {
		t.Errorf("expected document back, got %v", result.Documents[0])
	}
	if result.Documents[1] != nil {
		t.Errorf("NULL document should come back nil, got %q", *result.Documents[1])
	}
	if result.Metadatas[0]["tag"] != "x" || result.Metadatas[1] != nil {
		t.Errorf("unexpected metadata: %v", result.Metadatas)
	}
	if result.Embeddings != nil {
		t.Error("embeddings are excluded by default")
	}
}

func TestCollectionGet_IncludeEmbeddings(t *testing.T) {
	f, col := newTestCollection(t, false)
	f.respond(map[string]any{"_id": "a", "embedding": "[1,0,0]"})

	result, err := col.Get(context.Background(), GetParams{
		IDs:     []string{"a"},
		Include: Include{Embeddings: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embeddings) != 1 || len(result.Embeddings[0]) != 3 || result.Embeddings[0][0] != 1 {
		t.Errorf("unexpected embeddings: %v", result.Embeddings)
	}
	if result.Documents != nil || result.Metadatas != nil {
		t.Error("excluded sections should stay nil")
	}
}

func TestCollectionGet_WithFiltersAndPaging(t *testing.T) {
	f, col := newTestCollection(t, false)

	_, err := col.Get(context.Background(), GetParams{
		Where:         map[string]any{"status": "ready"},
		WhereDocument: map[string]any{"$contains": "hello"},
		Limit:         5,
		Offset:        10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	captured := f.queries[len(f.queries)-1]
	for _, fragment := range []string{
		"JSON_EXTRACT(metadata, '$.status') = ?",
		"MATCH (document) AGAINST (?",
		" LIMIT ? OFFSET ?",
	} {
		if !strings.Contains(captured.stmt, fragment) {
			t.Errorf("statement %q should contain %q", captured.stmt, fragment)
		}
	}
}

func TestCollectionDelete(t *testing.T) {
	f, col := newTestCollection(t, false)

	if err := col.Delete(context.Background(), DeleteParams{}); !errors.Is(err, sqlgen.ErrNoCondition) {
		t.Errorf("expected ErrNoCondition, got %v", err)
	}

	if err := col.Delete(context.Background(), DeleteParams{IDs: []string{"a", "b"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := fmt.Sprintf("DELETE FROM `%s` WHERE `_id` IN (?, ?)", col.table)
	if f.lastExec().stmt != want {
		t.Errorf("expected %q, got %q", want, f.lastExec().stmt)
	}
}

func TestCollectionQuery_TextWithoutFunction(t *testing.T) {
	_, col := newTestCollection(t, false)

	_, err := col.Query(context.Background(), QueryParams{QueryTexts: []string{"hello"}})
	if !errors.Is(err, ErrNoEmbeddingFunction) {
		t.Errorf("expected ErrNoEmbeddingFunction, got %v", err)
	}
}

func TestCollectionQuery_Empty(t *testing.T) {
	_, col := newTestCollection(t, false)

	_, err := col.Query(context.Background(), QueryParams{})
	if !errors.Is(err, ErrNoQuery) {
		t.Errorf("expected ErrNoQuery, got %v", err)
	}
}

func TestCollectionQuery_RankedStatement(t *testing.T) {
	f, col := newTestCollection(t, false)
	f.respond(
		map[string]any{"_id": "a", "document": "hit", "metadata": nil, "distance": 0.25},
	)

	result, err := col.Query(context.Background(), QueryParams{
		QueryEmbeddings: [][]float32{{1, 0, 0}},
		NResults:        2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	captured := f.queries[len(f.queries)-1]
	want := fmt.Sprintf("SELECT `_id`, `document`, `metadata`, "+
		"l2_distance(`embedding`, '[1,0,0]') AS `distance` FROM `%s` "+
		"ORDER BY l2_distance(`embedding`, '[1,0,0]') APPROXIMATE LIMIT ?", col.table)
	if captured.stmt != want {
		t.Errorf("expected %q, got %q", want, captured.stmt)
	}
	if captured.params[len(captured.params)-1] != 2 {
		t.Errorf("expected the limit bound last, got %v", captured.params)
	}

	if len(result.IDs) != 1 || result.IDs[0][0] != "a" {
		t.Errorf("unexpected ids: %v", result.IDs)
	}
	if result.Distances[0][0] != 0.25 {
		t.Errorf("unexpected distances: %v", result.Distances)
	}
}

func TestCollectionQuery_ExactDisablesHint(t *testing.T) {
	f, col := newTestCollection(t, false)

	_, err := col.Query(context.Background(), QueryParams{
		QueryEmbeddings: [][]float32{{1, 0, 0}},
		Exact:           true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(f.queries[len(f.queries)-1].stmt, "APPROXIMATE") {
		t.Error("exact query should not carry the approximate hint")
	}
}

func TestCollectionQuery_BatchKeepsInputOrder(t *testing.T) {
	f, col := newTestCollection(t, true)
	f.respondMatch("'[1,0,0]'", map[string]any{"_id": "first", "distance": 0.1})
	f.respondMatch("'[0,1,0]'", map[string]any{"_id": "second", "distance": 0.2})

	result, err := col.Query(context.Background(), QueryParams{
		QueryEmbeddings: [][]float32{{1, 0, 0}, {0, 1, 0}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.IDs) != 2 {
		t.Fatalf("expected one result set per vector, got %d", len(result.IDs))
	}
	if result.IDs[0][0] != "first" || result.IDs[1][0] != "second" {
		t.Errorf("result sets out of input order: %v", result.IDs)
	}
}

func TestCollectionHybridSearch_NoQuery(t *testing.T) {
	_, col := newTestCollection(t, false)

	_, err := col.HybridSearch(context.Background(), HybridSearchParams{})
	if !errors.Is(err, ErrNoQuery) {
		t.Errorf("expected ErrNoQuery, got %v", err)
	}
}

func TestCollectionHybridSearch_TextWithoutFunction(t *testing.T) {
	_, col := newTestCollection(t, false)

	_, err := col.HybridSearch(context.Background(), HybridSearchParams{
		KNN: &KNNQuery{Text: "hello"},
	})
	if !errors.Is(err, ErrNoEmbeddingFunction) {
		t.Errorf("expected ErrNoEmbeddingFunction, got %v", err)
	}
}

func TestCollectionHybridSearch_SessionStatements(t *testing.T) {
	f, col := newTestCollection(t, false)
	f.respondMatch("DBMS_HYBRID_SEARCH.SEARCH",
		map[string]any{"_id": "a", "score": 0.9, "document": "hit"},
		map[string]any{"_id": "b", "score": 0.4},
	)

	results, err := col.HybridSearch(context.Background(), HybridSearchParams{
		WhereDocument: map[string]any{"$contains": "storage"},
		KNN:           &KNNQuery{Vector: []float32{1, 0, 0}, K: 5},
		Rank:          &RRFRank{WindowSize: 60, RankConstant: 20},
		Size:          10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	setStmt := f.execs[0].stmt
	if !strings.HasPrefix(setStmt, "SET @search_parm = '") {
		t.Errorf("expected the session variable assignment first, got %q", setStmt)
	}
	for _, fragment := range []string{`"query_string"`, `"knn"`, `"rrf"`, `"size":10`} {
		if !strings.Contains(setStmt, fragment) {
			t.Errorf("search param %q should contain %s", setStmt, fragment)
		}
	}
	callStmt := f.queries[len(f.queries)-1].stmt
	wantCall := fmt.Sprintf("SELECT DBMS_HYBRID_SEARCH.SEARCH('%s', @search_parm)", col.table)
	if callStmt != wantCall {
		t.Errorf("expected %q, got %q", wantCall, callStmt)
	}

	if len(results) != 2 || results[0].ID != "a" || results[0].Score != 0.9 {
		t.Errorf("unexpected results: %+v", results)
	}
	if results[0].Row["document"] != "hit" {
		t.Error("the raw row should ride along")
	}
}

func TestCollectionHybridSearchSQL(t *testing.T) {
	f, col := newTestCollection(t, false)
	f.respondMatch("DBMS_HYBRID_SEARCH.GET_SQL",
		map[string]any{"query_sql": []byte("SELECT 1")})

	sql, err := col.HybridSearchSQL(context.Background(), HybridSearchParams{
		KNN: &KNNQuery{Vector: []float32{1, 0, 0}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sql != "SELECT 1" {
		t.Errorf("expected the procedure's SQL back, got %q", sql)
	}
}

func TestCollectionCount(t *testing.T) {
	f, col := newTestCollection(t, false)
	f.respond(map[string]any{"count": int64(7)})

	count, err := col.Count(context.Background())
	if err != nil || count != 7 {
		t.Errorf("expected 7, got %d (%v)", count, err)
	}
	want := fmt.Sprintf("SELECT COUNT(*) AS `count` FROM `%s`", col.table)
	if f.queries[len(f.queries)-1].stmt != want {
		t.Errorf("expected %q, got %q", want, f.queries[len(f.queries)-1].stmt)
	}
}

func TestCollectionPeek(t *testing.T) {
	f, col := newTestCollection(t, false)
	f.respond(map[string]any{"_id": "a"})

	result, err := col.Peek(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.IDs) != 1 {
		t.Errorf("unexpected result: %v", result.IDs)
	}
	captured := f.queries[len(f.queries)-1]
	if !strings.HasSuffix(captured.stmt, " LIMIT ?") || captured.params[0] != DefaultPeekLimit {
		t.Errorf("expected the default peek limit, got %q %v", captured.stmt, captured.params)
	}
}
