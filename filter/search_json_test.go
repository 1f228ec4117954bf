package filter

import (
	"errors"
	"reflect"
	"testing"
)

const metaCol = "metadata"

func field(name string) string {
	return "(JSON_EXTRACT(metadata, '$." + name + "'))"
}

func TestSearchJSON_Nil(t *testing.T) {
	node, err := SearchJSON(nil, metaCol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node != nil {
		t.Errorf("expected nil, got %v", node)
	}
}

func TestSearchJSON_EqualityBecomesTerm(t *testing.T) {
	node, err := SearchJSON(Eq{Field: "city", Value: "London"}, metaCol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"term": map[string]any{field("city"): "London"}}
	if !reflect.DeepEqual(node, want) {
		t.Errorf("expected %v, got %v", want, node)
	}
}

func TestSearchJSON_NeBecomesMustNot(t *testing.T) {
	node, err := SearchJSON(Cmp{Field: "city", Op: OpNe, Value: "London"}, metaCol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"bool": map[string]any{
			"must_not": []map[string]any{
				{"term": map[string]any{field("city"): "London"}},
			},
		},
	}
	if !reflect.DeepEqual(node, want) {
		t.Errorf("expected %v, got %v", want, node)
	}
}

func TestSearchJSON_RangeOpsMergePerField(t *testing.T) {
	w := And{
		Cmp{Field: "year", Op: OpGte, Value: 2020},
		Cmp{Field: "year", Op: OpLt, Value: 2030},
	}
	node, err := SearchJSON(w, metaCol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"range": map[string]any{
			field("year"): map[string]any{"gte": 2020, "lt": 2030},
		},
	}
	if !reflect.DeepEqual(node, want) {
		t.Errorf("expected %v, got %v", want, node)
	}
}

func TestSearchJSON_InBecomesShouldTerms(t *testing.T) {
	node, err := SearchJSON(In{Field: "category", Values: []any{"news", "blog"}}, metaCol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"bool": map[string]any{
			"should": []map[string]any{
				{"term": map[string]any{field("category"): "news"}},
				{"term": map[string]any{field("category"): "blog"}},
			},
		},
	}
	if !reflect.DeepEqual(node, want) {
		t.Errorf("expected %v, got %v", want, node)
	}
}

func TestSearchJSON_NinBecomesMustNotTerms(t *testing.T) {
	node, err := SearchJSON(NotIn{Field: "category", Values: []any{"spam"}}, metaCol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"bool": map[string]any{
			"must_not": []map[string]any{
				{"term": map[string]any{field("category"): "spam"}},
			},
		},
	}
	if !reflect.DeepEqual(node, want) {
		t.Errorf("expected %v, got %v", want, node)
	}
}

func TestSearchJSON_SingleChildGroupCollapses(t *testing.T) {
	// A one-element And produces the bare term, not a bool wrapper.
	node, err := SearchJSON(And{Eq{Field: "city", Value: "London"}}, metaCol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"term": map[string]any{field("city"): "London"}}
	if !reflect.DeepEqual(node, want) {
		t.Errorf("expected collapsed term, got %v", node)
	}
}

func TestSearchJSON_AndOrNesting(t *testing.T) {
	w := And{
		Eq{Field: "status", Value: "published"},
		Or{
			Eq{Field: "city", Value: "London"},
			Eq{Field: "city", Value: "Berlin"},
		},
	}
	node, err := SearchJSON(w, metaCol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"bool": map[string]any{
			"must": []map[string]any{
				{"term": map[string]any{field("status"): "published"}},
				{"bool": map[string]any{
					"should": []map[string]any{
						{"term": map[string]any{field("city"): "London"}},
						{"term": map[string]any{field("city"): "Berlin"}},
					},
				}},
			},
		},
	}
	if !reflect.DeepEqual(node, want) {
		t.Errorf("expected %v, got %v", want, node)
	}
}

func TestSearchJSON_NotBecomesMustNot(t *testing.T) {
	node, err := SearchJSON(Not{Inner: Eq{Field: "archived", Value: true}}, metaCol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"bool": map[string]any{
			"must_not": []map[string]any{
				{"term": map[string]any{field("archived"): true}},
			},
		},
	}
	if !reflect.DeepEqual(node, want) {
		t.Errorf("expected %v, got %v", want, node)
	}
}

func TestSearchJSON_EmptyGroupsCompileToNil(t *testing.T) {
	node, err := SearchJSON(And{Or{}, And{}}, metaCol)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if node != nil {
		t.Errorf("expected nil, got %v", node)
	}
}

func TestDocumentSearchJSON_Contains(t *testing.T) {
	node, err := DocumentSearchJSON(Contains{Text: "vector search"}, "document")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"query_string": map[string]any{
			"fields": []string{"document"},
			"query":  "vector search",
		},
	}
	if !reflect.DeepEqual(node, want) {
		t.Errorf("expected %v, got %v", want, node)
	}
}

func TestDocumentSearchJSON_OrJoinsTerms(t *testing.T) {
	node, err := DocumentSearchJSON(DocOr{Contains{Text: "cats"}, Contains{Text: "dogs"}}, "document")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	qs := node["query_string"].(map[string]any)
	if qs["query"] != "cats OR dogs" {
		t.Errorf("expected joined OR query, got %v", qs["query"])
	}
}

func TestDocumentSearchJSON_AndJoinsTermsWithSpace(t *testing.T) {
	node, err := DocumentSearchJSON(DocAnd{Contains{Text: "cats"}, Contains{Text: "dogs"}}, "document")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	qs := node["query_string"].(map[string]any)
	if qs["query"] != "cats dogs" {
		t.Errorf("expected space-joined query, got %v", qs["query"])
	}
}

func TestDocumentSearchJSON_RegexRejected(t *testing.T) {
	_, err := DocumentSearchJSON(Regex{Pattern: "^x"}, "document")
	if !errors.Is(err, ErrRegexUnsupported) {
		t.Errorf("expected ErrRegexUnsupported, got %v", err)
	}
}
