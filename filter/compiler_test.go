package filter

import (
	"errors"
	"reflect"
	"testing"
)

func TestCompileWhere_NilFilter(t *testing.T) {
	pred, params, err := CompileWhere(nil, "metadata")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred != "" {
		t.Errorf("expected empty predicate, got %q", pred)
	}
	if params != nil {
		t.Errorf("expected nil params, got %v", params)
	}
}

func TestCompileWhere_Equality(t *testing.T) {
	pred, params, err := CompileWhere(Eq{Field: "city", Value: "London"}, "metadata")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "JSON_EXTRACT(metadata, '$.city') = ?"
	if pred != want {
		t.Errorf("expected %q, got %q", want, pred)
	}
	if !reflect.DeepEqual(params, []any{"London"}) {
		t.Errorf("expected params [London], got %v", params)
	}
}

func TestCompileWhere_ComparisonOperators(t *testing.T) {
	cases := []struct {
		op   Op
		want string
	}{
		{OpEq, "JSON_EXTRACT(metadata, '$.year') = ?"},
		{OpNe, "JSON_EXTRACT(metadata, '$.year') != ?"},
		{OpLt, "JSON_EXTRACT(metadata, '$.year') < ?"},
		{OpLte, "JSON_EXTRACT(metadata, '$.year') <= ?"},
		{OpGt, "JSON_EXTRACT(metadata, '$.year') > ?"},
		{OpGte, "JSON_EXTRACT(metadata, '$.year') >= ?"},
	}
	for _, tc := range cases {
		pred, params, err := CompileWhere(Cmp{Field: "year", Op: tc.op, Value: 2020}, "metadata")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.op, err)
		}
		if pred != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.op, tc.want, pred)
		}
		if len(params) != 1 || params[0] != 2020 {
			t.Errorf("%s: expected params [2020], got %v", tc.op, params)
		}
	}
}

func TestCompileWhere_InList(t *testing.T) {
	pred, params, err := CompileWhere(In{Field: "category", Values: []any{"news", "blog", "docs"}}, "metadata")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "JSON_EXTRACT(metadata, '$.category') IN (?, ?, ?)"
	if pred != want {
		t.Errorf("expected %q, got %q", want, pred)
	}
	if len(params) != 3 {
		t.Errorf("expected 3 params, got %d", len(params))
	}
}

func TestCompileWhere_NotInList(t *testing.T) {
	pred, _, err := CompileWhere(NotIn{Field: "category", Values: []any{"spam"}}, "metadata")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "JSON_EXTRACT(metadata, '$.category') NOT IN (?)"
	if pred != want {
		t.Errorf("expected %q, got %q", want, pred)
	}
}

func TestCompileWhere_EmptyInList(t *testing.T) {
	_, _, err := CompileWhere(In{Field: "category"}, "metadata")
	if !errors.Is(err, ErrEmptyValueList) {
		t.Errorf("expected ErrEmptyValueList, got %v", err)
	}
}

func TestCompileWhere_AndNesting(t *testing.T) {
	w := And{
		Eq{Field: "status", Value: "published"},
		Cmp{Field: "year", Op: OpGte, Value: 2020},
	}
	pred, params, err := CompileWhere(w, "metadata")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "(JSON_EXTRACT(metadata, '$.status') = ? AND JSON_EXTRACT(metadata, '$.year') >= ?)"
	if pred != want {
		t.Errorf("expected %q, got %q", want, pred)
	}
	if !reflect.DeepEqual(params, []any{"published", 2020}) {
		t.Errorf("unexpected params: %v", params)
	}
}

func TestCompileWhere_OrInsideAnd(t *testing.T) {
	w := And{
		Eq{Field: "status", Value: "published"},
		Or{
			Eq{Field: "city", Value: "London"},
			Eq{Field: "city", Value: "Berlin"},
		},
	}
	pred, params, err := CompileWhere(w, "metadata")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "(JSON_EXTRACT(metadata, '$.status') = ? AND " +
		"(JSON_EXTRACT(metadata, '$.city') = ? OR JSON_EXTRACT(metadata, '$.city') = ?))"
	if pred != want {
		t.Errorf("expected %q, got %q", want, pred)
	}
	if len(params) != 3 {
		t.Errorf("expected 3 params in order, got %v", params)
	}
}

func TestCompileWhere_NotWrapsInner(t *testing.T) {
	pred, _, err := CompileWhere(Not{Inner: Eq{Field: "archived", Value: true}}, "metadata")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "NOT (JSON_EXTRACT(metadata, '$.archived') = ?)"
	if pred != want {
		t.Errorf("expected %q, got %q", want, pred)
	}
}

func TestCompileWhere_EmptyGroupsContributeNothing(t *testing.T) {
	// An empty Or inside an And is treated as "no constraint", not as
	// vacuously false.
	w := And{
		Or{},
		Eq{Field: "status", Value: "published"},
	}
	pred, params, err := CompileWhere(w, "metadata")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "(JSON_EXTRACT(metadata, '$.status') = ?)"
	if pred != want {
		t.Errorf("expected %q, got %q", want, pred)
	}
	if len(params) != 1 {
		t.Errorf("expected 1 param, got %v", params)
	}
}

func TestCompileWhere_OnlyEmptyGroups(t *testing.T) {
	pred, params, err := CompileWhere(And{Or{}, And{}}, "metadata")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred != "" {
		t.Errorf("expected empty predicate, got %q", pred)
	}
	if params != nil {
		t.Errorf("expected nil params, got %v", params)
	}
}

func TestCompileWhere_NotOfEmptyGroup(t *testing.T) {
	pred, _, err := CompileWhere(Not{Inner: And{}}, "metadata")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred != "" {
		t.Errorf("expected empty predicate, got %q", pred)
	}
}

func TestCompileWhere_RejectsUnsafeFieldName(t *testing.T) {
	_, _, err := CompileWhere(Eq{Field: "a') OR 1=1 --", Value: 1}, "metadata")
	if !errors.Is(err, ErrInvalidField) {
		t.Errorf("expected ErrInvalidField, got %v", err)
	}
}

func TestCompileWhereDocument_Contains(t *testing.T) {
	pred, params, err := CompileWhereDocument(Contains{Text: "vector search"}, "document")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "MATCH (document) AGAINST (?)"
	if pred != want {
		t.Errorf("expected %q, got %q", want, pred)
	}
	if !reflect.DeepEqual(params, []any{"vector search"}) {
		t.Errorf("unexpected params: %v", params)
	}
}

func TestCompileWhereDocument_Regex(t *testing.T) {
	pred, params, err := CompileWhereDocument(Regex{Pattern: "^intro"}, "document")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "document REGEXP ?"
	if pred != want {
		t.Errorf("expected %q, got %q", want, pred)
	}
	if !reflect.DeepEqual(params, []any{"^intro"}) {
		t.Errorf("unexpected params: %v", params)
	}
}

func TestCompileWhereDocument_OrGroup(t *testing.T) {
	w := DocOr{
		Contains{Text: "cats"},
		Contains{Text: "dogs"},
	}
	pred, params, err := CompileWhereDocument(w, "document")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "(MATCH (document) AGAINST (?) OR MATCH (document) AGAINST (?))"
	if pred != want {
		t.Errorf("expected %q, got %q", want, pred)
	}
	if len(params) != 2 {
		t.Errorf("expected 2 params, got %v", params)
	}
}

// evalWhere is an in-memory reference implementation of the metadata filter
// semantics, used to sanity-check that compiled predicates follow the AST
// shape (parameter ordering and grouping) for nested combinations.
func evalWhere(w Where, metadata map[string]any) bool {
	switch node := w.(type) {
	case Eq:
		return metadata[node.Field] == node.Value
	case Cmp:
		v, ok := metadata[node.Field].(int)
		c, okc := node.Value.(int)
		if !ok || !okc {
			return false
		}
		switch node.Op {
		case OpEq:
			return v == c
		case OpNe:
			return v != c
		case OpLt:
			return v < c
		case OpLte:
			return v <= c
		case OpGt:
			return v > c
		case OpGte:
			return v >= c
		}
		return false
	case In:
		for _, candidate := range node.Values {
			if metadata[node.Field] == candidate {
				return true
			}
		}
		return false
	case NotIn:
		for _, candidate := range node.Values {
			if metadata[node.Field] == candidate {
				return false
			}
		}
		return true
	case And:
		for _, sub := range node {
			if sub == nil {
				continue
			}
			if !evalWhere(sub, metadata) {
				return false
			}
		}
		return true
	case Or:
		matched := false
		sawChild := false
		for _, sub := range node {
			if sub == nil {
				continue
			}
			sawChild = true
			if evalWhere(sub, metadata) {
				matched = true
			}
		}
		return !sawChild || matched
	case Not:
		if node.Inner == nil {
			return true
		}
		return !evalWhere(node.Inner, metadata)
	}
	return false
}

func TestCompileWhere_DepthThreeNestingParamOrder(t *testing.T) {
	w := Or{
		And{
			Cmp{Field: "a", Op: OpGt, Value: 1},
			Or{
				Eq{Field: "b", Value: 2},
				Eq{Field: "c", Value: 3},
			},
		},
		Not{Inner: Eq{Field: "d", Value: 4}},
	}
	pred, params, err := CompileWhere(w, "metadata")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantParams := []any{1, 2, 3, 4}
	if !reflect.DeepEqual(params, wantParams) {
		t.Errorf("expected params %v, got %v", wantParams, params)
	}
	wantPred := "((JSON_EXTRACT(metadata, '$.a') > ? AND " +
		"(JSON_EXTRACT(metadata, '$.b') = ? OR JSON_EXTRACT(metadata, '$.c') = ?)) OR " +
		"NOT (JSON_EXTRACT(metadata, '$.d') = ?))"
	if pred != wantPred {
		t.Errorf("expected %q, got %q", wantPred, pred)
	}

	// Reference evaluation: the AST itself behaves as the predicate reads.
	if !evalWhere(w, map[string]any{"a": 2, "b": 2, "c": 0, "d": 0}) {
		t.Error("reference evaluation should match")
	}
	if evalWhere(w, map[string]any{"a": 0, "b": 0, "c": 0, "d": 4}) {
		t.Error("reference evaluation should not match")
	}
}

func TestValidateField(t *testing.T) {
	valid := []string{"a", "field_1", "CamelCase", "x9"}
	for _, f := range valid {
		if err := ValidateField(f); err != nil {
			t.Errorf("expected %q to be valid, got %v", f, err)
		}
	}
	invalid := []string{"", "with space", "quote'", "dash-ed", "dot.ted", "semi;colon"}
	for _, f := range invalid {
		if err := ValidateField(f); err == nil {
			t.Errorf("expected %q to be rejected", f)
		}
	}
}
