package sqlgen

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateCollectionName_Accepts(t *testing.T) {
	for _, name := range []string{"a", "my_docs", "Docs2024", strings.Repeat("x", 512)} {
		if err := ValidateCollectionName(name); err != nil {
			t.Errorf("expected %q to be valid, got %v", name, err)
		}
	}
}

func TestValidateCollectionName_Rejects(t *testing.T) {
	cases := []string{
		"",
		"with space",
		"semi;colon",
		"drop`table",
		"dash-ed",
		strings.Repeat("x", 513),
	}
	for _, name := range cases {
		if err := ValidateCollectionName(name); !errors.Is(err, ErrInvalidCollectionName) {
			t.Errorf("expected ErrInvalidCollectionName for %q, got %v", name, err)
		}
	}
}

func TestTableNaming_Generations(t *testing.T) {
	v1, err := TableNameV1("docs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v1 != "vec_v1_docs" {
		t.Errorf("expected vec_v1_docs, got %q", v1)
	}

	v2, err := TableNameV2("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v2 != "vec_v2_0123456789abcdef0123456789abcdef" {
		t.Errorf("unexpected v2 table name %q", v2)
	}
}

func TestCollectionNameFromV1(t *testing.T) {
	name, ok := CollectionNameFromV1("vec_v1_docs")
	if !ok || name != "docs" {
		t.Errorf("expected (docs, true), got (%q, %v)", name, ok)
	}
	if _, ok := CollectionNameFromV1("vec_v2_abc"); ok {
		t.Error("v2 table should not parse as v1")
	}
	if _, ok := CollectionNameFromV1("vec_v1_"); ok {
		t.Error("empty remainder should not parse")
	}
	if _, ok := CollectionNameFromV1("unrelated"); ok {
		t.Error("unrelated table should not parse")
	}
}

func TestCollectionIDFromV2(t *testing.T) {
	id, ok := CollectionIDFromV2("vec_v2_0123456789abcdef0123456789abcdef")
	if !ok || id != "0123456789abcdef0123456789abcdef" {
		t.Errorf("expected id, got (%q, %v)", id, ok)
	}
	if _, ok := CollectionIDFromV2("vec_v1_docs"); ok {
		t.Error("v1 table should not parse as v2")
	}
}
