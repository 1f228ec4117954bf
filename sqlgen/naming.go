package sqlgen

import (
	"fmt"
	"strings"
)

// Physical column names shared by both table generations.
const (
	ColumnID        = "_id"
	ColumnDocument  = "document"
	ColumnEmbedding = "embedding"
	ColumnMetadata  = "metadata"
	ColumnDistance  = "distance"
)

// Table name prefixes for the two storage generations, and the metadata
// table backing the current one.
const (
	TablePrefixV1 = "vec_v1_"
	TablePrefixV2 = "vec_v2_"

	// MetadataTableName holds one row per v2 collection.
	MetadataTableName = "vec_collections"
)

// MaxCollectionNameLength bounds collection and database names.
const MaxCollectionNameLength = 512

// ValidateCollectionName enforces the identifier charset before a name can
// reach statement text: letters, digits and underscore, 1-512 characters.
// Database names follow the same rule.
func ValidateCollectionName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidCollectionName)
	}
	if len(name) > MaxCollectionNameLength {
		return fmt.Errorf("%w: %d characters exceeds the %d limit",
			ErrInvalidCollectionName, len(name), MaxCollectionNameLength)
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidCollectionName, name, r)
		}
	}
	return nil
}

// TableNameV1 maps a collection name onto its legacy physical table name.
func TableNameV1(collectionName string) (string, error) {
	if err := ValidateCollectionName(collectionName); err != nil {
		return "", err
	}
	return TablePrefixV1 + collectionName, nil
}

// TableNameV2 maps a generated collection id onto its physical table name.
// The id is produced by this layer (32 hex characters), so no further
// validation is needed beyond the defensive charset check.
func TableNameV2(collectionID string) (string, error) {
	if err := ValidateCollectionName(collectionID); err != nil {
		return "", err
	}
	return TablePrefixV2 + collectionID, nil
}

// CollectionNameFromV1 recovers the logical collection name from a legacy
// physical table name. The second return value reports whether the table
// belongs to the legacy generation at all.
func CollectionNameFromV1(tableName string) (string, bool) {
	name, ok := strings.CutPrefix(tableName, TablePrefixV1)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// CollectionIDFromV2 recovers the collection id from a v2 physical table
// name.
func CollectionIDFromV2(tableName string) (string, bool) {
	id, ok := strings.CutPrefix(tableName, TablePrefixV2)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// quoteIdentifier wraps an already-validated identifier in backticks.
func quoteIdentifier(name string) string {
	return "`" + name + "`"
}
