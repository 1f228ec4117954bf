package sqlgen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/relvec/relvec/filter"
)

// Default index parameters for the vector and full-text indexes embedded in
// collection DDL.
const (
	DefaultAnalyzer       = "ik"
	DefaultVectorIndexAlg = "hnsw"
	DefaultVectorIndexLib = "vsag"
)

// CreateTableSpec describes the physical table of a collection.
type CreateTableSpec struct {
	// Table is the validated physical table name.
	Table string

	// Dimension is the vector column width. Must be positive.
	Dimension int

	// Metric is the distance metric declared on the vector index.
	Metric DistanceMetric

	// Analyzer is the full-text parser. Empty selects DefaultAnalyzer.
	Analyzer string

	// IndexAlgorithm and IndexLibrary select the vector index
	// implementation. Empty selects the defaults (hnsw / vsag).
	IndexAlgorithm string
	IndexLibrary   string
}

// CreateTable synthesizes the collection DDL: fixed-width binary id primary
// key, nullable document text, nullable vector of the declared dimension,
// nullable JSON metadata, a full-text index over the document column and a
// vector index declaring the distance metric and algorithm/library pair.
func CreateTable(spec CreateTableSpec) (string, error) {
	if spec.Dimension <= 0 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidDimension, spec.Dimension)
	}
	if _, err := spec.Metric.RankingFunction(); err != nil {
		return "", err
	}

	analyzer := spec.Analyzer
	if analyzer == "" {
		analyzer = DefaultAnalyzer
	}
	alg := spec.IndexAlgorithm
	if alg == "" {
		alg = DefaultVectorIndexAlg
	}
	lib := spec.IndexLibrary
	if lib == "" {
		lib = DefaultVectorIndexLib
	}

	table := quoteIdentifier(spec.Table)
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s ("+
			"`%s` VARBINARY(512) NOT NULL, "+
			"`%s` LONGTEXT NULL, "+
			"`%s` VECTOR(%d) NULL, "+
			"`%s` JSON NULL, "+
			"PRIMARY KEY (`%s`), "+
			"FULLTEXT INDEX `fts_idx_%s` (`%s`) WITH PARSER %s, "+
			"VECTOR INDEX `vec_idx_%s` (`%s`) WITH (distance=%s, type=%s, lib=%s))",
		table,
		ColumnID,
		ColumnDocument,
		ColumnEmbedding, spec.Dimension,
		ColumnMetadata,
		ColumnID,
		ColumnDocument, ColumnDocument, analyzer,
		ColumnEmbedding, ColumnEmbedding, spec.Metric, alg, lib,
	), nil
}

// DropTable synthesizes the teardown statement.
func DropTable(table string) string {
	return "DROP TABLE IF EXISTS " + quoteIdentifier(table)
}

// ShowTables lists physical tables whose name starts with the given
// prefix. The pattern is bound as a parameter.
func ShowTables(prefix string) (string, []any) {
	return "SHOW TABLES LIKE ?", []any{prefix + "%"}
}

// ShowCreateTable returns the DDL-reflection statement used to recover the
// schema of a legacy collection.
func ShowCreateTable(table string) string {
	return "SHOW CREATE TABLE " + quoteIdentifier(table)
}

// DescribeTable returns the column-introspection statement.
func DescribeTable(table string) string {
	return "DESCRIBE " + quoteIdentifier(table)
}

// ShowIndex returns the index-introspection statement.
func ShowIndex(table string) string {
	return "SHOW INDEX FROM " + quoteIdentifier(table)
}

// Row is one record in an INSERT or upsert statement.
type Row struct {
	ID        string
	Document  *string
	Embedding []float32
	Metadata  map[string]any
}

// Insert synthesizes a multi-row INSERT. The id is cast to a binary value
// to match the fixed-width binary primary key; the vector is bound as its
// bracketed literal; metadata is bound as serialized JSON.
func Insert(table string, rows []Row) (string, []any, error) {
	return insertStatement(table, rows, false)
}

// Upsert synthesizes a multi-row INSERT ... ON DUPLICATE KEY UPDATE that
// overwrites document, embedding and metadata of existing ids in one round
// trip.
func Upsert(table string, rows []Row) (string, []any, error) {
	return insertStatement(table, rows, true)
}

func insertStatement(table string, rows []Row, upsert bool) (string, []any, error) {
	if len(rows) == 0 {
		return "", nil, fmt.Errorf("sqlgen: insert requires at least one row")
	}

	valueTuples := make([]string, 0, len(rows))
	params := make([]any, 0, len(rows)*4)
	for _, row := range rows {
		valueTuples = append(valueTuples, "(CAST(? AS BINARY), ?, ?, ?)")
		params = append(params, row.ID)

		if row.Document != nil {
			params = append(params, *row.Document)
		} else {
			params = append(params, nil)
		}

		if row.Embedding != nil {
			literal, err := VectorLiteral(row.Embedding)
			if err != nil {
				return "", nil, err
			}
			params = append(params, literal)
		} else {
			params = append(params, nil)
		}

		metadataParam, err := metadataJSON(row.Metadata)
		if err != nil {
			return "", nil, err
		}
		params = append(params, metadataParam)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (`%s`, `%s`, `%s`, `%s`) VALUES %s",
		quoteIdentifier(table),
		ColumnID, ColumnDocument, ColumnEmbedding, ColumnMetadata,
		strings.Join(valueTuples, ", "))

	if upsert {
		fmt.Fprintf(&b, " ON DUPLICATE KEY UPDATE `%s` = VALUES(`%s`), `%s` = VALUES(`%s`), `%s` = VALUES(`%s`)",
			ColumnDocument, ColumnDocument,
			ColumnEmbedding, ColumnEmbedding,
			ColumnMetadata, ColumnMetadata)
	}

	return b.String(), params, nil
}

func metadataJSON(metadata map[string]any) (any, error) {
	if metadata == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("sqlgen: cannot serialize metadata: %w", err)
	}
	return string(encoded), nil
}

// UpdateFields carries the fields of a per-id UPDATE. Nil fields are left
// untouched; the SET clause is built from supplied fields only.
type UpdateFields struct {
	Document  *string
	Embedding []float32
	Metadata  map[string]any
}

// Update synthesizes a single-id UPDATE from the supplied fields.
func Update(table, id string, fields UpdateFields) (string, []any, error) {
	var assignments []string
	var params []any

	if fields.Document != nil {
		assignments = append(assignments, fmt.Sprintf("`%s` = ?", ColumnDocument))
		params = append(params, *fields.Document)
	}
	if fields.Embedding != nil {
		literal, err := VectorLiteral(fields.Embedding)
		if err != nil {
			return "", nil, err
		}
		assignments = append(assignments, fmt.Sprintf("`%s` = ?", ColumnEmbedding))
		params = append(params, literal)
	}
	if fields.Metadata != nil {
		metadataParam, err := metadataJSON(fields.Metadata)
		if err != nil {
			return "", nil, err
		}
		assignments = append(assignments, fmt.Sprintf("`%s` = ?", ColumnMetadata))
		params = append(params, metadataParam)
	}

	if len(assignments) == 0 {
		return "", nil, ErrNothingToUpdate
	}

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE `%s` = ?",
		quoteIdentifier(table), strings.Join(assignments, ", "), ColumnID)
	params = append(params, id)
	return stmt, params, nil
}

// Condition bundles the three predicate sources a read or delete statement
// accepts: an id list, a metadata filter and a document filter. All
// supplied parts are ANDed together.
type Condition struct {
	IDs           []string
	Where         filter.Where
	WhereDocument filter.WhereDocument
}

// compile renders the combined WHERE clause, without the "WHERE " keyword.
// An empty condition compiles to the empty string.
func (c Condition) compile() (string, []any, error) {
	var clauses []string
	var params []any

	if len(c.IDs) > 0 {
		placeholders := strings.Repeat("?, ", len(c.IDs))
		clauses = append(clauses, fmt.Sprintf("`%s` IN (%s)", ColumnID, placeholders[:len(placeholders)-2]))
		for _, id := range c.IDs {
			params = append(params, id)
		}
	}

	if c.Where != nil {
		clause, filterParams, err := filter.CompileWhere(c.Where, ColumnMetadata)
		if err != nil {
			return "", nil, err
		}
		if clause != "" {
			clauses = append(clauses, clause)
			params = append(params, filterParams...)
		}
	}

	if c.WhereDocument != nil {
		clause, filterParams, err := filter.CompileWhereDocument(c.WhereDocument, ColumnDocument)
		if err != nil {
			return "", nil, err
		}
		if clause != "" {
			clauses = append(clauses, clause)
			params = append(params, filterParams...)
		}
	}

	return strings.Join(clauses, " AND "), params, nil
}

// Projection selects the optional columns of a SELECT. The id column is
// always projected.
type Projection struct {
	Document  bool
	Metadata  bool
	Embedding bool
}

func (p Projection) columns() []string {
	cols := []string{"`" + ColumnID + "`"}
	if p.Document {
		cols = append(cols, "`"+ColumnDocument+"`")
	}
	if p.Metadata {
		cols = append(cols, "`"+ColumnMetadata+"`")
	}
	if p.Embedding {
		cols = append(cols, "`"+ColumnEmbedding+"`")
	}
	return cols
}

// SelectQuery describes a plain (non-ranked) SELECT over a collection.
type SelectQuery struct {
	Table      string
	Condition  Condition
	Projection Projection

	// Limit of 0 means no LIMIT clause. Offset requires a Limit.
	Limit  int
	Offset int
}

// Select synthesizes the statement and its ordered parameters.
func Select(q SelectQuery) (string, []any, error) {
	whereClause, params, err := q.Condition.compile()
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s",
		strings.Join(q.Projection.columns(), ", "), quoteIdentifier(q.Table))
	if whereClause != "" {
		b.WriteString(" WHERE ")
		b.WriteString(whereClause)
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
		if q.Offset > 0 {
			b.WriteString(" OFFSET ?")
			params = append(params, q.Offset)
		}
	}
	return b.String(), params, nil
}

// Count synthesizes the row-count statement.
func Count(table string) string {
	return "SELECT COUNT(*) AS `count` FROM " + quoteIdentifier(table)
}

// CopyTable synthesizes the row-copy statement used when forking a
// collection into a freshly created table of the same shape.
func CopyTable(dst, src string) string {
	columns := fmt.Sprintf("`%s`, `%s`, `%s`, `%s`",
		ColumnID, ColumnDocument, ColumnEmbedding, ColumnMetadata)
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
		quoteIdentifier(dst), columns, columns, quoteIdentifier(src))
}

// Delete synthesizes a predicate-only DELETE. At least one condition part
// must be present; this layer never generates an unfiltered DELETE.
func Delete(table string, cond Condition) (string, []any, error) {
	whereClause, params, err := cond.compile()
	if err != nil {
		return "", nil, err
	}
	if whereClause == "" {
		return "", nil, ErrNoCondition
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s", quoteIdentifier(table), whereClause), params, nil
}

// VectorQuery describes a vector-similarity SELECT.
type VectorQuery struct {
	Table      string
	Vector     []float32
	Metric     DistanceMetric
	Condition  Condition
	Projection Projection

	// Limit is the number of neighbors to return. Must be positive.
	Limit int

	// Approximate toggles the engine's approximate-search hint, routing
	// the ORDER BY through the vector index instead of an exact scan.
	Approximate bool
}

// VectorSearch synthesizes the ranking statement: the distance expression
// is projected as "distance" and repeated in the ORDER BY, with the query
// vector rendered as a bracketed literal on both occurrences.
func VectorSearch(q VectorQuery) (string, []any, error) {
	rankFn, err := q.Metric.RankingFunction()
	if err != nil {
		return "", nil, err
	}
	literal, err := VectorLiteral(q.Vector)
	if err != nil {
		return "", nil, err
	}
	if q.Limit <= 0 {
		return "", nil, fmt.Errorf("sqlgen: vector search requires a positive limit, got %d", q.Limit)
	}

	whereClause, params, err := q.Condition.compile()
	if err != nil {
		return "", nil, err
	}

	distanceExpr := fmt.Sprintf("%s(`%s`, '%s')", rankFn, ColumnEmbedding, literal)

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s, %s AS `%s` FROM %s",
		strings.Join(q.Projection.columns(), ", "), distanceExpr, ColumnDistance,
		quoteIdentifier(q.Table))
	if whereClause != "" {
		b.WriteString(" WHERE ")
		b.WriteString(whereClause)
	}
	fmt.Fprintf(&b, " ORDER BY %s", distanceExpr)
	if q.Approximate {
		b.WriteString(" APPROXIMATE")
	}
	b.WriteString(" LIMIT ?")
	params = append(params, q.Limit)

	return b.String(), params, nil
}

// Metadata table statements (v2 generation)

// CreateMetadataTable synthesizes the create-on-first-use DDL of the
// collection metadata table.
func CreateMetadataTable() string {
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s ("+
			"`collection_name` VARCHAR(%d) NOT NULL, "+
			"`collection_id` CHAR(32) NOT NULL, "+
			"`settings` JSON NULL, "+
			"PRIMARY KEY (`collection_name`), "+
			"UNIQUE KEY `uk_collection_id` (`collection_id`))",
		quoteIdentifier(MetadataTableName), MaxCollectionNameLength)
}

// InsertCollectionMetadata synthesizes the metadata-row insert.
func InsertCollectionMetadata(name, id, settingsJSON string) (string, []any) {
	stmt := fmt.Sprintf(
		"INSERT INTO %s (`collection_name`, `collection_id`, `settings`) VALUES (?, ?, ?)",
		quoteIdentifier(MetadataTableName))
	return stmt, []any{name, id, settingsJSON}
}

// SelectCollectionMetadata synthesizes the by-name metadata lookup.
func SelectCollectionMetadata(name string) (string, []any) {
	stmt := fmt.Sprintf(
		"SELECT `collection_name`, `collection_id`, `settings` FROM %s WHERE `collection_name` = ?",
		quoteIdentifier(MetadataTableName))
	return stmt, []any{name}
}

// SelectAllCollectionMetadata synthesizes the full metadata listing.
func SelectAllCollectionMetadata() string {
	return fmt.Sprintf(
		"SELECT `collection_name`, `collection_id`, `settings` FROM %s",
		quoteIdentifier(MetadataTableName))
}

// DeleteCollectionMetadata synthesizes the metadata-row delete.
func DeleteCollectionMetadata(name string) (string, []any) {
	stmt := fmt.Sprintf("DELETE FROM %s WHERE `collection_name` = ?", quoteIdentifier(MetadataTableName))
	return stmt, []any{name}
}

// Database admin statements

// CreateDatabase synthesizes the admin database-create statement. The name
// follows the collection-name validator.
func CreateDatabase(name string) (string, error) {
	if err := ValidateCollectionName(name); err != nil {
		return "", err
	}
	return "CREATE DATABASE IF NOT EXISTS " + quoteIdentifier(name), nil
}

// DropDatabase synthesizes the admin database-drop statement.
func DropDatabase(name string) (string, error) {
	if err := ValidateCollectionName(name); err != nil {
		return "", err
	}
	return "DROP DATABASE " + quoteIdentifier(name), nil
}

// UseDatabase synthesizes the session database switch.
func UseDatabase(name string) (string, error) {
	if err := ValidateCollectionName(name); err != nil {
		return "", err
	}
	return "USE " + quoteIdentifier(name), nil
}

// ShowDatabases synthesizes the database listing.
func ShowDatabases() string {
	return "SHOW DATABASES"
}
