package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/relvec/relvec/conn"
	"github.com/relvec/relvec/embedding"
	"github.com/relvec/relvec/sqlgen"
)

// Logger is an interface that matches the logger package's Logger.
type Logger interface {
	Error(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

// Manager performs collection catalog operations across both storage
// generations. It is safe for concurrent use.
type Manager struct {
	db       conn.Executor
	registry *embedding.Registry
	logger   Logger

	metaMu   sync.Mutex
	metaDone bool
}

// NewManager creates a Manager over the given executor. A nil registry
// falls back to the process-wide default registry; logger may be nil.
func NewManager(db conn.Executor, registry *embedding.Registry, logger Logger) *Manager {
	if registry == nil {
		registry = embedding.DefaultRegistry
	}
	return &Manager{db: db, registry: registry, logger: logger}
}

// ensureMetadataTable creates the metadata catalog on first use. Success is
// remembered; failures are retried on the next call.
func (m *Manager) ensureMetadataTable(ctx context.Context) error {
	m.metaMu.Lock()
	defer m.metaMu.Unlock()

	if m.metaDone {
		return nil
	}
	if err := m.db.Exec(ctx, sqlgen.CreateMetadataTable()); err != nil {
		return fmt.Errorf("schema: cannot create metadata table: %w", err)
	}
	m.metaDone = true
	return nil
}

// CreateSpec describes a collection to create.
type CreateSpec struct {
	Name   string
	Schema *Schema

	// EmbeddingFunction overrides the registry default when set.
	EmbeddingFunction embedding.Function

	// NoEmbedding declines embedding entirely: the collection only accepts
	// caller-supplied vectors. It takes precedence over the registry
	// default but not over an explicit EmbeddingFunction.
	NoEmbedding bool
}

// Create registers a new current-generation collection: it resolves the
// embedding function, derives and checks the vector dimension, writes the
// metadata row and then creates the physical table. When the DDL fails the
// metadata row is removed best-effort and the DDL error is returned.
func (m *Manager) Create(ctx context.Context, spec CreateSpec) (*CollectionMetadata, embedding.Function, error) {
	if err := sqlgen.ValidateCollectionName(spec.Name); err != nil {
		return nil, nil, err
	}
	if err := m.ensureMetadataTable(ctx); err != nil {
		return nil, nil, err
	}

	exists, err := m.Exists(ctx, spec.Name)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, fmt.Errorf("%w: %s", ErrCollectionExists, spec.Name)
	}

	fn, err := m.resolveFunction(spec)
	if err != nil {
		return nil, nil, err
	}

	dimension, metric, err := deriveDimension(spec.Schema, fn)
	if err != nil {
		return nil, nil, err
	}

	meta := &CollectionMetadata{
		ID:         newCollectionID(),
		Name:       spec.Name,
		Generation: GenerationCurrent,
		Dimension:  dimension,
		Metric:     metric,
		Schema:     normalizeSchema(spec.Schema, dimension, metric),
	}
	if fn != nil {
		meta.EmbeddingFunction = &EmbeddingFunctionRef{
			Name:       fn.Name(),
			Properties: fn.Config(),
		}
	}

	settings, err := meta.settingsJSON()
	if err != nil {
		return nil, nil, err
	}

	insertStmt, insertParams := sqlgen.InsertCollectionMetadata(meta.Name, meta.ID, settings)
	if err := m.db.Exec(ctx, insertStmt, insertParams...); err != nil {
		return nil, nil, fmt.Errorf("schema: cannot register collection %q: %w", spec.Name, err)
	}

	table, err := meta.TableName()
	if err != nil {
		return nil, nil, err
	}
	analyzer := ""
	if meta.Schema != nil && meta.Schema.FullText != nil {
		analyzer = meta.Schema.FullText.Analyzer
	}
	ddl, err := sqlgen.CreateTable(sqlgen.CreateTableSpec{
		Table:     table,
		Dimension: dimension,
		Metric:    metric,
		Analyzer:  analyzer,
	})
	if err == nil {
		err = m.db.Exec(ctx, ddl)
	}
	if err != nil {
		deleteStmt, deleteParams := sqlgen.DeleteCollectionMetadata(meta.Name)
		if rollbackErr := m.db.Exec(ctx, deleteStmt, deleteParams...); rollbackErr != nil {
			m.logWarn("could not roll back metadata row after failed DDL", rollbackErr,
				map[string]interface{}{"collection": meta.Name})
		}
		return nil, nil, fmt.Errorf("schema: cannot create collection table %q: %w", table, err)
	}

	return meta, fn, nil
}

// resolveFunction applies the embedding-function resolution order: explicit
// override, then explicit none, then the registry default.
func (m *Manager) resolveFunction(spec CreateSpec) (embedding.Function, error) {
	if spec.EmbeddingFunction != nil {
		return spec.EmbeddingFunction, nil
	}
	if spec.NoEmbedding {
		return nil, nil
	}
	return m.registry.Default()
}

// deriveDimension reconciles the schema's explicit dimension with the
// embedding function's width. One of the two must exist; when both do they
// must agree.
func deriveDimension(s *Schema, fn embedding.Function) (int, sqlgen.DistanceMetric, error) {
	explicit := 0
	metric := DefaultDistanceMetric
	if s != nil && s.Vector != nil {
		explicit = s.Vector.HNSW.Dimension
		if s.Vector.HNSW.Distance != "" {
			parsed, err := sqlgen.ParseDistanceMetric(string(s.Vector.HNSW.Distance))
			if err != nil {
				return 0, "", err
			}
			metric = parsed
		}
	}

	fnWidth := 0
	if fn != nil {
		fnWidth = fn.Dimension()
	}

	switch {
	case explicit > 0 && fnWidth > 0 && explicit != fnWidth:
		return 0, "", fmt.Errorf("%w: schema says %d, embedding function %q produces %d",
			ErrDimensionMismatch, explicit, fn.Name(), fnWidth)
	case explicit > 0:
		return explicit, metric, nil
	case fnWidth > 0:
		return fnWidth, metric, nil
	default:
		return 0, "", ErrDimensionRequired
	}
}

// normalizeSchema fills the derived dimension and metric back into the
// schema tree so the persisted document is self-contained.
func normalizeSchema(s *Schema, dimension int, metric sqlgen.DistanceMetric) *Schema {
	out := &Schema{}
	if s != nil {
		*out = *s
	}
	if out.Vector == nil {
		out.Vector = &VectorIndexConfig{}
	} else {
		vectorCopy := *out.Vector
		out.Vector = &vectorCopy
	}
	out.Vector.HNSW.Dimension = dimension
	out.Vector.HNSW.Distance = metric
	return out
}

// Get resolves a collection by name, preferring the metadata catalog and
// falling back to legacy DDL reflection.
func (m *Manager) Get(ctx context.Context, name string) (*CollectionMetadata, error) {
	if err := sqlgen.ValidateCollectionName(name); err != nil {
		return nil, err
	}
	if err := m.ensureMetadataTable(ctx); err != nil {
		return nil, err
	}

	stmt, params := sqlgen.SelectCollectionMetadata(name)
	rows, err := m.db.Query(ctx, stmt, params...)
	if err != nil {
		return nil, fmt.Errorf("schema: metadata lookup failed for %q: %w", name, err)
	}
	if len(rows) > 0 {
		return metadataFromRow(rows[0])
	}

	return m.getLegacy(ctx, name)
}

// getLegacy reflects the v1 table of the named collection.
func (m *Manager) getLegacy(ctx context.Context, name string) (*CollectionMetadata, error) {
	table, err := sqlgen.TableNameV1(name)
	if err != nil {
		return nil, err
	}
	exists, err := m.tableExists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}

	rows, err := m.db.Query(ctx, sqlgen.ShowCreateTable(table))
	if err != nil {
		return nil, fmt.Errorf("schema: cannot reflect legacy table %q: %w", table, err)
	}
	ddl := ""
	if len(rows) > 0 {
		ddl = rowString(rows[0], "Create Table")
		if ddl == "" {
			// Column label differs across engine versions; take the longest
			// string value as the DDL.
			for _, v := range rows[0] {
				if s := asString(v); len(s) > len(ddl) {
					ddl = s
				}
			}
		}
	}

	dimension, metric, err := reflectLegacyDDL(ddl)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", table, err)
	}

	return &CollectionMetadata{
		Name:       name,
		Generation: GenerationLegacy,
		Dimension:  dimension,
		Metric:     metric,
		Schema: &Schema{
			Vector: &VectorIndexConfig{
				HNSW: HNSWConfig{Dimension: dimension, Distance: metric},
			},
		},
	}, nil
}

// List returns every collection of either generation, deduplicated by
// logical name with the current generation winning. Legacy tables that
// cannot be reflected are skipped with a warning.
func (m *Manager) List(ctx context.Context) ([]*CollectionMetadata, error) {
	if err := m.ensureMetadataTable(ctx); err != nil {
		return nil, err
	}

	rows, err := m.db.Query(ctx, sqlgen.SelectAllCollectionMetadata())
	if err != nil {
		return nil, fmt.Errorf("schema: metadata listing failed: %w", err)
	}

	byName := map[string]*CollectionMetadata{}
	for _, row := range rows {
		meta, err := metadataFromRow(row)
		if err != nil {
			m.logWarn("skipping unreadable metadata row", err, nil)
			continue
		}
		byName[meta.Name] = meta
	}

	stmt, params := sqlgen.ShowTables(sqlgen.TablePrefixV1)
	tableRows, err := m.db.Query(ctx, stmt, params...)
	if err != nil {
		return nil, fmt.Errorf("schema: legacy table listing failed: %w", err)
	}
	for _, row := range tableRows {
		for _, v := range row {
			table := asString(v)
			name, ok := sqlgen.CollectionNameFromV1(table)
			if !ok {
				continue
			}
			if _, taken := byName[name]; taken {
				continue
			}
			meta, err := m.getLegacy(ctx, name)
			if err != nil {
				m.logWarn("skipping unreflectable legacy table", err,
					map[string]interface{}{"table": table})
				continue
			}
			byName[name] = meta
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*CollectionMetadata, 0, len(names))
	for _, name := range names {
		out = append(out, byName[name])
	}
	return out, nil
}

// Delete removes a collection: the physical table drop is authoritative,
// and the metadata row is removed when present.
func (m *Manager) Delete(ctx context.Context, name string) error {
	meta, err := m.Get(ctx, name)
	if err != nil {
		return err
	}

	table, err := meta.TableName()
	if err != nil {
		return err
	}
	if err := m.db.Exec(ctx, sqlgen.DropTable(table)); err != nil {
		return fmt.Errorf("schema: cannot drop table %q: %w", table, err)
	}

	if meta.Generation == GenerationCurrent {
		stmt, params := sqlgen.DeleteCollectionMetadata(name)
		if err := m.db.Exec(ctx, stmt, params...); err != nil {
			return fmt.Errorf("schema: cannot remove metadata row for %q: %w", name, err)
		}
	}
	return nil
}

// Exists reports whether a collection of either generation exists.
func (m *Manager) Exists(ctx context.Context, name string) (bool, error) {
	if err := sqlgen.ValidateCollectionName(name); err != nil {
		return false, err
	}
	if err := m.ensureMetadataTable(ctx); err != nil {
		return false, err
	}

	stmt, params := sqlgen.SelectCollectionMetadata(name)
	rows, err := m.db.Query(ctx, stmt, params...)
	if err != nil {
		return false, fmt.Errorf("schema: metadata lookup failed for %q: %w", name, err)
	}
	if len(rows) > 0 {
		return true, nil
	}

	table, err := sqlgen.TableNameV1(name)
	if err != nil {
		return false, err
	}
	return m.tableExists(ctx, table)
}

// tableExists checks for a physical table by exact name.
func (m *Manager) tableExists(ctx context.Context, table string) (bool, error) {
	stmt, params := sqlgen.ShowTables(table)
	rows, err := m.db.Query(ctx, stmt, params...)
	if err != nil {
		return false, fmt.Errorf("schema: table listing failed: %w", err)
	}
	for _, row := range rows {
		for _, v := range row {
			if asString(v) == table {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *Manager) logWarn(msg string, err error, fields map[string]interface{}) {
	if m.logger == nil {
		return
	}
	if fields == nil {
		m.logger.Warn(msg, err)
		return
	}
	m.logger.Warn(msg, err, fields)
}

// metadataFromRow decodes one catalog row.
func metadataFromRow(row map[string]any) (*CollectionMetadata, error) {
	name := rowString(row, "collection_name")
	id := rowString(row, "collection_id")
	if name == "" || id == "" {
		return nil, fmt.Errorf("%w: missing name or id", ErrMalformedSettings)
	}
	return parseSettings(name, id, rowString(row, "settings"))
}

// newCollectionID generates the 32-character hex collection id.
func newCollectionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func rowString(row map[string]any, column string) string {
	return asString(row[column])
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return ""
	}
}
