package relvec

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/relvec/relvec/conn"
	"github.com/relvec/relvec/embedding"
	"github.com/relvec/relvec/filter"
	"github.com/relvec/relvec/schema"
	"github.com/relvec/relvec/sqlgen"
)

// DefaultQueryResults is the result count used when a query names none.
const DefaultQueryResults = 10

// DefaultPeekLimit is the row count Peek returns when none is requested.
const DefaultPeekLimit = 10

// Collection is a handle to one logical collection. Handles are cheap and
// safe for concurrent use; all state lives in the engine.
type Collection struct {
	client *Client
	meta   *schema.CollectionMetadata
	table  string
	fn     embedding.Function
}

// Name returns the logical collection name.
func (c *Collection) Name() string { return c.meta.Name }

// ID returns the generated collection identifier; empty for legacy
// collections.
func (c *Collection) ID() string { return c.meta.ID }

// Dimension returns the configured vector dimension.
func (c *Collection) Dimension() int { return c.meta.Dimension }

// DistanceMetric returns the configured distance metric.
func (c *Collection) DistanceMetric() sqlgen.DistanceMetric { return c.meta.Metric }

// Generation returns the storage generation of the collection.
func (c *Collection) Generation() schema.Generation { return c.meta.Generation }

// recordBatch is the shared shape of Add, Upsert and Update inputs.
type recordBatch struct {
	IDs        []string
	Documents  []string
	Embeddings [][]float32
	Metadatas  []Metadata
}

func (b recordBatch) validate() error {
	if err := validateIDs(b.IDs); err != nil {
		return err
	}
	n := len(b.IDs)
	if err := sameLength("documents", len(b.Documents), n); err != nil {
		return err
	}
	if err := sameLength("embeddings", len(b.Embeddings), n); err != nil {
		return err
	}
	if err := sameLength("metadatas", len(b.Metadatas), n); err != nil {
		return err
	}
	return nil
}

// AddParams carries one batch of new records.
type AddParams recordBatch

// UpsertParams carries one batch of records to insert or replace.
type UpsertParams recordBatch

// UpdateParams carries per-id partial updates. Only the supplied fields of
// each record are written.
type UpdateParams recordBatch

// Add inserts new records. A duplicate id violates the primary key and the
// engine's constraint error is propagated.
func (c *Collection) Add(ctx context.Context, p AddParams) (err error) {
	defer func(start time.Time) { c.client.observe("add", start, err) }(time.Now())
	rows, err := c.prepareRows(ctx, recordBatch(p), true)
	if err != nil {
		return err
	}
	stmt, params, err := sqlgen.Insert(c.table, rows)
	if err != nil {
		return err
	}
	return c.client.db.Exec(ctx, stmt, params...)
}

// Upsert inserts records, replacing existing ones with the same id in a
// single round trip.
func (c *Collection) Upsert(ctx context.Context, p UpsertParams) (err error) {
	defer func(start time.Time) { c.client.observe("upsert", start, err) }(time.Now())
	rows, err := c.prepareRows(ctx, recordBatch(p), true)
	if err != nil {
		return err
	}
	stmt, params, err := sqlgen.Upsert(c.table, rows)
	if err != nil {
		return err
	}
	return c.client.db.Exec(ctx, stmt, params...)
}

// Update writes the supplied fields of existing records. An id that does
// not exist in the collection is a not-found error, reported before any
// write happens.
func (c *Collection) Update(ctx context.Context, p UpdateParams) (err error) {
	defer func(start time.Time) { c.client.observe("update", start, err) }(time.Now())

	batch := recordBatch(p)
	if err := batch.validate(); err != nil {
		return err
	}
	if len(batch.Documents) == 0 && len(batch.Embeddings) == 0 && len(batch.Metadatas) == 0 {
		return sqlgen.ErrNothingToUpdate
	}
	if len(batch.Embeddings) == 0 && len(batch.Documents) > 0 && c.fn != nil {
		batch.Embeddings, err = c.fn.Generate(ctx, batch.Documents)
		if err != nil {
			return fmt.Errorf("relvec: embedding documents failed: %w", err)
		}
	}
	if err := validateEmbeddings(batch.Embeddings, c.meta.Dimension); err != nil {
		return err
	}

	if err := c.requireExisting(ctx, batch.IDs); err != nil {
		return err
	}

	for i, id := range batch.IDs {
		fields := sqlgen.UpdateFields{}
		if len(batch.Documents) > 0 {
			fields.Document = &batch.Documents[i]
		}
		if len(batch.Embeddings) > 0 {
			fields.Embedding = batch.Embeddings[i]
		}
		if len(batch.Metadatas) > 0 {
			fields.Metadata = batch.Metadatas[i]
		}
		stmt, params, err := sqlgen.Update(c.table, id, fields)
		if err != nil {
			return err
		}
		if err := c.client.db.Exec(ctx, stmt, params...); err != nil {
			return err
		}
	}
	return nil
}

// requireExisting fails with ErrRecordNotFound naming the first missing id.
func (c *Collection) requireExisting(ctx context.Context, ids []string) error {
	stmt, params, err := sqlgen.Select(sqlgen.SelectQuery{
		Table:     c.table,
		Condition: sqlgen.Condition{IDs: ids},
	})
	if err != nil {
		return err
	}
	rows, err := c.client.db.Query(ctx, stmt, params...)
	if err != nil {
		return err
	}
	present := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		present[rowID(row)] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			return fmt.Errorf("%w: %q", ErrRecordNotFound, id)
		}
	}
	return nil
}

// prepareRows validates a batch and turns it into statement rows, embedding
// documents when vectors are absent and a function is bound.
func (c *Collection) prepareRows(ctx context.Context, batch recordBatch, requireContent bool) ([]sqlgen.Row, error) {
	if err := batch.validate(); err != nil {
		return nil, err
	}
	if requireContent && len(batch.Documents) == 0 && len(batch.Embeddings) == 0 {
		return nil, ErrNothingToAdd
	}

	embeddings := batch.Embeddings
	if len(embeddings) == 0 && len(batch.Documents) > 0 && c.fn != nil {
		generated, err := c.fn.Generate(ctx, batch.Documents)
		if err != nil {
			return nil, fmt.Errorf("relvec: embedding documents failed: %w", err)
		}
		embeddings = generated
	}
	if err := validateEmbeddings(embeddings, c.meta.Dimension); err != nil {
		return nil, err
	}

	rows := make([]sqlgen.Row, len(batch.IDs))
	for i, id := range batch.IDs {
		row := sqlgen.Row{ID: id}
		if len(batch.Documents) > 0 {
			row.Document = &batch.Documents[i]
		}
		if len(embeddings) > 0 {
			row.Embedding = embeddings[i]
		}
		if len(batch.Metadatas) > 0 {
			row.Metadata = batch.Metadatas[i]
		}
		rows[i] = row
	}
	return rows, nil
}

// GetParams selects records by id and/or filters.
type GetParams struct {
	IDs           []string
	Where         map[string]any
	WhereDocument map[string]any
	Limit         int
	Offset        int
	Include       Include
}

// Get fetches records matching the given ids and filters.
func (c *Collection) Get(ctx context.Context, p GetParams) (result *GetResult, err error) {
	defer func(start time.Time) { c.client.observe("get", start, err) }(time.Now())

	cond, err := buildCondition(p.IDs, p.Where, p.WhereDocument)
	if err != nil {
		return nil, err
	}

	include := p.Include
	if include.empty() {
		include = IncludeGetDefault
	}

	stmt, params, err := sqlgen.Select(sqlgen.SelectQuery{
		Table:     c.table,
		Condition: cond,
		Projection: sqlgen.Projection{
			Document:  include.Documents,
			Metadata:  include.Metadatas,
			Embedding: include.Embeddings,
		},
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		return nil, err
	}

	rows, err := c.client.db.Query(ctx, stmt, params...)
	if err != nil {
		return nil, err
	}
	return normalizeGet(rows, include)
}

// DeleteParams selects records to delete. At least one of ids, where or
// whereDocument must be present.
type DeleteParams struct {
	IDs           []string
	Where         map[string]any
	WhereDocument map[string]any
}

// Delete removes matching records.
func (c *Collection) Delete(ctx context.Context, p DeleteParams) (err error) {
	defer func(start time.Time) { c.client.observe("delete", start, err) }(time.Now())

	cond, err := buildCondition(p.IDs, p.Where, p.WhereDocument)
	if err != nil {
		return err
	}
	stmt, params, err := sqlgen.Delete(c.table, cond)
	if err != nil {
		return err
	}
	return c.client.db.Exec(ctx, stmt, params...)
}

// QueryParams describes a similarity query: one or many vectors and/or
// texts, each producing its own result set.
type QueryParams struct {
	QueryTexts      []string
	QueryEmbeddings [][]float32

	NResults      int
	Where         map[string]any
	WhereDocument map[string]any
	Include       Include

	// Exact disables the approximate-search hint, forcing a full scan
	// through the ranking function.
	Exact bool
}

// Query runs one vector-similarity search per query vector or text and
// returns the result sets in input order, vectors first. Texts require a
// bound embedding function. Batches fan out concurrently.
func (c *Collection) Query(ctx context.Context, p QueryParams) (result *QueryResult, err error) {
	defer func(start time.Time) { c.client.observe("query", start, err) }(time.Now())

	vectors := make([][]float32, 0, len(p.QueryEmbeddings)+len(p.QueryTexts))
	vectors = append(vectors, p.QueryEmbeddings...)
	if len(p.QueryTexts) > 0 {
		if c.fn == nil {
			return nil, ErrNoEmbeddingFunction
		}
		embedded, err := c.fn.Generate(ctx, p.QueryTexts)
		if err != nil {
			return nil, fmt.Errorf("relvec: embedding query texts failed: %w", err)
		}
		vectors = append(vectors, embedded...)
	}
	if len(vectors) == 0 {
		return nil, ErrNoQuery
	}
	if err := validateEmbeddings(vectors, c.meta.Dimension); err != nil {
		return nil, err
	}

	cond, err := buildCondition(nil, p.Where, p.WhereDocument)
	if err != nil {
		return nil, err
	}

	nResults := p.NResults
	if nResults <= 0 {
		nResults = DefaultQueryResults
	}
	include := p.Include
	if include.empty() {
		include = IncludeQueryDefault
	}

	result = &QueryResult{
		IDs:        make([][]string, len(vectors)),
		Documents:  make([][]*string, len(vectors)),
		Metadatas:  make([][]Metadata, len(vectors)),
		Embeddings: make([][][]float32, len(vectors)),
		Distances:  make([][]float32, len(vectors)),
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for i, vector := range vectors {
		group.Go(func() error {
			stmt, params, err := sqlgen.VectorSearch(sqlgen.VectorQuery{
				Table:     c.table,
				Vector:    vector,
				Metric:    c.meta.Metric,
				Condition: cond,
				Projection: sqlgen.Projection{
					Document:  include.Documents,
					Metadata:  include.Metadatas,
					Embedding: include.Embeddings,
				},
				Limit:       nResults,
				Approximate: !p.Exact,
			})
			if err != nil {
				return err
			}
			rows, err := c.client.db.Query(groupCtx, stmt, params...)
			if err != nil {
				return err
			}
			set, distances, err := normalizeRanked(rows, include)
			if err != nil {
				return err
			}
			result.IDs[i] = set.IDs
			result.Documents[i] = set.Documents
			result.Metadatas[i] = set.Metadatas
			result.Embeddings[i] = set.Embeddings
			result.Distances[i] = distances
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// KNNQuery is the vector half of a hybrid search. Text requires a bound
// embedding function; Vector is used as-is.
type KNNQuery struct {
	Text   string
	Vector []float32
	K      int
	Where  map[string]any
}

// RRFRank requests reciprocal-rank-fusion of the text and vector streams.
// Zero fields leave the procedure's defaults in effect.
type RRFRank struct {
	WindowSize   int
	RankConstant int
}

// HybridSearchParams describes a hybrid full-text + vector search handled
// by the engine's search procedure.
type HybridSearchParams struct {
	Where         map[string]any
	WhereDocument map[string]any
	KNN           *KNNQuery

	// Rank fuses the two streams with RRF; nil leaves fusion to the
	// procedure's own default behavior.
	Rank *RRFRank

	// Columns projects specific result columns; empty uses the procedure's
	// default projection.
	Columns []string

	Size int
}

// HybridSearch runs the engine's hybrid-search procedure. At least one of
// the text sub-query and the vector sub-query must be present. The session
// variable assignment and the procedure call run on one pinned connection.
func (c *Collection) HybridSearch(ctx context.Context, p HybridSearchParams) (results []HybridResult, err error) {
	defer func(start time.Time) { c.client.observe("hybrid_search", start, err) }(time.Now())

	setStmt, execStmt, err := c.hybridStatements(ctx, p, sqlgen.HybridSearchExecute)
	if err != nil {
		return nil, err
	}

	err = c.client.db.Session(ctx, func(ex conn.Executor) error {
		if err := ex.Exec(ctx, setStmt); err != nil {
			return err
		}
		rows, err := ex.Query(ctx, execStmt)
		if err != nil {
			return err
		}
		results = normalizeHybrid(rows)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// HybridSearchSQL returns the SQL the procedure would execute for the
// given search, without running it.
func (c *Collection) HybridSearchSQL(ctx context.Context, p HybridSearchParams) (sql string, err error) {
	setStmt, getStmt, err := c.hybridStatements(ctx, p, sqlgen.HybridSearchGetSQL)
	if err != nil {
		return "", err
	}

	err = c.client.db.Session(ctx, func(ex conn.Executor) error {
		if err := ex.Exec(ctx, setStmt); err != nil {
			return err
		}
		rows, err := ex.Query(ctx, getStmt)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			for _, v := range rows[0] {
				if s, ok := columnString(v); ok && s != "" {
					sql = s
					return nil
				}
			}
		}
		return fmt.Errorf("relvec: search procedure returned no SQL")
	})
	if err != nil {
		return "", err
	}
	return sql, nil
}

// hybridStatements builds the session-variable assignment and the
// procedure call for one hybrid search.
func (c *Collection) hybridStatements(ctx context.Context, p HybridSearchParams, procedure func(string) string) (string, string, error) {
	where, err := filter.ParseWhere(p.Where)
	if err != nil {
		return "", "", err
	}
	whereDocument, err := filter.ParseWhereDocument(p.WhereDocument)
	if err != nil {
		return "", "", err
	}

	var knn *sqlgen.KNNParam
	if p.KNN != nil {
		vector := p.KNN.Vector
		if len(vector) == 0 && p.KNN.Text != "" {
			if c.fn == nil {
				return "", "", ErrNoEmbeddingFunction
			}
			embedded, err := c.fn.Generate(ctx, []string{p.KNN.Text})
			if err != nil {
				return "", "", fmt.Errorf("relvec: embedding query text failed: %w", err)
			}
			vector = embedded[0]
		}
		if err := validateEmbeddings([][]float32{vector}, c.meta.Dimension); err != nil {
			return "", "", err
		}
		knnWhere, err := filter.ParseWhere(p.KNN.Where)
		if err != nil {
			return "", "", err
		}
		knn = &sqlgen.KNNParam{Vector: vector, K: p.KNN.K, Filter: knnWhere}
	}

	if where == nil && whereDocument == nil && knn == nil {
		return "", "", ErrNoQuery
	}

	var rrf *sqlgen.RRFParam
	if p.Rank != nil {
		rrf = &sqlgen.RRFParam{WindowSize: p.Rank.WindowSize, RankConstant: p.Rank.RankConstant}
	}

	param, err := sqlgen.BuildSearchParam(where, whereDocument, knn, rrf, p.Size)
	if err != nil {
		return "", "", err
	}
	param.Columns = p.Columns

	setStmt, err := sqlgen.SetSearchParam(param)
	if err != nil {
		return "", "", err
	}
	return setStmt, procedure(c.table), nil
}

// Count returns the number of records in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	rows, err := c.client.db.Query(ctx, sqlgen.Count(c.table))
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return countValue(rows[0]), nil
}

// Peek returns up to limit records; limit <= 0 uses DefaultPeekLimit.
func (c *Collection) Peek(ctx context.Context, limit int) (*GetResult, error) {
	if limit <= 0 {
		limit = DefaultPeekLimit
	}
	return c.Get(ctx, GetParams{Limit: limit})
}

// buildCondition parses the filter maps and combines them with the id
// list.
func buildCondition(ids []string, where, whereDocument map[string]any) (sqlgen.Condition, error) {
	parsedWhere, err := filter.ParseWhere(where)
	if err != nil {
		return sqlgen.Condition{}, err
	}
	parsedDocument, err := filter.ParseWhereDocument(whereDocument)
	if err != nil {
		return sqlgen.Condition{}, err
	}
	return sqlgen.Condition{
		IDs:           ids,
		Where:         parsedWhere,
		WhereDocument: parsedDocument,
	}, nil
}

func countValue(row map[string]any) int {
	for _, v := range row {
		switch n := v.(type) {
		case int64:
			return int(n)
		case int:
			return n
		case float64:
			return int(n)
		default:
			if s, ok := columnString(v); ok {
				if parsed, err := strconv.Atoi(s); err == nil {
					return parsed
				}
			}
		}
	}
	return 0
}
