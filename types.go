package relvec

// Metadata is the JSON-valued attribute map attached to a record.
type Metadata = map[string]any

// Include selects which record fields an operation returns. Ids are always
// returned.
type Include struct {
	Documents  bool
	Metadatas  bool
	Embeddings bool
	Distances  bool
}

// IncludeGetDefault is the field set Get returns when none is requested.
var IncludeGetDefault = Include{Documents: true, Metadatas: true}

// IncludeQueryDefault is the field set Query returns when none is
// requested.
var IncludeQueryDefault = Include{Documents: true, Metadatas: true, Distances: true}

func (i Include) empty() bool {
	return !i.Documents && !i.Metadatas && !i.Embeddings && !i.Distances
}

// GetResult holds the records returned by Get and Peek as parallel arrays.
// Fields outside the requested Include set are nil.
type GetResult struct {
	IDs        []string
	Documents  []*string
	Metadatas  []Metadata
	Embeddings [][]float32
}

// QueryResult holds the records returned by Query, one outer element per
// query vector or text. Fields outside the requested Include set are nil.
type QueryResult struct {
	IDs        [][]string
	Documents  [][]*string
	Metadatas  [][]Metadata
	Embeddings [][][]float32
	Distances  [][]float32
}

// HybridResult holds one ranked row returned by HybridSearch. The engine's
// search procedure decides the projection, so rows stay generic maps with
// the id and score lifted out when recognizable.
type HybridResult struct {
	ID    string
	Score float64
	Row   map[string]any
}
