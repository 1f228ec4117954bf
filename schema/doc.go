// Package schema manages collection schemas and the metadata catalog.
//
// Collections exist in two storage generations. Current-generation
// collections live in tables named vec_v2_<id> and are described by a row
// in the vec_collections metadata table, which stores the full schema as
// JSON. Legacy collections live in tables named vec_v1_<name> with no
// metadata row; their schema is recovered by reflecting the table DDL.
//
// The Manager provides create, get, list, delete and existence operations
// across both generations, preferring the metadata catalog and falling back
// to DDL reflection for legacy tables.
package schema
