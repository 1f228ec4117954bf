// Package sqlgen synthesizes the SQL statements issued by the relvec
// client: collection DDL, CRUD statements, vector-ranking selects and the
// hybrid-search procedure calls. All functions are pure and stateless; they
// return statement text plus ordered bind parameters and never touch a
// connection.
//
// Identifier safety: the only strings ever interpolated into statement text
// are physical table names derived from a validated collection name or a
// generated collection id, fixed column names, and metadata keys validated
// by the filter package. Every user-supplied value is bound as a parameter,
// with one deliberate exception: the query vector of a ranking select is
// rendered as a bracketed numeric literal (the form the engine's distance
// functions expect), produced by VectorLiteral which rejects anything that
// is not a finite float.
//
// Two generations of physical table naming coexist:
//
//	v1 (legacy):  vec_v1_<collectionName>
//	v2 (current): vec_v2_<collectionId>
//
// plus the vec_collections metadata table that backs the v2 generation.
package sqlgen
