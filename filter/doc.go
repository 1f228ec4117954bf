// Package filter defines the metadata and document filter language of the
// relvec client and compiles it into the two forms the storage engine
// understands.
//
// A filter is a recursive expression over the metadata map of a record
// (equality, comparison, set membership, boolean composition) or over its
// document text ($contains, $regex). Filters are represented as a closed
// set of condition types so both compilers can be exhaustive:
//
//	f := filter.And{
//	    filter.Eq{Field: "status", Value: "published"},
//	    filter.Or{
//	        filter.Cmp{Field: "year", Op: filter.OpGte, Value: 2020},
//	        filter.In{Field: "category", Values: []any{"news", "blog"}},
//	    },
//	}
//
// Mongo-style map literals are accepted through ParseWhere and
// ParseWhereDocument:
//
//	w, err := filter.ParseWhere(map[string]any{
//	    "status": "published",
//	    "year":   map[string]any{"$gte": 2020, "$lt": 2030},
//	})
//
// Two independent compilation paths exist:
//
//   - CompileWhere / CompileWhereDocument produce a parameterized SQL
//     predicate over the JSON metadata column or the document text column.
//   - SearchJSON / DocumentSearchJSON produce the term/range/bool predicate
//     tree consumed by the engine's hybrid-search procedure.
//
// Both paths bind every user value as a parameter or JSON value; the only
// interpolated text is the metadata key, which is validated against a fixed
// charset before use.
package filter
