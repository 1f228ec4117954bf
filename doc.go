// Package relvec presents a document/vector collection data model over a
// SQL engine with vector columns, a vector similarity index and a full-text
// index.
//
// A Client manages the catalog: collections and databases. A Collection
// exposes record CRUD, vector similarity queries and hybrid full-text +
// vector search. Everything is translated into parameterized SQL by the
// sqlgen package and executed through the conn package's Executor.
//
// Example usage:
//
//	client, err := relvec.NewClient(
//		relvec.WithAddress("localhost", "2881"),
//		relvec.WithCredentials("root", "secret"),
//		relvec.WithDatabase("vectors"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	col, err := client.CreateCollection(ctx, "docs", relvec.CreateCollectionOptions{
//		Dimension: 3,
//		Distance:  "cosine",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	err = col.Add(ctx, relvec.AddParams{
//		IDs:        []string{"a"},
//		Documents:  []string{"hello world"},
//		Embeddings: [][]float32{{0.1, 0.2, 0.3}},
//	})
package relvec
