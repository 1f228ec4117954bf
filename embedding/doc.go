// Package embedding provides text embedding functions for relvec.
//
// A Function turns a batch of texts into vectors of a fixed dimension.
// Collections remember which function produced their vectors: the function's
// name and configuration are stored alongside the collection schema, and a
// name-keyed registry rebuilds the function when the collection is reopened.
//
// Two providers ship with the package: an OpenAI-compatible provider backed
// by the chat-completions ecosystem's embeddings endpoint, and a
// deterministic hashing provider for tests and offline development.
//
// Example usage:
//
//	fn, err := embedding.NewOpenAIFunction(embedding.OpenAIConfig{
//		APIKey: os.Getenv("OPENAI_API_KEY"),
//		Model:  "text-embedding-3-small",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	vectors, err := fn.Generate(ctx, []string{"hello world"})
package embedding
