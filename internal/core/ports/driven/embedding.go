package driven

import "context"

// Embedder generates fixed-dimension vector embeddings from text.
//
// Embeddings must be deterministic for identical input: the same text always
// maps to the same vector for the lifetime of the service. The index's
// vector dimension is established by the embedder at initialisation and
// must match on every subsequent insertion and query.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - A local hashing embedder for offline use and tests
type Embedder interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// Ingestion embeds every chunk of a document through this call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 256, 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
