// Package embeddings provides pluggable text embedding providers.
package embeddings

import "context"

// Embedder maps text to fixed-dimension vectors. For a given model
// identity the mapping is deterministic modulo the floating-point
// nondeterminism of the underlying model, so callers comparing vectors in
// tests must use approximate equality.
type Embedder interface {
	// Embed converts one text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts many texts in one backend invocation, amortizing
	// model cost during bulk ingestion. The result is index-aligned with
	// the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector dimension this embedder produces.
	Dimensions() int

	// ModelID identifies the embedding model. Vectors from different model
	// identities are not comparable and must never share an index.
	ModelID() string

	// Close releases any resources held by the embedder.
	Close() error
}
