// Package vector provides interfaces and implementations for storing chunk
// embeddings and searching them by similarity.
package vector

import (
	"context"

	"github.com/knolhq/knol/pkg/knowledge"
)

// Driver is a vector index over document chunks. All backends use cosine
// similarity and normalise vectors consistently — either at insertion or at
// comparison time, never mixed.
type Driver interface {
	// Add inserts a document's chunks atomically with respect to Query: a
	// concurrent search sees either none or all of the document's chunks.
	// Every chunk must carry an embedding of the index's dimension; a
	// dimension or model-identity mismatch fails with
	// knowledge.ErrIndexCorrupt and inserts nothing.
	Add(ctx context.Context, doc knowledge.Document, chunks []knowledge.Chunk) error

	// Query returns up to topK results ordered by descending similarity
	// score, ties broken by chunk sequence (earlier chunk wins). Results
	// scoring below scoreThreshold are excluded even if fewer than topK
	// remain; an empty result set is valid. A zero threshold disables
	// filtering.
	Query(ctx context.Context, embedding []float32, topK int, scoreThreshold float32) ([]knowledge.SearchResult, error)

	// RemoveDocument deletes a document and all its chunks. Subsequent
	// queries never return them.
	RemoveDocument(ctx context.Context, docID string) error

	// Reset clears the entire index, including its model-identity metadata.
	Reset(ctx context.Context) error

	// Documents lists the stored documents.
	Documents(ctx context.Context) ([]knowledge.DocumentInfo, error)

	// Close releases any resources held by the driver.
	Close() error
}

// PreviewLen is the number of runes of document text kept as the listing
// preview.
const PreviewLen = 200

// Preview truncates document text for listings.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLen {
		return text
	}
	return string(runes[:PreviewLen])
}
