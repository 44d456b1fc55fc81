// Package memory provides an in-process vector driver using brute-force
// cosine similarity. It is the default backend: for the corpus sizes this
// system targets a linear scan is both fast enough and trivially correct.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/knolhq/knol/pkg/knowledge"
	"github.com/knolhq/knol/pkg/vector"
)

// Config holds configuration for the in-memory driver.
type Config struct {
	// Dimensions is the embedding dimension the index accepts. The index
	// lives and dies with a single embedder instance, so dimension checks
	// are enough to reject mixed vector spaces here; persistent backends
	// additionally pin the model identity.
	Dimensions int
}

// Driver implements vector.Driver with a mutex-guarded linear scan.
// Mutation is serialized; concurrent queries proceed under a read lock, so
// a half-written document is never visible to a search.
type Driver struct {
	config Config
	logger *zap.Logger

	mu sync.RWMutex

	// docs holds document metadata and preview keyed by document ID.
	docs map[string]knowledge.DocumentInfo

	// entries holds every chunk with its unit-length embedding.
	entries []entry
}

type entry struct {
	chunk     knowledge.Chunk
	filename  string
	embedding []float32
}

// NewDriver creates an in-memory vector driver.
func NewDriver(c Config, logger *zap.Logger) (*Driver, error) {
	if c.Dimensions <= 0 {
		return nil, fmt.Errorf("embedding dimensions must be positive, got %d", c.Dimensions)
	}

	return &Driver{
		config: c,
		logger: logger,
		docs:   make(map[string]knowledge.DocumentInfo),
	}, nil
}

// Add stores a document's chunks. Validation happens before any mutation
// so a failed Add leaves the index unchanged.
func (d *Driver) Add(_ context.Context, doc knowledge.Document, chunks []knowledge.Chunk) error {
	staged := make([]entry, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Embedding) != d.config.Dimensions {
			return fmt.Errorf("%w: chunk %s has dimension %d, index expects %d",
				knowledge.ErrIndexCorrupt, chunk.ID, len(chunk.Embedding), d.config.Dimensions)
		}
		staged = append(staged, entry{
			chunk:     chunk,
			filename:  doc.Filename,
			embedding: vector.Normalize(chunk.Embedding),
		})
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.docs[doc.ID] = knowledge.DocumentInfo{
		ID:         doc.ID,
		Filename:   doc.Filename,
		Format:     doc.Format,
		Chunks:     len(chunks),
		Preview:    vector.Preview(doc.Text),
		IngestedAt: doc.IngestedAt,
	}
	d.entries = append(d.entries, staged...)

	d.logger.Debug("added document to memory index",
		zap.String("document_id", doc.ID),
		zap.Int("chunks", len(chunks)),
	)

	return nil
}

// Query scans all stored vectors and returns the topK most similar chunks.
func (d *Driver) Query(_ context.Context, embedding []float32, topK int, scoreThreshold float32) ([]knowledge.SearchResult, error) {
	if len(embedding) != d.config.Dimensions {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			knowledge.ErrIndexCorrupt, len(embedding), d.config.Dimensions)
	}

	query := vector.Normalize(embedding)

	d.mu.RLock()
	scored := make([]knowledge.SearchResult, 0, len(d.entries))
	for _, e := range d.entries {
		scored = append(scored, knowledge.SearchResult{
			Chunk:    e.chunk,
			Filename: e.filename,
			Score:    vector.Dot(query, e.embedding),
		})
	}
	d.mu.RUnlock()

	return vector.RankResults(scored, topK, scoreThreshold), nil
}

// RemoveDocument deletes a document and all its chunks.
func (d *Driver) RemoveDocument(_ context.Context, docID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.docs, docID)

	kept := d.entries[:0]
	for _, e := range d.entries {
		if e.chunk.DocumentID != docID {
			kept = append(kept, e)
		}
	}
	d.entries = kept

	return nil
}

// Reset clears the entire index.
func (d *Driver) Reset(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.docs = make(map[string]knowledge.DocumentInfo)
	d.entries = nil

	return nil
}

// Documents lists the stored documents.
func (d *Driver) Documents(_ context.Context) ([]knowledge.DocumentInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	infos := make([]knowledge.DocumentInfo, 0, len(d.docs))
	for _, info := range d.docs {
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].IngestedAt.Equal(infos[j].IngestedAt) {
			return infos[i].IngestedAt.Before(infos[j].IngestedAt)
		}
		return infos[i].ID < infos[j].ID
	})

	return infos, nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

var _ vector.Driver = (*Driver)(nil)
