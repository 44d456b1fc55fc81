// Package retriever orchestrates query-time embedding and index search.
// It exists so the assistant's prompt construction never touches
// embedding or vector-store concerns.
package retriever

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/knolhq/knol/pkg/embeddings"
	"github.com/knolhq/knol/pkg/knowledge"
	"github.com/knolhq/knol/pkg/vector"
)

const (
	// DefaultTopK is the default number of chunks retrieved per query.
	DefaultTopK = 3
)

// Config holds retrieval tuning.
type Config struct {
	// TopK is the maximum number of chunks returned per query.
	// Defaults to DefaultTopK if zero.
	TopK int

	// ScoreThreshold excludes results scoring below it, even when fewer
	// than TopK remain. Zero disables the threshold.
	ScoreThreshold float32
}

// Retriever embeds a query and searches the vector index.
type Retriever struct {
	embedder embeddings.Embedder
	driver   vector.Driver
	config   Config
	logger   *zap.Logger
}

// New creates a retriever over the given embedder and index.
func New(embedder embeddings.Embedder, driver vector.Driver, c Config, logger *zap.Logger) *Retriever {
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}

	return &Retriever{
		embedder: embedder,
		driver:   driver,
		config:   c,
		logger:   logger,
	}
}

// Retrieve returns the most relevant chunks for the query, in rank order,
// exactly as the index scored them. An empty result means no stored chunk
// was sufficiently relevant — a valid outcome, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]knowledge.SearchResult, error) {
	return r.RetrieveN(ctx, query, r.config.TopK)
}

// RetrieveN is Retrieve with an explicit result limit, for callers that
// take a per-request top-k.
func (r *Retriever) RetrieveN(ctx context.Context, query string, topK int) ([]knowledge.SearchResult, error) {
	if topK <= 0 {
		topK = r.config.TopK
	}

	queryEmbedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := r.driver.Query(ctx, queryEmbedding, topK, r.config.ScoreThreshold)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	r.logger.Debug("retrieved chunks",
		zap.String("query", query),
		zap.Int("results", len(results)),
	)

	return results, nil
}
