// Package openai implements pkg/embeddings' Embedder against the OpenAI
// embeddings API.
package openai

import (
	"context"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/knolhq/knol/pkg/embeddings"
	"github.com/knolhq/knol/pkg/knowledge"
)

const (
	// DefaultModel is the default embedding model.
	DefaultModel = "text-embedding-3-small"

	// DefaultDimensions matches text-embedding-3-small output.
	DefaultDimensions = 1536
)

// Embedder wraps the OpenAI embeddings endpoint.
type Embedder struct {
	client     *goopenai.Client
	model      string
	dimensions int
}

// Config holds configuration for the OpenAI embedder.
type Config struct {
	// APIKey authenticates against the OpenAI API. Required.
	APIKey string

	// BaseURL overrides the API base URL for compatible backends.
	BaseURL string

	// Model is the embedding model. Defaults to DefaultModel if empty.
	Model string

	// Dimensions is the vector dimension the model produces.
	// Defaults to DefaultDimensions if zero.
	Dimensions int
}

// NewEmbedder creates an embedder backed by the OpenAI API.
func NewEmbedder(c Config) (*Embedder, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	model := c.Model
	if model == "" {
		model = DefaultModel
	}

	dimensions := c.Dimensions
	if dimensions == 0 {
		dimensions = DefaultDimensions
	}

	cfg := goopenai.DefaultConfig(c.APIKey)
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}

	return &Embedder{
		client:     goopenai.NewClientWithConfig(cfg),
		model:      model,
		dimensions: dimensions,
	}, nil
}

// Embed converts one text into a vector embedding.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch converts many texts in one request.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := goopenai.EmbeddingRequest{
		Input: texts,
		Model: goopenai.EmbeddingModel(e.model),
	}
	// text-embedding-3 models accept a requested output dimension; older
	// models reject the parameter.
	if strings.HasPrefix(e.model, "text-embedding-3") {
		req.Dimensions = e.dimensions
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", knowledge.ErrEmbeddingUnavailable, err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", knowledge.ErrEmbeddingUnavailable, len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		if len(data.Embedding) != e.dimensions {
			return nil, fmt.Errorf("%w: embedding %d has dimension %d, expected %d",
				knowledge.ErrEmbeddingUnavailable, i, len(data.Embedding), e.dimensions)
		}
		vec := make([]float32, len(data.Embedding))
		copy(vec, data.Embedding)
		vectors[i] = vec
	}

	return vectors, nil
}

// Dimensions returns the configured vector dimension.
func (e *Embedder) Dimensions() int { return e.dimensions }

// ModelID identifies the embedding model.
func (e *Embedder) ModelID() string { return "openai/" + e.model }

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
