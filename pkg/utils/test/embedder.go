package testutils

import (
	"context"
	"fmt"
)

// MockEmbedder is a test embedder that returns predictable embeddings
type MockEmbedder struct {
	Embeddings map[string][]float32

	// Dims is the dimension reported and used for default embeddings.
	Dims int

	// FailOn causes Embed to return an error when the input text matches,
	// and EmbedBatch to fail when any input matches.
	FailOn string

	// FailBatch causes EmbedBatch to always fail, forcing callers into
	// their per-text fallback path.
	FailBatch bool
}

func NewMockEmbedder(dims int) *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
		Dims:       dims,
	}
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.FailOn != "" && text == m.FailOn {
		return nil, fmt.Errorf("mock embedding failure for: %s", text)
	}

	if emb, ok := m.Embeddings[text]; ok {
		return emb, nil
	}

	// Return a default embedding for any text
	emb := make([]float32, m.Dims)
	if m.Dims > 0 {
		emb[0] = 1
	}
	return emb, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.FailBatch {
		return nil, fmt.Errorf("mock batch embedding failure")
	}

	out := make([][]float32, len(texts))
	for i, t := range texts {
		emb, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

func (m *MockEmbedder) Dimensions() int { return m.Dims }

func (m *MockEmbedder) ModelID() string { return "test/mock" }

func (m *MockEmbedder) Close() error {
	return nil
}
