package testutils

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/knolhq/knol/pkg/vector"
)

// HashEmbedder is a deterministic bag-of-words embedder for retrieval tests.
// Each word hashes into a fixed bucket, so texts sharing vocabulary produce
// similar vectors without any model backend. Vectors are unit-normalised.
type HashEmbedder struct {
	Dims int
}

func NewHashEmbedder(dims int) *HashEmbedder {
	return &HashEmbedder{Dims: dims}
}

func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	emb := make([]float32, h.Dims)

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		hasher := fnv.New32a()
		hasher.Write([]byte(w))
		emb[int(hasher.Sum32())%h.Dims]++
	}

	return vector.Normalize(emb), nil
}

func (h *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		emb, err := h.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

func (h *HashEmbedder) Dimensions() int { return h.Dims }

func (h *HashEmbedder) ModelID() string { return "test/hash" }

func (h *HashEmbedder) Close() error { return nil }
