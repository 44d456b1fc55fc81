package qdrant

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	qd "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/knolhq/knol/pkg/knowledge"
)

func TestQdrant(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Qdrant Driver Suite")
}

// The Add/Query/Remove paths need a live Qdrant server; this suite covers
// the configuration and model-pinning logic that runs before any network
// round trip.
var _ = Describe("Qdrant Driver", func() {
	Describe("NewDriver", func() {
		It("requires a host", func() {
			_, err := NewDriver(context.Background(), Config{
				Dimensions: 768,
				ModelID:    "ollama/nomic-embed-text",
			}, zap.NewNop())
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("host is required"))
		})

		It("requires dimensions", func() {
			_, err := NewDriver(context.Background(), Config{
				Host:    "localhost",
				ModelID: "ollama/nomic-embed-text",
			}, zap.NewNop())
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("dimensions"))
		})

		It("requires a model identity", func() {
			_, err := NewDriver(context.Background(), Config{
				Host:       "localhost",
				Dimensions: 768,
			}, zap.NewNop())
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("model identity"))
		})
	})

	Describe("verifyStoredModel", func() {
		point := func(payload map[string]any) *qd.RetrievedPoint {
			return &qd.RetrievedPoint{Payload: qd.NewValueMap(payload)}
		}

		It("accepts an empty collection", func() {
			Expect(verifyStoredModel(nil, "knol", "ollama/nomic-embed-text")).To(Succeed())
		})

		It("accepts a collection written by the same model", func() {
			points := []*qd.RetrievedPoint{
				point(map[string]any{"model_id": "ollama/nomic-embed-text"}),
			}
			Expect(verifyStoredModel(points, "knol", "ollama/nomic-embed-text")).To(Succeed())
		})

		It("rejects a collection written by a different model", func() {
			points := []*qd.RetrievedPoint{
				point(map[string]any{"model_id": "ollama/nomic-embed-text"}),
			}
			err := verifyStoredModel(points, "knol", "openai/text-embedding-3-small")
			Expect(err).To(MatchError(knowledge.ErrIndexCorrupt))
			Expect(err.Error()).To(ContainSubstring("ollama/nomic-embed-text"))
			Expect(err.Error()).To(ContainSubstring("openai/text-embedding-3-small"))
		})

		It("tolerates points without a stored model identity", func() {
			points := []*qd.RetrievedPoint{point(map[string]any{})}
			Expect(verifyStoredModel(points, "knol", "ollama/nomic-embed-text")).To(Succeed())
		})
	})
})
