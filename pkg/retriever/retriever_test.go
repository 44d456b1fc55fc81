package retriever_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/knolhq/knol/pkg/knowledge"
	"github.com/knolhq/knol/pkg/retriever"
	testutils "github.com/knolhq/knol/pkg/utils/test"
	"github.com/knolhq/knol/pkg/vector/memory"
)

func TestRetriever(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Retriever Suite")
}

var _ = Describe("Retriever", func() {
	var (
		embedder *testutils.MockEmbedder
		driver   *memory.Driver
		ctx      context.Context
	)

	addDoc := func(docID, filename string, embeddings ...[]float32) {
		chunks := make([]knowledge.Chunk, len(embeddings))
		for i, emb := range embeddings {
			chunks[i] = knowledge.Chunk{
				ID:         docID + ":" + string(rune('0'+i)),
				DocumentID: docID,
				Seq:        i,
				Text:       "chunk",
				Embedding:  emb,
			}
		}
		Expect(driver.Add(ctx, knowledge.Document{
			ID:         docID,
			Filename:   filename,
			Format:     knowledge.FormatTXT,
			IngestedAt: time.Now(),
		}, chunks)).To(Succeed())
	}

	BeforeEach(func() {
		embedder = testutils.NewMockEmbedder(3)
		var err error
		driver, err = memory.NewDriver(memory.Config{Dimensions: 3}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	It("embeds the query and returns ranked results", func() {
		embedder.Embeddings["what is the policy?"] = []float32{1, 0, 0}
		addDoc("d1", "policy.txt", []float32{1, 0, 0}, []float32{0, 1, 0})

		r := retriever.New(embedder, driver, retriever.Config{TopK: 5}, zap.NewNop())
		results, err := r.Retrieve(ctx, "what is the policy?")
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].Chunk.Seq).To(Equal(0))
		Expect(results[0].Filename).To(Equal("policy.txt"))
	})

	It("limits results to the configured top-k", func() {
		embedder.Embeddings["q"] = []float32{1, 0, 0}
		addDoc("d1", "a.txt",
			[]float32{1, 0, 0}, []float32{0.9, 0.1, 0}, []float32{0.8, 0.2, 0})

		r := retriever.New(embedder, driver, retriever.Config{TopK: 2}, zap.NewNop())
		results, err := r.Retrieve(ctx, "q")
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
	})

	It("applies the score threshold", func() {
		embedder.Embeddings["q"] = []float32{1, 0, 0}
		addDoc("d1", "a.txt", []float32{1, 0, 0}, []float32{0, 1, 0})

		r := retriever.New(embedder, driver, retriever.Config{TopK: 5, ScoreThreshold: 0.5}, zap.NewNop())
		results, err := r.Retrieve(ctx, "q")
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
	})

	It("returns empty for an empty index", func() {
		r := retriever.New(embedder, driver, retriever.Config{}, zap.NewNop())
		results, err := r.Retrieve(ctx, "anything")
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(BeEmpty())
	})

	It("propagates embedding failures", func() {
		embedder.FailOn = "broken query"
		r := retriever.New(embedder, driver, retriever.Config{}, zap.NewNop())
		_, err := r.Retrieve(ctx, "broken query")
		Expect(err).To(HaveOccurred())
	})

	Describe("RetrieveN", func() {
		BeforeEach(func() {
			embedder.Embeddings["q"] = []float32{1, 0, 0}
			addDoc("d1", "a.txt",
				[]float32{1, 0, 0}, []float32{0.9, 0.1, 0}, []float32{0.8, 0.2, 0})
		})

		It("overrides the configured top-k", func() {
			r := retriever.New(embedder, driver, retriever.Config{TopK: 1}, zap.NewNop())
			results, err := r.RetrieveN(ctx, "q", 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
		})

		It("falls back to the configured top-k for a non-positive limit", func() {
			r := retriever.New(embedder, driver, retriever.Config{TopK: 2}, zap.NewNop())
			results, err := r.RetrieveN(ctx, "q", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
		})
	})
})
